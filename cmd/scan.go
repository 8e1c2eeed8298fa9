package cmd

import (
	"fmt"

	"backdate/internal"
	"github.com/spf13/cobra"
)

var formatFlag string

var scanCmd = &cobra.Command{
	Use:   "scan <folder>",
	Short: "Report which filename conventions a folder follows",
	Long: `Run filename inference over every image in folder without modifying
anything, and print per-convention counts, the inferred date range and the
names no convention recognized.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if formatFlag != "table" && formatFlag != "json" {
			return fmt.Errorf("unknown format %q: use table or json", formatFlag)
		}

		conf, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		census, err := internal.TakeCensus(args[0], conf.ImageExt)
		if err != nil {
			return err
		}
		return internal.DisplayCensus(cmd.OutOrStdout(), census, formatFlag)
	},
}

func init() {
	scanCmd.Flags().StringVar(&formatFlag, "format", "table", "Output format: table, json")

	rootCmd.AddCommand(scanCmd)
}
