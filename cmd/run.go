package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"backdate/internal"
	"github.com/spf13/cobra"
)

var (
	workersFlag int
	dryRunFlag  bool
	useExifTool bool
	journalFlag string
	verboseFlag bool
	createExif  bool
)

var runCmd = &cobra.Command{
	Use:   "run [folder]",
	Short: "Write filename dates into image metadata",
	Long: `Scan folder recursively for .jpg, .jpeg and .png files, infer the capture
time from each filename and store it in the file's metadata. Files that
already carry the same time are left untouched. Without a folder argument
the path is read from standard input.

FB_IMG_ files carry no date in their name; their modification time is used
instead, which is only as reliable as the last copy that preserved it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		folder, err := folderArg(cmd, args)
		if err != nil {
			return err
		}

		conf, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		if flags.Changed("workers") {
			conf.Workers = workersFlag
		}
		if flags.Changed("dry-run") {
			conf.DryRun = dryRunFlag
		}
		if flags.Changed("exiftool") && useExifTool {
			conf.JPEGBackend = internal.BackendExifTool
		}
		if flags.Changed("journal") {
			conf.JournalDir = journalFlag
		}
		if flags.Changed("create-exif") {
			conf.CreateMissingExif = createExif
		}
		if err := conf.Validate(); err != nil {
			return err
		}

		logger, err := newLogger(conf)
		if err != nil {
			return err
		}
		defer logger.Close()

		writers, closeWriters, err := internal.OpenWriters(conf)
		if err != nil {
			return err
		}
		defer closeWriters()

		rep := internal.NewConsoleReporter(cmd.OutOrStdout(), conf.Color)
		rep.Verbose = verboseFlag

		if conf.DryRun {
			fmt.Fprintln(cmd.OutOrStdout(), "Dry run mode: no files will be modified")
		}
		_, err = internal.NewBatch(conf, writers, rep, logger).Run(folder)
		return err
	},
}

// folderArg returns the folder argument or prompts for one.
func folderArg(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	fmt.Fprint(cmd.OutOrStdout(), "Enter the path to the folder containing images: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read folder path: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func init() {
	runCmd.Flags().IntVarP(&workersFlag, "workers", "w", internal.DefaultWorkers, "Number of files processed concurrently")
	runCmd.Flags().BoolVarP(&dryRunFlag, "dry-run", "n", false, "Report what would change without writing")
	runCmd.Flags().BoolVar(&useExifTool, "exiftool", false, "Force to use exiftool binary for JPEG files")
	runCmd.Flags().StringVar(&journalFlag, "journal", "", "Write a JSONL run journal under this directory")
	runCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "Print failure categories and suggestions")
	runCmd.Flags().BoolVar(&createExif, "create-exif", false, "Add an EXIF block to JPEGs that have none instead of failing them")

	rootCmd.AddCommand(runCmd)
}
