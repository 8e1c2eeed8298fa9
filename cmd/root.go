package cmd

import (
	"os"

	"backdate/internal"
	"github.com/spf13/cobra"
)

// Version is overridden from the embedded VERSION file or -ldflags.
var Version = "dev"

var (
	configFlag   string
	logLevelFlag string
	logFileFlag  string
	colorFlag    string
)

var rootCmd = &cobra.Command{
	Use:   "backdate",
	Short: "Backfill image capture times from filenames",
	Long: `Infer when a photo was taken from camera and messaging app filename
conventions (PXL_, IMG_, Screenshot_, WhatsApp, LRM_, FB_IMG_) and write it
into the EXIF data of JPEG files or the "Creation Time" text entry of PNG files.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

// ApplyVersion copies Version onto the root command.
func ApplyVersion() {
	rootCmd.Version = Version
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Config file (default: <user config dir>/backdate/backdate.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFileFlag, "log-file", "", "Append log lines to this file")
	rootCmd.PersistentFlags().StringVar(&colorFlag, "color", "auto", "Colored output: auto, always, never")

	ApplyVersion()
}

// loadConfig reads the config file and applies persistent flags the user set.
func loadConfig(cmd *cobra.Command) (*internal.Config, error) {
	conf, err := internal.LoadConfig(configFlag)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		conf.LogLevel = logLevelFlag
	}
	if flags.Changed("log-file") {
		conf.LogFile = logFileFlag
	}
	if flags.Changed("color") {
		conf.Color = colorFlag
	}
	return conf, nil
}

func newLogger(conf *internal.Config) (*internal.Logger, error) {
	return internal.NewLogger(os.Stderr, internal.ParseLevel(conf.LogLevel), conf.LogFile)
}
