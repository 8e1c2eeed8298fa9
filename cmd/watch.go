package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"backdate/internal"
	"github.com/spf13/cobra"
)

var settleFlag time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch <folder>",
	Short: "Process folder, then keep stamping images as they arrive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("settle") {
			conf.SettleDelay = settleFlag
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

		stop := make(chan struct{})
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigs)
		go func() {
			<-sigs
			close(stop)
		}()

		rep := internal.NewConsoleReporter(cmd.OutOrStdout(), conf.Color)
		return internal.NewBatch(conf, writers, rep, logger).Watch(args[0], conf.SettleDelay, stop)
	},
}

func init() {
	watchCmd.Flags().DurationVar(&settleFlag, "settle", 2*time.Second, "Wait this long after the last change before processing a file")

	rootCmd.AddCommand(watchCmd)
}
