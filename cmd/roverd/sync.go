package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"roverd/internal/syncer"
)

var (
	syncSource    string
	syncDest      string
	syncInterval  time.Duration
	syncTimeout   time.Duration
	syncPrintOnly bool
	syncLogFile   string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Mirror the rover data log from the rover host",
	Long:  "sync pulls rover_data_log.json from the rover on a fixed cadence and reports the outcome of every attempt.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		writer, cleanup, err := newWriters(syncPrintOnly, false, true, syncLogFile)
		if err != nil {
			return err
		}
		defer cleanup()

		interval := syncInterval
		if envInterval := os.Getenv("SYNC_INTERVAL"); envInterval != "" {
			d, err := time.ParseDuration(envInterval)
			if err != nil {
				return err
			}
			interval = d
		}

		var opts []syncer.Option
		if syncTimeout > 0 {
			opts = append(opts, syncer.WithTimeout(syncTimeout))
		}
		loop := syncer.New(syncSource, syncDest, interval, syncer.SCPCopier{}, writer, opts...)
		loop.Run(ctx)
		return nil
	},
}

func init() {
	syncCmd.Flags().StringVar(&syncSource, "source", "pi@raspberrypi.local:~/rover/rover_data_log.json", "Remote source (user@host:path)")
	syncCmd.Flags().StringVar(&syncDest, "dest", ".", "Local destination directory")
	syncCmd.Flags().DurationVar(&syncInterval, "interval", 5*time.Second, "Time between copy attempts")
	syncCmd.Flags().DurationVar(&syncTimeout, "timeout", 0, "Per-attempt timeout (default: interval minus a margin)")
	syncCmd.Flags().BoolVar(&syncPrintOnly, "print-only", false, "Print attempt results to STDOUT instead of writing to DB")
	syncCmd.Flags().StringVar(&syncLogFile, "log-file", "", "Path to record attempt results (JSONL)")
}
