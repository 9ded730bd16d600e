package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"roverd/internal/rover"
)

var (
	replayInput     string
	replaySpeed     float64
	replayPrintOnly bool
	replayTUI       bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a recorded rover data log",
	Long:  "replay feeds log entries from a recorded data log back into GreptimeDB, STDOUT, or the dashboard.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if replayInput == "" {
			return fmt.Errorf("input file required")
		}
		writer, cleanup, err := newWriters(replayPrintOnly, replayTUI, false, "")
		if err != nil {
			return err
		}
		defer cleanup()
		return rover.ReplayLogFile(replayInput, writer, replaySpeed)
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to recorded data log")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier")
	replayCmd.Flags().BoolVar(&replayPrintOnly, "print-only", false, "Print log entries to STDOUT instead of writing to DB")
	replayCmd.Flags().BoolVar(&replayTUI, "tui", false, "Render the replay in the terminal dashboard")
	replayCmd.MarkFlagRequired("input")
}
