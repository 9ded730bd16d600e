package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"roverd/internal/logging"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "roverd",
	Short: "Rover operations toolkit",
	Long:  "roverd provisions the rover host, runs the control loop, mirrors the data log, and replays recordings.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// signalContext returns a context canceled on SIGINT/SIGTERM, with a
// logger attached.
func signalContext() (context.Context, context.CancelFunc) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	return logging.NewContext(ctx, logging.New(level)), cancel
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(provisionCmd)
	rootCmd.AddCommand(replayCmd)
}
