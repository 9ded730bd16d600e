package main

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"roverd/internal/rover"
	"roverd/internal/syncer"
)

// outputWriter handles both rover log entries and sync attempt rows.
// Every writer in internal/rover implements both sides.
type outputWriter interface {
	rover.LogWriter
	syncer.ResultWriter
}

// newWriters sets up the output writer stack based on flags and env
// vars. It returns the writer and a cleanup function to close any
// resources. syncOnly narrows the file log to sync attempt rows.
func newWriters(printOnly, useTUI, syncOnly bool, logFile string) (outputWriter, func(), error) {
	cleanup := func() {}

	var base outputWriter
	switch {
	case useTUI:
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return nil, nil, fmt.Errorf("dashboard requires a terminal")
		}
		tui := rover.NewTUIWriter()
		base = tui
		cleanup = tui.Quit
	case printOnly || os.Getenv("GREPTIMEDB_ENDPOINT") == "":
		base = &rover.StdoutWriter{}
	default:
		database := os.Getenv("GREPTIMEDB_DATABASE")
		if database == "" {
			database = "public"
		}
		w, err := rover.NewGreptimeDBWriter(
			os.Getenv("GREPTIMEDB_ENDPOINT"), database,
			os.Getenv("GREPTIMEDB_TABLE"), os.Getenv("SYNC_TABLE"))
		if err != nil {
			return nil, nil, err
		}
		base = w
	}

	if logFile == "" {
		return base, cleanup, nil
	}

	var fw *rover.FileWriter
	var err error
	if syncOnly {
		fw, err = rover.NewSyncFileWriter(logFile)
	} else {
		fw, err = rover.NewFileWriter(logFile, "")
	}
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	mw := rover.NewMultiWriter(
		[]rover.LogWriter{base, fw},
		[]syncer.ResultWriter{base, fw},
	)
	baseCleanup := cleanup
	return mw, func() { fw.Close(); baseCleanup() }, nil
}
