package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"roverd/internal/rover"
	"roverd/internal/telemetry"
)

func TestNewWriters_PrintOnly(t *testing.T) {
	w, cleanup, err := newWriters(true, false, false, "")
	if err != nil {
		t.Fatalf("newWriters: %v", err)
	}
	defer cleanup()

	if _, ok := w.(*rover.StdoutWriter); !ok {
		t.Errorf("expected stdout writer, got %T", w)
	}
}

func TestNewWriters_StacksFileWriter(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "rover_data_log.json")

	w, cleanup, err := newWriters(true, false, false, logPath)
	if err != nil {
		t.Fatalf("newWriters: %v", err)
	}

	if _, ok := w.(*rover.MultiWriter); !ok {
		t.Errorf("expected multi writer, got %T", w)
	}
	if err := w.Write(telemetry.LogEntry{RoverID: "r1", Action: telemetry.ActionForward}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	cleanup()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if len(data) == 0 {
		t.Error("log file is empty")
	}
	// The run path writes sync rows through the base writer only; no
	// empty side file should appear next to the data log.
	if _, err := os.Stat(logPath + ".sync"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("unexpected %s.sync artifact (stat err = %v)", logPath, err)
	}
}

func TestNewWriters_SyncOnlyFile(t *testing.T) {
	syncPath := filepath.Join(t.TempDir(), "rover_sync.json")

	w, cleanup, err := newWriters(true, false, true, syncPath)
	if err != nil {
		t.Fatalf("newWriters: %v", err)
	}

	if err := w.WriteSync(telemetry.SyncRow{SessionID: "s1", Attempt: 1, OK: true}); err != nil {
		t.Fatalf("WriteSync: %v", err)
	}
	// Log entries must not leak into the sync attempt file.
	if err := w.Write(telemetry.LogEntry{RoverID: "r1"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	cleanup()

	data, err := os.ReadFile(syncPath)
	if err != nil {
		t.Fatalf("read sync file: %v", err)
	}
	if got := len(data); got == 0 {
		t.Fatal("sync file is empty")
	}
	if lines := countLines(data); lines != 1 {
		t.Errorf("sync file has %d lines, want 1", lines)
	}
}

func countLines(data []byte) int {
	n := 0
	for _, b := range data {
		if b == '\n' {
			n++
		}
	}
	return n
}
