package rover

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"roverd/internal/telemetry"
)

func TestFileWriter_WritesJSONLines(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "rover_data_log.json")
	syncPath := filepath.Join(dir, "rover_sync.json")

	fw, err := NewFileWriter(logPath, syncPath)
	if err != nil {
		t.Fatalf("NewFileWriter: %v", err)
	}

	entries := []telemetry.LogEntry{
		{RoverID: "rover-01-x", Action: telemetry.ActionForward, Timestamp: time.Now().UTC()},
		{RoverID: "rover-01-x", Action: telemetry.ActionStop, Timestamp: time.Now().UTC()},
	}
	for _, e := range entries {
		if err := fw.Write(e); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	row := telemetry.SyncRow{SessionID: "s1", Attempt: 1, OK: true, Timestamp: time.Now().UTC()}
	if err := fw.WriteSync(row); err != nil {
		t.Fatalf("WriteSync: %v", err)
	}
	if err := fw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(logPath)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var got []telemetry.LogEntry
	for scanner.Scan() {
		var e telemetry.LogEntry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("unmarshal line: %v", err)
		}
		got = append(got, e)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 log lines, got %d", len(got))
	}
	if got[1].Action != telemetry.ActionStop {
		t.Errorf("second entry action = %q", got[1].Action)
	}

	syncData, err := os.ReadFile(syncPath)
	if err != nil {
		t.Fatalf("read sync file: %v", err)
	}
	var gotRow telemetry.SyncRow
	if err := json.Unmarshal(syncData, &gotRow); err != nil {
		t.Fatalf("unmarshal sync row: %v", err)
	}
	if gotRow.SessionID != "s1" || !gotRow.OK {
		t.Errorf("unexpected sync row: %+v", gotRow)
	}
}

func TestFileWriter_SyncOnly(t *testing.T) {
	dir := t.TempDir()
	syncPath := filepath.Join(dir, "rover_sync.json")

	fw, err := NewSyncFileWriter(syncPath)
	if err != nil {
		t.Fatalf("NewSyncFileWriter: %v", err)
	}
	defer fw.Close()

	// Log entries are silently dropped without a log file.
	if err := fw.Write(telemetry.LogEntry{RoverID: "r"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := fw.WriteSync(telemetry.SyncRow{SessionID: "s2"}); err != nil {
		t.Fatalf("WriteSync: %v", err)
	}

	data, err := os.ReadFile(syncPath)
	if err != nil {
		t.Fatalf("read sync file: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("sync file is empty")
	}
}
