package rover

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"roverd/internal/telemetry"
)

// ReplayLog replays log entries from r to writer. A speed > 0 preserves
// the recorded pacing (scaled by speed); speed <= 0 replays without
// artificial delay.
func ReplayLog(r io.Reader, writer LogWriter, speed float64) error {
	dec := json.NewDecoder(r)
	var prev time.Time
	for {
		var entry telemetry.LogEntry
		if err := dec.Decode(&entry); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if !prev.IsZero() && speed > 0 {
			diff := entry.Timestamp.Sub(prev)
			if speed != 1 {
				diff = time.Duration(float64(diff) / speed)
			}
			if diff > 0 {
				time.Sleep(diff)
			}
		}
		if err := writer.Write(entry); err != nil {
			return err
		}
		prev = entry.Timestamp
	}
}

// ReplayLogFile opens a recorded data log and replays its entries.
func ReplayLogFile(path string, writer LogWriter, speed float64) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return ReplayLog(f, writer, speed)
}
