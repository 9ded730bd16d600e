// Writer implementation printing log entries to STDOUT
package rover

import (
	"encoding/json"
	"fmt"

	"roverd/internal/telemetry"
)

// StdoutWriter prints log entries and sync rows to STDOUT as JSON lines.
type StdoutWriter struct{}

// Write outputs a single log entry.
func (w *StdoutWriter) Write(entry telemetry.LogEntry) error {
	data, _ := json.Marshal(entry)
	fmt.Println(string(data))
	return nil
}

// WriteSync outputs a sync attempt row.
func (w *StdoutWriter) WriteSync(row telemetry.SyncRow) error {
	data, _ := json.Marshal(row)
	fmt.Println(string(data))
	return nil
}
