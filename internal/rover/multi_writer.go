package rover

import (
	"roverd/internal/syncer"
	"roverd/internal/telemetry"
)

// MultiWriter fans log entries and sync rows out to multiple writers.
type MultiWriter struct {
	logWriters  []LogWriter
	syncWriters []syncer.ResultWriter
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(lws []LogWriter, sws []syncer.ResultWriter) *MultiWriter {
	return &MultiWriter{logWriters: lws, syncWriters: sws}
}

// Write sends a log entry to all log writers.
func (mw *MultiWriter) Write(entry telemetry.LogEntry) error {
	for _, w := range mw.logWriters {
		if err := w.Write(entry); err != nil {
			return err
		}
	}
	return nil
}

// WriteSync sends a sync row to all sync writers.
func (mw *MultiWriter) WriteSync(row telemetry.SyncRow) error {
	for _, w := range mw.syncWriters {
		if err := w.WriteSync(row); err != nil {
			return err
		}
	}
	return nil
}
