package rover

import (
	"encoding/json"
	"os"

	"roverd/internal/telemetry"
)

// FileWriter writes log entries and sync rows to JSONL files. The log
// entry file is the rover_data_log.json artifact the sync loop mirrors.
type FileWriter struct {
	logFile  *os.File
	syncFile *os.File
	logEnc   *json.Encoder
	syncEnc  *json.Encoder
}

// NewFileWriter creates a FileWriter. syncPath may be empty to skip the
// sync attempt log.
func NewFileWriter(logPath, syncPath string) (*FileWriter, error) {
	lf, err := os.Create(logPath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{logFile: lf, logEnc: json.NewEncoder(lf)}
	if syncPath != "" {
		sf, err := os.Create(syncPath)
		if err != nil {
			lf.Close()
			return nil, err
		}
		fw.syncFile = sf
		fw.syncEnc = json.NewEncoder(sf)
	}
	return fw, nil
}

// NewSyncFileWriter creates a FileWriter that records only sync attempt
// rows, for the mirror loop running without a rover.
func NewSyncFileWriter(syncPath string) (*FileWriter, error) {
	sf, err := os.Create(syncPath)
	if err != nil {
		return nil, err
	}
	return &FileWriter{syncFile: sf, syncEnc: json.NewEncoder(sf)}, nil
}

// Write logs a single log entry, if enabled.
func (f *FileWriter) Write(entry telemetry.LogEntry) error {
	if f.logEnc == nil {
		return nil
	}
	return f.logEnc.Encode(entry)
}

// WriteSync logs a sync attempt row, if enabled.
func (f *FileWriter) WriteSync(row telemetry.SyncRow) error {
	if f.syncEnc == nil {
		return nil
	}
	return f.syncEnc.Encode(row)
}

// Close closes the underlying files.
func (f *FileWriter) Close() error {
	var err error
	if f.logFile != nil {
		if e := f.logFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	if f.syncFile != nil {
		if e := f.syncFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
