package sim

import (
	"encoding/json"
	"os"

	"pipeops-sim/internal/telemetry"
)

// FileWriter writes telemetry and history data to JSONL files.
type FileWriter struct {
	teleFile *os.File
	histFile *os.File
	teleEnc  *json.Encoder
	histEnc  *json.Encoder
}

// NewFileWriter creates a FileWriter. historyPath may be empty to skip the
// history log.
func NewFileWriter(telemetryPath, historyPath string) (*FileWriter, error) {
	tf, err := os.Create(telemetryPath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{teleFile: tf, teleEnc: json.NewEncoder(tf)}
	if historyPath != "" {
		hf, err := os.Create(historyPath)
		if err != nil {
			tf.Close()
			return nil, err
		}
		fw.histFile = hf
		fw.histEnc = json.NewEncoder(hf)
	}
	return fw, nil
}

// Write logs a single reading.
func (f *FileWriter) Write(row telemetry.SensorReading) error {
	return f.teleEnc.Encode(row)
}

// WriteBatch logs multiple readings.
func (f *FileWriter) WriteBatch(rows []telemetry.SensorReading) error {
	for _, r := range rows {
		if err := f.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteHistory logs a history sample, if enabled.
func (f *FileWriter) WriteHistory(entry telemetry.HistoryEntry) error {
	if f.histEnc == nil {
		return nil
	}
	return f.histEnc.Encode(entry)
}

// Close closes any underlying files.
func (f *FileWriter) Close() error {
	var err error
	if f.teleFile != nil {
		if e := f.teleFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	if f.histFile != nil {
		if e := f.histFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
