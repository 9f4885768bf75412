package sim

import (
	"pipeops-sim/internal/telemetry"
)

// MultiWriter fans out readings and history samples to multiple writers.
type MultiWriter struct {
	writers []TelemetryWriter
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(writers ...TelemetryWriter) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write sends a reading to all writers.
func (mw *MultiWriter) Write(row telemetry.SensorReading) error {
	for _, w := range mw.writers {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteBatch sends multiple readings to all writers, using batch if supported.
func (mw *MultiWriter) WriteBatch(rows []telemetry.SensorReading) error {
	for _, w := range mw.writers {
		if bw, ok := w.(batchWriter); ok {
			if err := bw.WriteBatch(rows); err != nil {
				return err
			}
			continue
		}
		for _, r := range rows {
			if err := w.Write(r); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteHistory forwards a history sample to every writer that records them.
func (mw *MultiWriter) WriteHistory(entry telemetry.HistoryEntry) error {
	for _, w := range mw.writers {
		if hw, ok := w.(historyWriter); ok {
			if err := hw.WriteHistory(entry); err != nil {
				return err
			}
		}
	}
	return nil
}
