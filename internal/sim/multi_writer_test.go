package sim

import (
	"testing"

	"pipeops-sim/internal/telemetry"
)

func TestMultiWriter_FansOut(t *testing.T) {
	a := &MockWriter{}
	b := &MockWriter{}
	mw := NewMultiWriter(a, b)

	if err := mw.Write(sampleReading("node-a")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(a.Rows) != 1 || len(b.Rows) != 1 {
		t.Fatalf("rows = %d/%d, want 1/1", len(a.Rows), len(b.Rows))
	}
}

func TestMultiWriter_BatchPrefersBatchWriter(t *testing.T) {
	plain := &MockWriter{}
	batch := &MockBatchWriter{}
	mw := NewMultiWriter(plain, batch)

	rows := []telemetry.SensorReading{sampleReading("node-a"), sampleReading("node-b")}
	if err := mw.WriteBatch(rows); err != nil {
		t.Fatalf("WriteBatch: %v", err)
	}
	if len(plain.Rows) != 2 {
		t.Errorf("plain writer rows = %d, want 2", len(plain.Rows))
	}
	if batch.Batches != 1 {
		t.Errorf("batch writer calls = %d, want 1", batch.Batches)
	}
	if len(batch.Rows) != 2 {
		t.Errorf("batch writer rows = %d, want 2", len(batch.Rows))
	}
}

func TestMultiWriter_HistoryOnlyToHistoryWriters(t *testing.T) {
	plain := &MockWriter{}
	hist := &MockBatchWriter{}
	mw := NewMultiWriter(plain, hist)

	if err := mw.WriteHistory(telemetry.HistoryEntry{NodeID: "node-a"}); err != nil {
		t.Fatalf("WriteHistory: %v", err)
	}
	if len(hist.History) != 1 {
		t.Fatalf("history samples = %d, want 1", len(hist.History))
	}
}
