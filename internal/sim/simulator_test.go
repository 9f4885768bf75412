package sim

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"pipeops-sim/internal/config"
	"pipeops-sim/internal/health"
	"pipeops-sim/internal/telemetry"
	"pipeops-sim/internal/topology"
)

// MockWriter collects sensor readings for validation
type MockWriter struct {
	Rows []telemetry.SensorReading
}

func (w *MockWriter) Write(row telemetry.SensorReading) error {
	w.Rows = append(w.Rows, row)
	return nil
}

// MockBatchWriter also records batch and history calls.
type MockBatchWriter struct {
	MockWriter
	Batches int
	History []telemetry.HistoryEntry
}

func (w *MockBatchWriter) WriteBatch(rows []telemetry.SensorReading) error {
	w.Batches++
	w.Rows = append(w.Rows, rows...)
	return nil
}

func (w *MockBatchWriter) WriteHistory(entry telemetry.HistoryEntry) error {
	w.History = append(w.History, entry)
	return nil
}

func testConfig() *config.SimulationConfig {
	return &config.SimulationConfig{
		PipelineID: "pipeline-test",
		Nodes: []config.NodeConfig{
			{ID: "node-a", Name: "Inlet"},
			{ID: "node-b", Name: "Mid"},
			{ID: "node-c", Name: "Outlet"},
		},
		TickInterval:    config.Duration(time.Second),
		StartupDelay:    config.Duration(time.Second),
		HistoryCapacity: 5,
	}
}

func newTestSimulator(t *testing.T, writer TelemetryWriter) *Simulator {
	t.Helper()
	cfg := testConfig()
	nodes := make([]topology.Node, 0, len(cfg.Nodes))
	for _, n := range cfg.Nodes {
		nodes = append(nodes, topology.Node{ID: n.ID, Name: n.Name, Location: n.Location, Lat: n.Lat, Lon: n.Lon})
	}
	pipe, err := topology.New(cfg.PipelineID, nodes)
	if err != nil {
		t.Fatalf("topology.New: %v", err)
	}
	rng := rand.New(rand.NewSource(42))
	now := func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return NewSimulator(cfg, pipe, health.NewStore(nil), writer, rng, now)
}

func TestSimulator_TickGeneratesTelemetry(t *testing.T) {
	writer := &MockWriter{}
	sim := newTestSimulator(t, writer)

	// Run one tick manually
	sim.tick(context.Background())

	if len(writer.Rows) != 3 {
		t.Fatalf("expected telemetry for 3 nodes, got %d", len(writer.Rows))
	}
	for _, row := range writer.Rows {
		if row.NodeID == "" || row.PipelineID == "" {
			t.Errorf("reading has missing IDs: %+v", row)
		}
		if row.Status != telemetry.StatusNormal {
			t.Errorf("node %s status = %q, want %q", row.NodeID, row.Status, telemetry.StatusNormal)
		}
	}
}

func TestSimulator_TickUsesBatchAndHistoryWriters(t *testing.T) {
	writer := &MockBatchWriter{}
	sim := newTestSimulator(t, writer)

	sim.tick(context.Background())
	sim.tick(context.Background())

	if writer.Batches != 2 {
		t.Fatalf("WriteBatch calls = %d, want 2", writer.Batches)
	}
	if len(writer.Rows) != 6 {
		t.Fatalf("rows written = %d, want 6", len(writer.Rows))
	}
	if len(writer.History) != 2 {
		t.Fatalf("history samples = %d, want 2", len(writer.History))
	}
	// History tracks the reference node only.
	for _, e := range writer.History {
		if e.NodeID != "node-a" {
			t.Errorf("history node = %q, want node-a", e.NodeID)
		}
	}
}

func TestSimulator_SnapshotReflectsTicks(t *testing.T) {
	sim := newTestSimulator(t, &MockWriter{})

	before := sim.Snapshot()
	if before.Tick != 0 {
		t.Fatalf("initial snapshot tick = %d, want 0", before.Tick)
	}
	if before.RunState != "paused" {
		t.Fatalf("initial run state = %q, want paused", before.RunState)
	}
	if len(before.Nodes) != 3 {
		t.Fatalf("initial snapshot nodes = %d, want 3", len(before.Nodes))
	}

	sim.tick(context.Background())
	after := sim.Snapshot()
	if after.Tick != 1 {
		t.Fatalf("snapshot tick = %d, want 1", after.Tick)
	}
	if len(after.History) != 1 {
		t.Fatalf("snapshot history = %d entries, want 1", len(after.History))
	}
}

func TestSimulator_SubscribersReceiveSnapshots(t *testing.T) {
	sim := newTestSimulator(t, &MockWriter{})
	id, ch := sim.Subscribe(2)
	defer sim.Unsubscribe(id)

	sim.tick(context.Background())

	select {
	case snap := <-ch:
		if snap.Tick != 1 {
			t.Fatalf("received tick = %d, want 1", snap.Tick)
		}
		if len(snap.Nodes) != 3 {
			t.Fatalf("received nodes = %d, want 3", len(snap.Nodes))
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber never received a snapshot")
	}
}

func TestSimulator_SlowSubscriberDropsOldest(t *testing.T) {
	sim := newTestSimulator(t, &MockWriter{})
	id, ch := sim.Subscribe(1)
	defer sim.Unsubscribe(id)

	sim.tick(context.Background())
	sim.tick(context.Background())
	sim.tick(context.Background())

	// Only the most recent snapshot survives in a full buffer of one.
	snap := <-ch
	if snap.Tick != 3 {
		t.Fatalf("received tick = %d, want 3", snap.Tick)
	}
}

func TestSimulator_UnsubscribeClosesChannel(t *testing.T) {
	sim := newTestSimulator(t, &MockWriter{})
	id, ch := sim.Subscribe(1)
	sim.Unsubscribe(id)

	if _, ok := <-ch; ok {
		t.Fatal("channel still open after Unsubscribe")
	}

	// A tick after unsubscribe must not panic on the closed channel.
	sim.tick(context.Background())
}

func TestSimulator_HealthDegradationReachesTelemetry(t *testing.T) {
	writer := &MockWriter{}
	sim := newTestSimulator(t, writer)

	sim.HealthStore().Apply(health.Snapshot{
		"node-a-node-b": {Score: 40, Drivers: []health.Driver{{Name: "Active Leak"}}},
	})
	sim.tick(context.Background())

	var nodeA telemetry.SensorReading
	for _, row := range writer.Rows {
		if row.NodeID == "node-a" {
			nodeA = row
		}
	}
	if nodeA.Status != telemetry.StatusCritical {
		t.Fatalf("node-a status = %q, want %q", nodeA.Status, telemetry.StatusCritical)
	}
}
