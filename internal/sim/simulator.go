// Simulator orchestrating pipeline nodes and telemetry ticks
package sim

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"pipeops-sim/internal/config"
	"pipeops-sim/internal/health"
	"pipeops-sim/internal/telemetry"
	"pipeops-sim/internal/topology"
)

// TelemetryWriter is an interface to support different output writers.
type TelemetryWriter interface {
	Write(telemetry.SensorReading) error
}

// Optional: Writers can also support batch mode
type batchWriter interface {
	WriteBatch([]telemetry.SensorReading) error
}

// Optional: Writers can record the per-tick history sample
type historyWriter interface {
	WriteHistory(telemetry.HistoryEntry) error
}

// TickSnapshot is the full, internally consistent state published to
// subscribers after each tick. Readers never see a partially updated set.
type TickSnapshot struct {
	Tick      uint64                    `json:"tick"`
	Timestamp time.Time                 `json:"ts"`
	RunState  string                    `json:"run_state"`
	Nodes     []telemetry.SensorReading `json:"nodes"`
	Health    health.Snapshot           `json:"health"`
	History   []telemetry.HistoryEntry  `json:"history"`
}

// Simulator owns the node states and drives the cascade once per tick. All
// mutation happens on the tick goroutine; observers get immutable snapshots.
type Simulator struct {
	pipelineID   string
	pipe         *topology.Pipeline
	teleGen      *telemetry.Generator
	healthStore  *health.Store
	writer       TelemetryWriter
	ctrl         *Controller
	tickInterval time.Duration
	rng          *rand.Rand
	now          func() time.Time

	mu        sync.Mutex
	states    []*telemetry.NodeState
	history   *History
	tickCount uint64
	latest    TickSnapshot
	subs      map[string]chan TickSnapshot
}

// NewSimulator initializes node states from the validated topology. rng and
// now may be nil, in which case a time-seeded source and time.Now are used.
func NewSimulator(cfg *config.SimulationConfig, pipe *topology.Pipeline, store *health.Store, writer TelemetryWriter, rng *rand.Rand, now func() time.Time) *Simulator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if now == nil {
		now = time.Now
	}
	s := &Simulator{
		pipelineID:   cfg.PipelineID,
		pipe:         pipe,
		teleGen:      telemetry.NewGenerator(cfg.PipelineID),
		healthStore:  store,
		writer:       writer,
		ctrl:         NewController(cfg.StartupDelay.Std(), nil, nil),
		tickInterval: cfg.TickInterval.Std(),
		rng:          rng,
		now:          now,
		states:       telemetry.NewNodeStates(pipe),
		history:      NewHistory(cfg.HistoryCapacity),
		subs:         make(map[string]chan TickSnapshot),
	}
	s.latest = s.buildSnapshotLocked()
	return s
}

// Controller exposes the run-state controller for the control surface.
func (s *Simulator) Controller() *Controller {
	return s.ctrl
}

// Subscribe registers a snapshot observer and returns its id and channel.
// Slow subscribers never block the tick; the oldest buffered snapshot is
// dropped when a buffer fills up.
func (s *Simulator) Subscribe(buffer int) (string, <-chan TickSnapshot) {
	if buffer <= 0 {
		buffer = 1
	}
	id := uuid.New().String()
	ch := make(chan TickSnapshot, buffer)
	s.mu.Lock()
	s.subs[id] = ch
	n := len(s.subs)
	s.mu.Unlock()
	setSubscriberGauge(n)
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (s *Simulator) Unsubscribe(id string) {
	s.mu.Lock()
	ch, ok := s.subs[id]
	if ok {
		delete(s.subs, id)
	}
	n := len(s.subs)
	s.mu.Unlock()
	if ok {
		close(ch)
	}
	setSubscriberGauge(n)
}

// Snapshot returns the latest published tick snapshot. Before the first
// active tick it reflects the initial node states.
func (s *Simulator) Snapshot() TickSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.latest
	snap.RunState = s.ctrl.State().String()
	return snap
}

// HistoryEntries returns the trend window in chronological order.
func (s *Simulator) HistoryEntries() []telemetry.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Entries()
}

// HealthStore returns the health feed store the engine reads from.
func (s *Simulator) HealthStore() *health.Store {
	return s.healthStore
}

// buildSnapshotLocked assembles a TickSnapshot from current state. Callers
// must hold s.mu (or, in NewSimulator, have exclusive access).
func (s *Simulator) buildSnapshotLocked() TickSnapshot {
	rows := make([]telemetry.SensorReading, 0, len(s.states))
	ts := s.now().UTC()
	for _, n := range s.states {
		rows = append(rows, telemetry.SensorReading{
			PipelineID:  s.pipelineID,
			NodeID:      n.ID,
			Name:        n.Name,
			Location:    n.Location,
			Lat:         n.Lat,
			Lon:         n.Lon,
			Pressure:    n.Pressure,
			Flow:        n.Flow,
			Temperature: n.Temperature,
			Vibration:   n.Vibration,
			Acoustic:    n.Acoustic,
			Corrosion:   n.Corrosion,
			Status:      n.Status,
			Timestamp:   ts,
		})
	}
	return TickSnapshot{
		Tick:      s.tickCount,
		Timestamp: ts,
		RunState:  s.ctrl.State().String(),
		Nodes:     rows,
		Health:    s.healthStore.Snapshot(),
		History:   s.history.Entries(),
	}
}
