// Health feed boundary: segment health snapshots delivered by an external
// scoring model, swapped in wholesale and read by the cascade engine.
package health

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"pipeops-sim/internal/metrics"
)

// Driver is a named contributing cause of degradation for a segment.
type Driver struct {
	Name      string  `json:"name"`
	Category  string  `json:"category,omitempty"`
	Magnitude float64 `json:"magnitude,omitempty"`
	Severity  string  `json:"severity,omitempty"`
}

// SegmentHealth is the scored condition of one pipe segment.
type SegmentHealth struct {
	Score   float64  `json:"health_score"`
	Drivers []Driver `json:"drivers,omitempty"`
}

// Snapshot maps segment keys (e.g. "A-B") to their latest health. Snapshots
// are immutable once applied; segments absent from the map are healthy.
type Snapshot map[string]SegmentHealth

// Perfect is the health assumed for segments the feed has never scored.
func Perfect() SegmentHealth {
	return SegmentHealth{Score: 100}
}

// Segment looks up a segment's health, defaulting to perfect when absent.
func (s Snapshot) Segment(key string) SegmentHealth {
	if s == nil {
		return Perfect()
	}
	if h, ok := s[key]; ok {
		return h
	}
	return Perfect()
}

// Update is one applied feed delivery.
type Update struct {
	ID         string
	Snapshot   Snapshot
	ReceivedAt time.Time
}

// Store holds the most recent health snapshot. Updates replace the snapshot
// wholesale so the engine never observes a partially merged state.
type Store struct {
	cur atomic.Pointer[Update]
	log *slog.Logger
	now func() time.Time
}

// NewStore creates a Store with an empty snapshot (all segments perfect).
func NewStore(log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	s := &Store{log: log, now: time.Now}
	s.cur.Store(&Update{ID: uuid.New().String(), Snapshot: Snapshot{}, ReceivedAt: time.Time{}})
	return s
}

// Snapshot returns the latest applied snapshot. Never nil.
func (s *Store) Snapshot() Snapshot {
	return s.cur.Load().Snapshot
}

// Last returns the latest applied update including feed metadata.
func (s *Store) Last() Update {
	return *s.cur.Load()
}

// Apply swaps in a new snapshot after clamping scores into [0, 100].
// It returns the update id assigned to the delivery.
func (s *Store) Apply(snap Snapshot) string {
	clean := make(Snapshot, len(snap))
	for key, h := range snap {
		if h.Score < 0 {
			h.Score = 0
		} else if h.Score > 100 {
			h.Score = 100
		}
		clean[key] = h
	}
	u := &Update{ID: uuid.New().String(), Snapshot: clean, ReceivedAt: s.now().UTC()}
	s.cur.Store(u)
	metrics.HealthUpdatesTotal.Inc()
	return u.ID
}

// updateEnvelope keeps per-segment payloads raw so a single malformed entry
// cannot poison the rest of the delivery.
type updateEnvelope struct {
	Segments map[string]json.RawMessage `json:"segments"`
}

// ApplyRaw decodes a feed message and applies it. A segment entry that fails
// to decode is reset to perfect health and logged; a message without a
// decodable envelope is rejected entirely and the last good snapshot stays
// active.
func (s *Store) ApplyRaw(data []byte) error {
	var env updateEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		metrics.HealthMalformedTotal.Inc()
		return fmt.Errorf("health: decode update envelope: %w", err)
	}
	if env.Segments == nil {
		metrics.HealthMalformedTotal.Inc()
		return fmt.Errorf("health: update has no segments field")
	}
	snap := make(Snapshot, len(env.Segments))
	for key, raw := range env.Segments {
		var h SegmentHealth
		if err := json.Unmarshal(raw, &h); err != nil {
			s.log.Warn("malformed segment health, defaulting to perfect",
				"segment", key, "err", err)
			metrics.HealthMalformedTotal.Inc()
			snap[key] = Perfect()
			continue
		}
		snap[key] = h
	}
	s.Apply(snap)
	return nil
}
