package sim

import (
	"context"
	"time"

	"pipeops-sim/internal/logging"
	"pipeops-sim/internal/metrics"
	"pipeops-sim/internal/telemetry"
)

// Run starts the simulation loop and stops when the context is done. Ticks
// fire on a fixed period but are no-ops unless the controller is Running.
func (s *Simulator) Run(ctx context.Context) {
	log := logging.FromContext(ctx)
	log.Info("starting simulator", "tick_interval", s.tickInterval, "run_state", s.ctrl.State().String())
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !s.ctrl.Running() {
				continue
			}
			s.tick(ctx)
		case <-ctx.Done():
			log.Info("stopping simulator")
			return
		}
	}
}

// tick computes the next reading set, records history, writes rows to the
// sinks, and broadcasts the snapshot. All nodes are updated before anything
// is published.
func (s *Simulator) tick(ctx context.Context) {
	log := logging.FromContext(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.healthStore.Snapshot()
	now := s.now()
	rows := s.teleGen.GenerateTick(s.pipe, s.states, snap, s.rng, now)

	ref := rows[0]
	entry := telemetry.HistoryEntry{
		NodeID:      ref.NodeID,
		Pressure:    ref.Pressure,
		Flow:        ref.Flow,
		Temperature: ref.Temperature,
		Vibration:   ref.Vibration,
		Acoustic:    ref.Acoustic,
		Corrosion:   ref.Corrosion,
		Status:      ref.Status,
		Timestamp:   ref.Timestamp,
	}
	s.history.Append(entry)
	s.tickCount++
	metrics.TicksTotal.Inc()

	published := s.buildSnapshotLocked()
	published.Nodes = rows
	s.latest = published

	// Batch support if writer implements WriteBatch
	if bw, ok := s.writer.(batchWriter); ok {
		if err := bw.WriteBatch(rows); err != nil {
			log.Error("batch write failed", "err", err)
			metrics.WriteErrorsTotal.WithLabelValues("primary").Inc()
		}
	} else {
		for _, row := range rows {
			if err := s.writer.Write(row); err != nil {
				log.Error("write failed", "node_id", row.NodeID, "err", err)
				metrics.WriteErrorsTotal.WithLabelValues("primary").Inc()
			}
		}
	}
	if hw, ok := s.writer.(historyWriter); ok {
		if err := hw.WriteHistory(entry); err != nil {
			log.Error("history write failed", "err", err)
			metrics.WriteErrorsTotal.WithLabelValues("history").Inc()
		}
	}

	for _, ch := range s.subs {
		select {
		case ch <- published:
		default:
			// Buffer full: drop the oldest snapshot so the subscriber
			// always converges on recent state.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- published:
			default:
			}
		}
	}
}

func setSubscriberGauge(n int) {
	metrics.Subscribers.Set(float64(n))
}
