package scenario

import (
	"context"
	"log/slog"
	"time"

	"pipeops-sim/internal/health"
)

// Player drives a scenario against the health store, applying each phase's
// segment conditions and advancing on time triggers.
type Player struct {
	scenario *Scenario
	store    *health.Store
	log      *slog.Logger
	tick     func(time.Duration) <-chan time.Time
}

// NewPlayer creates a Player. A nil tick uses one-second wall-clock ticks;
// tests inject their own to avoid waiting.
func NewPlayer(sc *Scenario, store *health.Store, log *slog.Logger, tick func(time.Duration) <-chan time.Time) *Player {
	if log == nil {
		log = slog.Default()
	}
	if tick == nil {
		tick = time.After
	}
	return &Player{scenario: sc, store: store, log: log, tick: tick}
}

// Run plays the scenario until its terminal phase is reached or ctx is done.
// The terminal phase's conditions stay applied after Run returns.
func (p *Player) Run(ctx context.Context) error {
	current := p.scenario.Phases[0]
	p.enterPhase(current)

	elapsed := 0
	for {
		if len(current.Triggers) == 0 {
			p.log.Info("scenario reached terminal phase", "scenario", p.scenario.Name, "phase", current.Name)
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.tick(time.Second):
			elapsed++
			next, ok := p.scenario.NextPhase(current.Name, Event{Type: EventTimeElapsed, Value: elapsed})
			if !ok {
				continue
			}
			ph, found := p.scenario.Phase(next)
			if !found {
				p.log.Warn("scenario trigger names unknown phase", "phase", next)
				return nil
			}
			current = ph
			elapsed = 0
			p.enterPhase(current)
		}
	}
}

func (p *Player) enterPhase(ph Phase) {
	snap := make(health.Snapshot, len(ph.Segments))
	for key, cond := range ph.Segments {
		drivers := make([]health.Driver, 0, len(cond.Drivers))
		for _, name := range cond.Drivers {
			drivers = append(drivers, health.Driver{Name: name})
		}
		snap[key] = health.SegmentHealth{Score: cond.Score, Drivers: drivers}
	}
	id := p.store.Apply(snap)
	p.log.Info("scenario phase applied",
		"scenario", p.scenario.Name, "phase", ph.Name, "segments", len(snap), "update_id", id)
}
