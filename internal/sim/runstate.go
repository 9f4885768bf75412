package sim

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"pipeops-sim/internal/metrics"
)

// RunState is the tick-gating state of the simulation.
type RunState int

const (
	StatePaused RunState = iota
	StateStarting
	StateRunning
)

func (s RunState) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	default:
		return "paused"
	}
}

// ErrResumeInterrupted is returned by Resume when a pause request supersedes
// the pending startup delay.
var ErrResumeInterrupted = errors.New("sim: resume interrupted by pause")

// Controller owns the pause/resume ("diagnostics") workflow. Resume holds the
// engine in Starting for a fixed delay before Running; Pause is immediate and
// cancels a pending startup.
type Controller struct {
	delay time.Duration
	after func(time.Duration) <-chan time.Time
	log   *slog.Logger

	mu    sync.Mutex
	state RunState
	gen   uint64
	ready chan struct{}
}

// NewController creates a Controller in the Paused state. A nil after uses
// real timers; tests inject their own to avoid waiting.
func NewController(delay time.Duration, after func(time.Duration) <-chan time.Time, log *slog.Logger) *Controller {
	if after == nil {
		after = time.After
	}
	if log == nil {
		log = slog.Default()
	}
	metrics.RunState.Set(float64(StatePaused))
	return &Controller{delay: delay, after: after, log: log}
}

// State returns the current run state.
func (c *Controller) State() RunState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Running reports whether ticks should be produced.
func (c *Controller) Running() bool {
	return c.State() == StateRunning
}

// Pause transitions to Paused immediately, superseding a pending
// Starting→Running timer if one is active.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	if c.ready != nil {
		// Wake Resume callers so they can observe the interruption.
		close(c.ready)
		c.ready = nil
	}
	if c.state != StatePaused {
		c.log.Info("simulation paused")
	}
	c.state = StatePaused
	metrics.RunState.Set(float64(StatePaused))
}

// Resume requests the Paused→Starting→Running transition and blocks until
// Running is reached, the startup is superseded by Pause, or ctx is done.
// Calling Resume while already Running returns immediately.
func (c *Controller) Resume(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case StateRunning:
		c.mu.Unlock()
		return nil

	case StatePaused:
		c.state = StateStarting
		c.gen++
		c.ready = make(chan struct{})
		gen := c.gen
		ready := c.ready
		metrics.RunState.Set(float64(StateStarting))
		c.log.Info("diagnostics started", "delay", c.delay)
		go c.completeStartup(gen, ready)
		c.mu.Unlock()
		return c.wait(ctx, ready)

	default: // StateStarting: join the in-flight startup.
		ready := c.ready
		c.mu.Unlock()
		return c.wait(ctx, ready)
	}
}

func (c *Controller) completeStartup(gen uint64, ready chan struct{}) {
	<-c.after(c.delay)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen || c.state != StateStarting {
		// A pause superseded this startup; the timer result is stale.
		return
	}
	c.state = StateRunning
	c.ready = nil
	metrics.RunState.Set(float64(StateRunning))
	c.log.Info("diagnostics complete, simulation running")
	close(ready)
}

func (c *Controller) wait(ctx context.Context, ready chan struct{}) error {
	select {
	case <-ready:
		if c.State() == StateRunning {
			return nil
		}
		return ErrResumeInterrupted
	case <-ctx.Done():
		return ctx.Err()
	}
}
