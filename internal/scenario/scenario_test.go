package scenario

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"pipeops-sim/internal/health"
)

func TestLoad_ParsesYAML(t *testing.T) {
	doc := `
name: Test Arc
description: two phase arc
phases:
  - name: start
    segments:
      A-B:
        score: 90
        drivers: ["Surface Corrosion"]
    triggers:
      - event: time_elapsed
        value: 10
        next: end
  - name: end
    segments:
      A-B:
        score: 50
        drivers: ["Active Leak"]
`
	path := filepath.Join(t.TempDir(), "arc.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write scenario: %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "Test Arc" {
		t.Errorf("name = %q, want Test Arc", s.Name)
	}
	if len(s.Phases) != 2 {
		t.Fatalf("phases = %d, want 2", len(s.Phases))
	}
	cond := s.Phases[0].Segments["A-B"]
	if cond.Score != 90 || len(cond.Drivers) != 1 {
		t.Errorf("phase 0 A-B = %+v, want score 90 with one driver", cond)
	}
}

func TestLoad_RejectsEmptyScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, []byte("name: hollow\n"), 0o644); err != nil {
		t.Fatalf("write scenario: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for scenario without phases")
	}
}

func TestNextPhase_TriggersOnThreshold(t *testing.T) {
	s := BuiltIn()["rupture"]

	if _, ok := s.NextPhase("baseline", Event{Type: EventTimeElapsed, Value: 10}); ok {
		t.Error("trigger fired below its threshold")
	}
	next, ok := s.NextPhase("baseline", Event{Type: EventTimeElapsed, Value: 30})
	if !ok || next != "surge" {
		t.Errorf("NextPhase = %q/%v, want surge/true", next, ok)
	}
	if _, ok := s.NextPhase("rupture", Event{Type: EventTimeElapsed, Value: 9999}); ok {
		t.Error("terminal phase produced a transition")
	}
}

func TestBuiltIn_ContainsGoldenArcs(t *testing.T) {
	arcs := BuiltIn()
	for _, name := range []string{"steady-state", "creeping-corrosion", "rupture", "fatigue"} {
		s, ok := arcs[name]
		if !ok {
			t.Errorf("missing built-in scenario %q", name)
			continue
		}
		if len(s.Phases) == 0 {
			t.Errorf("scenario %q has no phases", name)
		}
		last := s.Phases[len(s.Phases)-1]
		if len(last.Triggers) != 0 {
			t.Errorf("scenario %q final phase %q is not terminal", name, last.Name)
		}
	}
}

func TestPlayer_AppliesPhasesInOrder(t *testing.T) {
	s := BuiltIn()["rupture"]
	store := health.NewStore(nil)

	ticks := make(chan time.Time)
	player := NewPlayer(&s, store, nil, func(time.Duration) <-chan time.Time { return ticks })

	done := make(chan error, 1)
	go func() { done <- player.Run(context.Background()) }()

	waitForScore(t, store, "C-D", 98)

	// Advance to the surge phase.
	for i := 0; i < 30; i++ {
		ticks <- time.Now()
	}
	waitForScore(t, store, "C-D", 80)

	// Advance to the terminal rupture phase.
	for i := 0; i < 45; i++ {
		ticks <- time.Now()
	}
	waitForScore(t, store, "C-D", 25)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("player did not finish after the terminal phase")
	}

	drivers := store.Snapshot().Segment("C-D").Drivers
	if len(drivers) != 2 || drivers[0].Name != "Active Leak" {
		t.Errorf("terminal drivers = %+v, want Active Leak first", drivers)
	}
}

func TestPlayer_StopsOnContextCancel(t *testing.T) {
	s := BuiltIn()["creeping-corrosion"]
	store := health.NewStore(nil)
	player := NewPlayer(&s, store, nil, func(time.Duration) <-chan time.Time {
		return make(chan time.Time) // never ticks
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- player.Run(ctx) }()

	waitForScore(t, store, "B-C", 96)
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("player did not stop on cancel")
	}
}

func waitForScore(t *testing.T, store *health.Store, key string, want float64) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if store.Snapshot().Segment(key).Score == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("segment %s never reached score %v (at %v)", key, want, store.Snapshot().Segment(key).Score)
}
