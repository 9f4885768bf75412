// Scripted degradation arcs for demos and load tests. A scenario replaces the
// external scoring feed with staged per-segment health conditions.
package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a degradation arc with ordered phases and a description.
type Scenario struct {
	Name        string  `yaml:"name,omitempty"`
	Description string  `yaml:"description,omitempty"`
	Phases      []Phase `yaml:"phases"`
}

// Phase holds the segment conditions active during one stage of the arc and
// the triggers that advance it.
type Phase struct {
	Name        string                      `yaml:"name"`
	Description string                      `yaml:"description,omitempty"`
	Segments    map[string]SegmentCondition `yaml:"segments,omitempty"`
	Triggers    []Trigger                   `yaml:"triggers,omitempty"`
}

// SegmentCondition scores one segment and names its degradation drivers.
type SegmentCondition struct {
	Score   float64  `yaml:"score"`
	Drivers []string `yaml:"drivers,omitempty"`
}

// Trigger moves the scenario to another phase based on an event.
type Trigger struct {
	Event string `yaml:"event"`
	Value int    `yaml:"value"`
	Next  string `yaml:"next"`
}

// Event represents a runtime occurrence that may advance the scenario.
type Event struct {
	Type  string
	Value int
}

// EventTimeElapsed fires once per second with the seconds spent in the
// current phase.
const EventTimeElapsed = "time_elapsed"

// Load reads a YAML scenario definition from disk.
func Load(path string) (*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if len(s.Phases) == 0 {
		return nil, fmt.Errorf("scenario %q has no phases", s.Name)
	}
	return &s, nil
}

// Phase returns the named phase.
func (s *Scenario) Phase(name string) (Phase, bool) {
	for _, p := range s.Phases {
		if p.Name == name {
			return p, true
		}
	}
	return Phase{}, false
}

// NextPhase returns the name of the next phase given the current phase and
// event. If no trigger matches, ok is false.
func (s *Scenario) NextPhase(current string, ev Event) (next string, ok bool) {
	for _, p := range s.Phases {
		if p.Name != current {
			continue
		}
		for _, tr := range p.Triggers {
			if tr.Event == ev.Type && ev.Value >= tr.Value {
				return tr.Next, true
			}
		}
	}
	return "", false
}
