package scenario

// BuiltIn returns the predefined degradation arcs. Segment keys follow the
// five-node demo topology (A through E).
func BuiltIn() map[string]Scenario {
	return map[string]Scenario{
		"steady-state": {
			Name:        "Steady State",
			Description: "All segments healthy; the engine settles on baseline hydraulics.",
			Phases: []Phase{
				{
					Name:        "steady",
					Description: "Nominal operation across the whole line.",
					Segments: map[string]SegmentCondition{
						"A-B": {Score: 98},
						"B-C": {Score: 97},
						"C-D": {Score: 98},
						"D-E": {Score: 96},
					},
				},
			},
		},
		"creeping-corrosion": {
			Name:        "Creeping Corrosion",
			Description: "Segment B-C loses wall thickness over time until readings turn critical.",
			Phases: []Phase{
				{
					Name:        "baseline",
					Description: "Early service life, corrosion within allowance.",
					Segments: map[string]SegmentCondition{
						"B-C": {Score: 96, Drivers: []string{"Surface Corrosion"}},
					},
					Triggers: []Trigger{{Event: EventTimeElapsed, Value: 60, Next: "creep"}},
				},
				{
					Name:        "creep",
					Description: "Corrosion rate accelerates; warning thresholds are crossed.",
					Segments: map[string]SegmentCondition{
						"B-C": {Score: 85, Drivers: []string{"Fast Corrosion"}},
					},
					Triggers: []Trigger{{Event: EventTimeElapsed, Value: 120, Next: "advanced"}},
				},
				{
					Name:        "advanced",
					Description: "Wall loss is severe enough to destabilize the segment.",
					Segments: map[string]SegmentCondition{
						"B-C": {Score: 68, Drivers: []string{"Fast Corrosion", "Wall Thinning"}},
					},
				},
			},
		},
		"rupture": {
			Name:        "Rupture",
			Description: "A pressure surge on segment C-D escalates into an open leak.",
			Phases: []Phase{
				{
					Name:        "baseline",
					Description: "Line operating normally before the surge.",
					Segments: map[string]SegmentCondition{
						"C-D": {Score: 98},
					},
					Triggers: []Trigger{{Event: EventTimeElapsed, Value: 30, Next: "surge"}},
				},
				{
					Name:        "surge",
					Description: "Transient overpressure stresses the joint.",
					Segments: map[string]SegmentCondition{
						"C-D": {Score: 80, Drivers: []string{"Pressure Surge"}},
					},
					Triggers: []Trigger{{Event: EventTimeElapsed, Value: 45, Next: "rupture"}},
				},
				{
					Name:        "rupture",
					Description: "Joint failure with an active leak downstream of C.",
					Segments: map[string]SegmentCondition{
						"C-D": {Score: 25, Drivers: []string{"Active Leak", "Joint Failure"}},
					},
				},
			},
		},
		"fatigue": {
			Name:        "Fatigue",
			Description: "Cyclic loading on segment D-E raises vibration without hydraulic loss.",
			Phases: []Phase{
				{
					Name:        "baseline",
					Description: "Stable operation with normal cyclic stress.",
					Segments: map[string]SegmentCondition{
						"D-E": {Score: 97},
					},
					Triggers: []Trigger{{Event: EventTimeElapsed, Value: 90, Next: "fatigue"}},
				},
				{
					Name:        "fatigue",
					Description: "Accumulated cycles show up as elevated vibration.",
					Segments: map[string]SegmentCondition{
						"D-E": {Score: 88, Drivers: []string{"Vibration Fatigue"}},
					},
				},
			},
		},
	}
}
