package telemetry

import (
	"strings"

	"pipeops-sim/internal/health"
)

// DriverClasses flags which degradation categories are active for a segment.
// Categories are additive, not mutually exclusive: a driver named
// "Moderate Corrosion Buildup" is both corrosion-like and blockage-like.
type DriverClasses struct {
	Leak      bool
	Blockage  bool
	Corrosion bool
	Vibration bool
}

// ClassifyDrivers maps free-text driver names onto degradation categories by
// keyword match.
func ClassifyDrivers(drivers []health.Driver) DriverClasses {
	var c DriverClasses
	for _, d := range drivers {
		name := strings.ToLower(d.Name)
		if strings.Contains(name, "leak") || strings.Contains(name, "failure") {
			c.Leak = true
		}
		if strings.Contains(name, "clog") || strings.Contains(name, "buildup") {
			c.Blockage = true
		}
		if strings.Contains(name, "corrosion") {
			c.Corrosion = true
		}
		if strings.Contains(name, "vibration") {
			c.Vibration = true
		}
	}
	return c
}
