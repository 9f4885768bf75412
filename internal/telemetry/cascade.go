package telemetry

import (
	"math/rand"
	"time"

	"pipeops-sim/internal/health"
	"pipeops-sim/internal/topology"
)

// Source ("pump") constants feeding the head of the pipeline each tick.
const (
	SourcePressureBar  = 5.5
	SourceFlowM3h      = 120.0
	SourceTemperatureC = 18.0
)

// Health thresholds for status classification and forced degradation.
const (
	CriticalHealthThreshold = 75.0
	WarningHealthThreshold  = 90.0
)

// Loss and target tuning. Loss terms scale with the segment damage factor;
// leaks bleed proportionally more flow than pressure.
const (
	frictionLossBar = 0.05

	leakPressureLossBar = 0.8
	leakFlowLossM3h     = 12.0
	backpressureBar     = 0.3

	vibrationIdleMmS        = 0.5
	vibrationDamageGain     = 4.0
	vibrationBlockageOffset = 0.8

	corrosionIdleMmY    = 0.02
	corrosionDamageGain = 0.3

	acousticIdleDb       = 30.0
	acousticLeakGain     = 25.0
	acousticBlockageGain = 8.0
)

// stream is the virtual fluid state propagated node to node. Losses applied
// at one segment are visible to every node downstream of it.
type stream struct {
	pressure    float64
	flow        float64
	temperature float64
}

// Generator computes the next reading set for a pipeline from the previous
// tick's node states and the latest health snapshot. It is deterministic up
// to the injected randomness.
type Generator struct {
	PipelineID string
}

// NewGenerator creates a cascade generator for a given pipeline.
func NewGenerator(pipelineID string) *Generator {
	return &Generator{PipelineID: pipelineID}
}

// NewNodeStates builds initial node states in cascade order.
func NewNodeStates(pipe *topology.Pipeline) []*NodeState {
	nodes := pipe.Nodes()
	states := make([]*NodeState, len(nodes))
	for i, n := range nodes {
		states[i] = &NodeState{
			ID:       n.ID,
			Name:     n.Name,
			Location: n.Location,
			Lat:      n.Lat,
			Lon:      n.Lon,
			Status:   StatusNormal,
		}
	}
	return states
}

// DamageFactor converts a health score into a normalized degradation
// magnitude in [0, 1].
func DamageFactor(score float64) float64 {
	d := (100 - score) / 100
	if d < 0 {
		return 0
	}
	if d > 1 {
		return 1
	}
	return d
}

// StatusForScore classifies a health score. The critical check takes
// precedence over the warning check.
func StatusForScore(score float64) string {
	switch {
	case score < CriticalHealthThreshold:
		return StatusCritical
	case score < WarningHealthThreshold:
		return StatusWarning
	default:
		return StatusNormal
	}
}

// GenerateTick advances every node one tick, mutating states in cascade order
// and returning the rows ready for the sinks. The terminal node has no
// outgoing segment and forwards the stream it received unchanged.
func (g *Generator) GenerateTick(pipe *topology.Pipeline, states []*NodeState, snap health.Snapshot, rng *rand.Rand, now time.Time) []SensorReading {
	st := stream{
		pressure:    SourcePressureBar,
		flow:        SourceFlowM3h,
		temperature: SourceTemperatureC,
	}

	rows := make([]SensorReading, 0, len(states))
	for i, node := range states {
		seg, hasSegment := pipe.OutgoingSegment(i)

		segHealth := health.Perfect()
		if hasSegment {
			segHealth = snap.Segment(seg.Key)
		}
		classes := ClassifyDrivers(segHealth.Drivers)
		damage := DamageFactor(segHealth.Score)
		critical := segHealth.Score < CriticalHealthThreshold

		if hasSegment {
			st.pressure -= frictionLossBar

			// A blockage masks the leak's pressure and flow losses; the
			// obstruction instead builds backpressure.
			if classes.Blockage {
				st.pressure += backpressureBar * damage
			} else if classes.Leak || critical {
				st.pressure -= leakPressureLossBar * damage
				st.flow -= leakFlowLossM3h * damage
			}

			st.pressure = clampNonNegative(st.pressure)
			st.flow = clampNonNegative(st.flow)
		}

		vibration := vibrationIdleMmS
		if classes.Vibration || critical {
			vibration += vibrationDamageGain * damage
		}
		if classes.Blockage {
			vibration += vibrationBlockageOffset
		}

		corrosion := corrosionIdleMmY
		if classes.Corrosion || critical {
			corrosion += corrosionDamageGain * damage
		}

		acoustic := acousticIdleDb
		if classes.Leak {
			acoustic += acousticLeakGain * damage
		}
		if classes.Blockage {
			acoustic += acousticBlockageGain * damage
		}

		status := StatusNormal
		if hasSegment {
			status = StatusForScore(segHealth.Score)
		}

		node.Pressure = roundTo(clampNonNegative(smooth(node.Pressure, st.pressure, node.primed, pressureJitterBar, damage, rng)), pressureDecimals)
		node.Flow = roundTo(clampNonNegative(smooth(node.Flow, st.flow, node.primed, flowJitterM3h, damage, rng)), flowDecimals)
		node.Temperature = roundTo(smooth(node.Temperature, st.temperature, node.primed, temperatureJitterC, damage, rng), temperatureDecimals)
		node.Vibration = roundTo(clampNonNegative(smooth(node.Vibration, vibration, node.primed, vibrationJitterMmS, damage, rng)), vibrationDecimals)
		node.Acoustic = roundTo(clampNonNegative(smooth(node.Acoustic, acoustic, node.primed, acousticJitterDb, damage, rng)), acousticDecimals)
		node.Corrosion = roundTo(clampNonNegative(smooth(node.Corrosion, corrosion, node.primed, corrosionJitterMmY, damage, rng)), corrosionDecimals)
		node.Status = status
		node.primed = true

		rows = append(rows, SensorReading{
			PipelineID:  g.PipelineID,
			NodeID:      node.ID,
			Name:        node.Name,
			Location:    node.Location,
			Lat:         node.Lat,
			Lon:         node.Lon,
			Pressure:    node.Pressure,
			Flow:        node.Flow,
			Temperature: node.Temperature,
			Vibration:   node.Vibration,
			Acoustic:    node.Acoustic,
			Corrosion:   node.Corrosion,
			Status:      node.Status,
			Timestamp:   now.UTC(),
		})
	}
	return rows
}
