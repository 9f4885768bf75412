package telemetry

import (
	"math"
	"math/rand"
)

// Single-pole low-pass weights. The heavy inertia keeps displayed values
// continuous instead of jumping to each new physics target.
const (
	smoothPrevWeight   = 0.9
	smoothTargetWeight = 0.1
)

// Base noise amplitude per metric, in metric units. The effective amplitude
// grows with the segment's damage factor.
const (
	pressureJitterBar   = 0.05
	flowJitterM3h       = 1.0
	temperatureJitterC  = 0.2
	vibrationJitterMmS  = 0.05
	acousticJitterDb    = 0.5
	corrosionJitterMmY  = 0.002
	damageJitterGain    = 3.0
)

// Display rounding precision per metric.
const (
	pressureDecimals    = 2
	flowDecimals        = 1
	temperatureDecimals = 1
	vibrationDecimals   = 2
	acousticDecimals    = 1
	corrosionDecimals   = 4
)

// smooth folds a physics target into the previous displayed value. When no
// previous value exists (first tick) the target is adopted directly, without
// noise.
func smooth(prev, target float64, primed bool, jitter, damage float64, rng *rand.Rand) float64 {
	if !primed {
		return target
	}
	noise := (rng.Float64()*2 - 1) * jitter * (1 + damageJitterGain*damage)
	return prev*smoothPrevWeight + (target+noise)*smoothTargetWeight
}

// roundTo rounds v to the given number of decimal places. Display stability
// only; the smoothing state keeps the rounded value as its previous sample.
func roundTo(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}

// clampNonNegative floors v at zero.
func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
