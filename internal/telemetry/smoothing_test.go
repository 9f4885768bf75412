package telemetry

import (
	"math"
	"math/rand"
	"testing"
)

func TestSmooth_FirstTickAdoptsTarget(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if got := smooth(0, 5.5, false, pressureJitterBar, 0, rng); got != 5.5 {
		t.Errorf("unprimed smooth should adopt target, got %f", got)
	}
}

func TestSmooth_ConvergesToConstantTarget(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	const target = 120.0
	v := 0.0
	primed := false
	for i := 0; i < 300; i++ {
		v = smooth(v, target, primed, flowJitterM3h, 0, rng)
		primed = true
	}
	// Steady state fluctuates around the target within the noise amplitude.
	if math.Abs(v-target) > 2*flowJitterM3h {
		t.Errorf("smoothing did not converge: got %f, want about %f", v, target)
	}
}

func TestSmooth_HeavyInertia(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	// One step toward a distant target moves roughly a tenth of the gap.
	got := smooth(0, 100, true, 0, 0, rng)
	if math.Abs(got-10) > 1e-9 {
		t.Errorf("expected single step to 10%% of gap, got %f", got)
	}
}

func TestSmooth_NoiseGrowsWithDamage(t *testing.T) {
	spread := func(damage float64) float64 {
		rng := rand.New(rand.NewSource(4))
		min, max := math.Inf(1), math.Inf(-1)
		for i := 0; i < 500; i++ {
			v := smooth(50, 50, true, acousticJitterDb, damage, rng)
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		return max - min
	}
	if spread(1) <= spread(0) {
		t.Error("noise amplitude should grow with the damage factor")
	}
}

func TestRoundTo(t *testing.T) {
	if got := roundTo(5.5555, 2); got != 5.56 {
		t.Errorf("roundTo(5.5555, 2)=%f", got)
	}
	if got := roundTo(0.00234, 4); got != 0.0023 {
		t.Errorf("roundTo(0.00234, 4)=%f", got)
	}
}

func TestClampNonNegative(t *testing.T) {
	if clampNonNegative(-1.5) != 0 {
		t.Error("negative values should clamp to zero")
	}
	if clampNonNegative(2.5) != 2.5 {
		t.Error("positive values should pass through")
	}
}
