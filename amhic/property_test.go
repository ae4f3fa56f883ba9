package amhic

import (
	"math"
	"testing"

	"pgregory.net/rapid"
)

// TestPropertyWeightBoundedness is Testable Property 8, generalized
// over arbitrary input sequences and step sizes.
func TestPropertyWeightBoundedness(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		h := rapid.IntRange(1, maxHarmonics).Draw(t, "h")
		mu := rapid.Float32Range(StepMin, StepMax).Draw(t, "mu")
		c, err := NewCanceller(h, sampleRate)
		if err != nil {
			t.Fatalf("NewCanceller: %v", err)
		}
		c.SetStep(mu)

		n := rapid.IntRange(1, 200).Draw(t, "n")
		phi := 0.0
		for i := 0; i < n; i++ {
			x := rapid.Float64Range(-1e4, 1e4).Draw(t, "x")
			y := rapid.Float64Range(-1e4, 1e4).Draw(t, "y")
			c.Process(x, y, phi, true)
			phi = dspWrap(phi + 0.3)

			for k := 0; k < 2*h; k++ {
				if math.Abs(c.wx[k]) > WeightMax+1e-6 || math.Abs(c.wy[k]) > WeightMax+1e-6 {
					t.Fatalf("weight escaped bounds: wx=%v wy=%v", c.wx, c.wy)
				}
			}
		}
	})
}

// TestPropertyPassThroughBitExact is Testable Property 5, generalized
// over arbitrary inputs and arbitrary prior canceller state: whenever
// compensation is disabled or the haptic is inactive, output must
// equal input bit-exactly regardless of what the filter learned
// beforehand.
func TestPropertyPassThroughBitExact(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c, err := NewCanceller(DefaultHarmonics, sampleRate)
		if err != nil {
			t.Fatalf("NewCanceller: %v", err)
		}
		c.SetStep(rapid.Float32Range(StepMin, StepMax).Draw(t, "mu"))
		if rapid.Bool().Draw(t, "notch") {
			c.SetBackend(BackendNotch)
		}
		// Perturb state with some prior activity so pass-through is not
		// trivially true from a fresh zero state.
		for i := 0; i < 10; i++ {
			c.Process(rapid.Float64Range(-50, 50).Draw(t, "warmx"), rapid.Float64Range(-50, 50).Draw(t, "warmy"), float64(i)*0.1, true)
		}

		// Two independent triggers put the canceller into pass-through:
		// disabling compensation, or the haptic being inactive. Exercise
		// whichever one rapid picks, with "active" left true in the
		// disabled case so that disabling alone must suffice.
		viaDisable := rapid.Bool().Draw(t, "viaDisable")
		if viaDisable {
			c.SetEnabled(false)
		}
		active := viaDisable // if not disabling, trigger via inactivity instead

		x := rapid.Float64Range(-1e3, 1e3).Draw(t, "x")
		y := rapid.Float64Range(-1e3, 1e3).Draw(t, "y")
		ex, ey := c.Process(x, y, 0.5, active)
		if ex != x || ey != y {
			t.Fatalf("expected bit-exact pass-through, got (%v, %v) from (%v, %v)", ex, ey, x, y)
		}
	})
}

// TestPropertyResetIdempotence is Testable Property 12, generalized
// over arbitrary prior activity.
func TestPropertyResetIdempotence(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c, err := NewCanceller(DefaultHarmonics, sampleRate)
		if err != nil {
			t.Fatalf("NewCanceller: %v", err)
		}
		n := rapid.IntRange(0, 300).Draw(t, "n")
		phi := 0.0
		for i := 0; i < n; i++ {
			x := rapid.Float64Range(-100, 100).Draw(t, "x")
			y := rapid.Float64Range(-100, 100).Draw(t, "y")
			c.Process(x, y, phi, true)
			phi = dspWrap(phi + 0.2)
		}

		c.Reset()
		first := snapshot(c)
		c.Reset()
		second := snapshot(c)
		if first != second {
			t.Fatalf("double reset diverged: %+v vs %+v", first, second)
		}
	})
}
