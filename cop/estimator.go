// Package cop converts four load-cell readings into a 2-D center of
// pressure and provides a phase-averaging tare calibration on top of
// it. The estimator itself is a pure function; Estimator layers the
// session calibration state machine around it, the same
// split the teacher draws between a pure DSP primitive
// (dsp.Biquad.Process) and the stateful object that owns its
// lifecycle.
package cop

// Board geometry, in millimeters. Y is the long (front/back) axis,
// X is the short (left/right) axis.
const (
	BoardLength = 433.0 // mm, Y span
	BoardWidth  = 238.0 // mm, X span

	// MinWeight is the minimum total load, in kilograms, below which a
	// sample is flagged invalid rather than reported.
	MinWeight = 5.0
)

// Sample is one center-of-pressure reading.
type Sample struct {
	X, Y      float64 // mm, plate center at origin; X right, Y forward
	Weight    float64 // kg, total load
	RawX      float64 // mm, uncompensated X (diagnostic copy)
	RawY      float64 // mm, uncompensated Y (diagnostic copy)
	Valid     bool
	TimestampMs int64
}

// Estimate is the raw, allocation-free CoP estimator described in
// spec §4.1: one division per call, deterministic for identical
// inputs, never an error — out-of-range weight is reported through
// Valid, not a panic or error return.
func Estimate(tl, tr, bl, br float64) Sample {
	total := tl + tr + bl + br
	if total < MinWeight {
		return Sample{Weight: total}
	}
	inv := 1 / total
	x := (BoardWidth / 2) * ((tr + br) - (tl + bl)) * inv
	y := (BoardLength / 2) * ((tl + tr) - (bl + br)) * inv
	return Sample{X: x, Y: y, Weight: total, RawX: x, RawY: y, Valid: true}
}
