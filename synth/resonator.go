// Package synth implements the haptic signal synthesizer: sine,
// band-limited noise, and three-band "snow texture" generation
// driven by parallel resonant bandpass filters, per spec §4.3.
package synth

import "math"

// resonator is a two-pole resonant bandpass, grounded on
// piano/resonance.go's noteResonator but matching the exact
// difference equation spec §3 specifies: y[n] = x[n] + a*b*y[n-1] -
// a^2*y[n-2], with no DC-normalizing b0 gain term (the teacher's
// noteResonator multiplies by (1-r); the spec's resonator does not,
// so callers apply their own output scaling instead).
type resonator struct {
	a, b   float64
	y1, y2 float64
}

// setCoeffs derives a and b for a bandpass centered at hz with
// bandwidth bwHz at sampleRate, per the filter coefficient block in
// spec §3: a = exp(-bw), b = 2*cos(wc). Coefficients only, state is
// left untouched (callers that want a clean restart call reset
// explicitly) — coefficient updates must not cost the cancellation
// lock on adjacent filters sharing a buffer, mirrored here for
// consistency with the rest of the sample path.
func (r *resonator) setCoeffs(hz, bwHz, sampleRate float64) {
	wc := 2 * math.Pi * hz / sampleRate
	bw := 2 * math.Pi * bwHz / sampleRate
	r.a = math.Exp(-bw)
	r.b = 2 * math.Cos(wc)
}

func (r *resonator) reset() {
	r.y1, r.y2 = 0, 0
}

func (r *resonator) process(x float64) float64 {
	y := x + r.a*r.b*r.y1 - r.a*r.a*r.y2
	r.y2 = r.y1
	r.y1 = y
	return y
}
