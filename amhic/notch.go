package amhic

import (
	"math"

	"github.com/suke-go/bbhacker-core/dsp"
)

// notchPoleRadius is r in spec §4.2's fallback notch: closer to 1.0
// means a narrower, deeper notch.
const notchPoleRadius = 0.95

// notchPair is two independent two-pole resonant notch filters (one
// per axis), built directly on the teacher's biquad: the spec's notch
// transfer function (1, -2*cos(w), 1) / (1, -2*r*cos(w), r^2) is
// exactly the Direct-Form-I structure dsp.Biquad already implements,
// so the fallback backend configures a Biquad rather than introducing
// a new filter type.
type notchPair struct {
	x, y dsp.Biquad
}

func (n *notchPair) setFrequency(hz, sampleRate float64) {
	b0, b1, b2, a1, a2 := notchCoeffs(hz, sampleRate, notchPoleRadius)
	n.x.SetCoeffs(b0, b1, b2, a1, a2)
	n.y.SetCoeffs(b0, b1, b2, a1, a2)
}

func (n *notchPair) reset() {
	n.x.Reset()
	n.y.Reset()
}

func (n *notchPair) process(x, y float64) (float64, float64) {
	return float64(n.x.Process(float32(x))), float64(n.y.Process(float32(y)))
}

// notchCoeffs derives Direct-Form-I coefficients for a two-pole
// resonant notch centered at hz, per spec §4.2: zeros on the unit
// circle at +-w cancel the interference tone, poles at radius r pull
// the passband back in close around it. With the raw numerator (1,
// -2cosW, 1) the filter's DC gain is (2 - 2cosW)/(1 + a1 + a2), so the
// numerator is divided by that factor to pass DC at unity gain.
func notchCoeffs(hz, sampleRate, r float64) (b0, b1, b2, a1, a2 float32) {
	w := 2 * math.Pi * hz / sampleRate
	cosW := math.Cos(w)
	a1f := -2 * r * cosW
	a2f := r * r
	g := (1 + a1f + a2f) / (2 - 2*cosW)
	return float32(g), float32(-2 * cosW * g), float32(g), float32(a1f), float32(a2f)
}
