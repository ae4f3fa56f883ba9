package amhic

import (
	"math"

	"github.com/suke-go/bbhacker-core/dsp"
)

// mseWindowLen is W in spec §4.2: the ring-buffer length used for the
// convergence detector.
const mseWindowLen = 60

// convergenceVarianceMax and convergenceMeanMax are the thresholds
// the MSE window must satisfy for the canceller to be reported as
// converged. Named tunables rather than inline magic numbers, per the
// Open Question decision recorded in DESIGN.md: the thresholds have no
// physical derivation, so they are surfaced here as constants rather
// than buried in a conditional.
const (
	convergenceVarianceMax = 0.01
	convergenceMeanMax     = 1.0
)

// Metrics are the running quality indicators spec §4.2 requires the
// canceller to expose: exponentially-weighted input/error power, the
// SNR improvement estimate derived from their ratio, and an MSE
// window used to detect convergence.
type Metrics struct {
	inputPower float64 // EW average of ||[x,y]||^2
	errorPower float64 // EW average of ||[ex,ey]||^2
	mse        *dsp.Window
}

func newMetrics() Metrics {
	return Metrics{mse: dsp.NewWindow(mseWindowLen)}
}

func (m *Metrics) update(x, y, ex, ey float64) {
	inP := x*x + y*y
	errP := ex*ex + ey*ey
	m.inputPower = alphaP*m.inputPower + (1-alphaP)*inP
	m.errorPower = alphaE*m.errorPower + (1-alphaE)*errP
	m.mse.Push(errP)
}

// converged reports whether the MSE window is full and stable: its
// variance and mean have both settled below their thresholds.
func (m *Metrics) converged() bool {
	if !m.mse.Full() {
		return false
	}
	return m.mse.Variance() < convergenceVarianceMax && m.mse.Mean() < convergenceMeanMax
}

// SNRImprovementDB estimates the decibel improvement the canceller is
// providing, i.e. how much quieter the error signal is relative to
// the raw input. Labeled as an estimate (not a ground-truth SNR
// measurement) per spec §4.2, since it has no access to a true
// noise-free reference.
func (m Metrics) SNRImprovementDB() float64 {
	return 10 * math.Log10((m.inputPower + epsilon) / (m.errorPower + epsilon))
}

// InputPower and ErrorPower expose the raw EW-averaged power terms
// for diagnostics/plotting.
func (m Metrics) InputPower() float64 { return m.inputPower }
func (m Metrics) ErrorPower() float64 { return m.errorPower }

// MSE returns the current mean-squared error over the convergence
// window (over the samples seen so far until the window fills; zero
// before the first sample).
func (m Metrics) MSE() float64 { return m.mse.Mean() }
