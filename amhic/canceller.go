// Package amhic implements the Adaptive Multi-Harmonic Interference
// Canceller: a Normalized-LMS adaptive filter driven by a haptic
// oscillator's phase, with an IIR notch fallback and convergence/SNR
// monitoring. One Canceller instance serves both axes (X, Y) of a CoP
// sample.
package amhic

import (
	"fmt"
	"math"

	"github.com/suke-go/bbhacker-core/dsp"
)

const (
	// DefaultHarmonics is H in spec §4.2.
	DefaultHarmonics = 3
	// maxHarmonics bounds the reference/weight array size so they can
	// be fixed-size arrays (stack-allocated, sized at construction,
	// never reallocated per sample) instead of slices, per the design
	// note in spec §9.
	maxHarmonics = 8

	// WeightMax is W_max from spec §4.2 (mm, same unit as CoP).
	WeightMax = 100.0
	// epsilon avoids division by zero in the NLMS step-size normalization.
	epsilon = 1e-6

	// StepMin and StepMax bound the user-settable NLMS step size.
	StepMin = 0.001
	StepMax = 1.9

	alphaP = 0.99 // input-power EW average
	alphaE = 0.95 // error-power EW average
)

// Backend selects the compensation strategy.
type Backend int

const (
	BackendNLMS Backend = iota
	BackendNotch
)

// refVector is a length-2H reference array, fixed-size so it never
// allocates.
type refVector = [2 * maxHarmonics]float64

// Canceller adapts one NLMS filter per axis (X, Y), referenced to the
// harmonics of a haptic drive phase, with a notch-filter fallback
// selectable at runtime.
type Canceller struct {
	h int // active harmonic count, 1..maxHarmonics

	wx, wy refVector

	mu      *dsp.AtomicFloat32
	enabled *dsp.AtomicBool
	backend *dsp.AtomicFloat32 // holds a Backend value; read once per Process call

	// internal phase fallback, used only when no external phase (>= 0)
	// is supplied to Process.
	internalFreq *dsp.AtomicFloat32
	sampleRate   float64
	internalPhi  float64

	notch notchPair

	metrics Metrics

	converged bool
	// OnConverged fires once on the unconverged -> converged
	// transition.
	OnConverged func()
}

// NewCanceller creates a canceller with h harmonics operating at
// sampleRate (the sensor domain's rate, used only for the
// internal-phase fallback). h must be in [1, maxHarmonics] and
// sampleRate must be positive.
func NewCanceller(h int, sampleRate float64) (*Canceller, error) {
	if h < 1 || h > maxHarmonics {
		return nil, fmt.Errorf("amhic: harmonic count must be in [1, %d], got %d", maxHarmonics, h)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("amhic: sample rate must be positive, got %v", sampleRate)
	}
	c := &Canceller{
		h:            h,
		mu:           dsp.NewAtomicFloat32(0.05),
		enabled:      dsp.NewAtomicBool(true),
		backend:      dsp.NewAtomicFloat32(float32(BackendNLMS)),
		internalFreq: dsp.NewAtomicFloat32(30.0),
		sampleRate:   sampleRate,
		metrics:      newMetrics(),
	}
	c.notch.setFrequency(30.0, sampleRate)
	return c, nil
}

// SetStep sets the NLMS step size mu, clamped to [StepMin, StepMax].
func (c *Canceller) SetStep(mu float32) {
	c.mu.Store(dsp.ClampF32(mu, StepMin, StepMax))
}

// Step returns the current NLMS step size.
func (c *Canceller) Step() float32 { return c.mu.Load() }

// SetEnabled toggles compensation; false makes Process a pass-through
// (compensation_enable in spec §6).
func (c *Canceller) SetEnabled(v bool) { c.enabled.Store(v) }

// Enabled reports whether compensation is active.
func (c *Canceller) Enabled() bool { return c.enabled.Load() }

// SetBackend selects NLMS or notch compensation.
func (c *Canceller) SetBackend(b Backend) { c.backend.Store(float32(b)) }

// BackendInUse returns the active backend.
func (c *Canceller) BackendInUse() Backend { return Backend(c.backend.Load()) }

// SetFrequency updates both the NLMS internal-phase fallback
// frequency and the notch filter center frequency, re-deriving the
// notch coefficients and zeroing its state (per spec §4.2: "changing
// the center frequency re-derives coefficients and zeros the filter
// state").
func (c *Canceller) SetFrequency(hz float32) {
	c.internalFreq.Store(hz)
	c.notch.setFrequency(float64(hz), c.sampleRate)
	c.notch.reset()
}

// Harmonics returns the configured harmonic count H.
func (c *Canceller) Harmonics() int { return c.h }

// Metrics returns a best-effort snapshot of the running quality
// metrics. Mutated exclusively by Process (sensor domain); this read
// is relaxed/unlocked, so a caller on another goroutine may observe a
// torn-but-self-consistent-enough snapshot per spec §5's "stale reads
// are acceptable" policy.
func (c *Canceller) Metrics() Metrics { return c.metrics }

// Converged reports whether the convergence criterion in spec §4.2
// currently holds.
func (c *Canceller) Converged() bool { return c.converged }

// HarmonicAmplitude returns |H_k| for axis/harmonic k (1-indexed), per
// spec §4.2's monitoring contract.
func (c *Canceller) HarmonicAmplitude(axis Axis, k int) float64 {
	if k < 1 || k > c.h {
		return 0
	}
	w := &c.wx
	if axis == AxisY {
		w = &c.wy
	}
	s, cc := w[2*(k-1)], w[2*(k-1)+1]
	return math.Hypot(s, cc)
}

// Axis selects X or Y for HarmonicAmplitude.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

// Reset zeros all weights, metrics, internal phase, and the notch
// filter's IIR state. The converged flag returns to false.
func (c *Canceller) Reset() {
	c.wx = refVector{}
	c.wy = refVector{}
	c.internalPhi = 0
	c.metrics = newMetrics()
	c.converged = false
	c.notch.reset()
}

// Process runs one sample through the canceller. phase is the haptic
// oscillator's instantaneous phase in [0, 2*pi); pass a negative value
// to fall back to internal phase integration. active indicates
// whether the haptic is currently driving the plate; when false the
// canceller is a pass-through and the internal phase resets to 0 so a
// later re-engagement starts from a known state.
func (c *Canceller) Process(x, y float64, phase float64, active bool) (ex, ey float64) {
	if !active {
		c.internalPhi = 0
		return x, y
	}
	if !c.enabled.Load() {
		return x, y
	}

	phi := phase
	if phi < 0 {
		phi = c.internalPhi
		c.internalPhi = dsp.WrapPhase(c.internalPhi + 2*math.Pi*float64(c.internalFreq.Load())/c.sampleRate)
	} else {
		phi = dsp.WrapPhase(phi)
	}

	switch c.BackendInUse() {
	case BackendNotch:
		ex, ey = c.notch.process(x, y)
	default:
		ex, ey = c.processNLMS(x, y, phi)
	}

	c.metrics.update(x, y, ex, ey)
	c.checkConvergence()
	return ex, ey
}

func (c *Canceller) processNLMS(x, y, phi float64) (ex, ey float64) {
	var r refVector
	for k := 1; k <= c.h; k++ {
		s, cc := math.Sincos(float64(k) * phi)
		r[2*(k-1)] = s
		r[2*(k-1)+1] = cc
	}

	n := 2 * c.h
	var yHatX, yHatY, power float64
	for i := 0; i < n; i++ {
		yHatX += c.wx[i] * r[i]
		yHatY += c.wy[i] * r[i]
		power += r[i] * r[i]
	}

	ex = x - yHatX
	ey = y - yHatY

	step := float64(c.mu.Load()) / (power + epsilon)
	for i := 0; i < n; i++ {
		c.wx[i] = dsp.ClampF64(c.wx[i]+step*ex*r[i], -WeightMax, WeightMax)
		c.wy[i] = dsp.ClampF64(c.wy[i]+step*ey*r[i], -WeightMax, WeightMax)
	}
	return ex, ey
}

func (c *Canceller) checkConvergence() {
	wasConverged := c.converged
	c.converged = c.metrics.converged()
	if c.converged && !wasConverged && c.OnConverged != nil {
		c.OnConverged()
	}
}
