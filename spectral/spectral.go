// Package spectral provides FFT-based diagnostics (spectral centroid,
// band energy, magnitude spectrum) used by the synth package's tests
// to characterize the synthesizer's output. Grounded on
// analysis/distance.go's FFT-plan-caching machinery, trimmed to the
// single-signal spectral core: this package has no notion of
// comparing two recordings, aligning lag, or scoring similarity.
package spectral

import (
	"errors"
	"math"
	"math/cmplx"
	"sync"

	algofft "github.com/cwbudde/algo-fft"
)

var planCache sync.Map // map[int]*fftPlan

type fftPlan struct {
	mu   sync.Mutex
	fast *algofft.FastPlanReal64
	safe *algofft.PlanRealT[float64, complex128]
}

func getPlan(n int) (*fftPlan, error) {
	if v, ok := planCache.Load(n); ok {
		return v.(*fftPlan), nil
	}

	p := &fftPlan{}
	if fast, err := algofft.NewFastPlanReal64(n); err == nil {
		p.fast = fast
	} else if !errors.Is(err, algofft.ErrNotImplemented) {
		// Fast-plan setup failed for a reason other than "not
		// implemented for this size"; fall through to the safe plan.
	}

	safe, err := algofft.NewPlanReal64(n)
	if err != nil {
		if p.fast == nil {
			return nil, err
		}
	} else {
		p.safe = safe
	}

	actual, _ := planCache.LoadOrStore(n, p)
	return actual.(*fftPlan), nil
}

func (p *fftPlan) forward(dst []complex128, src []float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fast != nil {
		p.fast.Forward(dst, src)
		return nil
	}
	if p.safe != nil {
		return p.safe.Forward(dst, src)
	}
	return errors.New("spectral: missing FFT plan")
}

// windowed applies a Hann window to x, truncated/padded to the
// largest even length <= len(x) (a real FFT plan requires an even
// transform size).
func windowed(x []float64) []float64 {
	n := len(x)
	if n%2 != 0 {
		n--
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
		out[i] = x[i] * w
	}
	return out
}

// Magnitude returns the magnitude spectrum of x (bins 0..n/2), using
// a Hann-windowed FFT.
func Magnitude(x []float64) ([]float64, error) {
	w := windowed(x)
	if len(w) < 2 {
		return nil, errors.New("spectral: signal too short")
	}
	bins := len(w) / 2
	plan, err := getPlan(len(w))
	if err != nil {
		return nil, err
	}
	spec := make([]complex128, bins+1)
	if err := plan.forward(spec, w); err != nil {
		return nil, err
	}
	mag := make([]float64, len(spec))
	for i, c := range spec {
		mag[i] = cmplx.Abs(c)
	}
	return mag, nil
}

// Centroid computes the spectral centroid (Hz) of x at sampleRate: the
// magnitude-weighted mean frequency.
func Centroid(x []float64, sampleRate float64) (float64, error) {
	mag, err := Magnitude(x)
	if err != nil {
		return 0, err
	}
	n := 2 * (len(mag) - 1)
	var num, den float64
	for k, m := range mag {
		hz := float64(k) * sampleRate / float64(n)
		num += hz * m
		den += m
	}
	if den == 0 {
		return 0, nil
	}
	return num / den, nil
}

// BandEnergy returns the fraction of total spectral energy that falls
// within [loHz, hiHz).
func BandEnergy(x []float64, sampleRate, loHz, hiHz float64) (float64, error) {
	mag, err := Magnitude(x)
	if err != nil {
		return 0, err
	}
	n := 2 * (len(mag) - 1)
	var band, total float64
	for k, m := range mag {
		hz := float64(k) * sampleRate / float64(n)
		e := m * m
		total += e
		if hz >= loHz && hz < hiHz {
			band += e
		}
	}
	if total == 0 {
		return 0, nil
	}
	return band / total, nil
}

// TotalEnergy returns sum(x[i]^2), the time-domain signal energy.
func TotalEnergy(x []float64) float64 {
	var e float64
	for _, v := range x {
		e += v * v
	}
	return e
}
