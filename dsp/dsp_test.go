package dsp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBiquadSetCoeffsPreservesState(t *testing.T) {
	b := NewBiquad(1, 0, 0, 0, 0)
	b.Process(5)
	b.Process(3)
	b.SetCoeffs(0, 1, 0, 0, 0)
	out := b.Process(0)
	require.InDelta(t, float32(3), out, 1e-6, "b1 should pick up the previous input sample after a coefficient swap")
}

func TestBiquadResetClearsState(t *testing.T) {
	b := NewBiquad(1, 1, 1, 0, 0)
	b.Process(5)
	b.Reset()
	out := b.Process(0)
	require.Equal(t, float32(0), out)
}

func TestAtomicFloat32RoundTrip(t *testing.T) {
	a := NewAtomicFloat32(1.5)
	require.Equal(t, float32(1.5), a.Load())
	a.Store(-2.25)
	require.Equal(t, float32(-2.25), a.Load())
}

func TestAtomicFloat64RoundTrip(t *testing.T) {
	a := NewAtomicFloat64(3.14159265)
	require.Equal(t, 3.14159265, a.Load())
}

func TestAtomicBoolRoundTrip(t *testing.T) {
	a := NewAtomicBool(false)
	require.False(t, a.Load())
	a.Store(true)
	require.True(t, a.Load())
}

func TestWindowMeanAndVariance(t *testing.T) {
	w := NewWindow(4)
	require.False(t, w.Full())
	for _, v := range []float64{1, 2, 3, 4} {
		w.Push(v)
	}
	require.True(t, w.Full())
	require.InDelta(t, 2.5, w.Mean(), 1e-9)
	require.InDelta(t, 1.25, w.Variance(), 1e-9)
}

func TestWindowEvictsOldest(t *testing.T) {
	w := NewWindow(2)
	w.Push(10)
	w.Push(20)
	w.Push(30) // evicts 10
	require.InDelta(t, 25, w.Mean(), 1e-9)
}

func TestClampHelpers(t *testing.T) {
	require.Equal(t, float32(1), ClampF32(5, 0, 1))
	require.Equal(t, float64(0), ClampF64(-5, 0, 1))
	require.Equal(t, 3, MinInt(3, 7))
	require.Equal(t, 7, MaxInt(3, 7))
}
