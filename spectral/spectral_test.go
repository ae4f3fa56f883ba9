package spectral

import (
	"math"
	"testing"
)

func TestCentroidOfPureTone(t *testing.T) {
	const sr = 8000.0
	const freq = 1000.0
	n := 4096
	x := make([]float64, n)
	for i := range x {
		x[i] = math.Sin(2 * math.Pi * freq * float64(i) / sr)
	}
	c, err := Centroid(x, sr)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(c-freq) > 50 {
		t.Fatalf("centroid = %v, want ~%v", c, freq)
	}
}

func TestBandEnergyIsolatesBand(t *testing.T) {
	const sr = 8000.0
	n := 4096
	x := make([]float64, n)
	for i := range x {
		x[i] = math.Sin(2 * math.Pi * 100 * float64(i) / sr)
	}
	inBand, err := BandEnergy(x, sr, 50, 150)
	if err != nil {
		t.Fatal(err)
	}
	if inBand < 0.9 {
		t.Fatalf("expected most energy in [50,150)Hz band, got fraction %v", inBand)
	}

	outOfBand, err := BandEnergy(x, sr, 2000, 3000)
	if err != nil {
		t.Fatal(err)
	}
	if outOfBand > 0.1 {
		t.Fatalf("expected little energy in [2000,3000)Hz band, got fraction %v", outOfBand)
	}
}

func TestTotalEnergyMatchesSumOfSquares(t *testing.T) {
	x := []float64{1, -2, 3, -4}
	want := 1.0 + 4.0 + 9.0 + 16.0
	if got := TotalEnergy(x); got != want {
		t.Fatalf("TotalEnergy = %v, want %v", got, want)
	}
}

func TestMagnitudeRejectsTooShortSignal(t *testing.T) {
	if _, err := Magnitude([]float64{1}); err == nil {
		t.Fatal("expected error for a too-short signal")
	}
}
