package cop

import (
	"math"
	"testing"
)

func TestEstimateCentering(t *testing.T) {
	tests := []struct {
		name          string
		tl, tr, bl, br float64
	}{
		{"light stand", 2, 2, 2, 2},
		{"heavy stand", 25, 25, 25, 25},
		{"very heavy stand", 60, 60, 60, 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Estimate(tt.tl, tt.tr, tt.bl, tt.br)
			if !s.Valid {
				t.Fatalf("expected valid sample for total=%v", tt.tl+tt.tr+tt.bl+tt.br)
			}
			if s.X != 0 || s.Y != 0 {
				t.Fatalf("expected symmetric load to center at origin, got (%v, %v)", s.X, s.Y)
			}
		})
	}
}

func TestEstimateValidityGate(t *testing.T) {
	tests := []struct {
		name          string
		tl, tr, bl, br float64
	}{
		{"empty board", 0, 0, 0, 0},
		{"just under threshold", 1, 1, 1, 1.9},
		{"single cell only", 4.9, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Estimate(tt.tl, tt.tr, tt.bl, tt.br)
			if s.Valid {
				t.Fatalf("expected invalid sample below MinWeight")
			}
			if s.X != 0 || s.Y != 0 {
				t.Fatalf("expected (0,0) for invalid sample, got (%v, %v)", s.X, s.Y)
			}
		})
	}
}

func TestEstimateSaturationBounds(t *testing.T) {
	loads := [][4]float64{
		{20, 0, 0, 0},
		{0, 20, 0, 0},
		{0, 0, 20, 0},
		{0, 0, 0, 20},
		{100, 0.1, 0.1, 0.1},
	}
	for _, l := range loads {
		s := Estimate(l[0], l[1], l[2], l[3])
		if !s.Valid {
			continue
		}
		if math.Abs(s.X) > BoardWidth/2+1e-9 {
			t.Fatalf("x=%v exceeds half-width for load %v", s.X, l)
		}
		if math.Abs(s.Y) > BoardLength/2+1e-9 {
			t.Fatalf("y=%v exceeds half-length for load %v", s.Y, l)
		}
	}
}

func TestEstimateLeanForward(t *testing.T) {
	// TL=TR=20, BL=BR=10: weight shifted toward the front (TL/TR) edge.
	s := Estimate(20, 20, 10, 10)
	if !s.Valid {
		t.Fatal("expected valid sample")
	}
	wantY := (BoardLength / 2) * ((40.0 - 20.0) / 60.0)
	if math.Abs(s.Y-wantY) > 1e-9 {
		t.Fatalf("y = %v, want %v", s.Y, wantY)
	}
	if math.Abs(s.X) > 1e-9 {
		t.Fatalf("x = %v, want ~0", s.X)
	}
}

func TestEstimateDeterministic(t *testing.T) {
	a := Estimate(12.3, 4.5, 6.7, 8.9)
	b := Estimate(12.3, 4.5, 6.7, 8.9)
	if a != b {
		t.Fatalf("expected identical output for identical input, got %+v vs %+v", a, b)
	}
}
