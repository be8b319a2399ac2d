package stats

import (
	"math"
	"testing"
)

func TestPercentile(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}

	tests := []struct {
		name string
		p    float64
		want float64
	}{
		{"min", 0, 1},
		{"median", 50, 3},
		{"p75 interpolated", 75, 4},
		{"p90 interpolated", 90, 4.6},
		{"max", 100, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(values, tt.p)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Percentile(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestPercentileInterpolation(t *testing.T) {
	// Two elements: p50 must land exactly between them.
	got := Percentile([]float64{10, 20}, 50)
	if got != 15 {
		t.Errorf("Percentile(50) = %v, want 15", got)
	}
}

func TestPercentileDoesNotMutate(t *testing.T) {
	values := []float64{3, 1, 2}
	Percentile(values, 90)
	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("input mutated: %v", values)
	}
}

func TestPercentileEmpty(t *testing.T) {
	if got := Percentile(nil, 50); got != 0 {
		t.Errorf("Percentile(nil) = %v, want 0", got)
	}
}

func TestMeanMedianMax(t *testing.T) {
	values := []float64{2, 4, 9}

	if got := Mean(values); math.Abs(got-5) > 1e-9 {
		t.Errorf("Mean = %v, want 5", got)
	}
	if got := Median(values); got != 4 {
		t.Errorf("Median = %v, want 4", got)
	}
	if got := Max(values); got != 9 {
		t.Errorf("Max = %v, want 9", got)
	}

	if got := Mean(nil); got != 0 {
		t.Errorf("Mean(nil) = %v, want 0", got)
	}
	if got := Max(nil); got != 0 {
		t.Errorf("Max(nil) = %v, want 0", got)
	}
}
