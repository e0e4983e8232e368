package treemap

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestApportion(t *testing.T) {
	tests := []struct {
		name    string
		weights []float64
		total   int
		want    []int
	}{
		{"empty", nil, 5, []int{}},
		{"zero total", []float64{2, 1}, 0, []int{0, 0}},
		{"exact", []float64{1, 1}, 10, []int{5, 5}},
		{"leftover to first on tie", []float64{1, 1, 1}, 10, []int{4, 3, 3}},
		{"largest remainder wins", []float64{0.6, 0.4}, 3, []int{2, 1}},
		{"fewer pixels than items", []float64{1, 1, 1}, 2, []int{1, 1, 0}},
		{"minimum one pixel", []float64{100, 1, 1}, 10, []int{8, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := apportion(tt.weights, tt.total)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("apportion() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApportionPreservesSum(t *testing.T) {
	weights := []float64{13, 8, 5, 3, 2, 1, 1}
	for total := 1; total < 200; total++ {
		sum := 0
		for _, s := range apportion(weights, total) {
			sum += s
		}
		if sum != total {
			t.Fatalf("apportion(total=%d) sums to %d", total, sum)
		}
	}
}

func TestSplitLong(t *testing.T) {
	tests := []struct {
		thickness float64
		long      int
		last      bool
		want      int
	}{
		{400, 800, false, 400},
		{399.5, 800, false, 400},
		{0.2, 10, false, 1},
		{9.8, 10, false, 9},
		{3, 10, true, 10},
		{0.4, 1, false, 0},
	}

	for _, tt := range tests {
		if got := splitLong(tt.thickness, tt.long, tt.last); got != tt.want {
			t.Errorf("splitLong(%v, %d, %v) = %d, want %d", tt.thickness, tt.long, tt.last, got, tt.want)
		}
	}
}
