package treemap

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalize(t *testing.T) {
	items := []Item{
		{Name: "a", Value: 1},
		{Name: "b", Value: 3},
		{Name: "c", Value: 1},
		{Name: "d", Value: -1},
		{Name: "e", Value: math.NaN()},
		{Name: "f", Value: 3},
		{Name: "g", Value: math.Inf(1)},
	}

	got := Normalize(items)

	var names []string
	for _, it := range got.Items {
		names = append(names, it.Name)
	}
	if diff := cmp.Diff([]string{"a", "b", "c", "f"}, names); diff != "" {
		t.Errorf("Items mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 1, 2, 5}, got.Source); diff != "" {
		t.Errorf("Source mismatch (-want +got):\n%s", diff)
	}
	// b and f tie at 3, a and c tie at 1: ties keep input order.
	if diff := cmp.Diff([]int{1, 3, 0, 2}, got.Order); diff != "" {
		t.Errorf("Order mismatch (-want +got):\n%s", diff)
	}
	if got.Total != 8 {
		t.Errorf("Total = %v, want 8", got.Total)
	}
	if got.Dropped != 3 {
		t.Errorf("Dropped = %d, want 3", got.Dropped)
	}
}

func TestNormalizeEmpty(t *testing.T) {
	got := Normalize([]Item{{Name: "zero"}, {Name: "neg", Value: -4}})

	if got.Len() != 0 {
		t.Errorf("Len() = %d, want 0", got.Len())
	}
	if got.Total != 0 {
		t.Errorf("Total = %v, want 0", got.Total)
	}
	if got.Dropped != 2 {
		t.Errorf("Dropped = %d, want 2", got.Dropped)
	}
}

func TestNormalizeLeavesValuesUnchanged(t *testing.T) {
	items := []Item{{Name: "a", Value: 0.125}, {Name: "b", Value: 1e6}}
	got := Normalize(items)

	for i, it := range got.Items {
		if it.Value != items[i].Value {
			t.Errorf("Items[%d].Value = %v, want %v", i, it.Value, items[i].Value)
		}
	}
}
