package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/matzehuels/squaremap/pkg/core/palette"
	"github.com/matzehuels/squaremap/pkg/core/render"
	"github.com/matzehuels/squaremap/pkg/core/treemap"
	"github.com/matzehuels/squaremap/pkg/errors"
)

func testScene(items []treemap.Item) render.Scene {
	l := treemap.Build(items, treemap.Canvas{Width: 800, Height: 600, Padding: 2})
	return render.Decorate(l, palette.Default, nil)
}

var holdings = []treemap.Item{
	{Name: "ACME", Value: 60, IconRef: "acme.svg"},
	{Name: "broken", Value: -1},
	{Name: "Initech", Value: 25},
	{Name: "Globex", Value: 15},
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		items []treemap.Item
	}{
		{"holdings", holdings},
		{"single", []treemap.Item{{Name: "all", Value: 1}}},
		{"empty", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := testScene(tt.items)

			data, err := MarshalLayout(FromScene(want))
			if err != nil {
				t.Fatalf("MarshalLayout() error: %v", err)
			}
			doc, err := UnmarshalLayout(data)
			if err != nil {
				t.Fatalf("UnmarshalLayout() error: %v", err)
			}
			if diff := cmp.Diff(want, doc.Scene(), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Scene() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFromScene(t *testing.T) {
	doc := FromScene(testScene(holdings))

	if doc.VizType != VizTypeTreemap {
		t.Errorf("VizType = %q, want %q", doc.VizType, VizTypeTreemap)
	}
	if doc.Dropped != 1 || len(doc.Cells) != 3 {
		t.Fatalf("Dropped = %d, cells = %d, want 1 and 3", doc.Dropped, len(doc.Cells))
	}
	if got := doc.Cells[1]; got.Index != 2 || got.Name != "Initech" {
		t.Errorf("Cells[1] = index %d %q, want index 2 Initech", got.Index, got.Name)
	}
	if got := doc.Cells[0].Icon; got != "acme.svg" {
		t.Errorf("Cells[0].Icon = %q, want acme.svg", got)
	}
	if doc.Bounds != (Rect{X1: 800, Y1: 600}) {
		t.Errorf("Bounds = %+v, want 800x600", doc.Bounds)
	}
}

func TestItems(t *testing.T) {
	want := []treemap.Item{holdings[0], holdings[2], holdings[3]}
	if diff := cmp.Diff(want, FromScene(testScene(holdings)).Items()); diff != "" {
		t.Errorf("Items() mismatch (-want +got):\n%s", diff)
	}
}

func TestUnmarshalLayoutDefaultsVizType(t *testing.T) {
	doc, err := UnmarshalLayout([]byte(`{"width": 10, "height": 10, "bounds": {"x1": 10, "y1": 10}, "cells": []}`))
	if err != nil {
		t.Fatalf("UnmarshalLayout() error: %v", err)
	}
	if doc.VizType != VizTypeTreemap {
		t.Errorf("VizType = %q, want %q", doc.VizType, VizTypeTreemap)
	}
}

func TestUnmarshalLayoutInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{`},
		{"tower", `{"viz_type": "tower"}`},
		{"negative size", `{"width": -1, "height": 10}`},
		{"cell outside", `{"bounds": {"x1": 10, "y1": 10}, "cells": [{"name": "a", "bounds": {"x1": 20, "y1": 10}, "rect": {"x1": 20, "y1": 10}}]}`},
		{"rect outside bounds", `{"bounds": {"x1": 10, "y1": 10}, "cells": [{"name": "a", "bounds": {"x1": 5, "y1": 5}, "rect": {"x1": 6, "y1": 5}}]}`},
		{"negative index", `{"bounds": {"x1": 10, "y1": 10}, "cells": [{"index": -1}]}`},
		{"dangling row member", `{"bounds": {"x1": 10, "y1": 10}, "cells": [], "rows": [{"members": [3]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalLayout([]byte(tt.data))
			if !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("UnmarshalLayout() error = %v, want code %s", err, errors.ErrCodeInvalidFormat)
			}
		})
	}
}

func TestLayoutFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.json")
	want := FromScene(testScene(holdings))

	if err := WriteLayoutFile(want, path); err != nil {
		t.Fatalf("WriteLayoutFile() error: %v", err)
	}
	got, err := ReadLayoutFile(path)
	if err != nil {
		t.Fatalf("ReadLayoutFile() error: %v", err)
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("ReadLayoutFile() mismatch (-want +got):\n%s", diff)
	}

	_, err = ReadLayoutFile(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("ReadLayoutFile(missing) error = %v, want code %s", err, errors.ErrCodeFileNotFound)
	}

	if err := os.WriteFile(path, []byte(`{"viz_type": "nodelink"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadLayoutFile(path); err == nil {
		t.Error("ReadLayoutFile() of a nodelink document should fail")
	}
}
