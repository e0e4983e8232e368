package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/spf13/cobra"

	"github.com/matzehuels/squaremap/pkg/config"
	"github.com/matzehuels/squaremap/pkg/core/content"
	"github.com/matzehuels/squaremap/pkg/document"
	"github.com/matzehuels/squaremap/pkg/pipeline"
)

const testHoldings = `currency = "USD"

[[holdings]]
name  = "ACME"
value = 200

[[holdings]]
name  = "Initech"
value = 100

[[holdings]]
name  = "Closed"
value = 0
`

func writeHoldings(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "portfolio.toml")
	if err := os.WriteFile(path, []byte(testHoldings), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testCLI(t *testing.T) *CLI {
	t.Helper()
	c := New(io.Discard, LogInfo)
	c.Config.Cache.Dir = t.TempDir()
	return c
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "svg", []string{"svg"}},
		{"multiple formats", "svg,pdf,png", []string{"svg", "pdf", "png"}},
		{"spaces and case", " SVG , txt ", []string{"svg", "txt"}},
		{"only commas", ",,", []string{"svg"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, parseFormats(tt.input)); diff != "" {
				t.Errorf("parseFormats(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		input  string
		want   string
	}{
		{"derived from input", "", "data/portfolio.toml", "data/portfolio"},
		{"derived from layout file", "", "data/portfolio.layout.json", "data/portfolio"},
		{"known extension stripped", "out/map.svg", "portfolio.toml", "out/map"},
		{"unknown extension kept", "out/map.v2", "portfolio.toml", "out/map.v2"},
		{"no extension", "out/map", "portfolio.toml", "out/map"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := basePath(tt.output, tt.input); got != tt.want {
				t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
			}
		})
	}
}

func TestLayoutOptionsPrecedence(t *testing.T) {
	c := testCLI(t)
	c.Config.Canvas = config.Canvas{Width: 1000, Height: 500, Padding: 2}
	c.Config.Palette.Fills = []string{"#4e79a7"}
	c.Config.Content.Currency = "EUR"

	var lf layoutFlags
	cmd := &cobra.Command{}
	addLayoutFlags(cmd, &lf)
	if err := cmd.Flags().Parse([]string{"--width", "300", "--values", "amount", "--padding", "0"}); err != nil {
		t.Fatal(err)
	}

	opts, err := c.layoutOptions(cmd, "data/portfolio.toml", lf)
	if err != nil {
		t.Fatalf("layoutOptions() error: %v", err)
	}

	if opts.Width != 300 {
		t.Errorf("Width = %v, want 300 (flag)", opts.Width)
	}
	if opts.Height != 500 {
		t.Errorf("Height = %v, want 500 (config)", opts.Height)
	}
	if opts.Padding != 0 {
		t.Errorf("Padding = %v, want 0 (explicit flag)", opts.Padding)
	}
	if opts.Content.ValueMode != content.ValueAmount {
		t.Errorf("ValueMode = %q, want %q", opts.Content.ValueMode, content.ValueAmount)
	}
	if opts.Content.Currency != "EUR" {
		t.Errorf("Currency = %q, want EUR", opts.Content.Currency)
	}
	if diff := cmp.Diff([]string{"#4e79a7"}, opts.Palette); diff != "" {
		t.Errorf("Palette mismatch (-want +got):\n%s", diff)
	}
	if opts.IconDir != "data" {
		t.Errorf("IconDir = %q, want %q", opts.IconDir, "data")
	}
}

func TestLayoutOptionsInvalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"negative width", []string{"--width", "-1"}},
		{"bad palette", []string{"--palette", "notacolor"}},
		{"bad value mode", []string{"--values", "ratio"}},
		{"bad input format", []string{"--input-format", "yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var lf layoutFlags
			cmd := &cobra.Command{}
			addLayoutFlags(cmd, &lf)
			if err := cmd.Flags().Parse(tt.args); err != nil {
				t.Fatal(err)
			}
			if _, err := testCLI(t).layoutOptions(cmd, "portfolio.toml", lf); err == nil {
				t.Errorf("layoutOptions(%v) expected error", tt.args)
			}
		})
	}
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	artifacts := map[string][]byte{
		"svg": []byte("<svg/>"),
		"txt": []byte("text"),
	}

	t.Run("single format uses output as given", func(t *testing.T) {
		out := filepath.Join(dir, "single.image")
		err := writeArtifacts(artifactWriteParams{
			artifacts: artifacts,
			formats:   []string{"svg"},
			input:     "portfolio.toml",
			output:    out,
			quiet:     true,
		})
		if err != nil {
			t.Fatalf("writeArtifacts() error: %v", err)
		}
		assertFile(t, out, "<svg/>")
	})

	t.Run("multiple formats share a base path", func(t *testing.T) {
		base := filepath.Join(dir, "multi.svg")
		err := writeArtifacts(artifactWriteParams{
			artifacts: artifacts,
			formats:   []string{"svg", "txt"},
			input:     "portfolio.toml",
			output:    base,
			quiet:     true,
		})
		if err != nil {
			t.Fatalf("writeArtifacts() error: %v", err)
		}
		assertFile(t, filepath.Join(dir, "multi.svg"), "<svg/>")
		assertFile(t, filepath.Join(dir, "multi.txt"), "text")
	})

	t.Run("stdout takes one format", func(t *testing.T) {
		err := writeArtifacts(artifactWriteParams{
			artifacts: artifacts,
			formats:   []string{"svg", "txt"},
			output:    "-",
		})
		if err == nil {
			t.Error("writeArtifacts() to stdout with two formats expected error")
		}
	})
}

func assertFile(t *testing.T, path, want string) {
	t.Helper()
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if string(got) != want {
		t.Errorf("%s = %q, want %q", path, got, want)
	}
}

func TestRunRender(t *testing.T) {
	input := writeHoldings(t)
	c := testCLI(t)

	var lf layoutFlags
	cmd := &cobra.Command{}
	addLayoutFlags(cmd, &lf)
	if err := cmd.Flags().Parse([]string{"--width", "300", "--height", "200"}); err != nil {
		t.Fatal(err)
	}
	opts, err := c.layoutOptions(cmd, input, lf)
	if err != nil {
		t.Fatalf("layoutOptions() error: %v", err)
	}
	setCLIDefaults(&opts)
	opts.Formats = []string{pipeline.FormatSVG, pipeline.FormatJSON, pipeline.FormatText}

	if err := c.runRender(context.Background(), opts, "", true); err != nil {
		t.Fatalf("runRender() error: %v", err)
	}

	base := strings.TrimSuffix(input, ".toml")
	svg, err := os.ReadFile(base + ".svg")
	if err != nil {
		t.Fatalf("read svg: %v", err)
	}
	if !bytes.Contains(svg, []byte("ACME")) || !bytes.Contains(svg, []byte("Initech")) {
		t.Error("svg should name both positive holdings")
	}
	if bytes.Contains(svg, []byte("Closed")) {
		t.Error("svg should not draw a zero holding")
	}

	doc, err := document.ReadLayoutFile(base + ".json")
	if err != nil {
		t.Fatalf("ReadLayoutFile() error: %v", err)
	}
	if len(doc.Cells) != 2 || doc.Dropped != 1 {
		t.Errorf("layout cells = %d, dropped = %d; want 2, 1", len(doc.Cells), doc.Dropped)
	}
	if doc.Width != 300 || doc.Height != 200 {
		t.Errorf("layout canvas = %vx%v, want 300x200", doc.Width, doc.Height)
	}

	if _, err := os.Stat(base + ".txt"); err != nil {
		t.Errorf("txt output missing: %v", err)
	}
}

func TestRunLayoutThenVisualize(t *testing.T) {
	input := writeHoldings(t)
	c := testCLI(t)

	var lf layoutFlags
	cmd := &cobra.Command{}
	addLayoutFlags(cmd, &lf)
	opts, err := c.layoutOptions(cmd, input, lf)
	if err != nil {
		t.Fatalf("layoutOptions() error: %v", err)
	}

	if err := c.runLayout(context.Background(), opts, "", false); err != nil {
		t.Fatalf("runLayout() error: %v", err)
	}
	layoutPath := strings.TrimSuffix(input, ".toml") + ".layout.json"

	ropts := pipeline.Options{Formats: []string{pipeline.FormatSVG}}
	setCLIDefaults(&ropts)
	out := filepath.Join(filepath.Dir(input), "map.svg")
	if err := c.runVisualize(context.Background(), layoutPath, ropts, out, false); err != nil {
		t.Fatalf("runVisualize() error: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.Contains(data, []byte("<svg")) {
		t.Error("visualize output is not an SVG document")
	}
}

func TestReadLayoutStdin(t *testing.T) {
	input := writeHoldings(t)
	c := testCLI(t)

	var lf layoutFlags
	cmd := &cobra.Command{}
	addLayoutFlags(cmd, &lf)
	opts, err := c.layoutOptions(cmd, input, lf)
	if err != nil {
		t.Fatalf("layoutOptions() error: %v", err)
	}
	f, err := pipeline.Load(opts)
	if err != nil {
		t.Fatal(err)
	}
	want, err := pipeline.GenerateLayout(f, opts)
	if err != nil {
		t.Fatal(err)
	}
	data, err := document.MarshalLayout(want)
	if err != nil {
		t.Fatal(err)
	}

	got, err := readLayout("-", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("readLayout(-) error: %v", err)
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("readLayout(-) mismatch (-want +got):\n%s", diff)
	}

	if _, err := readLayout("-", strings.NewReader(`{"viz_type": "tower"}`)); err == nil {
		t.Error("readLayout(-) with a foreign document expected error")
	}
}
