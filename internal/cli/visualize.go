package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/squaremap/pkg/document"
	"github.com/matzehuels/squaremap/pkg/pipeline"
)

// visualizeCommand creates the visualize command for rendering from a layout.
func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
	)
	opts := pipeline.Options{}
	setCLIDefaults(&opts)

	cmd := &cobra.Command{
		Use:   "visualize [layout.json | -]",
		Short: "Render a computed layout",
		Long: `Render a computed layout.

The visualize command takes a layout.json file (produced by 'layout') and
renders it to SVG, PNG, PDF or text. The layout already holds every cell's
position, colors and content, so this step is purely about rendering.
Pass - to read the layout from stdin:

  squaremap layout portfolio.toml -o - | squaremap visualize - -o map.svg

Use 'render' as a shortcut to go directly from holdings to visual output.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeLayouts,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			if err := opts.ValidateForRender(); err != nil {
				return err
			}
			return c.runVisualize(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	addRenderFlags(cmd, &formatsStr, &opts)

	return cmd
}

// readLayout reads a layout document from path, or from r when path is "-".
func readLayout(path string, r io.Reader) (document.Layout, error) {
	if path != "-" {
		return document.ReadLayoutFile(path)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return document.Layout{}, fmt.Errorf("read stdin: %w", err)
	}
	return document.UnmarshalLayout(data)
}

// runVisualize loads the layout and renders it. Output names derive from
// input unless given; stdin input defaults to "treemap".
func (c *CLI) runVisualize(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	layout, err := readLayout(input, os.Stdin)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}
	name := input
	if input == "-" {
		name = "treemap"
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Rendering treemap...")
	spinner.Start()

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, layout, opts)
	if err != nil {
		spinner.StopWithError("Visualization failed")
		return fmt.Errorf("visualize: %w", err)
	}
	spinner.Stop()

	return writeArtifacts(artifactWriteParams{
		artifacts: artifacts,
		formats:   opts.Formats,
		input:     name,
		output:    output,
		items:     len(layout.Cells) + layout.Dropped,
		cells:     len(layout.Cells),
		cacheHit:  cacheHit,
	})
}
