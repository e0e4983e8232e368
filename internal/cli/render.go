package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/squaremap/pkg/pipeline"
)

// renderCommand creates the render command, which goes from holdings to
// visual output in one step.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
		refresh    bool
		lf         layoutFlags
	)
	ropts := pipeline.Options{}
	setCLIDefaults(&ropts)

	cmd := &cobra.Command{
		Use:   "render [holdings]",
		Short: "Render a holdings file to SVG, PNG, PDF, JSON or text",
		Long: `Render a holdings file to SVG, PNG, PDF, JSON or text.

This is a shortcut for 'layout' followed by 'visualize'. PNG and PDF need
rsvg-convert on the PATH; pass --inline-icons so remote icons survive
rasterization.

Use -o - to write a single format to stdout.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeHoldings,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.layoutOptions(cmd, args[0], lf)
			if err != nil {
				return err
			}
			mergeRenderOptions(&opts, ropts)
			opts.Formats = parseFormats(formatsStr)
			opts.Refresh = refresh
			if err := opts.ValidateForRender(); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached layouts and artifacts")
	addLayoutFlags(cmd, &lf)
	addRenderFlags(cmd, &formatsStr, &ropts)

	return cmd
}

// addRenderFlags registers the flags shared by render, visualize and watch.
func addRenderFlags(cmd *cobra.Command, formats *string, opts *pipeline.Options) {
	cmd.Flags().StringVarP(formats, "format", "f", "", "output format(s): "+strings.Join(pipeline.Formats(), ", ")+" (comma-separated, default svg)")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
	cmd.Flags().BoolVar(&opts.Tooltips, "tooltips", opts.Tooltips, "embed hover tooltips in SVG output")
	cmd.Flags().StringVar(&opts.Font, "font", opts.Font, "font family for SVG text")
	cmd.Flags().Float64Var(&opts.Scale, "scale", opts.Scale, "PNG scale factor")
	cmd.Flags().IntVar(&opts.Columns, "columns", opts.Columns, "text output width in characters")
	cmd.Flags().IntVar(&opts.Rows, "rows", opts.Rows, "text output height in lines")
}

// mergeRenderOptions copies the render-only fields of src into dst.
func mergeRenderOptions(dst *pipeline.Options, src pipeline.Options) {
	dst.Tooltips = src.Tooltips
	dst.Font = src.Font
	dst.Scale = src.Scale
	dst.Columns = src.Columns
	dst.Rows = src.Rows
}

// runRender executes the full pipeline and writes every artifact.
func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering treemap...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if result.Stats.Dropped > 0 {
		printWarning("%d holdings without a positive value were left out", result.Stats.Dropped)
	}

	return writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		input:     opts.Input,
		output:    output,
		items:     result.Stats.ItemCount,
		cells:     result.Stats.CellCount,
		cacheHit:  result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit,
	})
}

// =============================================================================
// Output
// =============================================================================

// artifactWriteParams describes a set of rendered artifacts to write.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
	items     int
	cells     int
	cacheHit  bool
	quiet     bool
}

// writeArtifacts writes one file per format. A single format goes to output
// as given; several formats share output as a base path.
func writeArtifacts(p artifactWriteParams) error {
	if p.output == "-" && len(p.formats) > 1 {
		return fmt.Errorf("cannot write %d formats to stdout", len(p.formats))
	}

	var written []string
	for _, format := range p.formats {
		data, ok := p.artifacts[format]
		if !ok {
			continue
		}

		path := p.output
		if len(p.formats) > 1 || path == "" {
			path = basePath(p.output, p.input) + "." + format
		}
		if path == "-" {
			path = ""
		}

		if err := writeOutput(path, data); err != nil {
			return fmt.Errorf("write %s: %w", format, err)
		}
		if path != "" {
			written = append(written, path)
		}
	}

	if p.quiet || len(written) == 0 {
		return nil
	}
	printSuccess("Render complete")
	for _, path := range slices.Compact(written) {
		printFile(path)
	}
	printStats(p.items, p.cells, p.cacheHit)
	return nil
}

func writeOutput(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
