package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/squaremap/pkg/document"
	"github.com/matzehuels/squaremap/pkg/pipeline"
)

// layoutCommand creates the layout command for computing treemap layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		refresh bool
		lf      layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [holdings]",
		Short: "Compute a treemap layout from a holdings file",
		Long: `Compute a treemap layout from a holdings file.

The layout command reads a TOML or JSON holdings file, squarifies it onto
the canvas, assigns colors and plans the text and icon of every cell. The
output is a layout.json file (same format as 'render -f json') that can be
rendered with the 'visualize' command.

Results are cached locally for faster subsequent runs.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeHoldings,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.layoutOptions(cmd, args[0], lf)
			if err != nil {
				return err
			}
			opts.Refresh = refresh
			return c.runLayout(cmd.Context(), opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, or - for stdout (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even if a cached layout exists")
	addLayoutFlags(cmd, &lf)

	return cmd
}

// runLayout loads the holdings, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	f, err := pipeline.Load(opts)
	if err != nil {
		return fmt.Errorf("load holdings %s: %w", opts.Input, err)
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Computing treemap layout...")
	spinner.Start()

	layout, cacheHit, err := runner.GenerateLayoutWithCacheInfo(ctx, f, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if output == "-" {
		data, err := document.MarshalLayout(layout)
		if err != nil {
			return fmt.Errorf("encode layout: %w", err)
		}
		return writeOutput("", data)
	}

	outputPath := output
	if outputPath == "" {
		outputPath = basePath("", opts.Input) + ".layout.json"
	}
	if err := document.WriteLayoutFile(layout, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(f.Holdings), len(layout.Cells), cacheHit)
	printNewline()
	printNextStep("Render", appName+" visualize "+outputPath)

	return nil
}
