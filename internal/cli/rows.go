package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/squaremap/pkg/core/treemap"
	"github.com/matzehuels/squaremap/pkg/pipeline"
)

// rowsCommand creates a debug command that draws how the squarify pass
// split the canvas into rows.
func (c *CLI) rowsCommand() *cobra.Command {
	var (
		output string
		dot    bool
		lf     layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "rows [holdings]",
		Short: "Draw the row decomposition of a layout (debug)",
		Long: `Draw the row decomposition of a layout (debug).

Shows the canvas, every row the squarify pass placed (with its orientation,
bounds and worst aspect ratio) and the cells in each row, as a Graphviz
diagram. Use --dot to print the DOT source instead of SVG.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeHoldings,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.layoutOptions(cmd, args[0], lf)
			if err != nil {
				return err
			}
			return c.runRows(cmd.Context(), opts, output, dot)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.rows.svg, - for stdout)")
	cmd.Flags().BoolVar(&dot, "dot", false, "write Graphviz DOT instead of SVG")
	addLayoutFlags(cmd, &lf)

	return cmd
}

func (c *CLI) runRows(ctx context.Context, opts pipeline.Options, output string, dot bool) error {
	f, err := pipeline.Load(opts)
	if err != nil {
		return fmt.Errorf("load holdings %s: %w", opts.Input, err)
	}
	s, err := pipeline.Compute(f, opts)
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}
	c.Logger.Debug("computed layout", "cells", len(s.Layout.Nodes), "rows", len(s.Layout.Rows))

	var (
		data []byte
		ext  = ".rows.svg"
	)
	if dot {
		data, ext = []byte(treemap.ToDOT(s.Layout)), ".rows.dot"
	} else if data, err = treemap.RenderRowsSVG(ctx, s.Layout); err != nil {
		return fmt.Errorf("render rows: %w", err)
	}

	path := output
	switch path {
	case "":
		path = basePath("", opts.Input) + ext
	case "-":
		path = ""
	}
	if err := writeOutput(path, data); err != nil {
		return err
	}
	if path != "" {
		printSuccess("Rows diagram complete")
		printFile(path)
		printStats(len(f.Holdings), len(s.Layout.Nodes), false)
	}
	return nil
}
