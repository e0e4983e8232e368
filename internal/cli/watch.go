package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/matzehuels/squaremap/pkg/pipeline"
)

// defaultDebounce coalesces the burst of events editors produce per save.
const defaultDebounce = 200 * time.Millisecond

// watchCommand creates the watch command, which re-renders on every change
// to the holdings file.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		debounce   time.Duration
		lf         layoutFlags
	)
	ropts := pipeline.Options{}
	setCLIDefaults(&ropts)

	cmd := &cobra.Command{
		Use:   "watch [holdings]",
		Short: "Re-render whenever a holdings file changes",
		Long: `Re-render whenever a holdings file changes.

The file is rendered once at start and again after every write. The layout
cache is bypassed so every render reflects the file on disk. Errors are
reported and watching continues. Press Ctrl+C to stop.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeHoldings,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.layoutOptions(cmd, args[0], lf)
			if err != nil {
				return err
			}
			mergeRenderOptions(&opts, ropts)
			opts.Formats = parseFormats(formatsStr)
			if err := opts.ValidateForRender(); err != nil {
				return err
			}
			return c.runWatch(cmd.Context(), opts, output, debounce)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().DurationVar(&debounce, "debounce", defaultDebounce, "quiet period before re-rendering")
	addLayoutFlags(cmd, &lf)
	addRenderFlags(cmd, &formatsStr, &ropts)

	return cmd
}

// runWatch renders opts.Input and then re-renders on change until ctx ends.
func (c *CLI) runWatch(ctx context.Context, opts pipeline.Options, output string, debounce time.Duration) error {
	path, err := filepath.Abs(opts.Input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, true)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	logger := loggerFromContext(ctx)
	render := func() {
		prog := newProgress(logger)
		result, err := runner.Execute(ctx, opts)
		if err != nil {
			printError("%v", err)
			return
		}
		if err := writeArtifacts(artifactWriteParams{
			artifacts: result.Artifacts,
			formats:   opts.Formats,
			input:     opts.Input,
			output:    output,
			quiet:     true,
		}); err != nil {
			printError("%v", err)
			return
		}
		prog.done(fmt.Sprintf("Rendered %d cells", result.Stats.CellCount))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace the file rather than write it, so watch the
	// directory and filter by name.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	render()
	printInfo("Watching %s", StyleHighlight.Render(opts.Input))

	changes := make(chan struct{}, 1)
	go func() {
		debounceEvents(ctx, watcher.Events, path, debounce, changes)
	}()

	for {
		select {
		case <-ctx.Done():
			printNewline()
			return nil
		case <-changes:
			render()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			printWarning("watcher: %v", err)
		}
	}
}

// debounceEvents forwards one signal to out after events for path stop
// arriving for the quiet period. It returns when ctx ends or events closes.
func debounceEvents(ctx context.Context, events <-chan fsnotify.Event, path string, quiet time.Duration, out chan<- struct{}) {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if !relevant(ev, path) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(quiet)
			} else {
				timer.Reset(quiet)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			select {
			case out <- struct{}{}:
			default:
			}
		}
	}
}

// relevant reports whether ev changes the contents of path.
func relevant(ev fsnotify.Event, path string) bool {
	if filepath.Clean(ev.Name) != path {
		return false
	}
	return ev.Op&fsnotify.Write == fsnotify.Write ||
		ev.Op&fsnotify.Create == fsnotify.Create ||
		ev.Op&fsnotify.Rename == fsnotify.Rename
}
