package cli

import (
	"context"
	"fmt"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/squaremap/pkg/core/interact"
	"github.com/matzehuels/squaremap/pkg/core/render"
	"github.com/matzehuels/squaremap/pkg/core/render/sink"
	"github.com/matzehuels/squaremap/pkg/core/treemap"
	"github.com/matzehuels/squaremap/pkg/holdings"
	"github.com/matzehuels/squaremap/pkg/pipeline"
)

// viewCommand creates the interactive terminal viewer.
func (c *CLI) viewCommand() *cobra.Command {
	var lf layoutFlags

	cmd := &cobra.Command{
		Use:   "view [holdings]",
		Short: "Explore a treemap in the terminal",
		Long: `Explore a treemap in the terminal.

The treemap fills the terminal and is laid out again whenever the window is
resized. Move the mouse over a cell to see its name, value and share.

Keys: l toggles the legend, q quits.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeHoldings,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.layoutOptions(cmd, args[0], lf)
			if err != nil {
				return err
			}
			return c.runView(cmd.Context(), opts)
		},
	}

	addLayoutFlags(cmd, &lf)
	return cmd
}

// runView loads the holdings and runs the viewer until the user quits.
func (c *CLI) runView(ctx context.Context, opts pipeline.Options) error {
	f, err := pipeline.Load(opts)
	if err != nil {
		return fmt.Errorf("load holdings %s: %w", opts.Input, err)
	}

	m := newViewModel(f, terminalOptions(opts), opts.Input)
	defer m.layer.Close()

	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen(), tea.WithMouseAllMotion())
	_, err = p.Run()
	return err
}

// terminalOptions converts pixel layout options to character cells. The
// canvas is set on every resize.
func terminalOptions(opts pipeline.Options) pipeline.Options {
	cfg := sink.TerminalContentConfig()
	cfg.ValueMode = opts.Content.ValueMode
	cfg.Currency = opts.Content.Currency
	cfg.Decimals = opts.Content.Decimals
	cfg.Placeholder = opts.Content.Placeholder
	opts.Content = cfg
	opts.Padding = 0
	// Log lines on stderr would tear the alternate screen.
	opts.Logger = nil
	return opts
}

// =============================================================================
// Tooltip Overlay
// =============================================================================

// tooltipOverlay is the hover surface the layer drives. The view reads the
// current hit when it draws.
type tooltipOverlay struct {
	mu  sync.Mutex
	hit *interact.Hit
}

func (o *tooltipOverlay) Show(h interact.Hit) {
	o.mu.Lock()
	o.hit = &h
	o.mu.Unlock()
}

func (o *tooltipOverlay) Hide() {
	o.mu.Lock()
	o.hit = nil
	o.mu.Unlock()
}

func (o *tooltipOverlay) Release() { o.Hide() }

func (o *tooltipOverlay) current() (interact.Hit, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.hit == nil {
		return interact.Hit{}, false
	}
	return *o.hit, true
}

// =============================================================================
// viewModel - bubbletea model
// =============================================================================

// statusLines is the height reserved below the treemap.
const statusLines = 1

var (
	viewStatusStyle = lipgloss.NewStyle().Foreground(colorGray)
	viewErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
)

type viewModel struct {
	holdings holdings.File
	opts     pipeline.Options
	title    string

	layer   *interact.Layer
	overlay *tooltipOverlay

	scene       render.Scene
	width       int
	height      int
	showLegend  bool
	computeErr  error
	lastPointer interact.Point
}

func newViewModel(f holdings.File, opts pipeline.Options, title string) *viewModel {
	overlay := &tooltipOverlay{}
	layer := interact.NewLayer(
		interact.WithTooltip(sink.TerminalTooltip, 1),
		interact.WithOverlays(interact.OverlayFactoryFunc(func() (interact.Overlay, error) {
			return overlay, nil
		})),
		interact.WithLogger(opts.Logger),
	)
	return &viewModel{holdings: f, opts: opts, title: title, layer: layer, overlay: overlay}
}

func (m *viewModel) Init() tea.Cmd {
	return nil
}

func (m *viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.layer.Close()
			return m, tea.Quit
		case "l":
			m.showLegend = !m.showLegend
			m.resize(m.width, m.height)
		}
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case tea.MouseMsg:
		if msg.Action == tea.MouseActionMotion {
			m.hover(float64(msg.X), float64(msg.Y))
		}
	}
	return m, nil
}

// resize lays the holdings out again for a terminal of w×h characters and
// swaps the result into the layer.
func (m *viewModel) resize(w, h int) {
	m.width, m.height = w, h
	rows := h - statusLines
	if m.showLegend {
		rows -= m.legendHeight()
	}

	if w < 1 || rows < 1 {
		m.scene = render.Scene{}
		m.layer.Swap(treemap.Layout{})
		return
	}

	opts := m.opts
	opts.Width, opts.Height = float64(w), float64(rows)
	s, err := pipeline.Compute(m.holdings, opts)
	if err != nil {
		m.computeErr = err
		return
	}
	m.computeErr = nil
	m.scene = s
	m.layer.Swap(s.Layout)
	m.hover(m.lastPointer.X, m.lastPointer.Y)
}

func (m *viewModel) hover(x, y float64) {
	m.lastPointer = interact.Point{X: x, Y: y}
	viewport := interact.Size{W: float64(m.scene.Width()), H: float64(m.scene.Height())}
	m.layer.Hover(x, y, viewport)
}

func (m *viewModel) legendHeight() int {
	// One row per laid-out cell plus header and borders. Dropped holdings
	// are not listed.
	return treemap.Normalize(m.holdings.Items()).Len() + 4
}

func (m *viewModel) View() string {
	if m.width == 0 {
		return ""
	}
	if m.computeErr != nil {
		return viewErrorStyle.Render(m.computeErr.Error())
	}

	var opts []sink.TerminalOption
	hit, hovering := m.overlay.current()
	if hovering {
		opts = append(opts, sink.WithHover(hit))
	}

	var b strings.Builder
	b.WriteString(sink.RenderTerminal(m.scene, opts...))
	if m.showLegend && len(m.scene.Cells) > 0 {
		b.WriteString("\n")
		b.WriteString(sink.RenderLegend(m.scene))
	}
	b.WriteString("\n")
	b.WriteString(m.status(hit, hovering))
	return b.String()
}

func (m *viewModel) status(hit interact.Hit, hovering bool) string {
	left := StyleTitle.Render(m.title) + " " + StyleDim.Render(fmt.Sprintf("%d cells", len(m.scene.Cells)))
	if hovering {
		left += "  " + StyleValue.Render(hit.Node.Item.Name) + " " + StyleNumber.Render(fmt.Sprintf("%.1f%%", hit.Share*100))
	}
	return left + "  " + viewStatusStyle.Render("l legend  q quit")
}
