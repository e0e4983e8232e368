package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// stdout receives all status output. Tests replace it.
var stdout io.Writer = os.Stdout

// =============================================================================
// Colors and Styles
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	// StyleTitle renders headings and the viewer title.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	// StyleHighlight renders paths and names the user typed.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	// StyleLink renders URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)
	// StyleDim renders secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)
	// StyleValue renders holding names and other values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)
	// StyleNumber renders shares and counts.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)
	// StyleWarning renders warning text.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

// statusKind pairs a leading icon with its color.
type statusKind struct {
	icon  string
	style lipgloss.Style
}

var (
	statusSuccess = statusKind{"✓", lipgloss.NewStyle().Foreground(colorGreen)}
	statusError   = statusKind{"✗", lipgloss.NewStyle().Foreground(colorRed)}
	statusWarning = statusKind{"!", lipgloss.NewStyle().Foreground(colorYellow)}
	statusInfo    = statusKind{"›", lipgloss.NewStyle().Foreground(colorGray)}

	statusCached = lipgloss.NewStyle().Foreground(colorGreen).Render("cached")
	statusFresh  = lipgloss.NewStyle().Foreground(colorGray).Render("fresh")
)

// =============================================================================
// Status Output
// =============================================================================

func printStatus(k statusKind, msg string) {
	fmt.Fprintln(stdout, k.style.Render(k.icon)+" "+msg)
}

func printSuccess(format string, args ...any) {
	printStatus(statusSuccess, fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	printStatus(statusError, fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	printStatus(statusWarning, StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	printStatus(statusInfo, fmt.Sprintf(format, args...))
}

// printDetail prints an indented secondary line under a status line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints an output path written by a command.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render("→")+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(stdout, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// printStats prints one line such as "3 holdings · 2 cells · 1 dropped ·
// fresh". Holdings without a cell are reported as dropped.
func printStats(items, cells int, cached bool) {
	var parts []string
	if items > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d holdings", items)))
	}
	if cells > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d cells", cells)))
	}
	if dropped := items - cells; items > 0 && dropped > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d dropped", dropped)))
	}
	if cached {
		parts = append(parts, statusCached)
	} else {
		parts = append(parts, statusFresh)
	}
	fmt.Fprintln(stdout, "  "+strings.Join(parts, StyleDim.Render(" · ")))
}

// printNextStep suggests the command to run next.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Fprintln(stdout)
}
