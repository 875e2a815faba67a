package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// statusOut receives status lines. Artifacts may be streamed to stdout, so
// status goes to stderr.
var statusOut io.Writer = os.Stderr

var (
	colorCyan  = lipgloss.Color("36")
	colorGreen = lipgloss.Color("35")
	colorRed   = lipgloss.Color("167")
	colorBlue  = lipgloss.Color("75")
	colorWhite = lipgloss.Color("255")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")

	// colorRoot matches the root fill the SVG renderer uses.
	colorRoot = lipgloss.Color("#428bca")
)

// Styles shared by the status output and the map viewer.
var (
	StyleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleDim     = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = StyleSuccess
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
	styleCommand  = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey      = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// statusf writes one status line prefixed by a styled marker.
func statusf(marker string, format string, args ...any) {
	fmt.Fprintln(statusOut, marker+" "+fmt.Sprintf(format, args...))
}

func printSuccess(format string, args ...any) {
	statusf(styleIconSuccess.Render(iconSuccess), format, args...)
}

func printError(format string, args ...any) {
	statusf(styleIconError.Render(iconError), format, args...)
}

func printInfo(format string, args ...any) {
	statusf(styleIconInfo.Render(iconInfo), format, args...)
}

// printDetail prints an indented, muted line under the previous status.
func printDetail(format string, args ...any) {
	fmt.Fprintln(statusOut, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile lists a written artifact.
func printFile(path string) {
	statusf("  "+StyleDim.Render(iconArrow), "%s", StyleValue.Render(path))
}

// statsLine summarizes a map as "N nodes · depth D · cached|fresh". Zero
// counts are left out.
func statsLine(nodeCount, depth int, cached bool) string {
	var parts []string
	if nodeCount > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d nodes", nodeCount)))
	}
	if depth > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("depth %d", depth)))
	}
	if cached {
		parts = append(parts, styleCached.Render(iconCached))
	} else {
		parts = append(parts, styleComputed.Render(iconFresh))
	}
	return "  " + strings.Join(parts, StyleDim.Render(" · "))
}

func printStats(nodeCount, depth int, cached bool) {
	fmt.Fprintln(statusOut, statsLine(nodeCount, depth, cached))
}

// printNextStep suggests a follow-up command after a blank line.
func printNextStep(description, cmd string) {
	fmt.Fprintf(statusOut, "\n%s %s\n", StyleDim.Render(description+":"), styleCommand.Render(cmd))
}

// keyValueTable renders label/value rows in a rounded table.
func keyValueTable(rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Rows(rows...).
		StyleFunc(func(_, col int) lipgloss.Style {
			if col == 0 {
				return styleKey.PaddingRight(1)
			}
			return StyleValue
		}).
		Render()
}
