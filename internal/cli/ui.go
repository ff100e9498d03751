package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/kintree/pkg/render"
)

// uiOut receives all human-facing status output. Logs go to the logger's
// writer instead.
var uiOut io.Writer = os.Stdout

// =============================================================================
// Palette
// =============================================================================

// The chart colors double as the terminal accent colors so the browser and
// the rendered SVG look alike.
var (
	colorTeal  = lipgloss.Color(render.ColorTeal)
	colorRose  = lipgloss.Color(render.ColorBurgundy)
	colorGold  = lipgloss.Color(render.ColorGold)
	colorGreen = lipgloss.Color("35")
	colorRed   = lipgloss.Color("167")
	colorAmber = lipgloss.Color("220")
	colorBlue  = lipgloss.Color("75")
	colorWhite = lipgloss.Color("255")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")
)

var (
	// StyleTitle for headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorTeal)

	// StyleLink for URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleDim for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleWarning for warning text.
	StyleWarning = lipgloss.NewStyle().Foreground(colorAmber)
)

// marker is a one-character status prefix.
type marker struct {
	glyph string
	style lipgloss.Style
}

var (
	markSuccess = marker{"✓", lipgloss.NewStyle().Foreground(colorGreen)}
	markError   = marker{"✗", lipgloss.NewStyle().Foreground(colorRed)}
	markWarning = marker{"!", lipgloss.NewStyle().Foreground(colorAmber)}
	markInfo    = marker{"›", lipgloss.NewStyle().Foreground(colorGray)}
	markSpinner = lipgloss.NewStyle().Foreground(colorTeal)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleCached  = lipgloss.NewStyle().Foreground(colorGreen)
	styleFresh   = lipgloss.NewStyle().Foreground(colorGray)
	styleKey     = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

// =============================================================================
// Status Lines
// =============================================================================

func (m marker) print(msg string) {
	fmt.Fprintln(uiOut, m.style.Render(m.glyph)+" "+msg)
}

func printSuccess(format string, args ...any) { markSuccess.print(fmt.Sprintf(format, args...)) }

func printError(format string, args ...any) { markError.print(fmt.Sprintf(format, args...)) }

func printInfo(format string, args ...any) { markInfo.print(fmt.Sprintf(format, args...)) }

func printWarning(format string, args ...any) {
	markWarning.print(StyleWarning.Render(fmt.Sprintf(format, args...)))
}

// printDetail prints an indented, dimmed line under the previous status.
func printDetail(format string, args ...any) {
	fmt.Fprintln(uiOut, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile announces a written output file.
func printFile(path string) {
	fmt.Fprintln(uiOut, "  "+StyleDim.Render("→")+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(uiOut, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// printStats summarizes a chart on one line, e.g.
// "3 people · 2 generations · 1 connector · cached".
func printStats(people, generations, edges int, cached bool) {
	parts := []string{plural(people, "person", "people")}
	if generations > 0 {
		parts = append(parts, plural(generations, "generation", "generations"))
	}
	if edges > 0 {
		parts = append(parts, plural(edges, "connector", "connectors"))
	}
	for i, p := range parts {
		parts[i] = StyleDim.Render(p)
	}
	if cached {
		parts = append(parts, styleCached.Render("cached"))
	} else {
		parts = append(parts, styleFresh.Render("fresh"))
	}
	fmt.Fprintln(uiOut, "  "+strings.Join(parts, StyleDim.Render(" · ")))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(uiOut, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func printNewline() { fmt.Fprintln(uiOut) }

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
