package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/matzehuels/easel/pkg/calculator"
	"github.com/matzehuels/easel/pkg/paper"
	"github.com/matzehuels/easel/pkg/warnings"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleHeader  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleKey     = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	fmt.Println(warningLine(fmt.Sprintf(format, args...)))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	fmt.Println(keyValueLine(key, value))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func warningLine(msg string) string {
	return styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg)
}

func keyValueLine(key, value string) string {
	return styleKey.Render(key) + " " + StyleValue.Render(value)
}

// =============================================================================
// Measurements
// =============================================================================

// inches formats v with at most three decimals and no trailing zeros.
func inches(v float64) string {
	return humanize.FtoaWithDigits(v, 3)
}

// sizeString formats a size as `8 × 10 in`.
func sizeString(s paper.Size) string {
	return inches(s.Width) + " × " + inches(s.Height) + " in"
}

// ratioString formats a ratio as `3:2`.
func ratioString(s paper.Size) string {
	return inches(s.Width) + ":" + inches(s.Height)
}

// =============================================================================
// Result Display
// =============================================================================

// renderResult formats a calculator snapshot for the terminal: dimensions,
// a blade table and any active warnings.
func renderResult(snap calculator.Snapshot) string {
	var b strings.Builder
	d := snap.Derived.Dimensions
	g := snap.Derived.Geometry

	b.WriteString(keyValueLine("Paper", sizeString(d.Paper)) + "\n")
	b.WriteString(keyValueLine("Ratio", ratioString(d.Ratio)) + "\n")
	b.WriteString(keyValueLine("Image", sizeString(g.Print)) + "\n")

	border := inches(g.EffectiveBorder) + " in"
	if g.SearchUsed {
		border += StyleDim.Render(" (requested " + inches(g.RequestedBorder) + ")")
	}
	b.WriteString(keyValueLine("Border", border) + "\n")

	if g.Offset.X != 0 || g.Offset.Y != 0 {
		b.WriteString(keyValueLine("Offset", fmt.Sprintf("%s, %s in", inches(g.Offset.X), inches(g.Offset.Y))) + "\n")
	}

	if snap.State.ShowBlades {
		b.WriteString("\n" + renderBlades(snap) + "\n")
	}

	for _, w := range snap.Derived.Warnings.Active() {
		b.WriteString(warningLine(*w.Message) + "\n")
	}
	return b.String()
}

// renderBlades draws the blade table, with fractional readings when enabled.
func renderBlades(snap calculator.Snapshot) string {
	g := snap.Derived.Geometry
	r := g.Readings()
	withReadings := snap.State.ShowBladeReadings

	rows := [][]string{
		{"Left", inches(g.Blades.Left), r.Left},
		{"Right", inches(g.Blades.Right), r.Right},
		{"Top", inches(g.Blades.Top), r.Top},
		{"Bottom", inches(g.Blades.Bottom), r.Bottom},
	}
	headers := []string{"Blade", "Inches", "Reading"}
	if !withReadings {
		headers = headers[:2]
		for i := range rows {
			rows[i] = rows[i][:2]
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader.Padding(0, 1)
			}
			if col == 0 {
				return lipgloss.NewStyle().Foreground(colorGray).Padding(0, 1)
			}
			return lipgloss.NewStyle().Foreground(colorCyan).Padding(0, 1)
		})
	return t.Render()
}

// warningMessages lists the active warning texts.
func warningMessages(set warnings.Set) []string {
	var out []string
	for _, w := range set.Active() {
		out = append(out, *w.Message)
	}
	return out
}
