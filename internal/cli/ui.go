package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/occupancy/pkg/pipeline"
	"github.com/matzehuels/occupancy/pkg/render/locale"
	"github.com/matzehuels/occupancy/pkg/timeline"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions, totals
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - links
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

	// StyleLink for URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleSelected for the focused item in the year browser.
	StyleSelected = lipgloss.NewStyle().Bold(true).Foreground(colorWhite).Background(colorDim)

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

	styleSkipped = lipgloss.NewStyle().Foreground(colorYellow)
	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey     = lipgloss.NewStyle().Foreground(colorGray).Width(12)
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

// statusOut receives human-oriented status lines. Artifacts streamed with
// "-o -" go to the command's writer instead, so the two never mix.
var statusOut io.Writer = os.Stdout

// status writes one line: an optional styled icon, then the message.
func status(icon string, iconStyle lipgloss.Style, msg string) {
	if icon != "" {
		msg = iconStyle.Render(icon) + " " + msg
	}
	fmt.Fprintln(statusOut, msg)
}

func printSuccess(format string, args ...any) {
	status(iconSuccess, styleIconSuccess, fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	status(iconError, styleIconError, fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	status(iconWarning, styleIconWarning, StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	status(iconInfo, styleIconInfo, fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	status("", lipgloss.Style{}, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written output path.
func printFile(path string) {
	status("", lipgloss.Style{}, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// printKeyValue prints a labeled value in a fixed-width key column.
func printKeyValue(key, value string) {
	status("", lipgloss.Style{}, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// printNextStep prints a suggested follow-up command.
func printNextStep(description, cmd string) {
	status("", lipgloss.Style{}, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func printNewline() { fmt.Fprintln(statusOut) }

// =============================================================================
// Run Reports
// =============================================================================

// printStats prints counts and the total run time on one dimmed line.
func printStats(st pipeline.Stats) {
	parts := []string{
		fmt.Sprintf("%d supports", st.Supports),
		fmt.Sprintf("%d bookings", st.Bookings),
		fmt.Sprintf("%d rows", st.Rows),
	}
	if st.Skipped > 0 {
		parts = append(parts, styleSkipped.Render(fmt.Sprintf("%d skipped", st.Skipped)))
	}
	parts = append(parts, (st.LoadTime + st.LayoutTime + st.RenderTime).Round(time.Millisecond).String())

	for i, part := range parts {
		parts[i] = StyleDim.Render(part)
	}
	status("", lipgloss.Style{}, "  "+strings.Join(parts, StyleDim.Render(" · ")))
}

// printSummary prints the year totals. Month names follow loc.
func printSummary(sum timeline.Summary, loc *locale.Localizer) {
	printKeyValue(loc.T(locale.LabelPeak), StyleNumber.Render(fmt.Sprint(sum.Peak)))
	printKeyValue(loc.T(locale.LabelTotal), sum.Total.StringFixed(2))
	if sum.BusiestMonth >= 0 {
		printKeyValue(loc.T(locale.LabelBusiest), fmt.Sprintf("%s (%d %s)",
			loc.Month(sum.BusiestMonth), sum.Occupancy[sum.BusiestMonth], strings.ToLower(loc.T(locale.LabelBookings))))
	}
}
