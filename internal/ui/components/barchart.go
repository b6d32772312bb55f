package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"mdash/internal/ui/theme"
)

var (
	barLabelStyle = lipgloss.NewStyle().Foreground(theme.Subtext0).Width(18)
	barFillStyle  = lipgloss.NewStyle().Foreground(theme.Green)
	barDropStyle  = lipgloss.NewStyle().Foreground(theme.Red)
)

// Bar is one labeled row of a horizontal bar chart. Percent may be negative,
// which renders as a regression in the warning color.
type Bar struct {
	Label   string
	Percent int
}

// RenderBars draws one row per bar, scaled so the longest bar fits width.
// A zero or negative max keeps the chart readable by scaling against 100.
func RenderBars(bars []Bar, width int) string {
	if len(bars) == 0 {
		return theme.Muted.Render("no data")
	}
	maxAbs := 0
	for _, b := range bars {
		abs := b.Percent
		if abs < 0 {
			abs = -abs
		}
		if abs > maxAbs {
			maxAbs = abs
		}
	}
	if maxAbs == 0 {
		maxAbs = 100
	}
	barW := width - 18 - 7
	if barW < 8 {
		barW = 8
	}

	var sb strings.Builder
	for _, b := range bars {
		abs := b.Percent
		fill := barFillStyle
		if abs < 0 {
			abs = -abs
			fill = barDropStyle
		}
		n := abs * barW / maxAbs
		if n == 0 && abs > 0 {
			n = 1
		}
		sb.WriteString(barLabelStyle.Render(b.Label))
		sb.WriteString(fill.Render(strings.Repeat("█", n)))
		sb.WriteString(fmt.Sprintf(" %d%%\n", b.Percent))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// RenderPair draws a before/after pair as two stacked mini bars so the drop
// between them is visible at a glance.
func RenderPair(label string, before, after float64, width int) string {
	maxVal := before
	if after > maxVal {
		maxVal = after
	}
	if maxVal == 0 {
		maxVal = 1
	}
	barW := width - 18 - 9
	if barW < 8 {
		barW = 8
	}
	row := func(tag string, v float64, style lipgloss.Style) string {
		n := int(v / maxVal * float64(barW))
		if n == 0 && v > 0 {
			n = 1
		}
		return barLabelStyle.Render(label+" "+tag) + style.Render(strings.Repeat("▆", n)) + fmt.Sprintf(" %.1f", v)
	}
	return row("pre", before, barDropStyle) + "\n" + row("post", after, barFillStyle)
}
