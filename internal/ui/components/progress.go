package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/phishdrill/internal/ui/theme"
)

// ProgressBar displays a horizontal progress bar.
type ProgressBar struct {
	Label   string
	Percent float64
	Suffix  string
	Width   int
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(label string, percent float64, width int) ProgressBar {
	return ProgressBar{
		Label:   label,
		Percent: percent,
		Width:   width,
	}
}

// DifficultyMeter is a progress bar over the [lo, hi] difficulty range,
// suffixed with the value itself.
func DifficultyMeter(value, lo, hi float64, width int) ProgressBar {
	p := 0.0
	if hi > lo {
		p = (value - lo) / (hi - lo)
	}
	bar := NewProgressBar("Difficulty", p, width)
	bar.Suffix = fmt.Sprintf("%.2f", value)
	return bar
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string

	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	labelWidth := lipgloss.Width(result)
	suffixWidth := 0
	if p.Suffix != "" {
		suffixWidth = len(p.Suffix) + 2
	}

	barWidth := p.Width - labelWidth - suffixWidth
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth) * p.Percent)
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}
	empty := barWidth - filled

	result += lipgloss.NewStyle().
		Foreground(theme.Meter).
		Render(strings.Repeat("█", filled))
	result += lipgloss.NewStyle().
		Foreground(theme.Border).
		Render(strings.Repeat("░", empty))

	if p.Suffix != "" {
		result += lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Render("  " + p.Suffix)
	}

	return result
}
