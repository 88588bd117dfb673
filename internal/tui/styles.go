package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/emsim/internal/dynamo"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("#444466"))

	MetricLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899"))

	MetricValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ccff")).
			Bold(true)

	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(0, 1)
)

// ProgressBar renders a fraction in [0, 1] as a width-cell bar.
func ProgressBar(frac float64, width int) string {
	filled := int(frac * float64(width))
	filled = max(0, min(filled, width))
	return cyan.Render(strings.Repeat("━", filled)) + dimmer.Render(strings.Repeat("─", width-filled))
}

func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	// newest values win when there are more than fit
	if len(values) > width {
		values = values[len(values)-width:]
	}
	var sb strings.Builder
	for _, v := range values {
		idx := int((v - lo) / rng * 7)
		sb.WriteRune(chars[max(0, min(idx, 7))])
	}
	return sb.String()
}

// Metrics renders name/value pairs in the given order.
func Metrics(names []string, values map[string]float64) string {
	var b strings.Builder
	for _, name := range names {
		b.WriteString(MetricLabel.Render(fmt.Sprintf("  %-16s", name)))
		b.WriteString(MetricValue.Render(fmt.Sprintf("%12.6g", values[name])))
		b.WriteString("\n")
	}
	return b.String()
}

// FieldTable lists field vectors at their sample points. Rows beyond limit
// are elided; limit <= 0 prints everything.
func FieldTable(name string, points, values []dynamo.Vec3, limit int) string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render(fmt.Sprintf("%s  (%d points)", name, len(points))))
	b.WriteString("\n")
	b.WriteString(dim.Render(fmt.Sprintf("%8s %8s %8s   %12s %12s %12s %12s", "x", "y", "z", "fx", "fy", "fz", "|f|")))
	b.WriteString("\n")

	for i, p := range points {
		if limit > 0 && i >= limit {
			b.WriteString(dim.Render(fmt.Sprintf("  … %d more", len(points)-limit)))
			b.WriteString("\n")
			break
		}
		v := values[i]
		norm := v.Norm()
		mag := white.Render(fmt.Sprintf("%12.5g", norm))
		switch {
		case !v.IsValid():
			mag = red.Render(fmt.Sprintf("%12s", "invalid"))
		case norm == 0:
			mag = dimmer.Render(fmt.Sprintf("%12.5g", norm))
		}
		b.WriteString(fmt.Sprintf("%8.3f %8.3f %8.3f   %12.5g %12.5g %12.5g %s\n", p.X, p.Y, p.Z, v.X, v.Y, v.Z, mag))
	}
	return b.String()
}
