// Package export renders recorded runs and sampled fields as SVG.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/emsim/internal/analysis"
	"github.com/san-kum/emsim/internal/dynamo"
)

var palette = []string{"#00ffcc", "#ff66cc", "#ffcc00", "#66aaff", "#ff6644", "#aaff66"}

type bounds struct {
	minX, maxX, minY, maxY float64
}

func fit(points []analysis.Point2D) bounds {
	b := bounds{math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)}
	for _, p := range points {
		b.minX = min(b.minX, p.X)
		b.maxX = max(b.maxX, p.X)
		b.minY = min(b.minY, p.Y)
		b.maxY = max(b.maxY, p.Y)
	}

	rangeX := b.maxX - b.minX
	rangeY := b.maxY - b.minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	b.minX -= rangeX * 0.1
	b.maxX += rangeX * 0.1
	b.minY -= rangeY * 0.1
	b.maxY += rangeY * 0.1
	return b
}

func (b bounds) project(p analysis.Point2D, width, height int) (float64, float64) {
	x := (p.X - b.minX) / (b.maxX - b.minX) * float64(width)
	y := float64(height) - (p.Y-b.minY)/(b.maxY-b.minY)*float64(height)
	return x, y
}

func header(sb *strings.Builder, width, height int) {
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))
}

// TrajectoriesSVG draws one polyline per path on shared axes, with a
// legend in path order.
func TrajectoriesSVG(names []string, paths []*analysis.Path, width, height int) string {
	var all []analysis.Point2D
	for _, p := range paths {
		if p != nil {
			all = append(all, p.Points...)
		}
	}
	if len(all) < 2 {
		return ""
	}
	b := fit(all)

	var sb strings.Builder
	header(&sb, width, height)

	for i, path := range paths {
		if path == nil || len(path.Points) == 0 {
			continue
		}
		color := palette[i%len(palette)]
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, color))
		for j, p := range path.Points {
			x, y := b.project(p, width, height)
			if j == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")

		if i < len(names) {
			sb.WriteString(fmt.Sprintf(`<text x="8" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>
`, 16*(i+1), color, names[i]))
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// FieldSVG draws an arrow per sample in the xy plane. Arrow length grows
// with log(1+|f|) and is capped at one cell, so the strong near-field does
// not swamp the rest. Invalid vectors are marked with a red dot.
func FieldSVG(points, values []dynamo.Vec3, cell float64, width, height int) string {
	if len(points) == 0 || len(points) != len(values) {
		return ""
	}
	flat := make([]analysis.Point2D, len(points))
	for i, p := range points {
		flat[i] = analysis.Point2D{X: p.X, Y: p.Y}
	}
	b := fit(flat)

	peak := 0.0
	for _, v := range values {
		if v.IsValid() {
			peak = max(peak, math.Log1p(v.Norm()))
		}
	}
	if peak == 0 {
		peak = 1
	}
	scale := float64(width) / (b.maxX - b.minX) * cell * 0.9

	var sb strings.Builder
	header(&sb, width, height)
	sb.WriteString("<g stroke=\"#00ffcc\" stroke-width=\"1.2\" fill=\"#00ffcc\">\n")

	for i, p := range flat {
		x, y := b.project(p, width, height)
		v := values[i]
		if !v.IsValid() {
			sb.WriteString(fmt.Sprintf("<circle cx=\"%.1f\" cy=\"%.1f\" r=\"2\" fill=\"#ff4444\" stroke=\"none\"/>\n", x, y))
			continue
		}
		n := math.Hypot(v.X, v.Y)
		if n == 0 {
			sb.WriteString(fmt.Sprintf("<circle cx=\"%.1f\" cy=\"%.1f\" r=\"0.8\" stroke=\"none\"/>\n", x, y))
			continue
		}
		length := math.Log1p(v.Norm()) / peak * scale
		dx, dy := v.X/n*length, -v.Y/n*length
		sb.WriteString(fmt.Sprintf("<line x1=\"%.1f\" y1=\"%.1f\" x2=\"%.1f\" y2=\"%.1f\"/>\n", x, y, x+dx, y+dy))
		sb.WriteString(fmt.Sprintf("<circle cx=\"%.1f\" cy=\"%.1f\" r=\"1.5\" stroke=\"none\"/>\n", x+dx, y+dy))
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}
