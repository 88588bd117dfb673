package tui

import (
	"strings"

	"github.com/san-kum/emsim/internal/dynamo"
)

// Canvas is a character grid over an xy window of scene coordinates.
// The window only ever grows, so trails stay put while particles roam.
type Canvas struct {
	w, h                   int
	cells                  [][]rune
	minX, maxX, minY, maxY float64
	sized                  bool
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{w: w, h: h, cells: make([][]rune, h)}
	for i := range c.cells {
		c.cells[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

func (c *Canvas) Clear() {
	for y := range c.cells {
		for x := range c.cells[y] {
			c.cells[y][x] = ' '
		}
	}
}

// Fit widens the window to contain every point with a margin.
func (c *Canvas) Fit(points ...dynamo.Vec3) {
	for _, p := range points {
		if !p.IsValid() {
			continue
		}
		if !c.sized {
			c.minX, c.maxX, c.minY, c.maxY = p.X-1, p.X+1, p.Y-1, p.Y+1
			c.sized = true
			continue
		}
		if p.X < c.minX {
			c.minX = p.X - 0.5
		}
		if p.X > c.maxX {
			c.maxX = p.X + 0.5
		}
		if p.Y < c.minY {
			c.minY = p.Y - 0.5
		}
		if p.Y > c.maxY {
			c.maxY = p.Y + 0.5
		}
	}
}

func (c *Canvas) cell(p dynamo.Vec3) (int, int, bool) {
	if !c.sized || !p.IsValid() {
		return 0, 0, false
	}
	col := int((p.X - c.minX) / (c.maxX - c.minX) * float64(c.w-1))
	row := c.h - 1 - int((p.Y-c.minY)/(c.maxY-c.minY)*float64(c.h-1))
	return col, row, col >= 0 && col < c.w && row >= 0 && row < c.h
}

func (c *Canvas) Plot(p dynamo.Vec3, r rune) {
	if x, y, ok := c.cell(p); ok {
		c.cells[y][x] = r
	}
}

// Line draws between two scene points (Bresenham).
func (c *Canvas) Line(a, b dynamo.Vec3, r rune) {
	x1, y1, ok1 := c.cell(a)
	x2, y2, ok2 := c.cell(b)
	if !ok1 || !ok2 {
		return
	}
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy
	for {
		c.cells[y1][x1] = r
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.cells {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
