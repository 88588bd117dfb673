package analysis

import (
	"strings"

	"github.com/san-kum/emsim/internal/dynamo"
)

type Point2D struct{ X, Y float64 }

// Path is a trajectory projected onto one coordinate plane.
type Path struct {
	XAxis, YAxis int
	Points       []Point2D
}

// Project drops all but axes a and b (0=x, 1=y, 2=z) of centers.
func Project(centers []dynamo.Vec3, a, b int) *Path {
	if a < 0 || a > 2 || b < 0 || b > 2 {
		return nil
	}
	p := &Path{XAxis: a, YAxis: b, Points: make([]Point2D, len(centers))}
	for i, c := range centers {
		arr := c.Array()
		p.Points[i] = Point2D{X: arr[a], Y: arr[b]}
	}
	return p
}

func PathToASCII(path *Path, width, height int) string {
	if path == nil || len(path.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := path.Points[0].X, path.Points[0].X
	minY, maxY := path.Points[0].Y, path.Points[0].Y
	for _, p := range path.Points {
		minX = min(minX, p.X)
		maxX = max(maxX, p.X)
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, p := range path.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	// axes, where visible
	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
