package analysis

import (
	"strings"

	"github.com/san-kum/buoysim/internal/dynamo"
)

type Point struct {
	X, Y float64
}

// PhasePortrait holds depth (X) against velocity (Y).
type PhasePortrait struct {
	Points []Point
}

func NewPhasePortrait(trace dynamo.Trace) *PhasePortrait {
	p := &PhasePortrait{Points: make([]Point, len(trace))}
	for i, r := range trace {
		p.Points[i] = Point{X: r.Z, Y: r.V}
	}
	return p
}

// ASCII renders the portrait with axes where they cross the visible area.
func (p *PhasePortrait) ASCII(width, height int) string {
	if p == nil || len(p.Points) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minX, maxX := p.Points[0].X, p.Points[0].X
	minY, maxY := p.Points[0].Y, p.Points[0].Y
	for _, pt := range p.Points {
		minX, maxX = min(minX, pt.X), max(maxX, pt.X)
		minY, maxY = min(minY, pt.Y), max(maxY, pt.Y)
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

	for _, pt := range p.Points {
		col := int((pt.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((pt.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if col >= 0 && col < width && canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && canvas[row][col] == ' ' {
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

// TargetCrossings returns the interpolated times at which depth passes
// target in either direction.
func TargetCrossings(trace dynamo.Trace, target float64) []float64 {
	var out []float64
	for i := 1; i < len(trace); i++ {
		prev, cur := trace[i-1].Z-target, trace[i].Z-target
		if prev == 0 || (prev < 0) == (cur < 0) {
			continue
		}
		frac := prev / (prev - cur)
		out = append(out, trace[i-1].T+frac*(trace[i].T-trace[i-1].T))
	}
	return out
}
