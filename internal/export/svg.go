package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/buoysim/internal/dynamo"
)

type Point struct {
	X, Y float64
}

// frame maps data coordinates onto a width x height canvas with 10% padding.
type frame struct {
	minX, minY, rangeX, rangeY float64
	width, height              float64
	invertY                    bool
}

func newFrame(points []Point, width, height int, invertY bool) frame {
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
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

	return frame{
		minX: minX, minY: minY,
		rangeX: maxX - minX, rangeY: maxY - minY,
		width: float64(width), height: float64(height),
		invertY: invertY,
	}
}

func (f frame) project(p Point) (float64, float64) {
	x := (p.X - f.minX) / f.rangeX * f.width
	y := (p.Y - f.minY) / f.rangeY * f.height
	if !f.invertY {
		y = f.height - y
	}
	return x, y
}

func header(sb *strings.Builder, width, height int) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)
}

func path(sb *strings.Builder, f frame, points []Point, stroke string) {
	fmt.Fprintf(sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, stroke)
	for i, p := range points {
		x, y := f.project(p)
		if i == 0 {
			fmt.Fprintf(sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString("\"/>\n")
}

// TrajectoryToSVG creates an SVG from trajectory data
func TrajectoryToSVG(points []Point, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	var sb strings.Builder
	header(&sb, width, height)
	path(&sb, newFrame(points, width, height, false), points, strokeColor)
	sb.WriteString("</svg>")
	return sb.String()
}

// DepthToSVG plots depth against time with depth increasing downward, and
// a dashed line at target.
func DepthToSVG(trace dynamo.Trace, target float64, width, height int) string {
	if len(trace) < 2 {
		return ""
	}

	points := make([]Point, len(trace))
	for i, r := range trace {
		points[i] = Point{X: r.T, Y: r.Z}
	}
	// keep the target inside the frame
	bounds := append(points, Point{X: trace[0].T, Y: target})
	f := newFrame(bounds, width, height, true)

	var sb strings.Builder
	header(&sb, width, height)

	_, ty := f.project(Point{X: trace[0].T, Y: target})
	fmt.Fprintf(&sb, `<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="#ffaa00" stroke-dasharray="6,4"/>
`, ty, width, ty)
	path(&sb, f, points, "#00ccff")
	sb.WriteString("</svg>")
	return sb.String()
}

func WriteDepthSVG(w io.Writer, trace dynamo.Trace, target float64, width, height int) error {
	svg := DepthToSVG(trace, target, width, height)
	if svg == "" {
		return fmt.Errorf("svg: %w", dynamo.ErrEmptyTrace)
	}
	_, err := io.WriteString(w, svg)
	return err
}
