package export

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/san-kum/buoysim/internal/dynamo"
)

// DepthPlot builds a depth-over-time chart with the target marked. The Y
// axis is inverted so deeper reads lower.
func DepthPlot(trace dynamo.Trace, target float64, title string) (*plot.Plot, error) {
	if len(trace) < 2 {
		return nil, fmt.Errorf("depth plot: %w", dynamo.ErrEmptyTrace)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = "depth (m)"
	p.Title.Padding = vg.Points(8)
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(trace))
	for i, r := range trace {
		pts[i].X = r.T
		pts[i].Y = -r.Z
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.LineStyle.Width = vg.Points(1.5)
	line.LineStyle.Color = color.RGBA{R: 0, G: 0x99, B: 0xcc, A: 0xff}

	first, last := trace[0].T, trace[len(trace)-1].T
	ref, err := plotter.NewLine(plotter.XYs{{X: first, Y: -target}, {X: last, Y: -target}})
	if err != nil {
		return nil, err
	}
	ref.LineStyle.Color = color.RGBA{R: 0xff, G: 0xaa, A: 0xff}
	ref.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}

	p.Add(line, ref)
	p.Legend.Add("depth", line)
	p.Legend.Add("target", ref)
	return p, nil
}

// WriteDepthPNG renders DepthPlot at widthIn x heightIn inches.
func WriteDepthPNG(w io.Writer, trace dynamo.Trace, target float64, title string, widthIn, heightIn float64) error {
	p, err := DepthPlot(trace, target, title)
	if err != nil {
		return err
	}

	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch),
		vgimg.UseDPI(150),
	)
	p.Draw(draw.New(c))

	pngc := vgimg.PngCanvas{Canvas: c}
	if _, err := pngc.WriteTo(w); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	return nil
}
