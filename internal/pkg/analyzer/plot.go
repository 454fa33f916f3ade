package analyzer

import (
	"bytes"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// clusterPalette follows the viridis endpoints and midpoint.
var clusterPalette = []color.Color{
	color.RGBA{R: 0x44, G: 0x01, B: 0x54, A: 0xff},
	color.RGBA{R: 0x21, G: 0x91, B: 0x8c, A: 0xff},
	color.RGBA{R: 0xfd, G: 0xe7, B: 0x25, A: 0xff},
	color.RGBA{R: 0x3b, G: 0x52, B: 0x8b, A: 0xff},
	color.RGBA{R: 0x5e, G: 0xc9, B: 0x62, A: 0xff},
}

// ScatterPNG renders points coloured by cluster label as a 6x4 inch PNG.
func ScatterPNG(points []Point, labels []int, xLabel, yLabel string) ([]byte, error) {
	p := plot.New()
	p.Title.Text = "Clustering Results"
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel

	groups := make(map[int]plotter.XYs)
	maxLabel := 0
	for i, pt := range points {
		groups[labels[i]] = append(groups[labels[i]], plotter.XY{X: pt.X, Y: pt.Y})
		maxLabel = max(maxLabel, labels[i])
	}

	for label := 0; label <= maxLabel; label++ {
		xys, ok := groups[label]
		if !ok {
			continue
		}
		s, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, err
		}
		s.GlyphStyle.Color = clusterPalette[label%len(clusterPalette)]
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		s.GlyphStyle.Radius = vg.Points(4)
		p.Add(s)
	}

	wt, err := p.WriterTo(6*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
