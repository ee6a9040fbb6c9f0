package charts

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// ErrNoData marks a chart that had nothing to draw. Callers skip it.
var ErrNoData = errors.New("no matching data")

var (
	colorImprovement = colorRGBA(46, 160, 67, 200)   // green
	colorStable      = colorRGBA(255, 165, 0, 200)   // orange
	colorRegression  = colorRGBA(220, 53, 69, 200)   // red
	colorThreshold   = colorRGBA(220, 53, 69, 130)   // faded red
	colorSkyBlue     = colorRGBA(135, 206, 235, 220) // efficiency bars
	colorLightCoral  = colorRGBA(240, 128, 128, 220) // allocation bars
	colorCategory    = colorRGBA(75, 192, 192, 200)  // teal
)

func colorRGBA(r, g, b, a uint8) color.Color {
	return color.NRGBA{R: r, G: g, B: b, A: a}
}

func dashed(width vg.Length) draw.LineStyle {
	return draw.LineStyle{
		Width:  width,
		Dashes: []vg.Length{vg.Points(4), vg.Points(3)},
	}
}

// prettyName turns "memory_pool_efficiency" into "pool efficiency" when the
// prefix is stripped, matching the axis labels of the category subplots.
func prettyName(name, stripPrefix string) string {
	if stripPrefix != "" {
		name = strings.Replace(name, stripPrefix, "", 1)
	}
	return strings.ReplaceAll(name, "_", " ")
}

func rotateXTicks(p *plot.Plot) {
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter
}

// saveGrid draws a grid of plots onto one PNG. Nil cells stay blank.
func saveGrid(plots [][]*plot.Plot, width, height vg.Length, path string) error {
	rows := len(plots)
	cols := 0
	for _, row := range plots {
		cols = max(cols, len(row))
	}
	// Align wants a rectangular grid
	for j := range plots {
		for len(plots[j]) < cols {
			plots[j] = append(plots[j], nil)
		}
	}

	img := vgimg.New(width, height)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      rows,
		Cols:      cols,
		PadX:      vg.Millimeter * 4,
		PadY:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}

	canvases := plot.Align(plots, tiles, dc)
	for j := range plots {
		for i := range plots[j] {
			if plots[j][i] != nil {
				plots[j][i].Draw(canvases[j][i])
			}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
