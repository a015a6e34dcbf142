package chart

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	Width  int = 2000
	Height int = 1200

	titleHeight int = 80
	titleScale  int = 3
)

// layout places the five panels on the canvas, two per row and the last one
// centered on its own row.
func layout() []image.Rectangle {
	panelW := Width / 2
	panelH := (Height - titleHeight) / 3

	rect := func(col, row int) image.Rectangle {
		x := col * panelW / 2
		y := titleHeight + row*panelH
		return image.Rect(x, y, x+panelW, y+panelH)
	}

	return []image.Rectangle{
		rect(0, 0), rect(2, 0),
		rect(0, 1), rect(2, 1),
		rect(1, 2),
	}
}

// Render draws the report as a single PNG image into w.
func Render(r *Report, w io.Writer) error {
	canvas := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	start, end := r.TimeRange()

	for i, rect := range layout() {
		p := r.panels[i]
		img, err := renderPanel(p, start, end, rect.Dx(), rect.Dy())
		if err != nil {
			return fmt.Errorf("failed to render %s panel: %w", p.Quantity, err)
		}
		draw.Draw(canvas, rect, img, img.Bounds().Min, draw.Over)
	}

	drawTitle(canvas, r.Title())

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	_, err := buf.WriteTo(w)
	return err
}

func renderPanel(p *Panel, start, end time.Time, width, height int) (image.Image, error) {
	series := []gochart.Series{}

	if len(p.Points) > 0 {
		xs := make([]time.Time, len(p.Points))
		ys := make([]float64, len(p.Points))
		for i, pt := range p.Points {
			xs[i] = pt.Timestamp
			ys[i] = pt.Value
		}
		series = append(series, gochart.TimeSeries{
			Name:    p.Title,
			XValues: xs,
			YValues: ys,
			Style: gochart.Style{
				StrokeColor: gochart.ColorBlue,
				StrokeWidth: 1.5,
				DotColor:    gochart.ColorBlue,
				DotWidth:    2,
			},
		})
	}

	if p.Threshold != nil {
		series = append(series, gochart.TimeSeries{
			Name:    p.Threshold.Label,
			XValues: []time.Time{start, end},
			YValues: []float64{p.Threshold.Value, p.Threshold.Value},
			Style: gochart.Style{
				StrokeColor:     drawing.ColorRed,
				StrokeWidth:     2,
				StrokeDashArray: []float64{8, 4},
			},
		})
	}

	lo, hi := p.ValueRange()

	if len(series) == 0 {
		// go-chart refuses to render without a visible series
		series = append(series, gochart.TimeSeries{
			XValues: []time.Time{start, end},
			YValues: []float64{lo, lo},
			Style:   gochart.Style{StrokeColor: drawing.ColorTransparent},
		})
	}

	ch := gochart.Chart{
		Title:      p.Title,
		TitleStyle: gochart.Style{FontSize: 14},
		Width:      width,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		XAxis: gochart.XAxis{
			ValueFormatter: gochart.TimeValueFormatterWithFormat("01-02 15:04"),
			Range:          &gochart.ContinuousRange{Min: gochart.TimeToFloat64(start), Max: gochart.TimeToFloat64(end)},
			TickStyle:      gochart.Style{TextRotationDegrees: 45, FontSize: 8},
		},
		YAxis: gochart.YAxis{
			Name:  p.Unit,
			Range: &gochart.ContinuousRange{Min: lo, Max: hi},
		},
		Series: series,
	}
	if p.Threshold != nil {
		ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}
	}

	var buf bytes.Buffer
	if err := ch.Render(gochart.PNG, &buf); err != nil {
		return nil, err
	}

	return png.Decode(&buf)
}

// drawTitle writes text centered in the title band, scaled up from the 7x13 face.
func drawTitle(dst draw.Image, text string) {
	face := basicfont.Face7x13

	dr := &font.Drawer{Src: image.Black, Face: face}
	tw := dr.MeasureString(text).Ceil()
	th := face.Metrics().Height.Ceil()

	small := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.Draw(small, small.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)
	dr.Dst = small
	dr.Dot = fixed.Point26_6{X: 0, Y: face.Metrics().Ascent}
	dr.DrawString(text)

	w, h := tw*titleScale, th*titleScale
	x := (dst.Bounds().Dx() - w) / 2
	y := (titleHeight - h) / 2
	xdraw.NearestNeighbor.Scale(dst, image.Rect(x, y, x+w, y+h), small, small.Bounds(), draw.Over, nil)
}
