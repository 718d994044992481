package viz

import (
	"fmt"
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Default PNG size.
const (
	DefaultWidth  = 1024
	DefaultHeight = 512
)

var (
	barColor   = drawing.ColorFromHex("0d0887")
	lightRed   = drawing.ColorFromHex("fee0d2")
	darkRed    = drawing.ColorFromHex("a50f15")
	trendColor = drawing.ColorRed
)

// RenderPNG draws fig to w. Bar and scatter figures are supported; polar figures
// return ErrUnsupportedFigure.
func RenderPNG(fig Figure, w io.Writer, width, height int) error {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	if len(fig.Data) == 0 {
		return ErrEmptyFigure
	}

	switch fig.Data[0].Type {
	case TypeBar:
		return renderBar(fig, w, width, height)
	case TypeScatter:
		return renderScatter(fig, w, width, height)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFigure, fig.Data[0].Type)
	}
}

func renderBar(fig Figure, w io.Writer, width, height int) error {
	t := fig.Data[0]
	if len(t.Y) == 0 {
		return ErrEmptyFigure
	}

	lo, hi := 0.0, 0.0
	for _, v := range t.Y {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if hi == lo {
		hi = lo + 1
	}

	bars := make([]chart.Value, len(t.Y))
	for i, v := range t.Y {
		label := ""
		if i < len(t.Labels) {
			label = t.Labels[i]
		}
		color := barColor
		if t.Marker != nil && t.Marker.ColorScale != "" {
			color = shade(v, lo, hi)
		}
		bars[i] = chart.Value{
			Label: label,
			Value: v,
			Style: chart.Style{FillColor: color, StrokeColor: color},
		}
	}

	barWidth := (width - 100) / (2 * len(bars))
	if barWidth < 8 {
		barWidth = 8
	}

	graph := chart.BarChart{
		Title:      fig.Layout.Title.Text,
		Width:      width,
		Height:     height,
		BarWidth:   barWidth,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		XAxis:      chart.Style{TextRotationDegrees: 45},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: lo, Max: hi * 1.05},
		},
		Bars: bars,
	}
	return graph.Render(chart.PNG, w)
}

func renderScatter(fig Figure, w io.Writer, width, height int) error {
	points := fig.Data[0]
	if len(points.X) < 2 || len(points.X) != len(points.Y) {
		return ErrEmptyFigure
	}

	lo, hi := points.Y[0], points.Y[0]
	for _, v := range points.Y {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}

	scatter := chart.ContinuousSeries{
		Name: fig.Layout.Title.Text,
		Style: chart.Style{
			StrokeWidth: chart.Disabled,
			DotWidth:    6,
			DotColorProvider: func(_, _ chart.Range, _ int, _, y float64) drawing.Color {
				return shade(y, lo, hi)
			},
		},
		XValues: points.X,
		YValues: points.Y,
	}

	series := []chart.Series{scatter}
	if len(fig.Data) > 1 {
		series = append(series, &chart.LinearRegressionSeries{
			InnerSeries: scatter,
			Style: chart.Style{
				StrokeColor:     trendColor,
				StrokeWidth:     4,
				StrokeDashArray: []float64{2, 6},
			},
		})
	}

	graph := chart.Chart{
		Title:  fig.Layout.Title.Text,
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		Series: series,
	}
	if fig.Layout.XAxis != nil {
		graph.XAxis.Name = fig.Layout.XAxis.Title.Text
	}
	if fig.Layout.YAxis != nil {
		graph.YAxis.Name = fig.Layout.YAxis.Title.Text
	}
	return graph.Render(chart.PNG, w)
}

// shade interpolates between light and dark red by the position of v in [lo, hi].
func shade(v, lo, hi float64) drawing.Color {
	t := 0.5
	if hi > lo {
		t = (v - lo) / (hi - lo)
	}
	mix := func(a, b uint8) uint8 {
		return uint8(float64(a) + t*(float64(b)-float64(a)))
	}
	return drawing.Color{
		R: mix(lightRed.R, darkRed.R),
		G: mix(lightRed.G, darkRed.G),
		B: mix(lightRed.B, darkRed.B),
		A: 255,
	}
}
