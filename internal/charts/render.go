package charts

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"smart-irrigation/internal/models"
)

// Chart titles and axis labels
const (
	BarTitle   = "Sprinklers ON vs OFF"
	BarYLabel  = "Number of Sprinklers"
	LineTitle  = "Sprinkler Status Over 20 Parcels"
	LineXLabel = "Sprinkler Number (Parcel ID)"
	LineYLabel = "Status"
)

var gridStyle = chart.Style{
	StrokeColor: drawing.ColorFromHex("dddddd"),
	StrokeWidth: 1,
}

// RenderBar writes the ON vs OFF bar chart as SVG
func RenderBar(s Summary, w io.Writer) error {
	bars := make([]chart.Value, len(s.Bars))
	for i, b := range s.Bars {
		color := drawing.ColorFromHex(b.Color)
		bars[i] = chart.Value{
			Label: b.Label,
			Value: float64(b.Value),
			Style: chart.Style{FillColor: color, StrokeColor: color},
		}
	}

	bc := chart.BarChart{
		Title:      BarTitle,
		Width:      640,
		Height:     400,
		BarWidth:   120,
		BarSpacing: 80,
		Background: chart.Style{Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		YAxis: chart.YAxis{
			Name:  BarYLabel,
			Range: &chart.ContinuousRange{Min: 0, Max: models.NumSensors},
		},
		Bars: bars,
	}
	if err := bc.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("failed to render bar chart: %w", err)
	}
	return nil
}

// RenderLine writes the per-sprinkler status chart as SVG. The y axis carries
// exactly two ticks, OFF at 0 and ON at 1.
func RenderLine(s Summary, w io.Writer) error {
	xs := make([]float64, len(s.Line))
	ys := make([]float64, len(s.Line))
	xTicks := make([]chart.Tick, len(s.Line))
	for i, p := range s.Line {
		xs[i] = float64(p.Index)
		ys[i] = float64(p.Value)
		xTicks[i] = chart.Tick{Value: float64(p.Index), Label: fmt.Sprintf("%d", p.Index)}
	}

	blue := drawing.ColorFromHex(colorLine)
	ch := chart.Chart{
		Title:      LineTitle,
		Width:      1000,
		Height:     400,
		Background: chart.Style{Padding: chart.Box{Top: 48, Left: 24, Right: 24, Bottom: 24}},
		XAxis: chart.XAxis{
			Name:           LineXLabel,
			Range:          &chart.ContinuousRange{Min: 0, Max: models.NumSensors - 1},
			Ticks:          xTicks,
			GridMajorStyle: gridStyle,
		},
		YAxis: chart.YAxis{
			Name:  LineYLabel,
			Range: &chart.ContinuousRange{Min: -0.1, Max: 1.1},
			Ticks: []chart.Tick{
				{Value: 0, Label: models.StatusOff.String()},
				{Value: 1, Label: models.StatusOn.String()},
			},
			GridMajorStyle: gridStyle,
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Status",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: blue,
					StrokeWidth: 2,
					DotColor:    blue,
					DotWidth:    4,
				},
			},
		},
	}
	if err := ch.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("failed to render line chart: %w", err)
	}
	return nil
}

// InlineSVG renders a chart into markup safe to embed in a page
func InlineSVG(render func(Summary, io.Writer) error, s Summary) (template.HTML, error) {
	var buf bytes.Buffer
	if err := render(s, &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
