// Package charts derives the Summary page figures from a prediction and
// renders them as SVG.
package charts

import "smart-irrigation/internal/models"

// Bar is one category of the ON/OFF bar chart
type Bar struct {
	Label string
	Value int
	Color string // hex, no leading '#'
}

// Point is one sample of the per-sprinkler line chart
type Point struct {
	Index int
	Value int
}

// Summary holds everything the Summary page shows for one prediction
type Summary struct {
	OnCount  int
	OffCount int
	Bars     []Bar
	Line     []Point
}

const (
	colorOn   = "2e7d32"
	colorOff  = "c62828"
	colorLine = "1f77b4"
)

// Summarize counts ON/OFF sprinklers and lays out both chart series
func Summarize(p models.PredictionVector) Summary {
	on := p.OnCount()
	off := models.NumSensors - on

	line := make([]Point, models.NumSensors)
	for i, s := range p {
		line[i] = Point{Index: i, Value: int(s)}
	}

	return Summary{
		OnCount:  on,
		OffCount: off,
		Bars: []Bar{
			{Label: models.StatusOn.String(), Value: on, Color: colorOn},
			{Label: models.StatusOff.String(), Value: off, Color: colorOff},
		},
		Line: line,
	}
}
