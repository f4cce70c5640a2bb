package charts

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-irrigation/internal/models"
)

func prediction(on ...int) models.PredictionVector {
	var p models.PredictionVector
	for _, i := range on {
		p[i] = models.StatusOn
	}
	return p
}

func TestSummarizeAllOff(t *testing.T) {
	s := Summarize(prediction())

	assert.Equal(t, 0, s.OnCount)
	assert.Equal(t, 20, s.OffCount)
	require.Len(t, s.Bars, 2)
	assert.Equal(t, Bar{Label: "ON", Value: 0, Color: colorOn}, s.Bars[0])
	assert.Equal(t, Bar{Label: "OFF", Value: 20, Color: colorOff}, s.Bars[1])
}

func TestSummarizeCountsAndLine(t *testing.T) {
	p := prediction(0, 3, 4, 18)
	s := Summarize(p)

	assert.Equal(t, 4, s.OnCount)
	assert.Equal(t, 16, s.OffCount)
	assert.Equal(t, models.NumSensors, s.OnCount+s.OffCount)
	assert.Equal(t, s.OnCount, s.Bars[0].Value)
	assert.Equal(t, s.OffCount, s.Bars[1].Value)

	require.Len(t, s.Line, models.NumSensors)
	for i, pt := range s.Line {
		assert.Equal(t, i, pt.Index)
		assert.Equal(t, int(p[i]), pt.Value, "sprinkler %d", i)
	}
}

func TestRenderBar(t *testing.T) {
	for _, p := range []models.PredictionVector{prediction(), prediction(1, 2, 3), prediction(0, 1, 2, 3, 4, 5, 6, 7, 8, 9)} {
		var buf bytes.Buffer
		require.NoError(t, RenderBar(Summarize(p), &buf))
		out := buf.String()
		assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "<svg"))
		assert.Contains(t, out, BarTitle)
	}
}

func TestRenderLine(t *testing.T) {
	for _, p := range []models.PredictionVector{prediction(), prediction(5), prediction(0, 19)} {
		var buf bytes.Buffer
		require.NoError(t, RenderLine(Summarize(p), &buf))
		out := buf.String()
		assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "<svg"))
		assert.Contains(t, out, LineTitle)
		assert.Contains(t, out, ">ON<")
		assert.Contains(t, out, ">OFF<")
	}
}

func TestInlineSVG(t *testing.T) {
	html, err := InlineSVG(RenderBar, Summarize(prediction(7)))
	require.NoError(t, err)
	assert.Contains(t, string(html), "</svg>")
}
