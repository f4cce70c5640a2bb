package dashboard

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"smart-irrigation/internal/metrics"
	"smart-irrigation/internal/ml"
	"smart-irrigation/internal/models"
	"smart-irrigation/internal/services"
	"smart-irrigation/internal/session"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// scriptedClassifier returns whatever the test last configured
type scriptedClassifier struct {
	out []float64
	err error
}

func (c *scriptedClassifier) Predict([]float64) ([]float64, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.out, nil
}

func (c *scriptedClassifier) Kind() string { return "scripted" }

func labels(on ...int) []float64 {
	out := make([]float64, models.NumSensors)
	for _, i := range on {
		out[i] = 1
	}
	return out
}

type fixture struct {
	classifier *scriptedClassifier
	sessions   *session.Manager
	handler    http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zap.NewNop()
	c := &scriptedClassifier{out: labels()}
	sessions := session.NewManager(session.ManagerConfig{}, logger)
	m := metrics.New(sessions.Len)
	svc := services.NewPredictionService(ml.NewPredictor(c, ml.LabelPolicy{}), nil, m, logger)

	srv := New(Config{
		Sessions:    sessions,
		Predictions: svc,
		Metrics:     m,
		Logger:      logger,
		ModelKind:   c.Kind(),
	})
	return &fixture{classifier: c, sessions: sessions, handler: srv.Handler()}
}

// browser replays the session cookie across requests
type browser struct {
	t       *testing.T
	handler http.Handler
	cookies []*http.Cookie
}

func (f *fixture) browser(t *testing.T) *browser {
	return &browser{t: t, handler: f.handler}
}

func (b *browser) do(method, target, contentType string, body io.Reader) *httptest.ResponseRecorder {
	b.t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	b.handler.ServeHTTP(rec, req)
	if cs := rec.Result().Cookies(); len(cs) > 0 {
		b.cookies = cs
	}
	return rec
}

func (b *browser) get(target string) *httptest.ResponseRecorder {
	return b.do(http.MethodGet, target, "", nil)
}

func (b *browser) predictForm(values map[int]float64) *httptest.ResponseRecorder {
	form := url.Values{}
	for i, v := range values {
		form.Set("sensor_"+strconv.Itoa(i), strconv.FormatFloat(v, 'f', -1, 64))
	}
	return b.do(http.MethodPost, "/predict", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
}

func (b *browser) putSensor(index string, body string) *httptest.ResponseRecorder {
	return b.do(http.MethodPut, "/api/sensors/"+index, "application/json", strings.NewReader(body))
}

func TestHomeShowsDefaultSliders(t *testing.T) {
	b := newFixture(t).browser(t)

	rec := b.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, "Smart Irrigation System")
	assert.Equal(t, models.NumSensors, strings.Count(body, `type="range"`))
	assert.Contains(t, body, "Sensor 0")
	assert.Contains(t, body, "Sensor 19")
	assert.Contains(t, body, `min="0" max="1" step="0.01" value="0.50"`)
	assert.NotContains(t, body, "Sprinkler Status")
	require.Len(t, b.cookies, 1)
	assert.Equal(t, session.DefaultCookieName, b.cookies[0].Name)
}

func TestSummaryWithoutPrediction(t *testing.T) {
	b := newFixture(t).browser(t)

	rec := b.get("/summary")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "No predictions yet. Go to <strong>Home</strong> and click <strong>Predict Sprinklers</strong>.")
	assert.NotContains(t, body, "<svg")
	assert.NotContains(t, body, `id="on-count"`)

	assert.Equal(t, http.StatusNotFound, b.get("/charts/bar.svg").Code)
	assert.Equal(t, http.StatusNotFound, b.get("/charts/line.svg").Code)
}

func TestPredictAllZeros(t *testing.T) {
	f := newFixture(t)
	b := f.browser(t)

	zeros := make(map[int]float64)
	for i := 0; i < models.NumSensors; i++ {
		zeros[i] = 0
	}
	rec := b.predictForm(zeros)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Prediction complete!")
	assert.Equal(t, models.NumSensors, strings.Count(body, `class="status off">Sprinkler `))
	assert.Contains(t, body, `value="0.00"`)

	rec = b.get("/summary")
	body = rec.Body.String()
	assert.Contains(t, body, `<span id="on-count">0</span>`)
	assert.Contains(t, body, `<span id="off-count">20</span>`)
	assert.Equal(t, 2, strings.Count(body, "<svg"))
}

func TestPredictShowsStatusLines(t *testing.T) {
	f := newFixture(t)
	f.classifier.out = labels(2, 3, 17)
	b := f.browser(t)

	rec := b.predictForm(nil)
	body := rec.Body.String()
	assert.Equal(t, 3, strings.Count(body, `class="status on">Sprinkler `))
	assert.Equal(t, 17, strings.Count(body, `class="status off">Sprinkler `))
	assert.Contains(t, body, `class="status on">Sprinkler 17: `)
	assert.Contains(t, body, `class="status off">Sprinkler 0: `)

	rec = b.get("/summary")
	assert.Contains(t, rec.Body.String(), `<span id="on-count">3</span>`)
	assert.Contains(t, rec.Body.String(), `<span id="off-count">17</span>`)
}

func TestPredictionErrorKeepsPreviousPrediction(t *testing.T) {
	f := newFixture(t)
	f.classifier.out = labels(1, 4)
	b := f.browser(t)

	require.Equal(t, http.StatusOK, b.predictForm(nil).Code)

	f.classifier.err = errors.New("model exploded")
	rec := b.predictForm(map[int]float64{0: 0.25})
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Prediction failed: model exploded")
	assert.NotContains(t, body, "Prediction complete!")

	rec = b.get("/summary")
	assert.Contains(t, rec.Body.String(), `<span id="on-count">2</span>`)

	// the submitted slider value was still stored
	assert.Contains(t, b.get("/").Body.String(), `id="sensor_0" name="sensor_0" data-index="0" min="0" max="1" step="0.01" value="0.25"`)
}

func TestNavigationPreservesState(t *testing.T) {
	f := newFixture(t)
	f.classifier.out = labels(0)
	b := f.browser(t)

	require.Equal(t, http.StatusOK, b.putSensor("7", `{"value": 0.83}`).Code)
	require.Equal(t, http.StatusOK, b.predictForm(nil).Code)

	for _, page := range []string{"summary", "about", "home", "summary"} {
		rec := b.get("/nav?page=" + page)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		loc := rec.Header().Get("Location")
		require.Equal(t, http.StatusOK, b.get(loc).Code)
	}

	assert.Contains(t, b.get("/").Body.String(), `value="0.83"`)
	assert.Contains(t, b.get("/summary").Body.String(), `<span id="on-count">1</span>`)
	assert.Contains(t, b.get("/about").Body.String(), "Farm Irrigation System Using Machine Learning")
}

func TestNavigationMarksActivePage(t *testing.T) {
	b := newFixture(t).browser(t)

	body := b.get("/about").Body.String()
	assert.Contains(t, body, `<a href="/nav?page=about" class="active">`)
	assert.Contains(t, body, `<a href="/nav?page=home">`)

	rec := b.get("/nav?page=nowhere")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/about", rec.Header().Get("Location"))
}

func TestPutSensor(t *testing.T) {
	b := newFixture(t).browser(t)

	tests := []struct {
		name   string
		index  string
		body   string
		status int
		value  float64
	}{
		{"in range", "3", `{"value": 0.42}`, http.StatusOK, 0.42},
		{"clamped high", "4", `{"value": 7}`, http.StatusOK, 1},
		{"clamped low", "5", `{"value": -0.3}`, http.StatusOK, 0},
		{"snapped", "6", `{"value": 0.456}`, http.StatusOK, 0.46},
		{"index out of range", "20", `{"value": 0.5}`, http.StatusBadRequest, 0},
		{"missing value", "1", `{}`, http.StatusBadRequest, 0},
		{"bad json", "1", `{value`, http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := b.putSensor(tt.index, tt.body)
			require.Equal(t, tt.status, rec.Code)
			if tt.status != http.StatusOK {
				return
			}
			var resp sensorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.InDelta(t, tt.value, resp.Value, 1e-9)
		})
	}
}

func TestAPIPredict(t *testing.T) {
	f := newFixture(t)
	f.classifier.out = labels(0, 1, 2)
	b := f.browser(t)

	rec := b.do(http.MethodPost, "/api/predict", "application/json", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp predictResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.On)
	assert.Equal(t, 17, resp.Off)
	assert.Len(t, resp.Prediction, models.NumSensors)

	rec = b.do(http.MethodPost, "/api/predict", "application/json", strings.NewReader(`{"sensors": [0.1, 0.2]}`))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "expected 20 sensor values, got 2")

	// the failed call left the first prediction in place
	assert.Contains(t, b.get("/summary").Body.String(), `<span id="on-count">3</span>`)
}

func TestSessionsAreIsolated(t *testing.T) {
	f := newFixture(t)
	f.classifier.out = labels(9)
	alice := f.browser(t)
	bob := f.browser(t)

	require.Equal(t, http.StatusOK, alice.predictForm(nil).Code)
	bob.get("/")

	assert.Contains(t, alice.get("/summary").Body.String(), `<span id="on-count">1</span>`)
	assert.Contains(t, bob.get("/summary").Body.String(), "No predictions yet")
	assert.Equal(t, 2, f.sessions.Len())
}

func TestResetStartsFreshSession(t *testing.T) {
	f := newFixture(t)
	b := f.browser(t)
	require.Equal(t, http.StatusOK, b.predictForm(nil).Code)
	first := b.cookies[0].Value

	rec := b.do(http.MethodPost, "/session/reset", "", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.NotEqual(t, first, b.cookies[0].Value)
	assert.Contains(t, b.get("/summary").Body.String(), "No predictions yet")
}

func TestChartEndpoints(t *testing.T) {
	f := newFixture(t)
	f.classifier.out = labels(3)
	b := f.browser(t)
	require.Equal(t, http.StatusOK, b.predictForm(nil).Code)

	for _, path := range []string{"/charts/bar.svg", "/charts/line.svg"} {
		rec := b.get(path)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), "<svg")
	}
}

func TestHealthAndMetrics(t *testing.T) {
	b := newFixture(t).browser(t)

	rec := b.get("/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"model":"scripted"`)

	b.get("/about")
	rec = b.get("/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `irrigation_page_views_total{page="about"} 1`)
}

func TestLoadFailureBlocksEveryRoute(t *testing.T) {
	h := LoadFailure(&ml.LoadError{Path: "missing.json", Err: errors.New("no such file")}, zap.NewNop())

	for _, target := range []string{"/", "/home", "/summary", "/about", "/nav?page=summary"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, target)
		body := rec.Body.String()
		assert.Contains(t, body, "Failed to load model. Please check the path or format.")
		assert.NotContains(t, body, `type="range"`)
		assert.NotContains(t, body, "<nav>")
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/predict", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "model_unavailable")
}
