package dashboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"smart-irrigation/internal/charts"
	"smart-irrigation/internal/models"
	"smart-irrigation/internal/session"
)

type navItem struct {
	Name   string
	Title  string
	Icon   string
	Active bool
}

type sensorView struct {
	Index int
	Value float64
}

type statusView struct {
	Index int
	On    bool
	Label string
}

type pageData struct {
	Nav       []navItem
	Sensors   []sensorView
	Statuses  []statusView
	Error     string
	Summary   *charts.Summary
	BarSVG    template.HTML
	LineSVG   template.HTML
	ModelKind string
}

var pageIcons = map[session.Page]string{
	session.PageHome:    "🏠",
	session.PageSummary: "📊",
	session.PageAbout:   "ℹ️",
}

var pagePaths = map[session.Page]string{
	session.PageHome:    "/",
	session.PageSummary: "/summary",
	session.PageAbout:   "/about",
}

func newPageData(current session.Page) pageData {
	var nav []navItem
	for _, p := range session.Pages() {
		nav = append(nav, navItem{
			Name:   p.String(),
			Title:  p.Title(),
			Icon:   pageIcons[p],
			Active: p == current,
		})
	}
	return pageData{Nav: nav}
}

func sensorViews(v models.SensorVector) []sensorView {
	out := make([]sensorView, len(v))
	for i, r := range v {
		out[i] = sensorView{Index: i, Value: r}
	}
	return out
}

func statusViews(p models.PredictionVector) []statusView {
	out := make([]statusView, len(p))
	for i, s := range p {
		out[i] = statusView{Index: i, On: s == models.StatusOn, Label: s.String()}
	}
	return out
}

// render buffers the page; a template error yields a bare 500
func (s *Server) render(w http.ResponseWriter, name string, data pageData) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("Dashboard: failed to render page", zap.String("page", name), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

func (s *Server) show(st *session.State, page session.Page) pageData {
	st.SetPage(page)
	s.metrics.ObservePage(page.String())
	return newPageData(page)
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	st := s.sessions.Resolve(w, r)
	data := s.show(st, session.PageHome)
	data.Sensors = sensorViews(st.Readings())
	s.render(w, "home", data)
}

// predict stores the submitted slider values, snapshots them and runs the
// model. A failed prediction is reported inline and the stored prediction
// stays as it was.
func (s *Server) predict(w http.ResponseWriter, r *http.Request) {
	st := s.sessions.Resolve(w, r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	for i := 0; i < models.NumSensors; i++ {
		raw := r.PostForm.Get("sensor_" + strconv.Itoa(i))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		st.SetReading(i, v)
	}

	data := s.show(st, session.PageHome)
	pred, err := s.predictions.Run(r.Context(), st)
	if err != nil {
		data.Error = err.Error()
	} else {
		data.Statuses = statusViews(pred)
	}
	data.Sensors = sensorViews(st.Readings())
	s.render(w, "home", data)
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	st := s.sessions.Resolve(w, r)
	data := s.show(st, session.PageSummary)

	if pred, ok := st.Prediction(); ok {
		sum := charts.Summarize(pred)
		data.Summary = &sum
		data.BarSVG = s.chart(charts.RenderBar, sum)
		data.LineSVG = s.chart(charts.RenderLine, sum)
	}
	s.render(w, "summary", data)
}

func (s *Server) chart(render func(charts.Summary, io.Writer) error, sum charts.Summary) template.HTML {
	svg, err := charts.InlineSVG(render, sum)
	if err != nil {
		s.logger.Error("Dashboard: chart rendering failed", zap.Error(err))
		return template.HTML("<p>Chart unavailable.</p>")
	}
	return svg
}

func (s *Server) about(w http.ResponseWriter, r *http.Request) {
	st := s.sessions.Resolve(w, r)
	data := s.show(st, session.PageAbout)
	data.ModelKind = s.modelKind
	s.render(w, "about", data)
}

// navigate records the sidebar selection and redirects to the page
func (s *Server) navigate(w http.ResponseWriter, r *http.Request) {
	st := s.sessions.Resolve(w, r)
	page, ok := session.ParsePage(r.URL.Query().Get("page"))
	if !ok {
		page = st.Page()
	}
	st.SetPage(page)
	http.Redirect(w, r, pagePaths[page], http.StatusSeeOther)
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	st := s.sessions.Reset(w, r)
	s.logger.Info("Dashboard: session reset", zap.String("session_id", st.ID()))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) barChart(w http.ResponseWriter, r *http.Request) {
	s.serveChart(w, r, charts.RenderBar)
}

func (s *Server) lineChart(w http.ResponseWriter, r *http.Request) {
	s.serveChart(w, r, charts.RenderLine)
}

func (s *Server) serveChart(w http.ResponseWriter, r *http.Request, render func(charts.Summary, io.Writer) error) {
	st := s.sessions.Resolve(w, r)
	pred, ok := st.Prediction()
	if !ok {
		http.Error(w, "no prediction yet", http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := render(charts.Summarize(pred), &buf); err != nil {
		s.logger.Error("Dashboard: chart rendering failed", zap.Error(err))
		http.Error(w, "chart rendering failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	buf.WriteTo(w)
}

type sensorUpdate struct {
	Value *float64 `json:"value"`
}

type sensorResponse struct {
	Index int     `json:"index"`
	Value float64 `json:"value"`
}

// putSensor stores one slider value, clamped to the sensor range
func (s *Server) putSensor(w http.ResponseWriter, r *http.Request) {
	st := s.sessions.Resolve(w, r)

	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		s.badRequest(w, "invalid sensor index")
		return
	}

	var req sensorUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "invalid JSON body")
		return
	}
	if req.Value == nil {
		s.badRequest(w, "missing value")
		return
	}

	stored, err := st.SetReading(index, *req.Value)
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}
	s.metrics.ObserveSensorUpdate()
	writeJSON(w, http.StatusOK, sensorResponse{Index: index, Value: stored})
}

type predictRequest struct {
	Sensors []float64 `json:"sensors"`
}

type predictResponse struct {
	Prediction []int `json:"prediction"`
	On         int   `json:"on"`
	Off        int   `json:"off"`
}

// apiPredict predicts from the stored readings, or from an explicit vector
// when the body carries one. Explicit vectors are not clamped: the model
// rejects values outside the sensor range.
func (s *Server) apiPredict(w http.ResponseWriter, r *http.Request) {
	st := s.sessions.Resolve(w, r)

	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.badRequest(w, "invalid JSON body")
		return
	}

	var (
		pred models.PredictionVector
		err  error
	)
	if req.Sensors != nil {
		pred, err = s.predictions.PredictVector(r.Context(), st, req.Sensors)
		if err == nil {
			for i, v := range req.Sensors {
				st.SetReading(i, v)
			}
		}
	} else {
		pred, err = s.predictions.Run(r.Context(), st)
	}
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, predictResponse{
		Prediction: pred.Ints(),
		On:         pred.OnCount(),
		Off:        pred.OffCount(),
	})
}

func (s *Server) badRequest(w http.ResponseWriter, msg string) {
	s.logger.Warn("Dashboard: bad request", zap.String("error", msg))
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}
