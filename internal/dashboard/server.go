// Package dashboard serves the irrigation dashboard: the Home, Summary and
// About pages, the slider and prediction APIs, and the blocking page shown
// when the model could not be loaded.
package dashboard

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"smart-irrigation/internal/logging"
	"smart-irrigation/internal/metrics"
	"smart-irrigation/internal/models"
	"smart-irrigation/internal/session"
)

// PredictionRunner performs the Predict action against a session
type PredictionRunner interface {
	Run(ctx context.Context, st *session.State) (models.PredictionVector, error)
	PredictVector(ctx context.Context, st *session.State, x []float64) (models.PredictionVector, error)
}

// Config wires the dashboard to its collaborators. Metrics may be nil.
type Config struct {
	Sessions    *session.Manager
	Predictions PredictionRunner
	Metrics     *metrics.Metrics
	Logger      *zap.Logger
	ModelKind   string
}

// Server holds the dashboard handlers
type Server struct {
	sessions    *session.Manager
	predictions PredictionRunner
	metrics     *metrics.Metrics
	logger      *zap.Logger
	modelKind   string
}

// New creates a dashboard server
func New(cfg Config) *Server {
	return &Server{
		sessions:    cfg.Sessions,
		predictions: cfg.Predictions,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger.Named("dashboard"),
		modelKind:   cfg.ModelKind,
	}
}

// Router registers every dashboard route
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", s.home).Methods(http.MethodGet)
	r.HandleFunc("/home", s.home).Methods(http.MethodGet)
	r.HandleFunc("/predict", s.predict).Methods(http.MethodPost)
	r.HandleFunc("/summary", s.summary).Methods(http.MethodGet)
	r.HandleFunc("/about", s.about).Methods(http.MethodGet)
	r.HandleFunc("/nav", s.navigate).Methods(http.MethodGet)
	r.HandleFunc("/session/reset", s.reset).Methods(http.MethodPost)

	r.HandleFunc("/charts/bar.svg", s.barChart).Methods(http.MethodGet)
	r.HandleFunc("/charts/line.svg", s.lineChart).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/sensors/{index:[0-9]+}", s.putSensor).Methods(http.MethodPut)
	api.HandleFunc("/predict", s.apiPredict).Methods(http.MethodPost)

	r.HandleFunc("/healthz", s.health).Methods(http.MethodGet)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}
	return r
}

// Handler returns the router behind the access log, panic recovery and
// compression middleware
func (s *Server) Handler() http.Handler {
	return Wrap(s.Router(), s.logger)
}

// Wrap applies the middleware chain shared by the dashboard and the
// load-failure handler
func Wrap(h http.Handler, logger *zap.Logger) http.Handler {
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(zap.NewStdLog(logger.Named("recovery"))),
		handlers.PrintRecoveryStack(true),
	)
	return handlers.CombinedLoggingHandler(logging.Writer(logger.Named("access")), recovery(handlers.CompressHandler(h)))
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"model":    s.modelKind,
		"sessions": s.sessions.Len(),
	})
}

// LoadFailure answers every request with the blocking model-load error page.
// No panel is reachable while it is mounted.
func LoadFailure(loadErr error, logger *zap.Logger) http.Handler {
	logger = logger.Named("dashboard")
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "model_unavailable",
				"error":  loadErr.Error(),
			})
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusServiceUnavailable)
		if err := pages.ExecuteTemplate(w, "loadfail", pageData{}); err != nil {
			logger.Error("Dashboard: failed to render load failure page", zap.Error(err))
		}
	})
	return Wrap(h, logger)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
