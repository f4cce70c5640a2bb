package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"smart-irrigation/internal/metrics"
	"smart-irrigation/internal/models"
	"smart-irrigation/internal/session"
)

// Predictor is the loaded model capability the service depends on
type Predictor interface {
	Predict(ctx context.Context, x []float64) (models.PredictionVector, error)
	Kind() string
}

// EventSink receives every successful prediction. Enqueue must not block.
type EventSink interface {
	Enqueue(ev *models.PredictionEvent) bool
}

// PredictionService runs the Predict action against a session: snapshot the
// readings, call the model, store the result and notify downstream sinks.
type PredictionService struct {
	predictor Predictor
	sink      EventSink
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewPredictionService creates a prediction service. sink and m may be nil.
func NewPredictionService(predictor Predictor, sink EventSink, m *metrics.Metrics, logger *zap.Logger) *PredictionService {
	return &PredictionService{
		predictor: predictor,
		sink:      sink,
		metrics:   m,
		logger:    logger.Named("prediction"),
		now:       time.Now,
	}
}

// Run predicts from the session's current readings
func (s *PredictionService) Run(ctx context.Context, st *session.State) (models.PredictionVector, error) {
	snapshot := st.Readings()
	return s.PredictVector(ctx, st, snapshot.Slice())
}

// PredictVector predicts from an explicit vector and stores the result in st.
// On failure the stored prediction is left exactly as it was.
func (s *PredictionService) PredictVector(ctx context.Context, st *session.State, x []float64) (models.PredictionVector, error) {
	start := s.now()
	pred, err := s.predictor.Predict(ctx, x)
	elapsed := s.now().Sub(start)

	s.metrics.ObservePrediction(elapsed, pred.OnCount(), err)
	if err != nil {
		s.logger.Warn("PredictionService: prediction failed",
			zap.String("session_id", st.ID()),
			zap.Error(err))
		return models.PredictionVector{}, err
	}

	st.SetPrediction(pred)
	s.logger.Info("PredictionService: prediction stored",
		zap.String("session_id", st.ID()),
		zap.Int("on", pred.OnCount()),
		zap.Int("off", pred.OffCount()),
		zap.Duration("elapsed", elapsed))

	if s.sink != nil {
		var sensors models.SensorVector
		copy(sensors[:], x)
		s.sink.Enqueue(&models.PredictionEvent{
			SessionID:  st.ID(),
			Timestamp:  start,
			Sensors:    sensors,
			Prediction: pred.Ints(),
			OnCount:    pred.OnCount(),
			OffCount:   pred.OffCount(),
			ModelKind:  s.predictor.Kind(),
		})
	}
	return pred, nil
}
