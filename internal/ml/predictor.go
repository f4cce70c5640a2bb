package ml

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"smart-irrigation/internal/models"
)

// Label policies for turning raw classifier output into ON/OFF
const (
	PolicyEqual     = "equal"     // ON only when the raw output is exactly 1
	PolicyThreshold = "threshold" // ON when the raw output is >= Cut
)

// LabelPolicy decides how raw outputs map to sprinkler states
type LabelPolicy struct {
	Mode string
	Cut  float64
}

// ParseLabelPolicy builds a policy from its config form
func ParseLabelPolicy(mode string, cut float64) (LabelPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", PolicyEqual:
		return LabelPolicy{Mode: PolicyEqual}, nil
	case PolicyThreshold:
		if math.IsNaN(cut) {
			return LabelPolicy{}, fmt.Errorf("label threshold is NaN")
		}
		return LabelPolicy{Mode: PolicyThreshold, Cut: cut}, nil
	default:
		return LabelPolicy{}, fmt.Errorf("unknown label policy %q", mode)
	}
}

// Label converts one raw output into a sprinkler state
func (p LabelPolicy) Label(raw float64) models.Status {
	if p.Mode == PolicyThreshold {
		if raw >= p.Cut {
			return models.StatusOn
		}
		return models.StatusOff
	}
	if raw == 1 {
		return models.StatusOn
	}
	return models.StatusOff
}

// Predictor is the loaded, read-only model handle shared by all sessions
type Predictor struct {
	classifier Classifier
	policy     LabelPolicy
	path       string
}

// NewPredictor wraps an already-built classifier
func NewPredictor(c Classifier, policy LabelPolicy) *Predictor {
	return &Predictor{classifier: c, policy: policy}
}

// Load reads the model artifact at path and validates that it can classify a
// full sensor vector. Every failure is returned as a *LoadError.
func Load(path string, policy LabelPolicy, logger *zap.Logger) (*Predictor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("failed to read model file: %w", err)}
	}

	artifact, err := DecodeArtifact(path, data)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	classifier, err := artifact.Build()
	if err != nil {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("invalid model: %w", err)}
	}

	// Probe once so a model that cannot handle the expected shape fails now
	// rather than on the first user request.
	probe := models.DefaultSensorVector()
	out, err := classifier.Predict(probe.Slice())
	if err != nil {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("model probe failed: %w", err)}
	}
	if len(out) != models.NumSensors {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("model probe returned %d outputs, want %d", len(out), models.NumSensors)}
	}

	logger.Info("Model loaded",
		zap.String("path", path),
		zap.String("kind", classifier.Kind()),
		zap.String("version", artifact.Version),
		zap.String("label_policy", policy.Mode))

	return &Predictor{classifier: classifier, policy: policy, path: path}, nil
}

// Kind reports the loaded classifier kind
func (p *Predictor) Kind() string {
	return p.classifier.Kind()
}

// Path reports where the artifact was loaded from (empty for injected classifiers)
func (p *Predictor) Path() string {
	return p.path
}

// Predict applies the model to x, which must hold one value per sensor in
// index order. Every failure is returned as a *PredictionError.
func (p *Predictor) Predict(ctx context.Context, x []float64) (models.PredictionVector, error) {
	var pred models.PredictionVector

	if err := ctx.Err(); err != nil {
		return pred, &PredictionError{Err: err}
	}
	if len(x) != models.NumSensors {
		return pred, predictionErrorf("expected %d sensor values, got %d", models.NumSensors, len(x))
	}
	for i, v := range x {
		if math.IsNaN(v) || v < models.SensorMin || v > models.SensorMax {
			return pred, predictionErrorf("sensor %d value %v outside [%.1f, %.1f]", i, v, models.SensorMin, models.SensorMax)
		}
	}

	raw, err := p.classifier.Predict(x)
	if err != nil {
		return pred, &PredictionError{Err: err}
	}
	if len(raw) != models.NumSensors {
		return pred, predictionErrorf("model returned %d outputs, want %d", len(raw), models.NumSensors)
	}

	for i, v := range raw {
		pred[i] = p.policy.Label(v)
	}
	return pred, nil
}

// CreateSampleModel writes a demonstration artifact to path.
// Each sprinkler waters when its sensor reads below a slightly staggered cutoff.
func CreateSampleModel(path string) error {
	cutoffs := make([]float64, models.NumSensors)
	for i := range cutoffs {
		cutoffs[i] = 0.35 + 0.01*float64(i%5)
	}
	artifact := Artifact{
		Kind:    KindMoistureRule,
		Version: "sample-1",
		Inputs:  models.NumSensors,
		Outputs: models.NumSensors,
		Cutoffs: cutoffs,
	}

	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal model: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create model directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write model file: %w", err)
	}
	return nil
}
