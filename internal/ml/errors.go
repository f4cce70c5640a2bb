package ml

import (
	"errors"
	"fmt"
)

var (
	// ErrModelLoad matches any *LoadError via errors.Is
	ErrModelLoad = errors.New("model load failed")
	// ErrPrediction matches any *PredictionError via errors.Is
	ErrPrediction = errors.New("prediction failed")
)

// LoadError reports a model artifact that is missing, unreadable, or not a
// usable classifier. It is fatal at startup.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load model %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func (e *LoadError) Is(target error) bool { return target == ErrModelLoad }

// PredictionError reports an inference failure. Callers recover from it.
type PredictionError struct {
	Err error
}

func (e *PredictionError) Error() string {
	return e.Err.Error()
}

func (e *PredictionError) Unwrap() error { return e.Err }

func (e *PredictionError) Is(target error) bool { return target == ErrPrediction }

func predictionErrorf(format string, args ...any) error {
	return &PredictionError{Err: fmt.Errorf(format, args...)}
}
