package models

import (
	"math"
	"time"
)

const (
	// NumSensors is the number of sensor slots and sprinklers. Identity is positional.
	NumSensors = 20

	// SensorMin and SensorMax bound every scaled sensor reading
	SensorMin = 0.0
	SensorMax = 1.0

	// SensorStep is the slider granularity; stepsPerUnit is its inverse
	SensorStep   = 0.01
	stepsPerUnit = 100

	// DefaultReading is the value every slot starts at in a new session
	DefaultReading = 0.5
)

// Status is the binary state of a single sprinkler
type Status int

const (
	StatusOff Status = 0
	StatusOn  Status = 1
)

// String returns the state word shown on the dashboard
func (s Status) String() string {
	if s == StatusOn {
		return "ON"
	}
	return "OFF"
}

// SensorVector is an immutable snapshot of all readings, in index order
type SensorVector [NumSensors]float64

// Slice returns a copy of the vector as a slice, the shape classifiers consume
func (v SensorVector) Slice() []float64 {
	out := make([]float64, NumSensors)
	copy(out, v[:])
	return out
}

// DefaultSensorVector returns a vector with every slot at DefaultReading
func DefaultSensorVector() SensorVector {
	var v SensorVector
	for i := range v {
		v[i] = DefaultReading
	}
	return v
}

// PredictionVector holds one label per sprinkler, produced by a single model call
type PredictionVector [NumSensors]Status

// OnCount returns the number of sprinklers predicted ON
func (p PredictionVector) OnCount() int {
	n := 0
	for _, s := range p {
		if s == StatusOn {
			n++
		}
	}
	return n
}

// OffCount returns the number of sprinklers predicted OFF
func (p PredictionVector) OffCount() int {
	return NumSensors - p.OnCount()
}

// Ints returns the labels as plain integers (0/1), index-aligned with sprinklers
func (p PredictionVector) Ints() []int {
	out := make([]int, NumSensors)
	for i, s := range p {
		out[i] = int(s)
	}
	return out
}

// ClampReading bounds v to [SensorMin, SensorMax] and snaps it to SensorStep.
// NaN collapses to SensorMin.
func ClampReading(v float64) float64 {
	if math.IsNaN(v) || v < SensorMin {
		return SensorMin
	}
	if v > SensorMax {
		return SensorMax
	}
	return math.Round(v*stepsPerUnit) / stepsPerUnit
}

// SprinklerCommand is the per-sprinkler message published to actuators
type SprinklerCommand struct {
	SessionID string    `json:"session_id"`
	Index     int       `json:"index"`
	State     string    `json:"state"` // "ON" or "OFF"
	Timestamp time.Time `json:"timestamp"`
}

// PredictionEvent describes one successful prediction for downstream sinks
type PredictionEvent struct {
	SessionID  string       `json:"session_id"`
	Timestamp  time.Time    `json:"timestamp"`
	Sensors    SensorVector `json:"sensors"`
	Prediction []int        `json:"prediction"`
	OnCount    int          `json:"on_count"`
	OffCount   int          `json:"off_count"`
	ModelKind  string       `json:"model_kind"`
}
