package ml

import (
	"fmt"
	"math"
)

// Classifier is the capability every loaded artifact must provide: one raw
// output per sprinkler for a full sensor vector.
type Classifier interface {
	Predict(x []float64) ([]float64, error)
	Kind() string
}

// logistic is a one-vs-rest logistic model per sprinkler
type logistic struct {
	weights    [][]float64
	intercepts []float64
	threshold  float64
}

func (m *logistic) Kind() string { return KindLogistic }

func (m *logistic) Predict(x []float64) ([]float64, error) {
	out := make([]float64, len(m.weights))
	for i, row := range m.weights {
		if len(row) != len(x) {
			return nil, fmt.Errorf("shape mismatch: row %d has %d weights for %d features", i, len(row), len(x))
		}
		z := m.intercepts[i]
		for j, w := range row {
			z += w * x[j]
		}
		if sigmoid(z) >= m.threshold {
			out[i] = 1
		}
	}
	return out, nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// moistureRule waters a parcel whose sensor reads drier than its cutoff
type moistureRule struct {
	cutoffs []float64
}

func (m *moistureRule) Kind() string { return KindMoistureRule }

func (m *moistureRule) Predict(x []float64) ([]float64, error) {
	if len(x) != len(m.cutoffs) {
		return nil, fmt.Errorf("shape mismatch: %d features, model expects %d", len(x), len(m.cutoffs))
	}
	out := make([]float64, len(m.cutoffs))
	for i, cut := range m.cutoffs {
		if x[i] < cut {
			out[i] = 1
		}
	}
	return out, nil
}

// constant ignores its input
type constant struct {
	labels []float64
}

func (m *constant) Kind() string { return KindConstant }

func (m *constant) Predict(x []float64) ([]float64, error) {
	out := make([]float64, len(m.labels))
	copy(out, m.labels)
	return out, nil
}
