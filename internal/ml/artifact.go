package ml

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"

	"smart-irrigation/internal/models"
)

// Supported artifact kinds
const (
	KindLogistic     = "logistic"
	KindMoistureRule = "moisture_rule"
	KindConstant     = "constant"
)

// Artifact is the serialized form of a pre-trained sprinkler classifier.
// Only the fields of the declared Kind are read.
type Artifact struct {
	Kind    string `json:"kind" yaml:"kind"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	Inputs  int    `json:"inputs" yaml:"inputs"`
	Outputs int    `json:"outputs" yaml:"outputs"`

	// logistic: one weight row and intercept per sprinkler
	Weights    [][]float64 `json:"weights,omitempty" yaml:"weights,omitempty"`
	Intercepts []float64   `json:"intercepts,omitempty" yaml:"intercepts,omitempty"`
	Threshold  *float64    `json:"threshold,omitempty" yaml:"threshold,omitempty"`

	// moisture_rule: sprinkler i waters when sensor i is below Cutoffs[i]
	Cutoffs []float64 `json:"cutoffs,omitempty" yaml:"cutoffs,omitempty"`

	// constant
	Labels []float64 `json:"labels,omitempty" yaml:"labels,omitempty"`
}

// DecodeArtifact parses artifact bytes; the encoding is picked from the file
// extension. JSON is read as HuJSON so comments and trailing commas are allowed.
func DecodeArtifact(path string, data []byte) (*Artifact, error) {
	var a Artifact
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("failed to unmarshal yaml artifact: %w", err)
		}
	case ".json", ".hujson", ".jsonc", "":
		std, err := hujson.Standardize(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse json artifact: %w", err)
		}
		if err := json.Unmarshal(std, &a); err != nil {
			return nil, fmt.Errorf("failed to unmarshal json artifact: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported artifact extension %q", ext)
	}
	return &a, nil
}

// Build validates the artifact shape and returns the classifier it describes
func (a *Artifact) Build() (Classifier, error) {
	if a.Inputs != models.NumSensors {
		return nil, fmt.Errorf("artifact expects %d inputs, want %d", a.Inputs, models.NumSensors)
	}
	if a.Outputs != models.NumSensors {
		return nil, fmt.Errorf("artifact produces %d outputs, want %d", a.Outputs, models.NumSensors)
	}

	switch a.Kind {
	case KindLogistic:
		if len(a.Weights) != a.Outputs {
			return nil, fmt.Errorf("logistic: %d weight rows, want %d", len(a.Weights), a.Outputs)
		}
		for i, row := range a.Weights {
			if len(row) != a.Inputs {
				return nil, fmt.Errorf("logistic: weight row %d has %d columns, want %d", i, len(row), a.Inputs)
			}
		}
		if len(a.Intercepts) != a.Outputs {
			return nil, fmt.Errorf("logistic: %d intercepts, want %d", len(a.Intercepts), a.Outputs)
		}
		threshold := 0.5
		if a.Threshold != nil {
			threshold = *a.Threshold
		}
		if threshold <= 0 || threshold >= 1 {
			return nil, fmt.Errorf("logistic: threshold %.3f outside (0,1)", threshold)
		}
		return &logistic{weights: a.Weights, intercepts: a.Intercepts, threshold: threshold}, nil

	case KindMoistureRule:
		if len(a.Cutoffs) != a.Outputs {
			return nil, fmt.Errorf("moisture_rule: %d cutoffs, want %d", len(a.Cutoffs), a.Outputs)
		}
		return &moistureRule{cutoffs: a.Cutoffs}, nil

	case KindConstant:
		if len(a.Labels) != a.Outputs {
			return nil, fmt.Errorf("constant: %d labels, want %d", len(a.Labels), a.Outputs)
		}
		return &constant{labels: a.Labels}, nil

	case "":
		return nil, fmt.Errorf("artifact has no kind")
	default:
		return nil, fmt.Errorf("unknown artifact kind %q", a.Kind)
	}
}
