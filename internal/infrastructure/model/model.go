// Package model loads the pre-trained regression artifacts and runs inference.
// The artifact is a single JSON document exported from the training pipeline:
// the declared feature order, a fitted standard scaler, and the MLP layers in
// inference form (batch normalization folded into the linear weights).
package model

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/yumi/backend/internal/domain"
)

// Layer is one dense layer of the exported network. Weights is indexed
// [output][input]; Activation is "relu" or "linear".
type Layer struct {
	Weights    [][]float64 `json:"weights"`
	Biases     []float64   `json:"biases"`
	Activation string      `json:"activation"`
}

// Scaler holds the per-feature standardization fitted at training time.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

type artifact struct {
	Version      string   `json:"version"`
	FeatureOrder []string `json:"feature_order"`
	Scaler       Scaler   `json:"scaler"`
	Layers       []Layer  `json:"layers"`
}

// Model is the loaded regression model. It is immutable after Load and safe
// for concurrent use.
type Model struct {
	version      string
	featureOrder []string
	scaler       Scaler
	layers       []Layer
}

// Load reads and validates the model artifact. Any failure here is
// startup-fatal for the caller: no valid scoring is possible without it.
func Load(path string) (*Model, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrModelArtifacts, path, err)
	}

	var a artifact
	if err := json.Unmarshal(payload, &a); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", domain.ErrModelArtifacts, path, err)
	}

	if err := validate(&a); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrModelArtifacts, err)
	}

	return &Model{
		version:      a.Version,
		featureOrder: a.FeatureOrder,
		scaler:       a.Scaler,
		layers:       a.Layers,
	}, nil
}

func validate(a *artifact) error {
	n := len(a.FeatureOrder)
	if n == 0 {
		return fmt.Errorf("empty feature order")
	}
	if len(a.Scaler.Mean) != n || len(a.Scaler.Scale) != n {
		return fmt.Errorf("scaler dimensions %d/%d do not match %d features",
			len(a.Scaler.Mean), len(a.Scaler.Scale), n)
	}
	if len(a.Layers) == 0 {
		return fmt.Errorf("no layers")
	}

	in := n
	for i, layer := range a.Layers {
		if len(layer.Weights) == 0 || len(layer.Weights) != len(layer.Biases) {
			return fmt.Errorf("layer %d: %d weight rows for %d biases", i, len(layer.Weights), len(layer.Biases))
		}
		for _, row := range layer.Weights {
			if len(row) != in {
				return fmt.Errorf("layer %d: weight row width %d, want %d", i, len(row), in)
			}
		}
		in = len(layer.Weights)
	}
	if in != 1 {
		return fmt.Errorf("final layer emits %d outputs, want 1", in)
	}
	return nil
}

// Version returns the artifact version string.
func (m *Model) Version() string { return m.version }

// FeatureOrder returns the feature names in the order the model was trained
// with. Callers must not mutate the returned slice.
func (m *Model) FeatureOrder() []string { return m.featureOrder }

// Predict orders the feature mapping per the trained feature order,
// standardizes it, runs the forward pass, and clamps the output to [0, 100].
// Features absent from the mapping contribute 0.
func (m *Model) Predict(features map[string]float64) float64 {
	x := make([]float64, len(m.featureOrder))
	for i, name := range m.featureOrder {
		v := (features[name] - m.scaler.Mean[i])
		if s := m.scaler.Scale[i]; s != 0 {
			v /= s
		}
		x[i] = v
	}

	for _, layer := range m.layers {
		out := make([]float64, len(layer.Weights))
		for j, row := range layer.Weights {
			sum := layer.Biases[j]
			for i, w := range row {
				sum += w * x[i]
			}
			if layer.Activation == "relu" {
				sum = math.Max(sum, 0)
			}
			out[j] = sum
		}
		x = out
	}

	return math.Max(0, math.Min(100, x[0]))
}
