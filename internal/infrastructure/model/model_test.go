package model

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yumi/backend/internal/domain"
)

// writeArtifact marshals an artifact to a temp file and returns its path.
func writeArtifact(t *testing.T, a artifact) string {
	t.Helper()
	payload, err := json.Marshal(a)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, payload, 0o644))
	return path
}

// identityArtifact builds a two-feature model whose output is simply the first
// feature (identity scaler, one linear layer).
func identityArtifact() artifact {
	return artifact{
		Version:      "test",
		FeatureOrder: []string{"sugars_100g", "energy_100g"},
		Scaler:       Scaler{Mean: []float64{0, 0}, Scale: []float64{1, 1}},
		Layers: []Layer{
			{Weights: [][]float64{{1, 0}}, Biases: []float64{0}, Activation: "linear"},
		},
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads a valid artifact", func(t *testing.T) {
		m, err := Load(writeArtifact(t, identityArtifact()))
		require.NoError(t, err)
		assert.Equal(t, "test", m.Version())
		assert.Equal(t, []string{"sugars_100g", "energy_100g"}, m.FeatureOrder())
	})

	t.Run("missing file is a model artifacts error", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
		assert.ErrorIs(t, err, domain.ErrModelArtifacts)
	})

	t.Run("corrupt JSON is a model artifacts error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "model.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
		_, err := Load(path)
		assert.ErrorIs(t, err, domain.ErrModelArtifacts)
	})

	t.Run("rejects mismatched scaler dimensions", func(t *testing.T) {
		a := identityArtifact()
		a.Scaler.Mean = []float64{0}
		_, err := Load(writeArtifact(t, a))
		assert.ErrorIs(t, err, domain.ErrModelArtifacts)
	})

	t.Run("rejects weight rows that do not chain", func(t *testing.T) {
		a := identityArtifact()
		a.Layers[0].Weights = [][]float64{{1, 0, 0}}
		_, err := Load(writeArtifact(t, a))
		assert.ErrorIs(t, err, domain.ErrModelArtifacts)
	})

	t.Run("rejects a head that emits more than one output", func(t *testing.T) {
		a := identityArtifact()
		a.Layers[0].Weights = [][]float64{{1, 0}, {0, 1}}
		a.Layers[0].Biases = []float64{0, 0}
		_, err := Load(writeArtifact(t, a))
		assert.ErrorIs(t, err, domain.ErrModelArtifacts)
	})
}

func TestPredict(t *testing.T) {
	m, err := Load(writeArtifact(t, identityArtifact()))
	require.NoError(t, err)

	t.Run("passes through the selected feature", func(t *testing.T) {
		got := m.Predict(map[string]float64{"sugars_100g": 42, "energy_100g": 900})
		assert.InDelta(t, 42, got, 1e-9)
	})

	t.Run("missing features contribute zero", func(t *testing.T) {
		got := m.Predict(map[string]float64{})
		assert.InDelta(t, 0, got, 1e-9)
	})

	t.Run("clamps below zero", func(t *testing.T) {
		got := m.Predict(map[string]float64{"sugars_100g": -500})
		assert.Equal(t, 0.0, got)
	})

	t.Run("clamps above one hundred", func(t *testing.T) {
		got := m.Predict(map[string]float64{"sugars_100g": 1e6})
		assert.Equal(t, 100.0, got)
	})

	t.Run("applies the scaler before the forward pass", func(t *testing.T) {
		a := identityArtifact()
		a.Scaler = Scaler{Mean: []float64{10, 0}, Scale: []float64{2, 1}}
		scaled, err := Load(writeArtifact(t, a))
		require.NoError(t, err)

		// (30 - 10) / 2 = 10
		got := scaled.Predict(map[string]float64{"sugars_100g": 30})
		assert.InDelta(t, 10, got, 1e-9)
	})

	t.Run("relu hidden layer zeroes negative activations", func(t *testing.T) {
		a := artifact{
			FeatureOrder: []string{"sugars_100g"},
			Scaler:       Scaler{Mean: []float64{0}, Scale: []float64{1}},
			Layers: []Layer{
				{Weights: [][]float64{{-1}}, Biases: []float64{0}, Activation: "relu"},
				{Weights: [][]float64{{1}}, Biases: []float64{50}, Activation: "linear"},
			},
		}
		relu, err := Load(writeArtifact(t, a))
		require.NoError(t, err)

		// hidden = relu(-5) = 0, head = 0 + 50
		got := relu.Predict(map[string]float64{"sugars_100g": 5})
		assert.InDelta(t, 50, got, 1e-9)
	})
}
