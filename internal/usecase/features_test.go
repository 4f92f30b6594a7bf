package usecase

import (
	"math"
	"testing"

	"github.com/yumi/backend/internal/domain"
)

var testFeatureOrder = []string{
	"energy_100g", "proteins_100g", "carbohydrates_100g", "sugars_100g",
	"fat_100g", "saturated_fat_100g", "fiber_100g", "salt_100g", "sodium_100g",
	"calcium_100g", "iron_100g", "potassium_100g", "iodine_100g",
	"sugar_carb_ratio",
}

func TestExtractFeatures(t *testing.T) {
	t.Run("every declared field is present and numeric", func(t *testing.T) {
		p := &domain.Product{Nutrients: map[string]any{
			"energy_100g": 1600.0,
			"sugars_100g": "28",
		}}
		features := ExtractFeatures(p, testFeatureOrder)

		if len(features) != len(testFeatureOrder) {
			t.Fatalf("got %d features, want %d", len(features), len(testFeatureOrder))
		}
		for _, name := range testFeatureOrder {
			v, ok := features[name]
			if !ok {
				t.Errorf("feature %q missing", name)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Errorf("feature %q = %v, want finite", name, v)
			}
		}
	})

	t.Run("missing and malformed values default to zero", func(t *testing.T) {
		cases := []struct {
			name string
			raw  any
		}{
			{"missing", nil},
			{"empty string", ""},
			{"textual nan", "NaN"},
			{"textual none", "none"},
			{"garbage", "abc"},
			{"float NaN", math.NaN()},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				p := &domain.Product{Nutrients: map[string]any{"sugars_100g": tc.raw}}
				features := ExtractFeatures(p, testFeatureOrder)
				if features["sugars_100g"] != 0.0 {
					t.Errorf("sugars_100g = %v, want 0.0", features["sugars_100g"])
				}
			})
		}
	})

	t.Run("parses numeric strings with decimal comma", func(t *testing.T) {
		p := &domain.Product{Nutrients: map[string]any{"salt_100g": "0,8"}}
		features := ExtractFeatures(p, testFeatureOrder)
		if features["salt_100g"] != 0.8 {
			t.Errorf("salt_100g = %v, want 0.8", features["salt_100g"])
		}
	})

	t.Run("computes the sugar carb ratio", func(t *testing.T) {
		p := &domain.Product{Nutrients: map[string]any{
			"sugars_100g":        28.0,
			"carbohydrates_100g": 65.0,
		}}
		features := ExtractFeatures(p, testFeatureOrder)
		want := 28.0 / (65.0 + 1e-8)
		if math.Abs(features["sugar_carb_ratio"]-want) > 1e-12 {
			t.Errorf("sugar_carb_ratio = %v, want %v", features["sugar_carb_ratio"], want)
		}
	})

	t.Run("ratio is zero when carbohydrates are non-positive", func(t *testing.T) {
		p := &domain.Product{Nutrients: map[string]any{"sugars_100g": 5.0}}
		features := ExtractFeatures(p, testFeatureOrder)
		if features["sugar_carb_ratio"] != 0.0 {
			t.Errorf("sugar_carb_ratio = %v, want 0.0", features["sugar_carb_ratio"])
		}
	})
}
