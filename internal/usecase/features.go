package usecase

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/yumi/backend/internal/domain"
)

// epsilon floors divisors in derived ratios to avoid division by zero.
const epsilon = 1e-8

// per100gSuffix marks the nutrient fields read directly from the raw record.
const per100gSuffix = "_100g"

// derived feature names the training pipeline may declare.
const featureSugarCarbRatio = "sugar_carb_ratio"

// ExtractFeatures maps a raw product record into the fixed feature vector the
// model expects. Every name in featureOrder is present in the result: per-100g
// fields are coerced from the raw nutrient values with missing, empty or
// unparseable values defaulting to 0.0, and derived ratios are computed from
// the already-extracted fields. It never fails.
func ExtractFeatures(p *domain.Product, featureOrder []string) map[string]float64 {
	features := make(map[string]float64, len(featureOrder))

	for _, name := range featureOrder {
		if strings.HasSuffix(name, per100gSuffix) {
			features[name] = coerceFloat(p.Nutrients[name])
		}
	}

	for _, name := range featureOrder {
		if name == featureSugarCarbRatio {
			sugars := features["sugars_100g"]
			carbs := features["carbohydrates_100g"]
			if carbs > 0 {
				features[name] = sugars / (carbs + epsilon)
			} else {
				features[name] = 0.0
			}
		}
	}

	// Anything else the order declares defaults to zero rather than going missing.
	for _, name := range featureOrder {
		if _, ok := features[name]; !ok {
			features[name] = 0.0
		}
	}

	return features
}

// coerceFloat turns a raw nutrient value into a float64, treating nil, empty
// strings, textual "nan"/"none" and unparseable input as 0.0.
func coerceFloat(v any) float64 {
	switch x := v.(type) {
	case nil:
		return 0.0
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0.0
		}
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0.0
		}
		return f
	case string:
		s := strings.TrimSpace(x)
		switch strings.ToLower(s) {
		case "", "nan", "none":
			return 0.0
		}
		// External sources occasionally use a decimal comma.
		s = strings.ReplaceAll(s, ",", ".")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0.0
		}
		return f
	default:
		return 0.0
	}
}
