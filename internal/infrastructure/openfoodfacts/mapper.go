package openfoodfacts

import (
	"strconv"
	"strings"

	"github.com/yumi/backend/internal/domain"
)

// productEnvelope is the v2 product endpoint response.
type productEnvelope struct {
	Status  int         `json:"status"`
	Product *rawProduct `json:"product"`
}

// searchEnvelope is the search endpoint response.
type searchEnvelope struct {
	Count    int          `json:"count"`
	Products []rawProduct `json:"products"`
}

// rawProduct is the subset of an Open Food Facts record the scoring pipeline
// reads. Nutriment values stay untyped: the database mixes numbers and strings
// and the feature extractor coerces them.
type rawProduct struct {
	Code            string         `json:"code"`
	ProductName     string         `json:"product_name"`
	ProductNameEn   string         `json:"product_name_en"`
	Brands          string         `json:"brands"`
	NutriscoreGrade string         `json:"nutriscore_grade"`
	CategoriesTags  []string       `json:"categories_tags"`
	LabelsTags      []string       `json:"labels_tags"`
	IngredientsTags []string       `json:"ingredients_tags"`
	AllergensTags   []string       `json:"allergens_tags"`
	Nutriments      map[string]any `json:"nutriments"`
}

// Nutriment key translations: Open Food Facts names on the left, feature
// names on the right. Open Food Facts reports energy_100g in kilojoules; the
// pipeline is calibrated in kcal, so the kcal key claims energy_100g and the
// kilojoule value moves to energy_kj_100g.
var nutrimentAliases = map[string]string{
	"energy-kcal_100g":   "energy_100g",
	"energy_100g":        "energy_kj_100g",
	"energy-kj_100g":     "energy_kj_100g",
	"saturated-fat_100g": "saturated_fat_100g",
}

// mapProduct converts a raw Open Food Facts record to the domain model.
// Language prefixes ("en:", "fr:") are stripped from every tag so the keyword
// matchers see plain hyphenated tags.
func mapProduct(barcode string, raw *rawProduct) *domain.Product {
	name := raw.ProductName
	if name == "" {
		name = raw.ProductNameEn
	}

	return &domain.Product{
		Barcode:         barcode,
		Name:            name,
		Brands:          raw.Brands,
		NutriscoreGrade: strings.ToLower(raw.NutriscoreGrade),
		Categories:      stripLanguagePrefixes(raw.CategoriesTags),
		Labels:          stripLanguagePrefixes(raw.LabelsTags),
		Ingredients:     stripLanguagePrefixes(raw.IngredientsTags),
		Allergens:       stripLanguagePrefixes(raw.AllergensTags),
		AlcoholByVolume: alcoholByVolume(raw.Nutriments),
		Nutrients:       normalizeNutriments(raw.Nutriments),
	}
}

// normalizeNutriments renames aliased nutriment keys to the names the feature
// extractor expects. Aliases win over a raw key of the same name, so a record
// carrying both energy_100g (kJ) and energy-kcal_100g ends up with the kcal
// value under energy_100g and the kilojoule value under energy_kj_100g.
func normalizeNutriments(nutriments map[string]any) map[string]any {
	if nutriments == nil {
		return map[string]any{}
	}
	normalized := make(map[string]any, len(nutriments))
	for key, value := range nutriments {
		if _, aliased := nutrimentAliases[key]; !aliased {
			normalized[key] = value
		}
	}
	for key, canonical := range nutrimentAliases {
		value, ok := nutriments[key]
		if !ok {
			continue
		}
		if key == "energy_100g" {
			// The explicit kilojoule key takes precedence for energy_kj_100g.
			if _, explicit := nutriments["energy-kj_100g"]; explicit {
				continue
			}
		}
		normalized[canonical] = value
	}
	return normalized
}

func alcoholByVolume(nutriments map[string]any) float64 {
	for _, key := range []string{"alcohol_100g", "alcohol"} {
		if v, ok := nutriments[key]; ok {
			switch x := v.(type) {
			case float64:
				return x
			case string:
				cleaned := strings.ReplaceAll(strings.TrimSpace(x), ",", ".")
				if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
					return f
				}
			}
		}
	}
	return 0
}

// stripLanguagePrefixes drops the "xx:" language marker from tags, keeping
// the tag itself ("en:gin-tonic" -> "gin-tonic").
func stripLanguagePrefixes(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if i := strings.Index(tag, ":"); i >= 0 {
			tag = tag[i+1:]
		}
		tag = strings.TrimSpace(tag)
		if tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
