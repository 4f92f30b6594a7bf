package domain

// Product represents a food product as mapped from an external database record.
// Nutrients holds the raw per-100g values keyed by field name; external sources
// deliver them as a mix of numbers and strings, so coercion is left to the
// feature extractor.
type Product struct {
	Barcode         string         `json:"barcode"`
	Name            string         `json:"product_name"`
	Brands          string         `json:"brands"`
	NutriscoreGrade string         `json:"nutriscore_grade"`
	Categories      []string       `json:"categories_tags"`
	Labels          []string       `json:"labels_tags"`
	Ingredients     []string       `json:"ingredients_tags"`
	Allergens       []string       `json:"allergens_tags"`
	AlcoholByVolume float64        `json:"alcohol_by_volume_100g"`
	Nutrients       map[string]any `json:"nutrients"`
}
