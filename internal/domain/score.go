package domain

import "time"

// Severity color bands for the score interpretation.
const (
	ColorGreen  = "green"
	ColorYellow = "yellow"
	ColorOrange = "orange"
	ColorRed    = "red"
)

// ScoreResult is the outcome of scoring one product for one consumer. It is
// created fresh per scoring call and never mutated afterwards.
type ScoreResult struct {
	Success         bool               `json:"success"`
	Error           string             `json:"error,omitempty"`
	Barcode         string             `json:"barcode,omitempty"`
	ProductName     string             `json:"product_name,omitempty"`
	Brands          string             `json:"brands,omitempty"`
	NutriscoreGrade string             `json:"nutriscore_grade,omitempty"`
	YumiScore       float64            `json:"yumi_score"`
	BaseScore       float64            `json:"base_score"`
	Interpretation  string             `json:"interpretation,omitempty"`
	Color           string             `json:"color,omitempty"`
	Warnings        []string           `json:"warnings,omitempty"`
	Blocked         bool               `json:"blocked"`
	ProfileName     string             `json:"user_profile,omitempty"`
	FeaturesUsed    map[string]float64 `json:"features_used,omitempty"`
	Categories      []string           `json:"categories,omitempty"`
	Recommendations []Recommendation   `json:"recommendations,omitempty"`
}

// Recommendation is one healthier alternative to a low-scoring product.
type Recommendation struct {
	Barcode         string  `json:"barcode"`
	ProductName     string  `json:"product_name"`
	Brands          string  `json:"brands"`
	YumiScore       float64 `json:"yumi_score"`
	NutriscoreGrade string  `json:"nutriscore_grade"`
	Categories      string  `json:"categories"`
	Price           float64 `json:"price,omitempty"`
}

// HistoryEntry is an immutable snapshot of a scan appended to a consumer's
// history log.
type HistoryEntry struct {
	ID        string      `json:"id"`
	ScannedAt time.Time   `json:"scanned_at"`
	Result    ScoreResult `json:"result"`
}

// CartItem is one product in a consumer's volatile shopping cart.
type CartItem struct {
	ID          string  `json:"id"`
	Barcode     string  `json:"barcode"`
	ProductName string  `json:"product_name"`
	Brands      string  `json:"brands"`
	YumiScore   float64 `json:"yumi_score"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}
