package usecase

import (
	"hash/fnv"
	"math"
	"math/rand"
	"sort"
	"strings"

	"github.com/yumi/backend/internal/domain"
)

// priceRange is the retail price band for one product category keyword.
type priceRange struct {
	keyword  string
	min, max float64
}

// Category base prices in euros. Evaluated in order, categories first then
// product name; the first keyword found wins.
var categoryPrices = []priceRange{
	{"fruits", 2.50, 8.00},
	{"vegetables", 1.50, 6.00},
	{"meat", 8.00, 25.00},
	{"poultry", 6.00, 15.00},
	{"fish", 10.00, 30.00},
	{"seafood", 15.00, 40.00},
	{"cheese", 4.00, 20.00},
	{"dairy", 1.20, 8.00},
	{"cereals", 2.00, 8.00},
	{"pasta", 1.00, 4.00},
	{"rice", 1.50, 6.00},
	{"bread", 1.00, 5.00},
	{"cookies", 2.00, 6.00},
	{"biscuits", 2.00, 6.00},
	{"chocolate", 1.50, 12.00},
	{"snacks", 1.50, 5.00},
	{"water", 0.50, 3.00},
	{"juices", 2.00, 6.00},
	{"sodas", 1.00, 4.00},
	{"coffee", 3.00, 15.00},
	{"tea", 2.00, 10.00},
	{"beverages", 1.00, 8.00},
	{"sauces", 1.50, 8.00},
	{"condiments", 2.00, 10.00},
	{"spices", 1.00, 8.00},
	{"oils", 3.00, 15.00},
	{"canned", 1.00, 5.00},
	{"frozen", 2.00, 12.00},
	{"organic", 3.00, 20.00},
	{"premium", 5.00, 25.00},
}

var defaultPriceRange = priceRange{"default", 1.50, 8.00}

// Brand/type keyword multipliers, applied multiplicatively and
// order-independently against the product name and brand string.
var brandMultipliers = map[string]float64{
	"premium":   1.3,
	"bio":       1.4,
	"organic":   1.4,
	"light":     1.1,
	"0%":        1.1,
	"sans":      1.2,
	"artisanal": 1.5,
	"local":     1.2,
	"fair":      1.3,
}

// Nutriscore grade modifiers: better grades retail slightly higher.
var nutriscoreMultipliers = map[string]float64{
	"a": 1.10, "b": 1.05, "c": 1.00, "d": 0.95, "e": 0.90,
}

// Weekly consumption share of a purchased product used for budget estimates.
const weeklyConsumption = 0.7

// PriceEstimator generates deterministic pseudo-prices for products: the same
// barcode always yields the same price. Prices only exist to rank and filter
// recommendations against a weekly budget; they are not real market data.
type PriceEstimator struct{}

// NewPriceEstimator creates a price estimator.
func NewPriceEstimator() *PriceEstimator { return &PriceEstimator{} }

// Estimate returns the pseudo-price for a product. The barcode seeds the draw;
// category keywords choose the base range; brand keywords and the nutriscore
// grade apply multiplicative modifiers; the result is rounded to a realistic
// retail ending.
func (e *PriceEstimator) Estimate(barcode, name string, categories []string, brands, nutriscore string) float64 {
	h := fnv.New64a()
	h.Write([]byte(barcode))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	band := matchPriceRange(name, categories)
	price := band.min + rng.Float64()*(band.max-band.min)

	price *= brandMultiplier(name, brands)
	if m, ok := nutriscoreMultipliers[strings.ToLower(nutriscore)]; ok {
		price *= m
	}

	return roundRetail(price)
}

func matchPriceRange(name string, categories []string) priceRange {
	nameLower := strings.ToLower(name)
	for _, cat := range categories {
		catLower := strings.ToLower(cat)
		for _, band := range categoryPrices {
			if strings.Contains(catLower, band.keyword) {
				return band
			}
		}
	}
	for _, band := range categoryPrices {
		if strings.Contains(nameLower, band.keyword) {
			return band
		}
	}
	return defaultPriceRange
}

func brandMultiplier(name, brands string) float64 {
	text := strings.ToLower(name + " " + brands)
	multiplier := 1.0
	for keyword, m := range brandMultipliers {
		if strings.Contains(text, keyword) {
			multiplier *= m
		}
	}
	return multiplier
}

// roundRetail snaps a price to a realistic shop ending: exact cents below 1,
// .00/.05/.09 offsets up to 5, .49/.99 up to 10, .99 above.
func roundRetail(price float64) float64 {
	switch {
	case price < 1.0:
		return math.Round(price*100) / 100
	case price < 5.0:
		base := math.Floor(price*10) / 10
		decimal := price - base
		switch {
		case decimal < 0.05:
			return base
		case decimal < 0.09:
			return base + 0.05
		default:
			return base + 0.09
		}
	case price < 10.0:
		base := math.Floor(price)
		if price-base < 0.5 {
			return base + 0.49
		}
		return base + 0.99
	default:
		return math.Floor(price) + 0.99
	}
}

// EstimateWeeklyCost estimates the weekly cost of a set of priced
// recommendations, assuming each product is 70% consumed per week.
func (e *PriceEstimator) EstimateWeeklyCost(prices []float64) float64 {
	total := 0.0
	for _, p := range prices {
		total += p * weeklyConsumption
	}
	return math.Round(total*100) / 100
}

// FilterByBudget keeps the recommendations whose cumulative estimated weekly
// cost stays under budget*targetShare, walking them by descending
// score-to-price ratio. At least three products are always kept when at least
// three were supplied, even past the target. A zero budget disables filtering.
func (e *PriceEstimator) FilterByBudget(recs []domain.Recommendation, weeklyBudget, targetShare float64) []domain.Recommendation {
	if len(recs) == 0 || weeklyBudget <= 0 {
		return recs
	}
	if targetShare <= 0 {
		targetShare = 0.8
	}
	target := weeklyBudget * targetShare

	sorted := make([]domain.Recommendation, len(recs))
	copy(sorted, recs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return qualityPriceRatio(sorted[i]) > qualityPriceRatio(sorted[j])
	})

	var selected []domain.Recommendation
	cost := 0.0
	for _, rec := range sorted {
		weekly := rec.Price * weeklyConsumption
		if cost+weekly <= target || len(selected) < 3 {
			selected = append(selected, rec)
			cost += weekly
		}
	}
	return selected
}

func qualityPriceRatio(rec domain.Recommendation) float64 {
	if rec.Price <= 0 {
		return 0
	}
	return rec.YumiScore / rec.Price
}
