package usecase

import (
	"context"
	"log"
	"math"
	"sort"
	"strings"

	"github.com/yumi/backend/internal/domain"
)

// Catalog search buckets and the nutrition grades queried per bucket.
var (
	catalogGrades = []string{"a", "b"}

	bucketRules = []struct {
		bucket string
		rule   domain.KeywordRule
	}{
		{"spreads", domain.KeywordRule{Mode: domain.MatchSubstring, Keywords: []string{"spread", "pate-a-tartiner"}}},
		{"breakfast", domain.KeywordRule{Mode: domain.MatchSubstring, Keywords: []string{"breakfast"}}},
		{"beverages", domain.KeywordRule{Mode: domain.MatchSubstring, Keywords: []string{"beverage", "drink"}}},
		{"dairy", domain.KeywordRule{Mode: domain.MatchSubstring, Keywords: []string{"dairy", "milk"}}},
		{"snacks", domain.KeywordRule{Mode: domain.MatchSubstring, Keywords: []string{"snack", "biscuit"}}},
		{"bread", domain.KeywordRule{Mode: domain.MatchSubstring, Keywords: []string{"bread", "pain"}}},
	}

	defaultBuckets = []string{"dairy", "breakfast"}
)

// RecommendationConfig bounds the alternative search.
type RecommendationConfig struct {
	Count         int     // desired number of alternatives (default 3)
	Margin        float64 // minimum score improvement (default 5)
	MaxCandidates int     // cap on fetched catalog candidates (default 100)
	PageSize      int     // catalog page size per query (default 25)
}

func (c *RecommendationConfig) defaults() {
	if c.Count <= 0 {
		c.Count = 3
	}
	if c.Margin <= 0 {
		c.Margin = 5
	}
	if c.MaxCandidates <= 0 {
		c.MaxCandidates = 100
	}
	if c.PageSize <= 0 {
		c.PageSize = 25
	}
}

// RecommendationService searches the external catalog, then the local fallback
// dataset, for healthier alternatives to a low-scoring product.
type RecommendationService struct {
	catalog   domain.CatalogSearcher
	local     domain.LocalCatalog
	predictor Predictor
	pricer    *PriceEstimator
	config    RecommendationConfig
}

// NewRecommendationService wires the recommendation engine. local may be nil
// when no fallback dataset is available.
func NewRecommendationService(
	catalog domain.CatalogSearcher,
	local domain.LocalCatalog,
	predictor Predictor,
	pricer *PriceEstimator,
	config RecommendationConfig,
) *RecommendationService {
	config.defaults()
	return &RecommendationService{
		catalog:   catalog,
		local:     local,
		predictor: predictor,
		pricer:    pricer,
		config:    config,
	}
}

// FindAlternatives returns up to n ranked alternatives scoring more than
// margin points above currentScore, excluding excludeBarcode. Phase 1 queries
// the external catalog per mapped bucket and grade; phase 2 fills any
// remainder from the local dataset. Catalog failures degrade to zero results
// for that sub-query, never to an error.
func (s *RecommendationService) FindAlternatives(
	ctx context.Context,
	currentScore float64,
	currentCategories []string,
	profile *domain.Profile,
	n int,
	excludeBarcode string,
) []domain.Recommendation {
	if n <= 0 {
		n = s.config.Count
	}

	recommendations := s.searchCatalog(ctx, currentScore, currentCategories, profile, n, excludeBarcode)
	if len(recommendations) < n && s.local != nil {
		recommendations = s.fillFromLocal(recommendations, currentScore, profile, n, excludeBarcode)
	}

	for i := range recommendations {
		rec := &recommendations[i]
		rec.Price = s.pricer.Estimate(rec.Barcode, rec.ProductName, nil, rec.Brands, rec.NutriscoreGrade)
	}
	return recommendations
}

// searchCatalog is phase 1: bucket × grade catalog queries, scored through the
// same adjustment pipeline the caller used, brand-diversified, capped at n.
func (s *RecommendationService) searchCatalog(
	ctx context.Context,
	currentScore float64,
	currentCategories []string,
	profile *domain.Profile,
	n int,
	excludeBarcode string,
) []domain.Recommendation {
	buckets := mapCategoriesToBuckets(currentCategories)

	var candidates []domain.Product
	seen := map[string]bool{excludeBarcode: true}

fetch:
	for _, bucket := range buckets {
		for _, grade := range catalogGrades {
			products, err := s.catalog.SearchByCategory(ctx, bucket, grade, 1, s.config.PageSize)
			if err != nil {
				log.Printf("[RECO] catalog search %s/%s failed: %v", bucket, grade, err)
				continue
			}
			for _, p := range products {
				if p.Barcode == "" || seen[p.Barcode] {
					continue
				}
				seen[p.Barcode] = true
				candidates = append(candidates, p)
				if len(candidates) >= s.config.MaxCandidates {
					break fetch
				}
			}
		}
	}

	var scored []domain.Recommendation
	for i := range candidates {
		p := &candidates[i]
		if p.Name == "" {
			continue
		}
		score, blocked := s.scoreProduct(p, profile)
		if blocked || score <= currentScore+s.config.Margin {
			continue
		}
		scored = append(scored, domain.Recommendation{
			Barcode:         p.Barcode,
			ProductName:     p.Name,
			Brands:          p.Brands,
			YumiScore:       round1(score),
			NutriscoreGrade: p.NutriscoreGrade,
			Categories:      truncateCategories(p.Categories),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].YumiScore > scored[j].YumiScore })
	return diversifyByBrand(scored, n)
}

// fillFromLocal is phase 2: score the local dataset with the same pipeline and
// take the best remaining entries above the margin.
func (s *RecommendationService) fillFromLocal(
	have []domain.Recommendation,
	currentScore float64,
	profile *domain.Profile,
	n int,
	excludeBarcode string,
) []domain.Recommendation {
	taken := map[string]bool{excludeBarcode: true}
	for _, rec := range have {
		taken[rec.Barcode] = true
	}

	var candidates []domain.Recommendation
	for _, p := range s.local.Products() {
		if p.Barcode == "" || taken[p.Barcode] || p.Name == "" {
			continue
		}
		score, blocked := s.scoreProduct(&p, profile)
		if blocked || score <= currentScore+s.config.Margin {
			continue
		}
		candidates = append(candidates, domain.Recommendation{
			Barcode:         p.Barcode,
			ProductName:     p.Name,
			Brands:          p.Brands,
			YumiScore:       round1(score),
			NutriscoreGrade: p.NutriscoreGrade,
			Categories:      truncateCategories(p.Categories),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].YumiScore > candidates[j].YumiScore })
	needed := n - len(have)
	if needed > len(candidates) {
		needed = len(candidates)
	}
	return append(have, candidates[:needed]...)
}

// scoreProduct runs extract → predict → adjust for one candidate.
func (s *RecommendationService) scoreProduct(p *domain.Product, profile *domain.Profile) (float64, bool) {
	features := ExtractFeatures(p, s.predictor.FeatureOrder())
	base := s.predictor.Predict(features)
	score, _, blocked := AdjustScore(base, p, features, profile)
	return score, blocked
}

// mapCategoriesToBuckets maps up to three of the product's categories onto the
// fixed catalog buckets; at most two distinct buckets are queried. With no
// match the default healthy buckets are used.
func mapCategoriesToBuckets(categories []string) []string {
	var buckets []string
	used := make(map[string]bool)

	limit := len(categories)
	if limit > 3 {
		limit = 3
	}
	for _, cat := range categories[:limit] {
		for _, br := range bucketRules {
			if br.rule.Matches(cat) && !used[br.bucket] {
				buckets = append(buckets, br.bucket)
				used[br.bucket] = true
				break
			}
		}
	}

	if len(buckets) == 0 {
		return defaultBuckets
	}
	if len(buckets) > 2 {
		buckets = buckets[:2]
	}
	return buckets
}

// diversifyByBrand walks score-sorted recommendations picking at most one per
// brand; if that yields fewer than n, the constraint is relaxed and the rest
// are filled best-first.
func diversifyByBrand(sorted []domain.Recommendation, n int) []domain.Recommendation {
	var diverse []domain.Recommendation
	usedBrands := make(map[string]bool)
	picked := make(map[string]bool)

	for _, rec := range sorted {
		if len(diverse) >= n {
			break
		}
		brand := strings.TrimSpace(rec.Brands)
		if brand == "" {
			brand = "unknown"
		}
		if usedBrands[brand] {
			continue
		}
		usedBrands[brand] = true
		picked[rec.Barcode] = true
		diverse = append(diverse, rec)
	}

	for _, rec := range sorted {
		if len(diverse) >= n {
			break
		}
		if !picked[rec.Barcode] {
			picked[rec.Barcode] = true
			diverse = append(diverse, rec)
		}
	}
	return diverse
}

// truncateCategories renders a shortened category summary for display.
func truncateCategories(categories []string) string {
	joined := strings.Join(categories, ", ")
	if len(joined) > 100 {
		joined = joined[:100]
	}
	return joined
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
