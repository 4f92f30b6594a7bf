package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/yumi/backend/internal/domain"
)

// Predictor is the loaded base regression model: process-wide immutable state
// initialized once at startup.
type Predictor interface {
	FeatureOrder() []string
	Predict(features map[string]float64) float64
}

// ScoringServiceConfig holds tunables for the scoring pipeline.
type ScoringServiceConfig struct {
	// RecommendationThreshold is the final score below which alternatives are
	// searched. Default 50.
	RecommendationThreshold float64
	Recommendation          RecommendationConfig
}

// ScoringService is the score-and-explain pipeline: product lookup, feature
// extraction, base prediction, layered adjustment, and — for low scores —
// the alternative search.
type ScoringService struct {
	lookup      domain.ProductLookup
	predictor   Predictor
	recommender *RecommendationService
	threshold   float64
}

// NewScoringService wires the scoring pipeline. recommender may be nil to
// disable alternative search entirely.
func NewScoringService(
	lookup domain.ProductLookup,
	predictor Predictor,
	recommender *RecommendationService,
	config ScoringServiceConfig,
) *ScoringService {
	threshold := config.RecommendationThreshold
	if threshold <= 0 {
		threshold = 50
	}
	return &ScoringService{
		lookup:      lookup,
		predictor:   predictor,
		recommender: recommender,
		threshold:   threshold,
	}
}

// ScoreBarcode scores the product behind a barcode for the given profile. A
// nil profile scores with the neutral profile (category adjustments only).
// A missing product is a structured failure result plus ErrProductNotFound,
// never a panic; blocked outcomes are successes with Blocked set.
func (s *ScoringService) ScoreBarcode(ctx context.Context, barcode string, profile *domain.Profile) (*domain.ScoreResult, error) {
	if barcode == "" {
		return failure(barcode, "missing barcode"), domain.ErrInvalidRequest
	}

	product, err := s.lookup.Fetch(ctx, barcode)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return failure(barcode, fmt.Sprintf("product %s not found", barcode)), err
		}
		return failure(barcode, fmt.Sprintf("lookup failed for %s", barcode)), err
	}

	personalized := profile != nil
	if profile == nil {
		profile = domain.NeutralProfile()
	}

	features := ExtractFeatures(product, s.predictor.FeatureOrder())
	base := s.predictor.Predict(features)
	score, warnings, blocked := AdjustScore(base, product, features, profile)

	isAlcohol := DetectAlcohol(product.Categories, product.Name)
	interpretation, color := Interpret(score, blocked, isAlcohol, personalized)

	result := &domain.ScoreResult{
		Success:         true,
		Barcode:         barcode,
		ProductName:     product.Name,
		Brands:          product.Brands,
		NutriscoreGrade: product.NutriscoreGrade,
		YumiScore:       round1(score),
		BaseScore:       round1(base),
		Interpretation:  interpretation,
		Color:           color,
		Warnings:        warnings,
		Blocked:         blocked,
		ProfileName:     profile.Name,
		FeaturesUsed:    features,
		Categories:      product.Categories,
	}

	if score < s.threshold && s.recommender != nil {
		log.Printf("[SCORE] low score %.1f for %s, searching alternatives", score, barcode)
		recoProfile := profile
		if !personalized {
			recoProfile = nil
		}
		recs := s.recommender.FindAlternatives(ctx, score, product.Categories, recoProfile, 0, barcode)
		if profile.WeeklyBudget > 0 {
			recs = s.recommender.pricer.FilterByBudget(recs, profile.WeeklyBudget, 0)
		}
		result.Recommendations = recs
	}

	return result, nil
}

// FindAlternatives exposes the alternative-product search directly, for
// callers that already hold a scored product.
func (s *ScoringService) FindAlternatives(
	ctx context.Context,
	currentScore float64,
	categories []string,
	profile *domain.Profile,
	n int,
	excludeBarcode string,
) []domain.Recommendation {
	if s.recommender == nil {
		return nil
	}
	return s.recommender.FindAlternatives(ctx, currentScore, categories, profile, n, excludeBarcode)
}

func failure(barcode, message string) *domain.ScoreResult {
	return &domain.ScoreResult{Success: false, Barcode: barcode, Error: message}
}
