package main

import (
	"fmt"
	"log"
	"os"

	"github.com/yumi/backend/config"
	httpDelivery "github.com/yumi/backend/internal/delivery/http"
	"github.com/yumi/backend/internal/domain"
	"github.com/yumi/backend/internal/infrastructure/localdata"
	"github.com/yumi/backend/internal/infrastructure/model"
	"github.com/yumi/backend/internal/infrastructure/openfoodfacts"
	"github.com/yumi/backend/internal/infrastructure/store"
	"github.com/yumi/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting Yumi Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	// The base scoring model is startup-fatal: without its artifacts no
	// scoring request can be answered.
	scoringModel, err := model.Load(cfg.Model.Path)
	if err != nil {
		log.Fatalf("Failed to load scoring model from %s: %v", cfg.Model.Path, err)
	}
	log.Printf("Scoring model loaded: %d features", len(scoringModel.FeatureOrder()))

	// Local fallback dataset is optional; recommendations degrade without it.
	var local domain.LocalCatalog
	if cfg.LocalData.Path != "" {
		catalog, err := localdata.Load(cfg.LocalData.Path)
		if err != nil {
			log.Printf("WARNING: local dataset unavailable (%v), recommendations fall back to catalog only", err)
		} else {
			local = catalog
		}
	}

	offClient := openfoodfacts.NewClient(cfg.OpenFoodFacts.BaseURL, cfg.OpenFoodFacts.UserAgent, cfg.OpenFoodFacts.Timeout)
	log.Printf("Open Food Facts configured: %s", cfg.OpenFoodFacts.BaseURL)

	memoryStore := store.NewMemoryStore()
	pricer := usecase.NewPriceEstimator()

	recommender := usecase.NewRecommendationService(
		offClient,
		local,
		scoringModel,
		pricer,
		usecase.RecommendationConfig{
			Count:  cfg.Scoring.RecommendationCount,
			Margin: cfg.Scoring.RecommendationMargin,
		},
	)

	scoringService := usecase.NewScoringService(
		offClient,
		scoringModel,
		recommender,
		usecase.ScoringServiceConfig{
			RecommendationThreshold: cfg.Scoring.RecommendationThreshold,
		},
	)

	stateService := usecase.NewStateService(memoryStore, pricer, cfg.Store.HistoryLimit)

	// Create HTTP handler with dependencies
	metrics := httpDelivery.NewMetrics()
	handler := httpDelivery.NewHandler(scoringService, stateService, metrics)
	router := httpDelivery.SetupRouter(cfg, handler, metrics)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
