package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yumi/backend/internal/domain"
	"github.com/yumi/backend/internal/usecase"
)

// userIDHeader identifies the consumer. Requests without it are served the
// neutral, non-personalized pipeline and leave no trace in any store.
const userIDHeader = "X-User-ID"

// Handler holds dependencies for HTTP handlers
type Handler struct {
	scoring *usecase.ScoringService
	state   *usecase.StateService
	metrics *Metrics
}

// NewHandler creates a new HTTP handler
func NewHandler(scoring *usecase.ScoringService, state *usecase.StateService, metrics *Metrics) *Handler {
	return &Handler{scoring: scoring, state: state, metrics: metrics}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "yumi-backend",
		"version": "1.0.0",
	})
}

// resolveProfile returns the scoring profile for a request: the saved profile
// for the consumer, a default adult profile when the consumer has never saved
// one, or nil for anonymous requests.
func (h *Handler) resolveProfile(c *gin.Context, userID string) (*domain.Profile, bool) {
	if userID == "" {
		return nil, true
	}
	profile, err := h.state.GetProfile(c.Request.Context(), userID)
	if err != nil {
		log.Printf("[HTTP] profile load failed for %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "profile unavailable"})
		return nil, false
	}
	if profile == nil {
		profile = domain.DefaultProfile(userID)
	}
	return profile, true
}

type scanRequest struct {
	Barcode string `json:"barcode" binding:"required"`
}

// ScanProduct scores a barcode for the requesting consumer
func (h *Handler) ScanProduct(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "barcode is required"})
		return
	}

	userID := c.GetHeader(userIDHeader)
	profile, ok := h.resolveProfile(c, userID)
	if !ok {
		return
	}

	result, err := h.scoring.ScoreBarcode(c.Request.Context(), req.Barcode, profile)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidRequest):
			h.metrics.RecordScan("invalid", 0)
			c.JSON(http.StatusBadRequest, result)
		case errors.Is(err, domain.ErrProductNotFound):
			h.metrics.RecordScan("not_found", 0)
			c.JSON(http.StatusNotFound, result)
		default:
			log.Printf("[HTTP] scan failed for %s: %v", req.Barcode, err)
			h.metrics.RecordScan("error", 0)
			c.JSON(http.StatusBadGateway, result)
		}
		return
	}

	h.metrics.RecordScan("scored", result.YumiScore)

	if userID != "" {
		if _, err := h.state.AppendHistory(c.Request.Context(), userID, result); err != nil {
			log.Printf("[HTTP] history append failed for %s: %v", userID, err)
		}
	}

	c.JSON(http.StatusOK, result)
}

// GetProfile returns the consumer's profile, falling back to the default one
func (h *Handler) GetProfile(c *gin.Context) {
	userID := c.GetHeader(userIDHeader)
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "X-User-ID header is required"})
		return
	}

	profile, err := h.state.GetProfile(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "profile unavailable"})
		return
	}
	saved := profile != nil
	if !saved {
		profile = domain.DefaultProfile(userID)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "profile": profile, "saved": saved})
}

type profileRequest struct {
	Name                string   `json:"name"`
	AgeGroup            string   `json:"age_group" binding:"required"`
	ActivityLevel       string   `json:"activity_level"`
	DietaryRestrictions []string `json:"dietary_restrictions"`
	Allergies           []string `json:"allergies"`
	HealthGoals         []string `json:"health_goals"`
	WeeklyBudget        float64  `json:"weekly_budget"`
	AlcoholAllowed      *bool    `json:"alcohol_allowed"`
	MaxSugarTolerance   float64  `json:"max_sugar_tolerance"`
	MaxSodiumTolerance  float64  `json:"max_sodium_tolerance"`
	MinFiberPreference  float64  `json:"min_fiber_preference"`
	MinProteinGoal      float64  `json:"min_protein_preference"`
	SugarSensitivity    float64  `json:"sugar_sensitivity"`
	SodiumSensitivity   float64  `json:"sodium_sensitivity"`
	CalorieSensitivity  float64  `json:"calorie_sensitivity"`
}

// toProfile validates the closed enum fields and builds the domain profile.
func (r *profileRequest) toProfile(userID string) (*domain.Profile, error) {
	age, err := domain.ParseAgeGroup(r.AgeGroup)
	if err != nil {
		return nil, err
	}

	activity := domain.ActivityModerate
	if r.ActivityLevel != "" {
		if activity, err = domain.ParseActivityLevel(r.ActivityLevel); err != nil {
			return nil, err
		}
	}

	restrictions := make([]domain.DietaryRestriction, 0, len(r.DietaryRestrictions))
	for _, s := range r.DietaryRestrictions {
		restriction, err := domain.ParseDietaryRestriction(s)
		if err != nil {
			return nil, err
		}
		restrictions = append(restrictions, restriction)
	}

	goals := make([]domain.HealthGoal, 0, len(r.HealthGoals))
	for _, s := range r.HealthGoals {
		goal, err := domain.ParseHealthGoal(s)
		if err != nil {
			return nil, err
		}
		goals = append(goals, goal)
	}

	name := r.Name
	if name == "" {
		name = userID
	}
	alcoholAllowed := true
	if r.AlcoholAllowed != nil {
		alcoholAllowed = *r.AlcoholAllowed
	}

	return &domain.Profile{
		Name:                name,
		AgeGroup:            age,
		ActivityLevel:       activity,
		DietaryRestrictions: restrictions,
		Allergies:           r.Allergies,
		HealthGoals:         goals,
		WeeklyBudget:        r.WeeklyBudget,
		AlcoholAllowed:      alcoholAllowed,
		MaxSugarTolerance:   r.MaxSugarTolerance,
		MaxSodiumTolerance:  r.MaxSodiumTolerance,
		MinFiberPreference:  r.MinFiberPreference,
		MinProteinGoal:      r.MinProteinGoal,
		SugarSensitivity:    r.SugarSensitivity,
		SodiumSensitivity:   r.SodiumSensitivity,
		CalorieSensitivity:  r.CalorieSensitivity,
	}, nil
}

// SaveProfile creates or replaces the consumer's profile
func (h *Handler) SaveProfile(c *gin.Context) {
	userID := c.GetHeader(userIDHeader)
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "X-User-ID header is required"})
		return
	}

	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "age_group is required"})
		return
	}

	profile, err := req.toProfile(userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	if err := h.state.SaveProfile(c.Request.Context(), userID, profile); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to save profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "profile": profile})
}

// DeleteProfile removes the consumer's saved profile
func (h *Handler) DeleteProfile(c *gin.Context) {
	userID := c.GetHeader(userIDHeader)
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "X-User-ID header is required"})
		return
	}

	if err := h.state.DeleteProfile(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to delete profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetHistory returns the consumer's scan history, newest first
func (h *Handler) GetHistory(c *gin.Context) {
	userID := c.GetHeader(userIDHeader)
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "X-User-ID header is required"})
		return
	}

	entries, err := h.state.History(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "history unavailable"})
		return
	}
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "history": entries})
}

type cartAddRequest struct {
	Barcode     string  `json:"barcode" binding:"required"`
	ProductName string  `json:"product_name"`
	Brands      string  `json:"brands"`
	YumiScore   float64 `json:"yumi_score"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

// AddToCart puts a product into the consumer's cart
func (h *Handler) AddToCart(c *gin.Context) {
	userID := c.GetHeader(userIDHeader)
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "X-User-ID header is required"})
		return
	}

	var req cartAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "barcode is required"})
		return
	}

	item, err := h.state.AddToCart(c.Request.Context(), userID, domain.CartItem{
		Barcode:     req.Barcode,
		ProductName: req.ProductName,
		Brands:      req.Brands,
		YumiScore:   req.YumiScore,
		Price:       req.Price,
		Quantity:    req.Quantity,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to add to cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "item": item})
}

// GetCart returns the consumer's cart
func (h *Handler) GetCart(c *gin.Context) {
	userID := c.GetHeader(userIDHeader)
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "X-User-ID header is required"})
		return
	}

	items, err := h.state.Cart(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "cart unavailable"})
		return
	}
	if items == nil {
		items = []domain.CartItem{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "items": items})
}

// RemoveFromCart drops one cart entry by its id
func (h *Handler) RemoveFromCart(c *gin.Context) {
	userID := c.GetHeader(userIDHeader)
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "X-User-ID header is required"})
		return
	}

	err := h.state.RemoveFromCart(c.Request.Context(), userID, c.Param("id"))
	if errors.Is(err, domain.ErrStoreMiss) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "cart item not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to remove from cart"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Checkout summarizes the cart against the consumer's budget and clears it
func (h *Handler) Checkout(c *gin.Context) {
	userID := c.GetHeader(userIDHeader)
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "X-User-ID header is required"})
		return
	}

	profile, ok := h.resolveProfile(c, userID)
	if !ok {
		return
	}

	summary, err := h.state.Checkout(c.Request.Context(), userID, profile)
	if errors.Is(err, domain.ErrInvalidRequest) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "cart is empty"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "checkout failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "summary": summary})
}
