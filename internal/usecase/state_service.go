package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/yumi/backend/internal/domain"
)

const defaultHistoryLimit = 50

// StateService owns per-consumer state: the saved profile, the scan history
// log, and the shopping cart. State lives in the injected key-value store
// keyed by consumer identity; none of it expires on its own.
type StateService struct {
	store        domain.KeyValueStore
	pricer       *PriceEstimator
	historyLimit int
}

// NewStateService creates the consumer state service. historyLimit caps the
// retained scan history per consumer (default 50).
func NewStateService(store domain.KeyValueStore, pricer *PriceEstimator, historyLimit int) *StateService {
	if historyLimit <= 0 {
		historyLimit = defaultHistoryLimit
	}
	return &StateService{store: store, pricer: pricer, historyLimit: historyLimit}
}

func profileKey(userID string) string { return "profile:" + userID }
func historyKey(userID string) string { return "history:" + userID }
func cartKey(userID string) string    { return "cart:" + userID }

// GetProfile returns the saved profile for a consumer, or nil when none was
// saved yet.
func (s *StateService) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	value, err := s.store.Get(ctx, profileKey(userID))
	if errors.Is(err, domain.ErrStoreMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	profile, ok := value.(*domain.Profile)
	if !ok {
		return nil, fmt.Errorf("unexpected profile value for %s", userID)
	}
	return profile, nil
}

// SaveProfile derives and stores a consumer profile. Derivation happens here
// so every stored profile already carries its age and goal implications.
func (s *StateService) SaveProfile(ctx context.Context, userID string, profile *domain.Profile) error {
	if profile == nil {
		return domain.ErrInvalidRequest
	}
	profile.Derive()
	return s.store.Set(ctx, profileKey(userID), profile, 0)
}

// DeleteProfile removes a consumer's saved profile.
func (s *StateService) DeleteProfile(ctx context.Context, userID string) error {
	return s.store.Delete(ctx, profileKey(userID))
}

// AppendHistory records a scan outcome at the head of the consumer's history
// log, trimming the log to the retention limit.
func (s *StateService) AppendHistory(ctx context.Context, userID string, result *domain.ScoreResult) (domain.HistoryEntry, error) {
	entry := domain.HistoryEntry{
		ID:        uuid.NewString(),
		ScannedAt: time.Now().UTC(),
		Result:    *result,
	}

	entries, err := s.History(ctx, userID)
	if err != nil {
		return domain.HistoryEntry{}, err
	}

	entries = append([]domain.HistoryEntry{entry}, entries...)
	if len(entries) > s.historyLimit {
		entries = entries[:s.historyLimit]
	}

	if err := s.store.Set(ctx, historyKey(userID), entries, 0); err != nil {
		return domain.HistoryEntry{}, err
	}
	return entry, nil
}

// History returns the consumer's scan history, newest first.
func (s *StateService) History(ctx context.Context, userID string) ([]domain.HistoryEntry, error) {
	value, err := s.store.Get(ctx, historyKey(userID))
	if errors.Is(err, domain.ErrStoreMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	entries, ok := value.([]domain.HistoryEntry)
	if !ok {
		return nil, fmt.Errorf("unexpected history value for %s", userID)
	}
	return entries, nil
}

// AddToCart puts a scored product into the consumer's cart. A product already
// present has its quantity bumped instead of being duplicated.
func (s *StateService) AddToCart(ctx context.Context, userID string, item domain.CartItem) (domain.CartItem, error) {
	if item.Barcode == "" {
		return domain.CartItem{}, domain.ErrInvalidRequest
	}
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	if item.Price == 0 && s.pricer != nil {
		item.Price = s.pricer.Estimate(item.Barcode, item.ProductName, nil, item.Brands, "")
	}

	items, err := s.Cart(ctx, userID)
	if err != nil {
		return domain.CartItem{}, err
	}

	for i := range items {
		if items[i].Barcode == item.Barcode {
			items[i].Quantity += item.Quantity
			if err := s.store.Set(ctx, cartKey(userID), items, 0); err != nil {
				return domain.CartItem{}, err
			}
			return items[i], nil
		}
	}

	item.ID = uuid.NewString()
	items = append(items, item)
	if err := s.store.Set(ctx, cartKey(userID), items, 0); err != nil {
		return domain.CartItem{}, err
	}
	return item, nil
}

// Cart returns the consumer's current cart.
func (s *StateService) Cart(ctx context.Context, userID string) ([]domain.CartItem, error) {
	value, err := s.store.Get(ctx, cartKey(userID))
	if errors.Is(err, domain.ErrStoreMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	items, ok := value.([]domain.CartItem)
	if !ok {
		return nil, fmt.Errorf("unexpected cart value for %s", userID)
	}
	return items, nil
}

// RemoveFromCart drops one cart entry by its entry ID.
func (s *StateService) RemoveFromCart(ctx context.Context, userID, itemID string) error {
	items, err := s.Cart(ctx, userID)
	if err != nil {
		return err
	}

	kept := items[:0]
	found := false
	for _, item := range items {
		if item.ID == itemID {
			found = true
			continue
		}
		kept = append(kept, item)
	}
	if !found {
		return domain.ErrStoreMiss
	}
	return s.store.Set(ctx, cartKey(userID), kept, 0)
}

// CheckoutSummary totals a cart against the consumer's weekly budget.
type CheckoutSummary struct {
	Items        []domain.CartItem `json:"items"`
	TotalPrice   float64           `json:"total_price"`
	WeeklyCost   float64           `json:"weekly_cost"`
	WeeklyBudget float64           `json:"weekly_budget,omitempty"`
	WithinBudget bool              `json:"within_budget"`
	AverageScore float64           `json:"average_score"`
}

// Checkout summarizes the cart and clears it. The weekly cost assumes partial
// consumption of each product, matching the budget filter's estimate.
func (s *StateService) Checkout(ctx context.Context, userID string, profile *domain.Profile) (*CheckoutSummary, error) {
	items, err := s.Cart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domain.ErrInvalidRequest
	}

	summary := &CheckoutSummary{Items: items}
	var prices []float64
	var scoreSum float64
	for _, item := range items {
		lineTotal := item.Price * float64(item.Quantity)
		summary.TotalPrice += lineTotal
		for q := 0; q < item.Quantity; q++ {
			prices = append(prices, item.Price)
		}
		scoreSum += item.YumiScore
	}
	summary.TotalPrice = round2(summary.TotalPrice)
	summary.WeeklyCost = s.pricer.EstimateWeeklyCost(prices)
	summary.AverageScore = round1(scoreSum / float64(len(items)))

	if profile != nil && profile.WeeklyBudget > 0 {
		summary.WeeklyBudget = profile.WeeklyBudget
		summary.WithinBudget = summary.WeeklyCost <= profile.WeeklyBudget
	} else {
		summary.WithinBudget = true
	}

	if err := s.store.Delete(ctx, cartKey(userID)); err != nil {
		return nil, err
	}
	return summary, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
