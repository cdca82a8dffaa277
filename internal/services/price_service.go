package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/codyseavey/pricewatch/web/internal/models"
)

const (
	// DefaultHistoryDays is the API's own default window
	DefaultHistoryDays = 30
	// DefaultRecentLimit is the default size of the recent collection feed
	DefaultRecentLimit = 10
)

// PriceService wraps the /prices endpoints
type PriceService struct {
	api Requester
}

// NewPriceService creates a new price service
func NewPriceService(api Requester) *PriceService {
	return &PriceService{api: api}
}

// History returns the daily price series for a product over the last days
// days, oldest first. days == 0 requests the whole history.
func (s *PriceService) History(ctx context.Context, productID int64, days int) ([]models.PriceHistoryItem, error) {
	var items []models.PriceHistoryItem
	path := fmt.Sprintf("/prices/%d?days=%d", productID, days)
	if err := s.api.Do(ctx, http.MethodGet, path, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Latest returns the current lowest price and the per-shop breakdown
func (s *PriceService) Latest(ctx context.Context, productID int64) (*models.LatestPriceResponse, error) {
	var latest models.LatestPriceResponse
	if err := s.api.Do(ctx, http.MethodGet, fmt.Sprintf("/prices/%d/latest", productID), nil, &latest); err != nil {
		return nil, err
	}
	return &latest, nil
}

// Stats returns aggregate price statistics over a window (0 = all time)
func (s *PriceService) Stats(ctx context.Context, productID int64, days int) (*models.PriceStatsResponse, error) {
	var stats models.PriceStatsResponse
	path := fmt.Sprintf("/prices/%d/stats?days=%d", productID, days)
	if err := s.api.Do(ctx, http.MethodGet, path, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Recent returns the latest collections across all products, newest first
func (s *PriceService) Recent(ctx context.Context, limit int) ([]models.RecentCollection, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	var items []models.RecentCollection
	if err := s.api.Do(ctx, http.MethodGet, fmt.Sprintf("/prices/recent?limit=%d", limit), nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}
