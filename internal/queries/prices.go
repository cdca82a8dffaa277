package queries

import (
	"context"

	"github.com/codyseavey/pricewatch/web/internal/models"
	"github.com/codyseavey/pricewatch/web/internal/query"
	"github.com/codyseavey/pricewatch/web/internal/services"
)

// Prices pairs the price service with the query cache
type Prices struct {
	cache *query.Client
	svc   *services.PriceService
}

// NewPrices creates price queries backed by cache
func NewPrices(cache *query.Client, svc *services.PriceService) *Prices {
	return &Prices{cache: cache, svc: svc}
}

func (p *Prices) historyOptions(productID int64, days int) query.Options[[]models.PriceHistoryItem] {
	return query.Options[[]models.PriceHistoryItem]{
		Key: priceHistoryKey(productID, days),
		Fn: func(ctx context.Context) ([]models.PriceHistoryItem, error) {
			return p.svc.History(ctx, productID, days)
		},
		// No product selected yet
		Enabled: func() bool { return productID > 0 },
	}
}

// History returns a product's daily series; days == 0 is unbounded.
// A product id <= 0 issues no request and yields StatusIdle.
func (p *Prices) History(ctx context.Context, productID int64, days int) query.Result[[]models.PriceHistoryItem] {
	return query.Fetch(ctx, p.cache, p.historyOptions(productID, days))
}

// PeekHistory reports the cached series without fetching
func (p *Prices) PeekHistory(productID int64, days int) query.Result[[]models.PriceHistoryItem] {
	return query.Peek(p.cache, p.historyOptions(productID, days))
}

// PrefetchHistory warms a series in the background
func (p *Prices) PrefetchHistory(ctx context.Context, productID int64, days int) {
	query.Prefetch(ctx, p.cache, p.historyOptions(productID, days))
}

func (p *Prices) latestOptions(productID int64) query.Options[*models.LatestPriceResponse] {
	return query.Options[*models.LatestPriceResponse]{
		Key: latestPricesKey(productID),
		Fn: func(ctx context.Context) (*models.LatestPriceResponse, error) {
			return p.svc.Latest(ctx, productID)
		},
		Enabled: func() bool { return productID > 0 },
	}
}

// Latest returns the current per-shop prices of a product
func (p *Prices) Latest(ctx context.Context, productID int64) query.Result[*models.LatestPriceResponse] {
	return query.Fetch(ctx, p.cache, p.latestOptions(productID))
}

// PeekLatest reports the cached per-shop prices without fetching
func (p *Prices) PeekLatest(productID int64) query.Result[*models.LatestPriceResponse] {
	return query.Peek(p.cache, p.latestOptions(productID))
}

func (p *Prices) statsOptions(productID int64, days int) query.Options[*models.PriceStatsResponse] {
	return query.Options[*models.PriceStatsResponse]{
		Key: priceStatsKey(productID, days),
		Fn: func(ctx context.Context) (*models.PriceStatsResponse, error) {
			return p.svc.Stats(ctx, productID, days)
		},
		Enabled: func() bool { return productID > 0 },
	}
}

// Stats returns aggregate statistics for a product over days
func (p *Prices) Stats(ctx context.Context, productID int64, days int) query.Result[*models.PriceStatsResponse] {
	return query.Fetch(ctx, p.cache, p.statsOptions(productID, days))
}

// PeekStats reports cached statistics without fetching
func (p *Prices) PeekStats(productID int64, days int) query.Result[*models.PriceStatsResponse] {
	return query.Peek(p.cache, p.statsOptions(productID, days))
}

// PrefetchChart warms everything the price chart card shows for a product
func (p *Prices) PrefetchChart(ctx context.Context, productID int64, days int) {
	query.Prefetch(ctx, p.cache, p.historyOptions(productID, days))
	query.Prefetch(ctx, p.cache, p.statsOptions(productID, days))
	query.Prefetch(ctx, p.cache, p.latestOptions(productID))
}

func (p *Prices) recentOptions(limit int) query.Options[[]models.RecentCollection] {
	return query.Options[[]models.RecentCollection]{
		Key: recentCollectionsKey(limit),
		Fn: func(ctx context.Context) ([]models.RecentCollection, error) {
			return p.svc.Recent(ctx, limit)
		},
	}
}

// Recent returns the recent collection feed
func (p *Prices) Recent(ctx context.Context, limit int) query.Result[[]models.RecentCollection] {
	return query.Fetch(ctx, p.cache, p.recentOptions(limit))
}

// PeekRecent reports the cached feed without fetching
func (p *Prices) PeekRecent(limit int) query.Result[[]models.RecentCollection] {
	return query.Peek(p.cache, p.recentOptions(limit))
}

// PrefetchRecent warms the feed in the background
func (p *Prices) PrefetchRecent(ctx context.Context, limit int) {
	query.Prefetch(ctx, p.cache, p.recentOptions(limit))
}
