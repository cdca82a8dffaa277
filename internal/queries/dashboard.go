package queries

import (
	"context"
	"time"

	"github.com/codyseavey/pricewatch/web/internal/models"
	"github.com/codyseavey/pricewatch/web/internal/query"
	"github.com/codyseavey/pricewatch/web/internal/services"
)

// DefaultSummaryRefetchInterval is how often the dashboard summary is
// refreshed in the background
const DefaultSummaryRefetchInterval = 60 * time.Second

// Dashboard pairs the dashboard service with the query cache
type Dashboard struct {
	cache    *query.Client
	svc      *services.DashboardService
	interval time.Duration
}

// NewDashboard creates dashboard queries. A non-positive interval uses
// DefaultSummaryRefetchInterval.
func NewDashboard(cache *query.Client, svc *services.DashboardService, interval time.Duration) *Dashboard {
	if interval <= 0 {
		interval = DefaultSummaryRefetchInterval
	}
	return &Dashboard{cache: cache, svc: svc, interval: interval}
}

func (d *Dashboard) summaryOptions() query.Options[*models.DashboardSummary] {
	return query.Options[*models.DashboardSummary]{
		Key: dashboardSummaryKey(),
		Fn:  d.svc.Summary,
	}
}

// Summary returns the aggregate counts
func (d *Dashboard) Summary(ctx context.Context) query.Result[*models.DashboardSummary] {
	return query.Fetch(ctx, d.cache, d.summaryOptions())
}

// PeekSummary reports the cached summary without fetching
func (d *Dashboard) PeekSummary() query.Result[*models.DashboardSummary] {
	return query.Peek(d.cache, d.summaryOptions())
}

// PrefetchSummary warms the summary in the background
func (d *Dashboard) PrefetchSummary(ctx context.Context) {
	query.Prefetch(ctx, d.cache, d.summaryOptions())
}

// StartRefresh refreshes the summary every interval until ctx is done.
// It blocks; run it in its own goroutine.
func (d *Dashboard) StartRefresh(ctx context.Context) {
	query.Poll(ctx, d.cache, d.summaryOptions(), d.interval)
}
