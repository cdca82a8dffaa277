package services

import (
	"context"
	"net/http"

	"github.com/codyseavey/pricewatch/web/internal/models"
)

// DashboardService wraps the /dashboard endpoints
type DashboardService struct {
	api Requester
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(api Requester) *DashboardService {
	return &DashboardService{api: api}
}

// Summary returns the aggregate counts shown on the dashboard
func (s *DashboardService) Summary(ctx context.Context) (*models.DashboardSummary, error) {
	var summary models.DashboardSummary
	if err := s.api.Do(ctx, http.MethodGet, "/dashboard/summary", nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}
