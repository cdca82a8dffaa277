package models

// DashboardSummary is the aggregate snapshot shown at the top of the dashboard
type DashboardSummary struct {
	TotalProducts       int     `json:"total_products"`
	GoalReachedCount    int     `json:"goal_reached_count"`
	TodayCollectedCount int     `json:"today_collected_count"`
	AvgSavingRate       float64 `json:"avg_saving_rate"`
}

// ErrorResponse is the error body contract of the price API
type ErrorResponse struct {
	Detail    string `json:"detail"`
	ErrorCode string `json:"error_code"`
}
