package models

// PriceHistoryItem is one day of a product's price series. The API returns
// items in ascending date order with at most one item per date.
type PriceHistoryItem struct {
	Date           Timestamp `json:"date"`
	MinPrice       int64     `json:"min_price"`
	MaxPrice       int64     `json:"max_price"`
	Shop           *string   `json:"shop"`
	URL            *string   `json:"url"`
	CollectedCount int       `json:"collected_count"`
}

// ShopPrice is the latest price a single shop reported
type ShopPrice struct {
	ShopName string  `json:"shop_name"`
	Price    int64   `json:"price"`
	URL      *string `json:"url"`
}

// LatestPriceResponse is the lowest current price across shops
type LatestPriceResponse struct {
	ProductID   int64       `json:"product_id"`
	Keyword     string      `json:"keyword"`
	MinPrice    *int64      `json:"min_price"`
	Shop        *string     `json:"shop"`
	URL         *string     `json:"url"`
	CollectedAt *Timestamp  `json:"collected_at"`
	Shops       []ShopPrice `json:"shops"`
}

// PriceStatsResponse aggregates a product's prices over a window
type PriceStatsResponse struct {
	ProductID           int64   `json:"product_id"`
	PeriodDays          int     `json:"period_days"`
	MinPrice            int64   `json:"min_price"`
	MaxPrice            int64   `json:"max_price"`
	AvgPrice            int64   `json:"avg_price"`
	CurrentPrice        int64   `json:"current_price"`
	PriceAtStart        int64   `json:"price_at_start"`
	ChangeFromStart     int64   `json:"change_from_start"`
	ChangeRateFromStart float64 `json:"change_rate_from_start"`
	LowestShop          string  `json:"lowest_shop"`
	DataCount           int     `json:"data_count"`
}

// RecentCollection is a single price observation in the recent feed,
// most recent first.
type RecentCollection struct {
	ID            int64     `json:"id"`
	ProductName   string    `json:"product_name"`
	Shop          string    `json:"shop"`
	Price         int64     `json:"price"`
	PreviousPrice int64     `json:"previous_price"`
	CollectedAt   Timestamp `json:"collected_at"`
}

// Period is a price chart window choice
type Period string

const (
	Period7   Period = "7"
	Period30  Period = "30"
	Period90  Period = "90"
	PeriodAll Period = "all"
)

// AllPeriods returns the chart periods in display order
func AllPeriods() []Period {
	return []Period{Period7, Period30, Period90, PeriodAll}
}

// ParsePeriod maps s to a period, defaulting to seven days
func ParsePeriod(s string) Period {
	for _, p := range AllPeriods() {
		if string(p) == s {
			return p
		}
	}
	return Period7
}

// Days returns the history window in days; 0 means unbounded
func (p Period) Days() int {
	switch p {
	case Period30:
		return 30
	case Period90:
		return 90
	case PeriodAll:
		return 0
	default:
		return 7
	}
}

// Label returns the filter button text
func (p Period) Label() string {
	if p == PeriodAll {
		return "전체"
	}
	return string(p) + "일"
}
