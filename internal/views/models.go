package views

import (
	"net/url"
	"strconv"
	"time"

	"github.com/codyseavey/pricewatch/web/internal/charts"
	"github.com/codyseavey/pricewatch/web/internal/format"
	"github.com/codyseavey/pricewatch/web/internal/models"
)

// Theme is the color scheme stored in the theme cookie
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ThemeCookie is the name of the cookie holding the theme
const ThemeCookie = "theme"

// ParseTheme returns the theme for s, defaulting to light
func ParseTheme(s string) Theme {
	if s == string(ThemeDark) {
		return ThemeDark
	}
	return ThemeLight
}

// Toggle returns the other theme
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

const (
	NavDashboard = "dashboard"
	NavProducts  = "products"
)

// Page is the data every full page shares with the layout
type Page struct {
	Title string
	Nav   string
	Theme Theme
	Toast *Toast
	// Path is where the theme toggle returns to
	Path string
}

// StatCard is one dashboard summary tile
type StatCard struct {
	Title string
	Value string
	Icon  string
	Color string
}

// StatsView is the row of summary tiles
type StatsView struct {
	Loading bool
	URL     string
	Cards   []StatCard
}

// NewStats builds the summary tiles. A nil summary shows "-" placeholders.
func NewStats(s *models.DashboardSummary) StatsView {
	value := func(f func(*models.DashboardSummary) string) string {
		if s == nil {
			return "-"
		}
		return f(s)
	}

	return StatsView{
		URL: "/fragments/summary",
		Cards: []StatCard{
			{
				Title: "모니터링 중",
				Value: value(func(s *models.DashboardSummary) string { return format.Number(int64(s.TotalProducts)) }),
				Icon:  "package",
				Color: "purple",
			},
			{
				Title: "최저가 알림",
				Value: value(func(s *models.DashboardSummary) string { return format.Number(int64(s.GoalReachedCount)) }),
				Icon:  "bell",
				Color: "success",
			},
			{
				Title: "오늘 수집",
				Value: value(func(s *models.DashboardSummary) string { return format.Number(int64(s.TodayCollectedCount)) }),
				Icon:  "database",
				Color: "info",
			},
			{
				Title: "평균 절감율",
				Value: value(func(s *models.DashboardSummary) string { return format.Percent(s.AvgSavingRate) }),
				Icon:  "trending-down",
				Color: "warning",
			},
		},
	}
}

// LoadingStats is the placeholder row that loads itself from the fragment
func LoadingStats() StatsView {
	v := NewStats(nil)
	v.Loading = true
	return v
}

// ProductOption is an entry of the chart's product selector
type ProductOption struct {
	ID       int64
	Keyword  string
	Selected bool
}

// PeriodOption is a chart period button
type PeriodOption struct {
	Label  string
	Period models.Period
	Active bool
	URL    string
}

// ChartView is the price trend card body
type ChartView struct {
	Loading   bool
	URL       string
	ProductID int64
	Period    models.Period
	Products  []ProductOption
	Periods   []PeriodOption
	Chart     charts.Chart
	Stats     *models.PriceStatsResponse
	Latest    *models.LatestPriceResponse
}

// ChartURL returns the fragment URL of the chart for a product and period
func ChartURL(productID int64, period models.Period) string {
	q := url.Values{}
	q.Set("period", string(period))
	if productID > 0 {
		q.Set("product", strconv.FormatInt(productID, 10))
	}
	return "/fragments/price-chart?" + q.Encode()
}

// SelectProduct picks the requested product when it is in the list and
// otherwise the first one. It returns 0 for an empty list.
func SelectProduct(products []models.Product, requested int64) int64 {
	for _, p := range products {
		if p.ID == requested {
			return p.ID
		}
	}
	if len(products) > 0 {
		return products[0].ID
	}
	return 0
}

// NewChartView lays out the selector and period buttons. Chart data is
// filled in by the caller once the history is available.
func NewChartView(products []models.Product, productID int64, period models.Period) ChartView {
	v := ChartView{
		URL:       ChartURL(productID, period),
		ProductID: productID,
		Period:    period,
		Chart:     charts.Line(nil),
	}
	for _, p := range products {
		v.Products = append(v.Products, ProductOption{ID: p.ID, Keyword: p.Keyword, Selected: p.ID == productID})
	}
	for _, p := range models.AllPeriods() {
		v.Periods = append(v.Periods, PeriodOption{
			Label:  p.Label(),
			Period: p,
			Active: p == period,
			URL:    ChartURL(productID, p),
		})
	}
	return v
}

// AlertsView lists the products whose target price was reached
type AlertsView struct {
	Loading  bool
	URL      string
	Products []models.Product
}

// NewAlerts keeps the goal-reached products as the backend reports them
func NewAlerts(products []models.Product) AlertsView {
	return AlertsView{
		URL:      "/fragments/alerts",
		Products: models.FilterByStatus(products, models.StatusGoalReached),
	}
}

// RecentRow is one line of the recent collections table
type RecentRow struct {
	ID          int64
	ProductName string
	Shop        string
	Price       string
	Change      format.Change
	CollectedAt string
}

// RecentView is the recent collections table
type RecentView struct {
	Loading bool
	URL     string
	Rows    []RecentRow
}

// NewRecent formats the feed in server order
func NewRecent(items []models.RecentCollection, now time.Time, loc *time.Location) RecentView {
	v := RecentView{URL: "/fragments/recent"}
	for _, it := range items {
		v.Rows = append(v.Rows, RecentRow{
			ID:          it.ID,
			ProductName: it.ProductName,
			Shop:        it.Shop,
			Price:       format.Currency(it.Price),
			Change:      format.PriceChange(it.Price, it.PreviousPrice),
			CollectedAt: format.RelativeTime(now, it.CollectedAt.Time, loc),
		})
	}
	return v
}

// DashboardPage is the data of the dashboard
type DashboardPage struct {
	Page
	Stats  StatsView
	Chart  ChartView
	Alerts AlertsView
	Recent RecentView
}

// SparklineView is a product card's seven day trend
type SparklineView struct {
	Loading bool
	URL     string
	Chart   charts.Chart
}

// SparklineURL returns the fragment URL of a product's sparkline
func SparklineURL(productID int64) string {
	return "/fragments/products/" + strconv.FormatInt(productID, 10) + "/sparkline"
}

// NewSparkline lays out a loaded series
func NewSparkline(productID int64, items []models.PriceHistoryItem) SparklineView {
	return SparklineView{URL: SparklineURL(productID), Chart: charts.Sparkline(items)}
}

// LoadingSparkline is the skeleton that loads itself from the fragment
func LoadingSparkline(productID int64) SparklineView {
	return SparklineView{Loading: true, URL: SparklineURL(productID)}
}

// ProductCard is one product in the grid
type ProductCard struct {
	models.Product
	Created   string
	Sparkline SparklineView
	EditURL   string
	DeleteURL string
}

// Filter is the product list's search and status selection
type Filter struct {
	Search string
	Status string
}

// URL returns the products page URL for the filter with extra parameters
// given as name, value pairs.
func (f Filter) URL(extra ...string) string {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	for i := 0; i+1 < len(extra); i += 2 {
		q.Set(extra[i], extra[i+1])
	}
	if len(q) == 0 {
		return "/products"
	}
	return "/products?" + q.Encode()
}

// FragmentURL returns the product grid fragment URL for the filter
func (f Filter) FragmentURL() string {
	q := url.Values{}
	q.Set("search", f.Search)
	q.Set("status", f.Status)
	return "/fragments/products?" + q.Encode()
}

// StatusOption is a status filter chip
type StatusOption struct {
	Label  string
	Active bool
	URL    string
}

// StatusOptions returns the filter chips, "전체" first
func (f Filter) StatusOptions() []StatusOption {
	all := Filter{Search: f.Search}
	opts := []StatusOption{{Label: "전체", Active: f.Status == "", URL: all.URL()}}
	for _, s := range models.AllProductStatuses() {
		sf := Filter{Search: f.Search, Status: string(s)}
		opts = append(opts, StatusOption{Label: s.Label(), Active: f.Status == string(s), URL: sf.URL()})
	}
	return opts
}

// GridView is the product card grid
type GridView struct {
	Loading bool
	URL     string
	Filter  Filter
	Cards   []ProductCard
}

// EmptyTitle is the headline shown when the grid has no cards
func (g GridView) EmptyTitle() string {
	if g.Filter.Search != "" {
		return "검색 결과가 없습니다"
	}
	return "모니터링할 상품을 등록해보세요"
}

// EmptyHint is the line under EmptyTitle
func (g GridView) EmptyHint() string {
	if g.Filter.Search != "" {
		return "다른 키워드로 검색해보세요"
	}
	return "키워드를 추가하여 가격 모니터링을 시작하세요"
}

// SparklineSource reports the cached seven day series of a product and
// whether it can be shown without a request.
type SparklineSource func(productID int64) ([]models.PriceHistoryItem, bool)

// NewGrid builds the product cards. Sparklines with fresh cached data are
// drawn inline; the rest load from their fragment.
func NewGrid(products []models.Product, filter Filter, sparkline SparklineSource, now time.Time, loc *time.Location) GridView {
	g := GridView{URL: filter.FragmentURL(), Filter: filter}
	for _, p := range products {
		card := ProductCard{
			Product:   p,
			Created:   format.RelativeTime(now, p.CreatedAt.Time, loc),
			Sparkline: LoadingSparkline(p.ID),
			EditURL:   filter.URL("edit", strconv.FormatInt(p.ID, 10)),
			DeleteURL: filter.URL("delete", strconv.FormatInt(p.ID, 10)),
		}
		if sparkline != nil {
			if items, ok := sparkline(p.ID); ok {
				card.Sparkline = NewSparkline(p.ID, items)
			}
		}
		g.Cards = append(g.Cards, card)
	}
	return g
}

// DialogView is an edit or delete dialog for one product
type DialogView struct {
	Product models.Product
	Filter  Filter
}

// ProductsPage is the data of the keyword management page
type ProductsPage struct {
	Page
	Filter Filter
	Grid   GridView

	AddOpen bool
	Edit    *DialogView
	Delete  *DialogView
}

// LoadingAlerts is the alerts placeholder that loads itself from the fragment
func LoadingAlerts() AlertsView {
	return AlertsView{Loading: true, URL: "/fragments/alerts"}
}

// LoadingRecent is the recent collections placeholder
func LoadingRecent() RecentView {
	return RecentView{Loading: true, URL: "/fragments/recent"}
}

// LoadingChart is the chart placeholder for a product and period
func LoadingChart(productID int64, period models.Period) ChartView {
	return ChartView{Loading: true, URL: ChartURL(productID, period), ProductID: productID, Period: period}
}

// LoadingGrid is the product grid placeholder for a filter
func LoadingGrid(filter Filter) GridView {
	return GridView{Loading: true, URL: filter.FragmentURL(), Filter: filter}
}
