package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/codyseavey/pricewatch/web/internal/charts"
	"github.com/codyseavey/pricewatch/web/internal/models"
	"github.com/codyseavey/pricewatch/web/internal/queries"
	"github.com/codyseavey/pricewatch/web/internal/query"
	"github.com/codyseavey/pricewatch/web/internal/views"
)

type DashboardHandler struct {
	products  *queries.Products
	prices    *queries.Prices
	dashboard *queries.Dashboard
	display   Display
}

func NewDashboardHandler(products *queries.Products, prices *queries.Prices, dashboard *queries.Dashboard, display Display) *DashboardHandler {
	return &DashboardHandler{
		products:  products,
		prices:    prices,
		dashboard: dashboard,
		display:   display,
	}
}

// Page renders cached widgets inline and leaves the rest as skeletons that
// load their fragment. Skeleton data is prefetched so the fragment request
// usually finds it ready.
func (h *DashboardHandler) Page(c *gin.Context) {
	ctx := c.Request.Context()
	requested := parseID(c.Query("product"))
	period := models.ParsePeriod(c.Query("period"))

	page := views.DashboardPage{Page: newPage(c, "대시보드", views.NavDashboard)}

	if summary := h.dashboard.PeekSummary(); summary.IsFresh() {
		page.Stats = views.NewStats(summary.Data)
	} else {
		page.Stats = views.LoadingStats()
		h.dashboard.PrefetchSummary(ctx)
	}

	if list := h.products.PeekList("", ""); list.IsFresh() {
		page.Alerts = views.NewAlerts(list.Data)
		page.Chart = h.cachedChart(ctx, list.Data, requested, period)
	} else {
		page.Alerts = views.LoadingAlerts()
		page.Chart = views.LoadingChart(requested, period)
		h.products.PrefetchList(ctx, "", "")
	}

	if recent := h.prices.PeekRecent(h.display.RecentLimit); recent.IsFresh() {
		page.Recent = views.NewRecent(recent.Data, h.display.now(), h.display.location())
	} else {
		page.Recent = views.LoadingRecent()
		h.prices.PrefetchRecent(ctx, h.display.RecentLimit)
	}

	c.HTML(http.StatusOK, "dashboard", page)
}

func (h *DashboardHandler) cachedChart(ctx context.Context, products []models.Product, requested int64, period models.Period) views.ChartView {
	selected := views.SelectProduct(products, requested)
	v := views.NewChartView(products, selected, period)
	if selected == 0 {
		return v
	}

	days := period.Days()
	history := h.prices.PeekHistory(selected, days)
	stats := h.prices.PeekStats(selected, days)
	latest := h.prices.PeekLatest(selected)
	if !history.IsFresh() || !stats.IsFresh() || !latest.IsFresh() {
		h.prices.PrefetchChart(ctx, selected, days)
		return views.LoadingChart(selected, period)
	}

	fillChart(&v, history, stats, latest)
	return v
}

func fillChart(v *views.ChartView, history query.Result[[]models.PriceHistoryItem], stats query.Result[*models.PriceStatsResponse], latest query.Result[*models.LatestPriceResponse]) {
	v.Chart = charts.Line(history.Data)
	v.Stats = stats.Data
	v.Latest = latest.Data
}

func (h *DashboardHandler) SummaryFragment(c *gin.Context) {
	r := h.dashboard.Summary(c.Request.Context())
	readFailed(c, "dashboard summary", r.Err)

	summary := r.Data
	if !r.HasData || summary == nil {
		summary = &models.DashboardSummary{}
	}
	renderFragment(c, "stats", views.NewStats(summary))
}

func (h *DashboardHandler) PriceChartFragment(c *gin.Context) {
	ctx := c.Request.Context()
	requested := parseID(c.Query("product"))
	period := models.ParsePeriod(c.Query("period"))

	list := h.products.List(ctx, "", "")
	readFailed(c, "products", list.Err)

	selected := views.SelectProduct(list.Data, requested)
	v := views.NewChartView(list.Data, selected, period)
	if selected > 0 {
		days := period.Days()

		var (
			g       errgroup.Group
			history query.Result[[]models.PriceHistoryItem]
			stats   query.Result[*models.PriceStatsResponse]
			latest  query.Result[*models.LatestPriceResponse]
		)
		g.Go(func() error {
			history = h.prices.History(ctx, selected, days)
			return nil
		})
		g.Go(func() error {
			stats = h.prices.Stats(ctx, selected, days)
			return nil
		})
		g.Go(func() error {
			latest = h.prices.Latest(ctx, selected)
			return nil
		})
		_ = g.Wait()

		readFailed(c, "price history", history.Err)
		readFailed(c, "price stats", stats.Err)
		readFailed(c, "latest prices", latest.Err)
		fillChart(&v, history, stats, latest)
	}

	renderFragment(c, "price_chart", v)
}

func (h *DashboardHandler) AlertsFragment(c *gin.Context) {
	list := h.products.List(c.Request.Context(), "", "")
	readFailed(c, "products", list.Err)

	renderFragment(c, "alerts", views.NewAlerts(list.Data))
}

func (h *DashboardHandler) RecentFragment(c *gin.Context) {
	r := h.prices.Recent(c.Request.Context(), h.display.RecentLimit)
	readFailed(c, "recent collections", r.Err)

	renderFragment(c, "recent", views.NewRecent(r.Data, h.display.now(), h.display.location()))
}
