package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/codyseavey/pricewatch/web/internal/client"
	"github.com/codyseavey/pricewatch/web/internal/logger"
	"github.com/codyseavey/pricewatch/web/internal/models"
	"github.com/codyseavey/pricewatch/web/internal/queries"
	"github.com/codyseavey/pricewatch/web/internal/query"
	"github.com/codyseavey/pricewatch/web/internal/views"
)

// sparklineDays is the window of the product card trend
const sparklineDays = 7

type ProductHandler struct {
	products *queries.Products
	prices   *queries.Prices
	display  Display
}

func NewProductHandler(products *queries.Products, prices *queries.Prices, display Display) *ProductHandler {
	return &ProductHandler{
		products: products,
		prices:   prices,
		display:  display,
	}
}

// filterFrom reads search and status through get, which is c.Query for
// pages and c.PostForm for form posts. Unknown statuses are dropped.
func filterFrom(get func(string) string) views.Filter {
	status := get("status")
	if _, ok := models.ParseProductStatus(status); !ok {
		status = ""
	}
	return views.Filter{Search: strings.TrimSpace(get("search")), Status: status}
}

func (h *ProductHandler) Page(c *gin.Context) {
	ctx := c.Request.Context()
	filter := filterFrom(c.Query)
	editID := parseID(c.Query("edit"))
	deleteID := parseID(c.Query("delete"))

	page := views.ProductsPage{
		Page:    newPage(c, "키워드 관리", views.NavProducts),
		Filter:  filter,
		AddOpen: c.Query("add") != "",
	}

	// A dialog needs its product, so the list is awaited instead of peeked.
	var (
		list   query.Result[[]models.Product]
		inline bool
	)
	if editID > 0 || deleteID > 0 {
		list = h.products.List(ctx, filter.Search, filter.Status)
		readFailed(c, "products", list.Err)
		inline = true
	} else {
		list = h.products.PeekList(filter.Search, filter.Status)
		inline = list.IsFresh()
	}

	if inline {
		page.Grid = h.grid(c, list.Data, filter)
		if p := findProduct(list.Data, editID); p != nil {
			page.Edit = &views.DialogView{Product: *p, Filter: filter}
		}
		if p := findProduct(list.Data, deleteID); p != nil {
			page.Delete = &views.DialogView{Product: *p, Filter: filter}
		}
	} else {
		page.Grid = views.LoadingGrid(filter)
		h.products.PrefetchList(ctx, filter.Search, filter.Status)
	}

	c.HTML(http.StatusOK, "products", page)
}

// grid builds the cards and starts loading sparklines that are not cached
func (h *ProductHandler) grid(c *gin.Context, products []models.Product, filter views.Filter) views.GridView {
	g := views.NewGrid(products, filter, h.cachedSparkline, h.display.now(), h.display.location())
	for _, card := range g.Cards {
		if card.Sparkline.Loading {
			h.prices.PrefetchHistory(c.Request.Context(), card.ID, sparklineDays)
		}
	}
	return g
}

func (h *ProductHandler) cachedSparkline(productID int64) ([]models.PriceHistoryItem, bool) {
	r := h.prices.PeekHistory(productID, sparklineDays)
	return r.Data, r.IsFresh()
}

func findProduct(products []models.Product, id int64) *models.Product {
	if id <= 0 {
		return nil
	}
	for i := range products {
		if products[i].ID == id {
			return &products[i]
		}
	}
	return nil
}

func (h *ProductHandler) GridFragment(c *gin.Context) {
	filter := filterFrom(c.Query)

	list := h.products.List(c.Request.Context(), filter.Search, filter.Status)
	readFailed(c, "products", list.Err)

	renderFragment(c, "product_grid", h.grid(c, list.Data, filter))
}

func (h *ProductHandler) SparklineFragment(c *gin.Context) {
	id := parseID(c.Param("id"))

	r := h.prices.History(c.Request.Context(), id, sparklineDays)
	readFailed(c, "price history", r.Err)

	renderFragment(c, "sparkline", views.NewSparkline(id, r.Data))
}

func (h *ProductHandler) Create(c *gin.Context) {
	log := logger.FromGin(c)
	filter := filterFrom(c.PostForm)

	keyword := strings.TrimSpace(c.PostForm("keyword"))
	if keyword == "" {
		redirect(c, filter.URL("add", "1", "notice", views.NoticeKeywordRequired))
		return
	}

	target, err := parsePrice(c.PostForm("target_price"))
	if err != nil {
		log.Warn("invalid target price", zap.String("target_price", c.PostForm("target_price")), zap.Error(err))
		redirect(c, filter.URL("notice", views.NoticeCreateFailed))
		return
	}

	req := models.ProductCreateRequest{Keyword: keyword, TargetPrice: target}
	if memo := strings.TrimSpace(c.PostForm("memo")); memo != "" {
		req.Memo = &memo
	}

	product, err := h.products.Create(c.Request.Context(), req)
	switch {
	case err == nil:
		log.Info("product created", zap.Int64("product_id", product.ID), zap.String("keyword", product.Keyword))
		redirect(c, filter.URL("notice", views.NoticeCreated))
	case client.IsConflict(err):
		redirect(c, filter.URL("notice", views.NoticeDuplicate))
	default:
		log.Error("failed to create product", zap.String("keyword", keyword), zap.Error(err))
		redirect(c, filter.URL("notice", views.NoticeCreateFailed))
	}
}

func (h *ProductHandler) Update(c *gin.Context) {
	log := logger.FromGin(c)
	filter := filterFrom(c.PostForm)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		redirect(c, filter.URL("notice", views.NoticeUpdateFailed))
		return
	}

	target, err := parsePrice(c.PostForm("target_price"))
	if err != nil {
		log.Warn("invalid target price", zap.String("target_price", c.PostForm("target_price")), zap.Error(err))
		redirect(c, filter.URL("notice", views.NoticeUpdateFailed))
		return
	}

	// Cleared fields are sent as null so the backend clears them too.
	req := models.ProductUpdateRequest{
		TargetPrice: models.OptionalFromPtr(target),
		Memo:        models.Null[string](),
	}
	if memo := strings.TrimSpace(c.PostForm("memo")); memo != "" {
		req.Memo = models.Some(memo)
	}
	// The form posts a hidden "false" ahead of the checkbox; the last value wins.
	if values := c.PostFormArray("is_active"); len(values) > 0 {
		req.IsActive = models.Some(values[len(values)-1] == "true")
	}

	if _, err := h.products.Update(c.Request.Context(), id, req); err != nil {
		log.Error("failed to update product", zap.Int64("product_id", id), zap.Error(err))
		redirect(c, filter.URL("notice", views.NoticeUpdateFailed))
		return
	}
	redirect(c, filter.URL("notice", views.NoticeUpdated))
}

func (h *ProductHandler) Delete(c *gin.Context) {
	log := logger.FromGin(c)
	filter := filterFrom(c.PostForm)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		redirect(c, filter.URL("notice", views.NoticeDeleteFailed))
		return
	}

	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		log.Error("failed to delete product", zap.Int64("product_id", id), zap.Error(err))
		redirect(c, filter.URL("notice", views.NoticeDeleteFailed))
		return
	}
	log.Info("product deleted", zap.Int64("product_id", id))
	redirect(c, filter.URL("notice", views.NoticeDeleted))
}
