// Package apitest provides an in-memory stand-in for the price API used by
// tests that exercise the full client → cache → view path.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/codyseavey/pricewatch/web/internal/models"
)

// Server is a fake price API backed by in-memory state
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	nextID   int64
	products []models.Product
	history  map[int64][]models.PriceHistoryItem
	recent   []models.RecentCollection
	summary  models.DashboardSummary
	requests []string
	fail     map[string]int
}

// New starts a fake API server. Call Close when done.
func New() *Server {
	s := &Server{
		nextID:  1,
		history: make(map[int64][]models.PriceHistoryItem),
		fail:    make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// AddProduct seeds a product and returns it with its assigned id
func (s *Server) AddProduct(p models.Product) models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.nextID
	s.nextID++
	if p.Status == "" {
		p.Status = models.StatusNoTarget
	}
	p.IsActive = true
	s.products = append(s.products, p)
	return p
}

// SetHistory seeds the price series of a product
func (s *Server) SetHistory(productID int64, items []models.PriceHistoryItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history[productID] = items
}

// SetRecent seeds the recent collection feed
func (s *Server) SetRecent(items []models.RecentCollection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recent = items
}

// SetSummary seeds the dashboard summary
func (s *Server) SetSummary(summary models.DashboardSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary = summary
}

// FailNext makes the next n requests whose "METHOD path" starts with
// prefix answer 500
func (s *Server) FailNext(prefix string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[prefix] = n
}

// Requests returns every request seen as "METHOD /path?query"
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// Count returns how many requests started with prefix
func (s *Server) Count(prefix string) int {
	n := 0
	for _, r := range s.Requests() {
		if strings.HasPrefix(r, prefix) {
			n++
		}
	}
	return n
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	line := r.Method + " " + r.URL.RequestURI()

	s.mu.Lock()
	s.requests = append(s.requests, line)
	for prefix, n := range s.fail {
		if n > 0 && strings.HasPrefix(line, prefix) {
			s.fail[prefix] = n - 1
			s.mu.Unlock()
			writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL")
			return
		}
	}
	s.mu.Unlock()

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case parts[0] == "products" && len(parts) == 1 && r.Method == http.MethodGet:
		s.listProducts(w, r)
	case parts[0] == "products" && len(parts) == 1 && r.Method == http.MethodPost:
		s.createProduct(w, r)
	case parts[0] == "products" && len(parts) == 2 && r.Method == http.MethodPut:
		s.updateProduct(w, r, parts[1])
	case parts[0] == "products" && len(parts) == 2 && r.Method == http.MethodDelete:
		s.deleteProduct(w, parts[1])
	case parts[0] == "prices" && len(parts) == 2 && parts[1] == "recent":
		s.mu.Lock()
		items := s.recent
		s.mu.Unlock()
		if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit < len(items) {
			items = items[:limit]
		}
		writeJSON(w, http.StatusOK, nonNil(items))
	case parts[0] == "prices" && len(parts) == 2:
		s.priceHistory(w, r, parts[1])
	case parts[0] == "prices" && len(parts) == 3 && parts[2] == "latest":
		s.latest(w, parts[1])
	case parts[0] == "prices" && len(parts) == 3 && parts[2] == "stats":
		s.stats(w, r, parts[1])
	case parts[0] == "dashboard" && len(parts) == 2 && parts[1] == "summary":
		s.mu.Lock()
		summary := s.summary
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, summary)
	default:
		writeError(w, http.StatusNotFound, "Not Found", "NOT_FOUND")
	}
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	status := r.URL.Query().Get("status")

	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Product{}
	for _, p := range s.products {
		if search != "" && !strings.Contains(p.Keyword, search) {
			continue
		}
		if status != "" && string(p.Status) != status {
			continue
		}
		out = append(out, p)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var req models.ProductCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Keyword) == "" {
		writeError(w, http.StatusUnprocessableEntity, "keyword is required", "VALIDATION_ERROR")
		return
	}

	s.mu.Lock()
	for _, p := range s.products {
		if p.Keyword == req.Keyword {
			s.mu.Unlock()
			writeError(w, http.StatusConflict, "이미 등록된 키워드입니다", "DUPLICATE_KEYWORD")
			return
		}
	}
	s.mu.Unlock()

	now := models.Timestamp{Time: time.Now().UTC()}
	p := s.AddProduct(models.Product{
		Keyword:     req.Keyword,
		TargetPrice: req.TargetPrice,
		Memo:        req.Memo,
		Status:      statusFor(req.TargetPrice, nil),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request, rawID string) {
	id, _ := strconv.ParseInt(rawID, 10, 64)

	var req models.ProductUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error(), "VALIDATION_ERROR")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		p := &s.products[i]
		if p.ID != id {
			continue
		}
		if req.TargetPrice.Set {
			p.TargetPrice = req.TargetPrice.Value
		}
		if req.Memo.Set {
			p.Memo = req.Memo.Value
		}
		if req.IsActive.Set && req.IsActive.Value != nil {
			p.IsActive = *req.IsActive.Value
		}
		p.Status = statusFor(p.TargetPrice, p.LatestPrice)
		writeJSON(w, http.StatusOK, p)
		return
	}
	writeError(w, http.StatusNotFound, "Product not found", "PRODUCT_NOT_FOUND")
}

func (s *Server) deleteProduct(w http.ResponseWriter, rawID string) {
	id, _ := strconv.ParseInt(rawID, 10, 64)

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.products {
		if p.ID == id {
			s.products = append(s.products[:i], s.products[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Product not found", "PRODUCT_NOT_FOUND")
}

func (s *Server) priceHistory(w http.ResponseWriter, r *http.Request, rawID string) {
	id, _ := strconv.ParseInt(rawID, 10, 64)
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))

	s.mu.Lock()
	items := s.history[id]
	s.mu.Unlock()

	if days > 0 && len(items) > days {
		items = items[len(items)-days:]
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

func (s *Server) latest(w http.ResponseWriter, rawID string) {
	id, _ := strconv.ParseInt(rawID, 10, 64)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ID != id {
			continue
		}
		resp := models.LatestPriceResponse{ProductID: p.ID, Keyword: p.Keyword, Shops: []models.ShopPrice{}}
		if p.LatestPrice != nil {
			resp.MinPrice = p.LatestPrice
			resp.Shop = p.LatestShop
			resp.URL = p.LatestURL
			resp.CollectedAt = p.LatestCollectedAt
			shop := ""
			if p.LatestShop != nil {
				shop = *p.LatestShop
			}
			resp.Shops = append(resp.Shops, models.ShopPrice{ShopName: shop, Price: *p.LatestPrice, URL: p.LatestURL})
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}
	writeError(w, http.StatusNotFound, "Product not found", "PRODUCT_NOT_FOUND")
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request, rawID string) {
	id, _ := strconv.ParseInt(rawID, 10, 64)
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))

	s.mu.Lock()
	items := s.history[id]
	s.mu.Unlock()

	if days > 0 && len(items) > days {
		items = items[len(items)-days:]
	}
	resp := models.PriceStatsResponse{ProductID: id, PeriodDays: days, DataCount: len(items)}
	if len(items) > 0 {
		prices := make([]int64, len(items))
		var sum int64
		for i, it := range items {
			prices[i] = it.MinPrice
			sum += it.MinPrice
		}
		resp.CurrentPrice = prices[len(prices)-1]
		resp.PriceAtStart = prices[0]
		resp.ChangeFromStart = resp.CurrentPrice - resp.PriceAtStart
		if resp.PriceAtStart != 0 {
			resp.ChangeRateFromStart = float64(resp.ChangeFromStart) / float64(resp.PriceAtStart) * 100
		}
		resp.AvgPrice = sum / int64(len(prices))
		sort.Slice(prices, func(i, j int) bool { return prices[i] < prices[j] })
		resp.MinPrice = prices[0]
		resp.MaxPrice = prices[len(prices)-1]
	}
	writeJSON(w, http.StatusOK, resp)
}

func statusFor(target, latest *int64) models.ProductStatus {
	switch {
	case target == nil:
		return models.StatusNoTarget
	case latest != nil && *latest <= *target:
		return models.StatusGoalReached
	default:
		return models.StatusMonitoring
	}
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail, code string) {
	writeJSON(w, status, models.ErrorResponse{Detail: detail, ErrorCode: code})
}
