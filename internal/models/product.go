package models

// ProductStatus is the backend-computed monitoring state of a product.
// The UI displays it as-is and never derives it from prices.
type ProductStatus string

const (
	StatusGoalReached ProductStatus = "goal_reached" // latest price <= target price
	StatusMonitoring  ProductStatus = "monitoring"   // target set, not reached
	StatusNoTarget    ProductStatus = "no_target"    // target price absent
)

// AllProductStatuses returns the statuses accepted by the list filter
func AllProductStatuses() []ProductStatus {
	return []ProductStatus{
		StatusGoalReached,
		StatusMonitoring,
		StatusNoTarget,
	}
}

// ParseProductStatus returns the status for s, or "" with ok=false when s
// is not a known status.
func ParseProductStatus(s string) (ProductStatus, bool) {
	for _, status := range AllProductStatuses() {
		if string(status) == s {
			return status, true
		}
	}
	return "", false
}

// Label returns the badge text shown for the status
func (s ProductStatus) Label() string {
	switch s {
	case StatusGoalReached:
		return "목표 도달"
	case StatusMonitoring:
		return "모니터링 중"
	default:
		return "목표 미설정"
	}
}

// BadgeVariant returns the badge style used for the status
func (s ProductStatus) BadgeVariant() string {
	switch s {
	case StatusGoalReached:
		return "success"
	case StatusMonitoring:
		return "warning"
	default:
		return "outline"
	}
}

// Product is a monitored keyword as returned by the price API
type Product struct {
	ID          int64     `json:"id"`
	Keyword     string    `json:"keyword"`
	TargetPrice *int64    `json:"target_price"`
	Memo        *string   `json:"memo"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   Timestamp `json:"created_at"`
	UpdatedAt   Timestamp `json:"updated_at"`

	// Derived by the backend from the latest collection
	LatestPrice       *int64        `json:"latest_price"`
	LatestShop        *string       `json:"latest_shop"`
	LatestURL         *string       `json:"latest_url"`
	LatestCollectedAt *Timestamp    `json:"latest_collected_at"`
	Status            ProductStatus `json:"status"`
	PriceChange       *int64        `json:"price_change"`
	PriceChangeRate   *float64      `json:"price_change_rate"`
}

// HasTarget reports whether a target price is set
func (p Product) HasTarget() bool {
	return p.TargetPrice != nil && *p.TargetPrice > 0
}

// FilterByStatus returns the products whose backend status equals status
func FilterByStatus(products []Product, status ProductStatus) []Product {
	var out []Product
	for _, p := range products {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out
}

// ProductCreateRequest is the body of POST /products
type ProductCreateRequest struct {
	Keyword     string  `json:"keyword"`
	TargetPrice *int64  `json:"target_price,omitempty"`
	Memo        *string `json:"memo,omitempty"`
}

// ProductUpdateRequest is the body of PUT /products/{id}. Unset fields are
// left alone by the backend; fields set to null are cleared.
type ProductUpdateRequest struct {
	TargetPrice Optional[int64]  `json:"target_price,omitzero"`
	Memo        Optional[string] `json:"memo,omitzero"`
	IsActive    Optional[bool]   `json:"is_active,omitzero"`
}
