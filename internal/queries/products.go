package queries

import (
	"context"

	"github.com/codyseavey/pricewatch/web/internal/models"
	"github.com/codyseavey/pricewatch/web/internal/query"
	"github.com/codyseavey/pricewatch/web/internal/services"
)

// Products pairs the product service with the query cache
type Products struct {
	cache *query.Client
	svc   *services.ProductService
}

// NewProducts creates product queries backed by cache
func NewProducts(cache *query.Client, svc *services.ProductService) *Products {
	return &Products{cache: cache, svc: svc}
}

func (p *Products) listOptions(search, status string) query.Options[[]models.Product] {
	return query.Options[[]models.Product]{
		Key: productsKey(search, status),
		Fn: func(ctx context.Context) ([]models.Product, error) {
			return p.svc.List(ctx, search, status)
		},
	}
}

// List returns the product list for the given filters
func (p *Products) List(ctx context.Context, search, status string) query.Result[[]models.Product] {
	return query.Fetch(ctx, p.cache, p.listOptions(search, status))
}

// PeekList reports the cached list without fetching
func (p *Products) PeekList(search, status string) query.Result[[]models.Product] {
	return query.Peek(p.cache, p.listOptions(search, status))
}

// PrefetchList warms the list so a following fragment request finds it
func (p *Products) PrefetchList(ctx context.Context, search, status string) {
	query.Prefetch(ctx, p.cache, p.listOptions(search, status))
}

// Create registers a keyword and marks the list and summary stale
func (p *Products) Create(ctx context.Context, req models.ProductCreateRequest) (*models.Product, error) {
	return query.Mutate(ctx, p.cache, query.Mutation[*models.Product]{
		Name: "create",
		Fn: func(ctx context.Context) (*models.Product, error) {
			return p.svc.Create(ctx, req)
		},
		Invalidates: productWrites(),
	})
}

// Update edits a product and marks the list and summary stale
func (p *Products) Update(ctx context.Context, id int64, req models.ProductUpdateRequest) (*models.Product, error) {
	return query.Mutate(ctx, p.cache, query.Mutation[*models.Product]{
		Name: "update",
		Fn: func(ctx context.Context) (*models.Product, error) {
			return p.svc.Update(ctx, id, req)
		},
		Invalidates: productWrites(),
	})
}

// Delete removes a product and marks the list and summary stale
func (p *Products) Delete(ctx context.Context, id int64) error {
	_, err := query.Mutate(ctx, p.cache, query.Mutation[struct{}]{
		Name: "delete",
		Fn: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, p.svc.Delete(ctx, id)
		},
		Invalidates: productWrites(),
	})
	return err
}
