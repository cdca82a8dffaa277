package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/codyseavey/pricewatch/web/internal/models"
)

// Requester sends one JSON request to the price API. *client.Client
// satisfies it.
type Requester interface {
	Do(ctx context.Context, method, path string, body, out any) error
}

// ProductService wraps the /products endpoints
type ProductService struct {
	api Requester
}

// NewProductService creates a new product service
func NewProductService(api Requester) *ProductService {
	return &ProductService{api: api}
}

// List returns products, optionally filtered by keyword search and status.
// Filtering happens on the server.
func (s *ProductService) List(ctx context.Context, search, status string) ([]models.Product, error) {
	params := url.Values{}
	if search != "" {
		params.Set("search", search)
	}
	if status != "" {
		params.Set("status", status)
	}

	path := "/products"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var products []models.Product
	if err := s.api.Do(ctx, http.MethodGet, path, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Create registers a new keyword. A duplicate keyword fails with a 409 APIError.
func (s *ProductService) Create(ctx context.Context, req models.ProductCreateRequest) (*models.Product, error) {
	var product models.Product
	if err := s.api.Do(ctx, http.MethodPost, "/products", req, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Update changes target price, memo or active flag
func (s *ProductService) Update(ctx context.Context, id int64, req models.ProductUpdateRequest) (*models.Product, error) {
	var product models.Product
	if err := s.api.Do(ctx, http.MethodPut, fmt.Sprintf("/products/%d", id), req, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Delete removes a product
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	return s.api.Do(ctx, http.MethodDelete, fmt.Sprintf("/products/%d", id), nil, nil)
}
