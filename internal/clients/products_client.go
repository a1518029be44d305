package clients

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"lookbook-service/internal/models"
)

// ProductsClient handles communication with the backend's product endpoints
type ProductsClient struct {
	backendClient
}

// NewProductsClient creates a products client against the backend base URL
func NewProductsClient(baseURL string) *ProductsClient {
	return &ProductsClient{backendClient: newBackendClient(baseURL)}
}

// ListProductsOptions narrows a product listing. Username selects a
// storefront catalog, UserID a dashboard one; set exactly one of them.
type ListProductsOptions struct {
	Username string
	UserID   string
	Page     int
	PageSize int
}

// List fetches one page of products
func (c *ProductsClient) List(ctx context.Context, opts ListProductsOptions) ([]models.Product, *models.PaginationInfo, error) {
	query := url.Values{}
	if opts.Username != "" {
		query.Set("username", opts.Username)
	}
	if opts.UserID != "" {
		query.Set("userId", opts.UserID)
	}
	if opts.Page > 0 {
		query.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.PageSize > 0 {
		query.Set("limit", strconv.Itoa(opts.PageSize))
	}

	var result models.ProductListResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/products", query, nil, &result); err != nil {
		log.Printf("[ProductsClient] List failed: %v", err)
		return nil, nil, err
	}
	return result.Data, result.Pagination, nil
}

// Get fetches one product by id
func (c *ProductsClient) Get(ctx context.Context, id string) (*models.Product, error) {
	var result models.ProductResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/products/"+id, nil, nil, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

// Create creates a product for a dashboard user
func (c *ProductsClient) Create(ctx context.Context, userID string, req models.CreateProductRequest) (*models.Product, error) {
	query := url.Values{}
	query.Set("userId", userID)

	var result models.ProductResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/products", query, req, &result); err != nil {
		log.Printf("[ProductsClient] Create failed for user %s: %v", userID, err)
		return nil, err
	}
	return result.Data, nil
}

// Update applies a partial update to a product
func (c *ProductsClient) Update(ctx context.Context, id string, req models.UpdateProductRequest) (*models.Product, error) {
	var result models.ProductResponse
	if err := c.doJSON(ctx, http.MethodPatch, "/api/products/"+id, nil, req, &result); err != nil {
		log.Printf("[ProductsClient] Update failed for product %s: %v", id, err)
		return nil, err
	}
	return result.Data, nil
}

// Delete removes a product. A backend 404 counts as already deleted.
func (c *ProductsClient) Delete(ctx context.Context, id string) error {
	err := c.doJSON(ctx, http.MethodDelete, "/api/products/"+id, nil, nil, nil)
	if err != nil && !IsNotFound(err) {
		log.Printf("[ProductsClient] Delete failed for product %s: %v", id, err)
		return err
	}
	return nil
}

// AddPlatform attaches a platform listing to a product
func (c *ProductsClient) AddPlatform(ctx context.Context, productID string, req models.PlatformListingInput) (*models.Product, error) {
	path := fmt.Sprintf("/api/products/%s/platforms", productID)

	var result models.ProductResponse
	if err := c.doJSON(ctx, http.MethodPost, path, nil, req, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

// UpdatePlatform updates one platform listing in place
func (c *ProductsClient) UpdatePlatform(ctx context.Context, productID, listingID string, req models.UpdatePlatformListingRequest) (*models.Product, error) {
	path := fmt.Sprintf("/api/products/%s/platforms/%s", productID, listingID)

	var result models.ProductResponse
	if err := c.doJSON(ctx, http.MethodPut, path, nil, req, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

// DeletePlatform removes a platform listing from a product
func (c *ProductsClient) DeletePlatform(ctx context.Context, productID, listingID string) error {
	path := fmt.Sprintf("/api/products/%s/platforms/%s", productID, listingID)
	err := c.doJSON(ctx, http.MethodDelete, path, nil, nil, nil)
	if err != nil && !IsNotFound(err) {
		return err
	}
	return nil
}

// TrackClick records an outbound click on a product link. Best effort:
// storefront rendering never depends on the counter.
func (c *ProductsClient) TrackClick(ctx context.Context, productID string, platform models.Platform) error {
	path := fmt.Sprintf("/api/products/%s/click", productID)

	query := url.Values{}
	if platform != "" {
		query.Set("platform", string(platform))
	}
	return c.doJSON(ctx, http.MethodPost, path, query, nil, nil)
}
