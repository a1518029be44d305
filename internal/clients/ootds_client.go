package clients

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"

	"lookbook-service/internal/models"
)

// OotdsClient handles communication with the backend's post endpoints,
// including the per-post product sub-resource.
type OotdsClient struct {
	backendClient
}

// NewOotdsClient creates a posts client against the backend base URL
func NewOotdsClient(baseURL string) *OotdsClient {
	return &OotdsClient{backendClient: newBackendClient(baseURL)}
}

// ListByUsername fetches the public posts of a storefront handle
func (c *OotdsClient) ListByUsername(ctx context.Context, username string) ([]models.Ootd, error) {
	query := url.Values{}
	query.Set("username", username)

	var result models.OotdListResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/ootds", query, nil, &result); err != nil {
		log.Printf("[OotdsClient] ListByUsername failed for %s: %v", username, err)
		return nil, err
	}
	return result.Data, nil
}

// ListByUser fetches all posts of a dashboard user, drafts included
func (c *OotdsClient) ListByUser(ctx context.Context, userID string) ([]models.Ootd, error) {
	query := url.Values{}
	query.Set("userId", userID)

	var result models.OotdListResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/ootds", query, nil, &result); err != nil {
		log.Printf("[OotdsClient] ListByUser failed for %s: %v", userID, err)
		return nil, err
	}
	return result.Data, nil
}

// GetByID fetches one post with its media and product links
func (c *OotdsClient) GetByID(ctx context.Context, id string) (*models.Ootd, error) {
	var result models.OotdResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/ootds/"+id, nil, nil, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

// Create creates a post with its product links supplied inline
func (c *OotdsClient) Create(ctx context.Context, req models.CreateOotdRequest) (*models.Ootd, error) {
	var result models.OotdResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/ootds", nil, req, &result); err != nil {
		log.Printf("[OotdsClient] Create failed: %v", err)
		return nil, err
	}
	return result.Data, nil
}

// Update replaces a post's fields, surviving media set and staged deletions
func (c *OotdsClient) Update(ctx context.Context, id string, req models.UpdateOotdRequest) (*models.Ootd, error) {
	var result models.OotdResponse
	if err := c.doJSON(ctx, http.MethodPut, "/api/ootds/"+id, nil, req, &result); err != nil {
		log.Printf("[OotdsClient] Update failed for post %s: %v", id, err)
		return nil, err
	}
	return result.Data, nil
}

// Delete removes a post. A backend 404 counts as already deleted.
func (c *OotdsClient) Delete(ctx context.Context, id string) error {
	err := c.doJSON(ctx, http.MethodDelete, "/api/ootds/"+id, nil, nil, nil)
	if err != nil && !IsNotFound(err) {
		log.Printf("[OotdsClient] Delete failed for post %s: %v", id, err)
		return err
	}
	return nil
}

// AttachProduct links a product to an existing post at the given position
func (c *OotdsClient) AttachProduct(ctx context.Context, ootdID string, req models.AttachProductRequest) (*models.OotdProduct, error) {
	path := fmt.Sprintf("/api/ootds/%s/products", ootdID)

	var result struct {
		Success bool                `json:"success"`
		Data    *models.OotdProduct `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodPost, path, nil, req, &result); err != nil {
		log.Printf("[OotdsClient] AttachProduct failed for post %s: %v", ootdID, err)
		return nil, err
	}
	return result.Data, nil
}

// UpdateProduct rewrites the note on one product link
func (c *OotdsClient) UpdateProduct(ctx context.Context, ootdID, productID string, note string) (*models.OotdProduct, error) {
	path := fmt.Sprintf("/api/ootds/%s/products/%s", ootdID, productID)
	payload := map[string]string{"note": note}

	var result struct {
		Success bool                `json:"success"`
		Data    *models.OotdProduct `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodPut, path, nil, payload, &result); err != nil {
		log.Printf("[OotdsClient] UpdateProduct failed for post %s product %s: %v", ootdID, productID, err)
		return nil, err
	}
	return result.Data, nil
}

// DetachProduct unlinks a product from a post
func (c *OotdsClient) DetachProduct(ctx context.Context, ootdID, productID string) error {
	path := fmt.Sprintf("/api/ootds/%s/products/%s", ootdID, productID)
	err := c.doJSON(ctx, http.MethodDelete, path, nil, nil, nil)
	if err != nil && !IsNotFound(err) {
		log.Printf("[OotdsClient] DetachProduct failed for post %s product %s: %v", ootdID, productID, err)
		return err
	}
	return nil
}

// ReorderProducts persists a full position assignment for a post's products
func (c *OotdsClient) ReorderProducts(ctx context.Context, ootdID string, req models.ReorderProductsRequest) error {
	path := fmt.Sprintf("/api/ootds/%s/products/reorder", ootdID)
	if err := c.doJSON(ctx, http.MethodPut, path, nil, req, nil); err != nil {
		log.Printf("[OotdsClient] ReorderProducts failed for post %s: %v", ootdID, err)
		return err
	}
	return nil
}
