package clients

import (
	"context"
	"log"
	"net/http"
	"net/url"

	"lookbook-service/internal/models"
)

// UsersClient handles communication with the backend's user and
// influencer endpoints.
type UsersClient struct {
	backendClient
}

// NewUsersClient creates a users client against the backend base URL
func NewUsersClient(baseURL string) *UsersClient {
	return &UsersClient{backendClient: newBackendClient(baseURL)}
}

// GetUser fetches a dashboard user with their influencer profile
func (c *UsersClient) GetUser(ctx context.Context, id string) (*models.User, error) {
	var result models.UserResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/users/"+id, nil, nil, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

// GetUserByAuthID resolves a user by the id carried in their auth token
func (c *UsersClient) GetUserByAuthID(ctx context.Context, authUserID string) (*models.User, error) {
	query := url.Values{}
	query.Set("authUserId", authUserID)

	var result models.UserResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/users", query, nil, &result); err != nil {
		log.Printf("[UsersClient] GetUserByAuthID failed: %v", err)
		return nil, err
	}
	return result.Data, nil
}

// GetInfluencerByHandle resolves a storefront handle to its influencer
func (c *UsersClient) GetInfluencerByHandle(ctx context.Context, handle string) (*models.Influencer, error) {
	query := url.Values{}
	query.Set("handle", handle)

	var result models.InfluencerResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/influencers", query, nil, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

// GetInfluencerByUser fetches the influencer profile owned by a user
func (c *UsersClient) GetInfluencerByUser(ctx context.Context, userID string) (*models.Influencer, error) {
	query := url.Values{}
	query.Set("userId", userID)

	var result models.InfluencerResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/influencers", query, nil, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

// CreateInfluencer onboards a user into an influencer profile
func (c *UsersClient) CreateInfluencer(ctx context.Context, req models.CreateInfluencerRequest) (*models.Influencer, error) {
	var result models.InfluencerResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/influencers", nil, req, &result); err != nil {
		log.Printf("[UsersClient] CreateInfluencer failed for user %s: %v", req.UserID, err)
		return nil, err
	}
	return result.Data, nil
}

// UpdateInfluencer applies a partial profile update
func (c *UsersClient) UpdateInfluencer(ctx context.Context, id string, req models.UpdateInfluencerRequest) (*models.Influencer, error) {
	var result models.InfluencerResponse
	if err := c.doJSON(ctx, http.MethodPatch, "/api/influencers/"+id, nil, req, &result); err != nil {
		log.Printf("[UsersClient] UpdateInfluencer failed for influencer %s: %v", id, err)
		return nil, err
	}
	return result.Data, nil
}
