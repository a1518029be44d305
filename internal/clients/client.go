// Package clients holds the typed HTTP clients for the lookbook backend,
// the system of record for users, influencers, products, posts and media.
// This service never talks to a database directly; everything goes through
// these clients.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lookbook-service/internal/models"
)

// APIError is a non-2xx reply from the lookbook backend
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a backend 404
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// StatusOf extracts the backend status code from err, or 0 when err did
// not come from a backend reply.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// backendClient carries the pieces every resource client shares
type backendClient struct {
	baseURL    string
	httpClient *http.Client
}

func newBackendClient(baseURL string) backendClient {
	return backendClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// doJSON performs one JSON round trip against the backend. payload may be
// nil for bodyless requests; out may be nil when the reply body is ignored.
func (c *backendClient) doJSON(ctx context.Context, method, path string, query url.Values, payload, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// newAPIError turns a non-2xx reply into an APIError, preferring the
// backend's own error envelope over the raw body.
func newAPIError(resp *http.Response) *APIError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var envelope models.ErrorResponse
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Message != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: envelope.Error.Message}
	}

	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
