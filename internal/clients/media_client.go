package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"lookbook-service/internal/models"
)

// MediaClient handles communication with the backend's media endpoints
type MediaClient struct {
	backendClient
}

// NewMediaClient creates a media client against the backend base URL
func NewMediaClient(baseURL string) *MediaClient {
	return &MediaClient{backendClient: newBackendClient(baseURL)}
}

// UploadFile is one file in a bulk upload batch
type UploadFile struct {
	Filename    string
	ContentType string
	Reader      io.Reader
}

// BulkUpload sends a batch of media files for a post in one multipart
// request. The backend commits successes even when some files fail; the
// result carries both the uploaded media and the per-file errors.
func (c *MediaClient) BulkUpload(ctx context.Context, ootdID string, files []UploadFile) (*models.MediaUploadResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	for _, f := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="photos"; filename="%s"`, f.Filename))
		if f.ContentType != "" {
			header.Set("Content-Type", f.ContentType)
		}

		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, fmt.Errorf("failed to build upload form: %w", err)
		}
		if _, err := io.Copy(part, f.Reader); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f.Filename, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize upload form: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/ootds/%s/media", c.baseURL, ootdID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[MediaClient] BulkUpload failed for post %s: %v", ootdID, err)
		return nil, fmt.Errorf("failed to reach backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp)
	}

	var result struct {
		Success bool                      `json:"success"`
		Data    *models.MediaUploadResult `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if result.Data == nil {
		return &models.MediaUploadResult{}, nil
	}

	log.Printf("[MediaClient] Uploaded %d/%d files for post %s", result.Data.Count, len(files), ootdID)
	return result.Data, nil
}

// Delete hard-deletes one media attachment. A backend 404 counts as
// already deleted.
func (c *MediaClient) Delete(ctx context.Context, mediaID string) error {
	err := c.doJSON(ctx, http.MethodDelete, "/api/media/"+mediaID, nil, nil, nil)
	if err != nil && !IsNotFound(err) {
		log.Printf("[MediaClient] Delete failed for media %s: %v", mediaID, err)
		return err
	}
	return nil
}

// SetPrimary marks one attachment as the post's cover
func (c *MediaClient) SetPrimary(ctx context.Context, mediaID string) error {
	path := fmt.Sprintf("/api/media/%s/primary", mediaID)
	if err := c.doJSON(ctx, http.MethodPut, path, nil, nil, nil); err != nil {
		log.Printf("[MediaClient] SetPrimary failed for media %s: %v", mediaID, err)
		return err
	}
	return nil
}
