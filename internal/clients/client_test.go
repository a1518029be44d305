package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lookbook-service/internal/models"
)

func TestDoJSONDecodesBackendErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: "title is required"},
		})
	}))
	defer server.Close()

	client := NewProductsClient(server.URL)
	_, err := client.Get(context.Background(), "p1")

	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, StatusOf(err))
	assert.Contains(t, err.Error(), "title is required")
}

func TestDeleteToleratesNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewOotdsClient(server.URL)
	assert.NoError(t, client.Delete(context.Background(), "missing"))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(&APIError{StatusCode: http.StatusNotFound}))
	assert.False(t, IsNotFound(&APIError{StatusCode: http.StatusBadGateway}))
	assert.False(t, IsNotFound(context.Canceled))
}

func TestListProductsSendsQueryFilters(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode(models.ProductListResponse{Success: true, Data: []models.Product{{ID: "p1"}}})
	}))
	defer server.Close()

	client := NewProductsClient(server.URL)
	products, _, err := client.List(context.Background(), ListProductsOptions{Username: "sarah", Page: 2, PageSize: 20})

	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Contains(t, gotQuery, "username=sarah")
	assert.Contains(t, gotQuery, "page=2")
	assert.Contains(t, gotQuery, "limit=20")
}

func TestBulkUploadSendsMultipartPhotos(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := r.ParseMultipartForm(32 << 20)
		require.NoError(t, err)

		files := r.MultipartForm.File["photos"]
		require.Len(t, files, 2)
		assert.Equal(t, "look1.jpg", files[0].Filename)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": models.MediaUploadResult{
				Uploaded: []models.OotdMedia{{ID: "m1"}},
				Count:    1,
				Errors:   []models.MediaFileError{{Filename: "look2.jpg", Error: "too large"}},
			},
		})
	}))
	defer server.Close()

	client := NewMediaClient(server.URL)
	result, err := client.BulkUpload(context.Background(), "o1", []UploadFile{
		{Filename: "look1.jpg", ContentType: "image/jpeg", Reader: strings.NewReader("jpegdata")},
		{Filename: "look2.jpg", ContentType: "image/jpeg", Reader: strings.NewReader("jpegdata")},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Count)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "look2.jpg", result.Errors[0].Filename)
}

func TestUpdateOotdSendsMediaAndDeletions(t *testing.T) {
	var got models.UpdateOotdRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(models.OotdResponse{Success: true, Data: &models.Ootd{ID: "o1"}})
	}))
	defer server.Close()

	client := NewOotdsClient(server.URL)
	_, err := client.Update(context.Background(), "o1", models.UpdateOotdRequest{
		Title:          "Monday fit",
		Media:          []models.OotdMediaInput{{Type: models.MediaTypeImage, URL: "https://cdn/x.jpg", IsPrimary: true}},
		DeleteMediaIDs: []string{"m9"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Monday fit", got.Title)
	assert.Equal(t, []string{"m9"}, got.DeleteMediaIDs)
	require.Len(t, got.Media, 1)
	assert.True(t, got.Media[0].IsPrimary)
}
