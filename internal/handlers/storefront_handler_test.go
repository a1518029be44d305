package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lookbook-service/internal/clients"
	"lookbook-service/internal/models"
	"lookbook-service/internal/repository"
)

// fakeBackend emulates the lookbook backend for handler tests
func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/api/influencers", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("handle") {
		case "sarah":
			json.NewEncoder(w).Encode(models.InfluencerResponse{
				Success: true,
				Data:    &models.Influencer{ID: "i1", Handle: "sarah", Name: "Sarah", IsActive: true},
			})
		case "ghost":
			json.NewEncoder(w).Encode(models.InfluencerResponse{
				Success: true,
				Data:    &models.Influencer{ID: "i2", Handle: "ghost", IsActive: false},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	mux.HandleFunc("/api/products", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.ProductListResponse{
			Success: true,
			Data: []models.Product{
				{ID: "p1", Name: "Jaket Denim", Price: "250000", Category: "Fashion", Tags: []string{"casual"}},
				{ID: "p2", Name: "Lipstik Matte", Price: "150000", Category: "Beauty"},
				{ID: "p3", Name: "Tas Rotan", Price: ""},
			},
		})
	})

	mux.HandleFunc("/api/ootds", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.OotdListResponse{
			Success: true,
			Data: []models.Ootd{
				{ID: "o1", Title: "Beach day", Mood: []string{"Casual"}, IsPublic: true},
				{ID: "o2", Title: "Office fit", Mood: []string{"Formal"}, IsPublic: true},
				{ID: "o3", Title: "Draft", Mood: []string{"Casual"}, IsPublic: false},
			},
		})
	})

	mux.HandleFunc("/api/ootds/o1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.OotdResponse{
			Success: true,
			Data:    &models.Ootd{ID: "o1", Title: "Beach day", IsPublic: true},
		})
	})
	mux.HandleFunc("/api/ootds/o3", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.OotdResponse{
			Success: true,
			Data:    &models.Ootd{ID: "o3", Title: "Draft", IsPublic: false},
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func storefrontRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	backend := fakeBackend(t)
	products := clients.NewProductsClient(backend.URL)
	posts := clients.NewOotdsClient(backend.URL)
	users := clients.NewUsersClient(backend.URL)
	repo := repository.NewStorefrontRepository(products, posts, users, nil, 100)

	h := NewStorefrontHandler(repo, products)

	r := gin.New()
	sf := r.Group("/api/storefront/:handle")
	sf.GET("", h.GetProfile)
	sf.GET("/products", h.GetCatalog)
	sf.GET("/looks", h.GetLooks)
	sf.GET("/looks/:id", h.GetLook)
	return r
}

func get(t *testing.T, r *gin.Engine, url string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	r.ServeHTTP(w, req)

	var body map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func dataList(t *testing.T, body map[string]interface{}) []interface{} {
	t.Helper()
	list, ok := body["data"].([]interface{})
	require.True(t, ok, "expected data array, got %v", body["data"])
	return list
}

func TestGetProfile(t *testing.T) {
	r := storefrontRouter(t)

	w, body := get(t, r, "/api/storefront/sarah")
	assert.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "sarah", data["handle"])
}

func TestGetProfileHidesInactiveHandle(t *testing.T) {
	r := storefrontRouter(t)

	w, _ := get(t, r, "/api/storefront/ghost")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetProfileUnknownHandle(t *testing.T) {
	r := storefrontRouter(t)

	w, _ := get(t, r, "/api/storefront/nobody")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetCatalogAppliesSearchAndSort(t *testing.T) {
	r := storefrontRouter(t)

	w, body := get(t, r, "/api/storefront/sarah/products?q=denim")
	assert.Equal(t, http.StatusOK, w.Code)

	list := dataList(t, body)
	require.Len(t, list, 1)
	first := list[0].(map[string]interface{})
	assert.Equal(t, "Jaket Denim", first["name"])
}

func TestGetCatalogPriceBracketExcludesMissingPrices(t *testing.T) {
	r := storefrontRouter(t)

	w, body := get(t, r, "/api/storefront/sarah/products?price=Under+200k")
	assert.Equal(t, http.StatusOK, w.Code)

	list := dataList(t, body)
	require.Len(t, list, 1)
	first := list[0].(map[string]interface{})
	assert.Equal(t, "Lipstik Matte", first["name"])
}

func TestGetCatalogSortPriceLow(t *testing.T) {
	r := storefrontRouter(t)

	_, body := get(t, r, "/api/storefront/sarah/products?sort=price-low")
	list := dataList(t, body)
	require.Len(t, list, 3)

	// missing price sorts as cheapest
	assert.Equal(t, "Tas Rotan", list[0].(map[string]interface{})["name"])
	assert.Equal(t, "Lipstik Matte", list[1].(map[string]interface{})["name"])
	assert.Equal(t, "Jaket Denim", list[2].(map[string]interface{})["name"])
}

func TestGetCatalogMalformedParamsFallBack(t *testing.T) {
	r := storefrontRouter(t)

	w, body := get(t, r, "/api/storefront/sarah/products?price=bogus&sort=nope")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, dataList(t, body), 3)
}

func TestGetLooksFiltersMoodAndDrafts(t *testing.T) {
	r := storefrontRouter(t)

	_, body := get(t, r, "/api/storefront/sarah/looks?mood=casual")
	list := dataList(t, body)
	require.Len(t, list, 1)
	assert.Equal(t, "Beach day", list[0].(map[string]interface{})["title"])

	_, body = get(t, r, "/api/storefront/sarah/looks?mood=all")
	assert.Len(t, dataList(t, body), 2)
}

func TestGetLookDetail(t *testing.T) {
	r := storefrontRouter(t)

	w, body := get(t, r, "/api/storefront/sarah/looks/o1")
	assert.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "Beach day", data["title"])
}

func TestGetLookHidesPrivatePost(t *testing.T) {
	r := storefrontRouter(t)

	w, _ := get(t, r, "/api/storefront/sarah/looks/o3")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
