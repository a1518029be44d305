package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lookbook-service/internal/catalog"
	"lookbook-service/internal/clients"
	"lookbook-service/internal/models"
	"lookbook-service/internal/repository"
)

// StorefrontHandler serves the public pages of an influencer handle.
// Everything here is unauthenticated and cache-backed.
type StorefrontHandler struct {
	repo     *repository.StorefrontRepository
	products *clients.ProductsClient
}

func NewStorefrontHandler(repo *repository.StorefrontRepository, products *clients.ProductsClient) *StorefrontHandler {
	return &StorefrontHandler{repo: repo, products: products}
}

// GetProfile godoc
// @Summary Storefront profile
// @Description Public profile of an influencer handle
// @Tags storefront
// @Produce json
// @Param handle path string true "Influencer handle"
// @Success 200 {object} models.InfluencerResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /storefront/{handle} [get]
func (h *StorefrontHandler) GetProfile(c *gin.Context) {
	handle := c.Param("handle")

	influencer, err := h.repo.Profile(c.Request.Context(), handle)
	if err != nil {
		respondRemoteError(c, err)
		return
	}
	if influencer == nil || !influencer.IsActive {
		respondNotFound(c, "storefront not found")
		return
	}

	c.JSON(http.StatusOK, models.InfluencerResponse{Success: true, Data: influencer})
}

// GetCatalog godoc
// @Summary Storefront catalog
// @Description Filtered and sorted product catalog of a handle
// @Tags storefront
// @Produce json
// @Param handle path string true "Influencer handle"
// @Param q query string false "Search term over name, description and tags"
// @Param category query string false "Category filter"
// @Param price query string false "Price bracket"
// @Param sort query string false "Sort key" Enums(featured, price-low, price-high, rating, newest)
// @Success 200 {object} map[string]interface{}
// @Router /storefront/{handle}/products [get]
func (h *StorefrontHandler) GetCatalog(c *gin.Context) {
	handle := c.Param("handle")
	params := catalog.DecodeViewParams(c.Request.URL.Query())

	entries, err := h.repo.Catalog(c.Request.Context(), handle)
	if err != nil {
		respondRemoteError(c, err)
		return
	}

	view := catalog.ComputeView(entries, params)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    view,
		"meta": gin.H{
			"total":      len(view),
			"categories": catalog.Categories,
			"brackets":   catalog.PriceBrackets,
		},
	})
}

// GetLooks godoc
// @Summary Storefront looks
// @Description Public outfit posts of a handle, optionally filtered by mood
// @Tags storefront
// @Produce json
// @Param handle path string true "Influencer handle"
// @Param mood query string false "Mood filter, 'all' for everything"
// @Success 200 {object} map[string]interface{}
// @Router /storefront/{handle}/looks [get]
func (h *StorefrontHandler) GetLooks(c *gin.Context) {
	handle := c.Param("handle")
	mood := c.Query("mood")

	looks, err := h.repo.Looks(c.Request.Context(), handle)
	if err != nil {
		respondRemoteError(c, err)
		return
	}

	filtered := catalog.FilterByMood(looks, mood)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    filtered,
		"meta": gin.H{
			"total": len(filtered),
			"moods": catalog.Moods(looks),
		},
	})
}

// GetLook godoc
// @Summary Storefront look detail
// @Description One public outfit post with its media and product links
// @Tags storefront
// @Produce json
// @Param handle path string true "Influencer handle"
// @Param id path string true "Post id"
// @Success 200 {object} models.OotdResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /storefront/{handle}/looks/{id} [get]
func (h *StorefrontHandler) GetLook(c *gin.Context) {
	look, err := h.repo.Look(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondRemoteError(c, err)
		return
	}
	if look == nil || !look.IsPublic {
		respondNotFound(c, "look not found")
		return
	}

	c.JSON(http.StatusOK, models.OotdResponse{Success: true, Data: look})
}

// TrackClick godoc
// @Summary Record an outbound click
// @Description Counts a click on a product's platform link. Always 202.
// @Tags storefront
// @Param handle path string true "Influencer handle"
// @Param id path string true "Product id"
// @Param platform query string false "Platform clicked"
// @Success 202 {object} map[string]interface{}
// @Router /storefront/{handle}/products/{id}/click [post]
func (h *StorefrontHandler) TrackClick(c *gin.Context) {
	platform := models.Platform(c.Query("platform"))
	if platform != "" && !platform.IsValid() {
		platform = models.PlatformOther
	}

	// fire and forget; the storefront never waits on analytics
	_ = h.products.TrackClick(c.Request.Context(), c.Param("id"), platform)
	c.JSON(http.StatusAccepted, gin.H{"success": true})
}
