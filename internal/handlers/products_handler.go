package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	log "github.com/sirupsen/logrus"

	"lookbook-service/internal/clients"
	"lookbook-service/internal/events"
	"lookbook-service/internal/middleware"
	"lookbook-service/internal/models"
	"lookbook-service/internal/repository"
)

// ProductsHandler serves the dashboard's affiliate product CRUD
type ProductsHandler struct {
	products   *clients.ProductsClient
	users      *clients.UsersClient
	storefront *repository.StorefrontRepository
	publisher  *events.Publisher
}

func NewProductsHandler(products *clients.ProductsClient, users *clients.UsersClient, storefront *repository.StorefrontRepository, publisher *events.Publisher) *ProductsHandler {
	return &ProductsHandler{
		products:   products,
		users:      users,
		storefront: storefront,
		publisher:  publisher,
	}
}

// invalidateStorefront drops the cached storefront of the acting user
// and reports their handle for event publishing. Best effort.
func (h *ProductsHandler) invalidateStorefront(c *gin.Context, userID string) string {
	influencer, err := h.users.GetInfluencerByUser(c.Request.Context(), userID)
	if err != nil || influencer == nil {
		return ""
	}
	h.storefront.InvalidateHandle(c.Request.Context(), influencer.Handle)
	return influencer.Handle
}

// ListProducts godoc
// @Summary List my products
// @Tags products
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} models.ProductListResponse
// @Router /dashboard/products [get]
func (h *ProductsHandler) ListProducts(c *gin.Context) {
	userID := middleware.UserID(c)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	products, pagination, err := h.products.List(c.Request.Context(), clients.ListProductsOptions{
		UserID:   userID,
		Page:     page,
		PageSize: limit,
	})
	if err != nil {
		respondRemoteError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ProductListResponse{
		Success:    true,
		Data:       products,
		Pagination: pagination,
	})
}

// GetProduct godoc
// @Summary Get one of my products
// @Tags products
// @Security BearerAuth
// @Produce json
// @Param id path string true "Product id"
// @Success 200 {object} models.ProductResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /dashboard/products/{id} [get]
func (h *ProductsHandler) GetProduct(c *gin.Context) {
	product, err := h.products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondRemoteError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ProductResponse{Success: true, Data: product})
}

// CreateProduct godoc
// @Summary Create a product
// @Tags products
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param product body models.CreateProductRequest true "Product"
// @Success 201 {object} models.ProductResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /dashboard/products [post]
func (h *ProductsHandler) CreateProduct(c *gin.Context) {
	userID := middleware.UserID(c)

	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}
	for _, p := range req.Platforms {
		if !p.Platform.IsValid() {
			respondValidationError(c, fmt.Sprintf("unknown platform %q", p.Platform))
			return
		}
	}

	product, err := h.products.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondRemoteError(c, err)
		return
	}
	if product == nil {
		respondError(c, http.StatusBadGateway, "BACKEND_ERROR", "backend returned no product")
		return
	}

	handle := h.invalidateStorefront(c, userID)
	h.publisher.Publish(events.EventProductCreated, userID, handle, product.ID)

	c.JSON(http.StatusCreated, models.ProductResponse{Success: true, Data: product})
}

// UpdateProduct godoc
// @Summary Update a product
// @Tags products
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Product id"
// @Param product body models.UpdateProductRequest true "Fields to change"
// @Success 200 {object} models.ProductResponse
// @Router /dashboard/products/{id} [patch]
func (h *ProductsHandler) UpdateProduct(c *gin.Context) {
	userID := middleware.UserID(c)

	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	product, err := h.products.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondRemoteError(c, err)
		return
	}

	handle := h.invalidateStorefront(c, userID)
	h.publisher.Publish(events.EventProductUpdated, userID, handle, c.Param("id"))

	c.JSON(http.StatusOK, models.ProductResponse{Success: true, Data: product})
}

// DeleteProduct godoc
// @Summary Delete a product
// @Tags products
// @Security BearerAuth
// @Param id path string true "Product id"
// @Success 200 {object} map[string]interface{}
// @Router /dashboard/products/{id} [delete]
func (h *ProductsHandler) DeleteProduct(c *gin.Context) {
	userID := middleware.UserID(c)
	id := c.Param("id")

	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		respondRemoteError(c, err)
		return
	}

	handle := h.invalidateStorefront(c, userID)
	h.publisher.Publish(events.EventProductDeleted, userID, handle, id)

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// AddPlatform godoc
// @Summary Add a platform listing
// @Tags products
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Product id"
// @Param listing body models.PlatformListingInput true "Listing"
// @Success 200 {object} models.ProductResponse
// @Router /dashboard/products/{id}/platforms [post]
func (h *ProductsHandler) AddPlatform(c *gin.Context) {
	var req models.PlatformListingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}
	if !req.Platform.IsValid() {
		respondValidationError(c, fmt.Sprintf("unknown platform %q", req.Platform))
		return
	}

	product, err := h.products.AddPlatform(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondRemoteError(c, err)
		return
	}

	h.invalidateStorefront(c, middleware.UserID(c))
	c.JSON(http.StatusOK, models.ProductResponse{Success: true, Data: product})
}

// UpdatePlatform godoc
// @Summary Update a platform listing
// @Tags products
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Product id"
// @Param listingId path string true "Listing id"
// @Param listing body models.UpdatePlatformListingRequest true "Fields to change"
// @Success 200 {object} models.ProductResponse
// @Router /dashboard/products/{id}/platforms/{listingId} [put]
func (h *ProductsHandler) UpdatePlatform(c *gin.Context) {
	var req models.UpdatePlatformListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	product, err := h.products.UpdatePlatform(c.Request.Context(), c.Param("id"), c.Param("listingId"), req)
	if err != nil {
		respondRemoteError(c, err)
		return
	}

	h.invalidateStorefront(c, middleware.UserID(c))
	c.JSON(http.StatusOK, models.ProductResponse{Success: true, Data: product})
}

// DeletePlatform godoc
// @Summary Remove a platform listing
// @Tags products
// @Security BearerAuth
// @Param id path string true "Product id"
// @Param listingId path string true "Listing id"
// @Success 200 {object} map[string]interface{}
// @Router /dashboard/products/{id}/platforms/{listingId} [delete]
func (h *ProductsHandler) DeletePlatform(c *gin.Context) {
	if err := h.products.DeletePlatform(c.Request.Context(), c.Param("id"), c.Param("listingId")); err != nil {
		respondRemoteError(c, err)
		return
	}

	h.invalidateStorefront(c, middleware.UserID(c))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

var exportHeader = []interface{}{
	"Name", "Description", "Price", "Category", "Tags", "Clicks", "Platforms", "Last Updated",
}

// ExportProducts godoc
// @Summary Export my catalog as a spreadsheet
// @Tags products
// @Security BearerAuth
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Router /dashboard/products/export [get]
func (h *ProductsHandler) ExportProducts(c *gin.Context) {
	userID := middleware.UserID(c)

	products, _, err := h.products.List(c.Request.Context(), clients.ListProductsOptions{
		UserID:   userID,
		PageSize: 1000,
	})
	if err != nil {
		respondRemoteError(c, err)
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Products"
	f.SetSheetName(f.GetSheetName(0), sheet)
	if err := f.SetSheetRow(sheet, "A1", &exportHeader); err != nil {
		respondError(c, http.StatusInternalServerError, "EXPORT_FAILED", "could not build spreadsheet")
		return
	}

	for i, p := range products {
		platforms := make([]string, 0, len(p.Platforms))
		for _, pl := range p.Platforms {
			platforms = append(platforms, string(pl.Platform))
		}
		row := []interface{}{
			p.Name,
			p.Description,
			p.Price,
			p.DisplayCategory(),
			strings.Join(p.Tags, ", "),
			p.Clicks,
			strings.Join(platforms, ", "),
			p.LastUpdated,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			respondError(c, http.StatusInternalServerError, "EXPORT_FAILED", "could not build spreadsheet")
			return
		}
	}

	filename := fmt.Sprintf("products-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := f.Write(c.Writer); err != nil {
		log.WithError(err).Error("failed to stream product export")
	}
}
