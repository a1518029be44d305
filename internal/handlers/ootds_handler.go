package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lookbook-service/internal/clients"
	"lookbook-service/internal/events"
	"lookbook-service/internal/middleware"
	"lookbook-service/internal/models"
	"lookbook-service/internal/repository"
)

// OotdsHandler serves the dashboard's outfit post listing. Editing goes
// through the editor session endpoints; this handler only reads and
// deletes whole posts.
type OotdsHandler struct {
	posts      *clients.OotdsClient
	users      *clients.UsersClient
	storefront *repository.StorefrontRepository
	publisher  *events.Publisher
}

func NewOotdsHandler(posts *clients.OotdsClient, users *clients.UsersClient, storefront *repository.StorefrontRepository, publisher *events.Publisher) *OotdsHandler {
	return &OotdsHandler{
		posts:      posts,
		users:      users,
		storefront: storefront,
		publisher:  publisher,
	}
}

// ListOotds godoc
// @Summary List my posts
// @Description All posts of the authenticated user, drafts included
// @Tags ootds
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.OotdListResponse
// @Router /dashboard/ootds [get]
func (h *OotdsHandler) ListOotds(c *gin.Context) {
	posts, err := h.posts.ListByUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondRemoteError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OotdListResponse{Success: true, Data: posts})
}

// GetOotd godoc
// @Summary Get one of my posts
// @Tags ootds
// @Security BearerAuth
// @Produce json
// @Param id path string true "Post id"
// @Success 200 {object} models.OotdResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /dashboard/ootds/{id} [get]
func (h *OotdsHandler) GetOotd(c *gin.Context) {
	post, err := h.posts.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondRemoteError(c, err)
		return
	}
	if post == nil {
		respondNotFound(c, "post not found")
		return
	}
	c.JSON(http.StatusOK, models.OotdResponse{Success: true, Data: post})
}

// DeleteOotd godoc
// @Summary Delete a post
// @Tags ootds
// @Security BearerAuth
// @Param id path string true "Post id"
// @Success 200 {object} map[string]interface{}
// @Router /dashboard/ootds/{id} [delete]
func (h *OotdsHandler) DeleteOotd(c *gin.Context) {
	userID := middleware.UserID(c)
	id := c.Param("id")

	if err := h.posts.Delete(c.Request.Context(), id); err != nil {
		respondRemoteError(c, err)
		return
	}

	if influencer, err := h.users.GetInfluencerByUser(c.Request.Context(), userID); err == nil && influencer != nil {
		h.storefront.InvalidateHandle(c.Request.Context(), influencer.Handle)
		h.publisher.Publish(events.EventPostDeleted, userID, influencer.Handle, id)
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
