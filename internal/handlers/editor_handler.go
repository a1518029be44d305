package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"lookbook-service/internal/clients"
	"lookbook-service/internal/editor"
	"lookbook-service/internal/events"
	"lookbook-service/internal/middleware"
	"lookbook-service/internal/models"
	"lookbook-service/internal/repository"
	"lookbook-service/internal/staging"
)

// EditorHandler exposes post editing sessions. A session is opened per
// editor modal, mutated operation by operation, and committed with save.
type EditorHandler struct {
	sessions   *editor.Manager
	products   *clients.ProductsClient
	users      *clients.UsersClient
	storefront *repository.StorefrontRepository
	publisher  *events.Publisher
}

func NewEditorHandler(sessions *editor.Manager, products *clients.ProductsClient, users *clients.UsersClient, storefront *repository.StorefrontRepository, publisher *events.Publisher) *EditorHandler {
	return &EditorHandler{
		sessions:   sessions,
		products:   products,
		users:      users,
		storefront: storefront,
		publisher:  publisher,
	}
}

func respondEditorError(c *gin.Context, err error) {
	var limitErr *staging.LimitError
	switch {
	case errors.Is(err, editor.ErrSessionNotFound):
		respondNotFound(c, "editor session not found")
	case errors.Is(err, editor.ErrBusy):
		respondError(c, http.StatusConflict, "EDITOR_BUSY", "another operation is in progress")
	case errors.Is(err, editor.ErrDuplicateProduct):
		respondValidationError(c, "product is already attached to this post")
	case errors.Is(err, editor.ErrProductNotFound), errors.Is(err, editor.ErrMediaNotFound):
		respondNotFound(c, err.Error())
	case errors.Is(err, editor.ErrTitleRequired),
		errors.Is(err, editor.ErrNoMedia),
		errors.Is(err, editor.ErrBadMediaType):
		respondValidationError(c, err.Error())
	case errors.As(err, &limitErr):
		respondValidationError(c, limitErr.Error())
	default:
		respondRemoteError(c, err)
	}
}

func (h *EditorHandler) session(c *gin.Context) (*editor.Session, bool) {
	s, err := h.sessions.Get(c.Param("sessionId"), middleware.UserID(c))
	if err != nil {
		respondEditorError(c, err)
		return nil, false
	}
	return s, true
}

func respondSnapshot(c *gin.Context, status int, s *editor.Session) {
	c.JSON(status, gin.H{"success": true, "data": s.Snapshot()})
}

// OpenSession godoc
// @Summary Open an editor session
// @Description Opens a create session, or an update session when postId is given
// @Tags editor
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body object false "Optional {postId}"
// @Success 201 {object} map[string]interface{}
// @Router /dashboard/editor [post]
func (h *EditorHandler) OpenSession(c *gin.Context) {
	userID := middleware.UserID(c)

	var req struct {
		PostID string `json:"postId"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err.Error())
			return
		}
	}

	if req.PostID == "" {
		respondSnapshot(c, http.StatusCreated, h.sessions.OpenCreate(userID))
		return
	}

	s, err := h.sessions.OpenUpdate(c.Request.Context(), userID, req.PostID)
	if err != nil {
		respondRemoteError(c, err)
		return
	}
	respondSnapshot(c, http.StatusCreated, s)
}

// GetSession godoc
// @Summary Read an editor session
// @Tags editor
// @Security BearerAuth
// @Produce json
// @Param sessionId path string true "Session id"
// @Success 200 {object} map[string]interface{}
// @Router /dashboard/editor/{sessionId} [get]
func (h *EditorHandler) GetSession(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	respondSnapshot(c, http.StatusOK, s)
}

// CloseSession godoc
// @Summary Close an editor session
// @Description Discards unsaved changes and releases staged files
// @Tags editor
// @Security BearerAuth
// @Param sessionId path string true "Session id"
// @Success 200 {object} map[string]interface{}
// @Router /dashboard/editor/{sessionId} [delete]
func (h *EditorHandler) CloseSession(c *gin.Context) {
	if err := h.sessions.Close(c.Param("sessionId"), middleware.UserID(c)); err != nil {
		respondEditorError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UpdateDraft godoc
// @Summary Update the draft fields
// @Tags editor
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param sessionId path string true "Session id"
// @Param draft body object true "Draft fields"
// @Success 200 {object} map[string]interface{}
// @Router /dashboard/editor/{sessionId}/draft [put]
func (h *EditorHandler) UpdateDraft(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req struct {
		Title            string   `json:"title"`
		Description      string   `json:"description"`
		URLPostInstagram string   `json:"urlPostInstagram"`
		Mood             []string `json:"mood"`
		IsPublic         bool     `json:"isPublic"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	if err := s.SetDraft(editor.Draft(req)); err != nil {
		respondEditorError(c, err)
		return
	}
	respondSnapshot(c, http.StatusOK, s)
}

// AddProduct godoc
// @Summary Attach a product
// @Description Attaches a product at the end of the display order
// @Tags editor
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param sessionId path string true "Session id"
// @Param body body object true "{productId, note}"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Router /dashboard/editor/{sessionId}/products [post]
func (h *EditorHandler) AddProduct(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req struct {
		ProductID string `json:"productId" binding:"required"`
		Note      string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	product, err := h.products.Get(c.Request.Context(), req.ProductID)
	if err != nil {
		respondRemoteError(c, err)
		return
	}
	if product == nil {
		respondNotFound(c, "product not found")
		return
	}

	if err := s.AddProduct(c.Request.Context(), *product, req.Note); err != nil {
		respondEditorError(c, err)
		return
	}
	respondSnapshot(c, http.StatusOK, s)
}

// RemoveProduct godoc
// @Summary Detach a product
// @Description Removes the product link; remaining positions close up
// @Tags editor
// @Security BearerAuth
// @Produce json
// @Param sessionId path string true "Session id"
// @Param productId path string true "Product id"
// @Success 200 {object} map[string]interface{}
// @Router /dashboard/editor/{sessionId}/products/{productId} [delete]
func (h *EditorHandler) RemoveProduct(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.RemoveProduct(c.Request.Context(), c.Param("productId")); err != nil {
		respondEditorError(c, err)
		return
	}
	respondSnapshot(c, http.StatusOK, s)
}

// MoveProduct godoc
// @Summary Move a product up or down
// @Tags editor
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param sessionId path string true "Session id"
// @Param productId path string true "Product id"
// @Param body body object true "{direction: up|down}"
// @Success 200 {object} map[string]interface{}
// @Router /dashboard/editor/{sessionId}/products/{productId}/move [post]
func (h *EditorHandler) MoveProduct(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req struct {
		Direction string `json:"direction" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	var dir editor.Direction
	switch req.Direction {
	case "up":
		dir = editor.MoveUp
	case "down":
		dir = editor.MoveDown
	default:
		respondValidationError(c, "direction must be up or down")
		return
	}

	if err := s.MoveProduct(c.Request.Context(), c.Param("productId"), dir); err != nil {
		respondEditorError(c, err)
		return
	}
	respondSnapshot(c, http.StatusOK, s)
}

// EditNote godoc
// @Summary Edit a product note
// @Tags editor
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param sessionId path string true "Session id"
// @Param productId path string true "Product id"
// @Param body body object true "{note}"
// @Success 200 {object} map[string]interface{}
// @Router /dashboard/editor/{sessionId}/products/{productId}/note [put]
func (h *EditorHandler) EditNote(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req struct {
		Note string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	if err := s.EditNote(c.Request.Context(), c.Param("productId"), req.Note); err != nil {
		respondEditorError(c, err)
		return
	}
	respondSnapshot(c, http.StatusOK, s)
}

// StageMedia godoc
// @Summary Stage media files
// @Description Validates and stages a selection; rejected files are listed
// @Tags editor
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param sessionId path string true "Session id"
// @Param files formData file true "Media files"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Router /dashboard/editor/{sessionId}/media [post]
func (h *EditorHandler) StageMedia(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		respondValidationError(c, "expected multipart form data")
		return
	}
	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		respondValidationError(c, "no files in selection")
		return
	}

	incoming := make([]staging.Incoming, 0, len(fileHeaders))
	var opened []interface{ Close() error }
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()
	for _, fh := range fileHeaders {
		f, err := fh.Open()
		if err != nil {
			respondValidationError(c, "could not read "+fh.Filename)
			return
		}
		opened = append(opened, f)
		incoming = append(incoming, staging.Incoming{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Reader:      f,
		})
	}

	_, rejected, err := s.StageMedia(incoming)
	if err != nil {
		respondEditorError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"data":     s.Snapshot(),
		"rejected": rejected,
	})
}

// AddMediaURL godoc
// @Summary Append media by URL
// @Description Adds an already-hosted file; committed with the next save
// @Tags editor
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param sessionId path string true "Session id"
// @Param body body object true "{url, type: image|video}"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Router /dashboard/editor/{sessionId}/media/url [post]
func (h *EditorHandler) AddMediaURL(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req struct {
		URL  string           `json:"url" binding:"required"`
		Type models.MediaType `json:"type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}
	if req.Type == "" {
		req.Type = models.MediaTypeImage
	}

	if err := s.AddMediaURL(req.URL, req.Type); err != nil {
		respondEditorError(c, err)
		return
	}
	respondSnapshot(c, http.StatusOK, s)
}

// RemoveStaged godoc
// @Summary Remove a staged file
// @Tags editor
// @Security BearerAuth
// @Param sessionId path string true "Session id"
// @Param stagedId path string true "Staged file id"
// @Success 200 {object} map[string]interface{}
// @Router /dashboard/editor/{sessionId}/media/staged/{stagedId} [delete]
func (h *EditorHandler) RemoveStaged(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.RemoveStaged(c.Param("stagedId")); err != nil {
		respondEditorError(c, err)
		return
	}
	respondSnapshot(c, http.StatusOK, s)
}

// SetPrimary godoc
// @Summary Mark an attachment as the cover
// @Tags editor
// @Security BearerAuth
// @Param sessionId path string true "Session id"
// @Param mediaId path string true "Media id"
// @Success 200 {object} map[string]interface{}
// @Router /dashboard/editor/{sessionId}/media/{mediaId}/primary [put]
func (h *EditorHandler) SetPrimary(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.SetPrimary(c.Param("mediaId")); err != nil {
		respondEditorError(c, err)
		return
	}
	respondSnapshot(c, http.StatusOK, s)
}

// MarkDeleted godoc
// @Summary Stage a media deletion
// @Description The deletion is committed on save, not immediately
// @Tags editor
// @Security BearerAuth
// @Param sessionId path string true "Session id"
// @Param mediaId path string true "Media id"
// @Success 200 {object} map[string]interface{}
// @Router /dashboard/editor/{sessionId}/media/{mediaId}/delete [post]
func (h *EditorHandler) MarkDeleted(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.MarkDeleted(c.Param("mediaId")); err != nil {
		respondEditorError(c, err)
		return
	}
	respondSnapshot(c, http.StatusOK, s)
}

// RestoreMedia godoc
// @Summary Cancel a staged media deletion
// @Tags editor
// @Security BearerAuth
// @Param sessionId path string true "Session id"
// @Param mediaId path string true "Media id"
// @Success 200 {object} map[string]interface{}
// @Router /dashboard/editor/{sessionId}/media/{mediaId}/restore [post]
func (h *EditorHandler) RestoreMedia(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.Restore(c.Param("mediaId")); err != nil {
		respondEditorError(c, err)
		return
	}
	respondSnapshot(c, http.StatusOK, s)
}

// DeleteMedia godoc
// @Summary Hard-delete an attachment
// @Description Deletes on the backend immediately, bypassing staging
// @Tags editor
// @Security BearerAuth
// @Param sessionId path string true "Session id"
// @Param mediaId path string true "Media id"
// @Success 200 {object} map[string]interface{}
// @Router /dashboard/editor/{sessionId}/media/{mediaId} [delete]
func (h *EditorHandler) DeleteMedia(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.DeletePermanent(c.Request.Context(), c.Param("mediaId")); err != nil {
		respondEditorError(c, err)
		return
	}
	respondSnapshot(c, http.StatusOK, s)
}

// Save godoc
// @Summary Commit the session
// @Description Uploads staged media and persists the post
// @Tags editor
// @Security BearerAuth
// @Produce json
// @Param sessionId path string true "Session id"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /dashboard/editor/{sessionId}/save [post]
func (h *EditorHandler) Save(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	userID := middleware.UserID(c)

	result, err := s.Save(c.Request.Context())
	if err != nil {
		respondEditorError(c, err)
		return
	}

	var post *models.Ootd = result.Post
	if influencer, err := h.users.GetInfluencerByUser(c.Request.Context(), userID); err == nil && influencer != nil {
		h.storefront.InvalidateHandle(c.Request.Context(), influencer.Handle)
		eventType := events.EventPostUpdated
		if result.Created {
			eventType = events.EventPostCreated
		}
		entityID := ""
		if post != nil {
			entityID = post.ID
		}
		h.publisher.Publish(eventType, userID, influencer.Handle, entityID)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       post,
		"fileErrors": result.FileErrors,
	})
}
