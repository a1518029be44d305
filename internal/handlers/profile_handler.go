package handlers

import (
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"lookbook-service/internal/clients"
	"lookbook-service/internal/events"
	"lookbook-service/internal/middleware"
	"lookbook-service/internal/models"
	"lookbook-service/internal/profile"
	"lookbook-service/internal/repository"
)

// maxProfileImageSize caps avatar and banner uploads
const maxProfileImageSize = 5 * 1024 * 1024

// ProfileHandler serves the dashboard account and influencer profile
type ProfileHandler struct {
	users      *clients.UsersClient
	images     *profile.Images
	storefront *repository.StorefrontRepository
	publisher  *events.Publisher
}

func NewProfileHandler(users *clients.UsersClient, images *profile.Images, storefront *repository.StorefrontRepository, publisher *events.Publisher) *ProfileHandler {
	return &ProfileHandler{
		users:      users,
		images:     images,
		storefront: storefront,
		publisher:  publisher,
	}
}

// GetMe godoc
// @Summary Current account
// @Description The authenticated user with their influencer profile
// @Tags profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.UserResponse
// @Router /dashboard/me [get]
func (h *ProfileHandler) GetMe(c *gin.Context) {
	user, err := h.users.GetUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondRemoteError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.UserResponse{Success: true, Data: user})
}

// UpdateProfile godoc
// @Summary Update my influencer profile
// @Tags profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param profile body models.UpdateInfluencerRequest true "Fields to change"
// @Success 200 {object} models.InfluencerResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /dashboard/profile [patch]
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID := middleware.UserID(c)

	var req models.UpdateInfluencerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	influencer, err := h.users.GetInfluencerByUser(c.Request.Context(), userID)
	if err != nil {
		respondRemoteError(c, err)
		return
	}
	if influencer == nil {
		respondNotFound(c, "no influencer profile for this account")
		return
	}

	updated, err := h.users.UpdateInfluencer(c.Request.Context(), influencer.ID, req)
	if err != nil {
		respondRemoteError(c, err)
		return
	}

	h.storefront.InvalidateHandle(c.Request.Context(), influencer.Handle)
	h.publisher.Publish(events.EventProfileUpdated, userID, influencer.Handle, influencer.ID)

	c.JSON(http.StatusOK, models.InfluencerResponse{Success: true, Data: updated})
}

// CreateProfile godoc
// @Summary Create my influencer profile
// @Description Onboards the account into a storefront handle
// @Tags profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param profile body models.CreateInfluencerRequest true "Profile"
// @Success 201 {object} models.InfluencerResponse
// @Router /dashboard/profile [post]
func (h *ProfileHandler) CreateProfile(c *gin.Context) {
	userID := middleware.UserID(c)

	var req models.CreateInfluencerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}
	if req.Name == "" || req.Handle == "" {
		respondValidationError(c, "name and handle are required")
		return
	}
	req.UserID = userID

	influencer, err := h.users.CreateInfluencer(c.Request.Context(), req)
	if err != nil {
		respondRemoteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.InfluencerResponse{Success: true, Data: influencer})
}

// UploadAvatar godoc
// @Summary Upload a profile avatar
// @Tags profile
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image file"
// @Success 200 {object} models.InfluencerResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /dashboard/profile/avatar [post]
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	h.uploadImage(c, func(url string) models.UpdateInfluencerRequest {
		return models.UpdateInfluencerRequest{Avatar: &url}
	}, func(i *models.Influencer) *string { return i.Avatar })
}

// UploadBanner godoc
// @Summary Upload a profile banner
// @Tags profile
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image file"
// @Success 200 {object} models.InfluencerResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /dashboard/profile/banner [post]
func (h *ProfileHandler) UploadBanner(c *gin.Context) {
	h.uploadImage(c, func(url string) models.UpdateInfluencerRequest {
		return models.UpdateInfluencerRequest{Banner: &url}
	}, func(i *models.Influencer) *string { return i.Banner })
}

func (h *ProfileHandler) uploadImage(c *gin.Context, buildUpdate func(url string) models.UpdateInfluencerRequest, current func(*models.Influencer) *string) {
	userID := middleware.UserID(c)

	fh, err := c.FormFile("file")
	if err != nil {
		respondValidationError(c, "an image file is required")
		return
	}
	if fh.Size > maxProfileImageSize {
		respondValidationError(c, "profile images are limited to 5MB")
		return
	}
	if !strings.HasPrefix(fh.Header.Get("Content-Type"), "image/") {
		respondValidationError(c, "profile images must be image files")
		return
	}

	influencer, err := h.users.GetInfluencerByUser(c.Request.Context(), userID)
	if err != nil {
		respondRemoteError(c, err)
		return
	}
	if influencer == nil {
		respondNotFound(c, "no influencer profile for this account")
		return
	}

	file, err := fh.Open()
	if err != nil {
		respondValidationError(c, "could not read image file")
		return
	}
	defer file.Close()

	url, _, err := h.images.Upload(c.Request.Context(), file)
	if err != nil {
		if err == profile.ErrImagesDisabled {
			respondError(c, http.StatusServiceUnavailable, "IMAGES_DISABLED", err.Error())
			return
		}
		respondError(c, http.StatusBadGateway, "UPLOAD_FAILED", "image host is unavailable")
		return
	}

	old := current(influencer)

	updated, err := h.users.UpdateInfluencer(c.Request.Context(), influencer.ID, buildUpdate(url))
	if err != nil {
		respondRemoteError(c, err)
		return
	}

	// the replaced image is garbage now
	if old != nil {
		h.images.Destroy(c.Request.Context(), publicIDFromURL(*old))
	}

	h.storefront.InvalidateHandle(c.Request.Context(), influencer.Handle)
	h.publisher.Publish(events.EventProfileUpdated, userID, influencer.Handle, influencer.ID)

	c.JSON(http.StatusOK, models.InfluencerResponse{Success: true, Data: updated})
}

// publicIDFromURL recovers a Cloudinary public id from a delivery URL:
// everything after the version segment, without the extension. Returns
// "" for URLs that are not Cloudinary deliveries.
func publicIDFromURL(url string) string {
	idx := strings.Index(url, "/upload/")
	if idx < 0 {
		return ""
	}
	rest := url[idx+len("/upload/"):]
	if slash := strings.Index(rest, "/"); slash >= 0 && strings.HasPrefix(rest, "v") {
		rest = rest[slash+1:]
	}
	ext := path.Ext(rest)
	return strings.TrimSuffix(rest, ext)
}
