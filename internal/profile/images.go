// Package profile hosts influencer profile images on Cloudinary. Post
// media goes through the backend's own pipeline; only avatars and
// banners are uploaded from here.
package profile

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	log "github.com/sirupsen/logrus"
)

// ErrImagesDisabled is returned when no Cloudinary credentials are set
var ErrImagesDisabled = errors.New("profile image hosting is not configured")

// Images uploads and removes profile images. A nil *Images is a
// disabled service.
type Images struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewImages creates the image service from a CLOUDINARY_URL. An empty
// URL returns nil: profile image endpoints then reply that hosting is
// disabled instead of failing at startup.
func NewImages(cloudinaryURL string) (*Images, error) {
	if cloudinaryURL == "" {
		return nil, nil
	}
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}
	return &Images{cld: cld, folder: "lookbook/profiles"}, nil
}

// Upload stores one image and returns its public URL and id
func (i *Images) Upload(ctx context.Context, r io.Reader) (url, publicID string, err error) {
	if i == nil {
		return "", "", ErrImagesDisabled
	}
	result, err := i.cld.Upload.Upload(ctx, r, uploader.UploadParams{Folder: i.folder})
	if err != nil {
		return "", "", fmt.Errorf("upload failed: %w", err)
	}
	return result.SecureURL, result.PublicID, nil
}

// Destroy removes a previously uploaded image. Best effort: a stale
// public id is logged, not surfaced.
func (i *Images) Destroy(ctx context.Context, publicID string) {
	if i == nil || publicID == "" {
		return
	}
	if _, err := i.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		log.WithError(err).WithField("publicId", publicID).Warn("failed to remove old profile image")
	}
}
