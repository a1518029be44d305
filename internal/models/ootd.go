package models

// MediaType distinguishes photo and video attachments
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

// MediaLimits bound what a single post may carry
var MediaLimits = struct {
	MaxPerPost   int
	MaxImageSize int64
	MaxVideoSize int64
}{
	MaxPerPost:   4,
	MaxImageSize: 10 * 1024 * 1024,
	MaxVideoSize: 50 * 1024 * 1024,
}

// OotdMedia is a media attachment on a post. Within one post at most one
// non-deleted entry has IsPrimary set.
type OotdMedia struct {
	ID        string    `json:"id"`
	OotdID    string    `json:"ootdId"`
	Type      MediaType `json:"type"`
	URL       string    `json:"url"`
	IsPrimary bool      `json:"isPrimary"`
	CreatedAt string    `json:"createdAt"`
	UpdatedAt string    `json:"updatedAt"`
}

// OotdProduct links a product to a post with a 1-based display position
// unique and contiguous within the post.
type OotdProduct struct {
	ID        string   `json:"id"`
	OotdID    string   `json:"ootdId"`
	ProductID string   `json:"productId"`
	Note      string   `json:"note"`
	Position  int      `json:"position"`
	Product   *Product `json:"product,omitempty"`
}

// Ootd is an outfit-of-the-day post
type Ootd struct {
	ID               string        `json:"id"`
	InfluencerID     string        `json:"influencerId"`
	Title            string        `json:"title"`
	Description      string        `json:"description"`
	URLPostInstagram string        `json:"urlPostInstagram"`
	Mood             []string      `json:"mood"`
	IsPublic         bool          `json:"isPublic"`
	ViewCount        int           `json:"viewCount"`
	LikeCount        int           `json:"likeCount"`
	CreatedAt        string        `json:"createdAt"`
	UpdatedAt        string        `json:"updatedAt"`
	Media            []OotdMedia   `json:"media"`
	OotdProducts     []OotdProduct `json:"ootdProducts"`
	Influencer       *Influencer   `json:"influencer,omitempty"`
}

// PrimaryMedia returns the primary attachment, or the first one when the
// backend sent no primary flag at all.
func (o Ootd) PrimaryMedia() *OotdMedia {
	for i := range o.Media {
		if o.Media[i].IsPrimary {
			return &o.Media[i]
		}
	}
	if len(o.Media) > 0 {
		return &o.Media[0]
	}
	return nil
}

// OotdProductInput is one product entry in a post creation payload
type OotdProductInput struct {
	ID       string `json:"id"`
	Note     string `json:"note"`
	Position int    `json:"position"`
}

// OotdMediaInput is one media entry in a post update payload
type OotdMediaInput struct {
	Type      MediaType `json:"type"`
	URL       string    `json:"url"`
	IsPrimary bool      `json:"isPrimary"`
}

// CreateOotdRequest creates a post with its products and any URL-sourced
// media supplied inline
type CreateOotdRequest struct {
	UserID           string             `json:"userId,omitempty"`
	Title            string             `json:"title"`
	Description      string             `json:"description,omitempty"`
	URLPostInstagram string             `json:"urlPostInstagram,omitempty"`
	Mood             []string           `json:"mood,omitempty"`
	IsPublic         bool               `json:"isPublic"`
	Products         []OotdProductInput `json:"products"`
	Media            []OotdMediaInput   `json:"media,omitempty"`
}

// UpdateOotdRequest updates post fields plus the surviving media set;
// DeleteMediaIDs carries staged deletions committed with this save.
type UpdateOotdRequest struct {
	Title            string           `json:"title"`
	Description      string           `json:"description,omitempty"`
	URLPostInstagram string           `json:"urlPostInstagram,omitempty"`
	Mood             []string         `json:"mood,omitempty"`
	IsPublic         bool             `json:"isPublic"`
	Media            []OotdMediaInput `json:"media,omitempty"`
	DeleteMediaIDs   []string         `json:"deleteMediaIds,omitempty"`
}

// AttachProductRequest attaches one product to an existing post
type AttachProductRequest struct {
	ProductID string `json:"productId"`
	Note      string `json:"note"`
	Position  int    `json:"position"`
}

// ReorderProductsRequest persists a full position assignment for a post
type ReorderProductsRequest struct {
	Positions []ProductPosition `json:"positions"`
}

// ProductPosition pairs a product with its new position
type ProductPosition struct {
	ProductID string `json:"productId"`
	Position  int    `json:"position"`
}

// MediaUploadResult is the backend's bulk upload outcome: successes are
// committed even when some files fail.
type MediaUploadResult struct {
	Uploaded []OotdMedia      `json:"uploaded"`
	Count    int              `json:"count"`
	Errors   []MediaFileError `json:"errors"`
}

// MediaFileError reports one failed file in a bulk upload
type MediaFileError struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

// OotdResponse wraps a single post
type OotdResponse struct {
	Success bool  `json:"success"`
	Data    *Ootd `json:"data"`
}

// OotdListResponse wraps a post page
type OotdListResponse struct {
	Success bool      `json:"success"`
	Data    []Ootd    `json:"data"`
	Meta    *ListMeta `json:"meta,omitempty"`
}
