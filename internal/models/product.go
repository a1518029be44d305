package models

import "strconv"

// Platform identifies a commerce platform a product is listed on
type Platform string

const (
	PlatformShopee    Platform = "shopee"
	PlatformTokopedia Platform = "tokopedia"
	PlatformTikTok    Platform = "tiktok"
	PlatformInstagram Platform = "instagram"
	PlatformOther     Platform = "other"
)

// KnownPlatforms is the closed set of accepted platform identifiers
var KnownPlatforms = []Platform{
	PlatformShopee,
	PlatformTokopedia,
	PlatformTikTok,
	PlatformInstagram,
	PlatformOther,
}

// IsValid reports whether p belongs to the known platform set
func (p Platform) IsValid() bool {
	for _, known := range KnownPlatforms {
		if p == known {
			return true
		}
	}
	return false
}

// PlatformListing is a per-platform listing attached to a product.
// A listing with no link is displayed but not clickable.
type PlatformListing struct {
	ID          string   `json:"id"`
	ProductID   string   `json:"productId"`
	Platform    Platform `json:"platform"`
	Price       *string  `json:"price"`
	Link        *string  `json:"link"`
	Clicks      int      `json:"clicks"`
	LastUpdated string   `json:"lastUpdated"`
}

// Purchasable reports whether the listing carries an outbound link
func (l PlatformListing) Purchasable() bool {
	return l.Link != nil && *l.Link != ""
}

// Product is an affiliate catalog item owned by one influencer.
// Price arrives as a string from the backend; use NumericPrice for math.
type Product struct {
	ID            string            `json:"id"`
	InfluencerID  string            `json:"influencerId"`
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	Price         string            `json:"price"`
	Category      string            `json:"category"`
	Tags          []string          `json:"tags"`
	Image         string            `json:"image"`
	AffiliateLink *string           `json:"affiliateLink"`
	Clicks        int               `json:"clicks"`
	LastUpdated   string            `json:"lastUpdated"`
	CreatedAt     string            `json:"createdAt"`
	UpdatedAt     string            `json:"updatedAt"`
	Platforms     []PlatformListing `json:"platforms"`
}

// NumericPrice parses the backend's string price. ok is false when the
// price is absent or unparseable; callers decide how to degrade.
func (p Product) NumericPrice() (float64, bool) {
	if p.Price == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(p.Price, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// DisplayCategory maps an absent category to the Others bucket
func (p Product) DisplayCategory() string {
	if p.Category == "" {
		return "Others"
	}
	return p.Category
}

// PlatformListingInput is the payload for creating a platform listing
type PlatformListingInput struct {
	Platform Platform `json:"platform" binding:"required"`
	Price    *string  `json:"price,omitempty"`
	Link     *string  `json:"link,omitempty"`
}

// CreateProductRequest is the dashboard payload for creating a product
type CreateProductRequest struct {
	Name          string                 `json:"name" binding:"required"`
	Description   *string                `json:"description,omitempty"`
	Price         *string                `json:"price,omitempty"`
	Category      *string                `json:"category,omitempty"`
	Tags          []string               `json:"tags,omitempty"`
	Image         *string                `json:"image,omitempty"`
	AffiliateLink *string                `json:"affiliateLink,omitempty"`
	Platforms     []PlatformListingInput `json:"platforms,omitempty"`
}

// UpdateProductRequest is the dashboard payload for partial product updates
type UpdateProductRequest struct {
	Name          *string  `json:"name,omitempty"`
	Description   *string  `json:"description,omitempty"`
	Price         *string  `json:"price,omitempty"`
	Category      *string  `json:"category,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	Image         *string  `json:"image,omitempty"`
	AffiliateLink *string  `json:"affiliateLink,omitempty"`
}

// UpdatePlatformListingRequest updates one platform listing in place
type UpdatePlatformListingRequest struct {
	Platform Platform `json:"platform" binding:"required"`
	Price    *string  `json:"price,omitempty"`
	Link     *string  `json:"link,omitempty"`
}

// ProductResponse wraps a single product
type ProductResponse struct {
	Success bool     `json:"success"`
	Data    *Product `json:"data"`
}

// ProductListResponse wraps a product page
type ProductListResponse struct {
	Success    bool            `json:"success"`
	Data       []Product       `json:"data"`
	Pagination *PaginationInfo `json:"pagination,omitempty"`
}
