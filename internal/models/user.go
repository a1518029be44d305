package models

// Role is the dashboard access level of a user
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Influencer is the public identity behind a storefront handle
type Influencer struct {
	ID          string            `json:"id"`
	UserID      string            `json:"userId"`
	Name        string            `json:"name"`
	Handle      string            `json:"handle"`
	Bio         *string           `json:"bio"`
	Avatar      *string           `json:"avatar"`
	Banner      *string           `json:"banner"`
	SocialLinks map[string]string `json:"socialLinks"`
	IsActive    bool              `json:"isActive"`
	CreatedAt   string            `json:"createdAt"`
	UpdatedAt   string            `json:"updatedAt"`
}

// User is a dashboard account as the backend reports it
type User struct {
	ID         string      `json:"id"`
	AuthUserID string      `json:"authUserId"`
	Role       Role        `json:"role"`
	LastLogin  *string     `json:"lastLogin"`
	CreatedAt  string      `json:"createdAt"`
	UpdatedAt  string      `json:"updatedAt"`
	Influencer *Influencer `json:"influencer"`
}

// UpdateInfluencerRequest is the dashboard profile edit payload
type UpdateInfluencerRequest struct {
	Name        *string           `json:"name,omitempty"`
	Bio         *string           `json:"bio,omitempty"`
	Avatar      *string           `json:"avatar,omitempty"`
	Banner      *string           `json:"banner,omitempty"`
	SocialLinks map[string]string `json:"socialLinks,omitempty"`
}

// CreateInfluencerRequest onboards a user into an influencer profile
type CreateInfluencerRequest struct {
	UserID      string            `json:"userId"`
	Name        string            `json:"name"`
	Handle      string            `json:"handle"`
	Bio         *string           `json:"bio,omitempty"`
	SocialLinks map[string]string `json:"socialLinks,omitempty"`
}

// UserResponse wraps a single user
type UserResponse struct {
	Success bool  `json:"success"`
	Data    *User `json:"data"`
}

// InfluencerResponse wraps a single influencer
type InfluencerResponse struct {
	Success bool        `json:"success"`
	Data    *Influencer `json:"data"`
}
