package models

// Error represents an API error payload
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// ErrorResponse is the envelope for failed requests
type ErrorResponse struct {
	Success bool  `json:"success"`
	Error   Error `json:"error"`
}

// PaginationInfo describes the page window of a list response
type PaginationInfo struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	HasNext     bool  `json:"hasNext"`
	HasPrevious bool  `json:"hasPrevious"`
}

// ListMeta is the pagination block the lookbook backend returns on list endpoints
type ListMeta struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
}
