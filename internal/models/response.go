package models

// PaginatedResponse is a single page of a collection. Next and Previous are
// opaque cursors and are never interpreted.
type PaginatedResponse[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// ActionResponse is returned by the activate and deactivate actions
type ActionResponse struct {
	Status string `json:"status"`
	User   User   `json:"user"`
}

// ListParams holds the optional query parameters of the list endpoint
type ListParams struct {
	Search   string
	IsActive *bool
	Page     int
}
