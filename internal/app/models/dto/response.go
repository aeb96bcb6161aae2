package dto

import "time"

// APIResponse wraps payloads of the auth, dashboard and assistant endpoints.
type APIResponse struct {
	Success   bool         `json:"success" example:"true"`
	Data      interface{}  `json:"data,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// NewAPIResponse wraps data in a successful envelope
func NewAPIResponse(data interface{}) APIResponse {
	return APIResponse{Success: true, Data: data, Timestamp: time.Now()}
}

// MessageResponse confirms an operation that returns no record.
type MessageResponse struct {
	Message string `json:"message" example:"Institution deleted successfully"`
}

// Pagination describes one page of a listing. Pages is ceil(Total/Limit).
type Pagination struct {
	Page  int   `json:"page" example:"1"`
	Limit int   `json:"limit" example:"10"`
	Total int64 `json:"total" example:"42"`
	Pages int   `json:"pages" example:"5"`
}

// ListResponse is the body of every collection listing.
type ListResponse[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}
