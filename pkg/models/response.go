package models

import "time"

// ApplyResponse represents the synchronous response from an apply request
type ApplyResponse struct {
	Success        bool          `json:"success"`
	Outcome        *ApplyOutcome `json:"outcome,omitempty"`
	Error          string        `json:"error,omitempty"`
	ProcessingTime time.Duration `json:"processing_time"`
	RequestID      string        `json:"request_id"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Uptime    time.Duration     `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// PendingConfirmation represents one submission waiting for a human decision
type PendingConfirmation struct {
	ProcessID string      `json:"processId"`
	URL       string      `json:"url"`
	SiteKey   string      `json:"site_key"`
	Report    *FillReport `json:"report,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}

// PendingConfirmationListResponse represents the response for listing pending confirmations
type PendingConfirmationListResponse struct {
	Success bool                  `json:"success"`
	Pending []PendingConfirmation `json:"pending"`
	Count   int                   `json:"count"`
}

// CacheClearResponse represents the response of a schema cache invalidation
type CacheClearResponse struct {
	Success bool   `json:"success"`
	SiteKey string `json:"site_key"`
	Message string `json:"message"`
}
