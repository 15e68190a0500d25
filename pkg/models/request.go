package models

import "time"

// ApplyRequest represents the request payload for an application run
type ApplyRequest struct {
	URL     string           `json:"url" validate:"required,url"`
	Profile CandidateProfile `json:"profile" validate:"required"`
	Options *ApplyOptions    `json:"options,omitempty"`
}

// ApplyOptions provides additional configuration for application requests
type ApplyOptions struct {
	Timeout     time.Duration `json:"timeout,omitempty"`      // Request timeout
	LLMProvider string        `json:"llm_provider,omitempty"` // "claude"
	ResumePath  string        `json:"resume_path,omitempty"`  // Overrides the profile resume path
}

// ConfirmRequest represents the resolution of a pending submission gate
type ConfirmRequest struct {
	Confirm bool `json:"confirm"`
}
