package llm

import (
	"context"

	"applyflow/pkg/models"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// AnalyzeFormStructure derives a form schema from sanitized page markup
	AnalyzeFormStructure(ctx context.Context, markup, url string) (*models.FormSchema, error)

	// GenerateFieldValues maps a candidate profile onto the schema's fields
	GenerateFieldValues(ctx context.Context, schema *models.FormSchema, profile models.CandidateProfile) (models.FillValues, error)

	// IsHealthy checks if the LLM provider is healthy and available
	IsHealthy(ctx context.Context) error

	// GetProviderName returns the name of the LLM provider
	GetProviderName() string
}
