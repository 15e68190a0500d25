package engine

import (
	"context"
	"fmt"
	"strings"

	"applyflow/internal/logging"
	"applyflow/pkg/models"
)

// ValueService maps a candidate profile onto schema fields
type ValueService interface {
	GenerateFieldValues(ctx context.Context, schema *models.FormSchema, profile models.CandidateProfile) (models.FillValues, error)
}

// Generator produces the fill plan for a schema. After the LLM pass it
// enforces the required-field guarantee: a required field is filled from a
// deterministic fallback where one exists, and never carries the skip
// sentinel in the output.
type Generator struct {
	llm ValueService
}

// NewGenerator creates a generator over the given LLM service
func NewGenerator(llm ValueService) *Generator {
	return &Generator{llm: llm}
}

// Values returns the value to fill for each field label
func (g *Generator) Values(ctx context.Context, schema *models.FormSchema, profile models.CandidateProfile) (models.FillValues, error) {
	values, err := g.llm.GenerateFieldValues(ctx, schema, profile)
	if err != nil {
		return nil, err
	}

	logger := logging.GetGlobalLogger()

	for _, field := range schema.Fields {
		if !field.Required {
			continue
		}
		value, ok := values[field.Label]
		if ok && value != "" && value != models.SkipSentinel {
			continue
		}

		fallback, found := fallbackValue(field, profile)
		if !found {
			logger.Warn("No value available for required field", map[string]interface{}{
				"label": field.Label,
				"kind":  string(field.Kind),
			})
			// A required field never carries the sentinel; dropping the
			// entry leaves the field skipped instead of filled with "N/A".
			delete(values, field.Label)
			continue
		}

		logger.Info("Using fallback value for required field", map[string]interface{}{
			"label": field.Label,
			"kind":  string(field.Kind),
		})
		values[field.Label] = fallback
	}

	return values, nil
}

// fallbackValue derives a deterministic value for a required field the LLM
// declined to answer
func fallbackValue(field models.FieldSpec, profile models.CandidateProfile) (string, bool) {
	if field.Kind.IsChoice() {
		if len(field.Options) > 0 {
			return field.Options[0].Value, true
		}
		return "", false
	}

	if field.Kind == models.FieldFile {
		if path, ok := profileString(profile, "resume_path"); ok {
			return path, true
		}
		return "", false
	}

	if value, ok := profileString(profile, normalizeLabel(field.Label)); ok {
		return value, true
	}

	return "", false
}

// profileString looks up a profile key and coerces the value to a string
func profileString(profile models.CandidateProfile, key string) (string, bool) {
	for k, v := range profile {
		if normalizeLabel(k) != key {
			continue
		}
		if v == nil {
			return "", false
		}
		if s, ok := v.(string); ok {
			if s == "" {
				return "", false
			}
			return s, true
		}
		return fmt.Sprintf("%v", v), true
	}
	return "", false
}

// normalizeLabel lowercases a label and collapses separators so "First Name"
// matches a profile key like "first_name"
func normalizeLabel(label string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(label)) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
