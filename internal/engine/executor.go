package engine

import (
	"context"
	"fmt"
	"regexp"

	"applyflow/internal/logging"
	"applyflow/pkg/models"
)

// radioNamePattern extracts the group name from selectors like
// [name='applicant[veteran]'] or input[name="gender"]
var radioNamePattern = regexp.MustCompile(`\[name=['"]?([^'"\]]+?)['"]?\]`)

// Executor fills a form field by field. A failure on one field is recorded
// and the remaining fields still get their attempt; the executor itself never
// returns an error.
type Executor struct {
	surface Surface
}

// NewExecutor creates an executor over a browser surface
func NewExecutor(surface Surface) *Executor {
	return &Executor{surface: surface}
}

// Fill applies the value plan to the page and returns the per-field report
func (e *Executor) Fill(ctx context.Context, schema *models.FormSchema, values models.FillValues) *models.FillReport {
	logger := logging.GetGlobalLogger()
	report := &models.FillReport{}

	for _, field := range schema.Fields {
		if err := ctx.Err(); err != nil {
			report.Add(field, models.FieldSkipped, err.Error())
			continue
		}

		if field.Label == "" || field.Selector == "" || field.Kind == "" {
			logger.Warn("Skipping malformed field", map[string]interface{}{
				"label":    field.Label,
				"selector": field.Selector,
			})
			report.Add(field, models.FieldSkipped, "malformed field")
			continue
		}

		value, ok := values[field.Label]
		if !ok || value == "" || value == models.SkipSentinel {
			logger.Info("Skipping field", map[string]interface{}{
				"label": field.Label,
			})
			report.Add(field, models.FieldSkipped, "no value to fill")
			continue
		}

		logger.Info("Filling field", map[string]interface{}{
			"label": field.Label,
			"kind":  string(field.Kind),
		})

		status, reason := e.fillField(field, value)
		if status == models.FieldFailed {
			logger.Error("Failed to fill field", map[string]interface{}{
				"label":    field.Label,
				"selector": field.Selector,
				"reason":   reason,
			})
		}
		report.Add(field, status, reason)
	}

	return report
}

func (e *Executor) fillField(field models.FieldSpec, value string) (models.FieldStatus, string) {
	switch field.Kind {
	case models.FieldFile:
		if err := e.surface.SetFiles(field.Selector, []string{value}); err != nil {
			return models.FieldFailed, err.Error()
		}
		return models.FieldFilled, ""

	case models.FieldSelect:
		return e.fillSelect(field, value)

	case models.FieldRadio:
		return e.fillRadio(field, value)

	default:
		// text, email, textarea, checkbox, and anything unrecognized all
		// take the clear-and-type path
		if err := e.surface.SetValue(field.Selector, value); err != nil {
			return models.FieldFailed, err.Error()
		}
		return models.FieldFilled, ""
	}
}

// fillSelect matches by option value first, then by visible text
func (e *Executor) fillSelect(field models.FieldSpec, value string) (models.FieldStatus, string) {
	matched, err := e.surface.SelectByValue(field.Selector, value)
	if err != nil {
		return models.FieldFailed, err.Error()
	}
	if matched {
		return models.FieldFilled, ""
	}

	matched, err = e.surface.SelectByText(field.Selector, value)
	if err != nil {
		return models.FieldFailed, err.Error()
	}
	if matched {
		return models.FieldFilled, ""
	}

	return models.FieldFailed, fmt.Sprintf("no option matching %q", value)
}

// fillRadio resolves the group name from the schema selector and clicks the
// specific input carrying the chosen value
func (e *Executor) fillRadio(field models.FieldSpec, value string) (models.FieldStatus, string) {
	match := radioNamePattern.FindStringSubmatch(field.Selector)
	if match == nil {
		return models.FieldFailed, fmt.Sprintf("could not parse name from radio selector %q", field.Selector)
	}

	optionSelector := fmt.Sprintf("input[name='%s'][value='%s']", match[1], value)
	if err := e.surface.ScriptClick(optionSelector); err != nil {
		return models.FieldFailed, err.Error()
	}
	return models.FieldFilled, ""
}
