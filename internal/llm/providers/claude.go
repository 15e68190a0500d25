package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"applyflow/internal/config"
	"applyflow/internal/llm/processors"
	"applyflow/internal/logging"
	"applyflow/pkg/models"
	"applyflow/pkg/utils"
)

// ClaudeProvider implements the LLM provider interface using Anthropic's Claude
type ClaudeProvider struct {
	client    anthropic.Client
	config    *config.Config
	sanitizer *processors.MarkupSanitizer
}

// NewClaudeProvider creates a new Claude provider instance
func NewClaudeProvider(cfg *config.Config) *ClaudeProvider {
	client := anthropic.NewClient(
		option.WithAPIKey(cfg.LLM.APIKey),
	)

	return &ClaudeProvider{
		client:    client,
		config:    cfg,
		sanitizer: processors.NewMarkupSanitizer(cfg.Engine.MarkupLimit),
	}
}

// AnalyzeFormStructure derives the form schema for a page using Claude
func (cp *ClaudeProvider) AnalyzeFormStructure(ctx context.Context, markup, url string) (*models.FormSchema, error) {
	startTime := time.Now()
	logger := logging.GetGlobalLogger()

	logger.Info("Starting form structure analysis with Claude", map[string]interface{}{
		"url":           url,
		"markup_length": len(markup),
		"provider":      "claude",
	})

	cleaned, err := cp.sanitizer.ExtractFormMarkup(markup)
	if err != nil {
		return nil, fmt.Errorf("failed to sanitize markup: %w", err)
	}

	prompt := buildStructurePrompt(cleaned)

	responseText, err := cp.complete(ctx, prompt)
	if err != nil {
		return nil, utils.NewLLMError(err.Error())
	}

	schema, err := ParseSchemaResponse(responseText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Claude response: %w", err)
	}

	logger.Info("Form structure analysis completed", map[string]interface{}{
		"url":             url,
		"field_count":     len(schema.Fields),
		"has_submit":      schema.HasSubmit(),
		"processing_time": time.Since(startTime),
		"provider":        "claude",
	})

	return schema, nil
}

// GenerateFieldValues maps the candidate profile onto schema fields using Claude
func (cp *ClaudeProvider) GenerateFieldValues(ctx context.Context, schema *models.FormSchema, profile models.CandidateProfile) (models.FillValues, error) {
	startTime := time.Now()
	logger := logging.GetGlobalLogger()

	logger.Info("Generating field values with Claude", map[string]interface{}{
		"field_count": len(schema.Fields),
		"provider":    "claude",
	})

	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to encode candidate profile: %w", err)
	}

	schemaJSON, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to encode form schema: %w", err)
	}

	prompt := buildValuesPrompt(string(profileJSON), string(schemaJSON))

	responseText, err := cp.complete(ctx, prompt)
	if err != nil {
		return nil, utils.NewLLMError(err.Error())
	}

	values, err := ParseValuesResponse(responseText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Claude response: %w", err)
	}

	logger.Info("Field value generation completed", map[string]interface{}{
		"value_count":     len(values),
		"processing_time": time.Since(startTime),
		"provider":        "claude",
	})

	return values, nil
}

// complete sends a single-turn prompt to Claude and returns the text response
func (cp *ClaudeProvider) complete(ctx context.Context, prompt string) (string, error) {
	response, err := cp.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(cp.config.LLM.Model),
		MaxTokens:   int64(cp.config.LLM.MaxTokens),
		Temperature: anthropic.Float(float64(cp.config.LLM.Temperature)),
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: prompt},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	})
	if err != nil {
		return "", err
	}

	if len(response.Content) == 0 {
		return "", fmt.Errorf("empty response from Claude")
	}

	var responseText string
	for _, content := range response.Content {
		textContent := content.AsText()
		responseText = textContent.Text
		break
	}

	if responseText == "" {
		return "", fmt.Errorf("no text content in Claude response")
	}

	return responseText, nil
}

// buildStructurePrompt creates the prompt asking Claude to derive the form schema
func buildStructurePrompt(markup string) string {
	return fmt.Sprintf(`You are a browser automation expert. Analyze the provided HTML form.
Identify all input fields for a job application AND the final submit button.

Return a JSON object with two keys: "fields" and "submit_button".

1. "fields": A list of JSON objects, where each object has:
   - "label": The human readable label (e.g., "First Name").
   - "selector": A precise CSS selector (prefer ID, Name, or data-attributes).
   - "type": One of ["text", "email", "file", "textarea", "select", "radio", "checkbox"].
   - "required": Boolean (true or false).

2. "submit_button": A single JSON object with:
   - "text": The visible text on the button.
   - "selector": A precise CSS selector.

RULES FOR DETERMINING "required":
- Set "required": true if the input has the HTML attribute 'required'.
- Set "required": true if the input has 'aria-required="true"'.
- Set "required": true if the label text contains an asterisk (*).
- Otherwise, set "required": false.

CRITICAL RULES FOR OPTIONS:
- If "type" is "select" or "radio", you MUST extract the available options into an "options" list.
- "options" MUST be a list of {"text": "Visible Text", "value": "html_value_attribute"}.

Return ONLY valid JSON, no additional text or explanation.

HTML TO ANALYZE:
%s`, markup)
}

// buildValuesPrompt creates the prompt asking Claude to map profile data to fields
func buildValuesPrompt(profileJSON, schemaJSON string) string {
	return fmt.Sprintf(`You are a job application assistant.
Map the candidate's profile to the form fields provided.

Candidate Profile:
%s

Rules:
1. Return JSON: { "field_label": "value_to_fill" }
2. If a field is marked "required": true in the form structure, you MUST generate a valid answer based on the profile, even if imperfect.
3. If a field is NOT required and the data is missing from the profile, return "N/A".
4. For "select" or "radio" fields, the "options" are provided.
   You MUST choose the best option and return its corresponding "value" attribute.
   Example: if options contain {"text": "Black or African American", "value": "B"}
   and the profile says "Ethiopian", you return "B".
5. For "select" fields, if no option matches, return the "value" of the first option
   (it's often "Select..." or empty).
6. For file uploads ("Resume/CV"), return the exact "resume_path" from the profile.
7. For "Why do you want to work here?", "Salary Expectation", or "Additional Information",
   use the "resume_text" and other profile info to generate a short, professional answer.
8. For unknown fields or EEO questions (Gender, Race, Veteran) where the profile
   doesn't specify, return "N/A" to skip them.

Return ONLY valid JSON, no additional text or explanation.

Form Structure:
%s`, profileJSON, schemaJSON)
}

// stripMarkdownFences removes markdown code blocks wrapping a JSON payload
func stripMarkdownFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimSuffix(text, "```")
		text = strings.TrimSpace(text)
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
		text = strings.TrimSpace(text)
	}
	return text
}

// ParseSchemaResponse decodes a Claude schema response into a FormSchema
func ParseSchemaResponse(responseText string) (*models.FormSchema, error) {
	responseText = stripMarkdownFences(responseText)

	var schema models.FormSchema
	if err := json.Unmarshal([]byte(responseText), &schema); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response from Claude: %w, response: %s", err, responseText)
	}

	return &schema, nil
}

// ParseValuesResponse decodes a Claude values response into FillValues. The
// model occasionally emits numbers or booleans for text fields, so values are
// coerced to strings rather than rejected.
func ParseValuesResponse(responseText string) (models.FillValues, error) {
	responseText = stripMarkdownFences(responseText)

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(responseText), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response from Claude: %w, response: %s", err, responseText)
	}

	values := make(models.FillValues, len(raw))
	for label, value := range raw {
		switch v := value.(type) {
		case string:
			values[label] = v
		case float64:
			values[label] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			values[label] = strconv.FormatBool(v)
		case nil:
			values[label] = models.SkipSentinel
		default:
			encoded, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("unsupported value for field %q: %v", label, value)
			}
			values[label] = string(encoded)
		}
	}

	return values, nil
}

// IsHealthy checks if the Claude provider is healthy and available
func (cp *ClaudeProvider) IsHealthy(ctx context.Context) error {
	if cp.config.LLM.APIKey == "" {
		return fmt.Errorf("Claude API key not configured - set LLM_API_KEY environment variable")
	}

	_, err := cp.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(cp.config.LLM.Model),
		MaxTokens: 500,
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: "Hello"},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	})

	if err != nil {
		return fmt.Errorf("Claude API health check failed: %w", err)
	}

	return nil
}

// GetProviderName returns the name of the LLM provider
func (cp *ClaudeProvider) GetProviderName() string {
	return "claude"
}
