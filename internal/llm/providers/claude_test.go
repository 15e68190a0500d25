package providers

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"applyflow/pkg/models"
)

const schemaJSON = `{
  "fields": [
    {
      "label": "Email",
      "selector": "#email",
      "type": "email",
      "required": true
    },
    {
      "label": "Country",
      "selector": "select[name='country']",
      "type": "select",
      "required": false,
      "options": [
        {"text": "United States", "value": "us"},
        {"text": "Canada", "value": "ca"}
      ]
    }
  ],
  "submit_button": {
    "text": "Submit Application",
    "selector": "button[type='submit']"
  }
}`

func wantSchema() *models.FormSchema {
	return &models.FormSchema{
		Fields: []models.FieldSpec{
			{Label: "Email", Selector: "#email", Kind: models.FieldEmail, Required: true},
			{
				Label:    "Country",
				Selector: "select[name='country']",
				Kind:     models.FieldSelect,
				Options: []models.FieldOption{
					{Text: "United States", Value: "us"},
					{Text: "Canada", Value: "ca"},
				},
			},
		},
		Submit: &models.SubmitSpec{Text: "Submit Application", Selector: "button[type='submit']"},
	}
}

func TestParseSchemaResponse(t *testing.T) {
	schema, err := ParseSchemaResponse(schemaJSON)
	if err != nil {
		t.Fatalf("ParseSchemaResponse() error = %v", err)
	}
	if diff := cmp.Diff(wantSchema(), schema); diff != "" {
		t.Errorf("schema mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSchemaResponseWithMarkdownFences(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"json fence", "```json\n" + schemaJSON + "\n```"},
		{"bare fence", "```\n" + schemaJSON + "\n```"},
		{"leading whitespace", "\n\n  " + schemaJSON},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			schema, err := ParseSchemaResponse(tc.text)
			if err != nil {
				t.Fatalf("ParseSchemaResponse() error = %v", err)
			}
			if diff := cmp.Diff(wantSchema(), schema); diff != "" {
				t.Errorf("schema mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseSchemaResponseInvalidJSON(t *testing.T) {
	if _, err := ParseSchemaResponse("I could not find a form on this page."); err == nil {
		t.Fatal("ParseSchemaResponse() error = nil, want parse failure")
	}
}

func TestParseValuesResponse(t *testing.T) {
	text := `{
  "First Name": "Ada",
  "Years of Experience": 7,
  "Remote OK": true,
  "Gender": null,
  "Veteran Status": "N/A"
}`

	values, err := ParseValuesResponse(text)
	if err != nil {
		t.Fatalf("ParseValuesResponse() error = %v", err)
	}

	want := models.FillValues{
		"First Name":          "Ada",
		"Years of Experience": "7",
		"Remote OK":           "true",
		"Gender":              models.SkipSentinel,
		"Veteran Status":      models.SkipSentinel,
	}
	if diff := cmp.Diff(want, values); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestParseValuesResponseWithFences(t *testing.T) {
	values, err := ParseValuesResponse("```json\n{\"Email\": \"ada@example.com\"}\n```")
	if err != nil {
		t.Fatalf("ParseValuesResponse() error = %v", err)
	}
	if values["Email"] != "ada@example.com" {
		t.Errorf("Email = %q", values["Email"])
	}
}

func TestParseValuesResponseInvalidJSON(t *testing.T) {
	if _, err := ParseValuesResponse("not json"); err == nil {
		t.Fatal("ParseValuesResponse() error = nil, want parse failure")
	}
}

func TestStripMarkdownFences(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"```json\n{}\n```", "{}"},
		{"```\n{}\n```", "{}"},
		{"{}", "{}"},
		{"  {} \n", "{}"},
	}
	for _, tc := range cases {
		if got := stripMarkdownFences(tc.in); got != tc.want {
			t.Errorf("stripMarkdownFences(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
