package models

import "testing"

func TestFieldKindKnown(t *testing.T) {
	known := []FieldKind{FieldText, FieldEmail, FieldFile, FieldLongText, FieldSelect, FieldRadio, FieldCheckbox}
	for _, k := range known {
		if !k.Known() {
			t.Errorf("Known(%q) = false, want true", k)
		}
	}
	for _, k := range []FieldKind{"", "password", "date"} {
		if k.Known() {
			t.Errorf("Known(%q) = true, want false", k)
		}
	}
}

func TestFieldKindIsChoice(t *testing.T) {
	if !FieldSelect.IsChoice() || !FieldRadio.IsChoice() {
		t.Error("select and radio must be choice kinds")
	}
	if FieldText.IsChoice() || FieldCheckbox.IsChoice() || FieldFile.IsChoice() {
		t.Error("non-option kinds reported as choice")
	}
}

func TestFormSchemaHasSubmit(t *testing.T) {
	cases := []struct {
		name   string
		schema *FormSchema
		want   bool
	}{
		{"nil schema", nil, false},
		{"no submit", &FormSchema{}, false},
		{"empty selector", &FormSchema{Submit: &SubmitSpec{Text: "Apply"}}, false},
		{"full submit", &FormSchema{Submit: &SubmitSpec{Text: "Apply", Selector: "#s"}}, true},
	}
	for _, tc := range cases {
		if got := tc.schema.HasSubmit(); got != tc.want {
			t.Errorf("%s: HasSubmit() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestFormSchemaHasRequiredFields(t *testing.T) {
	schema := &FormSchema{
		Fields: []FieldSpec{
			{Label: "Optional", Kind: FieldText},
			{Label: "Needed", Kind: FieldEmail, Required: true},
		},
	}
	if !schema.HasRequiredFields() {
		t.Error("HasRequiredFields() = false, want true")
	}

	optionalOnly := &FormSchema{Fields: []FieldSpec{{Label: "Optional", Kind: FieldText}}}
	if optionalOnly.HasRequiredFields() {
		t.Error("HasRequiredFields() = true for optional-only schema")
	}

	var nilSchema *FormSchema
	if nilSchema.HasRequiredFields() {
		t.Error("HasRequiredFields() = true for nil schema")
	}
}
