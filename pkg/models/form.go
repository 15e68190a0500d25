package models

// SkipSentinel is the designated "not applicable" value. A field whose
// generated value equals the sentinel is never touched by the executor.
const SkipSentinel = "N/A"

// FieldKind identifies the input control type of a form field. The executor
// dispatches over these variants; an unrecognized kind takes the plain
// clear-and-type path.
type FieldKind string

const (
	FieldText     FieldKind = "text"
	FieldEmail    FieldKind = "email"
	FieldFile     FieldKind = "file"
	FieldLongText FieldKind = "textarea"
	FieldSelect   FieldKind = "select"
	FieldRadio    FieldKind = "radio"
	FieldCheckbox FieldKind = "checkbox"
)

// Known reports whether the kind is one of the supported variants.
func (k FieldKind) Known() bool {
	switch k {
	case FieldText, FieldEmail, FieldFile, FieldLongText, FieldSelect, FieldRadio, FieldCheckbox:
		return true
	}
	return false
}

// IsChoice reports whether the kind carries an option list.
func (k FieldKind) IsChoice() bool {
	return k == FieldSelect || k == FieldRadio
}

// FieldOption is one selectable option of a select or radio-group field.
// Value is the underlying HTML value attribute, Text the display text.
type FieldOption struct {
	Text  string `json:"text"`
	Value string `json:"value"`
}

// FieldSpec describes a single input field discovered on an application form.
// Label is the join key between the schema and generated fill values.
type FieldSpec struct {
	Label    string        `json:"label"`
	Selector string        `json:"selector"`
	Kind     FieldKind     `json:"type"`
	Required bool          `json:"required"`
	Options  []FieldOption `json:"options,omitempty"`
}

// SubmitSpec describes the form's submit control.
type SubmitSpec struct {
	Text     string `json:"text"`
	Selector string `json:"selector"`
}

// FormSchema is the canonical structural description of an application form,
// inferred once per site and reused. Field order reflects DOM order at
// analysis time.
type FormSchema struct {
	Fields []FieldSpec `json:"fields"`
	Submit *SubmitSpec `json:"submit_button,omitempty"`
}

// HasSubmit reports whether the schema carries a resolvable submit action.
func (s *FormSchema) HasSubmit() bool {
	return s != nil && s.Submit != nil && s.Submit.Selector != ""
}

// HasRequiredFields reports whether any field in the schema is required.
func (s *FormSchema) HasRequiredFields() bool {
	if s == nil {
		return false
	}
	for _, f := range s.Fields {
		if f.Required {
			return true
		}
	}
	return false
}

// CandidateProfile is the opaque key-value document describing the applicant.
// The engine passes it through to the value generator without validating its
// shape; values may be strings, numbers, booleans or filesystem paths.
type CandidateProfile map[string]interface{}

// FillValues maps a field label to its generated fill value. Produced fresh
// for every apply attempt and never cached.
type FillValues map[string]string
