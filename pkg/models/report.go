package models

// FieldStatus is the terminal state of one field-fill attempt.
type FieldStatus string

const (
	FieldFilled  FieldStatus = "filled"
	FieldSkipped FieldStatus = "skipped"
	FieldFailed  FieldStatus = "failed"
)

// FieldResult records the outcome of a single field-fill attempt.
type FieldResult struct {
	Label    string      `json:"label"`
	Selector string      `json:"selector"`
	Kind     FieldKind   `json:"kind"`
	Required bool        `json:"required"`
	Status   FieldStatus `json:"status"`
	Reason   string      `json:"reason,omitempty"`
}

// FillReport is the per-field outcome list of one fill pass. Every field of
// the schema gets exactly one entry, in schema order; a failure on one field
// never suppresses the entries of the others.
type FillReport struct {
	Results []FieldResult `json:"results"`
}

// Add appends a field result to the report.
func (r *FillReport) Add(field FieldSpec, status FieldStatus, reason string) {
	r.Results = append(r.Results, FieldResult{
		Label:    field.Label,
		Selector: field.Selector,
		Kind:     field.Kind,
		Required: field.Required,
		Status:   status,
		Reason:   reason,
	})
}

// Count returns the number of results with the given status.
func (r *FillReport) Count(status FieldStatus) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

// FilledRequired reports whether at least one required field was filled.
func (r *FillReport) FilledRequired() bool {
	for _, res := range r.Results {
		if res.Required && res.Status == FieldFilled {
			return true
		}
	}
	return false
}
