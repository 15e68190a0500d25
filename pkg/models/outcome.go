package models

import "time"

// ApplyStatus is the terminal state of one application run.
type ApplyStatus string

const (
	ApplySubmitted      ApplyStatus = "SUBMITTED"
	ApplyAwaitingManual ApplyStatus = "AWAITING_MANUAL_SUBMIT"
	ApplyDeclined       ApplyStatus = "SUBMISSION_DECLINED"
	ApplyFailed         ApplyStatus = "FAILED"
)

// ApplyOutcome is the full result of one application attempt against a form
// page: the terminal status, the per-field fill report, and timing.
type ApplyOutcome struct {
	Status   ApplyStatus   `json:"status"`
	Reason   string        `json:"reason,omitempty"`
	URL      string        `json:"url"`
	SiteKey  string        `json:"site_key"`
	Report   *FillReport   `json:"report,omitempty"`
	Duration time.Duration `json:"duration"`
}
