// Package types defines the shared domain types used across the pipeline.
package types

import "time"

// JobListing is one job posting record extracted from a search results page.
// URL is the canonical identity key; every other field is descriptive.
type JobListing struct {
	Title           string `json:"title"`
	URL             string `json:"url"`
	Company         string `json:"company"`
	Location        string `json:"location"`
	EmploymentType  string `json:"employment_type"`
	PostedDate      string `json:"posted_date"`
	Applied         bool   `json:"applied"`
	ExclusionReason string `json:"exclusion_reason,omitempty"`
}

// WidgetState is the observed readiness of the page's embedded
// application-submission control. It is derived per job by polling the
// widget content and is never persisted.
type WidgetState int

const (
	// WidgetUndetermined means no recognizable marker appeared within the
	// polling budget.
	WidgetUndetermined WidgetState = iota
	// WidgetAlreadyApplied means the widget reports a prior submission.
	WidgetAlreadyApplied
	// WidgetCanApply means the widget offers the apply control.
	WidgetCanApply
)

func (s WidgetState) String() string {
	switch s {
	case WidgetAlreadyApplied:
		return "already_applied"
	case WidgetCanApply:
		return "can_apply"
	default:
		return "undetermined"
	}
}

// RunSummary is the terminal record of one run. It is overwritten on every
// run; history is not kept.
type RunSummary struct {
	RunID         string    `json:"run_id"`
	TotalFound    int       `json:"total_found"`
	Applied       int       `json:"applied"`
	Failed        int       `json:"failed"`
	ExecutionTime string    `json:"execution_time"`
	Timestamp     time.Time `json:"timestamp"`
}
