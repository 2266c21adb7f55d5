// Package types holds the shared data model for scribed: the normalized
// analysis record produced for every transcript, and the per-attempt
// job outcome recorded in the metrics ledger.
package types

import (
	"errors"
	"time"
)

// Schema bounds enforced by the normalizer. Every AnalysisRecord that
// leaves the normalizer satisfies these, no matter what the model returned.
const (
	MaxAttendees    = 5
	ActionItemCount = 3
)

// Sentinel values substituted when the model gives us nothing usable.
const (
	FallbackSummary  = "Meeting discussion completed"
	FallbackAttendee = "Meeting participants"
)

// AnalysisRecord is the validated result of analyzing one transcript.
// Attendees is deduplicated (case-insensitive, first occurrence wins) and
// capped at MaxAttendees. ActionItems always has exactly ActionItemCount
// entries.
type AnalysisRecord struct {
	Summary     string   `json:"summary"`
	Attendees   []string `json:"attendees"`
	ActionItems []string `json:"action_items"`
}

// JobStatus is the terminal status of one processing attempt.
type JobStatus string

const (
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// JobOutcome is one row of the metrics ledger. It is created once per
// claimed transcript and never mutated after it is recorded.
type JobOutcome struct {
	JobID    string
	Status   JobStatus
	Duration time.Duration
	Error    string // empty unless Status == StatusFailed
}

// Error taxonomy. The runner converts the first three into the degraded
// fallback path; they never escape a processing cycle.
var (
	// ErrInvalidInput marks an empty or whitespace-only transcript,
	// rejected before any network call.
	ErrInvalidInput = errors.New("transcript is empty")

	// ErrServiceUnavailable marks a transient or permanent failure of the
	// generation service, including timeouts.
	ErrServiceUnavailable = errors.New("generation service unavailable")

	// ErrParseFailure means no parsing strategy extracted even a partial
	// object from the model response.
	ErrParseFailure = errors.New("no parsable analysis in response")

	// ErrPersistence marks a failure to write the output artifact or a
	// ledger row. Fatal to the cycle only; the claim is still released.
	ErrPersistence = errors.New("failed to persist result")
)
