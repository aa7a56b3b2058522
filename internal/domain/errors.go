package domain

import (
	"fmt"
	"strings"
)

// Validation stages for capability boundaries.
const (
	StageInput  = "input"
	StageOutput = "output"
)

// InvalidSubmissionError reports a caller-supplied submission that fails a
// basic precondition. Surfaced immediately, never retried.
type InvalidSubmissionError struct {
	Reason string
}

func (e *InvalidSubmissionError) Error() string {
	return "invalid submission: " + e.Reason
}

// FieldError names a single schema violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports that a capability's structured input, or the
// model's structured output, does not match its declared schema. Neither
// side is retried: input errors are caller bugs, output errors reflect
// best-effort model responses.
type ValidationError struct {
	Capability string
	Stage      string // StageInput or StageOutput
	Fields     []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return fmt.Sprintf("%s %s validation failed: %s", e.Capability, e.Stage, strings.Join(parts, "; "))
}

// CapabilityUnavailableError reports a transport or availability problem
// reaching the model. The caller may resubmit; the core does not retry.
type CapabilityUnavailableError struct {
	Capability string
	Err        error
}

func (e *CapabilityUnavailableError) Error() string {
	return fmt.Sprintf("capability %s unavailable: %v", e.Capability, e.Err)
}

func (e *CapabilityUnavailableError) Unwrap() error { return e.Err }

// VerificationFailedError reports that the mandatory safety scoring leg of a
// verification failed. Fatal for that orchestration attempt.
type VerificationFailedError struct {
	Err error
}

func (e *VerificationFailedError) Error() string {
	return fmt.Sprintf("verification failed: %v", e.Err)
}

func (e *VerificationFailedError) Unwrap() error { return e.Err }
