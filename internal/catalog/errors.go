package catalog

// errors.go defines the failure taxonomy for submission processing. Every
// kind is caught by the batch coordinator and converted into a structured
// per-item result; none of them abort the batch on their own.

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// FieldViolation describes one violated schema constraint.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v FieldViolation) String() string {
	if v.Field == "" {
		return v.Message
	}
	return v.Field + ": " + v.Message
}

// SchemaViolationError reports that a payload failed structural validation.
// Validation is all-or-nothing: the error carries every violated constraint
// and no database access was attempted.
type SchemaViolationError struct {
	Kind       EntityKind
	Violations []FieldViolation
}

func (e *SchemaViolationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.String()
	}
	return fmt.Sprintf("%s schema violation: %s", e.Kind, strings.Join(msgs, "; "))
}

// MissingDependencyError reports that a named foreign reference could not be
// resolved, e.g. a model submission naming an unknown manufacturer.
type MissingDependencyError struct {
	Kind    EntityKind
	Message string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("%s missing dependency: %s", e.Kind, e.Message)
}

// ManualReviewError reports a plausible but not confident enough match.
// The submission is not applied; callers can route it to a review queue.
type ManualReviewError struct {
	Kind       EntityKind
	TargetID   uuid.UUID
	Confidence float64
	Detail     string
}

func (e *ManualReviewError) Error() string {
	return fmt.Sprintf("%s conflict: %s (confidence %.2f)", e.Kind, e.Detail, e.Confidence)
}

// ProcessingError wraps any unexpected failure during a single submission.
type ProcessingError struct {
	Stage string
	Err   error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("processing error at %s: %v", e.Stage, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }
