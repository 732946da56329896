package service

import (
	"time"

	"catalog-curator/internal/domain"
)

// ErrorKind classifies a validation failure. Infrastructure trouble (store
// or cache unavailability) is never a kind; it propagates as a plain error
// from the entry point instead of being mixed into the business result.
type ErrorKind string

const (
	KindShape        ErrorKind = "shape"
	KindBusinessRule ErrorKind = "business_rule"
	KindNotFound     ErrorKind = "not_found"
	KindCapacity     ErrorKind = "capacity"
)

// FieldError is one structured validation failure
type FieldError struct {
	Field          string    `json:"field"`
	Rule           string    `json:"rule"`
	Kind           ErrorKind `json:"kind"`
	Message        string    `json:"message"`
	OffendingValue any       `json:"offending_value,omitempty"`
}

// BulkItemResult carries the per-item outcome of a bulk operation
type BulkItemResult struct {
	ID     int64        `json:"id"`
	Valid  bool         `json:"valid"`
	Errors []FieldError `json:"errors,omitempty"`
}

// Result is the uniform outcome of every orchestrator entry point. Errors
// appear in the documented check order, so repeated calls against the same
// store state produce identical results.
type Result struct {
	Valid     bool               `json:"is_valid"`
	Errors    []FieldError       `json:"errors"`
	Warnings  []FieldError       `json:"warnings,omitempty"`
	Context   string             `json:"context"`
	Timestamp time.Time          `json:"timestamp"`
	Items     []BulkItemResult   `json:"items,omitempty"`
	Audit     *domain.AuditEntry `json:"audit,omitempty"`
}

func newResult(context string) *Result {
	return &Result{
		Valid:     true,
		Errors:    []FieldError{},
		Context:   context,
		Timestamp: time.Now().UTC(),
	}
}

func (r *Result) addError(e FieldError) {
	r.Valid = false
	r.Errors = append(r.Errors, e)
}

func (r *Result) addWarning(e FieldError) {
	r.Warnings = append(r.Warnings, e)
}

// GateResult is the publication gate's verdict for one product snapshot
type GateResult struct {
	Eligible bool         `json:"eligible"`
	Errors   []FieldError `json:"errors"`
	Warnings []FieldError `json:"warnings,omitempty"`
}
