// Package domainerrors defines the code-carrying error type shared by services
// and the HTTP layer. Services translate infrastructure facts (see
// pkg/platform/sentinel) into one of these codes; transports translate codes
// into status codes.
package domainerrors

import (
	"errors"
	"sort"
)

// Code classifies a domain error.
type Code string

const (
	CodeBadRequest           Code = "bad_request"
	CodeInvalidInput         Code = "invalid_input"
	CodeValidation           Code = "validation_error"
	CodeInvalidUpload        Code = "invalid_upload"
	CodeIncompleteSubmission Code = "incomplete_submission"
	CodeNotFound             Code = "not_found"
	CodeConflict             Code = "conflict"
	CodeInvariantViolation   Code = "invariant_violation"
	CodeUnauthorized         Code = "unauthorized"
	CodeForbidden            Code = "forbidden"
	CodeStorageFailure       Code = "storage_failure"
	CodeTransient            Code = "transient_failure"
	CodeTimeout              Code = "timeout"
	CodeInternal             Code = "internal_error"
)

// Error is the domain error. Fields carries per-field messages for validation
// failures; Items carries the ordered deficiency list of an incomplete
// submission.
type Error struct {
	Code    Code
	Message string
	Fields  map[string]string
	Items   []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a domain error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// NewValidation reports field-level input problems. Field order in the message
// is stable so logs and tests are deterministic.
func NewValidation(fields map[string]string) error {
	msg := "validation failed"
	if len(fields) > 0 {
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)
		msg = "validation failed: " + fields[names[0]]
	}
	return &Error{Code: CodeValidation, Message: msg, Fields: fields}
}

// NewIncomplete reports every missing requirement of a submission at once.
func NewIncomplete(items []string) error {
	return &Error{
		Code:    CodeIncompleteSubmission,
		Message: "submission is incomplete",
		Items:   append([]string(nil), items...),
	}
}

// As extracts the domain error from an error chain.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// HasCode reports whether the outermost domain error in the chain carries code.
func HasCode(err error, code Code) bool {
	de, ok := As(err)
	return ok && de.Code == code
}

// CodeOf returns the code of the outermost domain error, or CodeInternal.
func CodeOf(err error) Code {
	if de, ok := As(err); ok {
		return de.Code
	}
	return CodeInternal
}

// IsServerSide reports whether err is the service's fault rather than the
// caller's. Errors without a code count as server side.
func IsServerSide(err error) bool {
	switch CodeOf(err) {
	case CodeInternal, CodeStorageFailure, CodeTransient, CodeTimeout:
		return true
	}
	return false
}
