package wizard

import (
	"errors"
	"fmt"
	"maps"

	dErrors "garagehub/pkg/domain-errors"
)

var (
	// ErrBusy is returned while a save or completion is in flight.
	ErrBusy = errors.New("wizard: a save is already in progress")
	// ErrStepIncomplete is returned when a gate blocks forward progress.
	ErrStepIncomplete = errors.New("wizard: step is incomplete")
	// ErrFirstStep is returned by Previous on the first step.
	ErrFirstStep = errors.New("wizard: already on the first step")
	// ErrLastStep is returned by Next on the review step.
	ErrLastStep = errors.New("wizard: already on the review step")
	// ErrUnknownField is returned by SetField for a field the wizard does not own.
	ErrUnknownField = errors.New("wizard: unknown field")
)

// InvalidValueError reports a SetField value of the wrong shape.
type InvalidValueError struct {
	Field  Field
	Reason string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("wizard: invalid value for %s: %s", e.Field, e.Reason)
}

// ErrorKind tells the UI how to present a failed save.
type ErrorKind int

const (
	// ErrorKindValidation shows inline field errors.
	ErrorKindValidation ErrorKind = iota + 1
	// ErrorKindIncomplete shows an itemized checklist.
	ErrorKindIncomplete
	// ErrorKindTransient shows a retry prompt.
	ErrorKindTransient
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindValidation:
		return "validation"
	case ErrorKindIncomplete:
		return "incomplete"
	case ErrorKindTransient:
		return "transient"
	default:
		return "unknown"
	}
}

// ServerError is the classified outcome of a failed save or completion.
type ServerError struct {
	Kind    ErrorKind
	Message string
	Fields  map[string]string
	Items   []string
	Err     error
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("wizard: %s error: %s", e.Kind, e.Message)
}

func (e *ServerError) Unwrap() error { return e.Err }

// classify turns a gateway error into a ServerError. Anything the user cannot
// fix by editing the form is transient.
func classify(err error) *ServerError {
	de, ok := dErrors.As(err)
	if !ok {
		return &ServerError{Kind: ErrorKindTransient, Message: "could not reach the server, try again", Err: err}
	}
	switch de.Code {
	case dErrors.CodeValidation, dErrors.CodeInvalidInput, dErrors.CodeBadRequest:
		return &ServerError{Kind: ErrorKindValidation, Message: de.Message, Fields: maps.Clone(de.Fields), Err: err}
	case dErrors.CodeIncompleteSubmission:
		return &ServerError{Kind: ErrorKindIncomplete, Message: de.Message, Items: append([]string(nil), de.Items...), Err: err}
	default:
		return &ServerError{Kind: ErrorKindTransient, Message: "saving failed, try again", Err: err}
	}
}

func (e *ServerError) clone() *ServerError {
	if e == nil {
		return nil
	}
	c := *e
	c.Fields = maps.Clone(e.Fields)
	c.Items = append([]string(nil), e.Items...)
	return &c
}
