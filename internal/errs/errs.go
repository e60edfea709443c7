package errs

import (
	"errors"
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// Kind classifies failures of page and session operations.
type Kind string

const (
	// Timeout means an element never reached the awaited state in time.
	Timeout Kind = "timeout"
	// NotFound means an expected element or resource does not exist.
	NotFound Kind = "not_found"
	// InvalidConfig covers bad configuration and resources used before they are ready or after they are closed.
	InvalidConfig Kind = "invalid_config"
	// Driver is any other failure reported by the automation driver.
	Driver Kind = "driver"
)

// Error is a classified error of an operation.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, msg)
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a classified error with message.
func New(kind Kind, op, message string) error {
	return &Error{
		Kind:    kind,
		Op:      op,
		Message: message,
	}
}

// Wrap creates a classified error with message and cause.
func Wrap(kind Kind, op, message string, cause error) error {
	return &Error{
		Kind:    kind,
		Op:      op,
		Message: message,
		Err:     cause,
	}
}

// FromDriver classifies an error returned by playwright.
// Errors that are already classified keep their kind. A nil error stays nil.
func FromDriver(op string, err error) error {
	if err == nil {
		return nil
	}

	var classified *Error
	if errors.As(err, &classified) {
		return err
	}

	switch {
	case errors.Is(err, playwright.ErrTimeout):
		return Wrap(Timeout, op, "", err)
	case errors.Is(err, playwright.ErrTargetClosed):
		return Wrap(InvalidConfig, op, "target closed", err)
	default:
		return Wrap(Driver, op, "", err)
	}
}

// KindOf returns the kind of err, defaulting to Driver for unclassified errors.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var classified *Error
	if errors.As(err, &classified) && classified.Kind != "" {
		return classified.Kind
	}
	return Driver
}

// Is reports whether err is classified with kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
