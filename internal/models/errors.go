package models

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds reported in Failure messages.
const (
	ErrCodeEncoding         = "EncodingError"
	ErrCodeMissingParameter = "MissingParameterError"
	ErrCodeDerivation       = "DerivationError"
	ErrCodeDispatch         = "DispatchError"
)

// Sentinel errors, one per kind. A *Error matches its kind's sentinel via errors.Is.
var (
	ErrEncoding         = errors.New("encoding error")
	ErrMissingParameter = errors.New("missing parameter")
	ErrDerivation       = errors.New("derivation failed")
	ErrDispatch         = errors.New("dispatch failed")
)

// Error is a derivation pipeline failure tagged with its kind.
type Error struct {
	Kind    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message != "" {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	switch e.Kind {
	case ErrCodeEncoding:
		return target == ErrEncoding
	case ErrCodeMissingParameter:
		return target == ErrMissingParameter
	case ErrCodeDerivation:
		return target == ErrDerivation
	case ErrCodeDispatch:
		return target == ErrDispatch
	}
	return false
}

// NewEncodingError reports a password or salt that could not be turned into bytes.
func NewEncodingError(message string) *Error {
	return &Error{Kind: ErrCodeEncoding, Message: message}
}

// NewMissingParameterError reports the parameters still absent after resolution.
func NewMissingParameterError(names ...string) *Error {
	return &Error{Kind: ErrCodeMissingParameter, Message: "missing " + strings.Join(names, ", ")}
}

// NewDerivationError wraps a failure of the key derivation function.
func NewDerivationError(message string, err error) *Error {
	return &Error{Kind: ErrCodeDerivation, Message: message, Err: err}
}

// NewDispatchError wraps a worker pool that refused a task.
func NewDispatchError(err error) *Error {
	return &Error{Kind: ErrCodeDispatch, Message: "submit task", Err: err}
}

// Kind returns the kind of err, or "" when err is not a pipeline error.
func Kind(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
