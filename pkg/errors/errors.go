// SPDX-License-Identifier: Apache-2.0

// Package errors provides typed error handling for majordomo routing and dispatch.
package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode classifies majordomo errors for monitoring and recovery.
type ErrorCode string

const (
	// CodeInternal indicates an internal system error.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeManifest indicates the capability manifest is missing, unparseable,
	// or violates the schema. Fatal at startup: no routing is possible without it.
	CodeManifest ErrorCode = "MANIFEST_ERROR"

	// CodeInvalidRequest indicates a malformed external request, rejected
	// before any dispatch begins.
	CodeInvalidRequest ErrorCode = "INVALID_REQUEST"

	// CodeUnknownSpecialist indicates the named specialist resolves to no
	// registered invocation target.
	CodeUnknownSpecialist ErrorCode = "UNKNOWN_SPECIALIST"

	// CodeTimeout indicates an invocation exceeded its turn ceiling or
	// wall-clock deadline.
	CodeTimeout ErrorCode = "TIMEOUT"

	// CodeCapabilityDenied indicates a specialist required a tool scope its
	// manifest declaration does not grant.
	CodeCapabilityDenied ErrorCode = "CAPABILITY_DENIED"

	// CodeRuntimeFailure indicates the specialist itself failed while running.
	CodeRuntimeFailure ErrorCode = "RUNTIME_FAILURE"

	// CodeCancelled indicates the enclosing request was cancelled or its
	// global timeout elapsed.
	CodeCancelled ErrorCode = "CANCELLED"
)

// MajordomoError is a typed error with context for observability.
// It implements the error interface and can be unwrapped with errors.As().
type MajordomoError struct {
	Code        ErrorCode
	Message     string
	Err         error
	Context     map[string]interface{}
	Attributes  map[string]string
	Recoverable bool
	StatusCode  int
}

// Error implements the error interface.
func (e *MajordomoError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements errors.Unwrap for error chain traversal.
func (e *MajordomoError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements json.Marshaler for structured logging.
func (e *MajordomoError) MarshalJSON() ([]byte, error) {
	type Alias MajordomoError
	return json.Marshal(&struct {
		Message     string `json:"message"`
		Code        string `json:"code"`
		Err         string `json:"error,omitempty"`
		Recoverable bool   `json:"recoverable"`
		*Alias
	}{
		Message:     e.Error(),
		Code:        string(e.Code),
		Err:         fmt.Sprintf("%v", e.Err),
		Recoverable: e.Recoverable,
		Alias:       (*Alias)(e),
	})
}

// New creates a new MajordomoError with the given code, message, and cause.
func New(code ErrorCode, msg string, cause error) *MajordomoError {
	return &MajordomoError{
		Code:       code,
		Message:    msg,
		Err:        cause,
		Context:    make(map[string]interface{}),
		Attributes: make(map[string]string),
		StatusCode: codeToStatusCode(code),
	}
}

// WithContext adds a key-value pair to the error context.
// Returns the error for method chaining.
func (e *MajordomoError) WithContext(key string, value interface{}) *MajordomoError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithAttribute adds a string attribute for OTEL traces.
// Returns the error for method chaining.
func (e *MajordomoError) WithAttribute(key, value string) *MajordomoError {
	if e.Attributes == nil {
		e.Attributes = make(map[string]string)
	}
	e.Attributes[key] = value
	return e
}

// WithRecoverable sets whether the error can be recovered from.
// Returns the error for method chaining.
func (e *MajordomoError) WithRecoverable(recoverable bool) *MajordomoError {
	e.Recoverable = recoverable
	return e
}

// AsMajordomoError attempts to convert an error to a MajordomoError.
// Returns the error as MajordomoError if it is one, or wraps it as
// CodeInternal otherwise.
func AsMajordomoError(err error) *MajordomoError {
	if err == nil {
		return nil
	}
	if me, ok := err.(*MajordomoError); ok {
		return me
	}
	return New(CodeInternal, "wrapped error", err)
}

// CodeOf returns the ErrorCode carried by err, or CodeInternal for
// untyped errors. Nil errors yield the empty code.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	if me, ok := err.(*MajordomoError); ok {
		return me.Code
	}
	return CodeInternal
}

// codeToStatusCode maps error codes to HTTP-style status codes for
// transports that want them.
func codeToStatusCode(code ErrorCode) int {
	switch code {
	case CodeUnknownSpecialist:
		return 404
	case CodeCapabilityDenied:
		return 403
	case CodeInvalidRequest:
		return 400
	case CodeTimeout:
		return 408
	case CodeCancelled:
		return 499
	default:
		return 500
	}
}
