// Package errors defines custom error types and error handling utilities for the chat claim service.
// Every failure in the claim pipeline is classified by a Kind so callers can decide how to degrade.
package errors

import (
	goerrors "errors"
	"fmt"
	"net/http"
)

// Kind classifies where in the claim pipeline an error originated
type Kind string

const (
	// KindConfiguration indicates a missing or invalid configuration field
	KindConfiguration Kind = "configuration_error"

	// KindCredential indicates a failed identity or role-assumption exchange
	KindCredential Kind = "credential_error"

	// KindKeyRetrieval indicates the key-management public key fetch failed
	KindKeyRetrieval Kind = "key_retrieval_error"

	// KindEncoding indicates key conversion or encryption failed
	KindEncoding Kind = "encoding_error"

	// KindInvalidRequest indicates a malformed inbound request
	KindInvalidRequest Kind = "invalid_request"

	// KindUpstream indicates the chat backend answered with an error
	KindUpstream Kind = "upstream_error"

	// KindInternal indicates an unexpected condition
	KindInternal Kind = "internal_error"
)

// ================================================================================
// Base Error Interface
// ================================================================================

// ClaimError represents a structured error with additional metadata
type ClaimError interface {
	error

	// Kind returns the pipeline stage classification
	Kind() Kind

	// HTTPStatus returns the HTTP status code used when the error reaches an HTTP boundary
	HTTPStatus() int

	// Description returns a human-readable description
	Description() string

	// Unwrap returns the underlying error for error chain support
	Unwrap() error

	// WithCause adds a cause error to the error chain
	WithCause(cause error) ClaimError

	// WithMetadata adds additional context metadata
	WithMetadata(key string, value interface{}) ClaimError

	// Metadata returns all metadata
	Metadata() map[string]interface{}
}

// ================================================================================
// Base Error Implementation
// ================================================================================

type baseError struct {
	kind        Kind
	httpStatus  int
	description string
	message     string
	cause       error
	metadata    map[string]interface{}
}

// Error implements the error interface
func (e *baseError) Error() string {
	msg := e.message
	if msg == "" {
		msg = e.description
	}
	if e.cause != nil {
		return msg + ": " + e.cause.Error()
	}
	return msg
}

func (e *baseError) Kind() Kind {
	return e.kind
}

func (e *baseError) HTTPStatus() int {
	return e.httpStatus
}

func (e *baseError) Description() string {
	return e.description
}

func (e *baseError) Unwrap() error {
	return e.cause
}

func (e *baseError) WithCause(cause error) ClaimError {
	e.cause = cause
	return e
}

func (e *baseError) WithMetadata(key string, value interface{}) ClaimError {
	if e.metadata == nil {
		e.metadata = make(map[string]interface{})
	}
	e.metadata[key] = value
	return e
}

func (e *baseError) Metadata() map[string]interface{} {
	return e.metadata
}

// NewError creates a new ClaimError with the specified parameters
func NewError(kind Kind, httpStatus int, description string, message string) ClaimError {
	return &baseError{
		kind:        kind,
		httpStatus:  httpStatus,
		description: description,
		message:     message,
		metadata:    make(map[string]interface{}),
	}
}

// ================================================================================
// Pipeline Error Constructors
// ================================================================================

// ErrConfiguration creates a configuration_error
func ErrConfiguration(message string) ClaimError {
	return NewError(
		KindConfiguration,
		http.StatusInternalServerError,
		"A required configuration value is missing or invalid.",
		message,
	)
}

// ErrMissingConfig creates a configuration_error naming the missing field
func ErrMissingConfig(field string) ClaimError {
	return ErrConfiguration(fmt.Sprintf("missing required configuration: %s", field)).
		WithMetadata("field", field)
}

// ErrCredential creates a credential_error
func ErrCredential(message string) ClaimError {
	return NewError(
		KindCredential,
		http.StatusBadGateway,
		"Delegated cloud credentials could not be obtained.",
		message,
	)
}

// ErrKeyRetrieval creates a key_retrieval_error
func ErrKeyRetrieval(message string) ClaimError {
	return NewError(
		KindKeyRetrieval,
		http.StatusBadGateway,
		"The public key could not be retrieved from the key-management service.",
		message,
	)
}

// ErrEncoding creates an encoding_error
func ErrEncoding(message string) ClaimError {
	return NewError(
		KindEncoding,
		http.StatusInternalServerError,
		"The claim could not be encoded or encrypted.",
		message,
	)
}

// ================================================================================
// Transport Error Constructors
// ================================================================================

// ErrInvalidRequest creates an invalid_request error
func ErrInvalidRequest(message string) ClaimError {
	return NewError(
		KindInvalidRequest,
		http.StatusBadRequest,
		"The request is missing a required parameter or is otherwise malformed.",
		message,
	)
}

// ErrUpstream creates an upstream_error carrying the backend status code
func ErrUpstream(status int, message string) ClaimError {
	return NewError(
		KindUpstream,
		http.StatusBadGateway,
		"The chat backend returned an error.",
		message,
	).WithMetadata("upstream_status", status)
}

// ErrInternal creates an internal_error
func ErrInternal(message string) ClaimError {
	return NewError(
		KindInternal,
		http.StatusInternalServerError,
		"The server encountered an unexpected condition.",
		message,
	)
}

// ================================================================================
// Error Inspection Utilities
// ================================================================================

// AsClaimError finds the first ClaimError in err's chain
func AsClaimError(err error) (ClaimError, bool) {
	var claimErr ClaimError
	if goerrors.As(err, &claimErr) {
		return claimErr, true
	}
	return nil, false
}

// KindOf returns the Kind of the first ClaimError in err's chain, or KindInternal
func KindOf(err error) Kind {
	if claimErr, ok := AsClaimError(err); ok {
		return claimErr.Kind()
	}
	return KindInternal
}

// IsKind reports whether err carries the given Kind
func IsKind(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == kind
}

// WrapError wraps a generic error into a ClaimError of the given kind.
// An error that already is a ClaimError is returned unchanged.
func WrapError(err error, kind Kind, message string) ClaimError {
	if claimErr, ok := AsClaimError(err); ok {
		return claimErr
	}

	var wrapped ClaimError
	switch kind {
	case KindConfiguration:
		wrapped = ErrConfiguration(message)
	case KindCredential:
		wrapped = ErrCredential(message)
	case KindKeyRetrieval:
		wrapped = ErrKeyRetrieval(message)
	case KindEncoding:
		wrapped = ErrEncoding(message)
	case KindInvalidRequest:
		wrapped = ErrInvalidRequest(message)
	default:
		wrapped = ErrInternal(message)
	}
	return wrapped.WithCause(err)
}

// ================================================================================
// Error Response Builder
// ================================================================================

// ErrorResponse represents the JSON structure for error responses
type ErrorResponse struct {
	Error            string                 `json:"error"`
	ErrorDescription string                 `json:"error_description"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

// ToErrorResponse converts any error to an ErrorResponse
func ToErrorResponse(err error) *ErrorResponse {
	if claimErr, ok := AsClaimError(err); ok {
		resp := &ErrorResponse{
			Error:            string(claimErr.Kind()),
			ErrorDescription: claimErr.Description(),
		}
		if len(claimErr.Metadata()) > 0 {
			resp.Metadata = claimErr.Metadata()
		}
		return resp
	}

	return &ErrorResponse{
		Error:            string(KindInternal),
		ErrorDescription: "An unexpected error occurred",
	}
}
