package xano

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrorKindT tags an operation failure so that propagation logic can
// branch on the tag instead of inspecting runtime shape.
type ErrorKindT int

const (
	// ErrValidation is bad or missing user input. Local, never retried,
	// surfaced verbatim.
	ErrValidation ErrorKindT = iota
	// ErrTransport is a failed remote call or a malformed remote response.
	ErrTransport
	// ErrNotFound is the remote ERROR_CODE_NOT_FOUND shortcut.
	ErrNotFound
	// ErrEmptyResponse marks a null/absent body where that may still mean
	// success (observed after some DELETE calls).
	ErrEmptyResponse
)

func (k ErrorKindT) String() string {
	switch k {
	case ErrValidation:
		return "validation"
	case ErrTransport:
		return "transport"
	case ErrNotFound:
		return "not_found"
	case ErrEmptyResponse:
		return "empty_response"
	}
	return "unknown"
}

type OperationError struct {
	Kind    ErrorKindT `json:"kind"`
	Message string     `json:"message"`
}

func (e *OperationError) Error() string {
	return e.Message
}

func NewValidationError(format string, args ...interface{}) *OperationError {
	return &OperationError{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func NewTransportError(format string, args ...interface{}) *OperationError {
	return &OperationError{Kind: ErrTransport, Message: fmt.Sprintf(format, args...)}
}

// APIError carries a non-2xx remote response until classification.
type APIError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("xano api: %s", e.Status)
}

// ClassifyError folds any failure from an operation into a single
// OperationError. Validation errors pass through untouched. Structured
// Xano error bodies ({code, message, payload.param}) win over the HTTP
// status fallback.
func ClassifyError(operation string, err error) *OperationError {
	if err == nil {
		return &OperationError{
			Kind:    ErrEmptyResponse,
			Message: fmt.Sprintf("Operation failed: %s returned no content. If this was a DELETE, it may have succeeded.", operation),
		}
	}

	if opErr, ok := err.(*OperationError); ok {
		return opErr
	}

	apiErr, ok := err.(*APIError)
	if !ok {
		return &OperationError{
			Kind:    ErrTransport,
			Message: fmt.Sprintf("Xano %s failed: %s", operation, err.Error()),
		}
	}

	if classified := classifyBody(apiErr.Body); classified != nil {
		return classified
	}

	return &OperationError{Kind: ErrTransport, Message: statusFallback(operation, apiErr.StatusCode)}
}

func classifyBody(body []byte) *OperationError {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return nil
	}

	code := gjson.GetBytes(body, "code")
	message := gjson.GetBytes(body, "message")
	param := gjson.GetBytes(body, "payload.param")

	if code.Str == "ERROR_CODE_NOT_FOUND" {
		return &OperationError{Kind: ErrNotFound, Message: "Record not found"}
	}

	parts := []string{}
	if code.Exists() && code.Str != "" {
		parts = append(parts, fmt.Sprintf("Error: %s", code.Str))
	}
	if message.Exists() && message.Str != "" {
		parts = append(parts, message.Str)
	}
	if param.Exists() && param.Str != "" {
		parts = append(parts, fmt.Sprintf("Parameter %q is invalid", param.Str))
	}

	if len(parts) == 0 {
		return nil
	}

	joined := parts[0]
	for _, part := range parts[1:] {
		joined += " - " + part
	}
	return &OperationError{Kind: ErrTransport, Message: joined}
}

func statusFallback(operation string, statusCode int) string {
	msg := fmt.Sprintf("Xano %s failed", operation)
	switch statusCode {
	case 400:
		msg += ": Invalid request parameters or data types"
	case 401:
		msg += ": Authentication failed"
	case 403:
		msg += ": Access denied"
	case 404:
		msg += ": Resource not found"
	case 422:
		msg += ": Validation failed"
	case 429:
		msg += ": Rate limit exceeded"
	case 500:
		msg += ": Server error"
	default:
		msg += fmt.Sprintf(": HTTP %d", statusCode)
	}
	return msg
}
