package xano

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestClassifyErrorNil(t *testing.T) {
	opErr := ClassifyError("deleteSingleContent", nil)
	assert.Equal(t, ErrEmptyResponse, opErr.Kind)
	assert.Equal(t,
		"Operation failed: deleteSingleContent returned no content. If this was a DELETE, it may have succeeded.",
		opErr.Message)
}

func TestClassifyErrorValidationPassthrough(t *testing.T) {
	original := NewValidationError("Workspace ID is required")
	opErr := ClassifyError("createRow", original)
	assert.Same(t, original, opErr)
}

func TestClassifyErrorGenericTransport(t *testing.T) {
	opErr := ClassifyError("createRow", errors.New("connection refused"))
	assert.Equal(t, ErrTransport, opErr.Kind)
	assert.Equal(t, "Xano createRow failed: connection refused", opErr.Message)
}

func TestClassifyErrorNotFoundCode(t *testing.T) {
	apiErr := &APIError{StatusCode: 404, Body: []byte(`{"code":"ERROR_CODE_NOT_FOUND","message":"Unable to locate request."}`)}
	opErr := ClassifyError("getSingleContent", apiErr)
	assert.Equal(t, ErrNotFound, opErr.Kind)
	assert.Equal(t, "Record not found", opErr.Message)
}

func TestClassifyErrorStructuredBody(t *testing.T) {
	apiErr := &APIError{
		StatusCode: 400,
		Body:       []byte(`{"code":"ERROR_CODE_INPUT_ERROR","message":"Invalid input.","payload":{"param":"price"}}`),
	}
	opErr := ClassifyError("createRow", apiErr)
	assert.Equal(t, ErrTransport, opErr.Kind)
	assert.Equal(t,
		`Error: ERROR_CODE_INPUT_ERROR - Invalid input. - Parameter "price" is invalid`,
		opErr.Message)
}

func TestClassifyErrorStatusFallback(t *testing.T) {
	cases := map[int]string{
		400: "Xano createRow failed: Invalid request parameters or data types",
		401: "Xano createRow failed: Authentication failed",
		403: "Xano createRow failed: Access denied",
		404: "Xano createRow failed: Resource not found",
		422: "Xano createRow failed: Validation failed",
		429: "Xano createRow failed: Rate limit exceeded",
		500: "Xano createRow failed: Server error",
		418: "Xano createRow failed: HTTP 418",
	}

	for status, expected := range cases {
		opErr := ClassifyError("createRow", &APIError{StatusCode: status, Body: []byte("oops")})
		assert.Equal(t, ErrTransport, opErr.Kind)
		assert.Equal(t, expected, opErr.Message)
	}
}

func TestErrorKindString(t *testing.T) {
	assert.Equal(t, "validation", ErrValidation.String())
	assert.Equal(t, "transport", ErrTransport.String())
	assert.Equal(t, "not_found", ErrNotFound.String())
	assert.Equal(t, "empty_response", ErrEmptyResponse.String())
}
