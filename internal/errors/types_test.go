package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_ErrorIncludesCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	appErr := NewDatabaseError("create_message").WithCause(cause)

	assert.Contains(t, appErr.Error(), "Internal storage error")
	assert.Contains(t, appErr.Error(), "connection refused")
	assert.Equal(t, cause, errors.Unwrap(appErr))
}

func TestNewMessageRejectedError(t *testing.T) {
	appErr := NewMessageRejectedError("too long")

	assert.Equal(t, ErrCodeMessageRejected, appErr.Code)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPCode)
	assert.Equal(t, "Message rejected: too long", appErr.Message)
	assert.Equal(t, ErrorTypeValidation, appErr.Type)
}

func TestNewConversationNotFoundError(t *testing.T) {
	appErr := NewConversationNotFoundError()

	assert.Equal(t, ErrCodeResourceNotFound, appErr.Code)
	assert.Equal(t, http.StatusNotFound, appErr.HTTPCode)
	assert.Equal(t, "Conversation not found", appErr.Message)
}

func TestGetAppError_PassesThroughAppError(t *testing.T) {
	original := NewConversationNotFoundError()
	assert.Same(t, original, GetAppError(original))
}

func TestGetAppError_WrapsPlainError(t *testing.T) {
	plain := fmt.Errorf("boom")
	appErr := GetAppError(plain)

	assert.Equal(t, ErrCodeInternalServer, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.HTTPCode)
	assert.Equal(t, plain, appErr.Cause)
}

func TestTranslateValidation_FieldErrors(t *testing.T) {
	type payload struct {
		Message   string `validate:"required"`
		SessionID string `validate:"required"`
		AgeBand   string `validate:"omitempty,oneof=8-10 11-13 14-16"`
	}

	validate := validator.New()
	err := validate.Struct(payload{AgeBand: "adult"})
	require.Error(t, err)

	appErr := TranslateValidation(err)
	assert.Equal(t, ErrCodeValidationFailed, appErr.Code)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPCode)
	assert.Equal(t, "Message is required", appErr.Message)

	details, ok := appErr.Details.(map[string]interface{})
	require.True(t, ok)
	fieldErrors, ok := details["errors"].([]map[string]interface{})
	require.True(t, ok)
	assert.Len(t, fieldErrors, 3)
	assert.Equal(t, "AgeBand must be one of: 8-10 11-13 14-16", fieldErrors[2]["message"])
}

func TestTranslateValidation_NonValidatorError(t *testing.T) {
	appErr := TranslateValidation(fmt.Errorf("unexpected EOF"))

	assert.Equal(t, ErrCodeValidationFailed, appErr.Code)
	assert.Equal(t, "Invalid request payload", appErr.Message)
}
