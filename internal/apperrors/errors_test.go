package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeOfThroughWrapping(t *testing.T) {
	base := NewDuplicateEmailError("a@x.com")
	wrapped := fmt.Errorf("signup: %w", base)

	assert.True(t, IsDuplicateEmail(wrapped))
	assert.False(t, IsNotFound(wrapped))
	assert.Equal(t, ErrorTypeDuplicateEmail, TypeOf(wrapped))
	assert.Equal(t, ErrorType(""), TypeOf(errors.New("plain")))
}

func TestBackendUnavailableUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewBackendUnavailableError("find user", cause)

	assert.True(t, IsBackendUnavailable(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}
