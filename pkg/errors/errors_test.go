package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesClonesAndWraps(t *testing.T) {
	clone := Clone(ErrRefreshFailed, "refresh endpoint returned 500")
	wrapped := fmt.Errorf("loading activities: %w", clone)

	assert.True(t, errors.Is(clone, ErrRefreshFailed))
	assert.True(t, errors.Is(wrapped, ErrRefreshFailed))
	assert.False(t, errors.Is(wrapped, ErrNetwork))
	assert.True(t, IsSessionTerminal(wrapped))
}

func TestAPIErrorMessage(t *testing.T) {
	withDetail := APIError(http.StatusConflict, "username already registered")
	assert.Equal(t, "username already registered", withDetail.Message)
	assert.Equal(t, http.StatusConflict, withDetail.Status)
	assert.Equal(t, http.StatusConflict, StatusOf(withDetail))

	generic := APIError(http.StatusNotFound, "  ")
	assert.Contains(t, generic.Message, "endpoint not found")

	assert.Equal(t, "request failed with status 418", APIError(418, "").Message)
	assert.False(t, IsSessionTerminal(generic))
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	err := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, err.Code)
	assert.Nil(t, FromError(nil))
	assert.Equal(t, 0, StatusOf(err))
}
