package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	cause := errors.New("dial tcp: timeout")

	assert.Equal(t, http.StatusBadRequest, CodeOf(BadRequest("Message is required.")))
	assert.Equal(t, http.StatusForbidden, CodeOf(fmt.Errorf("wrapped: %w", Forbidden("nope"))))
	assert.Equal(t, http.StatusBadGateway, CodeOf(Upstream("Mentor service unavailable", cause)))
	assert.Equal(t, http.StatusInternalServerError, CodeOf(cause))
}

func TestUnwrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Upstream("Mentor service unavailable", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Mentor service unavailable", err.Error())
	assert.Equal(t, "Internal Server Error", Internal(cause).Error())
}
