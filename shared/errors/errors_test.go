package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorWithStatusCode(t *testing.T) {
	t.Run("message wins over status text", func(t *testing.T) {
		err := &ErrorWithStatusCode{Message: "Category required", StatusCode: http.StatusBadRequest}
		assert.Equal(t, "Category required", err.Error())
	})

	t.Run("empty message falls back to status text", func(t *testing.T) {
		err := &ErrorWithStatusCode{StatusCode: http.StatusBadGateway}
		assert.Equal(t, "Bad Gateway", err.Error())
	})

	t.Run("status survives wrapping", func(t *testing.T) {
		err := fmt.Errorf("loading post: %w", NotFound("post 7 not found"))
		assert.Equal(t, http.StatusNotFound, StatusCode(err))
	})

	t.Run("plain errors are internal", func(t *testing.T) {
		assert.Equal(t, http.StatusInternalServerError, StatusCode(errors.New("boom")))
	})
}
