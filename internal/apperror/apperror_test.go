package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "year: out of range", Validation("year", "out of range").Error())
	assert.Equal(t, "title not found", NotFound("title").Error())
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("create review: %w", Validation("title", "cannot review twice"))

	assert.Equal(t, KindValidation, KindOf(err))
	assert.True(t, Is(err, KindValidation))
	assert.False(t, Is(err, KindNotFound))
	assert.Equal(t, Kind(""), KindOf(fmt.Errorf("plain")))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NotFound("title"), http.StatusNotFound},
		{Validation("score", "out of range"), http.StatusBadRequest},
		{Conflict("email", "taken"), http.StatusBadRequest},
		{Forbidden("no"), http.StatusForbidden},
		{Unauthorized("no"), http.StatusUnauthorized},
		{errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), tt.err.Error())
	}
}
