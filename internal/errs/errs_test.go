package errs_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"bookstore/internal/errs"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errs.Code
	}{
		{"wrapped not found", fmt.Errorf("order 7: %w", errs.ErrNotFound), errs.CodeNotFound},
		{"forbidden", errs.ErrForbidden, errs.CodeForbidden},
		{"empty cart", fmt.Errorf("user 1: %w", errs.ErrEmptyCart), errs.CodeEmptyCart},
		{"double wrapped illegal state", fmt.Errorf("deliver: %w", fmt.Errorf("%w: already delivered", errs.ErrIllegalState)), errs.CodeIllegalState},
		{"conflict", errs.ErrConflict, errs.CodeConflict},
		{"invalid input", errs.ErrInvalidInput, errs.CodeInvalidInput},
		{"unauthorized", errs.ErrUnauthorized, errs.CodeUnauthorized},
		{"unknown", errors.New("boom"), errs.CodeInternal},
		{"nil", nil, errs.CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errs.CodeOf(tt.err))
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, errs.HTTPStatus(errs.CodeNotFound))
	assert.Equal(t, http.StatusForbidden, errs.HTTPStatus(errs.CodeForbidden))
	assert.Equal(t, http.StatusConflict, errs.HTTPStatus(errs.CodeEmptyCart))
	assert.Equal(t, http.StatusConflict, errs.HTTPStatus(errs.CodeIllegalState))
	assert.Equal(t, http.StatusBadRequest, errs.HTTPStatus(errs.CodeInvalidInput))
	assert.Equal(t, http.StatusUnauthorized, errs.HTTPStatus(errs.CodeUnauthorized))
	assert.Equal(t, http.StatusInternalServerError, errs.HTTPStatus(errs.CodeInternal))
}
