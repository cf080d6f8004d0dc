// Package errs defines the failure kinds shared by every layer of the bookstore
// service and the stable codes the transport layer maps them to.
package errs

import (
	"errors"
	"net/http"
)

var (
	// ErrNotFound is returned when a referenced order, user, book or cart line does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the caller is authenticated but may not act on the entity.
	ErrForbidden = errors.New("forbidden")
	// ErrEmptyCart is returned when an order is placed from a cart with no lines.
	ErrEmptyCart = errors.New("shopping cart is empty")
	// ErrIllegalState is returned when a status transition is rejected by its guard.
	ErrIllegalState = errors.New("illegal state")
	// ErrConflict is returned when a write collides with existing data.
	ErrConflict = errors.New("conflict")
	// ErrInvalidInput is returned for malformed arguments that passed transport validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized is returned when credentials cannot be verified.
	ErrUnauthorized = errors.New("unauthorized")
)

// Code is a stable, transport-independent error identifier.
type Code string

const (
	CodeNotFound     Code = "NOT_FOUND"
	CodeForbidden    Code = "FORBIDDEN"
	CodeEmptyCart    Code = "EMPTY_CART"
	CodeIllegalState Code = "ILLEGAL_STATE"
	CodeConflict     Code = "CONFLICT"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeInternal     Code = "INTERNAL"
)

var codes = []struct {
	err  error
	code Code
}{
	{ErrNotFound, CodeNotFound},
	{ErrForbidden, CodeForbidden},
	{ErrEmptyCart, CodeEmptyCart},
	{ErrIllegalState, CodeIllegalState},
	{ErrConflict, CodeConflict},
	{ErrInvalidInput, CodeInvalidInput},
	{ErrUnauthorized, CodeUnauthorized},
}

// CodeOf classifies err. Unclassified errors, including nil, are CodeInternal.
func CodeOf(err error) Code {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeInternal
}

// HTTPStatus returns the HTTP status code for an error code.
func HTTPStatus(code Code) int {
	switch code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeForbidden:
		return http.StatusForbidden
	case CodeEmptyCart, CodeIllegalState, CodeConflict:
		return http.StatusConflict
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
