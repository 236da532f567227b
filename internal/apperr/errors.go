// Package apperr defines sentinel errors shared by the services and mapped to
// HTTP status codes by the API layer.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalid       = errors.New("invalid request")
)
