// Package apperr berisi sentinel error lintas-service.
// Handler HTTP memetakan error ini ke status code (lihat httpx).
package apperr

import "errors"

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
)
