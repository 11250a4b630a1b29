package web

import (
	"errors"
	"net/http"
)

var (
	// ErrBadRequest marks a handler failure caused by invalid caller
	// input (missing or malformed parameters).
	ErrBadRequest = errors.New("bad request")

	// ErrNotFound marks a handler failure for a domain object that
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable marks a handler failure in a downstream
	// dependency (market data, mail relay, AI provider).
	ErrUnavailable = errors.New("service unavailable")
)

var errorStatusCodes = map[error]int{
	ErrBadRequest:  http.StatusBadRequest,
	ErrNotFound:    http.StatusNotFound,
	ErrUnavailable: http.StatusServiceUnavailable,
}

// statusForError maps a declared handler error kind to its status
// code. Errors outside the declared taxonomy are internal errors.
func statusForError(err error) int {
	for kind, status := range errorStatusCodes {
		if errors.Is(err, kind) {
			return status
		}
	}
	return http.StatusInternalServerError
}
