// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package apperr defines the error taxonomy shared by the services and the
// HTTP layer. Services wrap one of the sentinel errors; handlers map them
// to status codes with errors.Is.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthenticated means a write or private read had no caller identity.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrForbidden means the caller is not allowed to touch the record.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound means the referenced collection or document is absent.
	ErrNotFound = errors.New("not found")
	// ErrConflict means the post is already in the collection.
	ErrConflict = errors.New("conflict")
	// ErrInvalid means the request failed validation.
	ErrInvalid = errors.New("invalid request")
	// ErrBackend is a generic I/O or network failure from either store.
	ErrBackend = errors.New("backend failure")
)

// Backend wraps a store failure so that it matches ErrBackend while keeping
// the original cause in the chain.
func Backend(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrBackend, err)
}

// Wrap annotates err with op. Errors that already carry one of the
// taxonomy sentinels keep it; anything else is treated as a backend failure.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, sentinel := range []error{ErrUnauthenticated, ErrForbidden, ErrNotFound, ErrConflict, ErrInvalid, ErrBackend} {
		if errors.Is(err, sentinel) {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return Backend(op, err)
}

// Status maps an error to the HTTP status code the API responds with.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
