package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: http.StatusOK},
		{name: "invalid", err: fmt.Errorf("create: %w", ErrInvalid), want: http.StatusBadRequest},
		{name: "unauthenticated", err: ErrUnauthenticated, want: http.StatusUnauthorized},
		{name: "forbidden", err: ErrForbidden, want: http.StatusForbidden},
		{name: "not found wrapped", err: fmt.Errorf("get collection abc: %w", ErrNotFound), want: http.StatusNotFound},
		{name: "conflict", err: ErrConflict, want: http.StatusConflict},
		{name: "backend", err: Backend("fetch", errors.New("dial tcp")), want: http.StatusInternalServerError},
		{name: "unknown", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Status(tt.err); got != tt.want {
				t.Errorf("Status(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestBackendKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Backend("list collections", cause)

	if !errors.Is(err, ErrBackend) {
		t.Error("expected error to match ErrBackend")
	}
	if !errors.Is(err, cause) {
		t.Error("expected error to keep the original cause")
	}
	if Backend("noop", nil) != nil {
		t.Error("Backend(nil) should be nil")
	}
}

func TestWrap(t *testing.T) {
	notFound := Wrap("get collection", fmt.Errorf("collection x: %w", ErrNotFound))
	if !errors.Is(notFound, ErrNotFound) || errors.Is(notFound, ErrBackend) {
		t.Errorf("sentinel errors must pass through unchanged: %v", notFound)
	}

	io := Wrap("get collection", errors.New("i/o timeout"))
	if !errors.Is(io, ErrBackend) {
		t.Errorf("unclassified errors must become ErrBackend: %v", io)
	}

	if Wrap("noop", nil) != nil {
		t.Error("Wrap(nil) should be nil")
	}
}
