package common

import (
	"errors"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestHTTPStatusFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: http.StatusOK},
		{name: "not found", err: Errorf("submission s1: %w", ErrNotFound), want: http.StatusNotFound},
		{name: "unauthorized", err: Errorf("invalid token: %w", ErrUnauthorized), want: http.StatusUnauthorized},
		{name: "forbidden", err: ErrForbidden, want: http.StatusForbidden},
		{name: "bad request", err: Errorf("missing code: %w", ErrBadRequest), want: http.StatusBadRequest},
		{name: "no test cases", err: Errorf("problem p1: %w", ErrNoTestCases), want: http.StatusBadRequest},
		{name: "rate limited", err: ErrRateLimited, want: http.StatusTooManyRequests},
		{name: "unavailable", err: ErrServiceUnavailable, want: http.StatusServiceUnavailable},
		{name: "unique violation", err: Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), want: http.StatusConflict},
		{name: "other", err: errors.New("boom"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatusFromError(tt.err); got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}
