package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapPgError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"email unique", &pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email"}, ErrEmailTaken},
		{"slug unique", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "idx_hackathons_slug"}), ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapPgError(tt.err); !errors.Is(got, tt.want) {
				t.Errorf("mapPgError() = %v, want %v", got, tt.want)
			}
		})
	}

	other := &pgconn.PgError{Code: "23502"}
	if got := mapPgError(other); got != error(other) {
		t.Errorf("non-unique errors should pass through, got %v", got)
	}
}

func TestInitDBRequiresSettings(t *testing.T) {
	if _, err := InitDB(&Config{DBHost: "localhost"}); err == nil {
		t.Error("expected error for incomplete database settings")
	}
}
