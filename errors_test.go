package main

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"hackathon not found", ErrHackathonNotFound, http.StatusNotFound},
		{"wrapped user not found", fmt.Errorf("lookup: %w", ErrUserNotFound), http.StatusNotFound},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"email taken", ErrEmailTaken, http.StatusConflict},
		{"missing fields", ErrMissingFields, http.StatusBadRequest},
		{"already registered", ErrAlreadyRegistered, http.StatusBadRequest},
		{"invalid email", ErrInvalidEmail, http.StatusBadRequest},
		{"unknown university", ErrUnknownUniversity, http.StatusBadRequest},
		{"anything else", errors.New("disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFromError(tt.err); got != tt.want {
				t.Errorf("statusFromError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
