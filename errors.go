package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

var (
	ErrMissingFields     = errors.New("missing required fields")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("not authorized")
	ErrAlreadyRegistered = errors.New("already registered")
	ErrConflict          = errors.New("already exists")
	ErrInvalidEmail      = errors.New("please use a valid university email (.edu or .ac.xx)")
	ErrUnknownUniversity = errors.New("unknown university")

	ErrHackathonNotFound = fmt.Errorf("hackathon %w", ErrNotFound)
	ErrUserNotFound      = fmt.Errorf("user %w", ErrNotFound)
	ErrEmailTaken        = fmt.Errorf("user with this email %w", ErrConflict)
)

// statusFromError maps domain errors to HTTP status codes.
func statusFromError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrMissingFields),
		errors.Is(err, ErrAlreadyRegistered),
		errors.Is(err, ErrInvalidEmail),
		errors.Is(err, ErrUnknownUniversity):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func jsonError(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{"error": msg})
}

// respondError writes err with its mapped status. Server errors are logged
// and replaced by a generic message.
func respondError(c *gin.Context, err error) {
	code := statusFromError(err)
	if code == http.StatusInternalServerError {
		slog.Error("Request failed", "path", c.FullPath(), "method", c.Request.Method, "error", err)
		jsonError(c, code, "Internal server error")
		return
	}
	msg := err.Error()
	jsonError(c, code, strings.ToUpper(msg[:1])+msg[1:])
}
