package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims identifies the logged-in student.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

func GenerateToken(user *User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(AppConfig.JWTExp)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(AppConfig.JWTSecret))
}

func ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(AppConfig.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// ========================
// LOGIN HANDLER
// ========================

// Login finds the user with the given university email, creating it on first
// login, and returns it together with a session token.
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		respondError(c, ErrMissingFields)
		return
	}
	if !IsUniversityEmail(email) {
		respondError(c, ErrInvalidEmail)
		return
	}

	var user *User
	created := false
	err := store.Atomic(c.Request.Context(), func(r Repository) error {
		existing, err := r.FindUserByEmail(c.Request.Context(), email)
		if err == nil {
			user = existing
			return nil
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}

		name := strings.TrimSpace(req.Name)
		if name == "" {
			name = email[:strings.Index(email, "@")]
		}
		user = &User{
			ID:                 uuid.NewString(),
			Email:              email,
			Name:               name,
			AcceptedHackathons: []string{},
			CreatedAt:          time.Now().UTC(),
		}
		created = true
		return r.SaveUser(c.Request.Context(), user)
	})
	if err != nil {
		respondError(c, err)
		return
	}
	if created {
		slog.Info("User created on first login", "user_id", user.ID, "email", user.Email)
	}

	token, err := GenerateToken(user)
	if err != nil {
		jsonError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}
