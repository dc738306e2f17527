package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// -----------------------------
// Hackathons
// -----------------------------

// GetHackathons lists hackathons. ?university= keeps listings held at that
// school, ?q= matches name, location or info.
func GetHackathons(c *gin.Context) {
	university := strings.TrimSpace(c.Query("university"))
	query := strings.ToLower(strings.TrimSpace(c.Query("q")))

	hackathons, err := store.ListHackathons(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	filtered := make([]Hackathon, 0, len(hackathons))
	for _, h := range hackathons {
		if university != "" && !strings.EqualFold(h.Location, university) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(h.Name), query) &&
			!strings.Contains(strings.ToLower(h.Location), query) &&
			!strings.Contains(strings.ToLower(h.Info), query) {
			continue
		}
		filtered = append(filtered, h)
	}

	c.JSON(http.StatusOK, filtered)
}

func GetHackathon(c *gin.Context) {
	h, err := store.GetHackathon(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h)
}

func CreateHackathon(c *gin.Context) {
	var body CreateHackathonRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		jsonError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	h := Hackathon{
		ID:                 uuid.NewString(),
		Name:               strings.TrimSpace(body.Name),
		Date:               strings.TrimSpace(body.Date),
		Location:           strings.TrimSpace(body.Location),
		Info:               strings.TrimSpace(body.Info),
		Website:            strings.TrimSpace(body.Website),
		CreatorEmail:       strings.ToLower(strings.TrimSpace(body.CreatorEmail)),
		CreatorID:          strings.TrimSpace(body.CreatorID),
		RegisteredStudents: []Registration{},
		CreatedAt:          time.Now().UTC(),
	}
	if h.CreatorEmail == "" && h.CreatorID == "" {
		if userID, email, ok := getAuthFromContext(c); ok {
			h.CreatorID, h.CreatorEmail = userID, email
		}
	}

	if h.Name == "" || h.Date == "" || h.Location == "" || h.Info == "" || h.Website == "" ||
		(h.CreatorEmail == "" && h.CreatorID == "") {
		respondError(c, ErrMissingFields)
		return
	}

	ctx := c.Request.Context()
	err := store.Atomic(ctx, func(r Repository) error {
		s, err := uniqueSlug(ctx, r, h.Name)
		if err != nil {
			return err
		}
		h.Slug = s
		return r.SaveHackathon(ctx, &h)
	})
	if err != nil {
		respondError(c, err)
		return
	}

	slog.Info("Hackathon created", "hackathon_id", h.ID, "name", h.Name, "location", h.Location)
	c.JSON(http.StatusCreated, h)
}

// uniqueSlug derives a slug from name, suffixing -2, -3, … on collisions.
func uniqueSlug(ctx context.Context, r Repository, name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = "hackathon"
	}

	existing, err := r.ListHackathons(ctx)
	if err != nil {
		return "", err
	}
	taken := make(map[string]bool, len(existing))
	for _, h := range existing {
		taken[h.Slug] = true
	}

	candidate := base
	for n := 2; taken[candidate]; n++ {
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
	return candidate, nil
}

// RegisterForHackathon appends a registration to the hackathon's registrant
// list and records the hackathon on the student's profile.
func RegisterForHackathon(c *gin.Context) {
	var body RegisterRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		jsonError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	reg := Registration{UserID: body.UserID}
	if body.RegistrationData != nil {
		reg = *body.RegistrationData
	}
	reg.UserID = strings.TrimSpace(reg.UserID)
	if reg.UserID == "" {
		if userID, _, ok := getAuthFromContext(c); ok {
			reg.UserID = userID
		}
	}

	hackathonID := strings.TrimSpace(body.HackathonID)
	if hackathonID == "" || reg.UserID == "" {
		respondError(c, ErrMissingFields)
		return
	}

	ctx := c.Request.Context()
	var h *Hackathon
	err := store.Atomic(ctx, func(r Repository) error {
		var err error
		h, err = r.GetHackathon(ctx, hackathonID)
		if err != nil {
			return err
		}
		if h.IsRegistered(reg.UserID) {
			return ErrAlreadyRegistered
		}

		user, err := r.GetUser(ctx, reg.UserID)
		switch {
		case err == nil:
			if reg.Name == "" {
				reg.Name = user.Name
			}
			if reg.Email == "" {
				reg.Email = user.Email
			}
			if !user.HasAccepted(h.ID) {
				user.AcceptedHackathons = append(user.AcceptedHackathons, h.ID)
				if err := r.SaveUser(ctx, user); err != nil {
					return err
				}
			}
		case !errors.Is(err, ErrNotFound):
			return err
		}

		reg.RegisteredAt = time.Now().UTC()
		h.RegisteredStudents = append(h.RegisteredStudents, reg)
		return r.SaveHackathon(ctx, h)
	})
	if err != nil {
		respondError(c, err)
		return
	}

	slog.Info("Student registered", "hackathon_id", h.ID, "user_id", reg.UserID, "registrants", len(h.RegisteredStudents))
	c.JSON(http.StatusOK, h)
}

// DeleteHackathon removes a hackathon. Only its creator may do so.
func DeleteHackathon(c *gin.Context) {
	var body DeleteHackathonRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		jsonError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	email := strings.TrimSpace(body.Email)
	userID := strings.TrimSpace(body.UserID)
	if email == "" && userID == "" {
		userID, email, _ = getAuthFromContext(c)
	}

	hackathonID := strings.TrimSpace(body.HackathonID)
	if hackathonID == "" || (email == "" && userID == "") {
		respondError(c, ErrMissingFields)
		return
	}

	ctx := c.Request.Context()
	err := store.Atomic(ctx, func(r Repository) error {
		h, err := r.GetHackathon(ctx, hackathonID)
		if err != nil {
			return err
		}
		if !h.CreatedBy(email, userID) {
			return ErrForbidden
		}
		if err := r.DeleteHackathon(ctx, h.ID); err != nil {
			return err
		}
		hackathonID = h.ID

		// Drop the id from profiles that accepted it.
		users, err := r.ListUsers(ctx)
		if err != nil {
			return err
		}
		for i := range users {
			u := &users[i]
			if !u.HasAccepted(h.ID) {
				continue
			}
			u.AcceptedHackathons = slices.DeleteFunc(u.AcceptedHackathons, func(id string) bool { return id == h.ID })
			if err := r.SaveUser(ctx, u); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	slog.Info("Hackathon deleted", "hackathon_id", hackathonID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetRegistrations returns the registrant list to the hackathon's creator.
func GetRegistrations(c *gin.Context) {
	userID, email, _ := getAuthFromContext(c)

	h, err := store.GetHackathon(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !h.CreatedBy(email, userID) {
		respondError(c, ErrForbidden)
		return
	}

	c.JSON(http.StatusOK, h.RegisteredStudents)
}

// -----------------------------
// Universities
// -----------------------------

func GetUniversities(c *gin.Context) {
	ctx := c.Request.Context()

	hackathons, err := store.ListHackathons(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	users, err := store.ListUsers(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, universityStats(hackathons, users))
}
