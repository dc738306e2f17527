package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// FileStore keeps hackathons and users as two JSON array files.
// Every operation reads the files it needs, works on the in-memory slices and
// rewrites the files it changed. mu serializes those cycles within the process.
type FileStore struct {
	mu             sync.Mutex
	hackathonsPath string
	usersPath      string
}

var _ Store = (*FileStore)(nil)

func NewFileStore(hackathonsPath, usersPath string) (*FileStore, error) {
	for _, p := range []string{hackathonsPath, usersPath} {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	return &FileStore{hackathonsPath: hackathonsPath, usersPath: usersPath}, nil
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) Atomic(ctx context.Context, fn func(r Repository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &fileTx{s: s}
	if err := fn(tx); err != nil {
		return err
	}
	return tx.commit()
}

func (s *FileStore) ListHackathons(ctx context.Context) (out []Hackathon, err error) {
	err = s.Atomic(ctx, func(r Repository) error {
		out, err = r.ListHackathons(ctx)
		return err
	})
	return out, err
}

func (s *FileStore) GetHackathon(ctx context.Context, idOrSlug string) (out *Hackathon, err error) {
	err = s.Atomic(ctx, func(r Repository) error {
		out, err = r.GetHackathon(ctx, idOrSlug)
		return err
	})
	return out, err
}

func (s *FileStore) SaveHackathon(ctx context.Context, h *Hackathon) error {
	return s.Atomic(ctx, func(r Repository) error { return r.SaveHackathon(ctx, h) })
}

func (s *FileStore) DeleteHackathon(ctx context.Context, id string) error {
	return s.Atomic(ctx, func(r Repository) error { return r.DeleteHackathon(ctx, id) })
}

func (s *FileStore) ListUsers(ctx context.Context) (out []User, err error) {
	err = s.Atomic(ctx, func(r Repository) error {
		out, err = r.ListUsers(ctx)
		return err
	})
	return out, err
}

func (s *FileStore) GetUser(ctx context.Context, id string) (out *User, err error) {
	err = s.Atomic(ctx, func(r Repository) error {
		out, err = r.GetUser(ctx, id)
		return err
	})
	return out, err
}

func (s *FileStore) FindUserByEmail(ctx context.Context, email string) (out *User, err error) {
	err = s.Atomic(ctx, func(r Repository) error {
		out, err = r.FindUserByEmail(ctx, email)
		return err
	})
	return out, err
}

func (s *FileStore) SaveUser(ctx context.Context, u *User) error {
	return s.Atomic(ctx, func(r Repository) error { return r.SaveUser(ctx, u) })
}

// fileTx is one read-modify-write cycle. Files are loaded lazily and only
// the dirty ones are written back on commit.
type fileTx struct {
	s *FileStore

	hackathons       []Hackathon
	users            []User
	hackathonsLoaded bool
	usersLoaded      bool
	hackathonsDirty  bool
	usersDirty       bool
}

func (tx *fileTx) loadHackathons() error {
	if tx.hackathonsLoaded {
		return nil
	}
	list, err := readJSONFile[Hackathon](tx.s.hackathonsPath)
	if err != nil {
		return err
	}
	for i := range list {
		list[i].normalize()
	}
	tx.hackathons, tx.hackathonsLoaded = list, true
	return nil
}

func (tx *fileTx) loadUsers() error {
	if tx.usersLoaded {
		return nil
	}
	list, err := readJSONFile[User](tx.s.usersPath)
	if err != nil {
		return err
	}
	for i := range list {
		list[i].normalize()
	}
	tx.users, tx.usersLoaded = list, true
	return nil
}

func (tx *fileTx) commit() error {
	if tx.hackathonsDirty {
		if err := writeJSONFile(tx.s.hackathonsPath, tx.hackathons); err != nil {
			return err
		}
	}
	if tx.usersDirty {
		if err := writeJSONFile(tx.s.usersPath, tx.users); err != nil {
			return err
		}
	}
	return nil
}

func (tx *fileTx) ListHackathons(ctx context.Context) ([]Hackathon, error) {
	if err := tx.loadHackathons(); err != nil {
		return nil, err
	}
	out := make([]Hackathon, len(tx.hackathons))
	for i := range tx.hackathons {
		out[i] = tx.hackathons[i].clone()
	}
	return out, nil
}

func (tx *fileTx) GetHackathon(ctx context.Context, idOrSlug string) (*Hackathon, error) {
	if err := tx.loadHackathons(); err != nil {
		return nil, err
	}
	i := slices.IndexFunc(tx.hackathons, func(h Hackathon) bool { return h.ID == idOrSlug })
	if i < 0 {
		i = slices.IndexFunc(tx.hackathons, func(h Hackathon) bool { return h.Slug != "" && h.Slug == idOrSlug })
	}
	if i < 0 {
		return nil, ErrHackathonNotFound
	}
	h := tx.hackathons[i].clone()
	return &h, nil
}

func (tx *fileTx) SaveHackathon(ctx context.Context, h *Hackathon) error {
	if err := tx.loadHackathons(); err != nil {
		return err
	}
	rec := h.clone()
	rec.normalize()
	if i := slices.IndexFunc(tx.hackathons, func(x Hackathon) bool { return x.ID == h.ID }); i >= 0 {
		tx.hackathons[i] = rec
	} else {
		tx.hackathons = append(tx.hackathons, rec)
	}
	tx.hackathonsDirty = true
	return nil
}

func (tx *fileTx) DeleteHackathon(ctx context.Context, id string) error {
	if err := tx.loadHackathons(); err != nil {
		return err
	}
	n := len(tx.hackathons)
	tx.hackathons = slices.DeleteFunc(tx.hackathons, func(h Hackathon) bool { return h.ID == id })
	if len(tx.hackathons) == n {
		return ErrHackathonNotFound
	}
	tx.hackathonsDirty = true
	return nil
}

func (tx *fileTx) ListUsers(ctx context.Context) ([]User, error) {
	if err := tx.loadUsers(); err != nil {
		return nil, err
	}
	out := make([]User, len(tx.users))
	for i := range tx.users {
		out[i] = tx.users[i].clone()
	}
	return out, nil
}

func (tx *fileTx) GetUser(ctx context.Context, id string) (*User, error) {
	return tx.findUser(func(u User) bool { return u.ID == id })
}

func (tx *fileTx) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	email = strings.TrimSpace(email)
	return tx.findUser(func(u User) bool { return strings.EqualFold(u.Email, email) })
}

func (tx *fileTx) findUser(match func(User) bool) (*User, error) {
	if err := tx.loadUsers(); err != nil {
		return nil, err
	}
	i := slices.IndexFunc(tx.users, match)
	if i < 0 {
		return nil, ErrUserNotFound
	}
	u := tx.users[i].clone()
	return &u, nil
}

func (tx *fileTx) SaveUser(ctx context.Context, u *User) error {
	if err := tx.loadUsers(); err != nil {
		return err
	}
	rec := u.clone()
	rec.normalize()
	if i := slices.IndexFunc(tx.users, func(x User) bool { return x.ID == u.ID }); i >= 0 {
		tx.users[i] = rec
	} else {
		tx.users = append(tx.users, rec)
	}
	tx.usersDirty = true
	return nil
}

// readJSONFile decodes a JSON array file. A missing or empty file is an empty
// collection; anything unparsable is an error so it never gets overwritten.
func readJSONFile[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []T{}, nil
	}

	var list []T
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	if list == nil {
		list = []T{}
	}
	return list, nil
}

// writeJSONFile replaces path with the indented encoding of v through a
// temp file and rename, so readers never see a half-written file.
func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(path), err)
	}

	storeWritesTotal.WithLabelValues(filepath.Base(path)).Inc()
	return nil
}
