package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DBStore is the Postgres backend, selected with STORE_DRIVER=postgres.
type DBStore struct {
	gormRepo
}

var _ Store = (*DBStore)(nil)

func InitDB(cfg *Config) (*DBStore, error) {
	if cfg.DBHost == "" || cfg.DBUser == "" || cfg.DBName == "" || cfg.DBPort == "" {
		return nil, errors.New("database env missing: check DB_HOST, DB_USER, DB_NAME and DB_PORT")
	}

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPass, cfg.DBName, cfg.DBPort,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	slog.Info("Connected to PostgreSQL", "host", cfg.DBHost, "db", cfg.DBName)

	if err := db.AutoMigrate(&User{}, &Hackathon{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("Database schema synchronized")

	return &DBStore{gormRepo{db: db}}, nil
}

func (s *DBStore) Atomic(ctx context.Context, fn func(r Repository) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepo{db: tx, lock: true})
	})
}

func (s *DBStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// gormRepo implements Repository on a *gorm.DB. Inside Atomic it runs on the
// transaction and locks the rows it reads.
type gormRepo struct {
	db   *gorm.DB
	lock bool
}

func (r *gormRepo) query(ctx context.Context) *gorm.DB {
	q := r.db.WithContext(ctx)
	if r.lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

func (r *gormRepo) ListHackathons(ctx context.Context) ([]Hackathon, error) {
	var list []Hackathon
	if err := r.db.WithContext(ctx).Order("created_at asc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list hackathons: %w", err)
	}
	for i := range list {
		list[i].normalize()
	}
	return list, nil
}

func (r *gormRepo) GetHackathon(ctx context.Context, idOrSlug string) (*Hackathon, error) {
	var h Hackathon
	err := r.query(ctx).Where("id = ? OR slug = ?", idOrSlug, idOrSlug).First(&h).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrHackathonNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get hackathon: %w", err)
	}
	h.normalize()
	return &h, nil
}

func (r *gormRepo) SaveHackathon(ctx context.Context, h *Hackathon) error {
	h.normalize()
	if err := r.db.WithContext(ctx).Save(h).Error; err != nil {
		return fmt.Errorf("failed to save hackathon: %w", mapPgError(err))
	}
	return nil
}

func (r *gormRepo) DeleteHackathon(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&Hackathon{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete hackathon: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrHackathonNotFound
	}
	return nil
}

func (r *gormRepo) ListUsers(ctx context.Context) ([]User, error) {
	var list []User
	if err := r.db.WithContext(ctx).Order("created_at asc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	for i := range list {
		list[i].normalize()
	}
	return list, nil
}

func (r *gormRepo) GetUser(ctx context.Context, id string) (*User, error) {
	return r.findUser(r.query(ctx).Where("id = ?", id))
}

func (r *gormRepo) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	return r.findUser(r.query(ctx).Where("LOWER(email) = LOWER(?)", email))
}

func (r *gormRepo) findUser(q *gorm.DB) (*User, error) {
	var u User
	err := q.First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	u.normalize()
	return &u, nil
}

func (r *gormRepo) SaveUser(ctx context.Context, u *User) error {
	u.normalize()
	if err := r.db.WithContext(ctx).Save(u).Error; err != nil {
		return fmt.Errorf("failed to save user: %w", mapPgError(err))
	}
	return nil
}

// mapPgError maps unique violations (SQLSTATE 23505) to ErrConflict.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return err
	}
	if strings.Contains(pgErr.ConstraintName, "email") {
		return ErrEmailTaken
	}
	return fmt.Errorf("%s: %w", pgErr.ConstraintName, ErrConflict)
}
