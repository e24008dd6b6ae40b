// Package postgres implements the durable user store on pgx.
package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/veriauth/veriauth"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            UUID PRIMARY KEY,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// UserStore satisfies veriauth.UserStore against a users table whose email
// column carries a unique constraint. Duplicate detection happens at write
// time through that constraint, never through a separate existence read.
type UserStore struct {
	db *pgxpool.Pool
}

// NewUserStore wraps an existing pool.
func NewUserStore(db *pgxpool.Pool) *UserStore {
	return &UserStore{db: db}
}

// Migrate creates the users table when it does not exist yet.
func (s *UserStore) Migrate(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schema)
	return err
}

// GetByEmail returns the full record including the password hash.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (veriauth.User, error) {
	var u veriauth.User
	err := s.db.QueryRow(ctx,
		`SELECT id, name, email, password_hash FROM users WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return veriauth.User{}, veriauth.ErrUserNotFound
	}
	if err != nil {
		return veriauth.User{}, err
	}
	return u, nil
}

// GetByID returns the record without its password hash.
func (s *UserStore) GetByID(ctx context.Context, id string) (veriauth.User, error) {
	var u veriauth.User
	err := s.db.QueryRow(ctx,
		`SELECT id, name, email FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Name, &u.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return veriauth.User{}, veriauth.ErrUserNotFound
	}
	if err != nil {
		return veriauth.User{}, err
	}
	return u, nil
}

// Create inserts the record, reporting veriauth.ErrAccountExists when the
// email is already taken. ON CONFLICT DO NOTHING yields no row on a
// duplicate, so the race between two concurrent verifications resolves in
// the database, not in application code.
func (s *UserStore) Create(ctx context.Context, in veriauth.CreateUser) (veriauth.User, error) {
	var u veriauth.User
	err := s.db.QueryRow(ctx,
		`INSERT INTO users (id, name, email, password_hash)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (email) DO NOTHING
		 RETURNING id, name, email, password_hash`,
		uuid.NewString(), in.Name, in.Email, in.PasswordHash,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return veriauth.User{}, veriauth.ErrAccountExists
	}
	if err != nil {
		return veriauth.User{}, err
	}
	return u, nil
}
