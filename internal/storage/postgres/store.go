package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/hongminglow/clubcore/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Ensure Store satisfies the storage interfaces at compile time.
var (
	_ storage.UserStore       = (*Store)(nil)
	_ storage.MembershipStore = (*Store)(nil)
	_ storage.ClubStore       = (*Store)(nil)
	_ storage.RecordStore     = (*Store)(nil)
	_ storage.InviteStore     = (*Store)(nil)
)

// Store provides Postgres-backed persistence for accounts, clubs and section records.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to the database and runs migrations.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies the idempotent schema.
func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS auth_users (
			id UUID PRIMARY KEY,
			email TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS auth_users_email_lower_idx ON auth_users (lower(email));`,
		`CREATE TABLE IF NOT EXISTS clubs (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			trial_ends_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS roles (
			id UUID PRIMARY KEY,
			club_id UUID NOT NULL REFERENCES clubs(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			UNIQUE (club_id, name)
		);`,
		`CREATE TABLE IF NOT EXISTS club_users (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			club_id UUID NOT NULL REFERENCES clubs(id) ON DELETE CASCADE,
			role_id UUID REFERENCES roles(id) ON DELETE SET NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (user_id, club_id)
		);`,
		`CREATE INDEX IF NOT EXISTS club_users_user_idx ON club_users (user_id);`,
		`CREATE TABLE IF NOT EXISTS club_records (
			id UUID PRIMARY KEY,
			club_id UUID NOT NULL REFERENCES clubs(id) ON DELETE CASCADE,
			section TEXT NOT NULL,
			data JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_by UUID,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS club_records_scope_idx ON club_records (club_id, section);`,
		`CREATE TABLE IF NOT EXISTS invites (
			id UUID PRIMARY KEY,
			club_id UUID NOT NULL REFERENCES clubs(id) ON DELETE CASCADE,
			email TEXT NOT NULL,
			role_id UUID NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
			token TEXT NOT NULL UNIQUE,
			expires_at TIMESTAMPTZ NOT NULL,
			accepted BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS invites_club_idx ON invites (club_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ErrNotFound
	}
	return err
}
