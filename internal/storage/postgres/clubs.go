package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hongminglow/clubcore/internal/models"
	"github.com/hongminglow/clubcore/internal/storage"
	"github.com/jackc/pgx/v5"
)

// CreateClub inserts the club, its admin and member roles, and makes the owner admin.
func (s *Store) CreateClub(ctx context.Context, name, ownerID string, trialEndsAt time.Time) (models.Club, error) {
	club := models.Club{ID: uuid.NewString(), Name: name}
	adminRoleID := uuid.NewString()

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO clubs (id, name, trial_ends_at) VALUES ($1, $2, $3) RETURNING trial_ends_at, created_at;`,
			club.ID, club.Name, trialEndsAt,
		).Scan(&club.TrialEndsAt, &club.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert club: %w", err)
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO roles (id, club_id, name) VALUES ($1, $2, $3), ($4, $2, $5);`,
			adminRoleID, club.ID, models.RoleAdmin, uuid.NewString(), models.RoleMember,
		); err != nil {
			return fmt.Errorf("insert roles: %w", err)
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO club_users (id, user_id, club_id, role_id) VALUES ($1, $2, $3, $4);`,
			uuid.NewString(), ownerID, club.ID, adminRoleID,
		); err != nil {
			return fmt.Errorf("insert owner: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.Club{}, err
	}
	return club, nil
}

// GetClub fetches one club by id.
func (s *Store) GetClub(ctx context.Context, clubID string) (models.Club, error) {
	var club models.Club
	err := s.pool.QueryRow(ctx,
		`SELECT id::text, name, trial_ends_at, created_at FROM clubs WHERE id = $1;`,
		clubID,
	).Scan(&club.ID, &club.Name, &club.TrialEndsAt, &club.CreatedAt)
	if err != nil {
		return models.Club{}, notFound(err)
	}
	return club, nil
}

// TrialEndsAt returns the club's trial expiry, nil when unset.
func (s *Store) TrialEndsAt(ctx context.Context, clubID string) (*time.Time, error) {
	var endsAt *time.Time
	err := s.pool.QueryRow(ctx, `SELECT trial_ends_at FROM clubs WHERE id = $1;`, clubID).Scan(&endsAt)
	if err != nil {
		return nil, notFound(err)
	}
	return endsAt, nil
}

// SetTrialEndsAt overwrites the club's trial expiry.
func (s *Store) SetTrialEndsAt(ctx context.Context, clubID string, endsAt time.Time) error {
	tag, err := s.pool.Exec(ctx, `UPDATE clubs SET trial_ends_at = $2 WHERE id = $1;`, clubID, endsAt)
	if err != nil {
		return fmt.Errorf("update trial: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
