package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hongminglow/clubcore/internal/models"
	"github.com/hongminglow/clubcore/internal/storage"
	"github.com/jackc/pgx/v5"
)

// CreateInvite stores an invite for the club's role named invite.Role and
// assigns its id and token.
func (s *Store) CreateInvite(ctx context.Context, invite models.Invite) (models.Invite, error) {
	if !isUUID(invite.ClubID) {
		return models.Invite{}, storage.ErrNotFound
	}
	err := s.pool.QueryRow(ctx,
		`SELECT id::text FROM roles WHERE club_id = $1 AND name = $2;`,
		invite.ClubID, invite.Role,
	).Scan(&invite.RoleID)
	if err != nil {
		return models.Invite{}, notFound(err)
	}

	invite.ID = uuid.NewString()
	invite.Token = uuid.NewString()
	invite.Accepted = false
	err = s.pool.QueryRow(ctx, `
		INSERT INTO invites (id, club_id, email, role_id, token, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at;`,
		invite.ID, invite.ClubID, invite.Email, invite.RoleID, invite.Token, invite.ExpiresAt,
	).Scan(&invite.CreatedAt)
	if err != nil {
		return models.Invite{}, fmt.Errorf("insert invite: %w", err)
	}
	return invite, nil
}

// AcceptInvite locks the invite row, checks it is still open and addressed to
// user, then adds the membership and closes the invite.
func (s *Store) AcceptInvite(ctx context.Context, token string, user models.Identity, now time.Time) (models.ClubUser, error) {
	var cu models.ClubUser
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var (
			inviteID  string
			email     string
			expiresAt time.Time
			accepted  bool
		)
		err := tx.QueryRow(ctx, `
			SELECT i.id::text, i.club_id::text, i.email, i.role_id::text, r.name, i.expires_at, i.accepted
			FROM invites i
			JOIN roles r ON r.id = i.role_id
			WHERE i.token = $1
			FOR UPDATE OF i;`, token,
		).Scan(&inviteID, &cu.ClubID, &email, &cu.RoleID, &cu.Role, &expiresAt, &accepted)
		if err != nil {
			return notFound(err)
		}
		switch {
		case accepted:
			return storage.ErrInviteUsed
		case !now.Before(expiresAt):
			return storage.ErrInviteExpired
		case !strings.EqualFold(email, user.Email):
			return storage.ErrInviteRecipient
		}

		cu.ID = uuid.NewString()
		cu.UserID = user.ID
		err = tx.QueryRow(ctx,
			`INSERT INTO club_users (id, user_id, club_id, role_id) VALUES ($1, $2, $3, $4) RETURNING created_at;`,
			cu.ID, cu.UserID, cu.ClubID, cu.RoleID,
		).Scan(&cu.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return storage.ErrAlreadyExists
			}
			return fmt.Errorf("insert club user: %w", err)
		}
		if _, err := tx.Exec(ctx, `UPDATE invites SET accepted = TRUE WHERE id = $1;`, inviteID); err != nil {
			return fmt.Errorf("close invite: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.ClubUser{}, err
	}
	return cu, nil
}
