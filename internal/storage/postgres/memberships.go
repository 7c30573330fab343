package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hongminglow/clubcore/internal/models"
	"github.com/hongminglow/clubcore/internal/storage"
	"github.com/jackc/pgx/v5"
)

const membershipColumns = `
	cu.id::text, cu.user_id::text, cu.club_id::text,
	COALESCE(cu.role_id::text, ''), COALESCE(r.name, ''), cu.created_at`

// FindMembership returns the club_users row for exactly this user and club.
func (s *Store) FindMembership(ctx context.Context, userID, clubID string) (models.ClubUser, error) {
	query := `
		SELECT` + membershipColumns + `
		FROM club_users cu
		LEFT JOIN roles r ON r.id = cu.role_id
		WHERE cu.user_id = $1 AND cu.club_id = $2
		LIMIT 1;`
	return scanMembership(s.pool.QueryRow(ctx, query, userID, clubID))
}

// FindFirstMembership returns the user's oldest membership in any club.
func (s *Store) FindFirstMembership(ctx context.Context, userID string) (models.ClubUser, error) {
	query := `
		SELECT` + membershipColumns + `
		FROM club_users cu
		LEFT JOIN roles r ON r.id = cu.role_id
		WHERE cu.user_id = $1
		ORDER BY cu.created_at
		LIMIT 1;`
	return scanMembership(s.pool.QueryRow(ctx, query, userID))
}

// ListMemberships returns every club the user belongs to.
func (s *Store) ListMemberships(ctx context.Context, userID string) ([]models.ClubMembership, error) {
	const query = `
		SELECT c.id::text, c.name, COALESCE(r.name, '')
		FROM club_users cu
		JOIN clubs c ON c.id = cu.club_id
		LEFT JOIN roles r ON r.id = cu.role_id
		WHERE cu.user_id = $1
		ORDER BY c.name;`
	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	defer rows.Close()

	var out []models.ClubMembership
	for rows.Next() {
		var m models.ClubMembership
		if err := rows.Scan(&m.ClubID, &m.ClubName, &m.Role); err != nil {
			return nil, err
		}
		if m.Role == "" {
			m.Role = models.RoleMember
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GrantRole adds the user to the club with the club's role of the given name.
func (s *Store) GrantRole(ctx context.Context, userID, clubID, roleName string) (models.ClubUser, error) {
	var roleID string
	err := s.pool.QueryRow(ctx,
		`SELECT id::text FROM roles WHERE club_id = $1 AND name = $2;`,
		clubID, roleName,
	).Scan(&roleID)
	if err != nil {
		return models.ClubUser{}, notFound(err)
	}

	cu := models.ClubUser{
		ID:     uuid.NewString(),
		UserID: userID,
		ClubID: clubID,
		RoleID: roleID,
		Role:   roleName,
	}
	err = s.pool.QueryRow(ctx,
		`INSERT INTO club_users (id, user_id, club_id, role_id) VALUES ($1, $2, $3, $4) RETURNING created_at;`,
		cu.ID, cu.UserID, cu.ClubID, cu.RoleID,
	).Scan(&cu.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ClubUser{}, storage.ErrAlreadyExists
		}
		return models.ClubUser{}, fmt.Errorf("insert club user: %w", err)
	}
	return cu, nil
}

func scanMembership(row pgx.Row) (models.ClubUser, error) {
	var cu models.ClubUser
	err := row.Scan(&cu.ID, &cu.UserID, &cu.ClubID, &cu.RoleID, &cu.Role, &cu.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ClubUser{}, storage.ErrNotFound
		}
		return models.ClubUser{}, err
	}
	return cu, nil
}
