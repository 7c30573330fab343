package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hongminglow/clubcore/internal/models"
	"github.com/hongminglow/clubcore/internal/storage"
	"github.com/jackc/pgx/v5"
)

const recordColumns = `id::text, club_id::text, section, data, COALESCE(created_by::text, ''), created_at, updated_at`

// ListRecords returns the section's rows for one club, newest first.
func (s *Store) ListRecords(ctx context.Context, clubID, section string) ([]models.Record, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+recordColumns+` FROM club_records WHERE club_id = $1 AND section = $2 ORDER BY created_at DESC;`,
		clubID, section,
	)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	out := []models.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// GetRecord fetches one row; rows of other clubs are reported as not found.
func (s *Store) GetRecord(ctx context.Context, clubID, section, id string) (models.Record, error) {
	if !isUUID(id) {
		return models.Record{}, storage.ErrNotFound
	}
	row := s.pool.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM club_records WHERE id = $1 AND club_id = $2 AND section = $3;`,
		id, clubID, section,
	)
	return scanRecord(row)
}

// CreateRecord inserts a row for the record's club and section.
func (s *Store) CreateRecord(ctx context.Context, record models.Record) (models.Record, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	var createdBy any
	if record.CreatedBy != "" {
		createdBy = record.CreatedBy
	}
	row := s.pool.QueryRow(ctx,
		`INSERT INTO club_records (id, club_id, section, data, created_by)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+recordColumns+`;`,
		record.ID, record.ClubID, record.Section, []byte(record.Data), createdBy,
	)
	return scanRecord(row)
}

// UpdateRecord replaces the row's data, scoped by club and section.
func (s *Store) UpdateRecord(ctx context.Context, record models.Record) (models.Record, error) {
	if !isUUID(record.ID) {
		return models.Record{}, storage.ErrNotFound
	}
	row := s.pool.QueryRow(ctx,
		`UPDATE club_records SET data = $4, updated_at = NOW()
		 WHERE id = $1 AND club_id = $2 AND section = $3
		 RETURNING `+recordColumns+`;`,
		record.ID, record.ClubID, record.Section, []byte(record.Data),
	)
	return scanRecord(row)
}

// DeleteRecord removes a row, scoped by club and section.
func (s *Store) DeleteRecord(ctx context.Context, clubID, section, id string) error {
	if !isUUID(id) {
		return storage.ErrNotFound
	}
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM club_records WHERE id = $1 AND club_id = $2 AND section = $3;`,
		id, clubID, section,
	)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanRecord(row pgx.Row) (models.Record, error) {
	var rec models.Record
	var data []byte
	if err := row.Scan(&rec.ID, &rec.ClubID, &rec.Section, &data, &rec.CreatedBy, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return models.Record{}, notFound(err)
	}
	rec.Data = data
	return rec, nil
}

// isUUID guards uuid columns so a malformed path id reads as a missing row
// instead of a cast error.
func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
