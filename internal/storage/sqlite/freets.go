package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fritter-app/fritter/internal/models"
)

// CreateFreet inserts a new freet into the database.
func (s *SQLiteStore) CreateFreet(ctx context.Context, freet *models.Freet) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO freets (id, author_id, content, in_group, created_at) VALUES (?, ?, ?, ?, ?)",
		freet.ID, freet.AuthorID, freet.Content, freet.InGroup, freet.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create freet: %w", err)
	}
	return nil
}

// GetFreet retrieves a freet by ID.
func (s *SQLiteStore) GetFreet(ctx context.Context, id string) (*models.Freet, error) {
	freet := &models.Freet{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, author_id, content, in_group, created_at FROM freets WHERE id = ?",
		id,
	).Scan(&freet.ID, &freet.AuthorID, &freet.Content, &freet.InGroup, &freet.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound("freet %s does not exist", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get freet: %w", err)
	}
	return freet, nil
}

// DeleteFreet removes a freet by ID.
func (s *SQLiteStore) DeleteFreet(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM freets WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete freet: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return models.ErrNotFound("freet %s does not exist", id)
	}
	return nil
}
