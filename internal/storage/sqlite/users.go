package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mmynk/patungan/internal/models"
	"github.com/mmynk/patungan/internal/storage"
)

// UpsertUser inserts a user or refreshes the name of a known email.
func (s *SQLiteStore) UpsertUser(ctx context.Context, user *models.User) error {
	now := time.Now().Unix()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (email, name, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (email) DO UPDATE SET
			name = excluded.name,
			updated_at = excluded.updated_at
		RETURNING created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		user.Email,
		user.Name,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}

	return nil
}

// GetUser retrieves a user by their email address.
func (s *SQLiteStore) GetUser(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT email, name, created_at, updated_at
		FROM users
		WHERE email = ?
	`

	user := &models.User{}
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&user.Email,
		&user.Name,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %s: %w", email, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// DeleteOwnerData removes all bills, notes and chat messages of the owner.
// The user row itself is kept.
func (s *SQLiteStore) DeleteOwnerData(ctx context.Context, owner string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		"DELETE FROM bills WHERE owner = ?",
		"DELETE FROM notes WHERE owner = ?",
		"DELETE FROM chat_messages WHERE owner = ?",
	} {
		if _, err := tx.ExecContext(ctx, stmt, owner); err != nil {
			return fmt.Errorf("failed to delete owner data: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
