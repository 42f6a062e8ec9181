package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mmynk/patungan/internal/models"
	"github.com/mmynk/patungan/internal/storage"
)

func (s *Store) ListChat(ctx context.Context, owner string) ([]models.ChatMessage, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT role, content, created_at FROM chat_messages WHERE owner = $1 ORDER BY id`, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	msgs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.ChatMessage, error) {
		var m models.ChatMessage
		var role string
		err := row.Scan(&role, &m.Content, &m.CreatedAt)
		m.Role = models.ChatRole(role)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan chat messages: %w", err)
	}
	if msgs == nil {
		msgs = []models.ChatMessage{}
	}
	return msgs, nil
}

func (s *Store) AppendChat(ctx context.Context, owner string, msgs ...models.ChatMessage) error {
	now := time.Now().Unix()
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		for _, m := range msgs {
			if m.CreatedAt == 0 {
				m.CreatedAt = now
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO chat_messages (owner, role, content, created_at) VALUES ($1, $2, $3, $4)`,
				owner, string(m.Role), m.Content, m.CreatedAt,
			); err != nil {
				return fmt.Errorf("failed to insert chat message: %w", err)
			}
		}
		return nil
	})
}

func (s *Store) ClearChat(ctx context.Context, owner string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM chat_messages WHERE owner = $1`, owner); err != nil {
		return fmt.Errorf("failed to clear chat messages: %w", err)
	}
	return nil
}

func (s *Store) UpsertUser(ctx context.Context, user *models.User) error {
	now := time.Now().Unix()
	user.CreatedAt = now
	user.UpdatedAt = now
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (email, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, updated_at = EXCLUDED.updated_at
		RETURNING created_at`,
		user.Email, user.Name, user.CreatedAt, user.UpdatedAt,
	).Scan(&user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	err := s.pool.QueryRow(ctx,
		`SELECT email, name, created_at, updated_at FROM users WHERE email = $1`, email,
	).Scan(&user.Email, &user.Name, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", email, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

func (s *Store) DeleteOwnerData(ctx context.Context, owner string) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		for _, stmt := range []string{
			`DELETE FROM bills WHERE owner = $1`,
			`DELETE FROM notes WHERE owner = $1`,
			`DELETE FROM chat_messages WHERE owner = $1`,
		} {
			if _, err := tx.Exec(ctx, stmt, owner); err != nil {
				return fmt.Errorf("failed to delete owner data: %w", err)
			}
		}
		return nil
	})
}
