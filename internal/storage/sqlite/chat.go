package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/mmynk/patungan/internal/models"
)

// ListChat returns the owner's conversation oldest first.
func (s *SQLiteStore) ListChat(ctx context.Context, owner string) ([]models.ChatMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT role, content, created_at FROM chat_messages WHERE owner = ? ORDER BY id",
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	defer rows.Close()

	msgs := []models.ChatMessage{}
	for rows.Next() {
		var m models.ChatMessage
		var role string
		if err := rows.Scan(&role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		m.Role = models.ChatRole(role)
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chat messages: %w", err)
	}
	return msgs, nil
}

// AppendChat adds messages to the owner's conversation in one transaction.
func (s *SQLiteStore) AppendChat(ctx context.Context, owner string, msgs ...models.ChatMessage) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for _, m := range msgs {
		if m.CreatedAt == 0 {
			m.CreatedAt = now
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO chat_messages (owner, role, content, created_at) VALUES (?, ?, ?, ?)",
			owner, string(m.Role), m.Content, m.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert chat message: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ClearChat removes the owner's conversation.
func (s *SQLiteStore) ClearChat(ctx context.Context, owner string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM chat_messages WHERE owner = ?", owner); err != nil {
		return fmt.Errorf("failed to clear chat messages: %w", err)
	}
	return nil
}
