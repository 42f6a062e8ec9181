package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/patungan/internal/models"
	"github.com/mmynk/patungan/internal/storage"
)

// ListNotes returns the owner's notes by ascending sort order.
func (s *SQLiteStore) ListNotes(ctx context.Context, owner string) ([]models.Note, error) {
	return listNotes(ctx, s.db, owner)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func listNotes(ctx context.Context, q querier, owner string) ([]models.Note, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, owner, title, content, sort_order, created_at, updated_at
		FROM notes WHERE owner = ?
		ORDER BY sort_order, created_at`,
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.ID, &n.Owner, &n.Title, &n.Content, &n.SortOrder, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notes: %w", err)
	}
	return notes, nil
}

// CreateNote inserts the note at the top; existing notes shift down by one.
func (s *SQLiteStore) CreateNote(ctx context.Context, note *models.Note) error {
	now := time.Now().Unix()
	if note.ID == "" {
		note.ID = uuid.New().String()
	}
	if note.Title == "" {
		note.Title = models.UntitledNote
	}
	note.SortOrder = 0
	note.CreatedAt = now
	note.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"UPDATE notes SET sort_order = sort_order + 1 WHERE owner = ?",
		note.Owner,
	); err != nil {
		return fmt.Errorf("failed to shift notes: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO notes (id, owner, title, content, sort_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		note.ID, note.Owner, note.Title, note.Content, note.SortOrder, note.CreatedAt, note.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpdateNote changes the title and content of a note.
func (s *SQLiteStore) UpdateNote(ctx context.Context, note *models.Note) error {
	if note.Title == "" {
		note.Title = models.UntitledNote
	}
	note.UpdatedAt = time.Now().Unix()

	err := s.db.QueryRowContext(ctx, `
		UPDATE notes SET title = ?, content = ?, updated_at = ?
		WHERE id = ? AND owner = ?
		RETURNING sort_order, created_at`,
		note.Title, note.Content, note.UpdatedAt, note.ID, note.Owner,
	).Scan(&note.SortOrder, &note.CreatedAt)
	if err == sql.ErrNoRows {
		return fmt.Errorf("note %s: %w", note.ID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}
	return nil
}

// DeleteNote removes a note and closes the gap it leaves in the ranks.
func (s *SQLiteStore) DeleteNote(ctx context.Context, owner, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM notes WHERE id = ? AND owner = ?", id, owner)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	} else if n == 0 {
		return fmt.Errorf("note %s: %w", id, storage.ErrNotFound)
	}

	notes, err := listNotes(ctx, tx, owner)
	if err != nil {
		return err
	}
	if err := renumber(ctx, tx, owner, noteIDs(notes)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ReorderNotes ranks the listed notes first, in the given order, followed by
// the unlisted ones in their current order.
func (s *SQLiteStore) ReorderNotes(ctx context.Context, owner string, ids []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	notes, err := listNotes(ctx, tx, owner)
	if err != nil {
		return err
	}
	order, err := storage.MergeOrder(noteIDs(notes), ids)
	if err != nil {
		return err
	}
	if err := renumber(ctx, tx, owner, order); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func renumber(ctx context.Context, tx *sql.Tx, owner string, ids []string) error {
	for i, id := range ids {
		if _, err := tx.ExecContext(ctx,
			"UPDATE notes SET sort_order = ? WHERE id = ? AND owner = ?",
			i, id, owner,
		); err != nil {
			return fmt.Errorf("failed to renumber notes: %w", err)
		}
	}
	return nil
}

func noteIDs(notes []models.Note) []string {
	ids := make([]string, len(notes))
	for i, n := range notes {
		ids[i] = n.ID
	}
	return ids
}
