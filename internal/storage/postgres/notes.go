package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mmynk/patungan/internal/models"
	"github.com/mmynk/patungan/internal/storage"
)

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (s *Store) ListNotes(ctx context.Context, owner string) ([]models.Note, error) {
	return listNotes(ctx, s.pool, owner)
}

func listNotes(ctx context.Context, q querier, owner string) ([]models.Note, error) {
	rows, err := q.Query(ctx, `
		SELECT id, owner, title, content, sort_order, created_at, updated_at
		FROM notes WHERE owner = $1
		ORDER BY sort_order, created_at`, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	notes, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Note, error) {
		var n models.Note
		err := row.Scan(&n.ID, &n.Owner, &n.Title, &n.Content, &n.SortOrder, &n.CreatedAt, &n.UpdatedAt)
		return n, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan notes: %w", err)
	}
	if notes == nil {
		notes = []models.Note{}
	}
	return notes, nil
}

func (s *Store) CreateNote(ctx context.Context, note *models.Note) error {
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

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`UPDATE notes SET sort_order = sort_order + 1 WHERE owner = $1`, note.Owner); err != nil {
			return fmt.Errorf("failed to shift notes: %w", err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO notes (id, owner, title, content, sort_order, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			note.ID, note.Owner, note.Title, note.Content, note.SortOrder, note.CreatedAt, note.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert note: %w", err)
		}
		return nil
	})
}

func (s *Store) UpdateNote(ctx context.Context, note *models.Note) error {
	if note.Title == "" {
		note.Title = models.UntitledNote
	}
	note.UpdatedAt = time.Now().Unix()

	err := s.pool.QueryRow(ctx, `
		UPDATE notes SET title = $1, content = $2, updated_at = $3
		WHERE id = $4 AND owner = $5
		RETURNING sort_order, created_at`,
		note.Title, note.Content, note.UpdatedAt, note.ID, note.Owner,
	).Scan(&note.SortOrder, &note.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("note %s: %w", note.ID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}
	return nil
}

func (s *Store) DeleteNote(ctx context.Context, owner, id string) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM notes WHERE id = $1 AND owner = $2`, id, owner)
		if err != nil {
			return fmt.Errorf("failed to delete note: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("note %s: %w", id, storage.ErrNotFound)
		}
		notes, err := listNotes(ctx, tx, owner)
		if err != nil {
			return err
		}
		return renumber(ctx, tx, owner, noteIDs(notes))
	})
}

func (s *Store) ReorderNotes(ctx context.Context, owner string, ids []string) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		notes, err := listNotes(ctx, tx, owner)
		if err != nil {
			return err
		}
		order, err := storage.MergeOrder(noteIDs(notes), ids)
		if err != nil {
			return err
		}
		return renumber(ctx, tx, owner, order)
	})
}

func renumber(ctx context.Context, tx pgx.Tx, owner string, ids []string) error {
	batch := &pgx.Batch{}
	for i, id := range ids {
		batch.Queue(`UPDATE notes SET sort_order = $1 WHERE id = $2 AND owner = $3`, i, id, owner)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to renumber notes: %w", err)
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
