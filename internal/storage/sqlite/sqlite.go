// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/patungan/internal/models"
	"github.com/mmynk/patungan/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Pragmas in the DSN apply to every pooled connection
	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows one writer at a time
	db.SetMaxOpenConns(1)

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveBill upserts the bill header, then replaces participants, items and
// assignments. Assignments are removed before the items they reference.
func (s *SQLiteStore) SaveBill(ctx context.Context, bill *models.Bill) error {
	now := time.Now().Unix()
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	if bill.CreatedAt == 0 {
		bill.CreatedAt = now
	}
	bill.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Upsert header; an existing row keeps its id and created_at
	err = tx.QueryRowContext(ctx, `
		INSERT INTO bills (id, owner, kind, title, name, total, service_enabled, tax_enabled,
			service_override, tax_override, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (owner, kind, title) DO UPDATE SET
			name = excluded.name,
			total = excluded.total,
			service_enabled = excluded.service_enabled,
			tax_enabled = excluded.tax_enabled,
			service_override = excluded.service_override,
			tax_override = excluded.tax_override,
			updated_at = excluded.updated_at
		RETURNING id, created_at`,
		bill.ID, bill.Owner, string(bill.Kind), bill.Title, bill.DisplayName(), bill.Total,
		bill.Surcharge.ServiceEnabled, bill.Surcharge.TaxEnabled,
		nullFloat(bill.Surcharge.ServiceOverride), nullFloat(bill.Surcharge.TaxOverride),
		bill.CreatedAt, bill.UpdatedAt,
	).Scan(&bill.ID, &bill.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert bill: %w", err)
	}

	// Replace child rows
	if _, err := tx.ExecContext(ctx, "DELETE FROM item_assignments WHERE bill_id = ?", bill.ID); err != nil {
		return fmt.Errorf("failed to delete item assignments: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM items WHERE bill_id = ?", bill.ID); err != nil {
		return fmt.Errorf("failed to delete items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM participants WHERE bill_id = ?", bill.ID); err != nil {
		return fmt.Errorf("failed to delete participants: %w", err)
	}

	known := make(map[string]bool, len(bill.Participants))
	for i, p := range bill.Participants {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO participants (id, bill_id, name, position) VALUES (?, ?, ?, ?)",
			p.ID, bill.ID, p.Name, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
		known[p.ID] = true
	}

	for i := range bill.Items {
		item := &bill.Items[i]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}

		_, err = tx.ExecContext(ctx,
			"INSERT INTO items (id, bill_id, name, price, position) VALUES (?, ?, ?, ?, ?)",
			item.ID, bill.ID, item.Name, item.Price, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}

		// Insert item assignments
		for pos, pid := range assignable(item.AssignedTo, known) {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO item_assignments (bill_id, item_id, participant_id, position) VALUES (?, ?, ?, ?)",
				bill.ID, item.ID, pid, pos,
			)
			if err != nil {
				return fmt.Errorf("failed to insert item assignment: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetBill retrieves a bill by key, including all items and participants.
func (s *SQLiteStore) GetBill(ctx context.Context, key models.BillKey) (*models.Bill, error) {
	bill := &models.Bill{Participants: []models.Participant{}, Items: []models.LineItem{}}
	var kind string
	var serviceOverride, taxOverride sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, owner, kind, title, name, total, service_enabled, tax_enabled,
			service_override, tax_override, created_at, updated_at
		FROM bills WHERE owner = ? AND kind = ? AND title = ?`,
		key.Owner, string(key.Kind), key.Title,
	).Scan(&bill.ID, &bill.Owner, &kind, &bill.Title, &bill.Name, &bill.Total,
		&bill.Surcharge.ServiceEnabled, &bill.Surcharge.TaxEnabled,
		&serviceOverride, &taxOverride, &bill.CreatedAt, &bill.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("bill %s: %w", key, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	bill.Kind = models.BillKind(kind)
	bill.Surcharge.ServiceOverride = floatPtr(serviceOverride)
	bill.Surcharge.TaxOverride = floatPtr(taxOverride)

	// Get participants
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name FROM participants WHERE bill_id = ? ORDER BY position",
		bill.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		bill.Participants = append(bill.Participants, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	// Get items
	itemRows, err := s.db.QueryContext(ctx,
		"SELECT id, name, price FROM items WHERE bill_id = ? ORDER BY position",
		bill.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	index := make(map[string]int)
	for itemRows.Next() {
		item := models.LineItem{AssignedTo: []string{}}
		if err := itemRows.Scan(&item.ID, &item.Name, &item.Price); err != nil {
			itemRows.Close()
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		index[item.ID] = len(bill.Items)
		bill.Items = append(bill.Items, item)
	}
	itemRows.Close()
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	// Get assignments for all items of the bill
	assignRows, err := s.db.QueryContext(ctx, `
		SELECT item_id, participant_id FROM item_assignments
		WHERE bill_id = ?
		ORDER BY item_id, position`,
		bill.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get item assignments: %w", err)
	}
	defer assignRows.Close()
	for assignRows.Next() {
		var itemID, pid string
		if err := assignRows.Scan(&itemID, &pid); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		if i, ok := index[itemID]; ok {
			bill.Items[i].AssignedTo = append(bill.Items[i].AssignedTo, pid)
		}
	}
	if err := assignRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assignments: %w", err)
	}

	return bill, nil
}

// DeleteBill removes a bill; child rows cascade.
func (s *SQLiteStore) DeleteBill(ctx context.Context, key models.BillKey) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM bills WHERE owner = ? AND kind = ? AND title = ?",
		key.Owner, string(key.Kind), key.Title,
	)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("bill %s: %w", key, storage.ErrNotFound)
	}
	return nil
}

// ListBills returns bill headers, most recently updated first. Itemized kinds
// report the sum of their item prices as total.
func (s *SQLiteStore) ListBills(ctx context.Context, owner string) ([]models.BillHeader, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.kind, b.title, b.name, b.total,
			(SELECT COUNT(*) FROM participants p WHERE p.bill_id = b.id),
			(SELECT COALESCE(SUM(i.price), 0) FROM items i WHERE i.bill_id = b.id),
			b.created_at, b.updated_at
		FROM bills b
		WHERE b.owner = ?
		ORDER BY b.updated_at DESC, b.title`,
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	headers := []models.BillHeader{}
	for rows.Next() {
		var h models.BillHeader
		var kind string
		var itemsTotal float64
		if err := rows.Scan(&kind, &h.Title, &h.Name, &h.Total, &h.ParticipantCount,
			&itemsTotal, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		h.Kind = models.BillKind(kind)
		if h.Kind != models.KindEven {
			h.Total = itemsTotal
		}
		headers = append(headers, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}

	return headers, nil
}

// assignable filters assignee IDs down to known participants, without
// duplicates. Stale references carry no money, so they are not persisted.
func assignable(ids []string, known map[string]bool) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if known[id] && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}
