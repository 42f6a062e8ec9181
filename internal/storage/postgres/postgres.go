// Package postgres provides a PostgreSQL-backed implementation of the
// storage.Store interface for hosted deployments.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mmynk/patungan/internal/models"
	"github.com/mmynk/patungan/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store implements storage.Store on a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to databaseURL, verifies the connection and applies the schema.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	if cfg.ConnConfig.RuntimeParams == nil {
		cfg.ConnConfig.RuntimeParams = map[string]string{}
	}
	cfg.ConnConfig.RuntimeParams["application_name"] = "patungan"

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// SaveBill upserts the header and replaces the child rows in one transaction.
func (s *Store) SaveBill(ctx context.Context, bill *models.Bill) error {
	now := time.Now().Unix()
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	if bill.CreatedAt == 0 {
		bill.CreatedAt = now
	}
	bill.UpdatedAt = now

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO bills (id, owner, kind, title, name, total, service_enabled, tax_enabled,
			service_override, tax_override, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (owner, kind, title) DO UPDATE SET
			name = EXCLUDED.name,
			total = EXCLUDED.total,
			service_enabled = EXCLUDED.service_enabled,
			tax_enabled = EXCLUDED.tax_enabled,
			service_override = EXCLUDED.service_override,
			tax_override = EXCLUDED.tax_override,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at`,
		bill.ID, bill.Owner, string(bill.Kind), bill.Title, bill.DisplayName(), bill.Total,
		bill.Surcharge.ServiceEnabled, bill.Surcharge.TaxEnabled,
		bill.Surcharge.ServiceOverride, bill.Surcharge.TaxOverride,
		bill.CreatedAt, bill.UpdatedAt,
	).Scan(&bill.ID, &bill.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert bill: %w", err)
	}

	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM item_assignments WHERE bill_id = $1`, bill.ID)
	batch.Queue(`DELETE FROM items WHERE bill_id = $1`, bill.ID)
	batch.Queue(`DELETE FROM participants WHERE bill_id = $1`, bill.ID)

	known := make(map[string]bool, len(bill.Participants))
	for i, p := range bill.Participants {
		batch.Queue(`INSERT INTO participants (bill_id, id, name, position) VALUES ($1, $2, $3, $4)`,
			bill.ID, p.ID, p.Name, i)
		known[p.ID] = true
	}
	for i := range bill.Items {
		item := &bill.Items[i]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		batch.Queue(`INSERT INTO items (bill_id, id, name, price, position) VALUES ($1, $2, $3, $4, $5)`,
			bill.ID, item.ID, item.Name, item.Price, i)

		pos := 0
		seen := make(map[string]bool, len(item.AssignedTo))
		for _, pid := range item.AssignedTo {
			if !known[pid] || seen[pid] {
				continue
			}
			seen[pid] = true
			batch.Queue(`INSERT INTO item_assignments (bill_id, item_id, participant_id, position) VALUES ($1, $2, $3, $4)`,
				bill.ID, item.ID, pid, pos)
			pos++
		}
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to replace bill rows: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetBill retrieves a bill by key, including all items and participants.
func (s *Store) GetBill(ctx context.Context, key models.BillKey) (*models.Bill, error) {
	bill := &models.Bill{Participants: []models.Participant{}, Items: []models.LineItem{}}
	var kind string
	err := s.pool.QueryRow(ctx, `
		SELECT id, owner, kind, title, name, total, service_enabled, tax_enabled,
			service_override, tax_override, created_at, updated_at
		FROM bills WHERE owner = $1 AND kind = $2 AND title = $3`,
		key.Owner, string(key.Kind), key.Title,
	).Scan(&bill.ID, &bill.Owner, &kind, &bill.Title, &bill.Name, &bill.Total,
		&bill.Surcharge.ServiceEnabled, &bill.Surcharge.TaxEnabled,
		&bill.Surcharge.ServiceOverride, &bill.Surcharge.TaxOverride,
		&bill.CreatedAt, &bill.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("bill %s: %w", key, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	bill.Kind = models.BillKind(kind)

	rows, err := s.pool.Query(ctx,
		`SELECT id, name FROM participants WHERE bill_id = $1 ORDER BY position`, bill.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	participants, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Participant, error) {
		var p models.Participant
		err := row.Scan(&p.ID, &p.Name)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan participants: %w", err)
	}
	bill.Participants = append(bill.Participants, participants...)

	rows, err = s.pool.Query(ctx,
		`SELECT id, name, price FROM items WHERE bill_id = $1 ORDER BY position`, bill.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.LineItem, error) {
		item := models.LineItem{AssignedTo: []string{}}
		err := row.Scan(&item.ID, &item.Name, &item.Price)
		return item, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan items: %w", err)
	}
	bill.Items = append(bill.Items, items...)

	index := make(map[string]int, len(bill.Items))
	for i, it := range bill.Items {
		index[it.ID] = i
	}
	rows, err = s.pool.Query(ctx, `
		SELECT item_id, participant_id FROM item_assignments
		WHERE bill_id = $1 ORDER BY item_id, position`, bill.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get item assignments: %w", err)
	}
	var itemID, pid string
	_, err = pgx.ForEachRow(rows, []any{&itemID, &pid}, func() error {
		if i, ok := index[itemID]; ok {
			bill.Items[i].AssignedTo = append(bill.Items[i].AssignedTo, pid)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan assignments: %w", err)
	}

	return bill, nil
}

// DeleteBill removes a bill; child rows cascade.
func (s *Store) DeleteBill(ctx context.Context, key models.BillKey) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM bills WHERE owner = $1 AND kind = $2 AND title = $3`,
		key.Owner, string(key.Kind), key.Title)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("bill %s: %w", key, storage.ErrNotFound)
	}
	return nil
}

// ListBills returns bill headers, most recently updated first.
func (s *Store) ListBills(ctx context.Context, owner string) ([]models.BillHeader, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT b.kind, b.title, b.name, b.total,
			(SELECT COUNT(*) FROM participants p WHERE p.bill_id = b.id),
			(SELECT COALESCE(SUM(i.price), 0) FROM items i WHERE i.bill_id = b.id),
			b.created_at, b.updated_at
		FROM bills b
		WHERE b.owner = $1
		ORDER BY b.updated_at DESC, b.title`, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	headers, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.BillHeader, error) {
		var h models.BillHeader
		var kind string
		var itemsTotal float64
		err := row.Scan(&kind, &h.Title, &h.Name, &h.Total, &h.ParticipantCount,
			&itemsTotal, &h.CreatedAt, &h.UpdatedAt)
		h.Kind = models.BillKind(kind)
		if h.Kind != models.KindEven {
			h.Total = itemsTotal
		}
		return h, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan bills: %w", err)
	}
	if headers == nil {
		headers = []models.BillHeader{}
	}
	return headers, nil
}
