package syncer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mmynk/patungan/internal/metrics"
	"github.com/mmynk/patungan/internal/models"
	"github.com/mmynk/patungan/internal/repository"
)

// DefaultWindow is the quiet period before a change is written remotely.
const DefaultWindow = 500 * time.Millisecond

// writeTimeout bounds one background remote write.
const writeTimeout = 10 * time.Second

// Client applies the load, save and delete protocols for bills.
//
// Load consults the remote first and falls back to the local draft. Changed
// mirrors the state into the draft synchronously and schedules a debounced
// remote write. Changes to a key are ignored until that key has been loaded.
type Client struct {
	repo      *repository.Repository
	debouncer *Debouncer

	mu     sync.Mutex
	loaded map[models.BillKey]bool
}

// NewClient creates a client writing through repo after window.
func NewClient(repo *repository.Repository, window time.Duration) *Client {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Client{
		repo:      repo,
		debouncer: NewDebouncer(window),
		loaded:    make(map[models.BillKey]bool),
	}
}

// Load hydrates the bill for key and marks the key as loaded.
func (c *Client) Load(ctx context.Context, key models.BillKey) (*models.Bill, repository.Source) {
	bill, src := c.repo.LoadBill(ctx, key)

	c.mu.Lock()
	c.loaded[key] = true
	c.mu.Unlock()

	slog.Debug("Bill loaded", "bill_key", key.String(), "source", src.String())
	return bill, src
}

// Loaded reports whether key has been hydrated.
func (c *Client) Loaded(key models.BillKey) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded[key]
}

// Changed persists a new state of the bill. It reports false when the change
// was ignored because the bill has not been loaded yet.
func (c *Client) Changed(bill *models.Bill) bool {
	key := bill.Key()
	if !c.Loaded(key) {
		slog.Debug("Ignoring change before load", "bill_key", key.String())
		return false
	}

	snapshot := bill.Clone()
	c.repo.SaveDraft(snapshot)
	c.debouncer.Schedule(key.String(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if c.repo.SaveBill(ctx, snapshot) {
			metrics.SyncWritesTotal.WithLabelValues(metrics.OutcomeOK).Inc()
		} else {
			metrics.SyncWritesTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		}
	})
	return true
}

// Delete cancels any pending write, deletes the bill remotely and clears the
// local draft. A write already in flight finishes first, so it cannot land
// after the delete.
func (c *Client) Delete(ctx context.Context, key models.BillKey) repository.DeleteResult {
	c.mu.Lock()
	delete(c.loaded, key)
	c.mu.Unlock()

	var result repository.DeleteResult
	c.debouncer.CancelAndRun(key.String(), func() {
		result = c.repo.DeleteBill(ctx, key)
	})
	return result
}

// Pending reports whether a remote write for key is waiting.
func (c *Client) Pending(key models.BillKey) bool {
	return c.debouncer.Pending(key.String())
}

// Flush writes every pending change now.
func (c *Client) Flush() {
	c.debouncer.Flush()
}

// Close flushes pending changes and stops accepting new ones.
func (c *Client) Close() {
	c.debouncer.Close()
}
