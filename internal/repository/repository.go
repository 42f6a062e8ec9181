// Package repository reconciles the remote store with the local draft store.
//
// The remote copy is authoritative whenever it can be reached. The local
// draft is the fallback when it cannot. Remote failures never propagate as
// errors: they are logged, reported through the Notifier and folded into a
// boolean or an outcome value.
package repository

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/mmynk/patungan/internal/draft"
	"github.com/mmynk/patungan/internal/models"
	"github.com/mmynk/patungan/internal/storage"
)

// Notifier receives non-fatal messages meant for the user.
type Notifier interface {
	Notify(msg string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(msg string)

func (f NotifierFunc) Notify(msg string) { f(msg) }

// Discard drops every notification.
var Discard Notifier = NotifierFunc(func(string) {})

// Source tells where a loaded aggregate came from.
type Source int

const (
	SourceNone Source = iota
	SourceRemote
	SourceDraft
)

func (s Source) String() string {
	switch s {
	case SourceRemote:
		return "remote"
	case SourceDraft:
		return "draft"
	default:
		return "none"
	}
}

// DeleteResult is the outcome of a bill deletion.
type DeleteResult int

const (
	Deleted DeleteResult = iota
	// NotFound means the remote had no such bill. Not an error.
	NotFound
	// RemoteFailed means the remote could not be reached. The local draft is
	// removed regardless.
	RemoteFailed
)

func (r DeleteResult) String() string {
	switch r {
	case Deleted:
		return "deleted"
	case NotFound:
		return "not_found"
	default:
		return "remote_failed"
	}
}

// Repository loads and persists aggregates through a remote store and a local
// draft store.
type Repository struct {
	remote storage.Store
	drafts draft.Store
	notify Notifier
}

// New wires a repository. A nil remote runs the repository offline: every
// remote operation reports failure without notifying.
func New(remote storage.Store, drafts draft.Store, notify Notifier) *Repository {
	if notify == nil {
		notify = Discard
	}
	return &Repository{remote: remote, drafts: drafts, notify: notify}
}

// Online reports whether a remote store is configured.
func (r *Repository) Online() bool {
	return r.remote != nil
}

// failed logs a remote failure and notifies the user.
func (r *Repository) failed(msg string, err error, args ...any) {
	slog.Warn(msg, append(args, "error", err)...)
	r.notify.Notify(msg)
}

// LoadBill fetches a bill. The remote copy wins when present; otherwise the
// local draft is used; otherwise a fresh bill is returned with SourceNone.
func (r *Repository) LoadBill(ctx context.Context, key models.BillKey) (*models.Bill, Source) {
	if r.Online() {
		bill, err := r.remote.GetBill(ctx, key)
		switch {
		case err == nil:
			r.drafts.Set(draft.BillKey(key), bill)
			return bill, SourceRemote
		case !errors.Is(err, storage.ErrNotFound):
			r.failed("Could not load bill from server, using local draft", err, "bill_key", key.String())
		}
	}

	var bill models.Bill
	if r.drafts.Get(draft.BillKey(key), &bill) && bill.Key() == key {
		return &bill, SourceDraft
	}
	return models.NewBill(key), SourceNone
}

// SaveBill writes the bill to the remote store. It reports success.
func (r *Repository) SaveBill(ctx context.Context, bill *models.Bill) bool {
	if !r.Online() {
		return false
	}
	if err := r.remote.SaveBill(ctx, bill.Clone()); err != nil {
		r.failed("Could not save bill to server", err, "bill_key", bill.Key().String())
		return false
	}
	return true
}

// SaveDraft mirrors the bill into the local draft store and refreshes the
// local bill index.
func (r *Repository) SaveDraft(bill *models.Bill) {
	r.drafts.Set(draft.BillKey(bill.Key()), bill)

	header := bill.Header()
	header.UpdatedAt = time.Now().Unix()
	if header.CreatedAt == 0 {
		header.CreatedAt = header.UpdatedAt
	}
	index := r.localIndex(bill.Owner)
	index = slices.DeleteFunc(index, func(h models.BillHeader) bool {
		return h.Kind == header.Kind && h.Title == header.Title
	})
	index = append([]models.BillHeader{header}, index...)
	r.drafts.Set(draft.BillIndexKey(bill.Owner), index)
}

// DeleteBill removes the bill remotely and always clears the local draft.
func (r *Repository) DeleteBill(ctx context.Context, key models.BillKey) DeleteResult {
	r.drafts.Remove(draft.BillKey(key))
	index := slices.DeleteFunc(r.localIndex(key.Owner), func(h models.BillHeader) bool {
		return h.Kind == key.Kind && h.Title == key.Title
	})
	r.drafts.Set(draft.BillIndexKey(key.Owner), index)

	if !r.Online() {
		return RemoteFailed
	}
	err := r.remote.DeleteBill(ctx, key)
	switch {
	case err == nil:
		return Deleted
	case errors.Is(err, storage.ErrNotFound):
		return NotFound
	default:
		r.failed("Could not delete bill on server", err, "bill_key", key.String())
		return RemoteFailed
	}
}

// ListBills returns the owner's bills, most recently updated first. The
// remote list replaces the local index; the local index is returned when the
// remote is unavailable.
func (r *Repository) ListBills(ctx context.Context, owner string) ([]models.BillHeader, Source) {
	if r.Online() {
		headers, err := r.remote.ListBills(ctx, owner)
		if err == nil {
			r.drafts.Set(draft.BillIndexKey(owner), headers)
			return headers, SourceRemote
		}
		r.failed("Could not list bills from server, showing local drafts", err, "owner", owner)
	}

	index := r.localIndex(owner)
	if len(index) == 0 {
		return index, SourceNone
	}
	slices.SortStableFunc(index, func(a, b models.BillHeader) int {
		return cmp.Compare(b.UpdatedAt, a.UpdatedAt)
	})
	return index, SourceDraft
}

func (r *Repository) localIndex(owner string) []models.BillHeader {
	var index []models.BillHeader
	if !r.drafts.Get(draft.BillIndexKey(owner), &index) || index == nil {
		return []models.BillHeader{}
	}
	return index
}

// DeleteOwnerData wipes the owner's remote data and every local draft the
// owner has. It reports whether the remote part succeeded.
func (r *Repository) DeleteOwnerData(ctx context.Context, owner string) bool {
	for _, h := range r.localIndex(owner) {
		r.drafts.Remove(draft.BillKey(models.BillKey{Owner: owner, Kind: h.Kind, Title: h.Title}))
	}
	r.drafts.Remove(draft.BillIndexKey(owner))
	r.drafts.Remove(draft.NotesKey(owner))
	r.drafts.Remove(draft.ChatKey(owner))

	if !r.Online() {
		return false
	}
	if err := r.remote.DeleteOwnerData(ctx, owner); err != nil {
		r.failed("Could not delete data on server", err, "owner", owner)
		return false
	}
	return true
}
