// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/patungan/internal/models"
)

// ErrNotFound is returned when a bill, note or user does not exist.
var ErrNotFound = errors.New("not found")

// BillStore persists bill aggregates keyed by (owner, kind, title).
type BillStore interface {
	// GetBill retrieves a bill with all participants, items and assignments.
	// Returns ErrNotFound if no bill has the key.
	GetBill(ctx context.Context, key models.BillKey) (*models.Bill, error)

	// SaveBill upserts the bill header and replaces all of its child rows.
	// bill.ID, CreatedAt and UpdatedAt are populated by the store.
	SaveBill(ctx context.Context, bill *models.Bill) error

	// DeleteBill removes a bill and its child rows.
	// Returns ErrNotFound if no bill has the key.
	DeleteBill(ctx context.Context, key models.BillKey) error

	// ListBills returns the owner's bills, most recently updated first.
	ListBills(ctx context.Context, owner string) ([]models.BillHeader, error)
}

// NoteStore persists ordered notes. After every mutation the sort orders of
// an owner's notes are exactly 0..N-1.
type NoteStore interface {
	// ListNotes returns the owner's notes by ascending sort order.
	ListNotes(ctx context.Context, owner string) ([]models.Note, error)

	// CreateNote inserts the note at sort order 0, shifting every other note
	// down by one. note.ID and timestamps are populated by the store.
	CreateNote(ctx context.Context, note *models.Note) error

	// UpdateNote changes the title and content of an existing note.
	// Returns ErrNotFound if the note does not exist.
	UpdateNote(ctx context.Context, note *models.Note) error

	// DeleteNote removes a note and renumbers the rest.
	// Returns ErrNotFound if the note does not exist.
	DeleteNote(ctx context.Context, owner, id string) error

	// ReorderNotes assigns sort orders following ids in one transaction. Notes
	// missing from ids keep their relative order after the listed ones.
	// Returns ErrNotFound if ids names a note the owner does not have.
	ReorderNotes(ctx context.Context, owner string, ids []string) error
}

// ChatStore persists the assistant conversation of each owner.
type ChatStore interface {
	// ListChat returns the owner's messages oldest first.
	ListChat(ctx context.Context, owner string) ([]models.ChatMessage, error)

	// AppendChat adds messages to the end of the conversation.
	AppendChat(ctx context.Context, owner string, msgs ...models.ChatMessage) error

	// ClearChat removes the owner's conversation.
	ClearChat(ctx context.Context, owner string) error
}

// UserStore persists self-reported identities.
type UserStore interface {
	// UpsertUser records the identity, updating the name of a known email.
	UpsertUser(ctx context.Context, user *models.User) error

	// GetUser returns ErrNotFound for an unknown email.
	GetUser(ctx context.Context, email string) (*models.User, error)

	// DeleteOwnerData removes every bill, note and chat message of the owner.
	DeleteOwnerData(ctx context.Context, owner string) error
}

// Store defines the interface for all storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, or
// the remote API) without changing the layers above.
type Store interface {
	BillStore
	NoteStore
	ChatStore
	UserStore

	// Close releases any resources held by the store.
	Close() error
}
