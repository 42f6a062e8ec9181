// Package draft keeps the local copy of a user's work.
//
// Every change is mirrored here synchronously, before the debounced remote
// write is scheduled, so nothing typed is lost when the network is down or the
// process exits early. Drafts are best effort: write failures are logged and
// swallowed, and an entry that cannot be decoded reads as absent.
package draft

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"

	"github.com/mmynk/patungan/internal/models"
)

// Prefix starts every draft key.
const Prefix = "patungan_draft_"

// Store is a local key-value store of JSON documents.
type Store interface {
	// Set stores value under key. Errors are logged, never returned.
	Set(key string, value any)

	// Get decodes the value under key into dst. It reports false when the key
	// is absent or its content is corrupt.
	Get(key string, dst any) bool

	// Remove deletes key. Removing an absent key is not an error.
	Remove(key string)
}

// BillKey is the draft key of one bill.
func BillKey(key models.BillKey) string {
	return ownerPrefix(key.Owner) + "bill_" + string(key.Kind) + "_" + key.Title
}

// BillIndexKey is the draft key of the owner's bill list, used when the remote
// store cannot be reached.
func BillIndexKey(owner string) string {
	return ownerPrefix(owner) + "bills"
}

// NotesKey is the draft key of the owner's notes.
func NotesKey(owner string) string {
	return ownerPrefix(owner) + "notes"
}

// ChatKey is the draft key of the owner's assistant conversation.
func ChatKey(owner string) string {
	return ownerPrefix(owner) + "chat"
}

// ownerPrefix namespaces keys per identity. The email is digested so two
// people on one device never collide and no address ends up in a file name.
func ownerPrefix(owner string) string {
	sum := blake2b.Sum256([]byte(models.NormalizeEmail(owner)))
	return Prefix + hex.EncodeToString(sum[:8]) + "_"
}
