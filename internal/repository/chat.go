package repository

import (
	"context"

	"github.com/mmynk/patungan/internal/draft"
	"github.com/mmynk/patungan/internal/models"
)

// LoadChat returns the owner's conversation, remote first.
func (r *Repository) LoadChat(ctx context.Context, owner string) []models.ChatMessage {
	if r.Online() {
		msgs, err := r.remote.ListChat(ctx, owner)
		if err == nil {
			r.drafts.Set(draft.ChatKey(owner), msgs)
			return msgs
		}
		r.failed("Could not load chat history from server", err, "owner", owner)
	}

	var msgs []models.ChatMessage
	if r.drafts.Get(draft.ChatKey(owner), &msgs) && msgs != nil {
		return msgs
	}
	return []models.ChatMessage{}
}

// AppendChat records messages locally and remotely. The local copy is always
// updated; the result reports the remote write.
func (r *Repository) AppendChat(ctx context.Context, owner string, msgs ...models.ChatMessage) bool {
	var local []models.ChatMessage
	if !r.drafts.Get(draft.ChatKey(owner), &local) {
		local = nil
	}
	r.drafts.Set(draft.ChatKey(owner), append(local, msgs...))

	if !r.Online() {
		return false
	}
	if err := r.remote.AppendChat(ctx, owner, msgs...); err != nil {
		r.failed("Could not save chat history", err, "owner", owner)
		return false
	}
	return true
}

// ClearChat wipes the conversation locally and remotely.
func (r *Repository) ClearChat(ctx context.Context, owner string) bool {
	r.drafts.Remove(draft.ChatKey(owner))
	if !r.Online() {
		return false
	}
	if err := r.remote.ClearChat(ctx, owner); err != nil {
		r.failed("Could not clear chat history", err, "owner", owner)
		return false
	}
	return true
}
