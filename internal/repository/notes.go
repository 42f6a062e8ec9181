package repository

import (
	"context"

	"github.com/mmynk/patungan/internal/draft"
	"github.com/mmynk/patungan/internal/models"
)

// Direction moves a note one rank up (towards 0) or down.
type Direction int

const (
	Up   Direction = -1
	Down Direction = 1
)

// LoadNotes returns the owner's notes, from the remote store when reachable
// and from the local draft otherwise.
func (r *Repository) LoadNotes(ctx context.Context, owner string) ([]models.Note, Source) {
	if r.Online() {
		notes, err := r.remote.ListNotes(ctx, owner)
		if err == nil {
			r.drafts.Set(draft.NotesKey(owner), notes)
			return notes, SourceRemote
		}
		r.failed("Could not load notes from server, using local copy", err, "owner", owner)
	}

	var notes []models.Note
	if r.drafts.Get(draft.NotesKey(owner), &notes) && notes != nil {
		return notes, SourceDraft
	}
	return []models.Note{}, SourceNone
}

// AddNote creates a note at the top of the list.
func (r *Repository) AddNote(ctx context.Context, owner, title, content string) (*models.Note, bool) {
	if !r.Online() {
		return nil, false
	}
	note := &models.Note{Owner: owner, Title: title, Content: content}
	if err := r.remote.CreateNote(ctx, note); err != nil {
		r.failed("Could not save note", err, "owner", owner)
		return nil, false
	}
	r.mirrorNotes(ctx, owner)
	return note, true
}

// UpdateNote saves a note's title and content.
func (r *Repository) UpdateNote(ctx context.Context, note *models.Note) bool {
	if !r.Online() {
		return false
	}
	if err := r.remote.UpdateNote(ctx, note); err != nil {
		r.failed("Could not update note", err, "note_id", note.ID)
		return false
	}
	r.mirrorNotes(ctx, note.Owner)
	return true
}

// DeleteNote removes a note; the remaining ranks are renumbered.
func (r *Repository) DeleteNote(ctx context.Context, owner, id string) bool {
	if !r.Online() {
		return false
	}
	if err := r.remote.DeleteNote(ctx, owner, id); err != nil {
		r.failed("Could not delete note", err, "note_id", id)
		return false
	}
	r.mirrorNotes(ctx, owner)
	return true
}

// ReorderNotes persists a new order atomically.
func (r *Repository) ReorderNotes(ctx context.Context, owner string, ids []string) bool {
	if !r.Online() {
		return false
	}
	if err := r.remote.ReorderNotes(ctx, owner, ids); err != nil {
		r.failed("Could not reorder notes", err, "owner", owner)
		return false
	}
	r.mirrorNotes(ctx, owner)
	return true
}

// MoveNote swaps a note with its neighbour in the given direction and
// persists the full renumbering. Moving past either end reports false.
func (r *Repository) MoveNote(ctx context.Context, owner, id string, dir Direction) bool {
	notes, src := r.LoadNotes(ctx, owner)
	if src != SourceRemote {
		return false
	}
	ids := make([]string, len(notes))
	from := -1
	for i, n := range notes {
		ids[i] = n.ID
		if n.ID == id {
			from = i
		}
	}
	to := from + int(dir)
	if from < 0 || to < 0 || to >= len(ids) {
		return false
	}
	ids[from], ids[to] = ids[to], ids[from]
	return r.ReorderNotes(ctx, owner, ids)
}

func (r *Repository) mirrorNotes(ctx context.Context, owner string) {
	if notes, err := r.remote.ListNotes(ctx, owner); err == nil {
		r.drafts.Set(draft.NotesKey(owner), notes)
	}
}
