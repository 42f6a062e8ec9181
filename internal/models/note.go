package models

// UntitledNote is the title given to notes saved without one.
const UntitledNote = "Tanpa Judul"

// Note is a freeform note. SortOrder is the display rank (lower = earlier);
// across one owner's notes the ranks always form 0..N-1.
type Note struct {
	// ID is the unique identifier for the note (UUID format).
	ID string `json:"id"`

	// Owner is the email of the identity that owns the note.
	Owner string `json:"owner"`

	Title   string `json:"title"`
	Content string `json:"content"`

	SortOrder int `json:"sortOrder"`

	// CreatedAt and UpdatedAt are Unix timestamps.
	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`
}
