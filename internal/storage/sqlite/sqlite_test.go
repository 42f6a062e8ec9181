package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mmynk/patungan/internal/models"
	"github.com/mmynk/patungan/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	// Create temp directory for test database
	tempDir, err := os.MkdirTemp("", "patungan-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("SaveBill generates ID and timestamps", func(t *testing.T) {
		bill := models.NewBill(models.BillKey{Owner: "sari@example.com", Kind: models.KindEven, Title: "Karaoke"})
		bill.Total = 250000
		bill.AddParticipant("Sari")
		bill.AddParticipant("Budi")

		if err := store.SaveBill(ctx, bill); err != nil {
			t.Fatalf("SaveBill failed: %v", err)
		}
		if bill.ID == "" {
			t.Error("Expected bill ID to be generated")
		}
		if bill.CreatedAt == 0 || bill.UpdatedAt == 0 {
			t.Error("Expected timestamps to be set")
		}
	})

	t.Run("GetBill retrieves complete bill", func(t *testing.T) {
		original := models.NewBill(models.BillKey{Owner: "sari@example.com", Kind: models.KindItemized, Title: "Dinner"})
		alice := original.AddParticipant("Alice")
		bob := original.AddParticipant("Bob")
		original.AddItem("Steak", 30000, []string{alice.ID})
		original.AddItem("Pizza", 20000, []string{alice.ID, bob.ID})
		original.AddItem("Mystery", 5000, nil)
		override := 2500.0
		original.Surcharge = models.SurchargeConfig{ServiceEnabled: true, ServiceOverride: &override}

		if err := store.SaveBill(ctx, original); err != nil {
			t.Fatalf("SaveBill failed: %v", err)
		}

		retrieved, err := store.GetBill(ctx, original.Key())
		if err != nil {
			t.Fatalf("GetBill failed: %v", err)
		}

		if retrieved.ID != original.ID {
			t.Errorf("ID = %q, want %q", retrieved.ID, original.ID)
		}
		if len(retrieved.Participants) != 2 || retrieved.Participants[0].Name != "Alice" {
			t.Errorf("Participants = %+v, want Alice then Bob", retrieved.Participants)
		}
		if len(retrieved.Items) != 3 {
			t.Fatalf("Expected 3 items, got %d", len(retrieved.Items))
		}
		if retrieved.Items[1].Name != "Pizza" || len(retrieved.Items[1].AssignedTo) != 2 {
			t.Errorf("Pizza = %+v, want 2 assignees", retrieved.Items[1])
		}
		if len(retrieved.Items[2].AssignedTo) != 0 {
			t.Errorf("unassigned item should stay unassigned, got %v", retrieved.Items[2].AssignedTo)
		}
		sc := retrieved.Surcharge
		if !sc.ServiceEnabled || sc.TaxEnabled || sc.ServiceOverride == nil || *sc.ServiceOverride != 2500 || sc.TaxOverride != nil {
			t.Errorf("Surcharge = %+v", sc)
		}
	})

	t.Run("SaveBill replaces child rows", func(t *testing.T) {
		key := models.BillKey{Owner: "sari@example.com", Kind: models.KindItemized, Title: "Replace"}
		bill := models.NewBill(key)
		alice := bill.AddParticipant("Alice")
		bob := bill.AddParticipant("Bob")
		item := bill.AddItem("Tea", 10000, []string{alice.ID, bob.ID})
		if err := store.SaveBill(ctx, bill); err != nil {
			t.Fatalf("SaveBill failed: %v", err)
		}
		firstID, created := bill.ID, bill.CreatedAt

		bill.RemoveParticipant(bob.ID)
		bill.RemoveItem(item.ID)
		bill.AddItem("Coffee", 15000, []string{alice.ID, "stale-id"})
		bill.ID = ""
		if err := store.SaveBill(ctx, bill); err != nil {
			t.Fatalf("second SaveBill failed: %v", err)
		}
		if bill.ID != firstID || bill.CreatedAt != created {
			t.Errorf("upsert should keep id and created_at, got %s/%d", bill.ID, bill.CreatedAt)
		}

		got, err := store.GetBill(ctx, key)
		if err != nil {
			t.Fatalf("GetBill failed: %v", err)
		}
		if len(got.Participants) != 1 || len(got.Items) != 1 || got.Items[0].Name != "Coffee" {
			t.Errorf("children not replaced: %+v", got)
		}
		if len(got.Items[0].AssignedTo) != 1 || got.Items[0].AssignedTo[0] != alice.ID {
			t.Errorf("stale assignment should be dropped, got %v", got.Items[0].AssignedTo)
		}
	})

	t.Run("same title with another kind is another bill", func(t *testing.T) {
		even := models.NewBill(models.BillKey{Owner: "sari@example.com", Kind: models.KindEven, Title: "Dinner"})
		even.Total = 1000
		if err := store.SaveBill(ctx, even); err != nil {
			t.Fatalf("SaveBill failed: %v", err)
		}
		itemized, err := store.GetBill(ctx, models.BillKey{Owner: "sari@example.com", Kind: models.KindItemized, Title: "Dinner"})
		if err != nil {
			t.Fatalf("GetBill failed: %v", err)
		}
		if itemized.ID == even.ID {
			t.Error("kinds must not share a row")
		}
	})

	t.Run("GetBill non-existent returns ErrNotFound", func(t *testing.T) {
		_, err := store.GetBill(ctx, models.BillKey{Owner: "sari@example.com", Kind: models.KindEven, Title: "nope"})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListBills orders by update and sums items", func(t *testing.T) {
		owner := "list@example.com"
		first := models.NewBill(models.BillKey{Owner: owner, Kind: models.KindItemized, Title: "First"})
		first.AddItem("A", 10000, nil)
		first.AddItem("B", 2500, nil)
		if err := store.SaveBill(ctx, first); err != nil {
			t.Fatalf("SaveBill failed: %v", err)
		}
		second := models.NewBill(models.BillKey{Owner: owner, Kind: models.KindEven, Title: "Second"})
		second.Total = 99000
		second.AddParticipant("Sari")
		if err := store.SaveBill(ctx, second); err != nil {
			t.Fatalf("SaveBill failed: %v", err)
		}
		// Same-second saves tie on updated_at; force a distinct order
		if _, err := store.db.ExecContext(ctx, "UPDATE bills SET updated_at = updated_at + 10 WHERE title = 'Second'"); err != nil {
			t.Fatal(err)
		}

		headers, err := store.ListBills(ctx, owner)
		if err != nil {
			t.Fatalf("ListBills failed: %v", err)
		}
		if len(headers) != 2 {
			t.Fatalf("Expected 2 bills, got %d", len(headers))
		}
		if headers[0].Title != "Second" || headers[0].Total != 99000 || headers[0].ParticipantCount != 1 {
			t.Errorf("headers[0] = %+v", headers[0])
		}
		if headers[1].Title != "First" || headers[1].Total != 12500 {
			t.Errorf("headers[1] = %+v", headers[1])
		}
	})

	t.Run("DeleteBill is idempotent", func(t *testing.T) {
		key := models.BillKey{Owner: "sari@example.com", Kind: models.KindItemized, Title: "Gone"}
		bill := models.NewBill(key)
		p := bill.AddParticipant("Alice")
		bill.AddItem("Tea", 1000, []string{p.ID})
		if err := store.SaveBill(ctx, bill); err != nil {
			t.Fatalf("SaveBill failed: %v", err)
		}

		if err := store.DeleteBill(ctx, key); err != nil {
			t.Fatalf("DeleteBill failed: %v", err)
		}
		if err := store.DeleteBill(ctx, key); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("second DeleteBill = %v, want ErrNotFound", err)
		}

		var n int
		if err := store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM items WHERE bill_id = ?", bill.ID).Scan(&n); err != nil {
			t.Fatal(err)
		}
		if n != 0 {
			t.Errorf("items should cascade, %d left", n)
		}
	})
}

func TestNotes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := "sari@example.com"

	assertDense := func(t *testing.T) []models.Note {
		t.Helper()
		notes, err := store.ListNotes(ctx, owner)
		if err != nil {
			t.Fatalf("ListNotes failed: %v", err)
		}
		for i, n := range notes {
			if n.SortOrder != i {
				t.Fatalf("note %q has sort order %d at position %d", n.Title, n.SortOrder, i)
			}
		}
		return notes
	}

	var created []*models.Note
	for _, title := range []string{"one", "two", "three"} {
		n := &models.Note{Owner: owner, Title: title}
		if err := store.CreateNote(ctx, n); err != nil {
			t.Fatalf("CreateNote failed: %v", err)
		}
		created = append(created, n)
	}

	t.Run("new notes go on top", func(t *testing.T) {
		notes := assertDense(t)
		if len(notes) != 3 || notes[0].Title != "three" || notes[2].Title != "one" {
			t.Errorf("unexpected order: %+v", notes)
		}
	})

	t.Run("empty title becomes untitled", func(t *testing.T) {
		n := &models.Note{Owner: "other@example.com"}
		if err := store.CreateNote(ctx, n); err != nil {
			t.Fatalf("CreateNote failed: %v", err)
		}
		if n.Title != models.UntitledNote {
			t.Errorf("Title = %q", n.Title)
		}
	})

	t.Run("UpdateNote", func(t *testing.T) {
		n := created[0]
		n.Content = "beli gula"
		if err := store.UpdateNote(ctx, n); err != nil {
			t.Fatalf("UpdateNote failed: %v", err)
		}
		if n.SortOrder != 2 {
			t.Errorf("SortOrder = %d, want 2", n.SortOrder)
		}
		missing := &models.Note{ID: "nope", Owner: owner}
		if err := store.UpdateNote(ctx, missing); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("UpdateNote missing = %v, want ErrNotFound", err)
		}
	})

	t.Run("ReorderNotes keeps ranks dense", func(t *testing.T) {
		ids := []string{created[0].ID, created[2].ID, created[1].ID}
		if err := store.ReorderNotes(ctx, owner, ids); err != nil {
			t.Fatalf("ReorderNotes failed: %v", err)
		}
		notes := assertDense(t)
		for i, id := range ids {
			if notes[i].ID != id {
				t.Errorf("position %d = %s, want %s", i, notes[i].ID, id)
			}
		}

		if err := store.ReorderNotes(ctx, owner, []string{"unknown"}); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("ReorderNotes unknown = %v, want ErrNotFound", err)
		}
		assertDense(t)
	})

	t.Run("DeleteNote renumbers", func(t *testing.T) {
		if err := store.DeleteNote(ctx, owner, created[2].ID); err != nil {
			t.Fatalf("DeleteNote failed: %v", err)
		}
		if notes := assertDense(t); len(notes) != 2 {
			t.Errorf("Expected 2 notes, got %d", len(notes))
		}
		if err := store.DeleteNote(ctx, owner, created[2].ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("second DeleteNote = %v, want ErrNotFound", err)
		}
	})
}

func TestChatAndUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := "sari@example.com"

	err := store.AppendChat(ctx, owner,
		models.ChatMessage{Role: models.RoleUser, Content: "halo"},
		models.ChatMessage{Role: models.RoleModel, Content: "Halo! Ada yang bisa dibantu?"},
	)
	if err != nil {
		t.Fatalf("AppendChat failed: %v", err)
	}
	msgs, err := store.ListChat(ctx, owner)
	if err != nil {
		t.Fatalf("ListChat failed: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Role != models.RoleUser || msgs[1].Role != models.RoleModel {
		t.Errorf("unexpected history: %+v", msgs)
	}

	user := &models.User{Email: owner, Name: "Sari"}
	if err := store.UpsertUser(ctx, user); err != nil {
		t.Fatalf("UpsertUser failed: %v", err)
	}
	user = &models.User{Email: owner, Name: "Sari W."}
	if err := store.UpsertUser(ctx, user); err != nil {
		t.Fatalf("second UpsertUser failed: %v", err)
	}
	got, err := store.GetUser(ctx, owner)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if got.Name != "Sari W." {
		t.Errorf("Name = %q, want updated name", got.Name)
	}
	if _, err := store.GetUser(ctx, "nobody@example.com"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetUser unknown = %v, want ErrNotFound", err)
	}

	bill := models.NewBill(models.BillKey{Owner: owner, Kind: models.KindEven, Title: "x"})
	if err := store.SaveBill(ctx, bill); err != nil {
		t.Fatalf("SaveBill failed: %v", err)
	}
	if err := store.CreateNote(ctx, &models.Note{Owner: owner, Title: "n"}); err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}

	if err := store.DeleteOwnerData(ctx, owner); err != nil {
		t.Fatalf("DeleteOwnerData failed: %v", err)
	}
	headers, _ := store.ListBills(ctx, owner)
	notes, _ := store.ListNotes(ctx, owner)
	msgs, _ = store.ListChat(ctx, owner)
	if len(headers)+len(notes)+len(msgs) != 0 {
		t.Errorf("owner data left: %d bills, %d notes, %d messages", len(headers), len(notes), len(msgs))
	}
	if _, err := store.GetUser(ctx, owner); err != nil {
		t.Errorf("user row should survive: %v", err)
	}
}
