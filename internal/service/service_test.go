package service

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/patungan/internal/middleware"
	"github.com/mmynk/patungan/internal/models"
	"github.com/mmynk/patungan/internal/share"
	"github.com/mmynk/patungan/internal/storage/sqlite"
	"github.com/mmynk/patungan/pkg/api"
)

type testClients struct {
	bills    *api.BillServiceClient
	notes    *api.NoteServiceClient
	chat     *api.ChatServiceClient
	identity *api.IdentityServiceClient
	// anon sends no identity headers.
	anon    *api.BillServiceClient
	baseURL string
}

// fakeAssistant echoes the last message, or fails when err is set.
type fakeAssistant struct {
	err error
}

func (f *fakeAssistant) Reply(ctx context.Context, transcript []models.ChatMessage) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "echo: " + transcript[len(transcript)-1].Content, nil
}

// setupTestServer creates a test server with a temporary SQLite database.
func setupTestServer(t *testing.T, ai *fakeAssistant) (testClients, func()) {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	store, err := sqlite.New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}

	interceptors := connect.WithInterceptors(
		middleware.LoggingInterceptor(),
		middleware.RequireIdentity(api.BillServiceGetSharedBillProcedure, api.BillServiceCalculateSplitProcedure),
	)
	shares := share.NewManager("test-secret", time.Hour)

	mux := http.NewServeMux()
	mux.Handle(api.NewBillServiceHandler(NewBillService(store, shares), interceptors))
	mux.Handle(api.NewNoteServiceHandler(NewNoteService(store), interceptors))
	mux.Handle(api.NewChatServiceHandler(NewChatService(store, ai), interceptors))
	mux.Handle(api.NewIdentityServiceHandler(NewIdentityService(store), interceptors))

	server := httptest.NewServer(mux)

	sari := connect.WithInterceptors(middleware.IdentityHeaders(models.Identity{Name: "Sari", Email: "sari@example.com"}))
	clients := testClients{
		bills:    api.NewBillServiceClient(http.DefaultClient, server.URL, sari),
		notes:    api.NewNoteServiceClient(http.DefaultClient, server.URL, sari),
		chat:     api.NewChatServiceClient(http.DefaultClient, server.URL, sari),
		identity: api.NewIdentityServiceClient(http.DefaultClient, server.URL, sari),
		anon:     api.NewBillServiceClient(http.DefaultClient, server.URL),
		baseURL:  server.URL,
	}

	cleanup := func() {
		server.Close()
		store.Close()
		os.Remove(tmpFile.Name())
	}

	return clients, cleanup
}

func requireCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Fatalf("expected code %v, got %v (%v)", want, got, err)
	}
}

func sampleBill() *models.Bill {
	bill := models.NewBill(models.BillKey{Kind: models.KindItemized, Title: "Makan Malam"})
	alice := bill.AddParticipant("Alice")
	bob := bill.AddParticipant("Bob")
	bill.AddItem("Pizza", 30000, []string{alice.ID, bob.ID})
	return bill
}

func TestSaveAndGetBill(t *testing.T) {
	c, cleanup := setupTestServer(t, &fakeAssistant{})
	defer cleanup()
	ctx := context.Background()

	saved, err := c.bills.SaveBill(ctx, connect.NewRequest(&api.SaveBillRequest{Bill: sampleBill()}))
	if err != nil {
		t.Fatalf("SaveBill failed: %v", err)
	}
	if saved.Msg.Bill.ID == "" || saved.Msg.Bill.Owner != "sari@example.com" {
		t.Errorf("saved bill = %+v", saved.Msg.Bill)
	}

	resp, err := c.bills.GetBill(ctx, connect.NewRequest(&api.GetBillRequest{
		BillRef: api.BillRef{Kind: models.KindItemized, Title: "Makan Malam"},
	}))
	if err != nil {
		t.Fatalf("GetBill failed: %v", err)
	}
	got := resp.Msg.Bill
	if len(got.Participants) != 2 || len(got.Items) != 1 || len(got.Items[0].AssignedTo) != 2 {
		t.Errorf("bill = %+v", got)
	}

	list, err := c.bills.ListBills(ctx, connect.NewRequest(&api.ListBillsRequest{}))
	if err != nil {
		t.Fatalf("ListBills failed: %v", err)
	}
	if len(list.Msg.Bills) != 1 || list.Msg.Bills[0].Total != 30000 {
		t.Errorf("bills = %+v", list.Msg.Bills)
	}
}

func TestBillErrors(t *testing.T) {
	c, cleanup := setupTestServer(t, &fakeAssistant{})
	defer cleanup()
	ctx := context.Background()

	negative := sampleBill()
	negative.Items[0].Price = -1

	tests := []struct {
		name string
		call func() error
		want connect.Code
	}{
		{"get missing bill", func() error {
			_, err := c.bills.GetBill(ctx, connect.NewRequest(&api.GetBillRequest{BillRef: api.BillRef{Kind: models.KindEven, Title: "nope"}}))
			return err
		}, connect.CodeNotFound},
		{"unknown kind", func() error {
			_, err := c.bills.GetBill(ctx, connect.NewRequest(&api.GetBillRequest{BillRef: api.BillRef{Kind: "split", Title: "x"}}))
			return err
		}, connect.CodeInvalidArgument},
		{"negative price", func() error {
			_, err := c.bills.SaveBill(ctx, connect.NewRequest(&api.SaveBillRequest{Bill: negative}))
			return err
		}, connect.CodeInvalidArgument},
		{"missing bill", func() error {
			_, err := c.bills.SaveBill(ctx, connect.NewRequest(&api.SaveBillRequest{}))
			return err
		}, connect.CodeInvalidArgument},
		{"delete missing bill", func() error {
			_, err := c.bills.DeleteBill(ctx, connect.NewRequest(&api.DeleteBillRequest{BillRef: api.BillRef{Kind: models.KindEven, Title: "nope"}}))
			return err
		}, connect.CodeNotFound},
		{"no identity", func() error {
			_, err := c.anon.ListBills(ctx, connect.NewRequest(&api.ListBillsRequest{}))
			return err
		}, connect.CodeUnauthenticated},
		{"bad share token", func() error {
			_, err := c.anon.GetSharedBill(ctx, connect.NewRequest(&api.GetSharedBillRequest{Token: "garbage"}))
			return err
		}, connect.CodePermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireCode(t, tt.call(), tt.want)
		})
	}
}

func TestOwnersArePartitioned(t *testing.T) {
	c, cleanup := setupTestServer(t, &fakeAssistant{})
	defer cleanup()
	ctx := context.Background()

	if _, err := c.bills.SaveBill(ctx, connect.NewRequest(&api.SaveBillRequest{Bill: sampleBill()})); err != nil {
		t.Fatalf("SaveBill failed: %v", err)
	}

	req := connect.NewRequest(&api.ListBillsRequest{})
	api.SetIdentity(req.Header(), "budi@example.com", "Budi")
	resp, err := c.anon.ListBills(ctx, req)
	if err != nil {
		t.Fatalf("ListBills failed: %v", err)
	}
	if len(resp.Msg.Bills) != 0 {
		t.Errorf("Budi sees %d of Sari's bills", len(resp.Msg.Bills))
	}
}

func TestCalculateSplit(t *testing.T) {
	c, cleanup := setupTestServer(t, &fakeAssistant{})
	defer cleanup()

	bill := models.NewBill(models.BillKey{Kind: models.KindEven})
	bill.Total = 100000
	bill.AddParticipant("Sari")
	bill.AddParticipant("Budi")

	resp, err := c.anon.CalculateSplit(context.Background(), connect.NewRequest(&api.CalculateSplitRequest{Bill: bill}))
	if err != nil {
		t.Fatalf("CalculateSplit failed: %v", err)
	}
	split := resp.Msg.Split
	if math.Abs(split.Total-115500) > 0.01 || math.Abs(split.PerPerson-57750) > 0.01 {
		t.Errorf("split = total %v per person %v", split.Total, split.PerPerson)
	}
	if len(split.Summaries) != 2 {
		t.Errorf("expected 2 summaries, got %d", len(split.Summaries))
	}
}

func TestShareBill(t *testing.T) {
	c, cleanup := setupTestServer(t, &fakeAssistant{})
	defer cleanup()
	ctx := context.Background()
	ref := api.BillRef{Kind: models.KindItemized, Title: "Makan Malam"}

	_, err := c.bills.ShareBill(ctx, connect.NewRequest(&api.ShareBillRequest{BillRef: ref}))
	requireCode(t, err, connect.CodeNotFound)

	if _, err := c.bills.SaveBill(ctx, connect.NewRequest(&api.SaveBillRequest{Bill: sampleBill()})); err != nil {
		t.Fatalf("SaveBill failed: %v", err)
	}
	shared, err := c.bills.ShareBill(ctx, connect.NewRequest(&api.ShareBillRequest{BillRef: ref}))
	if err != nil {
		t.Fatalf("ShareBill failed: %v", err)
	}

	resp, err := c.anon.GetSharedBill(ctx, connect.NewRequest(&api.GetSharedBillRequest{Token: shared.Msg.Token}))
	if err != nil {
		t.Fatalf("GetSharedBill failed: %v", err)
	}
	if resp.Msg.Bill.Title != "Makan Malam" || len(resp.Msg.Split.Summaries) != 2 {
		t.Errorf("shared = %+v", resp.Msg)
	}
	if got := resp.Msg.Split.Summaries[0].Subtotal; got != 15000 {
		t.Errorf("Alice subtotal = %v, want 15000", got)
	}
}

func TestNoteService(t *testing.T) {
	c, cleanup := setupTestServer(t, &fakeAssistant{})
	defer cleanup()
	ctx := context.Background()

	var ids []string
	for _, title := range []string{"first", "second", ""} {
		resp, err := c.notes.CreateNote(ctx, connect.NewRequest(&api.CreateNoteRequest{Title: title}))
		if err != nil {
			t.Fatalf("CreateNote failed: %v", err)
		}
		ids = append(ids, resp.Msg.Note.ID)
	}

	list, err := c.notes.ListNotes(ctx, connect.NewRequest(&api.ListNotesRequest{}))
	if err != nil {
		t.Fatalf("ListNotes failed: %v", err)
	}
	if got := list.Msg.Notes[0].Title; got != models.UntitledNote {
		t.Errorf("newest note title = %q, want %q", got, models.UntitledNote)
	}

	reordered, err := c.notes.ReorderNotes(ctx, connect.NewRequest(&api.ReorderNotesRequest{IDs: ids}))
	if err != nil {
		t.Fatalf("ReorderNotes failed: %v", err)
	}
	for i, n := range reordered.Msg.Notes {
		if n.ID != ids[i] || n.SortOrder != i {
			t.Errorf("note %d = %s@%d, want %s@%d", i, n.ID, n.SortOrder, ids[i], i)
		}
	}

	_, err = c.notes.ReorderNotes(ctx, connect.NewRequest(&api.ReorderNotesRequest{IDs: []string{"ghost"}}))
	requireCode(t, err, connect.CodeNotFound)

	updated, err := c.notes.UpdateNote(ctx, connect.NewRequest(&api.UpdateNoteRequest{ID: ids[0], Title: "renamed", Content: "body"}))
	if err != nil {
		t.Fatalf("UpdateNote failed: %v", err)
	}
	if updated.Msg.Note.Content != "body" || updated.Msg.Note.SortOrder != 0 {
		t.Errorf("updated = %+v", updated.Msg.Note)
	}

	if _, err := c.notes.DeleteNote(ctx, connect.NewRequest(&api.DeleteNoteRequest{ID: ids[1]})); err != nil {
		t.Fatalf("DeleteNote failed: %v", err)
	}
	_, err = c.notes.DeleteNote(ctx, connect.NewRequest(&api.DeleteNoteRequest{ID: ids[1]}))
	requireCode(t, err, connect.CodeNotFound)
}

func TestChatService(t *testing.T) {
	ai := &fakeAssistant{}
	c, cleanup := setupTestServer(t, ai)
	defer cleanup()
	ctx := context.Background()

	resp, err := c.chat.SendMessage(ctx, connect.NewRequest(&api.SendMessageRequest{Message: "Halo"}))
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if resp.Msg.Reply.Content != "echo: Halo" || resp.Msg.Failed {
		t.Errorf("reply = %+v", resp.Msg)
	}

	ai.err = errors.New("network down")
	resp, err = c.chat.SendMessage(ctx, connect.NewRequest(&api.SendMessageRequest{Message: "Lagi"}))
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if !resp.Msg.Failed {
		t.Error("failed reply should be flagged")
	}

	history, err := c.chat.GetHistory(ctx, connect.NewRequest(&api.GetHistoryRequest{}))
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}
	if len(history.Msg.Messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(history.Msg.Messages))
	}
	if history.Msg.Messages[3].Role != models.RoleModel {
		t.Errorf("apology should be recorded as a model message")
	}

	_, err = c.chat.SendMessage(ctx, connect.NewRequest(&api.SendMessageRequest{Message: "  "}))
	requireCode(t, err, connect.CodeInvalidArgument)

	if _, err := c.chat.ClearHistory(ctx, connect.NewRequest(&api.ClearHistoryRequest{})); err != nil {
		t.Fatalf("ClearHistory failed: %v", err)
	}
	history, _ = c.chat.GetHistory(ctx, connect.NewRequest(&api.GetHistoryRequest{}))
	if len(history.Msg.Messages) != 0 {
		t.Errorf("history not cleared: %d messages", len(history.Msg.Messages))
	}
}

func TestIdentityService(t *testing.T) {
	c, cleanup := setupTestServer(t, &fakeAssistant{})
	defer cleanup()
	ctx := context.Background()

	_, err := c.identity.GetUser(ctx, connect.NewRequest(&api.GetUserRequest{}))
	requireCode(t, err, connect.CodeNotFound)

	reg, err := c.identity.Register(ctx, connect.NewRequest(&api.RegisterRequest{}))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if reg.Msg.User.Email != "sari@example.com" || reg.Msg.User.Name != "Sari" {
		t.Errorf("user = %+v", reg.Msg.User)
	}

	if _, err := c.bills.SaveBill(ctx, connect.NewRequest(&api.SaveBillRequest{Bill: sampleBill()})); err != nil {
		t.Fatalf("SaveBill failed: %v", err)
	}
	if _, err := c.identity.DeleteData(ctx, connect.NewRequest(&api.DeleteDataRequest{})); err != nil {
		t.Fatalf("DeleteData failed: %v", err)
	}
	list, _ := c.bills.ListBills(ctx, connect.NewRequest(&api.ListBillsRequest{}))
	if len(list.Msg.Bills) != 0 {
		t.Errorf("bills survived DeleteData: %d", len(list.Msg.Bills))
	}
	if _, err := c.identity.GetUser(ctx, connect.NewRequest(&api.GetUserRequest{})); err != nil {
		t.Errorf("user row should survive DeleteData: %v", err)
	}

	bad := connect.NewRequest(&api.RegisterRequest{})
	api.SetIdentity(bad.Header(), "not-an-email", "X")
	_, err = api.NewIdentityServiceClient(http.DefaultClient, c.baseURL).Register(ctx, bad)
	requireCode(t, err, connect.CodeUnauthenticated)
}
