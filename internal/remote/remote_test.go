package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/patungan/internal/assistant"
	"github.com/mmynk/patungan/internal/draft"
	"github.com/mmynk/patungan/internal/middleware"
	"github.com/mmynk/patungan/internal/models"
	"github.com/mmynk/patungan/internal/repository"
	"github.com/mmynk/patungan/internal/service"
	"github.com/mmynk/patungan/internal/share"
	"github.com/mmynk/patungan/internal/storage"
	"github.com/mmynk/patungan/internal/storage/sqlite"
	"github.com/mmynk/patungan/internal/syncer"
	"github.com/mmynk/patungan/pkg/api"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	interceptors := connect.WithInterceptors(middleware.RequireIdentity())
	mux := http.NewServeMux()
	mux.Handle(api.NewBillServiceHandler(service.NewBillService(store, share.NewManager("s", time.Hour)), interceptors))
	mux.Handle(api.NewNoteServiceHandler(service.NewNoteService(store), interceptors))
	mux.Handle(api.NewChatServiceHandler(service.NewChatService(store, assistant.Unconfigured{}), interceptors))
	mux.Handle(api.NewIdentityServiceHandler(service.NewIdentityService(store), interceptors))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestStoreOverAPI(t *testing.T) {
	ctx := context.Background()
	s := New(nil, newServer(t).URL+"/", "Sari")
	owner := "sari@example.com"
	key := models.BillKey{Owner: owner, Kind: models.KindPerPerson, Title: "Warung"}

	_, err := s.GetBill(ctx, key)
	require.ErrorIs(t, err, storage.ErrNotFound)

	bill := models.NewBill(key)
	sari := bill.AddParticipant("Sari")
	bill.AddItem("Nasi Goreng", 25000, []string{sari.ID})
	require.NoError(t, s.SaveBill(ctx, bill))
	require.NotEmpty(t, bill.ID)

	got, err := s.GetBill(ctx, key)
	require.NoError(t, err)
	require.Equal(t, bill.ID, got.ID)
	require.Len(t, got.Items, 1)

	headers, err := s.ListBills(ctx, owner)
	require.NoError(t, err)
	require.Len(t, headers, 1)

	require.NoError(t, s.DeleteBill(ctx, key))
	require.ErrorIs(t, s.DeleteBill(ctx, key), storage.ErrNotFound)

	note := &models.Note{Owner: owner, Title: "Belanja"}
	require.NoError(t, s.CreateNote(ctx, note))
	require.NotEmpty(t, note.ID)
	note.Content = "telur, beras"
	require.NoError(t, s.UpdateNote(ctx, note))
	require.ErrorIs(t, s.DeleteNote(ctx, owner, "ghost"), storage.ErrNotFound)

	require.NoError(t, s.AppendChat(ctx, owner,
		models.ChatMessage{Role: models.RoleUser, Content: "Hai"},
		models.ChatMessage{Role: models.RoleModel, Content: "Halo"},
	))
	chat, err := s.ListChat(ctx, owner)
	require.NoError(t, err)
	require.Len(t, chat, 2)
	require.NoError(t, s.ClearChat(ctx, owner))

	user := &models.User{Email: owner, Name: "Sari"}
	require.NoError(t, s.UpsertUser(ctx, user))
	require.NotZero(t, user.CreatedAt)
	fetched, err := s.GetUser(ctx, owner)
	require.NoError(t, err)
	require.Equal(t, "Sari", fetched.Name)

	require.NoError(t, s.DeleteOwnerData(ctx, owner))
	notes, err := s.ListNotes(ctx, owner)
	require.NoError(t, err)
	require.Empty(t, notes)
}

// The full client stack: session edits flow through the sync client into the
// repository, across the API and into the server's database.
func TestClientStackEndToEnd(t *testing.T) {
	ctx := context.Background()
	remote := New(nil, newServer(t).URL, "Sari")
	drafts := draft.NewMemoryStore()
	repo := repository.New(remote, drafts, nil)
	sync := syncer.NewClient(repo, 10*time.Millisecond)
	defer sync.Close()

	key := models.BillKey{Owner: "sari@example.com", Kind: models.KindEven, Title: "Karaoke"}
	bill, src := sync.Load(ctx, key)
	require.Equal(t, repository.SourceNone, src)

	bill.Total = 300000
	bill.AddParticipant("Sari")
	require.True(t, sync.Changed(bill))
	sync.Flush()

	stored, err := remote.GetBill(ctx, key)
	require.NoError(t, err)
	require.Equal(t, 300000.0, stored.Total)

	loaded, src := repo.LoadBill(ctx, key)
	require.Equal(t, repository.SourceRemote, src)
	require.Len(t, loaded.Participants, 1)

	require.Equal(t, repository.Deleted, sync.Delete(ctx, key))
	require.Equal(t, repository.NotFound, sync.Delete(ctx, key))
}

func TestUnreachableServer(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	s := New(nil, url, "")
	_, err := s.ListBills(context.Background(), "sari@example.com")
	require.Error(t, err)
	require.NotErrorIs(t, err, storage.ErrNotFound)
}
