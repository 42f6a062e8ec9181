// Package remote implements storage.Store on top of the Patungan RPC API, so
// the client-side repository can treat a server like any other store.
package remote

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/patungan/internal/models"
	"github.com/mmynk/patungan/internal/storage"
	"github.com/mmynk/patungan/pkg/api"
)

// Store calls a Patungan server. The owner argument of each method travels in
// the identity headers.
type Store struct {
	name     string
	bills    *api.BillServiceClient
	notes    *api.NoteServiceClient
	chat     *api.ChatServiceClient
	identity *api.IdentityServiceClient
}

var _ storage.Store = (*Store)(nil)

// New returns a store for the server at baseURL. name is sent as the display
// name of every owner.
func New(httpClient connect.HTTPClient, baseURL, name string, opts ...connect.ClientOption) *Store {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	baseURL = strings.TrimRight(baseURL, "/")
	return &Store{
		name:     name,
		bills:    api.NewBillServiceClient(httpClient, baseURL, opts...),
		notes:    api.NewNoteServiceClient(httpClient, baseURL, opts...),
		chat:     api.NewChatServiceClient(httpClient, baseURL, opts...),
		identity: api.NewIdentityServiceClient(httpClient, baseURL, opts...),
	}
}

// Bills exposes the raw bill client for calls with no storage counterpart,
// such as share links.
func (s *Store) Bills() *api.BillServiceClient { return s.bills }

// Chat exposes the raw chat client for SendMessage.
func (s *Store) Chat() *api.ChatServiceClient { return s.chat }

func request[T any](s *Store, owner string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	api.SetIdentity(req.Header(), owner, s.name)
	return req
}

// wrap converts a Connect error into a storage error.
func wrap(op string, err error) error {
	if connect.CodeOf(err) == connect.CodeNotFound {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func (s *Store) GetBill(ctx context.Context, key models.BillKey) (*models.Bill, error) {
	resp, err := s.bills.GetBill(ctx, request(s, key.Owner, &api.GetBillRequest{
		BillRef: api.BillRef{Kind: key.Kind, Title: key.Title},
	}))
	if err != nil {
		return nil, wrap("get bill", err)
	}
	return resp.Msg.Bill, nil
}

func (s *Store) SaveBill(ctx context.Context, bill *models.Bill) error {
	resp, err := s.bills.SaveBill(ctx, request(s, bill.Owner, &api.SaveBillRequest{Bill: bill}))
	if err != nil {
		return wrap("save bill", err)
	}
	if saved := resp.Msg.Bill; saved != nil {
		bill.ID, bill.CreatedAt, bill.UpdatedAt = saved.ID, saved.CreatedAt, saved.UpdatedAt
	}
	return nil
}

func (s *Store) DeleteBill(ctx context.Context, key models.BillKey) error {
	_, err := s.bills.DeleteBill(ctx, request(s, key.Owner, &api.DeleteBillRequest{
		BillRef: api.BillRef{Kind: key.Kind, Title: key.Title},
	}))
	if err != nil {
		return wrap("delete bill", err)
	}
	return nil
}

func (s *Store) ListBills(ctx context.Context, owner string) ([]models.BillHeader, error) {
	resp, err := s.bills.ListBills(ctx, request(s, owner, &api.ListBillsRequest{}))
	if err != nil {
		return nil, wrap("list bills", err)
	}
	return resp.Msg.Bills, nil
}

func (s *Store) ListNotes(ctx context.Context, owner string) ([]models.Note, error) {
	resp, err := s.notes.ListNotes(ctx, request(s, owner, &api.ListNotesRequest{}))
	if err != nil {
		return nil, wrap("list notes", err)
	}
	return resp.Msg.Notes, nil
}

func (s *Store) CreateNote(ctx context.Context, note *models.Note) error {
	resp, err := s.notes.CreateNote(ctx, request(s, note.Owner, &api.CreateNoteRequest{
		Title:   note.Title,
		Content: note.Content,
	}))
	if err != nil {
		return wrap("create note", err)
	}
	*note = *resp.Msg.Note
	return nil
}

func (s *Store) UpdateNote(ctx context.Context, note *models.Note) error {
	resp, err := s.notes.UpdateNote(ctx, request(s, note.Owner, &api.UpdateNoteRequest{
		ID:      note.ID,
		Title:   note.Title,
		Content: note.Content,
	}))
	if err != nil {
		return wrap("update note", err)
	}
	*note = *resp.Msg.Note
	return nil
}

func (s *Store) DeleteNote(ctx context.Context, owner, id string) error {
	if _, err := s.notes.DeleteNote(ctx, request(s, owner, &api.DeleteNoteRequest{ID: id})); err != nil {
		return wrap("delete note", err)
	}
	return nil
}

func (s *Store) ReorderNotes(ctx context.Context, owner string, ids []string) error {
	if _, err := s.notes.ReorderNotes(ctx, request(s, owner, &api.ReorderNotesRequest{IDs: ids})); err != nil {
		return wrap("reorder notes", err)
	}
	return nil
}

func (s *Store) ListChat(ctx context.Context, owner string) ([]models.ChatMessage, error) {
	resp, err := s.chat.GetHistory(ctx, request(s, owner, &api.GetHistoryRequest{}))
	if err != nil {
		return nil, wrap("load chat", err)
	}
	return resp.Msg.Messages, nil
}

func (s *Store) AppendChat(ctx context.Context, owner string, msgs ...models.ChatMessage) error {
	if _, err := s.chat.AppendHistory(ctx, request(s, owner, &api.AppendHistoryRequest{Messages: msgs})); err != nil {
		return wrap("save chat", err)
	}
	return nil
}

func (s *Store) ClearChat(ctx context.Context, owner string) error {
	if _, err := s.chat.ClearHistory(ctx, request(s, owner, &api.ClearHistoryRequest{})); err != nil {
		return wrap("clear chat", err)
	}
	return nil
}

// UpsertUser registers user.Email under user.Name.
func (s *Store) UpsertUser(ctx context.Context, user *models.User) error {
	req := connect.NewRequest(&api.RegisterRequest{})
	api.SetIdentity(req.Header(), user.Email, user.Name)
	resp, err := s.identity.Register(ctx, req)
	if err != nil {
		return wrap("register user", err)
	}
	user.CreatedAt, user.UpdatedAt = resp.Msg.User.CreatedAt, resp.Msg.User.UpdatedAt
	return nil
}

func (s *Store) GetUser(ctx context.Context, email string) (*models.User, error) {
	resp, err := s.identity.GetUser(ctx, request(s, email, &api.GetUserRequest{}))
	if err != nil {
		return nil, wrap("get user", err)
	}
	u := resp.Msg.User
	return &models.User{Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt}, nil
}

func (s *Store) DeleteOwnerData(ctx context.Context, owner string) error {
	if _, err := s.identity.DeleteData(ctx, request(s, owner, &api.DeleteDataRequest{})); err != nil {
		return wrap("delete data", err)
	}
	return nil
}

// Close is a no-op; the HTTP client is owned by the caller.
func (s *Store) Close() error { return nil }
