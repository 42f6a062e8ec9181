package service

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/patungan/internal/models"
	"github.com/mmynk/patungan/internal/storage"
	"github.com/mmynk/patungan/pkg/api"
)

// NoteService implements the Connect NoteService.
type NoteService struct {
	store storage.NoteStore
}

var _ api.NoteServiceHandler = (*NoteService)(nil)

func NewNoteService(store storage.NoteStore) *NoteService {
	return &NoteService{store: store}
}

func (s *NoteService) ListNotes(ctx context.Context, req *connect.Request[api.ListNotesRequest]) (*connect.Response[api.ListNotesResponse], error) {
	owner, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	notes, err := s.store.ListNotes(ctx, owner)
	if err != nil {
		return nil, storeError("list notes", err)
	}
	return connect.NewResponse(&api.ListNotesResponse{Notes: notes}), nil
}

func (s *NoteService) CreateNote(ctx context.Context, req *connect.Request[api.CreateNoteRequest]) (*connect.Response[api.CreateNoteResponse], error) {
	owner, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	note := &models.Note{
		Owner:   owner,
		Title:   strings.TrimSpace(req.Msg.Title),
		Content: req.Msg.Content,
	}
	if err := s.store.CreateNote(ctx, note); err != nil {
		return nil, storeError("create note", err)
	}
	return connect.NewResponse(&api.CreateNoteResponse{Note: note}), nil
}

func (s *NoteService) UpdateNote(ctx context.Context, req *connect.Request[api.UpdateNoteRequest]) (*connect.Response[api.UpdateNoteResponse], error) {
	owner, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.ID == "" {
		return nil, invalidArgument("note id is required")
	}
	note := &models.Note{
		ID:      req.Msg.ID,
		Owner:   owner,
		Title:   strings.TrimSpace(req.Msg.Title),
		Content: req.Msg.Content,
	}
	if err := s.store.UpdateNote(ctx, note); err != nil {
		return nil, storeError("update note", err)
	}
	return connect.NewResponse(&api.UpdateNoteResponse{Note: note}), nil
}

func (s *NoteService) DeleteNote(ctx context.Context, req *connect.Request[api.DeleteNoteRequest]) (*connect.Response[api.DeleteNoteResponse], error) {
	owner, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.ID == "" {
		return nil, invalidArgument("note id is required")
	}
	if err := s.store.DeleteNote(ctx, owner, req.Msg.ID); err != nil {
		return nil, storeError("delete note", err)
	}
	return connect.NewResponse(&api.DeleteNoteResponse{}), nil
}

func (s *NoteService) ReorderNotes(ctx context.Context, req *connect.Request[api.ReorderNotesRequest]) (*connect.Response[api.ReorderNotesResponse], error) {
	owner, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.store.ReorderNotes(ctx, owner, req.Msg.IDs); err != nil {
		return nil, storeError("reorder notes", err)
	}
	notes, err := s.store.ListNotes(ctx, owner)
	if err != nil {
		return nil, storeError("list notes", err)
	}
	return connect.NewResponse(&api.ReorderNotesResponse{Notes: notes}), nil
}
