package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

const NoteServiceName = "patungan.v1.NoteService"

const (
	NoteServiceListNotesProcedure    = "/patungan.v1.NoteService/ListNotes"
	NoteServiceCreateNoteProcedure   = "/patungan.v1.NoteService/CreateNote"
	NoteServiceUpdateNoteProcedure   = "/patungan.v1.NoteService/UpdateNote"
	NoteServiceDeleteNoteProcedure   = "/patungan.v1.NoteService/DeleteNote"
	NoteServiceReorderNotesProcedure = "/patungan.v1.NoteService/ReorderNotes"
)

type NoteServiceHandler interface {
	ListNotes(context.Context, *connect.Request[ListNotesRequest]) (*connect.Response[ListNotesResponse], error)
	CreateNote(context.Context, *connect.Request[CreateNoteRequest]) (*connect.Response[CreateNoteResponse], error)
	UpdateNote(context.Context, *connect.Request[UpdateNoteRequest]) (*connect.Response[UpdateNoteResponse], error)
	DeleteNote(context.Context, *connect.Request[DeleteNoteRequest]) (*connect.Response[DeleteNoteResponse], error)
	ReorderNotes(context.Context, *connect.Request[ReorderNotesRequest]) (*connect.Response[ReorderNotesResponse], error)
}

func NewNoteServiceHandler(svc NoteServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(NoteServiceListNotesProcedure, connect.NewUnaryHandler(NoteServiceListNotesProcedure, svc.ListNotes, opts...))
	mux.Handle(NoteServiceCreateNoteProcedure, connect.NewUnaryHandler(NoteServiceCreateNoteProcedure, svc.CreateNote, opts...))
	mux.Handle(NoteServiceUpdateNoteProcedure, connect.NewUnaryHandler(NoteServiceUpdateNoteProcedure, svc.UpdateNote, opts...))
	mux.Handle(NoteServiceDeleteNoteProcedure, connect.NewUnaryHandler(NoteServiceDeleteNoteProcedure, svc.DeleteNote, opts...))
	mux.Handle(NoteServiceReorderNotesProcedure, connect.NewUnaryHandler(NoteServiceReorderNotesProcedure, svc.ReorderNotes, opts...))
	return "/" + NoteServiceName + "/", mux
}

type NoteServiceClient struct {
	listNotes    *connect.Client[ListNotesRequest, ListNotesResponse]
	createNote   *connect.Client[CreateNoteRequest, CreateNoteResponse]
	updateNote   *connect.Client[UpdateNoteRequest, UpdateNoteResponse]
	deleteNote   *connect.Client[DeleteNoteRequest, DeleteNoteResponse]
	reorderNotes *connect.Client[ReorderNotesRequest, ReorderNotesResponse]
}

func NewNoteServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *NoteServiceClient {
	opts = clientOptions(opts)
	return &NoteServiceClient{
		listNotes:    connect.NewClient[ListNotesRequest, ListNotesResponse](httpClient, baseURL+NoteServiceListNotesProcedure, opts...),
		createNote:   connect.NewClient[CreateNoteRequest, CreateNoteResponse](httpClient, baseURL+NoteServiceCreateNoteProcedure, opts...),
		updateNote:   connect.NewClient[UpdateNoteRequest, UpdateNoteResponse](httpClient, baseURL+NoteServiceUpdateNoteProcedure, opts...),
		deleteNote:   connect.NewClient[DeleteNoteRequest, DeleteNoteResponse](httpClient, baseURL+NoteServiceDeleteNoteProcedure, opts...),
		reorderNotes: connect.NewClient[ReorderNotesRequest, ReorderNotesResponse](httpClient, baseURL+NoteServiceReorderNotesProcedure, opts...),
	}
}

func (c *NoteServiceClient) ListNotes(ctx context.Context, req *connect.Request[ListNotesRequest]) (*connect.Response[ListNotesResponse], error) {
	return c.listNotes.CallUnary(ctx, req)
}

func (c *NoteServiceClient) CreateNote(ctx context.Context, req *connect.Request[CreateNoteRequest]) (*connect.Response[CreateNoteResponse], error) {
	return c.createNote.CallUnary(ctx, req)
}

func (c *NoteServiceClient) UpdateNote(ctx context.Context, req *connect.Request[UpdateNoteRequest]) (*connect.Response[UpdateNoteResponse], error) {
	return c.updateNote.CallUnary(ctx, req)
}

func (c *NoteServiceClient) DeleteNote(ctx context.Context, req *connect.Request[DeleteNoteRequest]) (*connect.Response[DeleteNoteResponse], error) {
	return c.deleteNote.CallUnary(ctx, req)
}

func (c *NoteServiceClient) ReorderNotes(ctx context.Context, req *connect.Request[ReorderNotesRequest]) (*connect.Response[ReorderNotesResponse], error) {
	return c.reorderNotes.CallUnary(ctx, req)
}
