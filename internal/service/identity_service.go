package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/patungan/internal/middleware"
	"github.com/mmynk/patungan/internal/models"
	"github.com/mmynk/patungan/internal/storage"
	"github.com/mmynk/patungan/pkg/api"
)

// IdentityService records self-reported identities. It performs no
// authentication.
type IdentityService struct {
	store storage.UserStore
}

var _ api.IdentityServiceHandler = (*IdentityService)(nil)

func NewIdentityService(store storage.UserStore) *IdentityService {
	return &IdentityService{store: store}
}

func toAPIUser(u *models.User) *api.User {
	return &api.User{Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt}
}

func (s *IdentityService) Register(ctx context.Context, req *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error) {
	id, ok := middleware.IdentityFrom(ctx)
	if !ok {
		return nil, connect.NewError(connect.CodeUnauthenticated, middleware.ErrMissingIdentity)
	}

	user := &models.User{Email: id.Email, Name: id.Name}
	if err := s.store.UpsertUser(ctx, user); err != nil {
		return nil, storeError("register user", err)
	}
	slog.Info("User registered", "owner", user.Email)
	return connect.NewResponse(&api.RegisterResponse{User: toAPIUser(user)}), nil
}

func (s *IdentityService) GetUser(ctx context.Context, req *connect.Request[api.GetUserRequest]) (*connect.Response[api.GetUserResponse], error) {
	owner, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.store.GetUser(ctx, owner)
	if err != nil {
		return nil, storeError("get user", err)
	}
	return connect.NewResponse(&api.GetUserResponse{User: toAPIUser(user)}), nil
}

// DeleteData removes every bill, note and chat message of the caller.
func (s *IdentityService) DeleteData(ctx context.Context, req *connect.Request[api.DeleteDataRequest]) (*connect.Response[api.DeleteDataResponse], error) {
	owner, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeleteOwnerData(ctx, owner); err != nil {
		return nil, storeError("delete data", err)
	}
	slog.Info("Owner data deleted", "owner", owner)
	return connect.NewResponse(&api.DeleteDataResponse{}), nil
}
