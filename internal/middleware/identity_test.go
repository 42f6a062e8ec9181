package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/patungan/internal/models"
	"github.com/mmynk/patungan/pkg/api"
)

// whoami echoes the identity found in the context.
type whoami struct{}

func (whoami) Register(ctx context.Context, req *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error) {
	id, _ := IdentityFrom(ctx)
	return connect.NewResponse(&api.RegisterResponse{User: &api.User{Email: id.Email, Name: id.Name}}), nil
}

func (whoami) GetUser(ctx context.Context, req *connect.Request[api.GetUserRequest]) (*connect.Response[api.GetUserResponse], error) {
	return connect.NewResponse(&api.GetUserResponse{User: &api.User{Email: Owner(ctx)}}), nil
}

func (whoami) DeleteData(ctx context.Context, req *connect.Request[api.DeleteDataRequest]) (*connect.Response[api.DeleteDataResponse], error) {
	return connect.NewResponse(&api.DeleteDataResponse{}), nil
}

func TestRequireIdentity(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle(api.NewIdentityServiceHandler(whoami{}, connect.WithInterceptors(
		LoggingInterceptor(),
		RequireIdentity(api.IdentityServiceGetUserProcedure),
	)))
	server := httptest.NewServer(mux)
	defer server.Close()

	client := api.NewIdentityServiceClient(http.DefaultClient, server.URL)
	ctx := context.Background()

	tests := []struct {
		name      string
		email     string
		userName  string
		wantCode  connect.Code
		wantEmail string
		wantName  string
	}{
		{name: "valid", email: "Sari@Example.com ", userName: "Sari", wantEmail: "sari@example.com", wantName: "Sari"},
		{name: "name defaults to local part", email: "budi@example.com", wantEmail: "budi@example.com", wantName: "budi"},
		{name: "missing", wantCode: connect.CodeUnauthenticated},
		{name: "malformed email", email: "budi", userName: "Budi", wantCode: connect.CodeUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := connect.NewRequest(&api.RegisterRequest{})
			if tt.email != "" {
				api.SetIdentity(req.Header(), tt.email, tt.userName)
			}
			resp, err := client.Register(ctx, req)
			if tt.wantCode != 0 {
				if connect.CodeOf(err) != tt.wantCode {
					t.Fatalf("error = %v, want code %v", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("Register failed: %v", err)
			}
			if resp.Msg.User.Email != tt.wantEmail || resp.Msg.User.Name != tt.wantName {
				t.Errorf("identity = %+v", resp.Msg.User)
			}
		})
	}

	// Public procedures pass through without headers.
	if _, err := client.GetUser(ctx, connect.NewRequest(&api.GetUserRequest{})); err != nil {
		t.Errorf("public procedure rejected: %v", err)
	}
}

func TestIdentityHeaders(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle(api.NewIdentityServiceHandler(whoami{}, connect.WithInterceptors(RequireIdentity())))
	server := httptest.NewServer(mux)
	defer server.Close()

	id := models.Identity{Name: "Dewi", Email: "dewi@example.com"}
	client := api.NewIdentityServiceClient(http.DefaultClient, server.URL,
		connect.WithInterceptors(IdentityHeaders(id)))

	resp, err := client.Register(context.Background(), connect.NewRequest(&api.RegisterRequest{}))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if resp.Msg.User.Email != id.Email || resp.Msg.User.Name != id.Name {
		t.Errorf("identity = %+v", resp.Msg.User)
	}

	// An explicit header wins over the default identity.
	req := connect.NewRequest(&api.RegisterRequest{})
	api.SetIdentity(req.Header(), "sari@example.com", "Sari")
	resp, err = client.Register(context.Background(), req)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if resp.Msg.User.Email != "sari@example.com" {
		t.Errorf("email = %s, want the explicit header", resp.Msg.User.Email)
	}
}
