package middleware

import (
	"context"
	"errors"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/patungan/internal/models"
	"github.com/mmynk/patungan/pkg/api"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// IdentityKey is the context key for the caller's identity.
const IdentityKey contextKey = "identity"

var ErrMissingIdentity = errors.New("identity headers required")

// IdentityFrom returns the identity attached by RequireIdentity.
func IdentityFrom(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(IdentityKey).(models.Identity)
	return id, ok
}

// WithIdentity attaches an identity to ctx. Tests use it to call services
// without going through the interceptor.
func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, id)
}

// Owner returns the email of the caller, or "" when there is none.
func Owner(ctx context.Context) string {
	id, _ := IdentityFrom(ctx)
	return id.Email
}

// RequireIdentity reads the identity headers, validates them and adds the
// identity to the request context. Procedures listed in public may be called
// without headers; if headers are present they are still attached.
func RequireIdentity(public ...string) connect.UnaryInterceptorFunc {
	open := make(map[string]bool, len(public))
	for _, p := range public {
		open[p] = true
	}

	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			email := req.Header().Get(api.HeaderUserEmail)
			if email == "" {
				if open[req.Spec().Procedure] {
					return next(ctx, req)
				}
				return nil, connect.NewError(connect.CodeUnauthenticated, ErrMissingIdentity)
			}

			name := req.Header().Get(api.HeaderUserName)
			if strings.TrimSpace(name) == "" {
				name, _, _ = strings.Cut(email, "@")
			}
			id, err := models.NewIdentity(name, email)
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			return next(WithIdentity(ctx, id), req)
		}
	}
}

// IdentityHeaders stamps a fixed identity on every outgoing request unless the
// caller already set one.
func IdentityHeaders(id models.Identity) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if req.Spec().IsClient && req.Header().Get(api.HeaderUserEmail) == "" && !id.IsZero() {
				api.SetIdentity(req.Header(), id.Email, id.Name)
			}
			return next(ctx, req)
		}
	}
}
