package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/patungan/internal/metrics"
	"github.com/mmynk/patungan/pkg/api"
)

// LoggingInterceptor returns a Connect interceptor that logs every RPC call
// and counts it by procedure and status code. Install it outside
// RequireIdentity so rejected calls are logged too.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			procedure := req.Spec().Procedure
			code, level := outcome(err)
			attrs := []slog.Attr{
				slog.String("procedure", procedure),
				slog.String("code", code),
				slog.String("user_email", req.Header().Get(api.HeaderUserEmail)),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			}
			if err != nil {
				attrs = append(attrs, slog.String("error", errorMessage(err)))
			}
			slog.LogAttrs(ctx, level, "RPC finished", attrs...)
			metrics.RPCRequestsTotal.WithLabelValues(procedure, code).Inc()

			return resp, err
		}
	}
}

// outcome classifies an RPC result. Errors the handler chose a code for are
// warnings; anything else is unexpected.
func outcome(err error) (string, slog.Level) {
	if err == nil {
		return "ok", slog.LevelInfo
	}
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr.Code().String(), slog.LevelWarn
	}
	return connect.CodeUnknown.String(), slog.LevelError
}

func errorMessage(err error) string {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr.Message()
	}
	return err.Error()
}
