// Package server assembles the HTTP handler of the Patungan server.
package server

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/patungan/internal/assistant"
	"github.com/mmynk/patungan/internal/config"
	rpcmw "github.com/mmynk/patungan/internal/middleware"
	"github.com/mmynk/patungan/internal/service"
	"github.com/mmynk/patungan/internal/share"
	"github.com/mmynk/patungan/internal/storage"
	"github.com/mmynk/patungan/pkg/api"
)

// Deps are the collaborators of the server.
type Deps struct {
	Store     storage.Store
	Assistant assistant.Assistant
	Shares    *share.Manager
}

// New returns the root handler: health, metrics, the Connect services and,
// when configured, the static frontend.
func New(cfg *config.Config, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins(cfg),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{
			"Content-Type", "Connect-Protocol-Version", "Connect-Timeout-Ms",
			api.HeaderUserEmail, api.HeaderUserName,
		},
		ExposedHeaders: []string{"Connect-Protocol-Version", "Connect-Timeout-Ms"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	if cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	interceptors := connect.WithInterceptors(
		rpcmw.LoggingInterceptor(),
		rpcmw.RequireIdentity(api.BillServiceGetSharedBillProcedure, api.BillServiceCalculateSplitProcedure),
	)
	mount := func(path string, h http.Handler) {
		r.Handle(path+"*", h)
	}
	mount(api.NewBillServiceHandler(service.NewBillService(deps.Store, deps.Shares), interceptors))
	mount(api.NewNoteServiceHandler(service.NewNoteService(deps.Store), interceptors))
	mount(api.NewChatServiceHandler(service.NewChatService(deps.Store, deps.Assistant), interceptors))
	mount(api.NewIdentityServiceHandler(service.NewIdentityService(deps.Store), interceptors))

	if cfg.StaticPath != "" {
		staticDir, err := filepath.Abs(cfg.StaticPath)
		if err != nil {
			slog.Warn("Failed to resolve static path, not serving files", "path", cfg.StaticPath, "error", err)
		} else {
			slog.Info("Serving static files", "path", staticDir)
			r.NotFound(staticHandler(staticDir))
		}
	}

	return r
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

// staticHandler serves files from dir and falls back to index.html so client
// side routes resolve.
func staticHandler(dir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/patungan.v1.") {
			http.NotFound(w, r)
			return
		}

		urlPath := r.URL.Path
		if urlPath == "/" {
			urlPath = "/index.html"
		}

		filePath := filepath.Join(dir, filepath.Clean("/"+urlPath))
		if info, err := os.Stat(filePath); err != nil || info.IsDir() {
			http.ServeFile(w, r, filepath.Join(dir, "index.html"))
			return
		}
		http.ServeFile(w, r, filePath)
	}
}

// requestLogger logs completed HTTP requests.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
