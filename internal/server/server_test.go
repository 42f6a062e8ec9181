package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/patungan/internal/assistant"
	"github.com/mmynk/patungan/internal/config"
	"github.com/mmynk/patungan/internal/models"
	"github.com/mmynk/patungan/internal/share"
	"github.com/mmynk/patungan/internal/storage/sqlite"
	"github.com/mmynk/patungan/pkg/api"
)

func setupServer(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	server := httptest.NewServer(New(cfg, Deps{
		Store:     store,
		Assistant: assistant.Unconfigured{},
		Shares:    share.NewManager("secret", time.Hour),
	}))
	t.Cleanup(server.Close)
	return server
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestHealthAndMetrics(t *testing.T) {
	server := setupServer(t, &config.Config{MetricsEnabled: true})

	if code, body := get(t, server.URL+"/health"); code != http.StatusOK || !strings.Contains(body, "ok") {
		t.Errorf("/health = %d %q", code, body)
	}

	// Generate one RPC so the counter has a sample.
	client := api.NewBillServiceClient(http.DefaultClient, server.URL)
	client.ListBills(context.Background(), connect.NewRequest(&api.ListBillsRequest{}))

	code, body := get(t, server.URL+"/metrics")
	if code != http.StatusOK || !strings.Contains(body, "patungan_rpc_requests_total") {
		t.Errorf("/metrics = %d, missing RPC counter", code)
	}
}

func TestMetricsDisabled(t *testing.T) {
	server := setupServer(t, &config.Config{})
	if code, _ := get(t, server.URL+"/metrics"); code != http.StatusNotFound {
		t.Errorf("/metrics = %d, want 404", code)
	}
}

func TestConnectRoutes(t *testing.T) {
	server := setupServer(t, &config.Config{})
	client := api.NewBillServiceClient(http.DefaultClient, server.URL)

	bill := models.NewBill(models.BillKey{Kind: models.KindEven, Title: "Trip"})
	bill.Total = 100000
	bill.AddParticipant("Sari")

	req := connect.NewRequest(&api.SaveBillRequest{Bill: bill})
	api.SetIdentity(req.Header(), "sari@example.com", "Sari")
	if _, err := client.SaveBill(context.Background(), req); err != nil {
		t.Fatalf("SaveBill failed: %v", err)
	}

	_, err := client.ListBills(context.Background(), connect.NewRequest(&api.ListBillsRequest{}))
	if connect.CodeOf(err) != connect.CodeUnauthenticated {
		t.Errorf("ListBills without identity: %v", err)
	}
}

func TestCORSPreflight(t *testing.T) {
	server := setupServer(t, &config.Config{CORSAllowedOrigins: []string{"https://patungan.example"}})

	req, _ := http.NewRequest(http.MethodOptions, server.URL+api.BillServiceListBillsProcedure, nil)
	req.Header.Set("Origin", "https://patungan.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", api.HeaderUserEmail)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight failed: %v", err)
	}
	resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://patungan.example" {
		t.Errorf("Allow-Origin = %q", got)
	}
}

func TestStaticFiles(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>Patungan</h1>"), 0o644)
	os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644)

	server := setupServer(t, &config.Config{StaticPath: dir})

	tests := []struct {
		path string
		want string
	}{
		{"/", "<h1>Patungan</h1>"},
		{"/app.js", "console.log(1)"},
		{"/bills/karaoke", "<h1>Patungan</h1>"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			code, body := get(t, server.URL+tt.path)
			if code != http.StatusOK || body != tt.want {
				t.Errorf("GET %s = %d %q", tt.path, code, body)
			}
		})
	}

	if code, _ := get(t, server.URL+"/patungan.v1.Unknown/Call"); code != http.StatusNotFound {
		t.Errorf("unknown procedure = %d, want 404", code)
	}
}
