package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mmynk/patungan/internal/models"
)

func TestGeminiReply(t *testing.T) {
	var got generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/gemini-2.5-flash:generateContent" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "key" {
			t.Errorf("missing api key header")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Halo, "},{"text":"Sari!"}]}}]}`))
	}))
	defer server.Close()

	c := NewGeminiClient("key", "").(*GeminiClient)
	c.BaseURL = server.URL

	reply, err := c.Reply(context.Background(), []models.ChatMessage{
		{Role: models.RoleUser, Content: "Hai"},
		{Role: models.RoleModel, Content: "Halo"},
		{Role: models.RoleUser, Content: "Namaku Sari"},
	})
	if err != nil {
		t.Fatalf("Reply failed: %v", err)
	}
	if reply != "Halo, Sari!" {
		t.Errorf("reply = %q", reply)
	}
	if len(got.Contents) != 3 || got.Contents[1].Role != "model" {
		t.Errorf("contents = %+v", got.Contents)
	}
	if got.SystemInstruction == nil || got.SystemInstruction.Parts[0].Text != SystemPrompt {
		t.Error("system instruction not sent")
	}
}

func TestGeminiErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"api error", http.StatusBadRequest, `{"error":{"code":400,"message":"API key not valid"}}`},
		{"no candidates", http.StatusOK, `{"candidates":[]}`},
		{"not json", http.StatusBadGateway, `<html>bad gateway</html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := NewGeminiClient("key", "m").(*GeminiClient)
			c.BaseURL = server.URL
			if _, err := c.Reply(context.Background(), []models.ChatMessage{{Role: models.RoleUser, Content: "x"}}); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestUnconfigured(t *testing.T) {
	a := NewGeminiClient("  ", "")
	if _, err := a.Reply(context.Background(), nil); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("error = %v, want ErrNotConfigured", err)
	}
}
