package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mmynk/patungan/internal/models"
)

const (
	DefaultModel   = "gemini-2.5-flash"
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
)

// GeminiClient calls the Generative Language generateContent endpoint.
type GeminiClient struct {
	APIKey  string
	Model   string
	BaseURL string
	Client  *http.Client
}

// NewGeminiClient returns a client for model, or Unconfigured when apiKey is
// empty.
func NewGeminiClient(apiKey, model string) Assistant {
	if strings.TrimSpace(apiKey) == "" {
		return Unconfigured{}
	}
	if model == "" {
		model = DefaultModel
	}
	return &GeminiClient{
		APIKey:  apiKey,
		Model:   model,
		BaseURL: DefaultBaseURL,
		Client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	SystemInstruction *content  `json:"systemInstruction,omitempty"`
	Contents          []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (g *GeminiClient) Reply(ctx context.Context, transcript []models.ChatMessage) (string, error) {
	if g.APIKey == "" {
		return "", ErrNotConfigured
	}
	if len(transcript) == 0 {
		return "", fmt.Errorf("empty transcript")
	}

	payload := generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: SystemPrompt}}},
		Contents:          make([]content, 0, len(transcript)),
	}
	for _, m := range transcript {
		payload.Contents = append(payload.Contents, content{
			Role:  string(m.Role),
			Parts: []part{{Text: m.Content}},
		})
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(g.BaseURL, "/"), g.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.APIKey)

	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call assistant: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		if out.Error != nil {
			return "", fmt.Errorf("assistant returned %d: %s", resp.StatusCode, out.Error.Message)
		}
		return "", fmt.Errorf("assistant returned %d", resp.StatusCode)
	}

	var sb strings.Builder
	if len(out.Candidates) > 0 {
		for _, p := range out.Candidates[0].Content.Parts {
			sb.WriteString(p.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("assistant returned no text")
	}
	return sb.String(), nil
}
