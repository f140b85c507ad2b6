package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kenjpais/diagram-generator/pkg/domain"
)

const defaultOllamaTimeout = 120 * time.Second

// OllamaClient calls a local Ollama daemon's chat endpoint.
// See: https://github.com/ollama/ollama/blob/main/docs/api.md
type OllamaClient struct {
	http    *http.Client
	baseURL string
	model   string
}

// NewOllamaClient builds a client for the daemon at baseURL (e.g.
// "http://localhost:11434"). A non-positive timeout falls back to the
// default two minutes; local models can be slow on first load.
func NewOllamaClient(baseURL, model string, timeout time.Duration) (*OllamaClient, error) {
	if baseURL == "" {
		return nil, errors.New("ollama: base url is required")
	}
	if model == "" {
		return nil, errors.New("ollama: model is required")
	}
	if timeout <= 0 {
		timeout = defaultOllamaTimeout
	}
	return &OllamaClient{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
	}, nil
}

func (o *OllamaClient) Name() string { return "ollama:" + o.model }

type ollamaChatReq struct {
	Model    string             `json:"model"`
	Messages []ollamaMessage    `json:"messages"`
	Stream   bool               `json:"stream"`
	Format   string             `json:"format,omitempty"`
	Options  map[string]float64 `json:"options,omitempty"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatResp struct {
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
}

func (o *OllamaClient) Complete(ctx context.Context, req Request) (string, error) {
	messages := make([]ollamaMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, ollamaMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, ollamaMessage{Role: "user", Content: req.User})

	body := ollamaChatReq{
		Model:    o.model,
		Messages: messages,
		Stream:   false,
		Options:  map[string]float64{"temperature": geminiTemperature},
	}
	if req.ForceJSON {
		body.Format = "json"
	}

	b, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("ollama: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/chat", bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("ollama: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("ollama: unexpected status %s: %s", resp.Status, strings.TrimSpace(string(excerpt)))
	}

	var out ollamaChatResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("ollama: decoding response: %w", err)
	}
	if strings.TrimSpace(out.Message.Content) == "" {
		return "", domain.ErrEmptyCompletion
	}
	return out.Message.Content, nil
}
