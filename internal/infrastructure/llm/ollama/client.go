package ollama

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/clinicsync/medparse/internal/core/domain"
	"github.com/clinicsync/medparse/internal/infrastructure/resilience"
)

// Client talks to a local Ollama daemon over its /api/generate endpoint.
// One extraction is one generate call: no streaming, no retries. Failures
// surface as errors and the caller degrades to its deterministic fallback.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	exec       *resilience.Executor
	logger     *slog.Logger
}

func New(baseURL, model string, timeout time.Duration, exec *resilience.Executor, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		exec:       exec,
		logger:     logger,
	}
}

func (c *Client) Extract(ctx context.Context, pages []domain.Page) (*domain.ModelFields, error) {
	prompt := BuildPrompt(pages)

	raw, err := c.generateJSON(ctx, prompt)
	if err != nil {
		return nil, wrapTemporaryIfNeeded("ollama generate", err)
	}

	fields, err := c.decodeFields(raw)
	if err != nil {
		c.logger.Warn("ollama.reply_unusable", "error", err)
		return nil, err
	}
	return fields, nil
}

func (c *Client) generateJSON(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]any{
		"model":  c.model,
		"prompt": prompt,
		"stream": false,
		"format": "json",
	}

	var response struct {
		Response string `json:"response"`
	}
	err := c.exec.Execute(ctx, "ollama.generate", func(ctx context.Context) error {
		return c.postJSON(ctx, "/api/generate", reqBody, &response, "generate")
	}, classifyOllamaError)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(response.Response), nil
}
