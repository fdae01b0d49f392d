// internal/generation/client.go
package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"policy-assistant/internal/common/httpclient"
	"policy-assistant/internal/common/logger"
	"policy-assistant/internal/models"
)

// Generator produces the final natural-language answer.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Request carries everything the generation engine needs for one answer.
type Request struct {
	SystemPrompt string
	Query        string
	Context      []string
	History      []models.Turn
	// Temperature overrides the configured default when > 0.
	Temperature float64
}

// Config holds settings for the generation HTTP service.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

// Client calls a chat-completion style generation service over HTTP.
type Client struct {
	config     Config
	httpClient *httpclient.Client
	logger     logger.Logger
}

func NewClient(cfg Config, log logger.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		config:     cfg,
		httpClient: httpclient.NewClient(timeout),
		logger:     log.WithFields(map[string]interface{}{"component": "generation"}),
	}
}

type generateRequest struct {
	Model        string        `json:"model,omitempty"`
	SystemPrompt string        `json:"system_prompt"`
	Query        string        `json:"query"`
	Context      []string      `json:"context"`
	History      []models.Turn `json:"history,omitempty"`
	MaxTokens    int           `json:"max_tokens,omitempty"`
	Temperature  float64       `json:"temperature"`
}

type generateResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// Generate posts the assembled prompt and returns the response text. An
// empty text from a successful call is treated as an error so the caller
// can degrade uniformly.
func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	temperature := c.config.Temperature
	if req.Temperature > 0 {
		temperature = req.Temperature
	}

	payload := generateRequest{
		Model:        c.config.Model,
		SystemPrompt: req.SystemPrompt,
		Query:        req.Query,
		Context:      req.Context,
		History:      req.History,
		MaxTokens:    c.config.MaxTokens,
		Temperature:  temperature,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}

	url := c.config.BaseURL + "/generate"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create generate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("generation service call failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read generate response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generation service status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var parsed generateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("parse generate response: %w", err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("generation service error: %s", parsed.Error)
	}

	text := strings.TrimSpace(parsed.Text)
	if text == "" {
		return "", fmt.Errorf("generation service returned empty text")
	}

	c.logger.Debug("generation completed", map[string]interface{}{
		"duration_ms": time.Since(start).Milliseconds(),
		"chars":       len(text),
	})
	return text, nil
}
