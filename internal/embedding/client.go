// internal/embedding/client.go
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"policy-assistant/internal/common/httpclient"
	"policy-assistant/internal/common/logger"
)

// Embedder turns text into a dense vector for nearest-neighbour search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Config holds settings for the embedding HTTP service.
type Config struct {
	BaseURL   string
	APIKey    string
	Model     string
	Dimension int
	Timeout   time.Duration
}

// Client calls an embedding HTTP service. A single request embeds one text.
type Client struct {
	config     Config
	httpClient *httpclient.Client
	logger     logger.Logger
}

func NewClient(cfg Config, log logger.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		config:     cfg,
		httpClient: httpclient.NewClient(timeout),
		logger:     log.WithFields(map[string]interface{}{"component": "embedding"}),
	}
}

type embedRequest struct {
	Model string `json:"model,omitempty"`
	Input string `json:"input"`
}

type embedResponse struct {
	Embedding []float64 `json:"embedding"`
	Error     string    `json:"error,omitempty"`
}

// Embed posts the text to the embedding service and returns the vector.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	body, err := json.Marshal(embedRequest{Model: c.config.Model, Input: text})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	url := c.config.BaseURL + "/embed"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding service call failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read embed response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("embedding service returned non-200", map[string]interface{}{
			"status": resp.StatusCode,
			"body":   truncate(string(respBody), 200),
		})
		return nil, fmt.Errorf("embedding service status %d", resp.StatusCode)
	}

	var parsed embedResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("parse embed response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("embedding service error: %s", parsed.Error)
	}
	if len(parsed.Embedding) == 0 {
		return nil, fmt.Errorf("embedding service returned empty vector")
	}
	if c.config.Dimension > 0 && len(parsed.Embedding) != c.config.Dimension {
		return nil, fmt.Errorf("embedding dimension mismatch: got %d, want %d",
			len(parsed.Embedding), c.config.Dimension)
	}

	return parsed.Embedding, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
