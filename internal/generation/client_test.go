// internal/generation/client_test.go
package generation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policy-assistant/internal/common/logger"
	"policy-assistant/internal/models"
)

func newTestGenClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		BaseURL:     srv.URL,
		Model:       "test-model",
		Timeout:     2 * time.Second,
		MaxTokens:   512,
		Temperature: 0.2,
	}, logger.NewNoOpLogger())
}

func TestClient_Generate(t *testing.T) {
	client := newTestGenClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/generate", r.URL.Path)

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "You answer insurance questions.", payload["system_prompt"])
		assert.Equal(t, "am I covered for trip delay?", payload["query"])
		assert.Equal(t, 0.2, payload["temperature"])

		w.Write([]byte(`{"text": "Yes, trip delay beyond 6 hours is covered."}`))
	})

	text, err := client.Generate(context.Background(), Request{
		SystemPrompt: "You answer insurance questions.",
		Query:        "am I covered for trip delay?",
		Context:      []string{"Trip delay beyond 6 hours pays USD 50 per 12 hours."},
		History:      []models.Turn{{Role: models.RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Yes, trip delay beyond 6 hours is covered.", text)
}

func TestClient_Generate_EmptyTextIsError(t *testing.T) {
	client := newTestGenClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text": "   "}`))
	})

	_, err := client.Generate(context.Background(), Request{Query: "q"})
	assert.ErrorContains(t, err, "empty text")
}

func TestClient_Generate_ServiceError(t *testing.T) {
	client := newTestGenClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`upstream model error`))
	})

	_, err := client.Generate(context.Background(), Request{Query: "q"})
	assert.ErrorContains(t, err, "status 502")
}

func TestClient_Generate_ErrorField(t *testing.T) {
	client := newTestGenClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text": "", "error": "rate limited"}`))
	})

	_, err := client.Generate(context.Background(), Request{Query: "q"})
	assert.ErrorContains(t, err, "rate limited")
}
