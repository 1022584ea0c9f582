package claude_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notaria/internal/config"
	"notaria/internal/provider"
	"notaria/internal/provider/claude"
)

func newTestClient(serverURL string) *claude.Client {
	cfg := config.ProviderConfig{
		APIKey:      "test-api-key",
		Model:       "claude-sonnet-4-20250514",
		TimeoutSecs: 30,
	}
	return claude.NewWithEndpoint(cfg, 4096, serverURL)
}

func TestClient_Complete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-api-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var reqBody map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "claude-sonnet-4-20250514", reqBody["model"])
		assert.Equal(t, float64(1000), reqBody["max_tokens"])

		messages := reqBody["messages"].([]interface{})
		require.Len(t, messages, 1)
		msg := messages[0].(map[string]interface{})
		assert.Equal(t, "user", msg["role"])
		assert.Equal(t, "redacta la escritura", msg["content"])

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]interface{}{
				{"type": "text", "text": "PRIMERA. "},
				{"type": "text", "text": "El vendedor vende."},
			},
			"stop_reason": "end_turn",
		})
	}))
	defer server.Close()

	out, err := newTestClient(server.URL).Complete(context.Background(), "redacta la escritura", 1000)

	require.NoError(t, err)
	assert.Equal(t, "PRIMERA. El vendedor vende.", out)
}

func TestClient_Complete_DefaultMaxTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqBody map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&reqBody)
		assert.Equal(t, float64(4096), reqBody["max_tokens"])
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]interface{}{{"type": "text", "text": "ok"}},
		})
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Complete(context.Background(), "x", 0)
	require.NoError(t, err)
}

func TestClient_CompleteWithImage_PDFBlock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqBody map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		msg := reqBody["messages"].([]interface{})[0].(map[string]interface{})
		content := msg["content"].([]interface{})
		require.Len(t, content, 2)

		doc := content[0].(map[string]interface{})
		assert.Equal(t, "document", doc["type"])
		source := doc["source"].(map[string]interface{})
		assert.Equal(t, "application/pdf", source["media_type"])
		assert.Equal(t, "JVBERi0xLjQ=", source["data"])

		text := content[1].(map[string]interface{})
		assert.Equal(t, "extrae", text["text"])

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]interface{}{{"type": "text", "text": `{"fields":{}}`}},
		})
	}))
	defer server.Close()

	out, err := newTestClient(server.URL).CompleteWithImage(context.Background(), []byte("%PDF-1.4"), "application/pdf", "extrae")

	require.NoError(t, err)
	assert.Equal(t, `{"fields":{}}`, out)
}

func TestClient_CompleteWithImage_UnsupportedType(t *testing.T) {
	_, err := newTestClient("http://unused").CompleteWithImage(context.Background(), []byte("x"), "text/plain", "p")
	assert.Error(t, err)
}

func TestClient_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate_limited"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Complete(context.Background(), "x", 10)

	var rlErr *provider.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "claude", rlErr.Provider)
	assert.Equal(t, 30*time.Second, rlErr.RetryAfter)
}

func TestClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"overloaded"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Complete(context.Background(), "x", 10)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.Contains(t, err.Error(), "overloaded")
}

func TestClient_Truncated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content":     []map[string]interface{}{{"type": "text", "text": "partial"}},
			"stop_reason": "max_tokens",
		})
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Complete(context.Background(), "x", 10)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "truncated")
}

func TestClient_EmptyCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"content": []map[string]interface{}{}})
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Complete(context.Background(), "x", 10)

	assert.ErrorIs(t, err, provider.ErrEmptyCompletion)
}

func TestClient_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestClient(server.URL).Complete(ctx, "x", 10)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
