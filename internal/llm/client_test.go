package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(serverURL string) *GroqClient {
	cfg := DefaultConfig("test-key")
	cfg.BaseURL = serverURL
	return NewGroqClientWithConfig(cfg)
}

func TestCompleteWithSystem_Success(t *testing.T) {
	var gotReq chatRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "  {\"Severity\": \"High\"}  "}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	out, err := c.CompleteWithSystem(context.Background(), "system prompt", "user prompt")
	require.NoError(t, err)

	assert.Equal(t, `{"Severity": "High"}`, out, "response should be trimmed")
	assert.Equal(t, "llama-3.1-8b-instant", gotReq.Model)
	assert.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	require.NotNil(t, gotReq.ResponseFormat, "JSON mode must be requested")
	assert.Equal(t, "json_object", gotReq.ResponseFormat.Type)
	assert.Equal(t, 200, gotReq.MaxTokens)
	assert.InDelta(t, 0.1, gotReq.Temperature, 0.001)
}

func TestComplete_OmitsSystemMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "{}"}},
			},
		})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Complete(context.Background(), "user prompt")
	require.NoError(t, err)
}

func TestCompleteWithSystem_MissingAPIKey(t *testing.T) {
	c := NewGroqClient("")
	_, err := c.CompleteWithSystem(context.Background(), "", "prompt")
	assert.True(t, errors.Is(err, ErrNoAPIKey))
}

func TestCompleteWithSystem_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"invalid api key"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.CompleteWithSystem(context.Background(), "", "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestCompleteWithSystem_APIErrorField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "model_decommissioned", "type": "invalid_request_error"},
		})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.CompleteWithSystem(context.Background(), "", "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model_decommissioned")
}

func TestCompleteWithSystem_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.CompleteWithSystem(context.Background(), "", "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no completion returned")
}

func TestCompleteWithSystem_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // Shut down immediately so the dial fails.

	c := newTestClient(srv.URL)
	_, err := c.CompleteWithSystem(context.Background(), "", "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request failed")
}
