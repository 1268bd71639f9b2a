package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flipsage/product-assistant/internal/agent"
)

func TestCompleteConcatenatesStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3", req.Model)
		assert.Equal(t, "hello", req.Prompt)

		enc := json.NewEncoder(w)
		enc.Encode(generateResponse{Response: "Hi "})
		enc.Encode(generateResponse{Response: "there.", Done: true})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	out, err := c.Complete(context.Background(), "hello")

	require.NoError(t, err)
	assert.Equal(t, "Hi there.", out)
}

func TestCompleteRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "llama3").Complete(context.Background(), "hello")

	require.Error(t, err)
	assert.ErrorIs(t, err, agent.ErrRateLimited)
}

func TestCompleteServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "llama3").Complete(context.Background(), "hello")

	require.Error(t, err)
	assert.True(t, agent.IsServiceError(err))
	assert.Contains(t, err.Error(), "model not loaded")
}

func TestCompleteTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused

	_, err := NewClient(srv.URL, "llama3").Complete(context.Background(), "hello")

	require.Error(t, err)
	assert.True(t, agent.IsServiceError(err))
}
