package processing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// EmbeddingDim is the fixed dimension of the embedding vector; it must
// match the vector(768) column in the reviews table.
const EmbeddingDim = 768

const DefaultEmbedModel = "nomic-embed-text"

// Embedder produces embeddings via Ollama's /api/embeddings endpoint.
type Embedder struct {
	baseURL string
	model   string
	http    *http.Client
}

func NewEmbedder(baseURL, model string) *Embedder {
	if model == "" {
		model = DefaultEmbedModel
	}
	return &Embedder{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		http:    http.DefaultClient,
	}
}

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// EmbedChunks produces one embedding per chunk.
func (e *Embedder) EmbedChunks(ctx context.Context, chunks []string) ([][]float32, error) {
	if len(chunks) == 0 {
		return nil, errors.New("no chunks")
	}
	out := make([][]float32, len(chunks))
	for i, chunk := range chunks {
		emb, err := e.embed(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("failed embedding chunk %d: %w", i, err)
		}
		out[i] = emb
	}
	return out, nil
}

// QueryEmbedding produces an embedding for a query string.
func (e *Embedder) QueryEmbedding(ctx context.Context, query string) ([]float32, error) {
	if query == "" {
		return nil, errors.New("empty query")
	}
	return e.embed(ctx, query)
}

func (e *Embedder) embed(ctx context.Context, text string) ([]float32, error) {
	data, err := json.Marshal(embedRequest{Model: e.model, Prompt: text})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/embeddings", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama error: %s", strings.TrimSpace(string(body)))
	}

	var eResp embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&eResp); err != nil {
		return nil, fmt.Errorf("failed decode response: %w", err)
	}
	if len(eResp.Embedding) != EmbeddingDim {
		return nil, fmt.Errorf("expected embedding dim %d, got %d", EmbeddingDim, len(eResp.Embedding))
	}
	return eResp.Embedding, nil
}
