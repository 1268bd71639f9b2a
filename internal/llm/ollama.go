// Package llm implements the agent's completion service against a local
// Ollama server.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/flipsage/product-assistant/internal/agent"
)

const DefaultModel = "llama3"

// Client talks to Ollama's /api/generate endpoint. Safe for concurrent use.
type Client struct {
	baseURL string
	model   string
	http    *http.Client
}

func NewClient(baseURL, model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		http:    http.DefaultClient,
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// Ollama streams JSON chunks like {"response": "...", "done": false}.
type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Complete sends the prompt and concatenates the streamed response.
// Throttling surfaces as agent.ErrRateLimited, everything else as an
// agent.ServiceError.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{Model: c.model, Prompt: prompt})
	if err != nil {
		return "", &agent.ServiceError{Op: "complete", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", &agent.ServiceError{Op: "complete", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &agent.ServiceError{Op: "complete", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("ollama: %w", agent.ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", &agent.ServiceError{
			Op:  "complete",
			Err: fmt.Errorf("ollama status %d: %s", resp.StatusCode, strings.TrimSpace(string(b))),
		}
	}

	var out strings.Builder
	decoder := json.NewDecoder(resp.Body)
	for {
		var chunk generateResponse
		if err := decoder.Decode(&chunk); err == io.EOF {
			break
		} else if err != nil {
			return "", &agent.ServiceError{Op: "complete", Err: fmt.Errorf("decoding response: %w", err)}
		}
		out.WriteString(chunk.Response)
		if chunk.Done {
			break
		}
	}
	return out.String(), nil
}
