// internal/llm/embeddings.go
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultEmbeddingsBaseURL = "https://api.openai.com/v1"

// EmbeddingClient calls the OpenAI embeddings REST API.
type EmbeddingClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

func NewEmbeddingClient(apiKey, model string) *EmbeddingClient {
	return &EmbeddingClient{
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: defaultEmbeddingsBaseURL,
		apiKey:  apiKey,
		model:   model,
	}
}

// WithBaseURL overrides the API endpoint (tests, proxies).
func (c *EmbeddingClient) WithBaseURL(u string) *EmbeddingClient {
	c.baseURL = u
	return c
}

// Embed returns the embedding vector for text.
func (c *EmbeddingClient) Embed(ctx context.Context, text string) ([]float32, error) {
	payload, _ := json.Marshal(map[string]any{
		"model":           c.model,
		"input":           text,
		"encoding_format": "float",
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embeddings", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embeddings request: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embeddings api status %d", resp.StatusCode)
	}
	var out struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("embeddings decode: %w", err)
	}
	if len(out.Data) == 0 || len(out.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("embeddings api returned no vector")
	}
	return out.Data[0].Embedding, nil
}
