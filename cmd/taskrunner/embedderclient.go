package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/taskforge/taskforge/pkg/embedder"
	"github.com/taskforge/taskforge/pkg/httpclient"
)

// openAIEmbedderClient is a trimmed embedder.Embedder against the
// OpenAI-compatible embeddings endpoint, the concrete counterpart to
// openAIChatClient.
type openAIEmbedderClient struct {
	http    *httpclient.Client
	baseURL string
	apiKey  string
}

func newOpenAIEmbedderClient(baseURL, apiKey string) *openAIEmbedderClient {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &openAIEmbedderClient{
		http: httpclient.New(
			httpclient.WithHTTPClient(&http.Client{Timeout: 60 * time.Second}),
			httpclient.WithMaxRetries(3),
			httpclient.WithBaseDelay(time.Second),
			httpclient.WithHeaderParser(httpclient.ParseOpenAIRateLimitHeaders),
		),
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingsResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Embed implements embedder.Embedder.
func (c *openAIEmbedderClient) Embed(ctx context.Context, texts []string, model string) ([]embedder.Vector, error) {
	body, err := json.Marshal(embeddingsRequest{Model: model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("encode embeddings request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build embeddings request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embeddings request: %w", err)
	}
	defer resp.Body.Close()

	var decoded embeddingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode embeddings response: %w", err)
	}
	if decoded.Error != nil {
		return nil, fmt.Errorf("embeddings request failed: %s", decoded.Error.Message)
	}
	if len(decoded.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings request: expected %d vectors, got %d", len(texts), len(decoded.Data))
	}

	out := make([]embedder.Vector, len(decoded.Data))
	for _, d := range decoded.Data {
		out[d.Index] = d.Embedding
	}
	return out, nil
}
