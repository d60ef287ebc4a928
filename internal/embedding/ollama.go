package embedding

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/ollama/ollama/envconfig"
)

// OllamaEmbedder generates embeddings through the Ollama API.
type OllamaEmbedder struct {
	client     *api.Client
	model      string
	maxRetries int
	timeout    time.Duration
}

// NewOllamaEmbedder creates an Ollama embedder. An empty host falls back to
// the OLLAMA_HOST environment variable.
func NewOllamaEmbedder(host, model string) (*OllamaEmbedder, error) {
	hostURL := envconfig.Host()
	if host != "" {
		parsed, err := url.Parse(host)
		if err != nil {
			return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
		}
		hostURL = parsed
	}
	client := api.NewClient(hostURL, http.DefaultClient)

	return &OllamaEmbedder{
		client:     client,
		model:      model,
		maxRetries: 3,
		timeout:    2 * time.Minute,
	}, nil
}

// EmbedDocuments generates embeddings for all texts in one batched request.
func (e *OllamaEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed %d documents: %w", len(texts), err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding service returned %d vectors for %d documents", len(resp.Embeddings), len(texts))
	}
	return resp.Embeddings, nil
}

// EmbedQuery generates an embedding for a single query text.
func (e *OllamaEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(resp.Embeddings) == 0 {
		return nil, fmt.Errorf("embedding service returned no vector for query")
	}
	return resp.Embeddings[0], nil
}

// embed performs the API call with retries and backoff.
func (e *OllamaEmbedder) embed(ctx context.Context, input any) (*api.EmbedResponse, error) {
	var lastErr error
	for retries := 0; retries <= e.maxRetries; retries++ {
		if retries > 0 {
			select {
			case <-time.After(time.Duration(retries) * time.Second):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		ctxWithTimeout, cancel := context.WithTimeout(ctx, e.timeout)
		resp, err := e.client.Embed(ctxWithTimeout, &api.EmbedRequest{
			Model: e.model,
			Input: input,
		})
		cancel()
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("after %d retries: %w", e.maxRetries, lastErr)
}
