// Package llm wraps the text-generation service used by the workflow stages.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
	"github.com/ollama/ollama/envconfig"
)

// Generator produces free text from a prompt. Calls are pure request/response;
// streamed fragments are accumulated before returning.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// OllamaLLM generates text through the Ollama API.
type OllamaLLM struct {
	client *api.Client
	model  string
}

// NewOllamaLLM creates an Ollama generation client. An empty host falls back
// to the OLLAMA_HOST environment variable.
func NewOllamaLLM(host, model string) (*OllamaLLM, error) {
	hostURL := envconfig.Host()
	if host != "" {
		parsed, err := url.Parse(host)
		if err != nil {
			return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
		}
		hostURL = parsed
	}
	client := api.NewClient(hostURL, http.DefaultClient)

	return &OllamaLLM{
		client: client,
		model:  model,
	}, nil
}

// Generate runs the model on the prompt and returns the full response text.
func (o *OllamaLLM) Generate(ctx context.Context, prompt string) (string, error) {
	req := api.GenerateRequest{
		Model:  o.model,
		Prompt: prompt,
		Options: map[string]interface{}{
			"temperature": 0.1,
			"num_predict": 1024,
		},
	}

	var responseBuilder strings.Builder
	err := o.client.Generate(ctx, &req, func(resp api.GenerateResponse) error {
		_, err := responseBuilder.WriteString(resp.Response)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}

	return responseBuilder.String(), nil
}
