package llm

import (
	"context"
	"fmt"

	"github.com/ollama/ollama/api"
)

// OllamaEmbedder embeds text via a local Ollama instance.
type OllamaEmbedder struct {
	client *api.Client
	model  string
}

func NewOllamaEmbedder(model string) (Embedder, error) {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return nil, fmt.Errorf("error creating ollama client: %w", err)
	}

	return &OllamaEmbedder{client: client, model: model}, nil
}

func (e *OllamaEmbedder) GetModel() string {
	return e.model
}

func (e *OllamaEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.Embed(ctx, &api.EmbedRequest{
		Model: e.model,
		Input: text,
	})
	if err != nil {
		return nil, &ModelError{Kind: KindTransportError, Cause: err}
	}

	if len(resp.Embeddings) == 0 {
		return nil, fmt.Errorf("no embedding in response")
	}

	return resp.Embeddings[0], nil
}
