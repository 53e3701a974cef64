package llm

import "context"

// Embedder generates vector embeddings for semantic similarity search.
// Implementations must be safe for concurrent use.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)

	GetModel() string
}
