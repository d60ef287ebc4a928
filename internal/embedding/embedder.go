// Package embedding converts text into vector representations for
// similarity search.
package embedding

import "context"

// Embedder generates embedding vectors for documents and queries.
// A vector index must use one Embedder for both storing and querying;
// mixing embedding models within one collection breaks similarity search.
type Embedder interface {
	// EmbedDocuments generates one embedding per input text in a single
	// batched call.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates an embedding for a single query text.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}
