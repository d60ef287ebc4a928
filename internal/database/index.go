// Package database provides the vector index that stores chunk embeddings
// and answers nearest-neighbor queries.
package database

import (
	"context"
	"fmt"

	"meddoc-rag/internal/models"
)

// DefaultTopK is the default number of nearest neighbors returned by a query.
const DefaultTopK = 5

// VectorIndex stores chunk embeddings keyed by document id and chunk index
// and supports nearest-neighbor queries over the whole corpus. One collection
// is shared across all documents; results from different documents may mix.
//
// Implementations are safe for concurrent stores and queries.
type VectorIndex interface {
	// Store embeds the chunks in one batched call and upserts them by chunk
	// id. Re-storing the same document id and chunk index overwrites the
	// prior vector and metadata. Returns a human-readable status message.
	Store(ctx context.Context, documentID string, chunks []string, metadata []models.ChunkMetadata) (string, error)

	// Query embeds the query text and returns the k nearest neighbors with
	// documents, metadata and distances, ordered by ascending distance.
	// An empty or missing collection yields an empty result, not an error.
	Query(ctx context.Context, queryText string, k int) (*models.QueryResult, error)
}

// ChunkID builds the stable per-chunk storage key.
func ChunkID(documentID string, index int) string {
	return fmt.Sprintf("%s_chunk_%d", documentID, index)
}
