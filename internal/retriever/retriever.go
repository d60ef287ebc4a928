// Package retriever turns raw nearest-neighbor output into ranked,
// human-annotated chunk records.
package retriever

import (
	"context"
	"fmt"
	"math"

	"meddoc-rag/internal/database"
	"meddoc-rag/internal/models"
)

// Retriever queries the vector index and formats its results for display.
type Retriever struct {
	index database.VectorIndex
}

// New creates a Retriever over the given vector index.
func New(index database.VectorIndex) *Retriever {
	return &Retriever{index: index}
}

// Retrieve runs a similarity query and annotates each hit with a rank,
// similarity score and citation string. Similarity is 1 - distance rounded to
// three decimals; this tracks cosine-like metrics and is a heuristic, not a
// guarantee of a [0,1] range. Ranks follow the index ordering; the index is
// the source of ordering truth and results are not re-sorted here.
//
// Zero results yield Count 0 and no error: downstream stages treat that as
// "no document context available".
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) (*models.RetrievalResult, error) {
	if k <= 0 {
		k = database.DefaultTopK
	}

	raw, err := r.index.Query(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}

	formatted := make([]models.RetrievedChunk, 0, len(raw.Documents))
	for i, doc := range raw.Documents {
		meta := raw.Metadatas[i]
		distance := raw.Distances[i]
		similarity := math.Round((1-distance)*1000) / 1000

		pageRef := ""
		if meta.EstimatedPage > 0 {
			pageRef = fmt.Sprintf("Page ~%d", meta.EstimatedPage)
		}
		preview := meta.Preview
		if preview == "" {
			preview = "Content preview not available"
		}
		referenceID := meta.ReferenceID
		if referenceID == "" {
			referenceID = fmt.Sprintf("Section-%d", meta.ChunkIndex+1)
		}

		formatted = append(formatted, models.RetrievedChunk{
			Rank:            i + 1,
			Content:         doc,
			SimilarityScore: similarity,
			Metadata:        meta,
			ChunkInfo:       fmt.Sprintf("%s (%s): '%s'", referenceID, pageRef, preview),
			ReferenceID:     referenceID,
			PageRef:         pageRef,
			Preview:         preview,
		})
	}

	return &models.RetrievalResult{
		Documents:       raw.Documents,
		Metadatas:       raw.Metadatas,
		Distances:       raw.Distances,
		FormattedChunks: formatted,
		Count:           len(raw.Documents),
	}, nil
}
