package database

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"meddoc-rag/internal/embedding"
	"meddoc-rag/internal/models"
)

// MemoryIndex is an in-memory VectorIndex using brute-force cosine distance.
// It backs the no-database configuration and the test suite. Entries live for
// the lifetime of the process only.
type MemoryIndex struct {
	mu       sync.RWMutex
	embedder embedding.Embedder
	records  map[string]memoryRecord
}

type memoryRecord struct {
	id       string
	content  string
	metadata models.ChunkMetadata
	vector   []float32
}

// NewMemoryIndex creates an empty in-memory index.
func NewMemoryIndex(embedder embedding.Embedder) *MemoryIndex {
	return &MemoryIndex{
		embedder: embedder,
		records:  make(map[string]memoryRecord),
	}
}

// Store embeds the chunks in one batch and upserts them by chunk id.
func (idx *MemoryIndex) Store(ctx context.Context, documentID string, chunks []string, metadata []models.ChunkMetadata) (string, error) {
	if len(chunks) == 0 {
		return "", fmt.Errorf("no chunks to store for document %s", documentID)
	}
	if len(chunks) != len(metadata) {
		return "", fmt.Errorf("chunks and metadata length mismatch: %d != %d", len(chunks), len(metadata))
	}

	vectors, err := idx.embedder.EmbedDocuments(ctx, chunks)
	if err != nil {
		return "", fmt.Errorf("failed to embed chunks: %w", err)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	for i, chunk := range chunks {
		id := ChunkID(documentID, i)

		enriched := metadata[i]
		enriched.DocumentID = documentID
		enriched.ChunkID = id

		idx.records[id] = memoryRecord{
			id:       id,
			content:  chunk,
			metadata: enriched,
			vector:   vectors[i],
		}
	}

	return fmt.Sprintf("Successfully stored %d chunks for document %s", len(chunks), documentID), nil
}

// Query returns the k nearest stored chunks by cosine distance.
func (idx *MemoryIndex) Query(ctx context.Context, queryText string, k int) (*models.QueryResult, error) {
	if k <= 0 {
		k = DefaultTopK
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if len(idx.records) == 0 {
		return &models.QueryResult{}, nil
	}

	vector, err := idx.embedder.EmbedQuery(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	type scored struct {
		record   memoryRecord
		distance float64
	}
	all := make([]scored, 0, len(idx.records))
	for _, rec := range idx.records {
		all = append(all, scored{record: rec, distance: cosineDistance(vector, rec.vector)})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].distance != all[j].distance {
			return all[i].distance < all[j].distance
		}
		return all[i].record.id < all[j].record.id
	})
	if k > len(all) {
		k = len(all)
	}

	result := &models.QueryResult{}
	for _, s := range all[:k] {
		result.Documents = append(result.Documents, s.record.content)
		result.Metadatas = append(result.Metadatas, s.record.metadata)
		result.Distances = append(result.Distances, s.distance)
	}
	return result, nil
}

// Len reports the number of stored records.
func (idx *MemoryIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.records)
}

// cosineDistance is 1 - cosine similarity, so identical directions score 0
// and opposite directions score 2. Zero vectors are maximally distant.
func cosineDistance(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
