package database

import (
	"context"
	"strings"
	"testing"

	"meddoc-rag/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEmbedder produces deterministic vectors from letter frequencies so that
// texts sharing words land close together.
type stubEmbedder struct{}

func (stubEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = stubVector(text)
	}
	return vectors, nil
}

func (stubEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	return stubVector(text), nil
}

func stubVector(text string) []float32 {
	vec := make([]float32, 26)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			vec[r-'a']++
		}
	}
	return vec
}

func chunkMeta(i int) models.ChunkMetadata {
	return models.ChunkMetadata{ChunkIndex: i, ReferenceID: "Section-1"}
}

func TestQueryEmptyIndex(t *testing.T) {
	idx := NewMemoryIndex(stubEmbedder{})

	result, err := idx.Query(context.Background(), "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, result.Documents)
	assert.Empty(t, result.Distances)
}

func TestStoreEnrichesMetadata(t *testing.T) {
	idx := NewMemoryIndex(stubEmbedder{})

	status, err := idx.Store(context.Background(), "abc123", []string{"rest and hydration"}, []models.ChunkMetadata{chunkMeta(0)})
	require.NoError(t, err)
	assert.Contains(t, status, "1 chunks")
	assert.Contains(t, status, "abc123")

	result, err := idx.Query(context.Background(), "hydration", 1)
	require.NoError(t, err)
	require.Len(t, result.Metadatas, 1)
	assert.Equal(t, "abc123", result.Metadatas[0].DocumentID)
	assert.Equal(t, "abc123_chunk_0", result.Metadatas[0].ChunkID)
}

func TestStoreUpsertsByID(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex(stubEmbedder{})

	_, err := idx.Store(ctx, "doc1", []string{"original content"}, []models.ChunkMetadata{chunkMeta(0)})
	require.NoError(t, err)
	_, err = idx.Store(ctx, "doc1", []string{"replacement content"}, []models.ChunkMetadata{chunkMeta(0)})
	require.NoError(t, err)

	assert.Equal(t, 1, idx.Len())

	result, err := idx.Query(ctx, "content", 5)
	require.NoError(t, err)
	require.Len(t, result.Documents, 1)
	assert.Equal(t, "replacement content", result.Documents[0])
}

func TestQueryMixesDocuments(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex(stubEmbedder{})

	_, err := idx.Store(ctx, "docA", []string{"fever treatment guidance"}, []models.ChunkMetadata{chunkMeta(0)})
	require.NoError(t, err)
	_, err = idx.Store(ctx, "docB", []string{"fever management advice"}, []models.ChunkMetadata{chunkMeta(0)})
	require.NoError(t, err)

	// One shared collection, no per-document scoping: both documents can
	// appear in a single result set.
	result, err := idx.Query(ctx, "fever", 5)
	require.NoError(t, err)
	require.Len(t, result.Documents, 2)

	seen := map[string]bool{}
	for _, meta := range result.Metadatas {
		seen[meta.DocumentID] = true
	}
	assert.True(t, seen["docA"])
	assert.True(t, seen["docB"])
}

func TestQueryOrdersByDistance(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex(stubEmbedder{})

	chunks := []string{
		"treatment includes rest and hydration",
		"the quick brown fox jumps over the lazy dog",
		"follow up appointment in two weeks",
	}
	metas := []models.ChunkMetadata{chunkMeta(0), chunkMeta(1), chunkMeta(2)}
	_, err := idx.Store(ctx, "doc1", chunks, metas)
	require.NoError(t, err)

	result, err := idx.Query(ctx, "treatment rest hydration", 3)
	require.NoError(t, err)
	require.Len(t, result.Distances, 3)

	assert.Equal(t, "treatment includes rest and hydration", result.Documents[0])
	for i := 1; i < len(result.Distances); i++ {
		assert.LessOrEqual(t, result.Distances[i-1], result.Distances[i])
	}
}

func TestStoreLengthMismatch(t *testing.T) {
	idx := NewMemoryIndex(stubEmbedder{})

	_, err := idx.Store(context.Background(), "doc1", []string{"a", "b"}, []models.ChunkMetadata{chunkMeta(0)})
	require.Error(t, err)
}
