package retriever

import (
	"context"
	"errors"
	"testing"

	"meddoc-rag/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeIndex returns a canned query result.
type fakeIndex struct {
	result *models.QueryResult
	err    error
}

func (f *fakeIndex) Store(context.Context, string, []string, []models.ChunkMetadata) (string, error) {
	return "", nil
}

func (f *fakeIndex) Query(context.Context, string, int) (*models.QueryResult, error) {
	return f.result, f.err
}

func TestRetrieveFormatsResults(t *testing.T) {
	idx := &fakeIndex{result: &models.QueryResult{
		Documents: []string{"Treatment includes rest.", "Follow-up in two weeks."},
		Metadatas: []models.ChunkMetadata{
			{ChunkIndex: 0, ReferenceID: "Section-1", EstimatedPage: 1, Preview: "Treatment includes rest."},
			{ChunkIndex: 1, ReferenceID: "Section-2", EstimatedPage: 2, Preview: "Follow-up in two weeks."},
		},
		Distances: []float64{0.127, 0.4519},
	}}

	result, err := New(idx).Retrieve(context.Background(), "treatment", 5)
	require.NoError(t, err)
	require.Equal(t, 2, result.Count)
	require.Len(t, result.FormattedChunks, 2)

	first := result.FormattedChunks[0]
	assert.Equal(t, 1, first.Rank)
	assert.Equal(t, 0.873, first.SimilarityScore)
	assert.Equal(t, "Section-1 (Page ~1): 'Treatment includes rest.'", first.ChunkInfo)
	assert.Equal(t, "Page ~1", first.PageRef)

	second := result.FormattedChunks[1]
	assert.Equal(t, 2, second.Rank)
	assert.Equal(t, 0.548, second.SimilarityScore)
}

func TestRetrieveSimilarityRounding(t *testing.T) {
	cases := []struct {
		distance float64
		want     float64
	}{
		{0, 1},
		{0.0004, 1},
		{0.0006, 0.999},
		{1, 0},
		{1.75, -0.75},
	}
	for _, tc := range cases {
		idx := &fakeIndex{result: &models.QueryResult{
			Documents: []string{"x"},
			Metadatas: []models.ChunkMetadata{{ReferenceID: "Section-1", Preview: "x"}},
			Distances: []float64{tc.distance},
		}}
		result, err := New(idx).Retrieve(context.Background(), "q", 1)
		require.NoError(t, err)
		assert.Equal(t, tc.want, result.FormattedChunks[0].SimilarityScore, "distance %v", tc.distance)
	}
}

func TestRetrieveMissingMetadataFields(t *testing.T) {
	idx := &fakeIndex{result: &models.QueryResult{
		Documents: []string{"orphan chunk"},
		Metadatas: []models.ChunkMetadata{{ChunkIndex: 2}},
		Distances: []float64{0.5},
	}}

	result, err := New(idx).Retrieve(context.Background(), "q", 1)
	require.NoError(t, err)

	chunk := result.FormattedChunks[0]
	assert.Equal(t, "Section-3", chunk.ReferenceID)
	assert.Equal(t, "", chunk.PageRef)
	assert.Equal(t, "Content preview not available", chunk.Preview)
	assert.Equal(t, "Section-3 (): 'Content preview not available'", chunk.ChunkInfo)
}

func TestRetrieveEmptyResult(t *testing.T) {
	idx := &fakeIndex{result: &models.QueryResult{}}

	result, err := New(idx).Retrieve(context.Background(), "q", 5)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Count)
	assert.Empty(t, result.FormattedChunks)
}

func TestRetrieveIndexError(t *testing.T) {
	idx := &fakeIndex{err: errors.New("boom")}

	_, err := New(idx).Retrieve(context.Background(), "q", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retrieval failed")
}
