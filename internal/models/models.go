package models

// ChunkMetadata describes a chunk's position within its source document.
type ChunkMetadata struct {
	ChunkIndex    int    `json:"chunk_index"`
	Filename      string `json:"filename"`
	ChunkSize     int    `json:"chunk_size"`
	Preview       string `json:"preview"`
	EstimatedPage int    `json:"estimated_page"`
	ReferenceID   string `json:"reference_id"`
	DocumentHash  string `json:"document_hash"`

	// DocumentID and ChunkID are filled in by the vector index at store time.
	DocumentID string `json:"document_id,omitempty"`
	ChunkID    string `json:"chunk_id,omitempty"`
}

// ChunkingResult is the output of splitting one document.
type ChunkingResult struct {
	Chunks      []string        `json:"chunks"`
	Metadata    []ChunkMetadata `json:"metadata"`
	TotalChunks int             `json:"total_chunks"`
}

// DocumentMetadata carries upload-level information about a document.
type DocumentMetadata struct {
	Filename string `json:"filename"`
}

// QueryResult is the raw nearest-neighbor output of a vector index query.
// The three slices are parallel and ordered by ascending distance.
type QueryResult struct {
	Documents []string        `json:"documents"`
	Metadatas []ChunkMetadata `json:"metadatas"`
	Distances []float64       `json:"distances"`
}

// RetrievedChunk is one display-ready retrieval hit.
type RetrievedChunk struct {
	Rank            int           `json:"rank"`
	Content         string        `json:"content"`
	SimilarityScore float64       `json:"similarity_score"`
	Metadata        ChunkMetadata `json:"metadata"`
	ChunkInfo       string        `json:"chunk_info"`
	ReferenceID     string        `json:"reference_id"`
	PageRef         string        `json:"page_ref"`
	Preview         string        `json:"preview"`
}

// RetrievalResult is the retriever's annotated view of a query result.
type RetrievalResult struct {
	Documents       []string         `json:"documents"`
	Metadatas       []ChunkMetadata  `json:"metadatas"`
	Distances       []float64        `json:"distances"`
	FormattedChunks []RetrievedChunk `json:"formatted_chunks"`
	Count           int              `json:"count"`
}

// RelevantChunk is a retrieved chunk kept in workflow state for prompt assembly.
type RelevantChunk struct {
	Content     string `json:"content"`
	ReferenceID string `json:"reference_id"`
	PageRef     string `json:"page_ref"`
	Preview     string `json:"preview"`
}
