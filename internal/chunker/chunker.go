// Package chunker splits document text into overlapping chunks for indexing.
package chunker

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"

	"meddoc-rag/internal/models"
)

const (
	// DefaultChunkSize is the target character size for a chunk.
	DefaultChunkSize = 800
	// DefaultChunkOverlap is the number of trailing characters of the
	// previous chunk prepended to each subsequent chunk.
	DefaultChunkOverlap = 100
	// DefaultPageSize is the character count used to estimate page numbers.
	DefaultPageSize = 2000
	// previewWords is the number of leading words kept in a chunk preview.
	previewWords = 8
)

// separators are tried in priority order when splitting text.
var separators = []string{"\n\n", "\n", ". ", " "}

// Chunker splits raw text into ordered, overlapping chunks with metadata.
type Chunker struct {
	chunkSize int
	overlap   int
	pageSize  int
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithChunkSize sets the target chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between consecutive chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// WithPageSize sets the character count per estimated page.
func WithPageSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.pageSize = size
		}
	}
}

// New creates a Chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
		pageSize:  DefaultPageSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	// Overlap must leave room for new content in each chunk.
	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}
	return c
}

// Chunk splits text into ordered chunks and derives per-chunk metadata.
// The first chunk starts the document; every later chunk is prefixed with the
// trailing overlap of its predecessor, so concatenating the chunks with those
// prefixes removed reconstructs the original text.
func (c *Chunker) Chunk(text, filename string) (*models.ChunkingResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("chunking failed: document text is empty")
	}

	pieces := c.split(text, separators)
	chunks := c.merge(pieces)
	chunks = c.applyOverlap(chunks)

	hash := md5.Sum([]byte(text))
	docHash := hex.EncodeToString(hash[:])[:8]

	metadata := make([]models.ChunkMetadata, len(chunks))
	charPosition := 0
	for i, chunk := range chunks {
		metadata[i] = models.ChunkMetadata{
			ChunkIndex:    i,
			Filename:      filename,
			ChunkSize:     len(chunk),
			Preview:       preview(chunk),
			EstimatedPage: charPosition/c.pageSize + 1,
			ReferenceID:   fmt.Sprintf("Section-%d", i+1),
			DocumentHash:  docHash,
		}
		charPosition += len(chunk)
	}

	return &models.ChunkingResult{
		Chunks:      chunks,
		Metadata:    metadata,
		TotalChunks: len(chunks),
	}, nil
}

// split recursively divides text into pieces no larger than the chunk size,
// trying each separator in priority order and hard-slicing as a last resort.
// Separators stay attached to the piece they terminate so that the pieces
// concatenate back to the input.
func (c *Chunker) split(text string, seps []string) []string {
	if len(text) <= c.chunkSize {
		if text == "" {
			return nil
		}
		return []string{text}
	}
	if len(seps) == 0 {
		return c.hardSlice(text)
	}

	sep := seps[0]
	parts := strings.Split(text, sep)
	if len(parts) == 1 {
		return c.split(text, seps[1:])
	}

	var pieces []string
	for i, part := range parts {
		if i < len(parts)-1 {
			part += sep
		}
		if part == "" {
			continue
		}
		if len(part) > c.chunkSize {
			pieces = append(pieces, c.split(part, seps[1:])...)
		} else {
			pieces = append(pieces, part)
		}
	}
	return pieces
}

func (c *Chunker) hardSlice(text string) []string {
	var out []string
	for len(text) > c.chunkSize {
		out = append(out, text[:c.chunkSize])
		text = text[c.chunkSize:]
	}
	if text != "" {
		out = append(out, text)
	}
	return out
}

// merge joins adjacent pieces so each chunk approaches the target size
// without exceeding it.
func (c *Chunker) merge(pieces []string) []string {
	var chunks []string
	var current strings.Builder
	for _, piece := range pieces {
		if current.Len() > 0 && current.Len()+len(piece) > c.chunkSize {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		current.WriteString(piece)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// applyOverlap prefixes each chunk after the first with the trailing overlap
// characters of its predecessor.
func (c *Chunker) applyOverlap(chunks []string) []string {
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		pad := prev
		if len(prev) > c.overlap {
			pad = prev[len(prev)-c.overlap:]
		}
		chunks[i] = pad + chunks[i]
	}
	return chunks
}

// preview returns the first few words of a chunk, with an ellipsis when the
// chunk continues past them.
func preview(chunk string) string {
	words := strings.Fields(chunk)
	if len(words) <= previewWords {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:previewWords], " ") + "..."
}
