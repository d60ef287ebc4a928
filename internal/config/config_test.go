package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 800, cfg.Chunker.ChunkSize)
	assert.Equal(t, 100, cfg.Chunker.ChunkOverlap)
	assert.Equal(t, 2000, cfg.Chunker.PageSize)
	assert.Equal(t, "memory", cfg.Index.Type)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.Equal(t, "default_medical_prompt.txt", cfg.Prompt.TemplatePath)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
ollama:
  model: llama3
  embedding_model: all-minilm
index:
  type: postgres
  postgres:
    conn_string: postgres://u:p@db:5432/docs
chunker:
  chunk_size: 400
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "llama3", cfg.Ollama.Model)
	assert.Equal(t, "all-minilm", cfg.Ollama.EmbeddingModel)
	assert.Equal(t, "postgres", cfg.Index.Type)
	assert.Equal(t, "postgres://u:p@db:5432/docs", cfg.Index.Postgres.ConnString)
	// Unset values still get defaults.
	assert.Equal(t, "medical_documents", cfg.Index.Postgres.Collection)
	assert.Equal(t, 400, cfg.Chunker.ChunkSize)
	assert.Equal(t, 100, cfg.Chunker.ChunkOverlap)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ollama: [broken"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
