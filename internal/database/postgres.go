package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sync"

	"meddoc-rag/internal/embedding"
	"meddoc-rag/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	pgxvector "github.com/pgvector/pgvector-go/pgx"
)

// DefaultCollection is the collection used when none is configured.
const DefaultCollection = "medical_documents"

// undefinedTable is the SQLSTATE reported when the collection table does not
// exist yet; queries treat it as an empty collection.
const undefinedTable = "42P01"

var collectionNameRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PostgresIndex is a VectorIndex backed by Postgres with the pgvector
// extension. Each collection is one table, created lazily on first store.
// Concurrency control is left to Postgres; the index adds no locking beyond
// guarding its own lazy initialization.
type PostgresIndex struct {
	pool       *pgxpool.Pool
	embedder   embedding.Embedder
	collection string

	mu    sync.Mutex
	ready bool
}

// NewPostgresIndex connects to Postgres and prepares a vector index over the
// named collection.
func NewPostgresIndex(ctx context.Context, connStr, collection string, embedder embedding.Embedder) (*PostgresIndex, error) {
	if collection == "" {
		collection = DefaultCollection
	}
	if !collectionNameRe.MatchString(collection) {
		return nil, fmt.Errorf("invalid collection name: %q", collection)
	}

	cfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvector.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresIndex{
		pool:       pool,
		embedder:   embedder,
		collection: collection,
	}, nil
}

// ensureCollection creates the collection table on first use, once the
// embedding dimension is known.
func (idx *PostgresIndex) ensureCollection(ctx context.Context, dimension int) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.ready {
		return nil
	}

	if _, err := idx.pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("failed to enable vector extension: %w", err)
	}

	_, err := idx.pool.Exec(ctx, fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            id TEXT PRIMARY KEY,
            document_id TEXT NOT NULL,
            chunk_index INTEGER NOT NULL,
            content TEXT NOT NULL,
            metadata JSONB NOT NULL,
            embedding vector(%d) NOT NULL
        )
    `, idx.collection, dimension))
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", idx.collection, err)
	}

	idx.ready = true
	return nil
}

// Store embeds all chunks in one batch and upserts them into the collection.
func (idx *PostgresIndex) Store(ctx context.Context, documentID string, chunks []string, metadata []models.ChunkMetadata) (string, error) {
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
	if err := idx.ensureCollection(ctx, len(vectors[0])); err != nil {
		return "", err
	}

	upsert := fmt.Sprintf(`
        INSERT INTO %s (id, document_id, chunk_index, content, metadata, embedding)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (id) DO UPDATE SET
            document_id = EXCLUDED.document_id,
            chunk_index = EXCLUDED.chunk_index,
            content     = EXCLUDED.content,
            metadata    = EXCLUDED.metadata,
            embedding   = EXCLUDED.embedding
    `, idx.collection)

	for i, chunk := range chunks {
		id := ChunkID(documentID, i)

		enriched := metadata[i]
		enriched.DocumentID = documentID
		enriched.ChunkID = id
		payload, err := json.Marshal(enriched)
		if err != nil {
			return "", fmt.Errorf("failed to encode metadata for %s: %w", id, err)
		}

		_, err = idx.pool.Exec(ctx, upsert,
			id, documentID, enriched.ChunkIndex, chunk, payload, pgvector.NewVector(vectors[i]))
		if err != nil {
			return "", fmt.Errorf("failed to store chunk %s: %w", id, err)
		}
	}

	return fmt.Sprintf("Successfully stored %d chunks for document %s", len(chunks), documentID), nil
}

// Query returns the k nearest chunks by cosine distance across the whole
// collection. A collection that does not exist yet yields an empty result.
func (idx *PostgresIndex) Query(ctx context.Context, queryText string, k int) (*models.QueryResult, error) {
	if k <= 0 {
		k = DefaultTopK
	}

	vector, err := idx.embedder.EmbedQuery(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	rows, err := idx.pool.Query(ctx, fmt.Sprintf(`
        SELECT content, metadata, embedding <=> $1 AS distance
        FROM %s
        ORDER BY embedding <=> $1
        LIMIT $2
    `, idx.collection), pgvector.NewVector(vector), k)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == undefinedTable {
			return &models.QueryResult{}, nil
		}
		return nil, fmt.Errorf("failed to query collection %s: %w", idx.collection, err)
	}
	defer rows.Close()

	result := &models.QueryResult{}
	for rows.Next() {
		var (
			content  string
			payload  []byte
			distance float64
		)
		if err := rows.Scan(&content, &payload, &distance); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		var meta models.ChunkMetadata
		if err := json.Unmarshal(payload, &meta); err != nil {
			return nil, fmt.Errorf("malformed chunk metadata in collection %s: %w", idx.collection, err)
		}

		result.Documents = append(result.Documents, content)
		result.Metadatas = append(result.Metadatas, meta)
		result.Distances = append(result.Distances, distance)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return result, nil
}

// Close closes the underlying connection pool.
func (idx *PostgresIndex) Close() {
	idx.pool.Close()
}
