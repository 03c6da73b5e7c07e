package core

import (
	"context"
	"io"

	"github.com/thundersearch/thundersearch/internal/models"
)

// UpsertRecord is a (id, vector, metadata) triple ready for persistence.
// Metadata must contain only strings, numbers, or arrays thereof.
type UpsertRecord struct {
	ID       string
	Values   []float32
	Metadata map[string]any
}

// EmbeddingProvider abstracts the embedding model (Gemini/Voyage/etc).
// Both methods preserve input order: one vector per input string.
type EmbeddingProvider interface {
	// EmbedDocuments embeds a batch of chunk contents for indexing.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	// EmbedQuery embeds a single search query.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex abstracts the vector database (Pinecone/pgvector) so the
// pipeline never depends on a specific provider.
type VectorIndex interface {
	// CreateIfAbsent ensures the named index exists, creating it when missing.
	CreateIfAbsent(ctx context.Context, name string) error
	// HasVectors reports whether the named index already holds any vectors.
	HasVectors(ctx context.Context, name string) (bool, error)
	// Upsert writes the records into the named index.
	Upsert(ctx context.Context, name string, records []UpsertRecord) error
	// Query returns the topK nearest matches for the given vector.
	Query(ctx context.Context, name string, vector []float32, topK int) ([]models.SearchResult, error)
}

// DocumentSource enumerates and extracts the raw source documents for a run.
type DocumentSource interface {
	Load(ctx context.Context) ([]models.RawDocument, error)
}

// MetadataCatalog reads the persisted per-document metadata records.
// Implementations must tolerate read/parse failure by returning an empty
// sequence rather than an error.
type MetadataCatalog interface {
	Read(ctx context.Context) []models.DocumentMetadata
}

// ObjectClient defines interactions with S3 or any object storage. Only the
// read side is needed here: the ingestion pipeline lists and fetches source
// documents, it never writes.
type ObjectClient interface {
	ListFiles(ctx context.Context, bucket, prefix string) ([]string, error)
	GetFile(ctx context.Context, bucket, key string) ([]byte, error)
	GetObjectReader(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}
