package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Document sources
	DocsDir      string
	DocsBucket   string // optional; when set, documents are loaded from S3
	DocsPrefix   string
	MetadataPath string

	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string

	// Embeddings
	EmbedProvider string // "gemini" or "voyage"
	AIAPIKey      string
	VoyageAPIKey  string
	EmbedModel    string
	EmbedDim      int

	// Vector index
	VectorBackend  string // "pinecone" or "pgvector"
	IndexName      string
	PineconeAPIKey string
	DatabaseURL    string

	// Chunking / batching
	ChunkSize        int
	ChunkOverlap     int
	MaxContentLength int
	EmbedBatchSize   int
	UpsertBatchSize  int
	BatchDelayMs     int
}

// LoadConfig loads the environment variables and returns the config.
// Invalid chunking parameters are a hard error: an overlap that is not
// smaller than the chunk size degenerates into near-duplicate chunks.
func LoadConfig() (*Config, error) {

	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		DocsDir:      getEnv("DOCS_DIR", "docs"),
		DocsBucket:   getEnv("DOCS_BUCKET", ""),
		DocsPrefix:   getEnv("DOCS_PREFIX", ""),
		MetadataPath: getEnv("METADATA_PATH", "docs/db.json"),

		AwsAccessKey: getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey: getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:    getEnv("AWS_REGION", "us-east-2"),

		EmbedProvider: getEnv("EMBED_PROVIDER", "gemini"),
		AIAPIKey:      getEnv("GEMINI_API_KEY", ""),
		VoyageAPIKey:  getEnv("VOYAGE_API_KEY", ""),
		EmbedModel:    getEnv("EMBED_MODEL", ""),
		EmbedDim:      getEnvInt("EMBED_DIM", 1024),

		VectorBackend:  getEnv("VECTOR_BACKEND", "pinecone"),
		IndexName:      getEnv("VECTOR_INDEX", "thundersearch"),
		PineconeAPIKey: getEnv("PINECONE_API_KEY", ""),
		DatabaseURL:    getEnv("DATABASE_URL", ""),

		ChunkSize:        getEnvInt("CHUNK_SIZE", 1000),
		ChunkOverlap:     getEnvInt("CHUNK_OVERLAP", 200),
		MaxContentLength: getEnvInt("MAX_CONTENT_LENGTH", 8192),
		EmbedBatchSize:   getEnvInt("EMBED_BATCH_SIZE", 5),
		UpsertBatchSize:  getEnvInt("UPSERT_BATCH_SIZE", 2),
		BatchDelayMs:     getEnvInt("BATCH_DELAY_MS", 1000),
	}

	if cfg.ChunkSize <= 0 {
		return nil, fmt.Errorf("CHUNK_SIZE must be positive, got %d", cfg.ChunkSize)
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("CHUNK_OVERLAP (%d) must be non-negative and smaller than CHUNK_SIZE (%d)",
			cfg.ChunkOverlap, cfg.ChunkSize)
	}
	if cfg.EmbedBatchSize <= 0 || cfg.UpsertBatchSize <= 0 {
		return nil, fmt.Errorf("batch sizes must be positive (embed=%d upsert=%d)",
			cfg.EmbedBatchSize, cfg.UpsertBatchSize)
	}

	switch cfg.VectorBackend {
	case "pinecone":
		if cfg.PineconeAPIKey == "" {
			return nil, fmt.Errorf("PINECONE_API_KEY not set")
		}
	case "pgvector":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL not set")
		}
	default:
		return nil, fmt.Errorf("unknown VECTOR_BACKEND %q", cfg.VectorBackend)
	}

	return cfg, nil
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}
