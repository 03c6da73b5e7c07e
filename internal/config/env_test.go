package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("VECTOR_BACKEND", "pinecone")
	t.Setenv("PINECONE_API_KEY", "test-key")
	t.Setenv("CHUNK_SIZE", "1000")
	t.Setenv("CHUNK_OVERLAP", "200")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "thundersearch", cfg.IndexName)
	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.Equal(t, 200, cfg.ChunkOverlap)
	assert.Equal(t, 8192, cfg.MaxContentLength)
	assert.Equal(t, 5, cfg.EmbedBatchSize)
	assert.Equal(t, 2, cfg.UpsertBatchSize)
	assert.Equal(t, 1000, cfg.BatchDelayMs)
	assert.Equal(t, "gemini", cfg.EmbedProvider)
}

func TestLoadConfig_RejectsOverlapNotSmallerThanChunkSize(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CHUNK_OVERLAP", "1000")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CHUNK_OVERLAP")

	t.Setenv("CHUNK_OVERLAP", "1500")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_RejectsNonPositiveChunkSize(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CHUNK_SIZE", "0")
	t.Setenv("CHUNK_OVERLAP", "0")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CHUNK_SIZE")
}

func TestLoadConfig_RejectsNonPositiveBatchSizes(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("EMBED_BATCH_SIZE", "0")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_BackendCredentials(t *testing.T) {
	t.Run("pinecone requires api key", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("PINECONE_API_KEY", "")

		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("pgvector requires database url", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("VECTOR_BACKEND", "pgvector")
		t.Setenv("DATABASE_URL", "")

		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("pgvector accepts database url", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("VECTOR_BACKEND", "pgvector")
		t.Setenv("DATABASE_URL", "postgres://localhost:5432/search")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, "pgvector", cfg.VectorBackend)
	})

	t.Run("unknown backend rejected", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("VECTOR_BACKEND", "chroma")

		_, err := LoadConfig()
		assert.Error(t, err)
	})
}

func TestLoadConfig_NonIntegerFallsBackToDefault(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("EMBED_BATCH_SIZE", "lots")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.EmbedBatchSize)
}
