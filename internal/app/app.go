package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/thundersearch/thundersearch/internal/config"
	"github.com/thundersearch/thundersearch/internal/core"
	"github.com/thundersearch/thundersearch/internal/core/catalog"
	"github.com/thundersearch/thundersearch/internal/core/ingestion_engine"
	"github.com/thundersearch/thundersearch/internal/core/llm"
	objectclient "github.com/thundersearch/thundersearch/internal/core/object-client"
	"github.com/thundersearch/thundersearch/internal/core/vectorindex/pgvector"
	"github.com/thundersearch/thundersearch/internal/core/vectorindex/pinecone"
)

type App struct {
	Bootstrapper *ingestion_engine.Bootstrapper
	Server       *Server

	closers []io.Closer
}

func NewApp(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (*App, error) {
	a := &App{}

	embedder, err := a.newEmbedder(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the embedder: %w", err)
	}
	log.Infow("embedding provider ready", "provider", cfg.EmbedProvider)

	index, err := a.newVectorIndex(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the vector index: %w", err)
	}
	log.Infow("vector index backend ready", "backend", cfg.VectorBackend)

	source, err := a.newDocumentSource(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the document source: %w", err)
	}

	cat := catalog.NewStore(cfg.MetadataPath, log)

	ingCfg := &ingestion_engine.IngestConfig{
		ChunkSize:        cfg.ChunkSize,
		ChunkOverlap:     cfg.ChunkOverlap,
		MaxContentLength: cfg.MaxContentLength,
		EmbedBatchSize:   cfg.EmbedBatchSize,
		UpsertBatchSize:  cfg.UpsertBatchSize,
		BatchDelay:       time.Duration(cfg.BatchDelayMs) * time.Millisecond,
	}

	a.Bootstrapper = ingestion_engine.NewBootstrapper(index, embedder, source, cat, ingCfg, log)
	a.Server = NewServer(cfg, a.Bootstrapper, embedder, index, log)

	return a, nil
}

func (a *App) newEmbedder(ctx context.Context, cfg *config.Config) (core.EmbeddingProvider, error) {
	switch cfg.EmbedProvider {
	case "gemini":
		emb, err := llm.NewGeminiEmbedder(ctx, cfg.AIAPIKey, cfg.EmbedModel)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, emb)
		return emb, nil
	case "voyage":
		return llm.NewVoyageEmbedder(cfg.VoyageAPIKey, cfg.EmbedModel)
	default:
		return nil, fmt.Errorf("unknown EMBED_PROVIDER %q", cfg.EmbedProvider)
	}
}

func (a *App) newVectorIndex(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (core.VectorIndex, error) {
	switch cfg.VectorBackend {
	case "pinecone":
		pc, err := pinecone.New(log, pinecone.Config{APIKey: cfg.PineconeAPIKey})
		if err != nil {
			return nil, err
		}
		return pinecone.NewIndex(log, pc, pinecone.IndexOptions{Dimension: cfg.EmbedDim})
	case "pgvector":
		idx, err := pgvector.NewIndex(ctx, cfg.DatabaseURL, cfg.EmbedDim, log)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, idx)
		return idx, nil
	default:
		return nil, fmt.Errorf("unknown VECTOR_BACKEND %q", cfg.VectorBackend)
	}
}

func (a *App) newDocumentSource(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (core.DocumentSource, error) {
	if cfg.DocsBucket != "" {
		obj, err := objectclient.NewS3Client(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return ingestion_engine.NewS3Loader(obj, cfg.DocsBucket, cfg.DocsPrefix, log), nil
	}
	return ingestion_engine.NewDirectoryLoader(cfg.DocsDir, log), nil
}

func (a *App) Close() {
	for _, c := range a.closers {
		_ = c.Close()
	}
}
