package ingestion_engine

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/thundersearch/thundersearch/internal/core"
	"github.com/thundersearch/thundersearch/internal/models"
)

var (
	// ErrNoDocuments is returned when the configured source holds no
	// loadable documents; reported to the trigger as a client error.
	ErrNoDocuments = errors.New("no documents found")
	// ErrAlreadyRunning is returned when a bootstrap run is still in flight
	// in this process.
	ErrAlreadyRunning = errors.New("bootstrap already running")
	// ErrTimeout wraps connection-timeout failures so callers can surface a
	// distinct "retry" condition.
	ErrTimeout = errors.New("operation timed out")
)

// Report is the observable outcome of one bootstrap run. Skipped-document
// counts are reported explicitly so completeness is visible to operators and
// tests, not just to the debug log.
type Report struct {
	Skipped          bool `json:"skipped"` // index already populated, nothing done
	DocumentsLoaded  int  `json:"documents_loaded"`
	SkippedUnmatched int  `json:"skipped_unmatched"`
	SkippedInvalid   int  `json:"skipped_invalid"`
	ChunksProcessed  int  `json:"chunks_processed"`
	BatchesFailed    int  `json:"batches_failed"`
	VectorsUpserted  int  `json:"vectors_upserted"`
}

// Task is the handle for a detached bootstrap run. The HTTP trigger discards
// it; tests and in-process callers can wait on it.
type Task struct {
	done   chan struct{}
	report *Report
	err    error
}

// Done is closed when the run reaches a terminal state.
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the run finishes and returns its report and error.
func (t *Task) Wait() (*Report, error) {
	<-t.done
	return t.report, t.err
}

// Bootstrapper drives the ingestion pipeline end to end: ensure the index,
// short-circuit when already populated, load and match documents, segment and
// enrich, then embed and upsert batch by batch.
type Bootstrapper struct {
	index    core.VectorIndex
	embedder core.EmbeddingProvider
	source   core.DocumentSource
	catalog  core.MetadataCatalog
	cfg      *IngestConfig
	log      *zap.SugaredLogger

	running atomic.Bool
}

func NewBootstrapper(
	index core.VectorIndex,
	embedder core.EmbeddingProvider,
	source core.DocumentSource,
	catalog core.MetadataCatalog,
	cfg *IngestConfig,
	log *zap.SugaredLogger,
) *Bootstrapper {
	return &Bootstrapper{
		index:    index,
		embedder: embedder,
		source:   source,
		catalog:  catalog,
		cfg:      cfg,
		log:      log,
	}
}

// StartDetached launches a run in the background and returns immediately.
// A second call while a run is in flight returns ErrAlreadyRunning; this
// guards the HasVectors race within one process. Across processes the
// populated check remains best-effort.
func (b *Bootstrapper) StartDetached(ctx context.Context, indexName string) (*Task, error) {
	if !b.running.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRunning
	}
	t := &Task{done: make(chan struct{})}
	go func() {
		defer b.running.Store(false)
		defer close(t.done)
		t.report, t.err = b.Run(ctx, indexName)
		if t.err != nil {
			b.log.Errorw("background bootstrap failed", "index", indexName, "error", t.err)
		}
	}()
	return t, nil
}

// Run executes a single bootstrap run to completion. Setup failures abort the
// run; per-batch failures during embedding/upserting are logged, counted and
// skipped so one bad batch does not block the rest of the corpus.
func (b *Bootstrapper) Run(ctx context.Context, indexName string) (*Report, error) {
	rep := &Report{}
	b.log.Infow("running bootstrap procedure", "index", indexName)

	if err := b.index.CreateIfAbsent(ctx, indexName); err != nil {
		return nil, classifyErr(fmt.Errorf("ensure index %q: %w", indexName, err))
	}

	populated, err := b.index.HasVectors(ctx, indexName)
	if err != nil {
		return nil, classifyErr(fmt.Errorf("check index population: %w", err))
	}
	if populated {
		b.log.Infow("index already has vectors, returning early", "index", indexName)
		rep.Skipped = true
		return rep, nil
	}

	b.log.Infow("loading documents and metadata")
	docs, err := b.source.Load(ctx)
	if err != nil {
		return nil, classifyErr(fmt.Errorf("load documents: %w", err))
	}
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}
	rep.DocumentsLoaded = len(docs)

	byFilename := make(map[string]models.DocumentMetadata)
	for _, m := range b.catalog.Read(ctx) {
		byFilename[m.Filename] = m
	}

	splitter := NewSplitter(b.cfg.ChunkSize, b.cfg.ChunkOverlap)
	var chunks []models.Chunk
	for _, doc := range docs {
		meta, ok := byFilename[doc.Filename]
		if !ok {
			rep.SkippedUnmatched++
			b.log.Debugw("no catalog entry for document, skipping", "filename", doc.Filename)
			continue
		}
		if !IsValidContent(doc.PageContent, b.cfg.MaxContentLength) {
			rep.SkippedInvalid++
			b.log.Debugw("document content failed validation, skipping", "filename", doc.Filename)
			continue
		}
		pieces := splitter.Split(doc.PageContent)
		chunks = append(chunks, EnrichChunks(pieces, doc, meta)...)
	}
	rep.ChunksProcessed = len(chunks)
	b.log.Infow("processed document chunks",
		"chunks", len(chunks),
		"documents", rep.DocumentsLoaded,
		"skipped_unmatched", rep.SkippedUnmatched,
		"skipped_invalid", rep.SkippedInvalid,
	)

	if err := b.embedAndUpsert(ctx, indexName, chunks, rep); err != nil {
		return nil, classifyErr(err)
	}

	b.log.Infow("bootstrap procedure completed",
		"index", indexName,
		"vectors_upserted", rep.VectorsUpserted,
		"batches_failed", rep.BatchesFailed,
	)
	return rep, nil
}

// embedAndUpsert processes chunks strictly sequentially in small batches: one
// batch fully completes, including its upsert sub-batches, before the next
// begins. The fixed batch sizes and inter-batch delay are the backpressure
// mechanism against provider rate limits.
func (b *Bootstrapper) embedAndUpsert(ctx context.Context, indexName string, chunks []models.Chunk, rep *Report) error {
	batchSize := b.cfg.EmbedBatchSize
	totalBatches := (len(chunks) + batchSize - 1) / batchSize

	for i := 0; i < len(chunks); i += batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := i + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[i:end]
		batchNum := i/batchSize + 1
		b.log.Infow("processing batch", "batch", batchNum, "of", totalBatches, "size", len(batch))

		if err := b.processBatch(ctx, indexName, batch); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			rep.BatchesFailed++
			b.log.Errorw("batch failed, skipping",
				"batch", batchNum,
				"batch_size", len(batch),
				"error", err,
			)
			continue
		}
		rep.VectorsUpserted += len(batch)

		if end < len(chunks) && b.cfg.BatchDelay > 0 {
			select {
			case <-time.After(b.cfg.BatchDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return nil
}

// processBatch embeds one batch and upserts the resulting records in
// sub-batches. Any error here fails the whole batch: the caller drops it and
// moves on.
func (b *Bootstrapper) processBatch(ctx context.Context, indexName string, batch []models.Chunk) error {
	texts := make([]string, len(batch))
	for i := range batch {
		texts[i] = batch[i].Content
	}

	vectors, err := b.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}
	if len(vectors) != len(texts) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(texts), len(vectors))
	}

	records := make([]core.UpsertRecord, len(batch))
	for i := range batch {
		records[i] = core.UpsertRecord{
			ID:       batch[i].ID,
			Values:   vectors[i],
			Metadata: batch[i].IndexMetadata(),
		}
	}

	for j := 0; j < len(records); j += b.cfg.UpsertBatchSize {
		end := j + b.cfg.UpsertBatchSize
		if end > len(records) {
			end = len(records)
		}
		sub := records[j:end]
		b.log.Debugw("upserting vectors", "count", len(sub), "index", indexName)
		if err := b.index.Upsert(ctx, indexName, sub); err != nil {
			return fmt.Errorf("upsert: %w", err)
		}
	}
	return nil
}

// classifyErr tags connection timeouts so the trigger can report a
// retryable condition distinctly from a generic failure.
func classifyErr(err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, os.ErrDeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}
