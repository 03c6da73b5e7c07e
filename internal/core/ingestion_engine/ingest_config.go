package ingestion_engine

import "time"

// IngestConfig tunes the bootstrap pipeline.
//
// ChunkSize:        target characters per chunk.
// ChunkOverlap:     characters carried over from the end of one chunk into the
//                   next; must be smaller than ChunkSize (validated at config load).
// MaxContentLength: upper bound on document text accepted into the pipeline,
//                   chosen to stay under the embedding provider's input ceiling.
// EmbedBatchSize:   chunks embedded per provider call.
// UpsertBatchSize:  records per index upsert call; smaller than the embed
//                   batch because the index payload limit is the binding constraint.
// BatchDelay:       pause after each successful embed batch to smooth request
//                   rate against provider throttling.
type IngestConfig struct {
	ChunkSize        int
	ChunkOverlap     int
	MaxContentLength int
	EmbedBatchSize   int
	UpsertBatchSize  int
	BatchDelay       time.Duration
}
