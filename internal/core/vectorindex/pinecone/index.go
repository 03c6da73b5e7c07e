package pinecone

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/thundersearch/thundersearch/internal/core"
	"github.com/thundersearch/thundersearch/internal/models"
)

// Index adapts the Pinecone client to the pipeline's VectorIndex interface.
// Index hosts are resolved once via describe_index and cached per name.
type Index struct {
	log       *zap.SugaredLogger
	pc        Client
	dimension int
	cloud     string
	region    string

	mu    sync.Mutex
	hosts map[string]string
}

var _ core.VectorIndex = (*Index)(nil)

type IndexOptions struct {
	Dimension int
	Cloud     string
	Region    string
}

func NewIndex(log *zap.SugaredLogger, pc Client, opts IndexOptions) (*Index, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if pc == nil {
		return nil, fmt.Errorf("pinecone client required")
	}
	if opts.Dimension <= 0 {
		return nil, fmt.Errorf("embedding dimension required")
	}
	if opts.Cloud == "" {
		opts.Cloud = "aws"
	}
	if opts.Region == "" {
		opts.Region = "us-east-1"
	}
	return &Index{
		log:       log.With("service", "PineconeIndex"),
		pc:        pc,
		dimension: opts.Dimension,
		cloud:     opts.Cloud,
		region:    opts.Region,
		hosts:     make(map[string]string),
	}, nil
}

// CreateIfAbsent ensures the named serverless index exists and is ready.
func (x *Index) CreateIfAbsent(ctx context.Context, name string) error {
	desc, err := x.pc.DescribeIndex(ctx, name)
	if err == nil {
		x.cacheHost(name, desc.Host)
		return nil
	}
	if !errors.Is(err, ErrIndexNotFound) {
		return err
	}

	x.log.Infow("creating vector index", "index", name, "dimension", x.dimension)
	if _, err := x.pc.CreateIndex(ctx, CreateIndexRequest{
		Name:      name,
		Dimension: x.dimension,
		Metric:    "cosine",
		Spec: IndexSpec{Serverless: ServerlessSpec{
			Cloud:  x.cloud,
			Region: x.region,
		}},
	}); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return x.waitReady(ctx, name)
}

// waitReady polls describe_index until the freshly created index reports
// ready. Serverless indexes usually come up within seconds.
func (x *Index) waitReady(ctx context.Context, name string) error {
	deadline := time.Now().Add(2 * time.Minute)
	for {
		desc, err := x.pc.DescribeIndex(ctx, name)
		if err == nil && desc.Status.Ready {
			x.cacheHost(name, desc.Host)
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("index %q not ready before deadline", name)
		}
		select {
		case <-time.After(5 * time.Second):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (x *Index) HasVectors(ctx context.Context, name string) (bool, error) {
	host, err := x.host(ctx, name)
	if err != nil {
		return false, err
	}
	stats, err := x.pc.DescribeIndexStats(ctx, host)
	if err != nil {
		return false, err
	}
	return stats.TotalVectorCount > 0, nil
}

func (x *Index) Upsert(ctx context.Context, name string, records []core.UpsertRecord) error {
	if len(records) == 0 {
		return nil
	}
	host, err := x.host(ctx, name)
	if err != nil {
		return err
	}
	vectors := make([]Vector, len(records))
	for i, r := range records {
		vectors[i] = Vector{ID: r.ID, Values: r.Values, Metadata: r.Metadata}
	}
	_, err = x.pc.UpsertVectors(ctx, host, UpsertRequest{Vectors: vectors})
	return err
}

func (x *Index) Query(ctx context.Context, name string, vector []float32, topK int) ([]models.SearchResult, error) {
	host, err := x.host(ctx, name)
	if err != nil {
		return nil, err
	}
	resp, err := x.pc.Query(ctx, host, QueryRequest{
		Vector:          vector,
		TopK:            topK,
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, err
	}
	out := make([]models.SearchResult, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		if strings.TrimSpace(m.ID) == "" {
			continue
		}
		out = append(out, models.SearchResult{ID: m.ID, Score: m.Score, Metadata: m.Metadata})
	}
	return out, nil
}

func (x *Index) host(ctx context.Context, name string) (string, error) {
	x.mu.Lock()
	if h, ok := x.hosts[name]; ok {
		x.mu.Unlock()
		return h, nil
	}
	x.mu.Unlock()

	desc, err := x.pc.DescribeIndex(ctx, name)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(desc.Host) == "" {
		return "", fmt.Errorf("describe_index returned empty host for %q", name)
	}
	x.cacheHost(name, desc.Host)
	return desc.Host, nil
}

func (x *Index) cacheHost(name, host string) {
	if strings.TrimSpace(host) == "" {
		return
	}
	x.mu.Lock()
	x.hosts[name] = host
	x.mu.Unlock()
}
