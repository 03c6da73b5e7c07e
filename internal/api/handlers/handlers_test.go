package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/thundersearch/thundersearch/internal/core"
	"github.com/thundersearch/thundersearch/internal/core/ingestion_engine"
	"github.com/thundersearch/thundersearch/internal/models"
)

type fakeEmbedder struct {
	queryErr error
	block    chan struct{}
}

func (f *fakeEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if f.block != nil {
		<-f.block
	}
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{0.1, 0.2}
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return []float32{0.1, 0.2}, nil
}

type fakeIndex struct {
	hasVectors bool
	queryErr   error
	results    []models.SearchResult
}

func (f *fakeIndex) CreateIfAbsent(ctx context.Context, name string) error { return nil }
func (f *fakeIndex) HasVectors(ctx context.Context, name string) (bool, error) {
	return f.hasVectors, nil
}
func (f *fakeIndex) Upsert(ctx context.Context, name string, records []core.UpsertRecord) error {
	return nil
}
func (f *fakeIndex) Query(ctx context.Context, name string, vector []float32, topK int) ([]models.SearchResult, error) {
	return f.results, f.queryErr
}

type fakeSource struct{ docs []models.RawDocument }

func (f *fakeSource) Load(ctx context.Context) ([]models.RawDocument, error) { return f.docs, nil }

type fakeCatalog struct{ entries []models.DocumentMetadata }

func (f *fakeCatalog) Read(ctx context.Context) []models.DocumentMetadata { return f.entries }

func newBootstrapper(idx core.VectorIndex, emb core.EmbeddingProvider) *ingestion_engine.Bootstrapper {
	cfg := &ingestion_engine.IngestConfig{
		ChunkSize:        1000,
		ChunkOverlap:     200,
		MaxContentLength: 8192,
		EmbedBatchSize:   5,
		UpsertBatchSize:  2,
	}
	src := &fakeSource{docs: []models.RawDocument{
		{PageContent: "some document text", Filename: "a.pdf", Source: "docs/a.pdf"},
	}}
	cat := &fakeCatalog{entries: []models.DocumentMetadata{
		{Filename: "a.pdf", Title: "A", Category: "AI", Type: "article", Date: "2025-01-01"},
	}}
	return ingestion_engine.NewBootstrapper(idx, emb, src, cat, cfg, zap.NewNop().Sugar())
}

func TestBootstrapHandler_Accepted(t *testing.T) {
	b := newBootstrapper(&fakeIndex{}, &fakeEmbedder{})
	h := NewBootstrapHandler(b, "docs-index", zap.NewNop().Sugar())

	req := httptest.NewRequest(http.MethodPost, "/api/bootstrap", nil)
	rec := httptest.NewRecorder()
	h.Bootstrap(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Bootstrap process initiated", body["message"])
	assert.Equal(t, "docs-index", body["index"])
}

func TestBootstrapHandler_AlreadyRunningStillAccepted(t *testing.T) {
	emb := &fakeEmbedder{block: make(chan struct{})}
	defer close(emb.block)

	b := newBootstrapper(&fakeIndex{}, emb)
	h := NewBootstrapHandler(b, "docs-index", zap.NewNop().Sugar())

	first := httptest.NewRecorder()
	h.Bootstrap(first, httptest.NewRequest(http.MethodPost, "/api/bootstrap", nil))
	require.Equal(t, http.StatusAccepted, first.Code)

	second := httptest.NewRecorder()
	h.Bootstrap(second, httptest.NewRequest(http.MethodPost, "/api/bootstrap", nil))
	assert.Equal(t, http.StatusAccepted, second.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &body))
	assert.Equal(t, "Bootstrap process already running", body["message"])
}

func TestSearchHandler_Success(t *testing.T) {
	idx := &fakeIndex{results: []models.SearchResult{
		{ID: "c1", Score: 0.92, Metadata: map[string]any{"title": "A"}},
	}}
	h := NewSearchHandler(&fakeEmbedder{}, idx, "docs-index", zap.NewNop().Sugar())

	req := httptest.NewRequest(http.MethodPost, "/api/search",
		strings.NewReader(`{"query":"what is semantic search"}`))
	rec := httptest.NewRecorder()
	h.Search(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Results []models.SearchResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Results, 1)
	assert.Equal(t, "c1", body.Results[0].ID)
}

func TestSearchHandler_EmptyResultsIsArray(t *testing.T) {
	h := NewSearchHandler(&fakeEmbedder{}, &fakeIndex{}, "docs-index", zap.NewNop().Sugar())

	req := httptest.NewRequest(http.MethodPost, "/api/search",
		strings.NewReader(`{"query":"nothing matches"}`))
	rec := httptest.NewRecorder()
	h.Search(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"results":[]`)
}

func TestSearchHandler_BadRequests(t *testing.T) {
	h := NewSearchHandler(&fakeEmbedder{}, &fakeIndex{}, "docs-index", zap.NewNop().Sugar())

	t.Run("invalid json", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Search(rec, httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader("{")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty query", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Search(rec, httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(`{"query":"  "}`)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSearchHandler_EmbedderFailure(t *testing.T) {
	h := NewSearchHandler(&fakeEmbedder{queryErr: errors.New("provider down")}, &fakeIndex{}, "docs-index", zap.NewNop().Sugar())

	rec := httptest.NewRecorder()
	h.Search(rec, httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(`{"query":"q"}`)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
