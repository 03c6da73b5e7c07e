package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/thundersearch/thundersearch/internal/core"
	"github.com/thundersearch/thundersearch/internal/models"
)

const defaultTopK = 10

type SearchHandler struct {
	embedder  core.EmbeddingProvider
	index     core.VectorIndex
	indexName string
	log       *zap.SugaredLogger
}

func NewSearchHandler(embedder core.EmbeddingProvider, index core.VectorIndex, indexName string, log *zap.SugaredLogger) *SearchHandler {
	return &SearchHandler{embedder: embedder, index: index, indexName: indexName, log: log}
}

type searchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

// Search embeds the query and returns the top matching chunks with their
// metadata.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		http.Error(w, "query is required", http.StatusBadRequest)
		return
	}
	if req.TopK <= 0 {
		req.TopK = defaultTopK
	}

	vector, err := h.embedder.EmbedQuery(r.Context(), req.Query)
	if err != nil {
		h.log.Errorw("query embedding failed", "error", err)
		http.Error(w, "search failed", http.StatusInternalServerError)
		return
	}

	matches, err := h.index.Query(r.Context(), h.indexName, vector, req.TopK)
	if err != nil {
		h.log.Errorw("index query failed", "index", h.indexName, "error", err)
		http.Error(w, "search failed", http.StatusInternalServerError)
		return
	}
	if matches == nil {
		matches = []models.SearchResult{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"results": matches})
}
