package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/thundersearch/thundersearch/internal/core/ingestion_engine"
)

type BootstrapHandler struct {
	bootstrapper *ingestion_engine.Bootstrapper
	indexName    string
	log          *zap.SugaredLogger
}

func NewBootstrapHandler(b *ingestion_engine.Bootstrapper, indexName string, log *zap.SugaredLogger) *BootstrapHandler {
	return &BootstrapHandler{bootstrapper: b, indexName: indexName, log: log}
}

// Bootstrap kicks off the ingestion pipeline in the background and returns
// 202 immediately. The run is detached from the request: its outcome is
// observable through logs and the index itself, not through this response.
func (h *BootstrapHandler) Bootstrap(w http.ResponseWriter, r *http.Request) {
	// The run must outlive the request, so it gets its own context.
	_, err := h.bootstrapper.StartDetached(context.Background(), h.indexName)
	message := "Bootstrap process initiated"
	if err != nil {
		if !errors.Is(err, ingestion_engine.ErrAlreadyRunning) {
			h.log.Errorw("bootstrap start failed", "error", err)
			http.Error(w, "failed to start bootstrap", http.StatusInternalServerError)
			return
		}
		message = "Bootstrap process already running"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"message": message,
		"index":   h.indexName,
	})
}
