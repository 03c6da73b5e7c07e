package catalog

import (
	"context"
	"encoding/json"
	"os"

	"go.uber.org/zap"

	"github.com/thundersearch/thundersearch/internal/core"
	"github.com/thundersearch/thundersearch/internal/models"
)

// Store reads the persisted document metadata catalog: a JSON file with a
// top-level "documents" array, keyed for lookup by filename.
type Store struct {
	path string
	log  *zap.SugaredLogger
}

var _ core.MetadataCatalog = (*Store)(nil)

func NewStore(path string, log *zap.SugaredLogger) *Store {
	return &Store{path: path, log: log}
}

// Read returns all catalog entries. A missing or malformed file is not fatal:
// ingestion proceeds with an empty catalog and every document is reported as
// unmatched instead.
func (s *Store) Read(ctx context.Context) []models.DocumentMetadata {
	data, err := os.ReadFile(s.path)
	if err != nil {
		s.log.Warnw("could not read metadata catalog", "path", s.path, "error", err)
		return nil
	}

	var parsed struct {
		Documents []models.DocumentMetadata `json:"documents"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		s.log.Warnw("could not parse metadata catalog", "path", s.path, "error", err)
		return nil
	}
	return parsed.Documents
}
