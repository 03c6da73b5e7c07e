package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStore_ReadsCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	data := `{
		"documents": [
			{
				"filename": "ai_trends.pdf",
				"title": "AI Trends 2025",
				"category": "AI",
				"type": "research",
				"tags": ["ai", "trends"],
				"date": "2025-03-01",
				"metrics": {"arr": 1000000}
			},
			{
				"filename": "saas_report.pdf",
				"title": "SaaS Market Report",
				"category": "SaaS",
				"type": "whitepaper",
				"date": "2025-01-15"
			}
		]
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	entries := NewStore(path, zap.NewNop().Sugar()).Read(context.Background())
	require.Len(t, entries, 2)

	assert.Equal(t, "ai_trends.pdf", entries[0].Filename)
	assert.Equal(t, "AI Trends 2025", entries[0].Title)
	assert.Equal(t, []string{"ai", "trends"}, entries[0].Tags)
	require.NotNil(t, entries[0].Metrics)
	assert.Equal(t, float64(1000000), entries[0].Metrics.ARR)

	assert.Equal(t, "saas_report.pdf", entries[1].Filename)
	assert.Nil(t, entries[1].Metrics)
}

func TestStore_MissingFileIsNotFatal(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "nope.json"), zap.NewNop().Sugar())
	assert.Empty(t, s.Read(context.Background()))
}

func TestStore_MalformedFileIsNotFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := NewStore(path, zap.NewNop().Sugar())
	assert.Empty(t, s.Read(context.Background()))
}
