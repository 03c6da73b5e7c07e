package ingestion_engine

import (
	"github.com/google/uuid"

	"github.com/thundersearch/thundersearch/internal/models"
)

const summaryLength = 1000

// EnrichChunks turns the segmenter's raw pieces into fully annotated chunks:
// fresh ids, position bookkeeping, literal neighbor text, a head summary,
// extracted keywords, and the flattened document-level metadata.
func EnrichChunks(pieces []string, doc models.RawDocument, meta models.DocumentMetadata) []models.Chunk {
	flat := flattenMetadata(doc, meta)

	chunks := make([]models.Chunk, len(pieces))
	for i, content := range pieces {
		c := models.Chunk{
			ID:            uuid.NewString(),
			Content:       content,
			ChunkIndex:    i,
			TotalChunks:   len(pieces),
			ContentLength: len(content),
			Summary:       headRunes(content, summaryLength),
			Keywords:      ExtractKeywords(content),
			DocMetadata:   flat,
		}
		if i > 0 {
			prev := pieces[i-1]
			c.PreviousChunk = &prev
		}
		if i < len(pieces)-1 {
			next := pieces[i+1]
			c.NextChunk = &next
		}
		chunks[i] = c
	}
	return chunks
}

// flattenMetadata reduces the catalog record plus loader metadata to the flat
// scalar/array shape the vector index accepts. Loader-specific nesting is
// hoisted (page count becomes totalPages); remaining non-primitive fields,
// such as the metrics object, are dropped.
func flattenMetadata(doc models.RawDocument, meta models.DocumentMetadata) map[string]any {
	flat := map[string]any{
		"source":   doc.Source,
		"filename": meta.Filename,
		"title":    meta.Title,
		"category": meta.Category,
		"type":     meta.Type,
		"date":     meta.Date,
	}
	if len(meta.Tags) > 0 {
		flat["tags"] = meta.Tags
	}
	if meta.Author != "" {
		flat["author"] = meta.Author
	}
	if meta.SourceURL != "" {
		flat["source_url"] = meta.SourceURL
	}
	if doc.TotalPages > 0 {
		flat["totalPages"] = doc.TotalPages
	}
	return flat
}

func headRunes(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}
