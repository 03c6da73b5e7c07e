package models

// RawDocument is one loaded source file: its full extracted text plus the
// loader-provided metadata. It only lives for the duration of a single
// ingestion run.
type RawDocument struct {
	PageContent string `json:"page_content"`
	Source      string `json:"source"`      // file path or object key
	Filename    string `json:"filename"`    // basename of Source, used for catalog matching
	TotalPages  int    `json:"total_pages"` // page count reported by the PDF extractor (0 if unknown)
}

// DocumentMetrics holds optional financial figures attached to a catalog entry.
type DocumentMetrics struct {
	MRR        float64 `json:"mrr,omitempty"`
	ARR        float64 `json:"arr,omitempty"`
	Valuation  float64 `json:"valuation,omitempty"`
	GrowthRate float64 `json:"growth_rate,omitempty"`
}

// DocumentMetadata is one entry from the persisted metadata catalog
// (docs/db.json), keyed by filename. Read-only during ingestion.
//
// Category is one of: AI, ML, Startup, Legal, Technology, AGI, SaaS.
// Type is one of: article, research, case_study, whitepaper, documentation.
type DocumentMetadata struct {
	Filename  string           `json:"filename"`
	Title     string           `json:"title"`
	Category  string           `json:"category"`
	Type      string           `json:"type"`
	Tags      []string         `json:"tags"`
	Date      string           `json:"date"`
	Author    string           `json:"author,omitempty"`
	SourceURL string           `json:"source_url,omitempty"`
	Metrics   *DocumentMetrics `json:"metrics,omitempty"`
}

// Chunk is a contiguous slice of a document's text after segmentation and
// enrichment, the unit of embedding and indexing.
//
// PreviousChunk/NextChunk hold the literal text of the adjacent chunks,
// captured at enrichment time; they are nil at the first/last position and do
// not track later sibling modifications.
type Chunk struct {
	ID            string
	Content       string
	ChunkIndex    int
	TotalChunks   int
	PreviousChunk *string
	NextChunk     *string
	ContentLength int
	Summary       string
	Keywords      []string

	// DocMetadata is the flattened copy of the parent document's catalog
	// entry and loader metadata; values are strings, numbers or string
	// arrays only, as required by the vector index.
	DocMetadata map[string]any
}

// IndexMetadata returns the full flat metadata map that accompanies the
// chunk's vector in the index. Boundary chunks omit the neighbor keys rather
// than storing nulls.
func (c *Chunk) IndexMetadata() map[string]any {
	m := make(map[string]any, len(c.DocMetadata)+8)
	for k, v := range c.DocMetadata {
		m[k] = v
	}
	m["id"] = c.ID
	m["chunkIndex"] = c.ChunkIndex
	m["totalChunks"] = c.TotalChunks
	m["contentLength"] = c.ContentLength
	m["summary"] = c.Summary
	m["keywords"] = c.Keywords
	m["pageContent"] = c.Content
	if c.PreviousChunk != nil {
		m["previousChunk"] = *c.PreviousChunk
	}
	if c.NextChunk != nil {
		m["nextChunk"] = *c.NextChunk
	}
	return m
}

// SearchResult is one ranked match returned by the search endpoint.
type SearchResult struct {
	ID       string         `json:"id"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}
