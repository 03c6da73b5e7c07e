package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/thundersearch/thundersearch/internal/core"
)

const voyageBaseURL = "https://api.voyageai.com/v1"

// VoyageEmbedder calls the Voyage AI embeddings REST API. Voyage has no Go
// SDK; the API is OpenAI-shaped, with an extra input_type field that
// distinguishes document embeddings from query embeddings.
type VoyageEmbedder struct {
	baseURL    string
	apiKey     string
	model      string
	client     *http.Client
	maxRetries int
}

var _ core.EmbeddingProvider = (*VoyageEmbedder)(nil)

func NewVoyageEmbedder(apiKey, model string) (*VoyageEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("missing Voyage API key")
	}
	if model == "" {
		model = "voyage-law-2"
	}
	return &VoyageEmbedder{
		baseURL:    voyageBaseURL,
		apiKey:     apiKey,
		model:      model,
		client:     &http.Client{Timeout: 30 * time.Second},
		maxRetries: 3,
	}, nil
}

func (v *VoyageEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	return v.embed(ctx, texts, "document")
}

func (v *VoyageEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := v.embed(ctx, []string{text}, "query")
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("voyage embed query: expected 1 vector, got %d", len(vecs))
	}
	return vecs[0], nil
}

func (v *VoyageEmbedder) embed(ctx context.Context, texts []string, inputType string) ([][]float32, error) {
	body := struct {
		Input     []string `json:"input"`
		Model     string   `json:"model"`
		InputType string   `json:"input_type"`
	}{Input: texts, Model: v.model, InputType: inputType}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	url := v.baseURL + "/embeddings"
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+v.apiKey)

		resp, err := v.client.Do(req)
		if err != nil {
			if attempt < v.maxRetries && ctx.Err() == nil {
				time.Sleep(retryDelay(attempt))
				continue
			}
			return nil, err
		}

		// Back off on throttling and server errors; Retry-After wins when present.
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			delay := retryDelay(attempt)
			if ra := resp.Header.Get("Retry-After"); ra != "" {
				if secs, err := strconv.Atoi(ra); err == nil {
					delay = time.Duration(secs) * time.Second
				}
			}
			_ = resp.Body.Close()
			if attempt < v.maxRetries {
				time.Sleep(delay)
				continue
			}
			return nil, fmt.Errorf("voyage embeddings failed: %s", resp.Status)
		}

		payload, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 300 {
			return nil, fmt.Errorf("voyage embeddings failed: %s: %s", resp.Status, string(payload))
		}

		var out struct {
			Data []struct {
				Embedding []float32 `json:"embedding"`
				Index     int       `json:"index"`
			} `json:"data"`
		}
		if err := json.Unmarshal(payload, &out); err != nil {
			return nil, fmt.Errorf("voyage embeddings decode: %w", err)
		}

		vecs := make([][]float32, len(out.Data))
		for _, d := range out.Data {
			if d.Index < 0 || d.Index >= len(vecs) {
				return nil, fmt.Errorf("voyage embeddings: index %d out of range", d.Index)
			}
			vecs[d.Index] = d.Embedding
		}
		return vecs, nil
	}
}

func retryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := 200 * time.Millisecond << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}
