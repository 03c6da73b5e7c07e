package pgvector

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/thundersearch/thundersearch/internal/core"
	"github.com/thundersearch/thundersearch/internal/models"
)

// Index is the Postgres/pgvector backend: one table holds the vectors for all
// logical index names, so "create index" reduces to ensuring the schema.
type Index struct {
	db        *sql.DB
	dimension int
	log       *zap.SugaredLogger
}

var _ core.VectorIndex = (*Index)(nil)

func NewIndex(ctx context.Context, databaseURL string, dimension int, log *zap.SugaredLogger) (*Index, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}
	if dimension <= 0 {
		return nil, fmt.Errorf("embedding dimension required")
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return &Index{db: db, dimension: dimension, log: log}, nil
}

func (x *Index) Close() error {
	if x.db != nil {
		return x.db.Close()
	}
	return nil
}

// CreateIfAbsent ensures the vector extension and the backing table exist.
// The table dimension comes from runtime config, so the DDL is built here
// rather than embedded.
func (x *Index) CreateIfAbsent(ctx context.Context, name string) error {
	var exists bool
	err := x.db.QueryRowContext(ctx, `
		SELECT EXISTS (
		  SELECT 1 FROM information_schema.tables
		  WHERE table_name = 'search_vectors'
		)`).
		Scan(&exists)
	if err != nil {
		return fmt.Errorf("schema check failed: %w", err)
	}
	if exists {
		return nil
	}

	x.log.Infow("creating vector schema", "index", name, "dimension", x.dimension)
	ddl := fmt.Sprintf(`
		CREATE EXTENSION IF NOT EXISTS vector;
		CREATE TABLE IF NOT EXISTS search_vectors (
			id         text PRIMARY KEY,
			index_name text NOT NULL,
			embedding  vector(%d) NOT NULL,
			metadata   jsonb NOT NULL DEFAULT '{}'::jsonb,
			created_at timestamptz NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS search_vectors_index_name_idx ON search_vectors (index_name);
	`, x.dimension)

	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("exec schema ddl: %w", err)
	}
	return tx.Commit()
}

func (x *Index) HasVectors(ctx context.Context, name string) (bool, error) {
	var populated bool
	err := x.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM search_vectors WHERE index_name = $1)`, name).
		Scan(&populated)
	if err != nil {
		return false, fmt.Errorf("population check: %w", err)
	}
	return populated, nil
}

// Upsert writes the records in a single transaction, insert-or-update keyed
// by record id.
func (x *Index) Upsert(ctx context.Context, name string, records []core.UpsertRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := x.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}

	const q = `
		INSERT INTO search_vectors (id, index_name, embedding, metadata)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET embedding = EXCLUDED.embedding, metadata = EXCLUDED.metadata
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i := range records {
		r := &records[i]
		meta, err := json.Marshal(r.Metadata)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("marshal metadata for %s: %w", r.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, r.ID, name, pgvector.NewVector(r.Values), meta); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Query returns the topK nearest records by cosine distance.
func (x *Index) Query(ctx context.Context, name string, vector []float32, topK int) ([]models.SearchResult, error) {
	if topK <= 0 {
		topK = 10
	}
	const q = `
		SELECT id, metadata, 1 - (embedding <=> $2) AS score
		FROM search_vectors
		WHERE index_name = $1
		ORDER BY embedding <=> $2
		LIMIT $3
	`
	rows, err := x.db.QueryContext(ctx, q, name, pgvector.NewVector(vector), topK)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.SearchResult
	for rows.Next() {
		var (
			r    models.SearchResult
			meta []byte
		)
		if err := rows.Scan(&r.ID, &meta, &r.Score); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &r.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal metadata for %s: %w", r.ID, err)
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
