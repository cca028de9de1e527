package store

import (
	"context"
	"fmt"
	"log"

	"paperchat/types"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// ChunkRecord is one persisted (id, text, metadata, vector) tuple.
type ChunkRecord struct {
	ID        string
	Text      string
	Page      int
	Position  int
	Embedding []float32
}

// VectorStorer is a collection-scoped similarity index. Whether a collection
// holds one document or a whole corpus is the caller's policy. Implementations
// are safe for concurrent use; an Upsert is all-or-nothing visible to readers.
type VectorStorer interface {
	Upsert(ctx context.Context, collection string, records []ChunkRecord) error
	Query(ctx context.Context, collection string, embedding []float32, topK int) ([]types.RetrievalResult, error)
	DropCollection(ctx context.Context, collection string) error
}

// PostgresStore persists chunks and embeddings in Postgres with the pgvector
// extension. Data survives restarts; the connection string decides where.
type PostgresStore struct {
	pool      *pgxpool.Pool
	dimension int
}

func NewPostgresStore(ctx context.Context, connStr string, dimension int) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, &types.StoreError{Op: "connect", Err: err}
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, &types.StoreError{Op: "ping", Err: err}
	}

	return &PostgresStore{
		pool:      pool,
		dimension: dimension,
	}, nil
}

func (p *PostgresStore) Init(ctx context.Context) error {
	query := fmt.Sprintf(`
	CREATE EXTENSION IF NOT EXISTS vector;

	CREATE TABLE IF NOT EXISTS chunks (
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		page INT NOT NULL,
		position INT NOT NULL,
		content TEXT NOT NULL,
		embedding vector(%d) NOT NULL,
		PRIMARY KEY (collection, id)
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_embedding ON chunks USING ivfflat (embedding vector_cosine_ops)
	WITH (lists = 100);

	CREATE INDEX IF NOT EXISTS idx_chunks_collection ON chunks(collection);
	`, p.dimension)

	if _, err := p.pool.Exec(ctx, query); err != nil {
		return &types.StoreError{Op: "init", Err: err}
	}
	return nil
}

// Upsert inserts new ids and overwrites existing ones, inside one transaction
// so readers never observe a partially written batch.
func (p *PostgresStore) Upsert(ctx context.Context, collection string, records []ChunkRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return &types.StoreError{Op: "upsert", Err: err}
	}
	defer tx.Rollback(ctx)

	query := `
	INSERT INTO chunks (collection, id, page, position, content, embedding)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (collection, id) DO UPDATE SET
		page = EXCLUDED.page,
		position = EXCLUDED.position,
		content = EXCLUDED.content,
		embedding = EXCLUDED.embedding
	`
	for _, rec := range records {
		if len(rec.Embedding) != p.dimension {
			return &types.StoreError{
				Op:  "upsert",
				Err: fmt.Errorf("chunk %s: embedding dimension %d, want %d", rec.ID, len(rec.Embedding), p.dimension),
			}
		}
		if _, err := tx.Exec(ctx, query,
			collection, rec.ID, rec.Page, rec.Position, rec.Text, pgvector.NewVector(rec.Embedding),
		); err != nil {
			return &types.StoreError{Op: "upsert", Err: err}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return &types.StoreError{Op: "upsert", Err: err}
	}
	return nil
}

// Query returns up to topK neighbors ascending by cosine distance, ties broken
// by chunk position. An empty or missing collection yields an empty result.
func (p *PostgresStore) Query(ctx context.Context, collection string, embedding []float32, topK int) ([]types.RetrievalResult, error) {
	if len(embedding) == 0 {
		return nil, &types.StoreError{Op: "query", Err: fmt.Errorf("empty query embedding")}
	}

	query := `
	SELECT id, content, page, embedding <=> $2 AS distance
	FROM chunks
	WHERE collection = $1
	ORDER BY embedding <=> $2, position
	LIMIT $3
	`
	rows, err := p.pool.Query(ctx, query, collection, pgvector.NewVector(embedding), topK)
	if err != nil {
		return nil, &types.StoreError{Op: "query", Err: err}
	}
	defer rows.Close()

	var results []types.RetrievalResult
	for rows.Next() {
		var res types.RetrievalResult
		if err := rows.Scan(&res.ChunkID, &res.Text, &res.Page, &res.Distance); err != nil {
			return nil, &types.StoreError{Op: "query", Err: err}
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, &types.StoreError{Op: "query", Err: err}
	}
	return results, nil
}

func (p *PostgresStore) DropCollection(ctx context.Context, collection string) error {
	if _, err := p.pool.Exec(ctx, "DELETE FROM chunks WHERE collection = $1", collection); err != nil {
		return &types.StoreError{Op: "drop", Err: err}
	}
	return nil
}

func (p *PostgresStore) Close() error {
	if p.pool != nil {
		p.pool.Close()
		log.Println("Postgres connection pool is closed")
	}
	return nil
}
