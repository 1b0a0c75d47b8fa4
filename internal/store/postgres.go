package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"

	"embed-gateway/internal/embeddings"
)

// PostgresStore persists records in Postgres with the pgvector extension.
// It implements both Store and Searcher.
type PostgresStore struct {
	db  *sql.DB
	dim int
}

func NewPostgres(dsn string, dim int) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	s := &PostgresStore{db: db, dim: dim}
	if err := s.migrate(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	// Use advisory lock to prevent concurrent migrations from multiple replicas.
	// Note: In production, use dedicated migration tools (e.g., golang-migrate/migrate)
	// that run as a separate deployment step before app services start.
	const lockID = 824951637 // arbitrary number for this application's migration lock

	var acquired bool
	err := s.db.QueryRowContext(ctx, `SELECT pg_try_advisory_lock($1)`, lockID).Scan(&acquired)
	if err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}

	if !acquired {
		// Another replica is running migrations; wait briefly and skip
		time.Sleep(2 * time.Second)
		return nil
	}

	// Ensure lock is released when done
	defer func() {
		_, _ = s.db.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, lockID)
	}()

	// Enable pgvector extension
	if _, err := s.db.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS embeddings (
		id TEXT PRIMARY KEY,
		vector vector(%d),
		metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
		created_at TIMESTAMPTZ DEFAULT now()
	);`, s.dim)
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return err
	}

	// IVFFlat index for fast cosine similarity search
	_, err = s.db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS embeddings_vector_idx
		ON embeddings USING ivfflat (vector vector_cosine_ops)
		WITH (lists = 100)
	`)
	if err != nil {
		return fmt.Errorf("failed to create vector index: %w", err)
	}

	// GIN index for metadata containment filters
	_, err = s.db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS embeddings_metadata_idx
		ON embeddings USING gin (metadata)
	`)
	if err != nil {
		return fmt.Errorf("failed to create metadata index: %w", err)
	}

	return nil
}

func (s *PostgresStore) Upsert(ctx context.Context, rec Record) error {
	meta, err := json.Marshal(rec.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO embeddings(id, vector, metadata)
		VALUES($1,$2::vector,$3::jsonb)
		ON CONFLICT (id) DO UPDATE SET vector=excluded.vector, metadata=excluded.metadata`,
		rec.ID, vectorToString(rec.Vector), string(meta))
	return err
}

func (s *PostgresStore) GetByIDs(ctx context.Context, ids []string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, vector::text, metadata
		FROM embeddings
		WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			id      string
			vecStr  string
			metaRaw []byte
		)
		if err := rows.Scan(&id, &vecStr, &metaRaw); err != nil {
			return nil, err
		}
		vec, err := parseVector(vecStr)
		if err != nil {
			return nil, fmt.Errorf("failed to decode vector for %s: %w", id, err)
		}
		meta := map[string]any{}
		if len(metaRaw) > 0 {
			if err := json.Unmarshal(metaRaw, &meta); err != nil {
				return nil, fmt.Errorf("failed to decode metadata for %s: %w", id, err)
			}
		}
		out = append(out, Record{ID: id, Vector: vec, Metadata: meta})
	}
	return out, rows.Err()
}

func (s *PostgresStore) DeleteByIDs(ctx context.Context, ids []string) error {
	// Deleting an unknown id is a no-op; callers get idempotent deletes.
	_, err := s.db.ExecContext(ctx, `DELETE FROM embeddings WHERE id = ANY($1)`, pq.Array(ids))
	return err
}

func (s *PostgresStore) Query(ctx context.Context, vector embeddings.Vector, opts QueryOptions) ([]Match, error) {
	queryVec := vectorToString(vector)
	filter, err := filterArg(opts.Filter)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT
			id,
			vector::text,
			metadata,
			1 - (vector <=> $1::vector) AS score
		FROM embeddings
		WHERE $2::jsonb IS NULL OR metadata @> $2::jsonb
		ORDER BY vector <=> $1::vector
		LIMIT $3
	`, queryVec, filter, opts.TopK)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Match
	for rows.Next() {
		var (
			id      string
			vecStr  string
			metaRaw []byte
			score   float32
		)
		if err := rows.Scan(&id, &vecStr, &metaRaw, &score); err != nil {
			return nil, err
		}
		m := Match{ID: id, Score: score}
		if opts.ReturnValues {
			vec, err := parseVector(vecStr)
			if err != nil {
				return nil, fmt.Errorf("failed to decode vector for %s: %w", id, err)
			}
			m.Vector = vec
		}
		if opts.ReturnMetadata && len(metaRaw) > 0 {
			meta := map[string]any{}
			if err := json.Unmarshal(metaRaw, &meta); err != nil {
				return nil, fmt.Errorf("failed to decode metadata for %s: %w", id, err)
			}
			m.Metadata = meta
		}
		results = append(results, m)
	}
	return results, rows.Err()
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// filterArg encodes the opaque metadata predicate for the containment
// query; nil disables filtering at the SQL level.
func filterArg(filter map[string]any) (any, error) {
	if len(filter) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to encode filter: %w", err)
	}
	return string(raw), nil
}

// vectorToString converts a Vector ([]float32) to pgvector array format.
// Format: "[0.1,0.2,0.3,...]"
func vectorToString(v embeddings.Vector) string {
	if len(v) == 0 {
		return "[]"
	}
	parts := make([]string, len(v))
	for i, val := range v {
		parts[i] = strconv.FormatFloat(float64(val), 'f', -1, 32)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// parseVector is the inverse of vectorToString.
func parseVector(s string) (embeddings.Vector, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	if s == "" {
		return embeddings.Vector{}, nil
	}
	parts := strings.Split(s, ",")
	vec := make(embeddings.Vector, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, err
		}
		vec[i] = float32(f)
	}
	return vec, nil
}
