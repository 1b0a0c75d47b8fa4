package store

import (
	"context"
	"errors"

	"embed-gateway/internal/embeddings"
)

// Metadata keys the gateway manages on every record.
const (
	MetaText      = "text"
	MetaTimestamp = "timestamp"
)

// ErrNotFound is returned when a lookup misses.
var ErrNotFound = errors.New("embedding not found")

// Record is a stored embedding. Metadata carries the original text and the
// creation timestamp alongside any caller-supplied fields; records are
// immutable once written.
type Record struct {
	ID       string
	Vector   embeddings.Vector
	Metadata map[string]any
}

// Text returns the original input text from metadata, if present.
func (r Record) Text() string {
	s, _ := r.Metadata[MetaText].(string)
	return s
}

// Timestamp returns the creation time from metadata, if present.
func (r Record) Timestamp() string {
	s, _ := r.Metadata[MetaTimestamp].(string)
	return s
}

// Match is one ranked similarity result.
type Match struct {
	ID       string
	Score    float32
	Vector   embeddings.Vector
	Metadata map[string]any
}

// QueryOptions controls a similarity query. Filter is an opaque metadata
// predicate forwarded verbatim; its semantics are store-defined.
type QueryOptions struct {
	TopK           int
	Filter         map[string]any
	ReturnMetadata bool
	ReturnValues   bool
}

// Store defines the persistence contract for embedding records.
type Store interface {
	Upsert(ctx context.Context, rec Record) error
	GetByIDs(ctx context.Context, ids []string) ([]Record, error)
	DeleteByIDs(ctx context.Context, ids []string) error
	Close() error
}

// Searcher is the optional similarity-search capability. Stores that do not
// implement it (the key-value variant) simply have no /search route.
type Searcher interface {
	Query(ctx context.Context, vector embeddings.Vector, opts QueryOptions) ([]Match, error)
}
