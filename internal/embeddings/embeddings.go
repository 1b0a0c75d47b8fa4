package embeddings

import (
	"context"
	"fmt"
)

// Vector is a simple float32 slice wrapper.
type Vector []float32

// Embedder defines the embedding interface. The token is the caller's
// bearer credential, forwarded to the provider per request.
type Embedder interface {
	Embed(ctx context.Context, token, text string) (Vector, error)
}

// UpstreamError reports a non-success response from the embedding provider.
// Body holds the provider's raw error payload when available.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("embedding provider returned status %d", e.StatusCode)
}
