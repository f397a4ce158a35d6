// Package search provides vector embedding and similarity types.
package search

import (
	"context"
	"errors"
)

// ErrUpstream indicates the external embedding service was unreachable,
// returned a non-2xx status, or produced a malformed response. Batches in
// flight when it occurs must not be partially persisted; the failure is
// surfaced to the caller as retryable.
var ErrUpstream = errors.New("search: upstream embedding failure")

// Embedder converts a text into an embedding vector by calling an external
// model. Embedding an empty string returns a nil vector without contacting
// the service. A nil or empty vector with a nil error means the service
// produced no embedding; callers must not store it.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}
