package domain

import (
	"context"
	"errors"
	"time"
)

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
}

// VectorStore persists vectors and supports similarity search.
// Search results are ordered ascending by distance.
type VectorStore interface {
	Init(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, chunks []Chunk, vectors [][]float64) error
	Search(ctx context.Context, vector []float64, topK int) ([]RetrievedChunk, error)
	Clear(ctx context.Context) error
}

// Retriever returns the k stored chunks closest to a query string.
type Retriever interface {
	TopK(ctx context.Context, query string, k int) ([]RetrievedChunk, error)
}

// Generator produces text from a prompt using the named model. A failure
// caused by provider rate limiting must be distinguishable from other
// failures; callers use that distinction to drive retry and fallback.
type Generator interface {
	Generate(ctx context.Context, prompt, model string) (string, error)
}

// RateLimited marks generator errors caused by provider quota limits.
// RetryHint returns the provider's suggested wait, zero when the
// provider gave no usable hint.
type RateLimited interface {
	error
	RetryHint() time.Duration
}

// AsRateLimited reports whether err is (or wraps) a rate-limit error
// from any generator implementation.
func AsRateLimited(err error) (RateLimited, bool) {
	var rl RateLimited
	if errors.As(err, &rl) {
		return rl, true
	}
	return nil, false
}

// Notifier delivers a non-sensitive result summary to an external
// endpoint. Delivery is best effort; failures are never surfaced to the
// request that produced the summary.
type Notifier interface {
	Notify(ctx context.Context, payload NotificationPayload) error
}

// NotificationPayload is the subset of an explanation safe to ship to a
// webhook endpoint.
type NotificationPayload struct {
	Verdict        Regime `json:"verdict"`
	Savings        int64  `json:"savings"`
	Recommendation string `json:"recommendation"`
	Timestamp      string `json:"timestamp"`
}
