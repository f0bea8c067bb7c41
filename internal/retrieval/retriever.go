// Package retrieval composes an embedder and a vector store into the
// retrieval client consumed by the explanation orchestrator. How the index
// was built is not its concern; it only promises semantically ranked
// chunks with source metadata.
package retrieval

import (
	"context"
	"fmt"

	"taxadvisor/internal/domain"
)

type Client struct {
	embedder domain.Embedder
	store    domain.VectorStore
}

func NewClient(embedder domain.Embedder, store domain.VectorStore) *Client {
	return &Client{embedder: embedder, store: store}
}

// TopK embeds the query and returns the k closest stored chunks, ordered
// ascending by distance.
func (c *Client) TopK(ctx context.Context, query string, k int) ([]domain.RetrievedChunk, error) {
	if k <= 0 {
		k = 5
	}
	vec, err := c.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	results, err := c.store.Search(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}
	return results, nil
}
