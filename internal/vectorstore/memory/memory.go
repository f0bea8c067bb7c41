package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"taxadvisor/internal/domain"
)

// Storage is a simple in-memory vector store using brute-force cosine
// similarity. Vectors are assumed L2-normalized.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float64
	chunks    []domain.Chunk
}

func NewStorage() *Storage { return &Storage{} }

func (s *Storage) Init(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.vectors = nil
	s.chunks = nil
	return nil
}

func (s *Storage) Upsert(_ context.Context, chunks []domain.Chunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		if len(v) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	s.chunks = append(s.chunks, chunks...)
	s.vectors = append(s.vectors, vectors...)
	return nil
}

func (s *Storage) Search(_ context.Context, vector []float64, topK int) ([]domain.RetrievedChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 {
		topK = 5
	}
	type scored struct {
		idx      int
		distance float64
	}
	scores := make([]scored, len(s.vectors))
	for i := range s.vectors {
		// cosine distance = 1 - similarity
		scores[i] = scored{i, 1 - dot(s.vectors[i], vector)}
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].distance < scores[j].distance })
	if topK > len(scores) {
		topK = len(scores)
	}
	results := make([]domain.RetrievedChunk, 0, topK)
	for i := 0; i < topK; i++ {
		results = append(results, domain.RetrievedChunk{
			Chunk:    s.chunks[scores[i].idx],
			Distance: scores[i].distance,
		})
	}
	return results, nil
}

func (s *Storage) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors = nil
	s.chunks = nil
	return nil
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
