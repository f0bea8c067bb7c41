// Package ingest loads corpus documents, chunks them and populates the
// vector store that the retrieval client serves from. It runs offline
// relative to the explain path: at startup or through the admin endpoint.
package ingest

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"taxadvisor/internal/domain"
)

// Chunker splits documents into chunks suitable for retrieval indexing.
type Chunker interface {
	Chunk(document domain.Document) ([]domain.Chunk, error)
}

type Service struct {
	chunker  Chunker
	embedder domain.Embedder
	store    domain.VectorStore
}

// Result summarizes one ingestion run.
type Result struct {
	Documents int `json:"documents"`
	Chunks    int `json:"chunks"`
}

func NewService(chunker Chunker, embedder domain.Embedder, store domain.VectorStore) *Service {
	return &Service{chunker: chunker, embedder: embedder, store: store}
}

// IngestDir ingests every .txt and .md file directly under dir.
func (s *Service) IngestDir(ctx context.Context, dir string) (*Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "reading corpus dir")
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return s.IngestPaths(ctx, paths)
}

// IngestPaths ingests the given files, replacing the store's contents.
func (s *Service) IngestPaths(ctx context.Context, paths []string) (*Result, error) {
	var documents []domain.Document
	for _, p := range paths {
		matches, _ := filepath.Glob(p)
		if matches == nil {
			matches = []string{p}
		}
		for _, m := range matches {
			lower := strings.ToLower(m)
			if !strings.HasSuffix(lower, ".txt") && !strings.HasSuffix(lower, ".md") {
				continue
			}
			data, err := os.ReadFile(m)
			if err != nil {
				return nil, errors.Wrapf(err, "reading %s", m)
			}
			documents = append(documents, domain.Document{
				ID:      hashString(m),
				Path:    m,
				Content: string(data),
			})
		}
	}
	if len(documents) == 0 {
		return nil, errors.New("no .txt or .md documents found")
	}

	var allChunks []domain.Chunk
	var allTexts []string
	for _, d := range documents {
		chunks, err := s.chunker.Chunk(d)
		if err != nil {
			return nil, errors.Wrapf(err, "chunking %s", d.Path)
		}
		for _, ch := range chunks {
			allChunks = append(allChunks, ch)
			allTexts = append(allTexts, ch.Text)
		}
	}
	if len(allChunks) == 0 {
		return nil, errors.New("corpus produced no chunks")
	}

	if err := s.embedder.Prepare(allTexts); err != nil {
		return nil, errors.Wrap(err, "preparing embedder")
	}

	vectors := make([][]float64, len(allChunks))
	for i := range allChunks {
		vec, err := s.embedder.Embed(ctx, allChunks[i].Text)
		if err != nil {
			return nil, errors.Wrapf(err, "embedding chunk %s", allChunks[i].ID)
		}
		vectors[i] = vec
	}

	if err := s.store.Init(ctx, s.embedder.Dimension()); err != nil {
		return nil, errors.Wrap(err, "initializing vector store")
	}
	if err := s.store.Clear(ctx); err != nil {
		return nil, errors.Wrap(err, "clearing vector store")
	}
	if err := s.store.Upsert(ctx, allChunks, vectors); err != nil {
		return nil, errors.Wrap(err, "upserting chunks")
	}

	return &Result{Documents: len(documents), Chunks: len(allChunks)}, nil
}

func hashString(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:8])
}
