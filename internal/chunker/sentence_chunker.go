package chunker

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"taxadvisor/internal/domain"
)

// SentenceChunker splits documents into sentence-based chunks with overlap.
// Form feeds in the content mark page boundaries (the convention used by
// PDF-to-text extraction), so every chunk carries the page it came from.
type SentenceChunker struct {
	sentencesPerChunk int
	overlapSentences  int
	splitter          *regexp.Regexp
}

func NewSentenceChunker(sentencesPerChunk, overlapSentences int) *SentenceChunker {
	if sentencesPerChunk <= 0 {
		sentencesPerChunk = 5
	}
	if overlapSentences < 0 {
		overlapSentences = 0
	}
	return &SentenceChunker{
		sentencesPerChunk: sentencesPerChunk,
		overlapSentences:  overlapSentences,
		splitter:          regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`),
	}
}

func (c *SentenceChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	source := filepath.Base(document.Path)
	pages := strings.Split(document.Content, "\f")

	var chunks []domain.Chunk
	idx := 0
	for p, page := range pages {
		sentences := c.splitter.FindAllString(page, -1)
		if len(sentences) == 0 {
			trimmed := strings.TrimSpace(page)
			if trimmed == "" {
				continue
			}
			sentences = []string{trimmed}
		}
		for i := range sentences {
			sentences[i] = strings.TrimSpace(sentences[i])
		}
		i := 0
		for i < len(sentences) {
			end := i + c.sentencesPerChunk
			if end > len(sentences) {
				end = len(sentences)
			}
			text := strings.Join(sentences[i:end], " ")
			chunks = append(chunks, domain.Chunk{
				ID:         document.ID + ":" + strconv.Itoa(idx),
				SourceFile: source,
				Page:       p + 1,
				ChunkIndex: idx,
				Text:       text,
			})
			idx++
			if end == len(sentences) {
				break
			}
			i = end - c.overlapSentences
			if i < 0 {
				i = 0
			}
		}
	}
	for i := range chunks {
		chunks[i].TotalChunks = len(chunks)
	}
	return chunks, nil
}
