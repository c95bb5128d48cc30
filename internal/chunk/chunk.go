// Package chunk splits extracted document text into overlapping segments
// sized for embedding.
package chunk

import (
	"github.com/tmc/langchaingo/textsplitter"

	"docaudit/internal/models"
)

// Splitter produces overlapping chunks of a fixed size. Deterministic: the
// same text always yields the same chunks.
type Splitter struct {
	size    int
	overlap int
}

func NewSplitter(size, overlap int) *Splitter {
	return &Splitter{size: size, overlap: overlap}
}

// Split divides text into chunks carrying the source and file id metadata
// they will be indexed under. Empty or whitespace-only text yields no chunks.
func (s *Splitter) Split(text, source, fileID string) ([]models.Chunk, error) {
	if text == "" {
		return nil, nil
	}
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(s.size),
		textsplitter.WithChunkOverlap(s.overlap),
	)
	parts, err := splitter.SplitText(text)
	if err != nil {
		return nil, err
	}
	chunks := make([]models.Chunk, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		chunks = append(chunks, models.Chunk{
			Content: part,
			Source:  source,
			FileID:  fileID,
		})
	}
	return chunks, nil
}
