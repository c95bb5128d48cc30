package index

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"docaudit/internal/models"
)

// Retrieve returns the top k chunks of fileID's index by similarity to
// query, in descending similarity order. Existence is checked before the
// load so a missing index surfaces as ErrIndexNotFound instead of a storage
// error. Fewer than k results, including none, is a valid outcome.
func (s *Store) Retrieve(ctx context.Context, fileID, query string, k int) ([]models.Chunk, error) {
	ok, err := s.Exists(fileID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: file_id %s", models.ErrIndexNotFound, fileID)
	}
	h, err := s.Load(fileID)
	if err != nil {
		return nil, err
	}

	count := h.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	embedding, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	results, err := h.collection.QueryEmbedding(ctx, embedding, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query index for %s: %w", fileID, err)
	}

	chunks := make([]models.Chunk, 0, len(results))
	for _, res := range results {
		chunks = append(chunks, models.Chunk{
			Content: res.Content,
			Source:  res.Metadata["source"],
			FileID:  res.Metadata["file_id"],
		})
	}
	log.Info().Str("file_id", fileID).Int("chunks", len(chunks)).Msg("Retrieved chunks")
	return chunks, nil
}
