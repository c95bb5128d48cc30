// Package service exposes the document analysis core: index a document's
// text, run the analysis pipeline, remove a document.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	"docaudit/internal/catalog"
	"docaudit/internal/models"
	"docaudit/internal/pipeline"
)

const (
	maxIndexAttempts = 3
	indexRetryDelay  = time.Second
)

// Indexer builds and removes per-document indexes.
type Indexer interface {
	Build(ctx context.Context, fileID string, chunks []models.Chunk) error
	Exists(fileID string) (bool, error)
	Delete(fileID string) error
}

// Runner executes one analysis pipeline run.
type Runner interface {
	Run(ctx context.Context, fileID, query string) (*pipeline.State, error)
}

// Chunker splits document text into indexable chunks.
type Chunker interface {
	Split(text, source, fileID string) ([]models.Chunk, error)
}

// Registry records indexed documents for listing. It never gates analysis.
type Registry interface {
	Put(ctx context.Context, doc *catalog.Document) error
	List(ctx context.Context) ([]catalog.Document, error)
	Delete(ctx context.Context, fileID string) error
}

type Service struct {
	chunker  Chunker
	indexer  Indexer
	runner   Runner
	registry Registry
}

func New(chunker Chunker, indexer Indexer, runner Runner, registry Registry) *Service {
	return &Service{chunker: chunker, indexer: indexer, runner: runner, registry: registry}
}

// Index chunks the extracted text and builds the document's index. Index
// building is retried with a fixed delay against transient provider
// failures; invalid input is never retried.
func (s *Service) Index(ctx context.Context, fileID, source, text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: no content extracted", models.ErrInvalidInput)
	}
	chunks, err := s.chunker.Split(text, source, fileID)
	if err != nil {
		return fmt.Errorf("failed to chunk document %s: %w", fileID, err)
	}
	if len(chunks) == 0 {
		return fmt.Errorf("%w: no document chunks created", models.ErrInvalidInput)
	}

	attempt := 0
	op := func() error {
		attempt++
		if err := s.indexer.Build(ctx, fileID, chunks); err != nil {
			if errors.Is(err, models.ErrInvalidInput) {
				return backoff.Permanent(err)
			}
			log.Warn().Err(err).Str("file_id", fileID).Int("attempt", attempt).Msg("Indexing attempt failed")
			return err
		}
		return nil
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(indexRetryDelay), maxIndexAttempts-1),
		ctx,
	)
	if err := backoff.Retry(op, policy); err != nil {
		return fmt.Errorf("failed to index document %s: %w", fileID, err)
	}

	doc := &catalog.Document{FileID: fileID, Source: source, ChunkCount: len(chunks)}
	if err := s.registry.Put(ctx, doc); err != nil {
		log.Warn().Err(err).Str("file_id", fileID).Msg("Failed to record document in catalog")
	}
	log.Info().Str("file_id", fileID).Int("chunks", len(chunks)).Msg("Indexed document")
	return nil
}

// Analyze runs the full retrieve-detect-report pipeline for fileID. The
// index existence check happens up front so an unknown id fails before any
// provider call.
func (s *Service) Analyze(ctx context.Context, fileID, query string) (*pipeline.State, error) {
	ok, err := s.indexer.Exists(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to check index for %s: %w", fileID, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: file_id %s", models.ErrIndexNotFound, fileID)
	}
	return s.runner.Run(ctx, fileID, query)
}

// Remove deletes the document's index and catalog entry. Removing an
// unknown document succeeds.
func (s *Service) Remove(ctx context.Context, fileID string) error {
	if err := s.indexer.Delete(fileID); err != nil {
		return err
	}
	if err := s.registry.Delete(ctx, fileID); err != nil {
		log.Warn().Err(err).Str("file_id", fileID).Msg("Failed to remove document from catalog")
	}
	log.Info().Str("file_id", fileID).Msg("Deleted document")
	return nil
}

// List returns the cataloged documents.
func (s *Service) List(ctx context.Context) ([]catalog.Document, error) {
	return s.registry.List(ctx)
}
