// Package index owns the per-document vector indexes. Every uploaded
// document gets its own chromem index file under the store root, so chunks
// from one document can never surface in another document's retrieval.
package index

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"docaudit/internal/models"
)

const (
	collectionName = "chunks"
	fileExt        = ".chromem"
	compress       = false
)

// Embedder maps text to fixed-dimension vectors.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Store persists one vector index per file id under root.
type Store struct {
	root     string
	embedder Embedder
}

// Handle is an in-memory index that can be filled with chunks and then
// persisted under a file id.
type Handle struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedder   Embedder
}

func NewStore(root string, embedder Embedder) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create index root: %w", err)
	}
	return &Store{root: root, embedder: embedder}, nil
}

// Initialize creates a new empty index with no documents.
func (s *Store) Initialize() (*Handle, error) {
	db := chromem.NewDB()
	c, err := db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}
	return &Handle{db: db, collection: c, embedder: s.embedder}, nil
}

// Add embeds the chunks and adds them to the index. Chunk order is kept in
// the document ids.
func (h *Handle) Add(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}
	vectors, err := h.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed chunks: %w", err)
	}

	docs := make([]chromem.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = chromem.Document{
			ID:      fmt.Sprintf("%s-%d", chunk.FileID, i),
			Content: chunk.Content,
			Metadata: map[string]string{
				"source":  chunk.Source,
				"file_id": chunk.FileID,
			},
			Embedding: vectors[i],
		}
	}
	if err := h.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}
	return nil
}

// Persist writes the index to the storage key for fileID, overwriting any
// index already stored there.
func (s *Store) Persist(h *Handle, fileID string) error {
	path, err := s.indexPath(fileID)
	if err != nil {
		return err
	}
	if err := h.db.ExportToFile(path, compress, "", collectionName); err != nil {
		return fmt.Errorf("failed to persist index for %s: %w", fileID, err)
	}
	log.Debug().Str("file_id", fileID).Str("path", path).Msg("Persisted index")
	return nil
}

// Load reads the index stored for fileID.
func (s *Store) Load(fileID string) (*Handle, error) {
	path, err := s.indexPath(fileID)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: file_id %s", models.ErrIndexNotFound, fileID)
		}
		return nil, fmt.Errorf("failed to stat index for %s: %w", fileID, err)
	}
	db := chromem.NewDB()
	if err := db.ImportFromFile(path, "", collectionName); err != nil {
		return nil, fmt.Errorf("failed to load index for %s: %w", fileID, err)
	}
	c := db.GetCollection(collectionName, nil)
	if c == nil {
		return nil, fmt.Errorf("index for %s has no %s collection", fileID, collectionName)
	}
	return &Handle{db: db, collection: c, embedder: s.embedder}, nil
}

// Exists reports whether an index is stored for fileID. A stat failure
// other than absence is a storage error, not a missing index.
func (s *Store) Exists(fileID string) (bool, error) {
	path, err := s.indexPath(fileID)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat index for %s: %w", fileID, err)
	}
	return true, nil
}

// Delete removes the persisted index. Deleting an absent index is not an
// error.
func (s *Store) Delete(fileID string) error {
	path, err := s.indexPath(fileID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete index for %s: %w", fileID, err)
	}
	return nil
}

// Build creates, fills and persists the index for fileID in one step.
func (s *Store) Build(ctx context.Context, fileID string, chunks []models.Chunk) error {
	h, err := s.Initialize()
	if err != nil {
		return err
	}
	if err := h.Add(ctx, chunks); err != nil {
		return err
	}
	return s.Persist(h, fileID)
}

// indexPath maps a file id to its storage key. Ids that could escape the
// store root are rejected outright, keeping the per-document isolation a
// property of the path layout.
func (s *Store) indexPath(fileID string) (string, error) {
	if fileID == "" || strings.ContainsAny(fileID, `/\`) || strings.Contains(fileID, "..") {
		return "", fmt.Errorf("%w: invalid file id %q", models.ErrInvalidInput, fileID)
	}
	return filepath.Join(s.root, fileID+fileExt), nil
}
