package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docaudit/internal/catalog"
	"docaudit/internal/models"
	"docaudit/internal/pipeline"
)

type fakeChunker struct {
	chunks []models.Chunk
	err    error
}

func (f *fakeChunker) Split(text, source, fileID string) ([]models.Chunk, error) {
	return f.chunks, f.err
}

type fakeIndexer struct {
	buildErrs  []error // one per attempt, nil-padded
	buildCalls int
	exists     bool
	existsErr  error
	deleted    []string
}

func (f *fakeIndexer) Build(ctx context.Context, fileID string, chunks []models.Chunk) error {
	f.buildCalls++
	if f.buildCalls <= len(f.buildErrs) {
		return f.buildErrs[f.buildCalls-1]
	}
	return nil
}

func (f *fakeIndexer) Exists(fileID string) (bool, error) { return f.exists, f.existsErr }

func (f *fakeIndexer) Delete(fileID string) error {
	f.deleted = append(f.deleted, fileID)
	return nil
}

type fakeRunner struct {
	state *pipeline.State
	err   error
	calls int
}

func (f *fakeRunner) Run(ctx context.Context, fileID, query string) (*pipeline.State, error) {
	f.calls++
	return f.state, f.err
}

type fakeRegistry struct {
	docs    map[string]catalog.Document
	putErr  error
	deleted []string
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{docs: map[string]catalog.Document{}}
}

func (f *fakeRegistry) Put(ctx context.Context, doc *catalog.Document) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.docs[doc.FileID] = *doc
	return nil
}

func (f *fakeRegistry) List(ctx context.Context) ([]catalog.Document, error) {
	var out []catalog.Document
	for _, d := range f.docs {
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeRegistry) Delete(ctx context.Context, fileID string) error {
	f.deleted = append(f.deleted, fileID)
	delete(f.docs, fileID)
	return nil
}

func oneChunk() []models.Chunk {
	return []models.Chunk{{Content: "text", FileID: "f1"}}
}

func TestIndexEmptyText(t *testing.T) {
	s := New(&fakeChunker{}, &fakeIndexer{}, &fakeRunner{}, newFakeRegistry())

	err := s.Index(context.Background(), "f1", "doc.pdf", "   \n ")
	require.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestIndexNoChunks(t *testing.T) {
	s := New(&fakeChunker{chunks: nil}, &fakeIndexer{}, &fakeRunner{}, newFakeRegistry())

	err := s.Index(context.Background(), "f1", "doc.pdf", "some text")
	require.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestIndexRecordsDocument(t *testing.T) {
	indexer := &fakeIndexer{}
	registry := newFakeRegistry()
	s := New(&fakeChunker{chunks: oneChunk()}, indexer, &fakeRunner{}, registry)

	require.NoError(t, s.Index(context.Background(), "f1", "doc.pdf", "some text"))
	assert.Equal(t, 1, indexer.buildCalls)

	doc, ok := registry.docs["f1"]
	require.True(t, ok)
	assert.Equal(t, "doc.pdf", doc.Source)
	assert.Equal(t, 1, doc.ChunkCount)
}

func TestIndexRetriesTransientFailures(t *testing.T) {
	boom := errors.New("provider unavailable")
	indexer := &fakeIndexer{buildErrs: []error{boom, boom}}
	s := New(&fakeChunker{chunks: oneChunk()}, indexer, &fakeRunner{}, newFakeRegistry())

	require.NoError(t, s.Index(context.Background(), "f1", "doc.pdf", "some text"))
	assert.Equal(t, 3, indexer.buildCalls, "third attempt succeeds")
}

func TestIndexGivesUpAfterMaxAttempts(t *testing.T) {
	boom := errors.New("provider unavailable")
	indexer := &fakeIndexer{buildErrs: []error{boom, boom, boom}}
	s := New(&fakeChunker{chunks: oneChunk()}, indexer, &fakeRunner{}, newFakeRegistry())

	err := s.Index(context.Background(), "f1", "doc.pdf", "some text")
	require.ErrorIs(t, err, boom)
	assert.Equal(t, maxIndexAttempts, indexer.buildCalls)
}

func TestIndexDoesNotRetryInvalidInput(t *testing.T) {
	bad := models.ErrInvalidInput
	indexer := &fakeIndexer{buildErrs: []error{bad, bad, bad}}
	s := New(&fakeChunker{chunks: oneChunk()}, indexer, &fakeRunner{}, newFakeRegistry())

	err := s.Index(context.Background(), "f1", "doc.pdf", "some text")
	require.ErrorIs(t, err, models.ErrInvalidInput)
	assert.Equal(t, 1, indexer.buildCalls)
}

func TestAnalyzeUnknownIDFailsBeforePipeline(t *testing.T) {
	runner := &fakeRunner{}
	s := New(&fakeChunker{}, &fakeIndexer{exists: false}, runner, newFakeRegistry())

	_, err := s.Analyze(context.Background(), "nope", models.DefaultQuery)
	require.ErrorIs(t, err, models.ErrIndexNotFound)
	assert.Equal(t, 0, runner.calls, "pipeline must not run without an index")
}

func TestAnalyzeExistsCheckFailureIsNotNotFound(t *testing.T) {
	boom := errors.New("stat indexes: permission denied")
	runner := &fakeRunner{}
	s := New(&fakeChunker{}, &fakeIndexer{existsErr: boom}, runner, newFakeRegistry())

	_, err := s.Analyze(context.Background(), "f1", models.DefaultQuery)
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, models.ErrIndexNotFound, "storage failures must not read as a missing index")
	assert.Equal(t, 0, runner.calls)
}

func TestAnalyzeRunsPipeline(t *testing.T) {
	state := &pipeline.State{FileID: "f1", ReportPath: "/tmp/report_f1.pdf"}
	runner := &fakeRunner{state: state}
	s := New(&fakeChunker{}, &fakeIndexer{exists: true}, runner, newFakeRegistry())

	got, err := s.Analyze(context.Background(), "f1", models.DefaultQuery)
	require.NoError(t, err)
	assert.Same(t, state, got)
}

func TestRemoveIdempotent(t *testing.T) {
	indexer := &fakeIndexer{}
	registry := newFakeRegistry()
	s := New(&fakeChunker{}, indexer, &fakeRunner{}, registry)

	require.NoError(t, s.Remove(context.Background(), "f1"))
	require.NoError(t, s.Remove(context.Background(), "f1"), "second remove succeeds")
	assert.Equal(t, []string{"f1", "f1"}, indexer.deleted)
}
