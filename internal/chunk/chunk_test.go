package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitCarriesMetadata(t *testing.T) {
	s := NewSplitter(100, 20)
	text := strings.Repeat("Transaction monitoring applies to every account. ", 20)

	chunks, err := s.Split(text, "doc.pdf", "file-1")
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1, "long text should split into multiple chunks")
	for _, chunk := range chunks {
		assert.NotEmpty(t, chunk.Content)
		assert.Equal(t, "doc.pdf", chunk.Source)
		assert.Equal(t, "file-1", chunk.FileID)
	}
}

func TestSplitDeterministic(t *testing.T) {
	s := NewSplitter(50, 10)
	text := strings.Repeat("KYC checks are required for onboarding. ", 10)

	first, err := s.Split(text, "doc.pdf", "file-1")
	require.NoError(t, err)
	second, err := s.Split(text, "doc.pdf", "file-1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSplitEmptyText(t *testing.T) {
	s := NewSplitter(100, 20)

	chunks, err := s.Split("", "doc.pdf", "file-1")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSplitShortText(t *testing.T) {
	s := NewSplitter(500, 100)

	chunks, err := s.Split("A short compliant paragraph.", "doc.pdf", "file-1")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "A short compliant paragraph.", chunks[0].Content)
}
