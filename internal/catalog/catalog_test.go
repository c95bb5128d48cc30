package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "catalog.db"), false)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	require.NoError(t, c.Init(context.Background()))
	return c
}

func TestPutAndList(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, &Document{FileID: "f1", Source: "a.pdf", ChunkCount: 3}))
	require.NoError(t, c.Put(ctx, &Document{FileID: "f2", Source: "b.pdf", ChunkCount: 5}))

	docs, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
}

func TestPutReplacesExisting(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, &Document{FileID: "f1", Source: "a.pdf", ChunkCount: 3}))
	require.NoError(t, c.Put(ctx, &Document{FileID: "f1", Source: "a-v2.pdf", ChunkCount: 7}))

	docs, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "a-v2.pdf", docs[0].Source)
	assert.Equal(t, 7, docs[0].ChunkCount)
}

func TestDeleteIdempotent(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, &Document{FileID: "f1", Source: "a.pdf", ChunkCount: 3}))
	require.NoError(t, c.Delete(ctx, "f1"))
	require.NoError(t, c.Delete(ctx, "f1"), "deleting an absent entry succeeds")

	docs, err := c.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)
}
