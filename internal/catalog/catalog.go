// Package catalog keeps a registry of indexed documents in sqlite. The
// index files remain the source of truth for analysis; the catalog exists
// so uploads can be listed and tidied up.
package catalog

import (
	"context"
	"database/sql"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

type Document struct {
	bun.BaseModel `bun:"table:documents,alias:d"`

	FileID     string    `bun:"file_id,pk" json:"file_id"`
	Source     string    `bun:"source,notnull" json:"source"`
	ChunkCount int       `bun:"chunk_count,notnull" json:"chunk_count"`
	CreatedAt  time.Time `bun:"created_at,notnull" json:"created_at"`
}

type Catalog struct {
	db *bun.DB
}

func Open(path string, debug bool) (*Catalog, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, "file:"+path+"?cache=shared")
	if err != nil {
		return nil, err
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return &Catalog{db: db}, nil
}

func (c *Catalog) Init(ctx context.Context) error {
	_, err := c.db.NewCreateTable().Model((*Document)(nil)).IfNotExists().Exec(ctx)
	return err
}

// Put records an indexed document, replacing any previous entry for the
// same file id.
func (c *Catalog) Put(ctx context.Context, doc *Document) error {
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	_, err := c.db.NewInsert().
		Model(doc).
		On("CONFLICT (file_id) DO UPDATE").
		Set("source = EXCLUDED.source").
		Set("chunk_count = EXCLUDED.chunk_count").
		Set("created_at = EXCLUDED.created_at").
		Exec(ctx)
	return err
}

func (c *Catalog) List(ctx context.Context) ([]Document, error) {
	var docs []Document
	err := c.db.NewSelect().
		Model(&docs).
		Order("created_at DESC").
		Scan(ctx)
	return docs, err
}

// Delete removes the entry for fileID. Deleting an absent entry is not an
// error.
func (c *Catalog) Delete(ctx context.Context, fileID string) error {
	_, err := c.db.NewDelete().
		Model((*Document)(nil)).
		Where("file_id = ?", fileID).
		Exec(ctx)
	return err
}

func (c *Catalog) Close() error {
	return c.db.Close()
}
