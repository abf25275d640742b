package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"sticker-processor/internal/cache"
	"sticker-processor/internal/domain"

	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/retry"
)

// Cache persists fingerprint -> content URI mappings in Postgres so dedup
// survives worker restarts and is shared across worker instances.
type Cache struct {
	db      *dbpg.DB
	retries retry.Strategy
}

func New(db *dbpg.DB, retries retry.Strategy) *Cache {
	return &Cache{
		db:      db,
		retries: retries,
	}
}

func (c *Cache) Get(ctx context.Context, fingerprint string) (domain.ContentURI, error) {
	query := `SELECT content_uri FROM upload_cache WHERE fingerprint = $1`

	row, err := c.db.QueryRowWithRetry(ctx, c.retries, query, fingerprint)
	if err != nil {
		return "", fmt.Errorf("%w: %v", cache.ErrDatabase, err)
	}

	var uri string
	err = row.Scan(&uri)
	if errors.Is(err, sql.ErrNoRows) {
		return "", cache.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", cache.ErrDatabase, err)
	}

	return domain.ContentURI(uri), nil
}

func (c *Cache) Add(ctx context.Context, fingerprint string, uri domain.ContentURI) error {
	// Racing workers may both upload the same content; first insert wins and
	// the duplicate row is dropped.
	query := `
		INSERT INTO upload_cache (fingerprint, content_uri)
		VALUES ($1, $2)
		ON CONFLICT (fingerprint) DO NOTHING
	`

	if _, err := c.db.ExecWithRetry(ctx, c.retries, query, fingerprint, uri.String()); err != nil {
		return fmt.Errorf("%w: %v", cache.ErrDatabase, err)
	}
	return nil
}
