package cache

import (
	"context"
	"errors"

	"sticker-processor/internal/domain"
)

var (
	// ErrNotFound reports a fingerprint with no recorded upload. It is the
	// one cache error the uploader treats as "go ahead and upload".
	ErrNotFound = errors.New("fingerprint not found")
	// ErrDatabase wraps backend failures from Get and Add.
	ErrDatabase = errors.New("cache backend failure")
)

// Cache maps content fingerprints to the remote references of previously
// uploaded media. Implementations must tolerate concurrent calls from
// independent workers; no per-fingerprint serialization is required (two
// racing uploads of the same content may both go through).
type Cache interface {
	Get(ctx context.Context, fingerprint string) (domain.ContentURI, error)
	Add(ctx context.Context, fingerprint string, uri domain.ContentURI) error
}
