package uploader

import (
	"context"
	"errors"
	"fmt"

	"sticker-processor/internal/cache"
	"sticker-processor/internal/domain"

	"github.com/wb-go/wbf/zlog"
)

// MediaClient performs the actual upload to the remote media store.
type MediaClient interface {
	Upload(ctx context.Context, name string, data []byte, mimeType string) (domain.ContentURI, error)
}

// Uploader uploads media content-addressed: identical bytes are uploaded at
// most once per cache. Two uploads racing on the same fingerprint may both
// hit the remote store; the cache keeps whichever mapping lands first, and
// both references point at the same content anyway.
type Uploader struct {
	client MediaClient
	cache  cache.Cache
	logger *zlog.Zerolog
}

// New builds an uploader. cache may be nil, in which case every call
// uploads unconditionally.
func New(client MediaClient, c cache.Cache, logger *zlog.Zerolog) *Uploader {
	return &Uploader{
		client: client,
		cache:  c,
		logger: logger,
	}
}

// Upload returns the remote reference for the media's bytes and whether an
// actual upload happened (false means the fingerprint was already cached).
// A failed upload leaves the cache untouched.
func (u *Uploader) Upload(ctx context.Context, m domain.Media) (domain.ContentURI, bool, error) {
	// Computed at most once per call, and only when a cache lookup or an
	// upload actually needs it.
	var fp string
	fingerprint := func() string {
		if fp == "" {
			fp = domain.Fingerprint(m.Data)
		}
		return fp
	}

	if u.cache != nil {
		uri, err := u.cache.Get(ctx, fingerprint())
		if err == nil {
			u.logger.Debug().Str("name", m.Name).Str("uri", uri.String()).Msg("Dedup cache hit, skipping upload")
			return uri, false, nil
		}
		if !errors.Is(err, cache.ErrNotFound) {
			return "", false, fmt.Errorf("dedup lookup: %w", err)
		}
	}

	mimeType, err := m.MimeType()
	if err != nil {
		return "", false, err
	}

	uri, err := u.client.Upload(ctx, m.Name, m.Data, mimeType)
	if err != nil {
		return "", false, fmt.Errorf("upload %s: %w", m.Name, err)
	}

	if u.cache != nil {
		if err := u.cache.Add(ctx, fingerprint(), uri); err != nil {
			return "", false, fmt.Errorf("record upload: %w", err)
		}
	}

	u.logger.Debug().Str("name", m.Name).Str("uri", uri.String()).Msg("Uploaded media")
	return uri, true, nil
}
