package uploader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"sticker-processor/internal/cache"
	"sticker-processor/internal/cache/memory"
	"sticker-processor/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/zlog"
)

func TestMain(m *testing.M) {
	zlog.Init()
	os.Exit(m.Run())
}

type fakeClient struct {
	calls   int
	err     error
	gotName string
	gotMime string
}

func (c *fakeClient) Upload(_ context.Context, name string, data []byte, mimeType string) (domain.ContentURI, error) {
	c.calls++
	c.gotName = name
	c.gotMime = mimeType
	if c.err != nil {
		return "", c.err
	}
	return domain.ContentURI(fmt.Sprintf("mxc://example.org/%s-%d", name, c.calls)), nil
}

type failingCache struct {
	getErr error
	addErr error
}

func (c *failingCache) Get(context.Context, string) (domain.ContentURI, error) {
	return "", c.getErr
}

func (c *failingCache) Add(context.Context, string, domain.ContentURI) error {
	return c.addErr
}

func TestUpload_DedupSkipsSecondUpload(t *testing.T) {
	client := &fakeClient{}
	u := New(client, memory.New(), &zlog.Logger)

	m := domain.NewMedia("duck.webp", []byte("webp-bytes"))

	uri, isNew, err := u.Upload(context.Background(), m)
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, 1, client.calls)

	// Same bytes under a different name still hit the cache.
	again := domain.NewMedia("other-name.webp", []byte("webp-bytes"))
	uri2, isNew2, err := u.Upload(context.Background(), again)
	require.NoError(t, err)
	assert.False(t, isNew2)
	assert.Equal(t, uri, uri2)
	assert.Equal(t, 1, client.calls, "cached fingerprint must not upload again")
}

func TestUpload_DifferentBytesUploadSeparately(t *testing.T) {
	client := &fakeClient{}
	u := New(client, memory.New(), &zlog.Logger)

	_, isNew, err := u.Upload(context.Background(), domain.NewMedia("a.webp", []byte("aaa")))
	require.NoError(t, err)
	assert.True(t, isNew)

	_, isNew, err = u.Upload(context.Background(), domain.NewMedia("b.webp", []byte("bbb")))
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, 2, client.calls)
}

func TestUpload_NilCacheAlwaysUploads(t *testing.T) {
	client := &fakeClient{}
	u := New(client, nil, &zlog.Logger)

	m := domain.NewMedia("duck.webp", []byte("webp-bytes"))

	_, isNew, err := u.Upload(context.Background(), m)
	require.NoError(t, err)
	assert.True(t, isNew)

	_, isNew, err = u.Upload(context.Background(), m)
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, 2, client.calls)
}

func TestUpload_MimeTypePassedThrough(t *testing.T) {
	client := &fakeClient{}
	u := New(client, memory.New(), &zlog.Logger)

	_, _, err := u.Upload(context.Background(), domain.NewMedia("clip.webm", []byte("v")))
	require.NoError(t, err)
	assert.Equal(t, "clip.webm", client.gotName)
	assert.Equal(t, "video/webm", client.gotMime)
}

func TestUpload_NoSuffixNoUpload(t *testing.T) {
	client := &fakeClient{}
	c := memory.New()
	u := New(client, c, &zlog.Logger)

	m := domain.NewMedia("noext", []byte("bytes"))
	_, _, err := u.Upload(context.Background(), m)
	assert.ErrorIs(t, err, domain.ErrNoMimeType)
	assert.Equal(t, 0, client.calls)

	_, cacheErr := c.Get(context.Background(), domain.Fingerprint(m.Data))
	assert.ErrorIs(t, cacheErr, cache.ErrNotFound)
}

func TestUpload_FailedUploadLeavesCacheEmpty(t *testing.T) {
	client := &fakeClient{err: errors.New("homeserver down")}
	c := memory.New()
	u := New(client, c, &zlog.Logger)

	m := domain.NewMedia("duck.webp", []byte("webp-bytes"))
	_, _, err := u.Upload(context.Background(), m)
	require.Error(t, err)

	_, cacheErr := c.Get(context.Background(), domain.Fingerprint(m.Data))
	assert.ErrorIs(t, cacheErr, cache.ErrNotFound)

	// A later retry with a healthy client uploads for real.
	client.err = nil
	_, isNew, err := u.Upload(context.Background(), m)
	require.NoError(t, err)
	assert.True(t, isNew)
}

func TestUpload_CacheLookupFailurePropagates(t *testing.T) {
	client := &fakeClient{}
	u := New(client, &failingCache{getErr: fmt.Errorf("%w: connection refused", cache.ErrDatabase)}, &zlog.Logger)

	_, _, err := u.Upload(context.Background(), domain.NewMedia("duck.webp", []byte("x")))
	assert.ErrorIs(t, err, cache.ErrDatabase)
	assert.Equal(t, 0, client.calls, "lookup failure must not fall through to upload")
}

func TestUpload_CacheRecordFailurePropagates(t *testing.T) {
	client := &fakeClient{}
	u := New(client, &failingCache{getErr: cache.ErrNotFound, addErr: fmt.Errorf("%w: write timeout", cache.ErrDatabase)}, &zlog.Logger)

	_, _, err := u.Upload(context.Background(), domain.NewMedia("duck.webp", []byte("x")))
	assert.ErrorIs(t, err, cache.ErrDatabase)
	assert.Equal(t, 1, client.calls)
}
