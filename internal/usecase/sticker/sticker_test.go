package sticker

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"sticker-processor/internal/domain"
	repoSticker "sticker-processor/internal/repository/sticker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/zlog"
)

func TestMain(m *testing.M) {
	zlog.Init()
	os.Exit(m.Run())
}

type fakeStickerRepo struct {
	saved     *domain.Sticker
	saveErr   error
	byID      map[string]*domain.Sticker
	statuses  map[string]domain.StickerStatus
	statusErr error
}

func newFakeStickerRepo() *fakeStickerRepo {
	return &fakeStickerRepo{
		byID:     make(map[string]*domain.Sticker),
		statuses: make(map[string]domain.StickerStatus),
	}
}

func (r *fakeStickerRepo) Save(_ context.Context, s *domain.Sticker) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved = s
	r.byID[s.ID] = s
	return nil
}

func (r *fakeStickerRepo) GetByID(_ context.Context, id string) (*domain.Sticker, error) {
	s, ok := r.byID[id]
	if !ok {
		return nil, repoSticker.ErrStickerNotFound
	}
	return s, nil
}

func (r *fakeStickerRepo) UpdateStatus(_ context.Context, id string, status domain.StickerStatus) error {
	if r.statusErr != nil {
		return r.statusErr
	}
	r.statuses[id] = status
	return nil
}

type fakeFileRepo struct {
	savedPath string
	saveErr   error
	deleted   []string
}

func (r *fakeFileRepo) SaveOriginal(_ context.Context, filename string, _ io.Reader, _ int64, _ string) (string, error) {
	if r.saveErr != nil {
		return "", r.saveErr
	}
	r.savedPath = "original/" + filename
	return r.savedPath, nil
}

func (r *fakeFileRepo) DeleteObject(_ context.Context, path string) error {
	r.deleted = append(r.deleted, path)
	return nil
}

type fakeProducer struct {
	tasks []*domain.ConversionTask
	err   error
}

func (p *fakeProducer) SendTask(_ context.Context, task *domain.ConversionTask) error {
	if p.err != nil {
		return p.err
	}
	p.tasks = append(p.tasks, task)
	return nil
}

func TestSubmitSticker(t *testing.T) {
	repo := newFakeStickerRepo()
	files := &fakeFileRepo{}
	producer := &fakeProducer{}
	u := NewStickerUsecase(repo, files, producer, &zlog.Logger)

	opts := domain.ConversionOptions{MaxWidth: 256, MaxHeight: 256}
	s, err := u.SubmitSticker(context.Background(), strings.NewReader("gzip"), "duck.tgs", 4, opts)
	require.NoError(t, err)

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, domain.StatusProcessing, s.Status)
	assert.Equal(t, "image/tgs", s.MimeType)
	assert.Equal(t, files.savedPath, s.OriginalPath)

	require.Len(t, producer.tasks, 1)
	task := producer.tasks[0]
	assert.Equal(t, s.ID, task.StickerID)
	assert.Equal(t, "duck.tgs", task.OriginalFilename)
	assert.Equal(t, 256, task.MaxWidth)
	assert.Equal(t, domain.FormatWebp, task.AnimationFormat.Format, "format defaults to webp")
}

func TestSubmitSticker_NoSuffixRejected(t *testing.T) {
	repo := newFakeStickerRepo()
	files := &fakeFileRepo{}
	u := NewStickerUsecase(repo, files, &fakeProducer{}, &zlog.Logger)

	_, err := u.SubmitSticker(context.Background(), strings.NewReader("x"), "noext", 1, domain.ConversionOptions{})
	assert.ErrorIs(t, err, ErrInvalidFileFormat)
	assert.Empty(t, files.savedPath, "rejected sticker must not be stored")
}

func TestSubmitSticker_SaveFailureCleansUpObject(t *testing.T) {
	repo := newFakeStickerRepo()
	repo.saveErr = errors.New("db down")
	files := &fakeFileRepo{}
	u := NewStickerUsecase(repo, files, &fakeProducer{}, &zlog.Logger)

	_, err := u.SubmitSticker(context.Background(), strings.NewReader("x"), "duck.tgs", 1, domain.ConversionOptions{})
	require.Error(t, err)
	assert.Equal(t, []string{files.savedPath}, files.deleted, "orphaned object must be removed")
}

func TestSubmitSticker_QueueFailureMarksFailed(t *testing.T) {
	repo := newFakeStickerRepo()
	files := &fakeFileRepo{}
	producer := &fakeProducer{err: errors.New("kafka unreachable")}
	u := NewStickerUsecase(repo, files, producer, &zlog.Logger)

	_, err := u.SubmitSticker(context.Background(), strings.NewReader("x"), "duck.tgs", 1, domain.ConversionOptions{})
	assert.ErrorIs(t, err, ErrMessageQueueError)

	require.NotNil(t, repo.saved)
	assert.Equal(t, domain.StatusFailed, repo.statuses[repo.saved.ID])
}

func TestGetSticker_NotFound(t *testing.T) {
	u := NewStickerUsecase(newFakeStickerRepo(), &fakeFileRepo{}, &fakeProducer{}, &zlog.Logger)

	_, err := u.GetSticker(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrStickerNotFound)
}

func TestGetStatus(t *testing.T) {
	repo := newFakeStickerRepo()
	repo.byID["abc"] = &domain.Sticker{ID: "abc", Status: domain.StatusCompleted}
	u := NewStickerUsecase(repo, &fakeFileRepo{}, &fakeProducer{}, &zlog.Logger)

	status, err := u.GetStatus(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, status)
}
