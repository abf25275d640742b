package sticker

import (
	"context"
	"io"

	"sticker-processor/internal/domain"
)

type stickerRepository interface {
	Save(ctx context.Context, s *domain.Sticker) error
	GetByID(ctx context.Context, id string) (*domain.Sticker, error)
	UpdateStatus(ctx context.Context, id string, status domain.StickerStatus) error
}

type fileRepository interface {
	SaveOriginal(ctx context.Context, filename string, data io.Reader, size int64, contentType string) (string, error)
	DeleteObject(ctx context.Context, path string) error
}

type taskProducer interface {
	SendTask(ctx context.Context, task *domain.ConversionTask) error
}
