package sticker

import (
	"context"
	"io"

	"sticker-processor/internal/domain"
)

type stickerUsecase interface {
	SubmitSticker(ctx context.Context, file io.Reader, filename string, size int64, opts domain.ConversionOptions) (*domain.Sticker, error)
	GetSticker(ctx context.Context, id string) (*domain.Sticker, error)
	GetStatus(ctx context.Context, id string) (domain.StickerStatus, error)
}
