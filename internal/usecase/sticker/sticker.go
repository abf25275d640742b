package sticker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"sticker-processor/internal/domain"
	repoSticker "sticker-processor/internal/repository/sticker"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"
)

type StickerUsecase struct {
	repo     stickerRepository
	fileRepo fileRepository
	producer taskProducer
	logger   *zlog.Zerolog
}

func NewStickerUsecase(repo stickerRepository, fileRepo fileRepository, producer taskProducer, logger *zlog.Zerolog) *StickerUsecase {
	return &StickerUsecase{
		repo:     repo,
		fileRepo: fileRepo,
		producer: producer,
		logger:   logger,
	}
}

// SubmitSticker stores the raw sticker, records the job and queues it for
// conversion. The heavy lifting happens in the worker; this returns as soon
// as the task is on the queue.
func (u *StickerUsecase) SubmitSticker(ctx context.Context, file io.Reader, filename string, size int64, opts domain.ConversionOptions) (*domain.Sticker, error) {
	stickerID := uuid.New().String()

	media := domain.NewMedia(filename, nil)
	mimeType, err := media.MimeType()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFileFormat, err)
	}

	originalPath, err := u.fileRepo.SaveOriginal(ctx, filename, file, size, mimeType)
	if err != nil {
		u.logger.Error().Err(err).Str("filename", filename).Msg("Failed to store original sticker")
		return nil, fmt.Errorf("failed to store sticker: %w", err)
	}

	s := &domain.Sticker{
		ID:               stickerID,
		OriginalFilename: filename,
		OriginalSize:     size,
		MimeType:         mimeType,
		Status:           domain.StatusUploaded,
		OriginalPath:     originalPath,
		Bucket:           domain.BucketStickers,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	if err := u.repo.Save(ctx, s); err != nil {
		u.fileRepo.DeleteObject(ctx, originalPath)
		return nil, fmt.Errorf("failed to save sticker record: %w", err)
	}

	task := &domain.ConversionTask{
		ID:               uuid.New().String(),
		StickerID:        stickerID,
		OriginalFilename: filename,
		OriginalPath:     originalPath,
		Bucket:           domain.BucketStickers,
		AnimationFormat:  opts.AnimationFormat.Normalize(),
		MaxWidth:         opts.MaxWidth,
		MaxHeight:        opts.MaxHeight,
	}

	if err := u.producer.SendTask(ctx, task); err != nil {
		u.logger.Error().Err(err).Str("sticker_id", stickerID).Msg("Failed to queue conversion task")
		u.updateStatus(ctx, stickerID, domain.StatusFailed)
		return nil, fmt.Errorf("%w: %v", ErrMessageQueueError, err)
	}

	if err := u.repo.UpdateStatus(ctx, stickerID, domain.StatusProcessing); err != nil {
		u.logger.Error().Err(err).Str("sticker_id", stickerID).Msg("Failed to update status")
	} else {
		s.Status = domain.StatusProcessing
	}

	u.logger.Info().
		Str("sticker_id", stickerID).
		Str("filename", filename).
		Msg("Sticker accepted and queued for conversion")
	return s, nil
}

func (u *StickerUsecase) GetSticker(ctx context.Context, id string) (*domain.Sticker, error) {
	s, err := u.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repoSticker.ErrStickerNotFound) {
			return nil, ErrStickerNotFound
		}
		return nil, fmt.Errorf("failed to get sticker: %w", err)
	}
	return s, nil
}

func (u *StickerUsecase) GetStatus(ctx context.Context, id string) (domain.StickerStatus, error) {
	s, err := u.GetSticker(ctx, id)
	if err != nil {
		return "", err
	}
	return s.Status, nil
}

func (u *StickerUsecase) updateStatus(ctx context.Context, id string, status domain.StickerStatus) {
	if err := u.repo.UpdateStatus(ctx, id, status); err != nil {
		u.logger.Error().Err(err).Str("sticker_id", id).Str("status", string(status)).Msg("Failed to update status")
	}
}
