package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"sticker-processor/internal/domain"
	"sticker-processor/internal/repository/sticker"

	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/retry"
)

type StickersRepository struct {
	db      *dbpg.DB
	retries retry.Strategy
}

func NewStickersRepository(db *dbpg.DB, retries retry.Strategy) *StickersRepository {
	return &StickersRepository{
		db:      db,
		retries: retries,
	}
}

func (r *StickersRepository) Save(ctx context.Context, s *domain.Sticker) error {
	query := `
		INSERT INTO stickers (
			id, original_filename, original_size, mime_type,
			status, original_path, bucket, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecWithRetry(ctx, r.retries, query,
		s.ID,
		s.OriginalFilename,
		s.OriginalSize,
		s.MimeType,
		s.Status,
		s.OriginalPath,
		s.Bucket,
		s.CreatedAt,
		s.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to save sticker: %w", err)
	}

	return nil
}

func (r *StickersRepository) GetByID(ctx context.Context, id string) (*domain.Sticker, error) {
	query := `
		SELECT id, original_filename, original_size, mime_type,
		       status, original_path, bucket, content_uri,
		       width, height, reused, error, created_at, updated_at
		FROM stickers
		WHERE id = $1
	`

	row, err := r.db.QueryRowWithRetry(ctx, r.retries, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query sticker: %w", err)
	}

	var s domain.Sticker
	var contentURI, errMsg sql.NullString
	err = row.Scan(
		&s.ID,
		&s.OriginalFilename,
		&s.OriginalSize,
		&s.MimeType,
		&s.Status,
		&s.OriginalPath,
		&s.Bucket,
		&contentURI,
		&s.Width,
		&s.Height,
		&s.Reused,
		&errMsg,
		&s.CreatedAt,
		&s.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, sticker.ErrStickerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan sticker: %w", err)
	}

	s.ContentURI = domain.ContentURI(contentURI.String)
	s.Error = errMsg.String

	return &s, nil
}

func (r *StickersRepository) UpdateStatus(ctx context.Context, id string, status domain.StickerStatus) error {
	query := `UPDATE stickers SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecWithRetry(ctx, r.retries, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return sticker.ErrStickerNotFound
	}

	return nil
}

// MarkCompleted records the converted sticker's remote reference and final
// dimensions.
func (r *StickersRepository) MarkCompleted(ctx context.Context, id string, uri domain.ContentURI, width, height int, reused bool) error {
	query := `
		UPDATE stickers
		SET status = $1, content_uri = $2, width = $3, height = $4,
		    reused = $5, error = '', updated_at = $6
		WHERE id = $7
	`

	result, err := r.db.ExecWithRetry(ctx, r.retries, query,
		domain.StatusCompleted, uri.String(), width, height, reused, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to mark sticker completed: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return sticker.ErrStickerNotFound
	}

	return nil
}

func (r *StickersRepository) MarkFailed(ctx context.Context, id string, errMsg string) error {
	query := `UPDATE stickers SET status = $1, error = $2, updated_at = $3 WHERE id = $4`

	if _, err := r.db.ExecWithRetry(ctx, r.retries, query, domain.StatusFailed, errMsg, time.Now(), id); err != nil {
		return fmt.Errorf("failed to mark sticker failed: %w", err)
	}

	return nil
}
