package sticker

import "errors"

var (
	ErrInvalidFileFormat = errors.New("invalid file format")
	ErrFileTooLarge      = errors.New("file too large")
	ErrStickerNotFound   = errors.New("sticker not found")
	ErrMessageQueueError = errors.New("message queue error")
)
