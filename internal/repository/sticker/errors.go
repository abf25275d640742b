package sticker

import "errors"

var (
	ErrStickerNotFound = errors.New("sticker not found")
	ErrStorageError    = errors.New("storage error")
)
