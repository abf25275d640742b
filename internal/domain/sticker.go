package domain

import "time"

type Sticker struct {
	ID               string
	OriginalFilename string
	OriginalSize     int64
	MimeType         string
	Status           StickerStatus
	OriginalPath     string
	Bucket           string
	ContentURI       ContentURI
	Width            int
	Height           int
	Reused           bool
	Error            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type StickerStatus string

const (
	StatusUploaded   StickerStatus = "uploaded"
	StatusProcessing StickerStatus = "processing"
	StatusCompleted  StickerStatus = "completed"
	StatusFailed     StickerStatus = "failed"
)
