package domain

// ConversionTask is the message the API publishes for the worker: which
// original to fetch and how to convert it.
type ConversionTask struct {
	ID               string          `json:"id"`
	StickerID        string          `json:"sticker_id"`
	OriginalFilename string          `json:"original_filename"`
	OriginalPath     string          `json:"original_path"`
	Bucket           string          `json:"bucket"`
	AnimationFormat  AnimationFormat `json:"animation_format_spec"`
	MaxWidth         int             `json:"max_width"`
	MaxHeight        int             `json:"max_height"`
}

// ConversionResult is published after the worker finishes a task.
type ConversionResult struct {
	ID         string        `json:"id"`
	StickerID  string        `json:"sticker_id"`
	Status     StickerStatus `json:"status"`
	ContentURI ContentURI    `json:"content_uri,omitempty"`
	Width      int           `json:"width,omitempty"`
	Height     int           `json:"height,omitempty"`
	Reused     bool          `json:"reused"`
	Error      string        `json:"error,omitempty"`
}

// ConversionOptions are the caller-facing conversion knobs.
type ConversionOptions struct {
	AnimationFormat AnimationFormat
	MaxWidth        int
	MaxHeight       int
}

const (
	KafkaTopicTasks   = "sticker-convert"
	KafkaTopicResults = "sticker-converted"
	KafkaGroupID      = "sticker-processor-group"
)

const (
	BucketStickers     = "stickers"
	PathPrefixOriginal = "original/"
)

const DefaultMaxUploadSize = 32 << 20
