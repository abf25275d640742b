package pipeline

import (
	"image"

	"sticker-processor/internal/domain"
)

// AnimationRenderer loads a Lottie animation from a file path. The renderer
// works on paths rather than in-memory buffers, which is why the convert
// stage spools the animation to a temporary file first.
type AnimationRenderer interface {
	Load(path string) (Animation, error)
}

// Animation is a loaded animation exposing its native pixel size and
// renderers for the two supported output encodings.
type Animation interface {
	Size() (width, height int)
	RenderWebP(width, height int) ([]byte, error)
	RenderGIF(width, height int, transparent domain.RGBA) ([]byte, error)
}

// VideoTranscoder converts a webm video file to animated webp. The
// transcoder, not the caller, is authoritative for the dimensions it
// actually produced.
type VideoTranscoder interface {
	Transcode(path string, maxWidth, maxHeight int) (data []byte, width, height int, err error)
}

// StillCodec decodes, resamples and re-encodes still images.
type StillCodec interface {
	Decode(data []byte) (image.Image, error)
	Resample(img image.Image, width, height int) image.Image
	EncodeWebP(img image.Image) ([]byte, error)
}
