package pipeline

import "errors"

var (
	ErrDecompression = errors.New("decompression failed")
	ErrAnimationLoad = errors.New("animation failed to load")
	ErrRenderEncode  = errors.New("render/encode failed")
	ErrVideoCodec    = errors.New("video codec failed")
	ErrImageDecode   = errors.New("bytes are not a decodable image")
	ErrTempStorage   = errors.New("temporary storage failure")
)
