package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"sticker-processor/internal/domain"
	"sticker-processor/internal/offload"

	"github.com/klauspost/compress/gzip"
	"github.com/wb-go/wbf/zlog"
)

// Pipeline applies format-gated conversion stages to media objects. Every
// stage is an identity no-op when the object's format does not match its
// input, so stages chain safely regardless of which formats actually show
// up. CPU-bound work runs on the offload executor; the calling goroutine
// suspends until the stage completes.
type Pipeline struct {
	exec     *offload.Executor
	renderer AnimationRenderer
	video    VideoTranscoder
	still    StillCodec
	logger   *zlog.Zerolog
}

func New(exec *offload.Executor, renderer AnimationRenderer, video VideoTranscoder, still StillCodec, logger *zlog.Zerolog) *Pipeline {
	return &Pipeline{
		exec:     exec,
		renderer: renderer,
		video:    video,
		still:    still,
		logger:   logger,
	}
}

// UnpackTGS gunzips a tgs buffer into raw Lottie JSON. Objects already in
// lottie form (or any other format) pass through untouched.
func (p *Pipeline) UnpackTGS(ctx context.Context, m domain.Media) (domain.Media, error) {
	if m.Format != domain.FormatTGS {
		return m, nil
	}

	out := m
	err := p.exec.Do(ctx, func() error {
		zr, err := gzip.NewReader(bytes.NewReader(m.Data))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrDecompression, err)
		}
		data, err := io.ReadAll(zr)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrDecompression, err)
		}
		if err := zr.Close(); err != nil {
			return fmt.Errorf("%w: %v", ErrDecompression, err)
		}

		out = m.Retag(domain.FormatLottie)
		out.Data = data
		return nil
	})
	if err != nil {
		return domain.Media{}, err
	}

	p.logger.Debug().Str("name", out.Name).Int("size", len(out.Data)).Msg("Unpacked tgs sticker")
	return out, nil
}

// ConvertLottie renders a Lottie animation to gif or webp at a size fitted
// to the given bounds. A tgs object may be passed directly; it is unpacked
// first. Other formats pass through untouched.
func (p *Pipeline) ConvertLottie(ctx context.Context, m domain.Media, format domain.AnimationFormat, maxWidth, maxHeight int) (domain.Media, error) {
	if m.Format != domain.FormatTGS && m.Format != domain.FormatLottie {
		return m, nil
	}

	m, err := p.UnpackTGS(ctx, m)
	if err != nil {
		return domain.Media{}, err
	}
	format = format.Normalize()

	out := m
	err = p.exec.Do(ctx, func() error {
		// The renderer only accepts paths, so hand the buffer over via a
		// scoped temp file. It must be gone on every exit path.
		tmp, err := os.CreateTemp("", "sticker-*.json")
		if err != nil {
			return fmt.Errorf("%w: %v", ErrTempStorage, err)
		}
		defer os.Remove(tmp.Name())

		if _, err := tmp.Write(m.Data); err != nil {
			tmp.Close()
			return fmt.Errorf("%w: %v", ErrTempStorage, err)
		}
		if err := tmp.Close(); err != nil {
			return fmt.Errorf("%w: %v", ErrTempStorage, err)
		}

		anim, err := p.renderer.Load(tmp.Name())
		if err != nil {
			return fmt.Errorf("%w: %v", ErrAnimationLoad, err)
		}

		width, height := anim.Size()
		newWidth, newHeight := FitDimensions(width, height, maxWidth, maxHeight)

		var data []byte
		switch format.Format {
		case domain.FormatGif:
			data, err = anim.RenderGIF(newWidth, newHeight, format.Transparent)
			out = m.Retag(domain.FormatGif)
		default:
			data, err = anim.RenderWebP(newWidth, newHeight)
			out = m.Retag(domain.FormatWebp)
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrRenderEncode, err)
		}

		out.Data = data
		out.Width = newWidth
		out.Height = newHeight
		return nil
	})
	if err != nil {
		return domain.Media{}, err
	}

	p.logger.Debug().
		Str("name", out.Name).
		Int("width", out.Width).
		Int("height", out.Height).
		Msg("Converted lottie animation")
	return out, nil
}

// ConvertWebm transcodes a webm video sticker to animated webp. The
// transcoder decides the final dimensions. Other formats pass through
// untouched.
func (p *Pipeline) ConvertWebm(ctx context.Context, m domain.Media, maxWidth, maxHeight int) (domain.Media, error) {
	if m.Format != domain.FormatWebm {
		return m, nil
	}

	out := m
	err := p.exec.Do(ctx, func() error {
		tmp, err := os.CreateTemp("", "sticker-*.webm")
		if err != nil {
			return fmt.Errorf("%w: %v", ErrTempStorage, err)
		}
		defer os.Remove(tmp.Name())

		if _, err := tmp.Write(m.Data); err != nil {
			tmp.Close()
			return fmt.Errorf("%w: %v", ErrTempStorage, err)
		}
		if err := tmp.Close(); err != nil {
			return fmt.Errorf("%w: %v", ErrTempStorage, err)
		}

		data, width, height, err := p.video.Transcode(tmp.Name(), maxWidth, maxHeight)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrVideoCodec, err)
		}

		out = m.Retag(domain.FormatWebp)
		out.Data = data
		out.Width = width
		out.Height = height
		return nil
	})
	if err != nil {
		return domain.Media{}, err
	}

	p.logger.Debug().
		Str("name", out.Name).
		Int("width", out.Width).
		Int("height", out.Height).
		Msg("Converted webm sticker")
	return out, nil
}

// Resize decodes the buffer as a still image, fits it to the bounds and
// re-encodes to webp. There is no format gate: any decodable still image is
// accepted, anything else fails with ErrImageDecode.
func (p *Pipeline) Resize(ctx context.Context, m domain.Media, maxWidth, maxHeight int) (domain.Media, error) {
	out := m
	err := p.exec.Do(ctx, func() error {
		img, err := p.still.Decode(m.Data)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrImageDecode, err)
		}

		bounds := img.Bounds()
		newWidth, newHeight := FitDimensions(bounds.Dx(), bounds.Dy(), maxWidth, maxHeight)

		resampled := p.still.Resample(img, newWidth, newHeight)
		data, err := p.still.EncodeWebP(resampled)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrRenderEncode, err)
		}

		out = m.Retag(domain.FormatWebp)
		out.Data = data
		out.Width = newWidth
		out.Height = newHeight
		return nil
	})
	if err != nil {
		return domain.Media{}, err
	}

	p.logger.Debug().
		Str("name", out.Name).
		Int("width", out.Width).
		Int("height", out.Height).
		Msg("Resized still image")
	return out, nil
}

// Convert routes a media object through the stage matching its format:
// tgs/lottie through the animation renderer, webm through the video
// transcoder, and anything else through Resize when bounds are given.
func (p *Pipeline) Convert(ctx context.Context, m domain.Media, format domain.AnimationFormat, maxWidth, maxHeight int) (domain.Media, error) {
	switch m.Format {
	case domain.FormatTGS, domain.FormatLottie:
		return p.ConvertLottie(ctx, m, format, maxWidth, maxHeight)
	case domain.FormatWebm:
		return p.ConvertWebm(ctx, m, maxWidth, maxHeight)
	default:
		if maxWidth > 0 || maxHeight > 0 {
			return p.Resize(ctx, m, maxWidth, maxHeight)
		}
		return m, nil
	}
}
