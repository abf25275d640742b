package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
)

// Format is the encoding of a media buffer. It is carried alongside the
// bytes so stages dispatch on the tag instead of re-parsing the filename;
// the filename suffix is kept in sync whenever the tag changes.
type Format string

const (
	FormatUnknown Format = ""
	FormatTGS     Format = "tgs"
	FormatLottie  Format = "lottie"
	FormatWebm    Format = "webm"
	FormatWebp    Format = "webp"
	FormatGif     Format = "gif"
)

// Media is the value flowing through the conversion pipeline: a filename,
// the encoded bytes and the pixel dimensions. Data is replaced wholesale by
// each stage, never mutated in place, so a Media value handed to a stage can
// still be read safely by whoever holds the previous copy. Width and Height
// are 0 until a decoding or resizing stage has run.
type Media struct {
	Name   string
	Data   []byte
	Width  int
	Height int
	Format Format
}

// NewMedia builds a Media from externally supplied bytes, deriving the
// format tag from the filename suffix. Unrecognized suffixes yield
// FormatUnknown, which every gated stage passes through untouched.
func NewMedia(name string, data []byte) Media {
	return Media{
		Name:   name,
		Data:   data,
		Format: FormatFromName(name),
	}
}

// FormatFromName maps a filename suffix to its format tag.
func FormatFromName(name string) Format {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")) {
	case "tgs":
		return FormatTGS
	case "lottie":
		return FormatLottie
	case "webm":
		return FormatWebm
	case "webp":
		return FormatWebp
	case "gif":
		return FormatGif
	default:
		return FormatUnknown
	}
}

// Retag returns a copy tagged with f whose filename suffix is renamed to
// match. Callers assign the new bytes on the returned copy, so the
// (name, data, tag) triple is only ever published as one consistent value.
func (m Media) Retag(f Format) Media {
	ext := filepath.Ext(m.Name)
	m.Name = strings.TrimSuffix(m.Name, ext) + "." + string(f)
	m.Format = f
	return m
}

// MimeType derives the content type from the filename suffix alone; there
// is no content sniffing. A name without a suffix is an error because the
// upload endpoint requires an explicit type.
func (m Media) MimeType() (string, error) {
	ext := filepath.Ext(m.Name)
	if ext == "" {
		return "", ErrNoMimeType
	}
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "webm" {
		return fmt.Sprintf("video/%s", ext), nil
	}
	return fmt.Sprintf("image/%s", ext), nil
}

// Fingerprint is the content digest used as the dedup cache key. Identical
// bytes always produce identical fingerprints regardless of filename.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ContentURI is the opaque locator returned by the remote media store
// (an mxc:// URI for Matrix homeservers). It is stored verbatim as the
// dedup cache value.
type ContentURI string

func (u ContentURI) String() string {
	return string(u)
}

// RGBA is the transparent-color parameter for GIF rendering.
type RGBA struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// Hex returns the color as rrggbbaa, the form the external renderer accepts.
func (c RGBA) Hex() string {
	return fmt.Sprintf("%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// AnimationFormat selects the output encoding of the animation-convert
// stage: webp (the default) or gif with a transparent palette color.
type AnimationFormat struct {
	Format      Format `json:"animation_format"`
	Transparent RGBA   `json:"transparent_color"`
}

// Normalize maps the zero value to the webp default.
func (f AnimationFormat) Normalize() AnimationFormat {
	if f.Format != FormatGif {
		f.Format = FormatWebp
	}
	return f
}
