package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMedia_InfersFormat(t *testing.T) {
	tests := []struct {
		name string
		want Format
	}{
		{"duck.tgs", FormatTGS},
		{"duck.TGS", FormatTGS},
		{"duck.lottie", FormatLottie},
		{"clip.webm", FormatWebm},
		{"still.webp", FormatWebp},
		{"anim.gif", FormatGif},
		{"photo.png", FormatUnknown},
		{"noext", FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMedia(tt.name, []byte("x"))
			assert.Equal(t, tt.want, m.Format)
			assert.Equal(t, tt.name, m.Name)
		})
	}
}

func TestRetag(t *testing.T) {
	m := NewMedia("stickers/duck.tgs", []byte("gzip"))

	out := m.Retag(FormatLottie)
	assert.Equal(t, "stickers/duck.lottie", out.Name)
	assert.Equal(t, FormatLottie, out.Format)

	// Retag works on a copy; the original stays consistent.
	assert.Equal(t, "stickers/duck.tgs", m.Name)
	assert.Equal(t, FormatTGS, m.Format)
}

func TestRetag_NameWithoutSuffix(t *testing.T) {
	m := NewMedia("duck", []byte("x"))
	out := m.Retag(FormatWebp)
	assert.Equal(t, "duck.webp", out.Name)
	assert.Equal(t, FormatWebp, out.Format)
}

func TestMimeType(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"clip.webm", "video/webm"},
		{"still.webp", "image/webp"},
		{"anim.gif", "image/gif"},
		{"photo.PNG", "image/png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Media{Name: tt.name}.MimeType()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Media{Name: "noext"}.MimeType()
	assert.ErrorIs(t, err, ErrNoMimeType)
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]byte("same bytes"))
	b := Fingerprint([]byte("same bytes"))
	c := Fingerprint([]byte("other bytes"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestRGBA_Hex(t *testing.T) {
	assert.Equal(t, "00000000", RGBA{}.Hex())
	assert.Equal(t, "ff00ff80", RGBA{R: 255, G: 0, B: 255, A: 128}.Hex())
}

func TestAnimationFormat_Normalize(t *testing.T) {
	assert.Equal(t, FormatWebp, AnimationFormat{}.Normalize().Format)
	assert.Equal(t, FormatWebp, AnimationFormat{Format: FormatWebm}.Normalize().Format)

	gif := AnimationFormat{Format: FormatGif, Transparent: RGBA{R: 1}}
	norm := gif.Normalize()
	assert.Equal(t, FormatGif, norm.Format)
	assert.Equal(t, uint8(1), norm.Transparent.R)
}
