package lottie

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"sticker-processor/internal/domain"
	"sticker-processor/internal/pipeline"
)

const DefaultBinary = "lottieconverter"

// Renderer drives an external lottieconverter-style binary. The native
// animation dimensions are read from the Lottie JSON header up front, so
// the target size can be computed before the render runs.
type Renderer struct {
	binary string
}

func NewRenderer(binary string) *Renderer {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Renderer{binary: binary}
}

func (r *Renderer) Load(path string) (pipeline.Animation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read animation: %w", err)
	}

	var header struct {
		Width  float64 `json:"w"`
		Height float64 `json:"h"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("failed to parse animation: %w", err)
	}
	if header.Width <= 0 || header.Height <= 0 {
		return nil, fmt.Errorf("animation has no dimensions")
	}

	return &animation{
		binary: r.binary,
		path:   path,
		width:  int(header.Width),
		height: int(header.Height),
	}, nil
}

type animation struct {
	binary string
	path   string
	width  int
	height int
}

func (a *animation) Size() (int, int) {
	return a.width, a.height
}

func (a *animation) RenderWebP(width, height int) ([]byte, error) {
	return a.render("webp", width, height)
}

func (a *animation) RenderGIF(width, height int, transparent domain.RGBA) ([]byte, error) {
	return a.render("gif", width, height, transparent.Hex())
}

func (a *animation) render(format string, width, height int, extra ...string) ([]byte, error) {
	args := []string{a.path, "-", format, fmt.Sprintf("%dx%d", width, height)}
	args = append(args, extra...)

	cmd := exec.Command(a.binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s failed: %w: %s", a.binary, err, strings.TrimSpace(stderr.String()))
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("%s produced no output", a.binary)
	}

	return stdout.Bytes(), nil
}
