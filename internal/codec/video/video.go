package video

import (
	"bytes"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"sticker-processor/internal/pipeline"
)

const (
	DefaultFFmpeg  = "ffmpeg"
	DefaultFFprobe = "ffprobe"
)

// Transcoder converts webm video stickers to animated webp by shelling out
// to ffmpeg. It probes the source dimensions first and fits them to the
// requested bounds, so the size it reports back is the size it encoded.
type Transcoder struct {
	ffmpeg  string
	ffprobe string
}

func NewTranscoder(ffmpeg, ffprobe string) *Transcoder {
	if ffmpeg == "" {
		ffmpeg = DefaultFFmpeg
	}
	if ffprobe == "" {
		ffprobe = DefaultFFprobe
	}
	return &Transcoder{
		ffmpeg:  ffmpeg,
		ffprobe: ffprobe,
	}
}

func (t *Transcoder) Transcode(path string, maxWidth, maxHeight int) ([]byte, int, int, error) {
	srcWidth, srcHeight, err := t.probe(path)
	if err != nil {
		return nil, 0, 0, err
	}

	width, height := pipeline.FitDimensions(srcWidth, srcHeight, maxWidth, maxHeight)

	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-i", path,
		"-vf", fmt.Sprintf("scale=%d:%d", width, height),
		"-c:v", "libwebp",
		"-lossless", "0",
		"-q:v", "80",
		"-loop", "0",
		"-an",
		"-f", "webp",
		"-",
	}

	cmd := exec.Command(t.ffmpeg, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, 0, 0, fmt.Errorf("ffmpeg failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	if stdout.Len() == 0 {
		return nil, 0, 0, fmt.Errorf("ffmpeg produced no output")
	}

	return stdout.Bytes(), width, height, nil
}

func (t *Transcoder) probe(path string) (int, int, error) {
	args := []string{
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "csv=p=0",
		path,
	}

	cmd := exec.Command(t.ffprobe, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, 0, fmt.Errorf("ffprobe failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	parts := strings.Split(strings.TrimSpace(stdout.String()), ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("unexpected ffprobe output: %q", stdout.String())
	}

	width, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("unexpected ffprobe width: %q", parts[0])
	}
	height, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("unexpected ffprobe height: %q", parts[1])
	}

	return width, height, nil
}
