package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFitDimensions(t *testing.T) {
	tests := []struct {
		name       string
		width      int
		height     int
		maxWidth   int
		maxHeight  int
		wantWidth  int
		wantHeight int
	}{
		{"no bounds is identity", 1920, 1080, 0, 0, 1920, 1080},
		{"width bound only", 1920, 1080, 960, 0, 960, 540},
		{"height bound only", 1920, 1080, 0, 270, 480, 270},
		{"both bounds, tighter wins", 1920, 1080, 500, 500, 500, 281},
		{"square within square", 512, 512, 256, 256, 256, 256},
		{"bounds larger than source scale up", 100, 50, 200, 0, 200, 100},
		{"portrait with both bounds", 1080, 1920, 500, 500, 281, 500},
		{"rounding half away from zero", 5, 4, 0, 2, 3, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotWidth, gotHeight := FitDimensions(tt.width, tt.height, tt.maxWidth, tt.maxHeight)
			assert.Equal(t, tt.wantWidth, gotWidth)
			assert.Equal(t, tt.wantHeight, gotHeight)
		})
	}
}

func TestFitDimensions_ZeroSource(t *testing.T) {
	// Unknown dimensions pass through instead of dividing by zero.
	w, h := FitDimensions(0, 0, 500, 500)
	assert.Equal(t, 0, w)
	assert.Equal(t, 0, h)

	w, h = FitDimensions(100, 0, 500, 500)
	assert.Equal(t, 100, w)
	assert.Equal(t, 0, h)
}
