package pipeline

import "math"

// FitDimensions scales (width, height) to fit within the given bounds while
// preserving the aspect ratio. A bound of 0 means unconstrained. With both
// bounds set the tighter one wins, so the result never exceeds either.
// Dimensions are rounded to the nearest integer, halves away from zero.
//
// Source dimensions of 0 (unknown, not yet decoded) are returned unchanged
// rather than dividing by zero.
func FitDimensions(width, height, maxWidth, maxHeight int) (int, int) {
	if width <= 0 || height <= 0 {
		return width, height
	}

	aspectRatio := float64(width) / float64(height)

	switch {
	case maxWidth <= 0 && maxHeight <= 0:
		return width, height
	case maxWidth > 0 && maxHeight <= 0:
		newWidth := float64(maxWidth)
		return int(math.Round(newWidth)), int(math.Round(newWidth / aspectRatio))
	case maxWidth <= 0:
		newHeight := float64(maxHeight)
		return int(math.Round(newHeight * aspectRatio)), int(math.Round(newHeight))
	default:
		scaleW := float64(maxWidth) / float64(width)
		scaleH := float64(maxHeight) / float64(height)
		scale := math.Min(scaleW, scaleH)
		return int(math.Round(float64(width) * scale)), int(math.Round(float64(height) * scale))
	}
}
