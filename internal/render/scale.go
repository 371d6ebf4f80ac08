package render

// Letter paper geometry in CSS pixels at 96 DPI. The side margins eat
// roughly an inch of the 816px page width, leaving ~720px for content.
const (
	letterWidthPx = 816.0
	sideMarginsPx = 96.0
	usableWidthPx = letterWidthPx - sideMarginsPx

	// Chromium's print pipeline accepts scales down to 0.1. Content is
	// never scaled up, only shrunk to fit.
	minScale = 0.1
	maxScale = 1.0
)

// FitScale computes the uniform scale factor that makes content of the
// given width fit the usable page width. Non-positive widths (empty or
// unrenderable documents) and content already narrower than the page map
// to 1.0.
func FitScale(contentWidth float64) float64 {
	if contentWidth <= 0 {
		return maxScale
	}
	scale := usableWidthPx / contentWidth
	if scale > maxScale {
		return maxScale
	}
	if scale < minScale {
		return minScale
	}
	return scale
}
