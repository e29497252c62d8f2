package service

import (
	"math"

	"mushaf/internal/domain"
)

// ProgressToPage maps a physical position on the progress bar, 0 at the
// left edge and 1 at the right edge, to a page index. A right-to-left bar
// starts on the right: 1 is the first page and 0 the last.
func ProgressToPage(x float64, pageCount int, dir domain.Direction) int {
	if pageCount <= 0 {
		return 0
	}
	if math.IsNaN(x) {
		x = 0
	}
	x = math.Max(0, math.Min(1, x))
	if dir != domain.DirectionLTR {
		x = 1 - x
	}
	page := int(x * float64(pageCount-1))
	return max(0, min(page, pageCount-1))
}

// PageProgress returns the physical bar position of page; the inverse
// of ProgressToPage.
func PageProgress(page, pageCount int, dir domain.Direction) float64 {
	if pageCount <= 0 {
		return 0
	}
	page = max(0, min(page, pageCount-1))
	f := float64(page) / float64(max(pageCount-1, 1))
	if dir != domain.DirectionLTR {
		f = 1 - f
	}
	return f
}
