package utils

import (
	"image"
)

// ClampToFrame intersects rect with the frame bounds.
// The result may be empty when rect lies entirely outside the frame.
func ClampToFrame(rect image.Rectangle, imgWidth, imgHeight int) image.Rectangle {
	rect = rect.Canon()

	if rect.Min.X < 0 {
		rect.Min.X = 0
	}
	if rect.Min.Y < 0 {
		rect.Min.Y = 0
	}
	if rect.Max.X > imgWidth {
		rect.Max.X = imgWidth
	}
	if rect.Max.Y > imgHeight {
		rect.Max.Y = imgHeight
	}

	if rect.Min.X >= rect.Max.X || rect.Min.Y >= rect.Max.Y {
		return image.Rectangle{}
	}
	return rect
}

// Within reports whether a and b differ by at most tol pixels on every edge
func Within(a, b image.Rectangle, tol int) bool {
	return abs(a.Min.X-b.Min.X) <= tol &&
		abs(a.Min.Y-b.Min.Y) <= tol &&
		abs(a.Max.X-b.Max.X) <= tol &&
		abs(a.Max.Y-b.Max.Y) <= tol
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
