package selection

import (
	"roitracker/types"
)

// MaxPoints is the number of clicks that make up one selection
const MaxPoints = 4

// Selector collects the corner clicks of a region of interest
type Selector struct {
	points []types.Point
}

// NewSelector creates an empty selector
func NewSelector() *Selector {
	return &Selector{points: make([]types.Point, 0, MaxPoints)}
}

// Observe records a click if the mode is ModeSelecting and the set is not full.
// It returns the accepted point so the host can draw a marker for it.
func (s *Selector) Observe(p types.Point, mode types.SelectionMode) (types.Point, bool) {
	if mode != types.ModeSelecting || len(s.points) >= MaxPoints {
		return types.Point{}, false
	}
	s.points = append(s.points, p)
	return p, true
}

// Len returns the number of collected points
func (s *Selector) Len() int {
	return len(s.points)
}

// Full reports whether all corner points have been collected
func (s *Selector) Full() bool {
	return len(s.points) == MaxPoints
}

// Points returns a copy of the collected points in click order
func (s *Selector) Points() []types.Point {
	out := make([]types.Point, len(s.points))
	copy(out, s.points)
	return out
}

// Reset discards the collected points
func (s *Selector) Reset() {
	s.points = s.points[:0]
}

// DeriveBox reduces four corner clicks to a box.
//
// The top-left corner is the point with the smallest x+y and the bottom-right
// corner the point with the largest x+y. Ties are broken on x (smaller x for
// the top-left, larger x for the bottom-right) so click order never matters. This
// assumes the clicks are near the corners of an upright rectangle and is not a
// bounding box of the four points. When the two extremes are inverted on one
// axis the corners are swapped into canonical order. A zero-area result is
// returned together with ErrDegenerateBox.
func DeriveBox(points []types.Point) (types.BoundingBox, error) {
	if len(points) != MaxPoints {
		return types.BoundingBox{}, types.ErrIncompleteSelection
	}

	topLeft, bottomRight := points[0], points[0]
	for _, p := range points[1:] {
		s := p.X + p.Y
		if tl := topLeft.X + topLeft.Y; s < tl || (s == tl && p.X < topLeft.X) {
			topLeft = p
		}
		if br := bottomRight.X + bottomRight.Y; s > br || (s == br && p.X > bottomRight.X) {
			bottomRight = p
		}
	}

	box := types.BoundingBox{
		Left:   min(topLeft.X, bottomRight.X),
		Top:    min(topLeft.Y, bottomRight.Y),
		Right:  max(topLeft.X, bottomRight.X),
		Bottom: max(topLeft.Y, bottomRight.Y),
	}
	if box.Empty() {
		return box, types.ErrDegenerateBox
	}
	return box, nil
}
