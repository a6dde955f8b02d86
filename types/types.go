package types

import (
	"image"
	"time"

	"github.com/pkg/errors"
)

var (
	// ErrDegenerateBox is returned when a box has zero width or height
	ErrDegenerateBox = errors.New("bounding box has zero area")
	// ErrIncompleteSelection is returned when a box is derived from fewer than four points
	ErrIncompleteSelection = errors.New("selection needs exactly four points")
)

// Point is a pixel coordinate
type Point struct {
	X int
	Y int
}

// Pt is shorthand for Point{X: x, Y: y}
func Pt(x, y int) Point {
	return Point{X: x, Y: y}
}

// ImagePoint converts the point to an image.Point
func (p Point) ImagePoint() image.Point {
	return image.Pt(p.X, p.Y)
}

// BoundingBox is an axis-aligned pixel rectangle
type BoundingBox struct {
	Left   int
	Top    int
	Right  int
	Bottom int
}

// BoxFromRect converts an image.Rectangle to a BoundingBox
func BoxFromRect(r image.Rectangle) BoundingBox {
	r = r.Canon()
	return BoundingBox{Left: r.Min.X, Top: r.Min.Y, Right: r.Max.X, Bottom: r.Max.Y}
}

// Rect returns the box as an image.Rectangle
func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(b.Left, b.Top, b.Right, b.Bottom)
}

// Width returns the horizontal extent of the box
func (b BoundingBox) Width() int {
	return b.Right - b.Left
}

// Height returns the vertical extent of the box
func (b BoundingBox) Height() int {
	return b.Bottom - b.Top
}

// Empty reports whether the box has zero width or height
func (b BoundingBox) Empty() bool {
	return b.Width() <= 0 || b.Height() <= 0
}

// Center returns the integer center of the box
func (b BoundingBox) Center() Point {
	return Point{X: b.Left + b.Width()/2, Y: b.Top + b.Height()/2}
}

// SelectionMode tells whether clicks are routed to the ROI selector
type SelectionMode int

const (
	ModeIdle SelectionMode = iota
	ModeSelecting
)

func (m SelectionMode) String() string {
	if m == ModeSelecting {
		return "selecting"
	}
	return "idle"
}

// TrackingState tells whether a target box is present
type TrackingState int

const (
	NoTarget TrackingState = iota
	Tracking
)

func (s TrackingState) String() string {
	if s == Tracking {
		return "tracking"
	}
	return "no-target"
}

// State is the session controller's combined view of selection and tracking
type State int

const (
	StateNoTarget State = iota
	StateTracking
	StateSelecting
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateNoTarget:
		return "no-target"
	case StateTracking:
		return "tracking"
	case StateSelecting:
		return "selecting"
	case StateTerminated:
		return "terminated"
	}
	return "unknown"
}

// Track is the outcome of one tracker step
type Track struct {
	// Box seeds the next step
	Box BoundingBox
	// Corners of the rotated outline, in drawing order
	Corners []Point
	Center  Point
	Width   int
	Height  int
	Angle   float64
	// Iterations is how many mean-shift moves the search took
	Iterations int
}

// EventKind distinguishes display events
type EventKind int

const (
	EventKey EventKind = iota
	EventClick
)

// Event is a raw input event reported by the display surface
type Event struct {
	Kind  EventKind
	Key   int
	Point Point
}

// KeyEvent builds a key press event
func KeyEvent(key int) Event {
	return Event{Kind: EventKey, Key: key}
}

// ClickEvent builds a left click event
func ClickEvent(x, y int) Event {
	return Event{Kind: EventClick, Point: Pt(x, y)}
}

// TrackingConfig holds histogram and CamShift parameters
type TrackingConfig struct {
	HistogramBins int
	HueMin        float64
	HueMax        float64
	MaxIterations int
	Epsilon       float64
}

// DefaultTrackingConfig returns the default tracking configuration
func DefaultTrackingConfig() TrackingConfig {
	return TrackingConfig{
		HistogramBins: 16,
		HueMin:        0,
		HueMax:        180,
		MaxIterations: 10,
		Epsilon:       1,
	}
}

// UIConfig holds window and annotation settings
type UIConfig struct {
	WindowName       string
	MarkerRadius     int
	MarkerThickness  int
	OutlineThickness int
	TrailLength      int
	PollInterval     time.Duration
	EventQueueSize   int
}

// DefaultUIConfig returns the default UI configuration
func DefaultUIConfig() UIConfig {
	return UIConfig{
		WindowName:       "frame",
		MarkerRadius:     4,
		MarkerThickness:  2,
		OutlineThickness: 2,
		TrailLength:      64,
		PollInterval:     time.Millisecond,
		EventQueueSize:   16,
	}
}
