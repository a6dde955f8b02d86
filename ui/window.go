package ui

import (
	"context"
	"time"

	"gocv.io/x/gocv"

	"roitracker/input"
	"roitracker/types"
)

// cv::EVENT_LBUTTONDOWN
const leftButtonDown = 1

// pumpInterval bounds a single WaitKey call while blocking for input
const pumpInterval = 10 * time.Millisecond

// Window is the display surface. Mouse clicks are queued by the HighGUI
// callback and drained by PollEvent on the same goroutine.
type Window struct {
	window       *gocv.Window
	events       *input.Queue
	pollInterval time.Duration
}

// NewWindow opens a named window and registers the click handler
func NewWindow(config types.UIConfig) *Window {
	w := &Window{
		window:       gocv.NewWindow(config.WindowName),
		events:       input.NewQueue(config.EventQueueSize),
		pollInterval: config.PollInterval,
	}
	w.window.SetMouseHandler(w.onMouse, nil)
	return w
}

func (w *Window) onMouse(event int, x int, y int, flags int, userdata interface{}) {
	if event != leftButtonDown {
		return
	}
	w.events.PushClick(types.Pt(x, y))
}

// Show renders frame in the window
func (w *Window) Show(frame gocv.Mat) error {
	w.window.IMShow(frame)
	return nil
}

// PollEvent returns the next queued click or key press.
// A positive timeout waits at most that long; zero or negative blocks until an
// event arrives or ctx is done.
func (w *Window) PollEvent(ctx context.Context, timeout time.Duration) (types.Event, bool) {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	for {
		if ev, ok := w.events.Pop(); ok {
			return ev, true
		}
		if ctx.Err() != nil {
			return types.Event{}, false
		}

		delay := pumpInterval
		if timeout > 0 {
			delay = min(delay, time.Until(deadline))
		}
		// WaitKey also dispatches the mouse callback, so clicks made during
		// the wait are queued ahead of the key
		if key := w.window.WaitKey(max(int(delay/time.Millisecond), 1)); key != input.NoKey {
			w.events.PushKey(key)
		}
		if ev, ok := w.events.Pop(); ok {
			return ev, true
		}

		if timeout > 0 && !time.Now().Before(deadline) {
			return types.Event{}, false
		}
	}
}

// Close destroys the window
func (w *Window) Close() error {
	return w.window.Close()
}
