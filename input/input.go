package input

import (
	"roitracker/types"
)

const (
	// KeySelect enters ROI selection mode
	KeySelect = 'i'
	// KeyQuit ends the session
	KeyQuit = 'q'
	// NoKey is what WaitKey reports when nothing was pressed
	NoKey = -1
)

// Action is what a key press asks the session to do
type Action int

const (
	ActionNone Action = iota
	ActionSelect
	ActionQuit
	// ActionAdvance is any other key; it ends the selection wait once four points exist
	ActionAdvance
)

func (a Action) String() string {
	switch a {
	case ActionSelect:
		return "select"
	case ActionQuit:
		return "quit"
	case ActionAdvance:
		return "advance"
	}
	return "none"
}

// Classify maps a raw key code to an action.
// Only the low byte is significant, like cv::waitKey(...) & 0xFF.
func Classify(key int) Action {
	if key < 0 {
		return ActionNone
	}

	switch key & 0xFF {
	case KeySelect:
		return ActionSelect
	case KeyQuit:
		return ActionQuit
	}
	return ActionAdvance
}

// ClassifyEvent returns the action of a key event, ActionNone for clicks
func ClassifyEvent(ev types.Event) Action {
	if ev.Kind != types.EventKey {
		return ActionNone
	}
	return Classify(ev.Key)
}

// CanEnterSelection reports whether the select key is honoured with the given number of pending points
func CanEnterSelection(pending int) bool {
	return pending < 4
}
