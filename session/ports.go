package session

import (
	"context"
	"time"

	"roitracker/types"
)

// FrameSource yields frames in order. Next returns io.EOF once the stream is
// over; a frame stays valid until the following Next call.
type FrameSource[F any] interface {
	Next() (F, error)
	Close() error
}

// Display renders frames and reports clicks and key presses.
// PollEvent waits at most timeout; a timeout <= 0 blocks until an event
// arrives, and false is returned if none will.
type Display[F any] interface {
	Show(frame F) error
	PollEvent(ctx context.Context, timeout time.Duration) (types.Event, bool)
	Close() error
}

// Vision is the image-analysis collaborator: frame copies, model building and tracking steps
type Vision[F, M any] interface {
	Snapshot(frame F) F
	BuildModel(frame F, box types.BoundingBox) (M, error)
	Step(frame F, model M, prior types.BoundingBox) (types.Track, error)
	ReleaseFrame(frame F)
	ReleaseModel(model M)
}

// Renderer annotates frames in place
type Renderer[F any] interface {
	DrawMarker(frame F, p types.Point)
	DrawTrack(frame F, track types.Track)
	DrawTrail(frame F, trail []types.Point)
}
