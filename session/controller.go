package session

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"roitracker/input"
	"roitracker/selection"
	"roitracker/types"
)

// target is the active box/model pair. It is replaced as a whole, never mutated.
type target[M any] struct {
	model M
	box   types.BoundingBox
}

// Controller runs the frame loop and owns the selection and tracking state.
// It is not safe for concurrent use; Run drives everything from one goroutine.
type Controller[F, M any] struct {
	source   FrameSource[F]
	display  Display[F]
	vision   Vision[F, M]
	renderer Renderer[F]
	config   types.UIConfig
	log      zerolog.Logger

	selector *selection.Selector
	mode     types.SelectionMode
	target   *target[M]
	trail    []types.Point

	// selection sub-state: a clean copy for the model and a copy to draw markers on
	snapshot   F
	canvas     F
	hasCapture bool

	terminated bool
	// err is what Run returns once terminated
	err        error
	frames     int
	selections int

	// OnTransition, if set, is called after every state change
	OnTransition func(from, to types.State)
}

// NewController wires a session. Nothing runs until Run is called.
func NewController[F, M any](source FrameSource[F], display Display[F], vision Vision[F, M], renderer Renderer[F], config types.UIConfig, log zerolog.Logger) *Controller[F, M] {
	return &Controller[F, M]{
		source:   source,
		display:  display,
		vision:   vision,
		renderer: renderer,
		config:   config,
		log:      log,
		selector: selection.NewSelector(),
		trail:    make([]types.Point, 0, config.TrailLength),
	}
}

// Run processes frames until the quit key, the end of the stream or ctx is done.
// The frame source and display are closed before Run returns.
func (c *Controller[F, M]) Run(ctx context.Context) error {
	defer c.shutdown()
	c.log.Info().Msg("press 'i' to select a region, 'q' to quit")

	for !c.terminated {
		prev := c.State()
		if err := ctx.Err(); err != nil {
			c.log.Info().Err(err).Msg("session cancelled")
			c.terminated = true
			c.notify(prev)
			return err
		}
		c.step(ctx)
		c.notify(prev)
	}
	return c.err
}

// State returns the current controller state
func (c *Controller[F, M]) State() types.State {
	switch {
	case c.terminated:
		return types.StateTerminated
	case c.mode == types.ModeSelecting:
		return types.StateSelecting
	case c.target != nil:
		return types.StateTracking
	}
	return types.StateNoTarget
}

// TrackingState reports whether a target box is present
func (c *Controller[F, M]) TrackingState() types.TrackingState {
	if c.target != nil {
		return types.Tracking
	}
	return types.NoTarget
}

// Mode returns the selection mode
func (c *Controller[F, M]) Mode() types.SelectionMode {
	return c.mode
}

// Box returns the current target box, if any
func (c *Controller[F, M]) Box() (types.BoundingBox, bool) {
	if c.target == nil {
		return types.BoundingBox{}, false
	}
	return c.target.box, true
}

// Points returns the corner points collected so far in the current selection
func (c *Controller[F, M]) Points() []types.Point {
	return c.selector.Points()
}

// Frames returns the number of frames read from the source
func (c *Controller[F, M]) Frames() int {
	return c.frames
}

// Selections returns the number of completed selections
func (c *Controller[F, M]) Selections() int {
	return c.selections
}

func (c *Controller[F, M]) notify(prev types.State) {
	next := c.State()
	if next == prev {
		return
	}
	c.log.Debug().Stringer("from", prev).Stringer("to", next).Msg("state changed")
	if c.OnTransition != nil {
		c.OnTransition(prev, next)
	}
}

func (c *Controller[F, M]) step(ctx context.Context) {
	if c.mode == types.ModeSelecting {
		c.selectStep(ctx)
		return
	}

	frame, err := c.source.Next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			c.log.Info().Int("frames", c.frames).Msg("end of stream")
		} else {
			c.log.Warn().Err(err).Int("frames", c.frames).Msg("frame read failed")
		}
		c.terminated = true
		return
	}
	c.frames++
	c.frameStep(ctx, frame)
}

// frameStep handles one frame outside of selection
func (c *Controller[F, M]) frameStep(ctx context.Context, frame F) {
	view := frame
	if c.target != nil {
		// annotate a copy so a later snapshot of frame stays clean
		view = c.vision.Snapshot(frame)
		defer c.vision.ReleaseFrame(view)
		c.track(frame, view)
	}
	c.show(view)

	ev, ok := c.display.PollEvent(ctx, c.config.PollInterval)
	if !ok {
		return
	}

	switch input.ClassifyEvent(ev) {
	case input.ActionQuit:
		c.log.Info().Msg("quit requested")
		c.terminated = true
	case input.ActionSelect:
		if input.CanEnterSelection(c.selector.Len()) {
			c.beginSelection(frame)
		}
	case input.ActionNone:
		if ev.Kind == types.EventClick {
			// dropped unless selecting
			c.selector.Observe(ev.Point, c.mode)
		}
	}
}

func (c *Controller[F, M]) track(frame, view F) {
	t := c.target
	track, err := c.vision.Step(frame, t.model, t.box)
	if err != nil {
		c.log.Debug().Err(err).Msg("tracking step failed, keeping previous box")
		return
	}
	c.target = &target[M]{model: t.model, box: track.Box}

	if c.config.TrailLength > 0 {
		if len(c.trail) == c.config.TrailLength {
			c.trail = append(c.trail[:0], c.trail[1:]...)
		}
		c.trail = append(c.trail, track.Center)
	}

	c.renderer.DrawTrack(view, track)
	c.renderer.DrawTrail(view, c.trail)
}

func (c *Controller[F, M]) beginSelection(frame F) {
	c.selector.Reset()
	c.snapshot = c.vision.Snapshot(frame)
	c.canvas = c.vision.Snapshot(frame)
	c.hasCapture = true
	c.mode = types.ModeSelecting

	c.log.Info().Msg("selection mode: click the four corners of the object, then press any key")
	c.show(c.canvas)
}

// selectStep blocks for one input event while selecting
func (c *Controller[F, M]) selectStep(ctx context.Context) {
	ev, ok := c.display.PollEvent(ctx, 0)
	if !ok && ctx.Err() != nil {
		c.log.Info().Err(ctx.Err()).Int("points", c.selector.Len()).Msg("session cancelled during selection, discarding points")
		c.abandonSelection()
		c.terminated = true
		c.err = ctx.Err()
		return
	}
	if !ok {
		c.log.Info().Int("points", c.selector.Len()).Msg("input closed during selection, discarding points")
		c.abandonSelection()
		c.terminated = true
		return
	}

	if ev.Kind == types.EventClick {
		if p, ok := c.selector.Observe(ev.Point, c.mode); ok {
			c.renderer.DrawMarker(c.canvas, p)
			c.log.Debug().Int("x", p.X).Int("y", p.Y).Int("points", c.selector.Len()).Msg("corner selected")
			c.show(c.canvas)
		}
		return
	}

	switch {
	case input.ClassifyEvent(ev) == input.ActionQuit:
		c.log.Info().Int("points", c.selector.Len()).Msg("quit during selection, discarding points")
		c.abandonSelection()
		c.terminated = true
	case c.selector.Full():
		c.completeSelection()
	default:
		c.show(c.canvas)
	}
}

func (c *Controller[F, M]) completeSelection() {
	points := c.selector.Points()
	c.selector.Reset()

	box, err := selection.DeriveBox(points)
	if err != nil {
		c.rejectSelection(points, box, err)
		return
	}
	model, err := c.vision.BuildModel(c.snapshot, box)
	if err != nil {
		c.rejectSelection(points, box, err)
		return
	}

	previous := c.target
	c.target = &target[M]{model: model, box: box}
	if previous != nil {
		c.vision.ReleaseModel(previous.model)
	}
	c.trail = c.trail[:0]
	c.selections++

	c.releaseCapture()
	c.mode = types.ModeIdle

	c.log.Info().
		Int("selection", c.selections).
		Int("left", box.Left).Int("top", box.Top).
		Int("right", box.Right).Int("bottom", box.Bottom).
		Msg("tracking started")
}

// rejectSelection discards the points and lets the user click again
func (c *Controller[F, M]) rejectSelection(points []types.Point, box types.BoundingBox, err error) {
	c.log.Warn().Err(err).Interface("points", points).Interface("box", box).Msg("selection rejected, click the four corners again")

	c.vision.ReleaseFrame(c.canvas)
	c.canvas = c.vision.Snapshot(c.snapshot)
	c.show(c.canvas)
}

func (c *Controller[F, M]) abandonSelection() {
	c.selector.Reset()
	c.releaseCapture()
	c.mode = types.ModeIdle
}

func (c *Controller[F, M]) releaseCapture() {
	if !c.hasCapture {
		return
	}
	var zero F
	c.vision.ReleaseFrame(c.snapshot)
	c.vision.ReleaseFrame(c.canvas)
	c.snapshot, c.canvas = zero, zero
	c.hasCapture = false
}

func (c *Controller[F, M]) show(frame F) {
	if err := c.display.Show(frame); err != nil {
		c.log.Warn().Err(err).Msg("show frame")
	}
}

func (c *Controller[F, M]) shutdown() {
	if c.mode == types.ModeSelecting {
		c.abandonSelection()
	}
	c.terminated = true

	if c.target != nil {
		c.vision.ReleaseModel(c.target.model)
		c.target = nil
	}

	if err := c.source.Close(); err != nil {
		c.log.Warn().Err(err).Msg("close frame source")
	}
	if err := c.display.Close(); err != nil {
		c.log.Warn().Err(err).Msg("close display")
	}
	c.log.Info().Int("frames", c.frames).Int("selections", c.selections).Msg("session ended")
}
