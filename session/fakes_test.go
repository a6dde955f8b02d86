package session

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"

	"roitracker/types"
)

type fakeFrame struct {
	id     int
	copyOf *fakeFrame
}

// origin follows snapshot chains back to the frame the source produced
func (f *fakeFrame) origin() *fakeFrame {
	for f.copyOf != nil {
		f = f.copyOf
	}
	return f
}

type fakeSource struct {
	total  int
	served int
	err    error
	closed bool
}

func (s *fakeSource) Next() (*fakeFrame, error) {
	if s.served >= s.total {
		if s.err != nil {
			return nil, s.err
		}
		return nil, io.EOF
	}
	s.served++
	return &fakeFrame{id: s.served}, nil
}

func (s *fakeSource) Close() error {
	s.closed = true
	return nil
}

// fakeDisplay replays a script. Each non-blocking poll consumes one entry, a
// nil entry meaning "nothing pressed"; blocking polls skip nil entries.
type fakeDisplay struct {
	script []*types.Event
	shown  []*fakeFrame
	closed bool
	// exhausted, if set, runs when a poll finds the script empty
	exhausted func()
}

func (d *fakeDisplay) idle(n int) *fakeDisplay {
	for i := 0; i < n; i++ {
		d.script = append(d.script, nil)
	}
	return d
}

func (d *fakeDisplay) key(k int) *fakeDisplay {
	ev := types.KeyEvent(k)
	d.script = append(d.script, &ev)
	return d
}

func (d *fakeDisplay) click(x, y int) *fakeDisplay {
	ev := types.ClickEvent(x, y)
	d.script = append(d.script, &ev)
	return d
}

func (d *fakeDisplay) corners(pts ...types.Point) *fakeDisplay {
	for _, p := range pts {
		d.click(p.X, p.Y)
	}
	return d
}

func (d *fakeDisplay) Show(frame *fakeFrame) error {
	d.shown = append(d.shown, frame)
	return nil
}

func (d *fakeDisplay) PollEvent(ctx context.Context, timeout time.Duration) (types.Event, bool) {
	for len(d.script) > 0 {
		next := d.script[0]
		d.script = d.script[1:]
		if next != nil {
			return *next, true
		}
		if timeout > 0 {
			return types.Event{}, false
		}
	}
	if d.exhausted != nil {
		d.exhausted()
	}
	return types.Event{}, false
}

func (d *fakeDisplay) Close() error {
	d.closed = true
	return nil
}

type fakeModel struct {
	box      types.BoundingBox
	source   *fakeFrame
	released bool
}

type fakeVision struct {
	snapshots int
	released  int

	builds    []types.BoundingBox
	models    []*fakeModel
	buildErrs []error

	priors  []types.BoundingBox
	stepFn  func(prior types.BoundingBox) (types.Track, error)
	stepped []*fakeModel
}

func (v *fakeVision) Snapshot(frame *fakeFrame) *fakeFrame {
	v.snapshots++
	return &fakeFrame{id: frame.id, copyOf: frame}
}

func (v *fakeVision) BuildModel(frame *fakeFrame, box types.BoundingBox) (*fakeModel, error) {
	if len(v.buildErrs) > 0 {
		err := v.buildErrs[0]
		v.buildErrs = v.buildErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	v.builds = append(v.builds, box)
	m := &fakeModel{box: box, source: frame.origin()}
	v.models = append(v.models, m)
	return m, nil
}

func (v *fakeVision) Step(frame *fakeFrame, model *fakeModel, prior types.BoundingBox) (types.Track, error) {
	v.priors = append(v.priors, prior)
	v.stepped = append(v.stepped, model)
	if v.stepFn != nil {
		return v.stepFn(prior)
	}
	return types.Track{Box: prior, Center: prior.Center()}, nil
}

func (v *fakeVision) ReleaseFrame(frame *fakeFrame) {
	v.released++
}

func (v *fakeVision) ReleaseModel(model *fakeModel) {
	model.released = true
}

type fakeRenderer struct {
	markers []types.Point
	tracks  []types.Track
	trails  []int
}

func (r *fakeRenderer) DrawMarker(frame *fakeFrame, p types.Point) {
	r.markers = append(r.markers, p)
}

func (r *fakeRenderer) DrawTrack(frame *fakeFrame, track types.Track) {
	r.tracks = append(r.tracks, track)
}

func (r *fakeRenderer) DrawTrail(frame *fakeFrame, trail []types.Point) {
	r.trails = append(r.trails, len(trail))
}

// converge moves every edge of the box one pixel toward goal per step
func converge(goal types.BoundingBox) func(types.BoundingBox) (types.Track, error) {
	toward := func(v, g int) int {
		switch {
		case v < g:
			return v + 1
		case v > g:
			return v - 1
		}
		return v
	}
	return func(prior types.BoundingBox) (types.Track, error) {
		next := types.BoundingBox{
			Left:   toward(prior.Left, goal.Left),
			Top:    toward(prior.Top, goal.Top),
			Right:  toward(prior.Right, goal.Right),
			Bottom: toward(prior.Bottom, goal.Bottom),
		}
		return types.Track{Box: next, Center: next.Center()}, nil
	}
}

var errBuild = errors.New("build failed")
