package tracking

import (
	"github.com/rs/zerolog"
	"gocv.io/x/gocv"

	"roitracker/appearance"
	"roitracker/types"
)

// Engine binds the appearance model and the tracker to gocv frames for the session controller
type Engine struct {
	cfg     types.TrackingConfig
	tracker *Tracker
	log     zerolog.Logger
}

// NewEngine creates an engine with the given tracking configuration
func NewEngine(cfg types.TrackingConfig, log zerolog.Logger) *Engine {
	return &Engine{
		cfg:     cfg,
		tracker: NewTracker(cfg),
		log:     log,
	}
}

// Snapshot copies frame so it outlives the capture buffer
func (e *Engine) Snapshot(frame gocv.Mat) gocv.Mat {
	return frame.Clone()
}

// BuildModel builds the hue histogram of box
func (e *Engine) BuildModel(frame gocv.Mat, box types.BoundingBox) (*appearance.Model, error) {
	m, err := appearance.Build(frame, box, e.cfg)
	if err != nil {
		return nil, err
	}
	if m.Empty() {
		e.log.Warn().Str("model", m.ID.String()).Msg("selected region has no hue signal, tracking will not move")
	} else {
		e.log.Debug().Str("model", m.ID.String()).Int("peak_bin", m.Peak()).Floats64("bins", m.Bins()).Msg("appearance model built")
	}
	return m, nil
}

// Step runs one tracking iteration
func (e *Engine) Step(frame gocv.Mat, model *appearance.Model, prior types.BoundingBox) (types.Track, error) {
	return e.tracker.Step(frame, model, prior)
}

// ReleaseFrame frees a frame created by Snapshot
func (e *Engine) ReleaseFrame(frame gocv.Mat) {
	if err := frame.Close(); err != nil {
		e.log.Debug().Err(err).Msg("release frame")
	}
}

// ReleaseModel frees a model created by BuildModel
func (e *Engine) ReleaseModel(model *appearance.Model) {
	if model == nil {
		return
	}
	if err := model.Close(); err != nil {
		e.log.Debug().Err(err).Msg("release model")
	}
}
