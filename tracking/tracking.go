package tracking

import (
	"image"
	"math"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"roitracker/appearance"
	"roitracker/meanshift"
	"roitracker/types"
	"roitracker/utils"
)

// Tracker re-estimates the target box on each frame with back-projection and CamShift.
// It keeps no state between calls; the caller feeds back the returned box.
type Tracker struct {
	cfg      types.TrackingConfig
	criteria meanshift.Criteria
}

// NewTracker creates a tracker.
// The search stops when the window moves less than Epsilon pixels or after MaxIterations, whichever comes first.
func NewTracker(cfg types.TrackingConfig) *Tracker {
	return &Tracker{
		cfg:      cfg,
		criteria: meanshift.Criteria{MaxIterations: cfg.MaxIterations, Epsilon: cfg.Epsilon},
	}
}

// BackProject computes the per-pixel likelihood of frame under model
func (t *Tracker) BackProject(frame gocv.Mat, model *appearance.Model, dst *gocv.Mat) error {
	hsv := gocv.NewMat()
	defer hsv.Close()
	if err := gocv.CvtColor(frame, &hsv, gocv.ColorBGRToHSV); err != nil {
		return errors.Wrap(err, "convert frame to hsv")
	}

	err := gocv.CalcBackProject([]gocv.Mat{hsv}, []int{0}, model.Histogram(), dst, []float64{t.cfg.HueMin, t.cfg.HueMax}, true)
	return errors.Wrap(err, "back-project hue histogram")
}

// Step runs one CamShift search seeded at prior and returns the rotated outline
// together with the search window for the next call.
func (t *Tracker) Step(frame gocv.Mat, model *appearance.Model, prior types.BoundingBox) (types.Track, error) {
	if frame.Empty() {
		return types.Track{Box: prior}, errors.New("empty frame")
	}
	if model == nil {
		return types.Track{Box: prior}, errors.New("no appearance model")
	}

	window := utils.ClampToFrame(prior.Rect(), frame.Cols(), frame.Rows())
	if window.Empty() {
		return types.Track{Box: prior}, errors.Wrapf(types.ErrDegenerateBox, "search window %v outside frame", prior.Rect())
	}

	backProj := gocv.NewMat()
	defer backProj.Close()
	if err := t.BackProject(frame, model, &backProj); err != nil {
		return types.Track{Box: prior}, err
	}

	res, err := meanshift.CamShift(matDensity{backProj}, window, t.criteria)
	if err != nil {
		return types.Track{Box: prior}, errors.Wrap(err, "camshift")
	}

	next := utils.ClampToFrame(res.Window, frame.Cols(), frame.Rows())
	if next.Empty() {
		next = window
	}

	var corners []types.Point
	if res.Width > 0 || res.Height > 0 {
		for _, c := range res.Corners() {
			corners = append(corners, types.Pt(round(c[0]), round(c[1])))
		}
	}

	return types.Track{
		Box:        types.BoxFromRect(next),
		Corners:    corners,
		Center:     types.Pt(round(res.CenterX), round(res.CenterY)),
		Width:      round(res.Width),
		Height:     round(res.Height),
		Angle:      res.Angle,
		Iterations: res.Iterations,
	}, nil
}

// matDensity exposes a single-channel likelihood map to the mean-shift search
type matDensity struct {
	mat gocv.Mat
}

func (d matDensity) Bounds() image.Rectangle {
	return image.Rect(0, 0, d.mat.Cols(), d.mat.Rows())
}

func (d matDensity) Moments(r image.Rectangle) (meanshift.Moments, error) {
	if r.Empty() || !r.In(d.Bounds()) {
		return meanshift.Moments{}, errors.Errorf("region %v outside %v", r, d.Bounds())
	}
	region := d.mat.Region(r)
	defer region.Close()

	m := gocv.Moments(region, false)
	return meanshift.Moments{
		M00:  m["m00"],
		M10:  m["m10"],
		M01:  m["m01"],
		Mu20: m["mu20"],
		Mu11: m["mu11"],
		Mu02: m["mu02"],
	}, nil
}

func round(v float64) int {
	return int(math.Round(v))
}
