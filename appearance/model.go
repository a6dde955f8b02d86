package appearance

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/floats"

	"roitracker/types"
	"roitracker/utils"
)

// Model is the hue histogram of a selected region.
// It is never modified after Build; a new selection produces a new Model.
type Model struct {
	ID  uuid.UUID
	Box types.BoundingBox

	hist gocv.Mat
	bins []float64
	cfg  types.TrackingConfig
}

// Build computes the appearance model of box inside frame.
// The box is clipped to the frame first and rejected with ErrDegenerateBox if nothing is left.
func Build(frame gocv.Mat, box types.BoundingBox, cfg types.TrackingConfig) (*Model, error) {
	if frame.Empty() {
		return nil, errors.New("cannot build model from an empty frame")
	}

	rect := utils.ClampToFrame(box.Rect(), frame.Cols(), frame.Rows())
	if rect.Empty() {
		return nil, errors.Wrapf(types.ErrDegenerateBox, "box %v in %dx%d frame", box.Rect(), frame.Cols(), frame.Rows())
	}

	roi := frame.Region(rect)
	defer roi.Close()

	hsv := gocv.NewMat()
	defer hsv.Close()
	if err := gocv.CvtColor(roi, &hsv, gocv.ColorBGRToHSV); err != nil {
		return nil, errors.Wrap(err, "convert region to hsv")
	}

	mask := gocv.NewMat()
	defer mask.Close()

	hist := gocv.NewMat()
	if err := gocv.CalcHist([]gocv.Mat{hsv}, []int{0}, mask, &hist, []int{cfg.HistogramBins}, []float64{cfg.HueMin, cfg.HueMax}, false); err != nil {
		hist.Close()
		return nil, errors.Wrap(err, "hue histogram")
	}
	if err := gocv.Normalize(hist, &hist, 0, 255, gocv.NormMinMax); err != nil {
		hist.Close()
		return nil, errors.Wrap(err, "normalize histogram")
	}

	if hist.Empty() || hist.Rows() != cfg.HistogramBins {
		hist.Close()
		return nil, errors.Errorf("unexpected histogram shape %dx%d", hist.Rows(), hist.Cols())
	}

	bins := make([]float64, cfg.HistogramBins)
	for i := range bins {
		bins[i] = float64(hist.GetFloatAt(i, 0))
	}

	return &Model{
		ID:   uuid.New(),
		Box:  types.BoxFromRect(rect),
		hist: hist,
		bins: bins,
		cfg:  cfg,
	}, nil
}

// Histogram returns the normalized histogram for back-projection. Callers must not modify it.
func (m *Model) Histogram() gocv.Mat {
	return m.hist
}

// Bins returns a copy of the normalized bin values
func (m *Model) Bins() []float64 {
	out := make([]float64, len(m.bins))
	copy(out, m.bins)
	return out
}

// Empty reports whether the region had no hue signal at all
func (m *Model) Empty() bool {
	return floats.Sum(m.bins) == 0
}

// Peak returns the index of the strongest bin
func (m *Model) Peak() int {
	return floats.MaxIdx(m.bins)
}

// Config returns the tracking configuration the model was built with
func (m *Model) Config() types.TrackingConfig {
	return m.cfg
}

// Close releases the histogram
func (m *Model) Close() error {
	return m.hist.Close()
}
