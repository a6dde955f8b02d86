package ui

import (
	"image"
	"image/color"

	"github.com/rs/zerolog"
	"gocv.io/x/gocv"

	"roitracker/types"
)

var (
	Blue  = color.RGBA{B: 255}
	Green = color.RGBA{G: 255}
)

// Renderer draws selection markers and tracking annotations onto frames
type Renderer struct {
	config types.UIConfig
	log    zerolog.Logger
}

// NewRenderer creates a renderer
func NewRenderer(config types.UIConfig, log zerolog.Logger) *Renderer {
	return &Renderer{config: config, log: log}
}

// DrawMarker draws a circle at a selected corner point
func (r *Renderer) DrawMarker(frame gocv.Mat, p types.Point) {
	if err := gocv.Circle(&frame, p.ImagePoint(), r.config.MarkerRadius, Green, r.config.MarkerThickness); err != nil {
		r.log.Debug().Err(err).Msg("draw marker")
	}
}

// DrawTrack draws the rotated outline of a tracked object
func (r *Renderer) DrawTrack(frame gocv.Mat, track types.Track) {
	if len(track.Corners) < 2 {
		return
	}

	pts := make([]image.Point, len(track.Corners))
	for i, c := range track.Corners {
		pts[i] = c.ImagePoint()
	}

	pv := gocv.NewPointsVectorFromPoints([][]image.Point{pts})
	defer pv.Close()

	if err := gocv.Polylines(&frame, pv, true, Green, r.config.OutlineThickness); err != nil {
		r.log.Debug().Err(err).Msg("draw outline")
	}
}

// DrawTrail connects recent target centers
func (r *Renderer) DrawTrail(frame gocv.Mat, trail []types.Point) {
	for i := 1; i < len(trail); i++ {
		if err := gocv.Line(&frame, trail[i-1].ImagePoint(), trail[i].ImagePoint(), Blue, 1); err != nil {
			r.log.Debug().Err(err).Msg("draw trail")
			return
		}
	}
}
