package meanshift

import (
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// grid is an in-memory density with exact moments
type grid struct {
	w, h int
	v    []float64
}

func newGrid(w, h int) *grid {
	return &grid{w: w, h: h, v: make([]float64, w*h)}
}

func (g *grid) fill(r image.Rectangle, value float64) *grid {
	r = r.Intersect(g.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			g.v[y*g.w+x] = value
		}
	}
	return g
}

func (g *grid) Bounds() image.Rectangle {
	return image.Rect(0, 0, g.w, g.h)
}

func (g *grid) Moments(r image.Rectangle) (Moments, error) {
	var m00, m10, m01, m20, m11, m02 float64
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			v := g.v[y*g.w+x]
			lx, ly := float64(x-r.Min.X), float64(y-r.Min.Y)
			m00 += v
			m10 += v * lx
			m01 += v * ly
			m20 += v * lx * lx
			m11 += v * lx * ly
			m02 += v * ly * ly
		}
	}
	m := Moments{M00: m00, M10: m10, M01: m01}
	if m00 > 0 {
		m.Mu20 = m20 - m10*m10/m00
		m.Mu11 = m11 - m10*m01/m00
		m.Mu02 = m02 - m01*m01/m00
	}
	return m, nil
}

var defaultCriteria = Criteria{MaxIterations: 10, Epsilon: 1}

func TestCriteriaDone(t *testing.T) {
	c := Criteria{MaxIterations: 3, Epsilon: 1}
	require.False(t, c.Done(1, 4))
	require.False(t, c.Done(2, 1))
	require.True(t, c.Done(3, 4))
	require.True(t, c.Done(1, 0.5))
	require.True(t, Criteria{}.Done(1, 10))
}

func TestCamShiftSettlesOnStaticBlock(t *testing.T) {
	block := image.Rect(30, 30, 60, 60)
	g := newGrid(100, 100).fill(block, 255)

	window := block
	var prev image.Rectangle
	for i := 0; i < 200; i++ {
		res, err := CamShift(g, window, defaultCriteria)
		require.NoError(t, err)
		require.LessOrEqual(t, res.Iterations, defaultCriteria.MaxIterations)
		require.False(t, res.Window.Empty())

		if i > 0 {
			require.InDelta(t, prev.Min.X, res.Window.Min.X, 1, "step %d", i)
			require.InDelta(t, prev.Min.Y, res.Window.Min.Y, 1, "step %d", i)
			require.InDelta(t, prev.Max.X, res.Window.Max.X, 1, "step %d", i)
			require.InDelta(t, prev.Max.Y, res.Window.Max.Y, 1, "step %d", i)
		}
		require.InDelta(t, 44.5, res.CenterX, 1.5)
		require.InDelta(t, 44.5, res.CenterY, 1.5)

		prev = res.Window
		window = res.Window
	}
	require.Equal(t, image.Rect(26, 26, 63, 63), window)
}

func TestCamShiftFollowsMovedBlock(t *testing.T) {
	g := newGrid(120, 120).fill(image.Rect(38, 36, 68, 66), 255)

	window := image.Rect(30, 30, 60, 60)
	var res Result
	var err error
	for i := 0; i < 5; i++ {
		res, err = CamShift(g, window, defaultCriteria)
		require.NoError(t, err)
		require.LessOrEqual(t, res.Iterations, defaultCriteria.MaxIterations)
		window = res.Window
	}
	require.InDelta(t, 52.5, res.CenterX, 1.5)
	require.InDelta(t, 50.5, res.CenterY, 1.5)
}

func TestMeanShiftStopsAtIterationCap(t *testing.T) {
	// density rising to the right keeps pulling the window
	g := newGrid(200, 40)
	for x := 0; x < g.w; x++ {
		g.fill(image.Rect(x, 0, x+1, g.h), float64(x+1))
	}

	_, iterations, err := MeanShift(g, image.Rect(0, 10, 20, 30), Criteria{MaxIterations: 3, Epsilon: 1})
	require.NoError(t, err)
	require.Equal(t, 3, iterations)

	_, iterations, err = MeanShift(g, image.Rect(0, 10, 20, 30), defaultCriteria)
	require.NoError(t, err)
	require.LessOrEqual(t, iterations, defaultCriteria.MaxIterations)
}

func TestMeanShiftKeepsWindowOnEmptyDensity(t *testing.T) {
	g := newGrid(100, 100)
	window := image.Rect(10, 10, 40, 30)

	got, iterations, err := MeanShift(g, window, defaultCriteria)
	require.NoError(t, err)
	require.Zero(t, iterations)
	require.Equal(t, window, got)

	res, err := CamShift(g, window, defaultCriteria)
	require.NoError(t, err)
	require.Equal(t, window, res.Window)
}

func TestMeanShiftStaysInsideBounds(t *testing.T) {
	g := newGrid(100, 100).fill(image.Rect(90, 90, 100, 100), 255)

	got, _, err := MeanShift(g, image.Rect(70, 70, 95, 95), defaultCriteria)
	require.NoError(t, err)
	require.True(t, got.In(g.Bounds()), "window %v", got)
	require.Equal(t, 25, got.Dx())
	require.Equal(t, 25, got.Dy())
}

func TestCamShiftOrientation(t *testing.T) {
	wide := newGrid(100, 100).fill(image.Rect(20, 45, 80, 55), 255)
	res, err := CamShift(wide, image.Rect(20, 40, 80, 60), defaultCriteria)
	require.NoError(t, err)
	require.InDelta(t, 90, res.Angle, 1)
	require.Greater(t, res.Height, res.Width)
	require.Greater(t, res.Window.Dx(), res.Window.Dy())

	tall := newGrid(100, 100).fill(image.Rect(45, 20, 55, 80), 255)
	res, err = CamShift(tall, image.Rect(40, 20, 60, 80), defaultCriteria)
	require.NoError(t, err)
	// 0 and 180 are the same orientation
	require.InDelta(t, 0, math.Mod(res.Angle+90, 180)-90, 1, "angle %v", res.Angle)
	require.Greater(t, res.Height, res.Width)
	require.Greater(t, res.Window.Dy(), res.Window.Dx())
}

func TestCorners(t *testing.T) {
	r := Result{CenterX: 50, CenterY: 50, Width: 20, Height: 10}
	got := r.Corners()
	want := [4][2]float64{{40, 55}, {40, 45}, {60, 45}, {60, 55}}
	for i := range want {
		require.InDelta(t, want[i][0], got[i][0], 1e-9)
		require.InDelta(t, want[i][1], got[i][1], 1e-9)
	}
}
