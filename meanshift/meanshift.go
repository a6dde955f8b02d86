package meanshift

import (
	"image"
	"math"
)

// tolerance is how far CamShift looks beyond the converged window when sizing the object
const tolerance = 10

// minMass is the zeroth moment below which a region counts as empty
const minMass = 1e-9

// Moments are the spatial and central moments of a region, with coordinates
// relative to the region's top-left corner
type Moments struct {
	M00  float64
	M10  float64
	M01  float64
	Mu20 float64
	Mu11 float64
	Mu02 float64
}

// Density is a non-negative likelihood map, such as a histogram back-projection
type Density interface {
	Bounds() image.Rectangle
	Moments(r image.Rectangle) (Moments, error)
}

// Criteria stops the search after MaxIterations iterations or once the window
// moves less than Epsilon pixels, whichever comes first
type Criteria struct {
	MaxIterations int
	Epsilon       float64
}

// Done is the termination predicate, checked once per iteration
func (c Criteria) Done(iterations int, shift float64) bool {
	return iterations >= max(c.MaxIterations, 1) || shift < c.Epsilon
}

// Result is the outcome of a CamShift search
type Result struct {
	// Window seeds the next search
	Window image.Rectangle

	CenterX float64
	CenterY float64
	Width   float64
	Height  float64
	// Angle in degrees, [0,180)
	Angle float64

	Iterations int
}

// MeanShift moves window to the centroid of the density until the criteria
// are met. It returns the final window and the number of iterations run.
func MeanShift(d Density, window image.Rectangle, c Criteria) (image.Rectangle, int, error) {
	bounds := d.Bounds()
	cur := window.Canon()
	iterations := 0

	for {
		cur = fit(cur, bounds)
		m, err := d.Moments(cur)
		if err != nil {
			return cur, iterations, err
		}
		if math.Abs(m.M00) < minMass {
			break
		}

		dx := roundEven(m.M10/m.M00 - float64(cur.Dx())*0.5)
		dy := roundEven(m.M01/m.M00 - float64(cur.Dy())*0.5)

		nx := clamp(cur.Min.X+dx, bounds.Min.X, bounds.Max.X-cur.Dx())
		ny := clamp(cur.Min.Y+dy, bounds.Min.Y, bounds.Max.Y-cur.Dy())
		move := image.Pt(nx-cur.Min.X, ny-cur.Min.Y)
		cur = cur.Add(move)
		iterations++

		if c.Done(iterations, math.Hypot(float64(move.X), float64(move.Y))) {
			break
		}
	}
	return cur, iterations, nil
}

// CamShift runs MeanShift, then fits an oriented box to the density around
// the converged window and resizes the window to that box.
func CamShift(d Density, window image.Rectangle, c Criteria) (Result, error) {
	bounds := d.Bounds()

	win, iterations, err := MeanShift(d, window, c)
	if err != nil {
		return Result{Window: win, Iterations: iterations}, err
	}

	search := win.Inset(-tolerance).Intersect(bounds)
	m, err := d.Moments(search)
	if err != nil {
		return Result{Window: win, Iterations: iterations}, err
	}
	if math.Abs(m.M00) < minMass {
		return Result{Window: win, Iterations: iterations}, nil
	}

	inv := 1 / m.M00
	xc := roundEven(m.M10*inv + float64(search.Min.X))
	yc := roundEven(m.M01*inv + float64(search.Min.Y))

	a := m.Mu20 * inv
	b := m.Mu11 * inv
	cc := m.Mu02 * inv
	square := math.Sqrt(4*b*b + (a-cc)*(a-cc))
	theta := math.Atan2(2*b, a-cc+square)

	cs, sn := math.Cos(theta), math.Sin(theta)
	rotateA := math.Max(0, cs*cs*m.Mu20+2*cs*sn*m.Mu11+sn*sn*m.Mu02)
	rotateC := math.Max(0, sn*sn*m.Mu20-2*cs*sn*m.Mu11+cs*cs*m.Mu02)
	length := math.Sqrt(rotateA*inv) * 4
	width := math.Sqrt(rotateC*inv) * 4

	if length < width {
		length, width = width, length
		cs, sn = sn, cs
		theta = math.Pi*0.5 - theta
	}

	w := max(roundEven(math.Abs(length*cs)), roundEven(math.Abs(width*sn))) + 2
	w = min(w, (bounds.Max.X-xc)*2)
	h := max(roundEven(math.Abs(length*sn)), roundEven(math.Abs(width*cs))) + 2
	h = min(h, (bounds.Max.Y-yc)*2)

	x := max(bounds.Min.X, xc-w/2)
	y := max(bounds.Min.Y, yc-h/2)
	w = min(bounds.Max.X-x, w)
	h = min(bounds.Max.Y-y, h)
	next := image.Rect(x, y, x+w, y+h)

	angle := (math.Pi*0.5 + theta) * 180 / math.Pi
	for angle < 0 {
		angle += 360
	}
	for angle >= 360 {
		angle -= 360
	}
	if angle >= 180 {
		angle -= 180
	}

	return Result{
		Window:     next,
		CenterX:    float64(x) + float64(w)*0.5,
		CenterY:    float64(y) + float64(h)*0.5,
		Width:      width,
		Height:     length,
		Angle:      angle,
		Iterations: iterations,
	}, nil
}

// Corners returns the four vertices of the oriented box in drawing order
func (r Result) Corners() [4][2]float64 {
	rad := r.Angle * math.Pi / 180
	b := math.Cos(rad) * 0.5
	a := math.Sin(rad) * 0.5

	p0 := [2]float64{r.CenterX - a*r.Height - b*r.Width, r.CenterY + b*r.Height - a*r.Width}
	p1 := [2]float64{r.CenterX + a*r.Height - b*r.Width, r.CenterY - b*r.Height - a*r.Width}
	p2 := [2]float64{2*r.CenterX - p0[0], 2*r.CenterY - p0[1]}
	p3 := [2]float64{2*r.CenterX - p1[0], 2*r.CenterY - p1[1]}
	return [4][2]float64{p0, p1, p2, p3}
}

// fit keeps a window inside bounds and at least one pixel wide and high
func fit(r, bounds image.Rectangle) image.Rectangle {
	r = r.Intersect(bounds)
	if r.Empty() {
		c := image.Pt((bounds.Min.X+bounds.Max.X)/2, (bounds.Min.Y+bounds.Max.Y)/2)
		return image.Rectangle{Min: c, Max: c.Add(image.Pt(1, 1))}.Intersect(bounds)
	}
	return r
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// roundEven rounds half to even, like cvRound
func roundEven(v float64) int {
	return int(math.RoundToEven(v))
}
