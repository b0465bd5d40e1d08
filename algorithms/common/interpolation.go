package common

import (
	"math"
)

// InterpolationType defines how off-grid tensor samples are resolved
type InterpolationType int

const (
	Bilinear InterpolationType = iota
	Nearest
)

func (it InterpolationType) String() string {
	switch it {
	case Bilinear:
		return "bilinear"
	case Nearest:
		return "nearest"
	default:
		return "unknown"
	}
}

// Interpolator samples a tensor plane at fractional (y, x) coordinates
type Interpolator struct {
	method InterpolationType
}

// NewInterpolator creates a new interpolator
func NewInterpolator(method InterpolationType) *Interpolator {
	return &Interpolator{
		method: method,
	}
}

// Sample reads plane (b, c) of t at (y, x). Coordinates outside the
// plane are clamped to the border.
func (interp *Interpolator) Sample(t *Tensor, b, c int, y, x float64) float64 {
	switch interp.method {
	case Nearest:
		return interp.nearestSample(t, b, c, y, x)
	default:
		return interp.bilinearSample(t, b, c, y, x)
	}
}

func (interp *Interpolator) nearestSample(t *Tensor, b, c int, y, x float64) float64 {
	iy := clampIndex(int(math.Round(y)), t.Height())
	ix := clampIndex(int(math.Round(x)), t.Width())
	return t.At(b, iy, ix, c)
}

// bilinearSample blends the four neighbours of (y, x). The lower neighbour
// is clamped to [0, size-2] and the blend weight to [0, 1], so queries past
// the edge reproduce the edge value.
func (interp *Interpolator) bilinearSample(t *Tensor, b, c int, y, x float64) float64 {
	y0, ay := floorAndAlpha(y, t.Height())
	x0, ax := floorAndAlpha(x, t.Width())
	y1 := min(y0+1, t.Height()-1)
	x1 := min(x0+1, t.Width()-1)

	topLeft := t.At(b, y0, x0, c)
	topRight := t.At(b, y0, x1, c)
	bottomLeft := t.At(b, y1, x0, c)
	bottomRight := t.At(b, y1, x1, c)

	// weighted form keeps on-grid reads exact
	top := topLeft*(1-ax) + topRight*ax
	bottom := bottomLeft*(1-ax) + bottomRight*ax
	return top*(1-ay) + bottom*ay
}

func floorAndAlpha(q float64, size int) (int, float64) {
	if size < 2 {
		return 0, 0
	}
	f := math.Floor(q)
	f = math.Max(0, math.Min(f, float64(size-2)))
	alpha := math.Max(0, math.Min(q-f, 1))
	return int(f), alpha
}

func clampIndex(i, size int) int {
	if i < 0 {
		return 0
	}
	if i >= size {
		return size - 1
	}
	return i
}
