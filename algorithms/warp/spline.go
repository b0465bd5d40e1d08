package warp

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrSingular is returned when the spline system has no unique solution,
// typically because control points coincide or are all collinear.
var ErrSingular = errors.New("spline system is singular")

const phiEpsilon = 1e-10

// Point is a location (or displacement) in image coordinates
type Point struct {
	Y float64 `json:"y"`
	X float64 `json:"x"`
}

// Sub returns p - o
func (p Point) Sub(o Point) Point {
	return Point{Y: p.Y - o.Y, X: p.X - o.X}
}

func squaredDistance(a, b Point) float64 {
	dy := a.Y - b.Y
	dx := a.X - b.X
	return dy*dy + dx*dx
}

// phi is the polyharmonic radial basis applied to a squared distance r.
// Order 2 is the thin-plate kernel r*log(r)/2.
func phi(r float64, order int) float64 {
	switch {
	case order == 1:
		return math.Sqrt(r)
	case order == 2:
		return 0.5 * r * math.Log(math.Max(r, phiEpsilon))
	case order == 4:
		return 0.5 * r * r * math.Log(math.Max(r, phiEpsilon))
	case order%2 == 0:
		r = math.Max(r, phiEpsilon)
		return 0.5 * math.Pow(r, 0.5*float64(order)) * math.Log(r)
	default:
		r = math.Max(r, phiEpsilon)
		return math.Pow(r, 0.5*float64(order))
	}
}

// Spline is a fitted polyharmonic spline mapping 2-D points to 2-D values
type Spline struct {
	centers []Point
	order   int
	weights *mat.Dense // len(centers) x 2
	affine  *mat.Dense // 3 x 2, rows (y, x, 1)
}

// FitSpline solves for the spline that passes through values at centers.
// regularization > 0 trades exact interpolation for smoothness.
func FitSpline(centers, values []Point, order int, regularization float64) (*Spline, error) {
	n := len(centers)
	if n == 0 {
		return nil, fmt.Errorf("no control points")
	}
	if len(values) != n {
		return nil, fmt.Errorf("%d control points but %d values", n, len(values))
	}
	if order < 1 {
		return nil, fmt.Errorf("interpolation order must be positive, got %d", order)
	}

	size := n + 3
	lhs := mat.NewDense(size, size, nil)
	rhs := mat.NewDense(size, 2, nil)

	for i, ci := range centers {
		for j, cj := range centers {
			v := phi(squaredDistance(ci, cj), order)
			if i == j {
				v += regularization
			}
			lhs.Set(i, j, v)
		}

		// affine block and its transpose
		lhs.Set(i, n, ci.Y)
		lhs.Set(i, n+1, ci.X)
		lhs.Set(i, n+2, 1)
		lhs.Set(n, i, ci.Y)
		lhs.Set(n+1, i, ci.X)
		lhs.Set(n+2, i, 1)

		rhs.Set(i, 0, values[i].Y)
		rhs.Set(i, 1, values[i].X)
	}

	var sol mat.Dense
	if err := sol.Solve(lhs, rhs); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 0) || math.IsNaN(float64(cond)) {
			return nil, fmt.Errorf("%w: %v", ErrSingular, err)
		}
		// ill-conditioned but solved; keep the result
	}
	if hasNonFinite(&sol) {
		return nil, ErrSingular
	}

	weights := mat.DenseCopyOf(sol.Slice(0, n, 0, 2))
	affine := mat.DenseCopyOf(sol.Slice(n, size, 0, 2))

	return &Spline{
		centers: centers,
		order:   order,
		weights: weights,
		affine:  affine,
	}, nil
}

// At evaluates the spline at q
func (s *Spline) At(q Point) Point {
	y := s.affine.At(0, 0)*q.Y + s.affine.At(1, 0)*q.X + s.affine.At(2, 0)
	x := s.affine.At(0, 1)*q.Y + s.affine.At(1, 1)*q.X + s.affine.At(2, 1)

	for i, c := range s.centers {
		k := phi(squaredDistance(q, c), s.order)
		y += k * s.weights.At(i, 0)
		x += k * s.weights.At(i, 1)
	}
	return Point{Y: y, X: x}
}

// InterpolateSpline fits a spline through (centers, values) and evaluates it at queries
func InterpolateSpline(centers, values, queries []Point, order int, regularization float64) ([]Point, error) {
	s, err := FitSpline(centers, values, order, regularization)
	if err != nil {
		return nil, err
	}
	out := make([]Point, len(queries))
	for i, q := range queries {
		out[i] = s.At(q)
	}
	return out, nil
}

func hasNonFinite(m *mat.Dense) bool {
	r, c := m.Dims()
	for i := range r {
		for j := range c {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return true
			}
		}
	}
	return false
}
