// Package warp deforms batched single- or multi-channel images from a sparse
// set of control-point displacements. A polyharmonic spline spreads the
// control-point flows to a dense flow field, which is then applied with
// bilinear resampling.
package warp

import (
	"fmt"

	"github.com/RyanBlaney/sonido-augment/algorithms/common"
)

// Options configures SparseImageWarp
type Options struct {
	// InterpolationOrder of the polyharmonic kernel; 2 is a thin-plate spline.
	InterpolationOrder int `json:"interpolation_order" yaml:"interpolation_order"`

	// RegularizationWeight added to the kernel diagonal. 0 interpolates exactly.
	RegularizationWeight float64 `json:"regularization_weight" yaml:"regularization_weight"`

	// NumBoundaryPoints per edge pinned with zero flow. 0 disables anchoring.
	NumBoundaryPoints int `json:"num_boundary_points" yaml:"num_boundary_points"`

	// Interpolation used when resampling the image
	Interpolation common.InterpolationType `json:"-" yaml:"-"`
}

// DefaultOptions returns a thin-plate warp with no boundary anchors
func DefaultOptions() Options {
	return Options{
		InterpolationOrder:   2,
		RegularizationWeight: 0,
		NumBoundaryPoints:    0,
		Interpolation:        common.Bilinear,
	}
}

// BoundaryLocations returns the points of an (n+2)x(n+2) evenly spaced grid
// over a height x width image that lie on the image border, in row-major order.
func BoundaryLocations(height, width, n int) []Point {
	ys := linspace(0, float64(height-1), n+2)
	xs := linspace(0, float64(width-1), n+2)

	var out []Point
	for _, y := range ys {
		for _, x := range xs {
			if x == 0 || x == float64(width-1) || y == 0 || y == float64(height-1) {
				out = append(out, Point{Y: y, X: x})
			}
		}
	}
	return out
}

func linspace(start, stop float64, num int) []float64 {
	out := make([]float64, num)
	if num == 1 {
		out[0] = start
		return out
	}
	step := (stop - start) / float64(num-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[num-1] = stop
	return out
}

// SparseImageWarp moves the pixels at src[b] to dst[b] for every batch item
// b and smoothly deforms the rest of the image. It returns the warped image
// and the dense flow field, shaped (batch, height, width, 2) holding (dy, dx).
func SparseImageWarp(image *common.Tensor, src, dst [][]Point, opts Options) (*common.Tensor, *common.Tensor, error) {
	if image == nil {
		return nil, nil, fmt.Errorf("image cannot be nil")
	}
	if len(src) != image.Batch() || len(dst) != image.Batch() {
		return nil, nil, fmt.Errorf("control points for %d/%d batch items, image has %d",
			len(src), len(dst), image.Batch())
	}
	if opts.InterpolationOrder == 0 {
		opts.InterpolationOrder = 2
	}

	height, width := image.Height(), image.Width()
	var boundary []Point
	if opts.NumBoundaryPoints > 0 {
		boundary = BoundaryLocations(height, width, opts.NumBoundaryPoints)
	}

	flow, err := common.NewTensor(image.Batch(), height, width, 2)
	if err != nil {
		return nil, nil, err
	}

	for b := range image.Batch() {
		if len(src[b]) != len(dst[b]) {
			return nil, nil, fmt.Errorf("batch %d: %d source points but %d destination points",
				b, len(src[b]), len(dst[b]))
		}

		// The spline is fitted at the destination points, so sampling at
		// (dst - flow) reads the source pixel.
		centers := make([]Point, 0, len(dst[b])+len(boundary))
		flows := make([]Point, 0, cap(centers))
		for i := range dst[b] {
			centers = append(centers, dst[b][i])
			flows = append(flows, dst[b][i].Sub(src[b][i]))
		}
		for _, p := range boundary {
			centers = append(centers, p)
			flows = append(flows, Point{})
		}

		spline, err := FitSpline(centers, flows, opts.InterpolationOrder, opts.RegularizationWeight)
		if err != nil {
			return nil, nil, fmt.Errorf("batch %d: %w", b, err)
		}

		for y := range height {
			for x := range width {
				f := spline.At(Point{Y: float64(y), X: float64(x)})
				flow.Set(b, y, x, 0, f.Y)
				flow.Set(b, y, x, 1, f.X)
			}
		}
	}

	warped, err := DenseImageWarp(image, flow, opts.Interpolation)
	if err != nil {
		return nil, nil, err
	}
	return warped, flow, nil
}
