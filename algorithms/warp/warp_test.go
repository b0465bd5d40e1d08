package warp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-augment/algorithms/common"
)

// timeRamp builds a (1, h, w, 1) image whose value is the column index
func timeRamp(t *testing.T, h, w int) *common.Tensor {
	t.Helper()
	img, err := common.NewTensor(1, h, w, 1)
	require.NoError(t, err)
	for y := range h {
		for x := range w {
			img.Set(0, y, x, 0, float64(x))
		}
	}
	return img
}

func TestBoundaryLocations(t *testing.T) {
	pts := BoundaryLocations(80, 300, 2)
	require.Len(t, pts, 12)

	assert.Equal(t, Point{Y: 0, X: 0}, pts[0])
	assert.Equal(t, Point{Y: 79, X: 299}, pts[len(pts)-1])
	for _, p := range pts {
		onEdge := p.Y == 0 || p.Y == 79 || p.X == 0 || p.X == 299
		assert.True(t, onEdge, "point %v is not on the border", p)
	}

	assert.Len(t, BoundaryLocations(10, 10, 0), 4)
}

func TestFitSpline_InterpolatesCenters(t *testing.T) {
	centers := []Point{{0, 0}, {0, 10}, {10, 0}, {10, 10}, {4, 6}}
	values := []Point{{0, 0}, {1, -1}, {0.5, 2}, {-2, 0}, {3, 3}}

	for _, order := range []int{1, 2, 3} {
		s, err := FitSpline(centers, values, order, 0)
		require.NoError(t, err, "order %d", order)
		for i, c := range centers {
			got := s.At(c)
			assert.InDelta(t, values[i].Y, got.Y, 1e-6, "order %d center %d", order, i)
			assert.InDelta(t, values[i].X, got.X, 1e-6, "order %d center %d", order, i)
		}
	}
}

func TestFitSpline_ReproducesAffine(t *testing.T) {
	affine := func(p Point) Point {
		return Point{Y: 2*p.Y - p.X + 1, X: 0.5*p.X + 3}
	}
	centers := []Point{{0, 0}, {0, 20}, {20, 0}, {20, 20}, {7, 13}, {15, 2}}
	values := make([]Point, len(centers))
	for i, c := range centers {
		values[i] = affine(c)
	}

	out, err := InterpolateSpline(centers, values, []Point{{3, 4}, {18, 11}}, 2, 0)
	require.NoError(t, err)
	for i, q := range []Point{{3, 4}, {18, 11}} {
		want := affine(q)
		assert.InDelta(t, want.Y, out[i].Y, 1e-6)
		assert.InDelta(t, want.X, out[i].X, 1e-6)
	}
}

func TestFitSpline_Errors(t *testing.T) {
	_, err := FitSpline(nil, nil, 2, 0)
	assert.Error(t, err)

	_, err = FitSpline([]Point{{1, 1}}, nil, 2, 0)
	assert.Error(t, err)

	_, err = FitSpline([]Point{{1, 1}, {2, 2}, {0, 3}}, []Point{{}, {}, {}}, 0, 0)
	assert.Error(t, err)

	// a lone point cannot pin the affine part
	_, err = FitSpline([]Point{{1, 2}}, []Point{{0, 1}}, 2, 0)
	assert.ErrorIs(t, err, ErrSingular)
}

func TestSparseImageWarp_IdentityWhenPointsDoNotMove(t *testing.T) {
	img := timeRamp(t, 8, 20)
	pts := [][]Point{{{Y: 4, X: 10}}}

	warped, flow, err := SparseImageWarp(img, pts, pts, Options{NumBoundaryPoints: 2})
	require.NoError(t, err)

	assert.Equal(t, [4]int{1, 8, 20, 2}, flow.Shape())
	for _, v := range flow.Data() {
		assert.InDelta(t, 0.0, v, 1e-9)
	}
	assert.Equal(t, img.Shape(), warped.Shape())
	assert.InDeltaSlice(t, img.Data(), warped.Data(), 1e-9)
}

func TestSparseImageWarp_MovesControlPoint(t *testing.T) {
	img := timeRamp(t, 10, 40)
	src := [][]Point{{{Y: 5, X: 20}}}
	dst := [][]Point{{{Y: 5, X: 24}}}

	warped, flow, err := SparseImageWarp(img, src, dst, Options{NumBoundaryPoints: 2})
	require.NoError(t, err)

	// the destination pixel now carries the source column
	assert.InDelta(t, 20.0, warped.At(0, 5, 24, 0), 1e-6)
	assert.InDelta(t, 4.0, flow.At(0, 5, 24, 1), 1e-6)

	// anchors hold the corners still and nothing moves vertically
	assert.InDelta(t, 0.0, flow.At(0, 0, 0, 1), 1e-6)
	assert.InDelta(t, 0.0, flow.At(0, 9, 39, 1), 1e-6)
	for y := range 10 {
		for x := range 40 {
			assert.InDelta(t, 0.0, flow.At(0, y, x, 0), 1e-6)
		}
	}
}

func TestSparseImageWarp_Errors(t *testing.T) {
	img := timeRamp(t, 4, 4)

	_, _, err := SparseImageWarp(nil, nil, nil, DefaultOptions())
	assert.Error(t, err)

	_, _, err = SparseImageWarp(img, nil, nil, DefaultOptions())
	assert.Error(t, err, "batch mismatch")

	_, _, err = SparseImageWarp(img, [][]Point{{{1, 1}}}, [][]Point{{}}, DefaultOptions())
	assert.Error(t, err, "point count mismatch")

	_, _, err = SparseImageWarp(img, [][]Point{{{1, 1}}}, [][]Point{{{1, 2}}}, DefaultOptions())
	assert.ErrorIs(t, err, ErrSingular, "no anchors and a single point")
}

func TestDenseImageWarp_ConstantShift(t *testing.T) {
	img := timeRamp(t, 2, 5)
	flow, err := common.NewTensor(1, 2, 5, 2)
	require.NoError(t, err)
	for y := range 2 {
		for x := range 5 {
			flow.Set(0, y, x, 1, 1)
		}
	}

	out, err := DenseImageWarp(img, flow, common.Bilinear)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 1, 2, 3}, out.Spectrogram(0, 0)[0])

	out, err = DenseImageWarp(img, flow, common.Nearest)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 1, 2, 3}, out.Spectrogram(0, 0)[1])
}

func TestDenseImageWarp_RejectsBadFlow(t *testing.T) {
	img := timeRamp(t, 2, 5)
	flow, err := common.NewTensor(1, 2, 5, 1)
	require.NoError(t, err)

	_, err = DenseImageWarp(img, flow, common.Bilinear)
	assert.ErrorIs(t, err, common.ErrShape)

	_, err = DenseImageWarp(nil, flow, common.Bilinear)
	assert.Error(t, err)
}
