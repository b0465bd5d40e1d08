package common

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func ramp(rows, cols int) [][]float64 {
	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, cols)
		for j := range out[i] {
			out[i][j] = float64(i*cols + j)
		}
	}
	return out
}

func TestFromSpectrogram_PromotesAndRoundTrips(t *testing.T) {
	spec := ramp(3, 5)
	tensor, err := FromSpectrogram(spec)
	require.NoError(t, err)

	assert.Equal(t, [4]int{1, 3, 5, 1}, tensor.Shape())
	assert.Equal(t, 7.0, tensor.At(0, 1, 2, 0))
	assert.Equal(t, spec, tensor.Spectrogram(0, 0))

	// input is copied
	spec[0][0] = 42
	assert.Equal(t, 0.0, tensor.At(0, 0, 0, 0))
}

func TestFromSpectrogram_RejectsBadShapes(t *testing.T) {
	tests := []struct {
		name string
		spec [][]float64
	}{
		{"nil", nil},
		{"no frames", [][]float64{{}, {}}},
		{"ragged", [][]float64{{1, 2}, {3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromSpectrogram(tt.spec)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrShape))

			var shapeErr *ShapeError
			assert.True(t, errors.As(err, &shapeErr))
		})
	}
}

func TestFromMatrix(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	tensor, err := FromMatrix(m)
	require.NoError(t, err)
	assert.Equal(t, [4]int{1, 2, 3, 1}, tensor.Shape())
	assert.True(t, mat.Equal(m, tensor.Matrix(0, 0)))

	_, err = FromMatrix(nil)
	assert.ErrorIs(t, err, ErrShape)
}

func TestNewTensor_RejectsNonPositive(t *testing.T) {
	_, err := NewTensor(1, 0, 4, 1)
	assert.ErrorIs(t, err, ErrShape)
}

func TestMultiply(t *testing.T) {
	a, err := FromSpectrogram([][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)
	mask, err := FromSpectrogram([][]float64{{1, 0}, {0, 1}})
	require.NoError(t, err)

	out, err := a.Multiply(mask)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 0}, {0, 4}}, out.Spectrogram(0, 0))
	assert.Equal(t, 2.0, a.At(0, 0, 1, 0), "operand must not be modified")

	other, err := NewTensor(1, 3, 2, 1)
	require.NoError(t, err)
	_, err = a.Multiply(other)
	assert.ErrorIs(t, err, ErrShape)
}

func TestCloneAndEqual(t *testing.T) {
	a, err := FromSpectrogram(ramp(2, 2))
	require.NoError(t, err)
	b := a.Clone()
	assert.True(t, a.Equal(b))

	b.Set(0, 1, 1, 0, -1)
	assert.False(t, a.Equal(b))
}

func TestBilinearSample(t *testing.T) {
	tensor, err := FromSpectrogram([][]float64{
		{0, 10},
		{20, 30},
	})
	require.NoError(t, err)
	interp := NewInterpolator(Bilinear)

	assert.InDelta(t, 15.0, interp.Sample(tensor, 0, 0, 0.5, 0.5), 1e-12)
	assert.InDelta(t, 5.0, interp.Sample(tensor, 0, 0, 0, 0.5), 1e-12)
	assert.InDelta(t, 30.0, interp.Sample(tensor, 0, 0, 7, 9), 1e-12, "clamped past the edge")
	assert.InDelta(t, 0.0, interp.Sample(tensor, 0, 0, -3, -3), 1e-12)
}

func TestNearestSample(t *testing.T) {
	tensor, err := FromSpectrogram([][]float64{{1, 2, 3}})
	require.NoError(t, err)
	interp := NewInterpolator(Nearest)

	assert.Equal(t, 2.0, interp.Sample(tensor, 0, 0, 0, 1.4))
	assert.Equal(t, 3.0, interp.Sample(tensor, 0, 0, 0, 8))
	assert.Equal(t, 1.0, interp.Sample(tensor, 0, 0, 0.3, -2))
}

func TestNormalizer(t *testing.T) {
	tensor, err := FromSpectrogram([][]float64{{1, 2, 3, 4}})
	require.NoError(t, err)

	z := NewNormalizer(ZScore).Normalize(tensor)
	var sum float64
	for _, v := range z.Data() {
		sum += v
	}
	assert.InDelta(t, 0.0, sum, 1e-12)
	assert.Equal(t, 1.0, tensor.At(0, 0, 0, 0), "input must not be modified")

	mm := NewNormalizer(MinMax).Normalize(tensor)
	assert.InDeltaSlice(t, []float64{0, 1.0 / 3, 2.0 / 3, 1}, mm.Data(), 1e-12)

	power, err := FromSpectrogram([][]float64{{1, 0.1, 0}})
	require.NoError(t, err)
	db := NewNormalizer(Decibel).Normalize(power)
	assert.InDelta(t, 0.0, db.At(0, 0, 0, 0), 1e-12)
	assert.InDelta(t, -10.0, db.At(0, 0, 1, 0), 1e-9)
	assert.InDelta(t, -80.0, db.At(0, 0, 2, 0), 1e-9)
	assert.False(t, math.IsInf(db.At(0, 0, 2, 0), 0))
}

func TestNormalizer_ConstantInput(t *testing.T) {
	tensor, err := FromSpectrogram([][]float64{{5, 5, 5}})
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 0, 0}, NewNormalizer(ZScore).Normalize(tensor).Data())
	assert.Equal(t, []float64{0, 0, 0}, NewNormalizer(MinMax).Normalize(tensor).Data())
}

func TestParseNormalization(t *testing.T) {
	n, ok := ParseNormalization("db")
	assert.True(t, ok)
	assert.Equal(t, Decibel, n)

	_, ok = ParseNormalization("nope")
	assert.False(t, ok)
}

func TestSummarize(t *testing.T) {
	tensor, err := FromSpectrogram([][]float64{{0, 2}, {4, 0}})
	require.NoError(t, err)

	s := Summarize(tensor)
	assert.InDelta(t, 1.5, s.Mean, 1e-12)
	assert.Equal(t, 0.0, s.Min)
	assert.Equal(t, 4.0, s.Max)
	assert.Equal(t, 0.5, s.ZeroFraction)
	assert.Greater(t, s.StdDev, 0.0)

	single, err := FromSpectrogram([][]float64{{3}})
	require.NoError(t, err)
	assert.Equal(t, 0.0, Summarize(single).StdDev)
}
