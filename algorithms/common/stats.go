package common

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the value distribution of a tensor
type Summary struct {
	Mean         float64 `json:"mean"`
	StdDev       float64 `json:"std_dev"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Median       float64 `json:"median"`
	ZeroFraction float64 `json:"zero_fraction"` // share of exactly zero cells
}

// Summarize computes descriptive statistics over every element of t
func Summarize(t *Tensor) Summary {
	data := t.Data()
	if len(data) == 0 {
		return Summary{}
	}

	mean, std := stat.MeanStdDev(data, nil)
	if math.IsNaN(std) {
		std = 0
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	zeros := floats.Count(func(v float64) bool { return v == 0 }, data)

	return Summary{
		Mean:         mean,
		StdDev:       std,
		Min:          sorted[0],
		Max:          sorted[len(sorted)-1],
		Median:       stat.Quantile(0.5, stat.Empirical, sorted, nil),
		ZeroFraction: float64(zeros) / float64(len(data)),
	}
}
