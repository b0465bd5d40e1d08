package common

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// NormalizationType defines normalization method
type NormalizationType int

const (
	ZScore NormalizationType = iota
	MinMax
	Decibel
)

// Decibel conversion floor and dynamic range, matching the usual
// power-to-dB defaults for mel spectrograms.
const (
	decibelAmin  = 1e-10
	decibelTopDB = 80.0
)

// Normalizer rescales tensor values
type Normalizer struct {
	method NormalizationType
}

// NewNormalizer creates a new normalizer
func NewNormalizer(method NormalizationType) *Normalizer {
	return &Normalizer{
		method: method,
	}
}

// Normalize returns a normalized copy of t; t is left untouched.
func (n *Normalizer) Normalize(t *Tensor) *Tensor {
	out := t.Clone()
	switch n.method {
	case MinMax:
		n.minMaxNormalize(out.data)
	case Decibel:
		n.decibelNormalize(out.data)
	default:
		n.zScoreNormalize(out.data)
	}
	return out
}

// zScoreNormalize shifts to zero mean and scales to unit variance.
// Constant input is only centered.
func (n *Normalizer) zScoreNormalize(data []float64) {
	mean, std := stat.MeanStdDev(data, nil)
	if math.IsNaN(std) || std < 1e-10 {
		floats.AddConst(-mean, data)
		return
	}
	for i, val := range data {
		data[i] = (val - mean) / std
	}
}

// minMaxNormalize maps values to [0, 1]; constant input becomes all zeros
func (n *Normalizer) minMaxNormalize(data []float64) {
	lo := floats.Min(data)
	hi := floats.Max(data)

	if math.Abs(hi-lo) < 1e-10 {
		for i := range data {
			data[i] = 0
		}
		return
	}
	for i, val := range data {
		data[i] = (val - lo) / (hi - lo)
	}
}

// decibelNormalize converts power values to dB relative to the maximum,
// clipped to decibelTopDB below the peak.
func (n *Normalizer) decibelNormalize(data []float64) {
	ref := math.Max(floats.Max(data), decibelAmin)
	refDB := 10 * math.Log10(ref)
	for i, val := range data {
		data[i] = 10*math.Log10(math.Max(val, decibelAmin)) - refDB
	}
	floor := floats.Max(data) - decibelTopDB
	for i, val := range data {
		data[i] = math.Max(val, floor)
	}
}

// ParseNormalization maps a CLI/config name to a NormalizationType
func ParseNormalization(name string) (NormalizationType, bool) {
	switch name {
	case "zscore", "z-score":
		return ZScore, true
	case "minmax", "min-max":
		return MinMax, true
	case "db", "decibel":
		return Decibel, true
	default:
		return ZScore, false
	}
}
