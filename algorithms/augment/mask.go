package augment

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-augment/algorithms/common"
	"github.com/RyanBlaney/sonido-augment/logging"
)

// Band is a contiguous run [Start, Start+Width) along one axis
type Band struct {
	Start int
	Width int
}

type maskAxis int

const (
	frequencyAxis maskAxis = iota
	timeAxis
)

// bandMask returns a tensor shaped like t holding zeros inside band along
// axis and ones elsewhere, broadcast over batch, channel and the other axis.
func bandMask(t *common.Tensor, axis maskAxis, band Band) (*common.Tensor, error) {
	mask, err := common.NewTensor(t.Batch(), t.Height(), t.Width(), t.Channels())
	if err != nil {
		return nil, err
	}
	data := mask.Data()
	for i := range data {
		data[i] = 1
	}

	for b := range t.Batch() {
		for y := range t.Height() {
			for x := range t.Width() {
				pos := y
				if axis == timeAxis {
					pos = x
				}
				if pos < band.Start || pos >= band.Start+band.Width {
					continue
				}
				for c := range t.Channels() {
					mask.Set(b, y, x, c, 0)
				}
			}
		}
	}
	return mask, nil
}

// drawBand draws a width in [0, upper) truncated to an integer and a start
// in [0, size-width).
func (a *Augmenter) drawBand(upper float64, size int) Band {
	width := int(a.src.Uniform(0, upper))
	if upper > 0 && float64(width) >= upper {
		width = int(math.Ceil(upper)) - 1
	}
	width = max(width, 0)
	start := a.src.IntN(0, size-width)
	return Band{Start: start, Width: width}
}

// applyMasks masks count bands along axis, starting from the current state.
// Bands are drawn independently and may overlap.
func (a *Augmenter) applyMasks(op Operation, axis maskAxis, upper float64, count int) (*common.Tensor, error) {
	current := a.spec
	for i := range count {
		size := current.Height()
		if axis == timeAxis {
			size = current.Width()
		}

		band := a.drawBand(upper, size)
		mask, err := bandMask(current, axis, band)
		if err != nil {
			return nil, err
		}
		current, err = current.Multiply(mask)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", op, err)
		}

		a.logger.Debug("mask applied", logging.Fields{
			"op":    op.String(),
			"pass":  i,
			"start": band.Start,
			"width": band.Width,
		})
	}

	return a.commit(current), nil
}

// FrequencyMask zeroes m_F bands of up to F-1 frequency bins.
// F larger than the number of bins is a *ParameterRangeError.
func (a *Augmenter) FrequencyMask() (*common.Tensor, error) {
	v := a.spec.Height()
	if a.policy.F > v {
		return nil, &ParameterRangeError{
			Param:  "F",
			Value:  float64(a.policy.F),
			Limit:  float64(v),
			Reason: fmt.Sprintf("frequency mask bound exceeds %d frequency bins", v),
		}
	}
	return a.applyMasks(OpFrequencyMask, frequencyAxis, float64(a.policy.F), a.policy.MF)
}

// TimeMask zeroes m_T bands of up to T-1 time frames.
// A width bound larger than the number of frames is a *ParameterRangeError.
//
// The policy's p is ignored unless WithTimeMaskCap is set, in which case
// the width bound becomes min(T, p*tau).
func (a *Augmenter) TimeMask() (*common.Tensor, error) {
	tau := a.spec.Width()
	upper := float64(a.policy.T)
	if a.timeMaskCap {
		upper = math.Min(upper, a.policy.P*float64(tau))
	}
	if upper > float64(tau) {
		return nil, &ParameterRangeError{
			Param:  "T",
			Value:  upper,
			Limit:  float64(tau),
			Reason: fmt.Sprintf("time mask bound exceeds %d time frames", tau),
		}
	}
	return a.applyMasks(OpTimeMask, timeAxis, upper, a.policy.MT)
}
