package augment

import (
	"fmt"

	"github.com/RyanBlaney/sonido-augment/algorithms/common"
	"github.com/RyanBlaney/sonido-augment/algorithms/warp"
	"github.com/RyanBlaney/sonido-augment/logging"
)

// TimeWarp displaces a random point on the centre frequency row by up to
// W frames along the time axis and deforms the spectrogram around it.
// The point is drawn from [W, tau-W) so the displaced point stays inside
// the spectrogram; tau <= 2W is a *ParameterRangeError. The spline needs
// distinct boundary rows, so a single frequency bin is a *ShapeError.
func (a *Augmenter) TimeWarp() (*common.Tensor, error) {
	v, tau := a.spec.Height(), a.spec.Width()
	maxWarp := a.policy.W

	if maxWarp == 0 {
		a.logger.Debug("time warp disabled by policy")
		return a.spec.Clone(), nil
	}
	if v < 2 {
		return nil, &common.ShapeError{
			Shape:  []int{v, tau},
			Reason: "time warp needs at least 2 frequency bins",
		}
	}
	if tau <= 2*maxWarp {
		return nil, &ParameterRangeError{
			Param:  "W",
			Value:  float64(maxWarp),
			Limit:  float64((tau - 1) / 2),
			Reason: fmt.Sprintf("policy warp distance too large for spectrogram length %d", tau),
		}
	}

	center := float64(v / 2)
	point := a.src.IntN(maxWarp, tau-maxWarp)
	distance := a.src.Uniform(-float64(maxWarp), float64(maxWarp))

	src := [][]warp.Point{{{Y: center, X: float64(point)}}}
	dst := [][]warp.Point{{{Y: center, X: float64(point) + distance}}}

	warped, _, err := warp.SparseImageWarp(a.spec, src, dst, a.warpOpts)
	if err != nil {
		return nil, fmt.Errorf("time warp: %w", err)
	}

	a.logger.Debug("time warp applied", logging.Fields{
		"op":       OpTimeWarp.String(),
		"point":    point,
		"distance": distance,
	})

	return a.commit(warped), nil
}
