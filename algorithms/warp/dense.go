package warp

import (
	"fmt"

	"github.com/RyanBlaney/sonido-augment/algorithms/common"
)

// DenseImageWarp resamples image along a per-pixel flow field:
//
//	out[b, y, x, c] = image[b, y - flow[b, y, x, 0], x - flow[b, y, x, 1], c]
//
// flow must be shaped (batch, height, width, 2). Off-grid reads use method
// and are clamped to the image border.
func DenseImageWarp(image, flow *common.Tensor, method common.InterpolationType) (*common.Tensor, error) {
	if image == nil || flow == nil {
		return nil, fmt.Errorf("image and flow cannot be nil")
	}
	want := [4]int{image.Batch(), image.Height(), image.Width(), 2}
	if got := flow.Shape(); got != want {
		return nil, &common.ShapeError{
			Shape:  got[:],
			Reason: fmt.Sprintf("flow must be shaped %v", want),
		}
	}

	interp := common.NewInterpolator(method)
	out, err := common.NewTensor(image.Batch(), image.Height(), image.Width(), image.Channels())
	if err != nil {
		return nil, err
	}

	for b := range image.Batch() {
		for y := range image.Height() {
			for x := range image.Width() {
				qy := float64(y) - flow.At(b, y, x, 0)
				qx := float64(x) - flow.At(b, y, x, 1)
				for c := range image.Channels() {
					out.Set(b, y, x, c, interp.Sample(image, b, c, qy, qx))
				}
			}
		}
	}
	return out, nil
}
