// Package augment implements SpecAugment-style data augmentation of
// mel spectrograms: time warping, frequency masking and time masking
// driven by named strength policies.
//
// An Augmenter owns one spectrogram. Every operation validates its
// preconditions, builds a new tensor and only then replaces the held
// state, so a failed operation leaves the state untouched. Tensors handed
// out by operations and accessors are copies; changing them does not
// reach the held state.
package augment

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/RyanBlaney/sonido-augment/algorithms/common"
	"github.com/RyanBlaney/sonido-augment/algorithms/warp"
	"github.com/RyanBlaney/sonido-augment/logging"
)

// Number of anchor points per image edge pinned during time warping
const warpBoundaryPoints = 2

// Augmenter applies SpecAugment operations to a single spectrogram.
// It is not safe for concurrent use; give each pipeline item its own instance.
type Augmenter struct {
	spec               *common.Tensor
	policy             Policy
	zeroMeanNormalized bool
	timeMaskCap        bool
	warpOpts           warp.Options
	src                Source
	logger             logging.Logger
}

type settings struct {
	src                Source
	zeroMeanNormalized bool
	timeMaskCap        bool
	warpOpts           warp.Options
	logger             logging.Logger
	policies           PolicyTable
}

// Option configures an Augmenter
type Option func(*settings)

// WithSource injects the random source. Defaults to a randomly seeded NewSource.
func WithSource(src Source) Option {
	return func(s *settings) {
		if src != nil {
			s.src = src
		}
	}
}

// WithSeed is shorthand for WithSource(NewSource(seed))
func WithSeed(seed uint64) Option {
	return func(s *settings) {
		s.src = NewSource(seed)
	}
}

// WithZeroMeanNormalized records whether the input is zero-mean normalized,
// in which case masking to zero equals masking to the mean. Defaults to true.
func WithZeroMeanNormalized(normalized bool) Option {
	return func(s *settings) {
		s.zeroMeanNormalized = normalized
	}
}

// WithTimeMaskCap enables the published upper bound on the time mask
// width, min(T, p*tau). Disabled by default, leaving p unused.
func WithTimeMaskCap(enabled bool) Option {
	return func(s *settings) {
		s.timeMaskCap = enabled
	}
}

// WithWarpOptions overrides the spline settings used by TimeWarp.
// Boundary anchoring is always enabled.
func WithWarpOptions(opts warp.Options) Option {
	return func(s *settings) {
		s.warpOpts = opts
	}
}

// WithLogger sets the logger. Defaults to the global logger.
func WithLogger(logger logging.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPolicyTable resolves the policy name against a custom table
func WithPolicyTable(table PolicyTable) Option {
	return func(s *settings) {
		if table != nil {
			s.policies = table
		}
	}
}

// New creates an Augmenter for a (frequency, time) spectrogram.
// The input is copied and promoted to shape (1, frequency, time, 1).
func New(spectrogram [][]float64, policy string, opts ...Option) (*Augmenter, error) {
	t, err := common.FromSpectrogram(spectrogram)
	if err != nil {
		return nil, err
	}
	return newAugmenter(t, policy, opts)
}

// NewFromMatrix creates an Augmenter from a gonum matrix whose rows are
// frequency bins and columns time frames.
func NewFromMatrix(m mat.Matrix, policy string, opts ...Option) (*Augmenter, error) {
	t, err := common.FromMatrix(m)
	if err != nil {
		return nil, err
	}
	return newAugmenter(t, policy, opts)
}

// NewFromTensor creates an Augmenter from an already promoted
// (1, frequency, time, 1) tensor. The tensor is copied.
func NewFromTensor(t *common.Tensor, policy string, opts ...Option) (*Augmenter, error) {
	if t == nil {
		return nil, &common.ShapeError{Reason: "tensor cannot be nil"}
	}
	if t.Batch() != 1 || t.Channels() != 1 {
		shape := t.Shape()
		return nil, &common.ShapeError{Shape: shape[:], Reason: "expected (1, frequency, time, 1)"}
	}
	return newAugmenter(t.Clone(), policy, opts)
}

func newAugmenter(t *common.Tensor, policyName string, opts []Option) (*Augmenter, error) {
	s := settings{
		zeroMeanNormalized: true,
		warpOpts:           warp.DefaultOptions(),
		logger:             logging.GetGlobalLogger(),
		policies:           DefaultPolicies(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.src == nil {
		s.src = NewSource(rand.Uint64())
	}

	policy, err := s.policies.Lookup(policyName)
	if err != nil {
		return nil, err
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	s.warpOpts.NumBoundaryPoints = warpBoundaryPoints

	a := &Augmenter{
		spec:               t,
		policy:             policy,
		zeroMeanNormalized: s.zeroMeanNormalized,
		timeMaskCap:        s.timeMaskCap,
		warpOpts:           s.warpOpts,
		src:                s.src,
		logger: s.logger.WithFields(logging.Fields{
			"component": "augment",
			"policy":    policy.Name,
		}),
	}

	a.logger.Debug("augmenter created", logging.Fields{
		"freq_bins":   t.Height(),
		"time_frames": t.Width(),
		"params":      policy.String(),
	})
	return a, nil
}

// Policy returns the resolved policy parameters
func (a *Augmenter) Policy() Policy {
	return a.policy
}

// ZeroMeanNormalized reports whether the input was declared zero-mean normalized
func (a *Augmenter) ZeroMeanNormalized() bool {
	return a.zeroMeanNormalized
}

// Spectrogram returns a copy of the current (1, frequency, time, 1) state
func (a *Augmenter) Spectrogram() *common.Tensor {
	return a.spec.Clone()
}

// commit replaces the held state with t and returns a copy for the caller
func (a *Augmenter) commit(t *common.Tensor) *common.Tensor {
	a.spec = t
	return t.Clone()
}

// Spectrogram2D returns a copy of the current state as a (frequency, time) array
func (a *Augmenter) Spectrogram2D() [][]float64 {
	return a.spec.Spectrogram(0, 0)
}

// Operation identifies one augmentation step
type Operation int

const (
	OpTimeWarp Operation = iota
	OpFrequencyMask
	OpTimeMask
)

// DefaultOperations is the usual warp, frequency mask, time mask chain
var DefaultOperations = []Operation{OpTimeWarp, OpFrequencyMask, OpTimeMask}

func (op Operation) String() string {
	switch op {
	case OpTimeWarp:
		return "time_warp"
	case OpFrequencyMask:
		return "frequency_mask"
	case OpTimeMask:
		return "time_mask"
	default:
		return fmt.Sprintf("operation(%d)", int(op))
	}
}

// ParseOperation accepts the long names from String and the short forms
// "warp", "freq" and "time".
func ParseOperation(name string) (Operation, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "warp", "time_warp", "timewarp":
		return OpTimeWarp, nil
	case "freq", "frequency", "frequency_mask", "freq_mask":
		return OpFrequencyMask, nil
	case "time", "time_mask":
		return OpTimeMask, nil
	default:
		return 0, fmt.Errorf("unknown operation %q", name)
	}
}

// Run performs a single operation
func (a *Augmenter) Run(op Operation) (*common.Tensor, error) {
	switch op {
	case OpTimeWarp:
		return a.TimeWarp()
	case OpFrequencyMask:
		return a.FrequencyMask()
	case OpTimeMask:
		return a.TimeMask()
	default:
		return nil, fmt.Errorf("unknown operation %v", op)
	}
}

// Apply runs ops in order, defaulting to DefaultOperations. If any
// operation fails the state is restored to what it was before Apply.
func (a *Augmenter) Apply(ops ...Operation) (*common.Tensor, error) {
	if len(ops) == 0 {
		ops = DefaultOperations
	}

	before := a.spec
	for _, op := range ops {
		if _, err := a.Run(op); err != nil {
			a.spec = before
			return nil, fmt.Errorf("%v: %w", op, err)
		}
	}
	return a.spec.Clone(), nil
}
