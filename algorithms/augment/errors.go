package augment

import (
	"errors"
	"fmt"

	"github.com/RyanBlaney/sonido-augment/algorithms/common"
)

var (
	// ErrUnknownPolicy is returned for policy names missing from the policy table
	ErrUnknownPolicy = errors.New("unknown augmentation policy")

	// ErrInvalidPolicy is returned when a policy's parameters are out of bounds
	ErrInvalidPolicy = errors.New("invalid augmentation policy")

	// ErrParameterRange is returned when a policy parameter leaves no valid
	// sampling interval for the current spectrogram
	ErrParameterRange = errors.New("parameter out of range")

	// ErrShape is returned for spectrograms that are not non-empty 2-D arrays
	ErrShape = common.ErrShape
)

// ConfigurationError reports an unusable policy
type ConfigurationError struct {
	Policy string
	Reason string
	err    error
}

func (e *ConfigurationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%v %q", e.Unwrap(), e.Policy)
	}
	return fmt.Sprintf("%v %q: %s", e.Unwrap(), e.Policy, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	if e.err == nil {
		return ErrUnknownPolicy
	}
	return e.err
}

func unknownPolicy(name string) error {
	return &ConfigurationError{Policy: name, err: ErrUnknownPolicy}
}

func invalidPolicy(name, reason string) error {
	return &ConfigurationError{Policy: name, Reason: reason, err: ErrInvalidPolicy}
}

// ParameterRangeError names the policy parameter that cannot be honoured
// for a spectrogram of the given size.
type ParameterRangeError struct {
	Param  string
	Value  float64
	Limit  float64
	Reason string
}

func (e *ParameterRangeError) Error() string {
	return fmt.Sprintf("%v: %s=%g (limit %g): %s", ErrParameterRange, e.Param, e.Value, e.Limit, e.Reason)
}

func (e *ParameterRangeError) Unwrap() error {
	return ErrParameterRange
}
