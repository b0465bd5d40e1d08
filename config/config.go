package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/sonido-augment/algorithms/augment"
	"github.com/RyanBlaney/sonido-augment/algorithms/common"
	"github.com/RyanBlaney/sonido-augment/algorithms/warp"
)

// AugmentConfig configures an augmentation run
type AugmentConfig struct {
	Policy string `json:"policy" yaml:"policy"`

	// Seed makes runs reproducible; nil draws a random seed
	Seed *uint64 `json:"seed,omitempty" yaml:"seed,omitempty"`

	// Operations in the order they are applied: "warp", "freq", "time"
	Operations []string `json:"operations" yaml:"operations"`

	// Normalization applied to the input before augmenting:
	// "" (none), "zscore", "minmax" or "db"
	Normalization      string `json:"normalization,omitempty" yaml:"normalization,omitempty"`
	ZeroMeanNormalized bool   `json:"zero_mean_normalized" yaml:"zero_mean_normalized"`

	// TimeMaskCap bounds time masks by min(T, p*tau)
	TimeMaskCap bool `json:"time_mask_cap" yaml:"time_mask_cap"`

	Warp WarpConfig `json:"warp" yaml:"warp"`

	// Policies are registered next to the built-in ones and may replace them
	Policies []augment.Policy `json:"policies,omitempty" yaml:"policies,omitempty"`

	LogLevel string `json:"log_level" yaml:"log_level"`
}

// WarpConfig tunes the spline behind the time warp
type WarpConfig struct {
	InterpolationOrder   int     `json:"interpolation_order" yaml:"interpolation_order"`
	RegularizationWeight float64 `json:"regularization_weight" yaml:"regularization_weight"`
	Interpolation        string  `json:"interpolation" yaml:"interpolation"` // "bilinear", "nearest"
}

// DefaultAugmentConfig returns the LB policy with the full warp, freq, time chain
func DefaultAugmentConfig() *AugmentConfig {
	return &AugmentConfig{
		Policy:             augment.PolicyLB,
		Operations:         []string{"warp", "freq", "time"},
		ZeroMeanNormalized: true,
		Warp: WarpConfig{
			InterpolationOrder:   2,
			RegularizationWeight: 0,
			Interpolation:        common.Bilinear.String(),
		},
		LogLevel: "info",
	}
}

// Load reads a YAML (or JSON) file over the defaults and validates the result
func Load(path string) (*AugmentConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML (or JSON) over the defaults and validates the result
func Parse(data []byte) (*AugmentConfig, error) {
	cfg := DefaultAugmentConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every named policy, operation and method exists
func (c *AugmentConfig) Validate() error {
	table, err := c.PolicyTable()
	if err != nil {
		return err
	}
	if _, err := table.Lookup(c.Policy); err != nil {
		return err
	}
	if _, err := c.ParsedOperations(); err != nil {
		return err
	}
	if c.Normalization != "" {
		if _, ok := common.ParseNormalization(c.Normalization); !ok {
			return fmt.Errorf("unknown normalization %q", c.Normalization)
		}
	}
	if _, err := c.Warp.options(); err != nil {
		return err
	}
	return nil
}

// PolicyTable returns the built-in policies extended with c.Policies
func (c *AugmentConfig) PolicyTable() (augment.PolicyTable, error) {
	table := augment.DefaultPolicies()
	for _, p := range c.Policies {
		if err := table.Register(p); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// ParsedOperations resolves Operations
func (c *AugmentConfig) ParsedOperations() ([]augment.Operation, error) {
	ops := make([]augment.Operation, 0, len(c.Operations))
	for _, name := range c.Operations {
		op, err := augment.ParseOperation(name)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func (w WarpConfig) options() (warp.Options, error) {
	opts := warp.DefaultOptions()
	if w.InterpolationOrder != 0 {
		if w.InterpolationOrder < 0 {
			return opts, fmt.Errorf("interpolation order must be positive, got %d", w.InterpolationOrder)
		}
		opts.InterpolationOrder = w.InterpolationOrder
	}
	if w.RegularizationWeight < 0 {
		return opts, fmt.Errorf("regularization weight must not be negative, got %g", w.RegularizationWeight)
	}
	opts.RegularizationWeight = w.RegularizationWeight

	switch w.Interpolation {
	case "", common.Bilinear.String():
		opts.Interpolation = common.Bilinear
	case common.Nearest.String():
		opts.Interpolation = common.Nearest
	default:
		return opts, fmt.Errorf("unknown interpolation %q", w.Interpolation)
	}
	return opts, nil
}

// AugmenterOptions translates the config into augment options
func (c *AugmentConfig) AugmenterOptions() ([]augment.Option, error) {
	table, err := c.PolicyTable()
	if err != nil {
		return nil, err
	}
	warpOpts, err := c.Warp.options()
	if err != nil {
		return nil, err
	}

	opts := []augment.Option{
		augment.WithPolicyTable(table),
		augment.WithZeroMeanNormalized(c.ZeroMeanNormalized),
		augment.WithTimeMaskCap(c.TimeMaskCap),
		augment.WithWarpOptions(warpOpts),
	}
	if c.Seed != nil {
		opts = append(opts, augment.WithSeed(*c.Seed))
	}
	return opts, nil
}
