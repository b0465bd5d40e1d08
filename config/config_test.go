package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-augment/algorithms/augment"
)

func TestDefaultAugmentConfig(t *testing.T) {
	cfg := DefaultAugmentConfig()
	require.NoError(t, cfg.Validate())

	ops, err := cfg.ParsedOperations()
	require.NoError(t, err)
	assert.Equal(t, augment.DefaultOperations, ops)
	assert.Nil(t, cfg.Seed)
}

func TestParse_CustomPolicyAndSeed(t *testing.T) {
	cfg, err := Parse([]byte(`
policy: short
seed: 99
operations: [freq, time]
normalization: zscore
time_mask_cap: true
policies:
  - name: short
    w: 5
    f: 8
    m_f: 3
    t: 10
    p: 0.5
    m_t: 1
warp:
  interpolation: nearest
`))
	require.NoError(t, err)

	require.NotNil(t, cfg.Seed)
	assert.Equal(t, uint64(99), *cfg.Seed)
	assert.True(t, cfg.TimeMaskCap)
	assert.True(t, cfg.ZeroMeanNormalized, "unset keys keep their defaults")
	assert.Equal(t, 2, cfg.Warp.InterpolationOrder)

	table, err := cfg.PolicyTable()
	require.NoError(t, err)
	p, err := table.Lookup("SHORT")
	require.NoError(t, err)
	assert.Equal(t, augment.Policy{Name: "short", W: 5, F: 8, MF: 3, T: 10, P: 0.5, MT: 1}, p)

	opts, err := cfg.AugmenterOptions()
	require.NoError(t, err)

	spec := make([][]float64, 16)
	for i := range spec {
		spec[i] = make([]float64, 32)
		for j := range spec[i] {
			spec[i][j] = 1
		}
	}
	a, err := augment.New(spec, cfg.Policy, opts...)
	require.NoError(t, err)
	assert.Equal(t, 3, a.Policy().MF)
}

func TestParse_Rejects(t *testing.T) {
	tests := map[string]string{
		"unknown policy":        "policy: XL",
		"unknown operation":     "operations: [rotate]",
		"unknown normalization": "normalization: log",
		"bad custom policy":     "policies: [{name: neg, f: -2}]",
		"bad interpolation":     "warp: {interpolation: cubic}",
		"negative order":        "warp: {interpolation_order: -1}",
		"negative weight":       "warp: {regularization_weight: -0.5}",
		"not yaml":              "policy: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}

	_, err := Parse([]byte("policy: XL"))
	assert.ErrorIs(t, err, augment.ErrUnknownPolicy)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "augment.yaml")
	require.NoError(t, os.WriteFile(path, []byte("policy: SS\nseed: 1\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "SS", cfg.Policy)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
