package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-augment/algorithms/augment"
	"github.com/RyanBlaney/sonido-augment/algorithms/common"
	"github.com/RyanBlaney/sonido-augment/config"
	"github.com/RyanBlaney/sonido-augment/logging"
)

type applyFlags struct {
	configPath    string
	input         string
	output        string
	policy        string
	seed          uint64
	ops           string
	normalization string
	timeMaskCap   bool
}

func newApplyCmd() *cobra.Command {
	var f applyFlags

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Augment a spectrogram read from JSON",
		Long: `Apply reads a (frequency, time) spectrogram, runs the configured
augmentation chain and writes the result.

Flags override the values from --config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, f)
			if err != nil {
				return err
			}
			return runApply(cmd, cfg, f.input, f.output)
		},
	}

	cmd.Flags().StringVar(&f.configPath, "config", "", "YAML config file")
	cmd.Flags().StringVarP(&f.input, "input", "i", "-", "input JSON spectrogram, - for stdin")
	cmd.Flags().StringVarP(&f.output, "output", "o", "-", "output JSON file, - for stdout")
	cmd.Flags().StringVarP(&f.policy, "policy", "p", augment.PolicyLB, "policy name")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "random seed for reproducible output")
	cmd.Flags().StringVar(&f.ops, "ops", "warp,freq,time", "comma separated operations")
	cmd.Flags().StringVar(&f.normalization, "normalize", "", "normalize input first: zscore, minmax, db")
	cmd.Flags().BoolVar(&f.timeMaskCap, "time-mask-cap", false, "bound time masks by min(T, p*tau)")
	return cmd
}

// resolveConfig layers explicitly set flags over the config file
func resolveConfig(cmd *cobra.Command, f applyFlags) (*config.AugmentConfig, error) {
	cfg := config.DefaultAugmentConfig()
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	// --log-level and -v win over the config file
	if !flags.Changed("log-level") && !flags.Changed("verbose") {
		logging.GetGlobalLogger().SetLevel(logging.ParseLevel(cfg.LogLevel))
	}
	if flags.Changed("policy") {
		cfg.Policy = f.policy
	}
	if flags.Changed("seed") {
		seed := f.seed
		cfg.Seed = &seed
	}
	if flags.Changed("ops") {
		cfg.Operations = splitList(f.ops)
	}
	if flags.Changed("normalize") {
		cfg.Normalization = f.normalization
	}
	if flags.Changed("time-mask-cap") {
		cfg.TimeMaskCap = f.timeMaskCap
	}
	if cfg.Normalization != "" {
		method, _ := common.ParseNormalization(cfg.Normalization)
		cfg.ZeroMeanNormalized = method == common.ZScore
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func runApply(cmd *cobra.Command, cfg *config.AugmentConfig, input, output string) error {
	logger := logging.WithFields(logging.Fields{"command": "apply"})

	spec, err := readSpectrogram(cmd.InOrStdin(), input)
	if err != nil {
		return err
	}
	tensor, err := common.FromSpectrogram(spec)
	if err != nil {
		return err
	}

	if cfg.Normalization != "" {
		method, _ := common.ParseNormalization(cfg.Normalization)
		tensor = common.NewNormalizer(method).Normalize(tensor)
	}

	opts, err := cfg.AugmenterOptions()
	if err != nil {
		return err
	}
	opts = append(opts, augment.WithLogger(logger))

	aug, err := augment.NewFromTensor(tensor, cfg.Policy, opts...)
	if err != nil {
		return err
	}
	ops, err := cfg.ParsedOperations()
	if err != nil {
		return err
	}
	if len(ops) == 0 {
		ops = augment.DefaultOperations
	}

	out, err := aug.Apply(ops...)
	if err != nil {
		return fmt.Errorf("augmentation failed: %w", err)
	}

	summary := common.Summarize(out)
	logger.Info("augmentation complete", logging.Fields{
		"shape":         fmt.Sprintf("%dx%d", out.Height(), out.Width()),
		"operations":    strings.Join(cfg.Operations, ","),
		"masked_pct":    fmt.Sprintf("%.1f", 100*summary.ZeroFraction),
		"mean":          fmt.Sprintf("%.4g", summary.Mean),
		"std":           fmt.Sprintf("%.4g", summary.StdDev),
		"zero_mean_in":  aug.ZeroMeanNormalized(),
		"policy_params": aug.Policy().String(),
	})

	return writeSpectrogram(cmd.OutOrStdout(), output, aug.Spectrogram2D())
}

func readSpectrogram(stdin io.Reader, path string) ([][]float64, error) {
	r := stdin
	if path != "-" && path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		defer file.Close()
		r = file
	}

	var spec [][]float64
	if err := json.NewDecoder(r).Decode(&spec); err != nil {
		return nil, fmt.Errorf("failed to decode spectrogram: %w", err)
	}
	return spec, nil
}

func writeSpectrogram(stdout io.Writer, path string, spec [][]float64) error {
	if path == "-" || path == "" {
		return encodeSpectrogram(stdout, spec)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	if err := encodeSpectrogram(file, spec); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close output: %w", err)
	}
	return nil
}

func encodeSpectrogram(w io.Writer, spec [][]float64) error {
	if err := json.NewEncoder(w).Encode(spec); err != nil {
		return fmt.Errorf("failed to encode spectrogram: %w", err)
	}
	return nil
}
