// Command specaugment applies SpecAugment policies to mel spectrograms
// stored as JSON arrays of frequency rows.
//
// Usage:
//
//	specaugment apply --input mel.json --output augmented.json --policy LB
//	specaugment apply --config augment.yaml --seed 7 --ops freq,time < mel.json
//	specaugment policies
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-augment/logging"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "specaugment",
		Short:        "Time warp, frequency mask and time mask mel spectrograms",
		SilenceUsage: true,
		Long: `specaugment applies SpecAugment data augmentation to a mel spectrogram.

The spectrogram is read as a JSON array of frequency rows, each holding one
value per time frame. The augmented spectrogram is written in the same form.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level, _ := cmd.Flags().GetString("log-level")
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				level = "debug"
			}
			// stdout may carry the augmented spectrogram, so logs go to stderr
			logger := logging.NewWriterLogger(cmd.ErrOrStderr(), cmd.ErrOrStderr())
			logger.SetLevel(logging.ParseLevel(level))
			logging.SetGlobalLogger(logger)
		},
	}

	root.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	root.PersistentFlags().BoolP("verbose", "v", false, "shorthand for --log-level debug")

	root.AddCommand(newApplyCmd(), newPoliciesCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
