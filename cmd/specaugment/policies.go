package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-augment/config"
)

func newPoliciesCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "policies",
		Short: "List the augmentation policies and their parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultAugmentConfig()
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}

			table, err := cfg.PolicyTable()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "POLICY\tW\tF\tm_F\tT\tp\tm_T")
			for _, name := range table.Names() {
				p, err := table.Lookup(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%g\t%d\n", p.Name, p.W, p.F, p.MF, p.T, p.P, p.MT)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "YAML config declaring extra policies")
	return cmd
}
