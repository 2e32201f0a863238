package main

import (
	"github.com/spf13/cobra"

	"github.com/chazu/g4basic/pkg/config"
	"github.com/chazu/g4basic/pkg/detector"
)

func newConstructCmd(a *app) *cobra.Command {
	var (
		f      runFlags
		layout string
	)
	cmd := &cobra.Command{
		Use:   "construct",
		Short: "Build the configured apparatus and print its volume tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg.Apparatus
			if layout != "" {
				cfg.Layout = layout
				checked := a.cfg
				checked.Apparatus = cfg
				if err := checked.Validate(); err != nil {
					return err
				}
			}
			fac := a.factory()
			b := detector.New(fac,
				detector.WithConfig(cfg),
				detector.WithLogger(a.logger("detector")),
			)
			return a.build(cmd.Context(), cmd.OutOrStdout(), b, fac.Registry(), f)
		},
	}
	f.bind(cmd)
	cmd.Flags().StringVar(&layout, "layout", "", "override the configured layout ("+config.LayoutPhantom+" or "+config.LayoutShieldedDetector+")")
	return cmd
}
