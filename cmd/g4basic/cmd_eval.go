package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chazu/g4basic/pkg/engine"
)

func newEvalCmd(a *app) *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "eval <file>",
		Short: "Evaluate a geometry program and print its volume tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			fac := a.factory()
			eng := engine.NewEngine(fac, engine.WithLogger(a.logger("engine")))

			// Report program mistakes with their location before building
			// any workers.
			_, evalErrs, err := eng.Run(string(src))
			if err != nil {
				return err
			}
			if len(evalErrs) > 0 {
				out := cmd.OutOrStdout()
				for _, e := range evalErrs {
					if e.Line > 0 {
						fmt.Fprintf(out, "%s:%d: %s\n", args[0], e.Line, e.Message)
					} else {
						fmt.Fprintf(out, "%s: %s\n", args[0], e.Message)
					}
				}
				return fmt.Errorf("%s: %d errors", args[0], len(evalErrs))
			}

			return a.build(cmd.Context(), cmd.OutOrStdout(), eng.Script(string(src)), fac.Registry(), f)
		},
	}
	f.bind(cmd)
	return cmd
}
