package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/chazu/g4basic/pkg/config"
	"github.com/chazu/g4basic/pkg/geometry"
	"github.com/chazu/g4basic/pkg/kernel/sdfx"
	"github.com/chazu/g4basic/pkg/material"
	"github.com/chazu/g4basic/pkg/overlap"
	"github.com/chazu/g4basic/pkg/units"
	"github.com/chazu/g4basic/pkg/workers"
)

// app holds what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	logLevel   string

	cfg config.Config
	log *logrus.Logger
}

// runFlags are shared by construct and eval.
type runFlags struct {
	check   bool
	workers int
	limit   int
}

func (f *runFlags) bind(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.check, "check", false, "check placements for overlaps and protrusions")
	cmd.Flags().IntVarP(&f.workers, "workers", "n", 1, "number of independent trees to build")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "maximum concurrent builds (0 = unlimited)")
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "g4basic",
		Short:         "Build and inspect the detector geometry",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML configuration file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override the configured log level")

	root.AddCommand(
		newConstructCmd(a),
		newMaterialsCmd(a),
		newEvalCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	l, err := config.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	l.SetOutput(cmd.ErrOrStderr())
	a.cfg, a.log = cfg, l
	return nil
}

func (a *app) logger(name string) *logrus.Entry {
	return config.NamedLogger(a.log, name)
}

func (a *app) factory() *material.Factory {
	return material.NewFactory(material.WithLogger(a.logger("material")))
}

// build constructs n trees through c and prints the first.
func (a *app) build(ctx context.Context, out io.Writer, c workers.Constructor, reg *material.Registry, f runFlags) error {
	trees, err := workers.ConstructAll(ctx, c, reg, f.workers, f.limit)
	if err != nil {
		return err
	}
	tree := trees[0]
	if f.workers > 1 {
		fmt.Fprintf(out, "built %d trees\n", len(trees))
	}
	printTree(out, tree)

	res := geometry.Validate(tree)
	for _, w := range res.Warnings {
		fmt.Fprintf(out, "warning: %v\n", w)
	}
	if !res.OK() {
		for _, e := range res.Errors {
			fmt.Fprintf(out, "error: %v\n", e)
		}
		return fmt.Errorf("geometry has %d validation errors", len(res.Errors))
	}

	if f.check {
		return a.check(out, tree)
	}
	return nil
}

func (a *app) check(out io.Writer, tree *geometry.Tree) error {
	o := a.cfg.Overlap
	checker := overlap.NewChecker(sdfx.New(),
		overlap.WithOptions(overlap.Options{
			Resolution: o.Resolution,
			Tolerance:  o.Tolerance * units.Millimeter,
			All:        o.All,
		}),
		overlap.WithLogger(a.logger("overlap")),
	)
	hazards, err := checker.Check(tree)
	if err != nil {
		return err
	}
	if len(hazards) == 0 {
		fmt.Fprintln(out, "no placement hazards")
		return nil
	}
	fmt.Fprintf(out, "%d placement hazards:\n", len(hazards))
	for _, h := range hazards {
		fmt.Fprintf(out, "  %v\n", h)
	}
	return nil
}

// printTree writes one line per volume, indented by depth.
func printTree(out io.Writer, t *geometry.Tree) {
	fmt.Fprintf(out, "tree %s (%d volumes)\n", t.ID(), t.Len())
	_ = t.Walk(func(v *geometry.Volume, depth int) error {
		var flags []string
		if !v.Visible {
			flags = append(flags, "hidden")
		}
		if !v.CheckOverlaps {
			flags = append(flags, "unchecked")
		}
		line := fmt.Sprintf("%s%s %s %s", strings.Repeat("  ", depth), v.Name, v.Solid.Kind(), v.Material.Name)
		if !v.Placement.Translation.IsZero() {
			line += fmt.Sprintf(" at %v", v.Placement.Translation)
		}
		if r := v.Placement.Rotation; r != nil {
			x, y, z := r.EulerZYX()
			line += fmt.Sprintf(" rot(%.4g,%.4g,%.4g)deg", degrees(x), degrees(y), degrees(z))
		}
		if len(flags) > 0 {
			line += " [" + strings.Join(flags, ",") + "]"
		}
		fmt.Fprintln(out, line)
		return nil
	})
}

// degrees converts to degrees, printing negative zero as zero.
func degrees(a float64) float64 {
	if a == 0 {
		return 0
	}
	return a / units.Degree
}
