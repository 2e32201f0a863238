package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/chazu/g4basic/pkg/detector"
	"github.com/chazu/g4basic/pkg/material"
	"github.com/chazu/g4basic/pkg/units"
)

func newMaterialsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "materials [name...]",
		Short: "List the standard materials, or describe the named ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, n := range (material.NISTDatabase{}).Names() {
					fmt.Fprintln(out, n)
				}
				fmt.Fprintln(out, detector.EnrichedXenonName)
				return nil
			}

			fac := a.factory()
			for _, name := range args {
				var (
					m   *material.Material
					err error
				)
				if name == detector.EnrichedXenonName {
					m, err = detector.EnrichedXenon(fac)
				} else {
					m, err = fac.LookupStandardMaterial(name)
				}
				if err != nil {
					return err
				}
				describeMaterial(out, m)
			}
			return nil
		},
	}
}

func describeMaterial(out io.Writer, m *material.Material) {
	fmt.Fprintf(out, "%s: %.6g g/cm3, %s, %.5g K, %.5g bar\n",
		m.Name, m.Density/units.GramPerCm3, m.State, m.Temperature/units.Kelvin, m.Pressure/units.Bar)
	for _, c := range m.Components {
		el := c.Element
		fmt.Fprintf(out, "  %-3s Z=%-3d %.6g g/mole  mass fraction %.6g\n",
			el.Symbol, el.Z(), el.MolarMass()/units.GramPerMole, c.MassFraction)
		for _, iso := range el.Isotopes {
			fmt.Fprintf(out, "      %-8s A=%-3d abundance %.6g\n", iso.Isotope.Name, iso.Isotope.A, iso.Abundance)
		}
	}
	for _, issue := range material.ValidateMaterial(m) {
		fmt.Fprintf(out, "  warning: %v\n", issue)
	}
}
