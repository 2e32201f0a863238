package detector

import (
	"github.com/chazu/g4basic/pkg/material"
	"github.com/chazu/g4basic/pkg/units"
)

// EnrichedXenonName is the registry name of the enriched xenon gas.
const EnrichedXenonName = "ENRICHED_XENON"

// EnrichedXenonSpec describes xenon gas at 15 bar enriched to 91% Xe136.
func EnrichedXenonSpec() material.CustomSpec {
	return material.CustomSpec{
		Name:        EnrichedXenonName,
		Density:     97.49 * units.KilogramPerM3,
		State:       material.StateGas,
		Temperature: units.STPTemperature,
		Pressure:    15 * units.Bar,
		Element: material.ElementSpec{
			Name:   EnrichedXenonName,
			Symbol: "Xe",
			Isotopes: []material.IsotopeFraction{
				{Isotope: &material.Isotope{Name: "Xe134", Z: 54, A: 134, MolarMass: 133.905395 * units.GramPerMole}, Abundance: 9 * units.PerCent},
				{Isotope: &material.Isotope{Name: "Xe136", Z: 54, A: 136, MolarMass: 135.907219 * units.GramPerMole}, Abundance: 91 * units.PerCent},
			},
		},
	}
}

// EnrichedXenon builds (or returns the registered) enriched xenon material.
func EnrichedXenon(f *material.Factory) (*material.Material, error) {
	return f.BuildCustomMaterial(EnrichedXenonSpec())
}
