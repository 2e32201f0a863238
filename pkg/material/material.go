// Package material models isotopes, elements and materials, and resolves
// materials either from a standard database or from a caller supplied
// isotopic composition.
//
// Isotopes combine by abundance into elements, elements combine by mass
// fraction into materials. All three are immutable once built and are shared
// by pointer between volumes and between independently constructed trees.
package material

import (
	"fmt"
	"math"
)

// Isotope is a nuclide with its molar mass in internal units.
type Isotope struct {
	Name      string
	Z         int     // atomic number
	A         int     // mass number (nucleon count)
	MolarMass float64 // g/mole in internal units
}

func (i *Isotope) String() string {
	return fmt.Sprintf("%s(Z=%d,A=%d)", i.Name, i.Z, i.A)
}

// IsotopeFraction pairs an isotope with its relative abundance in an element.
type IsotopeFraction struct {
	Isotope   *Isotope
	Abundance float64 // fraction of atoms, 0..1
}

// Element is a chemical element defined by its isotopic composition.
type Element struct {
	Name     string
	Symbol   string
	Isotopes []IsotopeFraction
}

// Z returns the atomic number shared by the element's isotopes, or 0 if the
// element has none.
func (e *Element) Z() int {
	if len(e.Isotopes) == 0 {
		return 0
	}
	return e.Isotopes[0].Isotope.Z
}

// MolarMass returns the abundance weighted molar mass. Abundances are used as
// given; an inconsistent element yields an inconsistent mass.
func (e *Element) MolarMass() float64 {
	var m float64
	for _, f := range e.Isotopes {
		m += f.Abundance * f.Isotope.MolarMass
	}
	return m
}

// AbundanceSum returns the sum of the isotope abundances.
func (e *Element) AbundanceSum() float64 {
	var s float64
	for _, f := range e.Isotopes {
		s += f.Abundance
	}
	return s
}

// State is the physical state of a material.
type State int

const (
	StateUndefined State = iota
	StateSolid
	StateLiquid
	StateGas
)

func (s State) String() string {
	switch s {
	case StateSolid:
		return "solid"
	case StateLiquid:
		return "liquid"
	case StateGas:
		return "gas"
	default:
		return "undefined"
	}
}

// ParseState converts "solid", "liquid", "gas" (or "") to a State.
func ParseState(s string) (State, error) {
	switch s {
	case "solid":
		return StateSolid, nil
	case "liquid":
		return StateLiquid, nil
	case "gas":
		return StateGas, nil
	case "", "undefined":
		return StateUndefined, nil
	}
	return StateUndefined, fmt.Errorf("material: unknown state %q", s)
}

// Component pairs an element with its mass fraction in a material.
type Component struct {
	Element      *Element
	MassFraction float64
}

// Material is a bulk medium. Standard materials carry the name they were
// looked up with; custom materials carry the caller's name.
type Material struct {
	Name        string
	Density     float64 // internal units (see package units)
	State       State
	Temperature float64
	Pressure    float64
	Components  []Component
	Standard    bool // resolved from a Database rather than synthesized
}

// MassFractionSum returns the sum of the component mass fractions.
func (m *Material) MassFractionSum() float64 {
	var s float64
	for _, c := range m.Components {
		s += c.MassFraction
	}
	return s
}

// Element returns the component element with the given symbol, or nil.
func (m *Material) Element(symbol string) *Element {
	for _, c := range m.Components {
		if c.Element.Symbol == symbol {
			return c.Element
		}
	}
	return nil
}

// equivalent reports whether two materials have the same definition. Element
// and isotope pointers may differ; their contents are compared.
func equivalent(a, b *Material) bool {
	if a.Name != b.Name || a.State != b.State || a.Standard != b.Standard ||
		!sameFloat(a.Density, b.Density) || !sameFloat(a.Temperature, b.Temperature) ||
		!sameFloat(a.Pressure, b.Pressure) || len(a.Components) != len(b.Components) {
		return false
	}
	for i := range a.Components {
		ca, cb := a.Components[i], b.Components[i]
		if !sameFloat(ca.MassFraction, cb.MassFraction) || !sameElement(ca.Element, cb.Element) {
			return false
		}
	}
	return true
}

func sameElement(a, b *Element) bool {
	if a == b {
		return true
	}
	if a.Name != b.Name || a.Symbol != b.Symbol || len(a.Isotopes) != len(b.Isotopes) {
		return false
	}
	for i := range a.Isotopes {
		ia, ib := a.Isotopes[i], b.Isotopes[i]
		if !sameFloat(ia.Abundance, ib.Abundance) || *ia.Isotope != *ib.Isotope {
			return false
		}
	}
	return true
}

func sameFloat(a, b float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) <= 1e-12*math.Max(math.Abs(a), math.Abs(b))
}
