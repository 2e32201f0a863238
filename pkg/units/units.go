// Package units defines the internal unit system shared with the transport
// engine. Every quantity stored in a geometry.Tree or material.Material is
// expressed in these units; values coming from configuration or the DSL are
// multiplied by the matching constant at the boundary.
//
// Base units: millimeter, nanosecond, MeV, positron charge, kelvin, mole,
// candela. Angles are radians.
package units

import "math"

// Length.
const (
	Millimeter = 1.0
	Centimeter = 10.0 * Millimeter
	Meter      = 1000.0 * Millimeter
	Micrometer = 1e-6 * Meter
)

// Angle.
const (
	Radian = 1.0
	Degree = (math.Pi / 180.0) * Radian
)

// Energy and time, used to derive mass and pressure.
const (
	MeV          = 1.0
	electronVolt = 1e-6 * MeV
	joule        = electronVolt / 1.602176634e-19
	second       = 1e9
)

// Mass and amount of substance.
const (
	Kilogram = joule * second * second / (Meter * Meter)
	Gram     = 1e-3 * Kilogram
	Mole     = 1.0
)

// Derived quantities.
const (
	GramPerMole     = Gram / Mole
	KilogramPerM3   = Kilogram / (Meter * Meter * Meter)
	GramPerCm3      = Gram / (Centimeter * Centimeter * Centimeter)
	Kelvin          = 1.0
	Pascal          = (joule / Meter) / (Meter * Meter)
	Bar             = 1e5 * Pascal
	Atmosphere      = 101325 * Pascal
	PerCent         = 0.01
	STPTemperature  = 273.15 * Kelvin
	NTPTemperature  = 293.15 * Kelvin
	STPPressure     = 1.0 * Atmosphere
	UniverseDensity = 1e-25 * GramPerCm3
)
