package material

import (
	"sort"
	"strconv"

	"github.com/chazu/g4basic/pkg/units"
)

// Database resolves predefined materials by symbolic name. It is the
// interface the transport engine normally provides; NISTDatabase is the
// built-in implementation.
type Database interface {
	FindOrBuildStandardMaterial(name string) (*Material, error)
}

// ---------------------------------------------------------------------------
// Natural isotopic compositions
// ---------------------------------------------------------------------------

type isotopeRow struct {
	a         int
	molarMass float64 // g/mole
	abundance float64
}

type elementRow struct {
	name     string
	z        int
	isotopes []isotopeRow
}

var naturalElements = map[string]elementRow{
	"H": {"Hydrogen", 1, []isotopeRow{
		{1, 1.00782503, 0.999885},
		{2, 2.01410178, 0.000115},
	}},
	"C": {"Carbon", 6, []isotopeRow{
		{12, 12.0, 0.9893},
		{13, 13.00335484, 0.0107},
	}},
	"N": {"Nitrogen", 7, []isotopeRow{
		{14, 14.00307400, 0.99636},
		{15, 15.00010890, 0.00364},
	}},
	"O": {"Oxygen", 8, []isotopeRow{
		{16, 15.99491462, 0.99757},
		{17, 16.99913176, 0.00038},
		{18, 17.99915961, 0.00205},
	}},
	"F": {"Fluorine", 9, []isotopeRow{
		{19, 18.99840322, 1.0},
	}},
	"Si": {"Silicon", 14, []isotopeRow{
		{28, 27.97692653, 0.92223},
		{29, 28.97649466, 0.04685},
		{30, 29.97377014, 0.03092},
	}},
	"Ar": {"Argon", 18, []isotopeRow{
		{36, 35.96754511, 0.003365},
		{38, 37.96273240, 0.000632},
		{40, 39.96238312, 0.996003},
	}},
	"Ca": {"Calcium", 20, []isotopeRow{
		{40, 39.96259098, 0.96941},
		{42, 41.95861801, 0.00647},
		{43, 42.95876660, 0.00135},
		{44, 43.95548180, 0.02086},
		{46, 45.95369260, 0.00004},
		{48, 47.95253400, 0.00187},
	}},
	"Xe": {"Xenon", 54, []isotopeRow{
		{124, 123.905893, 0.000952},
		{126, 125.904274, 0.000890},
		{128, 127.903531, 0.019102},
		{129, 128.904779, 0.264006},
		{130, 129.903508, 0.040710},
		{131, 130.905082, 0.212324},
		{132, 131.904154, 0.269086},
		{134, 133.905395, 0.104357},
		{136, 135.907219, 0.088573},
	}},
	"Pb": {"Lead", 82, []isotopeRow{
		{204, 203.973043, 0.014},
		{206, 205.974465, 0.241},
		{207, 206.975897, 0.221},
		{208, 207.976652, 0.524},
	}},
}

// ---------------------------------------------------------------------------
// Standard materials
// ---------------------------------------------------------------------------

type fraction struct {
	symbol string
	mass   float64
}

type materialRow struct {
	density     float64 // g/cm3
	state       State
	temperature float64 // internal units
	pressure    float64 // internal units
	components  []fraction
}

var standardMaterials = map[string]materialRow{
	"G4_Galactic": {
		density:     1e-25,
		state:       StateGas,
		temperature: 2.73 * units.Kelvin,
		pressure:    3e-18 * units.Pascal,
		components:  []fraction{{"H", 1}},
	},
	"G4_WATER": {
		density:    1.0,
		state:      StateLiquid,
		components: []fraction{{"H", 0.111894}, {"O", 0.888106}},
	},
	"G4_AIR": {
		density: 0.00120479,
		state:   StateGas,
		components: []fraction{
			{"C", 0.000124}, {"N", 0.755268}, {"O", 0.231781}, {"Ar", 0.012827},
		},
	},
	"G4_Si": {
		density:    2.33,
		state:      StateSolid,
		components: []fraction{{"Si", 1}},
	},
	"G4_Xe": {
		density:    0.00548536,
		state:      StateGas,
		components: []fraction{{"Xe", 1}},
	},
	"G4_Pb": {
		density:    11.35,
		state:      StateSolid,
		components: []fraction{{"Pb", 1}},
	},
	"G4_A-150_TISSUE": {
		density: 1.127,
		state:   StateSolid,
		components: []fraction{
			{"H", 0.101327}, {"C", 0.7755}, {"N", 0.035057},
			{"O", 0.0523159}, {"F", 0.017422}, {"Ca", 0.018378},
		},
	},
}

// NISTDatabase builds standard materials from a static table of NIST
// compositions with natural isotopic abundances. Every call returns a fresh
// instance; sharing is the Registry's job.
type NISTDatabase struct{}

// Compile-time interface check.
var _ Database = NISTDatabase{}

// FindOrBuildStandardMaterial implements Database.
func (NISTDatabase) FindOrBuildStandardMaterial(name string) (*Material, error) {
	row, ok := standardMaterials[name]
	if !ok {
		return nil, &UnknownMaterialError{Name: name}
	}

	temperature := row.temperature
	if temperature == 0 {
		temperature = units.NTPTemperature
	}
	pressure := row.pressure
	if pressure == 0 {
		pressure = units.STPPressure
	}

	m := &Material{
		Name:        name,
		Density:     row.density * units.GramPerCm3,
		State:       row.state,
		Temperature: temperature,
		Pressure:    pressure,
		Standard:    true,
	}
	for _, f := range row.components {
		m.Components = append(m.Components, Component{
			Element:      NaturalElement(f.symbol),
			MassFraction: f.mass,
		})
	}
	return m, nil
}

// Names returns the names of all materials the database can build.
func (NISTDatabase) Names() []string {
	names := make([]string, 0, len(standardMaterials))
	for n := range standardMaterials {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NaturalElement builds the element with the given symbol from its natural
// isotopic composition, or returns nil for an unknown symbol.
func NaturalElement(symbol string) *Element {
	row, ok := naturalElements[symbol]
	if !ok {
		return nil
	}
	e := &Element{Name: row.name, Symbol: symbol}
	for _, iso := range row.isotopes {
		e.Isotopes = append(e.Isotopes, IsotopeFraction{
			Isotope: &Isotope{
				Name:      isotopeName(symbol, iso.a),
				Z:         row.z,
				A:         iso.a,
				MolarMass: iso.molarMass * units.GramPerMole,
			},
			Abundance: iso.abundance,
		})
	}
	return e
}

func isotopeName(symbol string, a int) string {
	return symbol + strconv.Itoa(a)
}
