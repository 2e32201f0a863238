package material

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Factory resolves standard materials and synthesizes custom ones, registering
// every result in its Registry.
type Factory struct {
	db       Database
	registry *Registry
	log      *logrus.Entry
}

// Option configures a Factory.
type Option func(*Factory)

// WithDatabase replaces the default NISTDatabase.
func WithDatabase(db Database) Option {
	return func(f *Factory) { f.db = db }
}

// WithRegistry shares an existing registry between factories.
func WithRegistry(r *Registry) Option {
	return func(f *Factory) { f.registry = r }
}

// WithLogger sets the logger used for registry events.
func WithLogger(l *logrus.Entry) Option {
	return func(f *Factory) { f.log = l }
}

// NewFactory returns a Factory backed by NISTDatabase and a fresh Registry
// unless options say otherwise.
func NewFactory(opts ...Option) *Factory {
	f := &Factory{db: NISTDatabase{}}
	for _, opt := range opts {
		opt(f)
	}
	if f.registry == nil {
		f.registry = NewRegistry()
	}
	if f.log == nil {
		quiet := logrus.New()
		quiet.SetOutput(io.Discard)
		f.log = logrus.NewEntry(quiet)
	}
	return f
}

// Registry returns the registry the factory writes to.
func (f *Factory) Registry() *Registry {
	return f.registry
}

// LookupStandardMaterial returns the standard material with the given name.
// A name already in the registry is returned as is; otherwise the database is
// queried and the result registered. Unknown names fail with an error
// wrapping ErrUnknownMaterial.
func (f *Factory) LookupStandardMaterial(name string) (*Material, error) {
	if m, ok := f.registry.Lookup(name); ok {
		return m, nil
	}
	m, err := f.db.FindOrBuildStandardMaterial(name)
	if err != nil {
		return nil, fmt.Errorf("lookup standard material: %w", err)
	}
	return f.register(m)
}

// CustomSpec describes a single-element material built from isotopes.
type CustomSpec struct {
	Name        string
	Density     float64
	State       State
	Temperature float64
	Pressure    float64
	Element     ElementSpec
}

// ElementSpec describes an element by its isotopes and their abundances.
type ElementSpec struct {
	Name     string
	Symbol   string
	Isotopes []IsotopeFraction
}

// BuildCustomMaterial synthesizes a material holding one element made of the
// given isotopes, with mass fraction 1.
//
// Abundances are taken as given: they are neither normalized nor checked.
// Fractions that do not sum to one produce an inconsistent material, which
// ValidateMaterial reports.
func (f *Factory) BuildCustomMaterial(spec CustomSpec) (*Material, error) {
	el := &Element{
		Name:     spec.Element.Name,
		Symbol:   spec.Element.Symbol,
		Isotopes: append([]IsotopeFraction(nil), spec.Element.Isotopes...),
	}
	m := &Material{
		Name:        spec.Name,
		Density:     spec.Density,
		State:       spec.State,
		Temperature: spec.Temperature,
		Pressure:    spec.Pressure,
		Components:  []Component{{Element: el, MassFraction: 1}},
	}
	return f.register(m)
}

// Register adds an externally assembled material (for example a multi-element
// mixture) to the factory's registry with the same semantics as the builders.
func (f *Factory) Register(m *Material) (*Material, error) {
	return f.register(m)
}

func (f *Factory) register(m *Material) (*Material, error) {
	stored, replaced, err := f.registry.Register(m)
	if err != nil {
		return nil, fmt.Errorf("register material %q: %w", m.Name, err)
	}
	if replaced {
		f.log.WithField("material", m.Name).Warn("material redefined with different parameters; last definition wins")
	} else if stored == m {
		f.log.WithFields(logrus.Fields{
			"material": m.Name,
			"standard": m.Standard,
		}).Debug("material registered")
	}
	return stored, nil
}
