// Package detector constructs the apparatus geometry: a world volume filled
// with vacuum holding either the water phantom or a shielded xenon detector.
//
// Construct is the entry point a transport engine calls once per worker. It
// holds no package-level state; every call returns an independently owned
// tree whose only shared parts are the immutable materials from the factory's
// registry.
package detector

import (
	"fmt"
	"io"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/chazu/g4basic/pkg/config"
	"github.com/chazu/g4basic/pkg/geometry"
	"github.com/chazu/g4basic/pkg/material"
	"github.com/chazu/g4basic/pkg/units"
)

// Volume names.
const (
	WorldName     = "WORLD"
	OuterRingName = "CIL0"
	UpperDiskName = "CIL1"
	RightPegName  = "ojod"
	LeftPegName   = "ojoi"
	LowerDiskName = "boca"
	ShieldingName = "SHIELDING"
	DetectorName  = "DETECTOR"
)

// Builder assembles volume trees.
type Builder struct {
	factory *material.Factory
	cfg     config.ApparatusConfig
	log     *logrus.Entry
}

// Option configures a Builder.
type Option func(*Builder)

// WithConfig replaces the default apparatus description.
func WithConfig(c config.ApparatusConfig) Option {
	return func(b *Builder) { b.cfg = c }
}

// WithLogger sets the logger used to trace construction.
func WithLogger(l *logrus.Entry) Option {
	return func(b *Builder) { b.log = l }
}

// New returns a Builder drawing materials from f.
func New(f *material.Factory, opts ...Option) *Builder {
	b := &Builder{factory: f, cfg: config.Default().Apparatus}
	for _, opt := range opts {
		opt(b)
	}
	if b.log == nil {
		quiet := logrus.New()
		quiet.SetOutput(io.Discard)
		b.log = logrus.NewEntry(quiet)
	}
	return b
}

// Factory returns the material factory the builder draws from.
func (b *Builder) Factory() *material.Factory {
	return b.factory
}

// Construct builds the world and its contents and returns the tree; its
// Root is the world volume. On any error nothing is returned: an unknown
// material wraps material.ErrUnknownMaterial and a bad solid wraps
// geometry.ErrInvalidSolidParameters.
func (b *Builder) Construct() (*geometry.Tree, error) {
	c := &construction{Builder: b}
	tree, err := c.world()
	if err != nil {
		return nil, fmt.Errorf("construct: %w", err)
	}
	c.tree = tree

	switch b.cfg.Layout {
	case config.LayoutPhantom, "":
		err = c.phantom()
	case config.LayoutShieldedDetector:
		err = c.shieldedDetector()
	default:
		err = fmt.Errorf("unknown layout %q", b.cfg.Layout)
	}
	if err != nil {
		return nil, fmt.Errorf("construct: %w", err)
	}

	b.log.WithFields(logrus.Fields{
		"tree":    tree.ID(),
		"volumes": tree.Len(),
		"layout":  b.cfg.Layout,
	}).Info("geometry constructed")
	return tree, nil
}

// construction carries the state of one Construct call.
type construction struct {
	*Builder
	tree *geometry.Tree
}

func (c *construction) material(name string) (*material.Material, error) {
	if name == EnrichedXenonName {
		return EnrichedXenon(c.factory)
	}
	return c.factory.LookupStandardMaterial(name)
}

func (c *construction) world() (*geometry.Tree, error) {
	vacuum, err := c.material(c.cfg.WorldMaterial)
	if err != nil {
		return nil, err
	}
	return geometry.NewTree(geometry.VolumeSpec{
		Name:          WorldName,
		Solid:         geometry.FullSphere(c.cfg.WorldSize / 2 * units.Meter),
		Material:      vacuum,
		CheckOverlaps: true,
		Visible:       false,
	})
}

// place resolves the material and registers a visible, overlap-checked
// volume under parent.
func (c *construction) place(parent geometry.VolumeID, name string, s geometry.Solid, materialName string, p geometry.Placement) (geometry.VolumeID, error) {
	m, err := c.material(materialName)
	if err != nil {
		return 0, fmt.Errorf("volume %q: %w", name, err)
	}
	id, err := c.tree.Place(parent, geometry.VolumeSpec{
		Name:          name,
		Solid:         s,
		Material:      m,
		Placement:     p,
		CheckOverlaps: true,
		Visible:       true,
	})
	if err != nil {
		return 0, err
	}
	c.log.WithFields(logrus.Fields{
		"volume":   name,
		"parent":   c.tree.Get(parent).Name,
		"solid":    s.Kind().String(),
		"material": m.Name,
	}).Debug("volume placed")
	return id, nil
}

// phantom places the water figure: an outer ring, an upper half disk with
// two pegs, and a lower half disk.
func (c *construction) phantom() error {
	r := c.cfg.Radius * units.Meter
	h := c.cfg.HalfHeight * units.Meter
	tissue := c.cfg.TissueMaterial
	full := geometry.FullRevolution
	half := 180 * units.Degree

	sin, cos := math.Sincos(c.cfg.PegAngle * units.Degree)
	pegX, pegY := r/2*cos, r/2*sin
	peg := geometry.Tube{RMax: r / 7, HalfZ: h, PhiSweep: full}

	steps := []struct {
		name  string
		solid geometry.Solid
		at    geometry.Vec3
	}{
		{OuterRingName, geometry.Tube{RMin: 2 * r / 3, RMax: r, HalfZ: h, PhiSweep: full}, geometry.Vec3{}},
		{UpperDiskName, geometry.Tube{RMax: 2 * r / 3, HalfZ: h, PhiSweep: half}, geometry.Vec3{}},
		{RightPegName, peg, geometry.Vec3{X: pegX, Y: pegY}},
		{LeftPegName, peg, geometry.Vec3{X: -pegX, Y: pegY}},
		{LowerDiskName, geometry.Tube{RMax: 3 * r / 8, HalfZ: h, PhiStart: half, PhiSweep: half}, geometry.Vec3{Y: -3*r/8 + r/7}},
	}
	for _, s := range steps {
		if _, err := c.place(geometry.RootID, s.name, s.solid, tissue, geometry.At(s.at)); err != nil {
			return err
		}
	}
	return nil
}

// shieldedDetector places a water cylinder lying along Y with a cubic xenon
// detector at its center.
func (c *construction) shieldedDetector() error {
	s := c.cfg.Shielding
	rotX := geometry.RotationX(90 * units.Degree)
	shield, err := c.place(geometry.RootID, ShieldingName,
		geometry.Tube{RMax: s.Diameter / 2 * units.Meter, HalfZ: s.Height / 2 * units.Meter, PhiSweep: geometry.FullRevolution},
		s.Material, geometry.Placement{Rotation: &rotX})
	if err != nil {
		return err
	}

	half := c.cfg.Detector.Size / 2 * units.Meter
	_, err = c.place(shield, DetectorName,
		geometry.Box{HalfX: half, HalfY: half, HalfZ: half},
		c.cfg.Detector.Material, geometry.Placement{})
	return err
}
