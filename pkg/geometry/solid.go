package geometry

import (
	"fmt"
	"math"

	"github.com/chazu/g4basic/pkg/units"
)

// FullRevolution is a 360° sweep.
const FullRevolution = 2 * math.Pi

// angleTolerance absorbs rounding when angles are built from degrees.
const angleTolerance = 1e-9

// SolidKind distinguishes the CSG primitives.
type SolidKind int

const (
	KindSphere SolidKind = iota
	KindTube
	KindBox
)

func (k SolidKind) String() string {
	switch k {
	case KindSphere:
		return "sphere"
	case KindTube:
		return "tube"
	case KindBox:
		return "box"
	default:
		return "unknown"
	}
}

// Solid is a CSG primitive defined in a local frame centered on its origin.
// Lengths are in internal units and angles in radians.
type Solid interface {
	Kind() SolidKind
	// Validate checks the parameter invariants and returns an error wrapping
	// ErrInvalidSolidParameters on violation.
	Validate() error
	// Extent returns a local axis-aligned box enclosing the solid.
	Extent() (min, max Vec3)

	solid() // marker method restricting implementations to this package
}

// ---------------------------------------------------------------------------
// Sphere
// ---------------------------------------------------------------------------

// Sphere is a spherical shell section. Phi is the azimuth around Z measured
// from +X; theta is the polar angle measured from +Z.
type Sphere struct {
	RMin, RMax             float64
	PhiStart, PhiSweep     float64
	ThetaStart, ThetaSweep float64
}

// FullSphere returns a solid ball of radius r.
func FullSphere(r float64) Sphere {
	return Sphere{RMax: r, PhiSweep: FullRevolution, ThetaSweep: math.Pi}
}

func (Sphere) Kind() SolidKind { return KindSphere }
func (Sphere) solid()          {}

// Validate implements Solid.
func (s Sphere) Validate() error {
	if err := checkRadii(s.RMin, s.RMax); err != nil {
		return err
	}
	if err := checkPhi(s.PhiStart, s.PhiSweep); err != nil {
		return err
	}
	if !finite(s.ThetaStart) || s.ThetaStart < -angleTolerance || s.ThetaStart > math.Pi+angleTolerance {
		return invalid("thetaStart", "%.6g° outside [0°, 180°]", s.ThetaStart/units.Degree)
	}
	if !finite(s.ThetaSweep) || s.ThetaSweep < -angleTolerance || s.ThetaStart+s.ThetaSweep > math.Pi+angleTolerance {
		return invalid("thetaSweep", "%.6g° from %.6g° exceeds 180°", s.ThetaSweep/units.Degree, s.ThetaStart/units.Degree)
	}
	return nil
}

// Extent implements Solid. Angular sections are bounded by the full shell.
func (s Sphere) Extent() (min, max Vec3) {
	return Vec3{-s.RMax, -s.RMax, -s.RMax}, Vec3{s.RMax, s.RMax, s.RMax}
}

// FullPhi reports whether the sphere covers every azimuth.
func (s Sphere) FullPhi() bool { return isFull(s.PhiSweep) }

// FullTheta reports whether the sphere covers every polar angle.
func (s Sphere) FullTheta() bool {
	return math.Abs(s.ThetaStart) <= angleTolerance && math.Abs(s.ThetaSweep-math.Pi) <= angleTolerance
}

// ---------------------------------------------------------------------------
// Tube
// ---------------------------------------------------------------------------

// Tube is a cylindrical shell section along Z, optionally sliced in azimuth.
type Tube struct {
	RMin, RMax         float64
	HalfZ              float64
	PhiStart, PhiSweep float64
}

func (Tube) Kind() SolidKind { return KindTube }
func (Tube) solid()          {}

// Validate implements Solid.
func (t Tube) Validate() error {
	if err := checkRadii(t.RMin, t.RMax); err != nil {
		return err
	}
	if !finite(t.HalfZ) || !(t.HalfZ > 0) {
		return invalid("halfZ", "%.6g must be positive", t.HalfZ)
	}
	return checkPhi(t.PhiStart, t.PhiSweep)
}

// Extent implements Solid. Angular sections are bounded by the full tube.
func (t Tube) Extent() (min, max Vec3) {
	return Vec3{-t.RMax, -t.RMax, -t.HalfZ}, Vec3{t.RMax, t.RMax, t.HalfZ}
}

// FullPhi reports whether the tube covers every azimuth; PhiStart is then
// irrelevant.
func (t Tube) FullPhi() bool { return isFull(t.PhiSweep) }

// ---------------------------------------------------------------------------
// Box
// ---------------------------------------------------------------------------

// Box is a cuboid given by its half-lengths.
type Box struct {
	HalfX, HalfY, HalfZ float64
}

func (Box) Kind() SolidKind { return KindBox }
func (Box) solid()          {}

// Validate implements Solid.
func (b Box) Validate() error {
	for _, c := range []struct {
		name string
		v    float64
	}{{"halfX", b.HalfX}, {"halfY", b.HalfY}, {"halfZ", b.HalfZ}} {
		if !finite(c.v) || !(c.v > 0) {
			return invalid(c.name, "%.6g must be positive", c.v)
		}
	}
	return nil
}

// Extent implements Solid.
func (b Box) Extent() (min, max Vec3) {
	return Vec3{-b.HalfX, -b.HalfY, -b.HalfZ}, Vec3{b.HalfX, b.HalfY, b.HalfZ}
}

// ---------------------------------------------------------------------------
// Shared checks
// ---------------------------------------------------------------------------

func isFull(sweep float64) bool {
	return math.Abs(sweep-FullRevolution) <= angleTolerance
}

func checkRadii(rmin, rmax float64) error {
	if !finite(rmin) || rmin < 0 {
		return invalid("innerRadius", "%.6g must be non-negative", rmin)
	}
	if !finite(rmax) || !(rmin < rmax) {
		return invalid("outerRadius", "%.6g must exceed innerRadius %.6g", rmax, rmin)
	}
	return nil
}

func checkPhi(start, sweep float64) error {
	if !finite(sweep) || sweep < -angleTolerance || sweep > FullRevolution+angleTolerance {
		return invalid("phiSweep", "%.6g° outside [0°, 360°]", sweep/units.Degree)
	}
	if !finite(start) {
		return invalid("phiStart", "%.6g is not finite", start)
	}
	if isFull(sweep) {
		return nil
	}
	if start+sweep > FullRevolution+angleTolerance {
		return invalid("phiStart", "%.6g° + sweep %.6g° exceeds 360°", start/units.Degree, sweep/units.Degree)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func invalid(param, format string, args ...any) error {
	return &ParameterError{Param: param, Detail: fmt.Sprintf(format, args...)}
}
