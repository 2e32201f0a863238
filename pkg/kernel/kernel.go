// Package kernel defines the abstract solid-modeling kernel used to reason
// about volumes in space. Implementations turn geometry primitives into
// kernel solids that can be combined, moved and sampled. The abstraction
// allows swapping backends without changing the overlap checker.
package kernel

import (
	"fmt"

	"github.com/chazu/g4basic/pkg/geometry"
	"github.com/chazu/g4basic/pkg/units"
)

// Solid is an opaque handle to a kernel solid.
type Solid interface {
	// BoundingBox returns an axis-aligned box enclosing the solid.
	BoundingBox() (min, max [3]float64)
	// Evaluate returns a signed distance estimate: negative inside,
	// positive outside.
	Evaluate(p [3]float64) float64
}

// Kernel is the abstract kernel interface.
type Kernel interface {
	// Primitives, centered on the origin of their local frame.
	Sphere(s geometry.Sphere) (Solid, error)
	Tube(t geometry.Tube) (Solid, error)
	Box(b geometry.Box) (Solid, error)

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees, applied X then Y then Z
}

// Build converts a geometry primitive into a kernel solid.
func Build(k Kernel, s geometry.Solid) (Solid, error) {
	switch s := s.(type) {
	case geometry.Sphere:
		return k.Sphere(s)
	case geometry.Tube:
		return k.Tube(s)
	case geometry.Box:
		return k.Box(s)
	default:
		return nil, fmt.Errorf("kernel: unsupported solid %T", s)
	}
}

// Place applies a placement to a solid: rotate about the local origin, then
// translate.
func Place(k Kernel, s Solid, p geometry.Placement) Solid {
	if p.Rotation != nil && !p.Rotation.IsIdentity(0) {
		x, y, z := p.Rotation.EulerZYX()
		s = k.Rotate(s, x/units.Degree, y/units.Degree, z/units.Degree)
	}
	if t := p.Translation; !t.IsZero() {
		s = k.Translate(s, t.X, t.Y, t.Z)
	}
	return s
}

// Contains reports whether p lies inside s, treating points within tol of
// the surface as outside.
func Contains(s Solid, p [3]float64, tol float64) bool {
	return s.Evaluate(p) < -tol
}
