// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/g4basic/pkg/geometry"
	"github.com/chazu/g4basic/pkg/kernel"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// Evaluate returns the signed distance at p.
func (s *sdfxSolid) Evaluate(p [3]float64) float64 {
	return s.s.Evaluate(v3.Vec{X: p[0], Y: p[1], Z: p[2]})
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct{}

// New returns a new SdfxKernel.
func New() *SdfxKernel {
	return &SdfxKernel{}
}

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

// Sphere builds a spherical shell section. Inner radius, phi and theta
// limits are carved out of a full ball.
func (k *SdfxKernel) Sphere(g geometry.Sphere) (kernel.Solid, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	s, err := sdf.Sphere3D(g.RMax)
	if err != nil {
		return nil, fmt.Errorf("sdfx.Sphere3D: %w", err)
	}
	if g.RMin > 0 {
		inner, err := sdf.Sphere3D(g.RMin)
		if err != nil {
			return nil, fmt.Errorf("sdfx.Sphere3D: %w", err)
		}
		s = sdf.Difference3D(s, inner)
	}
	if !g.FullTheta() {
		s = sdf.Intersect3D(s, &thetaBand{
			start: g.ThetaStart,
			end:   g.ThetaStart + g.ThetaSweep,
			bb:    s.BoundingBox(),
		})
	}
	if !g.FullPhi() {
		s = phiWedge(s, g.PhiStart, g.PhiSweep)
	}
	return wrap(s), nil
}

// Tube builds a cylindrical shell section along Z.
func (k *SdfxKernel) Tube(g geometry.Tube) (kernel.Solid, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	height := 2 * g.HalfZ
	s, err := sdf.Cylinder3D(height, g.RMax, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx.Cylinder3D: %w", err)
	}
	if g.RMin > 0 {
		// The bore is taller than the tube so the caps stay open.
		bore, err := sdf.Cylinder3D(2*height, g.RMin, 0)
		if err != nil {
			return nil, fmt.Errorf("sdfx.Cylinder3D: %w", err)
		}
		s = sdf.Difference3D(s, bore)
	}
	if !g.FullPhi() {
		s = phiWedge(s, g.PhiStart, g.PhiSweep)
	}
	return wrap(s), nil
}

// Box builds a box from its half-lengths, centered on the origin.
func (k *SdfxKernel) Box(g geometry.Box) (kernel.Solid, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	s, err := sdf.Box3D(v3.Vec{X: 2 * g.HalfX, Y: 2 * g.HalfY, Z: 2 * g.HalfZ}, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx.Box3D: %w", err)
	}
	return wrap(s), nil
}

// Union returns the union of two solids.
func (k *SdfxKernel) Union(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Union3D(unwrap(a), unwrap(b)))
}

// Difference returns the difference a - b.
func (k *SdfxKernel) Difference(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Difference3D(unwrap(a), unwrap(b)))
}

// Intersection returns the intersection of two solids.
func (k *SdfxKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Intersect3D(unwrap(a), unwrap(b)))
}

// Translate moves a solid by (x, y, z).
func (k *SdfxKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	m := sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// Rotate rotates a solid by Euler angles (degrees) around X, Y, Z axes.
func (k *SdfxKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	xRad := x * math.Pi / 180.0
	yRad := y * math.Pi / 180.0
	zRad := z * math.Pi / 180.0

	m := sdf.RotateZ(zRad).Mul(sdf.RotateY(yRad)).Mul(sdf.RotateX(xRad))
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// phiWedge keeps the part of s with azimuth in [start, start+sweep].
// Each boundary half-plane contains the Z axis; Cut3D keeps the side its
// normal points to. Sweeps up to 180° are the intersection of the two cuts,
// wider sweeps their union.
func phiWedge(s sdf.SDF3, start, sweep float64) sdf.SDF3 {
	end := start + sweep
	sin0, cos0 := math.Sincos(start)
	sin1, cos1 := math.Sincos(end)
	n0 := v3.Vec{X: -sin0, Y: cos0}
	n1 := v3.Vec{X: sin1, Y: -cos1}
	origin := v3.Vec{}
	if sweep <= math.Pi {
		return sdf.Cut3D(sdf.Cut3D(s, origin, n0), origin, n1)
	}
	return sdf.Union3D(sdf.Cut3D(s, origin, n0), sdf.Cut3D(s, origin, n1))
}

// thetaBand is the region between two cones about Z with polar angles start
// and end. Its distance is exact near the cone surfaces and conservative
// elsewhere, which is all sampling needs.
type thetaBand struct {
	start, end float64
	bb         sdf.Box3
}

func (t *thetaBand) Evaluate(p v3.Vec) float64 {
	rho := math.Hypot(p.X, p.Y)
	r := math.Hypot(rho, p.Z)
	if r == 0 {
		return 0
	}
	theta := math.Atan2(rho, p.Z)
	// Angular excess over the band; negative inside.
	d := math.Max(t.start-theta, theta-t.end)
	if d >= math.Pi/2 {
		return r
	}
	if d <= -math.Pi/2 {
		return -r
	}
	return r * math.Sin(d)
}

func (t *thetaBand) BoundingBox() sdf.Box3 {
	return t.bb
}
