// Package overlap walks a volume tree and reports placement hazards: sibling
// volumes sharing space and daughters protruding from their mother. Solids
// are converted with a geometry kernel and compared by sampling their signed
// distance fields on a regular grid.
package overlap

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/chazu/g4basic/pkg/geometry"
	"github.com/chazu/g4basic/pkg/kernel"
	"github.com/chazu/g4basic/pkg/units"
)

// ErrOverlap is wrapped by every Hazard.
var ErrOverlap = errors.New("volume overlap")

// HazardKind distinguishes the two placement defects.
type HazardKind int

const (
	// SiblingOverlap: two daughters of the same mother share space.
	SiblingOverlap HazardKind = iota
	// Protrusion: a daughter extends outside its mother.
	Protrusion
)

func (k HazardKind) String() string {
	switch k {
	case SiblingOverlap:
		return "overlap"
	case Protrusion:
		return "protrusion"
	default:
		return fmt.Sprintf("HazardKind(%d)", int(k))
	}
}

// Hazard is one detected defect. Hazards are diagnostics; a tree with
// hazards is still a valid construction result.
type Hazard struct {
	Kind   HazardKind
	Volume string        // the volume being checked
	Other  string        // the sibling or mother it conflicts with
	Point  geometry.Vec3 // deepest offending sample, world frame
	Depth  float64       // how far Point lies inside the conflicting region
}

func (h Hazard) Error() string {
	switch h.Kind {
	case Protrusion:
		return fmt.Sprintf("%s: %q protrudes from mother %q by %.4g mm at %v", ErrOverlap, h.Volume, h.Other, h.Depth/units.Millimeter, h.Point)
	default:
		return fmt.Sprintf("%s: %q overlaps %q by %.4g mm at %v", ErrOverlap, h.Volume, h.Other, h.Depth/units.Millimeter, h.Point)
	}
}

func (h Hazard) Unwrap() error { return ErrOverlap }

// Options tune the sampling.
type Options struct {
	// Resolution is the number of samples per axis of each compared region.
	Resolution int
	// Tolerance is the depth below which a shared surface is not a hazard.
	Tolerance float64
	// All checks every volume, not only those with CheckOverlaps set.
	All bool
}

// DefaultOptions returns 32 samples per axis and a 1 µm tolerance.
func DefaultOptions() Options {
	return Options{Resolution: 32, Tolerance: 1 * units.Micrometer}
}

// Checker finds hazards in volume trees.
type Checker struct {
	k    kernel.Kernel
	opts Options
	log  *logrus.Entry
}

// Option configures a Checker.
type Option func(*Checker)

// WithOptions replaces DefaultOptions.
func WithOptions(o Options) Option {
	return func(c *Checker) { c.opts = o }
}

// WithLogger sets the logger used to report hazards as they are found.
func WithLogger(l *logrus.Entry) Option {
	return func(c *Checker) { c.log = l }
}

// NewChecker returns a Checker converting solids with k.
func NewChecker(k kernel.Kernel, opts ...Option) *Checker {
	c := &Checker{k: k, opts: DefaultOptions()}
	for _, opt := range opts {
		opt(c)
	}
	if c.opts.Resolution < 2 {
		c.opts.Resolution = 2
	}
	if c.log == nil {
		quiet := logrus.New()
		quiet.SetOutput(io.Discard)
		c.log = logrus.NewEntry(quiet)
	}
	return c
}

// Check walks t and returns every hazard found, in walk order. Each checked
// volume is compared with its mother and with the siblings placed before it.
// The checker is read-only and never mutates the tree.
func (c *Checker) Check(t *geometry.Tree) ([]Hazard, error) {
	if t == nil {
		return nil, nil
	}
	ts := newTransformStack()
	hazards, err := c.walkVolume(t, t.Root(), ts)
	if err != nil {
		return nil, fmt.Errorf("overlap: %w", err)
	}
	return hazards, nil
}

// walkVolume checks the daughters of v in v's frame, then recurses with v's
// daughters pushed on the transform stack.
func (c *Checker) walkVolume(t *geometry.Tree, v *geometry.Volume, ts *transformStack) ([]Hazard, error) {
	children := t.Children(v)
	if len(children) == 0 {
		return nil, nil
	}

	mother, err := kernel.Build(c.k, v.Solid)
	if err != nil {
		return nil, fmt.Errorf("volume %q: %w", v.Name, err)
	}
	placed := make([]kernel.Solid, len(children))
	for i, child := range children {
		s, err := kernel.Build(c.k, child.Solid)
		if err != nil {
			return nil, fmt.Errorf("volume %q: %w", child.Name, err)
		}
		placed[i] = kernel.Place(c.k, s, child.Placement)
	}

	toWorld := ts.accumulated()
	var hazards []Hazard
	for i, child := range children {
		if !c.opts.All && !child.CheckOverlaps {
			continue
		}
		if p, depth, ok := c.deepest(placed[i], c.k.Difference(placed[i], mother)); ok {
			hazards = append(hazards, c.report(Hazard{
				Kind: Protrusion, Volume: child.Name, Other: v.Name,
				Point: toWorld.Apply(p), Depth: depth,
			}))
		}
		for j := 0; j < i; j++ {
			if !overlapBoxes(placed[i], placed[j]) {
				continue
			}
			if p, depth, ok := c.deepest(placed[i], c.k.Intersection(placed[i], placed[j])); ok {
				hazards = append(hazards, c.report(Hazard{
					Kind: SiblingOverlap, Volume: child.Name, Other: children[j].Name,
					Point: toWorld.Apply(p), Depth: depth,
				}))
			}
		}
	}

	for _, child := range children {
		ts.push(child.Placement)
		collected, err := c.walkVolume(t, child, ts)
		ts.pop()
		if err != nil {
			return nil, err
		}
		hazards = append(hazards, collected...)
	}
	return hazards, nil
}

func (c *Checker) report(h Hazard) Hazard {
	c.log.WithFields(logrus.Fields{
		"kind":   h.Kind.String(),
		"volume": h.Volume,
		"other":  h.Other,
		"depth":  h.Depth,
	}).Warn("placement hazard")
	return h
}

// deepest samples region over the bounding box of within and returns the
// sample lying deepest inside it, if any lies deeper than the tolerance.
func (c *Checker) deepest(within, region kernel.Solid) (geometry.Vec3, float64, bool) {
	min, max := within.BoundingBox()
	n := c.opts.Resolution
	var (
		best  geometry.Vec3
		depth = c.opts.Tolerance
		found bool
	)
	var step [3]float64
	for a := 0; a < 3; a++ {
		step[a] = (max[a] - min[a]) / float64(n)
	}
	for i := 0; i < n; i++ {
		x := min[0] + (float64(i)+0.5)*step[0]
		for j := 0; j < n; j++ {
			y := min[1] + (float64(j)+0.5)*step[1]
			for k := 0; k < n; k++ {
				z := min[2] + (float64(k)+0.5)*step[2]
				if d := -region.Evaluate([3]float64{x, y, z}); d > depth {
					best, depth, found = geometry.Vec3{X: x, Y: y, Z: z}, d, true
				}
			}
		}
	}
	return best, depth, found
}

func overlapBoxes(a, b kernel.Solid) bool {
	amin, amax := a.BoundingBox()
	bmin, bmax := b.BoundingBox()
	for i := 0; i < 3; i++ {
		if amax[i] < bmin[i] || bmax[i] < amin[i] {
			return false
		}
	}
	return true
}
