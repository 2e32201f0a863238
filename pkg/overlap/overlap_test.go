package overlap

import (
	"bytes"
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/g4basic/pkg/geometry"
	"github.com/chazu/g4basic/pkg/kernel/sdfx"
	"github.com/chazu/g4basic/pkg/material"
	"github.com/chazu/g4basic/pkg/units"
)

func newWorld(t *testing.T) (*geometry.Tree, *material.Material) {
	t.Helper()
	f := material.NewFactory()
	vacuum, err := f.LookupStandardMaterial("G4_Galactic")
	require.NoError(t, err)
	water, err := f.LookupStandardMaterial("G4_WATER")
	require.NoError(t, err)
	tree, err := geometry.NewTree(geometry.VolumeSpec{
		Name: "world", Solid: geometry.FullSphere(100 * units.Meter), Material: vacuum,
	})
	require.NoError(t, err)
	return tree, water
}

func place(t *testing.T, tree *geometry.Tree, parent geometry.VolumeID, name string, s geometry.Solid, m *material.Material, at geometry.Vec3) geometry.VolumeID {
	t.Helper()
	id, err := tree.Place(parent, geometry.VolumeSpec{
		Name: name, Solid: s, Material: m, Placement: geometry.At(at), CheckOverlaps: true,
	})
	require.NoError(t, err)
	return id
}

func box(half float64) geometry.Box {
	return geometry.Box{HalfX: half, HalfY: half, HalfZ: half}
}

func TestCheckCleanTree(t *testing.T) {
	tree, water := newWorld(t)
	place(t, tree, geometry.RootID, "a", box(1), water, geometry.Vec3{X: -5})
	place(t, tree, geometry.RootID, "b", box(1), water, geometry.Vec3{X: 5})

	hazards, err := NewChecker(sdfx.New()).Check(tree)
	require.NoError(t, err)
	assert.Empty(t, hazards)
}

func TestCheckAbuttingIsNotHazard(t *testing.T) {
	tree, water := newWorld(t)
	place(t, tree, geometry.RootID, "a", box(1), water, geometry.Vec3{X: -1})
	place(t, tree, geometry.RootID, "b", box(1), water, geometry.Vec3{X: 1})

	hazards, err := NewChecker(sdfx.New()).Check(tree)
	require.NoError(t, err)
	assert.Empty(t, hazards)
}

func TestCheckSiblingOverlap(t *testing.T) {
	tree, water := newWorld(t)
	place(t, tree, geometry.RootID, "a", box(1), water, geometry.Vec3{})
	place(t, tree, geometry.RootID, "b", box(1), water, geometry.Vec3{X: 1.5, Y: 10})
	place(t, tree, geometry.RootID, "c", box(1), water, geometry.Vec3{X: 1.5})

	hazards, err := NewChecker(sdfx.New()).Check(tree)
	require.NoError(t, err)
	require.Len(t, hazards, 1)
	h := hazards[0]
	assert.Equal(t, SiblingOverlap, h.Kind)
	assert.Equal(t, "c", h.Volume)
	assert.Equal(t, "a", h.Other)
	assert.Greater(t, h.Depth, 0.0)
	assert.LessOrEqual(t, h.Depth, 0.25+1e-9)
	assert.GreaterOrEqual(t, h.Point.X, 0.5)
	assert.LessOrEqual(t, h.Point.X, 1.0)
	assert.ErrorIs(t, h, ErrOverlap)
	assert.Contains(t, h.Error(), `"c" overlaps "a"`)
}

func TestCheckProtrusionInWorldFrame(t *testing.T) {
	tree, water := newWorld(t)
	mother := place(t, tree, geometry.RootID, "mother", box(2), water, geometry.Vec3{Z: 50})
	place(t, tree, mother, "daughter", box(1), water, geometry.Vec3{X: 1.5})

	hazards, err := NewChecker(sdfx.New()).Check(tree)
	require.NoError(t, err)
	require.Len(t, hazards, 1)
	h := hazards[0]
	assert.Equal(t, Protrusion, h.Kind)
	assert.Equal(t, "daughter", h.Volume)
	assert.Equal(t, "mother", h.Other)
	assert.Greater(t, h.Point.X, 2.0, "offending sample lies outside the mother")
	assert.InDelta(t, 50, h.Point.Z, 1, "point is reported in the world frame")
}

func TestCheckHonorsFlag(t *testing.T) {
	tree, water := newWorld(t)
	place(t, tree, geometry.RootID, "a", box(1), water, geometry.Vec3{})
	_, err := tree.Place(geometry.RootID, geometry.VolumeSpec{
		Name: "quiet", Solid: box(1), Material: water, Placement: geometry.At(geometry.Vec3{X: 1}),
	})
	require.NoError(t, err)

	hazards, err := NewChecker(sdfx.New()).Check(tree)
	require.NoError(t, err)
	assert.Empty(t, hazards, "volume without CheckOverlaps is skipped")

	opts := DefaultOptions()
	opts.All = true
	hazards, err = NewChecker(sdfx.New(), WithOptions(opts)).Check(tree)
	require.NoError(t, err)
	assert.Len(t, hazards, 1)
}

func TestCheckRotatedPlacement(t *testing.T) {
	tree, water := newWorld(t)
	place(t, tree, geometry.RootID, "rod", geometry.Tube{RMax: 0.5, HalfZ: 5, PhiSweep: geometry.FullRevolution}, water, geometry.Vec3{})
	r := geometry.RotationX(math.Pi / 2)
	// Lying along Y after rotation, so it meets the rod only at the origin.
	_, err := tree.Place(geometry.RootID, geometry.VolumeSpec{
		Name: "cross", Solid: geometry.Tube{RMax: 0.5, HalfZ: 5, PhiSweep: geometry.FullRevolution},
		Material: water, Placement: geometry.Placement{Rotation: &r, Translation: geometry.Vec3{Z: 3}},
		CheckOverlaps: true,
	})
	require.NoError(t, err)

	hazards, err := NewChecker(sdfx.New()).Check(tree)
	require.NoError(t, err)
	require.Len(t, hazards, 1)
	assert.InDelta(t, 3, hazards[0].Point.Z, 0.5)
}

func TestCheckLogsHazards(t *testing.T) {
	tree, water := newWorld(t)
	place(t, tree, geometry.RootID, "a", box(1), water, geometry.Vec3{})
	place(t, tree, geometry.RootID, "b", box(1), water, geometry.Vec3{X: 1})

	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	_, err := NewChecker(sdfx.New(), WithLogger(logrus.NewEntry(logger))).Check(tree)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "placement hazard")
	assert.Contains(t, buf.String(), "volume=b")
}

func TestCheckNilTree(t *testing.T) {
	hazards, err := NewChecker(sdfx.New()).Check(nil)
	assert.NoError(t, err)
	assert.Nil(t, hazards)
}

func TestTransformStack(t *testing.T) {
	ts := newTransformStack()
	assert.True(t, ts.accumulated().IsIdentity())

	r := geometry.RotationZ(math.Pi / 2)
	ts.push(geometry.Placement{Rotation: &r, Translation: geometry.Vec3{X: 10}})
	ts.push(geometry.At(geometry.Vec3{X: 1}))
	got := ts.accumulated().Apply(geometry.Vec3{})
	assert.True(t, got.ApproxEqual(geometry.Vec3{X: 10, Y: 1}, 1e-12), "got %v", got)

	ts.pop()
	ts.pop()
	ts.pop()
	assert.True(t, ts.accumulated().IsIdentity())
}
