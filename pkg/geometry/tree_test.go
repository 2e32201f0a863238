package geometry

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/g4basic/pkg/material"
)

func testMaterials(t *testing.T) (vacuum, water *material.Material) {
	t.Helper()
	f := material.NewFactory()
	vacuum, err := f.LookupStandardMaterial("G4_Galactic")
	require.NoError(t, err)
	water, err = f.LookupStandardMaterial("G4_WATER")
	require.NoError(t, err)
	return vacuum, water
}

func newTestTree(t *testing.T) (*Tree, *material.Material) {
	t.Helper()
	vacuum, water := testMaterials(t)
	tree, err := NewTree(VolumeSpec{Name: "world", Solid: FullSphere(100), Material: vacuum})
	require.NoError(t, err)
	return tree, water
}

func TestNewTreeForcesWorldIdentity(t *testing.T) {
	vacuum, _ := testMaterials(t)
	tree, err := NewTree(VolumeSpec{
		Name:      "world",
		Solid:     FullSphere(100),
		Material:  vacuum,
		Placement: At(Vec3{1, 2, 3}),
	})
	require.NoError(t, err)
	root := tree.Root()
	assert.True(t, root.IsRoot())
	assert.Equal(t, RootID, root.ID)
	assert.True(t, root.Placement.IsIdentity())
	assert.Nil(t, tree.Parent(root))
	assert.Equal(t, 1, tree.Len())
}

func TestNewTreeRejectsBadWorld(t *testing.T) {
	vacuum, _ := testMaterials(t)
	_, err := NewTree(VolumeSpec{Name: "world", Solid: Sphere{RMax: -1}, Material: vacuum})
	assert.ErrorIs(t, err, ErrInvalidSolidParameters)

	_, err = NewTree(VolumeSpec{Name: "world", Solid: FullSphere(1)})
	assert.ErrorIs(t, err, ErrInvalidVolume)
}

func TestPlaceBuildsHierarchy(t *testing.T) {
	tree, water := newTestTree(t)

	a, err := tree.Place(RootID, VolumeSpec{Name: "a", Solid: Box{1, 1, 1}, Material: water, Placement: At(Vec3{10, 0, 0})})
	require.NoError(t, err)
	b, err := tree.Place(a, VolumeSpec{Name: "b", Solid: Box{0.5, 0.5, 0.5}, Material: water, Placement: At(Vec3{0, 0.25, 0})})
	require.NoError(t, err)
	c, err := tree.Place(RootID, VolumeSpec{Name: "c", Solid: Box{1, 1, 1}, Material: water, Placement: At(Vec3{-10, 0, 0})})
	require.NoError(t, err)

	assert.Equal(t, 4, tree.Len())
	assert.Equal(t, []VolumeID{a, c}, tree.Root().Children)
	assert.Equal(t, "a", tree.Parent(tree.Get(b)).Name)
	assert.Same(t, tree.Get(b), tree.Lookup("b"))
	assert.Nil(t, tree.Lookup("missing"))
	assert.Nil(t, tree.Get(99))

	wp, err := tree.WorldPlacement(b)
	require.NoError(t, err)
	assert.True(t, wp.Translation.ApproxEqual(Vec3{10, 0.25, 0}, eps))

	var order []string
	var depths []int
	require.NoError(t, tree.Walk(func(v *Volume, depth int) error {
		order = append(order, v.Name)
		depths = append(depths, depth)
		return nil
	}))
	assert.Equal(t, []string{"world", "a", "b", "c"}, order)
	assert.Equal(t, []int{0, 1, 2, 1}, depths)

	assert.Len(t, tree.Materials(), 2)
}

func TestWalkStopsOnError(t *testing.T) {
	tree, water := newTestTree(t)
	_, err := tree.Place(RootID, VolumeSpec{Name: "a", Solid: Box{1, 1, 1}, Material: water})
	require.NoError(t, err)

	stop := errors.New("stop")
	n := 0
	err = tree.Walk(func(*Volume, int) error {
		n++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, n)
}

func TestPlaceErrors(t *testing.T) {
	tree, water := newTestTree(t)
	skew := Rotation{{1, 0.1, 0}, {0, 1, 0}, {0, 0, 1}}

	tests := []struct {
		name   string
		parent VolumeID
		spec   VolumeSpec
		want   error
	}{
		{"unknown parent", 7, VolumeSpec{Name: "x", Solid: Box{1, 1, 1}, Material: water}, ErrUnknownVolume},
		{"nil solid", RootID, VolumeSpec{Name: "x", Material: water}, ErrInvalidVolume},
		{"nil material", RootID, VolumeSpec{Name: "x", Solid: Box{1, 1, 1}}, ErrInvalidVolume},
		{"bad solid", RootID, VolumeSpec{Name: "x", Solid: Tube{RMin: 2, RMax: 1, HalfZ: 1, PhiSweep: math.Pi}, Material: water}, ErrInvalidSolidParameters},
		{"skew rotation", RootID, VolumeSpec{Name: "x", Solid: Box{1, 1, 1}, Material: water, Placement: Placement{Rotation: &skew}}, ErrInvalidVolume},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tree.Place(tt.parent, tt.spec)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, 1, tree.Len(), "nothing registered on error")
			assert.Empty(t, tree.Root().Children)
		})
	}

	_, err := tree.Place(RootID, VolumeSpec{Name: "bad", Solid: Box{-1, 1, 1}, Material: water})
	var se *SolidError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "bad", se.Volume)
	assert.Equal(t, KindBox, se.Kind)
}

func TestPlaceCopiesRotation(t *testing.T) {
	tree, water := newTestTree(t)
	r := RotationX(math.Pi / 2)
	id, err := tree.Place(RootID, VolumeSpec{Name: "rot", Solid: Box{1, 1, 1}, Material: water, Placement: Placement{Rotation: &r}})
	require.NoError(t, err)

	r[0][0] = 5
	got := tree.Get(id).Placement.Rotation
	require.NotNil(t, got)
	assert.NotSame(t, &r, got)
	assert.Equal(t, 1.0, got[0][0])
}

func TestTreeIDsAreDistinct(t *testing.T) {
	a, _ := newTestTree(t)
	b, _ := newTestTree(t)
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestValidate(t *testing.T) {
	tree, water := newTestTree(t)
	for i := 0; i < 2; i++ {
		_, err := tree.Place(RootID, VolumeSpec{Name: "dup", Solid: Box{1, 1, 1}, Material: water})
		require.NoError(t, err)
	}

	bad := &material.Material{
		Name:       "BAD",
		Components: []material.Component{{Element: material.NaturalElement("O"), MassFraction: 0.5}},
	}
	_, err := tree.Place(RootID, VolumeSpec{Name: "bad", Solid: Box{1, 1, 1}, Material: bad})
	require.NoError(t, err)

	res := Validate(tree)
	assert.True(t, res.OK())
	require.Len(t, res.Warnings, 2)
	assert.Equal(t, "dup", res.Warnings[0].Volume)
	assert.Contains(t, res.Warnings[1].Message, `"BAD"`)
	assert.Equal(t, SeverityWarning, res.Warnings[0].Severity)
	assert.Contains(t, res.Warnings[0].Error(), "[warning]")
	assert.ErrorIs(t, res.Warnings[0], ErrDuplicateName)
	assert.ErrorIs(t, res.Warnings[1], material.ErrInconsistentComposition)
}

func TestValidateCatchesMutatedSolid(t *testing.T) {
	tree, water := newTestTree(t)
	id, err := tree.Place(RootID, VolumeSpec{Name: "box", Solid: Box{1, 1, 1}, Material: water})
	require.NoError(t, err)

	tree.Get(id).Solid = Box{0, 1, 1}
	res := Validate(tree)
	assert.False(t, res.OK())
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "box", res.Errors[0].Volume)
	assert.ErrorIs(t, res.Errors[0], ErrInvalidSolidParameters)
}
