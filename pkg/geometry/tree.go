package geometry

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/chazu/g4basic/pkg/material"
)

// VolumeID indexes a volume inside its Tree. IDs are assigned in creation
// order and never reused; the world is always RootID.
type VolumeID int

const (
	// RootID is the world volume.
	RootID VolumeID = 0
	// NoParent is the parent of the world volume.
	NoParent VolumeID = -1
)

// Volume is a placed solid filled with a material. Volumes are owned by their
// Tree and must be treated as read-only by callers.
type Volume struct {
	ID            VolumeID
	Name          string
	Solid         Solid
	Material      *material.Material // shared, immutable
	Placement     Placement          // in the parent's frame
	Parent        VolumeID
	Children      []VolumeID // in placement order
	CheckOverlaps bool
	Visible       bool // visualization hint only
}

// IsRoot reports whether v is the world volume.
func (v *Volume) IsRoot() bool {
	return v.Parent == NoParent
}

// VolumeSpec is the input to NewTree and Tree.Place.
type VolumeSpec struct {
	Name          string
	Solid         Solid
	Material      *material.Material
	Placement     Placement
	CheckOverlaps bool
	Visible       bool
}

// Tree is an arena of volumes rooted at the world. Parent links are indices,
// so the tree has no ownership cycles and parent lookup is O(1).
//
// A Tree is built by a single goroutine and then only read; it is safe for
// concurrent readers once construction has returned.
type Tree struct {
	id      uuid.UUID
	volumes []*Volume
}

// NewTree creates a tree whose world volume is described by world. The
// world's placement is forced to the identity: it defines the global frame.
func NewTree(world VolumeSpec) (*Tree, error) {
	world.Placement = Placement{}
	v, err := newVolume(RootID, NoParent, world)
	if err != nil {
		return nil, err
	}
	return &Tree{id: uuid.New(), volumes: []*Volume{v}}, nil
}

// Place validates spec and registers it as the last child of parent.
// Nothing is registered when an error is returned.
func (t *Tree) Place(parent VolumeID, spec VolumeSpec) (VolumeID, error) {
	p := t.Get(parent)
	if p == nil {
		return 0, fmt.Errorf("place %q: parent %d: %w", spec.Name, parent, ErrUnknownVolume)
	}
	id := VolumeID(len(t.volumes))
	v, err := newVolume(id, parent, spec)
	if err != nil {
		return 0, err
	}
	t.volumes = append(t.volumes, v)
	p.Children = append(p.Children, id)
	return id, nil
}

func newVolume(id, parent VolumeID, spec VolumeSpec) (*Volume, error) {
	if spec.Solid == nil {
		return nil, fmt.Errorf("volume %q: no solid: %w", spec.Name, ErrInvalidVolume)
	}
	if err := spec.Solid.Validate(); err != nil {
		return nil, &SolidError{Volume: spec.Name, Kind: spec.Solid.Kind(), Err: err}
	}
	if spec.Material == nil {
		return nil, fmt.Errorf("volume %q: no material: %w", spec.Name, ErrInvalidVolume)
	}
	if r := spec.Placement.Rotation; r != nil && !r.IsOrthonormal(1e-9) {
		return nil, fmt.Errorf("volume %q: rotation is not orthonormal: %w", spec.Name, ErrInvalidVolume)
	}
	return &Volume{
		ID:            id,
		Name:          spec.Name,
		Solid:         spec.Solid,
		Material:      spec.Material,
		Placement:     spec.Placement.clone(),
		Parent:        parent,
		CheckOverlaps: spec.CheckOverlaps,
		Visible:       spec.Visible,
	}, nil
}

// ID returns the tree's instance identifier. Every constructed tree gets a
// fresh one.
func (t *Tree) ID() uuid.UUID {
	return t.id
}

// Root returns the world volume.
func (t *Tree) Root() *Volume {
	return t.volumes[RootID]
}

// Get returns the volume with the given ID, or nil.
func (t *Tree) Get(id VolumeID) *Volume {
	if id < 0 || int(id) >= len(t.volumes) {
		return nil
	}
	return t.volumes[id]
}

// Len returns the number of volumes, world included.
func (t *Tree) Len() int {
	return len(t.volumes)
}

// Volumes returns all volumes in creation order.
func (t *Tree) Volumes() []*Volume {
	return append([]*Volume(nil), t.volumes...)
}

// Parent returns the parent of v, or nil for the world.
func (t *Tree) Parent(v *Volume) *Volume {
	return t.Get(v.Parent)
}

// Children returns the child volumes of v in placement order.
func (t *Tree) Children(v *Volume) []*Volume {
	children := make([]*Volume, 0, len(v.Children))
	for _, cid := range v.Children {
		if c := t.Get(cid); c != nil {
			children = append(children, c)
		}
	}
	return children
}

// Lookup returns the first volume with the given name, or nil.
func (t *Tree) Lookup(name string) *Volume {
	for _, v := range t.volumes {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// WorldPlacement composes the placements from the world down to id.
func (t *Tree) WorldPlacement(id VolumeID) (Placement, error) {
	v := t.Get(id)
	if v == nil {
		return Placement{}, fmt.Errorf("world placement of %d: %w", id, ErrUnknownVolume)
	}
	var chain []Placement
	for ; v != nil && !v.IsRoot(); v = t.Parent(v) {
		chain = append(chain, v.Placement)
	}
	var pose Placement
	for i := len(chain) - 1; i >= 0; i-- {
		pose = pose.Compose(chain[i])
	}
	return pose, nil
}

// Walk visits every volume depth-first, parents before children, passing the
// depth below the world. Returning an error stops the walk.
func (t *Tree) Walk(fn func(v *Volume, depth int) error) error {
	return t.walk(t.Root(), 0, fn)
}

func (t *Tree) walk(v *Volume, depth int, fn func(*Volume, int) error) error {
	if err := fn(v, depth); err != nil {
		return err
	}
	for _, c := range t.Children(v) {
		if err := t.walk(c, depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}

// Materials returns the distinct materials referenced by the tree in first
// use order.
func (t *Tree) Materials() []*material.Material {
	seen := make(map[*material.Material]bool)
	var out []*material.Material
	for _, v := range t.volumes {
		if !seen[v.Material] {
			seen[v.Material] = true
			out = append(out, v.Material)
		}
	}
	return out
}
