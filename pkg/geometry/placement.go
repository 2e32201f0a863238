package geometry

// Placement positions a child volume in its parent's frame:
// p_parent = Rotation·p_child + Translation. A nil Rotation is the identity.
type Placement struct {
	Rotation    *Rotation
	Translation Vec3
}

// At returns an unrotated placement at t.
func At(t Vec3) Placement {
	return Placement{Translation: t}
}

// Matrix returns the rotation, substituting the identity for nil.
func (p Placement) Matrix() Rotation {
	if p.Rotation == nil {
		return Identity()
	}
	return *p.Rotation
}

// Apply maps a point from the child frame into the parent frame.
func (p Placement) Apply(v Vec3) Vec3 {
	if p.Rotation != nil {
		v = p.Rotation.Apply(v)
	}
	return v.Add(p.Translation)
}

// Compose returns the placement of a grandchild: p ∘ child.
func (p Placement) Compose(child Placement) Placement {
	out := Placement{Translation: p.Apply(child.Translation)}
	switch {
	case p.Rotation == nil && child.Rotation == nil:
	case p.Rotation == nil:
		r := *child.Rotation
		out.Rotation = &r
	case child.Rotation == nil:
		r := *p.Rotation
		out.Rotation = &r
	default:
		r := p.Rotation.Mul(*child.Rotation)
		out.Rotation = &r
	}
	return out
}

// IsIdentity reports whether p is the identity transform.
func (p Placement) IsIdentity() bool {
	return p.Translation.IsZero() && (p.Rotation == nil || p.Rotation.IsIdentity(0))
}

// clone returns a copy that shares no memory with p.
func (p Placement) clone() Placement {
	if p.Rotation != nil {
		r := *p.Rotation
		p.Rotation = &r
	}
	return p
}
