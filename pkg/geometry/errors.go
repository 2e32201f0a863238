package geometry

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSolidParameters marks radii or angles violating a solid's
	// invariants. It is fatal to construction.
	ErrInvalidSolidParameters = errors.New("invalid solid parameters")

	// ErrInvalidVolume marks a VolumeSpec missing a solid or material
	// or carrying a non-orthonormal rotation.
	ErrInvalidVolume = errors.New("invalid volume")

	// ErrUnknownVolume is returned for a VolumeID not in the tree.
	ErrUnknownVolume = errors.New("unknown volume")

	// ErrDuplicateName marks two volumes sharing a name. Validate reports it
	// as a warning.
	ErrDuplicateName = errors.New("duplicate volume name")
)

// ParameterError names the offending solid parameter.
type ParameterError struct {
	Param  string
	Detail string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidSolidParameters, e.Param, e.Detail)
}

func (e *ParameterError) Unwrap() error { return ErrInvalidSolidParameters }

// SolidError attaches the volume name to a solid validation failure.
type SolidError struct {
	Volume string
	Kind   SolidKind
	Err    error
}

func (e *SolidError) Error() string {
	return fmt.Sprintf("volume %q (%s): %v", e.Volume, e.Kind, e.Err)
}

func (e *SolidError) Unwrap() error { return e.Err }
