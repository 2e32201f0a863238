package material

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownMaterial is returned when a standard material name is not in
	// the database. It is fatal to construction.
	ErrUnknownMaterial = errors.New("unknown material")

	// ErrInconsistentComposition marks fractions that do not sum to one. It is
	// only reported by the validation pass; building never rejects it.
	ErrInconsistentComposition = errors.New("inconsistent composition")

	// ErrRegistryFrozen is returned when a frozen registry is asked to accept
	// a new or diverging definition.
	ErrRegistryFrozen = errors.New("material registry is frozen")
)

// UnknownMaterialError names the material that could not be resolved.
type UnknownMaterialError struct {
	Name string
}

func (e *UnknownMaterialError) Error() string {
	return fmt.Sprintf("material %q: %v", e.Name, ErrUnknownMaterial)
}

func (e *UnknownMaterialError) Unwrap() error { return ErrUnknownMaterial }
