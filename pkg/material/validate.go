package material

import (
	"fmt"
	"math"
)

// CompositionTolerance is the allowed deviation of a fraction sum from one.
const CompositionTolerance = 1e-6

// CompositionIssue describes one fraction sum that is off by more than
// CompositionTolerance.
type CompositionIssue struct {
	Material string
	Element  string // empty for a material-level mass fraction issue
	Sum      float64
}

func (i CompositionIssue) Error() string {
	if i.Element == "" {
		return fmt.Sprintf("material %q: mass fractions sum to %.9g: %v", i.Material, i.Sum, ErrInconsistentComposition)
	}
	return fmt.Sprintf("material %q element %q: abundances sum to %.9g: %v",
		i.Material, i.Element, i.Sum, ErrInconsistentComposition)
}

func (i CompositionIssue) Unwrap() error { return ErrInconsistentComposition }

// ValidateElement reports whether an element's abundances sum to one.
func ValidateElement(e *Element) error {
	if s := e.AbundanceSum(); math.Abs(s-1) > CompositionTolerance {
		return CompositionIssue{Element: e.Name, Sum: s}
	}
	return nil
}

// ValidateMaterial is the second phase of material construction: it checks
// every element's abundance sum and the material's mass fraction sum. It never
// modifies m.
func ValidateMaterial(m *Material) []CompositionIssue {
	var issues []CompositionIssue
	if s := m.MassFractionSum(); math.Abs(s-1) > CompositionTolerance {
		issues = append(issues, CompositionIssue{Material: m.Name, Sum: s})
	}
	for _, c := range m.Components {
		if c.Element == nil {
			issues = append(issues, CompositionIssue{Material: m.Name, Element: "<nil>"})
			continue
		}
		if s := c.Element.AbundanceSum(); math.Abs(s-1) > CompositionTolerance {
			issues = append(issues, CompositionIssue{Material: m.Name, Element: c.Element.Name, Sum: s})
		}
	}
	return issues
}
