package geometry

import (
	"fmt"

	"github.com/chazu/g4basic/pkg/material"
)

// ValidationSeverity indicates whether a finding makes the tree unusable or
// is advisory.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // tree must not be used
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Volume   string // volume name, empty if tree-level
	Message  string
	Severity ValidationSeverity
	Err      error // underlying sentinel or typed error, may be nil
}

func (e ValidationError) Error() string {
	if e.Volume == "" {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] volume %q: %s", e.Severity, e.Volume, e.Message)
}

func (e ValidationError) Unwrap() error { return e.Err }

// ValidationResult separates blocking errors from warnings.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// OK reports whether there are no blocking errors.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Validate re-checks a finished tree. Place already rejects bad solids, so
// on a tree built through the API the errors tier is normally empty; the
// warnings cover things Place deliberately accepts: duplicate or empty names
// and materials whose fractions do not sum to one. Validate never mutates t.
func Validate(t *Tree) ValidationResult {
	var findings []ValidationError
	findings = append(findings, validateStructure(t)...)
	findings = append(findings, validateSolids(t)...)
	findings = append(findings, validateNames(t)...)
	findings = append(findings, validateMaterials(t)...)

	var result ValidationResult
	for _, f := range findings {
		if f.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, f)
		} else {
			result.Errors = append(result.Errors, f)
		}
	}
	return result
}

func validateStructure(t *Tree) []ValidationError {
	var errs []ValidationError
	for _, v := range t.volumes {
		if v.IsRoot() {
			if v.ID != RootID {
				errs = append(errs, ValidationError{
					Volume:   v.Name,
					Message:  "second root volume",
					Severity: SeverityError,
				})
			}
			if !v.Placement.IsIdentity() {
				errs = append(errs, ValidationError{
					Volume:   v.Name,
					Message:  "world placement is not the identity",
					Severity: SeverityError,
				})
			}
			continue
		}
		if t.Get(v.Parent) == nil {
			errs = append(errs, ValidationError{
				Volume:   v.Name,
				Message:  fmt.Sprintf("parent %d does not exist", v.Parent),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

func validateSolids(t *Tree) []ValidationError {
	var errs []ValidationError
	for _, v := range t.volumes {
		if v.Solid == nil {
			errs = append(errs, ValidationError{Volume: v.Name, Message: "no solid", Severity: SeverityError})
			continue
		}
		if err := v.Solid.Validate(); err != nil {
			errs = append(errs, ValidationError{
				Volume:   v.Name,
				Message:  fmt.Sprintf("%s: %v", v.Solid.Kind(), err),
				Severity: SeverityError,
				Err:      err,
			})
		}
	}
	return errs
}

func validateNames(t *Tree) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool)
	for _, v := range t.volumes {
		if v.Name == "" {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("volume %d has no name", v.ID),
				Severity: SeverityWarning,
			})
			continue
		}
		if seen[v.Name] {
			errs = append(errs, ValidationError{
				Volume:   v.Name,
				Message:  "name is used by more than one volume",
				Severity: SeverityWarning,
				Err:      ErrDuplicateName,
			})
		}
		seen[v.Name] = true
	}
	return errs
}

func validateMaterials(t *Tree) []ValidationError {
	var errs []ValidationError
	for _, m := range t.Materials() {
		if m == nil {
			errs = append(errs, ValidationError{Message: "nil material", Severity: SeverityError})
			continue
		}
		for _, issue := range material.ValidateMaterial(m) {
			errs = append(errs, ValidationError{
				Message:  issue.Error(),
				Severity: SeverityWarning,
				Err:      issue,
			})
		}
	}
	return errs
}
