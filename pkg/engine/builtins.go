package engine

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/g4basic/pkg/geometry"
	"github.com/chazu/g4basic/pkg/material"
	"github.com/chazu/g4basic/pkg/units"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource rewrites DSL source before handing it to zygomys:
//
//  1. :keyword becomes the string literal "__kw_keyword", so keywords never
//     collide with user variables of the same name.
//
//  2. Kebab-case identifiers become underscores (check-overlaps ->
//     check_overlaps). zygomys reads a hyphen inside a symbol as subtraction.
//
//  3. ; line comments become // comments.
//
// String literals are copied through untouched.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ':' && i+1 < len(b) {
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				result = append(result, '"')
				result = append(result, kwPrefix...)
				result = append(result, b[i+1:j]...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// A hyphen between identifier characters joins words; anywhere else
		// it is the minus operator.
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isLetter(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// ---------------------------------------------------------------------------
// Unit prelude
// ---------------------------------------------------------------------------

// unitSymbols are bound in every environment so programs can write
// (* 10 m) or (* 97.49 kg-per-m3).
var unitSymbols = []struct {
	name  string
	value float64
}{
	{"mm", units.Millimeter},
	{"cm", units.Centimeter},
	{"m", units.Meter},
	{"deg", units.Degree},
	{"rad", units.Radian},
	{"kelvin", units.Kelvin},
	{"bar", units.Bar},
	{"atmosphere", units.Atmosphere},
	{"g_per_cm3", units.GramPerCm3},
	{"kg_per_m3", units.KilogramPerM3},
	{"g_per_mole", units.GramPerMole},
	{"percent", units.PerCent},
}

var prelude = buildPrelude()

// preludeLines is subtracted from reported line numbers.
var preludeLines = strings.Count(prelude, "\n")

func buildPrelude() string {
	var sb strings.Builder
	for _, u := range unitSymbols {
		fmt.Fprintf(&sb, "(def %s %s)\n", u.name, floatLiteral(u.value))
	}
	return sb.String()
}

// floatLiteral formats v so the zygomys lexer reads it back as a float.
func floatLiteral(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

type sexpSolid struct {
	solid geometry.Solid
}

func (s *sexpSolid) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s %+v)", s.solid.Kind(), s.solid)
}
func (s *sexpSolid) Type() *zygo.RegisteredType { return nil }

type sexpMaterial struct {
	m *material.Material
}

func (m *sexpMaterial) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(material %q)", m.m.Name)
}
func (m *sexpMaterial) Type() *zygo.RegisteredType { return nil }

type sexpIsotope struct {
	iso *material.Isotope
}

func (i *sexpIsotope) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(isotope %q)", i.iso.Name)
}
func (i *sexpIsotope) Type() *zygo.RegisteredType { return nil }

type sexpElement struct {
	spec material.ElementSpec
}

func (e *sexpElement) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(element %q :symbol %q)", e.spec.Name, e.spec.Symbol)
}
func (e *sexpElement) Type() *zygo.RegisteredType { return nil }

// sexpVolume refers to a volume of the tree under construction.
type sexpVolume struct {
	id   geometry.VolumeID
	name string
}

func (v *sexpVolume) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(volume %q)", v.name)
}
func (v *sexpVolume) Type() *zygo.RegisteredType { return nil }

type sexpVec3 struct {
	vec geometry.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

type sexpRotation struct {
	rot geometry.Rotation
}

func (r *sexpRotation) SexpString(ps *zygo.PrintState) string {
	x, y, z := r.rot.EulerZYX()
	return fmt.Sprintf("(rotation :x %g :y %g :z %g)", x, y, z)
}
func (r *sexpRotation) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// number returns the numeric keyword key, or def when absent.
func (a kwArgs) number(key string, def float64) (float64, error) {
	v, ok := a.kw[key]
	if !ok {
		return def, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

// flag returns the boolean keyword key, or def when absent.
func (a kwArgs) flag(key string, def bool) (bool, error) {
	v, ok := a.kw[key]
	if !ok {
		return def, nil
	}
	b, ok := v.(*zygo.SexpBool)
	if !ok {
		return false, fmt.Errorf("%s: expected true or false, got %s", key, v.SexpString(nil))
	}
	return b.Val, nil
}

// name returns the first positional argument as a string.
func (a kwArgs) name(fn string) (string, error) {
	if len(a.positional) < 1 {
		return "", fmt.Errorf("%s requires a name argument", fn)
	}
	s, err := toString(a.positional[0])
	if err != nil {
		return "", fmt.Errorf("%s: name: %w", fn, err)
	}
	return s, nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_gas) and plain strings ("gas").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

func toVec3(s zygo.Sexp) (geometry.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return geometry.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

func toSolid(s zygo.Sexp) (geometry.Solid, error) {
	if v, ok := s.(*sexpSolid); ok {
		return v.solid, nil
	}
	return nil, fmt.Errorf("expected solid, got %T (%s)", s, s.SexpString(nil))
}

func toMaterial(s zygo.Sexp) (*material.Material, error) {
	if m, ok := s.(*sexpMaterial); ok {
		return m.m, nil
	}
	return nil, fmt.Errorf("expected material, got %T (%s)", s, s.SexpString(nil))
}

func toVolume(s zygo.Sexp) (*sexpVolume, error) {
	if v, ok := s.(*sexpVolume); ok {
		return v, nil
	}
	return nil, fmt.Errorf("expected volume, got %T (%s)", s, s.SexpString(nil))
}

func toRotation(s zygo.Sexp) (geometry.Rotation, error) {
	if r, ok := s.(*sexpRotation); ok {
		return r.rot, nil
	}
	return geometry.Rotation{}, fmt.Errorf("expected rotation, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// ---------------------------------------------------------------------------
// Evaluation state
// ---------------------------------------------------------------------------

// evalState is what one evaluation builds.
type evalState struct {
	factory *material.Factory
	tree    *geometry.Tree

	// err is the first construction failure. Such failures are not mistakes
	// in the program text, so they are reported as errors rather than
	// EvalErrors.
	err error
}

func (st *evalState) fail(err error) (zygo.Sexp, error) {
	if st.err == nil {
		st.err = err
	}
	return zygo.SexpNull, err
}

// volumeSpec reads the keyword arguments shared by world and volume.
func volumeSpec(fn, name string, pa kwArgs, visible bool) (geometry.VolumeSpec, error) {
	spec := geometry.VolumeSpec{Name: name}

	v, ok := pa.kw["solid"]
	if !ok {
		return spec, fmt.Errorf("%s %q: missing :solid", fn, name)
	}
	s, err := toSolid(v)
	if err != nil {
		return spec, fmt.Errorf("%s %q: solid: %w", fn, name, err)
	}
	spec.Solid = s

	v, ok = pa.kw["material"]
	if !ok {
		return spec, fmt.Errorf("%s %q: missing :material", fn, name)
	}
	m, err := toMaterial(v)
	if err != nil {
		return spec, fmt.Errorf("%s %q: material: %w", fn, name, err)
	}
	spec.Material = m

	if spec.Visible, err = pa.flag("visible", visible); err != nil {
		return spec, fmt.Errorf("%s %q: %w", fn, name, err)
	}
	if spec.CheckOverlaps, err = pa.flag("check-overlaps", true); err != nil {
		return spec, fmt.Errorf("%s %q: %w", fn, name, err)
	}
	return spec, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the geometry DSL into a zygomys environment.
// Source code must be preprocessed with preprocessSource() first so that
// :keyword tokens reach the builtins as recognizable strings.
func registerBuiltins(env *zygo.Zlisp, st *evalState) {

	// -----------------------------------------------------------------------
	// (world "WORLD" :solid (sphere :rmax (* 12.5 m)) :material (nist "G4_Galactic"))
	// -----------------------------------------------------------------------
	env.AddFunction("world", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if st.tree != nil {
			return zygo.SexpNull, errors.New("world: already defined")
		}
		volName, err := pa.name("world")
		if err != nil {
			return zygo.SexpNull, err
		}
		spec, err := volumeSpec("world", volName, pa, false)
		if err != nil {
			return zygo.SexpNull, err
		}
		tree, err := geometry.NewTree(spec)
		if err != nil {
			return st.fail(err)
		}
		st.tree = tree
		return &sexpVolume{id: geometry.RootID, name: volName}, nil
	})

	// -----------------------------------------------------------------------
	// (volume "CIL0" :solid s :material water :in world :at (vec3 0 0 0)
	//         :rotation (rotation :x (* 90 deg)) :visible true :check-overlaps true)
	// -----------------------------------------------------------------------
	env.AddFunction("volume", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if st.tree == nil {
			return zygo.SexpNull, errors.New("volume: no world defined yet")
		}
		volName, err := pa.name("volume")
		if err != nil {
			return zygo.SexpNull, err
		}
		spec, err := volumeSpec("volume", volName, pa, true)
		if err != nil {
			return zygo.SexpNull, err
		}

		parent := geometry.RootID
		if v, ok := pa.kw["in"]; ok {
			ref, err := toVolume(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("volume %q: in: %w", volName, err)
			}
			parent = ref.id
		}
		if v, ok := pa.kw["at"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("volume %q: at: %w", volName, err)
			}
			spec.Placement.Translation = vec
		}
		if v, ok := pa.kw["rotation"]; ok {
			rot, err := toRotation(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("volume %q: rotation: %w", volName, err)
			}
			spec.Placement.Rotation = &rot
		}

		id, err := st.tree.Place(parent, spec)
		if err != nil {
			return st.fail(err)
		}
		return &sexpVolume{id: id, name: volName}, nil
	})

	// -----------------------------------------------------------------------
	// (sphere :rmin 0 :rmax r :phi-start 0 :phi-sweep (* 360 deg)
	//         :theta-start 0 :theta-sweep (* 180 deg))
	// -----------------------------------------------------------------------
	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var s geometry.Sphere
		var err error
		for _, f := range []struct {
			key string
			dst *float64
			def float64
		}{
			{"rmin", &s.RMin, 0},
			{"rmax", &s.RMax, 0},
			{"phi-start", &s.PhiStart, 0},
			{"phi-sweep", &s.PhiSweep, geometry.FullRevolution},
			{"theta-start", &s.ThetaStart, 0},
			{"theta-sweep", &s.ThetaSweep, math.Pi},
		} {
			if *f.dst, err = pa.number(f.key, f.def); err != nil {
				return zygo.SexpNull, fmt.Errorf("sphere: %w", err)
			}
		}
		return &sexpSolid{solid: s}, nil
	})

	// -----------------------------------------------------------------------
	// (tube :rmin 0 :rmax r :dz h :phi-start 0 :phi-sweep (* 180 deg))
	// -----------------------------------------------------------------------
	env.AddFunction("tube", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var t geometry.Tube
		var err error
		for _, f := range []struct {
			key string
			dst *float64
			def float64
		}{
			{"rmin", &t.RMin, 0},
			{"rmax", &t.RMax, 0},
			{"dz", &t.HalfZ, 0},
			{"phi-start", &t.PhiStart, 0},
			{"phi-sweep", &t.PhiSweep, geometry.FullRevolution},
		} {
			if *f.dst, err = pa.number(f.key, f.def); err != nil {
				return zygo.SexpNull, fmt.Errorf("tube: %w", err)
			}
		}
		return &sexpSolid{solid: t}, nil
	})

	// -----------------------------------------------------------------------
	// (box :dx 1 :dy 1 :dz 1) ; half lengths
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var b geometry.Box
		var err error
		if b.HalfX, err = pa.number("dx", 0); err != nil {
			return zygo.SexpNull, fmt.Errorf("box: %w", err)
		}
		if b.HalfY, err = pa.number("dy", 0); err != nil {
			return zygo.SexpNull, fmt.Errorf("box: %w", err)
		}
		if b.HalfZ, err = pa.number("dz", 0); err != nil {
			return zygo.SexpNull, fmt.Errorf("box: %w", err)
		}
		return &sexpSolid{solid: b}, nil
	})

	// -----------------------------------------------------------------------
	// (nist "G4_WATER")
	// -----------------------------------------------------------------------
	env.AddFunction("nist", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("nist requires exactly 1 argument, got %d", len(args))
		}
		matName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("nist: %w", err)
		}
		m, err := st.factory.LookupStandardMaterial(matName)
		if err != nil {
			return st.fail(err)
		}
		return &sexpMaterial{m: m}, nil
	})

	// -----------------------------------------------------------------------
	// (isotope "Xe136" :z 54 :a 136 :molar-mass (* 135.907219 g-per-mole))
	// -----------------------------------------------------------------------
	env.AddFunction("isotope", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		isoName, err := pa.name("isotope")
		if err != nil {
			return zygo.SexpNull, err
		}
		z, err := pa.number("z", 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("isotope %q: %w", isoName, err)
		}
		a, err := pa.number("a", 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("isotope %q: %w", isoName, err)
		}
		mm, err := pa.number("molar-mass", 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("isotope %q: %w", isoName, err)
		}
		if z < 1 || a < z || mm <= 0 {
			return zygo.SexpNull, fmt.Errorf("isotope %q: need 1 <= z <= a and a positive molar mass", isoName)
		}
		return &sexpIsotope{iso: &material.Isotope{Name: isoName, Z: int(z), A: int(a), MolarMass: mm}}, nil
	})

	// -----------------------------------------------------------------------
	// (element "ENRICHED_XENON" :symbol "Xe" :isotopes (list xe134 (* 9 percent) xe136 (* 91 percent)))
	// -----------------------------------------------------------------------
	env.AddFunction("element", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		elName, err := pa.name("element")
		if err != nil {
			return zygo.SexpNull, err
		}
		spec := material.ElementSpec{Name: elName}
		if v, ok := pa.kw["symbol"]; ok {
			if spec.Symbol, err = toString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("element %q: symbol: %w", elName, err)
			}
		}

		v, ok := pa.kw["isotopes"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("element %q: missing :isotopes", elName)
		}
		items, err := sexpListToSlice(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("element %q: isotopes: %w", elName, err)
		}
		if len(items) == 0 || len(items)%2 != 0 {
			return zygo.SexpNull, fmt.Errorf("element %q: isotopes must be isotope/abundance pairs", elName)
		}
		for i := 0; i < len(items); i += 2 {
			iso, ok := items[i].(*sexpIsotope)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("element %q: entry %d: expected isotope, got %s", elName, i/2, items[i].SexpString(nil))
			}
			ab, err := toFloat64(items[i+1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("element %q: entry %d: abundance: %w", elName, i/2, err)
			}
			spec.Isotopes = append(spec.Isotopes, material.IsotopeFraction{Isotope: iso.iso, Abundance: ab})
		}
		return &sexpElement{spec: spec}, nil
	})

	// -----------------------------------------------------------------------
	// (material "ENRICHED_XENON" :density (* 97.49 kg-per-m3) :state :gas
	//           :temperature (* 273.15 kelvin) :pressure (* 15 bar) :element xe)
	// -----------------------------------------------------------------------
	env.AddFunction("material", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		matName, err := pa.name("material")
		if err != nil {
			return zygo.SexpNull, err
		}
		spec := material.CustomSpec{Name: matName}
		if spec.Density, err = pa.number("density", 0); err != nil {
			return zygo.SexpNull, fmt.Errorf("material %q: %w", matName, err)
		}
		if spec.Density <= 0 {
			return zygo.SexpNull, fmt.Errorf("material %q: density must be positive", matName)
		}
		if spec.Temperature, err = pa.number("temperature", units.NTPTemperature); err != nil {
			return zygo.SexpNull, fmt.Errorf("material %q: %w", matName, err)
		}
		if spec.Pressure, err = pa.number("pressure", units.STPPressure); err != nil {
			return zygo.SexpNull, fmt.Errorf("material %q: %w", matName, err)
		}
		if v, ok := pa.kw["state"]; ok {
			s, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("material %q: state: %w", matName, err)
			}
			if spec.State, err = material.ParseState(s); err != nil {
				return zygo.SexpNull, fmt.Errorf("material %q: %w", matName, err)
			}
		}

		v, ok := pa.kw["element"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("material %q: missing :element", matName)
		}
		el, ok := v.(*sexpElement)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("material %q: element: expected element, got %s", matName, v.SexpString(nil))
		}
		spec.Element = el.spec

		m, err := st.factory.BuildCustomMaterial(spec)
		if err != nil {
			return st.fail(err)
		}
		return &sexpMaterial{m: m}, nil
	})

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var c [3]float64
		for i, axis := range []string{"x", "y", "z"} {
			f, err := toFloat64(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %s: %w", axis, err)
			}
			c[i] = f
		}
		return &sexpVec3{vec: geometry.Vec3{X: c[0], Y: c[1], Z: c[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (rotation :x (* 90 deg) :y 0 :z 0) ; Rz·Ry·Rx
	// -----------------------------------------------------------------------
	env.AddFunction("rotation", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var a [3]float64
		for i, axis := range []string{"x", "y", "z"} {
			f, err := pa.number(axis, 0)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("rotation: %w", err)
			}
			a[i] = f
		}
		return &sexpRotation{rot: geometry.FromEulerZYX(a[0], a[1], a[2])}, nil
	})

	// -----------------------------------------------------------------------
	// (cosd 55) (sind 55)
	// -----------------------------------------------------------------------
	for fn, op := range map[string]func(float64) float64{"cosd": math.Cos, "sind": math.Sin} {
		env.AddFunction(fn, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 1 {
				return zygo.SexpNull, fmt.Errorf("%s requires exactly 1 argument, got %d", name, len(args))
			}
			deg, err := toFloat64(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
			return &zygo.SexpFloat{Val: op(deg * units.Degree)}, nil
		})
	}
}
