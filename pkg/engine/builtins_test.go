package engine

import (
	"math"
	"strings"
	"testing"

	"github.com/chazu/g4basic/pkg/config"
	"github.com/chazu/g4basic/pkg/detector"
	"github.com/chazu/g4basic/pkg/geometry"
	"github.com/chazu/g4basic/pkg/material"
	"github.com/chazu/g4basic/pkg/units"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(nist :name "G4_WATER")`,
			expect: `(nist "__kw_name" "G4_WATER")`,
		},
		{
			name:   "multiple keywords",
			input:  `(box :dx 400 :dy 200)`,
			expect: `(box "__kw_dx" 400 "__kw_dy" 200)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(* 97.49 kg-per-m3)`,
			expect: `(* 97.49 kg_per_m3)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "negative literal preserved",
			input:  `(* -3 r)`,
			expect: `(* -3 r)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:check-overlaps`,
			expect: `"__kw_check-overlaps"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

func TestFloatLiteral(t *testing.T) {
	tests := map[float64]string{
		1:      "1.0",
		1000:   "1000.0",
		0.01:   "0.01",
		-2.5:   "-2.5",
		1.5e21: "1500000000000000000000.0",
	}
	for v, want := range tests {
		if got := floatLiteral(v); got != want {
			t.Errorf("floatLiteral(%v) = %q, want %q", v, got, want)
		}
	}
	if !strings.Contains(prelude, "(def m 1000.0)\n") {
		t.Errorf("prelude lacks the meter: %q", prelude)
	}
	if preludeLines != len(unitSymbols) {
		t.Errorf("preludeLines = %d, want %d", preludeLines, len(unitSymbols))
	}
}

// ---------------------------------------------------------------------------
// Example programs against the Go builder
// ---------------------------------------------------------------------------

const tol = 1e-6 // mm

func near(a, b float64) bool { return math.Abs(a-b) <= tol }

func solidsClose(a, b geometry.Solid) bool {
	switch x := a.(type) {
	case geometry.Sphere:
		y, ok := b.(geometry.Sphere)
		return ok && near(x.RMin, y.RMin) && near(x.RMax, y.RMax) &&
			near(x.PhiStart, y.PhiStart) && near(x.PhiSweep, y.PhiSweep) &&
			near(x.ThetaStart, y.ThetaStart) && near(x.ThetaSweep, y.ThetaSweep)
	case geometry.Tube:
		y, ok := b.(geometry.Tube)
		return ok && near(x.RMin, y.RMin) && near(x.RMax, y.RMax) && near(x.HalfZ, y.HalfZ) &&
			near(x.PhiStart, y.PhiStart) && near(x.PhiSweep, y.PhiSweep)
	case geometry.Box:
		y, ok := b.(geometry.Box)
		return ok && near(x.HalfX, y.HalfX) && near(x.HalfY, y.HalfY) && near(x.HalfZ, y.HalfZ)
	}
	return false
}

func rotationsClose(a, b geometry.Placement) bool {
	ra, rb := a.Matrix(), b.Matrix()
	for i := range ra {
		for j := range ra[i] {
			if math.Abs(ra[i][j]-rb[i][j]) > 1e-12 {
				return false
			}
		}
	}
	return true
}

func TestExamplesMatchBuilder(t *testing.T) {
	tests := []struct {
		file   string
		layout string
	}{
		{"phantom.zy", config.LayoutPhantom},
		{"shielded_detector.zy", config.LayoutShieldedDetector},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			f := material.NewFactory()
			cfg := config.Default().Apparatus
			cfg.Layout = tt.layout
			want, err := detector.New(f, detector.WithConfig(cfg)).Construct()
			if err != nil {
				t.Fatalf("builder: %v", err)
			}

			got, evalErrs, err := NewEngine(f).Evaluate(readExample(t, tt.file))
			if err != nil {
				t.Fatalf("fatal error: %v", err)
			}
			if len(evalErrs) > 0 {
				t.Fatalf("eval errors: %v", evalErrs)
			}
			if got.Len() != want.Len() {
				t.Fatalf("got %d volumes, want %d", got.Len(), want.Len())
			}

			for i, w := range want.Volumes() {
				g := got.Volumes()[i]
				if g.Name != w.Name {
					t.Errorf("volume %d: name %q, want %q", i, g.Name, w.Name)
					continue
				}
				if g.Parent != w.Parent {
					t.Errorf("%s: parent %d, want %d", g.Name, g.Parent, w.Parent)
				}
				if !solidsClose(g.Solid, w.Solid) {
					t.Errorf("%s: solid %+v, want %+v", g.Name, g.Solid, w.Solid)
				}
				if !g.Placement.Translation.ApproxEqual(w.Placement.Translation, tol) {
					t.Errorf("%s: at %v, want %v", g.Name, g.Placement.Translation, w.Placement.Translation)
				}
				if !rotationsClose(g.Placement, w.Placement) {
					t.Errorf("%s: rotation %v, want %v", g.Name, g.Placement.Matrix(), w.Placement.Matrix())
				}
				if g.Visible != w.Visible || g.CheckOverlaps != w.CheckOverlaps {
					t.Errorf("%s: flags visible=%v check=%v", g.Name, g.Visible, g.CheckOverlaps)
				}
				// Same factory, equivalent definitions: the registry hands back
				// the material the builder registered.
				if g.Material != w.Material {
					t.Errorf("%s: material %s is not the registered instance", g.Name, g.Material.Name)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Builtins
// ---------------------------------------------------------------------------

func evaluate(t *testing.T, source string) *geometry.Tree {
	t.Helper()
	tree, evalErrs, err := newEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	return tree
}

func TestVolumeNesting(t *testing.T) {
	tree := evaluate(t, minimalWorld+`
(def air (nist "G4_AIR"))
(def hall (volume "HALL" :solid (box :dx (* 5 m) :dy (* 5 m) :dz (* 5 m)) :material air
                         :at (vec3 10.5 20.25 -30) :rotation (rotation :z (* 90 deg))))
(volume "PROBE" :solid (sphere :rmax 10) :material air :in hall :visible false :check-overlaps false)
`)
	if tree.Len() != 3 {
		t.Fatalf("expected 3 volumes, got %d", tree.Len())
	}
	hall := tree.Lookup("HALL")
	if hall == nil || hall.Parent != geometry.RootID {
		t.Fatalf("HALL should be a child of the world: %+v", hall)
	}
	if !hall.Visible || !hall.CheckOverlaps {
		t.Error("volumes default to visible and overlap-checked")
	}
	if hall.Placement.Translation != (geometry.Vec3{X: 10.5, Y: 20.25, Z: -30}) {
		t.Errorf("translation = %v", hall.Placement.Translation)
	}
	if hall.Placement.Rotation == nil {
		t.Fatal("expected a rotation")
	}
	if got := hall.Placement.Rotation.Apply(geometry.Vec3{X: 1}); !got.ApproxEqual(geometry.Vec3{Y: 1}, 1e-12) {
		t.Errorf("rotation about z should take x to y, got %v", got)
	}

	probe := tree.Lookup("PROBE")
	if probe == nil || probe.Parent != hall.ID {
		t.Fatalf("PROBE should be a child of HALL: %+v", probe)
	}
	if probe.Visible || probe.CheckOverlaps {
		t.Error("explicit flags should be honored")
	}
	if probe.Material != hall.Material {
		t.Error("nist should return the registered material")
	}
}

func TestSphereSection(t *testing.T) {
	tree := evaluate(t, `
(world "W" :solid (sphere :rmin 1 :rmax 2 :phi-start (* 10 deg) :phi-sweep (* 90 deg)
                          :theta-start (* 30 deg) :theta-sweep (* 60 deg))
           :material (nist "G4_Galactic"))
`)
	s, ok := tree.Root().Solid.(geometry.Sphere)
	if !ok {
		t.Fatalf("expected a sphere, got %T", tree.Root().Solid)
	}
	want := geometry.Sphere{
		RMin: 1, RMax: 2,
		PhiStart: 10 * units.Degree, PhiSweep: 90 * units.Degree,
		ThetaStart: 30 * units.Degree, ThetaSweep: 60 * units.Degree,
	}
	if !solidsClose(s, want) {
		t.Errorf("sphere = %+v, want %+v", s, want)
	}
}

func TestCosdSind(t *testing.T) {
	tree := evaluate(t, `(world "W" :solid (box :dx (cosd 60) :dy (sind 30) :dz (+ (* (cosd 55) (cosd 55)) (* (sind 55) (sind 55))))
                           :material (nist "G4_Galactic"))`)
	b := tree.Root().Solid.(geometry.Box)
	if math.Abs(b.HalfX-0.5) > 1e-12 || math.Abs(b.HalfY-0.5) > 1e-12 || math.Abs(b.HalfZ-1) > 1e-12 {
		t.Errorf("box = %+v", b)
	}
}

func TestCustomMaterial(t *testing.T) {
	f := material.NewFactory()
	tree, evalErrs, err := NewEngine(f).Evaluate(readExample(t, "shielded_detector.zy"))
	if err != nil || len(evalErrs) > 0 {
		t.Fatalf("evaluate: %v %v", err, evalErrs)
	}
	xe := tree.Lookup(detector.DetectorName).Material
	if xe.Name != detector.EnrichedXenonName || xe.State != material.StateGas {
		t.Fatalf("unexpected material %+v", xe)
	}
	if len(material.ValidateMaterial(xe)) != 0 {
		t.Errorf("enriched xenon should be consistent: %v", material.ValidateMaterial(xe))
	}

	// The Go definition is equivalent, so the registry keeps the DSL's
	// instance.
	again, err := detector.EnrichedXenon(f)
	if err != nil {
		t.Fatal(err)
	}
	if again != xe {
		t.Error("expected the registered material to be reused")
	}
}

func TestBuiltinErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"volume before world", `(volume "A" :solid (box :dx 1 :dy 1 :dz 1) :material (nist "G4_AIR"))`, "no world"},
		{"second world", minimalWorld + "\n" + minimalWorld, "already defined"},
		{"world without name", `(world :solid (sphere :rmax 1) :material (nist "G4_AIR"))`, "name"},
		{"missing solid", minimalWorld + `(volume "A" :material (nist "G4_AIR"))`, "missing :solid"},
		{"missing material", minimalWorld + `(volume "A" :solid (box :dx 1 :dy 1 :dz 1))`, "missing :material"},
		{"solid is not a solid", minimalWorld + `(volume "A" :solid 3 :material (nist "G4_AIR"))`, "expected solid"},
		{"bad parent", minimalWorld + `(volume "A" :solid (box :dx 1 :dy 1 :dz 1) :material (nist "G4_AIR") :in "WORLD")`, "expected volume"},
		{"bad flag", minimalWorld + `(volume "A" :solid (box :dx 1 :dy 1 :dz 1) :material (nist "G4_AIR") :visible 1)`, "true or false"},
		{"non-numeric radius", `(tube :rmax "ten")`, "expected number"},
		{"vec3 arity", `(vec3 1 2)`, "exactly 3"},
		{"isotope z", `(isotope "X" :z 0 :a 1 :molar-mass 1)`, "z"},
		{"odd isotope list", `(element "E" :isotopes (list (isotope "H1" :z 1 :a 1 :molar-mass 1)))`, "pairs"},
		{"unknown state", `(material "M" :density 1 :state :plasma :element (element "E" :isotopes (list (isotope "H1" :z 1 :a 1 :molar-mass 1) 1)))`, "plasma"},
		{"missing element", `(material "M" :density 1)`, "missing :element"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, evalErrs, err := newEngine().Evaluate(tt.source)
			if err != nil {
				t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
			}
			if tree != nil {
				t.Fatal("expected nil tree")
			}
			if len(evalErrs) == 0 {
				t.Fatal("expected an eval error")
			}
			if !strings.Contains(evalErrs[0].Message, tt.want) {
				t.Errorf("message %q does not mention %q", evalErrs[0].Message, tt.want)
			}
		})
	}
}

func TestArithmeticStillWorks(t *testing.T) {
	tree := evaluate(t, `
(def half (/ 10.0 2.0))
(world "W" :solid (box :dx half :dy (* half 2) :dz (- half 1)) :material (nist "G4_Galactic"))
`)
	want := geometry.Box{HalfX: 5, HalfY: 10, HalfZ: 4}
	if tree.Root().Solid != want {
		t.Errorf("solid = %+v, want %+v", tree.Root().Solid, want)
	}
}
