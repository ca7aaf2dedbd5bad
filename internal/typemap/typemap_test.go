package typemap

import (
	"testing"

	"github.com/depyler-lang/depyler/internal/diagnostics"
	"github.com/depyler-lang/depyler/internal/hir"
)

func TestScalarAndContainerMappings(t *testing.T) {
	m := NewMapper(false, nil)

	cases := []struct {
		in   hir.Type
		want string
	}{
		{&hir.IntType{}, "i32"},
		{&hir.FloatType{}, "f64"},
		{&hir.BoolType{}, "bool"},
		{&hir.StringType{}, "String"},
		{&hir.NoneType{}, "()"},
		{&hir.ListType{Elem: &hir.IntType{}}, "Vec<i32>"},
		{&hir.SetType{Elem: &hir.StringType{}}, "HashSet<String>"},
		{&hir.DictType{Key: &hir.StringType{}, Value: &hir.IntType{}}, "HashMap<String, i32>"},
		{&hir.TupleType{Items: []hir.Type{&hir.IntType{}, &hir.FloatType{}}}, "(i32, f64)"},
		{&hir.OptionalType{Elem: &hir.IntType{}}, "Option<i32>"},
		{&hir.ArrayType{Elem: &hir.FloatType{}, Size: &hir.ConstLiteral{Value: 3}}, "[f64; 3]"},
	}

	for _, c := range cases {
		if got := m.MapType(c.in).String(); got != c.want {
			t.Errorf("MapType(%T) = %s, want %s", c.in, got, c.want)
		}
	}
}

func TestWideIntsSwitchesToI64(t *testing.T) {
	m := NewMapper(false, nil)
	m.WideInts = true

	if got := m.MapType(&hir.IntType{}).String(); got != "i64" {
		t.Errorf("wide int = %s, want i64", got)
	}
	if got := m.MapType(&hir.ListType{Elem: &hir.IntType{}}).String(); got != "Vec<i64>" {
		t.Errorf("wide list = %s, want Vec<i64>", got)
	}
}

func TestUnionWithNoneIsOption(t *testing.T) {
	m := NewMapper(false, nil)

	u := &hir.UnionType{Items: []hir.Type{&hir.StringType{}, &hir.NoneType{}}}
	if got := m.MapType(u).String(); got != "Option<String>" {
		t.Errorf("str|None = %s, want Option<String>", got)
	}

	// None-first order counts too.
	u = &hir.UnionType{Items: []hir.Type{&hir.NoneType{}, &hir.IntType{}}}
	if got := m.MapType(u).String(); got != "Option<i32>" {
		t.Errorf("None|int = %s, want Option<i32>", got)
	}
}

func TestUnresolvableTypeTakesEscapeAndWarns(t *testing.T) {
	diags := &diagnostics.Collector{}
	m := NewMapper(false, diags)

	u := &hir.UnionType{Items: []hir.Type{&hir.IntType{}, &hir.StringType{}, &hir.FloatType{}}}
	if got := m.MapType(u).String(); got != "serde_json::Value" {
		t.Errorf("escape = %s, want serde_json::Value", got)
	}

	found := false
	for _, d := range diags.All() {
		if d.Kind == diagnostics.UnsupportedType {
			found = true
		}
	}
	if !found {
		t.Error("no UnsupportedType diagnostic for the escape")
	}
}

func TestNASAModeAvoidsExternalCrates(t *testing.T) {
	m := NewMapper(true, nil)

	if got := m.MapType(&hir.CustomType{Name: "numpy.ndarray"}).String(); got != "Vec<f64>" {
		t.Errorf("ndarray in NASA mode = %s, want Vec<f64>", got)
	}
	if got := m.MapType(&hir.UnknownType{}).String(); got != "DepylerValue" {
		t.Errorf("escape in NASA mode = %s, want DepylerValue", got)
	}

	normal := NewMapper(false, nil)
	if got := normal.MapType(&hir.CustomType{Name: "numpy.ndarray"}).String(); got != "trueno::Vector<f64>" {
		t.Errorf("ndarray = %s, want trueno::Vector<f64>", got)
	}
}

func TestReferenceCandidates(t *testing.T) {
	if !IsReferenceCandidate(&hir.ListType{Elem: &hir.IntType{}}) {
		t.Error("list not a reference candidate")
	}
	if IsReferenceCandidate(&hir.IntType{}) {
		t.Error("int reported as a reference candidate")
	}
}
