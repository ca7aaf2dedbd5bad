package rustast

import (
	"strings"
	"testing"
)

func TestPrintFunction(t *testing.T) {
	file := &File{
		Items: []Item{
			&FnItem{
				Name: "double",
				Params: []FnParam{
					{Name: "x", Type: I32()},
				},
				Ret: I32(),
				Body: []Stmt{
					&ExprStmt{E: &Binary{Op: "*", L: &Path{Name: "x"}, R: &Lit{Text: "2"}}, Tail: true},
				},
			},
		},
	}

	src := NewPrinter().Print(file)

	for _, frag := range []string{
		"pub fn double(x: i32) -> i32 {",
		"x * 2\n",
	} {
		if !strings.Contains(src, frag) {
			t.Errorf("missing %q in:\n%s", frag, src)
		}
	}
}

func TestPrintStructWithDerivesAndImpl(t *testing.T) {
	file := &File{
		Items: []Item{
			&StructItem{
				Name:    "Point",
				Public:  true,
				Derives: []string{"Debug", "Clone"},
				Fields: []StructField{
					{Name: "x", Type: F64(), Public: true},
					{Name: "y", Type: F64(), Public: true},
				},
			},
			&ImplItem{
				TypeName: "Point",
				Fns: []*FnItem{{
					Name:     "norm",
					SelfKind: SelfRef,
					Ret:      F64(),
					Body: []Stmt{
						&ExprStmt{E: &Raw{Text: "(self.x * self.x + self.y * self.y).sqrt()"}, Tail: true},
					},
				}},
			},
		},
	}

	src := NewPrinter().Print(file)

	for _, frag := range []string{
		"#[derive(Debug, Clone)]",
		"pub struct Point {",
		"pub x: f64,",
		"impl Point {",
		"pub fn norm(&self) -> f64 {",
	} {
		if !strings.Contains(src, frag) {
			t.Errorf("missing %q in:\n%s", frag, src)
		}
	}
}

func TestPrintUsesComeFirst(t *testing.T) {
	file := &File{
		Uses: []string{"std::collections::HashMap"},
		Items: []Item{
			&ConstItem{Name: "N", Type: I32(), Value: &Lit{Text: "3"}},
		},
	}

	src := NewPrinter().Print(file)

	useIdx := strings.Index(src, "use std::collections::HashMap;")
	constIdx := strings.Index(src, "const N: i32 = 3;")
	if useIdx < 0 || constIdx < 0 || useIdx > constIdx {
		t.Errorf("use/const ordering wrong:\n%s", src)
	}
}

func TestPrintControlFlow(t *testing.T) {
	file := &File{
		Items: []Item{
			&FnItem{
				Name: "count",
				Params: []FnParam{
					{Name: "n", Type: I32()},
				},
				Body: []Stmt{
					&ForStmt{
						Pattern: "i",
						Iter:    &Range{Start: &Lit{Text: "0"}, End: &Path{Name: "n"}},
						Body: []Stmt{
							&IfStmt{
								Cond: &Binary{Op: ">", L: &Path{Name: "i"}, R: &Lit{Text: "2"}},
								Then: []Stmt{&BreakStmt{}},
								Else: []Stmt{&ContinueStmt{}},
							},
						},
					},
				},
			},
		},
	}

	src := NewPrinter().Print(file)

	for _, frag := range []string{
		"for i in 0..n {",
		"if i > 2 {",
		"break;",
		"} else {",
		"continue;",
	} {
		if !strings.Contains(src, frag) {
			t.Errorf("missing %q in:\n%s", frag, src)
		}
	}
}

func TestCrateSetManifest(t *testing.T) {
	cs := NewCrateSet()
	cs.Add("serde_json")
	cs.Add("regex")
	cs.Add("regex") // idempotent

	toml := cs.CargoToml("demo")

	for _, frag := range []string{
		`name = "demo"`,
		"[dependencies]",
	} {
		if !strings.Contains(toml, frag) {
			t.Errorf("missing %q in:\n%s", frag, toml)
		}
	}

	// Deterministic alphabetical dependency order.
	if strings.Index(toml, "regex") > strings.Index(toml, "serde_json") {
		t.Errorf("dependencies not sorted:\n%s", toml)
	}
	if strings.Count(toml, "regex =") != 1 {
		t.Errorf("duplicate crate entry:\n%s", toml)
	}
}
