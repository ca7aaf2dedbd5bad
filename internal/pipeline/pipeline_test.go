package pipeline

import (
	"strings"
	"testing"

	"github.com/depyler-lang/depyler/internal/hir"
)

func sampleModule() *hir.Module {
	// def add(a, b): return a + b
	// def looped(n): total = 0; for i in range(n): total = total + add(i, 1); return total
	return &hir.Module{
		Name: "sample",
		Functions: []*hir.Function{
			{
				Name: "add",
				Params: []hir.Param{
					{Name: "a", Type: &hir.IntType{}},
					{Name: "b", Type: &hir.IntType{}},
				},
				RetType: &hir.IntType{},
				Body: []hir.Stmt{
					&hir.ReturnStmt{Value: &hir.BinaryExpr{
						Op:    hir.OpAdd,
						Left:  &hir.VarExpr{Name: "a"},
						Right: &hir.VarExpr{Name: "b"},
					}},
				},
			},
			{
				Name: "looped",
				Params: []hir.Param{
					{Name: "n", Type: &hir.IntType{}},
				},
				RetType: &hir.IntType{},
				Body: []hir.Stmt{
					&hir.AssignStmt{
						Target: &hir.SymbolTarget{Name: "total"},
						Value:  &hir.LiteralExpr{Value: &hir.IntLit{Value: 0}},
					},
					&hir.ForStmt{
						Target: &hir.SymbolTarget{Name: "i"},
						Iter: &hir.CallExpr{
							Func: "range",
							Args: []hir.Expr{&hir.VarExpr{Name: "n"}},
						},
						Body: []hir.Stmt{
							&hir.AssignStmt{
								Target: &hir.SymbolTarget{Name: "total"},
								Value: &hir.BinaryExpr{
									Op:   hir.OpAdd,
									Left: &hir.VarExpr{Name: "total"},
									Right: &hir.CallExpr{
										Func: "add",
										Args: []hir.Expr{
											&hir.VarExpr{Name: "i"},
											&hir.LiteralExpr{Value: &hir.IntLit{Value: 1}},
										},
									},
								},
							},
						},
					},
					&hir.ReturnStmt{Value: &hir.VarExpr{Name: "total"}},
				},
			},
		},
	}
}

func TestTranspileEmitsRustAndManifest(t *testing.T) {
	res, err := Transpile(sampleModule(), Options{})
	if err != nil {
		t.Fatalf("Transpile: %v", err)
	}

	for _, frag := range []string{
		"pub fn add(a: i32, b: i32) -> i32 {",
		"pub fn looped(n: i32) -> i32 {",
		"let mut total = 0;",
	} {
		if !strings.Contains(res.Rust, frag) {
			t.Errorf("emitted Rust missing %q\n%s", frag, res.Rust)
		}
	}

	if !strings.Contains(res.CargoToml, `name = "sample"`) {
		t.Errorf("manifest missing package name:\n%s", res.CargoToml)
	}
}

func TestTranspileIsDeterministic(t *testing.T) {
	a, err := Transpile(sampleModule(), Options{OptLevel: hir.OptStandard})
	if err != nil {
		t.Fatalf("first run: %v", err)
	}

	b, err := Transpile(sampleModule(), Options{OptLevel: hir.OptStandard})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if a.Rust != b.Rust {
		t.Error("same module produced different Rust text")
	}
	if a.CargoToml != b.CargoToml {
		t.Error("same module produced different manifests")
	}
}

func TestTranspileReportsInlineDecisions(t *testing.T) {
	res, err := Transpile(sampleModule(), Options{})
	if err != nil {
		t.Fatalf("Transpile: %v", err)
	}

	dec, ok := res.InlineDecisions["add"]
	if !ok {
		t.Fatal("no inline decision recorded for add")
	}
	if dec.CallCount != 1 {
		t.Errorf("add call count = %d, want 1", dec.CallCount)
	}
}

func TestTranspileAbortsOnUnboundVariable(t *testing.T) {
	m := &hir.Module{
		Name: "broken",
		Functions: []*hir.Function{{
			Name:    "bad",
			RetType: &hir.IntType{},
			Body: []hir.Stmt{
				&hir.ReturnStmt{Value: &hir.VarExpr{Name: "ghost"}},
			},
		}},
	}

	if _, err := Transpile(m, Options{}); err == nil {
		t.Error("module with an unbound variable transpiled")
	} else if !strings.Contains(err.Error(), "HIR verification") {
		t.Errorf("abort not attributed to verification: %v", err)
	}
}

func TestTranspileHonorsExplicitPackageName(t *testing.T) {
	res, err := Transpile(sampleModule(), Options{PackageName: "renamed"})
	if err != nil {
		t.Fatalf("Transpile: %v", err)
	}
	if !strings.Contains(res.CargoToml, `name = "renamed"`) {
		t.Errorf("explicit package name ignored:\n%s", res.CargoToml)
	}
}

func TestTranspileReportsUnknownCalls(t *testing.T) {
	m := &hir.Module{
		Name: "mystery",
		Functions: []*hir.Function{{
			Name: "run",
			Body: []hir.Stmt{
				&hir.ExprStmt{Value: &hir.CallExpr{
					Func: "mystery_helper",
					Args: []hir.Expr{&hir.LiteralExpr{Value: &hir.IntLit{Value: 1}}},
				}},
			},
		}},
	}

	res, err := Transpile(m, Options{})
	if err != nil {
		t.Fatalf("Transpile: %v", err)
	}

	found := false
	for _, u := range res.Report.Unimplemented {
		if strings.Contains(u, "mystery_helper") {
			found = true
		}
	}
	if !found {
		t.Errorf("unknown call missing from report: %v", res.Report.Unimplemented)
	}
}
