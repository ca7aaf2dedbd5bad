package optimizer

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/depyler-lang/depyler/internal/hir"
)

func intLit(v int64) hir.Expr {
	return &hir.LiteralExpr{Value: &hir.IntLit{Value: v}}
}

func floatLit(v float64) hir.Expr {
	return &hir.LiteralExpr{Value: &hir.FloatLit{Value: v}}
}

func binary(op hir.BinaryOp, l, r hir.Expr) hir.Expr {
	return &hir.BinaryExpr{Op: op, Left: l, Right: r}
}

func fnWith(body ...hir.Stmt) *hir.Module {
	return &hir.Module{
		Name:      "m",
		Functions: []*hir.Function{{Name: "f", Body: body}},
	}
}

func TestFoldsIntArithmetic(t *testing.T) {
	m := fnWith(&hir.ReturnStmt{
		Value: binary(hir.OpMul, binary(hir.OpAdd, intLit(2), intLit(3)), intLit(4)),
	})

	New(hir.OptConservative).OptimizeModule(m)

	ret := m.Functions[0].Body[0].(*hir.ReturnStmt)
	got, ok := intLiteral(ret.Value)
	if !ok || got != 20 {
		t.Errorf("expected folded literal 20, got %#v", ret.Value)
	}
}

func TestFoldsFloatArithmetic(t *testing.T) {
	m := fnWith(&hir.ReturnStmt{
		Value: binary(hir.OpDiv, floatLit(1.0), floatLit(4.0)),
	})

	New(hir.OptConservative).OptimizeModule(m)

	ret := m.Functions[0].Body[0].(*hir.ReturnStmt)
	got, ok := floatLiteral(ret.Value)
	if !ok || got != 0.25 {
		t.Errorf("expected folded literal 0.25, got %#v", ret.Value)
	}
}

func TestMixedArithmeticNotFolded(t *testing.T) {
	// Folding int+float would bypass the numeric upgrade in the lowering.
	m := fnWith(&hir.ReturnStmt{
		Value: binary(hir.OpAdd, intLit(2), floatLit(3.0)),
	})

	New(hir.OptAggressive).OptimizeModule(m)

	ret := m.Functions[0].Body[0].(*hir.ReturnStmt)
	if _, ok := ret.Value.(*hir.BinaryExpr); !ok {
		t.Errorf("mixed int/float arithmetic was folded: %#v", ret.Value)
	}
}

func TestDivisionByZeroNotFolded(t *testing.T) {
	m := fnWith(&hir.ReturnStmt{
		Value: binary(hir.OpFloorDiv, intLit(1), intLit(0)),
	})

	New(hir.OptConservative).OptimizeModule(m)

	ret := m.Functions[0].Body[0].(*hir.ReturnStmt)
	if _, ok := ret.Value.(*hir.BinaryExpr); !ok {
		t.Errorf("division by zero was folded: %#v", ret.Value)
	}
}

func TestFloorDivAndModMatchPython(t *testing.T) {
	if got := floorDiv(-7, 2); got != -4 {
		t.Errorf("floorDiv(-7, 2) = %d, want -4", got)
	}
	if got := pythonMod(-7, 2); got != 1 {
		t.Errorf("pythonMod(-7, 2) = %d, want 1", got)
	}
	if got := pythonMod(7, -2); got != -1 {
		t.Errorf("pythonMod(7, -2) = %d, want -1", got)
	}
}

func TestDeadCodeAfterReturnDropped(t *testing.T) {
	m := fnWith(
		&hir.ReturnStmt{Value: intLit(1)},
		&hir.ExprStmt{Value: &hir.CallExpr{Func: "print", Args: []hir.Expr{intLit(2)}}},
		&hir.ReturnStmt{Value: intLit(3)},
	)

	New(hir.OptConservative).OptimizeModule(m)

	if got := len(m.Functions[0].Body); got != 1 {
		t.Errorf("expected 1 statement after DCE, got %d", got)
	}
}

func TestConditionalReturnKeepsFollowers(t *testing.T) {
	m := fnWith(
		&hir.IfStmt{
			Cond: &hir.VarExpr{Name: "flag"},
			Then: []hir.Stmt{&hir.ReturnStmt{Value: intLit(1)}},
		},
		&hir.ReturnStmt{Value: intLit(2)},
	)

	New(hir.OptConservative).OptimizeModule(m)

	if got := len(m.Functions[0].Body); got != 2 {
		t.Errorf("statements after a conditional return were dropped, got %d", got)
	}
}

func TestUnrollAnnotatedLoop(t *testing.T) {
	f := &hir.Function{
		Name: "hot",
		Annotations: hir.Annotations{
			PerformanceHints: []hir.PerformanceHint{{Kind: hir.HintUnrollLoops, Factor: 4}},
		},
		Body: []hir.Stmt{
			&hir.ForStmt{
				Target: &hir.SymbolTarget{Name: "i"},
				Iter:   &hir.CallExpr{Func: "range", Args: []hir.Expr{intLit(3)}},
				Body: []hir.Stmt{
					&hir.ExprStmt{Value: &hir.CallExpr{Func: "step", Args: []hir.Expr{&hir.VarExpr{Name: "i"}}}},
				},
			},
		},
	}
	m := &hir.Module{Name: "m", Functions: []*hir.Function{f}}

	New(hir.OptAggressive).OptimizeModule(m)

	if got := len(f.Body); got != 3 {
		t.Fatalf("expected the loop unrolled into 3 statements, got %d", got)
	}

	var calls []int64
	for _, s := range f.Body {
		call := s.(*hir.ExprStmt).Value.(*hir.CallExpr)
		v, _ := intLiteral(call.Args[0])
		calls = append(calls, v)
	}

	if diff := cmp.Diff([]int64{0, 1, 2}, calls); diff != "" {
		t.Errorf("unrolled induction values mismatch (-want +got):\n%s", diff)
	}
}

func TestUnrollNeedsAggressiveAndHint(t *testing.T) {
	loop := func() *hir.ForStmt {
		return &hir.ForStmt{
			Target: &hir.SymbolTarget{Name: "i"},
			Iter:   &hir.CallExpr{Func: "range", Args: []hir.Expr{intLit(2)}},
			Body:   []hir.Stmt{&hir.ExprStmt{Value: &hir.VarExpr{Name: "i"}}},
		}
	}

	// No hint: stays a loop even at Aggressive.
	m := fnWith(loop())
	New(hir.OptAggressive).OptimizeModule(m)
	if _, ok := m.Functions[0].Body[0].(*hir.ForStmt); !ok {
		t.Error("loop without an unroll hint was unrolled")
	}

	// Hint but Conservative: stays a loop.
	f := &hir.Function{
		Name: "hinted",
		Annotations: hir.Annotations{
			PerformanceHints: []hir.PerformanceHint{{Kind: hir.HintUnrollLoops}},
		},
		Body: []hir.Stmt{loop()},
	}
	New(hir.OptConservative).OptimizeModule(&hir.Module{Name: "m", Functions: []*hir.Function{f}})
	if _, ok := f.Body[0].(*hir.ForStmt); !ok {
		t.Error("loop was unrolled below the aggressive level")
	}
}

func TestAdvisoryLabels(t *testing.T) {
	f := &hir.Function{
		Name: "hot",
		Annotations: hir.Annotations{
			PerformanceHints: []hir.PerformanceHint{{Kind: hir.HintVectorize}},
			BoundsChecking:   hir.BoundsDisabled,
		},
	}
	m := &hir.Module{Name: "m", Functions: []*hir.Function{f}}

	o := New(hir.OptAggressive)
	o.OptimizeModule(m)

	want := []string{"vectorize", "bounds-checks-removed"}
	if diff := cmp.Diff(want, o.Labels("hot")); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestFunctionAnnotationRaisesLevel(t *testing.T) {
	f := &hir.Function{
		Name: "pinned",
		Annotations: hir.Annotations{
			OptimizationLevel: hir.OptAggressive,
			PerformanceHints:  []hir.PerformanceHint{{Kind: hir.HintUnrollLoops}},
		},
		Body: []hir.Stmt{
			&hir.ForStmt{
				Target: &hir.SymbolTarget{Name: "i"},
				Iter:   &hir.CallExpr{Func: "range", Args: []hir.Expr{intLit(2)}},
				Body:   []hir.Stmt{&hir.ExprStmt{Value: &hir.VarExpr{Name: "i"}}},
			},
		},
	}
	m := &hir.Module{Name: "m", Functions: []*hir.Function{f}}

	// Module-wide conservative, but the function pins aggressive.
	New(hir.OptConservative).OptimizeModule(m)

	if got := len(f.Body); got != 2 {
		t.Errorf("function-level aggressive annotation ignored, body has %d statements", got)
	}
}
