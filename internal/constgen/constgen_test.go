package constgen

import (
	"testing"

	"github.com/depyler-lang/depyler/internal/diagnostics"
	"github.com/depyler-lang/depyler/internal/hir"
)

func intLit(v int64) hir.Expr {
	return &hir.LiteralExpr{Value: &hir.IntLit{Value: v}}
}

func infer(f *hir.Function) *diagnostics.Collector {
	diags := &diagnostics.Collector{}
	NewInferencer(diags).InferModule(&hir.Module{Name: "t", Functions: []*hir.Function{f}})

	return diags
}

func TestRepeatConstructionRewritesAnnotatedLocal(t *testing.T) {
	// buf: list[int] = [0] * 8
	f := &hir.Function{
		Name: "make",
		Body: []hir.Stmt{
			&hir.AssignStmt{
				Target:     &hir.SymbolTarget{Name: "buf"},
				Annotation: &hir.ListType{Elem: &hir.IntType{}},
				Value: &hir.BinaryExpr{
					Op:    hir.OpMul,
					Left:  &hir.ListExpr{Elems: []hir.Expr{intLit(0)}},
					Right: intLit(8),
				},
			},
		},
	}

	infer(f)

	as := f.Body[0].(*hir.AssignStmt)
	at, ok := as.Annotation.(*hir.ArrayType)
	if !ok {
		t.Fatalf("annotation = %T, want ArrayType", as.Annotation)
	}
	if lit, ok := at.Size.(*hir.ConstLiteral); !ok || lit.Value != 8 {
		t.Errorf("array size = %v, want literal 8", at.Size)
	}
}

func TestLenComparisonRewritesParam(t *testing.T) {
	// def f(p: list[float]): if len(p) == 3: return p
	f := &hir.Function{
		Name:    "f",
		Params:  []hir.Param{{Name: "p", Type: &hir.ListType{Elem: &hir.FloatType{}}}},
		RetType: &hir.ListType{Elem: &hir.FloatType{}},
		Body: []hir.Stmt{
			&hir.IfStmt{
				Cond: &hir.BinaryExpr{
					Op:    hir.OpEq,
					Left:  &hir.CallExpr{Func: "len", Args: []hir.Expr{&hir.VarExpr{Name: "p"}}},
					Right: intLit(3),
				},
				Then: []hir.Stmt{
					&hir.ReturnStmt{Value: &hir.VarExpr{Name: "p"}},
				},
			},
		},
	}

	infer(f)

	if _, ok := f.Params[0].Type.(*hir.ArrayType); !ok {
		t.Errorf("param type = %T, want ArrayType", f.Params[0].Type)
	}
	// The function returns p directly, so the return type follows.
	if _, ok := f.RetType.(*hir.ArrayType); !ok {
		t.Errorf("return type = %T, want ArrayType", f.RetType)
	}
}

func TestConstantIndexGivesMinimumSize(t *testing.T) {
	// p[4] proves at least 5 elements.
	f := &hir.Function{
		Name:   "f",
		Params: []hir.Param{{Name: "p", Type: &hir.ListType{Elem: &hir.IntType{}}}},
		Body: []hir.Stmt{
			&hir.ReturnStmt{Value: &hir.IndexExpr{
				Base:  &hir.VarExpr{Name: "p"},
				Index: intLit(4),
			}},
		},
	}

	infer(f)

	at, ok := f.Params[0].Type.(*hir.ArrayType)
	if !ok {
		t.Fatalf("param type = %T, want ArrayType", f.Params[0].Type)
	}
	if lit := at.Size.(*hir.ConstLiteral); lit.Value != 5 {
		t.Errorf("size = %d, want 5", lit.Value)
	}
}

func TestIndexingConstructedLocalKeepsExactSize(t *testing.T) {
	// xs: list[int] = [1, 2, 3] ... xs[0] — the index is a lower bound, not
	// a second size, so the literal's count must survive unchallenged.
	f := &hir.Function{
		Name: "f",
		Body: []hir.Stmt{
			&hir.AssignStmt{
				Target:     &hir.SymbolTarget{Name: "xs"},
				Annotation: &hir.ListType{Elem: &hir.IntType{}},
				Value:      &hir.ListExpr{Elems: []hir.Expr{intLit(1), intLit(2), intLit(3)}},
			},
			&hir.ExprStmt{Value: &hir.IndexExpr{
				Base:  &hir.VarExpr{Name: "xs"},
				Index: intLit(0),
			}},
		},
	}

	diags := infer(f)

	as := f.Body[0].(*hir.AssignStmt)
	at, ok := as.Annotation.(*hir.ArrayType)
	if !ok {
		t.Fatalf("annotation = %T, want ArrayType", as.Annotation)
	}
	if lit := at.Size.(*hir.ConstLiteral); lit.Value != 3 {
		t.Errorf("size = %d, want 3", lit.Value)
	}

	for _, d := range diags.All() {
		if d.Kind == diagnostics.ConstGenericConflict {
			t.Errorf("spurious conflict diagnostic: %v", d)
		}
	}
}

func TestConflictingEvidenceKeepsListAndWarns(t *testing.T) {
	// xs = [0] * 4 ... later len(xs) == 7
	f := &hir.Function{
		Name: "f",
		Body: []hir.Stmt{
			&hir.AssignStmt{
				Target:     &hir.SymbolTarget{Name: "xs"},
				Annotation: &hir.ListType{Elem: &hir.IntType{}},
				Value: &hir.BinaryExpr{
					Op:    hir.OpMul,
					Left:  &hir.ListExpr{Elems: []hir.Expr{intLit(0)}},
					Right: intLit(4),
				},
			},
			&hir.ExprStmt{Value: &hir.BinaryExpr{
				Op:    hir.OpEq,
				Left:  &hir.CallExpr{Func: "len", Args: []hir.Expr{&hir.VarExpr{Name: "xs"}}},
				Right: intLit(7),
			}},
		},
	}

	diags := infer(f)

	as := f.Body[0].(*hir.AssignStmt)
	if _, ok := as.Annotation.(*hir.ListType); !ok {
		t.Errorf("conflicting evidence rewrote the annotation to %T", as.Annotation)
	}

	found := false
	for _, d := range diags.All() {
		if d.Kind == diagnostics.ConstGenericConflict {
			found = true
		}
	}
	if !found {
		t.Error("no ConstGenericConflict diagnostic emitted")
	}
}

func TestOversizeLiteralStaysList(t *testing.T) {
	f := &hir.Function{
		Name: "f",
		Body: []hir.Stmt{
			&hir.AssignStmt{
				Target:     &hir.SymbolTarget{Name: "big"},
				Annotation: &hir.ListType{Elem: &hir.IntType{}},
				Value: &hir.BinaryExpr{
					Op:    hir.OpMul,
					Left:  &hir.ListExpr{Elems: []hir.Expr{intLit(0)}},
					Right: intLit(100000),
				},
			},
		},
	}

	infer(f)

	as := f.Body[0].(*hir.AssignStmt)
	if _, ok := as.Annotation.(*hir.ListType); !ok {
		t.Errorf("oversize evidence rewrote the annotation to %T", as.Annotation)
	}
}

func TestZerosCallCounts(t *testing.T) {
	f := &hir.Function{
		Name: "f",
		Body: []hir.Stmt{
			&hir.AssignStmt{
				Target:     &hir.SymbolTarget{Name: "v"},
				Annotation: &hir.ListType{Elem: &hir.FloatType{}},
				Value:      &hir.CallExpr{Func: "numpy.zeros", Args: []hir.Expr{intLit(16)}},
			},
		},
	}

	infer(f)

	as := f.Body[0].(*hir.AssignStmt)
	at, ok := as.Annotation.(*hir.ArrayType)
	if !ok {
		t.Fatalf("annotation = %T, want ArrayType", as.Annotation)
	}
	if lit := at.Size.(*hir.ConstLiteral); lit.Value != 16 {
		t.Errorf("size = %d, want 16", lit.Value)
	}
}
