package lifetime

import (
	"testing"

	"github.com/depyler-lang/depyler/internal/diagnostics"
	"github.com/depyler-lang/depyler/internal/hir"
	"github.com/depyler-lang/depyler/internal/typemap"
)

func check(t *testing.T, f *hir.Function) []Issue {
	t.Helper()

	diags := &diagnostics.Collector{}
	mapper := typemap.NewMapper(false, diags)

	return NewChecker(mapper, diags).CheckFunction(f)
}

func hasKind(issues []Issue, kind IssueKind, variable string) bool {
	for _, i := range issues {
		if i.Kind == kind && i.Variable == variable {
			return true
		}
	}

	return false
}

func TestEscapingReferenceToLocal(t *testing.T) {
	// A borrow of a local declared inside a nested scope escapes via return.
	f := &hir.Function{
		Name: "escapes",
		Body: []hir.Stmt{
			&hir.IfStmt{
				Cond: &hir.LiteralExpr{Value: &hir.BoolLit{Value: true}},
				Then: []hir.Stmt{
					&hir.AssignStmt{
						Target: &hir.SymbolTarget{Name: "local"},
						Value:  &hir.LiteralExpr{Value: &hir.StringLit{Value: "x"}},
					},
					&hir.ReturnStmt{Value: &hir.BorrowExpr{Expr: &hir.VarExpr{Name: "local"}}},
				},
			},
		},
	}

	issues := check(t, f)

	if !hasKind(issues, EscapingReference, "local") {
		t.Errorf("expected an escaping-reference issue for local, got %v", issues)
	}
}

func TestEscapingReferenceToFlatBodyLocal(t *testing.T) {
	// local = "x"; return &local — no nesting involved.
	f := &hir.Function{
		Name: "escapes_flat",
		Body: []hir.Stmt{
			&hir.AssignStmt{
				Target: &hir.SymbolTarget{Name: "local"},
				Value:  &hir.LiteralExpr{Value: &hir.StringLit{Value: "x"}},
			},
			&hir.ReturnStmt{Value: &hir.BorrowExpr{Expr: &hir.VarExpr{Name: "local"}}},
		},
	}

	issues := check(t, f)

	if !hasKind(issues, EscapingReference, "local") {
		t.Errorf("expected an escaping-reference issue for local, got %v", issues)
	}
}

func TestReturningBorrowOfParamIsFine(t *testing.T) {
	f := &hir.Function{
		Name:   "passthrough",
		Params: []hir.Param{{Name: "s", Type: &hir.StringType{}}},
		Body: []hir.Stmt{
			&hir.ReturnStmt{Value: &hir.BorrowExpr{Expr: &hir.VarExpr{Name: "s"}}},
		},
	}

	issues := check(t, f)

	if hasKind(issues, EscapingReference, "s") {
		t.Errorf("parameter borrow flagged as escaping: %v", issues)
	}
}

func TestUseAfterMove(t *testing.T) {
	f := &hir.Function{
		Name:   "moved",
		Params: []hir.Param{{Name: "data", Type: &hir.ListType{Elem: &hir.IntType{}}}},
		Body: []hir.Stmt{
			&hir.ExprStmt{Value: &hir.CallExpr{Func: "drop", Args: []hir.Expr{&hir.VarExpr{Name: "data"}}}},
			&hir.ReturnStmt{Value: &hir.VarExpr{Name: "data"}},
		},
	}

	issues := check(t, f)

	if !hasKind(issues, UseAfterMove, "data") {
		t.Errorf("expected a use-after-move issue for data, got %v", issues)
	}
}

func TestConflictingBorrows(t *testing.T) {
	// A mutable borrow while a shared borrow is live.
	f := &hir.Function{
		Name:   "conflict",
		Params: []hir.Param{{Name: "buf", Type: &hir.ListType{Elem: &hir.IntType{}}}},
		Body: []hir.Stmt{
			&hir.AssignStmt{
				Target: &hir.SymbolTarget{Name: "view"},
				Value:  &hir.BorrowExpr{Expr: &hir.VarExpr{Name: "buf"}},
			},
			&hir.AssignStmt{
				Target: &hir.SymbolTarget{Name: "editor"},
				Value:  &hir.BorrowExpr{Expr: &hir.VarExpr{Name: "buf"}, Mutable: true},
			},
		},
	}

	issues := check(t, f)

	if !hasKind(issues, ConflictingBorrows, "buf") {
		t.Errorf("expected a conflicting-borrows issue for buf, got %v", issues)
	}
}

func TestLoopMutatingIteratedCollection(t *testing.T) {
	f := &hir.Function{
		Name:   "grows",
		Params: []hir.Param{{Name: "items", Type: &hir.ListType{Elem: &hir.IntType{}}}},
		Body: []hir.Stmt{
			&hir.ForStmt{
				Target: &hir.SymbolTarget{Name: "v"},
				Iter:   &hir.VarExpr{Name: "items"},
				Body: []hir.Stmt{
					&hir.ExprStmt{Value: &hir.MethodCallExpr{
						Object: &hir.VarExpr{Name: "items"},
						Method: "append",
						Args:   []hir.Expr{&hir.VarExpr{Name: "v"}},
					}},
				},
			},
		},
	}

	issues := check(t, f)

	if !hasKind(issues, DanglingReference, "items") {
		t.Errorf("expected a dangling-reference issue for items, got %v", issues)
	}
}

func TestCleanFunctionHasNoIssues(t *testing.T) {
	f := &hir.Function{
		Name:   "clean",
		Params: []hir.Param{{Name: "n", Type: &hir.IntType{}}},
		Body: []hir.Stmt{
			&hir.AssignStmt{
				Target: &hir.SymbolTarget{Name: "doubled"},
				Value: &hir.BinaryExpr{
					Op:    hir.OpMul,
					Left:  &hir.VarExpr{Name: "n"},
					Right: &hir.LiteralExpr{Value: &hir.IntLit{Value: 2}},
				},
			},
			&hir.ReturnStmt{Value: &hir.VarExpr{Name: "doubled"}},
		},
	}

	if issues := check(t, f); len(issues) != 0 {
		t.Errorf("clean function produced issues: %v", issues)
	}
}

func TestIssuesLandInDiagnostics(t *testing.T) {
	diags := &diagnostics.Collector{}
	mapper := typemap.NewMapper(false, nil)

	f := &hir.Function{
		Name:   "moved",
		Params: []hir.Param{{Name: "data", Type: &hir.ListType{Elem: &hir.IntType{}}}},
		Body: []hir.Stmt{
			&hir.ExprStmt{Value: &hir.CallExpr{Func: "drop", Args: []hir.Expr{&hir.VarExpr{Name: "data"}}}},
			&hir.ExprStmt{Value: &hir.CallExpr{Func: "len", Args: []hir.Expr{&hir.VarExpr{Name: "data"}}}},
		},
	}

	NewChecker(mapper, diags).CheckFunction(f)

	report := diags.BuildReport()
	if len(report.LifetimeIssues) == 0 {
		t.Error("expected lifetime issues in the diagnostics report")
	}
}
