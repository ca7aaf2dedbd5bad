package inline

import (
	"testing"

	"github.com/depyler-lang/depyler/internal/hir"
)

func ret(e hir.Expr) hir.Stmt { return &hir.ReturnStmt{Value: e} }

func call(name string, args ...hir.Expr) hir.Expr {
	return &hir.CallExpr{Func: name, Args: args}
}

func v(name string) hir.Expr { return &hir.VarExpr{Name: name} }

func analyze(m *hir.Module) map[string]Decision {
	return NewAnalyzer(DefaultConfig()).Analyze(m)
}

func TestTrivialFunctionInlined(t *testing.T) {
	m := &hir.Module{
		Name: "m",
		Functions: []*hir.Function{
			{
				Name:   "double",
				Params: []hir.Param{{Name: "x", Type: &hir.IntType{}}},
				Body: []hir.Stmt{ret(&hir.BinaryExpr{
					Op: hir.OpMul, Left: v("x"), Right: &hir.LiteralExpr{Value: &hir.IntLit{Value: 2}},
				})},
			},
			{
				Name: "caller",
				Body: []hir.Stmt{
					ret(call("double", v("a"))),
					// second call site keeps it off the single-use path
				},
			},
			{
				Name: "caller2",
				Body: []hir.Stmt{ret(call("double", v("b")))},
			},
		},
	}

	d := analyze(m)["double"]
	if !d.Inline {
		t.Errorf("trivial function not inlined: %+v", d)
	}
	if d.Reason != "trivial" {
		t.Errorf("expected reason trivial, got %q", d.Reason)
	}
	if d.CallCount != 2 {
		t.Errorf("expected 2 call sites, got %d", d.CallCount)
	}
}

func TestRecursiveFunctionNeverInlined(t *testing.T) {
	m := &hir.Module{
		Name: "m",
		Functions: []*hir.Function{
			{Name: "fact", Body: []hir.Stmt{ret(call("fact", v("n")))}},
			{Name: "main_fn", Body: []hir.Stmt{ret(call("fact", v("x")))}},
		},
	}

	d := analyze(m)["fact"]
	if d.Inline || !d.Recursive {
		t.Errorf("recursive function should not inline: %+v", d)
	}
}

func TestMutualRecursionDetectedViaSCC(t *testing.T) {
	m := &hir.Module{
		Name: "m",
		Functions: []*hir.Function{
			{Name: "is_even", Body: []hir.Stmt{ret(call("is_odd", v("n")))}},
			{Name: "is_odd", Body: []hir.Stmt{ret(call("is_even", v("n")))}},
		},
	}

	d := analyze(m)
	if !d["is_even"].Recursive || !d["is_odd"].Recursive {
		t.Errorf("mutual recursion not detected: %+v %+v", d["is_even"], d["is_odd"])
	}
}

func TestSingleCallSiteInlined(t *testing.T) {
	m := &hir.Module{
		Name: "m",
		Functions: []*hir.Function{
			{
				Name: "helper",
				Body: []hir.Stmt{
					&hir.AssignStmt{Target: &hir.SymbolTarget{Name: "t"}, Value: v("x")},
					ret(v("t")),
				},
			},
			{Name: "entry", Body: []hir.Stmt{ret(call("helper"))}},
		},
	}

	d := analyze(m)["helper"]
	if !d.Inline || d.Reason != "single call site" {
		t.Errorf("single-use function not inlined: %+v", d)
	}
}

func TestLoopBodyBlocksInlining(t *testing.T) {
	m := &hir.Module{
		Name: "m",
		Functions: []*hir.Function{
			{
				Name: "loopy",
				Body: []hir.Stmt{
					&hir.ForStmt{
						Target: &hir.SymbolTarget{Name: "i"},
						Iter:   call("range", &hir.LiteralExpr{Value: &hir.IntLit{Value: 10}}),
						Body:   []hir.Stmt{&hir.ExprStmt{Value: v("i")}},
					},
				},
			},
			{Name: "entry", Body: []hir.Stmt{&hir.ExprStmt{Value: call("loopy")}}},
		},
	}

	d := analyze(m)["loopy"]
	if d.Inline {
		t.Errorf("function with a loop inlined under default config: %+v", d)
	}

	cfg := DefaultConfig()
	cfg.AllowLoops = true
	d = NewAnalyzer(cfg).Analyze(m)["loopy"]
	if !d.Inline {
		t.Errorf("loop-bearing single-use function should inline with AllowLoops: %+v", d)
	}
}

func TestOversizeFunctionRejected(t *testing.T) {
	var body []hir.Stmt
	for i := 0; i < 30; i++ {
		body = append(body, &hir.ExprStmt{Value: v("x")})
	}

	m := &hir.Module{
		Name: "m",
		Functions: []*hir.Function{
			{Name: "big", Body: body},
			{Name: "entry", Body: []hir.Stmt{&hir.ExprStmt{Value: call("big")}}},
		},
	}

	d := analyze(m)["big"]
	if d.Inline || d.Reason != "oversize" {
		t.Errorf("oversize function not rejected: %+v", d)
	}
}

func TestInlinePolicyAnnotations(t *testing.T) {
	m := &hir.Module{
		Name: "m",
		Functions: []*hir.Function{
			{
				Name:        "pinned_never",
				Annotations: hir.Annotations{InlinePolicy: hir.InlineNever},
				Body:        []hir.Stmt{ret(v("x"))},
			},
			{
				Name:        "pinned_always",
				Annotations: hir.Annotations{InlinePolicy: hir.InlineAlways},
				Body: []hir.Stmt{
					&hir.ExprStmt{Value: call("print", v("x"))},
					ret(v("x")),
				},
			},
			{
				Name: "entry",
				Body: []hir.Stmt{
					&hir.ExprStmt{Value: call("pinned_never")},
					&hir.ExprStmt{Value: call("pinned_always")},
				},
			},
		},
	}

	d := analyze(m)
	if d["pinned_never"].Inline {
		t.Errorf("InlineNever annotation ignored: %+v", d["pinned_never"])
	}
	if !d["pinned_always"].Inline {
		t.Errorf("InlineAlways annotation ignored: %+v", d["pinned_always"])
	}
}

func TestSideEffectPredicate(t *testing.T) {
	pure := []hir.Stmt{ret(&hir.BinaryExpr{Op: hir.OpAdd, Left: v("a"), Right: v("b")})}
	if HasSideEffects(pure) {
		t.Error("pure arithmetic flagged as effectful")
	}

	printing := []hir.Stmt{&hir.ExprStmt{Value: call("print", v("a"))}}
	if !HasSideEffects(printing) {
		t.Error("print not flagged as effectful")
	}

	mutating := []hir.Stmt{&hir.ExprStmt{Value: &hir.MethodCallExpr{
		Object: v("items"), Method: "append", Args: []hir.Expr{v("a")},
	}}}
	if !HasSideEffects(mutating) {
		t.Error("append not flagged as effectful")
	}

	storing := []hir.Stmt{&hir.AssignStmt{
		Target: &hir.IndexTarget{Base: v("d"), Index: v("k")},
		Value:  v("a"),
	}}
	if !HasSideEffects(storing) {
		t.Error("index store not flagged as effectful")
	}
}

func TestWeightedSizeCountsBranchesAndLoops(t *testing.T) {
	flat := []hir.Stmt{
		&hir.ExprStmt{Value: v("a")},
		&hir.ExprStmt{Value: v("b")},
	}
	if got := weightedSize(flat); got != 2 {
		t.Errorf("flat size = %d, want 2", got)
	}

	loop := []hir.Stmt{
		&hir.WhileStmt{Cond: v("p"), Body: flat},
	}
	if got := weightedSize(loop); got != 5 {
		t.Errorf("loop size = %d, want 5", got)
	}
}
