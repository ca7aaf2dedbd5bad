// Package constgen implements const-generic inference: proving the fixed
// size of a Python list so the lowering can emit [T; N] instead of Vec<T>.
//
// Three passes run over each function: collect candidate sizes from
// construction sites, infer parameter sizes from usage, then rewrite the
// types that have consistent evidence. Every pass is conservative; a list
// whose size cannot be shown is never rewritten.
package constgen

import (
	"github.com/depyler-lang/depyler/internal/diagnostics"
	"github.com/depyler-lang/depyler/internal/hir"
)

// Max size accepted as evidence; larger literals stay Vec.
const maxInferredSize = 999

// Inferencer runs const-generic inference over a module.
type Inferencer struct {
	diags *diagnostics.Collector
}

// NewInferencer creates an inferencer reporting conflicts to diags.
func NewInferencer(diags *diagnostics.Collector) *Inferencer {
	return &Inferencer{diags: diags}
}

// InferModule processes every function and method in place.
func (in *Inferencer) InferModule(m *hir.Module) {
	for _, f := range m.Functions {
		in.InferFunction(f)
	}

	for _, c := range m.Classes {
		for _, meth := range c.Methods {
			in.InferFunction(meth)
		}
	}
}

// evidence accumulates every size observed for one binding. Conflicting
// sizes poison the binding.
type evidence struct {
	size     int
	conflict bool
}

// InferFunction runs the three passes over a single function, rewriting
// parameter types, the return type, and annotated local bindings whose
// evidence is consistent.
func (in *Inferencer) InferFunction(f *hir.Function) {
	sizes := make(map[string]*evidence)

	record := func(name string, n int) {
		if n < 1 || n > maxInferredSize {
			return
		}
		ev, ok := sizes[name]
		if !ok {
			sizes[name] = &evidence{size: n}
			return
		}
		if ev.size != n {
			ev.conflict = true
		}
	}

	params := make(map[string]bool, len(f.Params))
	for _, p := range f.Params {
		params[p.Name] = true
	}

	in.collectConstruction(f, record)
	in.inferUsage(f, params, record)

	// Rewrite pass.
	for name, ev := range sizes {
		if ev.conflict {
			in.diags.Warnf(diagnostics.ConstGenericConflict, f.Name,
				"binding %q has conflicting size evidence; keeping List type", name)
			continue
		}

		in.rewriteBinding(f, name, ev.size)
	}
}

// collectConstruction matches the construction patterns of pass 1:
// [e] * n, literal lists, and zeros|ones|full(n).
func (in *Inferencer) collectConstruction(f *hir.Function, record func(string, int)) {
	hir.WalkStmts(f.Body, func(s hir.Stmt) {
		as, ok := s.(*hir.AssignStmt)
		if !ok {
			return
		}

		st, ok := as.Target.(*hir.SymbolTarget)
		if !ok {
			return
		}

		if n, ok := LiteralListSize(as.Value); ok {
			record(st.Name, n)
		}
	})
}

// LiteralListSize reports the provable element count of a list-construction
// expression: a literal list, [e] * n, or zeros/ones/full(n).
func LiteralListSize(e hir.Expr) (int, bool) {
	switch ee := e.(type) {
	case *hir.ListExpr:
		if n := len(ee.Elems); n >= 1 && n <= maxInferredSize {
			return n, true
		}
	case *hir.BinaryExpr:
		// [e] * n with a single-element literal list and a positive
		// integer literal. Both operand orders count.
		if ee.Op != hir.OpMul {
			return 0, false
		}
		if n, ok := repeatCount(ee.Left, ee.Right); ok {
			return n, true
		}
		if n, ok := repeatCount(ee.Right, ee.Left); ok {
			return n, true
		}
	case *hir.CallExpr:
		switch ee.Func {
		case "zeros", "ones", "full", "numpy.zeros", "numpy.ones", "numpy.full":
			if len(ee.Args) >= 1 {
				if n, ok := intLiteral(ee.Args[0]); ok && n >= 1 && n <= maxInferredSize {
					return n, true
				}
			}
		}
	}

	return 0, false
}

func repeatCount(listSide, countSide hir.Expr) (int, bool) {
	le, ok := listSide.(*hir.ListExpr)
	if !ok || len(le.Elems) != 1 {
		return 0, false
	}

	n, ok := intLiteral(countSide)
	if !ok || n < 1 || n > maxInferredSize {
		return 0, false
	}

	return n, true
}

func intLiteral(e hir.Expr) (int, bool) {
	le, ok := e.(*hir.LiteralExpr)
	if !ok {
		return 0, false
	}

	il, ok := le.Value.(*hir.IntLit)
	if !ok {
		return 0, false
	}

	return int(il.Value), true
}

// inferUsage matches the usage patterns of pass 2: len(p) == N comparisons
// and constant indexing p[K]. Index evidence is a lower bound, not an exact
// size, so it only applies to parameters; a local already carries exact
// construction evidence that an index would spuriously conflict with.
func (in *Inferencer) inferUsage(f *hir.Function, params map[string]bool, record func(string, int)) {
	hir.WalkStmts(f.Body, func(s hir.Stmt) {
		hir.WalkStmtExprs(s, func(e hir.Expr) {
			switch ee := e.(type) {
			case *hir.BinaryExpr:
				if ee.Op != hir.OpEq {
					return
				}
				if name, n, ok := lenComparison(ee.Left, ee.Right); ok {
					record(name, n)
				} else if name, n, ok := lenComparison(ee.Right, ee.Left); ok {
					record(name, n)
				}
			case *hir.IndexExpr:
				v, ok := ee.Base.(*hir.VarExpr)
				if !ok || !params[v.Name] {
					return
				}
				if k, ok := intLiteral(ee.Index); ok && k >= 0 {
					record(v.Name, k+1)
				}
			}
		})
	})
}

// lenComparison matches len(p) on one side against an integer literal on
// the other.
func lenComparison(lenSide, litSide hir.Expr) (string, int, bool) {
	call, ok := lenSide.(*hir.CallExpr)
	if !ok || call.Func != "len" || len(call.Args) != 1 {
		return "", 0, false
	}

	v, ok := call.Args[0].(*hir.VarExpr)
	if !ok {
		return "", 0, false
	}

	n, ok := intLiteral(litSide)
	if !ok {
		return "", 0, false
	}

	return v.Name, n, true
}

// rewriteBinding replaces List(T) with Array{T, Literal(n)} everywhere the
// named binding is typed: parameter types, the return type when the function
// returns the binding directly, and annotated assignments.
func (in *Inferencer) rewriteBinding(f *hir.Function, name string, n int) {
	for i := range f.Params {
		if f.Params[i].Name != name {
			continue
		}

		if lt, ok := f.Params[i].Type.(*hir.ListType); ok {
			f.Params[i].Type = &hir.ArrayType{Elem: lt.Elem, Size: &hir.ConstLiteral{Value: n}}
		}
	}

	// Return type follows only when the function returns the binding itself.
	if returnsVar(f.Body, name) {
		if lt, ok := f.RetType.(*hir.ListType); ok {
			f.RetType = &hir.ArrayType{Elem: lt.Elem, Size: &hir.ConstLiteral{Value: n}}
		}
	}

	hir.WalkStmts(f.Body, func(s hir.Stmt) {
		as, ok := s.(*hir.AssignStmt)
		if !ok || as.Annotation == nil {
			return
		}

		st, ok := as.Target.(*hir.SymbolTarget)
		if !ok || st.Name != name {
			return
		}

		if lt, ok := as.Annotation.(*hir.ListType); ok {
			as.Annotation = &hir.ArrayType{Elem: lt.Elem, Size: &hir.ConstLiteral{Value: n}}
		}
	})
}

func returnsVar(body []hir.Stmt, name string) bool {
	found := false

	hir.WalkStmts(body, func(s hir.Stmt) {
		rs, ok := s.(*hir.ReturnStmt)
		if !ok {
			return
		}

		if v, ok := rs.Value.(*hir.VarExpr); ok && v.Name == name {
			found = true
		}
	})

	return found
}
