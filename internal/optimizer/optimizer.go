// Package optimizer applies peephole rewrites to HIR function bodies before
// lowering. Three levels are recognized: Conservative folds constants and
// drops unreachable statements, Standard reserves slots for CSE and strength
// reduction, Aggressive additionally unrolls annotated loops and lifts
// bounds checks where the annotation set allows.
//
// Mixed int/float arithmetic is never folded: the numeric lowering upgrades
// the integer side to f64, and folding ahead of it would change the emitted
// shape.
package optimizer

import (
	"fmt"
	"math"

	"github.com/depyler-lang/depyler/internal/hir"
)

// defaultUnrollFactor applies when an UnrollLoops hint carries no count.
const defaultUnrollFactor = 4

// Optimizer rewrites functions in place and records advisory labels for
// emission.
type Optimizer struct {
	level  hir.OptLevel
	labels map[string][]string
}

// New creates an optimizer running at the given module-wide level. A
// function's own OptimizationLevel annotation can raise (never lower) the
// level applied to it.
func New(level hir.OptLevel) *Optimizer {
	return &Optimizer{level: level, labels: make(map[string][]string)}
}

// OptimizeModule rewrites every function and method body in place.
func (o *Optimizer) OptimizeModule(m *hir.Module) {
	for _, f := range m.Functions {
		o.optimizeFunction(f, f.Name)
	}

	for _, cl := range m.Classes {
		for _, f := range cl.Methods {
			o.optimizeFunction(f, cl.Name+"."+f.Name)
		}
	}

	m.TopLevel = o.optimizeBlock(m.TopLevel, hir.Annotations{}, o.level)
}

// Labels returns the advisory opt labels recorded for a function, in the
// order they were attached.
func (o *Optimizer) Labels(fn string) []string {
	return o.labels[fn]
}

func (o *Optimizer) optimizeFunction(f *hir.Function, key string) {
	level := o.level
	if f.Annotations.OptimizationLevel > level {
		level = f.Annotations.OptimizationLevel
	}

	o.attachHintLabels(key, f.Annotations, level)
	f.Body = o.optimizeBlock(f.Body, f.Annotations, level)
}

func (o *Optimizer) attachHintLabels(key string, ann hir.Annotations, level hir.OptLevel) {
	if ann.HasHint(hir.HintVectorize) {
		o.labels[key] = append(o.labels[key], "vectorize")
	}
	if ann.HasHint(hir.HintOptimizeForLatency) {
		o.labels[key] = append(o.labels[key], "optimize-for-latency")
	}
	if ann.HasHint(hir.HintOptimizeForThroughput) {
		o.labels[key] = append(o.labels[key], "optimize-for-throughput")
	}
	if ann.HasHint(hir.HintPerformanceCritical) {
		o.labels[key] = append(o.labels[key], "performance-critical")
	}
	if level >= hir.OptAggressive && ann.BoundsChecking == hir.BoundsDisabled {
		o.labels[key] = append(o.labels[key], "bounds-checks-removed")
	}
}

// ====== Block rewriting ======

func (o *Optimizer) optimizeBlock(body []hir.Stmt, ann hir.Annotations, level hir.OptLevel) []hir.Stmt {
	out := make([]hir.Stmt, 0, len(body))

	for _, s := range body {
		s = o.optimizeStmt(s, ann, level)

		if fs, ok := s.(*hir.ForStmt); ok && level >= hir.OptAggressive && ann.HasHint(hir.HintUnrollLoops) {
			if flat, ok := o.unrollFor(fs, ann.UnrollFactor(defaultUnrollFactor)); ok {
				out = append(out, flat...)
				continue
			}
		}

		out = append(out, s)

		// Everything after the first unconditional return is unreachable.
		if _, ok := s.(*hir.ReturnStmt); ok {
			break
		}
	}

	return out
}

func (o *Optimizer) optimizeStmt(s hir.Stmt, ann hir.Annotations, level hir.OptLevel) hir.Stmt {
	switch st := s.(type) {
	case *hir.AssignStmt:
		st.Value = o.foldExpr(st.Value)
	case *hir.ReturnStmt:
		if st.Value != nil {
			st.Value = o.foldExpr(st.Value)
		}
	case *hir.ExprStmt:
		st.Value = o.foldExpr(st.Value)
	case *hir.IfStmt:
		st.Cond = o.foldExpr(st.Cond)
		st.Then = o.optimizeBlock(st.Then, ann, level)
		st.Else = o.optimizeBlock(st.Else, ann, level)
	case *hir.WhileStmt:
		st.Cond = o.foldExpr(st.Cond)
		st.Body = o.optimizeBlock(st.Body, ann, level)
	case *hir.ForStmt:
		st.Iter = o.foldExpr(st.Iter)
		st.Body = o.optimizeBlock(st.Body, ann, level)
	case *hir.WithStmt:
		st.Context = o.foldExpr(st.Context)
		st.Body = o.optimizeBlock(st.Body, ann, level)
	case *hir.TryStmt:
		st.Body = o.optimizeBlock(st.Body, ann, level)
		for i := range st.Handlers {
			st.Handlers[i].Body = o.optimizeBlock(st.Handlers[i].Body, ann, level)
		}
		st.Orelse = o.optimizeBlock(st.Orelse, ann, level)
		st.Finally = o.optimizeBlock(st.Finally, ann, level)
	}

	if level >= hir.OptStandard {
		// CSE and strength reduction slot; nothing rewrites here yet.
		s = o.reduceStrength(s)
	}

	return s
}

// reduceStrength is the Standard-level rewrite slot. Reserved: common
// subexpressions and multiply-to-shift rewrites land here.
func (o *Optimizer) reduceStrength(s hir.Stmt) hir.Stmt {
	return s
}

// ====== Loop unrolling ======

// unrollFor fully unrolls `for i in range(n)` when n is a literal no larger
// than the factor, rewriting the body with the induction variable pinned to
// each iteration's value. Anything else stays a loop.
func (o *Optimizer) unrollFor(st *hir.ForStmt, factor int) ([]hir.Stmt, bool) {
	call, ok := st.Iter.(*hir.CallExpr)
	if !ok || call.Func != "range" || len(call.Args) != 1 {
		return nil, false
	}

	lit, ok := intLiteral(call.Args[0])
	if !ok || lit <= 0 || int(lit) > factor {
		return nil, false
	}

	sym, ok := st.Target.(*hir.SymbolTarget)
	if !ok {
		return nil, false
	}

	// A body that rebinds the induction variable or contains a form the
	// substitution does not handle keeps the loop.
	if !substitutable(st.Body, sym.Name) {
		return nil, false
	}

	var flat []hir.Stmt
	for i := int64(0); i < lit; i++ {
		flat = append(flat, substituteBlock(st.Body, sym.Name, i)...)
	}

	return flat, true
}

func substitutable(body []hir.Stmt, name string) bool {
	for _, s := range body {
		switch st := s.(type) {
		case *hir.AssignStmt:
			for _, n := range hir.TargetSymbols(st.Target) {
				if n == name {
					return false
				}
			}
		case *hir.ReturnStmt, *hir.ExprStmt:
		case *hir.IfStmt:
			if !substitutable(st.Then, name) || !substitutable(st.Else, name) {
				return false
			}
		default:
			return false
		}
	}

	return true
}

// substituteBlock deep-copies a block replacing reads of the induction
// variable with the iteration's literal value.
func substituteBlock(body []hir.Stmt, name string, value int64) []hir.Stmt {
	out := make([]hir.Stmt, 0, len(body))
	for _, s := range body {
		out = append(out, substituteStmt(s, name, value))
	}

	return out
}

func substituteStmt(s hir.Stmt, name string, value int64) hir.Stmt {
	switch st := s.(type) {
	case *hir.AssignStmt:
		return &hir.AssignStmt{Target: st.Target, Value: substituteExpr(st.Value, name, value), Annotation: st.Annotation}
	case *hir.ReturnStmt:
		if st.Value == nil {
			return &hir.ReturnStmt{}
		}
		return &hir.ReturnStmt{Value: substituteExpr(st.Value, name, value)}
	case *hir.ExprStmt:
		return &hir.ExprStmt{Value: substituteExpr(st.Value, name, value)}
	case *hir.IfStmt:
		return &hir.IfStmt{
			Cond: substituteExpr(st.Cond, name, value),
			Then: substituteBlock(st.Then, name, value),
			Else: substituteBlock(st.Else, name, value),
		}
	default:
		// A nested binding of the same name or an unhandled form makes the
		// substitution unsound; the caller keeps the loop in that case.
		return s
	}
}

func substituteExpr(e hir.Expr, name string, value int64) hir.Expr {
	if e == nil {
		return nil
	}

	switch ee := e.(type) {
	case *hir.VarExpr:
		if ee.Name == name {
			return &hir.LiteralExpr{Value: &hir.IntLit{Value: value}}
		}
		return ee
	case *hir.BinaryExpr:
		return &hir.BinaryExpr{
			Op:    ee.Op,
			Left:  substituteExpr(ee.Left, name, value),
			Right: substituteExpr(ee.Right, name, value),
		}
	case *hir.UnaryExpr:
		return &hir.UnaryExpr{Op: ee.Op, Operand: substituteExpr(ee.Operand, name, value)}
	case *hir.CallExpr:
		args := make([]hir.Expr, len(ee.Args))
		for i, a := range ee.Args {
			args[i] = substituteExpr(a, name, value)
		}
		return &hir.CallExpr{Func: ee.Func, Args: args, Kwargs: ee.Kwargs}
	case *hir.IndexExpr:
		return &hir.IndexExpr{
			Base:  substituteExpr(ee.Base, name, value),
			Index: substituteExpr(ee.Index, name, value),
		}
	case *hir.MethodCallExpr:
		args := make([]hir.Expr, len(ee.Args))
		for i, a := range ee.Args {
			args[i] = substituteExpr(a, name, value)
		}
		return &hir.MethodCallExpr{Object: substituteExpr(ee.Object, name, value), Method: ee.Method, Args: args, Kwargs: ee.Kwargs}
	default:
		return e
	}
}

// ====== Constant folding ======

// foldExpr recursively folds pure same-type integer and float arithmetic.
func (o *Optimizer) foldExpr(e hir.Expr) hir.Expr {
	if e == nil {
		return nil
	}

	switch ee := e.(type) {
	case *hir.BinaryExpr:
		ee.Left = o.foldExpr(ee.Left)
		ee.Right = o.foldExpr(ee.Right)

		if li, ok := intLiteral(ee.Left); ok {
			if ri, ok := intLiteral(ee.Right); ok {
				if folded, ok := foldInt(ee.Op, li, ri); ok {
					return folded
				}
			}
		}
		if lf, ok := floatLiteral(ee.Left); ok {
			if rf, ok := floatLiteral(ee.Right); ok {
				if folded, ok := foldFloat(ee.Op, lf, rf); ok {
					return folded
				}
			}
		}

		return ee
	case *hir.UnaryExpr:
		ee.Operand = o.foldExpr(ee.Operand)

		if ee.Op == hir.OpNeg {
			if v, ok := intLiteral(ee.Operand); ok {
				return &hir.LiteralExpr{Value: &hir.IntLit{Value: -v}}
			}
			if v, ok := floatLiteral(ee.Operand); ok {
				return &hir.LiteralExpr{Value: &hir.FloatLit{Value: -v}}
			}
		}

		return ee
	case *hir.CallExpr:
		for i, a := range ee.Args {
			ee.Args[i] = o.foldExpr(a)
		}
		return ee
	case *hir.MethodCallExpr:
		ee.Object = o.foldExpr(ee.Object)
		for i, a := range ee.Args {
			ee.Args[i] = o.foldExpr(a)
		}
		return ee
	case *hir.IndexExpr:
		ee.Base = o.foldExpr(ee.Base)
		ee.Index = o.foldExpr(ee.Index)
		return ee
	case *hir.ListExpr:
		for i, el := range ee.Elems {
			ee.Elems[i] = o.foldExpr(el)
		}
		return ee
	case *hir.TupleExpr:
		for i, el := range ee.Elems {
			ee.Elems[i] = o.foldExpr(el)
		}
		return ee
	case *hir.IfExpr:
		ee.Test = o.foldExpr(ee.Test)
		ee.Body = o.foldExpr(ee.Body)
		ee.Orelse = o.foldExpr(ee.Orelse)
		return ee
	default:
		return e
	}
}

func intLiteral(e hir.Expr) (int64, bool) {
	le, ok := e.(*hir.LiteralExpr)
	if !ok {
		return 0, false
	}
	il, ok := le.Value.(*hir.IntLit)
	if !ok {
		return 0, false
	}

	return il.Value, true
}

func floatLiteral(e hir.Expr) (float64, bool) {
	le, ok := e.(*hir.LiteralExpr)
	if !ok {
		return 0, false
	}
	fl, ok := le.Value.(*hir.FloatLit)
	if !ok {
		return 0, false
	}

	return fl.Value, true
}

// foldInt folds integer arithmetic when the result is exact and safe:
// division by zero, overflow, and negative exponents keep the expression.
func foldInt(op hir.BinaryOp, l, r int64) (hir.Expr, bool) {
	var v int64

	switch op {
	case hir.OpAdd:
		v = l + r
		if (v > l) != (r > 0) {
			return nil, false
		}
	case hir.OpSub:
		v = l - r
		if (v < l) != (r > 0) {
			return nil, false
		}
	case hir.OpMul:
		if l != 0 {
			v = l * r
			if v/l != r {
				return nil, false
			}
		}
	case hir.OpFloorDiv:
		if r == 0 {
			return nil, false
		}
		v = floorDiv(l, r)
	case hir.OpMod:
		if r == 0 {
			return nil, false
		}
		v = pythonMod(l, r)
	case hir.OpPow:
		if r < 0 || r > 62 {
			return nil, false
		}
		v = 1
		for i := int64(0); i < r; i++ {
			next := v * l
			if l != 0 && next/l != v {
				return nil, false
			}
			v = next
		}
	default:
		return nil, false
	}

	return &hir.LiteralExpr{Value: &hir.IntLit{Value: v}}, true
}

func foldFloat(op hir.BinaryOp, l, r float64) (hir.Expr, bool) {
	var v float64

	switch op {
	case hir.OpAdd:
		v = l + r
	case hir.OpSub:
		v = l - r
	case hir.OpMul:
		v = l * r
	case hir.OpDiv:
		if r == 0 {
			return nil, false
		}
		v = l / r
	case hir.OpFloorDiv:
		if r == 0 {
			return nil, false
		}
		v = math.Floor(l / r)
	case hir.OpPow:
		v = math.Pow(l, r)
	default:
		return nil, false
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, false
	}

	return &hir.LiteralExpr{Value: &hir.FloatLit{Value: v}}, true
}

// floorDiv matches Python's floor division for negative operands.
func floorDiv(l, r int64) int64 {
	q := l / r
	if (l%r != 0) && ((l < 0) != (r < 0)) {
		q--
	}

	return q
}

// pythonMod matches Python's modulo sign convention.
func pythonMod(l, r int64) int64 {
	m := l % r
	if m != 0 && ((l < 0) != (r < 0)) {
		m += r
	}

	return m
}

// String renders the labels for one function, for report output.
func (o *Optimizer) String() string {
	return fmt.Sprintf("optimizer(level=%s)", o.level)
}
