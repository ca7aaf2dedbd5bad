// Package mutability computes, for each function, which locally declared
// symbols are mutated. The lowering consumes the result to decide `let`
// versus `let mut` and to prefix `&mut` on specific argument positions.
//
// The analysis has two layers: an intra-function pass over each body, and an
// inter-function fixed point that propagates &mut parameter positions
// through call sites until stable.
package mutability

import (
	"strings"

	"github.com/depyler-lang/depyler/internal/hir"
)

// mutatingMethods is the closed set of receiver-mutating method names.
var mutatingMethods = map[string]bool{
	"append":     true,
	"pop":        true,
	"clear":      true,
	"sort":       true,
	"reverse":    true,
	"insert":     true,
	"extend":     true,
	"remove":     true,
	"update":     true,
	"setdefault": true,
	"popitem":    true,
	"add":        true,
	"discard":    true,
	"write":      true,
	"writelines": true,
	"flush":      true,
	"finalize":   true,
	"hexdigest":  true,
	"digest":     true,
	"writerow":   true,
	"writerows":  true,
	"appendleft": true,
	"popleft":    true,
	"rotate":     true,
	"read":       true,
	"readline":   true,
	"readlines":  true,
	"truncate":   true,
	"seek":       true,
}

// mutatingAttributes are attribute reads that lower to &mut self calls on
// the Rust side (e.g. reader.fieldnames becomes reader.headers()).
var mutatingAttributes = map[string]bool{
	"fieldnames": true,
	"line_num":   true,
}

// csvConstructors are call targets whose results are unconditionally mutable
// because every Rust counterpart method takes &mut self.
var csvConstructors = map[string]bool{
	"csv.reader":     true,
	"csv.writer":     true,
	"csv.DictReader": true,
	"csv.DictWriter": true,
}

// FunctionResult is the analysis output for one function.
type FunctionResult struct {
	// Mutable is the set of declared symbols requiring `mut`.
	Mutable map[string]bool
	// ParamMuts marks, per parameter position, whether the lowering must
	// take the argument as &mut.
	ParamMuts []bool
}

// IsMutable reports whether the symbol needs a mut binding.
func (fr *FunctionResult) IsMutable(name string) bool {
	return fr.Mutable[name]
}

// Result is the module-wide analysis output keyed by function name. Methods
// are keyed as ClassName.method.
type Result struct {
	Functions map[string]*FunctionResult
}

// ForFunction returns the per-function result, or an empty one for unknown
// names so callers never nil-check.
func (r *Result) ForFunction(name string) *FunctionResult {
	if fr, ok := r.Functions[name]; ok {
		return fr
	}

	return &FunctionResult{Mutable: map[string]bool{}}
}

// AnalyzeModule runs the analysis over every function and method, iterating
// the inter-function propagation to a fixed point, and stamps NeedsMut onto
// the HIR parameters.
func AnalyzeModule(m *hir.Module) *Result {
	res := &Result{Functions: make(map[string]*FunctionResult)}

	type entry struct {
		key string
		fn  *hir.Function
	}

	var entries []entry
	for _, f := range m.Functions {
		entries = append(entries, entry{key: f.Name, fn: f})
	}

	for _, c := range m.Classes {
		for _, meth := range c.Methods {
			entries = append(entries, entry{key: c.Name + "." + meth.Name, fn: meth})
		}
	}

	for _, e := range entries {
		res.Functions[e.key] = analyzeFunction(e.fn, res)
	}

	// Fixed point: re-run intra-function analysis with the accumulated
	// param-mut knowledge until no function's view changes. Each round can
	// only add mutability, so termination is bounded by the total symbol
	// count.
	for changed := true; changed; {
		changed = false

		for _, e := range entries {
			next := analyzeFunction(e.fn, res)
			if !sameResult(res.Functions[e.key], next) {
				res.Functions[e.key] = next
				changed = true
			}
		}
	}

	for _, e := range entries {
		fr := res.Functions[e.key]
		for i := range e.fn.Params {
			if i < len(fr.ParamMuts) {
				e.fn.Params[i].NeedsMut = fr.ParamMuts[i]
			}
		}
	}

	return res
}

func sameResult(a, b *FunctionResult) bool {
	if len(a.Mutable) != len(b.Mutable) || len(a.ParamMuts) != len(b.ParamMuts) {
		return false
	}

	for k := range a.Mutable {
		if !b.Mutable[k] {
			return false
		}
	}

	for i := range a.ParamMuts {
		if a.ParamMuts[i] != b.ParamMuts[i] {
			return false
		}
	}

	return true
}

// analyzeFunction is the intra-function pass. known supplies the current
// view of other functions' &mut parameter positions.
func analyzeFunction(f *hir.Function, known *Result) *FunctionResult {
	a := &analyzer{
		declared:  map[string]bool{},
		assigned:  map[string]bool{},
		mutable:   map[string]bool{},
		inPlace:   map[string]bool{},
		known:     known,
		paramIdx:  map[string]int{},
		paramSeen: map[string]bool{},
	}

	for i, p := range f.Params {
		a.declared[p.Name] = true
		a.paramIdx[p.Name] = i
		a.paramSeen[p.Name] = true
	}

	a.walkBody(f.Body)

	fr := &FunctionResult{
		Mutable:   a.mutable,
		ParamMuts: make([]bool, len(f.Params)),
	}

	for i, p := range f.Params {
		fr.ParamMuts[i] = a.inPlace[p.Name]
	}

	return fr
}

type analyzer struct {
	declared  map[string]bool
	assigned  map[string]bool
	mutable   map[string]bool // declared symbols needing mut
	inPlace   map[string]bool // subset mutated through a reference
	known     *Result
	paramIdx  map[string]int
	paramSeen map[string]bool
}

// markMutable adds s to the output set only when it is a declared symbol;
// the analyzer never names an unresolved identifier.
func (a *analyzer) markMutable(s string) {
	if s != "" && a.declared[s] {
		a.mutable[s] = true
	}
}

func (a *analyzer) markInPlace(s string) {
	if s != "" && a.declared[s] {
		a.mutable[s] = true
		a.inPlace[s] = true
	}
}

func (a *analyzer) walkBody(body []hir.Stmt) {
	for _, s := range body {
		a.walkStmt(s)
	}
}

func (a *analyzer) walkStmt(s hir.Stmt) {
	switch st := s.(type) {
	case *hir.AssignStmt:
		a.assignTarget(st.Target, st.Value)
		a.walkExpr(st.Value)
	case *hir.ReturnStmt:
		a.walkExpr(st.Value)
	case *hir.IfStmt:
		a.walkExpr(st.Cond)
		a.walkBody(st.Then)
		a.walkBody(st.Else)
	case *hir.WhileStmt:
		a.walkExpr(st.Cond)
		a.walkBody(st.Body)
	case *hir.ForStmt:
		for _, name := range hir.TargetSymbols(st.Target) {
			a.declared[name] = true
		}
		a.walkExpr(st.Iter)
		a.walkBody(st.Body)
	case *hir.WithStmt:
		if st.Target != "" {
			a.declared[st.Target] = true
			// Context-manager handles are used through mutating calls
			// (read/write) almost universally; treat the bound handle as
			// mutable from the start.
			if isResourceContext(st.Context) {
				a.markInPlace(st.Target)
			}
		}
		a.walkExpr(st.Context)
		a.walkBody(st.Body)
	case *hir.TryStmt:
		a.walkBody(st.Body)
		for _, h := range st.Handlers {
			if h.Name != "" {
				a.declared[h.Name] = true
			}
			a.walkBody(h.Body)
		}
		a.walkBody(st.Orelse)
		a.walkBody(st.Finally)
	case *hir.ExprStmt:
		a.walkExpr(st.Value)
	case *hir.RaiseStmt:
		a.walkExpr(st.Exc)
		a.walkExpr(st.Cause)
	}
}

func (a *analyzer) assignTarget(t hir.AssignTarget, value hir.Expr) {
	switch tt := t.(type) {
	case *hir.SymbolTarget:
		if a.assigned[tt.Name] || a.paramSeen[tt.Name] {
			// Reassignment of an existing binding.
			a.markMutable(tt.Name)
		}
		a.assigned[tt.Name] = true
		a.declared[tt.Name] = true

		// CSV reader/writer construction makes the binding unconditionally
		// mutable (domain override: every Rust counterpart method takes
		// &mut self).
		if isCSVConstruction(value) || looksLikeCSVHandle(tt.Name, value) {
			a.markInPlace(tt.Name)
		}
	case *hir.IndexTarget:
		a.markInPlace(hir.InnermostBase(tt.Base))
		a.walkExpr(tt.Index)
	case *hir.AttributeTarget:
		a.markInPlace(hir.InnermostBase(tt.Value))
	case *hir.TupleTarget:
		for _, sub := range tt.Targets {
			a.assignTarget(sub, value)
		}
	}
}

func (a *analyzer) walkExpr(e hir.Expr) {
	if e == nil {
		return
	}

	hir.WalkExpr(e, func(sub hir.Expr) {
		switch ee := sub.(type) {
		case *hir.MethodCallExpr:
			if mutatingMethods[ee.Method] {
				if v, ok := ee.Object.(*hir.VarExpr); ok {
					a.markInPlace(v.Name)
				}
			}
		case *hir.AttributeExpr:
			if mutatingAttributes[ee.Attr] {
				if v, ok := ee.Value.(*hir.VarExpr); ok {
					a.markInPlace(v.Name)
				}
			}
		case *hir.CallExpr:
			a.propagateCall(ee)
		}
	})
}

// propagateCall applies the transitive rule: when the callee is known to
// take its k-th parameter as &mut, the k-th argument variable is mutable
// here.
func (a *analyzer) propagateCall(call *hir.CallExpr) {
	if a.known == nil {
		return
	}

	fr, ok := a.known.Functions[call.Func]
	if !ok {
		return
	}

	for i, arg := range call.Args {
		if i >= len(fr.ParamMuts) || !fr.ParamMuts[i] {
			continue
		}

		if v, ok := arg.(*hir.VarExpr); ok {
			a.markInPlace(v.Name)
		}
	}
}

func isCSVConstruction(value hir.Expr) bool {
	call, ok := value.(*hir.CallExpr)

	return ok && csvConstructors[call.Func]
}

// looksLikeCSVHandle matches the naming-pattern override for reader/writer
// bindings whose construction the analyzer cannot see through.
func looksLikeCSVHandle(name string, value hir.Expr) bool {
	if value == nil {
		return false
	}

	lower := strings.ToLower(name)
	if !strings.Contains(lower, "reader") && !strings.Contains(lower, "writer") {
		return false
	}

	_, isCall := value.(*hir.CallExpr)
	_, isMethod := value.(*hir.MethodCallExpr)

	return isCall || isMethod
}

// isResourceContext reports whether a with-statement context expression
// denotes a read/write resource (open file, tempfile), as opposed to a lock.
func isResourceContext(ctx hir.Expr) bool {
	call, ok := ctx.(*hir.CallExpr)
	if !ok {
		return false
	}

	switch call.Func {
	case "open", "tempfile.TemporaryDirectory", "tempfile.NamedTemporaryFile":
		return true
	default:
		return false
	}
}
