// Package inline decides which free functions are worth inlining. It builds
// a call graph over the module's functions, sizes each body, detects
// recursion (direct and through strongly connected components), and counts
// call sites. The analyzer only decides; an optional rewriter consumes the
// decision map.
package inline

import (
	"sort"

	"golang.org/x/exp/maps"

	"github.com/depyler-lang/depyler/internal/hir"
)

// Config tunes the decision thresholds.
type Config struct {
	// MaxSize is the largest weighted body size still considered.
	MaxSize int
	// CostBenefitThreshold caps size/callcount; smaller is more willing.
	CostBenefitThreshold float64
	// InlineSingleUse permits inlining any in-budget function called once.
	InlineSingleUse bool
	// AllowLoops permits bodies containing loops.
	AllowLoops bool
}

// DefaultConfig mirrors the driver defaults.
func DefaultConfig() Config {
	return Config{
		MaxSize:              20,
		CostBenefitThreshold: 8.0,
		InlineSingleUse:      true,
		AllowLoops:           false,
	}
}

// Decision is the verdict for one function.
type Decision struct {
	Inline    bool
	Reason    string
	Size      int
	CallCount int
	Recursive bool
}

// Analyzer computes per-function inlining decisions.
type Analyzer struct {
	cfg Config
}

// NewAnalyzer creates an analyzer with the given thresholds.
func NewAnalyzer(cfg Config) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// Analyze returns a decision for every free function in the module.
func (a *Analyzer) Analyze(m *hir.Module) map[string]Decision {
	fns := make(map[string]*hir.Function, len(m.Functions))
	for _, f := range m.Functions {
		fns[f.Name] = f
	}

	graph := buildCallGraph(fns)
	recursive := recursiveFunctions(graph)
	counts := callCounts(m, fns)

	decisions := make(map[string]Decision, len(fns))
	for name, f := range fns {
		decisions[name] = a.decide(f, weightedSize(f.Body), counts[name], recursive[name])
	}

	return decisions
}

func (a *Analyzer) decide(f *hir.Function, size, callCount int, recursive bool) Decision {
	d := Decision{Size: size, CallCount: callCount, Recursive: recursive}

	switch f.Annotations.InlinePolicy {
	case hir.InlineNever:
		d.Reason = "annotated never"
		return d
	case hir.InlineAlways:
		if recursive {
			d.Reason = "annotated always but recursive"
			return d
		}
		d.Inline = true
		d.Reason = "annotated always"
		return d
	}

	if recursive {
		d.Reason = "recursive"
		return d
	}
	if size > a.cfg.MaxSize {
		d.Reason = "oversize"
		return d
	}
	if !a.cfg.AllowLoops && containsLoop(f.Body) {
		d.Reason = "contains loop"
		return d
	}
	if callCount == 0 {
		d.Reason = "never called"
		return d
	}
	if ratio := float64(size) / float64(callCount); ratio > a.cfg.CostBenefitThreshold {
		d.Reason = "cost exceeds benefit"
		return d
	}

	if isTrivial(f) {
		d.Inline = true
		d.Reason = "trivial"
		return d
	}
	if callCount == 1 && a.cfg.InlineSingleUse {
		d.Inline = true
		d.Reason = "single call site"
		return d
	}

	d.Reason = "no qualifying shape"

	return d
}

// ====== Sizing ======

// weightedSize counts statements, weighting loops and branches for the extra
// code an inlined copy drags in.
func weightedSize(body []hir.Stmt) int {
	size := 0

	for _, s := range body {
		switch st := s.(type) {
		case *hir.IfStmt:
			size += 2 + weightedSize(st.Then) + weightedSize(st.Else)
		case *hir.WhileStmt:
			size += 3 + weightedSize(st.Body)
		case *hir.ForStmt:
			size += 3 + weightedSize(st.Body)
		case *hir.TryStmt:
			size += 3 + weightedSize(st.Body) + weightedSize(st.Orelse) + weightedSize(st.Finally)
			for _, h := range st.Handlers {
				size += weightedSize(h.Body)
			}
		case *hir.WithStmt:
			size += 2 + weightedSize(st.Body)
		default:
			size++
		}
	}

	return size
}

func containsLoop(body []hir.Stmt) bool {
	found := false

	hir.WalkStmts(body, func(s hir.Stmt) {
		switch s.(type) {
		case *hir.ForStmt, *hir.WhileStmt:
			found = true
		}
	})

	return found
}

// ====== Shape and effects ======

// isTrivial reports a single return over a side-effect-free expression.
func isTrivial(f *hir.Function) bool {
	if len(f.Body) != 1 {
		return false
	}

	ret, ok := f.Body[0].(*hir.ReturnStmt)
	if !ok || ret.Value == nil {
		return false
	}

	return !hasSideEffects(ret.Value)
}

// effectfulCalls are builtins that touch the outside world.
var effectfulCalls = map[string]bool{
	"print": true, "input": true, "open": true, "exit": true,
}

// mutatingMethods move state on their receiver.
var mutatingMethods = map[string]bool{
	"append": true, "pop": true, "insert": true, "extend": true,
	"remove": true, "clear": true, "add": true, "discard": true,
	"update": true, "sort": true, "reverse": true, "setdefault": true,
	"write": true, "writelines": true, "close": true, "flush": true,
}

func hasSideEffects(e hir.Expr) bool {
	effectful := false

	hir.WalkExpr(e, func(sub hir.Expr) {
		switch se := sub.(type) {
		case *hir.CallExpr:
			if effectfulCalls[se.Func] {
				effectful = true
			}
		case *hir.MethodCallExpr:
			if mutatingMethods[se.Method] {
				effectful = true
			}
		case *hir.AwaitExpr:
			effectful = true
		}
	})

	return effectful
}

// HasSideEffects reports whether any statement in the body performs I/O or
// mutates a receiver.
func HasSideEffects(body []hir.Stmt) bool {
	effectful := false

	hir.WalkStmts(body, func(s hir.Stmt) {
		hir.WalkStmtExprs(s, func(e hir.Expr) {
			switch se := e.(type) {
			case *hir.CallExpr:
				if effectfulCalls[se.Func] {
					effectful = true
				}
			case *hir.MethodCallExpr:
				if mutatingMethods[se.Method] {
					effectful = true
				}
			case *hir.AwaitExpr:
				effectful = true
			}
		})

		// Assignments through an index or attribute mutate their base.
		if assign, ok := s.(*hir.AssignStmt); ok {
			switch assign.Target.(type) {
			case *hir.IndexTarget, *hir.AttributeTarget:
				effectful = true
			}
		}
	})

	return effectful
}

// ====== Call graph ======

// buildCallGraph maps each function to the free functions it calls.
func buildCallGraph(fns map[string]*hir.Function) map[string][]string {
	graph := make(map[string][]string, len(fns))

	for name, f := range fns {
		callees := make(map[string]bool)
		collectCalls(f.Body, fns, callees)

		sorted := maps.Keys(callees)
		sort.Strings(sorted)
		graph[name] = sorted
	}

	return graph
}

func collectCalls(body []hir.Stmt, fns map[string]*hir.Function, out map[string]bool) {
	hir.WalkStmts(body, func(s hir.Stmt) {
		hir.WalkStmtExprs(s, func(e hir.Expr) {
			if call, ok := e.(*hir.CallExpr); ok {
				if _, known := fns[call.Func]; known {
					out[call.Func] = true
				}
			}
		})
	})
}

// callCounts tallies call sites per function across the whole program,
// including methods and top-level code.
func callCounts(m *hir.Module, fns map[string]*hir.Function) map[string]int {
	counts := make(map[string]int, len(fns))

	tally := func(body []hir.Stmt) {
		hir.WalkStmts(body, func(s hir.Stmt) {
			hir.WalkStmtExprs(s, func(e hir.Expr) {
				if call, ok := e.(*hir.CallExpr); ok {
					if _, known := fns[call.Func]; known {
						counts[call.Func]++
					}
				}
			})
		})
	}

	for _, f := range m.Functions {
		tally(f.Body)
	}
	for _, cl := range m.Classes {
		for _, f := range cl.Methods {
			tally(f.Body)
		}
	}
	tally(m.TopLevel)

	return counts
}

// recursiveFunctions marks every function on a cycle, found with Tarjan's
// strongly-connected-components pass. Self-calls count as a cycle of one.
func recursiveFunctions(graph map[string][]string) map[string]bool {
	t := &tarjan{
		graph:   graph,
		index:   make(map[string]int),
		lowlink: make(map[string]int),
		onStack: make(map[string]bool),
	}

	names := maps.Keys(graph)
	sort.Strings(names)

	for _, name := range names {
		if _, seen := t.index[name]; !seen {
			t.strongConnect(name)
		}
	}

	recursive := make(map[string]bool)
	for _, scc := range t.sccs {
		if len(scc) > 1 {
			for _, name := range scc {
				recursive[name] = true
			}
		}
	}
	for name, callees := range graph {
		for _, callee := range callees {
			if callee == name {
				recursive[name] = true
			}
		}
	}

	return recursive
}

type tarjan struct {
	graph   map[string][]string
	index   map[string]int
	lowlink map[string]int
	onStack map[string]bool
	stack   []string
	counter int
	sccs    [][]string
}

func (t *tarjan) strongConnect(v string) {
	t.index[v] = t.counter
	t.lowlink[v] = t.counter
	t.counter++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, w := range t.graph[v] {
		if _, seen := t.index[w]; !seen {
			t.strongConnect(w)
			if t.lowlink[w] < t.lowlink[v] {
				t.lowlink[v] = t.lowlink[w]
			}
		} else if t.onStack[w] {
			if t.index[w] < t.lowlink[v] {
				t.lowlink[v] = t.index[w]
			}
		}
	}

	if t.lowlink[v] == t.index[v] {
		var scc []string
		for {
			w := t.stack[len(t.stack)-1]
			t.stack = t.stack[:len(t.stack)-1]
			t.onStack[w] = false
			scc = append(scc, w)
			if w == v {
				break
			}
		}
		t.sccs = append(t.sccs, scc)
	}
}
