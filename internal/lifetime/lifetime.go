// Package lifetime runs a symbolic borrow audit over HIR function bodies.
// It tracks which variables are currently borrowed (shared or mutable) and
// at which scope depth each binding was introduced, and reports moves that
// are later read, references that escape their scope, conflicting borrows,
// and loop-carried borrows invalidated by the next iteration.
//
// The checker never rewrites code. Its findings are soft diagnostics with a
// suggestion the lowering or the user may act on.
package lifetime

import (
	"fmt"

	"github.com/depyler-lang/depyler/internal/diagnostics"
	"github.com/depyler-lang/depyler/internal/hir"
	"github.com/depyler-lang/depyler/internal/rustast"
	"github.com/depyler-lang/depyler/internal/typemap"
)

// BorrowKind distinguishes shared from mutable borrows.
type BorrowKind int

const (
	BorrowShared BorrowKind = iota
	BorrowMutable
)

func (bk BorrowKind) String() string {
	switch bk {
	case BorrowShared:
		return "shared"
	case BorrowMutable:
		return "mutable"
	default:
		return "unknown"
	}
}

// IssueKind enumerates the findings.
type IssueKind int

const (
	UseAfterMove IssueKind = iota
	DanglingReference
	EscapingReference
	ConflictingBorrows
	LifetimeTooShort
)

func (ik IssueKind) String() string {
	switch ik {
	case UseAfterMove:
		return "use-after-move"
	case DanglingReference:
		return "dangling-reference"
	case EscapingReference:
		return "escaping-reference"
	case ConflictingBorrows:
		return "conflicting-borrows"
	case LifetimeTooShort:
		return "lifetime-too-short"
	default:
		return "unknown"
	}
}

// Issue is one finding with a repair suggestion.
type Issue struct {
	Kind       IssueKind
	Variable   string
	Function   string
	Location   string
	Suggestion string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s of %q at %s (%s)", i.Function, i.Kind, i.Variable, i.Location, i.Suggestion)
}

// borrow is one live borrow.
type borrow struct {
	kind  BorrowKind
	depth int
}

// Checker audits one module.
type Checker struct {
	mapper *typemap.Mapper
	diags  *diagnostics.Collector

	fnName  string
	depth   int
	scopes  []map[string]int // name → scope depth at introduction
	moved   map[string]string
	borrows map[string][]borrow
	issues  []Issue
}

// NewChecker creates a checker; the mapper decides which types are Copy and
// therefore exempt from move tracking.
func NewChecker(mapper *typemap.Mapper, diags *diagnostics.Collector) *Checker {
	return &Checker{mapper: mapper, diags: diags}
}

// CheckModule audits every function and method, returning all findings.
func (c *Checker) CheckModule(m *hir.Module) []Issue {
	for _, f := range m.Functions {
		c.checkFunction(f, f.Name)
	}

	for _, cl := range m.Classes {
		for _, f := range cl.Methods {
			c.checkFunction(f, cl.Name+"."+f.Name)
		}
	}

	return c.issues
}

// CheckFunction audits a single function.
func (c *Checker) CheckFunction(f *hir.Function) []Issue {
	start := len(c.issues)
	c.checkFunction(f, f.Name)

	return c.issues[start:]
}

func (c *Checker) checkFunction(f *hir.Function, name string) {
	c.fnName = name
	c.depth = 0
	c.scopes = []map[string]int{make(map[string]int)}
	c.moved = make(map[string]string)
	c.borrows = make(map[string][]borrow)

	for _, p := range f.Params {
		c.scopes[0][p.Name] = 0
	}

	// Body locals get their own scope so a returned borrow of a local is
	// distinguishable from a borrow of a parameter.
	c.enterScope()
	c.checkBlock(f.Body)
	c.leaveScope()
}

func (c *Checker) report(kind IssueKind, variable, location, suggestion string) {
	issue := Issue{
		Kind:       kind,
		Variable:   variable,
		Function:   c.fnName,
		Location:   location,
		Suggestion: suggestion,
	}

	c.issues = append(c.issues, issue)

	if c.diags != nil {
		c.diags.Add(diagnostics.Diagnostic{
			Kind:       diagnostics.LifetimeViolation,
			Severity:   diagnostics.SeverityWarning,
			Function:   c.fnName,
			Location:   location,
			Message:    fmt.Sprintf("%s of %q", kind, variable),
			Suggestion: suggestion,
		})
	}
}

func (c *Checker) enterScope() {
	c.depth++
	c.scopes = append(c.scopes, make(map[string]int))
}

func (c *Checker) leaveScope() {
	top := c.scopes[len(c.scopes)-1]

	// Borrows of bindings local to the closing scope die with it.
	for name := range top {
		delete(c.borrows, name)
		delete(c.moved, name)
	}

	c.scopes = c.scopes[:len(c.scopes)-1]
	c.depth--
}

func (c *Checker) declare(name string) {
	c.scopes[len(c.scopes)-1][name] = c.depth
	delete(c.moved, name)
}

func (c *Checker) depthOf(name string) (int, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if d, ok := c.scopes[i][name]; ok {
			return d, true
		}
	}

	return 0, false
}

func (c *Checker) checkBlock(body []hir.Stmt) {
	for i, s := range body {
		c.checkStmt(s, fmt.Sprintf("statement %d", i+1))
	}
}

func (c *Checker) checkStmt(s hir.Stmt, loc string) {
	switch st := s.(type) {
	case *hir.AssignStmt:
		c.checkExprReads(st.Value, loc)
		c.checkAssignTarget(st.Target, loc)
	case *hir.ReturnStmt:
		if st.Value != nil {
			c.checkReturn(st.Value, loc)
		}
	case *hir.IfStmt:
		c.checkExprReads(st.Cond, loc)
		c.enterScope()
		c.checkBlock(st.Then)
		c.leaveScope()
		c.enterScope()
		c.checkBlock(st.Else)
		c.leaveScope()
	case *hir.WhileStmt:
		c.checkExprReads(st.Cond, loc)
		c.checkLoopBody(st.Body, loc)
	case *hir.ForStmt:
		c.checkExprReads(st.Iter, loc)
		iterVar := iteratedVariable(st.Iter)
		c.enterScope()
		for _, n := range hir.TargetSymbols(st.Target) {
			c.declare(n)
		}
		c.leaveScope()
		c.checkLoopBody(st.Body, loc)
		if iterVar != "" && mutatesVariable(st.Body, iterVar) {
			c.report(DanglingReference, iterVar, loc,
				"iterating a collection mutated in the loop body invalidates the iterator; iterate over a clone")
		}
	case *hir.WithStmt:
		c.checkExprReads(st.Context, loc)
		c.enterScope()
		if st.Target != "" {
			c.declare(st.Target)
		}
		c.checkBlock(st.Body)
		c.leaveScope()
	case *hir.TryStmt:
		c.enterScope()
		c.checkBlock(st.Body)
		c.leaveScope()
		for _, h := range st.Handlers {
			c.enterScope()
			if h.Name != "" {
				c.declare(h.Name)
			}
			c.checkBlock(h.Body)
			c.leaveScope()
		}
		c.enterScope()
		c.checkBlock(st.Orelse)
		c.leaveScope()
		c.enterScope()
		c.checkBlock(st.Finally)
		c.leaveScope()
	case *hir.ExprStmt:
		c.checkExprReads(st.Value, loc)
	case *hir.RaiseStmt:
		if st.Exc != nil {
			c.checkExprReads(st.Exc, loc)
		}
	}
}

// checkLoopBody runs the body in its own scope and flags borrows created in
// one iteration that survive into the next.
func (c *Checker) checkLoopBody(body []hir.Stmt, loc string) {
	before := c.borrowSnapshot()

	c.enterScope()
	c.checkBlock(body)

	// Borrows of outer bindings taken inside the body are invalidated by the
	// next iteration when the borrowed binding is also assigned in the body.
	for name, bs := range c.borrows {
		if len(bs) <= len(before[name]) {
			continue
		}
		if _, outer := before[name]; !outer {
			if d, known := c.depthOf(name); known && d < c.depth {
				if assignsVariable(body, name) {
					c.report(LifetimeTooShort, name, loc,
						"a borrow taken in the loop body outlives the iteration that created it; scope it inside the body")
				}
			}
		}
	}

	c.leaveScope()
	c.restoreBorrows(before)
}

func (c *Checker) borrowSnapshot() map[string][]borrow {
	snap := make(map[string][]borrow, len(c.borrows))
	for k, v := range c.borrows {
		snap[k] = append([]borrow(nil), v...)
	}

	return snap
}

func (c *Checker) restoreBorrows(snap map[string][]borrow) {
	c.borrows = snap
}

func (c *Checker) checkAssignTarget(t hir.AssignTarget, loc string) {
	switch tt := t.(type) {
	case *hir.SymbolTarget:
		c.declare(tt.Name)
	case *hir.IndexTarget:
		c.checkExprReads(tt.Base, loc)
		c.checkExprReads(tt.Index, loc)
		c.flagMutationOfBorrowed(tt.Base, loc)
	case *hir.AttributeTarget:
		c.checkExprReads(tt.Value, loc)
	case *hir.TupleTarget:
		for _, sub := range tt.Targets {
			c.checkAssignTarget(sub, loc)
		}
	}
}

// checkReturn flags returns of borrows of local bindings.
func (c *Checker) checkReturn(e hir.Expr, loc string) {
	if be, ok := e.(*hir.BorrowExpr); ok {
		if v, ok := be.Expr.(*hir.VarExpr); ok {
			if d, known := c.depthOf(v.Name); known && d > 0 {
				c.report(EscapingReference, v.Name, loc,
					"returning a reference to a local; return an owned value instead")
				return
			}
		}
	}

	c.checkExprReads(e, loc)
}

// checkExprReads walks an expression, flagging reads of moved values and
// recording borrows.
func (c *Checker) checkExprReads(e hir.Expr, loc string) {
	hir.WalkExpr(e, func(sub hir.Expr) {
		switch se := sub.(type) {
		case *hir.VarExpr:
			if origin, moved := c.moved[se.Name]; moved {
				c.report(UseAfterMove, se.Name, loc,
					fmt.Sprintf("value was moved at %s; clone it before the move or borrow instead", origin))
			}
		case *hir.BorrowExpr:
			c.recordBorrow(se, loc)
		case *hir.CallExpr:
			c.trackMovesInCall(se, loc)
		}
	})
}

// recordBorrow notes a borrow and flags conflicts with live borrows.
func (c *Checker) recordBorrow(be *hir.BorrowExpr, loc string) {
	v, ok := be.Expr.(*hir.VarExpr)
	if !ok {
		return
	}

	kind := BorrowShared
	if be.Mutable {
		kind = BorrowMutable
	}

	for _, live := range c.borrows[v.Name] {
		if kind == BorrowMutable || live.kind == BorrowMutable {
			c.report(ConflictingBorrows, v.Name, loc,
				fmt.Sprintf("a %s borrow is live while taking a %s borrow; narrow one borrow's scope", live.kind, kind))
			break
		}
	}

	c.borrows[v.Name] = append(c.borrows[v.Name], borrow{kind: kind, depth: c.depth})
}

// trackMovesInCall marks variables passed by value in consuming positions.
// Only non-Copy values move; the type mapper decides.
func (c *Checker) trackMovesInCall(call *hir.CallExpr, loc string) {
	if !consumesArguments(call.Func) {
		return
	}

	for _, a := range call.Args {
		v, ok := a.(*hir.VarExpr)
		if !ok {
			continue
		}
		if c.mapper != nil && rustast.IsCopy(c.mapper.MapType(c.varType(v.Name))) {
			continue
		}
		c.moved[v.Name] = loc
	}
}

// varType is a placeholder hook: the checker runs before lowering binds
// local types, so only Unknown is available here. Unknown types are treated
// as non-Copy, which errs toward reporting.
func (c *Checker) varType(string) hir.Type {
	return &hir.UnknownType{}
}

// consumingFunctions are known to take ownership of their arguments.
var consumingFunctions = map[string]bool{
	"drop": true,
}

func consumesArguments(name string) bool {
	return consumingFunctions[name]
}

// iteratedVariable names the collection variable driving a for loop, if the
// iterable is a plain variable reference.
func iteratedVariable(iter hir.Expr) string {
	if v, ok := iter.(*hir.VarExpr); ok {
		return v.Name
	}

	return ""
}

// mutatesVariable reports whether the body calls a mutating method on, or
// index-assigns into, the named variable.
func mutatesVariable(body []hir.Stmt, name string) bool {
	found := false

	hir.WalkStmts(body, func(st hir.Stmt) {
		if assign, ok := st.(*hir.AssignStmt); ok {
			if targetsVariable(assign.Target, name) {
				found = true
			}
		}
		if es, ok := st.(*hir.ExprStmt); ok {
			if mc, ok := es.Value.(*hir.MethodCallExpr); ok {
				if v, ok := mc.Object.(*hir.VarExpr); ok && v.Name == name && isMutatingMethodName(mc.Method) {
					found = true
				}
			}
		}
	})

	return found
}

func targetsVariable(t hir.AssignTarget, name string) bool {
	switch tt := t.(type) {
	case *hir.IndexTarget:
		return hir.InnermostBase(tt.Base) == name
	case *hir.TupleTarget:
		for _, sub := range tt.Targets {
			if targetsVariable(sub, name) {
				return true
			}
		}
	}

	return false
}

// assignsVariable reports whether the body reassigns the named binding.
func assignsVariable(body []hir.Stmt, name string) bool {
	found := false

	hir.WalkStmts(body, func(st hir.Stmt) {
		if assign, ok := st.(*hir.AssignStmt); ok {
			if sym, ok := assign.Target.(*hir.SymbolTarget); ok && sym.Name == name {
				found = true
			}
		}
	})

	return found
}

// flagMutationOfBorrowed reports an indexed store into a currently borrowed
// collection.
func (c *Checker) flagMutationOfBorrowed(base hir.Expr, loc string) {
	name := hir.InnermostBase(base)
	if name == "" {
		return
	}

	for _, live := range c.borrows[name] {
		if live.kind == BorrowShared {
			c.report(ConflictingBorrows, name, loc,
				"storing through an index while a shared borrow is live; end the borrow first")
			return
		}
	}
}

// mutatingMethodNames mirrors the mutability analyzer's method set for the
// iterator-invalidation check.
var mutatingMethodNames = map[string]bool{
	"append": true, "pop": true, "clear": true, "insert": true,
	"extend": true, "remove": true, "add": true, "discard": true,
}

func isMutatingMethodName(name string) bool {
	return mutatingMethodNames[name]
}
