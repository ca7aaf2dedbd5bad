// Statement and assignment-target nodes for the Depyler HIR.

package hir

// Stmt is the interface implemented by every HIR statement variant.
type Stmt interface {
	stmtNode()
}

// AssignTarget is the left-hand side of an assignment. Index and Attribute
// targets never introduce a new binding; their base must already resolve.
type AssignTarget interface {
	assignTargetNode()
}

// SymbolTarget binds or rebinds a plain name.
type SymbolTarget struct {
	Name string
}

// IndexTarget assigns through a subscript; Base may itself be an IndexExpr
// chain for nested subscripts (d[k1][k2] = v).
type IndexTarget struct {
	Base  Expr
	Index Expr
}

// AttributeTarget assigns to value.attr.
type AttributeTarget struct {
	Value Expr
	Attr  string
}

// TupleTarget destructures into multiple targets.
type TupleTarget struct {
	Targets []AssignTarget
}

func (*SymbolTarget) assignTargetNode()    {}
func (*IndexTarget) assignTargetNode()     {}
func (*AttributeTarget) assignTargetNode() {}
func (*TupleTarget) assignTargetNode()     {}

// AssignStmt is `target = value`, optionally carrying a type annotation.
type AssignStmt struct {
	Target     AssignTarget
	Value      Expr
	Annotation Type // nil when unannotated
}

// ReturnStmt returns an optional value.
type ReturnStmt struct {
	Value Expr // nil for bare return
}

// IfStmt is a conditional with an optional else branch.
type IfStmt struct {
	Cond Expr
	Then []Stmt
	Else []Stmt
}

// WhileStmt loops while the condition is truthy.
type WhileStmt struct {
	Cond Expr
	Body []Stmt
}

// ForStmt iterates over an iterable.
type ForStmt struct {
	Target AssignTarget
	Iter   Expr
	Body   []Stmt
}

// WithStmt is a context-managed block (file handle, lock, tempdir).
type WithStmt struct {
	Context Expr
	Target  string // bound name, empty when there is none
	Body    []Stmt
}

// ExceptHandler is one `except` clause of a try statement.
type ExceptHandler struct {
	ExcType string // empty for a bare except
	Name    string // bound name, empty when there is none
	Body    []Stmt
}

// TryStmt is try/except/else/finally.
type TryStmt struct {
	Body     []Stmt
	Handlers []ExceptHandler
	Orelse   []Stmt
	Finally  []Stmt
}

// ExprStmt evaluates an expression for its effects.
type ExprStmt struct {
	Value Expr
}

// PassStmt is a no-op.
type PassStmt struct{}

// BreakStmt exits the innermost (or labeled) loop.
type BreakStmt struct {
	Label string
}

// ContinueStmt skips to the next iteration of the innermost (or labeled) loop.
type ContinueStmt struct {
	Label string
}

// RaiseStmt raises an exception; Exc may be nil for a bare re-raise.
type RaiseStmt struct {
	Exc   Expr
	Cause Expr
}

func (*AssignStmt) stmtNode()   {}
func (*ReturnStmt) stmtNode()   {}
func (*IfStmt) stmtNode()       {}
func (*WhileStmt) stmtNode()    {}
func (*ForStmt) stmtNode()      {}
func (*WithStmt) stmtNode()     {}
func (*TryStmt) stmtNode()      {}
func (*ExprStmt) stmtNode()     {}
func (*PassStmt) stmtNode()     {}
func (*BreakStmt) stmtNode()    {}
func (*ContinueStmt) stmtNode() {}
func (*RaiseStmt) stmtNode()    {}

// TargetSymbols returns every plain name bound by the target, in order.
func TargetSymbols(t AssignTarget) []string {
	switch tt := t.(type) {
	case *SymbolTarget:
		return []string{tt.Name}
	case *TupleTarget:
		var out []string
		for _, sub := range tt.Targets {
			out = append(out, TargetSymbols(sub)...)
		}
		return out
	default:
		return nil
	}
}

// InnermostBase resolves the variable at the bottom of an index/attribute
// chain, e.g. d in d[k1][k2] or obj in obj.a.b. Returns "" when the base is
// not rooted at a variable.
func InnermostBase(e Expr) string {
	switch ee := e.(type) {
	case *VarExpr:
		return ee.Name
	case *IndexExpr:
		return InnermostBase(ee.Base)
	case *AttributeExpr:
		return InnermostBase(ee.Value)
	case *SliceExpr:
		return InnermostBase(ee.Base)
	default:
		return ""
	}
}
