// Expression nodes for the Depyler HIR.

package hir

import "fmt"

// Expr is the interface implemented by every HIR expression variant.
type Expr interface {
	exprNode()
}

// Literal is a Python literal value.
type Literal interface {
	literalNode()
	String() string
}

// IntLit is an integer literal.
type IntLit struct {
	Value int64
}

// FloatLit is a floating-point literal.
type FloatLit struct {
	Value float64
}

// StringLit is a string literal.
type StringLit struct {
	Value string
}

// BoolLit is True or False.
type BoolLit struct {
	Value bool
}

// NoneLit is the None literal.
type NoneLit struct{}

func (*IntLit) literalNode()    {}
func (*FloatLit) literalNode()  {}
func (*StringLit) literalNode() {}
func (*BoolLit) literalNode()   {}
func (*NoneLit) literalNode()   {}

func (l *IntLit) String() string    { return fmt.Sprintf("%d", l.Value) }
func (l *FloatLit) String() string  { return fmt.Sprintf("%g", l.Value) }
func (l *StringLit) String() string { return fmt.Sprintf("%q", l.Value) }

func (l *BoolLit) String() string {
	if l.Value {
		return "True"
	}

	return "False"
}

func (*NoneLit) String() string { return "None" }

// BinaryOp enumerates Python binary operators.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpFloorDiv
	OpMod
	OpPow
	OpEq
	OpNotEq
	OpLt
	OpLtEq
	OpGt
	OpGtEq
	OpAnd
	OpOr
	OpBitAnd
	OpBitOr
	OpBitXor
	OpLShift
	OpRShift
	OpIn
	OpNotIn
)

func (op BinaryOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpFloorDiv:
		return "//"
	case OpMod:
		return "%"
	case OpPow:
		return "**"
	case OpEq:
		return "=="
	case OpNotEq:
		return "!="
	case OpLt:
		return "<"
	case OpLtEq:
		return "<="
	case OpGt:
		return ">"
	case OpGtEq:
		return ">="
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	case OpBitAnd:
		return "&"
	case OpBitOr:
		return "|"
	case OpBitXor:
		return "^"
	case OpLShift:
		return "<<"
	case OpRShift:
		return ">>"
	case OpIn:
		return "in"
	case OpNotIn:
		return "not in"
	default:
		return "?"
	}
}

// IsComparison reports whether op yields a bool regardless of operand types.
func (op BinaryOp) IsComparison() bool {
	switch op {
	case OpEq, OpNotEq, OpLt, OpLtEq, OpGt, OpGtEq, OpIn, OpNotIn:
		return true
	default:
		return false
	}
}

// UnaryOp enumerates Python unary operators.
type UnaryOp int

const (
	OpNot UnaryOp = iota
	OpNeg
	OpPos
	OpBitNot
)

func (op UnaryOp) String() string {
	switch op {
	case OpNot:
		return "not"
	case OpNeg:
		return "-"
	case OpPos:
		return "+"
	case OpBitNot:
		return "~"
	default:
		return "?"
	}
}

// Kwarg is a keyword argument in a call.
type Kwarg struct {
	Name  string
	Value Expr
}

// LiteralExpr wraps a literal value.
type LiteralExpr struct {
	Value Literal
}

// VarExpr references a bound name.
type VarExpr struct {
	Name string
}

// BinaryExpr applies a binary operator.
type BinaryExpr struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
}

// UnaryExpr applies a unary operator.
type UnaryExpr struct {
	Op      UnaryOp
	Operand Expr
}

// CallExpr calls a named function; Func may be module-qualified ("math.sqrt").
type CallExpr struct {
	Func   string
	Args   []Expr
	Kwargs []Kwarg
}

// MethodCallExpr calls a method on a receiver object.
type MethodCallExpr struct {
	Object Expr
	Method string
	Args   []Expr
	Kwargs []Kwarg
}

// DynamicCallExpr calls an expression-valued callee (lambda, callable var).
type DynamicCallExpr struct {
	Callee Expr
	Args   []Expr
	Kwargs []Kwarg
}

// IndexExpr is base[index].
type IndexExpr struct {
	Base  Expr
	Index Expr
}

// SliceExpr is base[start:stop:step]; any bound may be nil.
type SliceExpr struct {
	Base  Expr
	Start Expr
	Stop  Expr
	Step  Expr
}

// ListExpr is a list literal.
type ListExpr struct {
	Elems []Expr
}

// DictItem is one key/value pair of a dict literal.
type DictItem struct {
	Key   Expr
	Value Expr
}

// DictExpr is a dict literal.
type DictExpr struct {
	Items []DictItem
}

// TupleExpr is a tuple literal.
type TupleExpr struct {
	Elems []Expr
}

// SetExpr is a set literal.
type SetExpr struct {
	Elems []Expr
}

// FrozenSetExpr is a frozenset literal.
type FrozenSetExpr struct {
	Elems []Expr
}

// Comprehension is one `for target in iter if cond...` clause.
type Comprehension struct {
	Targets    []string
	Iter       Expr
	Conditions []Expr
}

// ListCompExpr is a list comprehension.
type ListCompExpr struct {
	Element    Expr
	Generators []Comprehension
}

// SetCompExpr is a set comprehension.
type SetCompExpr struct {
	Element    Expr
	Generators []Comprehension
}

// DictCompExpr is a dict comprehension.
type DictCompExpr struct {
	Key        Expr
	Value      Expr
	Generators []Comprehension
}

// GeneratorExpExpr is a generator expression (no terminal collect).
type GeneratorExpExpr struct {
	Element    Expr
	Generators []Comprehension
}

// LambdaExpr is an anonymous function.
type LambdaExpr struct {
	Params []string
	Body   Expr
}

// IfExpr is the conditional expression `body if test else orelse`.
type IfExpr struct {
	Test   Expr
	Body   Expr
	Orelse Expr
}

// AttributeExpr is value.attr.
type AttributeExpr struct {
	Value Expr
	Attr  string
}

// BorrowExpr is an explicit borrow inserted by the bridge or a pass.
type BorrowExpr struct {
	Expr    Expr
	Mutable bool
}

// AwaitExpr awaits a future-like value inside an async function.
type AwaitExpr struct {
	Value Expr
}

// FStringPart is either literal text or an interpolated expression.
type FStringPart struct {
	Literal string
	Expr    Expr // nil for literal parts
}

// FStringExpr is a formatted string literal.
type FStringExpr struct {
	Parts []FStringPart
}

// SortByKeyExpr is sorted(iterable, key=lambda ...) captured structurally so
// lowering can emit sort_by_key without re-deriving the closure.
type SortByKeyExpr struct {
	Iterable  Expr
	KeyParams []string
	KeyBody   Expr
	Reverse   bool
}

func (*LiteralExpr) exprNode()      {}
func (*VarExpr) exprNode()          {}
func (*BinaryExpr) exprNode()       {}
func (*UnaryExpr) exprNode()        {}
func (*CallExpr) exprNode()         {}
func (*MethodCallExpr) exprNode()   {}
func (*DynamicCallExpr) exprNode()  {}
func (*IndexExpr) exprNode()        {}
func (*SliceExpr) exprNode()        {}
func (*ListExpr) exprNode()         {}
func (*DictExpr) exprNode()         {}
func (*TupleExpr) exprNode()        {}
func (*SetExpr) exprNode()          {}
func (*FrozenSetExpr) exprNode()    {}
func (*ListCompExpr) exprNode()     {}
func (*SetCompExpr) exprNode()      {}
func (*DictCompExpr) exprNode()     {}
func (*GeneratorExpExpr) exprNode() {}
func (*LambdaExpr) exprNode()       {}
func (*IfExpr) exprNode()           {}
func (*AttributeExpr) exprNode()    {}
func (*BorrowExpr) exprNode()       {}
func (*AwaitExpr) exprNode()        {}
func (*FStringExpr) exprNode()      {}
func (*SortByKeyExpr) exprNode()    {}

// Int is shorthand for an integer literal expression.
func Int(v int64) *LiteralExpr { return &LiteralExpr{Value: &IntLit{Value: v}} }

// Float is shorthand for a float literal expression.
func Float(v float64) *LiteralExpr { return &LiteralExpr{Value: &FloatLit{Value: v}} }

// Str is shorthand for a string literal expression.
func Str(v string) *LiteralExpr { return &LiteralExpr{Value: &StringLit{Value: v}} }

// Bool is shorthand for a boolean literal expression.
func Bool(v bool) *LiteralExpr { return &LiteralExpr{Value: &BoolLit{Value: v}} }

// None is shorthand for the None literal expression.
func None() *LiteralExpr { return &LiteralExpr{Value: &NoneLit{}} }

// Var is shorthand for a variable reference.
func Var(name string) *VarExpr { return &VarExpr{Name: name} }
