// Package rustast defines the Rust syntax tree produced by the lowering pass
// and the printer that renders it to source text. The tree is deliberately
// shallow: it models exactly the shapes the lowering emits, and anything the
// lowering cannot express structurally goes through Raw nodes so the fixup
// pass can still normalize the text.
package rustast

// File is one emitted Rust source file.
type File struct {
	InnerAttrs []string
	Uses       []string
	Items      []Item
}

// Item is a top-level Rust item.
type Item interface {
	itemNode()
}

// FnParam is one parameter of an emitted function.
type FnParam struct {
	Name string
	Type Type
	Mut  bool // pattern-level mut, for parameters reassigned in the body
}

// FnItem is a function definition.
type FnItem struct {
	Name     string
	Doc      string
	Attrs    []string
	Generics []string
	Params   []FnParam
	Ret      Type // nil for unit
	Body     []Stmt
	IsAsync  bool
	SelfKind SelfKind
}

// SelfKind is the receiver shape of a method.
type SelfKind int

const (
	SelfNone SelfKind = iota
	SelfRef
	SelfRefMut
	SelfOwned
)

func (sk SelfKind) String() string {
	switch sk {
	case SelfRef:
		return "&self"
	case SelfRefMut:
		return "&mut self"
	case SelfOwned:
		return "self"
	default:
		return ""
	}
}

// StructField is one field of an emitted struct.
type StructField struct {
	Name   string
	Type   Type
	Public bool
}

// StructItem is a struct definition.
type StructItem struct {
	Name    string
	Doc     string
	Derives []string
	Fields  []StructField
	Public  bool
}

// EnumVariant is one variant of an emitted enum.
type EnumVariant struct {
	Name   string
	Fields []Type // tuple-variant payload; empty for unit variants
}

// EnumItem is an enum definition.
type EnumItem struct {
	Name     string
	Doc      string
	Derives  []string
	Variants []EnumVariant
	Public   bool
}

// ImplItem is an impl block holding methods.
type ImplItem struct {
	TypeName string
	Fns      []*FnItem
}

// ConstItem is a const or static binding.
type ConstItem struct {
	Name     string
	Type     Type
	Value    Expr
	IsStatic bool
}

// RawItem carries preformatted item text (trait stubs, doc-only markers).
type RawItem struct {
	Text string
}

func (*FnItem) itemNode()     {}
func (*StructItem) itemNode() {}
func (*EnumItem) itemNode()   {}
func (*ImplItem) itemNode()   {}
func (*ConstItem) itemNode()  {}
func (*RawItem) itemNode()    {}

// ====== Statements ======

// Stmt is an emitted Rust statement.
type Stmt interface {
	rsStmtNode()
}

// LetStmt is `let [mut] pattern[: ty] = value;`. Pattern overrides Name when
// set (tuple destructuring).
type LetStmt struct {
	Name    string
	Pattern string
	Mut     bool
	Type    Type
	Value   Expr
}

// ExprStmt evaluates an expression; Tail suppresses the trailing semicolon,
// turning it into the block's value.
type ExprStmt struct {
	E    Expr
	Tail bool
}

// ReturnStmt is `return [value];`.
type ReturnStmt struct {
	Value Expr
}

// AssignStmt is `place = value;` (or a compound operator when Op is set).
type AssignStmt struct {
	Place Expr
	Op    string
	Value Expr
}

// IfStmt is a conditional statement.
type IfStmt struct {
	Cond Expr
	Then []Stmt
	Else []Stmt // may hold a single IfStmt for else-if chains
}

// WhileStmt loops on a bool condition.
type WhileStmt struct {
	Cond Expr
	Body []Stmt
}

// ForStmt is `for pattern in iter { body }`.
type ForStmt struct {
	Pattern string
	Iter    Expr
	Body    []Stmt
}

// LoopStmt is an unconditional loop.
type LoopStmt struct {
	Body []Stmt
}

// MatchArm is one arm of a match statement.
type MatchArm struct {
	Pattern string
	Body    []Stmt
}

// MatchStmt dispatches on a subject expression.
type MatchStmt struct {
	Subject Expr
	Arms    []MatchArm
}

// BlockStmt is a nested scope.
type BlockStmt struct {
	Body []Stmt
}

// BreakStmt exits the innermost or labeled loop.
type BreakStmt struct {
	Label string
}

// ContinueStmt continues the innermost or labeled loop.
type ContinueStmt struct {
	Label string
}

// CommentStmt emits a line comment; the lowering uses it for TODO stubs.
type CommentStmt struct {
	Text string
}

// RawStmt carries preformatted statement text.
type RawStmt struct {
	Text string
}

func (*LetStmt) rsStmtNode()      {}
func (*ExprStmt) rsStmtNode()     {}
func (*ReturnStmt) rsStmtNode()   {}
func (*AssignStmt) rsStmtNode()   {}
func (*IfStmt) rsStmtNode()       {}
func (*WhileStmt) rsStmtNode()    {}
func (*ForStmt) rsStmtNode()      {}
func (*LoopStmt) rsStmtNode()     {}
func (*MatchStmt) rsStmtNode()    {}
func (*BlockStmt) rsStmtNode()    {}
func (*BreakStmt) rsStmtNode()    {}
func (*ContinueStmt) rsStmtNode() {}
func (*CommentStmt) rsStmtNode()  {}
func (*RawStmt) rsStmtNode()      {}

// ====== Expressions ======

// Expr is an emitted Rust expression.
type Expr interface {
	rsExprNode()
}

// Lit is an already-rendered literal token: `3`, `3.0_f64`, `"abc"`, `true`.
type Lit struct {
	Text string
}

// Path references a variable, constant, or path like `Foo::Bar`.
type Path struct {
	Name string
}

// Binary applies a Rust binary operator.
type Binary struct {
	Op string
	L  Expr
	R  Expr
}

// Unary applies a Rust unary operator (`!`, `-`, `*`).
type Unary struct {
	Op      string
	Operand Expr
}

// Call invokes a free function or path.
type Call struct {
	Func string
	Args []Expr
}

// MethodCall invokes a method; Turbofish carries `::<T>` when needed.
type MethodCall struct {
	Recv      Expr
	Method    string
	Turbofish string
	Args      []Expr
}

// Field accesses a named or tuple field.
type Field struct {
	Recv Expr
	Name string
}

// Index is `base[index]`.
type Index struct {
	Base  Expr
	Index Expr
}

// Ref takes a shared or mutable reference.
type Ref struct {
	Mut bool
	E   Expr
}

// Cast is `(e) as ty`.
type Cast struct {
	E  Expr
	Ty string
}

// Tuple is a tuple literal.
type Tuple struct {
	Elems []Expr
}

// ArrayLit is `[a, b, c]`.
type ArrayLit struct {
	Elems []Expr
}

// Repeat is `[elem; n]`.
type Repeat struct {
	Elem Expr
	N    Expr
}

// VecLit is `vec![a, b, c]`.
type VecLit struct {
	Elems []Expr
}

// MacroCall is `name!(args...)`; format-style macros pass the template as a
// quoted Lit first argument.
type MacroCall struct {
	Name string
	Args []Expr
}

// Closure is `|params| body` (or `move |params| body`).
type Closure struct {
	Params []string
	Body   Expr
	Move   bool
}

// IfElse is the expression form `if cond { then } else { other }`.
type IfElse struct {
	Cond Expr
	Then Expr
	Else Expr
}

// Block is a block expression with an optional tail value.
type Block struct {
	Stmts []Stmt
	Tail  Expr
}

// Range is `start..end` or `start..=end`.
type Range struct {
	Start     Expr
	End       Expr
	Inclusive bool
}

// StructLit is `Name { field: value, ... }`.
type StructLit struct {
	Name   string
	Fields []StructLitField
}

// StructLitField is one field initializer.
type StructLitField struct {
	Name  string
	Value Expr
}

// Try is `e?`.
type Try struct {
	E Expr
}

// Await is `e.await`.
type Await struct {
	E Expr
}

// Raw carries preformatted expression text.
type Raw struct {
	Text string
}

func (*Lit) rsExprNode()        {}
func (*Path) rsExprNode()       {}
func (*Binary) rsExprNode()     {}
func (*Unary) rsExprNode()      {}
func (*Call) rsExprNode()       {}
func (*MethodCall) rsExprNode() {}
func (*Field) rsExprNode()      {}
func (*Index) rsExprNode()      {}
func (*Ref) rsExprNode()        {}
func (*Cast) rsExprNode()       {}
func (*Tuple) rsExprNode()      {}
func (*ArrayLit) rsExprNode()   {}
func (*Repeat) rsExprNode()     {}
func (*VecLit) rsExprNode()     {}
func (*MacroCall) rsExprNode()  {}
func (*Closure) rsExprNode()    {}
func (*IfElse) rsExprNode()     {}
func (*Block) rsExprNode()      {}
func (*Range) rsExprNode()      {}
func (*StructLit) rsExprNode()  {}
func (*Try) rsExprNode()        {}
func (*Await) rsExprNode()      {}
func (*Raw) rsExprNode()        {}
