// Printer rendering the Rust syntax tree to source text.
// Output is deterministic: the same tree always prints to the same bytes,
// which is what makes the whole pipeline idempotent.

package rustast

import (
	"fmt"
	"strings"
)

// Printer renders a File to Rust source text.
type Printer struct {
	sb     strings.Builder
	indent int
}

// NewPrinter creates a printer.
func NewPrinter() *Printer {
	return &Printer{}
}

// Print renders the complete file.
func (p *Printer) Print(f *File) string {
	p.sb.Reset()
	p.indent = 0

	for _, attr := range f.InnerAttrs {
		p.line(attr)
	}

	if len(f.InnerAttrs) > 0 {
		p.line("")
	}

	for _, u := range f.Uses {
		p.line("use " + u + ";")
	}

	if len(f.Uses) > 0 {
		p.line("")
	}

	for i, item := range f.Items {
		if i > 0 {
			p.line("")
		}
		p.printItem(item)
	}

	return p.sb.String()
}

func (p *Printer) line(s string) {
	if s == "" {
		p.sb.WriteString("\n")
		return
	}

	p.sb.WriteString(strings.Repeat("    ", p.indent))
	p.sb.WriteString(s)
	p.sb.WriteString("\n")
}

// ====== Items ======

func (p *Printer) printItem(item Item) {
	switch it := item.(type) {
	case *FnItem:
		p.printFn(it)
	case *StructItem:
		p.printStruct(it)
	case *EnumItem:
		p.printEnum(it)
	case *ImplItem:
		p.line(fmt.Sprintf("impl %s {", it.TypeName))
		p.indent++
		for i, fn := range it.Fns {
			if i > 0 {
				p.line("")
			}
			p.printFn(fn)
		}
		p.indent--
		p.line("}")
	case *ConstItem:
		kw := "const"
		if it.IsStatic {
			kw = "static"
		}
		p.line(fmt.Sprintf("%s %s: %s = %s;", kw, it.Name, it.Type, RenderExpr(it.Value)))
	case *RawItem:
		for _, ln := range strings.Split(strings.TrimRight(it.Text, "\n"), "\n") {
			p.line(ln)
		}
	}
}

func (p *Printer) printDoc(doc string) {
	if doc == "" {
		return
	}

	for _, ln := range strings.Split(strings.TrimRight(doc, "\n"), "\n") {
		p.line("/// " + ln)
	}
}

func (p *Printer) printFn(fn *FnItem) {
	p.printDoc(fn.Doc)

	for _, a := range fn.Attrs {
		p.line(a)
	}

	var sig strings.Builder

	if fn.IsAsync {
		sig.WriteString("async ")
	}

	sig.WriteString("pub fn ")
	sig.WriteString(fn.Name)

	if len(fn.Generics) > 0 {
		sig.WriteString("<" + strings.Join(fn.Generics, ", ") + ">")
	}

	sig.WriteString("(")

	var params []string
	if fn.SelfKind != SelfNone {
		params = append(params, fn.SelfKind.String())
	}

	for _, prm := range fn.Params {
		name := prm.Name
		if prm.Mut {
			name = "mut " + name
		}
		params = append(params, fmt.Sprintf("%s: %s", name, prm.Type))
	}

	sig.WriteString(strings.Join(params, ", "))
	sig.WriteString(")")

	if fn.Ret != nil && fn.Ret.String() != "()" {
		sig.WriteString(" -> " + fn.Ret.String())
	}

	sig.WriteString(" {")
	p.line(sig.String())

	p.indent++
	p.printStmts(fn.Body)
	p.indent--

	p.line("}")
}

func (p *Printer) printStruct(st *StructItem) {
	p.printDoc(st.Doc)

	if len(st.Derives) > 0 {
		p.line("#[derive(" + strings.Join(st.Derives, ", ") + ")]")
	}

	vis := ""
	if st.Public {
		vis = "pub "
	}

	if len(st.Fields) == 0 {
		p.line(fmt.Sprintf("%sstruct %s;", vis, st.Name))
		return
	}

	p.line(fmt.Sprintf("%sstruct %s {", vis, st.Name))
	p.indent++

	for _, f := range st.Fields {
		fv := ""
		if f.Public {
			fv = "pub "
		}
		p.line(fmt.Sprintf("%s%s: %s,", fv, f.Name, f.Type))
	}

	p.indent--
	p.line("}")
}

func (p *Printer) printEnum(en *EnumItem) {
	p.printDoc(en.Doc)

	if len(en.Derives) > 0 {
		p.line("#[derive(" + strings.Join(en.Derives, ", ") + ")]")
	}

	vis := ""
	if en.Public {
		vis = "pub "
	}

	p.line(fmt.Sprintf("%senum %s {", vis, en.Name))
	p.indent++

	for _, v := range en.Variants {
		if len(v.Fields) == 0 {
			p.line(v.Name + ",")
			continue
		}

		parts := make([]string, len(v.Fields))
		for i, f := range v.Fields {
			parts[i] = f.String()
		}
		p.line(fmt.Sprintf("%s(%s),", v.Name, strings.Join(parts, ", ")))
	}

	p.indent--
	p.line("}")
}

// ====== Statements ======

func (p *Printer) printStmts(stmts []Stmt) {
	for _, s := range stmts {
		p.printStmt(s)
	}
}

func (p *Printer) printStmt(s Stmt) {
	switch st := s.(type) {
	case *LetStmt:
		var b strings.Builder

		b.WriteString("let ")

		if st.Pattern != "" {
			b.WriteString(st.Pattern)
		} else {
			if st.Mut {
				b.WriteString("mut ")
			}
			b.WriteString(st.Name)
		}

		if st.Type != nil {
			b.WriteString(": " + st.Type.String())
		}

		if st.Value != nil {
			b.WriteString(" = " + RenderExpr(st.Value))
		}

		b.WriteString(";")
		p.line(b.String())
	case *ExprStmt:
		if st.Tail {
			p.line(RenderExpr(st.E))
		} else {
			p.line(RenderExpr(st.E) + ";")
		}
	case *ReturnStmt:
		if st.Value == nil {
			p.line("return;")
		} else {
			p.line("return " + RenderExpr(st.Value) + ";")
		}
	case *AssignStmt:
		op := st.Op
		if op == "" {
			op = "="
		}
		p.line(fmt.Sprintf("%s %s %s;", RenderExpr(st.Place), op, RenderExpr(st.Value)))
	case *IfStmt:
		p.printIf(st, "if ")
	case *WhileStmt:
		p.line("while " + RenderExpr(st.Cond) + " {")
		p.indent++
		p.printStmts(st.Body)
		p.indent--
		p.line("}")
	case *ForStmt:
		p.line(fmt.Sprintf("for %s in %s {", st.Pattern, RenderExpr(st.Iter)))
		p.indent++
		p.printStmts(st.Body)
		p.indent--
		p.line("}")
	case *LoopStmt:
		p.line("loop {")
		p.indent++
		p.printStmts(st.Body)
		p.indent--
		p.line("}")
	case *MatchStmt:
		p.line("match " + RenderExpr(st.Subject) + " {")
		p.indent++
		for _, arm := range st.Arms {
			p.line(arm.Pattern + " => {")
			p.indent++
			p.printStmts(arm.Body)
			p.indent--
			p.line("}")
		}
		p.indent--
		p.line("}")
	case *BlockStmt:
		p.line("{")
		p.indent++
		p.printStmts(st.Body)
		p.indent--
		p.line("}")
	case *BreakStmt:
		if st.Label != "" {
			p.line("break '" + st.Label + ";")
		} else {
			p.line("break;")
		}
	case *ContinueStmt:
		if st.Label != "" {
			p.line("continue '" + st.Label + ";")
		} else {
			p.line("continue;")
		}
	case *CommentStmt:
		p.line("// " + st.Text)
	case *RawStmt:
		for _, ln := range strings.Split(strings.TrimRight(st.Text, "\n"), "\n") {
			p.line(ln)
		}
	}
}

func (p *Printer) printIf(st *IfStmt, kw string) {
	p.line(kw + RenderExpr(st.Cond) + " {")
	p.indent++
	p.printStmts(st.Then)
	p.indent--

	if len(st.Else) == 0 {
		p.line("}")
		return
	}

	// Collapse a single nested IfStmt into else-if.
	if len(st.Else) == 1 {
		if nested, ok := st.Else[0].(*IfStmt); ok {
			p.sb.WriteString(strings.Repeat("    ", p.indent))
			p.sb.WriteString("} else ")
			// printIf re-emits indentation for the body; strip the leading
			// indent by printing the header inline.
			p.printIfInline(nested)
			return
		}
	}

	p.line("} else {")
	p.indent++
	p.printStmts(st.Else)
	p.indent--
	p.line("}")
}

func (p *Printer) printIfInline(st *IfStmt) {
	p.sb.WriteString("if " + RenderExpr(st.Cond) + " {\n")
	p.indent++
	p.printStmts(st.Then)
	p.indent--

	if len(st.Else) == 0 {
		p.line("}")
		return
	}

	if len(st.Else) == 1 {
		if nested, ok := st.Else[0].(*IfStmt); ok {
			p.sb.WriteString(strings.Repeat("    ", p.indent))
			p.sb.WriteString("} else ")
			p.printIfInline(nested)
			return
		}
	}

	p.line("} else {")
	p.indent++
	p.printStmts(st.Else)
	p.indent--
	p.line("}")
}

// ====== Expressions ======

// RenderExpr renders a single expression to Rust text.
func RenderExpr(e Expr) string {
	if e == nil {
		return ""
	}

	switch ee := e.(type) {
	case *Lit:
		return ee.Text
	case *Path:
		return ee.Name
	case *Binary:
		return fmt.Sprintf("%s %s %s", renderOperand(ee.L), ee.Op, renderOperand(ee.R))
	case *Unary:
		return ee.Op + renderOperand(ee.Operand)
	case *Call:
		return ee.Func + "(" + renderArgs(ee.Args) + ")"
	case *MethodCall:
		return fmt.Sprintf("%s.%s%s(%s)", renderOperand(ee.Recv), ee.Method, ee.Turbofish, renderArgs(ee.Args))
	case *Field:
		return renderOperand(ee.Recv) + "." + ee.Name
	case *Index:
		return renderOperand(ee.Base) + "[" + RenderExpr(ee.Index) + "]"
	case *Ref:
		if ee.Mut {
			return "&mut " + renderOperand(ee.E)
		}
		return "&" + renderOperand(ee.E)
	case *Cast:
		return fmt.Sprintf("(%s) as %s", RenderExpr(ee.E), ee.Ty)
	case *Tuple:
		return "(" + renderArgs(ee.Elems) + ")"
	case *ArrayLit:
		return "[" + renderArgs(ee.Elems) + "]"
	case *Repeat:
		return fmt.Sprintf("[%s; %s]", RenderExpr(ee.Elem), RenderExpr(ee.N))
	case *VecLit:
		return "vec![" + renderArgs(ee.Elems) + "]"
	case *MacroCall:
		return ee.Name + "!(" + renderArgs(ee.Args) + ")"
	case *Closure:
		kw := ""
		if ee.Move {
			kw = "move "
		}
		return fmt.Sprintf("%s|%s| %s", kw, strings.Join(ee.Params, ", "), RenderExpr(ee.Body))
	case *IfElse:
		return fmt.Sprintf("if %s { %s } else { %s }", RenderExpr(ee.Cond), RenderExpr(ee.Then), RenderExpr(ee.Else))
	case *Block:
		var b strings.Builder
		b.WriteString("{ ")
		inner := NewPrinter()
		inner.printStmts(ee.Stmts)
		body := strings.TrimRight(inner.sb.String(), "\n")
		if body != "" {
			b.WriteString(strings.ReplaceAll(body, "\n", " "))
			b.WriteString(" ")
		}
		if ee.Tail != nil {
			b.WriteString(RenderExpr(ee.Tail))
			b.WriteString(" ")
		}
		b.WriteString("}")
		return b.String()
	case *Range:
		op := ".."
		if ee.Inclusive {
			op = "..="
		}
		return renderOperand(ee.Start) + op + renderOperand(ee.End)
	case *StructLit:
		parts := make([]string, len(ee.Fields))
		for i, f := range ee.Fields {
			parts[i] = fmt.Sprintf("%s: %s", f.Name, RenderExpr(f.Value))
		}
		return fmt.Sprintf("%s { %s }", ee.Name, strings.Join(parts, ", "))
	case *Try:
		return renderOperand(ee.E) + "?"
	case *Await:
		return renderOperand(ee.E) + ".await"
	case *Raw:
		return ee.Text
	default:
		return ""
	}
}

// renderOperand parenthesizes compound operands so precedence never needs a
// table; the emitted files carry #![allow(unused_parens)].
func renderOperand(e Expr) string {
	switch e.(type) {
	case *Binary, *IfElse, *Closure, *Range, *Cast:
		return "(" + RenderExpr(e) + ")"
	default:
		return RenderExpr(e)
	}
}

func renderArgs(args []Expr) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = RenderExpr(a)
	}

	return strings.Join(parts, ", ")
}
