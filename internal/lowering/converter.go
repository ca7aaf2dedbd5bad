// Package lowering converts HIR to the Rust syntax tree. A Converter is
// created per module and carries the context tables every sub-dispatcher
// consults: parameter types, class field types, and the mutability analysis
// result for the function being lowered.
//
// Failure modes follow the pipeline contract: a missing dispatch emits a
// best-effort stub plus a LoweringIncomplete diagnostic; a wrong argument
// count is a hard error that skips the enclosing function.
package lowering

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/depyler-lang/depyler/internal/diagnostics"
	"github.com/depyler-lang/depyler/internal/hir"
	"github.com/depyler-lang/depyler/internal/mutability"
	"github.com/depyler-lang/depyler/internal/rustast"
	"github.com/depyler-lang/depyler/internal/typemap"
	"github.com/depyler-lang/depyler/internal/typeshed"
)

// Converter lowers one HIR module.
type Converter struct {
	Mapper   *typemap.Mapper
	Crates   *rustast.CrateSet
	Diags    *diagnostics.Collector
	Registry *typeshed.Registry
	NASAMode bool

	// Context tables threaded through expression conversion.
	paramTypes      map[string]hir.Type
	classFieldTypes map[string]hir.Type
	isClassMethod   bool

	// Per-module knowledge.
	mutResult   *mutability.Result
	moduleFuncs map[string]*hir.Function
	classes     map[string]*hir.Class

	// Per-function state.
	fnName     string
	fnKey      string
	canFail    bool
	resultCtx  bool
	localTypes map[string]hir.Type
	declared   map[string]bool
	tempCount  int
}

// NewConverter creates a converter for the module.
func NewConverter(m *hir.Module, mut *mutability.Result, mapper *typemap.Mapper, crates *rustast.CrateSet, diags *diagnostics.Collector, registry *typeshed.Registry) *Converter {
	c := &Converter{
		Mapper:          mapper,
		Crates:          crates,
		Diags:           diags,
		Registry:        registry,
		NASAMode:        mapper.NASAMode,
		mutResult:       mut,
		moduleFuncs:     make(map[string]*hir.Function),
		classes:         make(map[string]*hir.Class),
	}

	for _, f := range m.Functions {
		c.moduleFuncs[f.Name] = f
	}

	for _, cl := range m.Classes {
		c.classes[cl.Name] = cl
	}

	return c
}

// ConvertModule lowers the whole module into a Rust file.
func (c *Converter) ConvertModule(m *hir.Module) *rustast.File {
	file := &rustast.File{
		InnerAttrs: []string{"#![allow(unused_parens, unused_variables, dead_code)]"},
	}

	uses := newUseSet()

	for _, cl := range m.Classes {
		items := c.convertClass(cl, uses)
		file.Items = append(file.Items, items...)
	}

	for _, cst := range m.Constants {
		if item := c.convertConstant(cst); item != nil {
			file.Items = append(file.Items, item)
		}
	}

	for _, f := range m.Functions {
		fn, err := c.ConvertFunction(f, "")
		if err != nil {
			c.Diags.Errorf(diagnostics.DispatchArity, f.Name, "%v; function skipped", err)
			continue
		}
		file.Items = append(file.Items, fn)
	}

	if len(m.TopLevel) > 0 {
		if mainFn := c.convertTopLevel(m.TopLevel); mainFn != nil {
			file.Items = append(file.Items, mainFn)
		}
	}

	collectUses(file, uses)
	file.Uses = uses.sorted()

	return file
}

// ConvertFunction lowers one function. classPrefix is the owning class name
// for methods, empty for free functions.
func (c *Converter) ConvertFunction(f *hir.Function, classPrefix string) (*rustast.FnItem, error) {
	c.fnName = f.Name
	c.fnKey = f.Name
	if classPrefix != "" {
		c.fnKey = classPrefix + "." + f.Name
	}

	c.canFail = f.Properties.CanFail
	c.resultCtx = f.Properties.CanFail
	c.paramTypes = make(map[string]hir.Type)
	c.localTypes = make(map[string]hir.Type)
	c.declared = make(map[string]bool)
	c.tempCount = 0
	c.isClassMethod = classPrefix != "" && len(f.Params) > 0 && f.Params[0].Name == "cls"

	mut := c.mutResult.ForFunction(c.fnKey)

	fn := &rustast.FnItem{
		Name:    f.Name,
		Doc:     f.Docstring,
		IsAsync: f.Properties.IsAsync,
	}

	selfKind := rustast.SelfNone

	for i, p := range f.Params {
		if classPrefix != "" && i == 0 && (p.Name == "self" || p.Name == "cls") {
			if p.Name == "self" {
				if mut.IsMutable("self") || p.NeedsMut {
					selfKind = rustast.SelfRefMut
				} else {
					selfKind = rustast.SelfRef
				}
			}
			c.declared[p.Name] = true
			continue
		}

		c.paramTypes[p.Name] = p.Type
		c.declared[p.Name] = true

		rt := c.Mapper.MapType(p.Type)
		param := rustast.FnParam{Name: p.Name, Type: rt}

		if p.NeedsMut && !rustast.IsCopy(rt) {
			// Mutated in place: take the argument by mutable reference.
			param.Type = &rustast.RefT{Mut: true, Elem: rt}
		} else if mut.IsMutable(p.Name) {
			// Only reassigned: a pattern-level mut suffices.
			param.Mut = true
		}

		fn.Params = append(fn.Params, param)
	}

	fn.SelfKind = selfKind

	ret := c.Mapper.MapType(f.RetType)
	if f.Properties.CanFail {
		ret = &rustast.ResultT{Ok: ret, Err: &rustast.Named{Name: "String"}}
	}
	fn.Ret = ret

	body, err := c.convertBody(f.Body, mut)
	if err != nil {
		return nil, err
	}

	// Tail-expression elision: a trailing `return e` in a function that
	// cannot fail becomes the block's value.
	if !f.Properties.CanFail && len(body) > 0 {
		if rs, ok := body[len(body)-1].(*rustast.ReturnStmt); ok && rs.Value != nil {
			body[len(body)-1] = &rustast.ExprStmt{E: rs.Value, Tail: true}
		}
	}

	if f.Properties.CanFail {
		body = append(body, &rustast.ExprStmt{E: &rustast.Raw{Text: "Ok(Default::default())"}, Tail: true})
	}

	fn.Body = body

	return fn, nil
}

// convertBody lowers an ordered statement list.
func (c *Converter) convertBody(body []hir.Stmt, mut *mutability.FunctionResult) ([]rustast.Stmt, error) {
	var out []rustast.Stmt

	for _, s := range body {
		stmts, err := c.convertStmt(s, mut)
		if err != nil {
			return nil, err
		}
		out = append(out, stmts...)
	}

	return out, nil
}

func (c *Converter) convertStmt(s hir.Stmt, mut *mutability.FunctionResult) ([]rustast.Stmt, error) {
	switch st := s.(type) {
	case *hir.AssignStmt:
		return c.convertAssign(st, mut)
	case *hir.ReturnStmt:
		if st.Value == nil {
			return []rustast.Stmt{&rustast.ReturnStmt{}}, nil
		}
		v, err := c.convertExpr(st.Value)
		if err != nil {
			return nil, err
		}
		if c.canFail {
			v = &rustast.Call{Func: "Ok", Args: []rustast.Expr{v}}
		}
		return []rustast.Stmt{&rustast.ReturnStmt{Value: v}}, nil
	case *hir.IfStmt:
		cond, err := c.convertCondition(st.Cond)
		if err != nil {
			return nil, err
		}
		then, err := c.convertBody(st.Then, mut)
		if err != nil {
			return nil, err
		}
		els, err := c.convertBody(st.Else, mut)
		if err != nil {
			return nil, err
		}
		return []rustast.Stmt{&rustast.IfStmt{Cond: cond, Then: then, Else: els}}, nil
	case *hir.WhileStmt:
		cond, err := c.convertCondition(st.Cond)
		if err != nil {
			return nil, err
		}
		body, err := c.convertBody(st.Body, mut)
		if err != nil {
			return nil, err
		}
		return []rustast.Stmt{&rustast.WhileStmt{Cond: cond, Body: body}}, nil
	case *hir.ForStmt:
		return c.convertFor(st, mut)
	case *hir.WithStmt:
		return c.convertWith(st, mut)
	case *hir.TryStmt:
		return c.convertTry(st, mut)
	case *hir.ExprStmt:
		e, err := c.convertExpr(st.Value)
		if err != nil {
			return nil, err
		}
		return []rustast.Stmt{&rustast.ExprStmt{E: e}}, nil
	case *hir.PassStmt:
		return nil, nil
	case *hir.BreakStmt:
		return []rustast.Stmt{&rustast.BreakStmt{Label: st.Label}}, nil
	case *hir.ContinueStmt:
		return []rustast.Stmt{&rustast.ContinueStmt{Label: st.Label}}, nil
	case *hir.RaiseStmt:
		return c.convertRaise(st)
	default:
		c.Diags.Warnf(diagnostics.LoweringIncomplete, c.fnName, "statement %T has no dispatch", s)
		return []rustast.Stmt{&rustast.CommentStmt{Text: fmt.Sprintf("TODO: unsupported statement %T", s)}}, nil
	}
}

// convertAssign handles the four target shapes of an assignment.
func (c *Converter) convertAssign(st *hir.AssignStmt, mut *mutability.FunctionResult) ([]rustast.Stmt, error) {
	switch target := st.Target.(type) {
	case *hir.SymbolTarget:
		value, err := c.convertExpr(st.Value)
		if err != nil {
			return nil, err
		}

		c.noteLocalType(target.Name, st)

		if c.declared[target.Name] {
			return []rustast.Stmt{&rustast.AssignStmt{Place: &rustast.Path{Name: target.Name}, Value: value}}, nil
		}

		c.declared[target.Name] = true

		let := &rustast.LetStmt{
			Name:  target.Name,
			Mut:   mut.IsMutable(target.Name),
			Value: value,
		}
		if st.Annotation != nil {
			let.Type = c.Mapper.MapType(st.Annotation)
		}

		return []rustast.Stmt{let}, nil
	case *hir.IndexTarget:
		return c.convertIndexAssign(target, st.Value)
	case *hir.AttributeTarget:
		base, err := c.convertExpr(target.Value)
		if err != nil {
			return nil, err
		}
		value, err := c.convertExpr(st.Value)
		if err != nil {
			return nil, err
		}
		return []rustast.Stmt{&rustast.AssignStmt{
			Place: &rustast.Field{Recv: base, Name: target.Attr},
			Value: value,
		}}, nil
	case *hir.TupleTarget:
		return c.convertTupleAssign(target, st.Value, mut)
	default:
		return nil, errors.Errorf("unknown assign target %T", st.Target)
	}
}

// convertTupleAssign lowers multi-target assignment. All-symbol targets
// become a let pattern (or a destructuring assignment when every symbol is
// already bound); any Index leaf forces a _swap_temp temporary so the
// right-hand side is fully evaluated before the first store, matching
// Python's evaluate-then-assign semantics.
func (c *Converter) convertTupleAssign(target *hir.TupleTarget, value hir.Expr, mut *mutability.FunctionResult) ([]rustast.Stmt, error) {
	rhs, err := c.convertExpr(value)
	if err != nil {
		return nil, err
	}

	allSymbols := true
	for _, sub := range target.Targets {
		if _, ok := sub.(*hir.SymbolTarget); !ok {
			allSymbols = false
			break
		}
	}

	if allSymbols {
		names := make([]string, len(target.Targets))
		anyFresh := false

		for i, sub := range target.Targets {
			name := sub.(*hir.SymbolTarget).Name
			names[i] = name
			if !c.declared[name] {
				anyFresh = true
			}
		}

		if anyFresh {
			pattern := "("
			for i, name := range names {
				if i > 0 {
					pattern += ", "
				}
				if mut.IsMutable(name) {
					pattern += "mut "
				}
				pattern += name
				c.declared[name] = true
			}
			pattern += ")"

			return []rustast.Stmt{&rustast.LetStmt{Pattern: pattern, Value: rhs}}, nil
		}

		// Every name already bound: destructuring assignment.
		place := &rustast.Raw{Text: "(" + joinNames(names) + ")"}

		return []rustast.Stmt{&rustast.AssignStmt{Place: place, Value: rhs}}, nil
	}

	// Mixed targets: evaluate once into a temporary, then store each field.
	temp := c.freshTemp("_swap_temp")
	stmts := []rustast.Stmt{&rustast.LetStmt{Name: temp, Value: rhs}}

	for i, sub := range target.Targets {
		field := &rustast.Field{Recv: &rustast.Path{Name: temp}, Name: fmt.Sprintf("%d", i)}

		switch tt := sub.(type) {
		case *hir.SymbolTarget:
			if c.declared[tt.Name] {
				stmts = append(stmts, &rustast.AssignStmt{Place: &rustast.Path{Name: tt.Name}, Value: field})
			} else {
				c.declared[tt.Name] = true
				stmts = append(stmts, &rustast.LetStmt{Name: tt.Name, Mut: mut.IsMutable(tt.Name), Value: field})
			}
		case *hir.IndexTarget:
			sub, err := c.indexPlace(tt)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, &rustast.AssignStmt{Place: sub, Value: field})
		case *hir.AttributeTarget:
			base, err := c.convertExpr(tt.Value)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, &rustast.AssignStmt{Place: &rustast.Field{Recv: base, Name: tt.Attr}, Value: field})
		default:
			return nil, errors.Errorf("unsupported tuple assignment leaf %T", sub)
		}
	}

	return stmts, nil
}

// convertIndexAssign lowers subscript assignment. Dict bases build a
// get_mut chain ending in insert; list and array bases use direct indexed
// stores.
func (c *Converter) convertIndexAssign(target *hir.IndexTarget, value hir.Expr) ([]rustast.Stmt, error) {
	rhs, err := c.convertExpr(value)
	if err != nil {
		return nil, err
	}

	if c.isDictBase(target.Base) {
		chain, err := c.dictInsertChain(target, rhs)
		if err != nil {
			return nil, err
		}
		return []rustast.Stmt{&rustast.ExprStmt{E: chain}}, nil
	}

	place, err := c.indexPlace(target)
	if err != nil {
		return nil, err
	}

	return []rustast.Stmt{&rustast.AssignStmt{Place: place, Value: rhs}}, nil
}

// indexPlace renders a list/array subscript as an assignable place.
func (c *Converter) indexPlace(target *hir.IndexTarget) (rustast.Expr, error) {
	base, err := c.convertExpr(target.Base)
	if err != nil {
		return nil, err
	}

	index, err := c.indexValue(target.Index)
	if err != nil {
		return nil, err
	}

	return &rustast.Index{Base: base, Index: index}, nil
}

// dictInsertChain builds base.get_mut(&k1).expect(...)...insert(kN, v) for a
// possibly nested dict subscript target.
func (c *Converter) dictInsertChain(target *hir.IndexTarget, rhs rustast.Expr) (rustast.Expr, error) {
	// Collect the key path from outermost base to the final key.
	var keys []hir.Expr

	base := target.Base
	for {
		idx, ok := base.(*hir.IndexExpr)
		if !ok {
			break
		}
		keys = append([]hir.Expr{idx.Index}, keys...)
		base = idx.Base
	}

	recv, err := c.convertExpr(base)
	if err != nil {
		return nil, err
	}

	for _, k := range keys {
		key, err := c.dictLookupKey(k)
		if err != nil {
			return nil, err
		}
		recv = &rustast.MethodCall{
			Recv: &rustast.MethodCall{Recv: recv, Method: "get_mut", Args: []rustast.Expr{key}},
			Method: "expect",
			Args:   []rustast.Expr{&rustast.Lit{Text: `"key not found"`}},
		}
	}

	finalKey, err := c.dictInsertKey(target.Index)
	if err != nil {
		return nil, err
	}

	return &rustast.MethodCall{Recv: recv, Method: "insert", Args: []rustast.Expr{finalKey, rhs}}, nil
}

// dictLookupKey renders a key for get/get_mut: string literals pass as &str
// slices, everything else by reference.
func (c *Converter) dictLookupKey(k hir.Expr) (rustast.Expr, error) {
	if lit, ok := stringLiteral(k); ok {
		return &rustast.Lit{Text: fmt.Sprintf("%q", lit)}, nil
	}

	e, err := c.convertExpr(k)
	if err != nil {
		return nil, err
	}

	return &rustast.Ref{E: e}, nil
}

// dictInsertKey renders a key for insert: owned, so string literals take a
// to_string call.
func (c *Converter) dictInsertKey(k hir.Expr) (rustast.Expr, error) {
	if lit, ok := stringLiteral(k); ok {
		return &rustast.MethodCall{
			Recv:   &rustast.Lit{Text: fmt.Sprintf("%q", lit)},
			Method: "to_string",
		}, nil
	}

	return c.convertExpr(k)
}

func (c *Converter) convertFor(st *hir.ForStmt, mut *mutability.FunctionResult) ([]rustast.Stmt, error) {
	iter, err := c.convertExpr(st.Iter)
	if err != nil {
		return nil, err
	}

	names := hir.TargetSymbols(st.Target)
	pattern := ""

	switch len(names) {
	case 0:
		pattern = "_"
	case 1:
		pattern = names[0]
		c.declared[names[0]] = true
		c.localTypes[names[0]] = c.iterElemType(st.Iter)
	default:
		pattern = "(" + joinNames(names) + ")"
		for _, n := range names {
			c.declared[n] = true
		}
	}

	// The body is re-analyzed for mutability within its own scope: loop
	// variables mutated inside the body carry pattern-level mut.
	if len(names) == 1 && mut.IsMutable(names[0]) {
		pattern = "mut " + pattern
	}

	body, err := c.convertBody(st.Body, mut)
	if err != nil {
		return nil, err
	}

	return []rustast.Stmt{&rustast.ForStmt{Pattern: pattern, Iter: iter, Body: body}}, nil
}

// convertWith lowers a context-managed block to a scoped block whose first
// statement binds the resource; dropping at scope end is the Rust analogue
// of __exit__.
func (c *Converter) convertWith(st *hir.WithStmt, mut *mutability.FunctionResult) ([]rustast.Stmt, error) {
	var inner []rustast.Stmt

	ctx, err := c.convertExpr(st.Context)
	if err != nil {
		return nil, err
	}

	if st.Target != "" {
		c.declared[st.Target] = true
		inner = append(inner, &rustast.LetStmt{
			Name:  st.Target,
			Mut:   mut.IsMutable(st.Target),
			Value: ctx,
		})
	} else {
		inner = append(inner, &rustast.LetStmt{Name: "_guard", Value: ctx})
	}

	body, err := c.convertBody(st.Body, mut)
	if err != nil {
		return nil, err
	}

	inner = append(inner, body...)

	return []rustast.Stmt{&rustast.BlockStmt{Body: inner}}, nil
}

// convertTry lowers try/except/else/finally to a closure returning Result,
// matched immediately; the finally block trails the match unconditionally.
func (c *Converter) convertTry(st *hir.TryStmt, mut *mutability.FunctionResult) ([]rustast.Stmt, error) {
	prevCanFail := c.canFail
	prevResultCtx := c.resultCtx
	c.canFail = false
	c.resultCtx = true

	body, err := c.convertBody(st.Body, mut)

	c.canFail = prevCanFail
	c.resultCtx = prevResultCtx

	if err != nil {
		return nil, err
	}

	body = append(body, &rustast.ExprStmt{E: &rustast.Raw{Text: "Ok(())"}, Tail: true})

	temp := c.freshTemp("_try_result")

	// The closure-call shape `(|| { ... })()` does not fit the Call node;
	// build it as raw text around the rendered block.
	block := rustast.RenderExpr(&rustast.Block{Stmts: body})
	stmts := []rustast.Stmt{&rustast.LetStmt{
		Name:  temp,
		Type:  &rustast.ResultT{Ok: rustast.Unit(), Err: &rustast.Named{Name: "String"}},
		Value: &rustast.Raw{Text: "(|| " + block + ")()"},
	}}

	okBody, err := c.convertBody(st.Orelse, mut)
	if err != nil {
		return nil, err
	}

	var errBody []rustast.Stmt

	if len(st.Handlers) > 0 {
		h := st.Handlers[0]
		if h.Name != "" {
			c.declared[h.Name] = true
			errBody = append(errBody, &rustast.LetStmt{Name: h.Name, Value: &rustast.Path{Name: "_err"}})
		}
		hb, err := c.convertBody(h.Body, mut)
		if err != nil {
			return nil, err
		}
		errBody = append(errBody, hb...)

		for _, extra := range st.Handlers[1:] {
			c.Diags.Warnf(diagnostics.LoweringIncomplete, c.fnName,
				"additional except handler for %s folded into the first arm", extra.ExcType)
		}
	}

	stmts = append(stmts, &rustast.MatchStmt{
		Subject: &rustast.Path{Name: temp},
		Arms: []rustast.MatchArm{
			{Pattern: "Ok(())", Body: okBody},
			{Pattern: "Err(_err)", Body: errBody},
		},
	})

	if len(st.Finally) > 0 {
		fin, err := c.convertBody(st.Finally, mut)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, &rustast.BlockStmt{Body: fin})
	}

	return stmts, nil
}

func (c *Converter) convertRaise(st *hir.RaiseStmt) ([]rustast.Stmt, error) {
	if st.Exc == nil {
		return []rustast.Stmt{&rustast.ExprStmt{E: &rustast.MacroCall{
			Name: "panic",
			Args: []rustast.Expr{&rustast.Lit{Text: `"re-raise"`}},
		}}}, nil
	}

	msg, err := c.exceptionMessage(st.Exc)
	if err != nil {
		return nil, err
	}

	if c.resultCtx {
		return []rustast.Stmt{&rustast.ReturnStmt{
			Value: &rustast.Call{Func: "Err", Args: []rustast.Expr{msg}},
		}}, nil
	}

	return []rustast.Stmt{&rustast.ExprStmt{E: &rustast.MacroCall{
		Name: "panic",
		Args: []rustast.Expr{&rustast.Lit{Text: `"{}"`}, msg},
	}}}, nil
}

// exceptionMessage extracts a displayable message from a raised expression:
// ValueError("msg") yields the formatted message string.
func (c *Converter) exceptionMessage(exc hir.Expr) (rustast.Expr, error) {
	if call, ok := exc.(*hir.CallExpr); ok && len(call.Args) >= 1 {
		arg, err := c.convertExpr(call.Args[0])
		if err != nil {
			return nil, err
		}
		return &rustast.MacroCall{
			Name: "format",
			Args: []rustast.Expr{&rustast.Lit{Text: fmt.Sprintf("%q", call.Func+": {}")}, arg},
		}, nil
	}

	e, err := c.convertExpr(exc)
	if err != nil {
		return nil, err
	}

	return &rustast.MacroCall{
		Name: "format",
		Args: []rustast.Expr{&rustast.Lit{Text: `"{}"`}, e},
	}, nil
}

// convertTopLevel wraps module-level statements in fn main.
func (c *Converter) convertTopLevel(stmts []hir.Stmt) *rustast.FnItem {
	c.fnName = "main"
	c.fnKey = "main"
	c.canFail = false
	c.resultCtx = false
	c.paramTypes = make(map[string]hir.Type)
	c.localTypes = make(map[string]hir.Type)
	c.declared = make(map[string]bool)

	mut := c.mutResult.ForFunction("main")

	body, err := c.convertBody(stmts, mut)
	if err != nil {
		c.Diags.Errorf(diagnostics.DispatchArity, "main", "%v; top-level statements skipped", err)
		return nil
	}

	return &rustast.FnItem{Name: "main", Body: body}
}

func (c *Converter) freshTemp(prefix string) string {
	c.tempCount++
	if c.tempCount == 1 {
		return prefix
	}

	return fmt.Sprintf("%s_%d", prefix, c.tempCount)
}

// noteLocalType records the best-known type of a local binding for the
// inference heuristics.
func (c *Converter) noteLocalType(name string, st *hir.AssignStmt) {
	if st.Annotation != nil {
		c.localTypes[name] = st.Annotation
		return
	}

	if t := c.exprType(st.Value); t != nil {
		if _, unknown := t.(*hir.UnknownType); !unknown {
			c.localTypes[name] = t
		}
	}
}

func joinNames(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += n
	}

	return out
}

func stringLiteral(e hir.Expr) (string, bool) {
	le, ok := e.(*hir.LiteralExpr)
	if !ok {
		return "", false
	}

	sl, ok := le.Value.(*hir.StringLit)
	if !ok {
		return "", false
	}

	return sl.Value, true
}

func intLiteralValue(e hir.Expr) (int64, bool) {
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
