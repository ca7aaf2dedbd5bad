// Expression lowering: dispatch on HIR expression kind.

package lowering

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/depyler-lang/depyler/internal/diagnostics"
	"github.com/depyler-lang/depyler/internal/hir"
	"github.com/depyler-lang/depyler/internal/rustast"
)

func (c *Converter) convertExpr(e hir.Expr) (rustast.Expr, error) {
	if e == nil {
		return nil, errors.New("nil expression")
	}

	switch ee := e.(type) {
	case *hir.LiteralExpr:
		return c.convertLiteral(ee.Value), nil
	case *hir.VarExpr:
		if ee.Name == "cls" && c.isClassMethod {
			return &rustast.Path{Name: "Self"}, nil
		}
		return &rustast.Path{Name: ee.Name}, nil
	case *hir.BinaryExpr:
		return c.convertBinary(ee)
	case *hir.UnaryExpr:
		return c.convertUnary(ee)
	case *hir.CallExpr:
		return c.convertCall(ee)
	case *hir.MethodCallExpr:
		return c.convertMethodCall(ee)
	case *hir.DynamicCallExpr:
		callee, err := c.convertExpr(ee.Callee)
		if err != nil {
			return nil, err
		}
		args, err := c.convertExprs(ee.Args)
		if err != nil {
			return nil, err
		}
		return &rustast.Raw{Text: rustast.RenderExpr(callee) + "(" + renderAll(args) + ")"}, nil
	case *hir.IndexExpr:
		return c.convertIndex(ee)
	case *hir.SliceExpr:
		return c.convertSlice(ee)
	case *hir.ListExpr:
		elems, err := c.convertExprs(ee.Elems)
		if err != nil {
			return nil, err
		}
		return &rustast.VecLit{Elems: elems}, nil
	case *hir.DictExpr:
		return c.convertDictLit(ee)
	case *hir.TupleExpr:
		elems, err := c.convertExprs(ee.Elems)
		if err != nil {
			return nil, err
		}
		return &rustast.Tuple{Elems: elems}, nil
	case *hir.SetExpr:
		return c.convertSetLit(ee.Elems)
	case *hir.FrozenSetExpr:
		return c.convertSetLit(ee.Elems)
	case *hir.ListCompExpr:
		return c.convertComprehension(ee.Element, nil, ee.Generators, "Vec<_>")
	case *hir.SetCompExpr:
		return c.convertComprehension(ee.Element, nil, ee.Generators, "HashSet<_>")
	case *hir.DictCompExpr:
		return c.convertComprehension(ee.Key, ee.Value, ee.Generators, "HashMap<_, _>")
	case *hir.GeneratorExpExpr:
		return c.convertComprehension(ee.Element, nil, ee.Generators, "")
	case *hir.LambdaExpr:
		body, err := c.convertExpr(ee.Body)
		if err != nil {
			return nil, err
		}
		return &rustast.Closure{Params: ee.Params, Body: body}, nil
	case *hir.IfExpr:
		cond, err := c.convertCondition(ee.Test)
		if err != nil {
			return nil, err
		}
		then, err := c.convertExpr(ee.Body)
		if err != nil {
			return nil, err
		}
		orelse, err := c.convertExpr(ee.Orelse)
		if err != nil {
			return nil, err
		}
		return &rustast.IfElse{Cond: cond, Then: then, Else: orelse}, nil
	case *hir.AttributeExpr:
		return c.convertAttribute(ee)
	case *hir.BorrowExpr:
		inner, err := c.convertExpr(ee.Expr)
		if err != nil {
			return nil, err
		}
		return &rustast.Ref{Mut: ee.Mutable, E: inner}, nil
	case *hir.AwaitExpr:
		inner, err := c.convertExpr(ee.Value)
		if err != nil {
			return nil, err
		}
		return &rustast.Await{E: inner}, nil
	case *hir.FStringExpr:
		return c.convertFString(ee)
	case *hir.SortByKeyExpr:
		return c.convertSortByKey(ee)
	default:
		c.Diags.Warnf(diagnostics.LoweringIncomplete, c.fnName, "expression %T has no dispatch", e)
		return &rustast.Raw{Text: fmt.Sprintf("/* TODO: %T */ Default::default()", e)}, nil
	}
}

func (c *Converter) convertExprs(exprs []hir.Expr) ([]rustast.Expr, error) {
	out := make([]rustast.Expr, 0, len(exprs))
	for _, e := range exprs {
		r, err := c.convertExpr(e)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}

	return out, nil
}

func (c *Converter) convertLiteral(lit hir.Literal) rustast.Expr {
	switch l := lit.(type) {
	case *hir.IntLit:
		return &rustast.Lit{Text: fmt.Sprintf("%d", l.Value)}
	case *hir.FloatLit:
		text := fmt.Sprintf("%g", l.Value)
		if !strings.ContainsAny(text, ".eE") {
			text += ".0"
		}
		return &rustast.Lit{Text: text}
	case *hir.StringLit:
		return &rustast.MethodCall{Recv: &rustast.Lit{Text: fmt.Sprintf("%q", l.Value)}, Method: "to_string"}
	case *hir.BoolLit:
		if l.Value {
			return &rustast.Lit{Text: "true"}
		}
		return &rustast.Lit{Text: "false"}
	case *hir.NoneLit:
		return &rustast.Lit{Text: "None"}
	default:
		return &rustast.Lit{Text: "()"}
	}
}

// ====== Binary operators ======

func (c *Converter) convertBinary(e *hir.BinaryExpr) (rustast.Expr, error) {
	switch e.Op {
	case hir.OpAnd, hir.OpOr:
		l, err := c.convertCondition(e.Left)
		if err != nil {
			return nil, err
		}
		r, err := c.convertCondition(e.Right)
		if err != nil {
			return nil, err
		}
		op := "&&"
		if e.Op == hir.OpOr {
			op = "||"
		}
		return &rustast.Binary{Op: op, L: l, R: r}, nil
	case hir.OpIn, hir.OpNotIn:
		return c.convertContains(e)
	}

	// Set operators: both operands sets.
	if c.isSetTyped(e.Left) && c.isSetTyped(e.Right) {
		if out, ok, err := c.convertSetOp(e); ok || err != nil {
			return out, err
		}
	}

	leftT := c.exprType(e.Left)
	rightT := c.exprType(e.Right)

	// String concatenation and repetition.
	if isStringType(leftT) {
		switch e.Op {
		case hir.OpAdd:
			l, err := c.convertExpr(e.Left)
			if err != nil {
				return nil, err
			}
			r, err := c.convertExpr(e.Right)
			if err != nil {
				return nil, err
			}
			return &rustast.MacroCall{Name: "format", Args: []rustast.Expr{&rustast.Lit{Text: `"{}{}"`}, l, r}}, nil
		case hir.OpMul:
			l, err := c.convertExpr(e.Left)
			if err != nil {
				return nil, err
			}
			r, err := c.convertExpr(e.Right)
			if err != nil {
				return nil, err
			}
			return &rustast.MethodCall{Recv: l, Method: "repeat", Args: []rustast.Expr{&rustast.Cast{E: r, Ty: "usize"}}}, nil
		}
	}

	// List concatenation.
	if isListType(leftT) && e.Op == hir.OpAdd {
		l, err := c.convertExpr(e.Left)
		if err != nil {
			return nil, err
		}
		r, err := c.convertExpr(e.Right)
		if err != nil {
			return nil, err
		}
		return &rustast.MethodCall{
			Recv: &rustast.ArrayLit{Elems: []rustast.Expr{
				&rustast.MethodCall{Recv: l, Method: "clone"},
				&rustast.MethodCall{Recv: r, Method: "clone"},
			}},
			Method: "concat",
		}, nil
	}

	mixed := isIntType(leftT) != isIntType(rightT) && hir.IsNumeric(leftT) && hir.IsNumeric(rightT)
	bothFloat := isFloatType(leftT) || isFloatType(rightT)

	l, err := c.convertNumericOperand(e.Left, mixed && isIntType(leftT))
	if err != nil {
		return nil, err
	}

	r, err := c.convertNumericOperand(e.Right, mixed && isIntType(rightT))
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case hir.OpAdd:
		return &rustast.Binary{Op: "+", L: l, R: r}, nil
	case hir.OpSub:
		return &rustast.Binary{Op: "-", L: l, R: r}, nil
	case hir.OpMul:
		return &rustast.Binary{Op: "*", L: l, R: r}, nil
	case hir.OpDiv:
		if !bothFloat && isIntType(leftT) && isIntType(rightT) {
			// Python true division always yields a float.
			return &rustast.Binary{
				Op: "/",
				L:  &rustast.Cast{E: l, Ty: "f64"},
				R:  &rustast.Cast{E: r, Ty: "f64"},
			}, nil
		}
		return &rustast.Binary{Op: "/", L: l, R: r}, nil
	case hir.OpFloorDiv:
		if bothFloat {
			return &rustast.MethodCall{
				Recv:   &rustast.Binary{Op: "/", L: l, R: r},
				Method: "floor",
			}, nil
		}
		return &rustast.Binary{Op: "/", L: l, R: r}, nil
	case hir.OpMod:
		// Remainder, not Euclidean.
		return &rustast.Binary{Op: "%", L: l, R: r}, nil
	case hir.OpPow:
		if bothFloat {
			return &rustast.MethodCall{Recv: l, Method: "powf", Args: []rustast.Expr{r}}, nil
		}
		return &rustast.MethodCall{Recv: l, Method: "pow", Args: []rustast.Expr{&rustast.Cast{E: r, Ty: "u32"}}}, nil
	case hir.OpEq:
		return &rustast.Binary{Op: "==", L: l, R: r}, nil
	case hir.OpNotEq:
		return &rustast.Binary{Op: "!=", L: l, R: r}, nil
	case hir.OpLt:
		return &rustast.Binary{Op: "<", L: l, R: r}, nil
	case hir.OpLtEq:
		return &rustast.Binary{Op: "<=", L: l, R: r}, nil
	case hir.OpGt:
		return &rustast.Binary{Op: ">", L: l, R: r}, nil
	case hir.OpGtEq:
		return &rustast.Binary{Op: ">=", L: l, R: r}, nil
	case hir.OpBitAnd:
		return &rustast.Binary{Op: "&", L: l, R: r}, nil
	case hir.OpBitOr:
		return &rustast.Binary{Op: "|", L: l, R: r}, nil
	case hir.OpBitXor:
		return &rustast.Binary{Op: "^", L: l, R: r}, nil
	case hir.OpLShift:
		return &rustast.Binary{Op: "<<", L: l, R: r}, nil
	case hir.OpRShift:
		return &rustast.Binary{Op: ">>", L: l, R: r}, nil
	default:
		return nil, errors.Errorf("binary operator %s has no mapping", e.Op)
	}
}

// convertNumericOperand lowers one side of an arithmetic expression,
// upgrading the integer side of a mixed int+float operation.
func (c *Converter) convertNumericOperand(e hir.Expr, upgrade bool) (rustast.Expr, error) {
	if upgrade {
		// Integer literals render directly as float literals.
		if n, ok := intLiteralValue(e); ok {
			return &rustast.Lit{Text: fmt.Sprintf("%d.0_f64", n)}, nil
		}

		inner, err := c.convertExpr(e)
		if err != nil {
			return nil, err
		}

		return &rustast.Cast{E: inner, Ty: "f64"}, nil
	}

	return c.convertExpr(e)
}

// convertContains lowers `x in coll` by container kind.
func (c *Converter) convertContains(e *hir.BinaryExpr) (rustast.Expr, error) {
	item, err := c.convertExpr(e.Left)
	if err != nil {
		return nil, err
	}

	coll, err := c.convertExpr(e.Right)
	if err != nil {
		return nil, err
	}

	collT := c.exprType(e.Right)

	var out rustast.Expr

	switch collT.(type) {
	case *hir.DictType:
		out = &rustast.MethodCall{Recv: coll, Method: "contains_key", Args: []rustast.Expr{&rustast.Ref{E: item}}}
	case *hir.StringType:
		if lit, ok := stringLiteral(e.Left); ok {
			item = &rustast.Lit{Text: fmt.Sprintf("%q", lit)}
		} else {
			item = &rustast.Ref{E: item}
		}
		out = &rustast.MethodCall{Recv: coll, Method: "contains", Args: []rustast.Expr{item}}
	default:
		out = &rustast.MethodCall{Recv: coll, Method: "contains", Args: []rustast.Expr{&rustast.Ref{E: item}}}
	}

	if e.Op == hir.OpNotIn {
		return &rustast.Unary{Op: "!", Operand: out}, nil
	}

	return out, nil
}

// convertSetOp maps -, |, &, ^ on two sets to the named set operations, each
// followed by .cloned().collect().
func (c *Converter) convertSetOp(e *hir.BinaryExpr) (rustast.Expr, bool, error) {
	var method string

	switch e.Op {
	case hir.OpSub:
		method = "difference"
	case hir.OpBitOr:
		method = "union"
	case hir.OpBitAnd:
		method = "intersection"
	case hir.OpBitXor:
		method = "symmetric_difference"
	default:
		return nil, false, nil
	}

	l, err := c.convertExpr(e.Left)
	if err != nil {
		return nil, true, err
	}

	r, err := c.convertExpr(e.Right)
	if err != nil {
		return nil, true, err
	}

	return &rustast.MethodCall{
		Recv: &rustast.MethodCall{
			Recv: &rustast.MethodCall{Recv: l, Method: method, Args: []rustast.Expr{&rustast.Ref{E: r}}},
			Method: "cloned",
		},
		Method:    "collect",
		Turbofish: "::<HashSet<_>>",
	}, true, nil
}

func (c *Converter) convertUnary(e *hir.UnaryExpr) (rustast.Expr, error) {
	switch e.Op {
	case hir.OpNot:
		inner, err := c.convertCondition(e.Operand)
		if err != nil {
			return nil, err
		}
		return &rustast.Unary{Op: "!", Operand: inner}, nil
	case hir.OpNeg:
		inner, err := c.convertExpr(e.Operand)
		if err != nil {
			return nil, err
		}
		return &rustast.Unary{Op: "-", Operand: inner}, nil
	case hir.OpPos:
		return c.convertExpr(e.Operand)
	case hir.OpBitNot:
		inner, err := c.convertExpr(e.Operand)
		if err != nil {
			return nil, err
		}
		return &rustast.Unary{Op: "!", Operand: inner}, nil
	default:
		return nil, errors.Errorf("unary operator %s has no mapping", e.Op)
	}
}

// ====== Index / slice ======

// convertIndex lowers a subscript in value context.
func (c *Converter) convertIndex(e *hir.IndexExpr) (rustast.Expr, error) {
	baseT := c.exprType(e.Base)

	base, err := c.convertExpr(e.Base)
	if err != nil {
		return nil, err
	}

	switch bt := baseT.(type) {
	case *hir.DictType:
		key, err := c.dictLookupKey(e.Index)
		if err != nil {
			return nil, err
		}
		out := rustast.Expr(&rustast.MethodCall{
			Recv: &rustast.MethodCall{Recv: base, Method: "get", Args: []rustast.Expr{key}},
			Method: "expect",
			Args:   []rustast.Expr{&rustast.Lit{Text: `"key not found"`}},
		})
		if !rustast.IsCopy(c.Mapper.MapType(bt.Value)) {
			out = &rustast.MethodCall{Recv: out, Method: "clone"}
		} else {
			out = &rustast.Unary{Op: "*", Operand: out}
		}
		return out, nil
	case *hir.StringType:
		idx, err := c.indexValue(e.Index)
		if err != nil {
			return nil, err
		}
		return &rustast.MethodCall{
			Recv: &rustast.MethodCall{
				Recv: &rustast.MethodCall{Recv: base, Method: "chars"},
				Method: "nth",
				Args:   []rustast.Expr{idx},
			},
			Method: "map",
			Args: []rustast.Expr{&rustast.Closure{
				Params: []string{"ch"},
				Body:   &rustast.MethodCall{Recv: &rustast.Path{Name: "ch"}, Method: "to_string"},
			}},
		}, nil
	case *hir.TupleType:
		if n, ok := intLiteralValue(e.Index); ok {
			return &rustast.Field{Recv: base, Name: fmt.Sprintf("%d", n)}, nil
		}
		return nil, errors.New("tuple index must be a constant")
	default:
		idx, err := c.indexValue(e.Index)
		if err != nil {
			return nil, err
		}
		return &rustast.Index{Base: base, Index: idx}, nil
	}
}

// indexValue renders a subscript index as usize.
func (c *Converter) indexValue(e hir.Expr) (rustast.Expr, error) {
	if n, ok := intLiteralValue(e); ok && n >= 0 {
		return &rustast.Lit{Text: fmt.Sprintf("%d", n)}, nil
	}

	inner, err := c.convertExpr(e)
	if err != nil {
		return nil, err
	}

	return &rustast.Cast{E: inner, Ty: "usize"}, nil
}

// convertSlice lowers base[start:stop:step].
func (c *Converter) convertSlice(e *hir.SliceExpr) (rustast.Expr, error) {
	base, err := c.convertExpr(e.Base)
	if err != nil {
		return nil, err
	}

	baseT := c.exprType(e.Base)

	if isStringType(baseT) {
		return c.convertStringSlice(e, base)
	}

	// Stepped slice: iterator chain.
	if e.Step != nil {
		step, err := c.convertExpr(e.Step)
		if err != nil {
			return nil, err
		}

		recv := base
		if e.Start != nil || e.Stop != nil {
			recv, err = c.rangedSlice(e, base)
			if err != nil {
				return nil, err
			}
			recv = &rustast.MethodCall{Recv: recv, Method: "to_vec"}
		}

		return &rustast.MethodCall{
			Recv: &rustast.MethodCall{
				Recv: &rustast.MethodCall{
					Recv: &rustast.MethodCall{Recv: recv, Method: "iter"},
					Method: "step_by",
					Args:   []rustast.Expr{&rustast.Cast{E: step, Ty: "usize"}},
				},
				Method: "cloned",
			},
			Method:    "collect",
			Turbofish: "::<Vec<_>>",
		}, nil
	}

	sliced, err := c.rangedSlice(e, base)
	if err != nil {
		return nil, err
	}

	return &rustast.MethodCall{Recv: sliced, Method: "to_vec"}, nil
}

// rangedSlice renders base[s..e] with open bounds handled.
func (c *Converter) rangedSlice(e *hir.SliceExpr, base rustast.Expr) (rustast.Expr, error) {
	start := "0"
	if e.Start != nil {
		s, err := c.indexValue(e.Start)
		if err != nil {
			return nil, err
		}
		start = rustast.RenderExpr(s)
	}

	stop := rustast.RenderExpr(base) + ".len()"
	if e.Stop != nil {
		s, err := c.indexValue(e.Stop)
		if err != nil {
			return nil, err
		}
		stop = rustast.RenderExpr(s)
	}

	return &rustast.Raw{Text: fmt.Sprintf("%s[%s..%s]", rustast.RenderExpr(base), start, stop)}, nil
}

// convertStringSlice goes through a negative-index-aware helper on chars.
func (c *Converter) convertStringSlice(e *hir.SliceExpr, base rustast.Expr) (rustast.Expr, error) {
	render := func(bound hir.Expr, def string) (string, error) {
		if bound == nil {
			return def, nil
		}
		b, err := c.convertExpr(bound)
		if err != nil {
			return "", err
		}
		return rustast.RenderExpr(b), nil
	}

	start, err := render(e.Start, "0")
	if err != nil {
		return nil, err
	}

	baseText := rustast.RenderExpr(base)

	stop, err := render(e.Stop, baseText+".chars().count() as i32")
	if err != nil {
		return nil, err
	}

	// Negative bounds wrap around the char count before clamping.
	text := fmt.Sprintf(
		"{ let _chars: Vec<char> = %s.chars().collect(); let _n = _chars.len() as i32; "+
			"let _s = if (%s) < 0 { _n + (%s) } else { %s }.clamp(0, _n); "+
			"let _e = if (%s) < 0 { _n + (%s) } else { %s }.clamp(0, _n); "+
			"if _s < _e { _chars[_s as usize.._e as usize].iter().collect::<String>() } else { String::new() } }",
		baseText, start, start, start, stop, stop, stop)

	return &rustast.Raw{Text: text}, nil
}

// ====== Collection literals ======

func (c *Converter) convertDictLit(e *hir.DictExpr) (rustast.Expr, error) {
	pairs := make([]rustast.Expr, 0, len(e.Items))

	for _, it := range e.Items {
		k, err := c.convertExpr(it.Key)
		if err != nil {
			return nil, err
		}
		v, err := c.convertExpr(it.Value)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, &rustast.Tuple{Elems: []rustast.Expr{k, v}})
	}

	return &rustast.Call{Func: "HashMap::from", Args: []rustast.Expr{&rustast.ArrayLit{Elems: pairs}}}, nil
}

func (c *Converter) convertSetLit(elems []hir.Expr) (rustast.Expr, error) {
	items, err := c.convertExprs(elems)
	if err != nil {
		return nil, err
	}

	return &rustast.Call{Func: "HashSet::from", Args: []rustast.Expr{&rustast.ArrayLit{Elems: items}}}, nil
}

// ====== Comprehensions ======

// convertComprehension lowers list/set/dict comprehensions and generator
// expressions into iterator chains. collectTy selects the terminal collect;
// empty means no terminal collect (generator expression).
func (c *Converter) convertComprehension(element, value hir.Expr, gens []hir.Comprehension, collectTy string) (rustast.Expr, error) {
	if len(gens) == 0 {
		return nil, errors.New("comprehension without generators")
	}

	if len(gens) > 2 {
		c.Diags.Warnf(diagnostics.LoweringIncomplete, c.fnName, "comprehension with %d generators lowered pairwise", len(gens))
	}

	chain, param, err := c.generatorChain(gens[0])
	if err != nil {
		return nil, err
	}

	// A second generator becomes a flat_map over the first.
	if len(gens) >= 2 {
		innerChain, innerParam, err := c.generatorChain(gens[1])
		if err != nil {
			return nil, err
		}

		chain = &rustast.MethodCall{
			Recv:   chain,
			Method: "flat_map",
			Args: []rustast.Expr{&rustast.Closure{
				Params: []string{param},
				Body:   innerChain,
				Move:   true,
			}},
		}
		param = innerParam
	}

	var mapped rustast.Expr

	if value != nil {
		k, err := c.convertExpr(element)
		if err != nil {
			return nil, err
		}
		v, err := c.convertExpr(value)
		if err != nil {
			return nil, err
		}
		mapped = &rustast.Tuple{Elems: []rustast.Expr{k, v}}
	} else {
		var err error
		mapped, err = c.convertExpr(element)
		if err != nil {
			return nil, err
		}
	}

	out := rustast.Expr(&rustast.MethodCall{
		Recv:   chain,
		Method: "map",
		Args:   []rustast.Expr{&rustast.Closure{Params: []string{param}, Body: mapped}},
	})

	if collectTy != "" {
		out = &rustast.MethodCall{Recv: out, Method: "collect", Turbofish: "::<" + collectTy + ">"}
	}

	return out, nil
}

// generatorChain produces the iterator chain for one generator clause:
// source iterator plus filters. Returns the chain and the closure parameter
// name bound by the clause.
func (c *Converter) generatorChain(g hir.Comprehension) (rustast.Expr, string, error) {
	iter, err := c.iterSource(g.Iter)
	if err != nil {
		return nil, "", err
	}

	param := "_item"
	if len(g.Targets) == 1 {
		param = g.Targets[0]
		c.declared[param] = true
		c.localTypes[param] = c.iterElemType(g.Iter)
	} else if len(g.Targets) > 1 {
		param = "(" + joinNames(g.Targets) + ")"
		for _, t := range g.Targets {
			c.declared[t] = true
		}
	}

	for _, cond := range g.Conditions {
		fc, err := c.convertCondition(cond)
		if err != nil {
			return nil, "", err
		}
		iter = &rustast.MethodCall{
			Recv:   iter,
			Method: "filter",
			Args:   []rustast.Expr{&rustast.Closure{Params: []string{"&" + param}, Body: fc}},
		}
	}

	return iter, param, nil
}

// iterSource produces an iterator over the given HIR iterable: ranges stay
// as-is, collections get .iter().cloned().
func (c *Converter) iterSource(e hir.Expr) (rustast.Expr, error) {
	if call, ok := e.(*hir.CallExpr); ok && call.Func == "range" {
		return c.convertRange(call)
	}

	base, err := c.convertExpr(e)
	if err != nil {
		return nil, err
	}

	return &rustast.MethodCall{
		Recv:   &rustast.MethodCall{Recv: base, Method: "iter"},
		Method: "cloned",
	}, nil
}

// ====== Attribute, f-string, sort-by-key ======

// moduleAttributes maps module-level attribute reads to Rust paths.
var moduleAttributes = map[string]string{
	"math.pi":  "std::f64::consts::PI",
	"math.e":   "std::f64::consts::E",
	"math.tau": "std::f64::consts::TAU",
	"math.inf": "f64::INFINITY",
	"math.nan": "f64::NAN",
	"sys.maxsize": "i64::MAX",

	"string.ascii_lowercase": `"abcdefghijklmnopqrstuvwxyz"`,
	"string.ascii_uppercase": `"ABCDEFGHIJKLMNOPQRSTUVWXYZ"`,
	"string.digits":          `"0123456789"`,
}

func (c *Converter) convertAttribute(e *hir.AttributeExpr) (rustast.Expr, error) {
	if v, ok := e.Value.(*hir.VarExpr); ok {
		if v.Name == "sys" && e.Attr == "argv" {
			return &rustast.Raw{Text: "std::env::args().collect::<Vec<String>>()"}, nil
		}

		if path, ok := moduleAttributes[v.Name+"."+e.Attr]; ok {
			return &rustast.Path{Name: path}, nil
		}

		// Enum member access: Color.RED lowers to Color::RED.
		if cl, ok := c.classes[v.Name]; ok && cl.IsEnum {
			return &rustast.Path{Name: v.Name + "::" + e.Attr}, nil
		}
	}

	// Mutating attribute reads become &mut self method calls (the CSV
	// fieldnames shape).
	if e.Attr == "fieldnames" {
		base, err := c.convertExpr(e.Value)
		if err != nil {
			return nil, err
		}
		return &rustast.MethodCall{
			Recv: &rustast.MethodCall{Recv: base, Method: "headers"},
			Method: "expect",
			Args:   []rustast.Expr{&rustast.Lit{Text: `"failed to read headers"`}},
		}, nil
	}

	base, err := c.convertExpr(e.Value)
	if err != nil {
		return nil, err
	}

	return &rustast.Field{Recv: base, Name: e.Attr}, nil
}

func (c *Converter) convertFString(e *hir.FStringExpr) (rustast.Expr, error) {
	var template strings.Builder

	var args []rustast.Expr

	for _, p := range e.Parts {
		if p.Expr == nil {
			template.WriteString(escapeBraces(p.Literal))
			continue
		}

		template.WriteString("{}")

		a, err := c.convertExpr(p.Expr)
		if err != nil {
			return nil, err
		}
		args = append(args, a)
	}

	all := append([]rustast.Expr{&rustast.Lit{Text: fmt.Sprintf("%q", template.String())}}, args...)

	return &rustast.MacroCall{Name: "format", Args: all}, nil
}

func escapeBraces(s string) string {
	s = strings.ReplaceAll(s, "{", "{{")

	return strings.ReplaceAll(s, "}", "}}")
}

func (c *Converter) convertSortByKey(e *hir.SortByKeyExpr) (rustast.Expr, error) {
	iterable, err := c.convertExpr(e.Iterable)
	if err != nil {
		return nil, err
	}

	for _, p := range e.KeyParams {
		c.declared[p] = true
	}

	body, err := c.convertExpr(e.KeyBody)
	if err != nil {
		return nil, err
	}

	sortCall := fmt.Sprintf("_sorted.sort_by_key(|%s| %s);", strings.Join(e.KeyParams, ", "), rustast.RenderExpr(body))

	text := fmt.Sprintf("{ let mut _sorted = %s.clone(); %s", rustast.RenderExpr(iterable), sortCall)
	if e.Reverse {
		text += " _sorted.reverse();"
	}
	text += " _sorted }"

	return &rustast.Raw{Text: text}, nil
}

func renderAll(args []rustast.Expr) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = rustast.RenderExpr(a)
	}

	return strings.Join(parts, ", ")
}
