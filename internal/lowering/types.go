// Local type inference used by the lowering dispatchers. This is a
// best-effort propagation over parameter annotations, local bindings, and
// literal shapes; UnknownType is the honest answer when nothing is known.

package lowering

import (
	"strings"

	"github.com/depyler-lang/depyler/internal/hir"
)

func (c *Converter) exprType(e hir.Expr) hir.Type {
	switch ee := e.(type) {
	case *hir.LiteralExpr:
		return literalType(ee.Value)
	case *hir.VarExpr:
		if t, ok := c.localTypes[ee.Name]; ok {
			return t
		}
		if t, ok := c.paramTypes[ee.Name]; ok {
			return t
		}
		return &hir.UnknownType{}
	case *hir.BinaryExpr:
		return c.binaryType(ee)
	case *hir.UnaryExpr:
		if ee.Op == hir.OpNot {
			return &hir.BoolType{}
		}
		return c.exprType(ee.Operand)
	case *hir.CallExpr:
		return c.callType(ee)
	case *hir.MethodCallExpr:
		return c.methodType(ee)
	case *hir.IndexExpr:
		switch bt := c.exprType(ee.Base).(type) {
		case *hir.ListType:
			return bt.Elem
		case *hir.ArrayType:
			return bt.Elem
		case *hir.DictType:
			return bt.Value
		case *hir.StringType:
			return &hir.StringType{}
		case *hir.TupleType:
			if n, ok := intLiteralValue(ee.Index); ok && int(n) < len(bt.Items) {
				return bt.Items[n]
			}
		}
		return &hir.UnknownType{}
	case *hir.SliceExpr:
		return c.exprType(ee.Base)
	case *hir.ListExpr:
		if len(ee.Elems) > 0 {
			return &hir.ListType{Elem: c.exprType(ee.Elems[0])}
		}
		return &hir.ListType{Elem: &hir.UnknownType{}}
	case *hir.DictExpr:
		if len(ee.Items) > 0 {
			return &hir.DictType{Key: c.exprType(ee.Items[0].Key), Value: c.exprType(ee.Items[0].Value)}
		}
		return &hir.DictType{Key: &hir.UnknownType{}, Value: &hir.UnknownType{}}
	case *hir.SetExpr:
		if len(ee.Elems) > 0 {
			return &hir.SetType{Elem: c.exprType(ee.Elems[0])}
		}
		return &hir.SetType{Elem: &hir.UnknownType{}}
	case *hir.FrozenSetExpr:
		if len(ee.Elems) > 0 {
			return &hir.SetType{Elem: c.exprType(ee.Elems[0])}
		}
		return &hir.SetType{Elem: &hir.UnknownType{}}
	case *hir.TupleExpr:
		items := make([]hir.Type, len(ee.Elems))
		for i, el := range ee.Elems {
			items[i] = c.exprType(el)
		}
		return &hir.TupleType{Items: items}
	case *hir.ListCompExpr:
		return &hir.ListType{Elem: &hir.UnknownType{}}
	case *hir.SetCompExpr:
		return &hir.SetType{Elem: &hir.UnknownType{}}
	case *hir.DictCompExpr:
		return &hir.DictType{Key: &hir.UnknownType{}, Value: &hir.UnknownType{}}
	case *hir.IfExpr:
		return c.exprType(ee.Body)
	case *hir.AttributeExpr:
		if t, ok := c.classFieldTypes[ee.Attr]; ok {
			return t
		}
		return &hir.UnknownType{}
	case *hir.FStringExpr:
		return &hir.StringType{}
	case *hir.BorrowExpr:
		return c.exprType(ee.Expr)
	case *hir.SortByKeyExpr:
		return c.exprType(ee.Iterable)
	default:
		return &hir.UnknownType{}
	}
}

func literalType(lit hir.Literal) hir.Type {
	switch lit.(type) {
	case *hir.IntLit:
		return &hir.IntType{}
	case *hir.FloatLit:
		return &hir.FloatType{}
	case *hir.StringLit:
		return &hir.StringType{}
	case *hir.BoolLit:
		return &hir.BoolType{}
	case *hir.NoneLit:
		return &hir.NoneType{}
	default:
		return &hir.UnknownType{}
	}
}

func (c *Converter) binaryType(e *hir.BinaryExpr) hir.Type {
	if e.Op.IsComparison() || e.Op == hir.OpAnd || e.Op == hir.OpOr ||
		e.Op == hir.OpIn || e.Op == hir.OpNotIn {
		return &hir.BoolType{}
	}

	lt := c.exprType(e.Left)
	rt := c.exprType(e.Right)

	if isStringType(lt) {
		return &hir.StringType{}
	}

	if e.Op == hir.OpDiv && isIntType(lt) && isIntType(rt) {
		return &hir.FloatType{}
	}

	if isFloatType(lt) || isFloatType(rt) {
		return &hir.FloatType{}
	}

	if _, ok := lt.(*hir.UnknownType); ok {
		return rt
	}

	return lt
}

// callType covers builtins whose result type is fixed; user functions use
// their declared return type.
func (c *Converter) callType(e *hir.CallExpr) hir.Type {
	switch e.Func {
	case "len", "int", "ord", "abs", "hash":
		if e.Func == "abs" && len(e.Args) == 1 && isFloatType(c.exprType(e.Args[0])) {
			return &hir.FloatType{}
		}
		return &hir.IntType{}
	case "float", "round":
		return &hir.FloatType{}
	case "str", "repr", "chr", "input", "hex", "oct", "bin":
		return &hir.StringType{}
	case "bool", "isinstance", "all", "any", "callable":
		return &hir.BoolType{}
	case "list":
		if len(e.Args) == 1 {
			return &hir.ListType{Elem: c.iterElemType(e.Args[0])}
		}
		return &hir.ListType{Elem: &hir.UnknownType{}}
	case "set", "frozenset":
		if len(e.Args) == 1 {
			return &hir.SetType{Elem: c.iterElemType(e.Args[0])}
		}
		return &hir.SetType{Elem: &hir.UnknownType{}}
	case "dict":
		return &hir.DictType{Key: &hir.UnknownType{}, Value: &hir.UnknownType{}}
	case "sorted", "reversed":
		if len(e.Args) >= 1 {
			if t, ok := c.exprType(e.Args[0]).(*hir.ListType); ok {
				return t
			}
			return &hir.ListType{Elem: c.iterElemType(e.Args[0])}
		}
	case "sum", "min", "max":
		if len(e.Args) >= 1 {
			et := c.iterElemType(e.Args[0])
			if _, unknown := et.(*hir.UnknownType); !unknown {
				return et
			}
		}
		return &hir.IntType{}
	case "range":
		return &hir.ListType{Elem: &hir.IntType{}}
	case "tuple":
		return &hir.TupleType{}
	case "open":
		return &hir.CustomType{Name: "file"}
	}

	if f, ok := c.moduleFuncs[e.Func]; ok && f.RetType != nil {
		return f.RetType
	}

	if _, ok := c.classes[e.Func]; ok {
		return &hir.CustomType{Name: e.Func}
	}

	return &hir.UnknownType{}
}

var stringMethods = map[string]bool{
	"upper": true, "lower": true, "strip": true, "lstrip": true,
	"rstrip": true, "replace": true, "join": true, "format": true,
	"title": true, "capitalize": true, "zfill": true, "ljust": true,
	"rjust": true, "center": true, "casefold": true, "swapcase": true,
	"hexdigest": true, "read": true, "readline": true, "expandtabs": true,
}

var boolMethods = map[string]bool{
	"startswith": true, "endswith": true, "isdigit": true, "isalpha": true,
	"isalnum": true, "isspace": true, "isupper": true, "islower": true,
	"isnumeric": true, "istitle": true, "isidentifier": true,
	"issubset": true, "issuperset": true, "isdisjoint": true,
}

func (c *Converter) methodType(e *hir.MethodCallExpr) hir.Type {
	if stringMethods[e.Method] {
		return &hir.StringType{}
	}

	if boolMethods[e.Method] {
		return &hir.BoolType{}
	}

	recvT := c.exprType(e.Object)

	switch e.Method {
	case "split", "rsplit", "splitlines", "readlines":
		return &hir.ListType{Elem: &hir.StringType{}}
	case "find", "rfind", "index", "rindex", "count":
		return &hir.IntType{}
	case "keys":
		if dt, ok := recvT.(*hir.DictType); ok {
			return &hir.ListType{Elem: dt.Key}
		}
	case "values":
		if dt, ok := recvT.(*hir.DictType); ok {
			return &hir.ListType{Elem: dt.Value}
		}
	case "items":
		if dt, ok := recvT.(*hir.DictType); ok {
			return &hir.ListType{Elem: &hir.TupleType{Items: []hir.Type{dt.Key, dt.Value}}}
		}
	case "get":
		if dt, ok := recvT.(*hir.DictType); ok {
			if len(e.Args) >= 2 {
				return dt.Value
			}
			return &hir.OptionalType{Elem: dt.Value}
		}
	case "pop":
		switch rt := recvT.(type) {
		case *hir.ListType:
			return rt.Elem
		case *hir.DictType:
			return rt.Value
		}
	case "copy":
		return recvT
	}

	return &hir.UnknownType{}
}

// iterElemType computes the element type yielded by iterating an expression.
func (c *Converter) iterElemType(e hir.Expr) hir.Type {
	if call, ok := e.(*hir.CallExpr); ok {
		switch call.Func {
		case "range":
			return &hir.IntType{}
		case "enumerate":
			var inner hir.Type = &hir.UnknownType{}
			if len(call.Args) >= 1 {
				inner = c.iterElemType(call.Args[0])
			}
			return &hir.TupleType{Items: []hir.Type{&hir.IntType{}, inner}}
		case "zip":
			items := make([]hir.Type, len(call.Args))
			for i, a := range call.Args {
				items[i] = c.iterElemType(a)
			}
			return &hir.TupleType{Items: items}
		case "sorted", "reversed", "list":
			if len(call.Args) >= 1 {
				return c.iterElemType(call.Args[0])
			}
		}
	}

	switch t := c.exprType(e).(type) {
	case *hir.ListType:
		return t.Elem
	case *hir.ArrayType:
		return t.Elem
	case *hir.SetType:
		return t.Elem
	case *hir.DictType:
		// Iterating a dict yields keys.
		return t.Key
	case *hir.StringType:
		return &hir.StringType{}
	case *hir.TupleType:
		if len(t.Items) > 0 {
			return t.Items[0]
		}
	}

	return &hir.UnknownType{}
}

func (c *Converter) isDictBase(e hir.Expr) bool {
	// Nested subscripts walk down to the innermost base.
	for {
		idx, ok := e.(*hir.IndexExpr)
		if !ok {
			break
		}
		e = idx.Base
	}

	_, ok := c.exprType(e).(*hir.DictType)
	if ok {
		return true
	}

	// Unannotated locals assigned a dict display still count.
	if v, ok := e.(*hir.VarExpr); ok {
		if t, known := c.localTypes[v.Name]; known {
			_, isDict := t.(*hir.DictType)
			return isDict
		}
	}

	return false
}

func (c *Converter) isSetTyped(e hir.Expr) bool {
	_, ok := c.exprType(e).(*hir.SetType)

	return ok
}

// isStringValued applies the string-inference heuristics used by int() and
// float() conversions: known string type, string-returning method, or a
// naming convention on the variable.
func (c *Converter) isStringValued(e hir.Expr) bool {
	if isStringType(c.exprType(e)) {
		return true
	}

	if m, ok := e.(*hir.MethodCallExpr); ok && stringMethods[m.Method] {
		return true
	}

	if v, ok := e.(*hir.VarExpr); ok {
		name := strings.ToLower(v.Name)
		switch {
		case strings.HasSuffix(name, "_str"), strings.HasSuffix(name, "_string"),
			strings.HasSuffix(name, "_text"), strings.HasSuffix(name, "_line"):
			return true
		case name == "s", name == "text", name == "line", name == "word", name == "token":
			return true
		}
	}

	return false
}

func isStringType(t hir.Type) bool {
	_, ok := t.(*hir.StringType)

	return ok
}

func isListType(t hir.Type) bool {
	_, ok := t.(*hir.ListType)

	return ok
}

func isIntType(t hir.Type) bool {
	switch t.(type) {
	case *hir.IntType, *hir.BoolType:
		return true
	}

	return false
}

func isFloatType(t hir.Type) bool {
	_, ok := t.(*hir.FloatType)

	return ok
}
