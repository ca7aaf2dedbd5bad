// Type system for the Depyler HIR.
// Types form a closed sum; Unknown is the only escape hatch and is
// intentionally visible so passes can refuse to commit.

package hir

import (
	"fmt"
	"strings"
)

// Type is the interface implemented by every HIR type variant.
type Type interface {
	typeNode()
	String() string
}

// IntType is the Python int type (lowers to i32/i64 by context).
type IntType struct{}

// FloatType is the Python float type.
type FloatType struct{}

// BoolType is the Python bool type.
type BoolType struct{}

// StringType is the Python str type.
type StringType struct{}

// NoneType is the Python None type / unit.
type NoneType struct{}

// UnknownType marks a type no pass could resolve.
type UnknownType struct{}

// ListType is List[Elem].
type ListType struct {
	Elem Type
}

// SetType is Set[Elem].
type SetType struct {
	Elem Type
}

// DictType is Dict[Key, Value].
type DictType struct {
	Key   Type
	Value Type
}

// TupleType is a fixed-shape tuple.
type TupleType struct {
	Items []Type
}

// OptionalType is Optional[Elem].
type OptionalType struct {
	Elem Type
}

// UnionType is Union[Items...].
type UnionType struct {
	Items []Type
}

// ArrayType is a list whose size was proven by const-generic inference.
type ArrayType struct {
	Elem Type
	Size ConstGeneric
}

// CustomType names a user class or enum.
type CustomType struct {
	Name string
}

// TypeVarType is an unresolved generic type parameter.
type TypeVarType struct {
	Name string
}

// CallableType is Callable[[Params...], Ret].
type CallableType struct {
	Params []Type
	Ret    Type
}

func (*IntType) typeNode()      {}
func (*FloatType) typeNode()    {}
func (*BoolType) typeNode()     {}
func (*StringType) typeNode()   {}
func (*NoneType) typeNode()     {}
func (*UnknownType) typeNode()  {}
func (*ListType) typeNode()     {}
func (*SetType) typeNode()      {}
func (*DictType) typeNode()     {}
func (*TupleType) typeNode()    {}
func (*OptionalType) typeNode() {}
func (*UnionType) typeNode()    {}
func (*ArrayType) typeNode()    {}
func (*CustomType) typeNode()   {}
func (*TypeVarType) typeNode()  {}
func (*CallableType) typeNode() {}

func (*IntType) String() string     { return "int" }
func (*FloatType) String() string   { return "float" }
func (*BoolType) String() string    { return "bool" }
func (*StringType) String() string  { return "str" }
func (*NoneType) String() string    { return "None" }
func (*UnknownType) String() string { return "Unknown" }

func (t *ListType) String() string { return fmt.Sprintf("List[%s]", t.Elem) }
func (t *SetType) String() string  { return fmt.Sprintf("Set[%s]", t.Elem) }
func (t *DictType) String() string { return fmt.Sprintf("Dict[%s, %s]", t.Key, t.Value) }

func (t *TupleType) String() string {
	parts := make([]string, len(t.Items))
	for i, it := range t.Items {
		parts[i] = it.String()
	}

	return fmt.Sprintf("Tuple[%s]", strings.Join(parts, ", "))
}

func (t *OptionalType) String() string { return fmt.Sprintf("Optional[%s]", t.Elem) }

func (t *UnionType) String() string {
	parts := make([]string, len(t.Items))
	for i, it := range t.Items {
		parts[i] = it.String()
	}

	return fmt.Sprintf("Union[%s]", strings.Join(parts, ", "))
}

func (t *ArrayType) String() string { return fmt.Sprintf("Array[%s; %s]", t.Elem, t.Size) }

func (t *CustomType) String() string  { return t.Name }
func (t *TypeVarType) String() string { return t.Name }

func (t *CallableType) String() string {
	parts := make([]string, len(t.Params))
	for i, it := range t.Params {
		parts[i] = it.String()
	}

	return fmt.Sprintf("Callable[[%s], %s]", strings.Join(parts, ", "), t.Ret)
}

// ====== Const generics ======

// ConstGeneric is a numeric value that becomes part of a Rust type (the N
// in [T; N]).
type ConstGeneric interface {
	constGenericNode()
	String() string
}

// ConstLiteral is an exact size known at transpile time.
type ConstLiteral struct {
	Value int
}

// ConstParam names a const-generic parameter of the enclosing item.
type ConstParam struct {
	Name string
}

// ConstExpr carries a size expression in Rust surface syntax.
type ConstExpr struct {
	Text string
}

func (*ConstLiteral) constGenericNode() {}
func (*ConstParam) constGenericNode()   {}
func (*ConstExpr) constGenericNode()    {}

func (c *ConstLiteral) String() string { return fmt.Sprintf("%d", c.Value) }
func (c *ConstParam) String() string   { return c.Name }
func (c *ConstExpr) String() string    { return c.Text }

// IsNumeric reports whether t is int or float.
func IsNumeric(t Type) bool {
	switch t.(type) {
	case *IntType, *FloatType:
		return true
	default:
		return false
	}
}

// TypesEqual reports structural equality of two types. Nil arguments compare
// equal only to nil.
func TypesEqual(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}

	switch at := a.(type) {
	case *IntType:
		_, ok := b.(*IntType)
		return ok
	case *FloatType:
		_, ok := b.(*FloatType)
		return ok
	case *BoolType:
		_, ok := b.(*BoolType)
		return ok
	case *StringType:
		_, ok := b.(*StringType)
		return ok
	case *NoneType:
		_, ok := b.(*NoneType)
		return ok
	case *UnknownType:
		_, ok := b.(*UnknownType)
		return ok
	case *ListType:
		bt, ok := b.(*ListType)
		return ok && TypesEqual(at.Elem, bt.Elem)
	case *SetType:
		bt, ok := b.(*SetType)
		return ok && TypesEqual(at.Elem, bt.Elem)
	case *DictType:
		bt, ok := b.(*DictType)
		return ok && TypesEqual(at.Key, bt.Key) && TypesEqual(at.Value, bt.Value)
	case *TupleType:
		bt, ok := b.(*TupleType)
		if !ok || len(at.Items) != len(bt.Items) {
			return false
		}
		for i := range at.Items {
			if !TypesEqual(at.Items[i], bt.Items[i]) {
				return false
			}
		}
		return true
	case *OptionalType:
		bt, ok := b.(*OptionalType)
		return ok && TypesEqual(at.Elem, bt.Elem)
	case *UnionType:
		bt, ok := b.(*UnionType)
		if !ok || len(at.Items) != len(bt.Items) {
			return false
		}
		for i := range at.Items {
			if !TypesEqual(at.Items[i], bt.Items[i]) {
				return false
			}
		}
		return true
	case *ArrayType:
		bt, ok := b.(*ArrayType)
		return ok && TypesEqual(at.Elem, bt.Elem) && at.Size.String() == bt.Size.String()
	case *CustomType:
		bt, ok := b.(*CustomType)
		return ok && at.Name == bt.Name
	case *TypeVarType:
		bt, ok := b.(*TypeVarType)
		return ok && at.Name == bt.Name
	case *CallableType:
		bt, ok := b.(*CallableType)
		if !ok || len(at.Params) != len(bt.Params) {
			return false
		}
		for i := range at.Params {
			if !TypesEqual(at.Params[i], bt.Params[i]) {
				return false
			}
		}
		return TypesEqual(at.Ret, bt.Ret)
	default:
		return false
	}
}
