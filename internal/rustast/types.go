// Rust type representation for emitted code.

package rustast

import (
	"fmt"
	"strings"
)

// Type is an emitted Rust type. String renders Rust surface syntax.
type Type interface {
	rsTypeNode()
	String() string
}

// Prim is a primitive type token: i32, i64, f64, bool, usize, ().
type Prim struct {
	Name string
}

// StringT is the owned String type.
type StringT struct{}

// StrRef is the borrowed &str type.
type StrRef struct{}

// Vec is Vec<Elem>.
type Vec struct {
	Elem Type
}

// HashMap is HashMap<Key, Value>.
type HashMap struct {
	Key   Type
	Value Type
}

// HashSet is HashSet<Elem>.
type HashSet struct {
	Elem Type
}

// OptionT is Option<Elem>.
type OptionT struct {
	Elem Type
}

// ResultT is Result<Ok, Err>.
type ResultT struct {
	Ok  Type
	Err Type
}

// TupleT is a tuple type.
type TupleT struct {
	Items []Type
}

// ArrayT is [Elem; Size] where Size is already-rendered const text.
type ArrayT struct {
	Elem Type
	Size string
}

// RefT is &Elem or &mut Elem, optionally with a lifetime.
type RefT struct {
	Lifetime string
	Mut      bool
	Elem     Type
}

// Named references a user struct/enum or an external path like
// regex::Regex.
type Named struct {
	Name string
}

// FnT is fn(Params) -> Ret, used for callable parameters.
type FnT struct {
	Params []Type
	Ret    Type
}

// ValueEscape is the serde_json::Value escape used for types no mapping
// resolves; its presence is a TODO marker for the fixup pass.
type ValueEscape struct{}

func (*Prim) rsTypeNode()        {}
func (*StringT) rsTypeNode()     {}
func (*StrRef) rsTypeNode()      {}
func (*Vec) rsTypeNode()         {}
func (*HashMap) rsTypeNode()     {}
func (*HashSet) rsTypeNode()     {}
func (*OptionT) rsTypeNode()     {}
func (*ResultT) rsTypeNode()     {}
func (*TupleT) rsTypeNode()      {}
func (*ArrayT) rsTypeNode()      {}
func (*RefT) rsTypeNode()        {}
func (*Named) rsTypeNode()       {}
func (*FnT) rsTypeNode()         {}
func (*ValueEscape) rsTypeNode() {}

func (t *Prim) String() string    { return t.Name }
func (*StringT) String() string   { return "String" }
func (*StrRef) String() string    { return "&str" }
func (t *Vec) String() string     { return fmt.Sprintf("Vec<%s>", t.Elem) }
func (t *HashMap) String() string { return fmt.Sprintf("HashMap<%s, %s>", t.Key, t.Value) }
func (t *HashSet) String() string { return fmt.Sprintf("HashSet<%s>", t.Elem) }
func (t *OptionT) String() string { return fmt.Sprintf("Option<%s>", t.Elem) }
func (t *ResultT) String() string { return fmt.Sprintf("Result<%s, %s>", t.Ok, t.Err) }

func (t *TupleT) String() string {
	parts := make([]string, len(t.Items))
	for i, it := range t.Items {
		parts[i] = it.String()
	}

	return "(" + strings.Join(parts, ", ") + ")"
}

func (t *ArrayT) String() string { return fmt.Sprintf("[%s; %s]", t.Elem, t.Size) }

func (t *RefT) String() string {
	var b strings.Builder

	b.WriteString("&")

	if t.Lifetime != "" {
		b.WriteString(t.Lifetime)
		b.WriteString(" ")
	}

	if t.Mut {
		b.WriteString("mut ")
	}

	b.WriteString(t.Elem.String())

	return b.String()
}

func (t *Named) String() string { return t.Name }

func (t *FnT) String() string {
	parts := make([]string, len(t.Params))
	for i, it := range t.Params {
		parts[i] = it.String()
	}

	ret := "()"
	if t.Ret != nil {
		ret = t.Ret.String()
	}

	return fmt.Sprintf("fn(%s) -> %s", strings.Join(parts, ", "), ret)
}

func (*ValueEscape) String() string { return "serde_json::Value" }

// Unit is the canonical unit type.
func Unit() Type { return &Prim{Name: "()"} }

// I32 is the default integer type.
func I32() Type { return &Prim{Name: "i32"} }

// I64 is the wide integer type.
func I64() Type { return &Prim{Name: "i64"} }

// F64 is the default float type.
func F64() Type { return &Prim{Name: "f64"} }

// BoolT is the bool type.
func BoolT() Type { return &Prim{Name: "bool"} }

// Usize is the index type.
func Usize() Type { return &Prim{Name: "usize"} }

// IsCopy reports whether values of t are Copy, meaning pass-by-value never
// moves them.
func IsCopy(t Type) bool {
	switch tt := t.(type) {
	case *Prim:
		return true
	case *StrRef:
		return true
	case *RefT:
		return !tt.Mut
	case *TupleT:
		for _, it := range tt.Items {
			if !IsCopy(it) {
				return false
			}
		}
		return true
	case *ArrayT:
		return IsCopy(tt.Elem)
	case *OptionT:
		return IsCopy(tt.Elem)
	default:
		return false
	}
}
