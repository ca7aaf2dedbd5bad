// Package typemap maps HIR types to Rust types. The mapping is total:
// unresolvable types fall back to the serde_json::Value escape (or Unknown in
// NASA mode) so that every signature can be emitted and the fixup pass can
// mark the remaining holes.
package typemap

import (
	"github.com/depyler-lang/depyler/internal/diagnostics"
	"github.com/depyler-lang/depyler/internal/hir"
	"github.com/depyler-lang/depyler/internal/rustast"
)

// Mapper converts HIR types to Rust types.
type Mapper struct {
	// NASAMode disables every external-crate mapping: numpy vectors lower to
	// Vec<f64> with hand-written iterator code instead of trueno::Vector, and
	// the escape type becomes a plain unit-struct placeholder.
	NASAMode bool

	// WideInts maps Python int to i64 instead of the default i32.
	WideInts bool

	diags *diagnostics.Collector
}

// NewMapper creates a mapper reporting unsupported types to diags. A nil
// collector is allowed; warnings are then dropped.
func NewMapper(nasaMode bool, diags *diagnostics.Collector) *Mapper {
	return &Mapper{NASAMode: nasaMode, diags: diags}
}

// IntType returns the Rust integer type for Python int.
func (m *Mapper) IntType() rustast.Type {
	if m.WideInts {
		return rustast.I64()
	}

	return rustast.I32()
}

// MapType converts a single HIR type. Nil maps to unit.
func (m *Mapper) MapType(t hir.Type) rustast.Type {
	if t == nil {
		return rustast.Unit()
	}

	switch tt := t.(type) {
	case *hir.IntType:
		return m.IntType()
	case *hir.FloatType:
		return rustast.F64()
	case *hir.BoolType:
		return rustast.BoolT()
	case *hir.StringType:
		return &rustast.StringT{}
	case *hir.NoneType:
		return rustast.Unit()
	case *hir.UnknownType:
		return m.escape("Unknown")
	case *hir.ListType:
		return &rustast.Vec{Elem: m.MapType(tt.Elem)}
	case *hir.SetType:
		return &rustast.HashSet{Elem: m.MapType(tt.Elem)}
	case *hir.DictType:
		return &rustast.HashMap{Key: m.MapType(tt.Key), Value: m.MapType(tt.Value)}
	case *hir.TupleType:
		items := make([]rustast.Type, len(tt.Items))
		for i, it := range tt.Items {
			items[i] = m.MapType(it)
		}
		return &rustast.TupleT{Items: items}
	case *hir.OptionalType:
		return &rustast.OptionT{Elem: m.MapType(tt.Elem)}
	case *hir.UnionType:
		// A two-arm union with None is Optional in disguise; anything else
		// has no direct Rust shape and takes the escape.
		if elem, ok := optionalArm(tt); ok {
			return &rustast.OptionT{Elem: m.MapType(elem)}
		}
		return m.escape(tt.String())
	case *hir.ArrayType:
		return &rustast.ArrayT{Elem: m.MapType(tt.Elem), Size: tt.Size.String()}
	case *hir.CustomType:
		return m.mapCustom(tt.Name)
	case *hir.TypeVarType:
		return &rustast.Named{Name: tt.Name}
	case *hir.CallableType:
		params := make([]rustast.Type, len(tt.Params))
		for i, it := range tt.Params {
			params[i] = m.MapType(it)
		}
		return &rustast.FnT{Params: params, Ret: m.MapType(tt.Ret)}
	default:
		return m.escape(t.String())
	}
}

// mapCustom resolves a class/enum reference or a known external type name.
func (m *Mapper) mapCustom(name string) rustast.Type {
	switch name {
	case "Path", "pathlib.Path":
		return &rustast.Named{Name: "std::path::PathBuf"}
	case "numpy.ndarray", "ndarray":
		if m.NASAMode {
			return &rustast.Vec{Elem: rustast.F64()}
		}
		return &rustast.Named{Name: "trueno::Vector<f64>"}
	case "datetime.datetime":
		if m.NASAMode {
			return &rustast.Named{Name: "std::time::SystemTime"}
		}
		return &rustast.Named{Name: "chrono::DateTime<chrono::Utc>"}
	default:
		return &rustast.Named{Name: name}
	}
}

// escape produces the fallback type and records an UnsupportedType warning.
func (m *Mapper) escape(src string) rustast.Type {
	if m.diags != nil {
		m.diags.Warnf(diagnostics.UnsupportedType, "", "no Rust mapping for type %s", src)
	}

	if m.NASAMode {
		return &rustast.Named{Name: "DepylerValue"}
	}

	return &rustast.ValueEscape{}
}

// optionalArm reports whether the union is exactly {T, None} and returns T.
func optionalArm(u *hir.UnionType) (hir.Type, bool) {
	if len(u.Items) != 2 {
		return nil, false
	}

	if _, ok := u.Items[0].(*hir.NoneType); ok {
		return u.Items[1], true
	}

	if _, ok := u.Items[1].(*hir.NoneType); ok {
		return u.Items[0], true
	}

	return nil, false
}

// IsReferenceCandidate reports whether a parameter of this Python type is
// non-Copy on the Rust side, meaning a pass-by-value use into a &T-shaped
// slot needs an explicit borrow.
func IsReferenceCandidate(t hir.Type) bool {
	switch t.(type) {
	case *hir.ListType, *hir.SetType, *hir.DictType, *hir.StringType, *hir.CustomType:
		return true
	default:
		return false
	}
}
