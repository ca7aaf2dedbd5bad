// Class lowering: structs with derives, enums for enum classes, and impl
// blocks. __init__ becomes the associated function new returning Self.

package lowering

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/exp/maps"

	"github.com/depyler-lang/depyler/internal/diagnostics"
	"github.com/depyler-lang/depyler/internal/hir"
	"github.com/depyler-lang/depyler/internal/rustast"
)

func (c *Converter) convertClass(cl *hir.Class, uses *useSet) []rustast.Item {
	if cl.IsEnum {
		return c.convertEnumClass(cl)
	}

	c.classFieldTypes = make(map[string]hir.Type)
	for _, f := range cl.Fields {
		c.classFieldTypes[f.Name] = f.Type
	}

	derives := []string{"Debug", "Clone"}
	if c.fieldsComparable(cl) {
		derives = append(derives, "PartialEq")
	}

	st := &rustast.StructItem{
		Name:    cl.Name,
		Doc:     cl.Docstring,
		Derives: derives,
		Public:  true,
	}

	for _, f := range cl.Fields {
		st.Fields = append(st.Fields, rustast.StructField{
			Name:   f.Name,
			Type:   c.Mapper.MapType(f.Type),
			Public: true,
		})
	}

	impl := &rustast.ImplItem{TypeName: cl.Name}

	for _, m := range cl.Methods {
		if m.Name == "__init__" {
			if ctor := c.convertInit(cl, m); ctor != nil {
				impl.Fns = append(impl.Fns, ctor)
			}
			continue
		}

		if strings.HasPrefix(m.Name, "__") {
			c.Diags.Warnf(diagnostics.LoweringIncomplete, cl.Name+"."+m.Name,
				"dunder method %s skipped", m.Name)
			continue
		}

		fn, err := c.ConvertFunction(m, cl.Name)
		if err != nil {
			c.Diags.Errorf(diagnostics.DispatchArity, cl.Name+"."+m.Name, "%v; method skipped", err)
			continue
		}

		impl.Fns = append(impl.Fns, fn)
	}

	// Dataclasses without an explicit __init__ still get a constructor.
	if cl.IsDataclass && !hasInit(cl) {
		impl.Fns = append([]*rustast.FnItem{c.dataclassNew(cl)}, impl.Fns...)
	}

	c.classFieldTypes = nil

	items := []rustast.Item{st}
	if len(impl.Fns) > 0 {
		items = append(items, impl)
	}

	return items
}

func hasInit(cl *hir.Class) bool {
	for _, m := range cl.Methods {
		if m.Name == "__init__" {
			return true
		}
	}

	return false
}

func (c *Converter) fieldsComparable(cl *hir.Class) bool {
	for _, f := range cl.Fields {
		if _, isFloat := f.Type.(*hir.FloatType); isFloat {
			continue
		}
		if _, isCustom := f.Type.(*hir.CustomType); isCustom {
			return false
		}
	}

	return true
}

// convertInit lowers __init__ into fn new. Assignments to self fields become
// struct literal initializers; any other statement is kept ahead of the
// literal so computed defaults still work.
func (c *Converter) convertInit(cl *hir.Class, init *hir.Function) *rustast.FnItem {
	c.fnName = cl.Name + ".__init__"
	c.fnKey = c.fnName
	c.canFail = false
	c.resultCtx = false
	c.paramTypes = make(map[string]hir.Type)
	c.localTypes = make(map[string]hir.Type)
	c.declared = map[string]bool{"self": true}
	c.tempCount = 0

	fn := &rustast.FnItem{
		Name: "new",
		Ret:  &rustast.Named{Name: "Self"},
	}

	for i, p := range init.Params {
		if i == 0 && p.Name == "self" {
			continue
		}
		c.paramTypes[p.Name] = p.Type
		c.declared[p.Name] = true
		fn.Params = append(fn.Params, rustast.FnParam{Name: p.Name, Type: c.Mapper.MapType(p.Type)})
	}

	fieldInit := make(map[string]rustast.Expr)

	var prelude []rustast.Stmt

	mut := c.mutResult.ForFunction(cl.Name + ".__init__")

	for _, s := range init.Body {
		assign, ok := s.(*hir.AssignStmt)
		if ok {
			if at, isAttr := assign.Target.(*hir.AttributeTarget); isAttr {
				if v, isVar := at.Value.(*hir.VarExpr); isVar && v.Name == "self" {
					val, err := c.convertExpr(assign.Value)
					if err != nil {
						c.Diags.Errorf(diagnostics.DispatchArity, c.fnName, "%v; field %s defaulted", err, at.Attr)
						continue
					}
					fieldInit[at.Attr] = val
					continue
				}
			}
		}

		stmts, err := c.convertStmt(s, mut)
		if err != nil {
			c.Diags.Warnf(diagnostics.LoweringIncomplete, c.fnName, "constructor statement dropped: %v", err)
			continue
		}
		prelude = append(prelude, stmts...)
	}

	lit := &rustast.StructLit{Name: "Self"}

	for _, f := range cl.Fields {
		val, ok := fieldInit[f.Name]
		if !ok {
			val = c.fieldDefault(f)
		} else {
			delete(fieldInit, f.Name)
		}
		lit.Fields = append(lit.Fields, rustast.StructLitField{Name: f.Name, Value: val})
	}

	// Fields assigned in __init__ but not declared on the class.
	extra := maps.Keys(fieldInit)
	sort.Strings(extra)
	for _, name := range extra {
		c.Diags.Warnf(diagnostics.LoweringIncomplete, c.fnName,
			"field %s assigned in __init__ but not declared; dropped", name)
	}

	fn.Body = append(prelude, &rustast.ExprStmt{E: lit, Tail: true})

	return fn
}

// dataclassNew builds the positional constructor of a dataclass.
func (c *Converter) dataclassNew(cl *hir.Class) *rustast.FnItem {
	fn := &rustast.FnItem{
		Name: "new",
		Ret:  &rustast.Named{Name: "Self"},
	}

	lit := &rustast.StructLit{Name: "Self"}

	for _, f := range cl.Fields {
		if f.Default != nil {
			val, err := c.convertExpr(f.Default)
			if err == nil {
				lit.Fields = append(lit.Fields, rustast.StructLitField{Name: f.Name, Value: val})
				continue
			}
		}
		fn.Params = append(fn.Params, rustast.FnParam{Name: f.Name, Type: c.Mapper.MapType(f.Type)})
		lit.Fields = append(lit.Fields, rustast.StructLitField{Name: f.Name, Value: &rustast.Path{Name: f.Name}})
	}

	fn.Body = []rustast.Stmt{&rustast.ExprStmt{E: lit, Tail: true}}

	return fn
}

func (c *Converter) fieldDefault(f hir.ClassField) rustast.Expr {
	if f.Default != nil {
		if val, err := c.convertExpr(f.Default); err == nil {
			return val
		}
	}

	return &rustast.Raw{Text: "Default::default()"}
}

func (c *Converter) convertEnumClass(cl *hir.Class) []rustast.Item {
	en := &rustast.EnumItem{
		Name:    cl.Name,
		Doc:     cl.Docstring,
		Derives: []string{"Debug", "Clone", "Copy", "PartialEq", "Eq"},
		Public:  true,
	}

	for _, f := range cl.Fields {
		en.Variants = append(en.Variants, rustast.EnumVariant{Name: f.Name})
	}

	items := []rustast.Item{en}

	impl := &rustast.ImplItem{TypeName: cl.Name}

	for _, m := range cl.Methods {
		if strings.HasPrefix(m.Name, "__") {
			continue
		}
		fn, err := c.ConvertFunction(m, cl.Name)
		if err != nil {
			c.Diags.Errorf(diagnostics.DispatchArity, cl.Name+"."+m.Name, "%v; method skipped", err)
			continue
		}
		impl.Fns = append(impl.Fns, fn)
	}

	if len(impl.Fns) > 0 {
		items = append(items, impl)
	}

	return items
}

// convertConstant lowers a module-level constant. Scalar values become
// const items; anything needing allocation is emitted as a zero-argument
// function to keep the item const-evaluable.
func (c *Converter) convertConstant(cst hir.Constant) rustast.Item {
	c.fnName = cst.Name

	val, err := c.convertExpr(cst.Value)
	if err != nil {
		c.Diags.Errorf(diagnostics.DispatchArity, cst.Name, "%v; constant skipped", err)
		return nil
	}

	ty := c.Mapper.MapType(cst.Type)

	switch cst.Type.(type) {
	case *hir.IntType, *hir.FloatType, *hir.BoolType:
		return &rustast.ConstItem{Name: strings.ToUpper(cst.Name), Type: ty, Value: val}
	case *hir.StringType:
		if lit, ok := stringLiteral(cst.Value); ok {
			return &rustast.ConstItem{
				Name:  strings.ToUpper(cst.Name),
				Type:  &rustast.StrRef{},
				Value: &rustast.Lit{Text: fmt.Sprintf("%q", lit)},
			}
		}
	}

	return &rustast.RawItem{Text: fmt.Sprintf("fn %s() -> %s {\n    %s\n}",
		strings.ToLower(cst.Name), ty, rustast.RenderExpr(val))}
}

// ====== Use collection ======

type useSet struct {
	m map[string]bool
}

func newUseSet() *useSet {
	return &useSet{m: make(map[string]bool)}
}

func (u *useSet) add(path string) {
	u.m[path] = true
}

func (u *useSet) sorted() []string {
	out := maps.Keys(u.m)
	sort.Strings(out)

	return out
}

// useTriggers map rendered-text markers to the use declarations they need.
// Scanning the rendered output keeps the list exact: a use only appears when
// the emitted code mentions the type or trait.
var useTriggers = []struct {
	marker string
	path   string
}{
	{"HashMap", "std::collections::HashMap"},
	{"HashSet", "std::collections::HashSet"},
	{".read_to_string(", "std::io::Read"},
	{".write_all(", "std::io::Write"},
	{".flush()", "std::io::Write"},
	{"sha2::", "sha2::Digest as _"},
	{"md5::", "md5::Digest as _"},
}

func collectUses(f *rustast.File, uses *useSet) {
	text := rustast.NewPrinter().Print(f)

	for _, t := range useTriggers {
		if strings.Contains(text, t.marker) {
			uses.add(t.path)
		}
	}
}
