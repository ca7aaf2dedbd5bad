package lowering

import (
	"strings"
	"testing"

	"github.com/depyler-lang/depyler/internal/diagnostics"
	"github.com/depyler-lang/depyler/internal/hir"
	"github.com/depyler-lang/depyler/internal/mutability"
	"github.com/depyler-lang/depyler/internal/rustast"
	"github.com/depyler-lang/depyler/internal/typemap"
)

// lower runs the mutability analysis and the converter over a module and
// returns the printed Rust text.
func lower(t *testing.T, m *hir.Module) string {
	t.Helper()

	diags := &diagnostics.Collector{}
	mapper := typemap.NewMapper(false, diags)
	crates := rustast.NewCrateSet()
	mut := mutability.AnalyzeModule(m)

	c := NewConverter(m, mut, mapper, crates, diags, nil)
	file := c.ConvertModule(m)

	return rustast.NewPrinter().Print(file)
}

func intLit(v int64) hir.Expr {
	return &hir.LiteralExpr{Value: &hir.IntLit{Value: v}}
}

func strLit(s string) hir.Expr {
	return &hir.LiteralExpr{Value: &hir.StringLit{Value: s}}
}

func ref(name string) hir.Expr {
	return &hir.VarExpr{Name: name}
}

func wantContains(t *testing.T, src string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if !strings.Contains(src, frag) {
			t.Errorf("emitted Rust missing %q\n%s", frag, src)
		}
	}
}

func TestSimpleFunctionTailReturn(t *testing.T) {
	m := &hir.Module{
		Name: "simple",
		Functions: []*hir.Function{{
			Name: "add",
			Params: []hir.Param{
				{Name: "a", Type: &hir.IntType{}},
				{Name: "b", Type: &hir.IntType{}},
			},
			RetType: &hir.IntType{},
			Body: []hir.Stmt{
				&hir.ReturnStmt{Value: &hir.BinaryExpr{Op: hir.OpAdd, Left: ref("a"), Right: ref("b")}},
			},
		}},
	}

	src := lower(t, m)

	wantContains(t, src,
		"pub fn add(a: i32, b: i32) -> i32 {",
		"a + b",
	)

	// The trailing return is elided to a tail expression.
	if strings.Contains(src, "return a + b;") {
		t.Errorf("trailing return was not elided:\n%s", src)
	}
}

func TestAccumulatorGetsMut(t *testing.T) {
	// total = 0; for v in items: total = total + v; return total
	m := &hir.Module{
		Name: "acc",
		Functions: []*hir.Function{{
			Name: "process_data",
			Params: []hir.Param{
				{Name: "items", Type: &hir.ListType{Elem: &hir.IntType{}}},
			},
			RetType: &hir.IntType{},
			Body: []hir.Stmt{
				&hir.AssignStmt{Target: &hir.SymbolTarget{Name: "total"}, Value: intLit(0)},
				&hir.ForStmt{
					Target: &hir.SymbolTarget{Name: "v"},
					Iter:   ref("items"),
					Body: []hir.Stmt{
						&hir.AssignStmt{
							Target: &hir.SymbolTarget{Name: "total"},
							Value:  &hir.BinaryExpr{Op: hir.OpAdd, Left: ref("total"), Right: ref("v")},
						},
					},
				},
				&hir.ReturnStmt{Value: ref("total")},
			},
		}},
	}

	src := lower(t, m)

	wantContains(t, src,
		"pub fn process_data(items: Vec<i32>) -> i32 {",
		"let mut total = 0;",
		"total = total + v;",
	)
}

func TestMutatedListParamTakesMutRef(t *testing.T) {
	m := &hir.Module{
		Name: "mutparam",
		Functions: []*hir.Function{{
			Name: "push_one",
			Params: []hir.Param{
				{Name: "items", Type: &hir.ListType{Elem: &hir.IntType{}}},
			},
			RetType: &hir.NoneType{},
			Body: []hir.Stmt{
				&hir.ExprStmt{Value: &hir.MethodCallExpr{
					Object: ref("items"),
					Method: "append",
					Args:   []hir.Expr{intLit(1)},
				}},
			},
		}},
	}

	src := lower(t, m)

	wantContains(t, src,
		"pub fn push_one(items: &mut Vec<i32>) {",
		"items.push(1);",
	)
}

func TestTupleSwapOfBoundNames(t *testing.T) {
	m := &hir.Module{
		Name: "swap",
		Functions: []*hir.Function{{
			Name: "swap",
			Params: []hir.Param{
				{Name: "a", Type: &hir.IntType{}},
				{Name: "b", Type: &hir.IntType{}},
			},
			RetType: &hir.TupleType{Items: []hir.Type{&hir.IntType{}, &hir.IntType{}}},
			Body: []hir.Stmt{
				&hir.AssignStmt{
					Target: &hir.TupleTarget{Targets: []hir.AssignTarget{
						&hir.SymbolTarget{Name: "a"},
						&hir.SymbolTarget{Name: "b"},
					}},
					Value: &hir.TupleExpr{Elems: []hir.Expr{ref("b"), ref("a")}},
				},
				&hir.ReturnStmt{Value: &hir.TupleExpr{Elems: []hir.Expr{ref("a"), ref("b")}}},
			},
		}},
	}

	src := lower(t, m)

	wantContains(t, src, "(a, b) = (b, a);")
}

func TestDictAssignLowersToInsert(t *testing.T) {
	m := &hir.Module{
		Name: "dicts",
		Functions: []*hir.Function{{
			Name: "store",
			Params: []hir.Param{
				{Name: "d", Type: &hir.DictType{Key: &hir.StringType{}, Value: &hir.IntType{}}},
			},
			RetType: &hir.NoneType{},
			Body: []hir.Stmt{
				&hir.AssignStmt{
					Target: &hir.IndexTarget{Base: ref("d"), Index: strLit("k")},
					Value:  intLit(1),
				},
			},
		}},
	}

	src := lower(t, m)

	wantContains(t, src, `d.insert("k".to_string(), 1);`)
}

func TestNestedDictAssignBuildsGetMutChain(t *testing.T) {
	inner := &hir.DictType{Key: &hir.StringType{}, Value: &hir.IntType{}}
	m := &hir.Module{
		Name: "nested",
		Functions: []*hir.Function{{
			Name: "store",
			Params: []hir.Param{
				{Name: "d", Type: &hir.DictType{Key: &hir.StringType{}, Value: inner}},
			},
			RetType: &hir.NoneType{},
			Body: []hir.Stmt{
				&hir.AssignStmt{
					Target: &hir.IndexTarget{
						Base:  &hir.IndexExpr{Base: ref("d"), Index: strLit("outer")},
						Index: strLit("inner"),
					},
					Value: intLit(2),
				},
			},
		}},
	}

	src := lower(t, m)

	wantContains(t, src,
		`d.get_mut("outer").expect("key not found").insert("inner".to_string(), 2);`,
	)
}

func TestCanFailFunctionReturnsResult(t *testing.T) {
	m := &hir.Module{
		Name: "failing",
		Functions: []*hir.Function{{
			Name: "checked",
			Params: []hir.Param{
				{Name: "n", Type: &hir.IntType{}},
			},
			RetType:    &hir.IntType{},
			Properties: hir.FunctionProperties{CanFail: true},
			Body: []hir.Stmt{
				&hir.IfStmt{
					Cond: &hir.BinaryExpr{Op: hir.OpLt, Left: ref("n"), Right: intLit(0)},
					Then: []hir.Stmt{
						&hir.RaiseStmt{Exc: &hir.CallExpr{Func: "ValueError", Args: []hir.Expr{strLit("negative")}}},
					},
				},
				&hir.ReturnStmt{Value: ref("n")},
			},
		}},
	}

	src := lower(t, m)

	wantContains(t, src,
		"-> Result<i32, String> {",
		`return Err(format!("ValueError: {}", "negative".to_string()));`,
		"return Ok(n);",
		"Ok(Default::default())",
	)
}

func TestTryExceptLowersToClosureMatch(t *testing.T) {
	m := &hir.Module{
		Name: "trying",
		Functions: []*hir.Function{{
			Name:    "guarded",
			RetType: &hir.NoneType{},
			Body: []hir.Stmt{
				&hir.TryStmt{
					Body: []hir.Stmt{
						&hir.ExprStmt{Value: &hir.CallExpr{Func: "print", Args: []hir.Expr{strLit("in try")}}},
					},
					Handlers: []hir.ExceptHandler{{
						ExcType: "ValueError",
						Body: []hir.Stmt{
							&hir.ExprStmt{Value: &hir.CallExpr{Func: "print", Args: []hir.Expr{strLit("caught")}}},
						},
					}},
					Finally: []hir.Stmt{
						&hir.ExprStmt{Value: &hir.CallExpr{Func: "print", Args: []hir.Expr{strLit("done")}}},
					},
				},
			},
		}},
	}

	src := lower(t, m)

	wantContains(t, src,
		"let _try_result: Result<(), String> = (||",
		"match _try_result {",
		"Ok(()) => {",
		"Err(_err) => {",
	)
}

func TestTruthinessCoercions(t *testing.T) {
	m := &hir.Module{
		Name: "truthy",
		Functions: []*hir.Function{{
			Name: "drain",
			Params: []hir.Param{
				{Name: "items", Type: &hir.ListType{Elem: &hir.IntType{}}},
				{Name: "n", Type: &hir.IntType{}},
				{Name: "s", Type: &hir.StringType{}},
			},
			RetType: &hir.NoneType{},
			Body: []hir.Stmt{
				&hir.WhileStmt{
					Cond: ref("items"),
					Body: []hir.Stmt{
						&hir.ExprStmt{Value: &hir.MethodCallExpr{Object: ref("items"), Method: "pop"}},
					},
				},
				&hir.IfStmt{
					Cond: ref("n"),
					Then: []hir.Stmt{&hir.PassStmt{}},
				},
				&hir.IfStmt{
					Cond: ref("s"),
					Then: []hir.Stmt{&hir.PassStmt{}},
				},
			},
		}},
	}

	src := lower(t, m)

	wantContains(t, src,
		"while !items.is_empty() {",
		"if n != 0 {",
		"if !s.is_empty() {",
	)
}

func TestTopLevelBecomesMain(t *testing.T) {
	m := &hir.Module{
		Name: "script",
		TopLevel: []hir.Stmt{
			&hir.ExprStmt{Value: &hir.CallExpr{Func: "print", Args: []hir.Expr{strLit("hello")}}},
		},
	}

	src := lower(t, m)

	wantContains(t, src, "pub fn main() {", `println!("hello");`)
}

func TestHashMapLiteralAddsUseDeclaration(t *testing.T) {
	m := &hir.Module{
		Name: "uses",
		Functions: []*hir.Function{{
			Name:    "build",
			RetType: &hir.DictType{Key: &hir.StringType{}, Value: &hir.IntType{}},
			Body: []hir.Stmt{
				&hir.ReturnStmt{Value: &hir.DictExpr{Items: []hir.DictItem{
					{Key: strLit("a"), Value: intLit(1)},
				}}},
			},
		}},
	}

	src := lower(t, m)

	wantContains(t, src, "use std::collections::HashMap;")
}

func TestFStringLowersToFormat(t *testing.T) {
	m := &hir.Module{
		Name: "fstrings",
		Functions: []*hir.Function{{
			Name: "greet",
			Params: []hir.Param{
				{Name: "name", Type: &hir.StringType{}},
			},
			RetType: &hir.StringType{},
			Body: []hir.Stmt{
				&hir.ReturnStmt{Value: &hir.FStringExpr{Parts: []hir.FStringPart{
					{Literal: "hello "},
					{Expr: ref("name")},
				}}},
			},
		}},
	}

	src := lower(t, m)

	wantContains(t, src, `format!("hello {}", name)`)
}

func TestClassLowersToStructWithImpl(t *testing.T) {
	m := &hir.Module{
		Name: "classes",
		Classes: []*hir.Class{{
			Name: "Point",
			Fields: []hir.ClassField{
				{Name: "x", Type: &hir.IntType{}},
				{Name: "y", Type: &hir.IntType{}},
			},
			Methods: []*hir.Function{
				{
					Name: "__init__",
					Params: []hir.Param{
						{Name: "self"},
						{Name: "x", Type: &hir.IntType{}},
						{Name: "y", Type: &hir.IntType{}},
					},
					Body: []hir.Stmt{
						&hir.AssignStmt{
							Target: &hir.AttributeTarget{Value: ref("self"), Attr: "x"},
							Value:  ref("x"),
						},
						&hir.AssignStmt{
							Target: &hir.AttributeTarget{Value: ref("self"), Attr: "y"},
							Value:  ref("y"),
						},
					},
				},
				{
					Name: "total",
					Params: []hir.Param{
						{Name: "self"},
					},
					RetType: &hir.IntType{},
					Body: []hir.Stmt{
						&hir.ReturnStmt{Value: &hir.BinaryExpr{
							Op:   hir.OpAdd,
							Left: &hir.AttributeExpr{Value: ref("self"), Attr: "x"},
							Right: &hir.AttributeExpr{
								Value: ref("self"), Attr: "y",
							},
						}},
					},
				},
			},
		}},
	}

	src := lower(t, m)

	wantContains(t, src,
		"struct Point {",
		"x: i32,",
		"impl Point {",
		"pub fn new(x: i32, y: i32) -> Self {",
		"pub fn total(&self) -> i32 {",
		"self.x + self.y",
	)
}

func TestEnumClassLowersToEnum(t *testing.T) {
	m := &hir.Module{
		Name: "enums",
		Classes: []*hir.Class{{
			Name:   "Color",
			IsEnum: true,
			Fields: []hir.ClassField{
				{Name: "RED", Type: &hir.IntType{}, Default: intLit(1)},
				{Name: "GREEN", Type: &hir.IntType{}, Default: intLit(2)},
			},
		}},
	}

	src := lower(t, m)

	wantContains(t, src,
		"enum Color {",
		"RED,",
		"GREEN,",
	)
}

func TestModuleConstant(t *testing.T) {
	m := &hir.Module{
		Name: "consts",
		Constants: []hir.Constant{
			{Name: "MAX_RETRIES", Type: &hir.IntType{}, Value: intLit(3)},
		},
	}

	src := lower(t, m)

	wantContains(t, src, "const MAX_RETRIES: i32 = 3;")
}

func TestDictSubscriptReadUsesGetExpect(t *testing.T) {
	m := &hir.Module{
		Name: "dictread",
		Functions: []*hir.Function{
			{
				Name: "lookup",
				Params: []hir.Param{
					{Name: "d", Type: &hir.DictType{Key: &hir.StringType{}, Value: &hir.IntType{}}},
				},
				RetType: &hir.IntType{},
				Body: []hir.Stmt{
					&hir.ReturnStmt{Value: &hir.IndexExpr{Base: ref("d"), Index: strLit("k")}},
				},
			},
			{
				Name: "lookup_owned",
				Params: []hir.Param{
					{Name: "d", Type: &hir.DictType{Key: &hir.StringType{}, Value: &hir.StringType{}}},
				},
				RetType: &hir.StringType{},
				Body: []hir.Stmt{
					&hir.ReturnStmt{Value: &hir.IndexExpr{Base: ref("d"), Index: strLit("k")}},
				},
			},
		},
	}

	src := lower(t, m)

	// Copy values deref the borrow, non-Copy values clone out of the map.
	wantContains(t, src,
		`*d.get("k").expect("key not found")`,
		`d.get("k").expect("key not found").clone()`,
	)
}

func TestIndexedSwapEvaluatesRHSBeforeStores(t *testing.T) {
	// a[0], a[1] = a[1], a[0]
	m := &hir.Module{
		Name: "idxswap",
		Functions: []*hir.Function{{
			Name: "swap_ends",
			Params: []hir.Param{
				{Name: "a", Type: &hir.ListType{Elem: &hir.IntType{}}},
			},
			RetType: &hir.NoneType{},
			Body: []hir.Stmt{
				&hir.AssignStmt{
					Target: &hir.TupleTarget{Targets: []hir.AssignTarget{
						&hir.IndexTarget{Base: ref("a"), Index: intLit(0)},
						&hir.IndexTarget{Base: ref("a"), Index: intLit(1)},
					}},
					Value: &hir.TupleExpr{Elems: []hir.Expr{
						&hir.IndexExpr{Base: ref("a"), Index: intLit(1)},
						&hir.IndexExpr{Base: ref("a"), Index: intLit(0)},
					}},
				},
			},
		}},
	}

	src := lower(t, m)

	wantContains(t, src,
		"pub fn swap_ends(a: &mut Vec<i32>) {",
		"let _swap_temp = (a[1], a[0]);",
		"a[0] = _swap_temp.0;",
		"a[1] = _swap_temp.1;",
	)
}

func TestModuleDispatchLowersMathPow(t *testing.T) {
	m := &hir.Module{
		Name: "maths",
		Functions: []*hir.Function{{
			Name: "square",
			Params: []hir.Param{
				{Name: "x", Type: &hir.FloatType{}},
			},
			RetType: &hir.FloatType{},
			Body: []hir.Stmt{
				&hir.ReturnStmt{Value: &hir.CallExpr{Func: "math.pow", Args: []hir.Expr{ref("x"), intLit(2)}}},
			},
		}},
	}

	src := lower(t, m)

	wantContains(t, src, "x.powf(2.0_f64)")
}

func TestNumpySqrtArityErrorSkipsFunction(t *testing.T) {
	diags := &diagnostics.Collector{}
	mapper := typemap.NewMapper(false, diags)
	crates := rustast.NewCrateSet()

	m := &hir.Module{
		Name: "badcall",
		Functions: []*hir.Function{{
			Name:    "broken",
			RetType: &hir.NoneType{},
			Body: []hir.Stmt{
				&hir.ExprStmt{Value: &hir.CallExpr{Func: "numpy.sqrt"}},
			},
		}},
	}

	mut := mutability.AnalyzeModule(m)
	c := NewConverter(m, mut, mapper, crates, diags, nil)
	src := rustast.NewPrinter().Print(c.ConvertModule(m))

	if strings.Contains(src, "fn broken") {
		t.Errorf("function with a bad call arity was still emitted:\n%s", src)
	}
	if !diags.FunctionHasError("broken") {
		t.Error("expected a hard dispatch error for broken")
	}
}

func TestClassmethodLowersClsToSelf(t *testing.T) {
	m := &hir.Module{
		Name: "factories",
		Classes: []*hir.Class{{
			Name: "Widget",
			Fields: []hir.ClassField{
				{Name: "count", Type: &hir.IntType{}},
			},
			Methods: []*hir.Function{
				{
					Name: "__init__",
					Params: []hir.Param{
						{Name: "self"},
						{Name: "count", Type: &hir.IntType{}},
					},
					Body: []hir.Stmt{
						&hir.AssignStmt{
							Target: &hir.AttributeTarget{Value: ref("self"), Attr: "count"},
							Value:  ref("count"),
						},
					},
				},
				{
					Name:    "fresh",
					Params:  []hir.Param{{Name: "cls"}},
					RetType: &hir.CustomType{Name: "Widget"},
					Body: []hir.Stmt{
						&hir.ReturnStmt{Value: &hir.CallExpr{Func: "cls", Args: []hir.Expr{intLit(0)}}},
					},
				},
				{
					Name:    "pair",
					Params:  []hir.Param{{Name: "cls"}},
					RetType: &hir.CustomType{Name: "Widget"},
					Body: []hir.Stmt{
						&hir.ReturnStmt{Value: &hir.MethodCallExpr{Object: ref("cls"), Method: "fresh"}},
					},
				},
			},
		}},
	}

	src := lower(t, m)

	wantContains(t, src,
		"pub fn fresh() -> Widget {",
		"Self::new(0)",
		"Self::fresh()",
	)
}

func TestLenCastsToIntType(t *testing.T) {
	m := &hir.Module{
		Name: "lengths",
		Functions: []*hir.Function{{
			Name: "count",
			Params: []hir.Param{
				{Name: "xs", Type: &hir.ListType{Elem: &hir.IntType{}}},
			},
			RetType: &hir.IntType{},
			Body: []hir.Stmt{
				&hir.ReturnStmt{Value: &hir.CallExpr{Func: "len", Args: []hir.Expr{ref("xs")}}},
			},
		}},
	}

	src := lower(t, m)

	wantContains(t, src, "(xs.len()) as i32")
}

func TestDeterministicEmission(t *testing.T) {
	build := func() *hir.Module {
		return &hir.Module{
			Name: "det",
			Functions: []*hir.Function{{
				Name: "f",
				Params: []hir.Param{
					{Name: "d", Type: &hir.DictType{Key: &hir.StringType{}, Value: &hir.IntType{}}},
				},
				RetType: &hir.IntType{},
				Body: []hir.Stmt{
					&hir.ReturnStmt{Value: &hir.IndexExpr{Base: ref("d"), Index: strLit("a")}},
				},
			}},
		}
	}

	first := lower(t, build())
	second := lower(t, build())

	if first != second {
		t.Errorf("emission is not deterministic:\n--- first\n%s\n--- second\n%s", first, second)
	}
}
