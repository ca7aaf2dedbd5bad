// JSON decoding of HIR modules. This is the concrete wire contract with the
// AST bridge: the bridge serializes its typed AST into tagged-envelope JSON
// and the core decodes it here. Encoding is not needed; the HIR never leaves
// the pipeline.

package hir

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// DecodeModule parses a JSON-serialized HIR module produced by the bridge.
func DecodeModule(data []byte) (*Module, error) {
	var raw struct {
		Name        string `json:"name"`
		Imports     []struct {
			Module string `json:"module"`
			Names  []struct {
				Name  string `json:"name"`
				Alias string `json:"alias,omitempty"`
			} `json:"names,omitempty"`
		} `json:"imports,omitempty"`
		TypeAliases []struct {
			Name string          `json:"name"`
			Type json.RawMessage `json:"type"`
		} `json:"type_aliases,omitempty"`
		Classes   []json.RawMessage `json:"classes,omitempty"`
		Constants []struct {
			Name  string          `json:"name"`
			Type  json.RawMessage `json:"type,omitempty"`
			Value json.RawMessage `json:"value"`
		} `json:"constants,omitempty"`
		Functions []json.RawMessage `json:"functions,omitempty"`
		TopLevel  []json.RawMessage `json:"top_level,omitempty"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "decoding HIR module")
	}

	m := &Module{Name: raw.Name}

	for _, imp := range raw.Imports {
		hi := Import{Module: imp.Module}
		for _, n := range imp.Names {
			hi.Names = append(hi.Names, ImportName{Name: n.Name, Alias: n.Alias})
		}
		m.Imports = append(m.Imports, hi)
	}

	for _, ta := range raw.TypeAliases {
		t, err := decodeType(ta.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "type alias %s", ta.Name)
		}
		m.TypeAliases = append(m.TypeAliases, TypeAlias{Name: ta.Name, Type: t})
	}

	for _, c := range raw.Constants {
		v, err := decodeExpr(c.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "constant %s", c.Name)
		}
		var t Type
		if len(c.Type) > 0 {
			if t, err = decodeType(c.Type); err != nil {
				return nil, errors.Wrapf(err, "constant %s", c.Name)
			}
		}
		m.Constants = append(m.Constants, Constant{Name: c.Name, Type: t, Value: v})
	}

	for _, cr := range raw.Classes {
		c, err := decodeClass(cr)
		if err != nil {
			return nil, err
		}
		m.Classes = append(m.Classes, c)
	}

	for _, fr := range raw.Functions {
		f, err := decodeFunction(fr)
		if err != nil {
			return nil, err
		}
		m.Functions = append(m.Functions, f)
	}

	for _, sr := range raw.TopLevel {
		s, err := decodeStmt(sr)
		if err != nil {
			return nil, errors.Wrap(err, "top-level statement")
		}
		m.TopLevel = append(m.TopLevel, s)
	}

	return m, nil
}

func decodeClass(data json.RawMessage) (*Class, error) {
	var raw struct {
		Name   string   `json:"name"`
		Bases  []string `json:"bases,omitempty"`
		Fields []struct {
			Name    string          `json:"name"`
			Type    json.RawMessage `json:"type"`
			Default json.RawMessage `json:"default,omitempty"`
		} `json:"fields,omitempty"`
		Methods     []json.RawMessage `json:"methods,omitempty"`
		IsDataclass bool              `json:"is_dataclass,omitempty"`
		IsEnum      bool              `json:"is_enum,omitempty"`
		Docstring   string            `json:"docstring,omitempty"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "decoding class")
	}

	c := &Class{
		Name:        raw.Name,
		Bases:       raw.Bases,
		IsDataclass: raw.IsDataclass,
		IsEnum:      raw.IsEnum,
		Docstring:   raw.Docstring,
	}

	for _, fld := range raw.Fields {
		t, err := decodeType(fld.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "class %s field %s", raw.Name, fld.Name)
		}
		cf := ClassField{Name: fld.Name, Type: t}
		if len(fld.Default) > 0 {
			if cf.Default, err = decodeExpr(fld.Default); err != nil {
				return nil, errors.Wrapf(err, "class %s field %s default", raw.Name, fld.Name)
			}
		}
		c.Fields = append(c.Fields, cf)
	}

	for _, mr := range raw.Methods {
		meth, err := decodeFunction(mr)
		if err != nil {
			return nil, errors.Wrapf(err, "class %s", raw.Name)
		}
		c.Methods = append(c.Methods, meth)
	}

	return c, nil
}

func decodeFunction(data json.RawMessage) (*Function, error) {
	var raw struct {
		Name   string `json:"name"`
		Params []struct {
			Name string          `json:"name"`
			Type json.RawMessage `json:"type,omitempty"`
		} `json:"params,omitempty"`
		Ret        json.RawMessage   `json:"ret,omitempty"`
		Body       []json.RawMessage `json:"body,omitempty"`
		Properties struct {
			IsPure           bool `json:"is_pure,omitempty"`
			AlwaysTerminates bool `json:"always_terminates,omitempty"`
			PanicFree        bool `json:"panic_free,omitempty"`
			CanFail          bool `json:"can_fail,omitempty"`
			IsAsync          bool `json:"is_async,omitempty"`
		} `json:"properties,omitempty"`
		Annotations struct {
			OptimizationLevel string `json:"optimization_level,omitempty"`
			PerformanceHints  []struct {
				Kind   string `json:"kind"`
				Factor int    `json:"factor,omitempty"`
			} `json:"performance_hints,omitempty"`
			BoundsChecking string `json:"bounds_checking,omitempty"`
			InlinePolicy   string `json:"inline_policy,omitempty"`
		} `json:"annotations,omitempty"`
		Docstring string `json:"docstring,omitempty"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "decoding function")
	}

	f := &Function{Name: raw.Name, Docstring: raw.Docstring}
	f.Properties = FunctionProperties{
		IsPure:           raw.Properties.IsPure,
		AlwaysTerminates: raw.Properties.AlwaysTerminates,
		PanicFree:        raw.Properties.PanicFree,
		CanFail:          raw.Properties.CanFail,
		IsAsync:          raw.Properties.IsAsync,
	}

	for _, p := range raw.Params {
		t := Type(&UnknownType{})
		if len(p.Type) > 0 {
			var err error
			if t, err = decodeType(p.Type); err != nil {
				return nil, errors.Wrapf(err, "function %s param %s", raw.Name, p.Name)
			}
		}
		f.Params = append(f.Params, Param{Name: p.Name, Type: t})
	}

	f.RetType = Type(&NoneType{})
	if len(raw.Ret) > 0 {
		var err error
		if f.RetType, err = decodeType(raw.Ret); err != nil {
			return nil, errors.Wrapf(err, "function %s return type", raw.Name)
		}
	}

	for _, sr := range raw.Body {
		s, err := decodeStmt(sr)
		if err != nil {
			return nil, errors.Wrapf(err, "function %s", raw.Name)
		}
		f.Body = append(f.Body, s)
	}

	switch raw.Annotations.OptimizationLevel {
	case "", "conservative":
		f.Annotations.OptimizationLevel = OptConservative
	case "standard":
		f.Annotations.OptimizationLevel = OptStandard
	case "aggressive":
		f.Annotations.OptimizationLevel = OptAggressive
	default:
		return nil, errors.Errorf("function %s: unknown optimization level %q", raw.Name, raw.Annotations.OptimizationLevel)
	}

	switch raw.Annotations.BoundsChecking {
	case "", "enabled":
		f.Annotations.BoundsChecking = BoundsEnabled
	case "disabled":
		f.Annotations.BoundsChecking = BoundsDisabled
	case "explicit":
		f.Annotations.BoundsChecking = BoundsExplicit
	default:
		return nil, errors.Errorf("function %s: unknown bounds policy %q", raw.Name, raw.Annotations.BoundsChecking)
	}

	switch raw.Annotations.InlinePolicy {
	case "", "auto":
		f.Annotations.InlinePolicy = InlineAuto
	case "always":
		f.Annotations.InlinePolicy = InlineAlways
	case "never":
		f.Annotations.InlinePolicy = InlineNever
	default:
		return nil, errors.Errorf("function %s: unknown inline policy %q", raw.Name, raw.Annotations.InlinePolicy)
	}

	for _, h := range raw.Annotations.PerformanceHints {
		var kind PerfHintKind
		switch h.Kind {
		case "vectorize":
			kind = HintVectorize
		case "unroll_loops":
			kind = HintUnrollLoops
		case "optimize_for_latency":
			kind = HintOptimizeForLatency
		case "optimize_for_throughput":
			kind = HintOptimizeForThroughput
		case "performance_critical":
			kind = HintPerformanceCritical
		default:
			return nil, errors.Errorf("function %s: unknown performance hint %q", raw.Name, h.Kind)
		}
		f.Annotations.PerformanceHints = append(f.Annotations.PerformanceHints, PerformanceHint{Kind: kind, Factor: h.Factor})
	}

	return f, nil
}

// ====== Types ======

func decodeType(data json.RawMessage) (Type, error) {
	var raw struct {
		Kind   string            `json:"kind"`
		Elem   json.RawMessage   `json:"elem,omitempty"`
		Key    json.RawMessage   `json:"key,omitempty"`
		Value  json.RawMessage   `json:"value,omitempty"`
		Items  []json.RawMessage `json:"items,omitempty"`
		Params []json.RawMessage `json:"params,omitempty"`
		Ret    json.RawMessage   `json:"ret,omitempty"`
		Size   json.RawMessage   `json:"size,omitempty"`
		Name   string            `json:"name,omitempty"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "decoding type")
	}

	switch raw.Kind {
	case "int":
		return &IntType{}, nil
	case "float":
		return &FloatType{}, nil
	case "bool":
		return &BoolType{}, nil
	case "string":
		return &StringType{}, nil
	case "none":
		return &NoneType{}, nil
	case "unknown":
		return &UnknownType{}, nil
	case "list":
		elem, err := decodeType(raw.Elem)
		if err != nil {
			return nil, err
		}
		return &ListType{Elem: elem}, nil
	case "set":
		elem, err := decodeType(raw.Elem)
		if err != nil {
			return nil, err
		}
		return &SetType{Elem: elem}, nil
	case "dict":
		key, err := decodeType(raw.Key)
		if err != nil {
			return nil, err
		}
		val, err := decodeType(raw.Value)
		if err != nil {
			return nil, err
		}
		return &DictType{Key: key, Value: val}, nil
	case "tuple":
		items, err := decodeTypeList(raw.Items)
		if err != nil {
			return nil, err
		}
		return &TupleType{Items: items}, nil
	case "optional":
		elem, err := decodeType(raw.Elem)
		if err != nil {
			return nil, err
		}
		return &OptionalType{Elem: elem}, nil
	case "union":
		items, err := decodeTypeList(raw.Items)
		if err != nil {
			return nil, err
		}
		return &UnionType{Items: items}, nil
	case "array":
		elem, err := decodeType(raw.Elem)
		if err != nil {
			return nil, err
		}
		size, err := decodeConstGeneric(raw.Size)
		if err != nil {
			return nil, err
		}
		return &ArrayType{Elem: elem, Size: size}, nil
	case "custom":
		return &CustomType{Name: raw.Name}, nil
	case "typevar":
		return &TypeVarType{Name: raw.Name}, nil
	case "callable":
		params, err := decodeTypeList(raw.Params)
		if err != nil {
			return nil, err
		}
		ret, err := decodeType(raw.Ret)
		if err != nil {
			return nil, err
		}
		return &CallableType{Params: params, Ret: ret}, nil
	default:
		return nil, errors.Errorf("unknown type kind %q", raw.Kind)
	}
}

func decodeTypeList(items []json.RawMessage) ([]Type, error) {
	out := make([]Type, 0, len(items))
	for _, it := range items {
		t, err := decodeType(it)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}

	return out, nil
}

func decodeConstGeneric(data json.RawMessage) (ConstGeneric, error) {
	var raw struct {
		Kind  string `json:"kind"`
		Value int    `json:"value,omitempty"`
		Name  string `json:"name,omitempty"`
		Text  string `json:"text,omitempty"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "decoding const generic")
	}

	switch raw.Kind {
	case "literal":
		return &ConstLiteral{Value: raw.Value}, nil
	case "parameter":
		return &ConstParam{Name: raw.Name}, nil
	case "expression":
		return &ConstExpr{Text: raw.Text}, nil
	default:
		return nil, errors.Errorf("unknown const generic kind %q", raw.Kind)
	}
}

// ====== Statements ======

type rawStmt struct {
	Kind       string            `json:"kind"`
	Target     json.RawMessage   `json:"target,omitempty"`
	Value      json.RawMessage   `json:"value,omitempty"`
	Annotation json.RawMessage   `json:"annotation,omitempty"`
	Cond       json.RawMessage   `json:"cond,omitempty"`
	Then       []json.RawMessage `json:"then,omitempty"`
	Else       []json.RawMessage `json:"else,omitempty"`
	Body       []json.RawMessage `json:"body,omitempty"`
	Iter       json.RawMessage   `json:"iter,omitempty"`
	Context    json.RawMessage   `json:"context,omitempty"`
	Name       string            `json:"name,omitempty"`
	Handlers   []struct {
		ExcType string            `json:"exc_type,omitempty"`
		Name    string            `json:"name,omitempty"`
		Body    []json.RawMessage `json:"body,omitempty"`
	} `json:"handlers,omitempty"`
	Orelse  []json.RawMessage `json:"orelse,omitempty"`
	Finally []json.RawMessage `json:"finally,omitempty"`
	Label   string            `json:"label,omitempty"`
	Exc     json.RawMessage   `json:"exc,omitempty"`
	Cause   json.RawMessage   `json:"cause,omitempty"`
}

func decodeStmt(data json.RawMessage) (Stmt, error) {
	var raw rawStmt
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "decoding statement")
	}

	switch raw.Kind {
	case "assign":
		target, err := decodeTarget(raw.Target)
		if err != nil {
			return nil, err
		}
		value, err := decodeExpr(raw.Value)
		if err != nil {
			return nil, err
		}
		st := &AssignStmt{Target: target, Value: value}
		if len(raw.Annotation) > 0 {
			if st.Annotation, err = decodeType(raw.Annotation); err != nil {
				return nil, err
			}
		}
		return st, nil
	case "return":
		st := &ReturnStmt{}
		if len(raw.Value) > 0 {
			var err error
			if st.Value, err = decodeExpr(raw.Value); err != nil {
				return nil, err
			}
		}
		return st, nil
	case "if":
		cond, err := decodeExpr(raw.Cond)
		if err != nil {
			return nil, err
		}
		then, err := decodeStmtList(raw.Then)
		if err != nil {
			return nil, err
		}
		els, err := decodeStmtList(raw.Else)
		if err != nil {
			return nil, err
		}
		return &IfStmt{Cond: cond, Then: then, Else: els}, nil
	case "while":
		cond, err := decodeExpr(raw.Cond)
		if err != nil {
			return nil, err
		}
		body, err := decodeStmtList(raw.Body)
		if err != nil {
			return nil, err
		}
		return &WhileStmt{Cond: cond, Body: body}, nil
	case "for":
		target, err := decodeTarget(raw.Target)
		if err != nil {
			return nil, err
		}
		iter, err := decodeExpr(raw.Iter)
		if err != nil {
			return nil, err
		}
		body, err := decodeStmtList(raw.Body)
		if err != nil {
			return nil, err
		}
		return &ForStmt{Target: target, Iter: iter, Body: body}, nil
	case "with":
		ctx, err := decodeExpr(raw.Context)
		if err != nil {
			return nil, err
		}
		body, err := decodeStmtList(raw.Body)
		if err != nil {
			return nil, err
		}
		return &WithStmt{Context: ctx, Target: raw.Name, Body: body}, nil
	case "try":
		body, err := decodeStmtList(raw.Body)
		if err != nil {
			return nil, err
		}
		st := &TryStmt{Body: body}
		for _, h := range raw.Handlers {
			hb, err := decodeStmtList(h.Body)
			if err != nil {
				return nil, err
			}
			st.Handlers = append(st.Handlers, ExceptHandler{ExcType: h.ExcType, Name: h.Name, Body: hb})
		}
		if st.Orelse, err = decodeStmtList(raw.Orelse); err != nil {
			return nil, err
		}
		if st.Finally, err = decodeStmtList(raw.Finally); err != nil {
			return nil, err
		}
		return st, nil
	case "expr":
		value, err := decodeExpr(raw.Value)
		if err != nil {
			return nil, err
		}
		return &ExprStmt{Value: value}, nil
	case "pass":
		return &PassStmt{}, nil
	case "break":
		return &BreakStmt{Label: raw.Label}, nil
	case "continue":
		return &ContinueStmt{Label: raw.Label}, nil
	case "raise":
		st := &RaiseStmt{}
		var err error
		if len(raw.Exc) > 0 {
			if st.Exc, err = decodeExpr(raw.Exc); err != nil {
				return nil, err
			}
		}
		if len(raw.Cause) > 0 {
			if st.Cause, err = decodeExpr(raw.Cause); err != nil {
				return nil, err
			}
		}
		return st, nil
	default:
		return nil, errors.Errorf("unknown statement kind %q", raw.Kind)
	}
}

func decodeStmtList(items []json.RawMessage) ([]Stmt, error) {
	if len(items) == 0 {
		return nil, nil
	}

	out := make([]Stmt, 0, len(items))
	for _, it := range items {
		s, err := decodeStmt(it)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}

	return out, nil
}

func decodeTarget(data json.RawMessage) (AssignTarget, error) {
	var raw struct {
		Kind    string            `json:"kind"`
		Name    string            `json:"name,omitempty"`
		Base    json.RawMessage   `json:"base,omitempty"`
		Index   json.RawMessage   `json:"index,omitempty"`
		Value   json.RawMessage   `json:"value,omitempty"`
		Attr    string            `json:"attr,omitempty"`
		Targets []json.RawMessage `json:"targets,omitempty"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "decoding assign target")
	}

	switch raw.Kind {
	case "symbol":
		return &SymbolTarget{Name: raw.Name}, nil
	case "index":
		base, err := decodeExpr(raw.Base)
		if err != nil {
			return nil, err
		}
		index, err := decodeExpr(raw.Index)
		if err != nil {
			return nil, err
		}
		return &IndexTarget{Base: base, Index: index}, nil
	case "attribute":
		value, err := decodeExpr(raw.Value)
		if err != nil {
			return nil, err
		}
		return &AttributeTarget{Value: value, Attr: raw.Attr}, nil
	case "tuple":
		tt := &TupleTarget{}
		for _, sub := range raw.Targets {
			t, err := decodeTarget(sub)
			if err != nil {
				return nil, err
			}
			tt.Targets = append(tt.Targets, t)
		}
		return tt, nil
	default:
		return nil, errors.Errorf("unknown assign target kind %q", raw.Kind)
	}
}

// ====== Expressions ======

type rawExpr struct {
	Kind    string            `json:"kind"`
	Value   json.RawMessage   `json:"value,omitempty"`
	Name    string            `json:"name,omitempty"`
	Op      string            `json:"op,omitempty"`
	Left    json.RawMessage   `json:"left,omitempty"`
	Right   json.RawMessage   `json:"right,omitempty"`
	Operand json.RawMessage   `json:"operand,omitempty"`
	Func    string            `json:"func,omitempty"`
	Object  json.RawMessage   `json:"object,omitempty"`
	Method  string            `json:"method,omitempty"`
	Callee  json.RawMessage   `json:"callee,omitempty"`
	Args    []json.RawMessage `json:"args,omitempty"`
	Kwargs  []struct {
		Name  string          `json:"name"`
		Value json.RawMessage `json:"value"`
	} `json:"kwargs,omitempty"`
	Base       json.RawMessage   `json:"base,omitempty"`
	Index      json.RawMessage   `json:"index,omitempty"`
	Start      json.RawMessage   `json:"start,omitempty"`
	Stop       json.RawMessage   `json:"stop,omitempty"`
	Step       json.RawMessage   `json:"step,omitempty"`
	Elems      []json.RawMessage `json:"elems,omitempty"`
	Items      []struct {
		Key   json.RawMessage `json:"key"`
		Value json.RawMessage `json:"value"`
	} `json:"items,omitempty"`
	Element    json.RawMessage `json:"element,omitempty"`
	Key        json.RawMessage `json:"key,omitempty"`
	Generators []struct {
		Targets    []string          `json:"targets"`
		Iter       json.RawMessage   `json:"iter"`
		Conditions []json.RawMessage `json:"conditions,omitempty"`
	} `json:"generators,omitempty"`
	Params    []string        `json:"params,omitempty"`
	Body      json.RawMessage `json:"body,omitempty"`
	Test      json.RawMessage `json:"test,omitempty"`
	Orelse    json.RawMessage `json:"orelse,omitempty"`
	Attr      string          `json:"attr,omitempty"`
	Expr      json.RawMessage `json:"expr,omitempty"`
	Mutable   bool            `json:"mutable,omitempty"`
	Parts     []struct {
		Literal string          `json:"literal,omitempty"`
		Expr    json.RawMessage `json:"expr,omitempty"`
	} `json:"parts,omitempty"`
	Iterable  json.RawMessage `json:"iterable,omitempty"`
	KeyParams []string        `json:"key_params,omitempty"`
	KeyBody   json.RawMessage `json:"key_body,omitempty"`
	Reverse   bool            `json:"reverse,omitempty"`
}

func decodeExpr(data json.RawMessage) (Expr, error) {
	var raw rawExpr
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "decoding expression")
	}

	switch raw.Kind {
	case "literal":
		lit, err := decodeLiteral(raw.Value)
		if err != nil {
			return nil, err
		}
		return &LiteralExpr{Value: lit}, nil
	case "var":
		return &VarExpr{Name: raw.Name}, nil
	case "binary":
		op, err := parseBinaryOp(raw.Op)
		if err != nil {
			return nil, err
		}
		left, err := decodeExpr(raw.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeExpr(raw.Right)
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{Op: op, Left: left, Right: right}, nil
	case "unary":
		op, err := parseUnaryOp(raw.Op)
		if err != nil {
			return nil, err
		}
		operand, err := decodeExpr(raw.Operand)
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: op, Operand: operand}, nil
	case "call":
		args, err := decodeExprList(raw.Args)
		if err != nil {
			return nil, err
		}
		kwargs, err := decodeKwargs(raw.Kwargs)
		if err != nil {
			return nil, err
		}
		return &CallExpr{Func: raw.Func, Args: args, Kwargs: kwargs}, nil
	case "method_call":
		obj, err := decodeExpr(raw.Object)
		if err != nil {
			return nil, err
		}
		args, err := decodeExprList(raw.Args)
		if err != nil {
			return nil, err
		}
		kwargs, err := decodeKwargs(raw.Kwargs)
		if err != nil {
			return nil, err
		}
		return &MethodCallExpr{Object: obj, Method: raw.Method, Args: args, Kwargs: kwargs}, nil
	case "dynamic_call":
		callee, err := decodeExpr(raw.Callee)
		if err != nil {
			return nil, err
		}
		args, err := decodeExprList(raw.Args)
		if err != nil {
			return nil, err
		}
		kwargs, err := decodeKwargs(raw.Kwargs)
		if err != nil {
			return nil, err
		}
		return &DynamicCallExpr{Callee: callee, Args: args, Kwargs: kwargs}, nil
	case "index":
		base, err := decodeExpr(raw.Base)
		if err != nil {
			return nil, err
		}
		index, err := decodeExpr(raw.Index)
		if err != nil {
			return nil, err
		}
		return &IndexExpr{Base: base, Index: index}, nil
	case "slice":
		base, err := decodeExpr(raw.Base)
		if err != nil {
			return nil, err
		}
		se := &SliceExpr{Base: base}
		if len(raw.Start) > 0 {
			if se.Start, err = decodeExpr(raw.Start); err != nil {
				return nil, err
			}
		}
		if len(raw.Stop) > 0 {
			if se.Stop, err = decodeExpr(raw.Stop); err != nil {
				return nil, err
			}
		}
		if len(raw.Step) > 0 {
			if se.Step, err = decodeExpr(raw.Step); err != nil {
				return nil, err
			}
		}
		return se, nil
	case "list":
		elems, err := decodeExprList(raw.Elems)
		if err != nil {
			return nil, err
		}
		return &ListExpr{Elems: elems}, nil
	case "dict":
		de := &DictExpr{}
		for _, it := range raw.Items {
			k, err := decodeExpr(it.Key)
			if err != nil {
				return nil, err
			}
			v, err := decodeExpr(it.Value)
			if err != nil {
				return nil, err
			}
			de.Items = append(de.Items, DictItem{Key: k, Value: v})
		}
		return de, nil
	case "tuple":
		elems, err := decodeExprList(raw.Elems)
		if err != nil {
			return nil, err
		}
		return &TupleExpr{Elems: elems}, nil
	case "set":
		elems, err := decodeExprList(raw.Elems)
		if err != nil {
			return nil, err
		}
		return &SetExpr{Elems: elems}, nil
	case "frozenset":
		elems, err := decodeExprList(raw.Elems)
		if err != nil {
			return nil, err
		}
		return &FrozenSetExpr{Elems: elems}, nil
	case "list_comp", "set_comp", "generator_exp":
		element, err := decodeExpr(raw.Element)
		if err != nil {
			return nil, err
		}
		gens, err := decodeGenerators(raw.Generators)
		if err != nil {
			return nil, err
		}
		switch raw.Kind {
		case "list_comp":
			return &ListCompExpr{Element: element, Generators: gens}, nil
		case "set_comp":
			return &SetCompExpr{Element: element, Generators: gens}, nil
		default:
			return &GeneratorExpExpr{Element: element, Generators: gens}, nil
		}
	case "dict_comp":
		key, err := decodeExpr(raw.Key)
		if err != nil {
			return nil, err
		}
		value, err := decodeExpr(raw.Value)
		if err != nil {
			return nil, err
		}
		gens, err := decodeGenerators(raw.Generators)
		if err != nil {
			return nil, err
		}
		return &DictCompExpr{Key: key, Value: value, Generators: gens}, nil
	case "lambda":
		body, err := decodeExpr(raw.Body)
		if err != nil {
			return nil, err
		}
		return &LambdaExpr{Params: raw.Params, Body: body}, nil
	case "if_expr":
		test, err := decodeExpr(raw.Test)
		if err != nil {
			return nil, err
		}
		body, err := decodeExpr(raw.Body)
		if err != nil {
			return nil, err
		}
		orelse, err := decodeExpr(raw.Orelse)
		if err != nil {
			return nil, err
		}
		return &IfExpr{Test: test, Body: body, Orelse: orelse}, nil
	case "attribute":
		value, err := decodeExpr(raw.Value)
		if err != nil {
			return nil, err
		}
		return &AttributeExpr{Value: value, Attr: raw.Attr}, nil
	case "borrow":
		inner, err := decodeExpr(raw.Expr)
		if err != nil {
			return nil, err
		}
		return &BorrowExpr{Expr: inner, Mutable: raw.Mutable}, nil
	case "await":
		value, err := decodeExpr(raw.Value)
		if err != nil {
			return nil, err
		}
		return &AwaitExpr{Value: value}, nil
	case "fstring":
		fe := &FStringExpr{}
		for _, p := range raw.Parts {
			part := FStringPart{Literal: p.Literal}
			if len(p.Expr) > 0 {
				var err error
				if part.Expr, err = decodeExpr(p.Expr); err != nil {
					return nil, err
				}
			}
			fe.Parts = append(fe.Parts, part)
		}
		return fe, nil
	case "sort_by_key":
		iterable, err := decodeExpr(raw.Iterable)
		if err != nil {
			return nil, err
		}
		keyBody, err := decodeExpr(raw.KeyBody)
		if err != nil {
			return nil, err
		}
		return &SortByKeyExpr{Iterable: iterable, KeyParams: raw.KeyParams, KeyBody: keyBody, Reverse: raw.Reverse}, nil
	default:
		return nil, errors.Errorf("unknown expression kind %q", raw.Kind)
	}
}

func decodeExprList(items []json.RawMessage) ([]Expr, error) {
	if len(items) == 0 {
		return nil, nil
	}

	out := make([]Expr, 0, len(items))
	for _, it := range items {
		e, err := decodeExpr(it)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}

	return out, nil
}

func decodeKwargs(raw []struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
},
) ([]Kwarg, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	out := make([]Kwarg, 0, len(raw))
	for _, k := range raw {
		v, err := decodeExpr(k.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, Kwarg{Name: k.Name, Value: v})
	}

	return out, nil
}

func decodeGenerators(raw []struct {
	Targets    []string          `json:"targets"`
	Iter       json.RawMessage   `json:"iter"`
	Conditions []json.RawMessage `json:"conditions,omitempty"`
},
) ([]Comprehension, error) {
	out := make([]Comprehension, 0, len(raw))
	for _, g := range raw {
		iter, err := decodeExpr(g.Iter)
		if err != nil {
			return nil, err
		}
		conds, err := decodeExprList(g.Conditions)
		if err != nil {
			return nil, err
		}
		out = append(out, Comprehension{Targets: g.Targets, Iter: iter, Conditions: conds})
	}

	return out, nil
}

func decodeLiteral(data json.RawMessage) (Literal, error) {
	var raw struct {
		Kind  string          `json:"kind"`
		Value json.RawMessage `json:"value,omitempty"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "decoding literal")
	}

	switch raw.Kind {
	case "int":
		var v int64
		if err := json.Unmarshal(raw.Value, &v); err != nil {
			return nil, errors.Wrap(err, "decoding int literal")
		}
		return &IntLit{Value: v}, nil
	case "float":
		var v float64
		if err := json.Unmarshal(raw.Value, &v); err != nil {
			return nil, errors.Wrap(err, "decoding float literal")
		}
		return &FloatLit{Value: v}, nil
	case "string":
		var v string
		if err := json.Unmarshal(raw.Value, &v); err != nil {
			return nil, errors.Wrap(err, "decoding string literal")
		}
		return &StringLit{Value: v}, nil
	case "bool":
		var v bool
		if err := json.Unmarshal(raw.Value, &v); err != nil {
			return nil, errors.Wrap(err, "decoding bool literal")
		}
		return &BoolLit{Value: v}, nil
	case "none":
		return &NoneLit{}, nil
	default:
		return nil, errors.Errorf("unknown literal kind %q", raw.Kind)
	}
}

func parseBinaryOp(s string) (BinaryOp, error) {
	switch s {
	case "+":
		return OpAdd, nil
	case "-":
		return OpSub, nil
	case "*":
		return OpMul, nil
	case "/":
		return OpDiv, nil
	case "//":
		return OpFloorDiv, nil
	case "%":
		return OpMod, nil
	case "**":
		return OpPow, nil
	case "==":
		return OpEq, nil
	case "!=":
		return OpNotEq, nil
	case "<":
		return OpLt, nil
	case "<=":
		return OpLtEq, nil
	case ">":
		return OpGt, nil
	case ">=":
		return OpGtEq, nil
	case "and":
		return OpAnd, nil
	case "or":
		return OpOr, nil
	case "&":
		return OpBitAnd, nil
	case "|":
		return OpBitOr, nil
	case "^":
		return OpBitXor, nil
	case "<<":
		return OpLShift, nil
	case ">>":
		return OpRShift, nil
	case "in":
		return OpIn, nil
	case "not in":
		return OpNotIn, nil
	default:
		return 0, errors.Errorf("unknown binary operator %q", s)
	}
}

func parseUnaryOp(s string) (UnaryOp, error) {
	switch s {
	case "not":
		return OpNot, nil
	case "-":
		return OpNeg, nil
	case "+":
		return OpPos, nil
	case "~":
		return OpBitNot, nil
	default:
		return 0, errors.Errorf("unknown unary operator %q", s)
	}
}
