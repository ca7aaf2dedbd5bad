// Method call dispatch, keyed on method name and disambiguated by receiver
// type where Python reuses a name across containers (pop, remove, update,
// count, index).

package lowering

import (
	"fmt"

	"github.com/depyler-lang/depyler/internal/diagnostics"
	"github.com/depyler-lang/depyler/internal/hir"
	"github.com/depyler-lang/depyler/internal/rustast"
)

// knownModules are receiver names that denote imported modules rather than
// values; their method calls route through the module dispatcher.
var knownModules = map[string]bool{
	"math": true, "os": true, "re": true, "json": true, "numpy": true,
	"np": true, "hashlib": true, "base64": true, "csv": true, "random": true,
	"itertools": true, "collections": true, "datetime": true, "asyncio": true,
	"threading": true, "queue": true, "fnmatch": true, "colorsys": true,
	"pathlib": true, "tempfile": true, "sys": true, "time": true, "string": true,
}

func (c *Converter) convertMethodCall(e *hir.MethodCallExpr) (rustast.Expr, error) {
	if v, ok := e.Object.(*hir.VarExpr); ok && knownModules[v.Name] && !c.declared[v.Name] {
		return c.convertModuleCall(&hir.CallExpr{
			Func:   v.Name + "." + e.Method,
			Args:   e.Args,
			Kwargs: e.Kwargs,
		})
	}

	// Inside a classmethod, cls.m(...) is an associated call on Self.
	if v, ok := e.Object.(*hir.VarExpr); ok && v.Name == "cls" && c.isClassMethod {
		args, err := c.convertExprs(e.Args)
		if err != nil {
			return nil, err
		}
		return &rustast.Call{Func: "Self::" + e.Method, Args: args}, nil
	}

	// os.path.join style: the receiver is itself a module attribute.
	if attr, ok := e.Object.(*hir.AttributeExpr); ok {
		if v, ok := attr.Value.(*hir.VarExpr); ok && knownModules[v.Name] {
			return c.convertModuleCall(&hir.CallExpr{
				Func:   v.Name + "." + attr.Attr + "." + e.Method,
				Args:   e.Args,
				Kwargs: e.Kwargs,
			})
		}
	}

	recv, err := c.convertExpr(e.Object)
	if err != nil {
		return nil, err
	}

	recvT := c.exprType(e.Object)

	switch e.Method {
	// ====== String methods ======
	case "upper":
		return &rustast.MethodCall{Recv: recv, Method: "to_uppercase"}, nil
	case "lower":
		return &rustast.MethodCall{Recv: recv, Method: "to_lowercase"}, nil
	case "strip", "lstrip", "rstrip":
		return c.convertStrip(e, recv)
	case "startswith", "endswith":
		return c.convertAffix(e, recv)
	case "split":
		return c.convertSplit(e, recv)
	case "splitlines":
		return &rustast.Raw{Text: rustast.RenderExpr(recv) +
			".lines().map(|s| s.to_string()).collect::<Vec<String>>()"}, nil
	case "join":
		return c.convertJoin(e, recv)
	case "replace":
		return c.convertReplace(e, recv)
	case "find", "rfind":
		return c.convertFind(e, recv)
	case "format":
		return c.convertStrFormat(e)
	case "zfill":
		if err := c.checkMethodArity(e, 1, 1); err != nil {
			return nil, err
		}
		width, err := c.convertExpr(e.Args[0])
		if err != nil {
			return nil, err
		}
		return &rustast.MacroCall{Name: "format", Args: []rustast.Expr{
			&rustast.Lit{Text: `"{:0>1$}"`}, recv, &rustast.Cast{E: width, Ty: "usize"},
		}}, nil
	case "isdigit":
		return c.charsPredicate(recv, "is_ascii_digit"), nil
	case "isalpha":
		return c.charsPredicate(recv, "is_alphabetic"), nil
	case "isalnum":
		return c.charsPredicate(recv, "is_alphanumeric"), nil
	case "isspace":
		return c.charsPredicate(recv, "is_whitespace"), nil
	case "isupper":
		return c.charsPredicate(recv, "is_uppercase"), nil
	case "islower":
		return c.charsPredicate(recv, "is_lowercase"), nil
	case "capitalize":
		return &rustast.Raw{Text: "{ let _s = " + rustast.RenderExpr(recv) +
			"; let mut _cs = _s.chars(); match _cs.next() { Some(_f) => _f.to_uppercase().collect::<String>() + _cs.as_str(), None => String::new() } }"}, nil
	case "title":
		return &rustast.Raw{Text: rustast.RenderExpr(recv) +
			".split_whitespace().map(|w| { let mut _cs = w.chars(); match _cs.next() { Some(_f) => _f.to_uppercase().collect::<String>() + &_cs.as_str().to_lowercase(), None => String::new() } }).collect::<Vec<String>>().join(\" \")"}, nil
	case "encode":
		return &rustast.MethodCall{
			Recv:   &rustast.MethodCall{Recv: recv, Method: "as_bytes"},
			Method: "to_vec",
		}, nil

	// ====== Container methods ======
	case "append":
		if err := c.checkMethodArity(e, 1, 1); err != nil {
			return nil, err
		}
		arg, err := c.convertExpr(e.Args[0])
		if err != nil {
			return nil, err
		}
		return &rustast.MethodCall{Recv: recv, Method: "push", Args: []rustast.Expr{arg}}, nil
	case "pop":
		return c.convertPop(e, recv, recvT)
	case "insert":
		return c.convertInsert(e, recv, recvT)
	case "extend":
		if err := c.checkMethodArity(e, 1, 1); err != nil {
			return nil, err
		}
		arg, err := c.convertExpr(e.Args[0])
		if err != nil {
			return nil, err
		}
		if _, isDict := recvT.(*hir.DictType); isDict {
			arg = &rustast.MethodCall{Recv: arg, Method: "clone"}
		} else {
			arg = &rustast.MethodCall{
				Recv:   &rustast.MethodCall{Recv: arg, Method: "iter"},
				Method: "cloned",
			}
		}
		return &rustast.MethodCall{Recv: recv, Method: "extend", Args: []rustast.Expr{arg}}, nil
	case "remove":
		return c.convertRemove(e, recv, recvT)
	case "sort":
		return c.convertSortInPlace(e, recv, recvT)
	case "reverse":
		return &rustast.MethodCall{Recv: recv, Method: "reverse"}, nil
	case "index":
		return c.convertIndexMethod(e, recv)
	case "count":
		return c.convertCount(e, recv, recvT)
	case "clear":
		return &rustast.MethodCall{Recv: recv, Method: "clear"}, nil
	case "copy":
		return &rustast.MethodCall{Recv: recv, Method: "clone"}, nil

	// ====== Dict methods ======
	case "get":
		return c.convertDictGet(e, recv, recvT)
	case "keys":
		return &rustast.Raw{Text: rustast.RenderExpr(recv) + ".keys().cloned().collect::<Vec<_>>()"}, nil
	case "values":
		return &rustast.Raw{Text: rustast.RenderExpr(recv) + ".values().cloned().collect::<Vec<_>>()"}, nil
	case "items":
		return &rustast.Raw{Text: rustast.RenderExpr(recv) +
			".iter().map(|(_k, _v)| (_k.clone(), _v.clone())).collect::<Vec<_>>()"}, nil
	case "update":
		return c.convertUpdate(e, recv, recvT)
	case "setdefault":
		if err := c.checkMethodArity(e, 2, 2); err != nil {
			return nil, err
		}
		key, err := c.dictInsertKey(e.Args[0])
		if err != nil {
			return nil, err
		}
		def, err := c.convertExpr(e.Args[1])
		if err != nil {
			return nil, err
		}
		return &rustast.MethodCall{
			Recv: &rustast.MethodCall{
				Recv: &rustast.MethodCall{Recv: recv, Method: "entry", Args: []rustast.Expr{key}},
				Method: "or_insert",
				Args:   []rustast.Expr{def},
			},
			Method: "clone",
		}, nil

	// ====== Set methods ======
	case "add":
		if err := c.checkMethodArity(e, 1, 1); err != nil {
			return nil, err
		}
		arg, err := c.convertExpr(e.Args[0])
		if err != nil {
			return nil, err
		}
		return &rustast.MethodCall{Recv: recv, Method: "insert", Args: []rustast.Expr{arg}}, nil
	case "discard":
		if err := c.checkMethodArity(e, 1, 1); err != nil {
			return nil, err
		}
		arg, err := c.convertExpr(e.Args[0])
		if err != nil {
			return nil, err
		}
		return &rustast.MethodCall{Recv: recv, Method: "remove", Args: []rustast.Expr{&rustast.Ref{E: arg}}}, nil
	case "union", "intersection", "difference", "symmetric_difference":
		if err := c.checkMethodArity(e, 1, 1); err != nil {
			return nil, err
		}
		arg, err := c.convertExpr(e.Args[0])
		if err != nil {
			return nil, err
		}
		return &rustast.MethodCall{
			Recv: &rustast.MethodCall{
				Recv: &rustast.MethodCall{Recv: recv, Method: e.Method, Args: []rustast.Expr{&rustast.Ref{E: arg}}},
				Method: "cloned",
			},
			Method:    "collect",
			Turbofish: "::<HashSet<_>>",
		}, nil
	case "issubset", "issuperset", "isdisjoint":
		if err := c.checkMethodArity(e, 1, 1); err != nil {
			return nil, err
		}
		arg, err := c.convertExpr(e.Args[0])
		if err != nil {
			return nil, err
		}
		rust := map[string]string{
			"issubset": "is_subset", "issuperset": "is_superset", "isdisjoint": "is_disjoint",
		}[e.Method]
		return &rustast.MethodCall{Recv: recv, Method: rust, Args: []rustast.Expr{&rustast.Ref{E: arg}}}, nil

	// ====== File methods ======
	case "read":
		return &rustast.Raw{Text: "{ let mut _buf = String::new(); " + rustast.RenderExpr(recv) +
			".read_to_string(&mut _buf).expect(\"failed to read file\"); _buf }"}, nil
	case "readlines":
		return &rustast.Raw{Text: "{ let mut _buf = String::new(); " + rustast.RenderExpr(recv) +
			".read_to_string(&mut _buf).expect(\"failed to read file\"); _buf.lines().map(|s| s.to_string()).collect::<Vec<String>>() }"}, nil
	case "write":
		if err := c.checkMethodArity(e, 1, 1); err != nil {
			return nil, err
		}
		arg, err := c.convertExpr(e.Args[0])
		if err != nil {
			return nil, err
		}
		return &rustast.Raw{Text: rustast.RenderExpr(recv) + ".write_all(" +
			rustast.RenderExpr(arg) + ".as_bytes()).expect(\"failed to write file\")"}, nil
	case "writelines":
		if err := c.checkMethodArity(e, 1, 1); err != nil {
			return nil, err
		}
		arg, err := c.convertExpr(e.Args[0])
		if err != nil {
			return nil, err
		}
		return &rustast.Raw{Text: "for _line in &" + rustast.RenderExpr(arg) + " { " +
			rustast.RenderExpr(recv) + ".write_all(_line.as_bytes()).expect(\"failed to write file\"); }"}, nil
	case "close":
		return &rustast.Call{Func: "drop", Args: []rustast.Expr{recv}}, nil
	case "flush":
		return &rustast.Raw{Text: rustast.RenderExpr(recv) + ".flush().expect(\"failed to flush\")"}, nil

	// ====== Digest and datetime methods ======
	case "hexdigest":
		return &rustast.Raw{Text: "format!(\"{:x}\", " + rustast.RenderExpr(recv) + ".clone().finalize())"}, nil
	case "digest":
		return &rustast.Raw{Text: rustast.RenderExpr(recv) + ".clone().finalize().to_vec()"}, nil
	case "isoformat":
		if c.NASAMode {
			c.Diags.Warnf(diagnostics.LoweringIncomplete, c.fnName,
				"isoformat on SystemTime has no std rendering; seconds since epoch emitted")
			return &rustast.Raw{Text: rustast.RenderExpr(recv) +
				".duration_since(std::time::UNIX_EPOCH).expect(\"clock before epoch\").as_secs().to_string()"}, nil
		}
		return &rustast.MethodCall{Recv: recv, Method: "to_rfc3339"}, nil
	}

	// Method on a user class lowers verbatim.
	if ct, ok := recvT.(*hir.CustomType); ok {
		if _, known := c.classes[ct.Name]; known {
			args, err := c.methodArgsFor(ct.Name, e)
			if err != nil {
				return nil, err
			}
			return &rustast.MethodCall{Recv: recv, Method: e.Method, Args: args}, nil
		}
	}

	// Method call on self inside a class body.
	if v, ok := e.Object.(*hir.VarExpr); ok && v.Name == "self" {
		args, err := c.convertExprs(e.Args)
		if err != nil {
			return nil, err
		}
		return &rustast.MethodCall{Recv: recv, Method: e.Method, Args: args}, nil
	}

	c.Diags.Warnf(diagnostics.LoweringIncomplete, c.fnName,
		"method %s on %T receiver passed through", e.Method, recvT)

	args, err := c.convertExprs(e.Args)
	if err != nil {
		return nil, err
	}

	return &rustast.MethodCall{Recv: recv, Method: e.Method, Args: args}, nil
}

// methodArgsFor lowers arguments for a known class method, borrowing &mut
// where the method signature requires it.
func (c *Converter) methodArgsFor(className string, e *hir.MethodCallExpr) ([]rustast.Expr, error) {
	var target *hir.Function

	if cl, ok := c.classes[className]; ok {
		for _, m := range cl.Methods {
			if m.Name == e.Method {
				target = m
				break
			}
		}
	}

	args := make([]rustast.Expr, 0, len(e.Args))

	for i, a := range e.Args {
		conv, err := c.convertExpr(a)
		if err != nil {
			return nil, err
		}

		if target != nil && i+1 < len(target.Params) {
			p := target.Params[i+1] // skip self
			if p.NeedsMut && !rustast.IsCopy(c.Mapper.MapType(p.Type)) {
				conv = &rustast.Ref{Mut: true, E: conv}
			}
		}

		args = append(args, conv)
	}

	return args, nil
}

func (c *Converter) convertStrip(e *hir.MethodCallExpr, recv rustast.Expr) (rustast.Expr, error) {
	if err := c.checkMethodArity(e, 0, 1); err != nil {
		return nil, err
	}

	trim := map[string]string{"strip": "trim", "lstrip": "trim_start", "rstrip": "trim_end"}[e.Method]

	if len(e.Args) == 1 {
		trim += "_matches"
		if lit, ok := stringLiteral(e.Args[0]); ok {
			return &rustast.Raw{Text: fmt.Sprintf("%s.%s(|c: char| %q.contains(c)).to_string()",
				rustast.RenderExpr(recv), trim, lit)}, nil
		}
		arg, err := c.convertExpr(e.Args[0])
		if err != nil {
			return nil, err
		}
		return &rustast.Raw{Text: fmt.Sprintf("%s.%s(|c: char| %s.contains(c)).to_string()",
			rustast.RenderExpr(recv), trim, rustast.RenderExpr(arg))}, nil
	}

	return &rustast.MethodCall{
		Recv:   &rustast.MethodCall{Recv: recv, Method: trim},
		Method: "to_string",
	}, nil
}

func (c *Converter) convertAffix(e *hir.MethodCallExpr, recv rustast.Expr) (rustast.Expr, error) {
	if err := c.checkMethodArity(e, 1, 1); err != nil {
		return nil, err
	}

	method := "starts_with"
	if e.Method == "endswith" {
		method = "ends_with"
	}

	arg, err := c.strPatternArg(e.Args[0])
	if err != nil {
		return nil, err
	}

	return &rustast.MethodCall{Recv: recv, Method: method, Args: []rustast.Expr{arg}}, nil
}

// strPatternArg renders an argument in &str pattern position: literals pass
// verbatim, everything else by reference.
func (c *Converter) strPatternArg(a hir.Expr) (rustast.Expr, error) {
	if lit, ok := stringLiteral(a); ok {
		return &rustast.Lit{Text: fmt.Sprintf("%q", lit)}, nil
	}

	conv, err := c.convertExpr(a)
	if err != nil {
		return nil, err
	}

	return &rustast.Ref{E: conv}, nil
}

func (c *Converter) convertSplit(e *hir.MethodCallExpr, recv rustast.Expr) (rustast.Expr, error) {
	if err := c.checkMethodArity(e, 0, 2); err != nil {
		return nil, err
	}

	if len(e.Args) == 0 {
		return &rustast.Raw{Text: rustast.RenderExpr(recv) +
			".split_whitespace().map(|s| s.to_string()).collect::<Vec<String>>()"}, nil
	}

	sep, err := c.strPatternArg(e.Args[0])
	if err != nil {
		return nil, err
	}

	return &rustast.Raw{Text: fmt.Sprintf("%s.split(%s).map(|s| s.to_string()).collect::<Vec<String>>()",
		rustast.RenderExpr(recv), rustast.RenderExpr(sep))}, nil
}

// convertJoin flips sep.join(parts) into parts.join(sep).
func (c *Converter) convertJoin(e *hir.MethodCallExpr, recv rustast.Expr) (rustast.Expr, error) {
	if err := c.checkMethodArity(e, 1, 1); err != nil {
		return nil, err
	}

	var parts rustast.Expr

	// Generator and comprehension arguments first collect into a Vec.
	switch e.Args[0].(type) {
	case *hir.GeneratorExpExpr:
		chain, err := c.convertExpr(e.Args[0])
		if err != nil {
			return nil, err
		}
		parts = &rustast.MethodCall{Recv: chain, Method: "collect", Turbofish: "::<Vec<String>>"}
	default:
		var err error
		parts, err = c.convertExpr(e.Args[0])
		if err != nil {
			return nil, err
		}
	}

	sep := recv
	if lit, ok := stringLiteral(e.Object); ok {
		sep = &rustast.Lit{Text: fmt.Sprintf("%q", lit)}
	} else {
		sep = &rustast.Ref{E: recv}
	}

	return &rustast.MethodCall{Recv: parts, Method: "join", Args: []rustast.Expr{sep}}, nil
}

func (c *Converter) convertReplace(e *hir.MethodCallExpr, recv rustast.Expr) (rustast.Expr, error) {
	if err := c.checkMethodArity(e, 2, 2); err != nil {
		return nil, err
	}

	from, err := c.strPatternArg(e.Args[0])
	if err != nil {
		return nil, err
	}

	to, err := c.strPatternArg(e.Args[1])
	if err != nil {
		return nil, err
	}

	return &rustast.MethodCall{Recv: recv, Method: "replace", Args: []rustast.Expr{from, to}}, nil
}

// convertFind maps the -1-on-missing contract onto Option::map_or.
func (c *Converter) convertFind(e *hir.MethodCallExpr, recv rustast.Expr) (rustast.Expr, error) {
	if err := c.checkMethodArity(e, 1, 1); err != nil {
		return nil, err
	}

	arg, err := c.strPatternArg(e.Args[0])
	if err != nil {
		return nil, err
	}

	method := "find"
	if e.Method == "rfind" {
		method = "rfind"
	}

	return &rustast.Raw{Text: fmt.Sprintf("%s.%s(%s).map_or(-1, |i| i as %s)",
		rustast.RenderExpr(recv), method, rustast.RenderExpr(arg), c.Mapper.IntType())}, nil
}

// convertStrFormat handles "...".format(args) with positional {} holes.
func (c *Converter) convertStrFormat(e *hir.MethodCallExpr) (rustast.Expr, error) {
	lit, ok := stringLiteral(e.Object)
	if !ok {
		c.Diags.Warnf(diagnostics.LoweringIncomplete, c.fnName,
			"format on a non-literal template passed through")
		recv, err := c.convertExpr(e.Object)
		if err != nil {
			return nil, err
		}
		return recv, nil
	}

	args, err := c.convertExprs(e.Args)
	if err != nil {
		return nil, err
	}

	all := append([]rustast.Expr{&rustast.Lit{Text: fmt.Sprintf("%q", lit)}}, args...)

	return &rustast.MacroCall{Name: "format", Args: all}, nil
}

func (c *Converter) charsPredicate(recv rustast.Expr, pred string) rustast.Expr {
	text := rustast.RenderExpr(recv)

	return &rustast.Raw{Text: fmt.Sprintf("(!%s.is_empty() && %s.chars().all(|c| c.%s()))", text, text, pred)}
}

// convertPop disambiguates list pop (by index) from dict pop (by key).
func (c *Converter) convertPop(e *hir.MethodCallExpr, recv rustast.Expr, recvT hir.Type) (rustast.Expr, error) {
	if _, isDict := recvT.(*hir.DictType); isDict {
		if err := c.checkMethodArity(e, 1, 2); err != nil {
			return nil, err
		}
		key, err := c.dictLookupKey(e.Args[0])
		if err != nil {
			return nil, err
		}
		removed := &rustast.MethodCall{Recv: recv, Method: "remove", Args: []rustast.Expr{key}}
		if len(e.Args) == 2 {
			def, err := c.convertExpr(e.Args[1])
			if err != nil {
				return nil, err
			}
			return &rustast.MethodCall{Recv: removed, Method: "unwrap_or", Args: []rustast.Expr{def}}, nil
		}
		return &rustast.MethodCall{Recv: removed, Method: "expect",
			Args: []rustast.Expr{&rustast.Lit{Text: `"key not found"`}}}, nil
	}

	if err := c.checkMethodArity(e, 0, 1); err != nil {
		return nil, err
	}

	if len(e.Args) == 0 {
		return &rustast.MethodCall{
			Recv:   &rustast.MethodCall{Recv: recv, Method: "pop"},
			Method: "expect",
			Args:   []rustast.Expr{&rustast.Lit{Text: `"pop from empty list"`}},
		}, nil
	}

	idx, err := c.indexValue(e.Args[0])
	if err != nil {
		return nil, err
	}

	return &rustast.MethodCall{Recv: recv, Method: "remove", Args: []rustast.Expr{idx}}, nil
}

func (c *Converter) convertInsert(e *hir.MethodCallExpr, recv rustast.Expr, recvT hir.Type) (rustast.Expr, error) {
	if err := c.checkMethodArity(e, 2, 2); err != nil {
		return nil, err
	}

	idx, err := c.indexValue(e.Args[0])
	if err != nil {
		return nil, err
	}

	val, err := c.convertExpr(e.Args[1])
	if err != nil {
		return nil, err
	}

	return &rustast.MethodCall{Recv: recv, Method: "insert", Args: []rustast.Expr{idx, val}}, nil
}

// convertRemove is remove-by-value on lists, remove-by-element on sets.
func (c *Converter) convertRemove(e *hir.MethodCallExpr, recv rustast.Expr, recvT hir.Type) (rustast.Expr, error) {
	if err := c.checkMethodArity(e, 1, 1); err != nil {
		return nil, err
	}

	arg, err := c.convertExpr(e.Args[0])
	if err != nil {
		return nil, err
	}

	if _, isSet := recvT.(*hir.SetType); isSet {
		return &rustast.MethodCall{Recv: recv, Method: "remove", Args: []rustast.Expr{&rustast.Ref{E: arg}}}, nil
	}

	text := rustast.RenderExpr(recv)

	return &rustast.Raw{Text: fmt.Sprintf(
		"{ let _pos = %s.iter().position(|_v| *_v == %s).expect(\"value not found in list\"); %s.remove(_pos); }",
		text, rustast.RenderExpr(arg), text)}, nil
}

func (c *Converter) convertSortInPlace(e *hir.MethodCallExpr, recv rustast.Expr, recvT hir.Type) (rustast.Expr, error) {
	elemFloat := false
	if lt, ok := recvT.(*hir.ListType); ok {
		elemFloat = isFloatType(lt.Elem)
	}

	call := rustast.RenderExpr(recv) + ".sort()"
	if elemFloat {
		call = rustast.RenderExpr(recv) + ".sort_by(|a, b| a.partial_cmp(b).expect(\"incomparable floats\"))"
	}

	for _, kw := range e.Kwargs {
		if kw.Name == "reverse" {
			if lit, ok := kw.Value.(*hir.LiteralExpr); ok {
				if b, ok := lit.Value.(*hir.BoolLit); ok && b.Value {
					call += "; " + rustast.RenderExpr(recv) + ".reverse()"
				}
			}
		}
	}

	return &rustast.Raw{Text: call}, nil
}

func (c *Converter) convertIndexMethod(e *hir.MethodCallExpr, recv rustast.Expr) (rustast.Expr, error) {
	if err := c.checkMethodArity(e, 1, 1); err != nil {
		return nil, err
	}

	arg, err := c.convertExpr(e.Args[0])
	if err != nil {
		return nil, err
	}

	return &rustast.Raw{Text: fmt.Sprintf(
		"%s.iter().position(|_v| *_v == %s).expect(\"value not found in list\") as %s",
		rustast.RenderExpr(recv), rustast.RenderExpr(arg), c.Mapper.IntType())}, nil
}

func (c *Converter) convertCount(e *hir.MethodCallExpr, recv rustast.Expr, recvT hir.Type) (rustast.Expr, error) {
	if err := c.checkMethodArity(e, 1, 1); err != nil {
		return nil, err
	}

	if isStringType(recvT) {
		arg, err := c.strPatternArg(e.Args[0])
		if err != nil {
			return nil, err
		}
		return &rustast.Raw{Text: fmt.Sprintf("%s.matches(%s).count() as %s",
			rustast.RenderExpr(recv), rustast.RenderExpr(arg), c.Mapper.IntType())}, nil
	}

	arg, err := c.convertExpr(e.Args[0])
	if err != nil {
		return nil, err
	}

	return &rustast.Raw{Text: fmt.Sprintf("%s.iter().filter(|_v| **_v == %s).count() as %s",
		rustast.RenderExpr(recv), rustast.RenderExpr(arg), c.Mapper.IntType())}, nil
}

// convertDictGet lowers d.get(k) to an Option and d.get(k, default) to
// unwrap_or.
func (c *Converter) convertDictGet(e *hir.MethodCallExpr, recv rustast.Expr, recvT hir.Type) (rustast.Expr, error) {
	if err := c.checkMethodArity(e, 1, 2); err != nil {
		return nil, err
	}

	key, err := c.dictLookupKey(e.Args[0])
	if err != nil {
		return nil, err
	}

	got := &rustast.MethodCall{
		Recv: &rustast.MethodCall{Recv: recv, Method: "get", Args: []rustast.Expr{key}},
		Method: "cloned",
	}

	if len(e.Args) == 2 {
		def, err := c.convertExpr(e.Args[1])
		if err != nil {
			return nil, err
		}
		return &rustast.MethodCall{Recv: got, Method: "unwrap_or", Args: []rustast.Expr{def}}, nil
	}

	return got, nil
}

// convertUpdate is dict merge or hasher update depending on the receiver.
func (c *Converter) convertUpdate(e *hir.MethodCallExpr, recv rustast.Expr, recvT hir.Type) (rustast.Expr, error) {
	if err := c.checkMethodArity(e, 1, 1); err != nil {
		return nil, err
	}

	arg, err := c.convertExpr(e.Args[0])
	if err != nil {
		return nil, err
	}

	if _, isDict := recvT.(*hir.DictType); isDict {
		return &rustast.MethodCall{Recv: recv, Method: "extend",
			Args: []rustast.Expr{&rustast.MethodCall{Recv: arg, Method: "clone"}}}, nil
	}

	// Hasher update takes bytes.
	return &rustast.MethodCall{Recv: recv, Method: "update",
		Args: []rustast.Expr{&rustast.MethodCall{Recv: arg, Method: "as_bytes"}}}, nil
}

func (c *Converter) checkMethodArity(e *hir.MethodCallExpr, min, max int) error {
	if len(e.Args) < min || len(e.Args) > max {
		if min == max {
			return fmt.Errorf("%s expects %d arguments, got %d", e.Method, min, len(e.Args))
		}

		return fmt.Errorf("%s expects %d to %d arguments, got %d", e.Method, min, max, len(e.Args))
	}

	return nil
}
