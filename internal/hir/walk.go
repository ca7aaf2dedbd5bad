// Traversal helpers shared by the analysis passes.

package hir

// WalkStmts visits every statement in body pre-order, recursing into nested
// blocks.
func WalkStmts(body []Stmt, fn func(Stmt)) {
	for _, s := range body {
		walkStmt(s, fn)
	}
}

func walkStmt(s Stmt, fn func(Stmt)) {
	if s == nil {
		return
	}

	fn(s)

	switch st := s.(type) {
	case *IfStmt:
		WalkStmts(st.Then, fn)
		WalkStmts(st.Else, fn)
	case *WhileStmt:
		WalkStmts(st.Body, fn)
	case *ForStmt:
		WalkStmts(st.Body, fn)
	case *WithStmt:
		WalkStmts(st.Body, fn)
	case *TryStmt:
		WalkStmts(st.Body, fn)
		for _, h := range st.Handlers {
			WalkStmts(h.Body, fn)
		}
		WalkStmts(st.Orelse, fn)
		WalkStmts(st.Finally, fn)
	}
}

// WalkExpr visits e and every sub-expression pre-order.
func WalkExpr(e Expr, fn func(Expr)) {
	if e == nil {
		return
	}

	fn(e)

	switch ee := e.(type) {
	case *BinaryExpr:
		WalkExpr(ee.Left, fn)
		WalkExpr(ee.Right, fn)
	case *UnaryExpr:
		WalkExpr(ee.Operand, fn)
	case *CallExpr:
		for _, a := range ee.Args {
			WalkExpr(a, fn)
		}
		for _, k := range ee.Kwargs {
			WalkExpr(k.Value, fn)
		}
	case *MethodCallExpr:
		WalkExpr(ee.Object, fn)
		for _, a := range ee.Args {
			WalkExpr(a, fn)
		}
		for _, k := range ee.Kwargs {
			WalkExpr(k.Value, fn)
		}
	case *DynamicCallExpr:
		WalkExpr(ee.Callee, fn)
		for _, a := range ee.Args {
			WalkExpr(a, fn)
		}
		for _, k := range ee.Kwargs {
			WalkExpr(k.Value, fn)
		}
	case *IndexExpr:
		WalkExpr(ee.Base, fn)
		WalkExpr(ee.Index, fn)
	case *SliceExpr:
		WalkExpr(ee.Base, fn)
		WalkExpr(ee.Start, fn)
		WalkExpr(ee.Stop, fn)
		WalkExpr(ee.Step, fn)
	case *ListExpr:
		for _, el := range ee.Elems {
			WalkExpr(el, fn)
		}
	case *DictExpr:
		for _, it := range ee.Items {
			WalkExpr(it.Key, fn)
			WalkExpr(it.Value, fn)
		}
	case *TupleExpr:
		for _, el := range ee.Elems {
			WalkExpr(el, fn)
		}
	case *SetExpr:
		for _, el := range ee.Elems {
			WalkExpr(el, fn)
		}
	case *FrozenSetExpr:
		for _, el := range ee.Elems {
			WalkExpr(el, fn)
		}
	case *ListCompExpr:
		WalkExpr(ee.Element, fn)
		walkGenerators(ee.Generators, fn)
	case *SetCompExpr:
		WalkExpr(ee.Element, fn)
		walkGenerators(ee.Generators, fn)
	case *DictCompExpr:
		WalkExpr(ee.Key, fn)
		WalkExpr(ee.Value, fn)
		walkGenerators(ee.Generators, fn)
	case *GeneratorExpExpr:
		WalkExpr(ee.Element, fn)
		walkGenerators(ee.Generators, fn)
	case *LambdaExpr:
		WalkExpr(ee.Body, fn)
	case *IfExpr:
		WalkExpr(ee.Test, fn)
		WalkExpr(ee.Body, fn)
		WalkExpr(ee.Orelse, fn)
	case *AttributeExpr:
		WalkExpr(ee.Value, fn)
	case *BorrowExpr:
		WalkExpr(ee.Expr, fn)
	case *AwaitExpr:
		WalkExpr(ee.Value, fn)
	case *FStringExpr:
		for _, p := range ee.Parts {
			WalkExpr(p.Expr, fn)
		}
	case *SortByKeyExpr:
		WalkExpr(ee.Iterable, fn)
		WalkExpr(ee.KeyBody, fn)
	}
}

func walkGenerators(gens []Comprehension, fn func(Expr)) {
	for _, g := range gens {
		WalkExpr(g.Iter, fn)
		for _, c := range g.Conditions {
			WalkExpr(c, fn)
		}
	}
}

// WalkStmtExprs visits every expression directly referenced by s, without
// recursing into nested statement blocks. Combine with WalkStmts to cover a
// whole body.
func WalkStmtExprs(s Stmt, fn func(Expr)) {
	switch st := s.(type) {
	case *AssignStmt:
		walkTargetExprs(st.Target, fn)
		WalkExpr(st.Value, fn)
	case *ReturnStmt:
		WalkExpr(st.Value, fn)
	case *IfStmt:
		WalkExpr(st.Cond, fn)
	case *WhileStmt:
		WalkExpr(st.Cond, fn)
	case *ForStmt:
		WalkExpr(st.Iter, fn)
	case *WithStmt:
		WalkExpr(st.Context, fn)
	case *ExprStmt:
		WalkExpr(st.Value, fn)
	case *RaiseStmt:
		WalkExpr(st.Exc, fn)
		WalkExpr(st.Cause, fn)
	}
}

func walkTargetExprs(t AssignTarget, fn func(Expr)) {
	switch tt := t.(type) {
	case *IndexTarget:
		WalkExpr(tt.Base, fn)
		WalkExpr(tt.Index, fn)
	case *AttributeTarget:
		WalkExpr(tt.Value, fn)
	case *TupleTarget:
		for _, sub := range tt.Targets {
			walkTargetExprs(sub, fn)
		}
	}
}
