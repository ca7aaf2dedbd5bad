package hir

import "testing"

func TestVerifierAcceptsBoundNames(t *testing.T) {
	m := &Module{
		Name: "m",
		Functions: []*Function{{
			Name:   "f",
			Params: []Param{{Name: "x", Type: &IntType{}}},
			Body: []Stmt{
				&AssignStmt{Target: &SymbolTarget{Name: "y"}, Value: &VarExpr{Name: "x"}},
				&ReturnStmt{Value: &VarExpr{Name: "y"}},
			},
		}},
	}

	if err := VerifyModule(m); err != nil {
		t.Errorf("well-formed module rejected: %v", err)
	}
}

func TestVerifierRejectsUnboundVariable(t *testing.T) {
	m := &Module{
		Name: "m",
		Functions: []*Function{{
			Name: "f",
			Body: []Stmt{
				&ReturnStmt{Value: &VarExpr{Name: "phantom"}},
			},
		}},
	}

	if err := VerifyModule(m); err == nil {
		t.Error("unbound variable accepted")
	}
}

func TestVerifierResolvesModuleLevelNames(t *testing.T) {
	m := &Module{
		Name:      "m",
		Constants: []Constant{{Name: "LIMIT", Value: &LiteralExpr{Value: &IntLit{Value: 5}}}},
		Functions: []*Function{
			{Name: "helper"},
			{
				Name: "f",
				Body: []Stmt{
					&ReturnStmt{Value: &BinaryExpr{
						Op:    OpAdd,
						Left:  &VarExpr{Name: "LIMIT"},
						Right: &VarExpr{Name: "helper"},
					}},
				},
			},
		},
	}

	if err := VerifyModule(m); err != nil {
		t.Errorf("module-level names not resolved: %v", err)
	}
}

func TestVerifierRejectsAwaitOutsideAsync(t *testing.T) {
	m := &Module{
		Name: "m",
		Functions: []*Function{{
			Name: "f",
			Body: []Stmt{
				&ExprStmt{Value: &AwaitExpr{Value: &CallExpr{Func: "fetch"}}},
			},
		}},
	}

	if err := VerifyModule(m); err == nil {
		t.Error("await outside async accepted")
	}

	m.Functions[0].Properties.IsAsync = true
	if err := VerifyModule(m); err != nil {
		t.Errorf("await inside async rejected: %v", err)
	}
}

func TestVerifierRejectsUnboundIndexTarget(t *testing.T) {
	m := &Module{
		Name: "m",
		Functions: []*Function{{
			Name: "f",
			Body: []Stmt{
				&AssignStmt{
					Target: &IndexTarget{
						Base:  &VarExpr{Name: "ghost"},
						Index: &LiteralExpr{Value: &IntLit{Value: 0}},
					},
					Value: &LiteralExpr{Value: &IntLit{Value: 1}},
				},
			},
		}},
	}

	if err := VerifyModule(m); err == nil {
		t.Error("index assignment with unbound base accepted")
	}
}

func TestVerifierSeesLoopAndHandlerBindings(t *testing.T) {
	m := &Module{
		Name: "m",
		Functions: []*Function{{
			Name:   "f",
			Params: []Param{{Name: "items", Type: &ListType{Elem: &IntType{}}}},
			Body: []Stmt{
				&ForStmt{
					Target: &SymbolTarget{Name: "v"},
					Iter:   &VarExpr{Name: "items"},
					Body: []Stmt{
						&ExprStmt{Value: &VarExpr{Name: "v"}},
					},
				},
				&TryStmt{
					Body: []Stmt{&PassStmt{}},
					Handlers: []ExceptHandler{{
						Name: "err",
						Body: []Stmt{&ExprStmt{Value: &VarExpr{Name: "err"}}},
					}},
				},
			},
		}},
	}

	if err := VerifyModule(m); err != nil {
		t.Errorf("loop/handler bindings not resolved: %v", err)
	}
}
