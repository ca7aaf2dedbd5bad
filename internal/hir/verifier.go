// Structural verifier for HIR modules.
// Violations reported here indicate a bug in the AST bridge, not in user
// code; the pipeline treats them as hard aborts.

package hir

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Verifier validates the structural invariants every pass relies on:
// binding-before-use, assign-target resolution, and async/await pairing.
type Verifier struct {
	moduleNames map[string]bool
}

// NewVerifier creates a verifier for the given module, seeding the
// module-level declared set from constants, functions, classes, and imports.
func NewVerifier(m *Module) *Verifier {
	names := make(map[string]bool)

	for _, c := range m.Constants {
		names[c.Name] = true
	}

	for _, f := range m.Functions {
		names[f.Name] = true
	}

	for _, c := range m.Classes {
		names[c.Name] = true
	}

	for _, imp := range m.Imports {
		names[imp.Module] = true

		for _, n := range imp.Names {
			if n.Alias != "" {
				names[n.Alias] = true
			} else {
				names[n.Name] = true
			}
		}
	}

	return &Verifier{moduleNames: names}
}

// VerifyModule checks every function and method in the module and returns the
// aggregated error, or nil when the module is structurally sound.
func VerifyModule(m *Module) error {
	v := NewVerifier(m)

	var err error
	for _, f := range m.Functions {
		err = multierr.Append(err, v.VerifyFunction(f))
	}

	for _, c := range m.Classes {
		for _, meth := range c.Methods {
			err = multierr.Append(err, v.VerifyFunction(meth))
		}
	}

	return err
}

// VerifyFunction checks a single function body.
func (v *Verifier) VerifyFunction(f *Function) error {
	declared := make(map[string]bool)
	for _, p := range f.Params {
		declared[p.Name] = true
	}

	// Pre-collect every binding the body introduces. The HIR has no forward
	// references within a scope, so a name bound anywhere in the body either
	// dominates its uses or the bridge already rejected the program; the
	// verifier only needs to catch names bound nowhere at all.
	WalkStmts(f.Body, func(s Stmt) {
		switch st := s.(type) {
		case *AssignStmt:
			for _, name := range TargetSymbols(st.Target) {
				declared[name] = true
			}
		case *ForStmt:
			for _, name := range TargetSymbols(st.Target) {
				declared[name] = true
			}
		case *WithStmt:
			if st.Target != "" {
				declared[st.Target] = true
			}
		case *TryStmt:
			for _, h := range st.Handlers {
				if h.Name != "" {
					declared[h.Name] = true
				}
			}
		}
	})

	var err error

	WalkStmts(f.Body, func(s Stmt) {
		if as, ok := s.(*AssignStmt); ok {
			err = multierr.Append(err, v.checkTargetResolves(f, as.Target, declared))
		}

		WalkStmtExprs(s, func(e Expr) {
			switch ee := e.(type) {
			case *VarExpr:
				if !declared[ee.Name] && !v.moduleNames[ee.Name] && !isBuiltinName(ee.Name) {
					err = multierr.Append(err, errors.Errorf(
						"function %s: variable %q is neither a parameter, a local binding, nor a module-level name",
						f.Name, ee.Name))
				}
			case *AwaitExpr:
				if !f.Properties.IsAsync {
					err = multierr.Append(err, errors.Errorf(
						"function %s: await outside an async function", f.Name))
				}
			case *LambdaExpr:
				for _, p := range ee.Params {
					declared[p] = true
				}
			case *ListCompExpr:
				declareGenerators(ee.Generators, declared)
			case *SetCompExpr:
				declareGenerators(ee.Generators, declared)
			case *DictCompExpr:
				declareGenerators(ee.Generators, declared)
			case *GeneratorExpExpr:
				declareGenerators(ee.Generators, declared)
			case *SortByKeyExpr:
				for _, p := range ee.KeyParams {
					declared[p] = true
				}
			}
		})
	})

	return err
}

func declareGenerators(gens []Comprehension, declared map[string]bool) {
	for _, g := range gens {
		for _, t := range g.Targets {
			declared[t] = true
		}
	}
}

// checkTargetResolves enforces that Index and Attribute targets never
// introduce a new binding: their innermost base must already resolve.
func (v *Verifier) checkTargetResolves(f *Function, t AssignTarget, declared map[string]bool) error {
	switch tt := t.(type) {
	case *IndexTarget:
		base := InnermostBase(tt.Base)
		if base == "" {
			return errors.Errorf("function %s: index assignment base is not rooted at a variable", f.Name)
		}
		if !declared[base] && !v.moduleNames[base] {
			return errors.Errorf("function %s: index assignment base %q is unbound", f.Name, base)
		}
	case *AttributeTarget:
		base := InnermostBase(tt.Value)
		if base == "" {
			return errors.Errorf("function %s: attribute assignment base is not rooted at a variable", f.Name)
		}
		if !declared[base] && !v.moduleNames[base] {
			return errors.Errorf("function %s: attribute assignment base %q is unbound", f.Name, base)
		}
	case *TupleTarget:
		var err error
		for _, sub := range tt.Targets {
			err = multierr.Append(err, v.checkTargetResolves(f, sub, declared))
		}
		return err
	}

	return nil
}

// isBuiltinName reports whether name is a Python builtin the bridge leaves
// as a bare variable reference (exception classes, sentinels).
func isBuiltinName(name string) bool {
	switch name {
	case "True", "False", "None", "Exception", "ValueError", "TypeError",
		"KeyError", "IndexError", "RuntimeError", "StopIteration",
		"ZeroDivisionError", "FileNotFoundError", "OSError", "NotImplementedError",
		"self", "cls", "__name__":
		return true
	default:
		return false
	}
}
