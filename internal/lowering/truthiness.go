package lowering

import (
	"github.com/depyler-lang/depyler/internal/diagnostics"
	"github.com/depyler-lang/depyler/internal/hir"
	"github.com/depyler-lang/depyler/internal/rustast"
)

// convertCondition lowers an expression in boolean context, inserting the
// truthiness coercion Python applies implicitly: numbers compare against
// zero, strings and collections against empty, optionals against None.
func (c *Converter) convertCondition(e hir.Expr) (rustast.Expr, error) {
	// `x and y`, `x or y`, `not x` recurse through convertExpr, which
	// already coerces each side.
	switch ee := e.(type) {
	case *hir.BinaryExpr:
		if ee.Op.IsComparison() || ee.Op == hir.OpAnd || ee.Op == hir.OpOr ||
			ee.Op == hir.OpIn || ee.Op == hir.OpNotIn {
			return c.convertExpr(e)
		}
	case *hir.UnaryExpr:
		if ee.Op == hir.OpNot {
			return c.convertExpr(e)
		}
	}

	inner, err := c.convertExpr(e)
	if err != nil {
		return nil, err
	}

	switch t := c.exprType(e).(type) {
	case *hir.BoolType:
		return inner, nil
	case *hir.IntType:
		return &rustast.Binary{Op: "!=", L: inner, R: &rustast.Lit{Text: "0"}}, nil
	case *hir.FloatType:
		return &rustast.Binary{Op: "!=", L: inner, R: &rustast.Lit{Text: "0.0"}}, nil
	case *hir.StringType, *hir.ListType, *hir.SetType, *hir.DictType:
		return &rustast.Unary{Op: "!", Operand: &rustast.MethodCall{Recv: inner, Method: "is_empty"}}, nil
	case *hir.ArrayType:
		return &rustast.Unary{Op: "!", Operand: &rustast.MethodCall{Recv: inner, Method: "is_empty"}}, nil
	case *hir.OptionalType:
		return &rustast.MethodCall{Recv: inner, Method: "is_some"}, nil
	case *hir.NoneType:
		return &rustast.Lit{Text: "false"}, nil
	default:
		_ = t
		c.Diags.Warnf(diagnostics.LoweringIncomplete, c.fnName,
			"truthiness of untyped expression compared against zero")

		return &rustast.Binary{Op: "!=", L: inner, R: &rustast.Lit{Text: "0"}}, nil
	}
}
