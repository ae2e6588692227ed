package ast

import (
	"testing"

	"github.com/reltable-lang/reltablec/types"

	"github.com/reltable-lang/reltablec"
)

func TestExprDefaultsToAnyType(t *testing.T) {
	id := &Identifier{typed: NewTyped(reltable.Span{0, 3}), Name: "x"}
	if id.Type() != types.ANY {
		t.Errorf("fresh expression node should type as ANY until semantic analysis runs")
	}
	id.SetType(types.INT)
	if id.Type() != types.INT {
		t.Errorf("SetType did not stick")
	}
}

func TestSpanIsPreserved(t *testing.T) {
	span := reltable.Span{10, 20}
	lit := &IntLit{typed: NewTyped(span), Value: 42}
	if lit.Span() != span {
		t.Errorf("Span() = %v, want %v", lit.Span(), span)
	}
}

func TestStmtAndExprAreDistinctSets(t *testing.T) {
	var _ Stmt = &Program{base: NewBase(reltable.Span{})}
	var _ Expr = &IntLit{typed: NewTyped(reltable.Span{})}
}
