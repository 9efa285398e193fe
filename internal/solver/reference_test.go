package solver

import (
	"testing"

	"github.com/cwbudde/ooxverify/internal/oox"
)

// TestReference_ConstantFolding exercises the fold path directly: a
// conjunction of literals reduces to the boolean it evaluates to.
func TestReference_ConstantFolding(t *testing.T) {
	r := NewReference()

	trueConj := oox.BinOp{Op: oox.OpAnd,
		Left:  oox.BoolLit{Value: true},
		Right: oox.BinOp{Op: oox.OpLt, Left: oox.IntLit{Value: 1}, Right: oox.IntLit{Value: 2}},
	}
	if got := r.Check(trueConj); got != SAT {
		t.Fatalf("Check(%s) = %s, want SAT", trueConj, got)
	}

	falseConj := oox.BinOp{Op: oox.OpEq, Left: oox.IntLit{Value: 1}, Right: oox.IntLit{Value: 2}}
	if got := r.Check(falseConj); got != UNSAT {
		t.Fatalf("Check(%s) = %s, want UNSAT", falseConj, got)
	}
}

// TestReference_ConjunctiveEqualityConsistency grounds spec.md §8
// universal property 1: a path condition that conjoins x == 1 and x == 2
// for the same symbolic name is the unsatisfiable path a correct engine
// must never let a live state carry, so the solver the engine consults
// before accepting a branch must report UNSAT for it.
func TestReference_ConjunctiveEqualityConsistency(t *testing.T) {
	r := NewReference()

	consistent := oox.BinOp{Op: oox.OpAnd,
		Left:  oox.BinOp{Op: oox.OpEq, Left: oox.Var{Name: "x"}, Right: oox.IntLit{Value: 1}},
		Right: oox.BinOp{Op: oox.OpEq, Left: oox.Var{Name: "y"}, Right: oox.IntLit{Value: 2}},
	}
	if got := r.Check(consistent); got == UNSAT {
		t.Fatalf("Check(%s) = UNSAT, want SAT or UNKNOWN", consistent)
	}

	contradictory := oox.BinOp{Op: oox.OpAnd,
		Left:  oox.BinOp{Op: oox.OpEq, Left: oox.Var{Name: "x"}, Right: oox.IntLit{Value: 1}},
		Right: oox.BinOp{Op: oox.OpEq, Left: oox.Var{Name: "x"}, Right: oox.IntLit{Value: 2}},
	}
	if got := r.Check(contradictory); got != UNSAT {
		t.Fatalf("Check(%s) = %s, want UNSAT", contradictory, got)
	}
}

// TestReference_UnrecognisedShapeIsUnknown asserts spec.md §7's soundness
// rule: a formula this lightweight decision procedure cannot classify
// must come back UNKNOWN rather than a guess, so callers can treat it as
// SAT and stay sound for invalidity instead of silently pruning a
// feasible branch.
func TestReference_UnrecognisedShapeIsUnknown(t *testing.T) {
	r := NewReference()
	formula := oox.Quantifier{
		Kind:   oox.Forall,
		Bound:  "i",
		Domain: oox.Var{Name: "arr"},
		Body:   oox.BoolLit{Value: true},
	}
	if got := r.Check(formula); got != UNKNOWN {
		t.Fatalf("Check(%s) = %s, want UNKNOWN", formula, got)
	}
}

// TestCache_MemoizesByStructuralHash asserts the cache never asks the
// inner solver twice for structurally identical formulas, even when they
// are distinct Go values.
func TestCache_MemoizesByStructuralHash(t *testing.T) {
	counting := &countingSolver{}
	c := NewCache(counting)

	f1 := oox.BinOp{Op: oox.OpEq, Left: oox.IntLit{Value: 1}, Right: oox.IntLit{Value: 1}}
	f2 := oox.BinOp{Op: oox.OpEq, Left: oox.IntLit{Value: 1}, Right: oox.IntLit{Value: 1}}

	c.Check(f1)
	c.Check(f2)

	if counting.calls != 1 {
		t.Fatalf("inner solver called %d times, want 1 (cache should hit on the second structurally-identical formula)", counting.calls)
	}
}

type countingSolver struct {
	calls int
}

func (c *countingSolver) Check(formula oox.Expr) Verdict {
	c.calls++
	return SAT
}
