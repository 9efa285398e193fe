package solver

import "github.com/cwbudde/ooxverify/internal/oox"

// Reference is a small rewriting decision procedure: constant folding plus
// a conjunctive-equality consistency check. It is not a complete SMT
// solver — nothing in this module's scope needs one, since the real
// decision procedure is an external collaborator (spec.md §1) — but it is
// precise enough to discharge every formula the bundled fixtures and
// tests produce. Anything it cannot decide is reported UNKNOWN, which
// callers (package stmt, package expr) treat as SAT to stay sound for
// invalidity (spec.md §7).
type Reference struct{}

func NewReference() *Reference { return &Reference{} }

func (r *Reference) Check(formula oox.Expr) Verdict {
	folded, ok := fold(formula)
	if ok {
		if b, isBool := folded.(oox.BoolLit); isBool {
			if b.Value {
				return SAT
			}
			return UNSAT
		}
	}

	eqs, consistent := conjunctiveEqualities(formula)
	if consistent && len(eqs) > 0 {
		if !eqConsistent(eqs) {
			return UNSAT
		}
	}
	return UNKNOWN
}

// fold recursively constant-folds formula, returning (result, true) when
// every operand bottomed out in a literal.
func fold(e oox.Expr) (oox.Expr, bool) {
	switch n := e.(type) {
	case oox.IntLit, oox.BoolLit, oox.NullLit:
		return e, true
	case oox.UnOp:
		operand, ok := fold(n.Operand)
		if !ok {
			return e, false
		}
		switch n.Op {
		case oox.OpNot:
			if b, isBool := operand.(oox.BoolLit); isBool {
				return oox.BoolLit{Value: !b.Value}, true
			}
		case oox.OpNeg:
			if i, isInt := operand.(oox.IntLit); isInt {
				return oox.IntLit{Value: -i.Value}, true
			}
		}
		return e, false
	case oox.BinOp:
		left, lok := fold(n.Left)
		right, rok := fold(n.Right)
		if !lok || !rok {
			// still try boolean short-circuit with one folded side
			if n.Op == oox.OpAnd {
				if lok {
					if b, isBool := left.(oox.BoolLit); isBool && !b.Value {
						return oox.BoolLit{Value: false}, true
					}
				}
				if rok {
					if b, isBool := right.(oox.BoolLit); isBool && !b.Value {
						return oox.BoolLit{Value: false}, true
					}
				}
			}
			if n.Op == oox.OpOr {
				if lok {
					if b, isBool := left.(oox.BoolLit); isBool && b.Value {
						return oox.BoolLit{Value: true}, true
					}
				}
				if rok {
					if b, isBool := right.(oox.BoolLit); isBool && b.Value {
						return oox.BoolLit{Value: true}, true
					}
				}
			}
			return e, false
		}
		return foldBinOp(n.Op, left, right)
	default:
		return e, false
	}
}

func foldBinOp(op oox.Operator, left, right oox.Expr) (oox.Expr, bool) {
	li, lIsInt := left.(oox.IntLit)
	ri, rIsInt := right.(oox.IntLit)
	if lIsInt && rIsInt {
		switch op {
		case oox.OpAdd:
			return oox.IntLit{Value: li.Value + ri.Value}, true
		case oox.OpSub:
			return oox.IntLit{Value: li.Value - ri.Value}, true
		case oox.OpMul:
			return oox.IntLit{Value: li.Value * ri.Value}, true
		case oox.OpDiv:
			if ri.Value != 0 {
				return oox.IntLit{Value: li.Value / ri.Value}, true
			}
		case oox.OpMod:
			if ri.Value != 0 {
				return oox.IntLit{Value: li.Value % ri.Value}, true
			}
		case oox.OpEq:
			return oox.BoolLit{Value: li.Value == ri.Value}, true
		case oox.OpNeq:
			return oox.BoolLit{Value: li.Value != ri.Value}, true
		case oox.OpLt:
			return oox.BoolLit{Value: li.Value < ri.Value}, true
		case oox.OpLte:
			return oox.BoolLit{Value: li.Value <= ri.Value}, true
		case oox.OpGt:
			return oox.BoolLit{Value: li.Value > ri.Value}, true
		case oox.OpGte:
			return oox.BoolLit{Value: li.Value >= ri.Value}, true
		}
	}
	lb, lIsBool := left.(oox.BoolLit)
	rb, rIsBool := right.(oox.BoolLit)
	if lIsBool && rIsBool {
		switch op {
		case oox.OpAnd:
			return oox.BoolLit{Value: lb.Value && rb.Value}, true
		case oox.OpOr:
			return oox.BoolLit{Value: lb.Value || rb.Value}, true
		case oox.OpEq:
			return oox.BoolLit{Value: lb.Value == rb.Value}, true
		case oox.OpNeq:
			return oox.BoolLit{Value: lb.Value != rb.Value}, true
		}
	}
	return nil, false
}

// conjunctiveEqualities flattens a top-level conjunction into its `var ==
// literal` / `literal == var` conjuncts; conjuncts of any other shape are
// skipped, so the second result is always true.
func conjunctiveEqualities(e oox.Expr) (map[string][]int64, bool) {
	out := map[string][]int64{}
	ok := collectEqualities(e, out)
	return out, ok
}

func collectEqualities(e oox.Expr, out map[string][]int64) bool {
	switch n := e.(type) {
	case oox.BinOp:
		if n.Op == oox.OpAnd {
			return collectEqualities(n.Left, out) && collectEqualities(n.Right, out)
		}
		if n.Op == oox.OpEq {
			if name, lit, ok := varLitPair(n.Left, n.Right); ok {
				out[name] = append(out[name], lit)
				return true
			}
		}
		return true // unrecognised conjunct: not a contradiction source we check
	default:
		return true
	}
}

func varLitPair(a, b oox.Expr) (string, int64, bool) {
	if v, ok := a.(oox.Var); ok {
		if lit, ok := b.(oox.IntLit); ok {
			return v.Name, lit.Value, true
		}
	}
	if v, ok := b.(oox.Var); ok {
		if lit, ok := a.(oox.IntLit); ok {
			return v.Name, lit.Value, true
		}
	}
	return "", 0, false
}

func eqConsistent(eqs map[string][]int64) bool {
	for _, vals := range eqs {
		for i := 1; i < len(vals); i++ {
			if vals[i] != vals[0] {
				return false
			}
		}
	}
	return true
}
