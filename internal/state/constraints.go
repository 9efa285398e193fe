package state

import "github.com/cwbudde/ooxverify/internal/oox"

// PathConstraints is the ordered set of symbolic boolean expressions
// conjoined to form the current path condition (spec.md §3). Invariant:
// the conjunction is satisfiable at every live state; the caller (package
// expr, package stmt) is responsible for pruning a branch the instant this
// would become false (infeasibility is not represented in-band — it's
// "the branch was never produced").
type PathConstraints struct {
	exprs []oox.Expr
}

func NewPathConstraints() PathConstraints {
	return PathConstraints{}
}

// Exprs returns the conjuncts in order.
func (p PathConstraints) Exprs() []oox.Expr {
	return p.exprs
}

// With returns a new PathConstraints with e appended.
func (p PathConstraints) With(e oox.Expr) PathConstraints {
	out := make([]oox.Expr, len(p.exprs)+1)
	copy(out, p.exprs)
	out[len(p.exprs)] = e
	return PathConstraints{exprs: out}
}

// Conjunction folds the constraints into a single expression (true when
// empty), for handing to the solver.
func (p PathConstraints) Conjunction() oox.Expr {
	if len(p.exprs) == 0 {
		return oox.BoolLit{Value: true}
	}
	result := p.exprs[0]
	for _, e := range p.exprs[1:] {
		result = oox.BinOp{Op: oox.OpAnd, Left: result, Right: e}
	}
	return result
}
