// Package solver treats the SMT decision procedure as an external oracle,
// per spec.md §1/§6: "the SMT solver integration (treated as an oracle
// with a check-sat interface)" is explicitly out of scope. This package
// defines that interface, a Reference implementation precise enough to
// discharge the constant/boolean formulas the bundled fixtures produce,
// and a structural-hash cache (spec.md §4.6, §9 "Solver cache").
package solver

import "github.com/cwbudde/ooxverify/internal/oox"

// Verdict is the oracle's answer to a check-sat query (spec.md §6).
type Verdict int

const (
	SAT Verdict = iota
	UNSAT
	UNKNOWN
)

func (v Verdict) String() string {
	switch v {
	case SAT:
		return "SAT"
	case UNSAT:
		return "UNSAT"
	default:
		return "UNKNOWN"
	}
}

// Solver answers whether a formula is satisfiable. Implementations must be
// safe for concurrent use: spec.md §5 names the solver "the only shared
// mutable resource" and requires calls to be synchronised.
type Solver interface {
	Check(formula oox.Expr) Verdict
}
