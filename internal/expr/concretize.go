package expr

import (
	"github.com/cwbudde/ooxverify/internal/oox"
	"github.com/cwbudde/ooxverify/internal/solver"
	"github.com/cwbudde/ooxverify/internal/state"
	"github.com/cwbudde/ooxverify/internal/value"
)

// Branch is one concretization outcome: a state refined to fix a symbolic
// name to one concrete Reference (or null), plus that Reference
// (spec.md §4.1).
type Branch struct {
	State state.ExecutionState
	Ref   state.Reference
}

// ConcretesOfType enumerates the concretization branches for the symbolic
// reference called name, per spec.md §4.1. If name already has aliases in
// s's AliasMap, exactly those are offered again; otherwise the candidates
// are knownRefs, plus null when allowNull is set. Each candidate adds
// `name == ref` to the path constraints and is dropped when slv answers
// UNSAT, which is how "pruned" is represented here. An empty result means
// no candidate was feasible; package exec then prunes the statement.
func ConcretesOfType(
	s state.ExecutionState,
	slv solver.Solver,
	name string,
	allowNull bool,
	knownRefs []state.Reference,
) []Branch {
	existing, known := s.AliasMap.Aliases(name)
	candidates := existing
	if !known {
		candidates = knownRefs
		if allowNull {
			candidates = append(append([]state.Reference{}, candidates...), state.NullReference)
		}
	}

	var branches []Branch
	for _, ref := range candidates {
		eq := oox.BinOp{
			Op:    oox.OpEq,
			Left:  oox.Var{Name: name},
			Right: oox.IntLit{Value: int64(ref)},
		}
		constraints := s.Constraints.With(eq)
		if slv.Check(constraints.Conjunction()) == solver.UNSAT {
			// infeasible under the refined path condition: prune silently
			continue
		}
		next := s.WithConstraints(constraints).WithAliasMap(s.AliasMap.WithAlias(name, ref))
		branches = append(branches, Branch{State: next, Ref: ref})
	}
	return branches
}

// ArrayBranch additionally fixes a symbolic array's length, bounded by
// maxSize (Configuration.symbolicArraySize, spec.md §4.1).
type ArrayBranch struct {
	Branch
	Length int
}

// ConcretesOfArrayType enumerates (identity, length) branches for a
// symbolic array reference, per spec.md §4.1: "A symbolic array requires
// choosing both its identity and its length; lengths are bounded by
// Configuration.symbolicArraySize."
func ConcretesOfArrayType(
	s state.ExecutionState,
	slv solver.Solver,
	name string,
	allowNull bool,
	knownRefs []state.Reference,
	maxSize int,
) []ArrayBranch {
	base := ConcretesOfType(s, slv, name, allowNull, knownRefs)
	var out []ArrayBranch
	for _, b := range base {
		if b.Ref == state.NullReference {
			out = append(out, ArrayBranch{Branch: b, Length: 0})
			continue
		}
		for length := 0; length <= maxSize; length++ {
			out = append(out, ArrayBranch{Branch: b, Length: length})
		}
	}
	return out
}

// IsUnresolvedSymbolic reports whether v is a symbolic reference/array
// identity that concretization has not yet fixed, the condition
// spec.md §4.1 requires before assertions, assumes, returns, lock
// acquisition, invocation argument passing, or field access.
func IsUnresolvedSymbolic(v value.Value) (name string, ok bool) {
	switch t := v.(type) {
	case value.SymbolicRef:
		return t.Name, true
	case value.Symbolic:
		if va, ok := t.Expr.(oox.Var); ok {
			return va.Name, true
		}
	}
	return "", false
}
