// Package por implements spec.md §4.5's partial-order reduction: enabled-set
// filtering, the unique-interleaving filter, the locality optimisation, and
// per-pair independence-constraint generation. It has no teacher
// counterpart (DWScript is single-threaded) and is instead grounded
// directly on spec.md's algorithmic description, written in the same
// immutable-state style as packages state/expr/stmt.
package por

import (
	"github.com/cwbudde/ooxverify/internal/expr"
	"github.com/cwbudde/ooxverify/internal/oox"
	"github.com/cwbudde/ooxverify/internal/state"
	"github.com/cwbudde/ooxverify/internal/value"
)

// RWSet is one statement's dependent-operations summary (spec.md §4.5's
// table): the references it writes and the references it reads.
type RWSet struct {
	Writes []state.Reference
	Reads  []state.Reference
}

// DependentOperationsOf computes (W, R) for the statement at tid's current
// program counter, per spec.md §4.5's table. Node kinds with no Stmt (Call,
// MemberEntry, …) contribute the empty set on both sides, same as the
// table's "anything else" row.
func DependentOperationsOf(s state.ExecutionState, tid state.ThreadID) RWSet {
	t, ok := s.Thread(tid)
	if !ok {
		return RWSet{}
	}
	node := t.PC.Node()
	if node == nil || node.Kind != oox.KindStatNode {
		return RWSet{}
	}
	frame, ok := t.CallStack.Top()
	if !ok {
		return RWSet{}
	}

	switch n := node.Stmt.(type) {
	case oox.Assign:
		w := refsOfLhs(s, frame, n.Lhs)
		var r []state.Reference
		if re, ok := n.Rhs.(oox.RhsExpr); ok {
			r = refsOfExpr(s, frame, re.Expr)
		}
		return RWSet{Writes: w, Reads: r}
	case oox.Assume:
		return RWSet{Reads: refsOfExpr(s, frame, n.Cond)}
	case oox.Assert:
		return RWSet{Reads: refsOfExpr(s, frame, n.Cond)}
	case oox.Lock:
		refs := refsOfExpr(s, frame, n.Target)
		return RWSet{Writes: refs, Reads: refs}
	case oox.Unlock:
		refs := refsOfExpr(s, frame, n.Target)
		return RWSet{Writes: refs, Reads: refs}
	default:
		return RWSet{}
	}
}

// refsOfLhs follows spec.md §4.5's table: a plain local variable touches no
// heap reference (W = ∅); a field or element write's reference set is the
// reference set of its target.
func refsOfLhs(s state.ExecutionState, frame state.StackFrame, lhs oox.Lhs) []state.Reference {
	switch l := lhs.(type) {
	case oox.LhsField:
		return refsOfExpr(s, frame, l.Target)
	case oox.LhsElement:
		return refsOfExpr(s, frame, l.Target)
	default:
		return nil
	}
}

// refsOfExpr walks e, collecting the reference set of every Var it reads
// (spec.md §4.5: "refs(v) follows the alias map for symbolic refs ...").
// Quantifier domains count as a read of the domain reference.
func refsOfExpr(s state.ExecutionState, frame state.StackFrame, e oox.Expr) []state.Reference {
	var out []state.Reference
	switch n := e.(type) {
	case oox.Var:
		out = append(out, refsOfVar(s, frame, n.Name)...)
	case oox.FieldAccess:
		out = append(out, refsOfExpr(s, frame, n.Target)...)
	case oox.ElementAccess:
		out = append(out, refsOfExpr(s, frame, n.Target)...)
		out = append(out, refsOfExpr(s, frame, n.Index)...)
	case oox.SizeOf:
		out = append(out, refsOfExpr(s, frame, n.Target)...)
	case oox.BinOp:
		out = append(out, refsOfExpr(s, frame, n.Left)...)
		out = append(out, refsOfExpr(s, frame, n.Right)...)
	case oox.UnOp:
		out = append(out, refsOfExpr(s, frame, n.Operand)...)
	case oox.Quantifier:
		out = append(out, refsOfExpr(s, frame, n.Domain)...)
	}
	return out
}

// refsOfVar resolves one variable read to its reference set following
// spec.md §4.5: empty for a definitely-null or non-reference value, a
// singleton for a concrete reference, its non-null known aliases for a
// symbolic reference (concretesOfType can bind one of a symbolic name's
// aliases to NullReference when symbolicNulls survives the solver check,
// and null never contends for anything), and the distinguished bottom
// marker when a symbolic reference has no aliases yet (spec.md §9).
func refsOfVar(s state.ExecutionState, frame state.StackFrame, name string) []state.Reference {
	v := expr.Evaluate(s, frame, oox.Var{Name: name})
	switch val := v.(type) {
	case value.Ref:
		if val.Ref == value.NullRef {
			return nil
		}
		return []state.Reference{state.Reference(val.Ref)}
	case value.SymbolicRef:
		if refs, ok := s.AliasMap.Aliases(val.Name); ok {
			var out []state.Reference
			for _, r := range refs {
				if r != state.NullReference {
					out = append(out, r)
				}
			}
			return out
		}
		return []state.Reference{state.UnknownReference}
	default:
		return nil
	}
}
