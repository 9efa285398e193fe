package stmt

import (
	"fmt"

	"github.com/cwbudde/ooxverify/internal/enginerr"
	"github.com/cwbudde/ooxverify/internal/expr"
	"github.com/cwbudde/ooxverify/internal/oox"
	"github.com/cwbudde/ooxverify/internal/solver"
	"github.com/cwbudde/ooxverify/internal/state"
	"github.com/cwbudde/ooxverify/internal/value"
)

// ThrownException is produced by ExecThrow (or by package exec for a
// runtime-guard violation at an Exceptional node) and handed to package
// unwind to drive the exception state machine (spec.md §4.4).
type ThrownException struct {
	Class   string
	Message string
	Pos     oox.Position
}

// ExecDeclare writes Type's default value into the top frame.
func ExecDeclare(s state.ExecutionState, tid state.ThreadID, d oox.Declare, next oox.NodeID) Outcome {
	t, _ := s.Thread(tid)
	frame, _ := t.CallStack.Top()
	frame = frame.With(d.Name, value.DefaultValue(d.Type))
	t = t.WithCallStack(t.CallStack.ReplaceTop(frame))
	return single(s.WithThread(t), next)
}

// ExecAssign evaluates Rhs and writes it via Lhs. An RhsCall is a no-op
// here (spec.md §4.2): the call is dispatched by a separate Call CFG node
// and the copy-back happens at MemberExit.
func ExecAssign(s state.ExecutionState, tid state.ThreadID, a oox.Assign, next oox.NodeID) Outcome {
	call, isCall := a.Rhs.(oox.RhsCall)
	if isCall {
		_ = call
		return single(s, next)
	}
	re := a.Rhs.(oox.RhsExpr)
	t, _ := s.Thread(tid)
	frame, _ := t.CallStack.Top()
	v := expr.Evaluate(s, frame, re.Expr)
	if value.IsUnreachable(v) {
		return pruned()
	}
	next_s, ok := writeLhs(s, &t, frame, a.Lhs, v)
	if !ok {
		return pruned()
	}
	return single(next_s, next)
}

// writeLhs resolves lhs (variable, field or element) and writes v,
// returning the updated state and whether the write was feasible (a field
// or element write through an unresolved reference is infeasible; package
// exec concretizes such targets with concretizeAll before calling
// ExecAssign).
func writeLhs(s state.ExecutionState, t *state.Thread, frame state.StackFrame, lhs oox.Lhs, v value.Value) (state.ExecutionState, bool) {
	switch l := lhs.(type) {
	case oox.LhsVar:
		frame = frame.With(l.Name, v)
		*t = t.WithCallStack(t.CallStack.ReplaceTop(frame))
		return s.WithThread(*t), true
	case oox.LhsField:
		target := expr.Evaluate(s, frame, l.Target)
		if value.IsUnreachable(target) {
			return s, false
		}
		ref, ok := target.(value.Ref)
		if !ok {
			return s, false
		}
		cell, ok := s.Heap.Get(state.Reference(ref.Ref))
		if !ok {
			return s, false
		}
		obj, ok := cell.(*value.Object)
		if !ok {
			return s, false
		}
		fields := make(map[string]value.Value, len(obj.Fields)+1)
		for k, fv := range obj.Fields {
			fields[k] = fv
		}
		fields[l.Field] = v
		newObj := &value.Object{Class: obj.Class, Fields: fields}
		return s.WithHeap(s.Heap.Set(state.Reference(ref.Ref), newObj)), true
	case oox.LhsElement:
		target := expr.Evaluate(s, frame, l.Target)
		idxVal := expr.Evaluate(s, frame, l.Index)
		if value.IsUnreachable(target) || value.IsUnreachable(idxVal) {
			return s, false
		}
		ref, isRef := target.(value.Ref)
		idx, isInt := value.AsInt(idxVal)
		if !isRef || !isInt {
			return s, false
		}
		cell, ok := s.Heap.Get(state.Reference(ref.Ref))
		if !ok {
			return s, false
		}
		arr, ok := cell.(*value.Array)
		if !ok || idx < 0 || int(idx) >= len(arr.Elems) {
			return s, false
		}
		elems := make([]value.Value, len(arr.Elems))
		copy(elems, arr.Elems)
		elems[idx] = v
		newArr := &value.Array{ElemType: arr.ElemType, Elems: elems}
		return s.WithHeap(s.Heap.Set(state.Reference(ref.Ref), newArr)), true
	}
	return s, false
}

// ExecAssume narrows the path per spec.md §4.2: literal true continues,
// literal false prunes, symbolic appends to PathConstraints.
func ExecAssume(s state.ExecutionState, tid state.ThreadID, a oox.Assume, next oox.NodeID) Outcome {
	t, _ := s.Thread(tid)
	frame, _ := t.CallStack.Top()
	b, isBool := expr.EvaluateAsBool(s, frame, a.Cond)
	if isBool {
		if !b {
			return pruned()
		}
		return single(s, next)
	}
	v := expr.Evaluate(s, frame, a.Cond)
	if value.IsUnreachable(v) {
		return pruned()
	}
	return single(s.WithConstraints(s.Constraints.With(toFormula(v))), next)
}

// ExecAssert discharges ¬(constraints ⇒ cond) to slv (spec.md §4.2).
// UNSAT continues; SAT (or UNKNOWN, per spec.md §7) reports Invalid.
func ExecAssert(s state.ExecutionState, tid state.ThreadID, a oox.Assert, pos oox.Position, slv solver.Solver, next oox.NodeID) Outcome {
	t, _ := s.Thread(tid)
	frame, _ := t.CallStack.Top()
	b, isBool := expr.EvaluateAsBool(s, frame, a.Cond)
	if isBool {
		if !b {
			return invalid(pos, a.Cond)
		}
		return single(s, next)
	}
	v := expr.Evaluate(s, frame, a.Cond)
	if value.IsUnreachable(v) {
		return pruned()
	}
	formula := negatedImplication(s, v)
	verdict := slv.Check(formula)
	if verdict == solver.UNSAT {
		return single(s, next)
	}
	// SAT or UNKNOWN (treated as SAT, spec.md §7): Invalid.
	return invalid(pos, toFormula(v))
}

// negatedImplication builds ¬(constraints ⇒ cond) == constraints ∧ ¬cond.
func negatedImplication(s state.ExecutionState, cond value.Value) oox.Expr {
	notCond := oox.UnOp{Op: oox.OpNot, Operand: toFormula(cond)}
	return oox.BinOp{Op: oox.OpAnd, Left: s.Constraints.Conjunction(), Right: notCond}
}

func toFormula(v value.Value) oox.Expr {
	switch n := v.(type) {
	case value.Bool:
		return oox.BoolLit{Value: n.Value}
	case value.Int:
		return oox.IntLit{Value: n.Value}
	case value.Symbolic:
		return n.Expr
	case value.SymbolicRef:
		return oox.Var{Name: n.Name}
	default:
		return oox.BoolLit{Value: true}
	}
}

// ExecReturn evaluates e into the reserved retval slot (spec.md §4.2).
// Frame pop happens at the subsequent MemberExit node.
func ExecReturn(s state.ExecutionState, tid state.ThreadID, r oox.Return, next oox.NodeID) Outcome {
	t, _ := s.Thread(tid)
	frame, _ := t.CallStack.Top()
	var v value.Value = value.Null{}
	if r.Value != nil {
		v = expr.Evaluate(s, frame, r.Value)
		if value.IsUnreachable(v) {
			return pruned()
		}
	}
	frame = frame.With(state.RetvalSlot, v)
	t = t.WithCallStack(t.CallStack.ReplaceTop(frame))
	return single(s.WithThread(t), next)
}

// LockOutcome additionally reports whether the lock was acquired (vs.
// disabled because another thread holds it, which the scheduler — not
// this function — must treat as "do not fire this thread").
type LockOutcome struct {
	Outcome
	Disabled bool
}

// ExecLock reads v; null is infeasible, symbolic requires concretization
// first (the caller is expected to have already concretized via
// expr.ConcretesOfType before calling, per spec.md §4.1's concretization
// points), and a concrete reference already held by this thread is a
// no-op (spec.md §4.2, §8 property 4).
func ExecLock(s state.ExecutionState, tid state.ThreadID, l oox.Lock, next oox.NodeID) LockOutcome {
	t, _ := s.Thread(tid)
	frame, _ := t.CallStack.Top()
	v := expr.Evaluate(s, frame, l.Target)
	if value.IsUnreachable(v) || value.IsNull(v) {
		return LockOutcome{Outcome: pruned()}
	}
	ref, ok := v.(value.Ref)
	if !ok {
		// still symbolic: caller must concretize first.
		return LockOutcome{Outcome: pruned()}
	}
	if holder, held := s.Locks.HolderOf(state.Reference(ref.Ref)); held && holder != tid {
		return LockOutcome{Outcome: pruned(), Disabled: true}
	}
	locks := s.Locks.Lock(state.Reference(ref.Ref), tid)
	return LockOutcome{Outcome: single(s.WithLocks(locks), next)}
}

// ExecThrow returns the ThrownException for th's class for package unwind
// to process; th's arguments are not evaluated (OOX exceptions carry a
// class name, not field state, per spec.md §4.4). It produces
// no successor of its own: the caller (package exec) must route the
// returned exception through unwind.Raise, which determines the real next
// node.
func ExecThrow(s state.ExecutionState, tid state.ThreadID, th oox.Throw, pos oox.Position) ThrownException {
	return ThrownException{Class: th.Class, Pos: pos}
}

// ExecUnlock removes the mapping for v (a no-op if not held, and a no-op
// for null since null can never hold a lock). A value that is neither a
// reference nor still-symbolic (the caller is expected to have already
// concretized via expr.ConcretesOfType, per spec.md §4.1) is malformed
// input the CFG should never have produced, which spec.md §4.2 calls out
// as Unlock's one fatal engine-error case.
func ExecUnlock(s state.ExecutionState, tid state.ThreadID, u oox.Unlock, next oox.NodeID) (Outcome, error) {
	t, _ := s.Thread(tid)
	frame, _ := t.CallStack.Top()
	v := expr.Evaluate(s, frame, u.Target)
	if value.IsUnreachable(v) {
		return pruned(), nil
	}
	if value.IsNull(v) {
		return single(s, next), nil
	}
	ref, ok := v.(value.Ref)
	if !ok {
		if _, stillSymbolic := v.(value.SymbolicRef); stillSymbolic {
			// still symbolic: caller must concretize first.
			return pruned(), nil
		}
		return pruned(), enginerr.New(enginerr.ExpectedReference, fmt.Sprintf("unlock target evaluated to %s, not a reference", v))
	}
	return single(s.WithLocks(s.Locks.Unlock(state.Reference(ref.Ref))), next), nil
}
