// Package unwind implements spec.md §4.4's exception state machine: once a
// thread raises an exception (an explicit Throw or a violated exceptional
// spec), control transfers here to find the nearest enclosing handler,
// discharging each frame's exceptional clause as it unwinds, mirroring the
// teacher's ExceptionValue-based propagation in internal/interp/errors.go
// generalized from a Go panic/recover-shaped flow to the immutable
// state-transition shape the rest of this engine uses.
package unwind

import (
	"github.com/cwbudde/ooxverify/internal/oox"
	"github.com/cwbudde/ooxverify/internal/solver"
	"github.com/cwbudde/ooxverify/internal/state"
	"github.com/cwbudde/ooxverify/internal/stmt"
)

// Result is the outcome of driving the exception state machine to a fixed
// point: either a successor state positioned at a handler (Successor), an
// Invalidity from a violated exceptional spec along the way, or Finished
// when the exception reached an empty call stack (spec.md §4.4: "last
// frame → finish, contributes Valid").
type Result struct {
	Successor *stmt.Successor
	Invalid   *stmt.Invalidity
	Finished  bool
}

// Raise drives thread tid's exception machine starting from exc, per
// spec.md §4.4. It repeatedly consults the thread's HandlerStack: if the
// innermost entry requires zero further pops, it resumes at that handler;
// otherwise, when verifyExceptional is set, it discharges the current
// frame's exceptional clause (if any) against slv (spec.md §6's
// `verifyExceptional` contract-check toggle, same gating
// execMemberEntry/execMemberExit apply to Requires/Ensures); pops the
// frame, decrements the entry's pending-pop count, and recurses. A thread
// with no handler stack entries unwinds frame by frame until either a
// (later-pushed) handler appears or the call stack empties.
func Raise(s state.ExecutionState, tid state.ThreadID, exc stmt.ThrownException, slv solver.Solver, verifyExceptional bool) Result {
	for {
		t, ok := s.Thread(tid)
		if !ok {
			return Result{Finished: true}
		}

		if entry, ok := t.HandlerStack.Top(); ok {
			if entry.PopsPending == 0 {
				t = t.WithHandlerStack(t.HandlerStack.Pop()).WithPC(entry.Handler)
				return Result{Successor: &stmt.Successor{State: s.WithThread(t), NextNode: entry.Handler.NodeID}}
			}
		}

		frame, hasFrame := t.CallStack.Top()
		if !hasFrame {
			return Result{Finished: true}
		}

		if verifyExceptional && frame.CurrentMember.Exceptional != nil {
			verdict := slv.Check(negateAssumingPath(s, frame.CurrentMember.Exceptional))
			if verdict != solver.UNSAT {
				return Result{Invalid: &stmt.Invalidity{Pos: exc.Pos, Formula: frame.CurrentMember.Exceptional}}
			}
		}

		cs, _ := t.CallStack.Pop()
		t = t.WithCallStack(cs)
		if entry, ok := t.HandlerStack.Top(); ok && entry.PopsPending > 0 {
			entry.PopsPending--
			t = t.WithHandlerStack(t.HandlerStack.ReplaceTop(entry))
		}

		if cs.IsEmpty() {
			s = s.WithoutThread(tid)
			return Result{Finished: true}
		}
		s = s.WithThread(t)
	}
}

// negateAssumingPath builds ¬(pathConstraints ⇒ cond), the same shape
// stmt.ExecAssert discharges, duplicated here (rather than imported) to
// avoid package stmt needing to export its internal formula-building
// helper beyond this one narrow use.
func negateAssumingPath(s state.ExecutionState, cond oox.Expr) oox.Expr {
	return oox.BinOp{
		Op:   oox.OpAnd,
		Left: s.Constraints.Conjunction(),
		Right: oox.UnOp{
			Op:      oox.OpNot,
			Operand: cond,
		},
	}
}

// IncrementLastHandlerPops is invoked when a call pushes a frame inside a
// try block (spec.md §4.4), so that a later unwind through that frame
// knows it must still be popped to reach the handler.
func IncrementLastHandlerPops(s state.ExecutionState, tid state.ThreadID) state.ExecutionState {
	t, ok := s.Thread(tid)
	if !ok {
		return s
	}
	entry, ok := t.HandlerStack.Top()
	if !ok {
		return s
	}
	entry.PopsPending++
	t = t.WithHandlerStack(t.HandlerStack.ReplaceTop(entry))
	return s.WithThread(t)
}
