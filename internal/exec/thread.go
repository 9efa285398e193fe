package exec

import (
	"github.com/cwbudde/ooxverify/internal/enginerr"
	"github.com/cwbudde/ooxverify/internal/oox"
	"github.com/cwbudde/ooxverify/internal/state"
	"github.com/cwbudde/ooxverify/internal/stmt"
	"github.com/cwbudde/ooxverify/internal/unwind"
)

// Thread implements spec.md §4.3's execT: it dispatches tid's current CFG
// node, concretizing any symbolic reference/array the node's expressions
// need first (spec.md §4.1), and returns the resulting successor states.
// A non-nil Verdict is Invalid (a violated assertion or contract clause)
// and short-circuits the whole search; package por's scheduler is the one
// that detects Deadlock, not this function.
func Thread(ctx Context, s state.ExecutionState, tid state.ThreadID) ([]state.ExecutionState, *Verdict, error) {
	t, ok := s.Thread(tid)
	if !ok {
		return nil, nil, enginerr.New(enginerr.CannotGetCurrentThread, "")
	}
	node := t.PC.Node()
	if node == nil {
		return nil, nil, enginerr.New(enginerr.Unresolved, "thread positioned at a nil CFG node")
	}
	min, max := node.Kind.ExpectedNeighbours()
	if len(node.Successors) < min || (max >= 0 && len(node.Successors) > max) {
		return nil, nil, enginerr.New(enginerr.ExpectedNumberOfNeighbours, node.Kind.String())
	}

	switch node.Kind {
	case oox.KindStatNode:
		return execStat(ctx, s, tid, t, node)
	case oox.KindCall:
		return execCallNode(ctx, s, tid, t, node)
	case oox.KindMemberEntry:
		return execMemberEntry(ctx, s, tid, node)
	case oox.KindMemberExit:
		return execMemberExit(ctx, s, tid, node)
	case oox.KindTryEntry:
		return execTryEntry(s, tid, t, node)
	case oox.KindTryExit, oox.KindCatchEntry:
		return execPopHandler(s, tid, t, node)
	case oox.KindCatchExit:
		return []state.ExecutionState{advancePC(s, tid, node.Successors[0])}, nil, nil
	case oox.KindExceptionalNode:
		return execExceptional(ctx, s, tid, node)
	case oox.KindJoin:
		// Fixtures model Join purely as a StatNode carrying oox.Join
		// (matching package por's dispatch); a bare KindJoin node is an
		// unconditional pass-through.
		return []state.ExecutionState{advancePC(s, tid, node.Successors[0])}, nil, nil
	default:
		return nil, nil, enginerr.New(enginerr.Unresolved, "unrecognised CFG node kind")
	}
}

// execStat dispatches one StatNode by its Statement payload. node.Stmt ==
// nil models a pure control-flow fan-out (an if/while's branch point): it
// unconditionally explores every successor, letting the Assume statements
// on those edges do the actual narrowing.
func execStat(ctx Context, s state.ExecutionState, tid state.ThreadID, t state.Thread, node *oox.CFGNode) ([]state.ExecutionState, *Verdict, error) {
	if node.Stmt == nil {
		out := make([]state.ExecutionState, len(node.Successors))
		for i, succ := range node.Successors {
			out[i] = advancePC(s, tid, succ)
		}
		return out, nil, nil
	}

	frame, _ := t.CallStack.Top()
	next := node.Successors[0]

	switch n := node.Stmt.(type) {
	case oox.Declare:
		return fromOutcome(tid, stmt.ExecDeclare(s, tid, n, next)), nil, nil

	case oox.Assign:
		bases := concretizeAll(ctx, s, frame, assignExprs(n))
		return runOnBases(tid, bases, func(cs state.ExecutionState) stmt.Outcome {
			return stmt.ExecAssign(cs, tid, n, next)
		})

	case oox.Assume:
		bases := concretizeAll(ctx, s, frame, []oox.Expr{n.Cond})
		return runOnBases(tid, bases, func(cs state.ExecutionState) stmt.Outcome {
			return stmt.ExecAssume(cs, tid, n, next)
		})

	case oox.Assert:
		bases := concretizeAll(ctx, s, frame, []oox.Expr{n.Cond})
		return runOnBases(tid, bases, func(cs state.ExecutionState) stmt.Outcome {
			return stmt.ExecAssert(cs, tid, n, node.Pos, ctx.Solver, next)
		})

	case oox.Return:
		var exprs []oox.Expr
		if n.Value != nil {
			exprs = []oox.Expr{n.Value}
		}
		bases := concretizeAll(ctx, s, frame, exprs)
		return runOnBases(tid, bases, func(cs state.ExecutionState) stmt.Outcome {
			return stmt.ExecReturn(cs, tid, n, next)
		})

	case oox.Lock:
		bases := concretizeAll(ctx, s, frame, []oox.Expr{n.Target})
		var out []state.ExecutionState
		for _, cs := range bases {
			lo := stmt.ExecLock(cs, tid, n, next)
			if lo.Disabled {
				// the scheduler should never have selected a thread parked
				// on a held lock; defensively treat as infeasible.
				continue
			}
			out = append(out, fromOutcome(tid, lo.Outcome)...)
		}
		return out, nil, nil

	case oox.Unlock:
		bases := concretizeAll(ctx, s, frame, []oox.Expr{n.Target})
		return runOnBasesErr(tid, bases, func(cs state.ExecutionState) (stmt.Outcome, error) {
			return stmt.ExecUnlock(cs, tid, n, next)
		})

	case oox.Fork:
		member, ok := resolveMember(ctx, n.Class, n.Method)
		if !ok {
			return nil, nil, enginerr.New(enginerr.ExpectedMethodMember, n.Class+"."+n.Method)
		}
		return fromOutcome(tid, stmt.ExecFork(s, tid, n, member, next)), nil, nil

	case oox.Join:
		return fromOutcome(tid, stmt.ExecJoin(s, tid, next)), nil, nil

	case oox.Throw:
		exc := stmt.ExecThrow(s, tid, n, node.Pos)
		return raiseException(ctx, s, tid, exc)

	default:
		return nil, nil, enginerr.New(enginerr.Unresolved, "unrecognised statement kind")
	}
}

// assignExprs lists the expressions an Assign may need concretized before
// executing: the Lhs target (for a field/element write) and the Rhs
// expression (for a plain, non-call assignment).
func assignExprs(a oox.Assign) []oox.Expr {
	var out []oox.Expr
	switch l := a.Lhs.(type) {
	case oox.LhsField:
		out = append(out, l.Target)
	case oox.LhsElement:
		out = append(out, l.Target, l.Index)
	}
	if re, ok := a.Rhs.(oox.RhsExpr); ok {
		out = append(out, re.Expr)
	}
	return out
}

// runOnBases applies run to every concretization branch of bases,
// translating the first Invalidity it sees into an immediate Invalid
// Verdict and otherwise collecting every resulting successor state with
// its thread advanced to the successor's NextNode.
func runOnBases(tid state.ThreadID, bases []state.ExecutionState, run func(state.ExecutionState) stmt.Outcome) ([]state.ExecutionState, *Verdict, error) {
	return runOnBasesErr(tid, bases, func(cs state.ExecutionState) (stmt.Outcome, error) {
		return run(cs), nil
	})
}

// runOnBasesErr is runOnBases for statement executors that can also fail
// with a fatal engine error (spec.md §7), such as ExecUnlock's
// non-reference case.
func runOnBasesErr(tid state.ThreadID, bases []state.ExecutionState, run func(state.ExecutionState) (stmt.Outcome, error)) ([]state.ExecutionState, *Verdict, error) {
	var out []state.ExecutionState
	for _, cs := range bases {
		o, err := run(cs)
		if err != nil {
			return nil, nil, err
		}
		if o.Invalid != nil {
			return nil, &Verdict{Kind: Invalid, Pos: o.Invalid.Pos, Formula: o.Invalid.Formula}, nil
		}
		out = append(out, fromOutcome(tid, o)...)
	}
	return out, nil, nil
}

// fromOutcome advances tid's PC to each successor's NextNode; package stmt
// itself never touches Thread.PC, leaving that to the caller uniformly.
func fromOutcome(tid state.ThreadID, o stmt.Outcome) []state.ExecutionState {
	out := make([]state.ExecutionState, len(o.Successors))
	for i, succ := range o.Successors {
		out[i] = advancePC(succ.State, tid, succ.NextNode)
	}
	return out
}

func advancePC(s state.ExecutionState, tid state.ThreadID, next oox.NodeID) state.ExecutionState {
	t, ok := s.Thread(tid)
	if !ok {
		return s
	}
	return s.WithThread(t.WithPC(t.PC.At(next)))
}

func resolveMember(ctx Context, class, method string) (oox.MemberRef, bool) {
	syms, ok := ctx.Symbols.Lookup(class + "." + method)
	if !ok || len(syms) == 0 {
		return oox.MemberRef{}, false
	}
	return syms[0].Member, true
}

// execCallNode handles a KindCall node: it concretizes the invocation's
// target and arguments, resolves the callee member, and — when the call
// pushes a frame inside a try block — records the extra pending pop
// (spec.md §4.4).
func execCallNode(ctx Context, s state.ExecutionState, tid state.ThreadID, t state.Thread, node *oox.CFGNode) ([]state.ExecutionState, *Verdict, error) {
	if node.Invocation == nil {
		return nil, nil, enginerr.New(enginerr.Unresolved, "call node has no invocation")
	}
	member, ok := resolveMember(ctx, node.Invocation.Class, node.Invocation.Method)
	if !ok {
		return nil, nil, enginerr.New(enginerr.ExpectedMethodMember, node.Invocation.Class+"."+node.Invocation.Method)
	}

	frame, _ := t.CallStack.Top()
	exprs := append([]oox.Expr{}, node.Invocation.Args...)
	if node.Invocation.Target != nil {
		exprs = append(exprs, node.Invocation.Target)
	}
	bases := concretizeAll(ctx, s, frame, exprs)

	var out []state.ExecutionState
	for _, cs := range bases {
		o, err := stmt.ExecCall(cs, tid, node, member)
		if err != nil {
			return nil, nil, err
		}
		if o.Invalid != nil {
			return nil, &Verdict{Kind: Invalid, Pos: o.Invalid.Pos, Formula: o.Invalid.Formula}, nil
		}
		for _, succ := range o.Successors {
			ns := advancePC(succ.State, tid, succ.NextNode)
			if nt, ok := ns.Thread(tid); ok {
				if _, hasHandler := nt.HandlerStack.Top(); hasHandler {
					ns = unwind.IncrementLastHandlerPops(ns, tid)
				}
			}
			out = append(out, ns)
		}
	}
	return out, nil, nil
}

// execMemberEntry discharges the entered member's Requires clause (spec.md
// §4.2), skipping discharge on the very first call of the run (an empty
// ProgramTrace means this is the entry point's own invocation, which the
// verification driver already set up to satisfy its own precondition).
func execMemberEntry(ctx Context, s state.ExecutionState, tid state.ThreadID, node *oox.CFGNode) ([]state.ExecutionState, *Verdict, error) {
	next := node.Successors[0]
	if ctx.Opts.VerifyRequires && len(s.ProgramTrace) > 0 && node.Member != nil && node.Member.Requires != nil {
		out := stmt.ExecAssert(s, tid, oox.Assert{Cond: node.Member.Requires}, node.Pos, ctx.Solver, next)
		if out.Invalid != nil {
			return nil, &Verdict{Kind: Invalid, Pos: out.Invalid.Pos, Formula: out.Invalid.Formula}, nil
		}
		return fromOutcome(tid, out), nil, nil
	}
	return fromOutcome(tid, stmt.ExecMemberEntry(s, next)), nil, nil
}

// execMemberExit discharges the exited member's Ensures clause before
// popping the frame, so that the clause still sees the callee's retval and
// locals (spec.md §4.2).
func execMemberExit(ctx Context, s state.ExecutionState, tid state.ThreadID, node *oox.CFGNode) ([]state.ExecutionState, *Verdict, error) {
	t, ok := s.Thread(tid)
	if !ok {
		return nil, nil, enginerr.New(enginerr.CannotGetCurrentThread, "")
	}
	frame, hasFrame := t.CallStack.Top()
	if hasFrame && ctx.Opts.VerifyEnsures && frame.CurrentMember.Ensures != nil {
		out := stmt.ExecAssert(s, tid, oox.Assert{Cond: frame.CurrentMember.Ensures}, node.Pos, ctx.Solver, node.ID)
		if out.Invalid != nil {
			return nil, &Verdict{Kind: Invalid, Pos: out.Invalid.Pos, Formula: out.Invalid.Formula}, nil
		}
		s = out.Successors[0].State
	}
	o, err := stmt.ExecMemberExit(s, tid)
	if err != nil {
		return nil, nil, err
	}
	return fromOutcome(tid, o), nil, nil
}

func execTryEntry(s state.ExecutionState, tid state.ThreadID, t state.Thread, node *oox.CFGNode) ([]state.ExecutionState, *Verdict, error) {
	hs := t.HandlerStack.Push(state.HandlerEntry{Handler: t.PC.At(node.Handler)})
	t = t.WithHandlerStack(hs).WithPC(t.PC.At(node.Successors[0]))
	return []state.ExecutionState{s.WithThread(t)}, nil, nil
}

// execPopHandler implements TryExit and CatchEntry, both of which pop the
// innermost handler off the thread's HandlerStack (spec.md §4.4's
// "TryExit and CatchEntry pop the top handler").
func execPopHandler(s state.ExecutionState, tid state.ThreadID, t state.Thread, node *oox.CFGNode) ([]state.ExecutionState, *Verdict, error) {
	t = t.WithHandlerStack(t.HandlerStack.Pop()).WithPC(t.PC.At(node.Successors[0]))
	return []state.ExecutionState{s.WithThread(t)}, nil, nil
}

// execExceptional models a runtime-guard violation (e.g. an array access a
// parser/labeller already determined is out of bounds along this path):
// it raises a generic runtime exception through package unwind, exactly
// like an explicit Throw (spec.md §4.4).
func execExceptional(ctx Context, s state.ExecutionState, tid state.ThreadID, node *oox.CFGNode) ([]state.ExecutionState, *Verdict, error) {
	exc := stmt.ThrownException{Class: "RuntimeException", Pos: node.Pos}
	return raiseException(ctx, s, tid, exc)
}

// raiseException drives package unwind's exception state machine to a
// fixed point and translates its Result into Thread's return shape.
func raiseException(ctx Context, s state.ExecutionState, tid state.ThreadID, exc stmt.ThrownException) ([]state.ExecutionState, *Verdict, error) {
	res := unwind.Raise(s, tid, exc, ctx.Solver, ctx.Opts.VerifyExceptional)
	if res.Invalid != nil {
		return nil, &Verdict{Kind: Invalid, Pos: res.Invalid.Pos, Formula: res.Invalid.Formula}, nil
	}
	if res.Finished {
		// Unwound to an empty call stack (spec.md §4.4, §9's "exception
		// at root → Valid"). No successor state, no verdict: this
		// exploration branch ends here, other live threads included, and
		// contributes Valid.
		return nil, nil, nil
	}
	return []state.ExecutionState{res.Successor.State}, nil, nil
}
