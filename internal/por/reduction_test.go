package por

import (
	"testing"

	"github.com/cwbudde/ooxverify/internal/oox"
	"github.com/cwbudde/ooxverify/internal/state"
	"github.com/cwbudde/ooxverify/internal/value"
)

func graphWithLock(target string) *oox.ControlFlowGraph {
	g := oox.NewControlFlowGraph()
	n := &oox.CFGNode{ID: 0, Kind: oox.KindStatNode, Stmt: oox.Lock{Target: oox.Var{Name: target}}}
	g.Add(n)
	return g
}

func threadAt(id state.ThreadID, parent state.ThreadID, g *oox.ControlFlowGraph, o int64) state.Thread {
	frame := state.NewStackFrame(state.CFGContext{}, nil, oox.MemberRef{})
	frame = frame.With("o", value.Ref{Ref: o})
	return state.NewThread(id, parent, state.NewCFGContext(g, 0), frame)
}

// TestIsEnabled_LockHeldByOtherThreadIsDisabled checks the enabled-set
// rule spec.md §4.3 step 2 and §4.5's table describe directly: a thread
// parked on Lock(r) is disabled while another thread holds r.
func TestIsEnabled_LockHeldByOtherThreadIsDisabled(t *testing.T) {
	g := graphWithLock("o")
	s := state.New(30).
		WithThread(threadAt(0, 0, g, 5)).
		WithThread(threadAt(1, 0, g, 5)).
		WithLocks(state.NewLockSet().Lock(5, 0))

	if IsEnabled(s, 0) != true {
		t.Fatal("the holder of a lock should still be enabled on it (idempotent re-lock)")
	}
	if IsEnabled(s, 1) != false {
		t.Fatal("a thread contending for a lock held by someone else must be disabled")
	}
}

// TestIsEnabled_JoinWithLiveChildIsDisabled checks the other disabling
// condition in spec.md's table: a Join is disabled while any child thread
// (Parent == tid) is still live.
func TestIsEnabled_JoinWithLiveChildIsDisabled(t *testing.T) {
	g := oox.NewControlFlowGraph()
	g.Add(&oox.CFGNode{ID: 0, Kind: oox.KindStatNode, Stmt: oox.Join{}})
	frame := state.NewStackFrame(state.CFGContext{}, nil, oox.MemberRef{})
	parent := state.NewThread(0, 0, state.NewCFGContext(g, 0), frame)
	child := state.NewThread(1, 0, state.NewCFGContext(g, 0), frame)

	s := state.New(30).WithThread(parent).WithThread(child)
	if IsEnabled(s, 0) {
		t.Fatal("Join must be disabled while a forked child thread is still live")
	}

	s = s.WithoutThread(1)
	if !IsEnabled(s, 0) {
		t.Fatal("Join must be enabled once every child has despawned")
	}
}

// TestIsIndependent_DisjointReferencesAreIndependent and the contending
// case below exercise spec.md §4.5's independence relation directly,
// which NextConstraints and the locality optimisation both build on.
func TestIsIndependent_DisjointReferencesAreIndependent(t *testing.T) {
	g := graphWithLock("o")
	s := state.New(30).
		WithThread(threadAt(0, 0, g, 1)).
		WithThread(threadAt(1, 0, g, 2))

	if !IsIndependent(s, 0, 1) {
		t.Fatal("two threads locking disjoint references should be independent")
	}
}

func TestIsIndependent_SameReferenceIsDependent(t *testing.T) {
	g := graphWithLock("o")
	s := state.New(30).
		WithThread(threadAt(0, 0, g, 5)).
		WithThread(threadAt(1, 0, g, 5))

	if IsIndependent(s, 0, 1) {
		t.Fatal("two threads locking the same reference must be dependent")
	}
}

// TestReduce_EmptyEnabledWithLiveThreadsIsDeadlock checks the deadlock
// signal Step relies on (spec.md §4.5: "por(state, []) is called").
func TestReduce_EmptyEnabledWithLiveThreadsIsDeadlock(t *testing.T) {
	g := graphWithLock("o")
	s := state.New(30).WithThread(threadAt(0, 0, g, 5))

	_, deadlock := Reduce(s, nil)
	if !deadlock {
		t.Fatal("an empty enabled set with a live thread must report deadlock")
	}
}

func TestReduce_NoThreadsIsNotDeadlock(t *testing.T) {
	s := state.New(30)
	_, deadlock := Reduce(s, nil)
	if deadlock {
		t.Fatal("no live threads at all is termination, not deadlock")
	}
}
