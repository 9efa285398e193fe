package stmt

import (
	"testing"

	"github.com/cwbudde/ooxverify/internal/oox"
	"github.com/cwbudde/ooxverify/internal/state"
	"github.com/cwbudde/ooxverify/internal/value"
)

func newStateWithRef(t *testing.T, tid state.ThreadID, target oox.Expr) (state.ExecutionState, state.Thread) {
	t.Helper()
	heap, ref := state.NewHeap().Alloc(&value.Object{Class: "Obj", Fields: map[string]value.Value{}})

	frame := state.NewStackFrame(state.CFGContext{}, nil, oox.MemberRef{Name: "m"})
	frame = frame.With("o", value.Ref{Ref: int64(ref)})
	th := state.NewThread(tid, 0, state.CFGContext{}, frame)
	s := state.New(30).WithHeap(heap).WithThread(th)
	return s, th
}

// TestProperty4_LockIdempotence asserts spec.md §8 universal property 4:
// lock v; lock v on the same thread is equivalent to a single lock v —
// re-acquiring a lock you already hold never blocks and never changes who
// holds it.
func TestProperty4_LockIdempotence(t *testing.T) {
	s, _ := newStateWithRef(t, 0, oox.Var{Name: "o"})

	first := ExecLock(s, 0, oox.Lock{Target: oox.Var{Name: "o"}}, 1)
	if first.Disabled || len(first.Successors) != 1 {
		t.Fatalf("first lock should succeed uncontested: %+v", first)
	}
	s1 := first.Successors[0].State

	second := ExecLock(s1, 0, oox.Lock{Target: oox.Var{Name: "o"}}, 2)
	if second.Disabled || len(second.Successors) != 1 {
		t.Fatalf("re-locking the same ref from the same thread should succeed: %+v", second)
	}
	s2 := second.Successors[0].State

	// Re-locking must not add a second holder or otherwise change the
	// lock set's observable state beyond advancing the PC.
	heldBy0 := s2.Locks.HeldBy(0)
	if len(heldBy0) != 1 {
		t.Fatalf("expected exactly one ref held by thread 0 after idempotent re-lock, got %v", heldBy0)
	}
}

// TestLock_ContendedByOtherThread asserts the disabled-outcome path: a
// lock already held by a different thread must report Disabled rather
// than silently granting it or pruning.
func TestLock_ContendedByOtherThread(t *testing.T) {
	s, _ := newStateWithRef(t, 0, oox.Var{Name: "o"})
	first := ExecLock(s, 0, oox.Lock{Target: oox.Var{Name: "o"}}, 1)
	s1 := first.Successors[0].State

	frame, _ := func() (state.StackFrame, bool) {
		th, _ := s1.Thread(0)
		f, ok := th.CallStack.Top()
		return f, ok
	}()
	th1 := state.NewThread(1, 0, state.CFGContext{}, frame)
	s1 = s1.WithThread(th1)

	second := ExecLock(s1, 1, oox.Lock{Target: oox.Var{Name: "o"}}, 2)
	if !second.Disabled {
		t.Fatal("expected Disabled when another thread already holds the lock")
	}
	if len(second.Successors) != 0 {
		t.Fatalf("a disabled lock attempt must produce no successors, got %v", second.Successors)
	}
}

// TestLock_NullReferenceIsInfeasible asserts spec.md §8's boundary
// behavior: locking a null reference prunes the branch, it is not
// reported Invalid.
func TestLock_NullReferenceIsInfeasible(t *testing.T) {
	frame := state.NewStackFrame(state.CFGContext{}, nil, oox.MemberRef{Name: "m"})
	frame = frame.With("o", value.Null{})
	th := state.NewThread(0, 0, state.CFGContext{}, frame)
	s := state.New(30).WithThread(th)

	out := ExecLock(s, 0, oox.Lock{Target: oox.Var{Name: "o"}}, 1)
	if out.Disabled {
		t.Fatal("a null target is infeasible, not disabled")
	}
	if len(out.Successors) != 0 || out.Invalid != nil {
		t.Fatalf("locking null should prune silently, got %+v", out)
	}
}

// TestUnlock_NotHeldIsNoOp checks Unlock's documented no-op behavior for
// a reference that was never locked.
func TestUnlock_NotHeldIsNoOp(t *testing.T) {
	s, _ := newStateWithRef(t, 0, oox.Var{Name: "o"})
	out, err := ExecUnlock(s, 0, oox.Unlock{Target: oox.Var{Name: "o"}}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Successors) != 1 {
		t.Fatalf("unlocking an unheld ref should still advance, got %+v", out)
	}
	if len(out.Successors[0].State.Locks.All()) != 0 {
		t.Fatal("unlocking an unheld ref should not create a lock entry")
	}
}

// TestUnlock_NullIsNoOp checks that unlocking a null reference advances
// without error: null can never hold a lock, so there is nothing to
// release, and it is not the "non-reference value" spec.md §4.2 reserves
// the fatal engine error for.
func TestUnlock_NullIsNoOp(t *testing.T) {
	frame := state.NewStackFrame(state.CFGContext{}, nil, oox.MemberRef{Name: "m"})
	frame = frame.With("o", value.Null{})
	th := state.NewThread(0, 0, state.CFGContext{}, frame)
	s := state.New(30).WithThread(th)

	out, err := ExecUnlock(s, 0, oox.Unlock{Target: oox.Var{Name: "o"}}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Successors) != 1 {
		t.Fatalf("unlocking null should still advance, got %+v", out)
	}
}

// TestUnlock_NonReferenceIsFatal asserts spec.md §4.2's one fatal
// engine-error case for Unlock: a target that evaluates to a value that
// is neither a reference nor still-symbolic is malformed input.
func TestUnlock_NonReferenceIsFatal(t *testing.T) {
	frame := state.NewStackFrame(state.CFGContext{}, nil, oox.MemberRef{Name: "m"})
	frame = frame.With("o", value.Int{Value: 42})
	th := state.NewThread(0, 0, state.CFGContext{}, frame)
	s := state.New(30).WithThread(th)

	_, err := ExecUnlock(s, 0, oox.Unlock{Target: oox.Var{Name: "o"}}, 1)
	if err == nil {
		t.Fatal("expected a fatal engine error for a non-reference unlock target")
	}
}
