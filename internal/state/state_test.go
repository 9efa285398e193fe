package state

import (
	"testing"

	"github.com/cwbudde/ooxverify/internal/oox"
	"github.com/cwbudde/ooxverify/internal/value"
)

var mainMember = oox.MemberRef{Kind: oox.MemberMethod, Class: "Main", Name: "main", IsStatic: true}

// TestProperty2_LiveThreadsHaveNonEmptyCallStack asserts spec.md §8
// universal property 2: every Thread in s.Threads has a non-empty call
// stack. NewThread always pushes an initial frame, and nothing in this
// package ever pops a thread's last frame without also removing it from
// ExecutionState.Threads (that's package exec's job, via WithoutThread).
func TestProperty2_LiveThreadsHaveNonEmptyCallStack(t *testing.T) {
	frame := NewStackFrame(CFGContext{}, nil, mainMember)
	th := NewThread(0, 0, CFGContext{}, frame)
	s := New(30).WithThread(th)

	for tid, th := range s.Threads {
		if !th.IsAlive() {
			t.Fatalf("thread %d has an empty call stack", tid)
		}
	}
	if err := CheckInvariants(s); err != nil {
		t.Fatalf("CheckInvariants: %v", err)
	}
}

// TestProperty3_LockHoldersAreLiveThreads asserts spec.md §8 universal
// property 3: if r is in s.Locks, s.Locks[r] names a live thread.
func TestProperty3_LockHoldersAreLiveThreads(t *testing.T) {
	frame := NewStackFrame(CFGContext{}, nil, mainMember)
	th := NewThread(1, 0, CFGContext{}, frame)
	s := New(30).WithThread(th).WithLocks(NewLockSet().Lock(Reference(5), 1))

	if err := CheckInvariants(s); err != nil {
		t.Fatalf("CheckInvariants: %v", err)
	}

	// A lock held by a thread id that never joined s.Threads violates the
	// property, and CheckInvariants must catch it.
	dangling := New(30).WithLocks(NewLockSet().Lock(Reference(5), 99))
	if err := CheckInvariants(dangling); err == nil {
		t.Fatal("expected CheckInvariants to reject a lock held by a dead thread")
	}
}

// TestAllThreadsDespawned_EmptyState checks the terminal condition
// package exec.Process relies on directly (spec.md §3: "terminates when
// all threads have despawned").
func TestAllThreadsDespawned_EmptyState(t *testing.T) {
	s := New(30)
	if !s.AllThreadsDespawned() {
		t.Fatal("a freshly constructed state should report no live threads")
	}
	frame := NewStackFrame(CFGContext{}, nil, mainMember)
	s = s.WithThread(NewThread(0, 0, CFGContext{}, frame))
	if s.AllThreadsDespawned() {
		t.Fatal("a state with a live thread should not report AllThreadsDespawned")
	}
	s = s.WithoutThread(0)
	if !s.AllThreadsDespawned() {
		t.Fatal("removing the last live thread should report AllThreadsDespawned")
	}
}

// TestThreadIDs_Sorted checks the determinism property (spec.md §8
// property 5) depends on: exploration order over live threads must be
// reproducible, which requires ThreadIDs to return a stable sort rather
// than Go's unordered map iteration.
func TestThreadIDs_Sorted(t *testing.T) {
	s := New(30)
	frame := NewStackFrame(CFGContext{}, nil, mainMember)
	for _, id := range []ThreadID{3, 1, 2, 0} {
		s = s.WithThread(NewThread(id, 0, CFGContext{}, frame))
	}
	ids := s.ThreadIDs()
	for i := 1; i < len(ids); i++ {
		if ids[i-1] > ids[i] {
			t.Fatalf("ThreadIDs not sorted: %v", ids)
		}
	}
}

// TestWithStep_DecrementsRemainingK checks the depth budget invariant
// (spec.md §3 invariant (c)): WithStep never drives RemainingK negative.
func TestWithStep_DecrementsRemainingK(t *testing.T) {
	s := New(1)
	s = s.WithStep(0, CFGContext{})
	if s.RemainingK != 0 {
		t.Fatalf("RemainingK = %d, want 0", s.RemainingK)
	}
	if !s.IsDepthExhausted() {
		t.Fatal("expected depth exhausted after RemainingK hits 0")
	}
	s = s.WithStep(0, CFGContext{})
	if s.RemainingK != 0 {
		t.Fatalf("RemainingK went negative: %d", s.RemainingK)
	}
}

// TestHeap_CopyOnWrite checks the structural-sharing discipline spec.md
// §9 calls for: mutating a derived Heap must never change the
// predecessor's view of an already-allocated cell.
func TestHeap_CopyOnWrite(t *testing.T) {
	h := NewHeap()
	h, ref := h.Alloc(value.Int{Value: 1})
	h2 := h.Set(ref, value.Int{Value: 2})

	cell, ok := h.Get(ref)
	if !ok || cell.(value.Int).Value != 1 {
		t.Fatalf("predecessor heap cell changed after Set on derived heap: %v", cell)
	}
	cell2, ok := h2.Get(ref)
	if !ok || cell2.(value.Int).Value != 2 {
		t.Fatalf("derived heap did not observe its own Set: %v", cell2)
	}
}
