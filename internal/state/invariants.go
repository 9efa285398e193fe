package state

import "fmt"

// CheckInvariants verifies spec.md §8's universal properties 2 and 3
// against s, plus that CurrentThread names a live thread and RemainingK
// is not negative (property 1, path-constraint satisfiability, needs the
// solver and is not checked here). It is a test aid, never used for
// control flow: a violation here is an engine bug, not a verdict.
func CheckInvariants(s ExecutionState) error {
	for tid, t := range s.Threads {
		if !t.IsAlive() {
			return fmt.Errorf("invariant violated: thread %d has an empty call stack", tid)
		}
	}
	for ref, holder := range s.Locks.All() {
		if _, ok := s.Threads[holder]; !ok {
			return fmt.Errorf("invariant violated: lock on ref %d held by dead thread %d", ref, holder)
		}
	}
	if s.CurrentThread != nil {
		if _, ok := s.Threads[*s.CurrentThread]; !ok {
			return fmt.Errorf("invariant violated: currentThreadId %d names no live thread", *s.CurrentThread)
		}
	}
	if s.RemainingK < 0 {
		return fmt.Errorf("invariant violated: remainingK is negative (%d)", s.RemainingK)
	}
	return nil
}
