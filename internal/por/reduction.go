package por

import (
	"github.com/cwbudde/ooxverify/internal/expr"
	"github.com/cwbudde/ooxverify/internal/oox"
	"github.com/cwbudde/ooxverify/internal/state"
	"github.com/cwbudde/ooxverify/internal/value"
)

// IsEnabled reports whether tid may be scheduled next (spec.md §4.3 step 2):
// disabled only when parked on a Lock held by another thread, or a Join
// whose child set is still non-empty. A symbolic lock target is always
// enabled — concretization happens inside the lock statement's own
// execution, not here.
func IsEnabled(s state.ExecutionState, tid state.ThreadID) bool {
	t, ok := s.Thread(tid)
	if !ok {
		return false
	}
	node := t.PC.Node()
	if node == nil || node.Kind != oox.KindStatNode {
		return true
	}
	frame, _ := t.CallStack.Top()

	switch n := node.Stmt.(type) {
	case oox.Lock:
		v := expr.Evaluate(s, frame, n.Target)
		ref, isRef := v.(value.Ref)
		if !isRef {
			return true
		}
		holder, held := s.Locks.HolderOf(state.Reference(ref.Ref))
		return !held || holder == tid
	case oox.Join:
		for _, other := range s.Threads {
			if other.ID != tid && other.Parent == tid {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Enabled returns the sorted subset of live threads for which IsEnabled
// holds.
func Enabled(s state.ExecutionState) []state.ThreadID {
	var out []state.ThreadID
	for _, tid := range s.ThreadIDs() {
		if IsEnabled(s, tid) {
			out = append(out, tid)
		}
	}
	return out
}

// Reduce applies spec.md §4.5 to the enabled set: the unique-interleaving
// filter, then the locality optimisation. deadlock is true when enabled was
// empty but live threads remain (spec.md §4.5's "por(state, []) is called").
func Reduce(s state.ExecutionState, enabled []state.ThreadID) (selected []state.ThreadID, deadlock bool) {
	if len(enabled) == 0 {
		return nil, len(s.Threads) > 0
	}

	unique := filterUnique(s, enabled)
	locals := onlyDoLocals(s, unique)
	if len(locals) > 0 {
		return locals[:1], false
	}
	return unique, false
}

// filterUnique drops threads whose next action was already explored via a
// different interleaving order, per spec.md §4.5's unique-interleaving
// filter.
func filterUnique(s state.ExecutionState, candidates []state.ThreadID) []state.ThreadID {
	var out []state.ThreadID
	for _, tid := range candidates {
		t, ok := s.Thread(tid)
		if !ok {
			continue
		}
		if isUnique(s, t.PC) {
			out = append(out, tid)
		}
	}
	return out
}

func isUnique(s state.ExecutionState, pc state.CFGContext) bool {
	for _, c := range s.Interleaving {
		if c.Kind != state.Independent {
			continue
		}
		prev, cur := c.A, c.B
		if pc.Equal(cur) && tracedBefore(s, prev) {
			return false
		}
	}
	return true
}

func tracedBefore(s state.ExecutionState, pc state.CFGContext) bool {
	for _, entry := range s.ProgramTrace {
		if entry.PC.Equal(pc) {
			return true
		}
	}
	return false
}

// onlyDoLocals returns the subset of candidates whose next statement
// touches no heap reference (spec.md §4.5's locality optimisation).
func onlyDoLocals(s state.ExecutionState, candidates []state.ThreadID) []state.ThreadID {
	var out []state.ThreadID
	for _, tid := range candidates {
		rw := DependentOperationsOf(s, tid)
		if len(rw.Writes) == 0 && len(rw.Reads) == 0 {
			out = append(out, tid)
		}
	}
	return out
}

// IsIndependent implements spec.md §4.5's per-pair independence test.
func IsIndependent(s state.ExecutionState, x, y state.ThreadID) bool {
	wx := DependentOperationsOf(s, x)
	wy := DependentOperationsOf(s, y)

	if len(wx.Writes) == 0 && len(wx.Reads) == 0 {
		return false
	}
	if containsBottom(wx.Writes) || containsBottom(wx.Reads) {
		return !(len(wy.Writes) > 0 || len(wy.Reads) > 0)
	}
	if containsBottom(wy.Writes) || containsBottom(wy.Reads) {
		return !(len(wx.Writes) > 0 || len(wx.Reads) > 0)
	}

	return !intersects(wx.Writes, wy.Writes) &&
		!intersects(wx.Reads, wy.Writes) &&
		!intersects(wy.Reads, wx.Writes)
}

func containsBottom(refs []state.Reference) bool {
	for _, r := range refs {
		if r == state.UnknownReference {
			return true
		}
	}
	return false
}

func intersects(a, b []state.Reference) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

// NextConstraints computes the successor state's InterleavingConstraint set
// per spec.md §4.5: for every ordered pair (x, y) of selected with x < y,
// record Independent or NotIndependent; old constraints survive unless
// superseded by a fresh Independent pair sharing an endpoint, or they were
// themselves Independent (those always get recomputed fresh, never carried
// forward unexamined).
func NextConstraints(s state.ExecutionState, selected []state.ThreadID) []state.InterleavingConstraint {
	var fresh []state.InterleavingConstraint
	for i := 0; i < len(selected); i++ {
		for j := i + 1; j < len(selected); j++ {
			x, y := selected[i], selected[j]
			tx, _ := s.Thread(x)
			ty, _ := s.Thread(y)
			kind := state.NotIndependent
			if IsIndependent(s, x, y) {
				kind = state.Independent
			}
			fresh = append(fresh, state.InterleavingConstraint{Kind: kind, A: tx.PC, B: ty.PC})
		}
	}

	var kept []state.InterleavingConstraint
	for _, old := range s.Interleaving {
		if old.Kind == state.Independent {
			continue
		}
		retained := true
		for _, f := range fresh {
			if f.Kind == state.Independent && pairsShareEndpoint(old, f) {
				retained = false
				break
			}
		}
		if retained {
			kept = append(kept, old)
		}
	}

	return append(kept, fresh...)
}

func pairsShareEndpoint(a, b state.InterleavingConstraint) bool {
	a1, a2 := a.Endpoints()
	b1, b2 := b.Endpoints()
	return a1.Equal(b1) || a1.Equal(b2) || a2.Equal(b1) || a2.Equal(b2)
}
