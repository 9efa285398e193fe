package state

// ThreadID identifies a simulated thread of the target program.
type ThreadID int

// LockSet is the partial mapping from Reference to the ThreadID currently
// holding its lock (spec.md §3). Invariants: a reference is mapped at most
// once; unlocking an unmapped reference is a no-op; locking a reference
// already held by the same thread is a no-op (re-entrant).
type LockSet struct {
	holders map[Reference]ThreadID
}

func NewLockSet() LockSet {
	return LockSet{holders: map[Reference]ThreadID{}}
}

// HolderOf returns the thread holding ref's lock, if any.
func (l LockSet) HolderOf(ref Reference) (ThreadID, bool) {
	t, ok := l.holders[ref]
	return t, ok
}

// IsHeldBy reports whether ref is currently locked by tid.
func (l LockSet) IsHeldBy(ref Reference, tid ThreadID) bool {
	t, ok := l.holders[ref]
	return ok && t == tid
}

// Lock returns a new LockSet with ref acquired by tid. Re-entrant locking
// by the same thread is a no-op; it is the caller's (package stmt)
// responsibility to never call Lock when ref is held by a different
// thread — that case is "disabled", handled by package por, not here.
func (l LockSet) Lock(ref Reference, tid ThreadID) LockSet {
	if l.IsHeldBy(ref, tid) {
		return l
	}
	out := cloneHolders(l.holders)
	out[ref] = tid
	return LockSet{holders: out}
}

// Unlock returns a new LockSet with ref released. A no-op if ref was not
// locked.
func (l LockSet) Unlock(ref Reference) LockSet {
	if _, ok := l.holders[ref]; !ok {
		return l
	}
	out := cloneHolders(l.holders)
	delete(out, ref)
	return LockSet{holders: out}
}

// HeldBy returns every reference currently locked by tid (used when a
// thread despawns, to release its locks, and by universal property 3's
// tests).
func (l LockSet) HeldBy(tid ThreadID) []Reference {
	var out []Reference
	for ref, holder := range l.holders {
		if holder == tid {
			out = append(out, ref)
		}
	}
	return out
}

// ReleaseAll returns a new LockSet with every lock held by tid released.
func (l LockSet) ReleaseAll(tid ThreadID) LockSet {
	held := l.HeldBy(tid)
	if len(held) == 0 {
		return l
	}
	out := cloneHolders(l.holders)
	for _, ref := range held {
		delete(out, ref)
	}
	return LockSet{holders: out}
}

// All returns every (reference, holder) pair, for invariant checks.
func (l LockSet) All() map[Reference]ThreadID {
	return cloneHolders(l.holders)
}

func cloneHolders(m map[Reference]ThreadID) map[Reference]ThreadID {
	out := make(map[Reference]ThreadID, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
