package state

// TraceEntry records one (thread, position) step taken along the
// exploration path, per spec.md §3's `programTrace`.
type TraceEntry struct {
	ThreadID ThreadID
	PC       CFGContext
}

// ExecutionState is spec.md §3's exploration unit: the full symbolic state
// at one node of the search tree. It is immutable — every semantic
// operation in packages expr/stmt/exec/por/unwind takes one ExecutionState
// and returns zero or more successor ExecutionStates, never mutating the
// one it was given. This mirrors the teacher's
// `internal/interp/runtime.ExecutionContext`, generalized from "one mutable
// context per run" to "one immutable value per search node".
type ExecutionState struct {
	Threads        map[ThreadID]Thread
	CurrentThread  *ThreadID
	Heap           Heap
	AliasMap       AliasMap
	Constraints    PathConstraints
	Locks          LockSet
	Interleaving   []InterleavingConstraint
	RemainingK     int
	NumberOfForks  int
	ProgramTrace   []TraceEntry
}

// New creates the initial ExecutionState with an empty heap/alias map/
// locks/constraints and the given depth budget.
func New(remainingK int) ExecutionState {
	return ExecutionState{
		Threads:     map[ThreadID]Thread{},
		Heap:        NewHeap(),
		AliasMap:    NewAliasMap(),
		Constraints: NewPathConstraints(),
		Locks:       NewLockSet(),
		RemainingK:  remainingK,
	}
}

// clone makes a shallow struct copy; the maps/slices it points at are
// still shared until a With* method below actually changes one, giving
// the structural sharing spec.md §9 calls for.
func (s ExecutionState) clone() ExecutionState {
	return s
}

// WithThread returns a new state with t installed (added or replacing an
// existing thread with the same ID).
func (s ExecutionState) WithThread(t Thread) ExecutionState {
	out := s.clone()
	threads := make(map[ThreadID]Thread, len(s.Threads)+1)
	for k, v := range s.Threads {
		threads[k] = v
	}
	threads[t.ID] = t
	out.Threads = threads
	return out
}

// WithoutThread returns a new state with tid removed (the thread has
// despawned).
func (s ExecutionState) WithoutThread(tid ThreadID) ExecutionState {
	out := s.clone()
	threads := make(map[ThreadID]Thread, len(s.Threads))
	for k, v := range s.Threads {
		if k != tid {
			threads[k] = v
		}
	}
	out.Threads = threads
	return out
}

func (s ExecutionState) WithCurrentThread(tid ThreadID) ExecutionState {
	out := s.clone()
	id := tid
	out.CurrentThread = &id
	return out
}

func (s ExecutionState) WithHeap(h Heap) ExecutionState {
	out := s.clone()
	out.Heap = h
	return out
}

func (s ExecutionState) WithAliasMap(a AliasMap) ExecutionState {
	out := s.clone()
	out.AliasMap = a
	return out
}

func (s ExecutionState) WithConstraints(c PathConstraints) ExecutionState {
	out := s.clone()
	out.Constraints = c
	return out
}

func (s ExecutionState) WithLocks(l LockSet) ExecutionState {
	out := s.clone()
	out.Locks = l
	return out
}

func (s ExecutionState) WithInterleaving(ic []InterleavingConstraint) ExecutionState {
	out := s.clone()
	out.Interleaving = ic
	return out
}

// WithNextForkNumber returns a new state with NumberOfForks incremented,
// and the fork-numbered ThreadID to use for the new thread.
func (s ExecutionState) WithNextForkNumber() (ExecutionState, ThreadID) {
	out := s.clone()
	out.NumberOfForks = s.NumberOfForks + 1
	return out, ThreadID(out.NumberOfForks)
}

// WithStep records a trace entry and decrements RemainingK by one,
// per spec.md §4.3 step 5's "a final step decrements remainingK".
func (s ExecutionState) WithStep(tid ThreadID, pc CFGContext) ExecutionState {
	out := s.clone()
	trace := make([]TraceEntry, len(s.ProgramTrace)+1)
	copy(trace, s.ProgramTrace)
	trace[len(s.ProgramTrace)] = TraceEntry{ThreadID: tid, PC: pc}
	out.ProgramTrace = trace
	if out.RemainingK > 0 {
		out.RemainingK--
	}
	return out
}

// IsDepthExhausted reports whether the depth budget has run out
// (spec.md §3 invariant (c), §4.3 step 6).
func (s ExecutionState) IsDepthExhausted() bool {
	return s.RemainingK <= 0
}

// AllThreadsDespawned reports whether every thread has terminated
// (spec.md §3's "terminates when all threads have despawned").
func (s ExecutionState) AllThreadsDespawned() bool {
	return len(s.Threads) == 0
}

// Thread returns the thread with the given ID, if live.
func (s ExecutionState) Thread(tid ThreadID) (Thread, bool) {
	t, ok := s.Threads[tid]
	return t, ok
}

// ThreadIDs returns a deterministic (sorted) slice of live thread IDs, so
// that exploration order is reproducible (spec.md §8 property 5,
// determinism).
func (s ExecutionState) ThreadIDs() []ThreadID {
	ids := make([]ThreadID, 0, len(s.Threads))
	for id := range s.Threads {
		ids = append(ids, id)
	}
	// insertion sort: thread counts are small (few dozen at most) and this
	// keeps the package free of a sort.Slice closure allocation per call.
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
	return ids
}
