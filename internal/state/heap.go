package state

import "github.com/cwbudde/ooxverify/internal/value"

// Reference is an opaque integer handle identifying an allocation
// (spec.md §3).
type Reference int64

// NullReference is the distinguished reference denoting null.
const NullReference Reference = 0

// UnknownReference is spec.md §9's "distinguished smallest reference
// value" (`minBound` in the reference implementation): the bottom marker
// used when a symbolic reference has no resolved aliases yet. POR
// (package por) treats any read/write set containing it as pessimistically
// dependent with anything non-empty.
const UnknownReference Reference = -1

// Cell is a heap allocation: either an object or an array value.
type Cell = value.Value

// Heap maps References to heap cells. Allocation returns a fresh
// Reference; there is no deallocation (bounded exploration, spec.md §3).
// Heap is immutable: With* methods return a new Heap sharing the
// predecessor's entries, matching the teacher's Clone-on-write style
// (internal/interp/runtime/callstack.go's CallStack.Clone).
type Heap struct {
	cells map[Reference]Cell
	next  Reference
}

func NewHeap() Heap {
	return Heap{cells: map[Reference]Cell{}, next: 1}
}

// Get returns the cell at ref, or (nil, false) if unallocated.
func (h Heap) Get(ref Reference) (Cell, bool) {
	c, ok := h.cells[ref]
	return c, ok
}

// Alloc returns a new Heap with a freshly allocated cell, and the
// Reference it was allocated at.
func (h Heap) Alloc(cell Cell) (Heap, Reference) {
	ref := h.next
	cells := cloneCells(h.cells)
	cells[ref] = cell
	return Heap{cells: cells, next: ref + 1}, ref
}

// Set returns a new Heap with ref's cell replaced (mutating a field or
// array element always produces a new cell and a new Heap).
func (h Heap) Set(ref Reference, cell Cell) Heap {
	cells := cloneCells(h.cells)
	cells[ref] = cell
	return Heap{cells: cells, next: h.next}
}

// All returns a copy of every allocated (Reference, Cell) pair, used by
// concretization (package exec) to enumerate candidate aliases of a given
// shape.
func (h Heap) All() map[Reference]Cell {
	return cloneCells(h.cells)
}

// NextReference previews the Reference Alloc would assign next, without
// allocating — offered as one of a symbolic reference's concretization
// candidates to represent "a fresh, not-yet-seen identity" (spec.md §4.1).
func (h Heap) NextReference() Reference {
	return h.next
}

// AllocAt allocates cell at exactly ref, used once concretization has
// already committed to ref as a symbolic reference's fresh identity so the
// heap cell and the chosen alias must agree. Bumps the free-reference
// counter past ref if necessary.
func (h Heap) AllocAt(ref Reference, cell Cell) Heap {
	cells := cloneCells(h.cells)
	cells[ref] = cell
	next := h.next
	if ref >= next {
		next = ref + 1
	}
	return Heap{cells: cells, next: next}
}

func cloneCells(m map[Reference]Cell) map[Reference]Cell {
	out := make(map[Reference]Cell, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
