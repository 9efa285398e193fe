package state

// InterleavingKind distinguishes an observed-independent pair of
// next-actions from an observed-dependent one (spec.md §3, §4.5).
type InterleavingKind int

const (
	Independent InterleavingKind = iota
	NotIndependent
)

// InterleavingConstraint records that the next actions at two CFG
// contexts were (or were not) found independent by a previous POR step,
// per spec.md §3's `InterleavingConstraint` and §4.5.
type InterleavingConstraint struct {
	Kind InterleavingKind
	A, B CFGContext
}

// Endpoints returns the pair's two CFG contexts, used for the
// set-disjointness test in spec.md §4.5's constraint-filtering rule.
func (c InterleavingConstraint) Endpoints() (CFGContext, CFGContext) {
	return c.A, c.B
}

// sharesEndpoint reports whether c and o mention a common CFG context.
func (c InterleavingConstraint) sharesEndpoint(o InterleavingConstraint) bool {
	return c.A.Equal(o.A) || c.A.Equal(o.B) || c.B.Equal(o.A) || c.B.Equal(o.B)
}
