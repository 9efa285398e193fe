package solver

import (
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/cwbudde/ooxverify/internal/oox"
)

// Cache wraps a Solver with structural-hash memoization, keyed on formula
// identity and never invalidated (spec.md §9: "key on structural hash of
// the normalised formula; invalidate never (formulas are pure)"). Enabled
// by Configuration.cacheFormulas. Safe for concurrent use, matching
// spec.md §5's requirement that solver calls be synchronised.
type Cache struct {
	inner Solver
	mu    sync.Mutex
	table map[uint64]Verdict
}

func NewCache(inner Solver) *Cache {
	return &Cache{inner: inner, table: map[uint64]Verdict{}}
}

func (c *Cache) Check(formula oox.Expr) Verdict {
	key := structuralHash(formula)
	c.mu.Lock()
	if v, ok := c.table[key]; ok {
		c.mu.Unlock()
		return v
	}
	c.mu.Unlock()

	v := c.inner.Check(formula)

	c.mu.Lock()
	c.table[key] = v
	c.mu.Unlock()
	return v
}

// structuralHash hashes formula's String() rendering. String() is a
// faithful structural rendering of the expression tree (package oox), so
// two expressions with the same shape and literals always hash equal.
func structuralHash(formula oox.Expr) uint64 {
	d := xxhash.New()
	_, _ = fmt.Fprint(d, formula.String())
	return d.Sum64()
}
