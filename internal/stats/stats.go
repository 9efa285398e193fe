// Package stats is spec.md §6's `runBenchmark` ambient statistics
// collector. It plays no part in any verdict or branching decision — it
// is a narrow counter struct a caller may consult afterwards, mirroring
// the teacher's treatment of `--trace` output as a side channel rather
// than something the interpreter's control flow depends on.
package stats

import (
	"sync/atomic"

	"github.com/cwbudde/ooxverify/internal/oox"
	"github.com/cwbudde/ooxverify/internal/solver"
)

// Counters holds exploration statistics. Only SolverCalls is incremented
// by the engine (through CountingSolver); AddState, AddPruned and
// AddCacheHit have no callers, so StatesExplored, BranchesPruned and
// SolverCacheHits stay zero. Safe for concurrent use so package verify's
// optional parallel-exploration driver can share one instance across
// goroutines.
type Counters struct {
	StatesExplored  int64
	BranchesPruned  int64
	SolverCalls     int64
	SolverCacheHits int64
}

func (c *Counters) AddState()      { atomic.AddInt64(&c.StatesExplored, 1) }
func (c *Counters) AddPruned()     { atomic.AddInt64(&c.BranchesPruned, 1) }
func (c *Counters) AddSolverCall() { atomic.AddInt64(&c.SolverCalls, 1) }
func (c *Counters) AddCacheHit()   { atomic.AddInt64(&c.SolverCacheHits, 1) }

// Snapshot returns a copy safe to read without further synchronisation.
func (c *Counters) Snapshot() Counters {
	return Counters{
		StatesExplored:  atomic.LoadInt64(&c.StatesExplored),
		BranchesPruned:  atomic.LoadInt64(&c.BranchesPruned),
		SolverCalls:     atomic.LoadInt64(&c.SolverCalls),
		SolverCacheHits: atomic.LoadInt64(&c.SolverCacheHits),
	}
}

// CountingSolver wraps a Solver to tally every call into Counters, used
// only when Configuration.runBenchmark is set (spec.md §6).
type CountingSolver struct {
	Inner    solver.Solver
	Counters *Counters
}

func (c *CountingSolver) Check(formula oox.Expr) solver.Verdict {
	c.Counters.AddSolverCall()
	return c.Inner.Check(formula)
}
