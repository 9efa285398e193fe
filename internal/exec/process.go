package exec

import (
	"math/rand"

	"github.com/cwbudde/ooxverify/internal/por"
	"github.com/cwbudde/ooxverify/internal/state"
)

// Process implements spec.md §4.3's execP scheduler loop as a recursive
// depth-first search over the interleaving tree: it computes the
// (optionally POR-reduced) enabled set, dispatches Thread on each selected
// thread, and recurses into every resulting successor, short-circuiting
// the instant any branch reports Invalid or Deadlock (spec.md §4.3 steps
// 2-6, §4.5, §7's cancellation policy — the first counterexample wins).
// Sequential recursion is the default; package verify's driver is the
// only caller allowed to additionally fan independent top-level branches
// out across goroutines (spec.md §5's "host-side parallelism is optional
// and orthogonal to the search itself").
func Process(ctx Context, s state.ExecutionState) (Verdict, error) {
	if s.AllThreadsDespawned() || s.IsDepthExhausted() {
		return valid(), nil
	}

	branches, verdict, err := Step(ctx, s)
	if err != nil {
		return Verdict{}, err
	}
	if verdict != nil {
		return *verdict, nil
	}

	for _, b := range branches {
		v, err := Process(ctx, b)
		if err != nil {
			return Verdict{}, err
		}
		if v.Kind == Invalid || v.Kind == Deadlock {
			return v, nil
		}
	}
	return valid(), nil
}

// Step performs exactly one round of scheduling and thread dispatch from
// s: computing the (optionally POR-reduced) enabled set, dispatching
// Thread on every selected thread, and collecting every resulting
// successor state with its step already recorded (state.WithStep). It is
// exported so package verify's optional parallel-exploration driver can
// fan the returned branches out across goroutines for one level before
// recursing sequentially through Process again (spec.md §5's "host-side
// parallelism is optional and orthogonal"), without duplicating the
// scheduling logic itself.
func Step(ctx Context, s state.ExecutionState) (branches []state.ExecutionState, verdict *Verdict, err error) {
	enabled := por.Enabled(s)
	var selected []state.ThreadID
	var isDeadlock bool
	if ctx.Opts.ApplyPOR {
		selected, isDeadlock = por.Reduce(s, enabled)
	} else {
		selected = enabled
		isDeadlock = len(enabled) == 0 && len(s.Threads) > 0
	}
	if isDeadlock {
		d := deadlock()
		return nil, &d, nil
	}

	if ctx.Opts.ApplyRandomInterleaving {
		selected = shuffled(selected, ctx.Opts.Rand)
	}

	var nextInterleaving []state.InterleavingConstraint
	if ctx.Opts.ApplyPOR {
		nextInterleaving = por.NextConstraints(s, selected)
	}

	for _, tid := range selected {
		threadBefore, _ := s.Thread(tid)
		sub := s.WithCurrentThread(tid)
		if ctx.Opts.ApplyPOR {
			sub = sub.WithInterleaving(nextInterleaving)
		}

		successors, v, threadErr := Thread(ctx, sub, tid)
		if threadErr != nil {
			return nil, nil, threadErr
		}
		if v != nil {
			return nil, v, nil
		}
		for _, succ := range successors {
			branches = append(branches, succ.WithStep(tid, threadBefore.PC))
		}
	}
	return branches, nil, nil
}

// shuffled returns a random permutation of ids using src, or a freshly
// seeded source when src is nil (spec.md §6's applyRandomInterleaving,
// which explicitly trades determinism for broader coverage).
func shuffled(ids []state.ThreadID, src *rand.Rand) []state.ThreadID {
	if len(ids) < 2 {
		return ids
	}
	out := append([]state.ThreadID{}, ids...)
	r := src
	if r == nil {
		r = rand.New(rand.NewSource(rand.Int63()))
	}
	r.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
