package verify

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/ooxverify/internal/enginerr"
	"github.com/cwbudde/ooxverify/internal/exec"
	"github.com/cwbudde/ooxverify/internal/oox"
	"github.com/cwbudde/ooxverify/internal/solver"
	"github.com/cwbudde/ooxverify/internal/state"
	"github.com/cwbudde/ooxverify/internal/stats"
	"github.com/cwbudde/ooxverify/internal/value"
)

// Result is spec.md §4.6's three-way verification outcome, widened with
// the diagnostic fields an Invalid/Deadlock verdict carries and the
// Counters snapshot Configuration.runBenchmark asks for.
type Result struct {
	Kind     exec.VerdictKind
	Pos      oox.Position
	Formula  oox.Expr
	Counters stats.Counters
}

// ExitCode mirrors the teacher's cmd/dwscript convention of a zero exit
// for success and a non-zero one otherwise: Valid is 0, anything else 1.
func (r Result) ExitCode() int {
	if r.Kind == exec.Valid {
		return 0
	}
	return 1
}

// Verify resolves cfg.EntryPoint against cu, forks an initial
// ExecutionState with symbolic parameters bound, and drives package exec's
// scheduler to a fixed point (spec.md §4.6). It is the sole composition
// root wiring the solver, the scheduler and the optional statistics
// collector together, mirroring the teacher's runner.Run gluing its own
// pipeline stages.
func Verify(cu *oox.CompilationUnit, cfg Configuration) (Result, error) {
	cfg.Log.Tracef(1, "verify: resolving entry point %q in %s", cfg.EntryPoint, cu.FileName)
	member, ok := cu.LookupMember(cfg.EntryPoint)
	if !ok {
		return Result{}, enginerr.New(enginerr.UnknownEntryPoint, fmt.Sprintf("no such member %q", cfg.EntryPoint))
	}

	counters := &stats.Counters{}
	slv := buildSolver(cfg, counters)

	s, err := initialState(cu, member, cfg)
	if err != nil {
		return Result{}, err
	}

	ctx := exec.Context{
		Symbols: cu.Symbols,
		Solver:  slv,
		Opts:    cfg.execOptions(),
	}

	verdict, err := run(ctx, s, cfg)
	if err != nil {
		return Result{}, err
	}
	cfg.Log.Tracef(1, "verify: verdict %s", verdict.Kind)

	return Result{
		Kind:     verdict.Kind,
		Pos:      verdict.Pos,
		Formula:  verdict.Formula,
		Counters: counters.Snapshot(),
	}, nil
}

// buildSolver layers the optional benchmark counters and cache over the
// Reference decision procedure, with the cache outermost as spec.md §9
// describes it: "a thin wrapper in front of the oracle", so a cache hit
// never reaches the counted Check call (and so never increments
// SolverCalls twice for the same formula).
func buildSolver(cfg Configuration, counters *stats.Counters) solver.Solver {
	var s solver.Solver = solver.NewReference()
	if cfg.RunBenchmark {
		s = &stats.CountingSolver{Inner: s, Counters: counters}
	}
	if cfg.CacheFormulas {
		s = solver.NewCache(s)
	}
	return s
}

// initialState builds the depth-bounded ExecutionState forked at the
// entry member: a `this` object allocated on the heap for an instance
// method (its fields symbolic, per spec.md §4.6), and one symbolic value
// per declared parameter, bound into the single initial thread's frame.
func initialState(cu *oox.CompilationUnit, member oox.MemberRef, cfg Configuration) (state.ExecutionState, error) {
	s := state.New(cfg.MaximumDepth)

	frame := state.NewStackFrame(state.CFGContext{}, nil, member)

	if member.Kind != oox.MemberField && !member.IsStatic {
		class, ok := cu.Classes[member.Class]
		if !ok {
			return state.ExecutionState{}, enginerr.New(enginerr.Unresolved, "no such class "+member.Class)
		}
		fields := make(map[string]value.Value, len(class.Fields))
		for _, f := range class.Fields {
			fields[f.Name] = value.SymbolicValue(member.Class+"."+f.Name, f.Type)
		}
		heap, ref := s.Heap.Alloc(&value.Object{Class: member.Class, Fields: fields})
		s = s.WithHeap(heap)
		frame = frame.With(state.ThisSlot, value.Ref{Ref: int64(ref)})
	}

	for _, p := range member.Params {
		frame = frame.With(p.Name, value.SymbolicValue(p.Name, p.Type))
	}

	pc := state.NewCFGContext(cu.CFG, member.Entry)
	thread := state.NewThread(0, 0, pc, frame)
	s = s.WithThread(thread)
	return s, nil
}

// run drives the scheduler to completion, optionally fanning the very
// first Step's branches out across goroutines (spec.md §5,
// SPEC_FULL.md §5's "host-side parallelism is optional and orthogonal to
// the search algorithm itself"); every level below that first one always
// recurses sequentially through exec.Process.
func run(ctx exec.Context, s state.ExecutionState, cfg Configuration) (exec.Verdict, error) {
	if !cfg.ParallelExploration {
		return exec.Process(ctx, s)
	}

	if s.AllThreadsDespawned() || s.IsDepthExhausted() {
		return exec.Process(ctx, s)
	}

	branches, verdict, err := exec.Step(ctx, s)
	if err != nil {
		return exec.Verdict{}, err
	}
	if verdict != nil {
		return *verdict, nil
	}

	results := make([]exec.Verdict, len(branches))
	g, _ := errgroup.WithContext(context.Background())
	for i, b := range branches {
		i, b := i, b
		g.Go(func() error {
			v, err := exec.Process(ctx, b)
			if err != nil {
				return err
			}
			results[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return exec.Verdict{}, err
	}

	for _, v := range results {
		if v.Kind == exec.Invalid || v.Kind == exec.Deadlock {
			return v, nil
		}
	}
	return exec.Verdict{Kind: exec.Valid}, nil
}
