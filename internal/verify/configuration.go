// Package verify implements spec.md §4.6 and §6: the verification driver
// that resolves Configuration.entryPoint, forks the initial
// ExecutionState with symbolic parameters, drives package exec's
// scheduler to a fixed point, and aggregates the result. Its composition
// shape — wiring evaluator/solver/scheduler together outside any one of
// them — mirrors the teacher's internal/interp/runner composition root.
package verify

import "github.com/cwbudde/ooxverify/internal/exec"

// Configuration is spec.md §6's external interface, one field per table
// row, plus one SPEC_FULL addition (ParallelExploration) for optional
// host-side fan-out (SPEC_FULL.md §5). Defaults mirror the teacher's
// simple-struct-plus-option-constructor style (evaluator.Config,
// interp.Options) rather than a flags/env framework; cmd/ooxverify's
// verify command is the only place flags get parsed into one of these.
type Configuration struct {
	FileName   string
	EntryPoint string

	MaximumDepth int

	VerifyEnsures     bool
	VerifyRequires    bool
	VerifyExceptional bool

	SymbolicNulls     bool
	SymbolicAliases   bool
	SymbolicArraySize int

	CacheFormulas bool

	ApplyPOR                bool
	ApplyLocalSolver        bool
	ApplyRandomInterleaving bool

	LogLevel     int
	RunBenchmark bool

	// ParallelExploration fans the branches of the initial exec.Step call
	// out across goroutines via golang.org/x/sync/errgroup
	// (SPEC_FULL.md §5); sequential exploration (the default, false) is
	// what spec.md §8's properties are stated over.
	ParallelExploration bool

	// Log receives trace lines gated by LogLevel (nil disables tracing
	// entirely, same as LogLevel 0).
	Log *Logger
}

// Default returns a Configuration with spec.md §6's documented defaults:
// every contract check and POR enabled, no randomisation, silent logging,
// MaximumDepth 30. Callers still must set FileName/EntryPoint.
func Default() Configuration {
	return Configuration{
		MaximumDepth:      30,
		VerifyEnsures:     true,
		VerifyRequires:    true,
		VerifyExceptional: true,
		SymbolicNulls:     true,
		SymbolicAliases:   true,
		SymbolicArraySize: 2,
		CacheFormulas:     true,
		ApplyPOR:          true,
		ApplyLocalSolver:  true,
		LogLevel:          0,
	}
}

func (c Configuration) execOptions() exec.Options {
	return exec.Options{
		VerifyRequires:          c.VerifyRequires,
		VerifyEnsures:           c.VerifyEnsures,
		VerifyExceptional:       c.VerifyExceptional,
		ApplyPOR:                c.ApplyPOR,
		ApplyRandomInterleaving: c.ApplyRandomInterleaving,
		SymbolicAliases:         c.SymbolicAliases,
		SymbolicNulls:           c.SymbolicNulls,
		SymbolicArraySize:       c.SymbolicArraySize,
	}
}
