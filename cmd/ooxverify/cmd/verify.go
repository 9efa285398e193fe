package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cwbudde/ooxverify/internal/exec"
	"github.com/cwbudde/ooxverify/internal/oox/fixtures"
	"github.com/cwbudde/ooxverify/internal/verify"
)

var verifyFlags struct {
	fixture    string
	entryPoint string

	maxDepth int

	verifyEnsures     bool
	verifyRequires    bool
	verifyExceptional bool

	symbolicNulls     bool
	symbolicAliases   bool
	symbolicArraySize int

	cacheFormulas bool

	applyPOR                bool
	applyLocalSolver        bool
	applyRandomInterleaving bool

	logLevel     int
	runBenchmark bool

	parallelExploration bool
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a bundled OOX fixture against its contracts",
	Long: `verify runs the symbolic execution engine over one of the bundled
OOX fixtures (see "ooxverify fixtures") and reports Valid, Invalid, or
Deadlock, exiting 0 only on Valid.`,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	f := verifyCmd.Flags()
	f.StringVar(&verifyFlags.fixture, "fixture", "", "name of the bundled fixture to verify (see: ooxverify fixtures)")
	f.StringVar(&verifyFlags.entryPoint, "entry", "", `qualified entry point, "Class.member"`)

	f.IntVar(&verifyFlags.maxDepth, "max-depth", 30, "maximum exploration depth before giving up on a branch")

	f.BoolVar(&verifyFlags.verifyEnsures, "verify-ensures", true, "discharge ensures clauses at member exit")
	f.BoolVar(&verifyFlags.verifyRequires, "verify-requires", true, "discharge requires clauses at member entry")
	f.BoolVar(&verifyFlags.verifyExceptional, "verify-exceptional", true, "discharge exceptional postconditions on exception exit")

	f.BoolVar(&verifyFlags.symbolicNulls, "symbolic-nulls", true, "offer null as a concretization branch for unresolved references")
	f.BoolVar(&verifyFlags.symbolicAliases, "symbolic-aliases", true, "concretize unresolved references and arrays by branching over alias sets")
	f.IntVar(&verifyFlags.symbolicArraySize, "symbolic-array-size", 2, "maximum length a symbolic array may concretize to")

	f.BoolVar(&verifyFlags.cacheFormulas, "cache-formulas", true, "cache solver verdicts by formula")

	f.BoolVar(&verifyFlags.applyPOR, "apply-por", true, "apply partial-order reduction when scheduling threads")
	f.BoolVar(&verifyFlags.applyLocalSolver, "apply-local-solver", true, "accepted but not consulted: literal subexpressions are always folded before the solver is called")
	f.BoolVar(&verifyFlags.applyRandomInterleaving, "apply-random-interleaving", false, "shuffle the enabled set instead of exploring it in order")

	f.IntVar(&verifyFlags.logLevel, "log-level", 0, "trace verbosity (0 disables tracing)")
	f.BoolVar(&verifyFlags.runBenchmark, "run-benchmark", false, "collect and print exploration counters")

	f.BoolVar(&verifyFlags.parallelExploration, "parallel", false, "fan the first exploration step out across goroutines")
}

func runVerify(cmd *cobra.Command, args []string) error {
	if verifyFlags.fixture == "" {
		return fmt.Errorf("--fixture is required (see: ooxverify fixtures)")
	}
	if verifyFlags.entryPoint == "" {
		return fmt.Errorf("--entry is required, e.g. --entry SomeClass.m1")
	}

	cu, ok := fixtures.Get(verifyFlags.fixture)
	if !ok {
		return fmt.Errorf("unknown fixture %q (see: ooxverify fixtures)", verifyFlags.fixture)
	}

	cfg := verify.Configuration{
		FileName:   cu.FileName,
		EntryPoint: verifyFlags.entryPoint,

		MaximumDepth: verifyFlags.maxDepth,

		VerifyEnsures:     verifyFlags.verifyEnsures,
		VerifyRequires:    verifyFlags.verifyRequires,
		VerifyExceptional: verifyFlags.verifyExceptional,

		SymbolicNulls:     verifyFlags.symbolicNulls,
		SymbolicAliases:   verifyFlags.symbolicAliases,
		SymbolicArraySize: verifyFlags.symbolicArraySize,

		CacheFormulas: verifyFlags.cacheFormulas,

		ApplyPOR:                verifyFlags.applyPOR,
		ApplyLocalSolver:        verifyFlags.applyLocalSolver,
		ApplyRandomInterleaving: verifyFlags.applyRandomInterleaving,

		LogLevel:     verifyFlags.logLevel,
		RunBenchmark: verifyFlags.runBenchmark,

		ParallelExploration: verifyFlags.parallelExploration,
	}
	if verbose && cfg.LogLevel == 0 {
		cfg.LogLevel = 1
	}
	if cfg.LogLevel > 0 {
		cfg.Log = verify.NewLogger(os.Stderr, cfg.LogLevel)
	}

	result, err := verify.Verify(cu, cfg)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}

	fmt.Printf("%s: %s\n", verifyFlags.entryPoint, result.Kind)
	if result.Kind != exec.Valid {
		fmt.Printf("  at line %d, column %d: %s\n", result.Pos.Line, result.Pos.Column, result.Formula)
	}
	if cfg.RunBenchmark {
		fmt.Printf("  states explored:    %d\n", result.Counters.StatesExplored)
		fmt.Printf("  branches pruned:    %d\n", result.Counters.BranchesPruned)
		fmt.Printf("  solver calls:       %d\n", result.Counters.SolverCalls)
		fmt.Printf("  solver cache hits:  %d\n", result.Counters.SolverCacheHits)
	}

	os.Exit(result.ExitCode())
	return nil
}
