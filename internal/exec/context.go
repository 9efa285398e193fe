// Package exec implements spec.md §4.3: the thread interpreter (execT) that
// dispatches one CFG node for one thread, and the process scheduler (execP)
// that drives the whole multi-threaded search, consulting package por for
// interleaving reduction and package unwind for exception propagation. It
// has no direct teacher counterpart (DWScript has no symbolic execution
// loop); its composition-root shape mirrors the teacher's `runner` package
// gluing lexer→parser→interpreter into one call, generalized here to
// state→por→unwind→solver.
package exec

import (
	"math/rand"

	"github.com/cwbudde/ooxverify/internal/oox"
	"github.com/cwbudde/ooxverify/internal/solver"
)

// Options mirrors the subset of spec.md §6's Configuration that the
// exec/unwind/por layer consults directly.
type Options struct {
	VerifyRequires          bool
	VerifyEnsures           bool
	VerifyExceptional       bool
	ApplyPOR                bool
	ApplyRandomInterleaving bool
	MaxBranches             int // not read by Process or Step; exploration is not capped by it

	// SymbolicAliases gates whether concretization of not-yet-resolved
	// REF/ARRAY identities is attempted at all (spec.md §4.1); when false,
	// a write, lock or unlock through an unresolved symbolic reference
	// prunes, while a read through one evaluates to a symbolic expression.
	SymbolicAliases bool
	// SymbolicNulls additionally offers null as a concretization branch.
	SymbolicNulls bool
	// SymbolicArraySize bounds the lengths a symbolic array may concretize
	// to (0..SymbolicArraySize inclusive).
	SymbolicArraySize int

	// Rand drives ApplyRandomInterleaving's shuffle; nil means "seed a
	// fresh source per call", which is intentionally non-deterministic.
	// Tests that need reproducible shuffling inject their own *rand.Rand.
	Rand *rand.Rand
}

// Context bundles the collaborators execT needs beyond the state itself:
// the symbol table to resolve Call/Fork targets and the solver to
// discharge contract assertions.
type Context struct {
	Symbols oox.SymbolTable
	Solver  solver.Solver
	Opts    Options
}

// VerdictKind is spec.md §4.6's three-way aggregate outcome.
type VerdictKind int

const (
	Valid VerdictKind = iota
	Invalid
	Deadlock
)

func (k VerdictKind) String() string {
	switch k {
	case Valid:
		return "Valid"
	case Invalid:
		return "Invalid"
	case Deadlock:
		return "Deadlock"
	default:
		return "Unknown"
	}
}

// Verdict is the outcome of one exploration branch (or their aggregate):
// Invalid carries the violated assertion's position and formula for
// diagnostics.
type Verdict struct {
	Kind    VerdictKind
	Pos     oox.Position
	Formula oox.Expr
}

func valid() Verdict    { return Verdict{Kind: Valid} }
func deadlock() Verdict { return Verdict{Kind: Deadlock} }
func invalidVerdict(pos oox.Position, formula oox.Expr) Verdict {
	return Verdict{Kind: Invalid, Pos: pos, Formula: formula}
}
