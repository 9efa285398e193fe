// Package stmt implements spec.md §4.2: the per-statement-kind transition
// functions that advance an ExecutionState. Each function consumes the
// current state for one thread and returns zero or more successor states
// (zero meaning the branch was infeasible and is silently pruned),
// mirroring the teacher's per-kind `execStatement`/`execXxx` dispatch in
// internal/interp/statements*.go — except here nothing mutates in place
// and nothing panics: every exceptional condition is either a successor
// state (infeasible: no successor), an Invalidity value (assertion
// failed), or an *enginerr.EngineError (a genuine bug).
package stmt

import (
	"github.com/cwbudde/ooxverify/internal/oox"
	"github.com/cwbudde/ooxverify/internal/state"
)

// Successor is one resulting state together with the CFG node its thread
// should resume at.
type Successor struct {
	State    state.ExecutionState
	NextNode oox.NodeID
}

// Invalidity is produced when an Assert statement's negation is
// satisfiable (spec.md §4.2): the search has found a counterexample and
// must short-circuit with Invalid.
type Invalidity struct {
	Pos     oox.Position
	Formula oox.Expr
}

// Outcome is the result of executing one statement for one thread.
// Exactly one of (Successors non-empty), (Invalid non-nil), or both empty
// (infeasible: pruned) holds for the non-error case.
type Outcome struct {
	Successors []Successor
	Invalid    *Invalidity
}

func pruned() Outcome { return Outcome{} }

func single(s state.ExecutionState, next oox.NodeID) Outcome {
	return Outcome{Successors: []Successor{{State: s, NextNode: next}}}
}

func invalid(pos oox.Position, formula oox.Expr) Outcome {
	return Outcome{Invalid: &Invalidity{Pos: pos, Formula: formula}}
}
