package expr

import (
	"testing"

	"github.com/cwbudde/ooxverify/internal/oox"
	"github.com/cwbudde/ooxverify/internal/state"
	"github.com/cwbudde/ooxverify/internal/value"
)

func TestEvaluate_FieldAccessThroughNullIsUnreachable(t *testing.T) {
	frame := state.NewStackFrame(state.CFGContext{}, nil, oox.MemberRef{})
	frame = frame.With("x", value.Null{})
	s := state.New(30)

	v := Evaluate(s, frame, oox.FieldAccess{Target: oox.Var{Name: "x"}, Field: "f"})
	if !value.IsUnreachable(v) {
		t.Fatalf("expected Unreachable, got %v", v)
	}
}

func TestEvaluate_ElementAccessOutOfBoundsIsUnreachable(t *testing.T) {
	heap, ref := state.NewHeap().Alloc(&value.Array{ElemType: oox.IntType(), Elems: nil})
	frame := state.NewStackFrame(state.CFGContext{}, nil, oox.MemberRef{})
	frame = frame.With("arr", value.Ref{Ref: int64(ref)})
	s := state.New(30).WithHeap(heap)

	v := Evaluate(s, frame, oox.ElementAccess{Target: oox.Var{Name: "arr"}, Index: oox.IntLit{Value: 0}})
	if !value.IsUnreachable(v) {
		t.Fatalf("expected Unreachable for a size-0 array access, got %v", v)
	}
}

func TestEvaluate_ElementAccessInBoundsReadsDefaultValue(t *testing.T) {
	heap, ref := state.NewHeap().Alloc(&value.Array{ElemType: oox.IntType(), Elems: []value.Value{value.Int{Value: 0}}})
	frame := state.NewStackFrame(state.CFGContext{}, nil, oox.MemberRef{})
	frame = frame.With("arr", value.Ref{Ref: int64(ref)})
	s := state.New(30).WithHeap(heap)

	v := Evaluate(s, frame, oox.ElementAccess{Target: oox.Var{Name: "arr"}, Index: oox.IntLit{Value: 0}})
	i, ok := value.AsInt(v)
	if !ok || i != 0 {
		t.Fatalf("expected Int{0}, got %v", v)
	}
}

// TestEvaluate_UnreachablePropagatesThroughBinOp ensures a runtime guard
// violation on one operand poisons the whole expression rather than
// silently falling back to a fresh symbolic unknown, which would hide the
// infeasibility from the caller (package stmt).
func TestEvaluate_UnreachablePropagatesThroughBinOp(t *testing.T) {
	frame := state.NewStackFrame(state.CFGContext{}, nil, oox.MemberRef{})
	frame = frame.With("x", value.Null{})
	s := state.New(30)

	cond := oox.BinOp{
		Op:    oox.OpEq,
		Left:  oox.FieldAccess{Target: oox.Var{Name: "x"}, Field: "f"},
		Right: oox.IntLit{Value: 1},
	}
	v := Evaluate(s, frame, cond)
	if !value.IsUnreachable(v) {
		t.Fatalf("expected Unreachable to propagate through BinOp, got %v", v)
	}
}

// TestResolveAlias_SingleKnownAliasResolvesToConcreteRef exercises the
// fork-local AliasMap resolution fix: a SymbolicRef whose name has
// exactly one bound alias in this state's own AliasMap reads back as a
// concrete Ref, not a list-index lookup liable to cross branches.
func TestResolveAlias_SingleKnownAliasResolvesToConcreteRef(t *testing.T) {
	s := state.New(30)
	s = s.WithAliasMap(s.AliasMap.WithAliasSet("o", []state.Reference{7}))

	frame := state.NewStackFrame(state.CFGContext{}, nil, oox.MemberRef{})
	frame = frame.With("o", value.SymbolicRef{Name: "o", Kind: oox.RuntimeRef})

	v := Evaluate(s, frame, oox.Var{Name: "o"})
	ref, ok := v.(value.Ref)
	if !ok || ref.Ref != 7 {
		t.Fatalf("expected Ref{7}, got %v", v)
	}
}

// TestResolveAlias_UnknownStaysSymbolic: a name concretization hasn't
// touched yet must remain a SymbolicRef, so concretizeOne can still find
// it as the next unresolved variable.
func TestResolveAlias_UnknownStaysSymbolic(t *testing.T) {
	s := state.New(30)
	frame := state.NewStackFrame(state.CFGContext{}, nil, oox.MemberRef{})
	frame = frame.With("o", value.SymbolicRef{Name: "o", Kind: oox.RuntimeRef})

	v := Evaluate(s, frame, oox.Var{Name: "o"})
	if _, ok := v.(value.SymbolicRef); !ok {
		t.Fatalf("expected an unresolved SymbolicRef to stay symbolic, got %v", v)
	}
}

// TestResolveAlias_PerStateIsolation checks that two states forked from
// the same predecessor via WithAliasSet never see each other's alias
// choice — the bug the fix addressed was resolving by list position
// rather than through the state's own map.
func TestResolveAlias_PerStateIsolation(t *testing.T) {
	base := state.New(30)
	sA := base.WithAliasMap(base.AliasMap.WithAliasSet("o", []state.Reference{1}))
	sB := base.WithAliasMap(base.AliasMap.WithAliasSet("o", []state.Reference{2}))

	frame := state.NewStackFrame(state.CFGContext{}, nil, oox.MemberRef{})
	frame = frame.With("o", value.SymbolicRef{Name: "o", Kind: oox.RuntimeRef})

	vA := Evaluate(sA, frame, oox.Var{Name: "o"})
	vB := Evaluate(sB, frame, oox.Var{Name: "o"})

	refA, okA := vA.(value.Ref)
	refB, okB := vB.(value.Ref)
	if !okA || !okB {
		t.Fatalf("expected both to resolve, got %v and %v", vA, vB)
	}
	if refA.Ref != 1 || refB.Ref != 2 {
		t.Fatalf("alias resolution leaked across states: got %d and %d", refA.Ref, refB.Ref)
	}
}
