package exec

import (
	"github.com/cwbudde/ooxverify/internal/expr"
	"github.com/cwbudde/ooxverify/internal/oox"
	"github.com/cwbudde/ooxverify/internal/state"
	"github.com/cwbudde/ooxverify/internal/value"
)

// concretizeAll resolves every not-yet-concrete REF/ARRAY-typed variable
// reachable from exprs, in order, branching over package expr's
// ConcretesOfType/ConcretesOfArrayType per spec.md §4.1. The result is the
// cross-product of every expression's branches; a nil result means every
// branch turned out infeasible (the calling statement is pruned entirely,
// not executed with a still-symbolic value).
func concretizeAll(ctx Context, s state.ExecutionState, frame state.StackFrame, exprs []oox.Expr) []state.ExecutionState {
	states := []state.ExecutionState{s}
	if !ctx.Opts.SymbolicAliases {
		return states
	}
	for _, e := range exprs {
		if e == nil {
			continue
		}
		var next []state.ExecutionState
		for _, cs := range states {
			next = append(next, concretizeOne(ctx, cs, frame, e)...)
		}
		states = next
		if len(states) == 0 {
			return nil
		}
	}
	return states
}

// concretizeOne resolves every unresolved symbolic identity reachable from
// e against one starting state, recursing until e has nothing left
// unresolved. A result of exactly [s] (unchanged) means e needed no
// concretization.
func concretizeOne(ctx Context, s state.ExecutionState, frame state.StackFrame, e oox.Expr) []state.ExecutionState {
	name, kind, found := firstUnresolvedVar(s, frame, e)
	if !found {
		return []state.ExecutionState{s}
	}

	var branchStates []state.ExecutionState
	if kind == oox.RuntimeArray {
		cands := candidateRefs(s, true)
		cands = append(cands, s.Heap.NextReference())
		for _, ab := range expr.ConcretesOfArrayType(s, ctx.Solver, name, ctx.Opts.SymbolicNulls, cands, ctx.Opts.SymbolicArraySize) {
			branchStates = append(branchStates, materializeArray(ab, frame, name))
		}
	} else {
		cands := candidateRefs(s, false)
		for _, b := range expr.ConcretesOfType(s, ctx.Solver, name, ctx.Opts.SymbolicNulls, cands) {
			branchStates = append(branchStates, b.State)
		}
	}

	var out []state.ExecutionState
	for _, bs := range branchStates {
		out = append(out, concretizeOne(ctx, bs, frame, e)...)
	}
	return out
}

// materializeArray ensures an ArrayBranch's chosen reference actually has a
// heap cell: when the branch picked a not-yet-allocated reference (the
// "fresh identity" candidate), it allocates an array of the branch's
// chosen length and the variable's declared element type. Branches that
// reused an already-allocated array, or resolved to null, need no heap
// change.
func materializeArray(ab expr.ArrayBranch, frame state.StackFrame, name string) state.ExecutionState {
	s := ab.State
	if ab.Ref == state.NullReference {
		return s
	}
	if _, exists := s.Heap.Get(ab.Ref); exists {
		return s
	}
	elemType := arrayElemType(frame, name)
	elems := make([]value.Value, ab.Length)
	for i := range elems {
		elems[i] = value.DefaultValue(elemType)
	}
	return s.WithHeap(s.Heap.AllocAt(ab.Ref, &value.Array{ElemType: elemType, Elems: elems}))
}

// arrayElemType looks up name's declared element type among the enclosing
// member's formal parameters, falling back to int when name isn't a
// parameter (e.g. a local array declared with `new`, which never reaches
// this path as unresolved since `new` allocates eagerly).
func arrayElemType(frame state.StackFrame, name string) oox.Type {
	for _, p := range frame.CurrentMember.Params {
		if p.Name == name && p.Type.Kind == oox.RuntimeArray && p.Type.Elem != nil {
			return *p.Type.Elem
		}
	}
	return oox.IntType()
}

// firstUnresolvedVar walks e looking for the first Var that evaluates to a
// value.SymbolicRef with no entry yet in the state's AliasMap.
func firstUnresolvedVar(s state.ExecutionState, frame state.StackFrame, e oox.Expr) (name string, kind oox.RuntimeType, found bool) {
	var walk func(oox.Expr) bool
	walk = func(n oox.Expr) bool {
		if n == nil {
			return false
		}
		switch x := n.(type) {
		case oox.Var:
			v := expr.Evaluate(s, frame, x)
			if sr, ok := v.(value.SymbolicRef); ok {
				if _, known := s.AliasMap.Aliases(sr.Name); !known {
					name, kind, found = sr.Name, sr.Kind, true
					return true
				}
			}
		case oox.FieldAccess:
			return walk(x.Target)
		case oox.ElementAccess:
			return walk(x.Target) || walk(x.Index)
		case oox.SizeOf:
			return walk(x.Target)
		case oox.BinOp:
			return walk(x.Left) || walk(x.Right)
		case oox.UnOp:
			return walk(x.Operand)
		case oox.Quantifier:
			return walk(x.Domain)
		}
		return false
	}
	walk(e)
	return
}

// candidateRefs gathers the heap references already allocated with a cell
// of the matching shape: *value.Array candidates for array concretization,
// *value.Object candidates otherwise. Sorted for determinism (spec.md §8
// property 5).
func candidateRefs(s state.ExecutionState, forArray bool) []state.Reference {
	var out []state.Reference
	for ref, cell := range s.Heap.All() {
		switch cell.(type) {
		case *value.Array:
			if forArray {
				out = append(out, ref)
			}
		case *value.Object:
			if !forArray {
				out = append(out, ref)
			}
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
