// Package expr implements spec.md §4.1: expression evaluation and
// concretization. Evaluate reduces an Expr under the current state's
// declarations and heap; literal sub-expressions fold, anything symbolic
// is pushed into a value.Symbolic tree — the same "reduce, don't
// interpret-to-native" shape as the teacher's
// internal/interp/evaluator/evaluator.go, generalized from "always produces
// a concrete runtime value" to "produces a value, possibly still symbolic".
package expr

import (
	"github.com/cwbudde/ooxverify/internal/oox"
	"github.com/cwbudde/ooxverify/internal/state"
	"github.com/cwbudde/ooxverify/internal/value"
)

// Evaluate reduces e under frame and s's heap and alias map, returning the
// resulting Value; s itself is not modified.
func Evaluate(s state.ExecutionState, frame state.StackFrame, e oox.Expr) value.Value {
	switch n := e.(type) {
	case oox.IntLit:
		return value.Int{Value: n.Value}
	case oox.BoolLit:
		return value.Bool{Value: n.Value}
	case oox.NullLit:
		return value.Null{}
	case oox.Var:
		if v, ok := frame.Get(n.Name); ok {
			return resolveAlias(s, v)
		}
		// An undeclared variable is a symbolic read of its own name: this
		// lets quantifier-bound variables and not-yet-declared locals
		// evaluate to something rather than panicking.
		return value.Symbolic{Expr: n}
	case oox.FieldAccess:
		target := Evaluate(s, frame, n.Target)
		return evalFieldAccess(s, target, n)
	case oox.ElementAccess:
		target := Evaluate(s, frame, n.Target)
		index := Evaluate(s, frame, n.Index)
		return evalElementAccess(s, target, index, n)
	case oox.SizeOf:
		target := Evaluate(s, frame, n.Target)
		return evalSizeOf(s, target, n)
	case oox.UnOp:
		operand := Evaluate(s, frame, n.Operand)
		return evalUnOp(n.Op, operand)
	case oox.BinOp:
		left := Evaluate(s, frame, n.Left)
		right := Evaluate(s, frame, n.Right)
		return evalBinOp(n.Op, left, right)
	case oox.Quantifier:
		// Quantifiers over a concrete array could in principle unroll, but
		// per spec.md's scope the engine only needs them as symbolic reads
		// of the domain for POR and solver purposes.
		return value.Symbolic{Expr: n}
	default:
		return value.Symbolic{Expr: e}
	}
}

// resolveAlias turns a SymbolicRef into the concrete value its name was
// bound to by concretization (spec.md §4.1): once ConcretesOfType commits
// a branch to exactly one alias for a name, every later read of that
// variable along the branch must see the concrete identity, not the
// still-symbolic placeholder it started as. A name with no alias yet (or
// more than one, which this engine's branching never actually produces
// since each branch fixes a single choice) stays symbolic.
func resolveAlias(s state.ExecutionState, v value.Value) value.Value {
	sr, ok := v.(value.SymbolicRef)
	if !ok {
		return v
	}
	refs, known := s.AliasMap.Aliases(sr.Name)
	if !known || len(refs) != 1 {
		return v
	}
	if refs[0] == state.NullReference {
		return value.Null{}
	}
	return value.Ref{Ref: int64(refs[0])}
}

func evalFieldAccess(s state.ExecutionState, target value.Value, n oox.FieldAccess) value.Value {
	if value.IsNull(target) {
		return value.Unreachable{}
	}
	ref, ok := target.(value.Ref)
	if !ok {
		return value.Symbolic{Expr: n}
	}
	cell, ok := s.Heap.Get(state.Reference(ref.Ref))
	if !ok {
		return value.Symbolic{Expr: n}
	}
	obj, ok := cell.(*value.Object)
	if !ok {
		return value.Symbolic{Expr: n}
	}
	if v, ok := obj.Fields[n.Field]; ok {
		return v
	}
	return value.Symbolic{Expr: n}
}

func evalElementAccess(s state.ExecutionState, target, index value.Value, n oox.ElementAccess) value.Value {
	if value.IsNull(target) {
		return value.Unreachable{}
	}
	ref, isRef := target.(value.Ref)
	idx, isInt := value.AsInt(index)
	if !isRef || !isInt {
		return value.Symbolic{Expr: n}
	}
	cell, ok := s.Heap.Get(state.Reference(ref.Ref))
	if !ok {
		return value.Symbolic{Expr: n}
	}
	arr, ok := cell.(*value.Array)
	if !ok {
		return value.Symbolic{Expr: n}
	}
	if idx < 0 || int(idx) >= len(arr.Elems) {
		// spec.md §8: an out-of-bounds element access makes the branch
		// infeasible, not a fresh symbolic unknown.
		return value.Unreachable{}
	}
	return arr.Elems[idx]
}

func evalSizeOf(s state.ExecutionState, target value.Value, n oox.SizeOf) value.Value {
	if value.IsNull(target) {
		return value.Unreachable{}
	}
	ref, ok := target.(value.Ref)
	if !ok {
		return value.Symbolic{Expr: n}
	}
	cell, ok := s.Heap.Get(state.Reference(ref.Ref))
	if !ok {
		return value.Symbolic{Expr: n}
	}
	arr, ok := cell.(*value.Array)
	if !ok {
		return value.Symbolic{Expr: n}
	}
	return value.Int{Value: int64(len(arr.Elems))}
}

func evalUnOp(op oox.Operator, operand value.Value) value.Value {
	if value.IsUnreachable(operand) {
		return operand
	}
	switch op {
	case oox.OpNot:
		if b, ok := value.AsBool(operand); ok {
			return value.Bool{Value: !b}
		}
	case oox.OpNeg:
		if i, ok := value.AsInt(operand); ok {
			return value.Int{Value: -i}
		}
	}
	return value.Symbolic{Expr: oox.UnOp{Op: op, Operand: toExpr(operand)}}
}

func evalBinOp(op oox.Operator, left, right value.Value) value.Value {
	if value.IsUnreachable(left) {
		return left
	}
	if value.IsUnreachable(right) {
		return right
	}
	li, lIsInt := value.AsInt(left)
	ri, rIsInt := value.AsInt(right)
	if lIsInt && rIsInt {
		switch op {
		case oox.OpAdd:
			return value.Int{Value: li + ri}
		case oox.OpSub:
			return value.Int{Value: li - ri}
		case oox.OpMul:
			return value.Int{Value: li * ri}
		case oox.OpDiv:
			if ri != 0 {
				return value.Int{Value: li / ri}
			}
		case oox.OpMod:
			if ri != 0 {
				return value.Int{Value: li % ri}
			}
		case oox.OpEq:
			return value.Bool{Value: li == ri}
		case oox.OpNeq:
			return value.Bool{Value: li != ri}
		case oox.OpLt:
			return value.Bool{Value: li < ri}
		case oox.OpLte:
			return value.Bool{Value: li <= ri}
		case oox.OpGt:
			return value.Bool{Value: li > ri}
		case oox.OpGte:
			return value.Bool{Value: li >= ri}
		}
	}
	lb, lIsBool := value.AsBool(left)
	rb, rIsBool := value.AsBool(right)
	if lIsBool && rIsBool {
		switch op {
		case oox.OpAnd:
			return value.Bool{Value: lb && rb}
		case oox.OpOr:
			return value.Bool{Value: lb || rb}
		case oox.OpEq:
			return value.Bool{Value: lb == rb}
		case oox.OpNeq:
			return value.Bool{Value: lb != rb}
		}
	}
	// Short-circuit folding even with one symbolic operand, mirroring a
	// real solver's cheap wins: false && x == false, true || x == true.
	if op == oox.OpAnd {
		if lIsBool && !lb {
			return value.Bool{Value: false}
		}
		if rIsBool && !rb {
			return value.Bool{Value: false}
		}
	}
	if op == oox.OpOr {
		if lIsBool && lb {
			return value.Bool{Value: true}
		}
		if rIsBool && rb {
			return value.Bool{Value: true}
		}
	}
	return value.Symbolic{Expr: oox.BinOp{Op: op, Left: toExpr(left), Right: toExpr(right)}}
}

// toExpr lifts a Value back into an Expr so partially-symbolic results can
// be represented as a single expression tree (spec.md §3's "symbolic
// expression tree built from the program's operators, variables,
// quantifiers, and literals").
func toExpr(v value.Value) oox.Expr {
	switch n := v.(type) {
	case value.Int:
		return oox.IntLit{Value: n.Value}
	case value.Bool:
		return oox.BoolLit{Value: n.Value}
	case value.Null:
		return oox.NullLit{}
	case value.SymbolicRef:
		return oox.Var{Name: n.Name}
	case value.Symbolic:
		return n.Expr
	default:
		return oox.NullLit{}
	}
}

// EvaluateAsBool evaluates e and reports (value, true) when it reduces to
// a boolean literal; otherwise returns (false, false) and the caller
// should treat the result as the symbolic expression obtained from
// Evaluate (spec.md §4.1).
func EvaluateAsBool(s state.ExecutionState, frame state.StackFrame, e oox.Expr) (bool, bool) {
	v := Evaluate(s, frame, e)
	return value.AsBool(v)
}
