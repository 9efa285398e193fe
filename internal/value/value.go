// Package value implements the tagged-union Value of spec.md §3: integer
// literal, boolean literal, null, concrete reference, symbolic reference,
// object, array, and symbolic expression tree. Values are immutable —
// mutation always produces a new Value, mirroring the teacher's
// `internal/interp/runtime` primitives (go-dws's `Value` implementations are
// likewise small immutable structs dispatched on a type switch).
package value

import "github.com/cwbudde/ooxverify/internal/oox"

// Value is implemented by every runtime value kind. Kept deliberately
// narrow (no methods beyond identification) so evaluation logic lives in
// package expr, not scattered across value methods.
type Value interface {
	valueNode()
	// Type reports the runtime shape, used by concretization (package expr)
	// and POR (package por) to decide whether a value can carry aliases.
	Type() oox.RuntimeType
	String() string
}

// Int is an integer literal value.
type Int struct{ Value int64 }

// Bool is a boolean literal value.
type Bool struct{ Value bool }

// Null is the null value.
type Null struct{}

// Ref is a concrete reference: a resolved handle into the heap, or the
// distinguished NullRef.
type Ref struct{ Ref int64 }

// NullRef is the concrete reference denoting null once concretized.
const NullRef int64 = 0

// SymbolicRef is a reference- or array-typed variable not yet concretized:
// its identity is resolved lazily via the state's AliasMap, keyed by Name.
// Kind distinguishes REF from ARRAY identities, since concretizing an
// array additionally requires choosing a length (spec.md §4.1); it
// defaults to RuntimeRef when unset.
type SymbolicRef struct {
	Name string
	Kind oox.RuntimeType
}

// Object is a heap object: a mapping from field name to Value, plus its
// declared class name.
type Object struct {
	Class  string
	Fields map[string]Value
}

// Array is a heap array: a declared element type and a sequence of
// element Values. Concrete length is len(Elems); a not-yet-concretized
// symbolic array is represented as a SymbolicRef of RuntimeArray type until
// concretization fixes both its identity and its length
// (spec.md §4.1).
type Array struct {
	ElemType oox.Type
	Elems    []Value
}

// Symbolic wraps a reduced-but-not-fully-concrete expression tree: the
// result of evaluating an expression that has at least one non-literal
// operand (spec.md §4.1).
type Symbolic struct{ Expr oox.Expr }

// Unreachable is the result of evaluating a dereference that a runtime
// guard would have rejected: an out-of-bounds array element (spec.md §8
// "symbolic array of size 0 with a non-empty access → branch infeasible")
// or a field/element access through null. It is never itself a value a
// program can observe — any statement semantics that evaluates an
// expression down to Unreachable treats the whole statement as infeasible
// (package stmt), the same outcome a failed concretization produces.
type Unreachable struct{}

func (Int) valueNode()         {}
func (Bool) valueNode()        {}
func (Null) valueNode()        {}
func (Ref) valueNode()         {}
func (SymbolicRef) valueNode() {}
func (*Object) valueNode()     {}
func (*Array) valueNode()      {}
func (Symbolic) valueNode()    {}
func (Unreachable) valueNode() {}

func (Int) Type() oox.RuntimeType         { return oox.RuntimeInt }
func (Bool) Type() oox.RuntimeType        { return oox.RuntimeBool }
func (Null) Type() oox.RuntimeType        { return oox.RuntimeRef }
func (Ref) Type() oox.RuntimeType         { return oox.RuntimeRef }
func (v SymbolicRef) Type() oox.RuntimeType {
	if v.Kind == oox.RuntimeUnknown {
		return oox.RuntimeRef
	}
	return v.Kind
}
func (*Object) Type() oox.RuntimeType     { return oox.RuntimeRef }
func (*Array) Type() oox.RuntimeType      { return oox.RuntimeArray }
func (Symbolic) Type() oox.RuntimeType    { return oox.RuntimeUnknown }
func (Unreachable) Type() oox.RuntimeType { return oox.RuntimeUnknown }

func (v Int) String() string  { return oox.IntLit{Value: v.Value}.String() }
func (v Bool) String() string { return oox.BoolLit{Value: v.Value}.String() }
func (Null) String() string   { return "null" }
func (v Ref) String() string  { return "ref#" + oox.IntLit{Value: v.Ref}.String() }
func (v SymbolicRef) String() string { return v.Name }
func (o *Object) String() string     { return o.Class + "{}" }
func (a *Array) String() string {
	return "array[" + oox.IntLit{Value: int64(len(a.Elems))}.String() + "]"
}
func (v Symbolic) String() string    { return v.Expr.String() }
func (Unreachable) String() string   { return "<unreachable>" }

// DefaultValue returns the zero value for a declared type, used by
// Declare, for parameters a call or fork leaves unbound, and for the
// elements of materialized arrays (spec.md §4.2). Constructor allocation
// does not use it: an object created by a constructor call starts with no
// fields set.
func DefaultValue(t oox.Type) Value {
	switch t.Kind {
	case oox.RuntimeInt:
		return Int{}
	case oox.RuntimeBool:
		return Bool{}
	case oox.RuntimeArray:
		return &Array{ElemType: *t.Elem}
	default:
		return Null{}
	}
}

// SymbolicValue returns the unconstrained symbolic value for a declared
// type, used to initialise the entry method's parameters (spec.md §4.6's
// verification driver forks the entry point with free inputs rather than
// defaults): a SymbolicRef for REF/ARRAY-typed parameters, an opaque
// Symbolic expression (a bare Var) for int/bool ones.
func SymbolicValue(name string, t oox.Type) Value {
	switch t.Kind {
	case oox.RuntimeRef, oox.RuntimeArray:
		return SymbolicRef{Name: name, Kind: t.Kind}
	default:
		return Symbolic{Expr: oox.Var{Name: name}}
	}
}

// AsBool reports whether v is a literal Bool, returning (value, true); it
// never reduces a Symbolic — that's evaluateAsBool's job in package expr.
func AsBool(v Value) (bool, bool) {
	b, ok := v.(Bool)
	return b.Value, ok
}

// AsInt reports whether v is a literal Int.
func AsInt(v Value) (int64, bool) {
	i, ok := v.(Int)
	return i.Value, ok
}

// IsUnreachable reports whether v is the Unreachable marker produced by a
// runtime-guard violation along the way (spec.md §8's boundary behaviors).
func IsUnreachable(v Value) bool {
	_, ok := v.(Unreachable)
	return ok
}

// IsNull reports whether v denotes a definitely-null reference: the
// literal Null value, or a concrete Ref equal to NullRef.
func IsNull(v Value) bool {
	switch t := v.(type) {
	case Null:
		return true
	case Ref:
		return t.Ref == NullRef
	default:
		return false
	}
}
