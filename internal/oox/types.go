// Package oox declares the collaborator contracts this engine consumes:
// the typed, labelled program representation produced by a lexer, parser,
// labeller and CFG builder that live outside this module. Nothing in this
// package parses OOX source; it only describes the shape a front end must
// hand to the engine.
package oox

// RuntimeType identifies the runtime shape of a Value, as distinct from the
// declared static Type of a variable or expression. Concretization (see
// package expr) is parameterised on RuntimeType: only REF and ARRAY ever
// need it, since those are the only types that can be symbolic identities.
type RuntimeType int

const (
	RuntimeUnknown RuntimeType = iota
	RuntimeInt
	RuntimeBool
	RuntimeRef
	RuntimeArray
)

func (rt RuntimeType) String() string {
	switch rt {
	case RuntimeInt:
		return "int"
	case RuntimeBool:
		return "bool"
	case RuntimeRef:
		return "REF"
	case RuntimeArray:
		return "ARRAY"
	default:
		return "unknown"
	}
}

// Type is the static (declared) type of a variable, field, parameter or
// expression.
type Type struct {
	Kind RuntimeType
	// Name is the declared class/interface name when Kind == RuntimeRef.
	Name string
	// Elem is the declared element type when Kind == RuntimeArray.
	Elem *Type
}

func IntType() Type  { return Type{Kind: RuntimeInt} }
func BoolType() Type { return Type{Kind: RuntimeBool} }
func RefType(name string) Type {
	return Type{Kind: RuntimeRef, Name: name}
}
func ArrayType(elem Type) Type {
	return Type{Kind: RuntimeArray, Elem: &elem}
}

// Position is a source location, carried through for diagnostics only; the
// engine never inspects it for semantics.
type Position struct {
	Line   int
	Column int
}
