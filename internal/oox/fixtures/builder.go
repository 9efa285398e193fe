// Package fixtures hand-builds the CompilationUnit/ControlFlowGraph values
// for the literal end-to-end programs this engine is tested against. A real
// front end builds these from a parsed .oox source file; since parsing is
// out of scope (spec.md §1), this package plays that role for the fixed set
// of named programs the test suite and the ooxverify CLI both resolve by
// name, the same "embed the reference programs as Go fixtures" shape as the
// teacher's internal/interp/fixture_test.go.
package fixtures

import "github.com/cwbudde/ooxverify/internal/oox"

// builder assembles a ControlFlowGraph node by node in source order, the
// way a labeller would emit nodes while walking a parsed method body.
type builder struct {
	g    *oox.ControlFlowGraph
	next oox.NodeID
}

func newBuilder() *builder {
	return &builder{g: oox.NewControlFlowGraph()}
}

func (b *builder) node(kind oox.NodeKind) *oox.CFGNode {
	n := &oox.CFGNode{ID: b.next, Kind: kind}
	b.next++
	b.g.Add(n)
	return n
}

func (b *builder) stat(stmt oox.Statement) *oox.CFGNode {
	n := b.node(oox.KindStatNode)
	n.Stmt = stmt
	return n
}

// call emits a KindCall node: inv is the resolved invocation, target is the
// (possibly nil) assignment lhs the call's return value feeds.
func (b *builder) call(inv oox.Invocation, target oox.Lhs) *oox.CFGNode {
	n := b.node(oox.KindCall)
	n.Invocation = &inv
	n.AssignTarget = target
	return n
}

// link chains from -> each of to, recording both directions.
func link(from *oox.CFGNode, to ...*oox.CFGNode) {
	for _, t := range to {
		from.Successors = append(from.Successors, t.ID)
		t.Predecessors = append(t.Predecessors, from.ID)
	}
}

// chain links a linear sequence of nodes front to back.
func chain(nodes ...*oox.CFGNode) {
	for i := 0; i+1 < len(nodes); i++ {
		link(nodes[i], nodes[i+1])
	}
}

// method builds one method/constructor body as a straight-line chain of
// body nodes between a MemberEntry and MemberExit, and returns the
// resolved MemberRef (with Entry already pointing at the entry node).
func (b *builder) method(class, name string, static bool, params []oox.Param, body ...*oox.CFGNode) oox.MemberRef {
	entry := b.node(oox.KindMemberEntry)
	exit := b.node(oox.KindMemberExit)

	member := &oox.MemberRef{
		Kind:     oox.MemberMethod,
		Class:    class,
		Name:     name,
		IsStatic: static,
		Entry:    entry.ID,
		Params:   params,
	}
	entry.Member = member
	exit.Member = member

	if len(body) == 0 {
		link(entry, exit)
		return *member
	}
	link(entry, body[0])
	chain(body...)
	link(body[len(body)-1], exit)
	return *member
}

// constructor builds a class's "<init>" member, the callee for any
// Invocation with IsConstructor set. A constructor's job here is always to
// hand the freshly allocated `this` back to the caller; body statements run
// between entry and the closing `return this`.
func (b *builder) constructor(class string, params []oox.Param, body ...*oox.CFGNode) oox.MemberRef {
	entry := b.node(oox.KindMemberEntry)
	exit := b.node(oox.KindMemberExit)

	member := &oox.MemberRef{
		Kind:   oox.MemberConstructor,
		Class:  class,
		Name:   "<init>",
		Entry:  entry.ID,
		Params: params,
	}
	entry.Member = member
	exit.Member = member

	ret := b.stat(oox.Return{Value: oox.Var{Name: "this"}})
	full := append(body, ret)
	link(entry, full[0])
	chain(full...)
	link(full[len(full)-1], exit)
	return *member
}

// unit assembles the finished CompilationUnit from a file name, the
// builder's graph, a class table, and the members to register under
// "Class.name" in the symbol table.
func unit(fileName string, g *builder, classes map[string]*oox.ClassDecl, members ...oox.MemberRef) *oox.CompilationUnit {
	symbols := make(oox.MapSymbolTable, len(members))
	for _, m := range members {
		key := m.Class + "." + m.Name
		symbols[key] = append(symbols[key], oox.Symbol{Member: m})
	}
	return &oox.CompilationUnit{
		FileName: fileName,
		Classes:  classes,
		CFG:      g.g,
		Symbols:  symbols,
	}
}
