package state

import "github.com/cwbudde/ooxverify/internal/oox"

// CFGContext is spec.md's GLOSSARY entry of the same name: a CFG node
// together with its immediate neighbours, resolved against a specific
// graph. It is the Go encoding of `pc` on a Thread.
type CFGContext struct {
	Graph  *oox.ControlFlowGraph
	NodeID oox.NodeID
}

func NewCFGContext(g *oox.ControlFlowGraph, id oox.NodeID) CFGContext {
	return CFGContext{Graph: g, NodeID: id}
}

// Node resolves the context's current node.
func (c CFGContext) Node() *oox.CFGNode {
	if c.Graph == nil {
		return nil
	}
	return c.Graph.Node(c.NodeID)
}

func (c CFGContext) Kind() oox.NodeKind {
	n := c.Node()
	if n == nil {
		return oox.KindStatNode
	}
	return n.Kind
}

func (c CFGContext) Predecessors() []oox.NodeID {
	n := c.Node()
	if n == nil {
		return nil
	}
	return n.Predecessors
}

func (c CFGContext) Successors() []oox.NodeID {
	n := c.Node()
	if n == nil {
		return nil
	}
	return n.Successors
}

// At returns a new CFGContext for a different node of the same graph.
func (c CFGContext) At(id oox.NodeID) CFGContext {
	return CFGContext{Graph: c.Graph, NodeID: id}
}

func (c CFGContext) Equal(o CFGContext) bool {
	return c.Graph == o.Graph && c.NodeID == o.NodeID
}
