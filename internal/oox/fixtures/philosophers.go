package fixtures

import "github.com/cwbudde/ooxverify/internal/oox"

// Philosophers mirrors philosophers.oox (spec.md §8 scenario 8): three
// philosophers and three forks arranged in a cycle, each philosopher
// picking up its left fork before its right. The classic dining
// philosophers deadlock — every philosopher holding its left fork while
// waiting on its right, which is already held by its neighbour — is one
// reachable interleaving, so the search reports Deadlock.
func Philosophers() *oox.CompilationUnit {
	left, right := oox.Param{Name: "left", Type: oox.RefType("Fork")}, oox.Param{Name: "right", Type: oox.RefType("Fork")}

	b := newBuilder()
	ctor := b.constructor("Fork", nil)

	phil := b.method("Phil", "run", true, []oox.Param{left, right},
		b.stat(oox.Lock{Target: oox.Var{Name: "left"}}),
		b.stat(oox.Lock{Target: oox.Var{Name: "right"}}),
		b.stat(oox.Unlock{Target: oox.Var{Name: "right"}}),
		b.stat(oox.Unlock{Target: oox.Var{Name: "left"}}),
	)

	newF0 := b.call(oox.Invocation{Class: "Fork", Method: "<init>", IsConstructor: true}, oox.LhsVar{Name: "f0"})
	newF1 := b.call(oox.Invocation{Class: "Fork", Method: "<init>", IsConstructor: true}, oox.LhsVar{Name: "f1"})
	newF2 := b.call(oox.Invocation{Class: "Fork", Method: "<init>", IsConstructor: true}, oox.LhsVar{Name: "f2"})

	main := b.method("Main", "main", true, nil,
		newF0, newF1, newF2,
		b.stat(oox.Fork{Class: "Phil", Method: "run", Args: []oox.Expr{oox.Var{Name: "f0"}, oox.Var{Name: "f1"}}}),
		b.stat(oox.Fork{Class: "Phil", Method: "run", Args: []oox.Expr{oox.Var{Name: "f1"}, oox.Var{Name: "f2"}}}),
		b.stat(oox.Fork{Class: "Phil", Method: "run", Args: []oox.Expr{oox.Var{Name: "f2"}, oox.Var{Name: "f0"}}}),
		b.stat(oox.Join{}),
	)

	classes := map[string]*oox.ClassDecl{
		"Fork": {Name: "Fork", Members: []oox.MemberRef{ctor}},
		"Phil": {Name: "Phil", Members: []oox.MemberRef{phil}},
		"Main": {Name: "Main", Members: []oox.MemberRef{main}},
	}
	return unit("philosophers.oox", b, classes, ctor, phil, main)
}
