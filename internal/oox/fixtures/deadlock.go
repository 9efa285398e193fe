package fixtures

import "github.com/cwbudde/ooxverify/internal/oox"

// Deadlock mirrors simple/deadlock.oox (spec.md §8 scenario 7): the
// classic two-thread AB-BA circular wait. Thread1 locks (a, b) in that
// order; Thread2 locks the same two objects as (b, a). Once each thread
// holds the other's first lock, both Lock statements are disabled and
// Main's own Join is blocked on both children — the enabled set empties
// out while threads remain, which package por reports as Deadlock.
func Deadlock() *oox.CompilationUnit {
	aParam, bParam := oox.Param{Name: "a", Type: oox.RefType("Obj")}, oox.Param{Name: "b", Type: oox.RefType("Obj")}

	b := newBuilder()
	ctor := b.constructor("Obj", nil)

	thread1 := b.method("Thread1", "run", true, []oox.Param{aParam, bParam},
		b.stat(oox.Lock{Target: oox.Var{Name: "a"}}),
		b.stat(oox.Lock{Target: oox.Var{Name: "b"}}),
		b.stat(oox.Unlock{Target: oox.Var{Name: "b"}}),
		b.stat(oox.Unlock{Target: oox.Var{Name: "a"}}),
	)
	thread2 := b.method("Thread2", "run", true, []oox.Param{aParam, bParam},
		b.stat(oox.Lock{Target: oox.Var{Name: "a"}}),
		b.stat(oox.Lock{Target: oox.Var{Name: "b"}}),
		b.stat(oox.Unlock{Target: oox.Var{Name: "b"}}),
		b.stat(oox.Unlock{Target: oox.Var{Name: "a"}}),
	)

	newObjX := oox.Invocation{Class: "Obj", Method: "<init>", IsConstructor: true}
	callX := b.call(newObjX, oox.LhsVar{Name: "x"})
	newObjY := oox.Invocation{Class: "Obj", Method: "<init>", IsConstructor: true}
	callY := b.call(newObjY, oox.LhsVar{Name: "y"})

	main := b.method("Main", "main", true, nil,
		callX,
		callY,
		b.stat(oox.Fork{Class: "Thread1", Method: "run", Args: []oox.Expr{oox.Var{Name: "x"}, oox.Var{Name: "y"}}}),
		b.stat(oox.Fork{Class: "Thread2", Method: "run", Args: []oox.Expr{oox.Var{Name: "y"}, oox.Var{Name: "x"}}}),
		b.stat(oox.Join{}),
	)

	classes := map[string]*oox.ClassDecl{
		"Obj":     {Name: "Obj", Fields: []oox.Param{{Name: "value", Type: oox.IntType()}}, Members: []oox.MemberRef{ctor}},
		"Thread1": {Name: "Thread1", Members: []oox.MemberRef{thread1}},
		"Thread2": {Name: "Thread2", Members: []oox.MemberRef{thread2}},
		"Main":    {Name: "Main", Members: []oox.MemberRef{main}},
	}
	return unit("simple/deadlock.oox", b, classes, ctor, thread1, thread2, main)
}
