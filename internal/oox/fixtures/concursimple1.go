package fixtures

import "github.com/cwbudde/ooxverify/internal/oox"

// Concursimple1 mirrors simple/concursimple1.oox (spec.md §8 scenarios 4-5):
// a main thread that forks a worker to race on a shared counter under a
// lock, then joins and asserts the counter's final value. Both increments
// are literal arithmetic, so the assert's truth never depends on which
// thread wins the lock race — only on whether both increments happened,
// which Join guarantees.
func Concursimple1() *oox.CompilationUnit {
	counterRef := oox.RefType("Counter")
	cParam := oox.Param{Name: "c", Type: counterRef}

	workerBuilder := func(b *builder) oox.MemberRef {
		return b.method("Worker", "run", true, []oox.Param{cParam},
			b.stat(oox.Lock{Target: oox.Var{Name: "c"}}),
			b.stat(oox.Assign{
				Lhs: oox.LhsField{Target: oox.Var{Name: "c"}, Field: "value"},
				Rhs: oox.RhsExpr{Expr: oox.BinOp{
					Op:   oox.OpAdd,
					Left: oox.FieldAccess{Target: oox.Var{Name: "c"}, Field: "value"},
					Right: oox.IntLit{Value: 1},
				}},
			}),
			b.stat(oox.Unlock{Target: oox.Var{Name: "c"}}),
		)
	}

	mainBuilder := func(b *builder, name string, expect int64) oox.MemberRef {
		newCounter := oox.Invocation{Class: "Counter", Method: "<init>", IsConstructor: true}
		callNode := b.call(newCounter, oox.LhsVar{Name: "x"})
		return b.method("Main", name, true, nil,
			callNode,
			b.stat(oox.Assign{
				Lhs: oox.LhsField{Target: oox.Var{Name: "x"}, Field: "value"},
				Rhs: oox.RhsExpr{Expr: oox.IntLit{Value: 0}},
			}),
			b.stat(oox.Fork{Class: "Worker", Method: "run", Args: []oox.Expr{oox.Var{Name: "x"}}}),
			b.stat(oox.Lock{Target: oox.Var{Name: "x"}}),
			b.stat(oox.Assign{
				Lhs: oox.LhsField{Target: oox.Var{Name: "x"}, Field: "value"},
				Rhs: oox.RhsExpr{Expr: oox.BinOp{
					Op:   oox.OpAdd,
					Left: oox.FieldAccess{Target: oox.Var{Name: "x"}, Field: "value"},
					Right: oox.IntLit{Value: 1},
				}},
			}),
			b.stat(oox.Unlock{Target: oox.Var{Name: "x"}}),
			b.stat(oox.Join{}),
			b.stat(oox.Assert{Cond: oox.BinOp{
				Op:   oox.OpEq,
				Left: oox.FieldAccess{Target: oox.Var{Name: "x"}, Field: "value"},
				Right: oox.IntLit{Value: expect},
			}}),
		)
	}

	b := newBuilder()
	ctor := b.constructor("Counter", nil)
	worker := workerBuilder(b)
	m2 := mainBuilder(b, "m2", 2)                  // both increments happened -> Valid
	m3Invalid1 := mainBuilder(b, "m3_invalid1", 3) // always off by one -> Invalid

	classes := map[string]*oox.ClassDecl{
		"Counter": {Name: "Counter", Fields: []oox.Param{{Name: "value", Type: oox.IntType()}}, Members: []oox.MemberRef{ctor}},
		"Worker":  {Name: "Worker", Members: []oox.MemberRef{worker}},
		"Main":    {Name: "Main", Members: []oox.MemberRef{m2, m3Invalid1}},
	}
	return unit("simple/concursimple1.oox", b, classes, ctor, worker, m2, m3Invalid1)
}
