package fixtures

import "github.com/cwbudde/ooxverify/internal/oox"

// Locks1 mirrors simple/locks1.oox (spec.md §8 scenario 6): a main thread
// that owns a shared Obj, forks a helper that merely taps its lock, and
// asserts the object's value is unaffected by the helper — exercising
// Lock/Unlock contention under POR without any real data race, since only
// Main ever writes the field.
func Locks1() *oox.CompilationUnit {
	oRef := oox.Param{Name: "o", Type: oox.RefType("Obj")}

	b := newBuilder()
	ctor := b.constructor("Obj", nil)

	helper := b.method("Helper", "touch", true, []oox.Param{oRef},
		b.stat(oox.Lock{Target: oox.Var{Name: "o"}}),
		b.stat(oox.Unlock{Target: oox.Var{Name: "o"}}),
	)

	newObj := oox.Invocation{Class: "Obj", Method: "<init>", IsConstructor: true}
	callNode := b.call(newObj, oox.LhsVar{Name: "x"})
	main := b.method("Main", "main", true, nil,
		callNode,
		b.stat(oox.Assign{
			Lhs: oox.LhsField{Target: oox.Var{Name: "x"}, Field: "value"},
			Rhs: oox.RhsExpr{Expr: oox.IntLit{Value: 0}},
		}),
		b.stat(oox.Fork{Class: "Helper", Method: "touch", Args: []oox.Expr{oox.Var{Name: "x"}}}),
		b.stat(oox.Lock{Target: oox.Var{Name: "x"}}),
		b.stat(oox.Assign{
			Lhs: oox.LhsField{Target: oox.Var{Name: "x"}, Field: "value"},
			Rhs: oox.RhsExpr{Expr: oox.IntLit{Value: 1}},
		}),
		b.stat(oox.Unlock{Target: oox.Var{Name: "x"}}),
		b.stat(oox.Join{}),
		b.stat(oox.Assert{Cond: oox.BinOp{
			Op:    oox.OpEq,
			Left:  oox.FieldAccess{Target: oox.Var{Name: "x"}, Field: "value"},
			Right: oox.IntLit{Value: 1},
		}}),
	)

	classes := map[string]*oox.ClassDecl{
		"Obj":    {Name: "Obj", Fields: []oox.Param{{Name: "value", Type: oox.IntType()}}, Members: []oox.MemberRef{ctor}},
		"Helper": {Name: "Helper", Members: []oox.MemberRef{helper}},
		"Main":   {Name: "Main", Members: []oox.MemberRef{main}},
	}
	return unit("simple/locks1.oox", b, classes, ctor, helper, main)
}
