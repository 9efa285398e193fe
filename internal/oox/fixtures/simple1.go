package fixtures

import "github.com/cwbudde/ooxverify/internal/oox"

// Simple1 mirrors simple/simple1.oox (spec.md §8 scenarios 1-3): a single
// class with one verifiably valid method, one method that fails an assert
// outright, and one that indexes a symbolic array, exercising the
// "out-of-bounds access makes the branch infeasible" boundary behavior.
func Simple1() *oox.CompilationUnit {
	b := newBuilder()

	// method m1(): declare x: int; x := 5; assert x == 5;
	m1 := b.method("SomeClass", "m1", true, nil,
		b.stat(oox.Declare{Name: "x", Type: oox.IntType()}),
		b.stat(oox.Assign{Lhs: oox.LhsVar{Name: "x"}, Rhs: oox.RhsExpr{Expr: oox.IntLit{Value: 5}}}),
		b.stat(oox.Assert{Cond: oox.BinOp{Op: oox.OpEq, Left: oox.Var{Name: "x"}, Right: oox.IntLit{Value: 5}}}),
	)

	// method m1Invalid(): declare x: int; x := 5; assert x == 6;
	m1Invalid := b.method("SomeClass", "m1Invalid", true, nil,
		b.stat(oox.Declare{Name: "x", Type: oox.IntType()}),
		b.stat(oox.Assign{Lhs: oox.LhsVar{Name: "x"}, Rhs: oox.RhsExpr{Expr: oox.IntLit{Value: 5}}}),
		b.stat(oox.Assert{Cond: oox.BinOp{Op: oox.OpEq, Left: oox.Var{Name: "x"}, Right: oox.IntLit{Value: 6}}}),
	)

	// method m3Invalid(arr: array of int): declare x: int; x := arr[0];
	// assert x == 1. A length-0 concretization of arr makes arr[0]
	// infeasible (pruned, not Invalid); every length >= 1 concretization
	// default-initializes arr[0] to 0, so the assert always fails.
	arrParam := oox.Param{Name: "arr", Type: oox.ArrayType(oox.IntType())}
	m3Invalid := b.method("SomeClass", "m3Invalid", true, []oox.Param{arrParam},
		b.stat(oox.Declare{Name: "x", Type: oox.IntType()}),
		b.stat(oox.Assign{
			Lhs: oox.LhsVar{Name: "x"},
			Rhs: oox.RhsExpr{Expr: oox.ElementAccess{Target: oox.Var{Name: "arr"}, Index: oox.IntLit{Value: 0}}},
		}),
		b.stat(oox.Assert{Cond: oox.BinOp{Op: oox.OpEq, Left: oox.Var{Name: "x"}, Right: oox.IntLit{Value: 1}}}),
	)

	classes := map[string]*oox.ClassDecl{
		"SomeClass": {Name: "SomeClass", Members: []oox.MemberRef{m1, m1Invalid, m3Invalid}},
	}
	return unit("simple/simple1.oox", b, classes, m1, m1Invalid, m3Invalid)
}
