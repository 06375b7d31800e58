// Package expr defines the decision variables and the expression-builder API
// used to describe placement problems to the solver.
//
// Variables are allocated from a VarSet and come in three domains:
//
//   - Bool: placement indicators ("is this slot running on this blade")
//   - Real: fractional resource amounts (CPU cores)
//   - Int: discrete resource amounts (memory units)
//
// Expressions are immutable trees built from a small set of combinators:
//
//	nonNeg := expr.GE(cpuCost, expr.Lit(0))
//	load := expr.SumOf(expr.If(running, cpuCost))
//	cap := expr.LE(load, expr.Lit(8))
//	both := expr.And(nonNeg, cap)
//
// Expression construction is pure and side-effect free. Trees are consumed
// only by the solver package, which normalizes them into its internal form;
// callers should treat every node as opaque once built.
package expr
