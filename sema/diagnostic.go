/*
Package sema implements RelTable's semantic pass (spec §4.D): a single
tree walk over an ast.Program that populates a scope.Tree, infers an
types.Type for every ast.Expr, accumulates Diagnostics without aborting,
and attaches each function/lambda node's captured-variable set.

License

Governed by a 3-Clause BSD license. License file may be found in the
root folder of this module.

Copyright © 2026 The RelTable Authors
*/
package sema

import (
	"fmt"

	"github.com/reltable-lang/reltablec"
)

// Diagnostic is a semantic error: a source position plus a message in
// one of the canonical forms spec §7 fixes ("Undefined variable '<name>'",
// "'return' statement outside of function", "Selection source must be a
// table"). Diagnostics accumulate; the pass never aborts on one.
type Diagnostic struct {
	Pos     reltable.Position
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Pos, d.Message)
}

func (d Diagnostic) Error() string { return d.String() }
