/*
Package scope implements RelTable's lexical scope stack and the
capture-tracking mechanism closures rely on (spec §4.C).

License

Governed by a 3-Clause BSD license. License file may be found in the
root folder of this module.

Copyright © 2026 The RelTable Authors
*/
package scope

import (
	"fmt"

	"github.com/reltable-lang/reltablec/types"
)

// serialID hands out stable, distinguishing ids for symbols; it must not
// start at 0 so a zero Symbol is recognizably unset.
var serialID int32 = 1

// Symbol is a named binding with a Type and a back-reference to the
// declaring parse node (for diagnostics). Symbols are value-identity
// objects: two scopes may hold a pointer to the same Symbol (capture).
type Symbol struct {
	Name string
	Type types.Type
	Id   int32

	// Decl points back at the declaring parse node. Typed as
	// interface{} here to avoid an import cycle with package ast (ast
	// imports scope for CapturedVar, so scope cannot import ast; sema,
	// which imports both, attaches ast nodes at construction time);
	// callers type-assert as needed.
	Decl interface{}
}

// NewSymbol creates a new symbol with a fresh id.
func NewSymbol(name string, typ types.Type, decl interface{}) *Symbol {
	id := serialID
	serialID++
	return &Symbol{Name: name, Type: typ, Id: id, Decl: decl}
}

func (s *Symbol) String() string {
	return fmt.Sprintf("<symbol '%s'[%d]:%s>", s.Name, s.Id, s.Type)
}
