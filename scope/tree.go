package scope

import "github.com/reltable-lang/reltablec/types"

// Builtins are the names pre-populated into the global scope, per spec
// §3's invariant: "built-in names (create_table, add_column, add_row,
// write, print) are pre-populated there as FUNCTION symbols."
var Builtins = []string{"create_table", "add_column", "add_row", "write", "print"}

// Tree manages the scope stack during semantic analysis (the code
// generator keeps its own frame stack and does not use Tree). It is
// treated as a stack: scopes are pushed and popped, building a tree from
// the scopes that were ever pushed.
type Tree struct {
	base *Scope
	tos  *Scope
}

// NewTree creates a scope tree with a freshly populated global scope.
func NewTree() *Tree {
	t := &Tree{}
	global := NewScope("global", nil, false)
	for _, name := range Builtins {
		global.Define(NewSymbol(name, types.FUNCTION, nil))
	}
	t.base = global
	t.tos = global
	return t
}

// Current returns the top-of-stack (innermost) scope.
func (t *Tree) Current() *Scope {
	if t.tos == nil {
		panic("scope: attempt to access scope from empty stack")
	}
	return t.tos
}

// Globals returns the outermost (global) scope.
func (t *Tree) Globals() *Scope {
	if t.base == nil {
		panic("scope: attempt to access global scope from empty stack")
	}
	return t.base
}

// Push creates a new scope as a child of the current top-of-stack scope
// and makes it the new top-of-stack.
func (t *Tree) Push(name string, isFuncBoundary bool) *Scope {
	parent := t.tos
	s := NewScope(name, parent, isFuncBoundary)
	t.tos = s
	T().Debugf("pushing scope %s (func boundary: %v)", name, isFuncBoundary)
	return s
}

// Pop pops and returns the top-of-stack scope.
func (t *Tree) Pop() *Scope {
	if t.tos == nil {
		panic("scope: attempt to pop scope from empty stack")
	}
	s := t.tos
	T().Debugf("popping scope %s", s.Name)
	t.tos = s.Parent
	return s
}

// InFunction reports whether the current scope or any of its ancestors
// is a function boundary — i.e. whether a `return` statement at this
// point would be legal (spec §4.D).
func (t *Tree) InFunction() bool {
	for s := t.tos; s != nil; s = s.Parent {
		if s.IsFuncBoundary {
			return true
		}
	}
	return false
}
