package scope

import (
	"fmt"

	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// Scope is a node in the lexical scope tree (spec §3/§4.C). Each scope
// carries a parent link, a display name, a function-boundary flag, a
// map of locally defined symbols, and a map of symbols captured from an
// enclosing scope during resolution.
type Scope struct {
	Name           string
	Parent         *Scope
	IsFuncBoundary bool

	locals   map[string]*Symbol
	captured *linkedhashmap.Map // name -> *Symbol, insertion-ordered
}

// NewScope creates a scope with the given parent (nil for the global
// scope) and boundary flag.
func NewScope(name string, parent *Scope, isFuncBoundary bool) *Scope {
	return &Scope{
		Name:           name,
		Parent:         parent,
		IsFuncBoundary: isFuncBoundary,
		locals:         make(map[string]*Symbol),
		captured:       linkedhashmap.New(),
	}
}

func (s *Scope) String() string {
	return fmt.Sprintf("<scope %s>", s.Name)
}

// Define installs sym into the current scope's local symbols, keyed by
// sym.Name. Neither Define nor its callers check for an existing symbol
// of the same name; like the teacher's SymbolTable, Define simply
// overwrites.
func (s *Scope) Define(sym *Symbol) {
	s.locals[sym.Name] = sym
	T().Debugf("scope %s: defined %s", s.Name, sym)
}

// Local looks up name among this scope's own symbols only (no ancestor
// walk, no capture recording).
func (s *Scope) Local(name string) (*Symbol, bool) {
	sym, ok := s.locals[name]
	return sym, ok
}

// Resolve implements the capture-walk algorithm of spec §4.C:
//
//  1. If name is local, return it uncaptured.
//  2. Otherwise recurse into the parent.
//  3. On the unwind, if the parent's search found the symbol and this
//     scope is a function boundary (or the inner call already flagged
//     the reference as captured), record name in this scope's captured
//     map and report it captured to the caller.
//  4. At the root, a missing name reports not-found.
//
// Only function-boundary scopes accumulate entries in their captured
// map; intermediate block scopes pass the captured flag through without
// recording anything themselves.
func (s *Scope) Resolve(name string) (*Symbol, bool) {
	if sym, ok := s.locals[name]; ok {
		return sym, false
	}
	if s.Parent == nil {
		return nil, false
	}
	sym, capturedByInner := s.Parent.Resolve(name)
	if sym == nil {
		return nil, false
	}
	if s.IsFuncBoundary || capturedByInner {
		if s.IsFuncBoundary {
			if _, already := s.captured.Get(name); !already {
				s.captured.Put(name, sym)
				T().Debugf("scope %s: captured %s from enclosing scope", s.Name, sym)
			}
		}
		return sym, true
	}
	return sym, false
}

// CapturedVars returns this scope's captured symbols in stable
// insertion order (the order in which resolution first encountered
// each name), as required by spec §4.E step 1 for closure-environment
// field layout.
func (s *Scope) CapturedVars() []CapturedVar {
	keys := s.captured.Keys()
	out := make([]CapturedVar, 0, len(keys))
	for _, k := range keys {
		name := k.(string)
		v, _ := s.captured.Get(name)
		out = append(out, CapturedVar{Name: name, Symbol: v.(*Symbol)})
	}
	return out
}

// CapturedVar pairs a captured name with the Symbol it resolves to in an
// enclosing scope.
type CapturedVar struct {
	Name   string
	Symbol *Symbol
}
