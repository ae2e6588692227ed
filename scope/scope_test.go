package scope

import (
	"testing"

	"github.com/reltable-lang/reltablec/types"
)

func TestNewTreeHasBuiltins(t *testing.T) {
	tree := NewTree()
	for _, name := range Builtins {
		sym, ok := tree.Globals().Local(name)
		if !ok {
			t.Errorf("builtin %q not defined in global scope", name)
		}
		if sym.Type != types.FUNCTION {
			t.Errorf("builtin %q has type %v, want FUNCTION", name, sym.Type)
		}
	}
}

func TestDefineAndResolveLocal(t *testing.T) {
	s := NewScope("block", nil, false)
	sym := NewSymbol("x", types.INT, nil)
	s.Define(sym)
	got, captured := s.Resolve("x")
	if got != sym {
		t.Fatalf("Resolve did not find locally-defined symbol")
	}
	if captured {
		t.Errorf("a locally-defined symbol must never be reported as captured")
	}
}

func TestResolveUpThroughNonBoundaryDoesNotCapture(t *testing.T) {
	outer := NewScope("outer", nil, false)
	sym := NewSymbol("x", types.INT, nil)
	outer.Define(sym)
	block := NewScope("block", outer, false)
	_, captured := block.Resolve("x")
	if captured {
		t.Errorf("non-function-boundary scopes must not mark references captured")
	}
	if len(block.CapturedVars()) != 0 {
		t.Errorf("non-function-boundary scope recorded a capture")
	}
}

func TestResolveAcrossFunctionBoundaryCaptures(t *testing.T) {
	outer := NewScope("outer", nil, false)
	sym := NewSymbol("x", types.INT, nil)
	outer.Define(sym)
	fn := NewScope("fn", outer, true)
	got, captured := fn.Resolve("x")
	if got != sym || !captured {
		t.Fatalf("expected x to resolve as captured across a function boundary")
	}
	vars := fn.CapturedVars()
	if len(vars) != 1 || vars[0].Name != "x" || vars[0].Symbol != sym {
		t.Fatalf("CapturedVars() = %+v, want [{x sym}]", vars)
	}
}

// TestNestedFunctionBoundariesEachRecordCapture mirrors spec §3's
// invariant that capture is recorded in *every* function-boundary scope
// on the path from the use site up to (but not including) the defining
// scope — not just the innermost one.
func TestNestedFunctionBoundariesEachRecordCapture(t *testing.T) {
	global := NewScope("global", nil, false)
	sym := NewSymbol("x", types.INT, nil)
	global.Define(sym)

	outerFn := NewScope("outer_fn", global, true)
	block := NewScope("block", outerFn, false)
	innerFn := NewScope("inner_fn", block, true)

	got, captured := innerFn.Resolve("x")
	if got != sym || !captured {
		t.Fatalf("expected x to resolve as captured at the innermost function")
	}

	if len(innerFn.CapturedVars()) != 1 {
		t.Errorf("inner_fn should have captured x, got %+v", innerFn.CapturedVars())
	}
	if len(outerFn.CapturedVars()) != 1 {
		t.Errorf("outer_fn should also have captured x (it is a boundary on the path), got %+v", outerFn.CapturedVars())
	}
	if len(block.CapturedVars()) != 0 {
		t.Errorf("block is not a function boundary and must not record captures")
	}
}

func TestResolveMissingNameAtRoot(t *testing.T) {
	global := NewScope("global", nil, false)
	sym, captured := global.Resolve("nope")
	if sym != nil || captured {
		t.Errorf("Resolve of an undefined name must return (nil, false)")
	}
}

func TestCapturedVarsOrderIsStableInsertionOrder(t *testing.T) {
	global := NewScope("global", nil, false)
	a := NewSymbol("a", types.INT, nil)
	b := NewSymbol("b", types.INT, nil)
	global.Define(a)
	global.Define(b)

	fn := NewScope("fn", global, true)
	// Resolve b before a: capture order should follow first-reference
	// order, not declaration order.
	fn.Resolve("b")
	fn.Resolve("a")

	vars := fn.CapturedVars()
	if len(vars) != 2 || vars[0].Name != "b" || vars[1].Name != "a" {
		t.Fatalf("CapturedVars() = %+v, want [b a] (first-reference order)", vars)
	}
}

func TestTreePushPop(t *testing.T) {
	tree := NewTree()
	if tree.Current() != tree.Globals() {
		t.Fatalf("freshly created tree should have the global scope at top-of-stack")
	}
	fn := tree.Push("func_f", true)
	if tree.Current() != fn {
		t.Fatalf("Push did not update top-of-stack")
	}
	if !tree.InFunction() {
		t.Errorf("InFunction() should be true inside a function-boundary scope")
	}
	popped := tree.Pop()
	if popped != fn {
		t.Fatalf("Pop returned the wrong scope")
	}
	if tree.Current() != tree.Globals() {
		t.Fatalf("Pop should restore the parent scope as top-of-stack")
	}
	if tree.InFunction() {
		t.Errorf("InFunction() should be false at global scope")
	}
}

func TestTreePopEmptyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected Pop on an empty stack to panic")
		}
	}()
	tree := &Tree{}
	tree.Pop()
}
