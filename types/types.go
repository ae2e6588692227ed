/*
Package types enumerates RelTable's source-level types and maps them to
LL-IR primitive type descriptors.

License

Governed by a 3-Clause BSD license. License file may be found in the
root folder of this module.

Copyright © 2026 The RelTable Authors
*/
package types

import "fmt"

// Type is RelTable's closed source-level type lattice. ANY is the bottom/
// unknown type used where inference is incomplete; it is never an error
// by itself.
type Type int8

const (
	ANY Type = iota
	INT
	DECIMAL
	STRING
	BOOL
	TABLE
	ROW
	FUNCTION
	VOID
)

//go:generate stringer -type Type

func (t Type) String() string {
	switch t {
	case INT:
		return "int"
	case DECIMAL:
		return "decimal"
	case STRING:
		return "string"
	case BOOL:
		return "bool"
	case TABLE:
		return "table"
	case ROW:
		return "row"
	case FUNCTION:
		return "function"
	case VOID:
		return "void"
	default:
		return "any"
	}
}

// ParseTypeTag maps a source-level type-name token ("int", "decimal", …)
// to a Type. Unknown tags map to ANY, matching the original's permissive
// _get_type_from_ctx behavior rather than raising an error.
func ParseTypeTag(tag string) Type {
	switch tag {
	case "int":
		return INT
	case "decimal":
		return DECIMAL
	case "string":
		return STRING
	case "bool":
		return BOOL
	case "table":
		return TABLE
	case "row":
		return ROW
	default:
		return ANY
	}
}

// --- LL-IR primitive type descriptors --------------------------------------

// IRType is a textual LL-IR type descriptor ("i32", "i1", "double",
// "i8*", a literal struct, …). It is kept as a plain string since this
// compiler emits LL-IR as text rather than building an in-memory
// instruction graph through a library.
type IRType string

const (
	I32      IRType = "i32"
	I1       IRType = "i1"
	Double   IRType = "double"
	BytePtr  IRType = "i8*"
	VoidType IRType = "void"
)

// Closure is the LL-IR representation of a FUNCTION value: a literal
// struct of two opaque pointers, (function_pointer, environment_pointer).
const Closure IRType = "{ i8*, i8* }"

// Table and Row are opaque runtime handles, represented as byte pointers.
const (
	TableHandle IRType = BytePtr
	RowHandle   IRType = BytePtr
)

// IR maps a source Type to its LL-IR primitive type. ANY has no sound
// mapping of its own; callers that reach ANY at codegen time have a
// semantic-analysis bug (ANY should always have been narrowed, defaulted
// to i32, or already have failed analysis) — IR panics to surface that
// as an internal compiler error rather than silently emitting a bogus
// type.
func IR(t Type) IRType {
	switch t {
	case INT, BOOL:
		// BOOL is widened to i32 only at specific lowering points (return,
		// closure body result); callers needing the narrow i1 form use
		// IR for everything except those comparison/boolean contexts.
		if t == BOOL {
			return I1
		}
		return I32
	case DECIMAL:
		return Double
	case STRING:
		return BytePtr
	case TABLE:
		return TableHandle
	case ROW:
		return RowHandle
	case FUNCTION:
		return Closure
	case VOID:
		return VoidType
	default:
		panic(fmt.Sprintf("types: no LL-IR mapping for %s (ANY reached codegen)", t))
	}
}

// ClosureFuncType builds the textual LL-IR function type for a closure
// target taking n source parameters: one byte-pointer environment
// parameter is prepended to n i32 parameters, per the uniform
// closure-call convention (spec §4.A / §9).
func ClosureFuncType(n int) string {
	paramTypes := make([]IRType, n)
	for i := range paramTypes {
		paramTypes[i] = I32
	}
	return ClosureFuncTypeFor(paramTypes)
}

// ClosureFuncTypeFor builds the textual LL-IR function type for a
// closure target whose parameters are individually typed — a
// byte-pointer environment parameter prepended to paramTypes. Used
// where a closure's parameters are not uniformly i32 (a single-
// parameter table-select predicate takes a row handle, not an int; see
// codegen.paramIRTypes).
func ClosureFuncTypeFor(paramTypes []IRType) string {
	s := "i32 (" + string(BytePtr)
	for _, t := range paramTypes {
		s += ", " + string(t)
	}
	return s + ")"
}
