/*
Package abi declares the fixed set of externally-linked runtime symbols
the code generator calls into: table, row, I/O and allocator primitives
provided by RelTable's C runtime library.

License

Governed by a 3-Clause BSD license. License file may be found in the
root folder of this module.

Copyright © 2026 The RelTable Authors
*/
package abi

import "github.com/reltable-lang/reltablec/types"

// Func describes one runtime-linked function by its exact LL-IR
// signature, fixed by spec §4.B and grounded in the original
// runtime_link.py's RuntimeLinker.declare(). Signatures are expressed
// directly in LL-IR types (rather than source types.Type) because
// malloc's size parameter (i64) has no corresponding entry in RelTable's
// source-level Type lattice.
type Func struct {
	Name    string
	Params  []types.IRType
	Result  types.IRType
	Comment string
}

// The runtime ABI, exactly as fixed by spec §4.B.
var (
	CreateTable = Func{"rt_create_table", []types.IRType{types.BytePtr}, types.TableHandle,
		"Allocate a new empty table with a display name."}
	AddColumn = Func{"rt_add_column", []types.IRType{types.TableHandle, types.BytePtr, types.BytePtr}, types.VoidType,
		"Append a column of declared type."}
	AddRow = Func{"rt_add_row", []types.IRType{types.TableHandle}, types.VoidType,
		"Append an empty row."}
	WriteInt = Func{"rt_write_int", []types.IRType{types.I32}, types.VoidType,
		"Print integer."}
	WriteString = Func{"rt_write_string", []types.IRType{types.BytePtr}, types.VoidType,
		"Print string."}
	WriteBool = Func{"rt_write_bool", []types.IRType{types.I1}, types.VoidType,
		"Print boolean."}
	GetInt = Func{"rt_get_int", []types.IRType{types.RowHandle, types.BytePtr}, types.I32,
		"Read integer field."}
	GetString = Func{"rt_get_string", []types.IRType{types.RowHandle, types.BytePtr}, types.BytePtr,
		"Read string field."}
	TableSelect = Func{"rt_table_select", []types.IRType{types.TableHandle, types.Closure}, types.TableHandle,
		"Filter rows; the predicate is invoked with (env, row) and returns non-zero to keep."}
	Malloc = Func{"malloc", []types.IRType{"i64"}, types.BytePtr,
		"Backing allocator for capture environments."}
)

// All returns every declared runtime symbol in the fixed declaration
// order used by the code generator when emitting `declare` statements.
func All() []Func {
	return []Func{
		CreateTable, AddColumn, AddRow,
		WriteInt, WriteString, WriteBool,
		GetInt, GetString, TableSelect,
		Malloc,
	}
}
