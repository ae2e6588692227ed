/*
Package reltable is the compiler front-to-mid end for RelTable, a small
DSL for relational-table manipulation (create tables, add columns and
rows, filter via predicate expressions, select, iterate, write results).

RelTable source text is lowered to textual LL-IR, later assembled and
linked against a C runtime library providing table/row/I-O primitives.
Package structure is as follows:

■ types: the source-level Type lattice and its mapping to LL-IR
primitive types.

■ abi: the fixed set of externally-linked runtime symbols the
generated code calls into.

■ scope: the lexical scope stack and capture tracking used by both
the semantic pass and the code generator.

■ ast: the parse-tree node types consumed by semantic analysis and
code generation.

■ lexer, parser: a lexmachine-backed scanner and a recursive-descent
parser turning source text into an ast.Program.

■ sema: the semantic pass — scoped symbol resolution, capture
discovery, and basic type inference.

■ codegen: the code generator — SSA-form LL-IR lowering, including
closure construction and control-flow lowering.

The base package contains data types used throughout the other
packages (tokens and source spans).

License

Governed by a 3-Clause BSD license. License file may be found in the
root folder of this module.

Copyright © 2026 The RelTable Authors

*/
package reltable
