package reltable

import "fmt"

// --- A general purpose interface for tokens --------------------------------

// TokType is a category type for a Token. Concrete values are defined by the
// lexer package, which owns RelTable's token set.
type TokType int

// TokTypeStringer is a type to be provided by a scanner/parser combination to be able
// to print out token categories.
type TokTypeStringer func(TokType) string

// Token represents an input token. Tokens are produced by a scanner and
// reflect terminals of RelTable's grammar.
//
// An example would be a token for an integer literal:
//
//    TokType = Int       // identifier for this kind of tokens
//    Lexeme  = "42"       // lexeme how it appeared in the input stream
//    Value   = 42         // converted value
//    Span    = 67…69      // occurred from position 67 in the input stream
//
// Token.Value() may either have been set by the scanner, or converted from
// Token.Lexeme() by the parser.
type Token interface {
	TokType() TokType
	Lexeme() string
	Value() interface{}
	Span() Span
}

// TokenRetriever is a type for getting tokens at an input position.
type TokenRetriever func(uint64) Token

// --- Spans ------------------------------------------------------------

// Span is a small type for capturing a length of input token run. For every
// parse-tree node, a span tracks which input positions it covers. A span
// denotes a start position and the position just behind the end.
type Span [2]uint64 // (x…y)

// From returns the start value of a span.
func (s Span) From() uint64 {
	return s[0]
}

// To returns the end value of a span.
func (s Span) To() uint64 {
	return s[1]
}

// Len returns the length of (x…y)
func (s Span) Len() uint64 {
	return s[1] - s[0]
}

func (s Span) IsNull() bool {
	return s == Span{}
}

func (s Span) Extend(other Span) Span {
	if other[0] < s[0] {
		s[0] = other[0]
	}
	if other[1] > s[1] {
		s[1] = other[1]
	}
	return s
}

func (s Span) String() string {
	return fmt.Sprintf("(%d…%d)", s[0], s[1])
}

// Position is a human-facing line/column location, used for diagnostics.
// Lexer and parser attach a Position to every token/node alongside its Span.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}
