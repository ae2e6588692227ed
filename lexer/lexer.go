/*
Package lexer tokenizes RelTable source text with a lexmachine-generated
DFA, adapted from the teacher's lr/scanner/lexmach adapter for
RelTable's own keyword/operator/literal set (spec §6).

Lexing is, per spec §1, an external collaborator of the semantic/codegen
core — only its boundary contract (producing reltable.Token values with
a stable TokType, Lexeme, Value and Span) is fixed by the spec. This
package is a concrete implementation of that boundary so the driver
(§4.F) has something to call.

License

Governed by a 3-Clause BSD license. License file may be found in the
root folder of this module.

Copyright © 2026 The RelTable Authors
*/
package lexer

import (
	"fmt"
	"strconv"

	"github.com/npillmayer/schuko/tracing"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"

	"github.com/reltable-lang/reltablec"
)

// T traces with key 'reltable.lexer'.
func T() tracing.Trace {
	return tracing.Select("reltable.lexer")
}

// order matters: lexmachine's DFA prefers the earliest-registered rule
// on a tie in match length, so keywords must be registered before the
// general identifier pattern.
var ruleOrder = []struct {
	pattern string
	kind    reltable.TokType
}{
	{`create_table`, CREATE_TABLE},
	{`add_column`, ADD_COLUMN},
	{`add_row`, ADD_ROW},
	{`func`, FUNC}, {`if`, IF}, {`else`, ELSE}, {`for`, FOR}, {`in`, IN},
	{`switch`, SWITCH}, {`case`, CASE}, {`default`, DEFAULT}, {`to`, TO},
	{`return`, RETURN}, {`break`, BREAK},
	{`select`, SELECT}, {`where`, WHERE}, {`order`, ORDER},
	{`and`, AND}, {`or`, OR}, {`not`, NOT},
}

var literalRules = []struct {
	pattern string
	kind    reltable.TokType
}{
	{`=>`, ARROW},
	{`\.\.`, DOTDOT},
	{`==`, EQ}, {`!=`, NE}, {`<=`, LE}, {`>=`, GE},
	{`<`, LT}, {`>`, GT},
	{`\+`, PLUS}, {`-`, MINUS}, {`\*`, STAR}, {`/`, SLASH},
	{`=`, ASSIGN}, {`\.`, DOT},
	{`,`, COMMA}, {`:`, COLON}, {`;`, SEMI},
	{`\{`, LBRACE}, {`\}`, RBRACE},
	{`\(`, LPAREN}, {`\)`, RPAREN},
	{`\[`, LBRACK}, {`\]`, RBRACK},
}

// Lexer wraps a compiled lexmachine DFA for RelTable's token set.
type Lexer struct {
	lex *lexmachine.Lexer
}

// New compiles RelTable's DFA. The result is reusable across many
// source files; only Scan() allocates per-input state.
func New() (*Lexer, error) {
	lex := lexmachine.NewLexer()

	for _, r := range ruleOrder {
		kind := r.kind
		lex.Add([]byte(r.pattern), keywordAction(kind))
	}
	for _, r := range literalRules {
		kind := r.kind
		lex.Add([]byte(r.pattern), simpleAction(kind))
	}

	lex.Add([]byte(`true`), boolAction(true))
	lex.Add([]byte(`false`), boolAction(false))

	lex.Add([]byte(`[a-zA-Z_][a-zA-Z0-9_]*`), identAction)
	lex.Add([]byte(`[0-9]+\.[0-9]+`), decimalAction)
	lex.Add([]byte(`[0-9]+`), intAction)
	lex.Add([]byte(`"[^"]*"`), stringAction)

	lex.Add([]byte(`( |\t|\n|\r)+`), skip)
	lex.Add([]byte(`#[^\n]*`), skip)

	if err := lex.Compile(); err != nil {
		T().Errorf("lexer: error compiling DFA: %v", err)
		return nil, err
	}
	return &Lexer{lex: lex}, nil
}

// Scan creates a token stream for input, bound to sourceID for
// diagnostics.
func (l *Lexer) Scan(sourceID string, input []byte) (*Stream, error) {
	s, err := l.lex.Scanner(input)
	if err != nil {
		return nil, err
	}
	return &Stream{scanner: s, sourceID: sourceID, input: input}, nil
}

// Stream yields reltable.Tokens one at a time from a compiled lexer.
type Stream struct {
	scanner  *lexmachine.Scanner
	sourceID string
	input    []byte
}

// Next returns the next token, or an EOF token (reltable.TokType(EOF))
// once input is exhausted.
func (s *Stream) Next() (Tok, error) {
	tok, err, eof := s.scanner.Next()
	if eof {
		return Tok{Kind: EOF}, nil
	}
	if err != nil {
		return Tok{}, fmt.Errorf("%s: lex error: %w", s.sourceID, err)
	}
	t := tok.(*lexmachine.Token)
	rt := t.Value.(tokValue)
	line, col := lineCol(s.input, t.TC)
	return Tok{
		Kind: rt.kind,
		Text: string(t.Lexeme),
		Val:  rt.value,
		Sp:   reltable.Span{uint64(t.TC), uint64(t.TC + len(t.Lexeme))},
		Pos:  reltable.Position{Line: line, Column: col},
	}, nil
}

// tokValue is what every lexmachine action stores as *lexmachine.Token.Value.
type tokValue struct {
	kind  reltable.TokType
	value interface{}
}

func simpleAction(kind reltable.TokType) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(int(kind), tokValue{kind: kind}, m), nil
	}
}

func keywordAction(kind reltable.TokType) lexmachine.Action {
	return simpleAction(kind)
}

func boolAction(v bool) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(int(BOOL), tokValue{kind: BOOL, value: v}, m), nil
	}
}

func identAction(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
	return s.Token(int(IDENT), tokValue{kind: IDENT}, m), nil
}

func intAction(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
	v, err := strconv.ParseInt(string(m.Bytes), 10, 32)
	if err != nil {
		return nil, err
	}
	return s.Token(int(INT), tokValue{kind: INT, value: int32(v)}, m), nil
}

func decimalAction(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
	v, err := strconv.ParseFloat(string(m.Bytes), 64)
	if err != nil {
		return nil, err
	}
	return s.Token(int(DECIMAL), tokValue{kind: DECIMAL, value: v}, m), nil
}

func stringAction(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
	raw := string(m.Bytes)
	v := raw[1 : len(raw)-1] // strip the surrounding quotes
	return s.Token(int(STRING), tokValue{kind: STRING, value: v}, m), nil
}

func skip(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
	return nil, nil
}

// lineCol converts a byte offset into a 1-based line/column pair.
func lineCol(input []byte, offset int) (line, col int) {
	line, col = 1, 1
	for i := 0; i < offset && i < len(input); i++ {
		if input[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}
