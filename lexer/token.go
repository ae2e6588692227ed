package lexer

import "github.com/reltable-lang/reltablec"

// Token categories for RelTable (spec §6: "Source language tokens
// relevant to this spec"). Values are assigned by iota below and passed
// to lexmachine as each rule's token id (see lexer.go).
const (
	EOF reltable.TokType = iota

	IDENT
	INT
	DECIMAL
	STRING
	BOOL

	// keywords
	FUNC
	IF
	ELSE
	FOR
	IN
	SWITCH
	CASE
	DEFAULT
	TO
	RETURN
	BREAK
	CREATE_TABLE
	ADD_COLUMN
	ADD_ROW
	SELECT
	WHERE
	ORDER
	AND
	OR
	NOT

	// operators & punctuation
	PLUS
	MINUS
	STAR
	SLASH
	EQ
	NE
	LT
	LE
	GT
	GE
	ASSIGN
	DOT
	DOTDOT
	ARROW
	COMMA
	COLON
	SEMI
	LBRACE
	RBRACE
	LPAREN
	RPAREN
	LBRACK
	RBRACK
)

var names = map[reltable.TokType]string{
	EOF: "EOF", IDENT: "IDENT", INT: "INT", DECIMAL: "DECIMAL", STRING: "STRING", BOOL: "BOOL",
	FUNC: "func", IF: "if", ELSE: "else", FOR: "for", IN: "in", SWITCH: "switch",
	CASE: "case", DEFAULT: "default", TO: "to", RETURN: "return", BREAK: "break",
	CREATE_TABLE: "create_table", ADD_COLUMN: "add_column", ADD_ROW: "add_row",
	SELECT: "select", WHERE: "where", ORDER: "order", AND: "and", OR: "or", NOT: "not",
	PLUS: "+", MINUS: "-", STAR: "*", SLASH: "/",
	EQ: "==", NE: "!=", LT: "<", LE: "<=", GT: ">", GE: ">=",
	ASSIGN: "=", DOT: ".", DOTDOT: "..", ARROW: "=>",
	COMMA: ",", COLON: ":", SEMI: ";",
	LBRACE: "{", RBRACE: "}", LPAREN: "(", RPAREN: ")", LBRACK: "[", RBRACK: "]",
}

// TypeName stringifies a TokType for diagnostics/tests.
func TypeName(t reltable.TokType) string {
	if n, ok := names[t]; ok {
		return n
	}
	return "?"
}

// keywords maps lexeme text to its keyword TokType. The scanner does not
// consult it: keywords are recognized by the DFA rules in lexer.go
// (ruleOrder), registered ahead of the identifier pattern.
var keywords = map[string]reltable.TokType{
	"func": FUNC, "if": IF, "else": ELSE, "for": FOR, "in": IN,
	"switch": SWITCH, "case": CASE, "default": DEFAULT, "to": TO,
	"return": RETURN, "break": BREAK,
	"create_table": CREATE_TABLE, "add_column": ADD_COLUMN, "add_row": ADD_ROW,
	"select": SELECT, "where": WHERE, "order": ORDER,
	"and": AND, "or": OR, "not": NOT,
}

// Tok is RelTable's concrete reltable.Token implementation.
type Tok struct {
	Kind   reltable.TokType
	Text   string
	Val    interface{}
	Sp     reltable.Span
	Pos    reltable.Position
}

var _ reltable.Token = Tok{}

func (t Tok) TokType() reltable.TokType { return t.Kind }
func (t Tok) Lexeme() string            { return t.Text }
func (t Tok) Value() interface{}        { return t.Val }
func (t Tok) Span() reltable.Span       { return t.Sp }
