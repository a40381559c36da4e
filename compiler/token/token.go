package token

import (
	"tlog.app/go/tlog/tlwire"
)

type (
	Kind int

	Token struct {
		Value string
		Kind  Kind
		Line  int
	}
)

const (
	None Kind = iota

	ID
	Digit
	Assign
	Plus
	OpenBrace
	CloseBrace
	OpenParen
	CloseParen
	Quote
	EOF
	Equals
	NotEquals
	False
	True
	While
	Print
	String
	Boolean
	If
	Space
	Int
)

var names = [...]string{
	None:       "T_NONE",
	ID:         "T_ID",
	Digit:      "T_DIGIT",
	Assign:     "T_ASSIGN",
	Plus:       "T_PLUS",
	OpenBrace:  "T_OPEN_BRACE",
	CloseBrace: "T_CLOSE_BRACE",
	OpenParen:  "T_OPEN_PAREN",
	CloseParen: "T_CLOSE_PAREN",
	Quote:      "T_QUOTE",
	EOF:        "T_EOF",
	Equals:     "T_EQUALS",
	NotEquals:  "T_NOT_EQUALS",
	False:      "T_FALSE",
	True:       "T_TRUE",
	While:      "T_WHILE",
	Print:      "T_PRINT",
	String:     "T_STRING",
	Boolean:    "T_BOOLEAN",
	If:         "T_IF",
	Space:      "T_SPACE",
	Int:        "T_INT",
}

// Reserved maps multi-character lexemes to their kinds.
var Reserved = map[string]Kind{
	"true":    True,
	"false":   False,
	"while":   While,
	"print":   Print,
	"int":     Int,
	"string":  String,
	"boolean": Boolean,
	"if":      If,
	"==":      Equals,
	"!=":      NotEquals,
}

// Punct maps single-character lexemes that form a token on their own.
var Punct = map[byte]Kind{
	'+': Plus,
	'{': OpenBrace,
	'}': CloseBrace,
	'(': OpenParen,
	')': CloseParen,
	'"': Quote,
	'$': EOF,
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(names) {
		return "T_UNKNOWN"
	}

	return names[k]
}

// Letters reports whether the kind may appear inside a character list.
func (k Kind) Letters() bool {
	switch k {
	case ID, Space, False, True, While, Print, String, Boolean, Int, If:
		return true
	}

	return false
}

func (t Token) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	b = e.AppendMap(b, 3)

	b = e.AppendString(b, "kind")
	b = e.AppendString(b, t.Kind.String())
	b = e.AppendString(b, "value")
	b = e.AppendString(b, t.Value)
	b = e.AppendKeyInt(b, "line", t.Line)

	return b
}
