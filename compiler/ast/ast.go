package ast

import (
	"tlog.app/go/tlog/tlwire"

	"github.com/slowlang/octet/compiler/token"
)

type (
	Kind int

	// Node is shared by the concrete and abstract syntax trees.
	// Children are owned exclusively by their parent.
	Node struct {
		Kind  Kind
		Value string

		Type  string
		Scope int
		Line  int

		// Decl is the scope of the declaration an identifier resolved to.
		Decl int

		Tok token.Kind

		Children []*Node
	}
)

// Concrete syntax tree kinds.
const (
	None Kind = iota

	Program
	Block
	StatementList
	Epsilon
	Statement
	PrintStatement
	AssignmentStatement
	VarDecl
	WhileStatement
	IfStatement
	TypeDecl
	Expr
	IntExpr
	StringExpr
	BooleanExpr
	BoolOp
	BoolVal
	CharList
	Terminal

	// abstract syntax tree only

	Add
	Equal
	NotEqual
	Ident
	Digit
	Literal
	Bool
	TypeName
)

const (
	Void = "void"

	TypeInt     = "int"
	TypeString  = "string"
	TypeBoolean = "boolean"
)

// TypeOf returns the declared type named by a type keyword.
func TypeOf(k token.Kind) string {
	switch k {
	case token.Int:
		return TypeInt
	case token.String:
		return TypeString
	case token.Boolean:
		return TypeBoolean
	}

	return ""
}

var labels = [...]string{
	None:                "<none>",
	Program:             "<Program>",
	Block:               "<Block>",
	StatementList:       "<StatementList>",
	Epsilon:             "[epsilon]",
	Statement:           "<Statement>",
	PrintStatement:      "<PrintStatement>",
	AssignmentStatement: "<AssignmentStatement>",
	VarDecl:             "<VarDecl>",
	WhileStatement:      "<WhileStatement>",
	IfStatement:         "<IfStatement>",
	TypeDecl:            "<type>",
	Expr:                "<Expr>",
	IntExpr:             "<IntExpr>",
	StringExpr:          "<StringExpr>",
	BooleanExpr:         "<BooleanExpr>",
	BoolOp:              "<boolop>",
	BoolVal:             "<boolval>",
	CharList:            "<CharList>",
	Add:                 "<+>",
	Equal:               "<==>",
	NotEqual:            "<!=>",
}

func New(k Kind, val string, line int) *Node {
	return &Node{
		Kind:  k,
		Value: val,
		Type:  Void,
		Line:  line,
		Decl:  -1,
	}
}

// Term makes a terminal node out of a token.
func Term(t token.Token) *Node {
	n := New(Terminal, t.Value, t.Line)
	n.Tok = t.Kind

	return n
}

func (n *Node) Add(ch ...*Node) *Node {
	n.Children = append(n.Children, ch...)

	return n
}

func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.Children) {
		return nil
	}

	return n.Children[i]
}

// Leaf reports whether the node prints as its value.
func (k Kind) Leaf() bool {
	switch k {
	case Terminal, Ident, Digit, Literal, Bool, TypeName:
		return true
	}

	return false
}

func (k Kind) String() string {
	if k > 0 && int(k) < len(labels) && labels[k] != "" {
		return labels[k]
	}

	switch k {
	case Terminal:
		return "terminal"
	case Ident:
		return "ident"
	case Digit:
		return "digit"
	case Literal:
		return "literal"
	case Bool:
		return "bool"
	case TypeName:
		return "typename"
	}

	return "<unknown>"
}

// Label is the dump representation: <Rule> for inner nodes, [value] for leaves.
func (n *Node) Label() string {
	if n.Kind.Leaf() {
		return "[" + n.Value + "]"
	}

	return n.Kind.String()
}

// Walk visits nodes in pre-order. Returning false skips the children.
func Walk(n *Node, f func(n *Node, depth int) bool) {
	walk(n, 0, f)
}

func walk(n *Node, d int, f func(n *Node, depth int) bool) {
	if n == nil || !f(n, d) {
		return
	}

	for _, ch := range n.Children {
		walk(ch, d+1, f)
	}
}

func (n *Node) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	if n == nil {
		return e.AppendNil(b)
	}

	b = e.AppendMap(b, 4)

	b = e.AppendString(b, "label")
	b = e.AppendString(b, n.Label())
	b = e.AppendString(b, "type")
	b = e.AppendString(b, n.Type)
	b = e.AppendKeyInt(b, "line", n.Line)
	b = e.AppendKeyInt(b, "children", len(n.Children))

	return b
}
