package parse

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/octet/compiler/ast"
	"github.com/slowlang/octet/compiler/diag"
	"github.com/slowlang/octet/compiler/lex"
)

func parse(t *testing.T, src string) (*ast.Node, *diag.Report) {
	t.Helper()

	ctx := context.Background()

	toks, rep := lex.Scan(ctx, []byte(src))
	require.Zero(t, rep.Errors, "lex errors: %v", rep.List)

	return Parse(ctx, toks)
}

func dump(x *ast.Node) string {
	var b strings.Builder

	ast.Walk(x, func(n *ast.Node, d int) bool {
		b.WriteString(strings.Repeat("-", d))
		b.WriteString(n.Label())
		b.WriteByte('\n')

		return true
	})

	return b.String()
}

func find(x *ast.Node, k ast.Kind) (r []*ast.Node) {
	ast.Walk(x, func(n *ast.Node, d int) bool {
		if n.Kind == k {
			r = append(r, n)
		}

		return true
	})

	return r
}

func TestParseCST(t *testing.T) {
	x, rep := parse(t, `{int a a=1 print(a)}$`)
	require.Zero(t, rep.Errors, "%v", rep.List)

	assert.Equal(t, `<Program>
-<Block>
--[{]
--<StatementList>
---<Statement>
----<VarDecl>
-----<type>
------[int]
-----[a]
---<StatementList>
----<Statement>
-----<AssignmentStatement>
------[a]
------[=]
------<Expr>
-------<IntExpr>
--------[1]
----<StatementList>
-----<Statement>
------<PrintStatement>
-------[print]
-------[(]
-------<Expr>
--------[a]
-------[)]
-----<StatementList>
------[epsilon]
--[}]
-[$]
`, dump(x))
}

func TestParseExpressions(t *testing.T) {
	x, rep := parse(t, `{
    int a
    a = 1 + 2 + a
    string s
    s = "hi there"
    s = ""
    boolean b
    b = (a != 3)
    if (s == "if") { print(s) }
    while true { b = false }
    { }
}$`)
	require.Zero(t, rep.Errors, "%v", rep.List)

	ints := find(x, ast.IntExpr)
	assert.Len(t, ints, 3)

	cl := find(x, ast.CharList)
	if assert.Len(t, cl, 3) {
		assert.Equal(t, "hi there", cl[0].Value)
		assert.Equal(t, "", cl[1].Value)
		assert.Equal(t, "if", cl[2].Value)
	}

	assert.Len(t, find(x, ast.BooleanExpr), 4)
	assert.Len(t, find(x, ast.BoolOp), 2)
	assert.Len(t, find(x, ast.BoolVal), 2)
	assert.Len(t, find(x, ast.IfStatement), 1)
	assert.Len(t, find(x, ast.WhileStatement), 1)
	assert.Len(t, find(x, ast.Block), 4)
}

func TestParseErrors(t *testing.T) {
	for _, tc := range []struct {
		src  string
		line int
		msg  string
	}{
		{src: `{ print(a }$`, line: 1, msg: "Expecting a closing parenthesis [)] before the [}]."},
		{src: `{ a 1 }$`, line: 1, msg: "Expecting the assignment operator [=]. Instead found the token [1]."},
		{src: `{ }`, line: 1, msg: "Program cannot end with [end of input]. Programs may only end with [$]."},
		{src: `{ } }`, line: 1, msg: "Program cannot end with [}]. Programs may only end with [$]."},
		{src: `{ 5 }$`, line: 1, msg: "Expecting a closing brace [}] before the [5]."},
		{src: `}$`, line: 1, msg: "Expecting an open brace [{] before the [}]."},
		{src: "{\nint\n}$", line: 3, msg: "[}] is not a valid identifier. Valid identifiers include lowercase letters [a-z]."},
		{src: "{\n while (a == b) {\n print(a\n }\n}$", line: 4, msg: "Expecting a closing parenthesis [)] before the [}]."},
		{src: `{ if (a b) {} }$`, line: 1, msg: "[b] is not a valid boolean operator. Valid boolean operators include [==] and [!=]."},
		{src: `{}$ {`, line: 1, msg: "Unexpected token [{] after the end of the program [$]."},
	} {
		x, rep := parse(t, tc.src)
		assert.Nil(t, x, "src %q", tc.src)

		if assert.Equal(t, 1, rep.Errors, "src %q", tc.src) {
			d := rep.List[0]

			assert.Equal(t, diag.ParseError, d.Kind, "src %q", tc.src)
			assert.Equal(t, tc.line, d.Line, "src %q", tc.src)
			assert.Equal(t, tc.msg, d.Msg, "src %q", tc.src)
		}
	}
}

func TestParseNoTokens(t *testing.T) {
	x, rep := Parse(context.Background(), nil)
	assert.Nil(t, x)

	if assert.Equal(t, 1, rep.Errors) {
		assert.Equal(t, "Expecting an open brace [{] before the [end of input].", rep.List[0].Msg)
		assert.Equal(t, 0, rep.List[0].Line)
	}
}

func TestProgramTypedErrors(t *testing.T) {
	toks, _ := lex.Scan(context.Background(), []byte(`{}$}`))

	_, err := New(toks).Program(context.Background())

	var pe PartialReadError
	if assert.ErrorAs(t, err, &pe) {
		assert.Equal(t, 3, pe.Pos)
	}

	toks, _ = lex.Scan(context.Background(), []byte(`{ a = }$`))

	_, err = New(toks).Program(context.Background())

	var me *MismatchError
	if assert.ErrorAs(t, err, &me) {
		assert.Equal(t, 3, me.Pos)
	}
}
