package analyze

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/octet/compiler/ast"
	"github.com/slowlang/octet/compiler/diag"
	"github.com/slowlang/octet/compiler/lex"
	"github.com/slowlang/octet/compiler/parse"
)

func analyze(t *testing.T, src string, opts Options) (*Result, *diag.Report) {
	t.Helper()

	ctx := context.Background()

	toks, rep := lex.Scan(ctx, []byte(src))
	require.Zero(t, rep.Errors, "lex: %v", rep.List)

	cst, rep := parse.Parse(ctx, toks)
	require.Zero(t, rep.Errors, "parse: %v", rep.List)

	return Analyze(ctx, cst, opts)
}

func dump(x *ast.Node) string {
	var b strings.Builder

	ast.Walk(x, func(n *ast.Node, d int) bool {
		fmt.Fprintf(&b, "%s%s(%d)\n", strings.Repeat("-", d), n.Label(), n.Scope)
		return true
	})

	return b.String()
}

func msgs(rep *diag.Report, k diag.Kind) (r []string) {
	for _, d := range rep.List {
		if d.Kind == k {
			r = append(r, d.Msg)
		}
	}

	return r
}

func TestAnalyzeAST(t *testing.T) {
	res, rep := analyze(t, `{int a a = 1 + 2 + a {boolean b b = (a != 3) print(b)} print("x y") while true {}}$`, Options{})
	require.Zero(t, rep.Errors, "%v", rep.List)
	require.Zero(t, rep.Warnings, "%v", rep.List)

	assert.Equal(t, `<Block>(0)
-<VarDecl>(0)
--[int](0)
--[a](0)
-<AssignmentStatement>(0)
--[a](0)
--<+>(0)
---[1](0)
---<+>(0)
----[2](0)
----[a](0)
-<Block>(1)
--<VarDecl>(1)
---[boolean](1)
---[b](1)
--<AssignmentStatement>(1)
---[b](1)
---<!=>(1)
----[a](1)
----[3](1)
--<PrintStatement>(1)
---[b](1)
-<PrintStatement>(0)
--[x y](0)
-<WhileStatement>(0)
--[true](0)
--<Block>(2)
`, dump(res.AST))

	assert.Equal(t, []string{"x y"}, res.Literals)

	if assert.Len(t, res.Table.Frames, 3) {
		assert.Equal(t, -1, res.Table.Frames[0].Parent)
		assert.Equal(t, 0, res.Table.Frames[1].Parent)
		assert.Equal(t, 0, res.Table.Frames[2].Parent)
	}

	a := res.Table.Lookup(1, "a")
	if assert.NotNil(t, a) {
		assert.Equal(t, "int", a.Type)
		assert.Equal(t, 0, a.Scope)
		assert.True(t, a.Initialized)
		assert.True(t, a.Used)
	}

	assert.Nil(t, res.Table.Lookup(0, "b"))
}

func TestScopeNumbering(t *testing.T) {
	res, rep := analyze(t, `{ { {} } if true { {} } {} }$`, Options{})
	require.Zero(t, rep.Errors)

	var scopes []int

	ast.Walk(res.AST, func(n *ast.Node, d int) bool {
		if n.Kind == ast.Block {
			scopes = append(scopes, n.Scope)
		}

		return true
	})

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, scopes)
	assert.Len(t, res.Table.Frames, 6)
	assert.Equal(t, 1, res.Table.Frames[2].Parent)
	assert.Equal(t, 3, res.Table.Frames[4].Parent)
}

func TestShadowing(t *testing.T) {
	res, rep := analyze(t, `{int a a = 1 {string a a = "x" print(a)} print(a)}$`, Options{})
	require.Zero(t, rep.Errors, "%v", rep.List)
	require.Zero(t, rep.Warnings, "%v", rep.List)

	var decls []string

	ast.Walk(res.AST, func(n *ast.Node, d int) bool {
		if n.Kind == ast.Ident {
			decls = append(decls, fmt.Sprintf("%s:%s@%d", n.Value, n.Type, n.Decl))
		}

		return true
	})

	assert.Equal(t, []string{"a:int@0", "a:int@0", "a:string@1", "a:string@1", "a:string@1", "a:int@0"}, decls)
}

func TestDuplicateDeclaration(t *testing.T) {
	res, rep := analyze(t, "{int a\nstring a\na = 1 print(a)}$", Options{})
	require.NotNil(t, res)

	assert.Equal(t, 1, rep.Errors)
	assert.Equal(t, []string{"Variable [a] is already declared in this scope on line 1."}, msgs(rep, diag.DeclarationError))
	assert.Equal(t, 2, rep.List[0].Line)

	a := res.Table.Lookup(0, "a")
	if assert.NotNil(t, a) {
		assert.Equal(t, "int", a.Type)
		assert.Equal(t, 1, a.Line)
	}
}

func TestUndeclared(t *testing.T) {
	_, rep := analyze(t, `{a = 1 print(b)}$`, Options{})

	assert.Equal(t, []string{
		"Variable [a] is assigned before being declared.",
		"Variable [b] is used before being declared.",
	}, msgs(rep, diag.DeclarationError))

	assert.Zero(t, rep.Has(diag.TypeError))
}

func TestUninitialized(t *testing.T) {
	_, rep := analyze(t, `{int a print(a)}$`, Options{})
	assert.Zero(t, rep.Errors)
	assert.Equal(t, []string{"Variable [a] is used before being initialized."}, msgs(rep, diag.UninitializedWarning))
	assert.Zero(t, rep.Has(diag.UnusedVariableWarning))

	_, rep = analyze(t, `{int a print(a)}$`, Options{Strict: true})
	assert.Equal(t, 1, rep.Errors)
	assert.Equal(t, []string{"Variable [a] is used before being initialized."}, msgs(rep, diag.DeclarationError))
}

func TestAssignInitializesBeforeValue(t *testing.T) {
	_, rep := analyze(t, `{int a a = 1 + a print(a)}$`, Options{})
	assert.Zero(t, rep.Errors)
	assert.Zero(t, rep.Warnings, "%v", rep.List)
}

func TestTypeErrors(t *testing.T) {
	for _, tc := range []struct {
		src string
		msg string
	}{
		{src: `{int a a = "x" print(a)}$`, msg: "Type mismatch: cannot assign [string] to the variable [a] of type [int]."},
		{src: `{boolean b b = 1 print(b)}$`, msg: "Type mismatch: cannot assign [int] to the variable [b] of type [boolean]."},
		{src: `{string s s = (1 == 2) print(s)}$`, msg: "Type mismatch: cannot assign [boolean] to the variable [s] of type [string]."},
		{src: `{string s s = "x" int a a = 1 + s print(a)}$`, msg: "Type mismatch: cannot add [string] to an integer."},
		{src: `{int a a = 1 if (a == "x") {}}$`, msg: "Type mismatch: cannot compare [int] with [string]."},
		{src: `{if (true != 1) {}}$`, msg: "Type mismatch: cannot compare [boolean] with [int]."},
	} {
		_, rep := analyze(t, tc.src, Options{})

		assert.Equal(t, []string{tc.msg}, msgs(rep, diag.TypeError), "src %q", tc.src)
		assert.Equal(t, 1, rep.Errors, "src %q: %v", tc.src, rep.List)
	}
}

func TestUnusedWarnings(t *testing.T) {
	_, rep := analyze(t, "{int a\nint b\nb = 1}$", Options{})
	assert.Zero(t, rep.Errors)

	assert.Equal(t, []string{
		"Variable [a] is declared but never used.",
		"Variable [b] is initialized but never used.",
	}, msgs(rep, diag.UnusedVariableWarning))

	if assert.Len(t, rep.List, 2) {
		assert.Equal(t, 1, rep.List[0].Line)
		assert.Equal(t, 2, rep.List[1].Line)
	}
}

func TestLiteralTable(t *testing.T) {
	res, rep := analyze(t, `{string s s = "b" s = "a" s = "b" s = "" print(s) if (s == "a") {}}$`, Options{})
	require.Zero(t, rep.Errors)

	assert.Equal(t, []string{"b", "a", ""}, res.Literals)
}

func TestAnalyzeNil(t *testing.T) {
	res, rep := Analyze(context.Background(), nil, Options{})
	assert.Nil(t, res)
	assert.Equal(t, 1, rep.Errors)
}
