package parse

import (
	"context"
	"strings"

	"github.com/slowlang/octet/compiler/ast"
	"github.com/slowlang/octet/compiler/token"
)

// grammar ties the rules together.
// Rules referring to each other recursively go through the Parser methods.
func (p *Parser) grammar() rule {
	return p.allOf(ast.Program, p.block, p.match(token.EOF))
}

func (p *Parser) block(ctx context.Context, st int) (*ast.Node, int, error) {
	return p.allOf(ast.Block,
		p.match(token.OpenBrace),
		p.statementList,
		p.match(token.CloseBrace),
	)(ctx, st)
}

func (p *Parser) statementList(ctx context.Context, st int) (*ast.Node, int, error) {
	x, i, err := p.allOf(ast.StatementList, p.statement, p.statementList)(ctx, st)
	if err == nil {
		return x, i, nil
	}

	n := ast.New(ast.StatementList, "", p.tok(st).Line)
	n.Add(ast.New(ast.Epsilon, "", p.tok(st).Line))

	return n, st, nil
}

func (p *Parser) statement(ctx context.Context, st int) (*ast.Node, int, error) {
	return p.wrap(ast.Statement, p.anyOf(
		p.stmt(ast.PrintStatement,
			p.match(token.Print),
			p.match(token.OpenParen),
			p.expr,
			p.match(token.CloseParen),
		),
		p.stmt(ast.AssignmentStatement,
			p.match(token.ID),
			p.match(token.Assign),
			p.expr,
		),
		p.stmt(ast.IfStatement,
			p.match(token.If),
			p.boolExpr,
			p.block,
		),
		p.stmt(ast.WhileStatement,
			p.match(token.While),
			p.boolExpr,
			p.block,
		),
		p.stmt(ast.VarDecl,
			p.typeDecl,
			p.match(token.ID),
		),
		p.block,
	))(ctx, st)
}

func (p *Parser) typeDecl(ctx context.Context, st int) (*ast.Node, int, error) {
	return p.wrap(ast.TypeDecl, p.anyOf(
		p.match(token.Int),
		p.match(token.String),
		p.match(token.Boolean),
	))(ctx, st)
}

func (p *Parser) expr(ctx context.Context, st int) (*ast.Node, int, error) {
	return p.wrap(ast.Expr, p.anyOf(
		p.match(token.ID),
		p.stringExpr,
		p.boolExpr,
		p.intExpr,
	))(ctx, st)
}

func (p *Parser) intExpr(ctx context.Context, st int) (*ast.Node, int, error) {
	return p.anyOf(
		p.allOf(ast.IntExpr, p.match(token.Digit), p.match(token.Plus), p.expr),
		p.allOf(ast.IntExpr, p.match(token.Digit)),
	)(ctx, st)
}

func (p *Parser) stringExpr(ctx context.Context, st int) (*ast.Node, int, error) {
	return p.allOf(ast.StringExpr,
		p.match(token.Quote),
		p.charList,
		p.match(token.Quote),
	)(ctx, st)
}

func (p *Parser) boolExpr(ctx context.Context, st int) (*ast.Node, int, error) {
	return p.anyOf(
		p.allOf(ast.BooleanExpr,
			p.match(token.OpenParen),
			p.expr,
			p.wrap(ast.BoolOp, p.anyOf(p.match(token.Equals), p.match(token.NotEquals))),
			p.expr,
			p.match(token.CloseParen),
		),
		p.allOf(ast.BooleanExpr,
			p.wrap(ast.BoolVal, p.anyOf(p.match(token.True), p.match(token.False))),
		),
	)(ctx, st)
}

// charList folds letters, spaces and letter-only keywords into one literal.
// It never fails: an empty list is the empty string.
func (p *Parser) charList(ctx context.Context, st int) (*ast.Node, int, error) {
	var b strings.Builder

	i := st
	for i < len(p.toks) && p.toks[i].Kind.Letters() {
		b.WriteString(p.toks[i].Value)
		i++
	}

	n := ast.New(ast.CharList, b.String(), p.tok(st).Line)

	n.Add(ast.New(ast.Terminal, n.Value, n.Line))

	return n, i, nil
}
