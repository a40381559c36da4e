package analyze

import (
	"github.com/slowlang/octet/compiler/ast"
	"github.com/slowlang/octet/compiler/token"
)

type (
	// builder strips the parse scaffolding off the concrete tree.
	builder struct {
		next int // next scope id

		lits []string
		seen map[string]struct{}
	}
)

// Build converts a concrete syntax tree into the abstract one.
// It returns the distinct string literals in order of first appearance.
func Build(cst *ast.Node) (x *ast.Node, lits []string) {
	b := builder{seen: map[string]struct{}{}}

	if cst == nil || cst.Kind != ast.Program {
		return nil, nil
	}

	x = b.block(cst.Child(0), 0)

	return x, b.lits
}

func (b *builder) block(n *ast.Node, outer int) *ast.Node {
	id := b.next
	b.next++

	blk := b.node(ast.Block, "", ast.Void, n, outer)
	blk.Scope = id

	for l := n.Child(1); l != nil && l.Kind == ast.StatementList; l = l.Child(1) {
		st := l.Child(0)
		if st == nil || st.Kind != ast.Statement {
			break
		}

		blk.Add(b.statement(st.Child(0), id))
	}

	return blk
}

func (b *builder) statement(n *ast.Node, sc int) *ast.Node {
	switch n.Kind {
	case ast.Block:
		return b.block(n, sc)
	case ast.PrintStatement:
		return b.node(ast.PrintStatement, "", ast.Void, n, sc).Add(
			b.expr(n.Child(2), sc),
		)
	case ast.AssignmentStatement:
		return b.node(ast.AssignmentStatement, "", ast.Void, n, sc).Add(
			b.ident(n.Child(0), sc),
			b.expr(n.Child(2), sc),
		)
	case ast.VarDecl:
		t := n.Child(0).Child(0)
		tp := ast.TypeOf(t.Tok)

		return b.node(ast.VarDecl, "", tp, n, sc).Add(
			b.node(ast.TypeName, t.Value, tp, t, sc),
			b.ident(n.Child(1), sc),
		)
	case ast.IfStatement, ast.WhileStatement:
		return b.node(n.Kind, "", ast.Void, n, sc).Add(
			b.boolExpr(n.Child(1), sc),
			b.block(n.Child(2), sc),
		)
	}

	panic(n.Kind)
}

func (b *builder) expr(n *ast.Node, sc int) *ast.Node {
	c := n.Child(0)

	switch c.Kind {
	case ast.Terminal:
		return b.ident(c, sc)
	case ast.StringExpr:
		return b.literal(c.Child(1), sc)
	case ast.BooleanExpr:
		return b.boolExpr(c, sc)
	case ast.IntExpr:
		return b.intExpr(c, sc)
	}

	panic(c.Kind)
}

// intExpr makes right associated additions: 1 + 2 + a is 1 + (2 + a).
func (b *builder) intExpr(n *ast.Node, sc int) *ast.Node {
	d := n.Child(0)
	dig := b.node(ast.Digit, d.Value, ast.TypeInt, d, sc)

	if len(n.Children) == 1 {
		return dig
	}

	return b.node(ast.Add, "", ast.TypeInt, n, sc).Add(
		dig,
		b.expr(n.Child(2), sc),
	)
}

func (b *builder) boolExpr(n *ast.Node, sc int) *ast.Node {
	if len(n.Children) == 1 {
		v := n.Child(0).Child(0)

		return b.node(ast.Bool, v.Value, ast.TypeBoolean, v, sc)
	}

	k := ast.Equal
	if n.Child(2).Child(0).Tok == token.NotEquals {
		k = ast.NotEqual
	}

	return b.node(k, "", ast.TypeBoolean, n, sc).Add(
		b.expr(n.Child(1), sc),
		b.expr(n.Child(3), sc),
	)
}

func (b *builder) literal(n *ast.Node, sc int) *ast.Node {
	if _, ok := b.seen[n.Value]; !ok {
		b.seen[n.Value] = struct{}{}
		b.lits = append(b.lits, n.Value)
	}

	return b.node(ast.Literal, n.Value, ast.TypeString, n, sc)
}

func (b *builder) ident(n *ast.Node, sc int) *ast.Node {
	return b.node(ast.Ident, n.Value, ast.Void, n, sc)
}

func (b *builder) node(k ast.Kind, val, tp string, from *ast.Node, sc int) *ast.Node {
	n := ast.New(k, val, from.Line)
	n.Type = tp
	n.Scope = sc

	return n
}
