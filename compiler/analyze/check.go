package analyze

import (
	"context"

	"github.com/slowlang/octet/compiler/ast"
	"github.com/slowlang/octet/compiler/diag"
)

type (
	checker struct {
		Options

		tab *Table
		rep *diag.Report
	}
)

func (c *checker) block(ctx context.Context, n *ast.Node, parent int) {
	c.tab.Open(n.Scope, parent)

	for _, st := range n.Children {
		c.statement(ctx, st, n.Scope)
	}
}

func (c *checker) statement(ctx context.Context, n *ast.Node, sc int) {
	switch n.Kind {
	case ast.Block:
		c.block(ctx, n, sc)
	case ast.VarDecl:
		id := n.Child(1)

		s := &Symbol{
			Name: id.Value,
			Type: n.Type,
			Line: id.Line,
		}

		if prev := c.tab.Frame(sc).Declare(s); prev != nil {
			c.rep.Add(ctx, diag.DeclarationError, id.Line, "Variable [%s] is already declared in this scope on line %d.", id.Value, prev.Line)
			return
		}

		id.Type = s.Type
		id.Decl = sc
	case ast.AssignmentStatement:
		id := n.Child(0)

		s := c.tab.Lookup(sc, id.Value)
		if s == nil {
			c.rep.Add(ctx, diag.DeclarationError, id.Line, "Variable [%s] is assigned before being declared.", id.Value)
		} else {
			s.Initialized = true

			id.Type = s.Type
			id.Decl = s.Scope
		}

		tp := c.expr(ctx, n.Child(1), sc)

		if s != nil && tp != "" && tp != s.Type {
			c.rep.Add(ctx, diag.TypeError, n.Line, "Type mismatch: cannot assign [%s] to the variable [%s] of type [%s].", tp, s.Name, s.Type)
		}
	case ast.PrintStatement:
		c.expr(ctx, n.Child(0), sc)
	case ast.IfStatement, ast.WhileStatement:
		c.expr(ctx, n.Child(0), sc)
		c.block(ctx, n.Child(1), sc)
	}
}

// expr returns the expression type or "" when it can't be known.
func (c *checker) expr(ctx context.Context, n *ast.Node, sc int) string {
	switch n.Kind {
	case ast.Ident:
		return c.use(ctx, n, sc)
	case ast.Add:
		tp := c.expr(ctx, n.Child(1), sc)

		if tp != "" && tp != ast.TypeInt {
			c.rep.Add(ctx, diag.TypeError, n.Line, "Type mismatch: cannot add [%s] to an integer.", tp)
		}

		return ast.TypeInt
	case ast.Equal, ast.NotEqual:
		l := c.expr(ctx, n.Child(0), sc)
		r := c.expr(ctx, n.Child(1), sc)

		if l != "" && r != "" && l != r {
			c.rep.Add(ctx, diag.TypeError, n.Line, "Type mismatch: cannot compare [%s] with [%s].", l, r)
		}

		return ast.TypeBoolean
	}

	return n.Type
}

func (c *checker) use(ctx context.Context, n *ast.Node, sc int) string {
	s := c.tab.Lookup(sc, n.Value)
	if s == nil {
		c.rep.Add(ctx, diag.DeclarationError, n.Line, "Variable [%s] is used before being declared.", n.Value)
		return ""
	}

	if !s.Initialized {
		k := diag.UninitializedWarning
		if c.Strict {
			k = diag.DeclarationError
		}

		c.rep.Add(ctx, k, n.Line, "Variable [%s] is used before being initialized.", n.Value)
	}

	s.Used = true

	n.Type = s.Type
	n.Decl = s.Scope

	return s.Type
}

func (c *checker) unused(ctx context.Context) {
	for _, s := range c.tab.Symbols() {
		if s.Used {
			continue
		}

		if s.Initialized {
			c.rep.Add(ctx, diag.UnusedVariableWarning, s.Line, "Variable [%s] is initialized but never used.", s.Name)
		} else {
			c.rep.Add(ctx, diag.UnusedVariableWarning, s.Line, "Variable [%s] is declared but never used.", s.Name)
		}
	}
}
