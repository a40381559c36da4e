package parse

import (
	"context"

	"tlog.app/go/tlog"

	"github.com/slowlang/octet/compiler/ast"
	"github.com/slowlang/octet/compiler/token"
)

type (
	// rule parses from the cursor st.
	// On failure it returns st back with a *MismatchError.
	rule func(ctx context.Context, st int) (x *ast.Node, i int, err error)
)

// allOf wraps the sequence results into a node of kind k.
func (p *Parser) allOf(k ast.Kind, rs ...rule) rule {
	return func(ctx context.Context, st int) (_ *ast.Node, i int, err error) {
		n := ast.New(k, "", p.tok(st).Line)

		i = st

		for _, r := range rs {
			var x *ast.Node

			x, i, err = r(ctx, i)
			if err != nil {
				return nil, st, err
			}

			n.Add(x)
		}

		return n, i, nil
	}
}

// anyOf returns the first alternative to succeed.
// If all fail the error which got furthest is returned, the latest one on a tie.
func (p *Parser) anyOf(rs ...rule) rule {
	return func(ctx context.Context, st int) (x *ast.Node, i int, err error) {
		var best *MismatchError

		for _, r := range rs {
			x, i, err = r(ctx, st)
			if err == nil {
				return x, i, nil
			}

			best = further(best, err)
		}

		return nil, st, best
	}
}

// wrap puts the result of r into a node of kind k.
func (p *Parser) wrap(k ast.Kind, r rule) rule {
	return p.allOf(k, r)
}

// stmt is a statement committed by its leading token:
// once the lead matched, a later failure is remembered as the best statement error.
func (p *Parser) stmt(k ast.Kind, rs ...rule) rule {
	seq := p.allOf(k, rs...)

	return func(ctx context.Context, st int) (x *ast.Node, i int, err error) {
		x, i, err = seq(ctx, st)

		if e, ok := err.(*MismatchError); ok && e.Pos > st {
			p.best = further(p.best, e)
		}

		return x, i, err
	}
}

func (p *Parser) match(k token.Kind) rule {
	return func(ctx context.Context, st int) (*ast.Node, int, error) {
		t := p.tok(st)

		if t.Kind != k || st >= len(p.toks) {
			return nil, st, p.mismatch(st, k)
		}

		tlog.SpanFromContext(ctx).V("parse_match").Printw("matched", "tok", t, "pos", st)

		return ast.Term(t), st + 1, nil
	}
}

func further(best *MismatchError, err error) *MismatchError {
	e, ok := err.(*MismatchError)
	if !ok {
		return best
	}

	if best == nil || e.Pos >= best.Pos {
		return e
	}

	return best
}
