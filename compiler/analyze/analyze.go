package analyze

import (
	"context"

	"tlog.app/go/tlog"

	"github.com/slowlang/octet/compiler/ast"
	"github.com/slowlang/octet/compiler/diag"
)

type (
	Options struct {
		// Strict makes the use of an uninitialized variable an error.
		Strict bool
	}

	Result struct {
		AST      *ast.Node
		Table    *Table
		Literals []string
	}
)

// Analyze builds the abstract syntax tree, resolves identifiers and checks types.
func Analyze(ctx context.Context, cst *ast.Node, opts Options) (res *Result, rep *diag.Report) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "analyze: program", "strict", opts.Strict)
	defer func() {
		tr.Finish("errors", rep.Errors, "warnings", rep.Warnings)
	}()

	rep = diag.New("analyze")

	x, lits := Build(cst)
	if x == nil {
		rep.Add(ctx, diag.ParseError, 0, "no program to analyze")
		return nil, rep
	}

	res = &Result{
		AST:      x,
		Table:    &Table{},
		Literals: lits,
	}

	c := checker{
		Options: opts,
		tab:     res.Table,
		rep:     rep,
	}

	c.block(ctx, x, -1)
	c.unused(ctx)

	tr.V("literals").Printw("literals", "list", lits)

	if tr.If("dump_symbols") {
		for _, s := range res.Table.Symbols() {
			tr.Printw("symbol", "sym", s, "initialized", s.Initialized, "used", s.Used)
		}
	}

	return res, rep
}
