package parse

import (
	"context"
	"fmt"

	"tlog.app/go/tlog"

	"github.com/slowlang/octet/compiler/ast"
	"github.com/slowlang/octet/compiler/diag"
	"github.com/slowlang/octet/compiler/token"
)

type (
	Parser struct {
		toks []token.Token

		// best is the furthest failure of a statement which matched its leading token.
		best *MismatchError

		program rule
	}

	MismatchError struct {
		Pos  int
		Line int
		Msg  string
	}

	PartialReadError struct {
		Pos  int
		Line int
		Tok  token.Token
	}
)

// EndOfInput is the value reported for the missing token past the end.
const EndOfInput = "end of input"

func Parse(ctx context.Context, toks []token.Token) (*ast.Node, *diag.Report) {
	p := New(toks)

	return p.Parse(ctx)
}

func New(toks []token.Token) *Parser {
	p := &Parser{toks: toks}

	p.program = p.grammar()

	return p
}

// Parse builds the concrete syntax tree.
// The report holds at most one error: the best guess of what went wrong.
func (p *Parser) Parse(ctx context.Context) (x *ast.Node, rep *diag.Report) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "parse: program", "tokens", len(p.toks))
	defer func() {
		tr.Finish("errors", rep.Errors)
	}()

	rep = diag.New("parse")
	p.best = nil

	x, err := p.Program(ctx)
	if err != nil {
		line := 0

		switch e := err.(type) {
		case *MismatchError:
			line = e.Line
		case PartialReadError:
			line = e.Line
		}

		rep.Add(ctx, diag.ParseError, line, "%v", err)

		return nil, rep
	}

	if tr.If("dump_cst") {
		ast.Walk(x, func(n *ast.Node, d int) bool {
			tr.Printw("cst", "depth", d, "node", n)
			return true
		})
	}

	return x, rep
}

// Program parses all the tokens as one program.
func (p *Parser) Program(ctx context.Context) (x *ast.Node, err error) {
	x, i, err := p.program(ctx, 0)
	if err != nil {
		if p.best != nil {
			return nil, p.best
		}

		return nil, err
	}

	if i != len(p.toks) {
		t := p.toks[i]

		return nil, PartialReadError{Pos: i, Line: t.Line, Tok: t}
	}

	return x, nil
}

func (p *Parser) tok(i int) token.Token {
	if i < len(p.toks) {
		return p.toks[i]
	}

	t := token.Token{Value: EndOfInput}

	if l := len(p.toks); l != 0 {
		t.Line = p.toks[l-1].Line
	}

	return t
}

func (p *Parser) mismatch(i int, k token.Kind) *MismatchError {
	t := p.tok(i)

	return &MismatchError{
		Pos:  i,
		Line: t.Line,
		Msg:  expectation(k, t.Value),
	}
}

func expectation(k token.Kind, v string) string {
	switch k {
	case token.Digit:
		return fmt.Sprintf("[%s] is not a valid digit. Valid digits include natural numbers [0-9].", v)
	case token.ID:
		return fmt.Sprintf("[%s] is not a valid identifier. Valid identifiers include lowercase letters [a-z].", v)
	case token.Space:
		return fmt.Sprintf("[%s] is not a valid character. Characters can only be lowercase letters [a-z] or the space character [ ].", v)
	case token.EOF:
		return fmt.Sprintf("Program cannot end with [%s]. Programs may only end with [$].", v)
	case token.Assign:
		return fmt.Sprintf("Expecting the assignment operator [=]. Instead found the token [%s].", v)
	case token.Plus:
		return fmt.Sprintf("Expecting the addition operator [+] before the [%s].", v)
	case token.OpenBrace:
		return fmt.Sprintf("Expecting an open brace [{] before the [%s].", v)
	case token.CloseBrace:
		return fmt.Sprintf("Expecting a closing brace [}] before the [%s].", v)
	case token.OpenParen:
		return fmt.Sprintf("Expecting an open parenthesis [(] before the [%s].", v)
	case token.CloseParen:
		return fmt.Sprintf("Expecting a closing parenthesis [)] before the [%s].", v)
	case token.Quote:
		return fmt.Sprintf(`Strings must be wrapped in quotation marks. Expecting a quote ["] before the [%s].`, v)
	case token.Equals, token.NotEquals:
		return fmt.Sprintf("[%s] is not a valid boolean operator. Valid boolean operators include [==] and [!=].", v)
	case token.True, token.False:
		return fmt.Sprintf("[%s] is not a valid boolean value. Valid boolean values include [true] and [false].", v)
	case token.If:
		return fmt.Sprintf("Expecting keyword [if] before the [%s].", v)
	case token.While, token.Print, token.String, token.Boolean, token.Int:
		return fmt.Sprintf("Expecting the [%s] keyword before the [%s].", keyword(k), v)
	}

	return fmt.Sprintf("Expecting %v before the [%s].", k, v)
}

func keyword(k token.Kind) string {
	for w, rk := range token.Reserved {
		if rk == k {
			return w
		}
	}

	return k.String()
}

func (e *MismatchError) Error() string {
	return e.Msg
}

func (e PartialReadError) Error() string {
	return fmt.Sprintf("Unexpected token [%s] after the end of the program [$].", e.Tok.Value)
}
