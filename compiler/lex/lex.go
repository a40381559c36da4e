package lex

import (
	"context"

	"tlog.app/go/tlog"

	"github.com/slowlang/octet/compiler/diag"
	"github.com/slowlang/octet/compiler/token"
)

type (
	// Scanner turns source text into tokens.
	// Line is the number of the first source line, 1 if zero.
	Scanner struct {
		Line int

		toks []token.Token
		rep  *diag.Report

		state  int
		buf    []byte
		quoted bool
	}
)

func Scan(ctx context.Context, src []byte) ([]token.Token, *diag.Report) {
	var s Scanner

	return s.Scan(ctx, src)
}

func (s *Scanner) Scan(ctx context.Context, src []byte) (toks []token.Token, rep *diag.Report) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "lex: scan", "size", len(src), "line", s.Line)
	defer func() {
		tr.Finish("tokens", len(toks), "errors", rep.Errors)
	}()

	if s.Line == 0 {
		s.Line = 1
	}

	s.toks = nil
	s.rep = diag.New("lex")
	s.reset()
	s.quoted = false

	for i := 0; i < len(src); {
		c := src[i]

		switch c {
		case '\r', '\n':
			s.backoff(ctx)

			if c == '\r' && i+1 < len(src) && src[i+1] == '\n' {
				i++
			}

			s.Line++
			s.quoted = false
			i++

			continue
		case ' ':
			s.backoff(ctx)

			if s.quoted {
				s.emit(ctx, token.Space, " ")
			}

			i++

			continue
		}

		cl := class(c)
		if cl < 0 {
			s.backoff(ctx)
			s.rep.Add(ctx, diag.LexicalError, s.Line, "%q is not a valid lexeme", c)
			i++

			continue
		}

		next := dfa[s.state].next[cl]
		if next == 0 && s.state == 0 {
			s.rep.Add(ctx, diag.LexicalError, s.Line, "%q is not a valid lexeme", c)
			i++

			continue
		}

		if next == 0 {
			// dead end: split what we have and read c again from the start state
			s.backoff(ctx)

			continue
		}

		s.buf = append(s.buf, c)
		s.state = next
		i++

		if k := dfa[next].accept; k != token.None {
			s.emit(ctx, k, string(s.buf))
			s.reset()
		}
	}

	s.backoff(ctx)

	return s.toks, s.rep
}

// backoff reclassifies a partially matched lexeme character by character.
func (s *Scanner) backoff(ctx context.Context) {
	for _, c := range s.buf {
		switch {
		case c >= 'a' && c <= 'z':
			s.emit(ctx, token.ID, string(c))
		case c == '=':
			s.emit(ctx, token.Assign, "=")
		default:
			s.rep.Add(ctx, diag.LexicalError, s.Line, "%q is not a valid lexeme", c)
		}
	}

	s.reset()
}

func (s *Scanner) emit(ctx context.Context, k token.Kind, val string) {
	t := token.Token{Kind: k, Value: val, Line: s.Line}

	s.toks = append(s.toks, t)

	if k == token.Quote {
		s.quoted = !s.quoted
	}

	tlog.SpanFromContext(ctx).V("token").Printw("token", "tok", t)
}

func (s *Scanner) reset() {
	s.state = 0
	s.buf = s.buf[:0]
}
