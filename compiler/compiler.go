package compiler

import (
	"context"
	"os"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/octet/compiler/analyze"
	"github.com/slowlang/octet/compiler/ast"
	"github.com/slowlang/octet/compiler/back"
	"github.com/slowlang/octet/compiler/diag"
	"github.com/slowlang/octet/compiler/lex"
	"github.com/slowlang/octet/compiler/parse"
	"github.com/slowlang/octet/compiler/token"
)

type (
	Options struct {
		Strict bool
	}

	// Program is one '$' terminated piece of a source file.
	Program struct {
		Name  string
		Index int
		Line  int // first line in the file
		Text  []byte
	}

	Result struct {
		Program

		Tokens []token.Token
		CST    *ast.Node

		AST      *ast.Node
		Symbols  *analyze.Table
		Literals []string

		Code *back.Result

		File    *diag.Report
		Lex     *diag.Report
		Parse   *diag.Report
		Analyze *diag.Report
		Back    *diag.Report
	}
)

func CompileFile(ctx context.Context, name string, opts Options) ([]*Result, error) {
	text, err := os.ReadFile(name)
	if err != nil {
		rep := diag.New("file")
		rep.Add(ctx, diag.FileError, 0, "Error opening source program file %v. Please make sure the path to the file is correct.", name)

		res := &Result{
			Program: Program{Name: name},
			File:    rep,
		}

		return []*Result{res}, errors.Wrap(err, "read file")
	}

	tlog.SpanFromContext(ctx).Printw("read file", "size", len(text), "name", name)

	return Compile(ctx, name, text, opts)
}

// Compile compiles every program of the text independently.
// Failed programs are in the results, the error is only about the context.
func Compile(ctx context.Context, name string, text []byte, opts Options) (rs []*Result, err error) {
	for _, p := range Split(name, text) {
		if err = ctx.Err(); err != nil {
			return rs, err
		}

		res, _ := CompileProgram(ctx, p, opts)

		rs = append(rs, res)

		if err = ctx.Err(); err != nil {
			return rs, err
		}
	}

	return rs, nil
}

// CompileProgram runs the stages in order until one of them fails.
// The result holds everything produced before the failure.
func CompileProgram(ctx context.Context, p Program, opts Options) (res *Result, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "compile: program", "name", p.Name, "index", p.Index, "line", p.Line)
	defer tr.Finish("err", &err)

	res = &Result{Program: p}

	s := lex.Scanner{Line: p.Line}

	res.Tokens, res.Lex = s.Scan(ctx, p.Text)
	if err = stage(ctx, res.Lex); err != nil {
		return res, errors.Wrap(err, "lex")
	}

	res.CST, res.Parse = parse.Parse(ctx, res.Tokens)
	if err = stage(ctx, res.Parse); err != nil {
		return res, errors.Wrap(err, "parse")
	}

	an, rep := analyze.Analyze(ctx, res.CST, analyze.Options{Strict: opts.Strict})
	res.Analyze = rep

	if an != nil {
		res.AST = an.AST
		res.Symbols = an.Table
		res.Literals = an.Literals
	}

	if err = stage(ctx, res.Analyze); err != nil {
		return res, errors.Wrap(err, "analyze")
	}

	res.Code, res.Back = back.Generate(ctx, res.AST, res.Literals)
	if err = stage(ctx, res.Back); err != nil {
		return res, errors.Wrap(err, "generate")
	}

	return res, nil
}

func stage(ctx context.Context, rep *diag.Report) error {
	if err := rep.Err(); err != nil {
		return err
	}

	return ctx.Err()
}

// Split cuts the text after each '$'.
// A trailing piece without '$' is kept unless it's blank.
func Split(name string, text []byte) (ps []Program) {
	st, line := 0, 1
	stline := line

	for i := 0; i < len(text); i++ {
		switch c := text[i]; {
		case c == '\n', c == '\r' && (i+1 == len(text) || text[i+1] != '\n'):
			line++
		case c == '$':
			ps = append(ps, Program{Name: name, Index: len(ps), Line: stline, Text: text[st : i+1]})

			st, stline = i+1, line
		}
	}

	if rest := text[st:]; !blank(rest) {
		ps = append(ps, Program{Name: name, Index: len(ps), Line: stline, Text: rest})
	}

	return ps
}

func blank(b []byte) bool {
	for _, c := range b {
		switch c {
		case ' ', '\t', '\n', '\r':
		default:
			return false
		}
	}

	return true
}

func (r *Result) Reports() []*diag.Report {
	var l []*diag.Report

	for _, rep := range []*diag.Report{r.File, r.Lex, r.Parse, r.Analyze, r.Back} {
		if rep != nil {
			l = append(l, rep)
		}
	}

	return l
}

// Diagnostics are all the stage diagnostics in line order.
func (r *Result) Diagnostics() []diag.Diagnostic {
	return diag.Sorted(r.Reports()...)
}

// Failed is true unless the program got to the image.
func (r *Result) Failed() bool {
	return r.Errors() != 0 || r.Code == nil
}

func (r *Result) Errors() (n int) {
	for _, rep := range r.Reports() {
		n += rep.Errors
	}

	return n
}

func (r *Result) Warnings() (n int) {
	for _, rep := range r.Reports() {
		n += rep.Warnings
	}

	return n
}
