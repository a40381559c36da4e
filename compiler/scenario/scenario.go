// Package scenario reads compiler test cases from markdown documents.
//
// A case starts at a heading "Test: name". It holds exactly one octet
// fence with the source and any number of check fences:
//
//	hex          code bytes of each program, one program per line
//	output       what the machine prints
//	diagnostics  errors and warnings in line order
//	ast          abstract syntax tree with scopes
//	tokens       token list
//
// The source fence info may add "strict" to turn uninitialized uses into errors.
package scenario

import (
	"bytes"
	"context"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"tlog.app/go/errors"

	"github.com/slowlang/octet/compiler"
	"github.com/slowlang/octet/compiler/format"
	"github.com/slowlang/octet/vm"
)

type (
	Kind string

	Check struct {
		Kind    Kind
		Content string
		Line    int
	}

	Case struct {
		Name   string
		Line   int
		Source string
		Strict bool
		Checks []Check
	}
)

const (
	Source      Kind = "octet"
	Hex         Kind = "hex"
	Output      Kind = "output"
	Diagnostics Kind = "diagnostics"
	AST         Kind = "ast"
	Tokens      Kind = "tokens"
)

const prefix = "Test: "

var StepLimit = 10000

// Extract collects the cases of a markdown document.
func Extract(src []byte) (cs []Case, err error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var cur *Case

	flush := func() error {
		if cur == nil {
			return nil
		}

		if cur.Source == "" {
			return errors.New("line %d: test %q: no source fence", cur.Line, cur.Name)
		}

		cs = append(cs, *cur)

		return nil
	}

	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := n.(type) {
		case *ast.Heading:
			title := plain(n, src)
			if !strings.HasPrefix(title, prefix) {
				return ast.WalkSkipChildren, nil
			}

			if err := flush(); err != nil {
				return ast.WalkStop, err
			}

			cur = &Case{
				Name: strings.TrimPrefix(title, prefix),
				Line: line(n, src),
			}

			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock:
			k := Kind(n.Language(src))
			l := line(n, src)

			if cur == nil {
				if k != "" {
					return ast.WalkStop, errors.New("line %d: %s fence outside of a test", l, k)
				}

				return ast.WalkContinue, nil
			}

			body := content(n, src)

			switch k {
			case Source:
				if cur.Source != "" {
					return ast.WalkStop, errors.New("line %d: test %q: second source fence", l, cur.Name)
				}

				cur.Source = body

				if n.Info != nil {
					info := strings.Fields(string(n.Info.Segment.Value(src)))
					cur.Strict = len(info) > 1 && info[1] == "strict"
				}
			case Hex, Output, Diagnostics, AST, Tokens:
				cur.Checks = append(cur.Checks, Check{
					Kind:    k,
					Content: strings.TrimRight(body, "\n"),
					Line:    l,
				})
			case "":
			default:
				return ast.WalkStop, errors.New("line %d: test %q: unknown fence %q", l, cur.Name, k)
			}
		}

		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}

	err = flush()
	if err != nil {
		return nil, err
	}

	return cs, nil
}

// Actual compiles and runs the case and renders every check kind it has.
func Actual(ctx context.Context, c Case) (map[Kind]string, error) {
	rs, err := compiler.Compile(ctx, c.Name, []byte(c.Source), compiler.Options{Strict: c.Strict})
	if err != nil {
		return nil, errors.Wrap(err, "compile")
	}

	want := map[Kind]bool{}
	for _, ch := range c.Checks {
		want[ch.Kind] = true
	}

	var out bytes.Buffer
	bufs := map[Kind][]byte{}

	for _, r := range rs {
		if want[Tokens] {
			bufs[Tokens] = format.Tokens(bufs[Tokens], r.Tokens)
		}

		if want[AST] && r.AST != nil {
			bufs[AST] = format.Tree(bufs[AST], r.AST, true)
		}

		bufs[Diagnostics] = format.Diagnostics(bufs[Diagnostics], r.Diagnostics())

		if r.Failed() || r.Code == nil {
			continue
		}

		bufs[Hex] = format.Hex(bufs[Hex], r.Code.Image[:r.Code.CodeSize], 0)
		bufs[Hex] = append(bufs[Hex], '\n')

		if !want[Output] {
			continue
		}

		err = vm.New(r.Code.Image, &out).Run(ctx, StepLimit)
		if err != nil {
			out.WriteString("error: " + err.Error() + "\n")
		}
	}

	bufs[Output] = out.Bytes()

	res := map[Kind]string{}

	for k := range want {
		res[k] = strings.TrimRight(string(bufs[k]), "\n")
	}

	return res, nil
}

func plain(n ast.Node, src []byte) string {
	var b []byte

	_ = ast.Walk(n, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*ast.Text); ok && entering {
			b = append(b, t.Segment.Value(src)...)
		}

		return ast.WalkContinue, nil
	})

	return string(b)
}

func content(n *ast.FencedCodeBlock, src []byte) string {
	var b []byte

	lines := n.Lines()

	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b = append(b, seg.Value(src)...)
	}

	return string(b)
}

func line(n ast.Node, src []byte) int {
	if n.Lines().Len() == 0 {
		return 0
	}

	pos := n.Lines().At(0).Start

	return bytes.Count(src[:pos], []byte{'\n'}) + 1
}
