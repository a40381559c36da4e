package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/octet/compiler"
	"github.com/slowlang/octet/compiler/diag"
	"github.com/slowlang/octet/compiler/format"
	"github.com/slowlang/octet/compiler/lex"
	"github.com/slowlang/octet/compiler/parse"
	"github.com/slowlang/octet/config"
	"github.com/slowlang/octet/vm"
)

type (
	driver struct {
		ctx context.Context
		cfg *config.Config

		w io.Writer
		b []byte

		line   *liner.State
		failed int
	}
)

func main() {
	compileCmd := &cli.Command{
		Name:        "compile",
		Description: "compile programs and print their images",
		Action:      compileAct,
		Args:        cli.Args{},
	}

	runCmd := &cli.Command{
		Name:        "run",
		Description: "compile programs and run them on the machine",
		Action:      runAct,
		Args:        cli.Args{},
	}

	scanCmd := &cli.Command{
		Name:        "scan",
		Description: "print program tokens",
		Action:      scanAct,
		Args:        cli.Args{},
	}

	parseCmd := &cli.Command{
		Name:        "parse",
		Description: "print program concrete syntax trees",
		Action:      parseAct,
		Args:        cli.Args{},
	}

	replCmd := &cli.Command{
		Name:        "repl",
		Description: "compile and run programs typed in",
		Action:      replAct,
	}

	app := &cli.Command{
		Name:        "octet",
		Description: "octet compiles programs to a 256 byte machine image",
		Flags: []*cli.Flag{
			cli.NewFlag("config", "octet.toml", "config file"),
			cli.NewFlag("verbose,v", false, "print tokens, trees, symbols and memory"),
			cli.NewFlag("strict", false, "use of an uninitialized variable is an error"),
			cli.NewFlag("pause", false, "wait for enter between programs"),
			cli.NewFlag("log", "", "log verbosity topics"),
			cli.HelpFlag,
		},
		Commands: []*cli.Command{
			compileCmd,
			runCmd,
			scanCmd,
			parseCmd,
			replCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func setup(c *cli.Command) (d *driver, err error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, errors.Wrap(err, "load config")
	}

	if c.Bool("verbose") {
		cfg.Verbose = true
	}

	if c.Bool("strict") {
		cfg.StrictUninitialized = true
	}

	if c.Bool("pause") {
		cfg.Pause = true
	}

	if q := c.String("log"); q != "" {
		cfg.Log = q
	}

	tlog.SetVerbosity(cfg.Log)

	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	tlog.V("config").Printw("config", "config", c.String("config"), "verbose", cfg.Verbose, "strict", cfg.StrictUninitialized, "pause", cfg.Pause)

	d = &driver{
		ctx: ctx,
		cfg: cfg,
		w:   os.Stdout,
	}

	return d, nil
}

func compileAct(c *cli.Command) error {
	return eachResult(c, func(d *driver, r *compiler.Result) error {
		d.result(r)

		if !r.Failed() {
			d.b = append(d.b, "\nimage:\n"...)
			d.b = format.Hex(d.b, r.Code.Image[:], d.cfg.HexColumns)
			d.b = append(d.b, '\n')
		}

		return d.flush()
	})
}

func runAct(c *cli.Command) error {
	return eachResult(c, func(d *driver, r *compiler.Result) error {
		d.result(r)

		err := d.flush()
		if err != nil || r.Failed() {
			return err
		}

		return d.run(r)
	})
}

func eachResult(c *cli.Command, f func(d *driver, r *compiler.Result) error) (err error) {
	d, err := setup(c)
	if err != nil {
		return err
	}

	defer d.close()

	for _, a := range c.Args {
		rs, err := compiler.CompileFile(d.ctx, a, compiler.Options{Strict: d.cfg.StrictUninitialized})
		if err != nil && len(rs) == 0 {
			return errors.Wrap(err, "compile %v", a)
		}

		for i, r := range rs {
			if i != 0 {
				err = d.pause()
				if err != nil {
					return err
				}
			}

			err = f(d, r)
			if err != nil {
				return errors.Wrap(err, "%v", a)
			}
		}
	}

	if d.failed != 0 {
		return errors.New("%d program(s) failed", d.failed)
	}

	return nil
}

func scanAct(c *cli.Command) error {
	return eachProgram(c, func(d *driver, p compiler.Program) {
		s := lex.Scanner{Line: p.Line}
		toks, rep := s.Scan(d.ctx, p.Text)

		d.b = format.Tokens(d.b, toks)
		d.diagnostics(rep)
	})
}

func parseAct(c *cli.Command) error {
	return eachProgram(c, func(d *driver, p compiler.Program) {
		s := lex.Scanner{Line: p.Line}

		toks, lrep := s.Scan(d.ctx, p.Text)
		if lrep.Failed() {
			d.diagnostics(lrep)
			return
		}

		cst, prep := parse.Parse(d.ctx, toks)
		if cst != nil {
			d.b = format.Tree(d.b, cst, false)
		}

		d.diagnostics(lrep, prep)
	})
}

func eachProgram(c *cli.Command, f func(d *driver, p compiler.Program)) error {
	d, err := setup(c)
	if err != nil {
		return err
	}

	defer d.close()

	for _, a := range c.Args {
		text, err := os.ReadFile(a)
		if err != nil {
			return errors.Wrap(err, "read file")
		}

		for i, p := range compiler.Split(a, text) {
			if i != 0 {
				err = d.pause()
				if err != nil {
					return err
				}
			}

			d.header(p)
			f(d, p)

			err = d.flush()
			if err != nil {
				return err
			}
		}
	}

	if d.failed != 0 {
		return errors.New("%d program(s) failed", d.failed)
	}

	return nil
}

func replAct(c *cli.Command) (err error) {
	d, err := setup(c)
	if err != nil {
		return err
	}

	d.line = liner.NewLiner()
	defer d.close()

	d.line.SetCtrlCAborts(true)

	fmt.Fprintf(d.w, "octet repl. End a program with '$'. Ctrl-D exits.\n")

	var src strings.Builder
	index := 0

	for {
		prompt := "octet> "
		if src.Len() != 0 {
			prompt = "...... "
		}

		l, err := d.line.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Fprintf(d.w, "\n")
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "prompt")
		}

		src.WriteString(l)
		src.WriteByte('\n')

		if !strings.Contains(l, "$") {
			continue
		}

		d.line.AppendHistory(strings.TrimSpace(src.String()))

		rs, err := compiler.Compile(d.ctx, "repl", []byte(src.String()), compiler.Options{Strict: d.cfg.StrictUninitialized})
		if err != nil {
			return errors.Wrap(err, "compile")
		}

		src.Reset()

		for _, r := range rs {
			r.Index = index
			index++

			d.result(r)

			err = d.flush()
			if err != nil {
				return err
			}

			if r.Failed() {
				continue
			}

			err = d.run(r)
			if err != nil {
				fmt.Fprintf(d.w, "%v\n", err)
			}
		}
	}
}

func (d *driver) header(p compiler.Program) {
	d.b = fmt.Appendf(d.b, "program %d (%s:%d)\n", p.Index, p.Name, p.Line)
}

func (d *driver) result(r *compiler.Result) {
	d.header(r.Program)

	if d.cfg.Verbose {
		d.verbose(r)
	}

	d.b = format.Diagnostics(d.b, r.Diagnostics())

	if r.Failed() {
		d.failed++
		d.b = fmt.Appendf(d.b, "compilation failed: %d error(s), %d warning(s)\n", r.Errors(), r.Warnings())

		return
	}

	d.b = fmt.Appendf(d.b, "compiled: %d byte(s) of code, %d warning(s)\n", r.Code.CodeSize, r.Warnings())
}

func (d *driver) verbose(r *compiler.Result) {
	section := func(name string) {
		d.b = fmt.Appendf(d.b, "\n%s:\n", name)
	}

	if r.Tokens != nil {
		section("tokens")
		d.b = format.Tokens(d.b, r.Tokens)
	}

	if r.CST != nil {
		section("concrete syntax tree")
		d.b = format.Tree(d.b, r.CST, false)
	}

	if r.AST != nil {
		section("abstract syntax tree")
		d.b = format.Tree(d.b, r.AST, true)
	}

	if r.Symbols != nil {
		section("symbols")
		d.b = format.Symbols(d.b, r.Symbols)
	}

	if r.Code != nil {
		section("memory")
		d.b = format.Memory(d.b, &r.Code.Image)

		section("variables")
		d.b = format.Vars(d.b, r.Code)

		section("code")
		d.b = format.Disasm(d.b, r.Code)
	}

	d.b = append(d.b, '\n')
}

func (d *driver) diagnostics(reps ...*diag.Report) {
	d.b = format.Diagnostics(d.b, diag.Sorted(reps...))

	for _, r := range reps {
		if r.Failed() {
			d.failed++
			return
		}
	}
}

func (d *driver) run(r *compiler.Result) error {
	var out bytes.Buffer

	m := vm.New(r.Code.Image, &out)

	err := m.Run(d.ctx, d.cfg.StepLimit)

	fmt.Fprintf(d.w, "output:\n%s", out.Bytes())

	if err != nil {
		return errors.Wrap(err, "run program %d", r.Index)
	}

	tlog.SpanFromContext(d.ctx).V("vm").Printw("halted", "program", r.Index, "steps", m.Steps, "hit", m.Hit)

	if d.cfg.Verbose {
		d.b = format.Coverage(d.b, r.Code, &m.Hit)

		return d.flush()
	}

	return nil
}

func (d *driver) pause() error {
	if !d.cfg.Pause {
		return nil
	}

	if d.line == nil {
		d.line = liner.NewLiner()
		d.line.SetCtrlCAborts(true)
	}

	_, err := d.line.Prompt("press enter to continue ")
	if errors.Is(err, liner.ErrPromptAborted) {
		return errors.New("aborted")
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return errors.Wrap(err, "pause")
	}

	return nil
}

func (d *driver) flush() error {
	_, err := d.w.Write(d.b)
	d.b = d.b[:0]

	return err
}

func (d *driver) close() {
	if d.line != nil {
		_ = d.line.Close()
	}
}
