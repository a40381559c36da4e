package diag

import (
	"context"
	"fmt"

	"nikand.dev/go/heap"
	"tlog.app/go/errors"
	"tlog.app/go/loc"
	"tlog.app/go/tlog"
	"tlog.app/go/tlog/tlwire"
)

type (
	Kind int

	Diagnostic struct {
		Kind Kind
		Line int
		Msg  string

		From loc.PC
	}

	// Report accumulates the diagnostics of one pipeline stage.
	Report struct {
		Stage string
		List  []Diagnostic

		Errors   int
		Warnings int
	}

	ordered struct {
		d   Diagnostic
		seq int
	}
)

const (
	FileError Kind = iota
	LexicalError
	ParseError
	DeclarationError
	TypeError
	OutOfMemoryError

	UninitializedWarning
	UnusedVariableWarning
	OverflowWarning
	NeverExecutedWarning
)

var kindNames = [...]string{
	FileError:             "file",
	LexicalError:          "lexical",
	ParseError:            "parse",
	DeclarationError:      "declaration",
	TypeError:             "type",
	OutOfMemoryError:      "out of memory",
	UninitializedWarning:  "uninitialized",
	UnusedVariableWarning: "unused variable",
	OverflowWarning:       "overflow",
	NeverExecutedWarning:  "never executed",
}

func New(stage string) *Report {
	return &Report{Stage: stage}
}

func (k Kind) Warning() bool {
	return k >= UninitializedWarning
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}

	return kindNames[k]
}

// Add records a diagnostic and bumps the matching counter.
func (r *Report) Add(ctx context.Context, k Kind, line int, format string, args ...any) {
	d := Diagnostic{
		Kind: k,
		Line: line,
		Msg:  fmt.Sprintf(format, args...),
		From: loc.Caller(1),
	}

	r.List = append(r.List, d)

	if k.Warning() {
		r.Warnings++
	} else {
		r.Errors++
	}

	tlog.SpanFromContext(ctx).V("diag").Printw("diagnostic", "stage", r.Stage, "diag", d, "from", d.From)
}

func (r *Report) Failed() bool {
	return r != nil && r.Errors != 0
}

// Err returns nil unless the stage reported errors.
func (r *Report) Err() error {
	if !r.Failed() {
		return nil
	}

	return errors.New("%s: %d error(s), %d warning(s)", r.Stage, r.Errors, r.Warnings)
}

func (r *Report) Has(k Kind) (n int) {
	if r == nil {
		return 0
	}

	for _, d := range r.List {
		if d.Kind == k {
			n++
		}
	}

	return n
}

func (d Diagnostic) String() string {
	sev := "ERROR"
	if d.Kind.Warning() {
		sev = "WARN"
	}

	if d.Line == 0 {
		return fmt.Sprintf("[%s] (%v) %s", sev, d.Kind, d.Msg)
	}

	return fmt.Sprintf("[%s] line %d: (%v) %s", sev, d.Line, d.Kind, d.Msg)
}

func (d Diagnostic) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	b = e.AppendMap(b, 3)

	b = e.AppendString(b, "kind")
	b = e.AppendString(b, d.Kind.String())
	b = e.AppendKeyInt(b, "line", d.Line)
	b = e.AppendString(b, "msg")
	b = e.AppendString(b, d.Msg)

	return b
}

// Sorted merges reports into one list ordered by line.
// Diagnostics on the same line keep stage order, then report order.
// Line-less diagnostics go last.
func Sorted(reps ...*Report) []Diagnostic {
	h := heap.Heap[ordered]{Less: orderedLess}

	seq := 0

	for _, r := range reps {
		if r == nil {
			continue
		}

		for _, d := range r.List {
			h.Push(ordered{d: d, seq: seq})
			seq++
		}
	}

	res := make([]Diagnostic, 0, h.Len())

	for h.Len() != 0 {
		res = append(res, h.Pop().d)
	}

	return res
}

func orderedLess(d []ordered, i, j int) bool {
	li, lj := d[i].d.Line, d[j].d.Line

	if (li == 0) != (lj == 0) {
		return lj == 0
	}

	if li != lj {
		return li < lj
	}

	return d[i].seq < d[j].seq
}
