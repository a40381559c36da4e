package format

import (
	"fmt"
	"sort"
	"strings"

	"github.com/slowlang/octet/compiler/analyze"
	"github.com/slowlang/octet/compiler/asm"
	"github.com/slowlang/octet/compiler/ast"
	"github.com/slowlang/octet/compiler/back"
	"github.com/slowlang/octet/compiler/diag"
	"github.com/slowlang/octet/compiler/set"
	"github.com/slowlang/octet/compiler/token"
)

// Tokens prints one token per line.
func Tokens(b []byte, toks []token.Token) []byte {
	for _, t := range toks {
		b = app(b, 0, "[NAME: %-15s][VALUE: %-10s][LINE: %d]\n", t.Kind, t.Value, t.Line)
	}

	return b
}

// Tree prints a node per line with a dash per depth level.
// Scopes are printed in parentheses if asked.
func Tree(b []byte, x *ast.Node, scopes bool) []byte {
	ast.Walk(x, func(n *ast.Node, d int) bool {
		b = append(b, strings.Repeat("-", d)...)
		b = append(b, n.Label()...)

		if scopes {
			b = app(b, 0, "(%d)", n.Scope)
		}

		b = append(b, '\n')

		return true
	})

	return b
}

// Hex prints bytes as uppercase hex pairs separated by spaces.
// cols > 0 breaks lines after that many bytes.
func Hex(b []byte, data []byte, cols int) []byte {
	for i, c := range data {
		switch {
		case i == 0:
		case cols > 0 && i%cols == 0:
			b = append(b, '\n')
		default:
			b = append(b, ' ')
		}

		b = app(b, 0, "%02X", c)
	}

	return b
}

// Memory prints the image as a 32 rows by 8 bytes map.
func Memory(b []byte, img *asm.Image) []byte {
	const row = 8

	for r := 0; r < asm.Size; r += row {
		b = app(b, 0, "%02X|", r)

		for _, c := range img[r : r+row] {
			b = app(b, 0, " [%02X]", c)
		}

		b = append(b, '\n')
	}

	return b
}

// Disasm prints the code part of the image.
func Disasm(b []byte, res *back.Result) []byte {
	for _, x := range asm.Disasm(res.Image[:], res.CodeSize) {
		raw := res.Image[x.Addr:min(x.Addr+x.Op.Size(), asm.Size)]

		b = app(b, 1, "%02X  %-9s  %s", x.Addr, Hex(nil, raw, 0), x)

		if x.Op == asm.BNE {
			b = app(b, 0, "  -> %02X", x.Target())
		}

		b = append(b, '\n')
	}

	return b
}

// Coverage prints how many instructions were executed
// and lists the ones that were not.
func Coverage(b []byte, res *back.Result, hit *set.Addrs) []byte {
	code := asm.Disasm(res.Image[:], res.CodeSize)

	var all set.Addrs

	for _, x := range code {
		all.Set(byte(x.Addr))
	}

	missed := all
	missed.AndNot(*hit)

	b = app(b, 0, "executed %d of %d instructions\n", all.Size()-missed.Size(), all.Size())

	for _, x := range code {
		if missed.IsSet(byte(x.Addr)) {
			b = app(b, 1, "%02X  %s\n", x.Addr, x)
		}
	}

	return b
}

// Vars prints variable cells and literal addresses.
func Vars(b []byte, res *back.Result) []byte {
	for _, v := range res.Vars {
		b = app(b, 1, "%02X  %-4s scope %-3d %-8s refs %d\n", v.Addr, v.Name, v.Scope, v.Type, len(v.Refs))
	}

	type lit struct {
		addr int
		val  string
	}

	var lits []lit

	for s, a := range res.Literals {
		lits = append(lits, lit{addr: a, val: s})
	}

	sort.Slice(lits, func(i, j int) bool { return lits[i].addr > lits[j].addr })

	for _, l := range lits {
		b = app(b, 1, "%02X  %q\n", l.addr, l.val)
	}

	return b
}

// Symbols prints the symbol table frame by frame.
func Symbols(b []byte, tab *analyze.Table) []byte {
	for _, f := range tab.Frames {
		if f == nil {
			continue
		}

		b = app(b, 0, "scope %d (parent %d)\n", f.ID, f.Parent)

		for _, s := range f.List {
			b = app(b, 1, "%-4s %-8s line %-3d initialized %-5v used %v\n", s.Name, s.Type, s.Line, s.Initialized, s.Used)
		}
	}

	return b
}

func Diagnostics(b []byte, list []diag.Diagnostic) []byte {
	for _, d := range list {
		b = append(b, d.String()...)
		b = append(b, '\n')
	}

	return b
}

func app(b []byte, d int, f string, args ...any) []byte {
	const tabs = "\t\t\t\t\t\t\t\t\t\t\t\t\t\t\t"
	b = append(b, tabs[:d]...)
	b = fmt.Appendf(b, f, args...)
	return b
}
