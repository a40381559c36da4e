package back

import (
	"context"
	"fmt"

	"tlog.app/go/tlog"
	"tlog.app/go/tlog/tlwire"

	"github.com/slowlang/octet/compiler/asm"
	"github.com/slowlang/octet/compiler/ast"
	"github.com/slowlang/octet/compiler/diag"
)

type (
	Result struct {
		Image asm.Image

		CodeSize int // program code, the final BRK included
		Stop     int // lowest literal byte

		Vars     []Var
		Literals map[string]int
	}

	// Var is the storage cell of a variable or a scratch value.
	Var struct {
		Name  string
		Scope int // -1 for scratch cells
		Type  string
		Addr  int
		Refs  []int // operand bytes patched with Addr
	}

	tempKey struct {
		name  string
		scope int
	}

	temp struct {
		tempKey
		typ  string
		refs []int
	}

	// gen is the state of one Generate call.
	gen struct {
		img  asm.Image
		cp   int
		stop int
		oom  bool

		// fixups are the live forward branch displacements.
		fixups []int

		temps []*temp
		index map[tempKey]int

		lits map[string]int

		depth int

		rep *diag.Report
	}
)

// ImplicitLiterals are placed first, so true is at 251 and false at 245.
var ImplicitLiterals = []string{"true", "false"}

const scratchScope = -1

// Generate emits the program image for the analyzed tree.
// lits are the string literals in the order they are to be placed.
func Generate(ctx context.Context, x *ast.Node, lits []string) (res *Result, rep *diag.Report) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "back: generate", "literals", len(lits))
	defer func() {
		tr.Finish("errors", rep.Errors, "warnings", rep.Warnings)
	}()

	g := &gen{
		stop:  asm.Size,
		index: map[tempKey]int{},
		lits:  map[string]int{},
		rep:   diag.New("back"),
	}

	g.literals(ctx, append(append([]string{}, ImplicitLiterals...), lits...))
	g.register(x)

	g.block(ctx, x)
	g.emit(ctx, byte(asm.BRK))

	code := g.cp

	vars := g.finalize(ctx)

	res = &Result{
		Image:    g.img,
		CodeSize: code,
		Stop:     g.stop,
		Vars:     vars,
		Literals: g.lits,
	}

	tr.Printw("generated", "code", code, "vars", len(vars), "stop", g.stop, "end", g.cp)

	return res, g.rep
}

// literals places null terminated strings downwards from the top of memory.
func (g *gen) literals(ctx context.Context, lits []string) {
	next := asm.Size - 1

	for _, s := range lits {
		if _, ok := g.lits[s]; ok {
			continue
		}

		for i := len(s); i >= 0; i-- {
			if next <= g.cp {
				g.outOfMemory(ctx)
				return
			}

			var c byte
			if i < len(s) {
				c = s[i]
			}

			g.img[next] = c
			g.stop = next
			next--
		}

		g.lits[s] = g.stop

		tlog.SpanFromContext(ctx).V("literal").Printw("literal", "addr", g.stop, "val", s)
	}
}

// register makes a temp for every declared variable in declaration order.
func (g *gen) register(x *ast.Node) {
	ast.Walk(x, func(n *ast.Node, d int) bool {
		if n.Kind != ast.VarDecl {
			return true
		}

		g.temp(tempKey{name: n.Child(1).Value, scope: n.Scope}, n.Type)

		return false
	})
}

func (g *gen) temp(k tempKey, typ string) *temp {
	if i, ok := g.index[k]; ok {
		return g.temps[i]
	}

	t := &temp{tempKey: k, typ: typ}

	g.index[k] = len(g.temps)
	g.temps = append(g.temps, t)

	return t
}

// finalize gives each temp a cell right after the code and backpatches the references.
func (g *gen) finalize(ctx context.Context) (vars []Var) {
	for _, t := range g.temps {
		addr := g.emit(ctx, g.initial(t.typ))

		for _, r := range t.refs {
			g.img[r] = byte(addr)
		}

		v := Var{
			Name:  t.name,
			Scope: t.scope,
			Type:  t.typ,
			Addr:  addr,
			Refs:  t.refs,
		}

		vars = append(vars, v)

		tlog.SpanFromContext(ctx).V("var").Printw("variable", "var", v)
	}

	return vars
}

func (g *gen) initial(typ string) byte {
	switch typ {
	case ast.TypeString:
		return asm.Size - 1 // always zero: the empty string
	case ast.TypeBoolean:
		return byte(g.lits["false"])
	}

	return 0
}

// emit writes one byte at the code pointer.
// Live branch displacements grow by one.
func (g *gen) emit(ctx context.Context, b byte) (addr int) {
	if g.cp >= g.stop {
		g.outOfMemory(ctx)
		g.cp = g.stop - 1
	}

	addr = g.cp

	g.img[addr] = b

	for _, f := range g.fixups {
		g.img[f]++
	}

	g.cp++

	return addr
}

func (g *gen) outOfMemory(ctx context.Context) {
	if g.oom {
		return
	}

	g.oom = true

	g.rep.Add(ctx, diag.OutOfMemoryError, 0, "The runtime environment is out of memory. Please limit your program to %d bytes.", asm.Size)
}

func (k tempKey) String() string {
	return fmt.Sprintf("%s@%d", k.name, k.scope)
}

func (v Var) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	b = e.AppendMap(b, 4)

	b = e.AppendString(b, "name")
	b = e.AppendString(b, tempKey{name: v.Name, scope: v.Scope}.String())
	b = e.AppendString(b, "type")
	b = e.AppendString(b, v.Type)
	b = e.AppendKeyInt(b, "addr", v.Addr)
	b = e.AppendKeyInt(b, "refs", len(v.Refs))

	return b
}
