package back

import (
	"context"
	"fmt"

	"tlog.app/go/tlog"

	"github.com/slowlang/octet/compiler/asm"
	"github.com/slowlang/octet/compiler/ast"
	"github.com/slowlang/octet/compiler/diag"
)

type (
	// operand is where an expression value can be taken from without computing it.
	operand struct {
		imm bool
		v   byte

		mem *ast.Node // identifier holding the value

		calc *ast.Node // value has to be computed into A
	}
)

func (g *gen) block(ctx context.Context, n *ast.Node) {
	for _, st := range n.Children {
		g.statement(ctx, st)
	}
}

func (g *gen) statement(ctx context.Context, n *ast.Node) {
	tlog.SpanFromContext(ctx).V("emit").Printw("statement", "node", n, "cp", g.cp)

	switch n.Kind {
	case ast.Block:
		g.block(ctx, n)
	case ast.VarDecl:
	case ast.AssignmentStatement:
		g.load(ctx, g.operand(ctx, n.Child(1)))
		g.op(ctx, asm.STA)
		g.ref(ctx, n.Child(0))
	case ast.PrintStatement:
		g.print(ctx, n.Child(0))
	case ast.IfStatement:
		g.branch(ctx, n, func() {
			g.block(ctx, n.Child(1))
		})
	case ast.WhileStatement:
		start := g.cp

		g.branch(ctx, n, func() {
			g.block(ctx, n.Child(1))

			// unconditional jump back: X is 1, the top memory cell is always 0
			g.op(ctx, asm.LDXImm, 1)
			g.op(ctx, asm.CPX, asm.Size-1, 0)
			g.op(ctx, asm.BNE)
			g.emit(ctx, byte(asm.Size-(g.cp+1-start)))
		})
	default:
		panic(n.Kind)
	}
}

// branch emits the condition and the guarded body.
// The body is skipped when the condition is false.
func (g *gen) branch(ctx context.Context, n *ast.Node, body func()) {
	cond := n.Child(0)

	switch cond.Kind {
	case ast.Bool:
		if cond.Value == "true" {
			body()
			return
		}

		kw := "if"
		if n.Kind == ast.WhileStatement {
			kw = "while"
		}

		g.rep.Add(ctx, diag.NeverExecutedWarning, cond.Line, "The body of the [%s] statement is never executed: its condition is always [false].", kw)

		return
	case ast.Equal:
		g.compare(ctx, cond)
	case ast.NotEqual:
		g.compare(ctx, cond)

		// invert the zero flag: keep 1 if equal, then compare it to 0
		s := g.scratch("$S")

		g.op(ctx, asm.LDAImm, 0)
		g.op(ctx, asm.BNE, 2)
		g.op(ctx, asm.LDAImm, 1)
		g.op(ctx, asm.STA)
		g.refTemp(ctx, s)
		g.op(ctx, asm.LDXImm, 0)
		g.op(ctx, asm.CPX)
		g.refTemp(ctx, s)
	default:
		panic(cond.Kind)
	}

	g.op(ctx, asm.BNE)
	g.fixups = append(g.fixups, g.emit(ctx, 0))

	body()

	g.fixups = g.fixups[:len(g.fixups)-1]
}

func (g *gen) print(ctx context.Context, x *ast.Node) {
	mode := byte(asm.SysPrintString)
	if x.Type == ast.TypeInt {
		mode = asm.SysPrintInt
	}

	o := g.operand(ctx, x)

	if o.calc != nil {
		s := g.scratch("$P")

		g.load(ctx, o)
		g.op(ctx, asm.STA)
		g.refTemp(ctx, s)

		g.op(ctx, asm.LDXImm, mode)
		g.op(ctx, asm.LDYAbs)
		g.refTemp(ctx, s)
		g.op(ctx, asm.SYS)

		return
	}

	g.op(ctx, asm.LDXImm, mode)

	if o.imm {
		g.op(ctx, asm.LDYImm, o.v)
	} else {
		g.op(ctx, asm.LDYAbs)
		g.ref(ctx, o.mem)
	}

	g.op(ctx, asm.SYS)
}

// compare sets the zero flag if both sides are equal.
// The right side must be in memory, the left one goes to X.
func (g *gen) compare(ctx context.Context, n *ast.Node) {
	d := g.depth
	g.depth++
	defer func() { g.depth-- }()

	r := g.operand(ctx, n.Child(1))

	var right *temp

	if r.mem == nil || r.calc != nil {
		right = g.scratch(fmt.Sprintf("$R%d", d))

		g.load(ctx, r)
		g.op(ctx, asm.STA)
		g.refTemp(ctx, right)
	}

	l := g.operand(ctx, n.Child(0))

	switch {
	case l.imm:
		g.op(ctx, asm.LDXImm, l.v)
	case l.calc == nil:
		g.op(ctx, asm.LDXAbs)
		g.ref(ctx, l.mem)
	default:
		s := g.scratch(fmt.Sprintf("$L%d", d))

		g.load(ctx, l)
		g.op(ctx, asm.STA)
		g.refTemp(ctx, s)
		g.op(ctx, asm.LDXAbs)
		g.refTemp(ctx, s)
	}

	g.op(ctx, asm.CPX)

	if right != nil {
		g.refTemp(ctx, right)
	} else {
		g.ref(ctx, r.mem)
	}
}

func (g *gen) operand(ctx context.Context, n *ast.Node) operand {
	switch n.Kind {
	case ast.Digit:
		return operand{imm: true, v: digit(n)}
	case ast.Literal, ast.Bool:
		return operand{imm: true, v: byte(g.lits[n.Value])}
	case ast.Ident:
		return operand{mem: n}
	case ast.Add:
		v, tail := g.fold(ctx, n)
		if tail == nil {
			return operand{imm: true, v: v}
		}

		return operand{v: v, mem: tail, calc: n}
	case ast.Equal, ast.NotEqual:
		return operand{calc: n}
	}

	panic(n.Kind)
}

// load puts the operand value into A.
func (g *gen) load(ctx context.Context, o operand) {
	switch {
	case o.imm:
		g.op(ctx, asm.LDAImm, o.v)
	case o.calc == nil:
		g.op(ctx, asm.LDAAbs)
		g.ref(ctx, o.mem)
	case o.calc.Kind == ast.Add:
		g.op(ctx, asm.LDAImm, o.v)
		g.op(ctx, asm.ADC)
		g.ref(ctx, o.mem)
	default:
		yes, no := byte(g.lits["true"]), byte(g.lits["false"])
		if o.calc.Kind == ast.NotEqual {
			yes, no = no, yes
		}

		g.compare(ctx, o.calc)

		g.op(ctx, asm.LDAImm, no)
		g.op(ctx, asm.BNE, 2)
		g.op(ctx, asm.LDAImm, yes)
	}
}

// fold sums the constant part of an addition chain.
// Each sum above 255 is clamped and warned about.
func (g *gen) fold(ctx context.Context, n *ast.Node) (v byte, tail *ast.Node) {
	sum := int(digit(n.Child(0)))

	switch r := n.Child(1); r.Kind {
	case ast.Digit:
		sum += int(digit(r))
	case ast.Ident:
		tail = r
	case ast.Add:
		var rv byte

		rv, tail = g.fold(ctx, r)
		sum += int(rv)
	default:
		panic(r.Kind)
	}

	if sum > 255 {
		g.rep.Add(ctx, diag.OverflowWarning, n.Line, "The maximum value of an integer is 255. Compilation will continue with the max.")
		sum = 255
	}

	return byte(sum), tail
}

func digit(n *ast.Node) byte {
	if len(n.Value) != 1 {
		return 0
	}

	return n.Value[0] - '0'
}

func (g *gen) op(ctx context.Context, op asm.Op, args ...byte) {
	g.emit(ctx, byte(op))

	for _, a := range args {
		g.emit(ctx, a)
	}
}

// ref emits a variable address placeholder and its high byte.
func (g *gen) ref(ctx context.Context, id *ast.Node) {
	t := g.temp(tempKey{name: id.Value, scope: id.Decl}, id.Type)

	g.refTemp(ctx, t)
}

func (g *gen) refTemp(ctx context.Context, t *temp) {
	t.refs = append(t.refs, g.emit(ctx, 0))
	g.emit(ctx, 0)
}

func (g *gen) scratch(name string) *temp {
	return g.temp(tempKey{name: name, scope: scratchScope}, ast.TypeInt)
}
