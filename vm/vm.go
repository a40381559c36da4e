package vm

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/octet/compiler/asm"
	"github.com/slowlang/octet/compiler/set"
)

type (
	// Machine executes a program image.
	// Only CPX changes the zero flag.
	Machine struct {
		Mem asm.Image

		A, X, Y byte
		Z       bool
		PC      byte

		Halted bool
		Steps  int

		// Hit holds the addresses of executed instructions.
		Hit set.Addrs

		Out io.Writer
	}

	InvalidOpcodeError struct {
		PC int
		Op byte
	}

	InvalidSyscallError struct {
		PC int
		X  byte
	}
)

var ErrStepLimit = errors.New("step limit exceeded")

func New(img asm.Image, out io.Writer) *Machine {
	return &Machine{
		Mem: img,
		Out: out,
	}
}

// Run executes until BRK. limit <= 0 means no limit.
func (m *Machine) Run(ctx context.Context, limit int) (err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "vm: run", "limit", limit)
	defer func() {
		tr.Finish("steps", m.Steps, "err", err)
	}()

	for !m.Halted {
		if limit > 0 && m.Steps >= limit {
			return ErrStepLimit
		}

		if m.Steps%256 == 0 {
			if err = ctx.Err(); err != nil {
				return err
			}
		}

		err = m.Step()
		if err != nil {
			return err
		}

		if tr.If("vm_trace") {
			tr.Printw("step", "pc", m.PC, "a", m.A, "x", m.X, "y", m.Y, "z", m.Z)
		}
	}

	return nil
}

// Step executes one instruction.
func (m *Machine) Step() (err error) {
	if m.Halted {
		return nil
	}

	pc := m.PC
	op := asm.Op(m.Mem[pc])
	arg := m.Mem[pc+1]

	if !op.Known() {
		return InvalidOpcodeError{PC: int(pc), Op: byte(op)}
	}

	m.Steps++
	m.Hit.Set(pc)
	m.PC = pc + byte(op.Size())

	switch op {
	case asm.BRK:
		m.Halted = true
		m.PC = pc
	case asm.LDAImm:
		m.A = arg
	case asm.LDAAbs:
		m.A = m.Mem[arg]
	case asm.STA:
		m.Mem[arg] = m.A
	case asm.ADC:
		m.A += m.Mem[arg]
	case asm.LDXImm:
		m.X = arg
	case asm.LDXAbs:
		m.X = m.Mem[arg]
	case asm.LDYImm:
		m.Y = arg
	case asm.LDYAbs:
		m.Y = m.Mem[arg]
	case asm.CPX:
		m.Z = m.X == m.Mem[arg]
	case asm.BNE:
		if !m.Z {
			m.PC += arg
		}
	case asm.SYS:
		err = m.syscall(pc)
	default:
		panic(op)
	}

	return err
}

func (m *Machine) syscall(pc byte) (err error) {
	var b []byte

	switch m.X {
	case asm.SysPrintInt:
		b = strconv.AppendInt(b, int64(m.Y), 10)
	case asm.SysPrintString:
		b = append(b, m.String(m.Y)...)
	default:
		return InvalidSyscallError{PC: int(pc), X: m.X}
	}

	b = append(b, '\n')

	if m.Out == nil {
		return nil
	}

	_, err = m.Out.Write(b)
	if err != nil {
		return errors.Wrap(err, "write output")
	}

	return nil
}

// String reads the null terminated string at addr.
func (m *Machine) String(addr byte) string {
	end := int(addr)

	for end < asm.Size && m.Mem[end] != 0 {
		end++
	}

	return string(m.Mem[addr:end])
}

func (e InvalidOpcodeError) Error() string {
	return fmt.Sprintf("invalid opcode %02X at %02X", e.Op, e.PC)
}

func (e InvalidSyscallError) Error() string {
	return fmt.Sprintf("invalid syscall X=%d at %02X", e.X, e.PC)
}
