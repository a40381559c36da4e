package asm

import (
	"fmt"

	"tlog.app/go/tlog/tlwire"
)

type (
	Op byte

	// Image is the whole machine memory: code, data and the literal pool.
	Image [Size]byte

	Instr struct {
		Addr int
		Op   Op
		Arg  byte
	}
)

const Size = 256

const (
	BRK    Op = 0x00
	LDAImm Op = 0xA9
	LDAAbs Op = 0xAD
	STA    Op = 0x8D
	ADC    Op = 0x6D
	LDXImm Op = 0xA2
	LDXAbs Op = 0xAE
	LDYImm Op = 0xA0
	LDYAbs Op = 0xAC
	CPX    Op = 0xEC
	BNE    Op = 0xD0
	SYS    Op = 0xFF
)

// Syscalls selected by X.
const (
	SysPrintInt    = 1
	SysPrintString = 2
)

type opInfo struct {
	name string
	size int
	imm  bool
}

var ops = map[Op]opInfo{
	BRK:    {"BRK", 1, false},
	LDAImm: {"LDA", 2, true},
	LDAAbs: {"LDA", 3, false},
	STA:    {"STA", 3, false},
	ADC:    {"ADC", 3, false},
	LDXImm: {"LDX", 2, true},
	LDXAbs: {"LDX", 3, false},
	LDYImm: {"LDY", 2, true},
	LDYAbs: {"LDY", 3, false},
	CPX:    {"CPX", 3, false},
	BNE:    {"BNE", 2, false},
	SYS:    {"SYS", 1, false},
}

func (o Op) Known() bool {
	_, ok := ops[o]
	return ok
}

// Size is the instruction length in bytes, the operand high byte included.
func (o Op) Size() int {
	if i, ok := ops[o]; ok {
		return i.size
	}

	return 1
}

func (o Op) String() string {
	if i, ok := ops[o]; ok {
		return i.name
	}

	return fmt.Sprintf("DB $%02X", byte(o))
}

func (x Instr) String() string {
	i, ok := ops[x.Op]

	switch {
	case !ok, i.size == 1:
		return x.Op.String()
	case i.imm:
		return fmt.Sprintf("%s #$%02X", i.name, x.Arg)
	default:
		return fmt.Sprintf("%s $%02X", i.name, x.Arg)
	}
}

// Target is the address a branch jumps to when taken.
func (x Instr) Target() int {
	return (x.Addr + 2 + int(x.Arg)) % Size
}

// Disasm decodes instructions from the start of the code until end.
func Disasm(code []byte, end int) (r []Instr) {
	if end > len(code) {
		end = len(code)
	}

	for i := 0; i < end; {
		x := Instr{Addr: i, Op: Op(code[i])}

		if x.Op.Size() > 1 && i+1 < len(code) {
			x.Arg = code[i+1]
		}

		r = append(r, x)
		i += x.Op.Size()
	}

	return r
}

func (x Instr) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	b = e.AppendMap(b, 2)

	b = e.AppendKeyInt(b, "addr", x.Addr)
	b = e.AppendString(b, "instr")
	b = e.AppendString(b, x.String())

	return b
}
