package asm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisasm(t *testing.T) {
	code := []byte{0xA9, 0x01, 0x8D, 0x0C, 0x00, 0xA2, 0x01, 0xAC, 0x0C, 0x00, 0xFF, 0x00}

	var r []string
	for _, x := range Disasm(code, len(code)) {
		r = append(r, x.String())
	}

	assert.Equal(t, []string{"LDA #$01", "STA $0C", "LDX #$01", "LDY $0C", "SYS", "BRK"}, r)
}

func TestDisasmUnknown(t *testing.T) {
	x := Disasm([]byte{0x42, 0xD0, 0xFA}, 3)

	if assert.Len(t, x, 2) {
		assert.False(t, x[0].Op.Known())
		assert.Equal(t, "DB $42", x[0].String())
		assert.Equal(t, "BNE $FA", x[1].String())
		assert.Equal(t, 1, x[1].Addr)
		assert.Equal(t, 253, x[1].Target())
	}
}

func TestOpSize(t *testing.T) {
	for op, size := range map[Op]int{BRK: 1, SYS: 1, LDAImm: 2, BNE: 2, LDYImm: 2, STA: 3, CPX: 3, ADC: 3} {
		assert.Equal(t, size, op.Size(), "op %v", op)
	}
}
