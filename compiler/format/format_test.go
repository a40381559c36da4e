package format

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/octet/compiler/analyze"
	"github.com/slowlang/octet/compiler/asm"
	"github.com/slowlang/octet/compiler/back"
	"github.com/slowlang/octet/compiler/lex"
	"github.com/slowlang/octet/compiler/parse"
	"github.com/slowlang/octet/compiler/set"
)

func TestHex(t *testing.T) {
	data := []byte{0xA9, 0x01, 0x8D, 0x0c, 0x00}

	assert.Equal(t, "A9 01 8D 0C 00", string(Hex(nil, data, 0)))
	assert.Equal(t, "A9 01\n8D 0C\n00", string(Hex(nil, data, 2)))
	assert.Equal(t, "", string(Hex(nil, nil, 0)))
}

func TestMemory(t *testing.T) {
	var img asm.Image
	img[0] = 0xA9
	img[0xF8] = 0xFF

	lines := strings.Split(strings.TrimSuffix(string(Memory(nil, &img)), "\n"), "\n")

	require.Len(t, lines, 32)
	assert.Equal(t, "00| [A9] [00] [00] [00] [00] [00] [00] [00]", lines[0])
	assert.Equal(t, "F8| [FF] [00] [00] [00] [00] [00] [00] [00]", lines[31])
}

func TestPipelineDumps(t *testing.T) {
	ctx := context.Background()

	toks, _ := lex.Scan(ctx, []byte(`{int a a=1 print(a)}$`))

	tl := string(Tokens(nil, toks[:2]))
	assert.Equal(t, "[NAME: T_OPEN_BRACE   ][VALUE: {         ][LINE: 1]\n[NAME: T_INT          ][VALUE: int       ][LINE: 1]\n", tl)

	cst, _ := parse.Parse(ctx, toks)
	assert.True(t, strings.HasPrefix(string(Tree(nil, cst, false)), "<Program>\n-<Block>\n--[{]\n"))

	a, _ := analyze.Analyze(ctx, cst, analyze.Options{})
	assert.Equal(t, "<Block>(0)\n-<VarDecl>(0)\n--[int](0)\n--[a](0)\n-<AssignmentStatement>(0)\n--[a](0)\n--[1](0)\n-<PrintStatement>(0)\n--[a](0)\n", string(Tree(nil, a.AST, true)))

	assert.Equal(t, "scope 0 (parent -1)\n\ta    int      line 1   initialized true  used true\n", string(Symbols(nil, a.Table)))

	res, _ := back.Generate(ctx, a.AST, a.Literals)

	assert.Equal(t, "\t00  A9 01      LDA #$01\n"+
		"\t02  8D 0C 00   STA $0C\n"+
		"\t05  A2 01      LDX #$01\n"+
		"\t07  AC 0C 00   LDY $0C\n"+
		"\t0A  FF         SYS\n"+
		"\t0B  00         BRK\n", string(Disasm(nil, res)))

	assert.Equal(t, "\t0C  a    scope 0   int      refs 2\n\tFB  \"true\"\n\tF5  \"false\"\n", string(Vars(nil, res)))

	var hit set.Addrs
	hit.Set(0)
	hit.Set(2)
	hit.Set(0x30)

	assert.Equal(t, "executed 2 of 6 instructions\n\t05  LDX #$01\n\t07  LDY $0C\n\t0A  SYS\n\t0B  BRK\n", string(Coverage(nil, res, &hit)))
}
