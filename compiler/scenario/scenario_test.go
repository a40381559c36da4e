package scenario

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func TestTestdata(t *testing.T) {
	files, err := filepath.Glob("../testdata/*.md")
	be.Err(t, err, nil)
	be.True(t, len(files) != 0)

	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), ".md")

		t.Run(name, func(t *testing.T) {
			data, err := os.ReadFile(file)
			be.Err(t, err, nil)

			cs, err := Extract(data)
			be.Err(t, err, nil)

			for _, c := range cs {
				t.Run(c.Name, func(t *testing.T) {
					act, err := Actual(context.Background(), c)
					be.Err(t, err, nil)

					for _, ch := range c.Checks {
						if act[ch.Kind] != ch.Content {
							t.Errorf("%s:%d: %s\nwant:\n%s\ngot:\n%s", file, ch.Line, ch.Kind, ch.Content, act[ch.Kind])
						}
					}
				})
			}
		})
	}
}

func TestExtract(t *testing.T) {
	src := "# Doc\n\n```\nplain\n```\n\n## Test: one\n\n```octet strict\n{}$\n```\n\n```hex\n00\n```\n\n## Test: two\n\n```octet\n{print(1)}$\n```\n\n```output\n1\n```\n\n```diagnostics\n```\n"

	cs, err := Extract([]byte(src))
	be.Err(t, err, nil)
	be.Equal(t, len(cs), 2)

	be.Equal(t, cs[0].Name, "one")
	be.Equal(t, cs[0].Source, "{}$\n")
	be.True(t, cs[0].Strict)
	be.Equal(t, cs[0].Checks, []Check{{Kind: Hex, Content: "00", Line: 14}})

	be.Equal(t, cs[1].Name, "two")
	be.True(t, !cs[1].Strict)
	be.Equal(t, len(cs[1].Checks), 2)
	be.Equal(t, cs[1].Checks[0].Content, "1")
	be.Equal(t, cs[1].Checks[1].Kind, Diagnostics)
	be.Equal(t, cs[1].Checks[1].Content, "")
}

func TestExtractErrors(t *testing.T) {
	for _, src := range []string{
		"```octet\n{}$\n```\n",
		"## Test: x\n\n```hex\n00\n```\n",
		"## Test: x\n\n```octet\n{}$\n```\n\n```octet\n{}$\n```\n",
		"## Test: x\n\n```octet\n{}$\n```\n\n```python\npass\n```\n",
	} {
		_, err := Extract([]byte(src))
		be.True(t, err != nil)
	}
}

func TestActual(t *testing.T) {
	act, err := Actual(context.Background(), Case{
		Name:   "x",
		Source: "{int a a=1 print(a)}$\n",
		Checks: []Check{{Kind: Hex}, {Kind: Output}, {Kind: Tokens}},
	})
	be.Err(t, err, nil)

	be.Equal(t, act[Hex], "A9 01 8D 0C 00 A2 01 AC 0C 00 FF 00")
	be.Equal(t, act[Output], "1")
	be.True(t, strings.HasPrefix(act[Tokens], "[NAME: "))

	_, ok := act[Diagnostics]
	be.True(t, !ok)
}
