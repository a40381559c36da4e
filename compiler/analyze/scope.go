package analyze

import (
	"tlog.app/go/tlog/tlwire"
)

type (
	// Table is an arena of frames addressed by scope id.
	Table struct {
		Frames []*Frame
	}

	Frame struct {
		ID     int
		Parent int // -1 for the root

		Symbols map[string]*Symbol
		List    []*Symbol // in declaration order
	}

	Symbol struct {
		Name  string
		Type  string
		Line  int
		Scope int

		Initialized bool
		Used        bool
	}
)

func (t *Table) Open(id, parent int) *Frame {
	f := &Frame{
		ID:      id,
		Parent:  parent,
		Symbols: map[string]*Symbol{},
	}

	t.Frames = sliceSet(t.Frames, id, f)

	return f
}

func (t *Table) Frame(id int) *Frame {
	if id < 0 || id >= len(t.Frames) {
		return nil
	}

	return t.Frames[id]
}

// Lookup resolves the name starting from the scope and going outwards.
func (t *Table) Lookup(scope int, name string) *Symbol {
	for f := t.Frame(scope); f != nil; f = t.Frame(f.Parent) {
		if s, ok := f.Symbols[name]; ok {
			return s
		}
	}

	return nil
}

// Symbols lists all the symbols, frame by frame.
func (t *Table) Symbols() (r []*Symbol) {
	for _, f := range t.Frames {
		if f == nil {
			continue
		}

		r = append(r, f.List...)
	}

	return r
}

// Declare adds the symbol unless the name is already taken in this frame.
// The previous declaration is returned in that case.
func (f *Frame) Declare(s *Symbol) (prev *Symbol) {
	if prev, ok := f.Symbols[s.Name]; ok {
		return prev
	}

	s.Scope = f.ID

	f.Symbols[s.Name] = s
	f.List = append(f.List, s)

	return nil
}

func (s *Symbol) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	b = e.AppendMap(b, 4)

	b = e.AppendString(b, "name")
	b = e.AppendString(b, s.Name)
	b = e.AppendString(b, "type")
	b = e.AppendString(b, s.Type)
	b = e.AppendKeyInt(b, "scope", s.Scope)
	b = e.AppendKeyInt(b, "line", s.Line)

	return b
}
