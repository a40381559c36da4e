package set

import (
	"math/bits"

	"tlog.app/go/tlog/tlwire"
)

type (
	// Addrs is a set of machine addresses.
	Addrs struct {
		b [4]uint64
	}
)

func (s *Addrs) Set(a byte) {
	s.b[a/64] |= 1 << (a % 64)
}

func (s *Addrs) IsSet(a byte) bool {
	return s.b[a/64]&(1<<(a%64)) != 0
}

func (s *Addrs) AndNot(x Addrs) {
	for i, x := range x.b {
		s.b[i] &^= x
	}
}

func (s *Addrs) Size() (r int) {
	if s == nil {
		return 0
	}

	for _, c := range s.b {
		r += bits.OnesCount64(c)
	}

	return r
}

func (s *Addrs) Range(f func(a byte) bool) {
	for i, x := range s.b {
		for x != 0 {
			j := bits.TrailingZeros64(x)
			x &^= 1 << j

			if !f(byte(i*64 + j)) {
				return
			}
		}
	}
}

func (s Addrs) TlogAppend(b []byte) []byte {
	var e tlwire.LowEncoder

	b = e.AppendTag(b, tlwire.Array, -1)

	s.Range(func(a byte) bool {
		b = e.AppendInt(b, int(a))

		return true
	})

	return e.AppendBreak(b)
}
