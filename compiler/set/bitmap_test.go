package set

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddrs(t *testing.T) {
	var s Addrs

	s.Set(0)
	s.Set(63)
	s.Set(64)
	s.Set(255)

	assert.True(t, s.IsSet(0))
	assert.True(t, s.IsSet(255))
	assert.False(t, s.IsSet(1))
	assert.Equal(t, 4, s.Size())

	var got []byte

	s.Range(func(a byte) bool {
		got = append(got, a)
		return true
	})

	assert.Equal(t, []byte{0, 63, 64, 255}, got)

	var x Addrs
	x.Set(0)
	x.Set(63)
	x.Set(64)
	x.Set(100)

	s.AndNot(x)
	assert.Equal(t, 1, s.Size())
	assert.True(t, s.IsSet(255))

	var nilset *Addrs
	assert.Zero(t, nilset.Size())
}
