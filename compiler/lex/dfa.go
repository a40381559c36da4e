package lex

import (
	"sort"

	"github.com/slowlang/octet/compiler/token"
)

type (
	state struct {
		next   [nclasses]int
		accept token.Kind
	}
)

// character classes: a-z, 0-9, then punctuation
const (
	letters   = 26
	digits    = 10
	punctBase = letters + digits
	punct     = `+{}()"$=!`
	nclasses  = punctBase + len(punct)
)

var dfa = build()

func class(c byte) int {
	switch {
	case c >= 'a' && c <= 'z':
		return int(c - 'a')
	case c >= '0' && c <= '9':
		return letters + int(c-'0')
	}

	for i := 0; i < len(punct); i++ {
		if punct[i] == c {
			return punctBase + i
		}
	}

	return -1
}

// build makes a keyword trie over the character classes.
// Letters and digits which start no keyword accept at once,
// so does every punctuation mark except '=' and '!'.
func build() []state {
	d := []state{{}}

	words := make([]string, 0, len(token.Reserved))
	for w := range token.Reserved {
		words = append(words, w)
	}

	sort.Strings(words)

	for _, word := range words {
		s := 0

		for i := 0; i < len(word); i++ {
			c := class(word[i])

			next := d[s].next[c]
			if next == 0 {
				next = len(d)
				d = append(d, state{})
				d[s].next[c] = next
			}

			s = next
		}

		d[s].accept = token.Reserved[word]
	}

	for c := 0; c < nclasses; c++ {
		if d[0].next[c] != 0 {
			continue
		}

		var k token.Kind

		switch {
		case c < letters:
			k = token.ID
		case c < punctBase:
			k = token.Digit
		default:
			k = token.Punct[punct[c-punctBase]]
		}

		d[0].next[c] = len(d)
		d = append(d, state{accept: k})
	}

	return d
}
