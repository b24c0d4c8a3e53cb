package perm

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	triadWidth  = 3
	triadCount  = 3
	octalLen    = triadCount
	symbolicLen = triadCount * triadWidth
	maxTriad    = 7
	absent      = '-'
)

// slotLetters holds the only letter each slot of a triad may carry besides '-'.
var slotLetters = [triadWidth]rune{'r', 'w', 'x'}

var slotNames = [triadWidth]string{"read", "write", "execute"}

// symbols is the triad lookup table. It is built once from slotLetters and
// never written afterwards; both conversion directions read from it.
var symbols = buildSymbols()

// triads inverts symbols.
var triads = buildTriads()

func buildSymbols() [maxTriad + 1]string {
	var table [maxTriad + 1]string
	for v := range table {
		buf := make([]rune, triadWidth)
		for slot := range triadWidth {
			buf[slot] = absent
			if v&slotWeight(slot) != 0 {
				buf[slot] = slotLetters[slot]
			}
		}
		table[v] = string(buf)
	}
	return table
}

func buildTriads() map[string]Triad {
	m := make(map[string]Triad, len(symbols))
	for v, s := range symbols {
		m[s] = Triad(v)
	}
	return m
}

// slotWeight is 4 for read, 2 for write and 1 for execute.
func slotWeight(slot int) int { return 1 << (triadWidth - 1 - slot) }

// Table returns a copy of the lookup table indexed by triad value.
func Table() [maxTriad + 1]string { return symbols }

// Triad is one owner, group or other permission set, 0 through 7.
type Triad uint8

// Symbol renders t as three characters, e.g. 5 -> "r-x".
func (t Triad) Symbol() string { return symbols[t&maxTriad] }

func (t Triad) Has(b Bit) bool { return t&Triad(b) != 0 }

func (t Triad) Digit() byte { return '0' + byte(t&maxTriad) }

// Bit is a single permission within a triad.
type Bit uint8

const (
	Execute Bit = 1
	Write   Bit = 2
	Read    Bit = 4
)

// Bits lists the permissions in slot order.
var Bits = [triadWidth]Bit{Read, Write, Execute}

func (b Bit) String() string {
	switch b {
	case Read:
		return "read"
	case Write:
		return "write"
	case Execute:
		return "execute"
	default:
		return "unknown"
	}
}

// Label renders b the way the permission checkboxes do, e.g. "Read (4)".
func (b Bit) Label() string {
	name := b.String()
	return fmt.Sprintf("%s%s (%d)", strings.ToUpper(name[:1]), name[1:], b)
}

// Class selects the triad a permission applies to.
type Class int

const (
	Owner Class = iota
	Group
	Other
)

var Classes = [triadCount]Class{Owner, Group, Other}

func (c Class) String() string {
	switch c {
	case Owner:
		return "owner"
	case Group:
		return "group"
	case Other:
		return "other"
	default:
		return "unknown"
	}
}

// Form identifies one of the two textual representations.
type Form int

const (
	FormOctal Form = iota
	FormSymbolic
)

func (f Form) String() string {
	if f == FormOctal {
		return "octal"
	}
	return "symbolic"
}

// Len is the exact number of characters the form requires.
func (f Form) Len() int {
	if f == FormOctal {
		return octalLen
	}
	return symbolicLen
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }
