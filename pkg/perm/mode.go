package perm

import (
	"io/fs"
	"strings"
)

// Mode is a full owner/group/other permission set.
type Mode [triadCount]Triad

// FromFileMode keeps the nine permission bits of fm and drops everything
// else, including setuid, setgid and sticky.
func FromFileMode(fm fs.FileMode) Mode {
	p := uint32(fm.Perm())
	return Mode{Triad(p >> 6 & maxTriad), Triad(p >> 3 & maxTriad), Triad(p & maxTriad)}
}

func (m Mode) Triad(c Class) Triad { return m[c] }

func (m Mode) Has(c Class, b Bit) bool { return m[c].Has(b) }

// Toggle flips a single bit and returns the result.
func (m Mode) Toggle(c Class, b Bit) Mode {
	m[c] ^= Triad(b)
	return m
}

// Octal renders m as three digits, e.g. "755".
func (m Mode) Octal() string {
	buf := make([]byte, octalLen)
	for i, t := range m {
		buf[i] = t.Digit()
	}
	return string(buf)
}

// Symbolic renders m as nine characters, e.g. "rwxr-xr-x".
func (m Mode) Symbolic() string {
	var b strings.Builder
	b.Grow(symbolicLen)
	for _, t := range m {
		b.WriteString(t.Symbol())
	}
	return b.String()
}

// Literal renders m with a leading zero, as passed to chmod: "0755".
func (m Mode) Literal() string { return "0" + m.Octal() }

func (m Mode) FileMode() fs.FileMode {
	return fs.FileMode(uint32(m[Owner]&maxTriad)<<6 | uint32(m[Group]&maxTriad)<<3 | uint32(m[Other]&maxTriad))
}

func (m Mode) String() string { return m.Symbolic() }
