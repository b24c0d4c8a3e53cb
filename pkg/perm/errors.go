package perm

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidLength              = errors.New("invalid length")
	ErrInvalidCharacter           = errors.New("invalid character")
	ErrInvalidDigit               = errors.New("invalid digit")
	ErrInvalidPositionalCharacter = errors.New("invalid positional character")
)

// Kind classifies a validation failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidLength
	KindInvalidCharacter
	KindInvalidDigit
	KindInvalidPositionalCharacter
)

var kindNames = map[Kind]string{
	KindInvalidLength:              "InvalidLength",
	KindInvalidCharacter:           "InvalidCharacter",
	KindInvalidDigit:               "InvalidDigit",
	KindInvalidPositionalCharacter: "InvalidPositionalCharacter",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Err returns the sentinel every error of this kind unwraps to.
func (k Kind) Err() error {
	switch k {
	case KindInvalidLength:
		return ErrInvalidLength
	case KindInvalidCharacter:
		return ErrInvalidCharacter
	case KindInvalidDigit:
		return ErrInvalidDigit
	case KindInvalidPositionalCharacter:
		return ErrInvalidPositionalCharacter
	default:
		return nil
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return KindUnknown, false
}

// KindOf reports the kind of a codec error anywhere in err's chain.
func KindOf(err error) (Kind, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	for k := range kindNames {
		if errors.Is(err, k.Err()) {
			return k, true
		}
	}
	return KindUnknown, false
}

// Error describes why an input was rejected. Pos is the zero-based character
// index of the offending rune, or -1 for length failures.
type Error struct {
	Kind  Kind
	Form  Form
	Input string
	Pos   int
	Char  rune
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindInvalidLength:
		return fmt.Sprintf("%s permission must be %d characters, got %d", e.Form, e.Form.Len(), runeLen(e.Input))
	case KindInvalidCharacter:
		if e.Form == FormOctal {
			return fmt.Sprintf("character %q at position %d is not a digit", e.Char, e.Pos)
		}
		return fmt.Sprintf("character %q at position %d is not one of r, w, x or -", e.Char, e.Pos)
	case KindInvalidDigit:
		return fmt.Sprintf("digit %q at position %d is out of range 0-7", e.Char, e.Pos)
	case KindInvalidPositionalCharacter:
		slot := e.Pos % triadWidth
		return fmt.Sprintf("character %q at position %d is not allowed in the %s slot (want %q or '-')",
			e.Char, e.Pos, slotNames[slot], slotLetters[slot])
	default:
		return "invalid permission"
	}
}

func (e *Error) Unwrap() error { return e.Kind.Err() }
