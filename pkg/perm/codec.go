package perm

// Encode converts an octal permission such as "755" to its symbolic form
// "rwxr-xr-x".
func Encode(octal string) (string, error) {
	m, err := ParseOctal(octal)
	if err != nil {
		return "", err
	}
	return m.Symbolic(), nil
}

// Decode converts a symbolic permission such as "rw-r--r--" to its octal form
// "644".
func Decode(symbolic string) (string, error) {
	m, err := ParseSymbolic(symbolic)
	if err != nil {
		return "", err
	}
	return m.Octal(), nil
}

// Parse accepts either form, choosing by length.
func Parse(s string) (Mode, Form, error) {
	switch runeLen(s) {
	case octalLen:
		m, err := ParseOctal(s)
		return m, FormOctal, err
	case symbolicLen:
		m, err := ParseSymbolic(s)
		return m, FormSymbolic, err
	default:
		// Neither length fits; report against the form the input is closer to.
		form := FormOctal
		if runeLen(s) > (octalLen+symbolicLen)/2 {
			form = FormSymbolic
		}
		return Mode{}, form, &Error{Kind: KindInvalidLength, Form: form, Input: s, Pos: -1}
	}
}

// ParseOctal validates a 3-digit octal permission. Checks run in order
// (length, character class, digit range) and each check covers the whole
// input before the next begins.
func ParseOctal(s string) (Mode, error) {
	rs := []rune(s)
	if len(rs) != octalLen {
		return Mode{}, &Error{Kind: KindInvalidLength, Form: FormOctal, Input: s, Pos: -1}
	}
	for i, r := range rs {
		if r < '0' || r > '9' {
			return Mode{}, &Error{Kind: KindInvalidCharacter, Form: FormOctal, Input: s, Pos: i, Char: r}
		}
	}
	for i, r := range rs {
		if r > '0'+maxTriad {
			return Mode{}, &Error{Kind: KindInvalidDigit, Form: FormOctal, Input: s, Pos: i, Char: r}
		}
	}

	var m Mode
	for i, r := range rs {
		m[i] = Triad(r - '0')
	}
	return m, nil
}

// ParseSymbolic validates a 9-character symbolic permission. Membership in
// {r,w,x,-} is checked across the whole input before slot placement.
func ParseSymbolic(s string) (Mode, error) {
	rs := []rune(s)
	if len(rs) != symbolicLen {
		return Mode{}, &Error{Kind: KindInvalidLength, Form: FormSymbolic, Input: s, Pos: -1}
	}
	for i, r := range rs {
		if r != absent && !isSlotLetter(r) {
			return Mode{}, &Error{Kind: KindInvalidCharacter, Form: FormSymbolic, Input: s, Pos: i, Char: r}
		}
	}
	for i, r := range rs {
		if r != absent && r != slotLetters[i%triadWidth] {
			return Mode{}, &Error{Kind: KindInvalidPositionalCharacter, Form: FormSymbolic, Input: s, Pos: i, Char: r}
		}
	}

	var m Mode
	for i := range m {
		group := string(rs[i*triadWidth : (i+1)*triadWidth])
		m[i] = triads[group]
	}
	return m, nil
}

func isSlotLetter(r rune) bool {
	for _, l := range slotLetters {
		if r == l {
			return true
		}
	}
	return false
}
