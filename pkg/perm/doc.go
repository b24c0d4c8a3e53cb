// Package perm converts classic Unix permission triads between the 3-digit
// octal form and the 9-character symbolic form.
//
// Each digit of the octal form is one triad (owner, group, other), and each
// triad renders to three characters with a fixed letter per slot:
//
//	Value  Bits  Symbol
//	─────  ────  ──────
//	0      000   ---
//	1      001   --x
//	2      010   -w-
//	3      011   -wx
//	4      100   r--
//	5      101   r-x
//	6      110   rw-
//	7      111   rwx
//
// Decoding is strict about slots: a letter that is valid somewhere in a
// triad but not in the slot it occupies (e.g. "xrw") is rejected with
// [ErrInvalidPositionalCharacter] rather than read as an absent bit, so that
// every accepted input round-trips unchanged.
//
// Nothing here touches the filesystem. Extended mode bits (setuid, setgid,
// sticky) are out of scope and are discarded by [FromFileMode].
package perm
