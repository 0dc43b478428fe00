package grammar

import (
	"fmt"
	"strings"
)

// CheckFunc reports whether a candidate value is structurally plausible for
// the grammar that referenced it. Candidates failing the check are discarded.
type CheckFunc func(value string) bool

// checks maps the names usable in a grammar's check field to implementations.
var checks = map[string]CheckFunc{
	"not_hex":  NotEntirelyHex,
	"ens_name": ValidENSName,
}

// LookupCheck resolves a check name from a grammar file. The empty name
// resolves to nil, meaning no structural check. Unknown names are an error
// so a typo cannot silently disable checking.
func LookupCheck(name string) (CheckFunc, error) {
	if name == "" {
		return nil, nil
	}
	fn, ok := checks[name]
	if !ok {
		return nil, fmt.Errorf("unknown check %q", name)
	}
	return fn, nil
}

// NotEntirelyHex reports whether value contains at least one rune outside the
// hex alphabet. Grammars over base58-like alphabets use it to discard bare
// hex runs such as digests and commit hashes.
func NotEntirelyHex(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if !IsHexRune(r) {
			return true
		}
	}
	return false
}

// ValidENSName reports whether value is a plausible ENS name: at least one
// label followed by the literal .eth suffix. Labels may be mixed case but
// the suffix itself must be lowercase.
func ValidENSName(value string) bool {
	return strings.HasSuffix(value, ".eth") && len(value) > len(".eth")
}

// IsHexRune reports whether r is an ASCII hexadecimal digit.
func IsHexRune(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// IsBase58Rune reports whether r belongs to the Bitcoin base58 alphabet,
// which excludes 0, O, I and l.
func IsBase58Rune(r rune) bool {
	switch {
	case r == '0' || r == 'O' || r == 'I' || r == 'l':
		return false
	case r >= '1' && r <= '9':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= 'a' && r <= 'z':
		return true
	}
	return false
}

// IsBech32Rune reports whether r belongs to the lowercase bech32 data
// alphabet, which excludes 1, b, i and o.
func IsBech32Rune(r rune) bool {
	switch {
	case r == '1' || r == 'b' || r == 'i' || r == 'o':
		return false
	case r >= '0' && r <= '9':
		return true
	case r >= 'a' && r <= 'z':
		return true
	}
	return false
}
