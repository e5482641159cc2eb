package domain

import "strings"

// DefaultVisibleChars is the number of leading and trailing characters kept by TruncateAddress.
const DefaultVisibleChars = 6

const accountIDLength = 56

const base32Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

// TruncateIdentifier shortens id for display, keeping visibleChars characters at each end
// joined by "...". Identifiers no longer than 2*visibleChars are returned unchanged.
// The result is for presentation only and must never be used for comparison or lookup.
func TruncateIdentifier(id string, visibleChars int) string {
	visibleChars = max(visibleChars, 0)
	runes := []rune(id)
	if len(runes) <= visibleChars*2 {
		return id
	}
	return string(runes[:visibleChars]) + "..." + string(runes[len(runes)-visibleChars:])
}

// TruncateAddress is TruncateIdentifier with DefaultVisibleChars.
func TruncateAddress(id string) string {
	return TruncateIdentifier(id, DefaultVisibleChars)
}

// IsAccountID reports whether s has the shape of a Stellar account ID (G... StrKey).
// The checksum is not verified.
func IsAccountID(s string) bool {
	if len(s) != accountIDLength || s[0] != 'G' {
		return false
	}
	for _, c := range s {
		if !strings.ContainsRune(base32Alphabet, c) {
			return false
		}
	}
	return true
}
