// Package version provides TLS protocol version naming and comparison.
package version

import "github.com/Masterminds/semver/v3"

// Negotiated TLS protocol version numbers (crypto/tls wire values).
const (
	versionTLS10 = 0x0301
	versionTLS11 = 0x0302
	versionTLS12 = 0x0303
	versionTLS13 = 0x0304
)

// FromTLS converts a negotiated TLS version number to its dotted string form
// ("1.0" .. "1.3"). Unknown values yield an empty string.
func FromTLS(v uint16) string {
	switch v {
	case versionTLS10:
		return "1.0"
	case versionTLS11:
		return "1.1"
	case versionTLS12:
		return "1.2"
	case versionTLS13:
		return "1.3"
	}
	return ""
}

// Compare returns -1, 0, or 1 based on comparing a vs b.
// Handles semver-style dotted versions with a string-comparison fallback.
func Compare(a, b string) int {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	if errA == nil && errB == nil {
		return va.Compare(vb)
	}

	// Parseable versions sort before unparseable ones
	if errA == nil {
		return -1
	}
	if errB == nil {
		return 1
	}

	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// LessThan returns true if a < b.
func LessThan(a, b string) bool {
	return Compare(a, b) < 0
}

// GreaterOrEqual returns true if a >= b.
func GreaterOrEqual(a, b string) bool {
	return Compare(a, b) >= 0
}
