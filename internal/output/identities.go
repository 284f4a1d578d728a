package output

import (
	"encoding/json"
)

// IdentityEntry represents a single personal-store certificate entry.
type IdentityEntry struct {
	Subject     string `json:"subject"`
	Issuer      string `json:"issuer"`
	Expires     string `json:"expires"`
	Fingerprint string `json:"fingerprint"`
}

// IdentityList implements Formatter for personal-store certificate listings.
type IdentityList struct {
	Entries []IdentityEntry
}

// FormatText returns a table of the certificates.
// Header: SUBJECT, ISSUER, EXPIRES, FINGERPRINT
// Fingerprints in entries should already be truncated for text display.
func (l *IdentityList) FormatText() string {
	if len(l.Entries) == 0 {
		return ""
	}

	tw := NewTableWriter()
	tw.Header("SUBJECT", "ISSUER", "EXPIRES", "FINGERPRINT")

	for _, e := range l.Entries {
		tw.Row(e.Subject, e.Issuer, e.Expires, e.Fingerprint)
	}

	return tw.String()
}

// FormatJSON returns JSON array output.
// Fingerprints are expected to be full (not truncated) for JSON output.
func (l *IdentityList) FormatJSON() ([]byte, error) {
	if len(l.Entries) == 0 {
		return []byte("[]"), nil
	}
	return json.MarshalIndent(l.Entries, "", "  ")
}
