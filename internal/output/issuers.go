package output

import (
	"encoding/json"
	"strconv"
)

// IssuerList implements Formatter for acceptable-issuer listings.
// Entries keep the order the peer advertised them in; an empty string marks
// an entry whose distinguished name could not be decoded.
type IssuerList struct {
	Endpoint string
	Names    []string
}

// FormatText returns a table of the advertised issuers.
// Header: INDEX, ISSUER
func (l *IssuerList) FormatText() string {
	if len(l.Names) == 0 {
		return ""
	}

	tw := NewTableWriter()
	tw.Header("INDEX", "ISSUER")

	for i, name := range l.Names {
		if name == "" {
			name = "<undecodable>"
		}
		tw.Row(strconv.Itoa(i), name)
	}

	return tw.String()
}

// FormatJSON returns JSON array output.
func (l *IssuerList) FormatJSON() ([]byte, error) {
	if len(l.Names) == 0 {
		return []byte("[]"), nil
	}

	entries := make([]jsonIssuer, len(l.Names))
	for i, name := range l.Names {
		entries[i] = jsonIssuer{Index: i, Issuer: name}
	}
	return json.MarshalIndent(entries, "", "  ")
}

type jsonIssuer struct {
	Index  int    `json:"index"`
	Issuer string `json:"issuer"`
}
