// Package trust evaluates whether a peer's certificate should be trusted:
// it drives the chain engine, runs the host-name policy check, and reduces
// the findings into a small set of named trust errors.
package trust

import "strings"

// TrustErrors is a set of independent trust-decision errors. Members are not
// mutually exclusive: a chain can fail to reach an anchor and mismatch the
// expected host name at the same time. The zero value means no error.
type TrustErrors uint8

const (
	// NameMismatch: the chain's leaf does not match the expected host name.
	NameMismatch TrustErrors = 1 << iota
	// ChainErrors: the chain did not build to a trust anchor.
	ChainErrors
	// NotAvailable: the peer presented no certificate at all.
	NotAvailable
)

// None is the empty set: the peer's certificate is trusted.
const None TrustErrors = 0

// Add inserts the members of o into the set.
func (e *TrustErrors) Add(o TrustErrors) {
	*e |= o
}

// Has reports whether every member of o is in the set.
func (e TrustErrors) Has(o TrustErrors) bool {
	return e&o == o
}

// Union returns the combined set.
func (e TrustErrors) Union(o TrustErrors) TrustErrors {
	return e | o
}

// None reports whether the set is empty.
func (e TrustErrors) None() bool {
	return e == None
}

// String renders the set as "None" or a "|"-joined list of member names.
func (e TrustErrors) String() string {
	if e.None() {
		return "None"
	}

	var parts []string
	if e.Has(NameMismatch) {
		parts = append(parts, "NameMismatch")
	}
	if e.Has(ChainErrors) {
		parts = append(parts, "ChainErrors")
	}
	if e.Has(NotAvailable) {
		parts = append(parts, "NotAvailable")
	}
	return strings.Join(parts, "|")
}
