package filter

import (
	"github.com/ivoronin/peervet/internal/version"
)

// operatorStrategy defines how an operator interprets a version comparison
// result (cmp: -1/0/1 from semver.Compare).
type operatorStrategy interface {
	MatchSemver(cmp int) bool
}

// operatorStrategies maps operators to their comparison strategies.
var operatorStrategies = map[Operator]operatorStrategy{
	OpEqual:        equalStrategy{},
	OpGreater:      greaterStrategy{},
	OpLess:         lessStrategy{},
	OpGreaterEqual: greaterEqualStrategy{},
	OpLessEqual:    lessEqualStrategy{},
}

// Strategy implementations

type equalStrategy struct{}

func (equalStrategy) MatchSemver(cmp int) bool { return cmp == 0 }

type greaterStrategy struct{}

func (greaterStrategy) MatchSemver(cmp int) bool { return cmp > 0 }

type lessStrategy struct{}

func (lessStrategy) MatchSemver(cmp int) bool { return cmp < 0 }

type greaterEqualStrategy struct{}

func (greaterEqualStrategy) MatchSemver(cmp int) bool { return cmp >= 0 }

type lessEqualStrategy struct{}

func (lessEqualStrategy) MatchSemver(cmp int) bool { return cmp <= 0 }

// ProtoAllowed reports whether the negotiated protocol version satisfies
// every tls constraint (AND). A filter with no tls constraints allows any
// version; an empty negotiated version fails any tls constraint.
func (f *Filter) ProtoAllowed(ver string) bool {
	if f == nil {
		return true
	}

	for _, c := range f.Constraints {
		if c.Key != KeyTLS {
			continue
		}
		if ver == "" {
			return false
		}

		strategy, ok := operatorStrategies[c.Operator]
		if !ok {
			return false // Unknown operator
		}
		if !strategy.MatchSemver(version.Compare(ver, c.Value)) {
			return false
		}
	}
	return true
}

// Host returns the host name to check and whether name checking is enabled.
// A name=none constraint disables the check; absent a name constraint the
// default host is used. The last name constraint wins.
func (f *Filter) Host(def string) (string, bool) {
	host, check := def, def != ""
	if f == nil {
		return host, check
	}

	for _, c := range f.Constraints {
		if c.Key != KeyName {
			continue
		}
		if c.Value == NameNone {
			host, check = "", false
		} else {
			host, check = c.Value, true
		}
	}
	return host, check
}

// Role returns the local role the vet runs as, "client" or "server".
// Absent a role constraint the vet acts as a TLS client. The last role
// constraint wins.
func (f *Filter) Role() string {
	role := "client"
	if f == nil {
		return role
	}

	for _, c := range f.Constraints {
		if c.Key == KeyRole {
			role = c.Value
		}
	}
	return role
}
