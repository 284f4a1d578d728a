// Package filter provides vet-constraint expression parsing and matching.
package filter

import "github.com/Masterminds/semver/v3"

// Operator for version comparison.
type Operator string

const (
	OpEqual        Operator = "="
	OpGreater      Operator = ">"
	OpLess         Operator = "<"
	OpGreaterEqual Operator = ">="
	OpLessEqual    Operator = "<="
)

// Key identifies the property a constraint applies to.
type Key string

const (
	// KeyTLS constrains the negotiated TLS protocol version, e.g. "tls>=1.2".
	KeyTLS Key = "tls"
	// KeyName sets the expected host name, e.g. "name=example.com".
	KeyName Key = "name"
	// KeyRole sets the local validation role, e.g. "role=client".
	KeyRole Key = "role"
)

// NameNone is the name value that disables host-name checking.
const NameNone = "none"

// Constraint represents a single parsed vet constraint.
type Constraint struct {
	Key      Key
	Operator Operator
	Value    string
	Version  *semver.Version // parsed Value for KeyTLS constraints
}

// Filter represents a parsed vet-constraint expression.
type Filter struct {
	Constraints []Constraint
}
