package filter

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// AST types for Participle grammar

// filterExpr is the root of the grammar: comma-separated constraints
type filterExpr struct {
	Constraints []*constraintExpr `parser:"@@ ( ',' @@ )*"`
}

// constraintExpr represents a single constraint: key op value
type constraintExpr struct {
	Key      string `parser:"@Key"`
	Operator string `parser:"@Operator?"`
	Value    string `parser:"@Value?"`
}

// Build the lexer
// IMPORTANT: Key pattern uses word boundaries (\b) to prevent "tls" matching
// inside a host name token like "tlsdemo.example.com"
var filterLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Comma", Pattern: `,`},
	{Name: "Operator", Pattern: `>=|<=|>|<|=`},
	{Name: "Key", Pattern: `(?i)\btls\b|\bname\b|\brole\b`},
	{Name: "Value", Pattern: `[A-Za-z0-9*][A-Za-z0-9*._\-]*`},
})

// Build the parser
var filterParser = participle.MustBuild[filterExpr](
	participle.Lexer(filterLexer),
	participle.CaseInsensitive("Key"),
	participle.Elide("Whitespace"),
)

// Parse parses a vet-constraint expression like "tls>=1.2,name=example.com"
// or "role=server".
func Parse(expr string) (*Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("empty constraint expression")
	}

	ast, err := filterParser.ParseString("", expr)
	if err != nil {
		return nil, fmt.Errorf("invalid constraint %q: %w", expr, err)
	}

	constraints := make([]Constraint, 0, len(ast.Constraints))
	for _, c := range ast.Constraints {
		constraint, err := convertConstraint(c)
		if err != nil {
			return nil, err
		}
		constraints = append(constraints, constraint)
	}

	return &Filter{Constraints: constraints}, nil
}

// convertConstraint converts AST constraint to domain Constraint
func convertConstraint(c *constraintExpr) (Constraint, error) {
	// Key is already validated by lexer, just normalize
	key := Key(strings.ToLower(c.Key))

	// Require both operator and value
	if c.Operator == "" {
		return Constraint{}, fmt.Errorf("missing operator for %s", c.Key)
	}
	if c.Value == "" {
		return Constraint{}, fmt.Errorf("missing value for %s%s", c.Key, c.Operator)
	}

	switch key {
	case KeyTLS:
		// Parse semver
		ver, err := semver.NewVersion(c.Value)
		if err != nil {
			return Constraint{}, fmt.Errorf("invalid TLS version %q: %w", c.Value, err)
		}
		return Constraint{
			Key:      key,
			Operator: Operator(c.Operator),
			Value:    c.Value,
			Version:  ver,
		}, nil

	case KeyName:
		if Operator(c.Operator) != OpEqual {
			return Constraint{}, fmt.Errorf("name supports only '=', got %q", c.Operator)
		}
		return Constraint{Key: key, Operator: OpEqual, Value: c.Value}, nil

	case KeyRole:
		if Operator(c.Operator) != OpEqual {
			return Constraint{}, fmt.Errorf("role supports only '=', got %q", c.Operator)
		}
		role := strings.ToLower(c.Value)
		if role != "server" && role != "client" {
			return Constraint{}, fmt.Errorf("invalid role %q: must be server or client", c.Value)
		}
		return Constraint{Key: key, Operator: OpEqual, Value: role}, nil
	}

	return Constraint{}, fmt.Errorf("unknown constraint key %q", c.Key)
}
