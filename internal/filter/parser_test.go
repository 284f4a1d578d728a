package filter

import (
	"testing"

	"github.com/Masterminds/semver/v3"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int // number of constraints
		wantErr string
	}{
		{"single tls constraint", "tls>=1.2", 1, ""},
		{"tls and name", "tls>=1.2,name=example.com", 2, ""},
		{"tls range", "tls>=1.2,tls<=1.3", 2, ""},
		{"all roles", "role=server", 1, ""},
		{"role client", "role=client", 1, ""},
		{"equal", "tls=1.3", 1, ""},
		{"greater", "tls>1.1", 1, ""},
		{"less", "tls<1.3", 1, ""},
		{"less equal", "tls<=1.2", 1, ""},
		{"name none", "name=none", 1, ""},
		{"name with subdomain", "name=api.example.com", 1, ""},
		{"name with wildcard", "name=*.example.com", 1, ""},
		{"full expression", "tls>=1.2,name=example.com,role=client", 3, ""},
		{"whitespace", " tls >= 1.2 , name = example.com ", 2, ""},

		// Case insensitivity for keys
		{"case insensitive TLS", "TLS>=1.2", 1, ""},
		{"case insensitive Name", "Name=example.com", 1, ""},
		{"case insensitive ROLE", "ROLE=server", 1, ""},

		// Errors
		{"empty", "", 0, "empty"},
		{"unknown key", "proto>=1.2", 0, "invalid"},
		{"invalid operator", "tls>>1.2", 0, "invalid"},
		{"bare key", "tls", 0, "missing operator"},
		{"missing value", "tls>=", 0, "missing value"},
		{"name with range operator", "name>=example.com", 0, "supports only"},
		{"role with range operator", "role>=server", 0, "supports only"},
		{"bad role", "role=proxy", 0, "invalid role"},
		{"bad version", "tls>=latest", 0, "invalid TLS version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse(tt.input)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(f.Constraints) != tt.want {
				t.Errorf("got %d constraints, want %d", len(f.Constraints), tt.want)
			}
		})
	}
}

func TestParseConstraintValues(t *testing.T) {
	f, err := Parse("tls>=1.2")
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Constraints) != 1 {
		t.Fatalf("expected 1 constraint, got %d", len(f.Constraints))
	}
	c := f.Constraints[0]
	if c.Key != KeyTLS {
		t.Errorf("Key = %v, want tls", c.Key)
	}
	if c.Operator != OpGreaterEqual {
		t.Errorf("Operator = %v, want >=", c.Operator)
	}

	// Version should be semver 1.2.0
	want := semver.MustParse("1.2")
	if !c.Version.Equal(want) {
		t.Errorf("Version = %v, want %v", c.Version, want)
	}
}

func TestParseNameConstraint(t *testing.T) {
	f, err := Parse("name=Example.COM")
	if err != nil {
		t.Fatal(err)
	}

	c := f.Constraints[0]
	if c.Key != KeyName {
		t.Errorf("Key = %v, want name", c.Key)
	}
	// Host values keep their case; matching is up to the name check
	if c.Value != "Example.COM" {
		t.Errorf("Value = %q, want %q", c.Value, "Example.COM")
	}
	if c.Version != nil {
		t.Errorf("Version = %v, want nil for name constraint", c.Version)
	}
}

func TestParseRoleNormalized(t *testing.T) {
	f, err := Parse("role=SERVER")
	if err != nil {
		t.Fatal(err)
	}

	c := f.Constraints[0]
	if c.Key != KeyRole {
		t.Errorf("Key = %v, want role", c.Key)
	}
	if c.Value != "server" {
		t.Errorf("Value = %q, want %q", c.Value, "server")
	}
}
