//go:build integration

package main

import (
	"strings"
	"testing"

	"github.com/ivoronin/peervet/internal/testutil"
)

// Integration tests - require network access
// Run with: go test -tags=integration ./cmd/peervet

func TestVetRealEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		args         []string
		wantExitCode int
		wantSubstrs  []string
	}{
		{
			name:         "google.com text",
			args:         []string{"vet", "google.com"},
			wantExitCode: ExitSuccess,
			wantSubstrs:  []string{"CHECK", "PASS"},
		},
		{
			name:         "google.com json",
			args:         []string{"vet", "-j", "google.com"},
			wantExitCode: ExitSuccess,
			wantSubstrs:  []string{`"endpoint":`, `google.com`, `"all_passed":`},
		},
		{
			name:         "protocol constraint",
			args:         []string{"vet", "-f", "tls>=1.0", "google.com"},
			wantExitCode: ExitSuccess,
			wantSubstrs:  []string{"protocol", "PASS"},
		},
		{
			name:         "name constraint mismatch",
			args:         []string{"vet", "-f", "name=not-google.example", "google.com"},
			wantExitCode: ExitTrustFail,
			wantSubstrs:  []string{"FAIL"},
		},
		{
			name:         "name check disabled",
			args:         []string{"vet", "-f", "name=none", "google.com"},
			wantExitCode: ExitSuccess,
			wantSubstrs:  []string{"skipped"},
		},
		{
			name:         "with explicit port",
			args:         []string{"vet", "google.com:443"},
			wantExitCode: ExitSuccess,
			wantSubstrs:  []string{"PASS"},
		},
	}

	for _, tt := range tests {
		tt := tt // capture range variable
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result := testutil.RunCLI(t, tt.args...)

			if result.ExitCode != tt.wantExitCode {
				t.Errorf("exit code = %d, want %d\nstderr: %s\nstdout: %s",
					result.ExitCode, tt.wantExitCode, result.Stderr, result.Stdout)
			}

			for _, substr := range tt.wantSubstrs {
				if !strings.Contains(result.Stdout, substr) {
					t.Errorf("stdout should contain %q, got:\n%s", substr, result.Stdout)
				}
			}
		})
	}
}

func TestVetCommandMissingEndpoint(t *testing.T) {
	t.Parallel()

	result := testutil.RunCLI(t, "vet")

	if result.ExitCode != ExitInputError {
		t.Errorf("exit code = %d, want %d for missing endpoint", result.ExitCode, ExitInputError)
	}
}

func TestVetCommandInvalidConstraints(t *testing.T) {
	t.Parallel()

	result := testutil.RunCLI(t, "vet", "-f", "invalid!!!", "example.com")

	if result.ExitCode != ExitInputError {
		t.Errorf("exit code = %d, want %d for invalid constraints", result.ExitCode, ExitInputError)
	}

	if !strings.Contains(result.Stderr, "invalid constraints") {
		t.Errorf("stderr should mention invalid constraints, got:\n%s", result.Stderr)
	}
}

func TestVetCommandInvalidEndpoint(t *testing.T) {
	t.Parallel()

	result := testutil.RunCLI(t, "vet", "this-host-does-not-exist-12345.invalid")

	if result.ExitCode == ExitSuccess {
		t.Errorf("expected non-zero exit code for invalid endpoint")
	}
}

func TestIssuersCommandNoClientAuth(t *testing.T) {
	t.Parallel()

	// google.com does not request a client certificate; empty output, success.
	result := testutil.RunCLI(t, "issuers", "google.com")

	if result.ExitCode != ExitSuccess {
		t.Errorf("exit code = %d, want %d\nstderr: %s", result.ExitCode, ExitSuccess, result.Stderr)
	}
	if strings.TrimSpace(result.Stdout) != "" {
		t.Errorf("expected empty output, got:\n%s", result.Stdout)
	}
}
