package anchor

import (
	"testing"

	"github.com/ivoronin/peervet/internal/testutil"
)

// validSHA256 is a valid 64-char hex string for testing.
const validSHA256 = "D7A7A0FB5D7E2731D7A7A0FB5D7E2731D7A7A0FB5D7E2731D7A7A0FB5D7E2731"
const validSHA256Formatted = "D7:A7:A0:FB:5D:7E:27:31:D7:A7:A0:FB:5D:7E:27:31:D7:A7:A0:FB:5D:7E:27:31:D7:A7:A0:FB:5D:7E:27:31"

func TestParseFingerprint(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "no separators",
			input: validSHA256,
			want:  validSHA256Formatted,
		},
		{
			name:  "space separated",
			input: "D7 A7 A0 FB 5D 7E 27 31 D7 A7 A0 FB 5D 7E 27 31 D7 A7 A0 FB 5D 7E 27 31 D7 A7 A0 FB 5D 7E 27 31",
			want:  validSHA256Formatted,
		},
		{
			name:  "colon separated",
			input: validSHA256Formatted,
			want:  validSHA256Formatted,
		},
		{
			name:  "dash separated",
			input: "D7-A7-A0-FB-5D-7E-27-31-D7-A7-A0-FB-5D-7E-27-31-D7-A7-A0-FB-5D-7E-27-31-D7-A7-A0-FB-5D-7E-27-31",
			want:  validSHA256Formatted,
		},
		{
			name:  "lowercase",
			input: "d7a7a0fb5d7e2731d7a7a0fb5d7e2731d7a7a0fb5d7e2731d7a7a0fb5d7e2731",
			want:  validSHA256Formatted,
		},
		{
			name:  "mixed case",
			input: "D7a7A0fb5D7e2731D7a7A0fb5D7e2731D7a7A0fb5D7e2731D7a7A0fb5D7e2731",
			want:  validSHA256Formatted,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
		{
			name:    "whitespace only",
			input:   "   ",
			wantErr: true,
		},
		{
			name:    "invalid character",
			input:   "D7A7A0FB5D7E2731D7A7A0FB5D7E2731D7A7A0FB5D7E2731D7A7A0FB5D7E273Z",
			wantErr: true,
		},
		{
			name:    "too short",
			input:   "D7A7A0FB",
			wantErr: true,
		},
		{
			name:    "too long",
			input:   validSHA256 + "FF",
			wantErr: true,
		},
		// Strict validation tests - these must be rejected
		{
			name:    "double separator",
			input:   "D7::A7:A0:FB:5D:7E:27:31:D7:A7:A0:FB:5D:7E:27:31:D7:A7:A0:FB:5D:7E:27:31:D7:A7:A0:FB:5D:7E:27:31",
			wantErr: true,
		},
		{
			name:    "incomplete pair at start",
			input:   "D:A7:A0:FB:5D:7E:27:31:D7:A7:A0:FB:5D:7E:27:31:D7:A7:A0:FB:5D:7E:27:31:D7:A7:A0:FB:5D:7E:27:31",
			wantErr: true,
		},
		{
			name:    "mixed separators colon and space",
			input:   "D7:A7 A0:FB:5D:7E:27:31:D7:A7:A0:FB:5D:7E:27:31:D7:A7:A0:FB:5D:7E:27:31:D7:A7:A0:FB:5D:7E:27:31",
			wantErr: true,
		},
		{
			name:    "mixed separators colon and dash",
			input:   "D7:A7-A0:FB:5D:7E:27:31:D7:A7:A0:FB:5D:7E:27:31:D7:A7:A0:FB:5D:7E:27:31:D7:A7:A0:FB:5D:7E:27:31",
			wantErr: true,
		},
		{
			name:    "trailing separator",
			input:   "D7:A7:A0:FB:5D:7E:27:31:D7:A7:A0:FB:5D:7E:27:31:D7:A7:A0:FB:5D:7E:27:31:D7:A7:A0:FB:5D:7E:27:31:",
			wantErr: true,
		},
		{
			name:    "leading separator",
			input:   ":D7:A7:A0:FB:5D:7E:27:31:D7:A7:A0:FB:5D:7E:27:31:D7:A7:A0:FB:5D:7E:27:31:D7:A7:A0:FB:5D:7E:27:31",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFingerprint(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseFingerprint(%q) expected error, got %q", tt.input, got.String())
				}
				return
			}
			if err != nil {
				t.Errorf("ParseFingerprint(%q) unexpected error: %v", tt.input, err)
				return
			}
			if got.String() != tt.want {
				t.Errorf("ParseFingerprint(%q).String() = %q, want %q", tt.input, got.String(), tt.want)
			}
		})
	}
}

func TestFingerprintTruncate(t *testing.T) {
	fp, err := ParseFingerprint(validSHA256)
	if err != nil {
		t.Fatalf("ParseFingerprint: %v", err)
	}

	tests := []struct {
		name     string
		octets   int
		expected string
	}{
		{
			name:     "truncate to 4 octets",
			octets:   4,
			expected: "D7:A7:A0:FB...",
		},
		{
			name:     "truncate to 2 octets",
			octets:   2,
			expected: "D7:A7...",
		},
		{
			name:     "truncate to 32 (full length)",
			octets:   32,
			expected: validSHA256Formatted,
		},
		{
			name:     "truncate to more than 32",
			octets:   100,
			expected: validSHA256Formatted,
		},
		{
			name:     "truncate to 0",
			octets:   0,
			expected: "",
		},
		{
			name:     "truncate to negative",
			octets:   -1,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := fp.Truncate(tt.octets)
			if result != tt.expected {
				t.Errorf("Fingerprint.Truncate(%d) = %q, want %q", tt.octets, result, tt.expected)
			}
		})
	}
}

func TestFingerprintFromBytes(t *testing.T) {
	bytes := make([]byte, 32)
	for i := range bytes {
		bytes[i] = byte(i)
	}

	fp := FingerprintFromBytes(bytes)
	expected := "00:01:02:03:04:05:06:07:08:09:0A:0B:0C:0D:0E:0F:10:11:12:13:14:15:16:17:18:19:1A:1B:1C:1D:1E:1F"
	if fp.String() != expected {
		t.Errorf("FingerprintFromBytes.String() = %q, want %q", fp.String(), expected)
	}
}

func TestFingerprintFromCert(t *testing.T) {
	cert, _ := testutil.NewCA(t, "Fingerprint Test Root")

	fp := FingerprintFromCert(cert)

	if fp.IsZero() {
		t.Error("FingerprintFromCert returned zero fingerprint")
	}

	// String should be in correct format
	str := fp.String()
	if len(str) != 95 { // 32 pairs * 2 + 31 colons = 95
		t.Errorf("FingerprintFromCert.String() length = %d, want 95", len(str))
	}
}
