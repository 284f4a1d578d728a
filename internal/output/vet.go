package output

import (
	"crypto/x509"
	"encoding/json"
	"time"

	"github.com/ivoronin/peervet/internal/anchor"
	"github.com/ivoronin/peervet/internal/trust"
)

// jsonTimeFormat is the ISO 8601 UTC timestamp format for JSON output.
// Uses literal 'Z' suffix since all times are UTC (via .UTC() call).
const jsonTimeFormat = "2006-01-02T15:04:05Z"

// Check is a single vet check outcome.
type Check struct {
	Name   string
	Passed bool
	Detail string
}

// VetReport holds the outcome of vetting one endpoint.
type VetReport struct {
	Endpoint    string
	Timestamp   time.Time
	ToolVersion string
	Protocol    string
	Leaf        *x509.Certificate
	Trust       trust.TrustErrors
	Checks      []Check
	AllPassed   bool
}

// VetOutput implements Formatter for vet reports.
type VetOutput struct {
	Report *VetReport
}

// FormatText formats the vet report as a human-readable table.
func (v *VetOutput) FormatText() string {
	tw := NewTableWriter()
	tw.Header("CHECK", "RESULT", "DETAIL")

	for _, c := range v.Report.Checks {
		result := "FAIL"
		if c.Passed {
			result = "PASS"
		}
		detail := c.Detail
		if detail == "" {
			detail = "-"
		}
		tw.Row(c.Name, result, detail)
	}

	return tw.String()
}

// FormatJSON formats the vet report as JSON.
func (v *VetOutput) FormatJSON() ([]byte, error) {
	report := v.Report

	jr := jsonReport{
		Endpoint:    report.Endpoint,
		Timestamp:   report.Timestamp.UTC().Format(jsonTimeFormat),
		ToolVersion: report.ToolVersion,
		Protocol:    report.Protocol,
		TrustErrors: report.Trust.String(),
		AllPassed:   report.AllPassed,
		Checks:      make([]jsonCheck, len(report.Checks)),
	}

	// Certificate info
	if report.Leaf != nil {
		cert := report.Leaf
		jr.Certificate = &jsonCert{
			Subject:           cert.Subject.CommonName,
			Issuer:            cert.Issuer.CommonName,
			Expires:           cert.NotAfter.UTC().Format(jsonTimeFormat),
			FingerprintSHA256: anchor.FingerprintFromCert(cert).String(),
		}
	}

	for i, c := range report.Checks {
		jr.Checks[i] = jsonCheck{
			Name:   c.Name,
			Passed: c.Passed,
			Detail: c.Detail,
		}
	}

	return json.MarshalIndent(jr, "", "  ")
}

// jsonReport is the JSON output structure.
type jsonReport struct {
	Endpoint    string      `json:"endpoint"`
	Timestamp   string      `json:"timestamp"`
	ToolVersion string      `json:"tool_version"`
	Protocol    string      `json:"protocol,omitempty"`
	Certificate *jsonCert   `json:"certificate,omitempty"`
	TrustErrors string      `json:"trust_errors"`
	Checks      []jsonCheck `json:"checks"`
	AllPassed   bool        `json:"all_passed"`
}

type jsonCert struct {
	Subject           string `json:"subject"`
	Issuer            string `json:"issuer"`
	Expires           string `json:"expires"`
	FingerprintSHA256 string `json:"fingerprint_sha256,omitempty"`
}

type jsonCheck struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}
