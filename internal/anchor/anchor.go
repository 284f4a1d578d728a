// Package anchor loads trust anchors and distrust constraints for the
// chain-building engine.
package anchor

import (
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"time"

	"go.mozilla.org/pkcs7"
)

// certBlockType is the PEM block type accepted when loading bundles.
const certBlockType = "CERTIFICATE"

// LoadBundle reads trust anchors from path. The file may contain one or more
// PEM certificate blocks, a DER certificate, or a PKCS#7 (.p7b) bundle.
func LoadBundle(path string) ([]*x509.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bundle: %w", err)
	}

	certs, err := ParseBundle(data)
	if err != nil {
		return nil, fmt.Errorf("parse bundle %s: %w", path, err)
	}
	return certs, nil
}

// ParseBundle decodes certificates from raw bundle bytes, accepting PEM,
// DER, and PKCS#7 SignedData envelopes.
func ParseBundle(data []byte) ([]*x509.Certificate, error) {
	if block, _ := pem.Decode(data); block != nil {
		return parsePEM(data)
	}

	// DER: a single certificate or a concatenated sequence
	if certs, err := x509.ParseCertificates(data); err == nil {
		return certs, nil
	}

	// PKCS#7: degenerate SignedData carrying only certificates
	p7, err := pkcs7.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("not PEM, DER, or PKCS#7 certificate data")
	}
	if len(p7.Certificates) == 0 {
		return nil, fmt.Errorf("PKCS#7 bundle contains no certificates")
	}
	return p7.Certificates, nil
}

// parsePEM decodes every CERTIFICATE block in data.
func parsePEM(data []byte) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate
	for len(data) > 0 {
		block, rest := pem.Decode(data)
		if block == nil {
			break
		}
		data = rest
		if block.Type != certBlockType {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parse certificate: %w", err)
		}
		certs = append(certs, cert)
	}
	if len(certs) == 0 {
		return nil, fmt.Errorf("no certificates found in PEM data")
	}
	return certs, nil
}

// Pool builds a certificate pool from the given anchors.
func Pool(certs []*x509.Certificate) *x509.CertPool {
	pool := x509.NewCertPool()
	for _, cert := range certs {
		pool.AddCert(cert)
	}
	return pool
}

// System returns the platform's root certificate pool.
func System() (*x509.CertPool, error) {
	return x509.SystemCertPool()
}

// Distrust holds date-based constraints under which an otherwise valid
// anchor must not be trusted.
type Distrust struct {
	NotBeforeMax *time.Time // leaf certs issued after this date are not trusted
	DistrustDate *time.Time // the anchor is completely distrusted after this date
}

// IsEmpty returns true if no constraints are set.
func (d Distrust) IsEmpty() bool {
	return d.NotBeforeMax == nil && d.DistrustDate == nil
}

// DistrustSet maps anchor fingerprints to their distrust constraints.
type DistrustSet map[Fingerprint]Distrust

// For returns the constraints recorded for fp (empty if none).
func (s DistrustSet) For(fp Fingerprint) Distrust {
	if s == nil {
		return Distrust{}
	}
	return s[fp]
}
