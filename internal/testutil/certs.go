// Package testutil provides helpers shared by package tests.
package testutil

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/binary"
	"encoding/pem"
	"math/big"
	"testing"
	"time"
)

// NewCA creates a self-signed CA certificate.
func NewCA(tb testing.TB, cn string) (*x509.Certificate, *rsa.PrivateKey) {
	tb.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		tb.Fatal(err)
	}

	template := &x509.Certificate{
		SerialNumber:          big.NewInt(time.Now().UnixNano()),
		Subject:               pkix.Name{CommonName: cn},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		IsCA:                  true,
		BasicConstraintsValid: true,
	}

	return createCert(tb, template, template, key, key)
}

// NewIntermediate creates an intermediate CA certificate signed by parent.
func NewIntermediate(tb testing.TB, cn string, parent *x509.Certificate, parentKey *rsa.PrivateKey) (*x509.Certificate, *rsa.PrivateKey) {
	tb.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		tb.Fatal(err)
	}

	template := &x509.Certificate{
		SerialNumber:          big.NewInt(time.Now().UnixNano()),
		Subject:               pkix.Name{CommonName: cn},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		IsCA:                  true,
		BasicConstraintsValid: true,
	}

	return createCert(tb, template, parent, key, parentKey)
}

// NewLeaf creates an end-entity certificate signed by the given CA.
// dnsNames become the certificate's SANs; extUsages defaults to both server
// and client auth when empty.
func NewLeaf(tb testing.TB, cn string, dnsNames []string, ca *x509.Certificate, caKey *rsa.PrivateKey, extUsages ...x509.ExtKeyUsage) (*x509.Certificate, *rsa.PrivateKey) {
	tb.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		tb.Fatal(err)
	}

	if len(extUsages) == 0 {
		extUsages = []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth}
	}

	template := &x509.Certificate{
		SerialNumber: big.NewInt(time.Now().UnixNano()),
		Subject:      pkix.Name{CommonName: cn},
		DNSNames:     dnsNames,
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  extUsages,
	}

	return createCert(tb, template, ca, key, caKey)
}

func createCert(tb testing.TB, template, parent *x509.Certificate, key, parentKey *rsa.PrivateKey) (*x509.Certificate, *rsa.PrivateKey) {
	tb.Helper()

	certDER, err := x509.CreateCertificate(rand.Reader, template, parent, &key.PublicKey, parentKey)
	if err != nil {
		tb.Fatal(err)
	}

	cert, err := x509.ParseCertificate(certDER)
	if err != nil {
		tb.Fatal(err)
	}

	return cert, key
}

// EncodePEM returns the PEM encoding of the certificate.
func EncodePEM(cert *x509.Certificate) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw})
}

// EncodeDN returns the DER encoding of a distinguished name.
func EncodeDN(tb testing.TB, name pkix.Name) []byte {
	tb.Helper()

	der, err := asn1.Marshal(name.ToRDNSequence())
	if err != nil {
		tb.Fatal(err)
	}
	return der
}

// PackIssuers packs DER-encoded distinguished names into the length-prefixed
// wire layout peers advertise their acceptable CAs in.
func PackIssuers(entries ...[]byte) []byte {
	var buf []byte
	for _, e := range entries {
		var prefix [2]byte
		binary.BigEndian.PutUint16(prefix[:], uint16(len(e)))
		buf = append(buf, prefix[:]...)
		buf = append(buf, e...)
	}
	return buf
}
