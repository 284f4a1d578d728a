package session

import (
	"crypto/x509"
	"fmt"
)

// RemoteCertificate extracts the peer's leaf certificate from sess, and the
// full presented collection when wantCollection is set. A nil session or a
// session without a peer certificate yields (nil, nil, nil): absence is an
// ordinary outcome, not an error. The certificate context is released before
// returning on every path.
func RemoteCertificate(sess Session, wantCollection bool) (*x509.Certificate, []*x509.Certificate, error) {
	if sess == nil {
		return nil, nil, nil
	}

	ctx, err := sess.RemoteContext()
	if err != nil {
		return nil, nil, fmt.Errorf("query remote certificate context: %w", err)
	}
	if ctx == nil {
		return nil, nil, nil
	}
	defer ctx.Close()

	leaf, err := x509.ParseCertificate(ctx.Leaf())
	if err != nil {
		return nil, nil, fmt.Errorf("parse remote certificate: %w", err)
	}

	if !wantCollection {
		return leaf, nil, nil
	}

	raw := ctx.Collection()
	collection := make([]*x509.Certificate, 0, len(raw))
	for i, der := range raw {
		cert, err := x509.ParseCertificate(der)
		if err != nil {
			return nil, nil, fmt.Errorf("parse remote certificate %d of %d: %w", i+1, len(raw), err)
		}
		collection = append(collection, cert)
	}

	return leaf, collection, nil
}
