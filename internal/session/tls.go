package session

import (
	"crypto/tls"
	"encoding/binary"
)

// tlsSession adapts crypto/tls handshake results to the Session interface.
// The connection state supplies the remote certificate context; the
// certificate request info, when present, supplies the acceptable-issuer
// list a server advertised while asking for a client certificate.
type tlsSession struct {
	state *tls.ConnectionState
	cri   *tls.CertificateRequestInfo
}

// FromTLS wraps a completed handshake's state as a Session. Either argument
// may be nil: a nil state yields no remote certificate, a nil request info
// yields no issuer list.
func FromTLS(state *tls.ConnectionState, cri *tls.CertificateRequestInfo) Session {
	return &tlsSession{state: state, cri: cri}
}

func (s *tlsSession) RemoteContext() (*Context, error) {
	if s.state == nil || len(s.state.PeerCertificates) == 0 {
		return nil, nil
	}

	certs := s.state.PeerCertificates
	collection := make([][]byte, len(certs))
	for i, cert := range certs {
		collection[i] = cert.Raw
	}

	return NewContext(certs[0].Raw, collection, nil), nil
}

func (s *tlsSession) IssuerList() ([]byte, func(), error) {
	if s.cri == nil || len(s.cri.AcceptableCAs) == 0 {
		return nil, func() {}, nil
	}

	// Re-pack the acceptable CA names into the wire layout: each DER name
	// preceded by a big-endian uint16 length.
	size := 0
	for _, ca := range s.cri.AcceptableCAs {
		size += issuerLengthPrefixSize + len(ca)
	}

	buf := make([]byte, 0, size)
	for _, ca := range s.cri.AcceptableCAs {
		var prefix [issuerLengthPrefixSize]byte
		binary.BigEndian.PutUint16(prefix[:], uint16(len(ca)))
		buf = append(buf, prefix[:]...)
		buf = append(buf, ca...)
	}

	return buf, func() {}, nil
}
