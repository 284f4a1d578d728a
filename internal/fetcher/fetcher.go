// Package fetcher establishes TLS sessions with remote peers.
package fetcher

import (
	"crypto/tls"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/ivoronin/peervet/internal/session"
	"github.com/ivoronin/peervet/internal/version"
)

// defaultTLSPort is the standard port for TLS connections.
const defaultTLSPort = "443"

// Peer is a completed TLS session with a remote endpoint.
type Peer struct {
	// Host is the endpoint without the port, used for name checking.
	Host string
	// Protocol is the negotiated TLS version, e.g. "1.3".
	Protocol string
	// Session exposes the peer's certificates and issuer list.
	Session session.Session
}

// Fetch connects to endpoint via TLS and returns the completed session.
// Endpoint can be "host" or "host:port" (default port 443). Certificate
// verification is disabled on the connection; trust is evaluated afterwards
// against the configured anchors.
func Fetch(endpoint string, timeout time.Duration) (*Peer, error) {
	host, addr := splitEndpoint(endpoint)

	// A server only sends its acceptable CA list when it requests a client
	// certificate; the callback records the request if one arrives.
	var cri *tls.CertificateRequestInfo

	dialer := &net.Dialer{Timeout: timeout}
	conn, err := tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{
		InsecureSkipVerify: true, //nolint:gosec // G402: Intentional - trust is evaluated against configured anchors
		GetClientCertificate: func(info *tls.CertificateRequestInfo) (*tls.Certificate, error) {
			cri = info
			return &tls.Certificate{}, nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("TLS connection failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	state := conn.ConnectionState()

	return &Peer{
		Host:     host,
		Protocol: version.FromTLS(state.Version),
		Session:  session.FromTLS(&state, cri),
	}, nil
}

// splitEndpoint normalizes an endpoint into the host used for name checking
// and the address to dial. Endpoints without a port get defaultTLSPort; IPv6
// literals work with or without brackets.
func splitEndpoint(endpoint string) (host, addr string) {
	host, _, err := net.SplitHostPort(endpoint)
	if err != nil {
		host = strings.Trim(endpoint, "[]")
		return host, net.JoinHostPort(host, defaultTLSPort)
	}
	return host, endpoint
}
