package trust

import (
	"crypto/x509"
	"errors"

	"github.com/ivoronin/peervet/internal/chain"
)

// Role states which side of the connection the validator is acting as.
// Validation always authenticates the opposite party: a server validates its
// client's identity and vice versa.
type Role int

const (
	// RoleServer: validating as a server, so the peer is a client.
	RoleServer Role = iota
	// RoleClient: validating as a client, so the peer is a server.
	RoleClient
)

func (r Role) String() string {
	if r == RoleClient {
		return "client"
	}
	return "server"
}

// PolicyStatus is the single status code produced by a policy check.
type PolicyStatus int

const (
	// PolicyOK: the chain satisfies the requested policy.
	PolicyOK PolicyStatus = iota
	// PolicyNameMismatch: the leaf does not match the requested host name.
	PolicyNameMismatch
	// PolicyCheckFailed: some other policy rule failed. The chain validator
	// ignores this status; chain-trust errors are detected separately.
	PolicyCheckFailed
)

// PolicyRequest describes a single policy check over a built chain.
// Build-only input: construct, pass to Verify, discard.
type PolicyRequest struct {
	// Host is the expected host name. Empty disables the name check.
	Host string

	// Usage is the extended key usage the authenticated party must allow.
	Usage x509.ExtKeyUsage

	// NameOnly disables every rule except the host-name binding, so that
	// chain-trust errors detected elsewhere are not double-counted.
	NameOnly bool
}

// Policy verifies a built chain against a policy request and reports a
// single status code.
type Policy interface {
	Verify(ch *chain.Chain, req PolicyRequest) PolicyStatus
}

// HostnamePolicy is the default policy primitive. It binds the chain's leaf
// to the requested host name, and checks the leaf's extended key usage when
// the request does not restrict itself to the name rule.
type HostnamePolicy struct{}

// Verify implements Policy.
func (HostnamePolicy) Verify(ch *chain.Chain, req PolicyRequest) PolicyStatus {
	leaf := ch.Leaf()
	if leaf == nil {
		return PolicyCheckFailed
	}

	if !req.NameOnly && !allowsUsage(leaf, req.Usage) {
		return PolicyCheckFailed
	}

	if req.Host == "" {
		return PolicyOK
	}

	if err := leaf.VerifyHostname(req.Host); err != nil {
		var hostnameErr x509.HostnameError
		if errors.As(err, &hostnameErr) {
			return PolicyNameMismatch
		}
		return PolicyCheckFailed
	}

	return PolicyOK
}

// allowsUsage reports whether the certificate permits the given extended key
// usage. No recorded usages means unrestricted.
func allowsUsage(cert *x509.Certificate, usage x509.ExtKeyUsage) bool {
	if len(cert.ExtKeyUsage) == 0 {
		return true
	}
	for _, u := range cert.ExtKeyUsage {
		if u == usage || u == x509.ExtKeyUsageAny {
			return true
		}
	}
	return false
}
