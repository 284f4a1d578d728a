package trust

import (
	"crypto/x509"

	"github.com/ivoronin/peervet/internal/chain"
	"github.com/ivoronin/peervet/internal/session"
)

// Validator reduces a peer certificate to a set of trust errors. Validators
// hold no per-call state; a single Validator may be used from multiple
// goroutines concurrently.
type Validator struct {
	// Engine builds certification chains. Required.
	Engine chain.Builder

	// Policy runs the host-name check. Nil means HostnamePolicy.
	Policy Policy
}

// Validate builds a chain for leaf and reduces the findings into a
// TrustErrors set.
//
// An engine fault (the engine could not produce a usable chain object at
// all) is returned as a hard *chain.EngineError and is never folded into the
// trust errors: it means the validator cannot render a decision, not that
// the peer is untrusted. A chain that merely fails to reach an anchor
// records ChainErrors and, when checkName is set, is still checked for a
// host-name match - partial chains included - so callers can tell "wrong
// host" apart from "untrusted issuer". The chain's build resource is
// released before returning on every path.
func (v *Validator) Validate(leaf *x509.Certificate, checkName bool, role Role, host string) (TrustErrors, error) {
	ch, err := v.Engine.Build(leaf)
	if err != nil {
		return None, err
	}
	defer ch.Close()

	errs := None
	if !ch.Trusted() {
		errs.Add(ChainErrors)
	}

	if checkName {
		if v.matchName(ch, host, role) == PolicyNameMismatch {
			errs.Add(NameMismatch)
		}
	}

	return errs, nil
}

// ValidateRemote extracts the peer's leaf certificate from sess and
// validates it. A session without a peer certificate yields NotAvailable.
func (v *Validator) ValidateRemote(sess session.Session, checkName bool, role Role, host string) (TrustErrors, error) {
	leaf, _, err := session.RemoteCertificate(sess, false)
	if err != nil {
		return None, err
	}
	if leaf == nil {
		return NotAvailable, nil
	}
	return v.Validate(leaf, checkName, role, host)
}

// matchName runs the host-name policy check over a built chain. The request
// authenticates the party opposite the validator's role and disables every
// rule except the name binding; only a name-mismatch status is meaningful to
// the caller.
func (v *Validator) matchName(ch *chain.Chain, host string, role Role) PolicyStatus {
	usage := x509.ExtKeyUsageClientAuth
	if role == RoleClient {
		usage = x509.ExtKeyUsageServerAuth
	}

	policy := v.Policy
	if policy == nil {
		policy = HostnamePolicy{}
	}

	return policy.Verify(ch, PolicyRequest{
		Host:     host,
		Usage:    usage,
		NameOnly: true,
	})
}
