package chain

import (
	"crypto/x509"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ivoronin/peervet/internal/anchor"
)

// Engine fault codes carried by EngineError.
const (
	// CodeNoLeaf: Build was invoked without a leaf certificate.
	CodeNoLeaf = iota + 1
	// CodeNoAnchors: no trust anchors could be loaded for the build.
	CodeNoAnchors
)

// EngineError reports that the chain engine itself failed to produce a usable
// chain object. It is a hard fault of the validator, distinct from the
// ordinary "chain did not reach an anchor" outcome.
type EngineError struct {
	Code int
	Err  error
}

func (e *EngineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("chain engine fault (code %d): %v", e.Code, e.Err)
	}
	return fmt.Sprintf("chain engine fault (code %d)", e.Code)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// Builder constructs a certification chain rooted at a leaf certificate.
// A non-nil error is always an *EngineError; trust failures are reported
// through the returned chain's Trusted flag instead.
type Builder interface {
	Build(leaf *x509.Certificate) (*Chain, error)
}

// PoolBuilder builds chains by verifying the leaf against configured anchor
// and intermediate pools. The zero value verifies against the system roots.
type PoolBuilder struct {
	// Roots holds the trust anchors. Nil means the system pool.
	Roots *x509.CertPool

	// Intermediates are the peer-presented issuer certificates available
	// for path building.
	Intermediates []*x509.Certificate

	// Distrust lists anchors that must not be trusted (or only until a
	// given date), typically loaded from a Microsoft authroot CTL.
	Distrust anchor.DistrustSet

	// Now supplies the verification time. Nil means time.Now.
	Now func() time.Time

	active atomic.Int64
}

// Build verifies leaf against the configured pools. The chain must be closed
// by the caller on every path.
func (b *PoolBuilder) Build(leaf *x509.Certificate) (*Chain, error) {
	if leaf == nil {
		return nil, &EngineError{Code: CodeNoLeaf, Err: errors.New("no leaf certificate")}
	}

	roots := b.Roots
	if roots == nil {
		var err error
		roots, err = anchor.System()
		if err != nil {
			return nil, &EngineError{Code: CodeNoAnchors, Err: err}
		}
	}

	intermediates := x509.NewCertPool()
	for _, cert := range b.Intermediates {
		intermediates.AddCert(cert)
	}

	now := time.Now
	if b.Now != nil {
		now = b.Now
	}

	// Usage checks are disabled so that chain trust and policy checks stay
	// independently reportable.
	chains, err := leaf.Verify(x509.VerifyOptions{
		Roots:         roots,
		Intermediates: intermediates,
		CurrentTime:   now(),
		KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageAny},
	})
	if err != nil {
		// A normal trust failure: hand back the partial path assembled from
		// the presented certificates.
		partial := append([]*x509.Certificate{leaf}, b.Intermediates...)
		return b.newChain(partial, false), nil
	}

	built := chains[0]
	if b.distrusted(built, now()) {
		return b.newChain(built, false), nil
	}

	return b.newChain(built, true), nil
}

// distrusted reports whether the built chain terminates at a distrusted
// anchor, or at one whose trust cutoff excludes the leaf.
func (b *PoolBuilder) distrusted(built []*x509.Certificate, now time.Time) bool {
	if len(built) == 0 {
		return false
	}

	d := b.Distrust.For(anchor.FingerprintFromCert(built[len(built)-1]))
	if d.DistrustDate != nil && now.After(*d.DistrustDate) {
		return true
	}
	if d.NotBeforeMax != nil && built[0].NotBefore.After(*d.NotBeforeMax) {
		return true
	}
	return false
}

func (b *PoolBuilder) newChain(certs []*x509.Certificate, trusted bool) *Chain {
	b.active.Add(1)
	return New(certs, trusted, func() { b.active.Add(-1) })
}

// Active returns the number of chains built by this builder that have not
// been closed yet.
func (b *PoolBuilder) Active() int64 {
	return b.active.Load()
}
