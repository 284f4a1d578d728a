// Package chain builds certification chains from a leaf certificate toward a
// trust anchor. A build has exactly three outcomes: a trusted chain, an
// untrusted (possibly partial) chain, or an engine fault reported as an
// *EngineError - untrusted is an ordinary result, never an error.
package chain

import (
	"crypto/x509"
	"sync"
)

// Chain is an ordered sequence of certificates from a leaf toward a trust
// anchor, together with the outcome of the build. The underlying build
// resource is released through Close, which must run on every path that
// obtained the chain.
type Chain struct {
	certs   []*x509.Certificate
	trusted bool
	release func()
	once    sync.Once
}

// New creates a chain over certs (leaf first). The release hook, if any,
// runs exactly once when the chain is closed.
func New(certs []*x509.Certificate, trusted bool, release func()) *Chain {
	return &Chain{certs: certs, trusted: trusted, release: release}
}

// Certs returns the chain's certificates, leaf first.
func (c *Chain) Certs() []*x509.Certificate {
	return c.certs
}

// Leaf returns the end-entity certificate, or nil for an empty chain.
func (c *Chain) Leaf() *x509.Certificate {
	if len(c.certs) == 0 {
		return nil
	}
	return c.certs[0]
}

// Anchor returns the last certificate in the chain. For a trusted chain this
// is the trust anchor; for a partial chain it is merely the furthest issuer
// reached.
func (c *Chain) Anchor() *x509.Certificate {
	if len(c.certs) == 0 {
		return nil
	}
	return c.certs[len(c.certs)-1]
}

// Trusted reports whether the build reached a trust anchor.
func (c *Chain) Trusted() bool {
	return c.trusted
}

// Close releases the chain's build resource. Safe to call more than once;
// the release hook runs at most once.
func (c *Chain) Close() {
	c.once.Do(func() {
		if c.release != nil {
			c.release()
		}
	})
}
