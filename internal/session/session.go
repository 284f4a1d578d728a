// Package session extracts peer certificate material from an established
// security session: the remote certificate (and the full presented
// collection) and the peer-advertised list of acceptable certificate
// issuers.
package session

import "sync"

// Session is the read-only view of a negotiated security session supplied by
// the handshake layer.
type Session interface {
	// RemoteContext returns the peer's certificate context, or nil when the
	// peer presented no certificate. The caller owns the returned context
	// and must close it.
	RemoteContext() (*Context, error)

	// IssuerList returns the raw issuer-list buffer the peer advertised
	// during the handshake: a packed sequence of length-prefixed DER
	// distinguished names. The release callback frees the buffer and must
	// be invoked exactly once after the caller is done with it.
	IssuerList() (buf []byte, release func(), err error)
}

// Context holds the peer's encoded certificate material for the duration of
// one extraction call.
type Context struct {
	leaf       []byte
	collection [][]byte
	release    func()
	once       sync.Once
}

// NewContext creates a context over the peer's DER-encoded leaf certificate
// and presented collection (leaf first). The release hook, if any, runs
// exactly once when the context is closed.
func NewContext(leaf []byte, collection [][]byte, release func()) *Context {
	return &Context{leaf: leaf, collection: collection, release: release}
}

// Leaf returns the DER encoding of the peer's end-entity certificate.
func (c *Context) Leaf() []byte {
	return c.leaf
}

// Collection returns the DER encodings of every certificate the peer
// presented, leaf first.
func (c *Context) Collection() [][]byte {
	return c.collection
}

// Close releases the context. Safe to call more than once; the release hook
// runs at most once.
func (c *Context) Close() {
	c.once.Do(func() {
		if c.release != nil {
			c.release()
		}
	})
}
