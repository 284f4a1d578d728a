// Package store opens the local certificate store for client-certificate
// selection. Opening always happens under the process identity, even when
// the calling thread is impersonating another one.
package store

import (
	"crypto/x509"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ivoronin/peervet/internal/anchor"
)

// Location selects the scope of the certificate store.
type Location int

const (
	// CurrentUser is the calling user's store.
	CurrentUser Location = iota
	// LocalMachine is the machine-wide store.
	LocalMachine
)

func (l Location) String() string {
	if l == LocalMachine {
		return "local_machine"
	}
	return "current_user"
}

// personalStore is the store holding the user's own certificates ("MY" in
// CryptoAPI terms).
const personalStore = "MY"

// Provider opens a named certificate store read-only.
type Provider interface {
	Open(name string, loc Location) (*Handle, error)
}

// Handle is a scoped, read-only view of an opened certificate store.
// Release it with Close when done.
type Handle struct {
	certs []*x509.Certificate
	close func() error
	once  sync.Once
}

// NewHandle wraps the certificates enumerated from a store. The close hook,
// if any, runs exactly once.
func NewHandle(certs []*x509.Certificate, close func() error) *Handle {
	return &Handle{certs: certs, close: close}
}

// Certificates returns the certificates in the store.
func (h *Handle) Certificates() []*x509.Certificate {
	return h.certs
}

// SelectByIssuer returns the certificates whose issuer matches one of the
// advertised acceptable issuer names (RFC 2253 form, as produced by the
// issuer-list extractor). An empty advertised list means every certificate
// is acceptable.
func (h *Handle) SelectByIssuer(names []string) []*x509.Certificate {
	if len(names) == 0 {
		return h.certs
	}

	acceptable := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name != "" {
			acceptable[name] = struct{}{}
		}
	}

	var selected []*x509.Certificate
	for _, cert := range h.certs {
		if _, ok := acceptable[cert.Issuer.String()]; ok {
			selected = append(selected, cert)
		}
	}
	return selected
}

// Close releases the store handle. Safe to call more than once.
func (h *Handle) Close() error {
	var err error
	h.once.Do(func() {
		if h.close != nil {
			err = h.close()
		}
	})
	return err
}

// OpenPersonalStore opens the personal certificate store at loc through p,
// read-only, under the process identity. If the calling thread is currently
// impersonating, the impersonation is suspended only for the duration of the
// open and restored afterwards, whether or not the open succeeds. Errors
// from the open itself propagate unmodified.
func OpenPersonalStore(p Provider, loc Location) (*Handle, error) {
	var h *Handle
	err := asProcessIdentity(processIdentity, func() error {
		var err error
		h, err = p.Open(personalStore, loc)
		return err
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

// FileProvider serves certificate stores from a directory tree:
// <Dir>/<location>/<store>/ holding PEM, DER, or PKCS#7 files. It is the
// portable store backend and the test double for the native one.
type FileProvider struct {
	Dir string
}

// Open implements Provider.
func (p FileProvider) Open(name string, loc Location) (*Handle, error) {
	dir := filepath.Join(p.Dir, loc.String(), strings.ToLower(name))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", name, err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	var certs []*x509.Certificate
	for _, file := range files {
		loaded, err := anchor.LoadBundle(filepath.Join(dir, file))
		if err != nil {
			return nil, fmt.Errorf("store %s: %w", name, err)
		}
		certs = append(certs, loaded...)
	}

	return NewHandle(certs, nil), nil
}
