//go:build windows

package store

import (
	"crypto/x509"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// CryptoAPI system-store parameters (wincrypt.h).
const (
	certStoreProvSystemW        = 10
	certSystemStoreCurrentUser  = 1 << 16
	certSystemStoreLocalMachine = 2 << 16
	certStoreReadonlyFlag       = 0x00008000
	certStoreOpenExistingFlag   = 0x00004000
)

// SystemProvider opens stores through the Windows certificate store API.
type SystemProvider struct{}

// NativeProvider returns the platform certificate store provider.
func NativeProvider() Provider {
	return SystemProvider{}
}

// Open implements Provider.
func (SystemProvider) Open(name string, loc Location) (*Handle, error) {
	locFlag := uint32(certSystemStoreCurrentUser)
	if loc == LocalMachine {
		locFlag = certSystemStoreLocalMachine
	}

	namePtr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, fmt.Errorf("store name %q: %w", name, err)
	}

	h, err := windows.CertOpenStore(
		certStoreProvSystemW,
		0,
		0,
		locFlag|certStoreReadonlyFlag|certStoreOpenExistingFlag,
		uintptr(unsafe.Pointer(namePtr)),
	)
	if err != nil {
		return nil, fmt.Errorf("open store %s (%s): %w", name, loc, err)
	}

	certs, err := enumStore(h)
	if err != nil {
		_ = windows.CertCloseStore(h, 0)
		return nil, err
	}

	return NewHandle(certs, func() error {
		return windows.CertCloseStore(h, 0)
	}), nil
}

// enumStore walks every certificate context in the opened store, copying the
// encoded certificates out before the contexts are freed.
func enumStore(h windows.Handle) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate
	var ctx *windows.CertContext

	for {
		var err error
		ctx, err = windows.CertEnumCertificatesInStore(h, ctx)
		if err != nil {
			// Enumeration past the last context reports an error; the
			// contexts seen so far are the store's contents.
			break
		}
		if ctx == nil {
			break
		}

		der := make([]byte, ctx.Length)
		copy(der, unsafe.Slice(ctx.EncodedCert, ctx.Length))

		cert, err := x509.ParseCertificate(der)
		if err != nil {
			// Skip undecodable entries rather than failing the open.
			continue
		}
		certs = append(certs, cert)
	}

	return certs, nil
}
