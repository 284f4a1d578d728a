//go:build !windows

package store

// processIdentity is a no-op off Windows: POSIX credentials are per process,
// so the calling thread already carries the process identity.
var processIdentity identitySwitcher = noopSwitcher{}

type noopSwitcher struct{}

func (noopSwitcher) revert() (func(), error) {
	return func() {}, nil
}
