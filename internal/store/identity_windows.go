//go:build windows

package store

import (
	"errors"
	"log/slog"
	"runtime"

	"golang.org/x/sys/windows"
)

// processIdentity reverts the calling thread to the process token via
// RevertToSelf, keeping the impersonation token so it can be reinstated.
var processIdentity identitySwitcher = windowsSwitcher{}

type windowsSwitcher struct{}

func (windowsSwitcher) revert() (func(), error) {
	// The token juggling below is per-thread state; the goroutine must not
	// migrate between revert and restore.
	runtime.LockOSThread()

	var token windows.Token
	err := windows.OpenThreadToken(windows.CurrentThread(),
		windows.TOKEN_IMPERSONATE|windows.TOKEN_QUERY, true, &token)
	if errors.Is(err, windows.ERROR_NO_TOKEN) {
		// Not impersonating: already the process identity.
		runtime.UnlockOSThread()
		return func() {}, nil
	}
	if err != nil {
		runtime.UnlockOSThread()
		return nil, err
	}

	if err := windows.RevertToSelf(); err != nil {
		token.Close()
		runtime.UnlockOSThread()
		return nil, err
	}

	return func() {
		thread := windows.CurrentThread()
		if err := windows.SetThreadToken(&thread, token); err != nil {
			// The thread keeps running as the process identity.
			slog.Warn("reinstate thread impersonation token", "error", err)
		}
		token.Close()
		runtime.UnlockOSThread()
	}, nil
}
