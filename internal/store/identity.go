package store

import "fmt"

// identitySwitcher reverts the calling thread to the process identity.
type identitySwitcher interface {
	// revert suspends the thread's impersonation, if any, and returns a
	// restore function that reinstates the prior identity. revert and
	// restore run on the same OS thread.
	revert() (restore func(), err error)
}

// asProcessIdentity runs fn with the calling thread reverted to the process
// identity. The prior impersonation state is restored on every exit path,
// including a failing fn; fn's error is returned unwrapped so open failures
// reach the caller unmodified.
func asProcessIdentity(sw identitySwitcher, fn func() error) error {
	restore, err := sw.revert()
	if err != nil {
		return fmt.Errorf("revert to process identity: %w", err)
	}
	defer restore()

	return fn()
}
