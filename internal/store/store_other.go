//go:build !windows

package store

import (
	"os"
	"path/filepath"
)

// defaultStoreDir is the root of the file-backed store tree off Windows.
func defaultStoreDir() string {
	if dir := os.Getenv("PEERVET_STORE_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".peervet", "stores")
}

// NativeProvider returns the platform certificate store provider. Off
// Windows there is no system personal store; a file-backed tree under the
// user's home directory (or PEERVET_STORE_DIR) stands in for it.
func NativeProvider() Provider {
	return FileProvider{Dir: defaultStoreDir()}
}
