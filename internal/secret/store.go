// Package secret looks up the credentials of remote storage backends.
package secret

import "runtime"

// SecretStore looks up sensitive data such as database passwords. macOS
// uses the Keychain; elsewhere secrets come from the environment.
type SecretStore interface {
	// Get retrieves the secret value for the given key.
	// Returns nil and a nil error if the key does not exist.
	Get(key string) ([]byte, error)
}

// Default returns the store for the current platform.
func Default() SecretStore {
	if runtime.GOOS == "darwin" {
		return NewKeychainStore()
	}
	return NewEnvStore("MUSHAF_SECRET_")
}
