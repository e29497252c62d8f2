package secret

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

const keychainService = "mushaf-storage"

// KeychainStore implements SecretStore using the macOS Keychain
// via the `security` CLI tool. Items are added with `security
// add-generic-password -s mushaf-storage`.
type KeychainStore struct {
	service string
}

func NewKeychainStore() *KeychainStore {
	return &KeychainStore{service: keychainService}
}

// Get returns nil, nil when the item does not exist.
func (k *KeychainStore) Get(key string) ([]byte, error) {
	cmd := exec.Command("security", "find-generic-password",
		"-a", key,
		"-s", k.service,
		"-w",
	)
	out, err := cmd.Output()
	if err != nil {
		// exit code 44: item not found
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 44 {
			return nil, nil
		}
		return nil, fmt.Errorf("keychain get %s: %w", key, err)
	}
	return []byte(strings.TrimSpace(string(out))), nil
}

