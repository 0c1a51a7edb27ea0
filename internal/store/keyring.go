package store

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const serviceName = "mailstate"

// ErrNoPassword is returned when the keyring holds no master password.
var ErrNoPassword = errors.New("no master password in keyring")

// KeyringPasswordStore keeps the settings master password in the OS keyring
// (macOS Keychain, Windows Credential Manager, or Linux Secret Service).
type KeyringPasswordStore struct {
	user string
}

// NewKeyringPasswordStore returns a store keyed by the data directory, so
// separate data directories keep separate passwords.
func NewKeyringPasswordStore(dataDir string) *KeyringPasswordStore {
	return &KeyringPasswordStore{user: dataDir}
}

// SavePassword stores the master password.
func (k *KeyringPasswordStore) SavePassword(password string) error {
	if err := keyring.Set(serviceName, k.user, password); err != nil {
		return fmt.Errorf("failed to save password to keyring: %w", err)
	}
	return nil
}

// LoadPassword returns the stored master password, or ErrNoPassword.
func (k *KeyringPasswordStore) LoadPassword() (string, error) {
	password, err := keyring.Get(serviceName, k.user)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNoPassword
	}
	if err != nil {
		return "", fmt.Errorf("failed to load password from keyring: %w", err)
	}
	return password, nil
}

// DeletePassword removes the stored master password. Removing a password
// that is not there is not an error.
func (k *KeyringPasswordStore) DeletePassword() error {
	err := keyring.Delete(serviceName, k.user)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete password from keyring: %w", err)
	}
	return nil
}
