// Package secrets stores the site password in the OS keychain, with an
// environment-variable fallback for headless machines without one.
package secrets

import (
	"errors"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService groups the app's secrets in the OS keychain.
	KeyringService = "autopilot"

	// PasswordEnv is consulted when the keychain has no entry for the
	// account.
	PasswordEnv = "DICE_PASSWORD"
)

// GetPassword returns the password for the given account email, preferring
// the keychain over the environment.
func GetPassword(account string) (string, error) {
	if strings.TrimSpace(account) != "" {
		pw, err := keyring.Get(KeyringService, account)
		if err == nil && strings.TrimSpace(pw) != "" {
			return pw, nil
		}
	}

	if pw := strings.TrimSpace(os.Getenv(PasswordEnv)); pw != "" {
		return pw, nil
	}

	return "", errors.New("password not found (set it in the keychain or via " + PasswordEnv + ")")
}

// SetPassword stores the password for the account in the keychain.
func SetPassword(account, password string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("account name is empty")
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password is empty")
	}
	return keyring.Set(KeyringService, account, password)
}

// DeletePassword removes the account's password from the keychain.
func DeletePassword(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("account name is empty")
	}
	return keyring.Delete(KeyringService, account)
}
