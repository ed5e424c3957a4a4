package keys

import (
	"errors"

	"github.com/zalando/go-keyring"
)

const DefaultKeyringService = "folio"

// KeyringStore keeps tokens in the system keyring, one entry per store URL.
type KeyringStore struct {
	Service string
}

func (s *KeyringStore) Get(remote string) (string, error) {
	val, err := keyring.Get(s.service(), normalizeRemote(remote))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrTokenNotFound
		}
		return "", err
	}
	return val, nil
}

func (s *KeyringStore) Put(remote, token string) error {
	return keyring.Set(s.service(), normalizeRemote(remote), token)
}

func (s *KeyringStore) Delete(remote string) error {
	err := keyring.Delete(s.service(), normalizeRemote(remote))
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

func (s *KeyringStore) service() string {
	if s != nil && s.Service != "" {
		return s.Service
	}
	return DefaultKeyringService
}

// KeyringAvailable reports whether a system keyring backend appears supported.
func KeyringAvailable() bool {
	_, err := keyring.Get(DefaultKeyringService, "_probe_")
	if err == nil || errors.Is(err, keyring.ErrNotFound) {
		return true
	}
	return !errors.Is(err, keyring.ErrUnsupportedPlatform)
}
