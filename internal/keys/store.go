// Package keys stores the bearer tokens used to reach template stores.
package keys

import (
	"errors"
	"strings"
)

// TokenStore maps a store URL to its bearer token.
type TokenStore interface {
	Get(remote string) (string, error)
	Put(remote, token string) error
	Delete(remote string) error
}

var ErrTokenNotFound = errors.New("token not found")

// ConfigStore keeps tokens in config-managed storage.
type ConfigStore struct {
	Tokens map[string]string
}

func (s *ConfigStore) Get(remote string) (string, error) {
	if s == nil || s.Tokens == nil {
		return "", ErrTokenNotFound
	}
	val, ok := s.Tokens[normalizeRemote(remote)]
	if !ok || val == "" {
		return "", ErrTokenNotFound
	}
	return val, nil
}

func (s *ConfigStore) Put(remote, token string) error {
	if s.Tokens == nil {
		s.Tokens = map[string]string{}
	}
	s.Tokens[normalizeRemote(remote)] = token
	return nil
}

func (s *ConfigStore) Delete(remote string) error {
	if s == nil || s.Tokens == nil {
		return nil
	}
	delete(s.Tokens, normalizeRemote(remote))
	return nil
}

// Lookup returns the token for remote, or "" when the store has none.
func Lookup(s TokenStore, remote string) (string, error) {
	tok, err := s.Get(remote)
	if errors.Is(err, ErrTokenNotFound) {
		return "", nil
	}
	return tok, err
}

func normalizeRemote(remote string) string {
	return strings.TrimRight(strings.TrimSpace(remote), "/")
}
