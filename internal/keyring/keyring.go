// Package keyring stores derived drive credentials in the desktop keyring
// (Secret Service on Linux). Only the SHA-256-derived password block is
// ever stored, never the raw passphrase.
package keyring

import (
	"encoding/base64"
	"errors"
	"fmt"

	zkeyring "github.com/zalando/go-keyring"
)

// DefaultService is the Secret Service attribute identifying our entries.
const DefaultService = "wdpass"

// ErrNotFound is returned when no credential is saved for a device.
var ErrNotFound = errors.New("no saved credential for device")

// Store saves and loads per-device credentials. SystemStore is the keyring
// implementation; tests use MemStore.
type Store interface {
	Save(identity string, block []byte) error
	Load(identity string) ([]byte, error)
	Delete(identity string) error
}

// SystemStore is backed by the OS keyring.
type SystemStore struct {
	// Service overrides the Secret Service name; empty means DefaultService.
	Service string
}

func (s *SystemStore) service() string {
	if s.Service != "" {
		return s.Service
	}
	return DefaultService
}

// Save stores the derived password block for the device identity.
func (s *SystemStore) Save(identity string, block []byte) error {
	encoded := base64.StdEncoding.EncodeToString(block)
	if err := zkeyring.Set(s.service(), identity, encoded); err != nil {
		return fmt.Errorf("save credential to keyring: %w", err)
	}
	return nil
}

// Load retrieves a previously saved password block.
func (s *SystemStore) Load(identity string) ([]byte, error) {
	encoded, err := zkeyring.Get(s.service(), identity)
	if err != nil {
		if errors.Is(err, zkeyring.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, identity)
		}
		return nil, fmt.Errorf("read credential from keyring: %w", err)
	}
	block, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("stored credential is corrupt: %w", err)
	}
	return block, nil
}

// Delete removes the saved credential for the device identity.
func (s *SystemStore) Delete(identity string) error {
	if err := zkeyring.Delete(s.service(), identity); err != nil {
		if errors.Is(err, zkeyring.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, identity)
		}
		return fmt.Errorf("delete credential from keyring: %w", err)
	}
	return nil
}

// MemStore is an in-memory Store for tests and the hotplug watcher's dry
// runs.
type MemStore struct {
	m map[string][]byte
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore { return &MemStore{m: map[string][]byte{}} }

func (s *MemStore) Save(identity string, block []byte) error {
	s.m[identity] = append([]byte{}, block...)
	return nil
}

func (s *MemStore) Load(identity string) ([]byte, error) {
	b, ok := s.m[identity]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, identity)
	}
	return append([]byte{}, b...), nil
}

func (s *MemStore) Delete(identity string) error {
	if _, ok := s.m[identity]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, identity)
	}
	delete(s.m, identity)
	return nil
}
