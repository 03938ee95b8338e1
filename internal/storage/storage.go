// Package storage is the persistence adapter: scoped key to bytes storage
// where every Save atomically replaces the previous value.
package storage

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Load when no value exists for a key.
var ErrNotFound = errors.New("storage: key not found")

// Storage loads and saves opaque values by string key.
type Storage interface {
	// Load returns the value stored under key, or ErrNotFound.
	Load(key string) ([]byte, error)
	// Save replaces the value stored under key. A failed Save leaves the
	// previous value intact.
	Save(key string, data []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
	// Keys lists stored keys that start with prefix, sorted.
	Keys(prefix string) ([]string, error)
}

// ValidateKey rejects keys that cannot be stored safely on every backend.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("storage: empty key")
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return fmt.Errorf("storage: invalid key %q", key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return fmt.Errorf("storage: invalid key %q", key)
		}
	}
	return nil
}
