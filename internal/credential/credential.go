// Package credential stores provider API keys in the OS keyring, falling back
// to a 0600 JSON file when no keyring backend is usable.
package credential

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/99designs/keyring"
)

// ErrNotFound is returned when no key is stored for a provider.
var ErrNotFound = errors.New("credential not found")

// geminiKeyPrefix is the prefix Google AI Studio keys start with.
const geminiKeyPrefix = "AIzaSy"

// Store handles secure credential storage
type Store struct {
	ring         keyring.Keyring
	fallbackPath string
	mu           sync.RWMutex
}

// Open opens the OS keyring for serviceName. When that fails, only the
// fallback file in dataDir is used.
func Open(serviceName, dataDir string) *Store {
	ring, err := keyring.Open(keyring.Config{
		ServiceName:              serviceName,
		KeychainTrustApplication: true,
	})
	if err != nil {
		ring = nil
	}
	return New(ring, filepath.Join(dataDir, "secrets.json"))
}

// New returns a Store over ring (which may be nil) and fallbackPath.
func New(ring keyring.Keyring, fallbackPath string) *Store {
	return &Store{ring: ring, fallbackPath: fallbackPath}
}

// KeyName returns the item key used for provider.
func KeyName(provider string) string {
	return strings.ToLower(provider) + "_api_key"
}

// Set stores a secret in the OS keyring or fallback file
func (s *Store) Set(provider, value string) error {
	key := KeyName(provider)
	if s.ring != nil {
		err := s.ring.Set(keyring.Item{
			Key:         key,
			Data:        []byte(value),
			Label:       "ClippyAI " + provider + " API key",
			Description: "API key used by ClippyAI",
		})
		if err == nil {
			return nil
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	secrets, err := s.readFallback()
	if err != nil {
		return err
	}
	secrets[key] = value
	return s.writeFallback(secrets)
}

// Get retrieves a secret from the OS keyring or fallback file
func (s *Store) Get(provider string) (string, error) {
	key := KeyName(provider)
	if s.ring != nil {
		item, err := s.ring.Get(key)
		if err == nil {
			return string(item.Data), nil
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	secrets, err := s.readFallback()
	if err != nil {
		return "", err
	}
	if val, ok := secrets[key]; ok {
		return val, nil
	}
	return "", ErrNotFound
}

// Delete removes the secret from both the keyring and the fallback file.
// It returns ErrNotFound when neither held it.
func (s *Store) Delete(provider string) error {
	key := KeyName(provider)
	removed := false
	if s.ring != nil {
		if err := s.ring.Remove(key); err == nil {
			removed = true
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	secrets, err := s.readFallback()
	if err != nil {
		return err
	}
	if _, ok := secrets[key]; ok {
		delete(secrets, key)
		if err := s.writeFallback(secrets); err != nil {
			return err
		}
		removed = true
	}

	if !removed {
		return ErrNotFound
	}
	return nil
}

func (s *Store) readFallback() (map[string]string, error) {
	secrets := make(map[string]string)
	data, err := os.ReadFile(s.fallbackPath)
	if err != nil {
		if os.IsNotExist(err) {
			return secrets, nil
		}
		return nil, fmt.Errorf("reading secrets: %w", err)
	}
	if err := json.Unmarshal(data, &secrets); err != nil {
		return nil, fmt.Errorf("parsing secrets: %w", err)
	}
	return secrets, nil
}

func (s *Store) writeFallback(secrets map[string]string) error {
	data, err := json.MarshalIndent(secrets, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling secrets: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.fallbackPath), 0700); err != nil {
		return fmt.Errorf("creating secrets directory: %w", err)
	}
	return os.WriteFile(s.fallbackPath, data, 0600)
}

// LooksLikeGeminiKey reports whether key has the usual Gemini key prefix.
// It is advisory only.
func LooksLikeGeminiKey(key string) bool {
	return strings.HasPrefix(strings.TrimSpace(key), geminiKeyPrefix)
}

// Mask shows only the first and last four characters of a secret.
func Mask(secret string) string {
	if len(secret) <= 8 {
		return "********"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
