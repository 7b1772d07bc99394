package credential

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/99designs/keyring"
)

func newFileKeyring(t *testing.T) keyring.Keyring {
	t.Helper()
	ring, err := keyring.Open(keyring.Config{
		ServiceName:      "clippyai-test",
		AllowedBackends:  []keyring.BackendType{keyring.FileBackend},
		FileDir:          t.TempDir(),
		FilePasswordFunc: keyring.FixedStringPrompt("test-password"),
	})
	if err != nil {
		t.Fatalf("keyring.Open() error = %v", err)
	}
	return ring
}

func TestStoreWithKeyring(t *testing.T) {
	fallback := filepath.Join(t.TempDir(), "secrets.json")
	s := New(newFileKeyring(t), fallback)

	if _, err := s.Get("gemini"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() before Set error = %v, want ErrNotFound", err)
	}

	if err := s.Set("gemini", "AIzaSyKey"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := s.Get("gemini")
	if err != nil || got != "AIzaSyKey" {
		t.Errorf("Get() = %q, %v", got, err)
	}
	if _, err := os.Stat(fallback); !os.IsNotExist(err) {
		t.Error("fallback file written although keyring succeeded")
	}

	if err := s.Delete("gemini"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get("gemini"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after Delete error = %v, want ErrNotFound", err)
	}
	if err := s.Delete("gemini"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestStoreFallbackFile(t *testing.T) {
	fallback := filepath.Join(t.TempDir(), "nested", "secrets.json")
	s := New(nil, fallback)

	if err := s.Set("openai", "sk-one"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Set("gemini", "AIzaSyTwo"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	info, err := os.Stat(fallback)
	if err != nil {
		t.Fatalf("fallback file missing: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("fallback permissions = %o, want 600", perm)
	}

	reopened := New(nil, fallback)
	if got, _ := reopened.Get("openai"); got != "sk-one" {
		t.Errorf("Get(openai) = %q", got)
	}

	if err := reopened.Delete("openai"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := reopened.Get("openai"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after Delete error = %v", err)
	}
	if got, _ := reopened.Get("gemini"); got != "AIzaSyTwo" {
		t.Errorf("unrelated key lost: %q", got)
	}
}

func TestStoreCorruptFallback(t *testing.T) {
	fallback := filepath.Join(t.TempDir(), "secrets.json")
	if err := os.WriteFile(fallback, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	s := New(nil, fallback)
	if _, err := s.Get("gemini"); err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want parse error", err)
	}
}

func TestLooksLikeGeminiKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"AIzaSyABCDEF", true},
		{"  AIzaSyABCDEF\n", true},
		{"sk-proj-123", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := LooksLikeGeminiKey(tt.key); got != tt.want {
			t.Errorf("LooksLikeGeminiKey(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestMask(t *testing.T) {
	if got := Mask("short"); got != "********" {
		t.Errorf("Mask(short) = %q", got)
	}
	if got := Mask("AIzaSyABCDEFGH"); got != "AIza...EFGH" {
		t.Errorf("Mask() = %q", got)
	}
}
