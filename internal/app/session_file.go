package app

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// TokenFile persists the single opaque session token on disk, the terminal
// equivalent of the web client's localStorage key.
//
// Layout: <state-dir>/session/token
type TokenFile struct {
	Root string
}

func NewTokenFile(root string) *TokenFile {
	if strings.TrimSpace(root) == "" {
		root = DefaultStateRoot()
	}
	return &TokenFile{Root: root}
}

func (f *TokenFile) path() string {
	return filepath.Join(f.Root, "session", "token")
}

// Load returns the persisted token, or "" when none is stored. A missing file
// is not an error; it just means no session.
func (f *TokenFile) Load() (string, error) {
	data, err := os.ReadFile(f.path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (f *TokenFile) Save(token string) error {
	dir := filepath.Dir(f.path())
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp := f.path() + ".tmp"
	if err := os.WriteFile(tmp, []byte(token+"\n"), 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path())
}

func (f *TokenFile) Clear() error {
	err := os.Remove(f.path())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
