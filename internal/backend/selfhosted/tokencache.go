package selfhosted

import (
	"errors"
	"os"
	"strings"
)

// TokenCache persists the issued access token across process runs so a
// new process can pick the session back up from the session store.
type TokenCache interface {
	// Load returns the persisted token, or "" when there is none.
	Load() (string, error)
	Save(accessToken string) error
	Clear() error
}

// FileTokenCache keeps the token in a single mode-0600 file.
type FileTokenCache struct {
	Path string
}

func (f FileTokenCache) Load() (string, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (f FileTokenCache) Save(accessToken string) error {
	return os.WriteFile(f.Path, []byte(accessToken), 0o600)
}

func (f FileTokenCache) Clear() error {
	err := os.Remove(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// NopTokenCache never persists; every process starts signed out.
type NopTokenCache struct{}

func (NopTokenCache) Load() (string, error) { return "", nil }
func (NopTokenCache) Save(string) error     { return nil }
func (NopTokenCache) Clear() error          { return nil }
