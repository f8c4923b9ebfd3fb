// Package credentials resolves the username and password for templates whose
// site requires authentication.
//
// Values are cached in plaintext under a directory scoped to one template, so
// two templates never share a login.
package credentials

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const (
	usernameFile = ".username"
	passwordFile = ".password"
)

// ErrAuthentication is wrapped by every AuthenticationError.
var ErrAuthentication = errors.New("authentication required")

// AuthenticationError reports a credential that was neither supplied nor cached.
type AuthenticationError struct {
	Field string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("template requires authentication, but a %s was not supplied", e.Field)
}

func (e *AuthenticationError) Unwrap() error {
	return ErrAuthentication
}

type Credentials struct {
	Username string
	Password string
}

// Store keeps the cached credentials of one template.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dataDir/<templateName>.
func NewStore(dataDir, templateName string) *Store {
	return &Store{dir: filepath.Join(dataDir, templateName)}
}

// Dir returns the directory holding the cached files.
func (s *Store) Dir() string {
	return s.dir
}

// Resolve returns the credentials to use. For each field an explicit value
// wins and replaces the cached one; otherwise the cached value is used.
func (s *Store) Resolve(username, password string) (Credentials, error) {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return Credentials{}, fmt.Errorf("failed to create credentials directory: %w", err)
	}

	pass, err := s.resolveField("password", passwordFile, password)
	if err != nil {
		return Credentials{}, err
	}
	user, err := s.resolveField("username", usernameFile, username)
	if err != nil {
		return Credentials{}, err
	}

	return Credentials{Username: user, Password: pass}, nil
}

func (s *Store) resolveField(field, file, explicit string) (string, error) {
	path := filepath.Join(s.dir, file)

	if explicit != "" {
		if err := os.WriteFile(path, []byte(explicit), 0600); err != nil {
			return "", fmt.Errorf("failed to save %s: %w", field, err)
		}
		return explicit, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", &AuthenticationError{Field: field}
	}
	if err != nil {
		return "", fmt.Errorf("failed to read saved %s: %w", field, err)
	}

	value := strings.TrimSpace(string(data))
	if value == "" {
		return "", &AuthenticationError{Field: field}
	}

	slog.Debug("using previously saved credential", "field", field)
	return value, nil
}

// Forget removes the cached credentials.
func (s *Store) Forget() error {
	for _, file := range []string{usernameFile, passwordFile} {
		err := os.Remove(filepath.Join(s.dir, file))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove %s: %w", file, err)
		}
	}
	return nil
}
