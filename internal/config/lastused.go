package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	lastDatabaseFile = ".last-db"
	lastLocationFile = ".last-location"
)

// LastUsed remembers the database and download location of the previous
// CLI run so they need not be repeated on every invocation.
type LastUsed struct {
	dir string
}

func NewLastUsed(dataDir string) *LastUsed {
	return &LastUsed{dir: dataDir}
}

// Database returns the remembered database path, or fallback when none is stored.
func (l *LastUsed) Database(fallback string) string {
	return l.read(lastDatabaseFile, fallback)
}

func (l *LastUsed) SetDatabase(path string) error {
	return l.write(lastDatabaseFile, path)
}

// Location returns the remembered download location, or fallback when none is stored.
func (l *LastUsed) Location(fallback string) string {
	return l.read(lastLocationFile, fallback)
}

func (l *LastUsed) SetLocation(path string) error {
	return l.write(lastLocationFile, path)
}

func (l *LastUsed) read(name, fallback string) string {
	data, err := os.ReadFile(filepath.Join(l.dir, name))
	if err != nil {
		return fallback
	}
	if value := strings.TrimSpace(string(data)); value != "" {
		return value
	}
	return fallback
}

func (l *LastUsed) write(name, value string) error {
	if value == "" {
		return errors.New("refusing to remember an empty path")
	}
	abs, err := filepath.Abs(value)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", value, err)
	}
	if err := os.MkdirAll(l.dir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(l.dir, name), []byte(abs), 0600); err != nil {
		return fmt.Errorf("failed to remember %s: %w", name, err)
	}
	return nil
}
