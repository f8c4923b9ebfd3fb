// Package library registers local media files by path.
package library

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrlokans/imgmanager/internal/entities"
)

// MediaStore persists registered media paths.
type MediaStore interface {
	ExistsByPath(path string) (bool, error)
	RegisterByPath(path string) error
	TouchByPath(path string) error
}

// Result counts the outcome of one Add call. Total is the number of
// candidate files, Registered the number that were new to the library.
type Result struct {
	Registered int
	Total      int
}

func (r Result) String() string {
	return fmt.Sprintf("%d/%d", r.Registered, r.Total)
}

type Service struct {
	store MediaStore
}

func NewService(store MediaStore) *Service {
	return &Service{store: store}
}

// Add registers path. A file is registered as is; a directory is walked
// and every file with a supported media extension is registered. Paths
// already in the library only have their last-seen time refreshed.
func (s *Service) Add(path string) (Result, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to resolve path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return Result{}, fmt.Errorf("failed to stat %s: %w", abs, err)
	}

	if !info.IsDir() {
		added, err := s.addFile(abs)
		if err != nil {
			return Result{Total: 1}, err
		}
		return Result{Registered: boolToInt(added), Total: 1}, nil
	}

	var result Result
	err = filepath.WalkDir(abs, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !IsSupported(p) {
			return nil
		}

		result.Total++
		added, err := s.addFile(p)
		if err != nil {
			return err
		}
		if added {
			result.Registered++
		}
		return nil
	})
	if err != nil {
		return result, fmt.Errorf("failed to register %s: %w", abs, err)
	}

	slog.Info("registered media", "path", abs, "registered", result.Registered, "total", result.Total)
	return result, nil
}

func (s *Service) addFile(path string) (bool, error) {
	exists, err := s.store.ExistsByPath(path)
	if err != nil {
		return false, fmt.Errorf("failed to check media %s: %w", path, err)
	}
	if exists {
		if err := s.store.TouchByPath(path); err != nil {
			return false, fmt.Errorf("failed to refresh media %s: %w", path, err)
		}
		return false, nil
	}

	if err := s.store.RegisterByPath(path); err != nil {
		return false, fmt.Errorf("failed to register media %s: %w", path, err)
	}
	slog.Debug("registered media file", "path", path)
	return true, nil
}

// IsSupported reports whether path has a media extension the library scans for.
func IsSupported(path string) bool {
	return entities.SupportedMediaExtensions[strings.ToLower(filepath.Ext(path))]
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
