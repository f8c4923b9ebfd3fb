// Package archive expands downloaded zip archives next to themselves.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ErrCorruptArchive is returned when the file is not a readable zip archive.
// The archive is left in place.
var ErrCorruptArchive = errors.New("corrupt archive")

// TargetDir returns the directory an archive expands into: a sibling named
// after the archive without its extension.
func TargetDir(archivePath string) string {
	dir := filepath.Dir(archivePath)
	base := filepath.Base(archivePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == base {
		stem = base + ".d"
	}
	return filepath.Join(dir, stem)
}

// Extract expands the zip archive at archivePath into TargetDir(archivePath)
// and removes the archive once every entry has been written. When an entry
// fails, a target directory created by this call is removed again and the
// archive is kept.
func Extract(archivePath string) (string, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrCorruptArchive, archivePath, err)
	}
	defer reader.Close()

	target := TargetDir(archivePath)
	_, statErr := os.Stat(target)
	created := errors.Is(statErr, fs.ErrNotExist)

	if err := os.MkdirAll(target, 0755); err != nil {
		return "", fmt.Errorf("failed to create extract directory: %w", err)
	}

	if err := extractAll(reader, target); err != nil {
		if created {
			if rmErr := os.RemoveAll(target); rmErr != nil {
				slog.Warn("failed to remove partial extract directory", "dir", target, "error", rmErr)
			}
		}
		if errors.Is(err, ErrCorruptArchive) || errors.Is(err, zip.ErrChecksum) || errors.Is(err, zip.ErrFormat) || errors.Is(err, zip.ErrAlgorithm) {
			return "", fmt.Errorf("%w: %s: %v", ErrCorruptArchive, archivePath, err)
		}
		return "", err
	}

	reader.Close()
	if err := os.Remove(archivePath); err != nil {
		slog.Warn("failed to remove extracted archive", "path", archivePath, "error", err)
	}

	slog.Debug("extracted archive", "archive", archivePath, "dir", target, "entries", len(reader.File))
	return target, nil
}

func extractAll(reader *zip.ReadCloser, target string) error {
	for _, file := range reader.File {
		destPath, err := entryPath(target, file.Name)
		if err != nil {
			return err
		}

		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(destPath, 0755); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}

		if err := extractFile(file, destPath); err != nil {
			return fmt.Errorf("failed to extract file %s: %w", file.Name, err)
		}
	}
	return nil
}

// entryPath resolves an archive entry name under target, refusing names that
// would land outside it.
func entryPath(target, name string) (string, error) {
	destPath := filepath.Join(target, name)
	rel, err := filepath.Rel(target, destPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: entry %q escapes the extract directory", ErrCorruptArchive, name)
	}
	return destPath, nil
}

func extractFile(file *zip.File, destPath string) error {
	rc, err := file.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	mode := file.Mode().Perm()
	if mode == 0 {
		mode = 0644
	}
	outFile, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer outFile.Close()

	_, err = io.Copy(outFile, rc)
	return err
}
