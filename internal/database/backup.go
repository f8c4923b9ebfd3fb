package database

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// RollingBackup copies the database file next to itself before it is modified.
//
// Backups are named <path>-backup, <path>-backup-1, ... up to count files. Once
// count backups exist the oldest one (by modification time) is overwritten.
// A missing database file is not an error: there is nothing to back up yet.
func RollingBackup(path string, count int) (string, error) {
	if count <= 0 {
		return "", nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", nil
	}

	backups, err := filepath.Glob(globEscape(path) + "-backup*")
	if err != nil {
		return "", fmt.Errorf("failed to list backups: %w", err)
	}

	var target string
	switch {
	case len(backups) == 0:
		target = path + "-backup"
	case len(backups) < count:
		target = fmt.Sprintf("%s-backup-%d", path, len(backups))
	default:
		sort.Slice(backups, func(i, j int) bool {
			return modTime(backups[i]) < modTime(backups[j])
		})
		target = backups[0]
	}

	if err := copyFile(path, target); err != nil {
		return "", fmt.Errorf("failed to back up database to %s: %w", target, err)
	}
	return target, nil
}

func modTime(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.ModTime().UnixNano()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func globEscape(path string) string {
	var escaped []rune
	for _, r := range path {
		switch r {
		case '*', '?', '[', '\\':
			escaped = append(escaped, '\\')
		}
		escaped = append(escaped, r)
	}
	return string(escaped)
}
