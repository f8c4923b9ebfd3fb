package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mrlokans/imgmanager/internal/audit"
	"github.com/mrlokans/imgmanager/internal/config"
	"github.com/mrlokans/imgmanager/internal/database"
	auditRepo "github.com/mrlokans/imgmanager/internal/database/audit"
	"github.com/mrlokans/imgmanager/internal/database/media"
	"github.com/mrlokans/imgmanager/internal/database/visited"
	"github.com/mrlokans/imgmanager/internal/library"
)

// store bundles the repositories a command works with.
type store struct {
	path    string
	db      *database.Database
	media   *media.Repository
	visited *visited.Repository
	audit   *audit.Service
	library *library.Service
}

func (s *store) Close() error {
	return s.db.Close()
}

// resolveDatabasePath picks the explicit path, then the remembered one, then
// the configured default.
func resolveDatabasePath(cfg *config.Config, explicit string) string {
	if explicit != "" {
		return explicit
	}
	return config.NewLastUsed(cfg.Global.DataDir).Database(cfg.Database.Path)
}

// openStore opens the database at path and remembers it for the next run.
// With backup set, a rolling copy is taken first.
func openStore(cfg *config.Config, path string, backup bool) (*store, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for database: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	if backup && cfg.Database.BackupCount > 0 {
		target, err := database.RollingBackup(absPath, cfg.Database.BackupCount)
		if err != nil {
			return nil, err
		}
		if target != "" {
			slog.Debug("database backed up", "backup", target)
		}
	}

	db, err := database.NewDatabase(absPath)
	if err != nil {
		return nil, err
	}

	if err := config.NewLastUsed(cfg.Global.DataDir).SetDatabase(absPath); err != nil {
		slog.Warn("failed to remember database path", "error", err)
	}

	mediaRepo := media.NewRepository(db.DB)
	return &store{
		path:    absPath,
		db:      db,
		media:   mediaRepo,
		visited: visited.NewRepository(db.DB),
		audit:   audit.NewService(auditRepo.NewRepository(db.DB)),
		library: library.NewService(mediaRepo),
	}, nil
}
