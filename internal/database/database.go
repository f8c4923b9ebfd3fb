package database

import (
	"fmt"
	"log/slog"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/imgmanager/internal/entities"
)

// sqlite pragmas applied to every connection: crawls write visited markers
// while the API and task workers read.
const connParams = "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

type Database struct {
	DB *gorm.DB
}

// Summary counts what the library holds.
type Summary struct {
	Media        int64 `json:"media"`
	VisitedPages int64 `json:"visited_pages"`
	CrawlRuns    int64 `json:"crawl_runs"`
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath+connParams), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open library database %s: %w", dbPath, err)
	}

	if err := db.AutoMigrate(
		&entities.Media{},
		&entities.VisitedPage{},
		&entities.AuditEvent{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate library database: %w", err)
	}

	slog.Debug("library database ready", "path", dbPath)
	return &Database{DB: db}, nil
}

// Summary returns row counts for media, visited pages and crawl runs.
func (d *Database) Summary() (Summary, error) {
	var s Summary
	if err := d.DB.Model(&entities.Media{}).Count(&s.Media).Error; err != nil {
		return s, fmt.Errorf("failed to count media: %w", err)
	}
	if err := d.DB.Model(&entities.VisitedPage{}).Count(&s.VisitedPages).Error; err != nil {
		return s, fmt.Errorf("failed to count visited pages: %w", err)
	}
	err := d.DB.Model(&entities.AuditEvent{}).
		Where("event_type = ?", entities.AuditEventCrawl).
		Count(&s.CrawlRuns).Error
	if err != nil {
		return s, fmt.Errorf("failed to count crawl runs: %w", err)
	}
	return s, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks that the underlying connection is still usable.
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
