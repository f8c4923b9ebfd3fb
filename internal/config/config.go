package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DatabaseFileName = "img-manager.db"
	TemplatesDirName = "templates"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Crawl
		Schedule
		Audit
		Tasks
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		// DataDir holds credentials, templates and last-used paths.
		DataDir                  string
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path        string
		BackupCount int // Rolling backups kept before a crawl, 0 disables
	}
	Crawl struct {
		DownloadLocation     string
		TemplatesDir         string
		Attempts             int
		Backoff              time.Duration
		MaxPages             int
		RequestInterval      time.Duration
		Timeout              time.Duration
		UserAgent            string
		ExtractFailurePolicy string // abort, continue or prompt
	}
	Schedule struct {
		Enabled   bool
		Cron      string   // Cron format: "0 3 * * *" = daily at 03:00
		Templates []string // Template names crawled on every tick
	}
	Audit struct {
		RetentionDays int
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
)

// DefaultDataDir returns ~/.img-manager, or a relative .img-manager when the
// home directory is unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".img-manager"
	}
	return filepath.Join(home, ".img-manager")
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("img_manager_data_dir", DefaultDataDir())
	dataDir := v.GetString("IMG_MANAGER_DATA_DIR")

	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", filepath.Join(dataDir, DatabaseFileName))
	v.SetDefault("db_backup_count", 0)

	// Crawl defaults
	v.SetDefault("download_location", "./downloads")
	v.SetDefault("templates_dir", filepath.Join(dataDir, TemplatesDirName))
	v.SetDefault("crawl_attempts", 3)
	v.SetDefault("crawl_backoff", "2s")
	v.SetDefault("crawl_max_pages", 500)
	v.SetDefault("crawl_request_interval", "0s")
	v.SetDefault("crawl_timeout", "60s")
	v.SetDefault("crawl_user_agent", "")
	v.SetDefault("crawl_extract_failure_policy", "prompt")

	// Scheduled crawls
	v.SetDefault("schedule_enabled", false)
	v.SetDefault("schedule_cron", "0 3 * * *") // Daily at 03:00
	v.SetDefault("schedule_templates", "")

	v.SetDefault("audit_retention_days", 30)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "3h")
	v.SetDefault("task_cleanup_interval", "1h")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			DataDir:                  dataDir,
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path:        v.GetString("DATABASE_PATH"),
			BackupCount: v.GetInt("DB_BACKUP_COUNT"),
		},
		Crawl: Crawl{
			DownloadLocation:     v.GetString("DOWNLOAD_LOCATION"),
			TemplatesDir:         v.GetString("TEMPLATES_DIR"),
			Attempts:             v.GetInt("CRAWL_ATTEMPTS"),
			Backoff:              v.GetDuration("CRAWL_BACKOFF"),
			MaxPages:             v.GetInt("CRAWL_MAX_PAGES"),
			RequestInterval:      v.GetDuration("CRAWL_REQUEST_INTERVAL"),
			Timeout:              v.GetDuration("CRAWL_TIMEOUT"),
			UserAgent:            v.GetString("CRAWL_USER_AGENT"),
			ExtractFailurePolicy: v.GetString("CRAWL_EXTRACT_FAILURE_POLICY"),
		},
		Schedule: Schedule{
			Enabled:   v.GetBool("SCHEDULE_ENABLED"),
			Cron:      v.GetString("SCHEDULE_CRON"),
			Templates: splitList(v.GetString("SCHEDULE_TEMPLATES")),
		},
		Audit: Audit{
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// TemplatePath resolves a template name against the templates directory.
// Names containing a path separator are used as given; ".xml" is appended
// when the name has no extension.
func (c Crawl) TemplatePath(name string) string {
	if filepath.Ext(name) == "" {
		name += ".xml"
	}
	if strings.ContainsRune(name, filepath.Separator) || strings.Contains(name, "/") {
		return name
	}
	return filepath.Join(c.TemplatesDir, name)
}
