// Package crawl runs one template crawl end to end: it loads the template,
// resolves credentials, opens a fresh session and drives the crawler, then
// records the outcome in the audit log.
package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mrlokans/imgmanager/internal/config"
	"github.com/mrlokans/imgmanager/internal/crawler"
	"github.com/mrlokans/imgmanager/internal/credentials"
	"github.com/mrlokans/imgmanager/internal/session"
	"github.com/mrlokans/imgmanager/internal/template"
)

const (
	TriggerCLI      = "cli"
	TriggerTask     = "task"
	TriggerSchedule = "schedule"
)

// Recorder stores the outcome of a run.
type Recorder interface {
	LogCrawl(runID, templateName, trigger string, stats any, err error)
}

type Options struct {
	// Template is a template name looked up in the templates directory, or a path.
	Template string
	// Location overrides the configured download directory.
	Location string

	Username string
	Password string

	// Policy overrides the configured extract failure policy.
	Policy   crawler.FailurePolicy
	Prompter crawler.Prompter
	Progress func(crawler.Stats)

	Trigger string
}

type Result struct {
	RunID    string        `json:"run_id"`
	Template string        `json:"template"`
	Location string        `json:"location"`
	Stats    crawler.Stats `json:"stats"`
	Duration time.Duration `json:"duration"`
}

type Service struct {
	cfg      config.Crawl
	dataDir  string
	visited  crawler.VisitedStore
	library  crawler.Library
	recorder Recorder
}

func NewService(cfg config.Crawl, dataDir string, visited crawler.VisitedStore, lib crawler.Library, recorder Recorder) *Service {
	return &Service{
		cfg:      cfg,
		dataDir:  dataDir,
		visited:  visited,
		library:  lib,
		recorder: recorder,
	}
}

// Run performs one crawl. Every run gets its own session and therefore its
// own cookie jar, so concurrent runs of different templates do not share
// login state.
func (s *Service) Run(ctx context.Context, opts Options) (Result, error) {
	start := time.Now()
	result := Result{
		RunID:    uuid.NewString(),
		Template: template.Name(opts.Template),
		Location: opts.Location,
	}
	if result.Location == "" {
		result.Location = s.cfg.DownloadLocation
	}
	if opts.Trigger == "" {
		opts.Trigger = TriggerCLI
	}

	logger := slog.With("run_id", result.RunID, "template", result.Template)
	logger.Info("crawl started", "trigger", opts.Trigger, "location", result.Location)

	stats, err := s.run(ctx, opts, result)
	result.Stats = stats
	result.Duration = time.Since(start)

	if s.recorder != nil {
		s.recorder.LogCrawl(result.RunID, result.Template, opts.Trigger, stats, err)
	}

	if err != nil {
		logger.Error("crawl failed", "error", err, "stats", stats.String())
		return result, err
	}
	logger.Info("crawl finished", "stats", stats.String(), "duration", result.Duration.Round(time.Millisecond))
	return result, nil
}

func (s *Service) run(ctx context.Context, opts Options, result Result) (crawler.Stats, error) {
	site, err := template.LoadFile(s.cfg.TemplatePath(opts.Template))
	if err != nil {
		return crawler.Stats{}, fmt.Errorf("failed to load template %s: %w", opts.Template, err)
	}

	var creds credentials.Credentials
	if site.Authenticated {
		store := credentials.NewStore(s.dataDir, result.Template)
		creds, err = store.Resolve(opts.Username, opts.Password)
		if err != nil {
			return crawler.Stats{}, fmt.Errorf("failed to resolve credentials for %s: %w", result.Template, err)
		}
	}

	policy := opts.Policy
	if policy == "" {
		policy, err = crawler.ParseFailurePolicy(s.cfg.ExtractFailurePolicy)
		if err != nil {
			return crawler.Stats{}, err
		}
	}

	sess, err := session.New(session.Options{
		Timeout:         s.cfg.Timeout,
		UserAgent:       s.cfg.UserAgent,
		Attempts:        s.cfg.Attempts,
		BackoffBase:     s.cfg.Backoff,
		RequestInterval: s.cfg.RequestInterval,
	})
	if err != nil {
		return crawler.Stats{}, fmt.Errorf("failed to create session: %w", err)
	}

	c := crawler.New(site, sess, s.visited, s.library, crawler.Options{
		DestDir:              result.Location,
		MaxPages:             s.cfg.MaxPages,
		ExtractFailurePolicy: policy,
		Prompter:             opts.Prompter,
		Credentials:          creds,
		Progress:             opts.Progress,
	})
	return c.Run(ctx)
}

// Templates lists the template names available in the templates directory.
func (s *Service) Templates() ([]string, error) {
	return ListTemplates(s.cfg.TemplatesDir)
}

// ListTemplates returns the names of the .xml files in dir, sorted. A
// missing directory holds no templates.
func ListTemplates(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read templates directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".xml") {
			continue
		}
		names = append(names, template.Name(entry.Name()))
	}
	sort.Strings(names)
	return names, nil
}
