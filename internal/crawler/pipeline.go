package crawler

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mrlokans/imgmanager/internal/archive"
	"github.com/mrlokans/imgmanager/internal/credentials"
	"github.com/mrlokans/imgmanager/internal/session"
	"github.com/mrlokans/imgmanager/internal/template"
)

const formContentType = "application/x-www-form-urlencoded"

// runSteps executes one entry's steps against one match. The path produced
// by a download or extract is handed to the steps after it; a nested page
// is crawled with match as its context. A download failure ends the chain
// for this match only.
func (c *Crawler) runSteps(ctx context.Context, steps []template.Step, match Match) error {
	var result string

	for _, step := range steps {
		if step.Page != nil {
			if err := c.crawlPage(ctx, step.Page, match); err != nil {
				return err
			}
			continue
		}

		out, proceed, err := c.runAction(ctx, step.Action, match, result)
		if err != nil {
			return err
		}
		if !proceed {
			return nil
		}
		if out != "" {
			result = out
		}
	}
	return nil
}

func (c *Crawler) runAction(ctx context.Context, action *template.Action, match Match, input string) (string, bool, error) {
	if action.Kind.NeedsInput() && input == "" {
		return "", false, fmt.Errorf("%w: %s", ErrMissingResult, action.Kind)
	}

	switch action.Kind {
	case template.ActionDownload:
		return c.download(ctx, action, match)
	case template.ActionExtract:
		return c.extract(input)
	case template.ActionDelete:
		return c.delete(input, action.Pattern)
	case template.ActionLogin:
		return "", true, c.login(ctx, action, match)
	case template.ActionRegister:
		c.register(input)
		return "", true, nil
	default:
		slog.Warn("skipping unknown action", "type", action.RawType)
		c.record(func(s *Stats) { s.SkippedActions++ })
		return "", true, nil
	}
}

func (c *Crawler) download(ctx context.Context, action *template.Action, match Match) (string, bool, error) {
	link := c.absolute(Substitute(action.URL, match))

	path, err := c.session.Download(ctx, link, c.opts.DestDir)
	if err != nil {
		if ctx.Err() != nil {
			return "", false, ctx.Err()
		}
		slog.Error("download failed, skipping the rest of this match", "url", link, "error", err)
		c.record(func(s *Stats) { s.DownloadFailures++ })
		return "", false, nil
	}

	slog.Info("downloaded", "url", link, "path", path)
	c.record(func(s *Stats) { s.Downloads++ })
	return path, true, nil
}

func (c *Crawler) extract(archivePath string) (string, bool, error) {
	dir, err := archive.Extract(archivePath)
	if err == nil {
		c.record(func(s *Stats) { s.Extracted++ })
		return dir, true, nil
	}

	slog.Error("failed to extract archive", "path", archivePath, "error", err)
	c.record(func(s *Stats) { s.ExtractFailures++ })

	proceed, decideErr := c.decideExtractFailure(archivePath)
	if decideErr != nil {
		return "", false, decideErr
	}
	if !proceed {
		return "", false, &ExtractionError{Archive: archivePath, Err: err}
	}
	return "", false, nil
}

// decideExtractFailure applies the failure policy. It returns true when the
// crawl should go on with the next match.
func (c *Crawler) decideExtractFailure(archivePath string) (bool, error) {
	switch c.opts.ExtractFailurePolicy {
	case PolicyContinue:
		return true, nil
	case PolicyPrompt:
		if c.opts.Prompter == nil {
			return false, nil
		}
		ok, err := c.opts.Prompter.Confirm(fmt.Sprintf("Could not extract %s. Continue?", archivePath))
		if err != nil {
			return false, fmt.Errorf("failed to ask whether to continue: %w", err)
		}
		return ok, nil
	default:
		return false, nil
	}
}

func (c *Crawler) delete(dir string, pattern *regexp.Regexp) (string, bool, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		slog.Warn("nothing to clean up, not a directory", "path", dir)
		return dir, true, nil
	}

	removed := 0
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !pattern.MatchString(d.Name()) {
			return nil
		}
		if err := os.Remove(path); err != nil {
			return err
		}
		removed++
		return nil
	})
	if err != nil {
		slog.Warn("failed to clean up directory", "path", dir, "error", err)
	}

	slog.Info("removed files", "dir", dir, "count", removed)
	c.record(func(s *Stats) { s.FilesDeleted += removed })
	return dir, true, nil
}

func (c *Crawler) login(ctx context.Context, action *template.Action, match Match) error {
	body := LoginBody(action.FormEncoded, c.opts.Credentials, match)

	resp, err := c.session.Do(ctx, session.Request{
		Method:      action.Method,
		Body:        body,
		ContentType: formContentType,
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, session.ErrNoURL) {
			return fmt.Errorf("login action has no page to submit to: %w", err)
		}
		slog.Warn("login request failed", "error", err)
		return nil
	}

	slog.Info("logged in", "url", resp.URL, "status", resp.StatusCode)
	c.record(func(s *Stats) { s.Logins++ })
	return nil
}

func (c *Crawler) register(path string) {
	result, err := c.library.Add(path)
	if err != nil {
		slog.Error("failed to register media", "path", path, "error", err)
		c.record(func(s *Stats) { s.RegisterFailures++ })
		return
	}
	c.record(func(s *Stats) { s.Registered += result.Registered })
}

var loginPlaceholder = regexp.MustCompile(`\{(username|password|\d+)\}`)

// LoginBody builds an application/x-www-form-urlencoded body from a
// space-separated list of key=value fields, keeping their declared order.
// {username}, {password} and {N} are resolved in one pass over the template
// text, so inserted values are never substituted again.
func LoginBody(form string, creds credentials.Credentials, match Match) string {
	resolve := func(p string) string {
		switch name := p[1 : len(p)-1]; name {
		case "username":
			return creds.Username
		case "password":
			return creds.Password
		default:
			return Substitute(p, match)
		}
	}

	fields := strings.Fields(form)
	pairs := make([]string, 0, len(fields))
	for _, field := range fields {
		key, value, _ := strings.Cut(field, "=")
		value = loginPlaceholder.ReplaceAllStringFunc(value, resolve)
		pairs = append(pairs, url.QueryEscape(key)+"="+url.QueryEscape(value))
	}
	return strings.Join(pairs, "&")
}
