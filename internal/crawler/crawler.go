// Package crawler runs a loaded template against a site: it walks every page
// definition, applies each entry's regex to the fetched body and runs the
// entry's steps for every selected match.
package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/mrlokans/imgmanager/internal/credentials"
	"github.com/mrlokans/imgmanager/internal/library"
	"github.com/mrlokans/imgmanager/internal/session"
	"github.com/mrlokans/imgmanager/internal/template"
)

const DefaultMaxPages = 500

type Session interface {
	Do(ctx context.Context, req session.Request) (*session.Response, error)
	Download(ctx context.Context, url, destDir string) (string, error)
}

// VisitedStore remembers pages crawled under save-progress.
type VisitedStore interface {
	IsVisited(url string) (bool, error)
	MarkVisited(url string) error
}

// Library receives files and directories produced by the pipeline.
type Library interface {
	Add(path string) (library.Result, error)
}

type Options struct {
	// DestDir receives downloaded files.
	DestDir string
	// MaxPages bounds the iterations of one paginated page definition.
	MaxPages int

	ExtractFailurePolicy FailurePolicy
	Prompter             Prompter

	Credentials credentials.Credentials

	// Progress, when set, is called with a snapshot after every counter change.
	Progress func(Stats)
}

type Crawler struct {
	site    *template.Site
	session Session
	visited VisitedStore
	library Library
	opts    Options

	mu    sync.Mutex
	stats Stats
}

// PageContext is the position of one page fetch: the pagination index and
// the match inherited from the enclosing entry.
type PageContext struct {
	Index int
	Match Match
}

// Next returns the context of the following page.
func (pc PageContext) Next() PageContext {
	return PageContext{Index: pc.Index + 1, Match: pc.Match}
}

func New(site *template.Site, sess Session, visited VisitedStore, lib Library, opts Options) *Crawler {
	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultMaxPages
	}
	if opts.ExtractFailurePolicy == "" {
		opts.ExtractFailurePolicy = PolicyAbort
	}

	return &Crawler{
		site:    site,
		session: sess,
		visited: visited,
		library: lib,
		opts:    opts,
	}
}

// Run crawls every top-level page in order. It stops at the first fatal
// error: cancellation, a failed extraction the policy does not tolerate, a
// misconfigured action chain, or a visited store failure. Per-match failures
// are logged and counted instead.
func (c *Crawler) Run(ctx context.Context) (Stats, error) {
	for _, page := range c.site.Pages {
		if err := c.crawlPage(ctx, page, nil); err != nil {
			return c.Stats(), err
		}
	}
	return c.Stats(), nil
}

func (c *Crawler) crawlPage(ctx context.Context, page *template.Page, inherited Match) error {
	pc := PageContext{Index: page.Start, Match: inherited}

	for iteration := 0; ; iteration++ {
		if iteration >= c.opts.MaxPages {
			slog.Warn("page limit reached, stopping pagination",
				"url", page.URL, "max_pages", c.opts.MaxPages, "index", pc.Index)
			return nil
		}

		more, err := c.fetchPage(ctx, page, pc)
		if err != nil {
			return err
		}
		if !more || !page.Paginated() {
			return nil
		}
		pc = pc.Next()
	}
}

// fetchPage fetches one page and runs its entries. It reports whether any
// entry selected a match.
func (c *Crawler) fetchPage(ctx context.Context, page *template.Page, pc PageContext) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	url := c.pageURL(page, pc)

	if page.SaveProgress {
		visited, err := c.visited.IsVisited(url)
		if err != nil {
			return false, fmt.Errorf("failed to check visited page %s: %w", url, err)
		}
		if visited {
			slog.Info("page already visited, skipping", "url", url)
			c.record(func(s *Stats) { s.PagesSkipped++ })
			return false, nil
		}
	}

	slog.Info("fetching page", "url", url)
	resp, err := c.session.Do(ctx, session.Request{URL: url})
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		slog.Warn("failed to fetch page", "url", url, "error", err)
		c.record(func(s *Stats) { s.PagesFailed++ })
		return false, nil
	}
	if !resp.OK() {
		// an error status is an attempted page without content
		c.record(func(s *Stats) { s.PagesFailed++ })
		return false, c.markVisited(page, url)
	}
	c.record(func(s *Stats) { s.PagesFetched++ })

	matched := false
	for _, entry := range page.Entries {
		ok, err := c.runEntry(ctx, entry, resp.Body)
		if err != nil {
			return false, err
		}
		matched = matched || ok
	}

	if err := c.markVisited(page, url); err != nil {
		return false, err
	}
	return matched, nil
}

func (c *Crawler) markVisited(page *template.Page, url string) error {
	if !page.SaveProgress {
		return nil
	}
	if err := c.visited.MarkVisited(url); err != nil {
		return fmt.Errorf("failed to mark page %s as visited: %w", url, err)
	}
	return nil
}

func (c *Crawler) pageURL(page *template.Page, pc PageContext) string {
	url := strings.ReplaceAll(page.URL, template.IndexPlaceholder, strconv.Itoa(pc.Index))
	return c.absolute(Substitute(url, pc.Match))
}

// absolute prefixes root-relative URLs with the site root.
func (c *Crawler) absolute(url string) string {
	if strings.HasPrefix(url, "/") && !strings.HasPrefix(url, "//") {
		return c.site.Root + url
	}
	return url
}
