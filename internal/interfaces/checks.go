package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/imgmanager/internal/audit"
	"github.com/mrlokans/imgmanager/internal/crawl"
	"github.com/mrlokans/imgmanager/internal/crawler"
	"github.com/mrlokans/imgmanager/internal/database/media"
	"github.com/mrlokans/imgmanager/internal/database/visited"
	"github.com/mrlokans/imgmanager/internal/http"
	"github.com/mrlokans/imgmanager/internal/library"
	"github.com/mrlokans/imgmanager/internal/scheduler"
	"github.com/mrlokans/imgmanager/internal/session"
	"github.com/mrlokans/imgmanager/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ library.MediaStore = (*media.Repository)(nil)
var _ crawler.VisitedStore = (*visited.Repository)(nil)

var _ http.MediaLister = (*media.Repository)(nil)
var _ http.VisitedLister = (*visited.Repository)(nil)
var _ http.RunLog = (*audit.Service)(nil)

// =============================================================================
// Crawl Pipeline
// =============================================================================

var _ crawler.Session = (*session.Session)(nil)
var _ crawler.Library = (*library.Service)(nil)
var _ crawler.Prompter = (*crawler.ConsolePrompter)(nil)
var _ crawl.Recorder = (*audit.Service)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ tasks.CrawlRunner = (*crawl.Service)(nil)
var _ tasks.HistoryPruner = (*audit.Service)(nil)
var _ scheduler.CrawlRunner = (*crawl.Service)(nil)

var _ http.TemplateLister = (*crawl.Service)(nil)
var _ http.CrawlEnqueuer = (*tasks.Client)(nil)
var _ http.TaskStatusReader = (*tasks.Client)(nil)
